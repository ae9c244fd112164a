package provider

import (
	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/lrs-signal/pkg/errors"
)

// Config selects and configures an upstream provider.
type Config struct {
	Type            ProviderType `validate:"required,oneof=polygon binance alpaca"`
	PolygonApiKey   string       `validate:"required_if=Type polygon"`
	AlpacaApiKey    string       `validate:"required_if=Type alpaca"`
	AlpacaApiSecret string       `validate:"required_if=Type alpaca"`
	AlpacaFeed      string       `validate:"omitempty,oneof=iex sip"`
	OnProgress      OnFetchProgress
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(config Config) (Provider, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProvider, "invalid provider configuration", err)
	}

	switch config.Type {
	case ProviderPolygon:
		client, err := NewPolygonClient(config.PolygonApiKey)
		if err != nil {
			return nil, err
		}

		client.(*PolygonClient).onProgress = config.OnProgress

		return client, nil
	case ProviderBinance:
		client, err := NewBinanceClient()
		if err != nil {
			return nil, err
		}

		client.(*BinanceClient).onProgress = config.OnProgress

		return client, nil
	case ProviderAlpaca:
		client, err := NewAlpacaClient(config.AlpacaApiKey, config.AlpacaApiSecret, config.AlpacaFeed)
		if err != nil {
			return nil, err
		}

		client.(*AlpacaClient).onProgress = config.OnProgress

		return client, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", config.Type)
	}
}
