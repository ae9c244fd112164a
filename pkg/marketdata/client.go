package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/lrs-signal/internal/logger"
	"github.com/rxtech-lab/lrs-signal/internal/types"
	"github.com/rxtech-lab/lrs-signal/pkg/marketdata/provider"
	"github.com/rxtech-lab/lrs-signal/pkg/marketdata/store"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType    provider.ProviderType `validate:"required,oneof=polygon binance alpaca"`
	PolygonApiKey   string                `validate:"required_if=ProviderType polygon"`
	AlpacaApiKey    string                `validate:"required_if=ProviderType alpaca"`
	AlpacaApiSecret string                `validate:"required_if=ProviderType alpaca"`
	AlpacaFeed      string
	// SnapshotDir enables the on-disk daily snapshot layer when set.
	SnapshotDir string
	// CacheTTL is how long a series stays in memory; zero uses provider.DefaultCacheTTL.
	CacheTTL time.Duration `validate:"gte=0"`
}

// Client fetches daily price series through a stack of layers:
// in-memory cache, optional on-disk snapshot, upstream provider.
type Client struct {
	upstream  provider.Provider
	snapshots *provider.SnapshotProvider
	cache     *provider.CachedProvider
	logger    *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, log *logger.Logger, onProgress provider.OnFetchProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	upstream, err := provider.NewMarketDataProvider(provider.Config{
		Type:            config.ProviderType,
		PolygonApiKey:   config.PolygonApiKey,
		AlpacaApiKey:    config.AlpacaApiKey,
		AlpacaApiSecret: config.AlpacaApiSecret,
		AlpacaFeed:      config.AlpacaFeed,
		OnProgress:      onProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", config.ProviderType, err)
	}

	return NewClientWithProvider(upstream, config, log)
}

// NewClientWithProvider builds the caching layers on top of an existing provider.
func NewClientWithProvider(upstream provider.Provider, config ClientConfig, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	layered := upstream

	var snapshotLayer *provider.SnapshotProvider

	if config.SnapshotDir != "" {
		snapshots, err := store.NewDuckDBStore(config.SnapshotDir, log)
		if err != nil {
			return nil, fmt.Errorf("failed to setup snapshot store: %w", err)
		}

		snapshotLayer = provider.NewSnapshotProvider(layered, snapshots, log)
		layered = snapshotLayer
	}

	return &Client{
		upstream:  upstream,
		snapshots: snapshotLayer,
		cache:     provider.NewCachedProvider(layered, config.CacheTTL, log),
		logger:    log,
	}, nil
}

// Name implements provider.Provider.
func (c *Client) Name() provider.ProviderType {
	return c.upstream.Name()
}

// Fetch implements provider.Provider.
func (c *Client) Fetch(ctx context.Context, ticker string, lookbackYears int) (types.PriceSeries, error) {
	return c.cache.Fetch(ctx, ticker, lookbackYears)
}

// Refresh drops the in-memory entry and today's snapshot so the next Fetch goes upstream.
func (c *Client) Refresh(ticker string, lookbackYears int) {
	if c.snapshots != nil {
		c.snapshots.Invalidate(ticker, lookbackYears)
	}

	c.cache.Invalidate(ticker, lookbackYears)
}
