package config

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"

	"github.com/rxtech-lab/lrs-signal/internal/indicator"
	"github.com/rxtech-lab/lrs-signal/internal/version"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
	"github.com/rxtech-lab/lrs-signal/pkg/marketdata"
	"github.com/rxtech-lab/lrs-signal/pkg/marketdata/provider"
)

const (
	DefaultTicker        = "SPY"
	DefaultLookbackYears = 5
	DefaultServerAddr    = ":8080"
	DefaultLogLevel      = "info"
)

// Config is the runtime configuration of lrs-signal.
// Credentials are read from the environment only and never from the config file.
type Config struct {
	Version       string                `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,description=Minimum lrs-signal version this file was written for"`
	Ticker        string                `yaml:"ticker" json:"ticker" jsonschema:"title=Ticker,description=Symbol the signal is computed for,default=SPY" validate:"required,max=16"`
	Window        int                   `yaml:"window" json:"window" jsonschema:"title=Window,description=Moving average period in trading days,enum=10,enum=20,enum=50,enum=100,enum=200,default=200" validate:"oneof=10 20 50 100 200"`
	LookbackYears int                   `yaml:"lookback_years" json:"lookback_years" jsonschema:"title=Lookback Years,description=Years of daily history to fetch,minimum=1,default=5" validate:"min=1,max=50"`
	Provider      provider.ProviderType `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Market data provider,enum=polygon,enum=binance,enum=alpaca,default=polygon" validate:"required,oneof=polygon binance alpaca"`
	AlpacaFeed    string                `yaml:"alpaca_feed,omitempty" json:"alpaca_feed,omitempty" jsonschema:"title=Alpaca Feed,description=Alpaca market data feed,enum=iex,enum=sip" validate:"omitempty,oneof=iex sip"`
	CacheTTL      time.Duration         `yaml:"cache_ttl" json:"cache_ttl" jsonschema:"title=Cache TTL,description=How long a fetched series is reused in memory (e.g. 1h)" validate:"gt=0"`
	SnapshotDir   string                `yaml:"snapshot_dir,omitempty" json:"snapshot_dir,omitempty" jsonschema:"title=Snapshot Directory,description=Directory for daily Parquet snapshots; empty disables snapshots"`
	ServerAddr    string                `yaml:"server_addr" json:"server_addr" jsonschema:"title=Server Address,description=Listen address of the HTTP API,default=:8080" validate:"required"`
	LogLevel      string                `yaml:"log_level" json:"log_level" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"oneof=debug info warn error"`

	PolygonApiKey   string `yaml:"-" json:"-" validate:"required_if=Provider polygon"`
	AlpacaApiKey    string `yaml:"-" json:"-" validate:"required_if=Provider alpaca"`
	AlpacaApiSecret string `yaml:"-" json:"-" validate:"required_if=Provider alpaca"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Ticker:        DefaultTicker,
		Window:        indicator.DefaultPeriod,
		LookbackYears: DefaultLookbackYears,
		Provider:      provider.ProviderPolygon,
		CacheTTL:      provider.DefaultCacheTTL,
		ServerAddr:    DefaultServerAddr,
		LogLevel:      DefaultLogLevel,
	}
}

// Validate checks field constraints and the version pin.
func (c *Config) Validate() error {
	c.Ticker = strings.ToUpper(strings.TrimSpace(c.Ticker))

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if c.Version != "" {
		if err := version.CheckVersionCompatibility(version.GetVersion(), c.Version); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidVersion, "incompatible config version", err)
		}
	}

	return nil
}

// ClientConfig returns the market data client configuration.
func (c *Config) ClientConfig() marketdata.ClientConfig {
	return marketdata.ClientConfig{
		ProviderType:    c.Provider,
		PolygonApiKey:   c.PolygonApiKey,
		AlpacaApiKey:    c.AlpacaApiKey,
		AlpacaApiSecret: c.AlpacaApiSecret,
		AlpacaFeed:      c.AlpacaFeed,
		SnapshotDir:     c.SnapshotDir,
		CacheTTL:        c.CacheTTL,
	}
}

// GenerateSchema generates a JSON schema for the config file.
func GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(time.Duration(0)) {
				return &jsonschema.Schema{
					Type:    "string",
					Pattern: `^([0-9]+(\.[0-9]+)?(ns|us|ms|s|m|h))+$`,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "lrs-signal-config"
	schema.Description = "Configuration schema for lrs-signal"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// SchemaJSON returns the indented JSON schema of the config file.
func SchemaJSON() (string, error) {
	schema, err := GenerateSchema()
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
