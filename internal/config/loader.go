package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/lrs-signal/pkg/errors"
	"github.com/rxtech-lab/lrs-signal/pkg/marketdata/provider"
)

// Environment variables read by Load.
const (
	EnvPolygonApiKey   = "POLYGON_API_KEY"
	EnvAlpacaApiKey    = "APCA_API_KEY_ID"
	EnvAlpacaApiSecret = "APCA_API_SECRET_KEY"
	EnvTicker          = "LRS_TICKER"
	EnvWindow          = "LRS_WINDOW"
	EnvLookbackYears   = "LRS_LOOKBACK_YEARS"
	EnvProvider        = "LRS_PROVIDER"
	EnvAlpacaFeed      = "LRS_ALPACA_FEED"
	EnvCacheTTL        = "LRS_CACHE_TTL"
	EnvSnapshotDir     = "LRS_SNAPSHOT_DIR"
	EnvServerAddr      = "LRS_SERVER_ADDR"
	EnvLogLevel        = "LRS_LOG_LEVEL"
)

// Load reads the YAML file at path (optional), merges it on top of the built-in
// defaults, loads .env files and applies environment variable overrides.
// With no envFiles, a .env in the working directory is loaded if present.
// The returned Config has NOT been validated.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to load env file", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Write stores cfg as YAML at path.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode config", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides copies set environment variables into cfg.
// A value that does not parse fails with ErrCodeInvalidConfiguration.
func applyEnvOverrides(cfg *Config) error {
	setStr(&cfg.PolygonApiKey, EnvPolygonApiKey)
	setStr(&cfg.AlpacaApiKey, EnvAlpacaApiKey)
	setStr(&cfg.AlpacaApiSecret, EnvAlpacaApiSecret)

	setStr(&cfg.Ticker, EnvTicker)
	setProvider(&cfg.Provider, EnvProvider)
	setStr(&cfg.AlpacaFeed, EnvAlpacaFeed)
	setStr(&cfg.SnapshotDir, EnvSnapshotDir)
	setStr(&cfg.ServerAddr, EnvServerAddr)
	setStr(&cfg.LogLevel, EnvLogLevel)

	if err := setInt(&cfg.Window, EnvWindow); err != nil {
		return err
	}

	if err := setInt(&cfg.LookbackYears, EnvLookbackYears); err != nil {
		return err
	}

	return setDuration(&cfg.CacheTTL, EnvCacheTTL)
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid %s %q, expected an integer", key, v)
	}

	*dst = n

	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid %s %q, expected a duration such as 30m", key, v)
	}

	*dst = d

	return nil
}

func setProvider(dst *provider.ProviderType, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = provider.ProviderType(strings.ToLower(v))
	}
}
