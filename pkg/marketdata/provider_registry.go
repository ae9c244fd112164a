package marketdata

import (
	"fmt"
	"slices"

	"github.com/rxtech-lab/lrs-signal/pkg/marketdata/provider"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string   `json:"name"`
	DisplayName  string   `json:"displayName"`
	Description  string   `json:"description"`
	RequiresAuth bool     `json:"requiresAuth"`
	Credentials  []string `json:"credentials,omitempty"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[provider.ProviderType]ProviderInfo{
	provider.ProviderPolygon: {
		Name:         string(provider.ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock market data provider with split and dividend adjusted daily aggregates",
		RequiresAuth: true,
		Credentials:  []string{"POLYGON_API_KEY"},
	},
	provider.ProviderBinance: {
		Name:         string(provider.ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange with daily klines for crypto trading pairs",
		RequiresAuth: false,
	},
	provider.ProviderAlpaca: {
		Name:         string(provider.ProviderAlpaca),
		DisplayName:  "Alpaca",
		Description:  "US stock market data with fully adjusted daily bars (IEX or SIP feed)",
		RequiresAuth: true,
		Credentials:  []string{"APCA_API_KEY_ID", "APCA_API_SECRET_KEY"},
	},
}

// GetSupportedProviders returns the names of all supported providers, sorted.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	slices.Sort(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[provider.ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, fmt.Errorf("unsupported provider: %s", providerName)
	}

	return info, nil
}
