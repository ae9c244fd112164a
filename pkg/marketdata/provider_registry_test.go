package marketdata

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ProviderRegistryTestSuite struct {
	suite.Suite
}

func TestProviderRegistrySuite(t *testing.T) {
	suite.Run(t, new(ProviderRegistryTestSuite))
}

func (suite *ProviderRegistryTestSuite) TestGetSupportedProviders() {
	suite.Equal([]string{"alpaca", "binance", "polygon"}, GetSupportedProviders())
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo() {
	info, err := GetProviderInfo("polygon")
	suite.NoError(err)
	suite.Equal("Polygon.io", info.DisplayName)
	suite.True(info.RequiresAuth)
	suite.Equal([]string{"POLYGON_API_KEY"}, info.Credentials)

	info, err = GetProviderInfo("binance")
	suite.NoError(err)
	suite.False(info.RequiresAuth)
	suite.Empty(info.Credentials)

	info, err = GetProviderInfo("alpaca")
	suite.NoError(err)
	suite.Len(info.Credentials, 2)
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfoUnsupported() {
	_, err := GetProviderInfo("yahoo")
	suite.Error(err)
	suite.Contains(err.Error(), "unsupported provider: yahoo")
}
