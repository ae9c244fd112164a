package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	lrserrors "github.com/rxtech-lab/lrs-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type mockAlpacaAPIClient struct {
	bars    []marketdata.Bar
	err     error
	symbol  string
	request marketdata.GetBarsRequest
	calls   int
}

func (m *mockAlpacaAPIClient) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	m.calls++
	m.symbol = symbol
	m.request = req

	return m.bars, m.err
}

type AlpacaClientTestSuite struct {
	suite.Suite
	now time.Time
}

func TestAlpacaClientSuite(t *testing.T) {
	suite.Run(t, new(AlpacaClientTestSuite))
}

func (suite *AlpacaClientTestSuite) SetupTest() {
	suite.now = time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC)
}

func (suite *AlpacaClientTestSuite) newClient(api *mockAlpacaAPIClient, feed string) *AlpacaClient {
	client := NewAlpacaClientWithAPI(api, feed)
	client.clock = func() time.Time { return suite.now }

	return client
}

func (suite *AlpacaClientTestSuite) TestNewAlpacaClientRequiresCredentials() {
	_, err := NewAlpacaClient("", "secret", "iex")
	suite.Error(err)

	_, err = NewAlpacaClient("key", "", "iex")
	suite.Error(err)

	client, err := NewAlpacaClient("key", "secret", "sip")
	suite.Require().NoError(err)
	suite.Equal(ProviderAlpaca, client.Name())
	suite.Equal(marketdata.SIP, client.(*AlpacaClient).feed)
}

func (suite *AlpacaClientTestSuite) TestFetch() {
	api := &mockAlpacaAPIClient{bars: []marketdata.Bar{
		{Timestamp: time.Date(2025, 1, 8, 5, 0, 0, 0, time.UTC), Close: 589.49},
		{Timestamp: time.Date(2025, 1, 10, 5, 0, 0, 0, time.UTC), Close: 580.49},
	}}

	series, err := suite.newClient(api, "").Fetch(context.Background(), "SPY", 5)
	suite.Require().NoError(err)
	suite.Len(series, 2)
	suite.Equal(time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), series[0].Date)
	suite.Equal(580.49, series[1].Close)

	suite.Equal("SPY", api.symbol)
	suite.Equal(marketdata.OneDay, api.request.TimeFrame)
	suite.Equal(marketdata.All, api.request.Adjustment)
	suite.Equal(marketdata.IEX, api.request.Feed)
	suite.Equal(suite.now, api.request.End)
	suite.Equal(suite.now.AddDate(0, 0, -5*365), api.request.Start)
}

func (suite *AlpacaClientTestSuite) TestFetchReportsProgress() {
	api := &mockAlpacaAPIClient{bars: []marketdata.Bar{
		{Timestamp: time.Date(2025, 1, 8, 5, 0, 0, 0, time.UTC), Close: 589.49},
		{Timestamp: time.Date(2025, 1, 10, 5, 0, 0, 0, time.UTC), Close: 580.49},
	}}

	type tick struct {
		current, total float64
		message        string
	}

	var ticks []tick

	client := suite.newClient(api, "")
	client.onProgress = func(current float64, total float64, message string) {
		ticks = append(ticks, tick{current, total, message})
	}

	_, err := client.Fetch(context.Background(), "SPY", 5)
	suite.Require().NoError(err)

	suite.Require().Len(ticks, 2)
	suite.Equal(tick{0, 5 * tradingDaysPerYear, "Fetching SPY"}, ticks[0])
	suite.Equal(tick{2, 2, "Fetched SPY"}, ticks[1])
}

func (suite *AlpacaClientTestSuite) TestFetchError() {
	api := &mockAlpacaAPIClient{err: errors.New("forbidden")}

	_, err := suite.newClient(api, "iex").Fetch(context.Background(), "SPY", 5)
	suite.True(lrserrors.IsDataUnavailableError(err))
	suite.Contains(err.Error(), "forbidden")
}

func (suite *AlpacaClientTestSuite) TestFetchCancelledContext() {
	api := &mockAlpacaAPIClient{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.newClient(api, "iex").Fetch(ctx, "SPY", 5)
	suite.True(lrserrors.IsDataUnavailableError(err))
	suite.ErrorIs(err, context.Canceled)
	suite.Equal(0, api.calls)
}

func (suite *AlpacaClientTestSuite) TestFetchEmpty() {
	_, err := suite.newClient(&mockAlpacaAPIClient{}, "iex").Fetch(context.Background(), "SPY", 5)
	suite.True(lrserrors.IsDataUnavailableError(err))
	suite.Contains(err.Error(), "no daily bars")
}
