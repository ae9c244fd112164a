package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/rxtech-lab/lrs-signal/internal/types"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
)

// AlpacaAPIClient abstracts the Alpaca market data client for testing.
type AlpacaAPIClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

type AlpacaClient struct {
	apiClient  AlpacaAPIClient
	feed       marketdata.Feed
	clock      func() time.Time
	onProgress OnFetchProgress
}

func NewAlpacaClient(apiKey string, apiSecret string, feed string) (Provider, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("apiKey and apiSecret are required")
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return NewAlpacaClientWithAPI(client, feed), nil
}

// NewAlpacaClientWithAPI creates an AlpacaClient backed by the given API client.
func NewAlpacaClientWithAPI(apiClient AlpacaAPIClient, feed string) *AlpacaClient {
	return &AlpacaClient{
		apiClient: apiClient,
		feed:      parseFeed(feed),
		clock:     time.Now,
	}
}

func (c *AlpacaClient) Name() ProviderType {
	return ProviderAlpaca
}

// Fetch downloads fully adjusted daily bars for ticker. The SDK pages internally
// and does not accept a context, so cancellation is only checked up front.
func (c *AlpacaClient) Fetch(ctx context.Context, ticker string, lookbackYears int) (series types.PriceSeries, err error) {
	defer func() { recordFetch(c.Name(), err) }()

	if err := ctx.Err(); err != nil {
		return nil, errors.NewDataUnavailableError(ticker, string(c.Name()), err)
	}

	startDate, endDate := LookbackRange(c.clock(), lookbackYears)
	expected := float64(lookbackYears * tradingDaysPerYear)

	reportProgress(c.onProgress, 0, expected, fmt.Sprintf("Fetching %s", ticker))

	//nolint:exhaustruct // third-party struct with many optional fields
	bars, err := c.apiClient.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      startDate,
		End:        endDate,
		Feed:       c.feed,
	})
	if err != nil {
		return nil, errors.NewDataUnavailableError(ticker, string(c.Name()),
			errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch bars from Alpaca", err))
	}

	points := make([]types.PricePoint, len(bars))
	for i, bar := range bars {
		points[i] = types.PricePoint{Date: bar.Timestamp, Close: bar.Close}
	}

	series = buildSeries(points)
	if len(series) == 0 {
		return nil, errors.NewDataUnavailableError(ticker, string(c.Name()),
			errors.Newf(errors.ErrCodeDataNotFound, "no daily bars between %s and %s",
				startDate.Format(types.DateLayout), endDate.Format(types.DateLayout)))
	}

	reportProgress(c.onProgress, float64(len(series)), float64(len(series)), fmt.Sprintf("Fetched %s", ticker))

	return series, nil
}

func parseFeed(feed string) marketdata.Feed {
	switch feed {
	case "sip":
		return marketdata.SIP
	default:
		return marketdata.IEX
	}
}
