package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/lrs-signal/internal/types"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
)

// PolygonAggsIterator is the subset of the polygon aggregates iterator used here.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient abstracts the polygon REST client for testing.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonAPIAdapter struct {
	client *polygon.Client
}

func (a *polygonAPIAdapter) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return a.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient  PolygonAPIClient
	onProgress OnFetchProgress
	clock      func() time.Time
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonAPIAdapter{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a PolygonClient backed by the given API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient:  apiClient,
		onProgress: nil,
		clock:      time.Now,
	}
}

func (c *PolygonClient) Name() ProviderType {
	return ProviderPolygon
}

// Fetch downloads split/dividend adjusted daily aggregates for ticker.
func (c *PolygonClient) Fetch(ctx context.Context, ticker string, lookbackYears int) (series types.PriceSeries, err error) {
	defer func() { recordFetch(c.Name(), err) }()

	startDate, endDate := LookbackRange(c.clock(), lookbackYears)
	expected := float64(lookbackYears * tradingDaysPerYear)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithAdjusted(true).WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	bars := make([]types.PricePoint, 0, int(expected))
	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, types.PricePoint{
			Date:  time.Time(agg.Timestamp),
			Close: agg.Close,
		})

		if len(bars)%100 == 0 {
			reportProgress(c.onProgress, float64(len(bars)), expected, fmt.Sprintf("Fetching %s", ticker))
		}
	}

	if iter.Err() != nil {
		return nil, errors.NewDataUnavailableError(ticker, string(c.Name()),
			errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "error iterating polygon aggregates", iter.Err()))
	}

	series = buildSeries(bars)
	if len(series) == 0 {
		return nil, errors.NewDataUnavailableError(ticker, string(c.Name()),
			errors.Newf(errors.ErrCodeDataNotFound, "no daily aggregates between %s and %s",
				startDate.Format(types.DateLayout), endDate.Format(types.DateLayout)))
	}

	reportProgress(c.onProgress, float64(len(series)), float64(len(series)), fmt.Sprintf("Fetched %s", ticker))

	return series, nil
}
