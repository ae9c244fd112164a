package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/rxtech-lab/lrs-signal/internal/types"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
)

// binancePageSize is the maximum number of klines Binance returns per request.
const binancePageSize = 1000

// BinanceKlinesService is the subset of the klines request builder used here.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient abstracts the Binance client for testing.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceAPIAdapter struct {
	client *binance.Client
}

func (a *binanceAPIAdapter) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesAdapter{service: a.client.NewKlinesService()}
}

type binanceKlinesAdapter struct {
	service *binance.KlinesService
}

func (k *binanceKlinesAdapter) Symbol(symbol string) BinanceKlinesService {
	k.service.Symbol(symbol)
	return k
}

func (k *binanceKlinesAdapter) Interval(interval string) BinanceKlinesService {
	k.service.Interval(interval)
	return k
}

func (k *binanceKlinesAdapter) StartTime(startTime int64) BinanceKlinesService {
	k.service.StartTime(startTime)
	return k
}

func (k *binanceKlinesAdapter) EndTime(endTime int64) BinanceKlinesService {
	k.service.EndTime(endTime)
	return k
}

func (k *binanceKlinesAdapter) Limit(limit int) BinanceKlinesService {
	k.service.Limit(limit)
	return k
}

func (k *binanceKlinesAdapter) Do(ctx context.Context) ([]*binance.Kline, error) {
	return k.service.Do(ctx)
}

type BinanceClient struct {
	apiClient  BinanceAPIClient
	onProgress OnFetchProgress
	clock      func() time.Time
}

func NewBinanceClient() (Provider, error) {
	return NewBinanceClientWithAPI(&binanceAPIAdapter{client: binance.NewClient("", "")}), nil
}

// NewBinanceClientWithAPI creates a BinanceClient backed by the given API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient:  apiClient,
		onProgress: nil,
		clock:      time.Now,
	}
}

func (c *BinanceClient) Name() ProviderType {
	return ProviderBinance
}

// Fetch downloads daily klines for ticker (e.g. BTCUSDT), paging through the
// lookback range. Binance public market data does not require authentication.
func (c *BinanceClient) Fetch(ctx context.Context, ticker string, lookbackYears int) (series types.PriceSeries, err error) {
	defer func() { recordFetch(c.Name(), err) }()

	startDate, endDate := LookbackRange(c.clock(), lookbackYears)
	startMillis := startDate.UnixMilli()
	endMillis := endDate.UnixMilli()

	currentStart := startMillis
	bars := make([]types.PricePoint, 0, lookbackYears*daysPerYear)

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval("1d").
			StartTime(currentStart).
			EndTime(endMillis).
			Limit(binancePageSize).
			Do(ctx)
		if err != nil {
			return nil, errors.NewDataUnavailableError(ticker, string(c.Name()),
				errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch klines from Binance", err))
		}

		for _, k := range klines {
			closePrice, err := strconv.ParseFloat(k.Close, 64)
			if err != nil {
				return nil, errors.NewDataUnavailableError(ticker, string(c.Name()),
					errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid close %q", k.Close))
			}

			bars = append(bars, types.PricePoint{Date: time.UnixMilli(k.OpenTime), Close: closePrice})
		}

		reportProgress(c.onProgress, float64(currentStart-startMillis), float64(endMillis-startMillis),
			fmt.Sprintf("Fetching %s klines from Binance", ticker))

		if len(klines) < binancePageSize {
			break
		}

		// Resume after the close of the last kline to avoid duplicates
		currentStart = klines[len(klines)-1].CloseTime + 1
		if currentStart >= endMillis {
			break
		}
	}

	series = buildSeries(bars)
	if len(series) == 0 {
		return nil, errors.NewDataUnavailableError(ticker, string(c.Name()),
			errors.Newf(errors.ErrCodeDataNotFound, "no daily klines between %s and %s",
				startDate.Format(types.DateLayout), endDate.Format(types.DateLayout)))
	}

	return series, nil
}
