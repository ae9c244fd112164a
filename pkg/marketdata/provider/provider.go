package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/lrs-signal/internal/metrics"
	"github.com/rxtech-lab/lrs-signal/internal/types"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderAlpaca  ProviderType = "alpaca"
)

// OnFetchProgress is called while a provider pages through upstream bars.
type OnFetchProgress = func(current float64, total float64, message string)

// daysPerYear is the lookback unit: N years is N*365 calendar days.
const daysPerYear = 365

// tradingDaysPerYear is used for progress estimates only.
const tradingDaysPerYear = 252

type Provider interface {
	// Name identifies the provider in logs, metrics and errors.
	Name() ProviderType
	// Fetch returns the daily closes of ticker for the last lookbackYears years, oldest first.
	// Any failure is reported as *errors.DataUnavailableError.
	// example:
	// Fetch(ctx, "SPY", 5)
	Fetch(ctx context.Context, ticker string, lookbackYears int) (types.PriceSeries, error)
}

// LookbackRange returns the [start, end] interval covering lookbackYears years up to now.
func LookbackRange(now time.Time, lookbackYears int) (start time.Time, end time.Time) {
	end = now

	return end.AddDate(0, 0, -lookbackYears*daysPerYear), end
}

// buildSeries converts raw bars into a PriceSeries. Bars are truncated to their
// UTC trading date; bars that do not advance the date or carry a non-positive
// close are dropped.
func buildSeries(bars []types.PricePoint) types.PriceSeries {
	series := make(types.PriceSeries, 0, len(bars))

	for _, bar := range bars {
		if bar.Close <= 0 {
			continue
		}

		point := types.PricePoint{Date: types.TradingDate(bar.Date), Close: bar.Close}
		if last, ok := series.Last(); ok && !point.Date.After(last.Date) {
			continue
		}

		series = append(series, point)
	}

	return series
}

func recordFetch(name ProviderType, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}

	metrics.FetchesTotal.WithLabelValues(string(name), outcome).Inc()
}

func reportProgress(onProgress OnFetchProgress, current float64, total float64, message string) {
	if onProgress == nil {
		return
	}

	if current > total {
		total = current
	}

	onProgress(current, total, message)
}
