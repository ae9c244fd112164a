// Package engine computes the leverage rotation signal from a daily close series.
package engine

import (
	"github.com/rxtech-lab/lrs-signal/internal/indicator"
	"github.com/rxtech-lab/lrs-signal/internal/types"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
)

// ComputeSignal compares the latest close against the simple moving average of
// the trailing window closes. A close strictly above the average yields LEVERAGE;
// anything else, including equality, yields CASH.
//
// The series must be chronological. It is neither reordered nor deduplicated.
// A series shorter than window fails with *errors.InsufficientDataError.
func ComputeSignal(series types.PriceSeries, window int) (types.SignalResult, error) {
	if window <= 0 {
		return types.SignalResult{}, errors.Newf(errors.ErrCodeInvalidPeriod, "window must be a positive integer, got %d", window)
	}

	ma, err := indicator.NewMAWithPeriod(window)
	if err != nil {
		return types.SignalResult{}, err
	}

	sma, err := ma.RawValue(series)
	if err != nil {
		return types.SignalResult{}, err
	}

	latest, _ := series.Last()

	return types.SignalResult{
		Date:   latest.Date,
		Close:  latest.Close,
		SMA:    sma,
		Window: window,
		Signal: Classify(latest.Close, sma),
	}, nil
}

// Classify applies the signal rule; ties resolve to CASH.
func Classify(close, sma float64) types.SignalType {
	if close > sma {
		return types.SignalTypeLeverage
	}

	return types.SignalTypeCash
}
