package indicator

import (
	"fmt"
	"math"
	"slices"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/lrs-signal/internal/types"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
)

// DefaultPeriod is the moving average window used when none is configured.
const DefaultPeriod = 200

// SupportedPeriods are the windows offered to users.
var SupportedPeriods = []int{10, 20, 50, 100, 200}

// IsSupportedPeriod reports whether period is one of SupportedPeriods.
func IsSupportedPeriod(period int) bool {
	return slices.Contains(SupportedPeriods, period)
}

// MA indicator implements Simple Moving Average calculation.
type MA struct {
	period int
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		period: DefaultPeriod,
	}
}

// NewMAWithPeriod creates a new MA indicator with the given period.
func NewMAWithPeriod(period int) (*MA, error) {
	ma := &MA{period: DefaultPeriod}
	if err := ma.Config(period); err != nil {
		return nil, err
	}

	return ma, nil
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Period returns the configured window length.
func (m *MA) Period() int {
	return m.period
}

// Expected parameters: period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return fmt.Errorf("Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		periodFloat, ok := params[0].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidPeriod, "invalid type for period parameter, expected int or float")
		}

		if math.IsInf(periodFloat, 0) || periodFloat != math.Trunc(periodFloat) {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a whole number, got %v", periodFloat)
		}

		period = int(periodFloat)
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	m.period = period

	return nil
}

// RawValue returns the mean of the last period closes.
// A series shorter than the period fails with an InsufficientDataError.
func (m *MA) RawValue(series types.PriceSeries) (float64, error) {
	n := len(series)
	if n == 0 || n < m.period {
		return 0, errors.NewInsufficientDataError(m.period, n, "")
	}

	return calculateSimpleMovingAverage(series[n-m.period:]), nil
}

// Overlay returns one point per observation, with the SMA of the window ending there.
// Points before the window fills carry no SMA.
func (m *MA) Overlay(series types.PriceSeries) []types.OverlayPoint {
	points := make([]types.OverlayPoint, len(series))

	for i, p := range series {
		points[i] = types.OverlayPoint{
			Date:  p.Date,
			Close: p.Close,
			SMA:   optional.None[float64](),
		}

		if i+1 >= m.period {
			points[i].SMA = optional.Some(calculateSimpleMovingAverage(series[i+1-m.period : i+1]))
		}
	}

	return points
}

func calculateSimpleMovingAverage(data types.PriceSeries) float64 {
	sum := 0.0
	for _, d := range data {
		sum += d.Close
	}

	return sum / float64(len(data))
}
