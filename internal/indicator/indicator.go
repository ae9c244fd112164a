package indicator

import (
	"github.com/rxtech-lab/lrs-signal/internal/types"
)

// Indicator interface defines methods that a price-series indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config configures the indicator parameters
	Config(params ...any) error
	// RawValue returns the indicator value evaluated at the last observation of the series
	RawValue(series types.PriceSeries) (float64, error)
	// Overlay returns the indicator evaluated at every observation of the series
	Overlay(series types.PriceSeries) []types.OverlayPoint
}
