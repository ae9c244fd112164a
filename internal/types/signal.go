package types

import (
	"time"

	"github.com/moznion/go-optional"
)

type SignalType string

const (
	// SignalTypeLeverage means the latest close is above its moving average: hold the leveraged position.
	SignalTypeLeverage SignalType = "LEVERAGE"
	// SignalTypeCash means the latest close is at or below its moving average: move to cash.
	SignalTypeCash SignalType = "CASH"
)

// SignalResult is the outcome of one signal computation.
type SignalResult struct {
	// Date is the trading date of the last observation
	Date time.Time `json:"date"`
	// Close is the last closing price
	Close float64 `json:"close"`
	// SMA is the moving average over the trailing window, evaluated at the last observation
	SMA float64 `json:"sma"`
	// Window is the number of observations averaged
	Window int `json:"window"`
	// Signal is the leverage/cash decision
	Signal SignalType `json:"signal"`
}

// OverlayPoint pairs a close with the moving average ending at the same date.
// SMA is None until the window has filled.
type OverlayPoint struct {
	Date  time.Time
	Close float64
	SMA   optional.Option[float64]
}
