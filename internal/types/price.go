package types

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/lrs-signal/pkg/errors"
)

// PricePoint is a single daily close.
type PricePoint struct {
	// Date is the trading date, truncated to midnight UTC.
	Date time.Time `json:"date"`
	// Close is the closing price; always positive.
	Close float64 `json:"close"`
}

// PriceSeries is an ordered sequence of daily closes, oldest first.
// Dates are strictly increasing and never duplicated.
type PriceSeries []PricePoint

// Len returns the number of observations.
func (s PriceSeries) Len() int {
	return len(s)
}

// Closes returns the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}

	return closes
}

// Last returns the most recent observation and false if the series is empty.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}

	return s[len(s)-1], true
}

// Validate reports the first point that breaks chronological order or carries a non-positive close.
func (s PriceSeries) Validate() error {
	for i, p := range s {
		if p.Close <= 0 {
			return errors.Newf(errors.ErrCodeInvalidSeries, "non-positive close %v at %s", p.Close, p.Date.Format(DateLayout))
		}

		if i > 0 && !p.Date.After(s[i-1].Date) {
			return errors.Newf(errors.ErrCodeInvalidSeries, "date %s does not follow %s",
				p.Date.Format(DateLayout), s[i-1].Date.Format(DateLayout))
		}
	}

	return nil
}

// DateLayout is the calendar date layout used for display and storage keys.
const DateLayout = "2006-01-02"

// TradingDate truncates t to its UTC calendar date.
func TradingDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// String implements fmt.Stringer.
func (p PricePoint) String() string {
	return fmt.Sprintf("%s %.2f", p.Date.Format(DateLayout), p.Close)
}
