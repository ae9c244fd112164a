// Package report turns a fetched price series into a presentable signal report.
package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/lrs-signal/internal/engine"
	"github.com/rxtech-lab/lrs-signal/internal/indicator"
	"github.com/rxtech-lab/lrs-signal/internal/logger"
	"github.com/rxtech-lab/lrs-signal/internal/metrics"
	"github.com/rxtech-lab/lrs-signal/internal/types"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
	"github.com/rxtech-lab/lrs-signal/pkg/marketdata/provider"
)

// Report is the signal for one ticker and window, with the chart series behind it.
type Report struct {
	Ticker        string
	Window        int
	LookbackYears int
	Provider      provider.ProviderType
	Result        types.SignalResult
	Overlay       []types.OverlayPoint
	Explanation   string
	GeneratedAt   time.Time
}

// Service fetches the configured ticker and computes reports for any supported window.
type Service struct {
	provider      provider.Provider
	ticker        string
	lookbackYears int
	logger        *logger.Logger
	clock         func() time.Time
}

// NewService creates a new report service.
func NewService(p provider.Provider, ticker string, lookbackYears int, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Service{
		provider:      p,
		ticker:        ticker,
		lookbackYears: lookbackYears,
		logger:        log,
		clock:         time.Now,
	}
}

// Ticker returns the ticker the service reports on.
func (s *Service) Ticker() string {
	return s.ticker
}

// Build fetches the price series and computes the signal for window.
// A fetch failure is returned as is and no signal is computed.
// A series shorter than window fails with *errors.InsufficientDataError naming the ticker.
func (s *Service) Build(ctx context.Context, window int) (*Report, error) {
	if !indicator.IsSupportedPeriod(window) {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "unsupported window %d, expected one of %v", window, indicator.SupportedPeriods)
	}

	series, err := s.provider.Fetch(ctx, s.ticker, s.lookbackYears)
	if err != nil {
		s.logger.Warn("Failed to fetch price series", zap.String("ticker", s.ticker), zap.Error(err))

		return nil, err
	}

	result, err := engine.ComputeSignal(series, window)
	if err != nil {
		var insufficient *errors.InsufficientDataError
		if errors.As(err, &insufficient) {
			insufficient.Symbol = s.ticker
		}

		return nil, err
	}

	ma, err := indicator.NewMAWithPeriod(window)
	if err != nil {
		return nil, err
	}

	metrics.SignalsTotal.WithLabelValues(string(result.Signal)).Inc()
	s.logger.Info("Computed signal",
		zap.String("ticker", s.ticker),
		zap.Int("window", window),
		zap.String("date", result.Date.Format(types.DateLayout)),
		zap.Float64("close", result.Close),
		zap.Float64("sma", result.SMA),
		zap.String("signal", string(result.Signal)),
	)

	return &Report{
		Ticker:        s.ticker,
		Window:        window,
		LookbackYears: s.lookbackYears,
		Provider:      s.provider.Name(),
		Result:        result,
		Overlay:       ma.Overlay(series),
		Explanation:   Explanation(result),
		GeneratedAt:   s.clock(),
	}, nil
}

// Explanation describes what the signal means for the next trading day.
func Explanation(result types.SignalResult) string {
	if result.Signal == types.SignalTypeLeverage {
		return fmt.Sprintf("The closing price is above the %d-day SMA, suggesting an uptrend. "+
			"The strategy indicates holding a leveraged position.", result.Window)
	}

	return fmt.Sprintf("The closing price is not above the %d-day SMA, suggesting a downtrend or higher volatility. "+
		"The strategy indicates moving to a risk-off position (cash).", result.Window)
}

// SignalLabel is the headline shown for a signal.
func SignalLabel(signal types.SignalType) string {
	if signal == types.SignalTypeLeverage {
		return "LEVERAGE"
	}

	return "CASH / DELEVERAGE"
}

// InsufficientMessage explains a short series in terms of the moving average that could not be computed.
func InsufficientMessage(err *errors.InsufficientDataError) string {
	return fmt.Sprintf("Could not fetch sufficient data to calculate a %d-day moving average: "+
		"%d daily closes required, %d available.", err.Required, err.Required, err.Available)
}

// Disclaimer is appended to every rendered report.
const Disclaimer = "Disclaimer: This is not financial advice. This tool is for educational purposes only, " +
	"based on the rules of a specific trading strategy. Past performance is not indicative of future results."
