package engine

import (
	"testing"
	"time"

	"github.com/rxtech-lab/lrs-signal/internal/types"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

var start = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func seriesOf(closes ...float64) types.PriceSeries {
	series := make(types.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = types.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}

	return series
}

func (suite *EngineTestSuite) TestRisingSeriesIsLeverage() {
	result, err := ComputeSignal(seriesOf(10, 12, 14, 16, 18), 3)
	suite.Require().NoError(err)

	suite.Equal(16.0, result.SMA)
	suite.Equal(18.0, result.Close)
	suite.Equal(start.AddDate(0, 0, 4), result.Date)
	suite.Equal(3, result.Window)
	suite.Equal(types.SignalTypeLeverage, result.Signal)
}

func (suite *EngineTestSuite) TestFallingSeriesIsCash() {
	result, err := ComputeSignal(seriesOf(20, 18, 16, 14, 10), 3)
	suite.Require().NoError(err)

	suite.InDelta(13.3333333, result.SMA, 1e-6)
	suite.Equal(10.0, result.Close)
	suite.Equal(types.SignalTypeCash, result.Signal)
}

func (suite *EngineTestSuite) TestEqualityIsCash() {
	result, err := ComputeSignal(seriesOf(5, 5, 5), 3)
	suite.Require().NoError(err)

	suite.Equal(5.0, result.SMA)
	suite.Equal(5.0, result.Close)
	suite.Equal(types.SignalTypeCash, result.Signal)
}

func (suite *EngineTestSuite) TestInsufficientData() {
	result, err := ComputeSignal(seriesOf(1, 2), 5)
	suite.Error(err)
	suite.Equal(types.SignalResult{}, result)

	var insufficient *errors.InsufficientDataError
	suite.Require().True(errors.As(err, &insufficient))
	suite.Equal(5, insufficient.Required)
	suite.Equal(2, insufficient.Available)
}

func (suite *EngineTestSuite) TestEmptySeries() {
	for _, series := range []types.PriceSeries{nil, {}} {
		_, err := ComputeSignal(series, 1)
		suite.True(errors.IsInsufficientDataError(err))

		var insufficient *errors.InsufficientDataError
		suite.Require().True(errors.As(err, &insufficient))
		suite.Equal(0, insufficient.Available)
	}
}

func (suite *EngineTestSuite) TestWindowEqualToLength() {
	result, err := ComputeSignal(seriesOf(1, 2, 3, 4, 10), 5)
	suite.Require().NoError(err)
	suite.Equal(4.0, result.SMA)
	suite.Equal(types.SignalTypeLeverage, result.Signal)
}

func (suite *EngineTestSuite) TestInvalidWindow() {
	for _, window := range []int{0, -1} {
		_, err := ComputeSignal(seriesOf(1, 2, 3), window)
		suite.Error(err)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
		suite.False(errors.IsInsufficientDataError(err))
	}
}

func (suite *EngineTestSuite) TestUsesOnlyTrailingWindow() {
	base := seriesOf(1e6, -1, 7, 8, 9)
	result, err := ComputeSignal(base, 3)
	suite.Require().NoError(err)
	suite.Equal(8.0, result.SMA)

	changed := seriesOf(3, 42, 7, 8, 9)
	other, err := ComputeSignal(changed, 3)
	suite.Require().NoError(err)
	suite.Equal(result.SMA, other.SMA)
	suite.Equal(result.Signal, other.Signal)
}

func (suite *EngineTestSuite) TestMeanOfLastWindow() {
	closes := []float64{431.12, 432.5, 429.87, 433.01, 435.66, 436.2, 434.9, 437.45, 438.0, 436.75}
	series := seriesOf(closes...)

	for window := 1; window <= len(closes); window++ {
		result, err := ComputeSignal(series, window)
		suite.Require().NoError(err)

		sum := decimal.Zero
		for _, c := range closes[len(closes)-window:] {
			sum = sum.Add(decimal.NewFromFloat(c))
		}

		expected, _ := sum.Div(decimal.NewFromInt(int64(window))).Float64()
		suite.InDelta(expected, result.SMA, 1e-9, "window %d", window)
	}
}

func (suite *EngineTestSuite) TestDeterministic() {
	series := seriesOf(101.3, 99.7, 100.1, 102.9, 98.4, 97.2, 103.3)

	first, err := ComputeSignal(series, 4)
	suite.Require().NoError(err)

	second, err := ComputeSignal(series, 4)
	suite.Require().NoError(err)

	suite.Equal(first, second)
}

func (suite *EngineTestSuite) TestDoesNotMutateSeries() {
	series := seriesOf(3, 1, 2)
	snapshot := append(types.PriceSeries(nil), series...)

	_, err := ComputeSignal(series, 2)
	suite.NoError(err)
	suite.Equal(snapshot, series)
}

func (suite *EngineTestSuite) TestClassify() {
	suite.Equal(types.SignalTypeLeverage, Classify(101, 100))
	suite.Equal(types.SignalTypeCash, Classify(99, 100))
	suite.Equal(types.SignalTypeCash, Classify(100, 100))
}
