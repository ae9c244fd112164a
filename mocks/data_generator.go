package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/lrs-signal/internal/types"
)

// DataGenerator generates realistic daily close series for testing.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a price series is generated.
type GeneratorConfig struct {
	// StartDate is the first trading date of the series
	StartDate time.Time
	// Count is the number of trading days to generate
	Count int
	// InitialPrice is the first close
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// SkipWeekends leaves Saturdays and Sundays out of the series
	SkipWeekends bool
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartDate:    time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		Count:        252,
		InitialPrice: 320.0,
		Volatility:   0.012,
		Trend:        0.0,
		SkipWeekends: true,
	}
}

// Generate creates a PriceSeries following a geometric Brownian motion model.
// Dates strictly increase and every close is positive.
func (g *DataGenerator) Generate(config GeneratorConfig) types.PriceSeries {
	series := make(types.PriceSeries, 0, config.Count)
	currentPrice := config.InitialPrice
	currentDate := types.TradingDate(config.StartDate)

	for len(series) < config.Count {
		if config.SkipWeekends && isWeekend(currentDate) {
			currentDate = currentDate.AddDate(0, 0, 1)
			continue
		}

		series = append(series, types.PricePoint{
			Date:  currentDate,
			Close: roundToDecimals(currentPrice, 2),
		})

		// Box-Muller transform for normal distribution
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)
		next := currentPrice * (1 + config.Volatility*z + drift)
		if next <= 0.01 {
			next = currentPrice * 0.99
		}

		currentPrice = next
		currentDate = currentDate.AddDate(0, 0, 1)
	}

	return series
}

// Linear returns count consecutive daily points whose closes start at first
// and change by step each day.
func Linear(start time.Time, count int, first, step float64) types.PriceSeries {
	series := make(types.PriceSeries, count)
	for i := range series {
		series[i] = types.PricePoint{
			Date:  types.TradingDate(start).AddDate(0, 0, i),
			Close: first + step*float64(i),
		}
	}

	return series
}

// GenerateYears is a convenience function returning years of trading days
// with default settings.
func GenerateYears(years int) types.PriceSeries {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = years * 252

	return gen.Generate(config)
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
