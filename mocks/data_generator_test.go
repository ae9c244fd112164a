package mocks

import (
	"testing"
	"time"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 100

	data := gen.Generate(config)

	if len(data) != 100 {
		t.Errorf("expected 100 data points, got %d", len(data))
	}

	if err := data.Validate(); err != nil {
		t.Errorf("generated series is invalid: %v", err)
	}

	for i, d := range data {
		if isWeekend(d.Date) {
			t.Errorf("weekend date at index %d: %s", i, d.Date)
		}
	}

	if data[0].Close != config.InitialPrice {
		t.Errorf("expected first close %f, got %f", config.InitialPrice, data[0].Close)
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	// Same seed should produce same results
	gen1 := NewDataGenerator(42)
	gen2 := NewDataGenerator(42)

	config := DefaultConfig()
	config.Count = 10

	data1 := gen1.Generate(config)
	data2 := gen2.Generate(config)

	for i := range data1 {
		if data1[i].Close != data2[i].Close {
			t.Errorf("data not reproducible at index %d: got %f and %f",
				i, data1[i].Close, data2[i].Close)
		}
	}
}

func TestDataGenerator_Different_Seeds(t *testing.T) {
	gen1 := NewDataGenerator(42)
	gen2 := NewDataGenerator(123)

	config := DefaultConfig()
	config.Count = 10

	data1 := gen1.Generate(config)
	data2 := gen2.Generate(config)

	// The first close is the initial price for both
	sameCount := 0
	for i := range data1 {
		if data1[i].Close == data2[i].Close {
			sameCount++
		}
	}

	if sameCount == len(data1) {
		t.Error("different seeds produced identical data")
	}
}

func TestLinear(t *testing.T) {
	start := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)
	data := Linear(start, 5, 100, 2)

	if len(data) != 5 {
		t.Fatalf("expected 5 data points, got %d", len(data))
	}

	if data[4].Close != 108 {
		t.Errorf("expected last close 108, got %f", data[4].Close)
	}

	if !data[0].Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected truncated first date, got %s", data[0].Date)
	}

	if err := data.Validate(); err != nil {
		t.Errorf("linear series is invalid: %v", err)
	}
}

func TestGenerateYears(t *testing.T) {
	data := GenerateYears(5)

	if len(data) != 5*252 {
		t.Errorf("expected %d data points, got %d", 5*252, len(data))
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Count != 252 {
		t.Errorf("expected default count 252, got %d", config.Count)
	}

	if !config.SkipWeekends {
		t.Error("expected weekends to be skipped by default")
	}

	if config.InitialPrice != 320.0 {
		t.Errorf("expected default initial price 320.0, got %f", config.InitialPrice)
	}
}
