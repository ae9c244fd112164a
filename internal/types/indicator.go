package types

type IndicatorType string

const (
	IndicatorTypeMA IndicatorType = "ma"
)
