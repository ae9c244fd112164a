package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/lrs-signal/pkg/marketdata/provider Provider
