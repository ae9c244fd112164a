package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	ResultHit  = "hit"
	ResultMiss = "miss"
)

var (
	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "lrs_fetches_total", Help: "Upstream price series fetches"},
		[]string{"provider", "outcome"},
	)
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "lrs_cache_lookups_total", Help: "Price series cache lookups"},
		[]string{"layer", "result"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "lrs_signals_total", Help: "Computed signals"},
		[]string{"signal"},
	)
)

func init() {
	prometheus.MustRegister(FetchesTotal, CacheLookupsTotal, SignalsTotal)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
