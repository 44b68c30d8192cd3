package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var fallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "folio",
	Subsystem: "fetch",
	Name:      "fallbacks_total",
	Help:      "Content fetches that degraded to the failure policy.",
}, []string{"op", "policy"})
