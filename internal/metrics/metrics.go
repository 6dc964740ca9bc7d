package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	QuotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "quotes_total", Help: "Quote proxy requests by result"},
		[]string{"result"},
	)
	SwapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "swaps_total", Help: "Swap transaction build requests by result"},
		[]string{"result"},
	)
	SubmitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "submits_total", Help: "Signed transaction submissions by result"},
		[]string{"result"},
	)
	PriceLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "price_lookups_total", Help: "Price source lookups by source and result"},
		[]string{"source", "result"},
	)
)

func init() {
	prometheus.MustRegister(QuotesTotal, SwapsTotal, SubmitsTotal, PriceLookupsTotal)
}
