package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecaster_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"trigger"},
	)

	TickerFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecaster_ticker_failures_total",
			Help: "Per-ticker failures by pipeline stage",
		},
		[]string{"stage"},
	)

	IndicatorFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecaster_indicator_failures_total",
			Help: "Indicator computations that failed",
		},
		[]string{"indicator"},
	)

	// Tickers come from uploaded files, so they are never used as label values.
	PredictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forecaster_predictions_total",
			Help: "Total number of window predictions produced",
		},
	)

	InferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecaster_inference_duration_seconds",
			Help:    "Model inference duration per ticker run",
			Buckets: prometheus.DefBuckets,
		},
	)
)
