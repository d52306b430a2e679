package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_items_ingested_total",
			Help: "Number of new feed items persisted, by source",
		},
		[]string{"source"},
	)

	feedRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_refresh_total",
			Help: "Feed refresh passes by outcome",
		},
		[]string{"outcome"},
	)

	connectorErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_connector_errors_total",
			Help: "Connector fetch failures absorbed by the pipeline, by source",
		},
		[]string{"source"},
	)

	creditsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credits_awarded_total",
			Help: "Credits granted, by action",
		},
		[]string{"action"},
	)
)
