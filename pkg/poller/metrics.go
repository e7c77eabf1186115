package poller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched counts list pages fetched by the poll loop.
	PagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sponsorwatch_poller_pages_total",
			Help: "Total number of list pages fetched",
		},
	)

	// PlacesEmitted counts places forwarded to the sink.
	PlacesEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sponsorwatch_poller_places_emitted_total",
			Help: "Total number of newly seen places emitted",
		},
	)

	// Duplicates counts places skipped because they were already seen.
	Duplicates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sponsorwatch_poller_duplicates_total",
			Help: "Total number of already seen places skipped",
		},
	)

	// SeenPlaces tracks the size of the seen set.
	SeenPlaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sponsorwatch_poller_seen_places",
			Help: "Number of distinct places seen by the running poll loop",
		},
	)
)
