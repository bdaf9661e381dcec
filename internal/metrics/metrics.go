package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImpressionsDelivered counts impressions routed through the
	// per-query exchange across all runs.
	ImpressionsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adx_impressions_delivered_total",
		Help: "Total impressions delivered through the exchange",
	})

	// AuctionsRun counts campaign allocation auctions.
	AuctionsRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adx_campaign_auctions_total",
		Help: "Total campaign allocation auctions run",
	})

	// CampaignsEnded counts campaigns whose delivery window closed.
	CampaignsEnded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adx_campaigns_ended_total",
		Help: "Total campaigns that reached the end of their window",
	})

	// EffectiveReach observes the effective reach ratio reported at
	// campaign end.
	EffectiveReach = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adx_effective_reach_ratio",
		Help:    "Effective reach ratio at campaign completion",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	// SimulationDays counts simulated day steps.
	SimulationDays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adx_simulation_days_total",
		Help: "Total simulated days stepped",
	})

	// HTTPInFlight gauges requests currently being served.
	HTTPInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "adx_http_requests_in_flight",
		Help: "HTTP requests currently in flight",
	})
)
