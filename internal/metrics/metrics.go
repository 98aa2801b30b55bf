package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentgw_requests_total",
			Help: "Total number of requests by service",
		},
		[]string{"service"}, // content|notifier|gateway
	)

	JokesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jokes_delivered_total",
			Help: "Total number of jokes delivered",
		},
	)

	JokeDeliverySuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "joke_delivery_success",
			Help: "Joke delivery success (1 for success, 0 for failure)",
		},
	)

	JokeTierTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentgw_joke_tier_total",
			Help: "Joke resolutions by serving tier",
		},
		[]string{"tier"}, // primary_api|fallback_library|none
	)

	UpstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentgw_upstream_calls_total",
			Help: "Outbound calls to third-party APIs by outcome",
		},
		[]string{"upstream", "outcome"}, // ok|error|unavailable
	)

	NewsHeadlinesStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contentgw_news_headlines_stored_total",
			Help: "Headlines appended to the news archive",
		},
	)

	EmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentgw_emails_total",
			Help: "Email dispatch outcomes by content type",
		},
		[]string{"content_type", "status"}, // sent|failed|rejected
	)

	BroadcastTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentgw_gateway_broadcast_total",
			Help: "Gateway fan-out publishes by outcome",
		},
		[]string{"outcome"}, // published|failed
	)
)

var registerOnce sync.Once

// MustRegister registers all collectors once per process; serve and worker
// commands may both call it.
func MustRegister(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(
			RequestsTotal,
			JokesDelivered,
			JokeDeliverySuccess,
			JokeTierTotal,
			UpstreamCalls,
			NewsHeadlinesStored,
			EmailsTotal,
			BroadcastTotal,
		)
	})
}
