package internal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	log "github.com/sirupsen/logrus"
)

var sendMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gujjar_gpt_send_cycles_total",
	Help: "Send cycles by mode and outcome",
}, []string{"mode", "outcome"})

var gatewayMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "gujjar_gpt_gateway_millis",
	Help:    "Milliseconds spent waiting on the AI service",
	Buckets: []float64{250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
}, []string{"mode"})

var serviceErrorMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gujjar_gpt_service_errors_total",
	Help: "Classified AI service failures",
}, []string{"mode", "kind"})

// Send cycle outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
	OutcomeRejected  = "rejected"
)

func observeSend(mode Mode, outcome string) {
	sendMetric.WithLabelValues(string(mode), outcome).Inc()
}

func observeGateway(mode Mode, elapsed time.Duration, svcErr *ServiceError) {
	gatewayMetric.WithLabelValues(string(mode)).Observe(float64(elapsed.Milliseconds()))
	if svcErr != nil {
		serviceErrorMetric.WithLabelValues(string(mode), string(svcErr.Kind)).Inc()
	}
}

// MetricsPusher pushes the collectors above to a Prometheus Pushgateway.
// A nil *MetricsPusher is valid and does nothing.
type MetricsPusher struct {
	pusher *push.Pusher
}

// NewMetricsPusher returns nil when no gateway is configured
func NewMetricsPusher(gateway string) *MetricsPusher {
	if gateway == "" {
		return nil
	}
	pusher := push.New(gateway, "gujjar-gpt").
		Collector(sendMetric).
		Collector(gatewayMetric).
		Collector(serviceErrorMetric)
	return &MetricsPusher{pusher: pusher}
}

// Push sends the current values. Failures are logged, never returned.
func (m *MetricsPusher) Push() {
	if m == nil {
		return
	}
	log.Debug("pushing metrics to prometheus gateway")
	if err := m.pusher.Add(); err != nil {
		log.WithError(err).Warn("could not push to prometheus pushgateway")
		return
	}
	log.Debug("successfully pushed metrics to prometheus gateway")
}
