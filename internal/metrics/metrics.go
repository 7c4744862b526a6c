package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the game and HTTP collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Answers         *prometheus.CounterVec
	Hints           prometheus.Counter
	Teams           prometheus.Gauge
	Questions       prometheus.Gauge
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cyberhunt_answers_total",
				Help: "Answers submitted, by result",
			},
			[]string{"result"},
		),
		Hints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cyberhunt_hints_total",
			Help: "Hints revealed",
		}),
		Teams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cyberhunt_teams",
			Help: "Registered teams",
		}),
		Questions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cyberhunt_questions",
			Help: "Loaded questions",
		}),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Answers,
		m.Hints,
		m.Teams,
		m.Questions,
		m.RequestCounter,
		m.RequestDuration,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAnswer counts one submission.
func (m *Metrics) ObserveAnswer(correct bool) {
	if correct {
		m.Answers.WithLabelValues("correct").Inc()
		return
	}
	m.Answers.WithLabelValues("incorrect").Inc()
}
