package metrics

import (
	"time"

	"adflow/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess      = "success"
	OutcomeTransport    = "transport_error"
	OutcomeNoResult     = "no_result"
	OutcomePrecondition = "precondition"
	OutcomeBusy         = "busy"
)

// Stages records per-stage command outcomes and collaborator latency.
type Stages struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewStages(reg prometheus.Registerer) *Stages {
	s := &Stages{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adflow",
			Name:      "stage_outcomes_total",
			Help:      "Workflow command outcomes by stage.",
		}, []string{"stage", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "adflow",
			Name:      "stage_duration_seconds",
			Help:      "Collaborator call latency by stage.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(s.outcomes, s.duration)
	}
	return s
}

func (s *Stages) Outcome(stage domain.Stage, outcome string) {
	if s == nil {
		return
	}
	s.outcomes.WithLabelValues(string(stage), outcome).Inc()
}

func (s *Stages) Observe(stage domain.Stage, started time.Time) {
	if s == nil {
		return
	}
	s.duration.WithLabelValues(string(stage)).Observe(time.Since(started).Seconds())
}

// Requests counts backend endpoint hits by route and status.
type Requests struct {
	total *prometheus.CounterVec
}

func NewRequests(reg prometheus.Registerer, namespace string) *Requests {
	r := &Requests{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	if reg != nil {
		reg.MustRegister(r.total)
	}
	return r
}

func (r *Requests) Inc(route string, code int) {
	if r == nil {
		return
	}
	r.total.WithLabelValues(route, statusClass(code)).Inc()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
