package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// Collector regroupe les métriques métier et HTTP du back-end
type Collector struct {
	paymentCompletions *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New enregistre les métriques sur reg (prometheus.DefaultRegisterer en production)
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		paymentCompletions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_completions_total",
				Help:      "Payment completion attempts by final state",
			},
			[]string{"state"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Payment confirmation e-mails by result",
			},
			[]string{"result"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Un Collector nil n'enregistre rien
func (c *Collector) RecordCompletion(state string) {
	if c == nil {
		return
	}
	c.paymentCompletions.WithLabelValues(state).Inc()
}

func (c *Collector) RecordNotification(sent bool) {
	if c == nil {
		return
	}
	result := "sent"
	if !sent {
		result = "failed"
	}
	c.notifications.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
