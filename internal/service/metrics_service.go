package service

import (
	"net/http"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the admission
// workflow, notification fan-out and mini-app sessions.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	reviewTotal        *prometheus.CounterVec
	notificationTotal  *prometheus.CounterVec
	sessionTotal       *prometheus.CounterVec
	emailEnqueuedTotal prometheus.Counter
}

// NewMetricsService registers the domain Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	reviewTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admission_reviews_total",
		Help: "Total admission registration reviews by decision",
	}, []string{"decision"})

	notificationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "miniapp_notifications_total",
		Help: "Total mini-app notifications by kind and result",
	}, []string{"kind", "result"})

	sessionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "miniapp_sessions_total",
		Help: "Total mini-app session registrations by result",
	}, []string{"result"})

	emailEnqueuedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "result_emails_enqueued_total",
		Help: "Total admission result emails handed to the dispatcher",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(reviewTotal, notificationTotal, sessionTotal, emailEnqueuedTotal, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		reviewTotal:        reviewTotal,
		notificationTotal:  notificationTotal,
		sessionTotal:       sessionTotal,
		emailEnqueuedTotal: emailEnqueuedTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// RecordReview counts a finished review by decision.
func (m *MetricsService) RecordReview(decision string) {
	if m == nil {
		return
	}
	m.reviewTotal.WithLabelValues(decision).Inc()
}

// RecordNotification counts one notification attempt.
func (m *MetricsService) RecordNotification(kind string, ok bool) {
	if m == nil {
		return
	}
	result := "created"
	if !ok {
		result = "failed"
	}
	m.notificationTotal.WithLabelValues(kind, result).Inc()
}

// RecordSession counts one session registration attempt.
func (m *MetricsService) RecordSession(ok bool) {
	if m == nil {
		return
	}
	result := "registered"
	if !ok {
		result = "failed"
	}
	m.sessionTotal.WithLabelValues(result).Inc()
}

// RecordEmailEnqueued counts one result email handed to the dispatcher.
func (m *MetricsService) RecordEmailEnqueued() {
	if m == nil {
		return
	}
	m.emailEnqueuedTotal.Inc()
}
