// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	auditEntries       *prometheus.CounterVec
	workflowExecutions *prometheus.CounterVec
	reportsGenerated   *prometheus.CounterVec
	jobRuns            *prometheus.CounterVec

	registry *prometheus.Registry
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grc_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grc_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		auditEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grc_audit_entries_total",
				Help: "Total number of audit log entries recorded",
			},
			[]string{"action", "entity_type"},
		),

		workflowExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grc_workflow_executions_total",
				Help: "Workflow executions by final or waiting status",
			},
			[]string{"status"},
		),

		reportsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grc_compliance_reports_generated_total",
				Help: "Compliance reports generated by rating",
			},
			[]string{"rating"},
		),

		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grc_scheduler_job_runs_total",
				Help: "Scheduled job runs by job and outcome",
			},
			[]string{"job", "status"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.auditEntries,
		m.workflowExecutions,
		m.reportsGenerated,
		m.jobRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) RecordAuditEntry(action, entityType string) {
	if m == nil {
		return
	}
	m.auditEntries.WithLabelValues(action, entityType).Inc()
}

func (m *Metrics) RecordWorkflowExecution(status string) {
	if m == nil {
		return
	}
	m.workflowExecutions.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordReport(rating string) {
	if m == nil {
		return
	}
	m.reportsGenerated.WithLabelValues(rating).Inc()
}

func (m *Metrics) RecordJob(job string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.jobRuns.WithLabelValues(job, status).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
