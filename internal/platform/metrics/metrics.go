package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests and multiple servers do not clash.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	rateLimited  prometheus.Counter
	leaveOps     *prometheus.CounterVec
	scoreReads   *prometheus.CounterVec
	jobRuns      *prometheus.CounterVec
}

func New(prefix string) *Collector {
	if prefix == "" {
		prefix = "elms"
	}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_http_rate_limited_total",
			Help: "Requests refused by the rate limiter",
		}),
		leaveOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_leave_operations_total",
			Help: "Leave submissions and decisions by outcome",
		}, []string{"operation", "outcome"}),
		scoreReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_score_reads_total",
			Help: "Performance score reads by cache result",
		}, []string{"cache"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_job_runs_total",
			Help: "Background job runs by status",
		}, []string{"job", "status"}),
	}
	c.registry.MustRegister(
		c.httpRequests, c.httpDuration, c.rateLimited, c.leaveOps, c.scoreReads, c.jobRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Record(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	if status == http.StatusTooManyRequests {
		c.rateLimited.Inc()
	}
}

func (c *Collector) LeaveOutcome(operation, outcome string) {
	c.leaveOps.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) ScoreComputed(cached bool) {
	label := "miss"
	if cached {
		label = "hit"
	}
	c.scoreReads.WithLabelValues(label).Inc()
}

func (c *Collector) JobRun(job, status string) {
	c.jobRuns.WithLabelValues(job, status).Inc()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
