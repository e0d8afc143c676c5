package restserver

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chrissnell/greenhouse/internal/simulation"
)

// Metrics holds the Prometheus collectors served on /metrics.
type Metrics struct {
	registry      *prometheus.Registry
	requestsTotal *prometheus.CounterVec
	runsStarted   prometheus.Counter
}

// NewMetrics registers the HTTP and run collectors on a private registry.
func NewMetrics(session *simulation.Session) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "greenhouse_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greenhouse_runs_started_total",
			Help: "Total number of growth runs started.",
		}),
	}

	m.registry.MustRegister(m.requestsTotal, m.runsStarted, newSessionCollector(session))
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by mux route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		route := "unmatched"
		if r := mux.CurrentRoute(req); r != nil {
			if tmpl, err := r.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		metrics := httpsnoop.CaptureMetrics(next, w, req)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(metrics.Code)).Inc()
	})
}

// sessionCollector reports the latest frame at scrape time.
type sessionCollector struct {
	session     *simulation.Session
	progress    *prometheus.Desc
	week        *prometheus.Desc
	accumulated *prometheus.Desc
	mass        *prometheus.Desc
}

func newSessionCollector(session *simulation.Session) *sessionCollector {
	return &sessionCollector{
		session:     session,
		progress:    prometheus.NewDesc("greenhouse_run_progress", "Progress of the current run from 0 to 1.", []string{"state"}, nil),
		week:        prometheus.NewDesc("greenhouse_run_week", "Current week of the run.", nil, nil),
		accumulated: prometheus.NewDesc("greenhouse_accumulated_growth", "Growth accumulated so far this run.", []string{"greenhouse"}, nil),
		mass:        prometheus.NewDesc("greenhouse_harvest_mass_grams", "Harvest mass, once revealed.", []string{"greenhouse"}, nil),
	}
}

func (c *sessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.progress
	ch <- c.week
	ch <- c.accumulated
	ch <- c.mass
}

func (c *sessionCollector) Collect(ch chan<- prometheus.Metric) {
	f := c.session.Frame()

	ch <- prometheus.MustNewConstMetric(c.progress, prometheus.GaugeValue, f.Progress, f.State)
	ch <- prometheus.MustNewConstMetric(c.week, prometheus.GaugeValue, float64(f.Week))
	for _, g := range f.Greenhouses {
		ch <- prometheus.MustNewConstMetric(c.accumulated, prometheus.GaugeValue, g.Accumulated, g.Name)
		if g.Revealed {
			ch <- prometheus.MustNewConstMetric(c.mass, prometheus.GaugeValue, float64(g.Mass), g.Name)
		}
	}
}
