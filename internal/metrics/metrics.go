package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/limaJavier/timetabling/pkg/timetable"
)

// Recorder owns the Prometheus collectors of the scheduling runs. A nil Recorder
// records nothing.
type Recorder struct {
	registry *prometheus.Registry
	handler  http.Handler

	coloringDuration *prometheus.HistogramVec
	colorCount       *prometheus.GaugeVec
	timetableBuilds  *prometheus.CounterVec
	satisfaction     prometheus.Histogram
	requestDuration  *prometheus.HistogramVec
}

func New() *Recorder {
	registry := prometheus.NewRegistry()

	coloringDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coloring_duration_seconds",
		Help:    "Time spent coloring a conflict graph",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"strategy"})

	colorCount := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "coloring_colors",
		Help: "Colors used by the latest coloring of each strategy",
	}, []string{"strategy"})

	timetableBuilds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_builds_total",
		Help: "Timetable builds by outcome",
	}, []string{"outcome"})

	satisfaction := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_satisfaction_ratio",
		Help:    "Share of entities scheduled in their preferred half-day",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
	})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	registry.MustRegister(coloringDuration, colorCount, timetableBuilds, satisfaction, requestDuration)

	return &Recorder{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		coloringDuration: coloringDuration,
		colorCount:       colorCount,
		timetableBuilds:  timetableBuilds,
		satisfaction:     satisfaction,
		requestDuration:  requestDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

func (r *Recorder) ObserveColoring(strategy string, colors int, duration time.Duration) {
	if r == nil {
		return
	}
	r.coloringDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	r.colorCount.WithLabelValues(strategy).Set(float64(colors))
}

// ObserveTimetable counts a build; the satisfaction of successful builds is recorded too.
func (r *Recorder) ObserveTimetable(result *timetable.Result, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.timetableBuilds.WithLabelValues("error").Inc()
		return
	}
	r.timetableBuilds.WithLabelValues("ok").Inc()
	r.satisfaction.Observe(result.Satisfaction)
}

func (r *Recorder) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.requestDuration.WithLabelValues(method, path, fmt.Sprintf("%d", status)).Observe(duration.Seconds())
}
