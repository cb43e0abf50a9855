// Package metrics records render activity in Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels a finished render.
type Result string

const (
	ResultOK       Result = "ok"
	ResultError    Result = "error"
	ResultRejected Result = "rejected"
)

// Recorder holds the render collectors. A nil *Recorder records nothing.
type Recorder struct {
	reg          *prom.Registry
	renders      *prom.CounterVec
	duration     *prom.HistogramVec
	contentBytes prom.Histogram
}

// NewRecorder registers the collectors on reg, or on a fresh registry when reg
// is nil.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		reg: reg,
		renders: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fluentmd",
			Name:      "renders_total",
			Help:      "Render requests by surface, flags and result",
		}, []string{"surface", "accessibility", "sanitize", "result"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "fluentmd",
			Name:      "render_duration_seconds",
			Help:      "Time spent converting Markdown to HTML",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"surface"}),
		contentBytes: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "fluentmd",
			Name:      "render_content_bytes",
			Help:      "Size of Markdown sources rendered",
			Buckets:   prom.ExponentialBuckets(64, 4, 8),
		}),
	}
	reg.MustRegister(r.renders, r.duration, r.contentBytes)
	return r
}

// ObserveRender records one render on the given surface ("api", "preview").
func (r *Recorder) ObserveRender(surface string, accessibility, sanitize bool, size int, d time.Duration, result Result) {
	if r == nil {
		return
	}
	r.renders.WithLabelValues(surface, strconv.FormatBool(accessibility), strconv.FormatBool(sanitize), string(result)).Inc()
	if result == ResultRejected {
		return
	}
	r.duration.WithLabelValues(surface).Observe(d.Seconds())
	r.contentBytes.Observe(float64(size))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
