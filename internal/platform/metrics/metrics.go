package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder counts controller commands and times them end to end.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sleeptrack",
			Name:      "commands_total",
			Help:      "Controller commands by outcome.",
		}, []string{"command", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sleeptrack",
			Name:      "command_seconds",
			Help:      "Controller command latency, storage calls and state publishing included.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"command"}),
	}
	r.registry.MustRegister(r.commands, r.duration)
	return r
}

// Observe records one finished command.
func (r *Recorder) Observe(command string, started time.Time, err error) {
	if r == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.commands.WithLabelValues(command, result).Inc()
	r.duration.WithLabelValues(command).Observe(time.Since(started).Seconds())
}

func (r *Recorder) Commands() *prometheus.CounterVec {
	return r.commands
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
