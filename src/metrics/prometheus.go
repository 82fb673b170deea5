// Package metrics records counters about an interpreter session and reports them
// to Prometheus. Because rcore runs as a transient process we can't wait around
// for Prometheus to scrape us; metrics are either pushed to a gateway or written
// to a textfile for the node exporter to collect.
package metrics

import (
	"fmt"
	"os/exec"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/thought-machine/rcore/src/cli"
	"github.com/thought-machine/rcore/src/cli/logging"
)

var log = logging.Log

// Metrics holds the collectors for a single session.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	builtinCalls  *prometheus.CounterVec
	dispatches    *prometheus.CounterVec
	conditions    *prometheus.CounterVec
	evalHistogram *prometheus.HistogramVec
}

// New creates a new set of metrics. customLabels maps label names to commands whose
// output becomes the label value; it panics if any of those commands fail.
func New(customLabels map[string]string) *Metrics {
	u, err := user.Current()
	if err != nil {
		log.Warning("Can't determine current user name for metrics")
		u = &user.User{Username: "unknown"}
	}
	constLabels := prometheus.Labels{
		"user": u.Username,
		"arch": runtime.GOOS + "_" + runtime.GOARCH,
	}
	for k, v := range customLabels {
		constLabels[k] = deriveLabelValue(v)
	}

	m := &Metrics{registry: prometheus.NewRegistry()}

	// Count of calls to each builtin.
	m.builtinCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rcore_builtin_calls",
		Help:        "Count of number of times each builtin is called",
		ConstLabels: constLabels,
	}, []string{"name"})

	// Count of S3 dispatches and how they were resolved.
	m.dispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rcore_dispatches",
		Help:        "Count of generic dispatches by how they resolved",
		ConstLabels: constLabels,
	}, []string{"generic", "resolution"})

	// Count of conditions signalled.
	m.conditions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rcore_conditions",
		Help:        "Count of conditions signalled by class",
		ConstLabels: constLabels,
	}, []string{"class"})

	// Durations of top-level evaluations.
	m.evalHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "rcore_eval_durations_histogram",
		Help:        "Durations of top-level expression evaluations",
		Buckets:     prometheus.ExponentialBuckets(0.0001, 4, 12),
		ConstLabels: constLabels,
	}, []string{})

	m.registry.MustRegister(m.builtinCalls, m.dispatches, m.conditions, m.evalHistogram)
	return m
}

// BuiltinCalled records a call to the named builtin.
func (m *Metrics) BuiltinCalled(name string) {
	if m != nil {
		m.builtinCalls.WithLabelValues(name).Inc()
	}
}

// Dispatched records a dispatch of the given generic. resolution is one of
// "method", "default" or "internal".
func (m *Metrics) Dispatched(generic, resolution string) {
	if m != nil {
		m.dispatches.WithLabelValues(generic, resolution).Inc()
	}
}

// Signalled records a condition of the given class.
func (m *Metrics) Signalled(class string) {
	if m != nil {
		m.conditions.WithLabelValues(class).Inc()
	}
}

// ObserveEval records the duration of a top-level evaluation.
func (m *Metrics) ObserveEval(d time.Duration) {
	if m != nil {
		m.evalHistogram.WithLabelValues().Observe(d.Seconds())
	}
}

// Gatherer returns the registry backing these metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteToTextfile writes the current metrics to the given file in the text exposition format.
func (m *Metrics) WriteToTextfile(filename string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(filename, m.registry)
}

// Push sends the current metrics to a Prometheus pushgateway, retrying on failure.
func (m *Metrics) Push(url string, timeout time.Duration, retries int) error {
	if m == nil {
		return nil
	}
	start := time.Now()
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.Logger = &cli.HTTPLogWrapper{Log: log}
	hc := client.StandardClient()
	hc.Timeout = timeout
	p := push.New(url, "rcore").Gatherer(m.registry).Client(hc)
	if err := p.Add(); err != nil {
		return fmt.Errorf("could not push metrics to %s: %w", url, err)
	}
	log.Debug("Pushed metrics in %0.3fs", time.Since(start).Seconds())
	return nil
}

// deriveLabelValue runs a command and returns its output.
func deriveLabelValue(cmd string) string {
	parts, err := shlex.Split(cmd)
	if err != nil {
		panic(fmt.Sprintf("Invalid custom metric command [%s]: %s", cmd, err))
	} else if len(parts) == 0 {
		panic("Empty custom metric command")
	}
	log.Debug("Running custom label command: %s", cmd)
	b, err := exec.Command(parts[0], parts[1:]...).Output()
	log.Debug("Got output: %s", b)
	if err != nil {
		panic(fmt.Sprintf("Custom metric command [%s] failed: %s", cmd, err))
	}
	value := strings.TrimSpace(string(b))
	if strings.Contains(value, "\n") {
		panic(fmt.Sprintf("Return value of custom metric command [%s] contains newlines: %s", cmd, value))
	}
	return value
}
