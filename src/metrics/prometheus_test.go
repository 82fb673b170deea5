package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BuiltinCalled("sum")
		m.Dispatched("print", "default")
		m.Signalled("warning")
		m.ObserveEval(time.Millisecond)
	})
	assert.NoError(t, m.WriteToTextfile("/nonexistent/metrics.prom"))
	assert.NoError(t, m.Push("http://localhost:1", time.Millisecond, 0))
}

func TestCounters(t *testing.T) {
	m := New(nil)
	m.BuiltinCalled("sum")
	m.BuiltinCalled("sum")
	m.BuiltinCalled("paste")
	m.Dispatched("print", "method")
	m.Signalled("simpleWarning")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.builtinCalls.WithLabelValues("sum")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.builtinCalls.WithLabelValues("paste")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("print", "method")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.dispatches.WithLabelValues("print", "default")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conditions.WithLabelValues("simpleWarning")))
}

func TestWriteToTextfile(t *testing.T) {
	m := New(nil)
	m.BuiltinCalled("length")
	m.ObserveEval(2 * time.Millisecond)
	filename := filepath.Join(t.TempDir(), "rcore.prom")
	require.NoError(t, m.WriteToTextfile(filename))
	b, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(b), `rcore_builtin_calls{`)
	assert.Contains(t, string(b), `name="length"`)
	assert.Contains(t, string(b), "rcore_eval_durations_histogram_count")
}

func TestPush(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "/metrics/job/rcore", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	m := New(nil)
	m.BuiltinCalled("c")
	assert.NoError(t, m.Push(srv.URL, time.Second, 0))
	assert.EqualValues(t, 1, atomic.LoadInt32(&requests))
}

func TestPushFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()
	m := New(nil)
	assert.Error(t, m.Push(srv.URL, time.Second, 0))
}

func TestCustomLabels(t *testing.T) {
	m := New(map[string]string{
		"mylabel": "echo hello",
	})
	// It's a little bit fiddly to observe that the const label has been set as expected.
	c := m.builtinCalls.WithLabelValues("sum")
	assert.Contains(t, c.Desc().String(), `mylabel="hello"`)
}

func TestCustomLabelsShlex(t *testing.T) {
	// Naive splitting will not produce good results here.
	m := New(map[string]string{
		"mylabel": "bash -c 'echo hello'",
	})
	c := m.builtinCalls.WithLabelValues("sum")
	assert.Contains(t, c.Desc().String(), `mylabel="hello"`)
}

func TestCustomLabelsShlexInvalid(t *testing.T) {
	assert.Panics(t, func() {
		New(map[string]string{
			"mylabel": "bash -c 'echo hello", // missing trailing quote
		})
	})
}

func TestCustomLabelsCommandFails(t *testing.T) {
	assert.Panics(t, func() {
		New(map[string]string{
			"mylabel": "wibble",
		})
	})
}

func TestCustomLabelsCommandNewlines(t *testing.T) {
	assert.Panics(t, func() {
		New(map[string]string{
			"mylabel": "echo 'hello\nworld\n'",
		})
	})
}
