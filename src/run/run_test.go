package run

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/op/go-logging.v1"

	"github.com/thought-machine/rcore/src/interp"
	"github.com/thought-machine/rcore/src/metrics"
)

func TestMain(m *testing.M) {
	backend := logging.AddModuleLevel(logging.NewLogBackend(os.Stderr, "", 0))
	backend.SetLevel(logging.WARNING, "")
	logging.SetBackend(backend)
	os.Exit(m.Run())
}

func runScripts(t *testing.T, opts Options, scripts ...Script) (string, string, error) {
	var stdout, stderr bytes.Buffer
	err := Scripts(context.Background(), scripts, opts, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestPrintsVisibleResults(t *testing.T) {
	stdout, _, err := runScripts(t, Options{}, Script{Name: "a.r", Source: "(+ 1 2)\n(invisible 5)\n(<- x 3L)\nx"})
	require.NoError(t, err)
	assert.Equal(t, "[1] 3\n[1] 3\n", stdout)
}

func TestOutputIsInScriptOrder(t *testing.T) {
	scripts := []Script{
		{Name: "a.r", Source: `(cat "a\n")`},
		{Name: "b.r", Source: `(cat "b\n")`},
		{Name: "c.r", Source: `(cat "c\n")`},
	}
	stdout, _, err := runScripts(t, Options{NumThreads: 3}, scripts...)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", stdout)
}

func TestScriptsAreIsolated(t *testing.T) {
	scripts := []Script{
		{Name: "a.r", Source: `(<- x 1)`},
		{Name: "b.r", Source: `(exists "x")`},
	}
	stdout, _, err := runScripts(t, Options{NumThreads: 1}, scripts...)
	require.NoError(t, err)
	assert.Equal(t, "[1] FALSE\n", stdout)
}

func TestErrorsAreAggregated(t *testing.T) {
	scripts := []Script{
		{Name: "a.r", Source: `(stop "first")`},
		{Name: "b.r", Source: `(cat "ok\n")`},
		{Name: "c.r", Source: `(stop "second")`},
	}
	stdout, _, err := runScripts(t, Options{NumThreads: 2}, scripts...)
	require.Error(t, err)
	assert.Equal(t, "ok\n", stdout)
	assert.Contains(t, err.Error(), "a.r: ")
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "c.r: ")
	assert.Contains(t, err.Error(), "second")
	assert.ErrorIs(t, err, interp.ErrUser)
}

func TestErrorStopsScript(t *testing.T) {
	stdout, _, err := runScripts(t, Options{}, Script{Name: "a.r", Source: `(cat "before\n") (stop "boom") (cat "after\n")`})
	assert.Error(t, err)
	assert.Equal(t, "before\n", stdout)
}

func TestParseError(t *testing.T) {
	_, _, err := runScripts(t, Options{}, Script{Name: "a.r", Source: `(+ 1 2`})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "a.r: ")
}

func TestSuggestion(t *testing.T) {
	_, _, err := runScripts(t, Options{}, Script{Name: "a.r", Source: `(pste "a" "b")`})
	require.Error(t, err)
	assert.ErrorIs(t, err, interp.ErrNotFound)
	assert.Contains(t, err.Error(), "Maybe you meant")
}

func TestDeferredWarningsAreFlushed(t *testing.T) {
	stdout, stderr, err := runScripts(t, Options{}, Script{Name: "a.r", Source: `(as.integer "x")`})
	require.NoError(t, err)
	assert.Equal(t, "[1] NA\n", stdout)
	assert.Contains(t, stderr, "Warning message:")
	assert.Contains(t, stderr, "NAs introduced by coercion")
}

func TestWarnOverride(t *testing.T) {
	warn := 2
	_, _, err := runScripts(t, Options{Warn: &warn}, Script{Name: "a.r", Source: `(as.integer "x")`})
	require.Error(t, err)
	assert.ErrorIs(t, err, interp.ErrConvertedWarning)
	assert.Contains(t, err.Error(), "(converted from warning)")
}

func TestJSON(t *testing.T) {
	stdout, _, err := runScripts(t, Options{Format: JSON}, Script{Name: "a.r", Source: `(c a=1 b=2)`})
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1,\"b\":2}\n", stdout)
}

func TestDump(t *testing.T) {
	stdout, _, err := runScripts(t, Options{Format: Dump}, Script{Name: "a.r", Source: `1L`})
	require.NoError(t, err)
	assert.Contains(t, stdout, "value.Integer")
}

func TestCommandArgs(t *testing.T) {
	stdout, _, err := runScripts(t, Options{Args: []string{"x", "y z"}}, Script{Name: "a.r", Source: `(commandArgs TRUE)`})
	require.NoError(t, err)
	assert.Equal(t, "[1] \"x\"   \"y z\"\n", stdout)
}

func TestConfigApplied(t *testing.T) {
	config := interp.DefaultConfig()
	config.Options.Digits = 3
	stdout, _, err := runScripts(t, Options{Config: config}, Script{Name: "a.r", Source: `(getOption "digits")`})
	require.NoError(t, err)
	assert.Equal(t, "[1] 3\n", stdout)
}

func TestMetricsRecorded(t *testing.T) {
	m := metrics.New(nil)
	_, _, err := runScripts(t, Options{Metrics: m}, Script{Name: "a.r", Source: `(sum 1 2)`})
	require.NoError(t, err)
	file := t.TempDir() + "/rcore.prom"
	require.NoError(t, m.WriteToTextfile(file))
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stdout, stderr bytes.Buffer
	err := Scripts(ctx, []Script{{Name: "a.r", Source: "1"}}, Options{}, &stdout, &stderr)
	assert.Error(t, err)
	assert.Equal(t, "", stdout.String())
}
