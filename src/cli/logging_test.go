package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/op/go-logging.v1"
)

func TestParseVerbosity(t *testing.T) {
	var v Verbosity
	assert.NoError(t, v.UnmarshalFlag("error"))
	assert.EqualValues(t, logging.ERROR, v)
	assert.NoError(t, v.UnmarshalFlag("1"))
	assert.EqualValues(t, logging.WARNING, v)
	assert.NoError(t, v.UnmarshalFlag("v"))
	assert.EqualValues(t, logging.NOTICE, v)
	assert.Error(t, v.UnmarshalFlag("blah"))
}

func TestStripWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewStripWriter(&buf)
	n, err := w.Write([]byte("\x1b[31;1mError\x1b[0m in f() : boom"))
	assert.NoError(t, err)
	assert.Equal(t, 30, n)
	assert.Equal(t, "Error in f() : boom", buf.String())
}

func TestHTTPLogWrapper(t *testing.T) {
	backend := logging.InitForTesting(logging.DEBUG)
	w := &HTTPLogWrapper{Log: log}
	w.Warn("retrying", "attempt", 2)
	assert.Equal(t, "retrying: [attempt 2]", backend.Head().Record.Message())
}
