package interp

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTrip(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(unserialize (serialize (list a=1 b="x" c=(: 1L 3L)) NULL))`, `(list a=1 b="x" c=(: 1L 3L))`},
		{`(unserialize (serialize (structure (c 1 NA) class="foo") NULL version=2))`, `(structure (c 1 NA) class="foo")`},
		{`(unserialize (serialize (quote (f x y=1)) NULL))`, "(quote (f x y=1))"},
		{`(unserialize (serialize NULL NULL))`, "NULL"},
		{`(<- f (function (x) (* x 2))) ((unserialize (serialize f NULL)) 4)`, "8"},
		{`((unserialize (serialize sum NULL)) 1 2)`, "3"},
		{`(identical (unserialize (serialize (globalenv) NULL)) (globalenv))`, "TRUE"},
		{`(<- e (new.env)) (assign "v" 5 envir=e) (get "v" envir=(unserialize (serialize e NULL)))`, "5"},
		{`([ (serialize 1 NULL) (: 1L 2L))`, "(as.raw (c 88 10))"},
		{`([ (serialize 1 NULL version=2) 6L)`, "(as.raw 2)"},
		{`([ (serialize 1 NULL) 6L)`, "(as.raw 3)"},
	})
}

func TestSerializeErrors(t *testing.T) {
	e := evalErr(t, `(serialize 1 NULL version=4)`)
	assert.Equal(t, "version 4 not supported", e.Message)
	e = evalErr(t, `(serialize 1 "out.rds")`)
	assert.Equal(t, "only serialization to a raw vector is supported", e.Message)
	e = evalErr(t, `(serialize 1 NULL ascii=TRUE)`)
	assert.Equal(t, "ascii serialization is not supported", e.Message)
	e = evalErr(t, `(unserialize "x")`)
	assert.Equal(t, "character vectors are no longer accepted by unserialize()", e.Message)
	e = evalErr(t, `(unserialize (as.raw (c 1 2 3 4 5 6)))`)
	assert.Equal(t, "unknown input format", e.Message)
}

func TestRDSFilesFromScripts(t *testing.T) {
	dir := t.TempDir()
	for compress, magic := range map[string]string{
		"TRUE":   "\x1f\x8b",
		"FALSE":  "X\n",
		`"gzip"`: "\x1f\x8b",
		`"xz"`:   "\xfd7zXZ",
		`"none"`: "X\n",
	} {
		filename := filepath.Join(dir, "obj.rds")
		i, _, _ := newTestInterpreter()
		v := mustEval(t, i, fmt.Sprintf(`(saveRDS (list x=(c 1.5 2) y="z") %q compress=%s) (readRDS %q)`, filename, compress, filename))
		assert.Equal(t, `list(x = c(1.5, 2), y = "z")`, deparse1(v), compress)
		b, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, magic, string(b[:len(magic)]), compress)
	}
}

func TestRDSErrors(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "obj.rds")
	e := evalErr(t, fmt.Sprintf(`(saveRDS 1 %q compress="bzip2")`, filename))
	assert.Equal(t, "writing bzip2 compressed files is not supported", e.Message)
	e = evalErr(t, fmt.Sprintf(`(saveRDS 1 %q compress="lzma")`, filename))
	assert.Equal(t, "invalid 'compress' argument: lzma", e.Message)
	e = evalErr(t, fmt.Sprintf(`(readRDS %q)`, filepath.Join(t.TempDir(), "missing.rds")))
	assert.Contains(t, e.Message, "error reading from connection")
}
