package interp

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/op/go-logging.v1"

	"github.com/thought-machine/rcore/src/value"
)

// An evalTest evaluates expr and compares the result to the value of expected.
type evalTest struct {
	expr, expected string
}

func TestMain(m *testing.M) {
	// Dispatch and registration are logged at debug; keep test output to warnings.
	backend := logging.AddModuleLevel(logging.NewLogBackend(os.Stderr, "", 0))
	backend.SetLevel(logging.WARNING, "")
	logging.SetBackend(backend)
	os.Exit(m.Run())
}

var testTime = time.Date(2023, time.March, 14, 15, 9, 26, 0, time.UTC)

func newTestInterpreter() (*Interpreter, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	s := NewSession()
	s.Stdout = &stdout
	s.Stderr = &stderr
	s.Now = func() time.Time { return testTime }
	s.Seed(42)
	s.Setenv("TZ", "UTC")
	return New(s), &stdout, &stderr
}

func mustEval(t *testing.T, i *Interpreter, src string) value.Value {
	t.Helper()
	v, err := i.EvalString(src)
	require.NoError(t, err, "evaluating %s", src)
	return v
}

func evalErr(t *testing.T, src string) *Error {
	t.Helper()
	i, _, _ := newTestInterpreter()
	_, err := i.EvalString(src)
	require.Error(t, err, "evaluating %s", src)
	e, ok := err.(*Error)
	require.True(t, ok, "expected an *Error, got %T: %s", err, err)
	return e
}

// deparse1 deparses a value onto one line for comparisons.
func deparse1(v value.Value) string {
	return value.Deparse(v)
}

func runEvalTests(t *testing.T, tests []evalTest) {
	t.Helper()
	for _, test := range tests {
		test := test
		t.Run(test.expr, func(t *testing.T) {
			i, _, _ := newTestInterpreter()
			got := mustEval(t, i, test.expr)
			want := mustEval(t, i, test.expected)
			assert.True(t, value.Identical(want, got), "%s: got %s, want %s", test.expr, value.Deparse(got), value.Deparse(want))
		})
	}
}

func TestEvalConstants(t *testing.T) {
	i, _, _ := newTestInterpreter()
	assert.True(t, value.Identical(value.Num(1), mustEval(t, i, "1")))
	assert.True(t, value.Identical(value.Int(1), mustEval(t, i, "1L")))
	assert.True(t, value.Identical(value.Str("a"), mustEval(t, i, `"a"`)))
	assert.True(t, value.Identical(value.Null, mustEval(t, i, "NULL")))
	assert.True(t, value.Identical(value.Bool(true), mustEval(t, i, "T")))
}

func TestEvalStringReturnsLast(t *testing.T) {
	i, _, _ := newTestInterpreter()
	v := mustEval(t, i, "(<- x 1) (<- y 2) (+ x y)")
	assert.True(t, value.Identical(value.Num(3), v))
}

func TestVisible(t *testing.T) {
	i, _, _ := newTestInterpreter()
	mustEval(t, i, "(<- x 1)")
	assert.False(t, i.Visible())
	mustEval(t, i, "x")
	assert.True(t, i.Visible())
	mustEval(t, i, "(invisible x)")
	assert.False(t, i.Visible())
	mustEval(t, i, "((function () (invisible 1)))")
	assert.False(t, i.Visible())
	mustEval(t, i, "(`(` (invisible x))")
	assert.True(t, i.Visible())
}

func TestObjectNotFound(t *testing.T) {
	err := evalErr(t, "(<- value 1) valeu")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "object 'valeu' not found", err.Message)
	assert.Contains(t, err.Suggestion, "value")
}

func TestFunctionNotFound(t *testing.T) {
	err := evalErr(t, `(pste "a")`)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `could not find function "pste"`, err.Message)
	assert.Contains(t, err.Suggestion, "paste")
}

func TestErrorFormat(t *testing.T) {
	err := evalErr(t, `(<- f (function () (stop "boom"))) (f)`)
	assert.ErrorIs(t, err, ErrUser)
	assert.Equal(t, "boom", err.ShortError())
	assert.Equal(t, "Error in f() : boom", err.header())
}

func TestPrint(t *testing.T) {
	i, stdout, _ := newTestInterpreter()
	require.NoError(t, i.Print(value.IntegerOf(1, 2, 3)))
	assert.Equal(t, "[1] 1 2 3\n", stdout.String())
}

func TestSetParser(t *testing.T) {
	i, _, _ := newTestInterpreter()
	i.SetParser(fixedParser{value.Num(42)})
	assert.True(t, value.Identical(value.Num(42), mustEval(t, i, "anything")))
}

type fixedParser struct {
	v value.Value
}

func (p fixedParser) Parse(src string) ([]value.Value, error) {
	return []value.Value{p.v}, nil
}

func TestInterpretersAreIndependent(t *testing.T) {
	i1, _, _ := newTestInterpreter()
	i2, _, _ := newTestInterpreter()
	mustEval(t, i1, "(<- x 1) (options warn=1)")
	_, err := i2.EvalString("x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, i2.Session().Warn())
	assert.Equal(t, 1, i1.Session().Warn())
}
