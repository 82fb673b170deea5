package interp

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thought-machine/rcore/src/value"
)

// doubles evaluates src, which must produce a double vector, and returns its elements.
func doubles(t *testing.T, src string) []float64 {
	t.Helper()
	i, _, _ := newTestInterpreter()
	v := mustEval(t, i, src)
	d, ok := v.(*value.Double)
	require.True(t, ok, "%s gave a %s", src, v.Type())
	return d.Data()
}

func assertDoubles(t *testing.T, src string, expected ...float64) {
	t.Helper()
	got := doubles(t, src)
	require.Len(t, got, len(expected), src)
	for k, x := range expected {
		assert.InDelta(t, x, got[k], 1e-9, "%s[%d]", src, k)
	}
}

func TestMathFunctions(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(sqrt 4)", "2"},
		{"(sqrt 4L)", "2"},
		{"(abs -3L)", "3L"},
		{"(abs (c -1.5 2))", "(c 1.5 2)"},
		{"(floor 2.5)", "2"},
		{"(ceiling 2.1)", "3"},
		{"(trunc -2.7)", "-2"},
		{"(sign (c -2 0 3))", "(c -1 0 1)"},
		{"(round 2.567 1)", "2.6"},
		{"(round 2.5)", "2"},
		{"(round 0.15 1)", "0.1"},
		{"(round 1234 -2)", "1200"},
		{"(round 5L)", "5L"},
		{"(signif 123456 2)", "120000"},
		{"(log 100 10)", "2"},
		{"(log 8 2)", "3"},
		{"(exp 0)", "1"},
		{"(choose 5 2)", "10"},
		{"(choose 5 0)", "1"},
		{"(choose 3 5)", "0"},
		{"(gamma 5)", "24"},
		{"(cumsum (: 1L 4L))", "(c 1L 3L 6L 10L)"},
		{"(cumsum (c 1 NA 2))", "(c 1 NA NA)"},
		{"(cumprod (c 1 2 3))", "(c 1 2 6)"},
		{"(cummax (c 1L 3L 2L))", "(c 1L 3L 3L)"},
		{"(cummin (c 3 1 2))", "(c 3 1 1)"},
		{"(sqrt (c a=4 b=9))", "(c a=2 b=3)"},
	})
}

func TestMathSpecialFunctions(t *testing.T) {
	assertDoubles(t, "(factorial 5)", 120)
	assertDoubles(t, "(lgamma 10)", math.Log(362880))
	assertDoubles(t, "(beta 2 3)", 1.0/12)
	assertDoubles(t, "(lchoose 10 3)", math.Log(120))
	assertDoubles(t, "(digamma 1)", -0.5772156649015329)
	assertDoubles(t, "(trigamma 1)", math.Pi*math.Pi/6)
	assertDoubles(t, "(atan2 1 1)", math.Pi/4)
	assertDoubles(t, "(besselJ 0 0)", 1)
	assertDoubles(t, "(log1p 0)", 0)
}

func TestMathWarnings(t *testing.T) {
	i, _, _ := newTestInterpreter()
	v := mustEval(t, i, "(sqrt -1)")
	assert.True(t, math.IsNaN(v.(*value.Double).At(0)))
	w := i.TakeWarnings()
	require.Len(t, w, 1)
	assert.Equal(t, "NaNs produced", w[0].Message)

	assert.Equal(t, []string{"'k' (2.50) must be integer, rounded to 2"}, warningMessages(t, "(choose 5 2.5)"))
	e := evalErr(t, `(sqrt "a")`)
	assert.Equal(t, "non-numeric argument to mathematical function", e.Message)
	assert.Equal(t, TypeError, e.Kind)
}

func TestComplexMath(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(Re (complex real=1 imaginary=2))", "1"},
		{"(Im (complex real=1 imaginary=2))", "2"},
		{"(Mod (complex real=3 imaginary=4))", "5"},
		{"(Conj (complex real=1 imaginary=2))", "(complex real=1 imaginary=-2)"},
		{"(abs (complex real=3 imaginary=4))", "5"},
	})
	e := evalErr(t, "(gamma (complex real=1 imaginary=1))")
	assert.Equal(t, "unimplemented complex function", e.Message)
}

func TestMatrixConstruction(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(dim (matrix (: 1L 6L) nrow=2))", "(c 2L 3L)"},
		{"(as.vector (matrix (: 1L 6L) nrow=2 byrow=TRUE))", "(c 1L 4L 2L 5L 3L 6L)"},
		{"(nrow (matrix (: 1L 6L) ncol=2))", "3L"},
		{"(ncol (matrix (: 1L 6L) ncol=2))", "2L"},
		{"(NROW (c 1 2 3))", "3L"},
		{"(NCOL (c 1 2 3))", "1L"},
		{"(nrow (c 1 2 3))", "NULL"},
		{"(dim (t (matrix (: 1L 6L) nrow=2)))", "(c 3L 2L)"},
		{"(as.vector (t (matrix (: 1L 4L) 2)))", "(c 1L 3L 2L 4L)"},
		{"(as.vector (diag 2))", "(c 1 0 0 1)"},
		{"(diag (matrix (: 1L 4L) 2))", "(c 1L 4L)"},
		{"(dim (cbind (: 1L 2L) (: 3L 4L)))", "(c 2L 2L)"},
		{"(as.vector (rbind (: 1L 2L) (: 3L 4L)))", "(c 1L 3L 2L 4L)"},
		{"(as.vector (outer (: 1L 3L) (: 1L 2L)))", "(c 1L 2L 3L 2L 4L 6L)"},
		{"(dim (outer (: 1L 3L) (: 1L 2L)))", "(c 3L 2L)"},
	})
}

func TestMatrixWarnings(t *testing.T) {
	assert.Equal(t, []string{"data length [4] is not a sub-multiple or multiple of the number of rows [3]"}, warningMessages(t, "(matrix (: 1L 4L) nrow=3)"))
	e := evalErr(t, `(matrix (: 1L 4L) nrow=-1)`)
	assert.Equal(t, "invalid 'nrow' value (< 0)", e.Message)
}

func TestMatrixAlgebra(t *testing.T) {
	assertDoubles(t, "(as.vector (%*% (matrix (c 1 2 3 4) 2) (c 1 1)))", 4, 6)
	assertDoubles(t, "(as.vector (crossprod (matrix (c 1 2 3 4) 2)))", 5, 11, 11, 25)
	assertDoubles(t, "(as.vector (solve (matrix (c 2 0 0 4) 2)))", 0.5, 0, 0, 0.25)
	assertDoubles(t, "(solve (matrix (c 2 0 0 4) 2) (c 1 1))", 0.5, 0.25)
	assertDoubles(t, "(det (matrix (c 1 2 3 4) 2))", -2)
	assertDoubles(t, "(as.vector (chol (matrix (c 4 2 2 3) 2)))", 2, 0, 1, math.Sqrt2)

	e := evalErr(t, "(%*% (matrix (c 1 2 3 4) 2) (c 1 1 1))")
	assert.Equal(t, "non-conformable arguments", e.Message)
	e = evalErr(t, "(solve (matrix (c 1 2 2 4) 2))")
	assert.Equal(t, DomainError, e.Kind)
	assert.Equal(t, "Lapack routine dgesv: system is exactly singular", e.Message)
	e = evalErr(t, "(chol (matrix (c 1 2 2 1) 2))")
	assert.Equal(t, DomainError, e.Kind)
	assert.Equal(t, "the leading minor of order 2 is not positive", e.Message)
	e = evalErr(t, "(det (matrix (: 1 6) 2))")
	assert.Equal(t, "'a' (2 x 3) must be square", e.Message)
}

func TestPolyroot(t *testing.T) {
	i, _, _ := newTestInterpreter()
	v := mustEval(t, i, "(polyroot (c 6 -5 1))")
	z, ok := v.(*value.Complex)
	require.True(t, ok)
	require.Equal(t, 2, z.Len())
	roots := []float64{real(z.At(0)), real(z.At(1))}
	sort.Float64s(roots)
	assert.InDelta(t, 2, roots[0], 1e-9)
	assert.InDelta(t, 3, roots[1], 1e-9)
	assert.InDelta(t, 0, imag(z.At(0)), 1e-9)

	assert.Equal(t, 0, mustEval(t, i, "(polyroot 1)").Len())
	e := evalErr(t, "(polyroot (c 1 NA))")
	assert.Equal(t, "invalid polynomial coefficient", e.Message)
}
