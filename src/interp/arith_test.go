package interp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thought-machine/rcore/src/value"
)

// warningMessages evaluates src and returns the messages of the warnings it deferred.
func warningMessages(t *testing.T, src string) []string {
	t.Helper()
	i, _, _ := newTestInterpreter()
	mustEval(t, i, src)
	var msgs []string
	for _, w := range i.TakeWarnings() {
		msgs = append(msgs, w.Message)
	}
	return msgs
}

func TestArithmetic(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(+ 1 2)", "3"},
		{"(+ 1L 2L)", "3L"},
		{"(+ TRUE TRUE)", "2L"},
		{"(+ TRUE 1L)", "2L"},
		{"(* (c TRUE FALSE) 2.5)", "(c 2.5 0)"},
		{"(/ 1L 2L)", "0.5"},
		{"(^ 2L 3L)", "8"},
		{"(* 2L 1.5)", "3"},
		{"(- 5L)", "-5L"},
		{"(- TRUE)", "-1L"},
		{"(+ 3)", "3"},
		{"(%% -7 3)", "2"},
		{"(%% 7 -3)", "-2"},
		{"(%/% -7 3)", "-3"},
		{"(%/% 7L 2L)", "3L"},
		{"(%% 5L 0L)", "NA_integer_"},
		{"(+ 1 NA)", "NA_real_"},
		{"(^ NA 0)", "1"},
		{"(^ 1 NA)", "1"},
		{"(+ NULL 1)", "(numeric 0)"},
		{"(+ (c 1 2 3 4) (c 10 20))", "(c 11 22 13 24)"},
		{"(+ (c a=1 b=2) 1)", "(c a=2 b=3)"},
		{"(+ (complex real=1 imaginary=2) 1)", "(complex real=2 imaginary=2)"},
	})
}

func TestArithmeticRecyclingWarning(t *testing.T) {
	i, _, _ := newTestInterpreter()
	v := mustEval(t, i, "(+ (: 1L 3L) (: 1L 2L))")
	assert.True(t, value.Identical(value.IntegerOf(2, 4, 4), v))
	w := i.TakeWarnings()
	require.Len(t, w, 1)
	assert.Equal(t, "longer object length is not a multiple of shorter object length", w[0].Message)
}

func TestIntegerOverflow(t *testing.T) {
	i, _, _ := newTestInterpreter()
	v := mustEval(t, i, "(+ 2147483647L 1L)")
	assert.True(t, value.Identical(value.NAInteger(), v))
	w := i.TakeWarnings()
	require.Len(t, w, 1)
	assert.Equal(t, "NAs produced by integer overflow", w[0].Message)
	assert.Equal(t, []string{"integer overflow - use sum(as.numeric(.))"}, warningMessages(t, "(sum 2147483647L 1L)"))
}

func TestArithmeticErrors(t *testing.T) {
	e := evalErr(t, `(+ 1 "a")`)
	assert.Equal(t, TypeError, e.Kind)
	assert.Equal(t, "non-numeric argument to binary operator", e.Message)
	assert.ErrorIs(t, e, ErrType)
	e = evalErr(t, `(%% (complex real=1 imaginary=1) 2)`)
	assert.Equal(t, "invalid operation on complex numbers", e.Message)
	e = evalErr(t, `(- "a")`)
	assert.Equal(t, "invalid argument to unary operator", e.Message)
}

func TestComparison(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(== 1 1L)", "TRUE"},
		{"(< 1 (c 0 1 2))", "(c FALSE FALSE TRUE)"},
		{`(< "a" "b")`, "TRUE"},
		{`(== "1" 1)`, "TRUE"},
		{"(== NA 1)", "NA"},
		{"(== NaN NaN)", "NA"},
		{"(!= (c a=1 b=2) 2)", "(c a=TRUE b=FALSE)"},
		{"(== (quote x) \"x\")", "TRUE"},
		{"(== NULL 1)", "(logical 0)"},
	})
	e := evalErr(t, "(< (list 1) 1)")
	assert.Equal(t, "comparison (<) is possible only for atomic types", e.Message)
}

func TestLogicalOperators(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(& (c TRUE NA FALSE) TRUE)", "(c TRUE NA FALSE)"},
		{"(& NA FALSE)", "FALSE"},
		{"(| NA TRUE)", "TRUE"},
		{"(| NA FALSE)", "NA"},
		{"(! (c TRUE FALSE))", "(c FALSE TRUE)"},
		{"(& 1 0)", "FALSE"},
		{"(xor TRUE FALSE)", "TRUE"},
		{"(isTRUE TRUE)", "TRUE"},
		{"(isTRUE (c TRUE TRUE))", "FALSE"},
		{"(isTRUE NA)", "FALSE"},
		{"(isFALSE FALSE)", "TRUE"},
	})
}

func TestSummaries(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(sum (: 1L 10L))", "55L"},
		{"(sum 1 2L)", "3"},
		{"(sum)", "0L"},
		{"(sum (c 1 NA))", "NA_real_"},
		{"(sum (c 1 NA) na.rm=TRUE)", "1"},
		{"(prod (: 1L 5L))", "120"},
		{"(max (c 3 1 2))", "3"},
		{"(max 1L 5L)", "5L"},
		{`(min "b" "a")`, `"a"`},
		{"(max (c 1 NA 3))", "NA_real_"},
		{"(max (c 1 NA 3) na.rm=TRUE)", "3"},
		{"(range (c 3 1 2))", "(c 1 3)"},
		{"(range (c 3L NA) na.rm=TRUE)", "(c 3L 3L)"},
		{"(range (c 1 Inf) finite=TRUE)", "(c 1 1)"},
		{"(mean (c 1 2 3 4))", "2.5"},
		{"(mean (c 1 2 NA) na.rm=TRUE)", "1.5"},
		{"(any (c FALSE NA))", "NA"},
		{"(any (c FALSE NA TRUE))", "TRUE"},
		{"(all (c TRUE NA))", "NA"},
		{"(all (c TRUE NA) na.rm=TRUE)", "TRUE"},
		{"(all)", "TRUE"},
	})
}

func TestEmptyExtremesWarn(t *testing.T) {
	i, _, _ := newTestInterpreter()
	v := mustEval(t, i, "(max)")
	assert.True(t, value.Identical(value.Num(math.Inf(-1)), v))
	w := i.TakeWarnings()
	require.Len(t, w, 1)
	assert.Equal(t, "no non-missing arguments to max; returning -Inf", w[0].Message)
	assert.Equal(t, []string{
		"no non-missing arguments to min; returning Inf",
		"no non-missing arguments to max; returning -Inf",
	}, warningMessages(t, "(range NULL)"))
	e := evalErr(t, `(min (character 0))`)
	assert.Equal(t, "no non-missing arguments to min", e.Message)
}

func TestBitwise(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(bitwAnd 12L 10L)", "8L"},
		{"(bitwOr 12L 10L)", "14L"},
		{"(bitwXor 12L 10L)", "6L"},
		{"(bitwNot 0L)", "-1L"},
		{"(bitwShiftL (c 20 22) 1L)", "(c 40L 44L)"},
		{"(bitwShiftR -1L 28L)", "15L"},
		{"(bitwShiftL 1L 31L)", "NA_integer_"},
		{"(bitwShiftL -1L 1L)", "NA_integer_"},
		{"(bitwShiftL 1L 32L)", "NA_integer_"},
		{"(bitwAnd NA_integer_ 1L)", "NA_integer_"},
	})
	e := evalErr(t, `(bitwAnd "a" 1L)`)
	assert.Equal(t, "'a' must be an integer or numeric vector", e.Message)
}
