package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(c)", "NULL"},
		{"(c 1L 2.5)", "(c 1 2.5)"},
		{`(c 1 "a")`, `(c "1" "a")`},
		{"(c TRUE 2L)", "(c 1L 2L)"},
		{"(c NULL 1L NULL)", "1L"},
		{"(c a=1 2)", `(structure (c 1 2) names=(c "a" ""))`},
		{"(c a=(: 1L 2L))", `(structure (: 1L 2L) names=(c "a1" "a2"))`},
		{"(c a=(c x=1 y=2))", `(structure (c 1 2) names=(c "a.x" "a.y"))`},
		{"(c (list 1) 2)", "(list 1 2)"},
		{"(c (c a=1) use.names=FALSE)", "1"},
		{"(length (c (list 1 (list 2 3)) recursive=TRUE))", "3L"},
		{"(unlist (list a=1 b=(list c=2 d=3)))", "(c a=1 b.c=2 b.d=3)"},
		{"(unlist (list 1L 2.5))", "(c 1 2.5)"},
		{"(unlist 1L)", "1L"},
	})
}

func TestVectorConstructors(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(length (numeric 3))", "3L"},
		{"(numeric 2)", "(c 0 0)"},
		{`(character 1)`, `""`},
		{`(vector "list" 2)`, "(list NULL NULL)"},
		{`(vector "integer" 2)`, "(c 0L 0L)"},
		{"(logical 0)", "(vector)"},
		{"(list a=1 2)", `(structure (list 1 2) names=(c "a" ""))`},
		{"(length (list 1 2 3))", "3L"},
		{"(length NULL)", "0L"},
		{"(length (quote x))", "1L"},
		{"(length (new.env))", "0L"},
	})
	e := evalErr(t, `(vector "foo" 1)`)
	assert.Equal(t, "vector: cannot make a vector of mode 'foo'.", e.Message)
	e = evalErr(t, `(numeric -1)`)
	assert.Equal(t, "invalid 'length' argument", e.Message)
}

func TestSetLength(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(<- x (c 1 2 3)) (<- (length x) 2) x", "(c 1 2)"},
		{"(<- x (c a=1L)) (<- (length x) 2) x", `(structure (c 1L NA) names=(c "a" ""))`},
		{"(<- x NULL) (<- (length x) 2) x", "(c NA NA)"},
	})
}

func TestRep(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(rep 1L 3L)", "(c 1L 1L 1L)"},
		{"(rep (: 1L 2L) times=2)", "(c 1L 2L 1L 2L)"},
		{"(rep (: 1L 2L) each=2)", "(c 1L 1L 2L 2L)"},
		{"(rep (: 1L 2L) times=(c 2L 1L))", "(c 1L 1L 2L)"},
		{"(rep (: 1L 3L) length.out=5)", "(c 1L 2L 3L 1L 2L)"},
		{`(rep (c a="x") 2)`, `(c a="x" a="x")`},
		{"(rep NULL 3)", "(logical 0)"},
		{"(rep_len (: 1L 3L) 4)", "(c 1L 2L 3L 1L)"},
		{"(rep.int (: 1L 2L) 2)", "(c 1L 2L 1L 2L)"},
	})
	e := evalErr(t, "(rep (: 1L 3L) times=(c 1L 2L))")
	assert.Equal(t, "invalid 'times' argument", e.Message)
	e = evalErr(t, "(rep (quote x) 2)")
	assert.Equal(t, "attempt to replicate an object of type 'symbol'", e.Message)
}

func TestSequences(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(: 1 3)", "(c 1L 2L 3L)"},
		{"(: 3 1)", "(c 3L 2L 1L)"},
		{"(: 1.5 3)", "(c 1.5 2.5)"},
		{"(seq_len 3)", "(: 1L 3L)"},
		{"(seq_len 0)", "(integer 0)"},
		{`(seq_along (c "a" "b"))`, "(: 1L 2L)"},
		{"(seq 5)", "(: 1L 5L)"},
		{"(seq 2 10 by=4)", "(c 2 6 10)"},
		{"(seq 2L 10L by=4L)", "(c 2L 6L 10L)"},
		{"(seq 0 1 length.out=3)", "(c 0 0.5 1)"},
		{"(seq length.out=3)", "(: 1L 3L)"},
		{"(seq 10 1 by=-3)", "(c 10 7 4 1)"},
		{`(seq (c "a" "b" "c"))`, "(: 1L 3L)"},
		{"(rev (c a=1 b=2))", "(c b=2 a=1)"},
	})
	e := evalErr(t, "(seq 1 10 by=-1)")
	assert.Equal(t, "wrong sign in 'by' argument", e.Message)
	e = evalErr(t, "(: NA 3)")
	assert.Equal(t, "NA/NaN argument", e.Message)
	e = evalErr(t, "(: (integer 0) 3)")
	assert.Equal(t, "argument of length 0", e.Message)
	assert.Equal(t, []string{"numerical expression has 2 elements: only the first used"}, warningMessages(t, "(: (c 1 2) 3)"))
}

func TestSortingAndOrdering(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(sort (c 3 1 2))", "(c 1 2 3)"},
		{"(sort (c 3 1 2) decreasing=TRUE)", "(c 3 2 1)"},
		{"(sort (c 3 NA 1))", "(c 1 3)"},
		{"(sort (c 3 NA 1) na.last=TRUE)", "(c 1 3 NA)"},
		{`(sort (c "b" "c" "a"))`, `(c "a" "b" "c")`},
		{"(sort (c b=2 a=1))", "(c a=1 b=2)"},
		{"(sort NULL)", "NULL"},
		{"(order (c 3 1 2))", "(c 2L 3L 1L)"},
		{"(order (c 1 1 2) (c 3 2 1))", "(c 2L 1L 3L)"},
		{"(order (c 2 NA 1))", "(c 3L 1L 2L)"},
		{"(order (c 2 NA 1) na.last=NA)", "(c 3L 1L)"},
		{"(order (c 1 2 3) decreasing=TRUE)", "(c 3L 2L 1L)"},
	})
	e := evalErr(t, "(sort (list 1 2))")
	assert.Equal(t, "only atomic vectors can be sorted", e.Message)
	e = evalErr(t, "(order (c 1 2) (c 1 2 3))")
	assert.Equal(t, "argument lengths differ", e.Message)
}

func TestSetsAndMatching(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(unique (c 1 2 1 3 2))", "(c 1 2 3)"},
		{"(unique (c 0 -0 NA NA))", "(c 0 NA)"},
		{"(duplicated (c 1 2 1))", "(c FALSE FALSE TRUE)"},
		{"(duplicated (c 1 2 1) fromLast=TRUE)", "(c TRUE FALSE FALSE)"},
		{"(anyDuplicated (c 1 2 1))", "3L"},
		{"(anyDuplicated (c 1 2 3))", "0L"},
		{`(match (c "b" "z") (c "a" "b"))`, "(c 2L NA)"},
		{`(match "z" "a" nomatch=0L)`, "0L"},
		{"(match 2L (c 1 2))", "2L"},
		{"(match NA (c 1 NA))", "2L"},
		{"(%in% (c 1 5) (: 1L 3L))", "(c TRUE FALSE)"},
		{"(union (c 1 2) (c 2 3))", "(c 1 2 3)"},
		{"(intersect (c 1 2 3) (c 2 3 4))", "(c 2 3)"},
		{"(setdiff (c 1 2 3) 2)", "(c 1 3)"},
		{"(union NULL NULL)", "(logical 0)"},
	})
}

func TestWhich(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(which (c FALSE TRUE NA TRUE))", "(c 2L 4L)"},
		{"(which (c a=TRUE b=FALSE))", "(c a=1L)"},
		{"(which.max (c 1 3 2))", "2L"},
		{"(which.min (c b=3 a=1))", "(c a=2L)"},
		{"(which.max (c NA NA))", "(integer 0)"},
	})
	e := evalErr(t, "(which 1)")
	assert.Equal(t, TypeError, e.Kind)
	assert.Equal(t, "argument to 'which' is not logical", e.Message)
}

func TestMissingValuePredicates(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(is.na (c 1 NA NaN))", "(c FALSE TRUE TRUE)"},
		{"(is.nan (c 1 NA NaN))", "(c FALSE FALSE TRUE)"},
		{"(is.na (list 1 NA (c NA NA)))", "(c FALSE TRUE FALSE)"},
		{"(is.na (c a=NA))", "(c a=TRUE)"},
		{"(is.finite (c 1 Inf NA NaN))", "(c TRUE FALSE FALSE FALSE)"},
		{"(is.infinite (c 1 -Inf NA))", "(c FALSE TRUE FALSE)"},
		{"(is.na NULL)", "(logical 0)"},
		{"(anyNA (c 1 NA))", "TRUE"},
		{"(anyNA (list (c 1 NA)))", "FALSE"},
		{"(anyNA (list (c 1 NA)) recursive=TRUE)", "TRUE"},
	})
	assert.Equal(t, []string{"is.na() applied to non-(list or vector) of type 'symbol'"}, warningMessages(t, "(is.na (quote x))"))
	e := evalErr(t, "(is.nan (list 1))")
	assert.Equal(t, "default method not implemented for type 'list'", e.Message)
}

func TestVectorHelpers(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(append (: 1L 3L) 9L)", "(c 1L 2L 3L 9L)"},
		{"(append (: 1L 3L) 9L after=1)", "(c 1L 9L 2L 3L)"},
		{"(append (: 1L 3L) 9L after=0)", "(c 9L 1L 2L 3L)"},
		{"(head (: 1L 10L) 3)", "(: 1L 3L)"},
		{"(head (: 1L 10L) -8)", "(: 1L 2L)"},
		{"(tail (: 1L 10L) 2)", "(c 9L 10L)"},
		{"(length (head (: 1L 10L)))", "6L"},
		{"(ifelse (c TRUE FALSE NA) 1 0)", "(c 1 0 NA)"},
		{`(ifelse (c TRUE FALSE) "y" 0)`, `(c "y" "0")`},
		{"(ifelse (c a=TRUE) 1L 2L)", "(c a=1L)"},
		{"(diff (c 1 4 9 16))", "(c 3 5 7)"},
		{"(diff (c 1 4 9 16) differences=2)", "(c 2 2)"},
		{"(diff (: 1L 10L) lag=3)", "(c 3L 3L 3L 3L 3L 3L 3L)"},
		{"(diff 1)", "(numeric 0)"},
	})
	e := evalErr(t, "(ifelse TRUE NULL 1)")
	assert.Equal(t, "replacement has length zero", e.Message)
	e = evalErr(t, "(diff (: 1L 3L) lag=0)")
	assert.Equal(t, "'lag' and 'differences' must be integers >= 1", e.Message)
}
