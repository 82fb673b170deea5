package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubset(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"([ (c 10 20 30) 2)", "20"},
		{"([ (c 10 20 30) (c 1 3))", "(c 10 30)"},
		{"([ (c 10 20 30) -1)", "(c 20 30)"},
		{"([ (c 10 20 30) (c TRUE FALSE))", "(c 10 30)"},
		{"([ (c 10 20 30) 5)", "NA_real_"},
		{"([ (c 10 20 30) 0)", "(numeric 0)"},
		{"([ (c 10 20 30) NA_integer_)", "NA_real_"},
		{"([ (c 10 20 30) 2.9)", "20"},
		{`([ (c a=1 b=2) "b")`, "(c b=2)"},
		{`([ (c a=1 b=2) (c "b" "a"))`, "(c b=2 a=1)"},
		{"([ (c a=1 b=2) -2)", "(c a=1)"},
		{"([ (list 1 \"a\") 2)", `(list "a")`},
		{"([ NULL 1)", "NULL"},
		{"([ (c 1 2) _)", "(c 1 2)"},
		{"([ (c 1 2))", "(c 1 2)"},
		{"([ (quote (f x y)) (c 1 3))", "(quote (f y))"},
	})
}

func TestSubsetErrors(t *testing.T) {
	e := evalErr(t, "([ (c 1 2 3) (c -1 2))")
	assert.Equal(t, "can't mix positive and negative subscripts", e.Message)
	e = evalErr(t, "([ (c 1 2 3) (list 1))")
	assert.Equal(t, TypeError, e.Kind)
	assert.Equal(t, "invalid subscript type 'list'", e.Message)
	e = evalErr(t, "([ (c 1 2 3) 1 1)")
	assert.Equal(t, "incorrect number of dimensions", e.Message)
	e = evalErr(t, "([ (function () 1) 1)")
	assert.Equal(t, "object of type 'closure' is not subsettable", e.Message)
}

func TestMatrixSubset(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(<- m (matrix (: 1L 6L) nrow=2)) ([ m 2 3)", "6L"},
		{"(<- m (matrix (: 1L 6L) nrow=2)) ([ m 1 _)", "(c 1L 3L 5L)"},
		{"(<- m (matrix (: 1L 6L) nrow=2)) ([ m _ 2)", "(c 3L 4L)"},
		{"(<- m (matrix (: 1L 6L) nrow=2)) (dim ([ m _ (c 1 2)))", "(c 2L 2L)"},
		{"(<- m (matrix (: 1L 6L) nrow=2)) (dim ([ m 1 _ drop=FALSE))", "(c 1L 3L)"},
		{"(<- m (matrix (: 1L 6L) nrow=2)) ([ m 5)", "5L"},
		{`(<- m (matrix (: 1L 4L) 2 dimnames=(list (c "a" "b") (c "x" "y")))) ([ m "b" "y")`, "4L"},
		{`(<- m (matrix (: 1L 4L) 2 dimnames=(list (c "a" "b") (c "x" "y")))) ([ m _ "x")`, "(c a=1L b=2L)"},
		{"(<- m (matrix (: 1L 6L) nrow=2)) ([ m (matrix (c 1 2 2 3) 2))", "(c 3L 6L)"},
		{"(<- m (matrix (: 1L 6L) nrow=2)) ([[ m 2 2)", "4L"},
	})
	e := evalErr(t, "(<- m (matrix (: 1L 6L) nrow=2)) ([ m 3 1)")
	assert.Equal(t, "subscript out of bounds", e.Message)
}

func TestSubset2(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"([[ (c 10 20 30) 2)", "20"},
		{`([[ (list a=1 b="x") "b")`, `"x"`},
		{`([[ (list a=1 b="x") 1)`, "1"},
		{`([[ (list abc=1) "a" exact=FALSE)`, "1"},
		{`([[ (list abc=1) "a")`, "NULL"},
		{`([[ (list a=(list b=5)) (c "a" "b"))`, "5"},
		{`([[ (c a=1 b=2) "b")`, "2"},
		{"([[ (c 1 2) NA)", "NA_real_"},
		{"([[ NULL 1)", "NULL"},
		{"([[ (quote (f x)) 2)", "(quote x)"},
		{`(getElement (list a=1) "a")`, "1"},
	})
	e := evalErr(t, "([[ (c 1 2) 5)")
	assert.Equal(t, "subscript out of bounds", e.Message)
	e = evalErr(t, "([[ (c 1 2) (c 1 2))")
	assert.Equal(t, "attempt to select more than one element in vectorIndex", e.Message)
	e = evalErr(t, "([[ (c 1 2) (integer 0))")
	assert.Equal(t, "attempt to select less than one element in get1index", e.Message)
	e = evalErr(t, "([[ (c 1 2) 0)")
	assert.Equal(t, "attempt to select less than one element in get1index <real>", e.Message)
	e = evalErr(t, `([[ (c a=1) "z")`)
	assert.Equal(t, "subscript out of bounds", e.Message)
}

func TestDollar(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`($ (list abc=1) abc)`, "1"},
		{`($ (list abc=1) ab)`, "1"},
		{`($ (list abc=1 abd=2) ab)`, "NULL"},
		{`($ (list abc=1) "abc")`, "1"},
		{`($ NULL a)`, "NULL"},
		{`(<- e (new.env)) (assign "v" 3 envir=e) ($ e v)`, "3"},
	})
	e := evalErr(t, "($ (c a=1) a)")
	assert.Equal(t, TypeError, e.Kind)
	assert.Equal(t, "$ operator is invalid for atomic vectors", e.Message)
}

func TestSubassign(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(<- x (c 1 2 3)) (<- ([ x 2) 20) x", "(c 1 20 3)"},
		{"(<- x (c 1 2 3)) (<- ([ x (c 1 3)) 0) x", "(c 0 2 0)"},
		{"(<- x (: 1L 3L)) (<- ([ x 2) 2.5) x", "(c 1 2.5 3)"},
		{`(<- x (: 1L 2L)) (<- ([ x 2) "b") x`, `(c "1" "b")`},
		{"(<- x (c 1 2)) (<- ([ x 5) 5) x", "(c 1 2 NA NA 5)"},
		{`(<- x (c a=1)) (<- ([ x "b") 2) x`, "(c a=1 b=2)"},
		{"(<- x (c 1 2 3)) (<- ([ x (> x 1)) 0) x", "(c 1 0 0)"},
		{"(<- x (c 1 2 3)) (<- ([ x _) 9) x", "(c 9 9 9)"},
		{"(<- x (c 1 2 3)) (<- ([ x -1) (c 8 9)) x", "(c 1 8 9)"},
		{"(<- x (list 1 2 3)) (<- ([ x 2) NULL) x", "(list 1 3)"},
		{"(<- x NULL) (<- ([ x 3) 1L) x", "(c NA NA 1L)"},
		{"(<- m (matrix 0 2 2)) (<- ([ m 1 2) 5) (as.vector m)", "(c 0 0 5 0)"},
		{"(<- m (matrix 0 2 2)) (<- ([ m 2 _) 1) (as.vector m)", "(c 0 1 0 1)"},
		{"(<- x (c 1 2)) (<- ([ x 1) (list 9)) x", "(list 9 2)"},
	})
	assert.Equal(t, []string{"number of items to replace is not a multiple of replacement length"}, warningMessages(t, "(<- x (c 1 2 3)) (<- ([ x (: 1L 3L)) (c 1 2))"))
	e := evalErr(t, "(<- x (c 1 2 3)) (<- ([ x 1) (numeric 0))")
	assert.Equal(t, "replacement has length zero", e.Message)
	e = evalErr(t, "(<- x (c 1 2 3)) (<- ([ x (c 1 NA)) (c 1 2))")
	assert.Equal(t, "NAs are not allowed in subscripted assignments", e.Message)
}

func TestSubassign2(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(<- x (list 1 2)) (<- ([[ x 1) \"a\") x", `(list "a" 2)`},
		{`(<- x (list a=1)) (<- ([[ x "b") 2) x`, "(list a=1 b=2)"},
		{`(<- x (list a=1 b=2)) (<- ([[ x "a") NULL) x`, "(list b=2)"},
		{"(<- x (c 1 2)) (<- ([[ x 2) 5) x", "(c 1 5)"},
		{"(<- x (c 1 2)) (<- ([[ x 2) (list 5)) x", "(list 1 (list 5))"},
		{`(<- x (list a=(list b=1))) (<- ([[ x (c "a" "b")) 2) x`, "(list a=(list b=2))"},
		{"(<- x NULL) (<- ([[ x 1) 5) x", "5"},
		{"(<- x NULL) (<- ([[ x 1) (c 1 2)) x", "(list (c 1 2))"},
		{"(<- m (matrix 0 2 2)) (<- ([[ m 2 2) 7) (as.vector m)", "(c 0 0 0 7)"},
		{`(<- e (new.env)) (<- ([[ e "k") 1) (get "k" envir=e)`, "1"},
	})
	e := evalErr(t, "(<- x (c 1 2)) (<- ([[ x 1) (c 1 2))")
	assert.Equal(t, "more elements supplied than there are to replace", e.Message)
	e = evalErr(t, "(<- x (c 1 2)) (<- ([[ x 1) (numeric 0))")
	assert.Equal(t, "replacement has length zero", e.Message)
}

func TestDollarAssign(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(<- x (list)) (<- ($ x a) 1) x", "(list a=1)"},
		{"(<- x (list a=1 b=2)) (<- ($ x a) NULL) x", "(list b=2)"},
		{"(<- x NULL) (<- ($ x a) 1) x", "(list a=1)"},
		{`(<- e (new.env)) (<- ($ e v) 2) (get "v" envir=e)`, "2"},
	})
	assert.Equal(t, []string{"Coercing LHS to a list"}, warningMessages(t, "(<- x (c 1)) (<- ($ x a) 2) x"))
}

func TestSubassignCopiesOnModify(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(<- x (c 1 2)) (<- y x) (<- ([ y 1) 9) x", "(c 1 2)"},
		{"(<- x (list 1)) (<- y x) (<- ([[ y 1) 9) x", "(list 1)"},
		{"(<- f (function (v) ({ (<- ([ v 1) 0) v))) (<- x (c 1 2)) (f x) x", "(c 1 2)"},
	})
}
