package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLapply(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(lapply (: 1L 3L) (function (x) (* x 2L)))", "(list 2L 4L 6L)"},
		{"(lapply (list a=1 b=2) (function (x) x))", "(list a=1 b=2)"},
		{`(lapply (c "a" "bb") "nchar")`, "(list 1L 2L)"},
		{"(lapply NULL length)", "(list)"},
		{"(lapply (: 1L 2L) (function (x y) (+ x y)) 10L)", "(list 11L 12L)"},
	})
}

func TestSapply(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(sapply (: 1L 3L) (function (x) (* x 2)))", "(c 2 4 6)"},
		{`(sapply (c "a" "bb") nchar)`, "(c a=1L bb=2L)"},
		{`(sapply (c "a" "bb") nchar USE.NAMES=FALSE)`, "(c 1L 2L)"},
		{"(dim (sapply (: 1L 2L) (function (x) (c x x))))", "(c 2L 2L)"},
		{"(as.vector (sapply (: 1L 2L) (function (x) (c x x))))", "(c 1L 1L 2L 2L)"},
		{"(sapply (: 1L 2L) (function (x) (seq_len x)))", "(list 1L (: 1L 2L))"},
		{"(sapply (: 1L 2L) (function (x) x) simplify=FALSE)", "(list 1L 2L)"},
		{"(sapply (list) length)", "(list)"},
		{"(sapply (: 1L 3L) (function (x y) (+ x y)) 10L)", "(c 11L 12L 13L)"},
	})
}

func TestVapply(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(vapply (: 1L 3L) (function (x) (* x 2)) (numeric 1))", "(c 2 4 6)"},
		{"(vapply (: 1L 2L) (function (x) x) (numeric 1))", "(c 1 2)"},
		{`(vapply (list a=1 b=2) (function (x) (> x 1)) (logical 1))`, "(c a=FALSE b=TRUE)"},
		{"(dim (vapply (: 1L 3L) (function (x) (c x x)) (integer 2)))", "(c 2L 3L)"},
		{"(vapply (integer 0) (function (x) x) (numeric 1))", "(numeric 0)"},
	})
	e := evalErr(t, `(vapply (: 1L 2L) (function (x) "a") (numeric 1))`)
	assert.Contains(t, e.Message, "values must be type 'double'")
	e = evalErr(t, `(vapply (: 1L 2L) (function (x) (c x x)) (numeric 1))`)
	assert.Equal(t, "values must be length 1,\n but FUN(X[[1]]) result is length 2", e.Message)
}

func TestMapply(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(mapply (function (x y) (+ x y)) (: 1L 3L) (c 10L 20L 30L))", "(c 11L 22L 33L)"},
		{"(mapply (function (x y) (+ x y)) (: 1L 2L) (: 1L 2L) SIMPLIFY=FALSE)", "(list 2L 4L)"},
		{`(mapply (function (x n) (strrep x n)) (c "a" "b") (: 1L 2L))`, `(c a="a" b="bb")`},
		{"(mapply (function (x y) (+ x y)) (: 1L 2L) MoreArgs=(list y=10L))", "(c 11L 12L)"},
		{"(Map (function (x y) (* x y)) (: 1L 2L) (: 3L 4L))", "(list 3L 8L)"},
		{"(mapply (function (x) x) (integer 0))", "(list)"},
	})
	assert.Equal(t, []string{"longer argument not a multiple of length of shorter"}, warningMessages(t, "(mapply + (: 1L 3L) (: 1L 2L))"))
	e := evalErr(t, "(mapply + 1 MoreArgs=1)")
	assert.Equal(t, "argument 'MoreArgs' of 'mapply' is not a list", e.Message)
}

func TestReduceAndFilter(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(Reduce + (: 1L 4L))", "10L"},
		{"(Reduce + (: 1L 4L) accumulate=TRUE)", "(c 1L 3L 6L 10L)"},
		{`(Reduce (function (a b) (paste0 a b)) (c "a" "b" "c"))`, `"abc"`},
		{`(Reduce (function (a b) (paste0 a b)) (c "a" "b" "c") right=TRUE)`, `"abc"`},
		{`(Reduce (function (a b) (paste0 b a)) (c "a" "b" "c") right=TRUE)`, `"cba"`},
		{"(Reduce + (list) 0)", "0"},
		{"(Reduce + (list))", "NULL"},
		{"(Reduce + (: 1L 3L) 100L)", "106L"},
		{"(Filter (function (x) (> x 1)) (c 1 2 3))", "(c 2 3)"},
		{"(Filter (function (x) (> x 1)) (c a=1 b=2))", "(c b=2)"},
		{"(Filter (function (x) FALSE) (c 1 2))", "(numeric 0)"},
		{"(Filter is.character (list 1 \"a\"))", `(list "a")`},
	})
}

func TestDoCall(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(do.call "sum" (list 1 2 3))`, "6"},
		{`(do.call paste (list "a" "b" sep="-"))`, `"a-b"`},
		{`(do.call (function (x y) (- x y)) (list y=1 x=10))`, "9"},
		{`(do.call "c" (list))`, "NULL"},
		{`(do.call "length" (list (quote x)) quote=TRUE)`, "1L"},
	})
	e := evalErr(t, "(do.call 1 (list))")
	assert.Equal(t, "'what' must be a function or character string", e.Message)
	e = evalErr(t, `(do.call "sum" 1)`)
	assert.Equal(t, "second argument must be a list", e.Message)
}
