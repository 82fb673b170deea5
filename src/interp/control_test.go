package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlFlow(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(if TRUE 1 2)", "1"},
		{"(if FALSE 1 2)", "2"},
		{"(if FALSE 1)", "NULL"},
		{`(if "true" 1 2)`, "1"},
		{"(<- x 0) (for i (seq_len 10) (<- x (+ x i))) x", "55"},
		{"(<- x 0) (while (< x 5) (<- x (+ x 1))) x", "5"},
		{"(<- x 0) (repeat (if (>= x 3) (break) (<- x (+ x 1)))) x", "3"},
		{"(<- x 0) (for i (seq_len 10) (if (== (%% i 2) 0) (next) (<- x (+ x i)))) x", "25"},
		{"(for i NULL 1)", "NULL"},
		{`(switch "b" a=1 b=2 3)`, "2"},
		{`(switch "z" a=1 b=2 3)`, "3"},
		{`(switch "a" a=_ b=2)`, "2"},
		{"(switch 2 \"x\" \"y\")", `"y"`},
		{"(is.null (switch 3 1 2))", "TRUE"},
		{"(&& TRUE FALSE)", "FALSE"},
		{"(&& FALSE (stop \"not evaluated\"))", "FALSE"},
		{"(|| TRUE (stop \"not evaluated\"))", "TRUE"},
		{"(&& NA TRUE)", "NA"},
		{"(|| NA TRUE)", "TRUE"},
		{"({ 1 2 3)", "3"},
	})
}

func TestConditionErrors(t *testing.T) {
	assert.Equal(t, "argument is of length zero", evalErr(t, "(if NULL 1)").Message)
	assert.Equal(t, "missing value where TRUE/FALSE needed", evalErr(t, "(if NA 1)").Message)
	assert.Equal(t, "the condition has length > 1", evalErr(t, "(if (c TRUE FALSE) 1)").Message)
	assert.Equal(t, "argument is not interpretable as logical", evalErr(t, `(if "maybe" 1)`).Message)
}

func TestClosures(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"((function (x y) (- x y)) 5 3)", "2"},
		{"((function (x y) (- x y)) y=5 x=3)", "-2"},
		{"((function (value verbose) value) val=1 2)", "1"},
		{"((function (x y=(* x 2)) y) 4)", "8"},
		{"((function (x) (missing x)))", "TRUE"},
		{"((function (x=1) (missing x)))", "TRUE"},
		{"((function (x) (missing x)) 1)", "FALSE"},
		{"((function (...) (length (list ...))) 1 2 3)", "3L"},
		{"((function (...) ..2) 1 \"b\" 3)", `"b"`},
		{"((function (...) (names (list ...))) a=1 2)", `(c "a" "")`},
		{"((function () ({ (return 1) 2)))", "1"},
		{"(<- make (function () ({ (<- n 0) (function () ({ (<<- n (+ n 1)) n))))) (<- counter (make)) (counter) (counter)", "2"},
		{"(<- x 1) ((function () (<<- x 2))) x", "2"},
		{"((function (x) ({ (<- x 5) x)) 1)", "5"},
	})
}

func TestLazyEvaluation(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`((function (x) 1) (stop "never"))`, "1"},
		{"(<- n 0) (<- f (function (x) (+ x x))) (f (<- n (+ n 1))) n", "1"},
		{"((function (x) ({ (force x) (substitute x))) (+ 1 2))", "(quote (+ 1 2))"},
	})
}

func TestRecursiveDefault(t *testing.T) {
	err := evalErr(t, "((function (x=x) x))")
	assert.ErrorIs(t, err, ErrArgument)
	assert.Contains(t, err.Message, "promise already under evaluation")
}

func TestMissingArgument(t *testing.T) {
	err := evalErr(t, "((function (x) x))")
	assert.ErrorIs(t, err, ErrArgument)
	assert.Equal(t, `argument "x" is missing, with no default`, err.Message)
}

func TestUnusedArgument(t *testing.T) {
	err := evalErr(t, "((function (x) x) 1 2)")
	assert.ErrorIs(t, err, ErrArgument)
	assert.Equal(t, "unused argument (2)", err.Message)
}

func TestRecall(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(<- f (function (n) (if (<= n 1) 1 (* n (Recall (- n 1)))))) (f 10)", "3628800"},
		// Recall calls the function that is running, not whatever f is bound to now.
		{"(<- f (function (n) (if (<= n 1) 1 (* n (Recall (- n 1)))))) (<- g f) (<- f NULL) (g 10)", "3628800"},
		{"(<- f (function (n acc=1) (if (<= n 1) acc (Recall (- n 1) (* n acc))))) (f 5)", "120"},
	})
	err := evalErr(t, "(Recall 1)")
	assert.Contains(t, err.Message, "outside a closure")
}

func TestOnExit(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(<- out NULL)
		  (<- f (function () ({
		    (on.exit (<<- out (c out "a")))
		    (on.exit (<<- out (c out "b")) add=TRUE)
		    (<<- out (c out "body"))
		    1)))
		  (f)
		  out`, `(c "body" "a" "b")`},
		{`(<- out NULL)
		  (<- f (function () ({
		    (on.exit (<<- out (c out "a")))
		    (on.exit (<<- out (c out "b")) add=TRUE after=FALSE)
		    1)))
		  (f)
		  out`, `(c "b" "a")`},
		{`(<- out NULL)
		  (<- f (function () ({
		    (on.exit (<<- out (c out "a")))
		    (on.exit (<<- out (c out "b")))
		    1)))
		  (f)
		  out`, `"b"`},
		{`(<- out NULL)
		  (<- f (function () ({
		    (on.exit (<<- out "a"))
		    (on.exit)
		    1)))
		  (f)
		  out`, "NULL"},
		{`(<- f (function () ({ (on.exit (<- x 2)) (<- x 1) x))) (f)`, "1"},
		// on.exit runs when the frame exits with an error too.
		{`(<- out NULL)
		  (<- f (function () ({ (on.exit (<<- out "cleaned")) (stop "boom"))))
		  (try (f) silent=TRUE)
		  out`, `"cleaned"`},
		{`(<- out NULL)
		  (<- f (function () ({ (on.exit (<<- out "cleaned")) (return 5) 6)))
		  (list (f) out)`, `(list 5 "cleaned")`},
	})
}

func TestNestingLimit(t *testing.T) {
	err := evalErr(t, "(<- f (function (n) (f (+ n 1)))) (f 1)")
	assert.Contains(t, err.Message, "evaluation nested too deeply")
}

func TestNestingLimitOption(t *testing.T) {
	err := evalErr(t, "(options expressions=100L) (<- f (function (n) (if (> n 200) n (f (+ n 1))))) (f 1)")
	assert.Contains(t, err.Message, "evaluation nested too deeply")
}

func TestAssignment(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(= x 3) x", "3"},
		{`(<- "x" 3) x`, "3"},
		{"(<- x (c 1 2 3)) (<- (`[` x 2) 10) x", "(c 1 10 3)"},
		{"(<- x (list a=1)) (<- (`$` x b) 2) (names x)", `(c "a" "b")`},
		{"(<- x (c 1 2)) (<- (names x) (c \"a\" \"b\")) (<- (`[` (names x) 2) \"z\") (names x)", `(c "a" "z")`},
		{"(<- x (list a=(list b=1))) (<- (`$` (`$` x a) b) 5) (`$` (`$` x a) b)", "5"},
		{"(<- x (c 1 2 3)) (<- y x) (<- (`[` y 1) 0) x", "(c 1 2 3)"},
		{"(<- x 1) (<- (attr x \"foo\") \"bar\") x", `(structure 1 foo="bar")`},
	})
}

func TestQuoteAndSubstitute(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(deparse (quote (+ x 1)))", `"x + 1"`},
		{"((function (x) (deparse (substitute x))) (* a b))", `"a * b"`},
		{"(substitute (+ x y) (list x=1 y=(quote z)))", "(quote (+ 1 z))"},
		{"(<- x 5) (bquote (+ (. x) y))", "(quote (+ 5 y))"},
		{"(<- args (list 1 2)) (bquote (f (.. args)) splice=TRUE)", "(quote (f 1 2))"},
		{"(eval (quote (+ 1 2)))", "3"},
		{"(eval (quote (+ a b)) (list a=1 b=2))", "3"},
		{"(<- e (new.env)) (assign \"a\" 10 envir=e) (evalq (* a 2) e)", "20"},
		{"(local ({ (<- y 2) (* y 3)))", "6"},
		{"(local (<- y 2)) (exists \"y\")", "FALSE"},
		{"(delayedAssign \"lazy\" (stop \"forced\")) 1", "1"},
		{"(<- n 0) (delayedAssign \"lazy\" (<- n (+ n 1))) lazy lazy n", "1"},
		{"(length (expression a (+ b 1)))", "2L"},
	})
}
