package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryCatch(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(tryCatch (stop "boom") error=(function (e) (conditionMessage e)))`, `"boom"`},
		{`(tryCatch (stop "a" 1 "b") error=(function (e) (conditionMessage e)))`, `"a1b"`},
		{`(tryCatch (warning "w") warning=(function (w) (conditionMessage w)))`, `"w"`},
		{`(tryCatch 1 error=(function (e) 2))`, "1"},
		{`(tryCatch)`, "NULL"},
		{`(<- x 0) (tryCatch 1 finally=(<- x 5)) x`, "5"},
		{`(<- x 0) (tryCatch (tryCatch (stop "a") finally=(<- x 5)) error=(function (e) x))`, "5"},
		{`(<- f (function () (stop "x"))) (tryCatch (f) error=(function (e) (conditionCall e)))`, "(quote (f))"},
		{`(<- f (function () (stop "x" call.=FALSE))) (tryCatch (f) error=(function (e) (conditionCall e)))`, "NULL"},
		{`(tryCatch (+ 1 "a") error=(function (e) (class e)))`, `(c "typeError" "simpleError" "error" "condition")`},
		{`(tryCatch nope error=(function (e) (class e)))`, `(c "notFoundError" "simpleError" "error" "condition")`},
		{`(tryCatch (stop (errorCondition "bad" class="myError")) myError=(function (e) "caught"))`, `"caught"`},
		{`(tryCatch (stop (errorCondition "bad" data=1)) error=(function (e) ($ e data)))`, "1"},
		{`(tryCatch (tryCatch (stop "a") error=(function (e) "inner")) error=(function (e) "outer"))`, `"inner"`},
		{`(tryCatch (tryCatch (stop "a") warning=(function (w) "inner")) error=(function (e) "outer"))`, `"outer"`},
		{`(tryCatch (c (tryCatch (stop "a") warning=(function (w) 1)) 2) error=(function (e) "caught"))`, `"caught"`},
		{`(tryCatch (list (try (warning "w") silent=TRUE) 2) warning=(function (w) "outer"))`, `"outer"`},
		{`(class (tryCatch (try (stop "a") silent=TRUE) error=(function (e) "outer")))`, `"try-error"`},
		{`(tryCatch (stop "a") condition=(function (e) "cond") error=(function (e) "err"))`, `"cond"`},
		{`(tryCatch (signalCondition (simpleCondition "m")) condition=(function (c) (conditionMessage c)))`, `"m"`},
		{`(signalCondition (simpleCondition "m"))`, "NULL"},
		{`(class (simpleError "m"))`, `(c "simpleError" "error" "condition")`},
		{`(class (warningCondition "m" class="custom"))`, `(c "custom" "warning" "condition")`},
	})
	e := evalErr(t, `(tryCatch 1 (function (e) 1))`)
	assert.Equal(t, "condition handlers must be specified with a condition class", e.Message)
	e = evalErr(t, `(tryCatch 1 error=1)`)
	assert.Equal(t, "handler for 'error' is not a function", e.Message)
}

func TestUnwindSkipsInnerTryCatch(t *testing.T) {
	assert.Equal(t, "finally\nhandler\n", output(t, `(tryCatch (tryCatch (stop "a") finally=(cat "finally\n")) error=(function (e) (cat "handler\n")))`))
	assert.Equal(t, "inner finally\nouter finally\n", output(t, `(tryCatch (tryCatch (warning "w") finally=(cat "inner finally\n")) warning=(function (w) 1) finally=(cat "outer finally\n"))`))
}

func TestStopKinds(t *testing.T) {
	e := evalErr(t, `(stop (errorCondition "bad" class="typeError"))`)
	assert.Equal(t, TypeError, e.Kind)
	assert.Equal(t, "bad", e.Message)
	e = evalErr(t, `(<- f (function () (stop "x"))) (f)`)
	assert.Equal(t, UserError, e.Kind)
	assert.Equal(t, "Error in f() : x", e.header())
	e = evalErr(t, `(stop "top")`)
	assert.Equal(t, "Error: top", e.header())
}

func TestCallingHandlers(t *testing.T) {
	i, _, stderr := newTestInterpreter()
	v := mustEval(t, i, `(withCallingHandlers ({ (warning "w") "done") warning=(function (w) (invokeRestart "muffleWarning")))`)
	assert.Equal(t, `"done"`, deparse1(v))
	assert.Empty(t, i.TakeWarnings())

	v = mustEval(t, i, `(<- n 0) (withCallingHandlers ({ (message "hi") n) message=(function (m) ({ (<<- n (+ n 1)) (invokeRestart "muffleMessage"))))`)
	assert.Equal(t, "1", deparse1(v))
	assert.Empty(t, stderr.String())

	// A calling handler that returns lets the condition carry on to the default handling.
	v = mustEval(t, i, `(<- seen NULL) (withCallingHandlers ({ (warning "w") 2) warning=(function (w) (<<- seen (conditionMessage w)))) seen`)
	assert.Equal(t, `"w"`, deparse1(v))
	w := i.TakeWarnings()
	require.Len(t, w, 1)
	assert.Equal(t, "w", w[0].Message)
}

func TestMessages(t *testing.T) {
	i, stdout, stderr := newTestInterpreter()
	mustEval(t, i, `(message "hi " 1)`)
	mustEval(t, i, `(message "no newline" appendLF=FALSE)`)
	assert.Equal(t, "hi 1\nno newline", stderr.String())
	assert.Empty(t, stdout.String())
	stderr.Reset()
	mustEval(t, i, `(suppressMessages (message "quiet"))`)
	assert.Empty(t, stderr.String())
}

func TestSuppressWarnings(t *testing.T) {
	i, _, _ := newTestInterpreter()
	v := mustEval(t, i, `(suppressWarnings ({ (warning "w") (as.integer "x") 1))`)
	assert.Equal(t, "1", deparse1(v))
	assert.Empty(t, i.TakeWarnings())
	v = mustEval(t, i, `(suppressWarnings (warning "w"))`)
	assert.Equal(t, `"w"`, deparse1(v))
}

func TestWarnOption(t *testing.T) {
	i, _, stderr := newTestInterpreter()
	mustEval(t, i, `(<- f (function () (warning "w"))) (f)`)
	w := i.TakeWarnings()
	require.Len(t, w, 1)
	assert.Equal(t, Warning{Message: "w", Call: "f()"}, w[0])
	assert.Equal(t, "In f() : w", w[0].String())

	mustEval(t, i, `(options warn=1) (f) (warning "top")`)
	assert.Equal(t, "Warning in f() : w\nWarning: top\n", stderr.String())
	assert.Empty(t, i.TakeWarnings())

	stderr.Reset()
	mustEval(t, i, `(options warn=-1) (f)`)
	assert.Empty(t, stderr.String())
	assert.Empty(t, i.TakeWarnings())

	mustEval(t, i, `(options warn=2)`)
	_, err := i.EvalString("(f)")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConvertedWarning)
	assert.Equal(t, "(converted from warning) w", err.(*Error).Message)
}

func TestWarningLimit(t *testing.T) {
	i, _, _ := newTestInterpreter()
	mustEval(t, i, `(options nwarnings=2L) (for j (: 1L 5L) (warning "w"))`)
	assert.Len(t, i.TakeWarnings(), 2)
}

func TestWarningsFunction(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(<- f (function () (warning "w"))) (f) (names (warnings))`, `"w"`},
		{`(length (warnings))`, "0L"},
	})
}

func TestTry(t *testing.T) {
	i, _, stderr := newTestInterpreter()
	v := mustEval(t, i, `(try 5)`)
	assert.Equal(t, "5", deparse1(v))
	v = mustEval(t, i, `(class (try (stop "x") silent=TRUE))`)
	assert.Equal(t, `"try-error"`, deparse1(v))
	assert.Empty(t, stderr.String())
	v = mustEval(t, i, `(geterrmessage)`)
	assert.Equal(t, `"Error : x\n"`, deparse1(v))
	mustEval(t, i, `(<- f (function () (stop "boom"))) (try (f))`)
	assert.False(t, i.Visible())
	assert.Equal(t, "Error in f() : boom\n", stderr.String())
	v = mustEval(t, i, `(conditionMessage (attr (try (f) silent=TRUE) "condition"))`)
	assert.Equal(t, `"boom"`, deparse1(v))
}

func TestRestarts(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(withRestarts (invokeRestart "myR" 5) myR=(function (x) (* x 2)))`, "10"},
		{`(withRestarts 3 myR=(function () 1))`, "3"},
		{`(withRestarts (length (computeRestarts)) r=(function () 1))`, "1L"},
		{`(withRestarts ([[ ([[ (computeRestarts) 1) 1) r=(function () 1))`, `"r"`},
		{`(withRestarts (invokeRestart ([[ (computeRestarts) 1)) r=(function () "via object"))`, `"via object"`},
	})
	e := evalErr(t, `(invokeRestart "nope")`)
	assert.Equal(t, "no 'restart' 'nope' found", e.Message)
	e = evalErr(t, `(withRestarts 1 (function () 1))`)
	assert.Equal(t, "not a valid restart specification", e.Message)
}

func TestStopifnot(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(stopifnot TRUE (== 1 1))", "NULL"},
		{"(stopifnot)", "NULL"},
	})
	e := evalErr(t, "(stopifnot (== 1 2))")
	assert.Equal(t, "1 == 2 is not TRUE", e.Message)
	e = evalErr(t, "(stopifnot (c TRUE FALSE))")
	assert.Equal(t, "c(TRUE, FALSE) are not all TRUE", e.Message)
	e = evalErr(t, "(stopifnot 1)")
	assert.Equal(t, "1 is not TRUE", e.Message)
}
