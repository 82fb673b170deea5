package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(typeof 1)", `"double"`},
		{"(typeof 1L)", `"integer"`},
		{"(typeof NULL)", `"NULL"`},
		{"(typeof (list))", `"list"`},
		{"(typeof (quote x))", `"symbol"`},
		{"(typeof (quote (f x)))", `"language"`},
		{"(typeof sum)", `"builtin"`},
		{"(typeof (function () 1))", `"closure"`},
		{"(typeof (new.env))", `"environment"`},
		{"(mode 1L)", `"numeric"`},
		{"(mode (quote x))", `"name"`},
		{"(mode (quote (f x)))", `"call"`},
		{"(mode (quote (`(` x)))", `"("`},
		{"(mode sum)", `"function"`},
		{"(storage.mode 1L)", `"integer"`},
		{"(storage.mode sum)", `"function"`},
		{`(<- x (c a=1.5 b=2)) (<- (storage.mode x) "integer") x`, "(c a=1L b=2L)"},
	})
	e := evalErr(t, `(<- x 1) (<- (storage.mode x) "foo")`)
	assert.Equal(t, "invalid value", e.Message)
	e = evalErr(t, `(<- x (structure 1L levels="a" class="factor")) (<- (storage.mode x) "double")`)
	assert.Equal(t, "invalid to change the storage mode of a factor", e.Message)
}

func TestTypePredicates(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(is.null NULL)", "TRUE"},
		{"(is.integer 1)", "FALSE"},
		{"(is.double 1)", "TRUE"},
		{`(is.character "a")`, "TRUE"},
		{"(is.numeric 1L)", "TRUE"},
		{`(is.numeric (structure 1L levels="a" class="factor"))`, "FALSE"},
		{"(is.list (list))", "TRUE"},
		{"(is.atomic (list))", "FALSE"},
		{"(is.atomic 1)", "TRUE"},
		{"(is.vector (c a=1))", "TRUE"},
		{"(is.vector (matrix 1))", "FALSE"},
		{`(is.vector 1L "numeric")`, "TRUE"},
		{`(is.vector 1L "double")`, "FALSE"},
		{`(is.vector (list) "list")`, "TRUE"},
		{"(is.vector (quote x))", "FALSE"},
		{"(is.matrix (matrix 1))", "TRUE"},
		{"(is.array (matrix 1))", "TRUE"},
		{"(is.array 1)", "FALSE"},
		{`(is.factor (structure 1L levels="a" class="factor"))`, "TRUE"},
		{"(is.element (c 2 5) (c 1 2))", "(c TRUE FALSE)"},
		{"(is.environment (globalenv))", "TRUE"},
	})
}

func TestAsConversions(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(as.integer "3.7")`, "3L"},
		{"(as.integer (c a=1.9 b=-1.9))", "(c 1L -1L)"},
		{"(as.numeric TRUE)", "1"},
		{"(as.integer TRUE)", "1L"},
		{"(as.double (c TRUE NA))", "(c 1 NA)"},
		{"(as.integer (as.raw 3L))", "3L"},
		{`(as.logical (c "T" "false" "yes"))`, "(c TRUE FALSE NA)"},
		{"(as.logical (: 0L 1L))", "(c FALSE TRUE)"},
		{"(as.character 1.5)", `"1.5"`},
		{"(as.character (list 1 \"a\"))", `(c "1" "a")`},
		{`(as.character (structure (c 2L 1L) levels=(c "a" "b") class="factor"))`, `(c "b" "a")`},
		{"(as.vector (c a=1))", "1"},
		{`(as.vector 1 "list")`, "(list 1)"},
		{`(as.vector (c a=1) "list")`, "(list a=1)"},
		{`(as.vector 1L "character")`, `"1"`},
		{`(as.vector "x" "symbol")`, "(quote x)"},
		{"(as.list (c a=1 b=2))", "(list a=1 b=2)"},
		{"(as.list NULL)", "(list)"},
		{"(identical (c 1 2) (c 1 2))", "TRUE"},
		{"(identical 1L 1)", "FALSE"},
		{"(identical (c a=1) 1)", "FALSE"},
	})
	assert.Equal(t, []string{"NAs introduced by coercion"}, warningMessages(t, `(as.integer "x")`))
	e := evalErr(t, `(as.integer (new.env))`)
	assert.Equal(t, "cannot coerce type 'environment' to vector of type 'integer'", e.Message)
	e = evalErr(t, `(as.vector 1 "foo")`)
	assert.Equal(t, "vector: cannot make a vector of mode 'foo'.", e.Message)
	e = evalErr(t, `(as.vector 1 "function")`)
	assert.Equal(t, "cannot coerce to function", e.Message)
}

func TestUseMethod(t *testing.T) {
	const generic = `(<- describe (function (x ...) (UseMethod "describe")))
		(<- describe.foo (function (x ...) "foo"))
		(<- describe.default (function (x ...) "default"))
	`
	runEvalTests(t, []evalTest{
		{generic + `(describe (structure 1 class="foo"))`, `"foo"`},
		{generic + `(describe (structure 1 class=(c "bar" "foo")))`, `"foo"`},
		{generic + `(describe 1)`, `"default"`},
		{generic + `(<- describe.double (function (x ...) "double")) (describe 1)`, `"double"`},
		{generic + `(<- describe.matrix (function (x ...) "matrix")) (describe (matrix 1))`, `"matrix"`},
		{generic + `(<- describe.function (function (x ...) "fn")) (describe sum)`, `"fn"`},
		{generic + `(<- describe.foo (function (x ...) .Generic)) (describe (structure 1 class="foo"))`, `"describe"`},
		{generic + `(<- describe.foo (function (x ...) .Class)) (describe (structure 1 class=(c "foo" "bar")))`, `(c "foo" "bar")`},
		{generic + `(<- describe.foo (function (x ...) (sys.call))) (describe (structure 1 class="foo"))`, `(quote (describe.foo (structure 1 class="foo")))`},
		// Arguments are not re-evaluated when passed on to the method.
		{generic + `(<- n 0) (<- describe.foo (function (x ...) n)) (describe ({ (<- n (+ n 1)) (structure 1 class="foo")))`, "1"},
		// Code after UseMethod never runs.
		{`(<- g (function (x) ({ (UseMethod "g") "after"))) (<- g.default (function (x) "method")) (g 1)`, `"method"`},
		{`(<- g (function (x) (UseMethod "g"))) (registerS3method "g" "baz" (function (x) "registered")) (g (structure 1 class="baz"))`, `"registered"`},
	})
	e := evalErr(t, `(<- g (function (x) (UseMethod "g"))) (g 1)`)
	assert.Equal(t, `no applicable method for 'g' applied to an object of class "c('double', 'numeric')"`, e.Message)
	e = evalErr(t, `(<- g (function (x) (UseMethod "g"))) (g "a")`)
	assert.Equal(t, `no applicable method for 'g' applied to an object of class "character"`, e.Message)
	e = evalErr(t, `(<- g (function (x) (UseMethod NA_character_))) (g 1)`)
	assert.Equal(t, "'generic' argument must be a character string", e.Message)
}

func TestNextMethod(t *testing.T) {
	const methods = `(<- f (function (x) (UseMethod "f")))
		(<- f.a (function (x) (c "a" (NextMethod))))
		(<- f.b (function (x) (c "b" (NextMethod))))
		(<- f.default (function (x) "default"))
	`
	runEvalTests(t, []evalTest{
		{methods + `(f (structure 1 class=(c "a" "b")))`, `(c "a" "b" "default")`},
		{methods + `(f (structure 1 class="b"))`, `(c "b" "default")`},
		{methods + `(<- f.b (function (x) .Class)) (f (structure 1 class=(c "a" "b")))`, `(c "a" "b")`},
		{`(<- as.integer.foo (function (x ...) (+ (NextMethod) 1L))) (as.integer (structure 2.7 class="foo"))`, "3L"},
		{`(<- f.a (function (x) (c "a" (NextMethod)))) (<- f.default (function (x) "default")) (f.a (structure 1 class="a"))`, `(c "a" "default")`},
	})
	e := evalErr(t, `(<- f (function (x) (NextMethod))) (f 1)`)
	assert.Equal(t, "generic function not specified", e.Message)
	e = evalErr(t, `(<- f (function (x) (UseMethod "f"))) (<- f.a (function (x) (NextMethod))) (f (structure 1 class="a"))`)
	assert.Equal(t, "no more methods for 'f'", e.Message)
}

func TestInternalDispatch(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(<- as.integer.myclass (function (x ...) 42L)) (as.integer (structure 1 class="myclass"))`, "42L"},
		{`(<- as.integer.myclass (function (x ...) 42L)) (as.integer 1)`, "1L"},
		{`(<- +.money (function (e1 e2) "added")) (+ (structure 1 class="money") 2)`, `"added"`},
		{`(<- +.money (function (e1 e2) "added")) (+ 2 (structure 1 class="money"))`, `"added"`},
		{`(<- Ops.money (function (e1 e2) .Generic)) (* (structure 1 class="money") 2)`, `"*"`},
		{`(<- Summary.money (function (... na.rm) .Generic)) (max (structure 1 class="money"))`, `"max"`},
		{`(<- length.box (function (x) 99L)) (length (structure (list) class="box"))`, "99L"},
	})
	assert.Equal(t, []string{`Incompatible methods ("+.a", "+.b") for "+"`},
		warningMessages(t, `(<- +.a (function (e1 e2) 1)) (<- +.b (function (e1 e2) 2)) (+ (structure 1 class="a") (structure 2 class="b"))`))
}

func TestMethods(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(<- describe.foo (function (x) 1)) (<- describe.bar (function (x) 2)) (<- describe.x 3) (methods "describe")`, `(c "describe.bar" "describe.foo")`},
		{`(registerS3method "g" "baz" (function (x) 1)) (methods class="baz")`, `"g.baz"`},
		{`(methods "format")`, `(c "format.Date" "format.POSIXct" "format.default" "format.factor")`},
		{`(methods "nothing")`, "(character 0)"},
	})
	e := evalErr(t, `(methods)`)
	assert.Equal(t, "must supply 'generic.function' or 'class'", e.Message)
}
