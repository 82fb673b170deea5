package interp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thought-machine/rcore/src/value"
)

func parseOne(t *testing.T, src string) value.Value {
	t.Helper()
	exprs, err := SexpReader{}.Parse(src)
	require.NoError(t, err)
	require.Len(t, exprs, 1)
	return exprs[0]
}

func TestReadLiterals(t *testing.T) {
	for src, expected := range map[string]value.Value{
		"1":             value.Num(1),
		"1e3":           value.Num(1000),
		".5":            value.Num(0.5),
		"-2":            value.Num(-2),
		"0x10":          value.Num(16),
		"2L":            value.Int(2),
		"-2L":           value.Int(-2),
		"2i":            value.Cplx(2i),
		"TRUE":          value.Bool(true),
		"NA":            value.NALogical(),
		"NA_integer_":   value.NAInteger(),
		"NA_real_":      value.NADouble(),
		"NA_character_": value.NACharacter(),
		"NULL":          value.Null,
		"-Inf":          value.Num(math.Inf(-1)),
		`"a\tb"`:        value.Str("a\tb"),
		`'single'`:      value.Str("single"),
		`"é\x41"`:  value.Str("éA"),
		`"\U{1F600}"`:   value.Str("\U0001F600"),
		`"q\"q\\"`:      value.Str(`q"q\`),
		"x":             value.Intern("x"),
		"`my var`":      value.Intern("my var"),
		"..1":           value.Intern("..1"),
	} {
		assert.True(t, value.Identical(expected, parseOne(t, src)), "%s: got %s", src, value.Deparse(parseOne(t, src)))
	}
	assert.True(t, math.IsNaN(parseOne(t, "NaN").(*value.Double).At(0)))
}

func TestReadCalls(t *testing.T) {
	v := parseOne(t, `(f a=1 _ "b")`)
	call, ok := v.(*value.Language)
	require.True(t, ok)
	assert.Equal(t, "f", call.FnName())
	require.Len(t, call.Args, 3)
	assert.Equal(t, "a", call.Args[0].Name)
	assert.Equal(t, value.Missing, call.Args[1].Value)
	assert.Equal(t, "f(a = 1, , \"b\")", value.Deparse(v))

	v = parseOne(t, `(g "quoted name"=1 `+"`odd name`"+`=2)`)
	call = v.(*value.Language)
	assert.Equal(t, "quoted name", call.Args[0].Name)
	assert.Equal(t, "odd name", call.Args[1].Name)

	v = parseOne(t, "((f 1) 2)")
	assert.Equal(t, "f(1)(2)", value.Deparse(v))

	v = parseOne(t, "(function (x y=2) (+ x y))")
	assert.Equal(t, "function(x, y = 2) x + y", value.Deparse(v))

	v = parseOne(t, "(for i (seq_len 3) (print i))")
	assert.Equal(t, "for (i in seq_len(3)) print(i)", value.Deparse(v))
}

func TestReadComments(t *testing.T) {
	exprs, err := SexpReader{}.Parse("; leading comment\n1 # trailing\n  (f) ; another\n")
	require.NoError(t, err)
	require.Len(t, exprs, 2)
	assert.True(t, value.Identical(value.Num(1), exprs[0]))
	exprs, err = SexpReader{}.Parse("  \n ")
	require.NoError(t, err)
	assert.Empty(t, exprs)
}

func TestReadErrors(t *testing.T) {
	for src, expected := range map[string]string{
		"(f 1":               "<text>:1:5: unterminated call",
		")":                  "<text>:1:1: unexpected ')'",
		"1\n)":               "<text>:2:1: unexpected ')'",
		"()":                 "<text>:1:2: empty call",
		`"abc`:               "<text>:1:5: unterminated string",
		"`abc":               "<text>:1:5: unterminated backquoted name",
		"(function x 1)":     "<text>:1:11: expected formal argument list after function",
		"(function (1) 1)":   "<text>:1:13: invalid formal argument 1",
		"(function (x) 1 2)": "<text>:1:17: expected ) after function body",
		"a=1":                "<text>:1:4: unexpected argument name a",
		`"\xZZ"`:             "<text>:1:4: invalid escape sequence",
	} {
		_, err := SexpReader{}.Parse(src)
		require.Error(t, err, src)
		perr, ok := err.(*ParseError)
		require.True(t, ok, src)
		assert.Equal(t, expected, perr.Error(), src)
	}
}

func TestParseBuiltins(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(str2lang "(+ 1 2)")`, "(quote (+ 1 2))"},
		{`(eval (str2lang "(+ 1 2)"))`, "3"},
		{`(length (parse text="(f 1) (g 2) 3"))`, "3L"},
		{`(length (parse text="(f 1) (g 2) 3" n=2))`, "2L"},
		{`(length (parse))`, "0L"},
		{`(eval (str2expression "(* 2 3)"))`, "6"},
		{`(class (parse text="1"))`, `"expression"`},
	})
	e := evalErr(t, `(str2lang "1 2")`)
	assert.Equal(t, "parsing result not of length one, but 2", e.Message)
	e = evalErr(t, `(str2lang "(f")`)
	assert.Equal(t, "<text>:1:3: unterminated call", e.Message)
	e = evalErr(t, `(str2lang 1)`)
	assert.Equal(t, "argument must be a character string", e.Message)
}

func TestLanguageBuiltins(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(deparse (quote (f x y=1)))`, `"f(x, y = 1)"`},
		{`(body (function (x) (+ x 1)))`, "(quote (+ x 1))"},
		{`(names (formals (function (x y=2) x)))`, `(c "x" "y")`},
		{`(formals (function () 1))`, "NULL"},
		{`(<- f (function (x) x)) (<- (body f) (quote (* x 2))) (f 4)`, "8"},
		{`(<- f (function (x) (+ x y))) (<- (formals f) (list x=1 y=2)) (f)`, "3"},
		{`(names (formals (args "paste")))`, `(c "..." "sep" "collapse")`},
		{`(args "if")`, "NULL"},
		{`(as.call (list (quote f) 1 a=2))`, "(quote (f 1 a=2))"},
		{`(call "round" 10.5)`, "(quote (round 10.5))"},
		{`(eval (call "sum" 1 2))`, "3"},
		{`(as.name "abc")`, "(quote abc)"},
		{`(as.symbol "abc")`, "(quote abc)"},
		{`(is.call (quote (f)))`, "TRUE"},
		{`(is.name (quote f))`, "TRUE"},
		{`(is.symbol 1)`, "FALSE"},
		{`(is.function sum)`, "TRUE"},
		{`(is.primitive sum)`, "TRUE"},
		{`(is.primitive (function () 1))`, "FALSE"},
		{`(is.language (quote x))`, "TRUE"},
		{`(is.language 1)`, "FALSE"},
		{`((match.fun "sum") 1 2)`, "3"},
	})
	assert.Equal(t, []string{"argument is not a function"}, warningMessages(t, "(body 1)"))
	e := evalErr(t, `(call 1)`)
	assert.Equal(t, "first argument must be a character string", e.Message)
	e = evalErr(t, `(as.name "")`)
	assert.Equal(t, "attempt to use zero-length variable name", e.Message)
	e = evalErr(t, `(match.fun 1)`)
	assert.Equal(t, "'1' is not a function, character or symbol", e.Message)
}
