package interp

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// output evaluates src and returns what it wrote to stdout.
func output(t *testing.T, src string) string {
	t.Helper()
	i, stdout, _ := newTestInterpreter()
	mustEval(t, i, src)
	return stdout.String()
}

func TestCat(t *testing.T) {
	assert.Equal(t, "a 1 TRUE", output(t, `(cat "a" 1 TRUE)`))
	assert.Equal(t, "ab", output(t, `(cat "a" "b" sep="")`))
	assert.Equal(t, "1.5 x \n", output(t, `(cat 1.5 NULL "x" "\n")`))
	assert.Equal(t, "1+2-3", output(t, `(cat 1 2 3 sep=(c "+" "-"))`))
	assert.Equal(t, "1 a", output(t, `(cat (list 1 "a"))`))
	assert.Equal(t, "x NA", output(t, `(cat (quote x) NA_character_)`))
	assert.Equal(t, "a b\n", output(t, `(cat "a" "b" fill=TRUE)`))
	assert.Equal(t, "1 2 3", output(t, `(cat (: 1L 3L))`))

	e := evalErr(t, `(cat (list (c 1 2)))`)
	assert.Equal(t, TypeError, e.Kind)
	assert.Equal(t, "argument 1 (type 'list') cannot be handled by 'cat'", e.Message)
	e = evalErr(t, `(cat "a" (new.env))`)
	assert.Equal(t, "argument 2 (type 'environment') cannot be handled by 'cat'", e.Message)
}

func TestCatToFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.txt")
	i, stdout, _ := newTestInterpreter()
	mustEval(t, i, fmt.Sprintf(`(cat "first" "\n" file=%q) (cat "second" file=%q append=TRUE)`, filename, filename))
	assert.Empty(t, stdout.String())
	b, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "first \nsecond", string(b))

	mustEval(t, i, fmt.Sprintf(`(writeLines (c "x" "y") %q)`, filename))
	b, err = os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "x\ny\n", string(b))
}

func TestWriteLines(t *testing.T) {
	assert.Equal(t, "a\nb\n", output(t, `(writeLines (c "a" "b"))`))
	assert.Equal(t, "a;b;", output(t, `(writeLines (c "a" "b") sep=";")`))
	assert.Equal(t, "NA\n", output(t, `(writeLines NA_character_)`))
	e := evalErr(t, `(writeLines 1)`)
	assert.Equal(t, "can only write character objects", e.Message)
}

func TestPrintBuiltin(t *testing.T) {
	assert.Equal(t, "[1] 1 2 3\n", output(t, `(print (c 1 2 3))`))
	assert.Equal(t, "[1] \"a\"\n", output(t, `(print "a")`))
	assert.Equal(t, "[1] a\n", output(t, `(print "a" quote=FALSE)`))
	assert.Equal(t, "[1] 3.14\n", output(t, `(print 3.14159 digits=3)`))
	assert.Equal(t, "NULL\n", output(t, `(print NULL)`))
	assert.Equal(t, "[1] a b a\nLevels: a b\n", output(t, `(print (structure (c 1L 2L 1L) levels=(c "a" "b") class="factor"))`))
	assert.Equal(t, "[1] 2023-03-14\n", output(t, `(print (as.Date "2023-03-14"))`))
	assert.Equal(t, "[1] 2023-03-14 15:09:26 UTC\n", output(t, `(print (Sys.time))`))
	assert.Equal(t, "<foo>\n", output(t, `(<- print.foo (function (x ...) (cat "<foo>\n"))) (print (structure 1 class="foo"))`))
	assert.Equal(t, "[1] 4\n", output(t, `(options digits=3) (print 4)`))

	i, stdout, _ := newTestInterpreter()
	v := mustEval(t, i, `(print (c a=1))`)
	assert.Equal(t, "a \n1 \n", stdout.String())
	assert.Equal(t, "c(a = 1)", deparse1(v))
}

func TestFormat(t *testing.T) {
	runEvalTests(t, []evalTest{
		{"(format 3.14159 digits=3)", `"3.14"`},
		{"(format (c 1 10 100))", `(c "  1" " 10" "100")`},
		{"(format (c 1 10) trim=TRUE)", `(c "1" "10")`},
		{`(format "a" width=3)`, `"a  "`},
		{`(format (c "a" "bbb") justify="right")`, `(c "  a" "bbb")`},
		{`(format (c "a" "bbb") justify="centre")`, `(c " a " "bbb")`},
		{"(format TRUE)", `"TRUE"`},
		{"(format (c a=1 b=22))", `(c a=" 1" b="22")`},
		{"(format 2 nsmall=2)", `"2.00"`},
		{"(format 1.5 nsmall=2)", `"1.50"`},
		{"(format NULL)", "(character 0)"},
		{"(format NA_character_)", `"NA"`},
		{`(format (list 1 "a" (c 1 2)))`, `(c "1" "a" "1, 2")`},
		{"(format (quote x))", `"x"`},
		{"(format (quote (f x)))", `"f(x)"`},
		{`(format (structure (c 1L 2L) levels=(c "a" "bb") class="factor"))`, `(c "a " "bb")`},
		{"(format (matrix (c 1 10) 1))", `(structure (c " 1" "10") dim=(c 1L 2L))`},
	})
}
