package value

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDouble(t *testing.T) {
	for x, expected := range map[float64]string{
		100:          "100",
		1e5:          "1e+05",
		0.0001:       "1e-04",
		123456:       "123456",
		1e-15:        "1e-15",
		-1.5:         "-1.5",
		3628800:      "3628800",
		math.Inf(1):  "Inf",
		math.Inf(-1): "-Inf",
		0:            "0",
	} {
		assert.Equal(t, expected, FormatDouble(x, 7), "%v", x)
	}
	assert.Equal(t, "NaN", FormatDouble(math.NaN(), 7))
	assert.Equal(t, "3.141593", FormatDouble(math.Pi, 7))
}

func TestFormatDoublesCommonFormat(t *testing.T) {
	assert.Equal(t, []string{"1.0", "2.5"}, FormatDoubles(DoubleOf(1, 2.5), 7, 0))
	assert.Equal(t, []string{"1e-10", "1e+00"}, FormatDoubles(DoubleOf(1e-10, 1), 7, 0))
	v := DoubleOf(1, 0, math.NaN())
	v.SetNA(1)
	assert.Equal(t, []string{"1", "NA", "NaN"}, FormatDoubles(v, 7, 0))
}

func TestFormatComplex(t *testing.T) {
	assert.Equal(t, "1+2i", FormatComplex(1+2i, 7))
	assert.Equal(t, "0-1.5i", FormatComplex(-1.5i, 7))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"a\"b\n"`, Quote("a\"b\n"))
	assert.Equal(t, `"tab\there"`, Quote("tab\there"))
	assert.Equal(t, `"\\"`, Quote(`\`))
}

func TestQuoteName(t *testing.T) {
	assert.Equal(t, "x", QuoteName("x"))
	assert.Equal(t, "x.y_1", QuoteName("x.y_1"))
	assert.Equal(t, "`my var`", QuoteName("my var"))
	assert.Equal(t, "`if`", QuoteName("if"))
	assert.Equal(t, "`.2x`", QuoteName(".2x"))
	assert.Equal(t, "`_x`", QuoteName("_x"))
}

func printed(t *testing.T, v Value) string {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, v, DefaultPrintOptions()))
	return buf.String()
}

func TestPrintVector(t *testing.T) {
	assert.Equal(t, "[1] 1 2 3\n", printed(t, IntegerOf(1, 2, 3)))
	assert.Equal(t, "[1] 1.0 2.5\n", printed(t, DoubleOf(1, 2.5)))
	assert.Equal(t, "[1] \"a\"   \"bbb\"\n", printed(t, CharacterOf("a", "bbb")))
	assert.Equal(t, "[1] TRUE\n", printed(t, Bool(true)))
	assert.Equal(t, "NULL\n", printed(t, Null))
	assert.Equal(t, "integer(0)\n", printed(t, NewInteger(0)))
	assert.Equal(t, "numeric(0)\n", printed(t, NewDouble(0)))
}

func TestPrintWraps(t *testing.T) {
	x := NewInteger(30)
	for i := range x.Data() {
		x.Set(i, i+1)
	}
	lines := bytes.Split(bytes.TrimRight([]byte(printed(t, x)), "\n"), []byte("\n"))
	require.Len(t, lines, 2)
	assert.True(t, bytes.HasPrefix(lines[0], []byte(" [1]  1  2")))
	assert.True(t, bytes.HasPrefix(lines[1], []byte("[26] 26")))
}

func TestPrintNamed(t *testing.T) {
	x := DoubleOf(1, 2)
	require.NoError(t, SetAttr(x, "names", CharacterOf("a", "bb")))
	assert.Equal(t, " a bb \n 1  2 \n", printed(t, x))
}

func TestPrintList(t *testing.T) {
	l := ListOf(Num(1), Str("a"))
	require.NoError(t, SetAttr(l, "names", CharacterOf("a", "")))
	assert.Equal(t, "$a\n[1] 1\n\n[[2]]\n[1] \"a\"\n\n", printed(t, l))
	assert.Equal(t, "list()\n", printed(t, NewList(0)))
}

func TestPrintMatrix(t *testing.T) {
	m := IntegerOf(1, 2, 3, 4)
	require.NoError(t, SetAttr(m, "dim", IntegerOf(2, 2)))
	assert.Equal(t, "     [,1] [,2]\n[1,]    1    3\n[2,]    2    4\n", printed(t, m))
}

func TestPrintAttributes(t *testing.T) {
	x := Num(1)
	require.NoError(t, SetAttr(x, "foo", Str("bar")))
	assert.Equal(t, "[1] 1\nattr(,\"foo\")\n[1] \"bar\"\n", printed(t, x))
}

func TestPrintEnvironment(t *testing.T) {
	assert.Equal(t, "<environment: R_GlobalEnv>\n", printed(t, NewNamedEnv("R_GlobalEnv", nil)))
}
