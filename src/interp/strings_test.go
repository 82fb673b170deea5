package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaste(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(paste "a" "b")`, `"a b"`},
		{`(paste "a" "b" sep="-")`, `"a-b"`},
		{`(paste0 "x" (: 1L 3L))`, `(c "x1" "x2" "x3")`},
		{`(paste (c "a" "b") collapse="+")`, `"a+b"`},
		{`(paste "a" NULL "b")`, `"a b"`},
		{`(paste 1.5 TRUE NA)`, `"1.5 TRUE NA"`},
		{`(paste)`, `(character 0)`},
		{`(toString (: 1L 3L))`, `"1, 2, 3"`},
	})
}

func TestStringFunctions(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(nchar (c "abc" "" "héllo"))`, `(c 3L 0L 5L)`},
		{`(nchar "héllo" type="bytes")`, `6L`},
		{`(nchar "日本" type="width")`, `4L`},
		{`(substr "abcdef" 2 4)`, `"bcd"`},
		{`(substr "abc" 0 10)`, `"abc"`},
		{`(substr "abc" 3 2)`, `""`},
		{`(substring "abcdef" (: 1L 3L) 3L)`, `(c "abc" "bc" "c")`},
		{`(substring "abcdef" 4)`, `"def"`},
		{`(toupper (c a="x" b="y"))`, `(c a="X" b="Y")`},
		{`(tolower "ABC")`, `"abc"`},
		{`(casefold "abc" upper=TRUE)`, `"ABC"`},
		{`(chartr "abc" "xyz" "aabbcc")`, `"xxyyzz"`},
		{`(chartr "a-c" "A-C" "abcd")`, `"ABCd"`},
		{`(trimws "  x  ")`, `"x"`},
		{`(trimws "  x  " which="left")`, `"x  "`},
		{`(trimws "..x.." whitespace="[.]")`, `"x"`},
		{`(startsWith (c "apple" "banana") "a")`, `(c TRUE FALSE)`},
		{`(endsWith "apple" "le")`, `TRUE`},
		{`(strtoi "ff" 16L)`, `255L`},
		{`(strtoi "0x1A" 16L)`, `26L`},
		{`(strtoi "777" 8L)`, `511L`},
		{`(strtoi "012" 0L)`, `10L`},
		{`(strtoi "zz" 10L)`, `NA_integer_`},
		{`(strrep "ab" 3L)`, `"ababab"`},
		{`(strrep "x" (: 0L 2L))`, `(c "" "x" "xx")`},
		{`(utf8ToInt "aé")`, `(c 97L 233L)`},
		{`(intToUtf8 (c 72L 105L))`, `"Hi"`},
		{`(intToUtf8 (c 72L 105L) multiple=TRUE)`, `(c "H" "i")`},
		{`(rawToChar (charToRaw "hey"))`, `"hey"`},
		{`(sQuote "x" FALSE)`, `"'x'"`},
		{`(dQuote "x" FALSE)`, `"\"x\""`},
		{`(shQuote "it's")`, `"\"it's\""`},
		{`(shQuote "abc")`, `"'abc'"`},
	})
}

func TestStringErrors(t *testing.T) {
	e := evalErr(t, `(chartr "abc" "x" "abc")`)
	assert.Equal(t, "'old' is longer than 'new'", e.Message)
	e = evalErr(t, `(trimws "x" which="middle")`)
	assert.Equal(t, "'arg' should be one of “both”, “left”, “right”", e.Message)
	e = evalErr(t, `(startsWith 1 "a")`)
	assert.Equal(t, "non-character object(s)", e.Message)
	e = evalErr(t, `(strtoi "1" 40L)`)
	assert.Equal(t, "invalid 'base' argument", e.Message)
	e = evalErr(t, `(utf8ToInt (c "a" "b"))`)
	assert.Equal(t, "argument should be a character vector of length 1", e.Message)
	e = evalErr(t, `(strrep "x" -1L)`)
	assert.Equal(t, "invalid 'times' value", e.Message)
}

func TestRegularExpressions(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(grepl "^a" (c "ab" "ba" NA))`, `(c TRUE FALSE FALSE)`},
		{`(grepl "A" "abc" ignore.case=TRUE)`, `TRUE`},
		{`(grepl "." "abc" fixed=TRUE)`, `FALSE`},
		{`(grep "b" (c "abc" "xyz" "b"))`, `(c 1L 3L)`},
		{`(grep "b" (c "abc" "xyz" "b") value=TRUE)`, `(c "abc" "b")`},
		{`(grep "b" (c "abc" "xyz" "b") invert=TRUE)`, `2L`},
		{`(sub "o" "0" "foo")`, `"f0o"`},
		{`(gsub "o" "0" "foo")`, `"f00"`},
		{`(gsub "(a)(b)" "\\2\\1" "abab")`, `"baba"`},
		{`(gsub "(\\w+)" "\\U\\1" "hi there" perl=TRUE)`, `"HI THERE"`},
		{`(sub "." "!" "a.b" fixed=TRUE)`, `"a!b"`},
		{`(gsub "x" "y" (c a="x" b="z"))`, `(c a="y" b="z")`},
		{`(strsplit "a,b,c" ",")`, `(list (c "a" "b" "c"))`},
		{`(strsplit "abc" "")`, `(list (c "a" "b" "c"))`},
		{`(strsplit (c "a b" "c") " ")`, `(list (c "a" "b") "c")`},
		{`(strsplit "a.b" "." fixed=TRUE)`, `(list (c "a" "b"))`},
		{`(as.vector (regexpr "b+" (c "abbc" "xyz")))`, `(c 2L -1L)`},
		{`(attr (regexpr "b+" (c "abbc" "xyz")) "match.length")`, `(c 2L -1L)`},
	})
}

func TestRegularExpressionErrors(t *testing.T) {
	e := evalErr(t, `(grepl "(" "x")`)
	assert.Contains(t, e.Message, "invalid regular expression '('")
	e = evalErr(t, `(grepl (character 0) "x")`)
	assert.Equal(t, "invalid 'pattern' argument", e.Message)
	assert.Equal(t, []string{"argument 'pattern' has length > 1 and only the first element will be used"}, warningMessages(t, `(grepl (c "a" "b") "a")`))
	assert.Equal(t, []string{"argument 'ignore.case = TRUE' will be ignored"}, warningMessages(t, `(grepl "a" "A" ignore.case=TRUE fixed=TRUE)`))
}

func TestSprintf(t *testing.T) {
	runEvalTests(t, []evalTest{
		{`(sprintf "%d items" 3L)`, `"3 items"`},
		{`(sprintf "%d" 3)`, `"3"`},
		{`(sprintf "%5.2f" 3.14159)`, `" 3.14"`},
		{`(sprintf "%-4s|" "ab")`, `"ab  |"`},
		{`(sprintf "%s is %f" "pi" 3.14159)`, `"pi is 3.141590"`},
		{`(sprintf "%s" 1.5)`, `"1.5"`},
		{`(sprintf "%x" 255L)`, `"ff"`},
		{`(sprintf "%X" 255L)`, `"FF"`},
		{`(sprintf "%o" 8L)`, `"10"`},
		{`(sprintf "%e" 12345.6789)`, `"1.234568e+04"`},
		{`(sprintf "%5s" NA)`, `"   NA"`},
		{`(sprintf "%f" Inf)`, `"Inf"`},
		{`(sprintf "%%")`, `"%"`},
		{`(sprintf "%2$s %1$s" "a" "b")`, `"b a"`},
		{`(sprintf "%*d" 5L 42L)`, `"   42"`},
		{`(sprintf "%s-%d" (c "a" "b") (: 1L 2L))`, `(c "a-1" "b-2")`},
		{`(sprintf "%d" (integer 0))`, `(character 0)`},
	})
	e := evalErr(t, `(sprintf "%d" 1.5)`)
	assert.Equal(t, "invalid format '%d'; use format %f, %e, %g or %a for numeric objects", e.Message)
	e = evalErr(t, `(sprintf "%d" "a")`)
	assert.Equal(t, "invalid format '%d'; use format %s for character objects", e.Message)
	e = evalErr(t, `(sprintf "%s %s" "a")`)
	assert.Equal(t, "too few arguments", e.Message)
}
