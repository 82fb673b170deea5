package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thought-machine/rcore/src/value"
)

// A Parser turns source text into language objects. The evaluator never tokenizes R
// itself; str2lang, parse and friends go through whichever Parser is configured.
type Parser interface {
	Parse(src string) ([]value.Value, error)
}

// A ParseError describes a syntax error in source text.
type ParseError struct {
	Line, Column int
	Message      string
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("<text>:%d:%d: %s", err.Line, err.Column, err.Message)
}

// SexpReader is the default Parser. It reads language objects written as
// s-expressions rather than in R's own syntax:
//
//	(<- f (function (n acc=1) (if (<= n 1) acc (Recall (- n 1) (* n acc)))))
//
// A list is a call of its first element. An identifier directly followed by = names
// the next element, _ is an empty argument, and the first element after function is
// its formal argument list. Loops keep R's call shape, so for takes the variable,
// the sequence and the body as three elements: (for i (seq_len 3) (print i)).
// Literals are as in R: 1, 1L, 2i, "str", TRUE, NA, NULL, NA_integer_ and so on;
// anything else is a symbol. Comments run from # or ; to the end of the line.
type SexpReader struct{}

// Parse implements the Parser interface.
func (SexpReader) Parse(src string) (exprs []value.Value, err error) {
	r := &sexpReader{src: src, line: 1, col: 1}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*ParseError); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	for {
		r.skipSpace()
		if r.eof() {
			return exprs, nil
		}
		v := r.element()
		value.MarkConstant(v)
		exprs = append(exprs, v)
	}
}

type sexpReader struct {
	src       string
	pos       int
	line, col int
}

func (r *sexpReader) fail(msg string, args ...interface{}) {
	panic(&ParseError{Line: r.line, Column: r.col, Message: fmt.Sprintf(msg, args...)})
}

func (r *sexpReader) eof() bool {
	return r.pos >= len(r.src)
}

func (r *sexpReader) peek() rune {
	if r.eof() {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(r.src[r.pos:])
	return ch
}

func (r *sexpReader) next() rune {
	ch, size := utf8.DecodeRuneInString(r.src[r.pos:])
	r.pos += size
	if ch == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
	return ch
}

func (r *sexpReader) skipSpace() {
	for !r.eof() {
		switch ch := r.peek(); {
		case ch == '#' || ch == ';':
			for !r.eof() && r.peek() != '\n' {
				r.next()
			}
		case unicode.IsSpace(ch):
			r.next()
		default:
			return
		}
	}
}

func isDelimiter(ch rune) bool {
	return ch == 0 || ch == '(' || ch == ')' || ch == '"' || ch == '\'' || ch == '`' || unicode.IsSpace(ch)
}

// element reads one element, returning its tag if it had one.
func (r *sexpReader) taggedElement() (string, value.Value) {
	r.skipSpace()
	if r.eof() {
		r.fail("unexpected end of input")
	}
	switch ch := r.peek(); ch {
	case '(':
		return "", r.list()
	case ')':
		r.fail("unexpected ')'")
	case '"', '\'':
		s := r.str(ch)
		if r.peek() == '=' {
			r.next()
			return s, r.element()
		}
		return "", value.Str(s)
	case '`':
		name := r.backquoted()
		if r.peek() == '=' {
			r.next()
			return name, r.element()
		}
		return "", value.Intern(name)
	}
	start := r.pos
	for !r.eof() && !isDelimiter(r.peek()) {
		r.next()
		if r.peek() == '=' && isIdentifier(r.src[start:r.pos]) {
			tag := r.src[start:r.pos]
			r.next()
			return tag, r.element()
		}
	}
	return "", atom(r.src[start:r.pos])
}

func (r *sexpReader) element() value.Value {
	tag, v := r.taggedElement()
	if tag != "" {
		r.fail("unexpected argument name %s", tag)
	}
	return v
}

func isIdentifier(s string) bool {
	for i, ch := range s {
		if i == 0 && !unicode.IsLetter(ch) && ch != '.' {
			return false
		} else if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '.' && ch != '_' {
			return false
		}
	}
	return s != ""
}

func (r *sexpReader) list() value.Value {
	r.next() // (
	r.skipSpace()
	if r.peek() == ')' {
		r.fail("empty call")
	}
	head := r.element()
	if sym, ok := head.(*value.Symbol); ok && sym.Name == "function" {
		return r.function()
	}
	call := &value.Language{Fn: head}
	for {
		r.skipSpace()
		if r.eof() {
			r.fail("unterminated call")
		} else if r.peek() == ')' {
			r.next()
			return call
		}
		tag, v := r.taggedElement()
		call.Args = append(call.Args, value.Arg{Name: tag, Value: v})
	}
}

func (r *sexpReader) function() value.Value {
	r.skipSpace()
	if r.peek() != '(' {
		r.fail("expected formal argument list after function")
	}
	r.next()
	formals := &value.Pairlist{}
	for {
		r.skipSpace()
		if r.eof() {
			r.fail("unterminated formal argument list")
		} else if r.peek() == ')' {
			r.next()
			break
		}
		tag, v := r.taggedElement()
		if tag != "" {
			formals.Items = append(formals.Items, value.Arg{Name: tag, Value: v})
		} else if sym, ok := v.(*value.Symbol); ok && sym.Name != "" {
			formals.Items = append(formals.Items, value.Arg{Name: sym.Name, Value: value.Missing})
		} else {
			r.fail("invalid formal argument %s", value.Deparse(v))
		}
	}
	body := r.element()
	r.skipSpace()
	if r.peek() != ')' {
		r.fail("expected ) after function body")
	}
	r.next()
	return value.NewCall("function", formals, body)
}

func (r *sexpReader) str(quote rune) string {
	r.next()
	var b strings.Builder
	for {
		if r.eof() {
			r.fail("unterminated string")
		}
		ch := r.next()
		if ch == quote {
			return b.String()
		} else if ch != '\\' {
			b.WriteRune(ch)
			continue
		}
		if r.eof() {
			r.fail("unterminated string")
		}
		switch esc := r.next(); esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case 'x':
			b.WriteRune(r.hexEscape(2))
		case 'u':
			b.WriteRune(r.hexEscape(4))
		case 'U':
			b.WriteRune(r.hexEscape(8))
		default:
			b.WriteRune(esc)
		}
	}
}

func (r *sexpReader) hexEscape(maxDigits int) rune {
	braced := r.peek() == '{'
	if braced {
		r.next()
	}
	start := r.pos
	for i := 0; i < maxDigits && !r.eof() && strings.ContainsRune("0123456789abcdefABCDEF", r.peek()); i++ {
		r.next()
	}
	n, err := strconv.ParseUint(r.src[start:r.pos], 16, 32)
	if err != nil {
		r.fail("invalid escape sequence")
	}
	if braced {
		if r.peek() != '}' {
			r.fail("invalid \\u{xxxx} sequence")
		}
		r.next()
	}
	return rune(n)
}

func (r *sexpReader) backquoted() string {
	r.next()
	start := r.pos
	for !r.eof() && r.peek() != '`' {
		r.next()
	}
	if r.eof() {
		r.fail("unterminated backquoted name")
	}
	name := r.src[start:r.pos]
	r.next()
	return name
}

// atom interprets a bare token: a number, a special constant or a symbol.
func atom(tok string) value.Value {
	switch tok {
	case "NULL":
		return value.Null
	case "TRUE":
		return value.Bool(true)
	case "FALSE":
		return value.Bool(false)
	case "NA":
		return value.NALogical()
	case "NA_integer_":
		return value.NAInteger()
	case "NA_real_":
		return value.NADouble()
	case "NA_character_":
		return value.NACharacter()
	case "NA_complex_":
		return value.NAComplex()
	case "Inf":
		return value.Num(math.Inf(1))
	case "-Inf":
		return value.Num(math.Inf(-1))
	case "NaN":
		return value.Num(math.NaN())
	case "_":
		return value.Missing
	}
	if v := number(tok); v != nil {
		return v
	}
	return value.Intern(tok)
}

func number(tok string) value.Value {
	body := strings.TrimPrefix(tok, "-")
	if body == "" || (body[0] < '0' || body[0] > '9') && (body[0] != '.' || len(body) < 2 || body[1] < '0' || body[1] > '9') {
		return nil
	}
	switch {
	case strings.HasSuffix(tok, "L"):
		f, ok := value.ParseDouble(tok[:len(tok)-1])
		if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return nil
		}
		return value.Int(int(f))
	case strings.HasSuffix(tok, "i"):
		f, ok := value.ParseDouble(tok[:len(tok)-1])
		if !ok {
			return nil
		}
		return value.Cplx(complex(0, f))
	}
	if f, ok := value.ParseDouble(tok); ok {
		return value.Num(f)
	}
	return nil
}
