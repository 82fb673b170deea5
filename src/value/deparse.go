package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Deparse returns R source code for a value. Braced blocks span several lines.
func Deparse(v Value) string {
	d := &deparser{}
	d.value(v)
	return d.b.String()
}

// DeparseLines returns the lines of Deparse(v).
func DeparseLines(v Value) []string {
	return strings.Split(Deparse(v), "\n")
}

type deparser struct {
	b      strings.Builder
	indent int
}

func (d *deparser) write(s string) {
	d.b.WriteString(s)
}

func (d *deparser) newline() {
	d.b.WriteByte('\n')
	d.b.WriteString(strings.Repeat("    ", d.indent))
}

// Binary operators and their precedence; higher binds tighter.
var binaryOps = map[string]int{
	"?": 1, "=": 2, "<-": 3, "<<-": 3, "->": 4, "->>": 4, "~": 5, "||": 6, "|": 6, "&&": 7, "&": 7,
	"==": 9, "!=": 9, "<": 9, ">": 9, "<=": 9, ">=": 9, "+": 10, "-": 10, "*": 11, "/": 11,
	":": 13, "^": 15, "$": 17, "@": 17, "::": 18, ":::": 18,
}

const (
	precSpecial = 12 // %op%
	precUnary   = 14
	precNot     = 8
)

func binaryPrecedence(op string) (int, bool) {
	if p, present := binaryOps[op]; present {
		return p, true
	} else if len(op) >= 2 && strings.HasPrefix(op, "%") && strings.HasSuffix(op, "%") {
		return precSpecial, true
	}
	return 0, false
}

func rightAssociative(op string) bool {
	return op == "^" || op == "<-" || op == "<<-" || op == "="
}

// precedence returns the precedence of an expression when it appears as an operand.
func precedence(v Value) int {
	l, ok := v.(*Language)
	if !ok {
		return 100
	}
	op := l.FnName()
	if len(l.Args) == 2 {
		if p, ok := binaryPrecedence(op); ok {
			return p
		}
	} else if len(l.Args) == 1 && (op == "-" || op == "+") {
		return precUnary
	} else if len(l.Args) == 1 && op == "!" {
		return precNot
	}
	return 100
}

func (d *deparser) value(v Value) {
	switch v := v.(type) {
	case *NullValue:
		d.write("NULL")
	case *Symbol:
		if v.Name != "" {
			d.write(QuoteName(v.Name))
		}
	case *Language:
		d.call(v)
	case *Closure:
		d.write("function (")
		d.formals(v.Formals)
		d.write(") ")
		d.value(v.Body)
	case *Builtin:
		d.write(".Primitive(" + Quote(v.Name) + ")")
	case *Env:
		d.write("<environment>")
	case *Promise:
		if v.Forced() {
			d.value(v.Value())
		} else {
			d.value(v.Expr)
		}
	case *Pairlist:
		d.write("pairlist(")
		d.args(v.Items)
		d.write(")")
	case *Dots:
		d.write("<...>")
	case Vector:
		d.vector(v)
	default:
		d.write(fmt.Sprintf("<%s>", v.Type()))
	}
}

// vector deparses a vector, wrapping it in structure() if it has attributes beyond names.
func (d *deparser) vector(v Vector) {
	attrs := v.Attrs()
	extra := attrs.Len()
	if attrs.Get("names") != nil {
		extra--
	}
	if extra > 0 {
		d.write("structure(")
	}
	d.vectorBody(v)
	if extra > 0 {
		attrs.Each(func(name string, val Value) {
			if name == "names" {
				return
			}
			d.write(", " + QuoteName(name) + " = ")
			d.value(val)
		})
		d.write(")")
	}
}

func (d *deparser) vectorBody(v Vector) {
	n := v.Len()
	names, _ := Attr(v, "names").(*Character)
	switch v.(type) {
	case *List:
		d.write("list(")
		d.elements(v, names, 0)
		d.write(")")
		return
	case *Expression:
		d.write("expression(")
		d.elements(v, names, 0)
		d.write(")")
		return
	}
	if n == 0 {
		switch v.Type() {
		case TypeDouble:
			d.write("numeric(0)")
		default:
			d.write(v.Type().String() + "(0)")
		}
		return
	}
	if iv, ok := v.(*Integer); ok && names == nil && n > 1 && !iv.AnyNA() {
		if step := iv.At(1) - iv.At(0); step == 1 || step == -1 {
			isRange := true
			for i := 2; i < n && isRange; i++ {
				isRange = iv.At(i)-iv.At(i-1) == step
			}
			if isRange {
				d.write(strconv.Itoa(iv.At(0)) + ":" + strconv.Itoa(iv.At(n-1)))
				return
			}
		}
	}
	if v.Type() == TypeRaw {
		d.write("as.raw(")
	}
	wrap := n > 1 || names != nil
	if wrap {
		d.write("c(")
	}
	d.elements(v, names, 0)
	if wrap {
		d.write(")")
	}
	if v.Type() == TypeRaw {
		d.write(")")
	}
}

func (d *deparser) elements(v Vector, names *Character, from int) {
	allNA := true
	for i := 0; i < v.Len() && allNA; i++ {
		allNA = v.IsNA(i)
	}
	for i := from; i < v.Len(); i++ {
		if i > from {
			d.write(", ")
		}
		if names != nil && i < names.Len() && !names.IsNA(i) && names.At(i) != "" {
			d.write(QuoteName(names.At(i)) + " = ")
		}
		d.element(v, i, allNA)
	}
}

func (d *deparser) element(v Vector, i int, allNA bool) {
	if v.IsNA(i) {
		if !allNA {
			d.write("NA")
			return
		}
		switch v.Type() {
		case TypeInteger:
			d.write("NA_integer_")
		case TypeDouble:
			d.write("NA_real_")
		case TypeComplex:
			d.write("NA_complex_")
		case TypeCharacter:
			d.write("NA_character_")
		default:
			d.write("NA")
		}
		return
	}
	switch v := v.(type) {
	case *Logical:
		d.write(FormatLogical(v.At(i)))
	case *Integer:
		d.write(strconv.Itoa(v.At(i)) + "L")
	case *Double:
		d.write(FormatDouble(v.At(i), 15))
	case *Complex:
		d.write(FormatComplex(v.At(i), 15))
	case *Character:
		d.write(Quote(v.At(i)))
	case *Raw:
		d.write(fmt.Sprintf("0x%02x", v.At(i)))
	case *List:
		d.value(v.At(i))
	case *Expression:
		d.value(v.At(i))
	}
}

func (d *deparser) formals(formals []Arg) {
	for i, f := range formals {
		if i > 0 {
			d.write(", ")
		}
		d.write(QuoteName(f.Name))
		if !IsMissingArg(f.Value) {
			d.write(" = ")
			d.value(f.Value)
		}
	}
}

func (d *deparser) args(args []Arg) {
	for i, a := range args {
		if i > 0 {
			d.write(", ")
		}
		if a.Name != "" {
			d.write(QuoteName(a.Name) + " = ")
		}
		d.value(a.Value)
	}
}

// operand deparses one side of an operator, adding parentheses if it binds less tightly.
func (d *deparser) operand(v Value, parens bool) {
	if parens {
		d.write("(")
		d.value(v)
		d.write(")")
	} else {
		d.value(v)
	}
}

func (d *deparser) call(l *Language) {
	op := l.FnName()
	args := l.Args
	if prec, ok := binaryPrecedence(op); ok && len(args) == 2 && args[0].Name == "" && args[1].Name == "" {
		lp, rp := precedence(args[0].Value), precedence(args[1].Value)
		if rightAssociative(op) {
			d.operand(args[0].Value, lp <= prec)
		} else {
			d.operand(args[0].Value, lp < prec)
		}
		switch op {
		case "^", ":", "$", "@", "::", ":::":
			d.write(op)
		default:
			d.write(" " + op + " ")
		}
		if rightAssociative(op) {
			d.operand(args[1].Value, rp < prec)
		} else {
			d.operand(args[1].Value, rp <= prec)
		}
		return
	}
	switch op {
	case "-", "+":
		if len(args) == 1 {
			d.write(op)
			d.operand(args[0].Value, precedence(args[0].Value) < precUnary)
			return
		}
	case "!":
		if len(args) == 1 {
			d.write("!")
			d.operand(args[0].Value, precedence(args[0].Value) < precNot)
			return
		}
	case "(":
		if len(args) == 1 {
			d.write("(")
			d.value(args[0].Value)
			d.write(")")
			return
		}
	case "{":
		d.write("{")
		d.indent++
		for _, a := range args {
			d.newline()
			d.value(a.Value)
		}
		d.indent--
		d.newline()
		d.write("}")
		return
	case "if":
		if len(args) == 2 || len(args) == 3 {
			d.write("if (")
			d.value(args[0].Value)
			d.write(") ")
			d.value(args[1].Value)
			if len(args) == 3 {
				d.write(" else ")
				d.value(args[2].Value)
			}
			return
		}
	case "for":
		if len(args) == 3 {
			d.write("for (")
			d.value(args[0].Value)
			d.write(" in ")
			d.value(args[1].Value)
			d.write(") ")
			d.value(args[2].Value)
			return
		}
	case "while":
		if len(args) == 2 {
			d.write("while (")
			d.value(args[0].Value)
			d.write(") ")
			d.value(args[1].Value)
			return
		}
	case "repeat":
		if len(args) == 1 {
			d.write("repeat ")
			d.value(args[0].Value)
			return
		}
	case "break", "next":
		if len(args) == 0 {
			d.write(op)
			return
		}
	case "function":
		if len(args) >= 2 {
			d.write("function(")
			if formals, ok := args[0].Value.(*Pairlist); ok {
				d.formals(formals.Items)
			}
			d.write(") ")
			d.value(args[1].Value)
			return
		}
	case "[", "[[":
		if len(args) >= 1 {
			d.operand(args[0].Value, precedence(args[0].Value) < 17)
			d.write(op)
			d.args(args[1:])
			if op == "[" {
				d.write("]")
			} else {
				d.write("]]")
			}
			return
		}
	}
	switch fn := l.Fn.(type) {
	case *Symbol:
		d.write(QuoteName(fn.Name))
	case *Language:
		if fn.FnName() == "function" {
			d.write("(")
			d.value(fn)
			d.write(")")
		} else {
			d.value(fn)
		}
	default:
		d.value(fn)
	}
	d.write("(")
	d.args(args)
	d.write(")")
}
