package value

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// PrintOptions control how values are printed.
type PrintOptions struct {
	Digits int
	Scipen int
	Width  int
	Quote  bool
}

// DefaultPrintOptions returns the options print() uses by default.
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{Digits: 7, Width: 80, Quote: true}
}

// FormatElements formats each element of an atomic vector the way print() would,
// without padding.
func FormatElements(v Vector, opts PrintOptions) []string {
	if d, ok := v.(*Double); ok {
		return FormatDoubles(d, opts.Digits, opts.Scipen)
	}
	ret := make([]string, v.Len())
	for i := range ret {
		if v.IsNA(i) {
			if v.Type() == TypeCharacter && !opts.Quote {
				ret[i] = "<NA>"
			} else {
				ret[i] = "NA"
			}
			continue
		}
		switch v := v.(type) {
		case *Logical:
			ret[i] = FormatLogical(v.At(i))
		case *Integer:
			ret[i] = strconv.Itoa(v.At(i))
		case *Complex:
			ret[i] = FormatComplex(v.At(i), opts.Digits)
		case *Character:
			if opts.Quote {
				ret[i] = Quote(v.At(i))
			} else {
				ret[i] = v.At(i)
			}
		case *Raw:
			ret[i] = fmt.Sprintf("%02x", v.At(i))
		}
	}
	return ret
}

// Print writes a value to w in the layout print() uses.
func Print(w io.Writer, v Value, opts PrintOptions) error {
	p := &printer{w: w, opts: opts}
	p.value(v, "")
	return p.err
}

type printer struct {
	w    io.Writer
	opts PrintOptions
	err  error
}

func (p *printer) println(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s+"\n")
	}
}

func (p *printer) value(v Value, prefix string) {
	switch v := v.(type) {
	case *NullValue:
		p.println("NULL")
	case *List:
		p.list(v.Data(), Names(v), prefix, "list()")
		p.attributes(v)
	case *Expression:
		p.println(Deparse(v))
	case Vector:
		p.vector(v)
		p.attributes(v)
	case *Env:
		p.println(EnvLabel(v))
	case *Symbol:
		p.println(QuoteName(v.Name))
	case *Pairlist:
		items := make([]Value, len(v.Items))
		for i, a := range v.Items {
			items[i] = a.Value
		}
		p.list(items, Names(v), prefix, "NULL")
	default:
		for _, line := range DeparseLines(v) {
			p.println(line)
		}
		if v.Type() == TypeLanguage {
			p.attributes(v)
		}
	}
}

// EnvLabel returns the label print() shows for an environment.
func EnvLabel(e *Env) string {
	if e.Name() != "" {
		return "<environment: " + e.Name() + ">"
	}
	return fmt.Sprintf("<environment: %p>", e)
}

func (p *printer) list(items []Value, names *Character, prefix, empty string) {
	if len(items) == 0 {
		if names != nil {
			p.println("named " + empty)
		} else {
			p.println(empty)
		}
		return
	}
	for i, x := range items {
		tag := prefix + "[[" + strconv.Itoa(i+1) + "]]"
		if names != nil && i < names.Len() && !names.IsNA(i) && names.At(i) != "" {
			tag = prefix + "$" + QuoteName(names.At(i))
		}
		p.println(tag)
		p.value(x, tag)
		p.println("")
	}
}

func (p *printer) attributes(v Value) {
	v.Attrs().Each(func(name string, val Value) {
		switch name {
		case "names", "dim", "dimnames", "comment":
			return
		}
		p.println("attr(," + Quote(name) + ")")
		p.value(val, "")
	})
}

func (p *printer) vector(v Vector) {
	if v.Len() == 0 {
		switch v.Type() {
		case TypeDouble:
			p.println("numeric(0)")
		default:
			p.println(v.Type().String() + "(0)")
		}
		return
	}
	if dim := Dim(v); len(dim) == 2 {
		p.matrix(v, dim[0], dim[1])
		return
	}
	elems := FormatElements(v, p.opts)
	if names := Names(v); names != nil {
		p.named(elems, names)
		return
	}
	leftAlign := v.Type() == TypeCharacter
	width := maxWidth(elems)
	labelWidth := len(strconv.Itoa(len(elems))) + 2
	perLine := max(1, (p.opts.Width-labelWidth)/(width+1))
	for start := 0; start < len(elems); start += perLine {
		var b strings.Builder
		b.WriteString(padLeft("["+strconv.Itoa(start+1)+"]", labelWidth))
		for i := start; i < start+perLine && i < len(elems); i++ {
			b.WriteByte(' ')
			if leftAlign {
				b.WriteString(padRight(elems[i], width))
			} else {
				b.WriteString(padLeft(elems[i], width))
			}
		}
		p.println(strings.TrimRight(b.String(), " "))
	}
}

func (p *printer) named(elems []string, names *Character) {
	labels := make([]string, len(elems))
	for i := range labels {
		if i < names.Len() && !names.IsNA(i) {
			labels[i] = names.At(i)
		} else {
			labels[i] = "<NA>"
		}
	}
	width := max(maxWidth(elems), maxWidth(labels))
	perLine := max(1, p.opts.Width/(width+1))
	for start := 0; start < len(elems); start += perLine {
		var top, bottom strings.Builder
		for i := start; i < start+perLine && i < len(elems); i++ {
			top.WriteString(padLeft(labels[i], width) + " ")
			bottom.WriteString(padLeft(elems[i], width) + " ")
		}
		p.println(top.String())
		p.println(bottom.String())
	}
}

func (p *printer) matrix(v Vector, nrow, ncol int) {
	elems := FormatElements(v, p.opts)
	rowLabels := make([]string, nrow)
	colLabels := make([]string, ncol)
	var rowNames, colNames *Character
	if dn, ok := Attr(v, "dimnames").(*List); ok && dn.Len() == 2 {
		rowNames, _ = dn.At(0).(*Character)
		colNames, _ = dn.At(1).(*Character)
	}
	for i := range rowLabels {
		if rowNames != nil {
			rowLabels[i] = rowNames.At(i)
		} else {
			rowLabels[i] = "[" + strconv.Itoa(i+1) + ",]"
		}
	}
	for j := range colLabels {
		if colNames != nil {
			colLabels[j] = colNames.At(j)
		} else {
			colLabels[j] = "[," + strconv.Itoa(j+1) + "]"
		}
	}
	rowWidth := maxWidth(rowLabels)
	widths := make([]int, ncol)
	for j := range widths {
		widths[j] = strWidth(colLabels[j])
		for i := 0; i < nrow; i++ {
			widths[j] = max(widths[j], strWidth(elems[i+j*nrow]))
		}
	}
	leftAlign := v.Type() == TypeCharacter
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", rowWidth))
	for j, l := range colLabels {
		b.WriteByte(' ')
		if leftAlign {
			b.WriteString(padRight(l, widths[j]))
		} else {
			b.WriteString(padLeft(l, widths[j]))
		}
	}
	p.println(strings.TrimRight(b.String(), " "))
	for i := 0; i < nrow; i++ {
		b.Reset()
		b.WriteString(padRight(rowLabels[i], rowWidth))
		for j := 0; j < ncol; j++ {
			b.WriteByte(' ')
			if leftAlign {
				b.WriteString(padRight(elems[i+j*nrow], widths[j]))
			} else {
				b.WriteString(padLeft(elems[i+j*nrow], widths[j]))
			}
		}
		p.println(strings.TrimRight(b.String(), " "))
	}
}

func strWidth(s string) int {
	return runewidth.StringWidth(s)
}

func maxWidth(s []string) int {
	w := 0
	for _, x := range s {
		w = max(w, strWidth(x))
	}
	return w
}

func padLeft(s string, width int) string {
	if n := width - strWidth(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

func padRight(s string, width int) string {
	if n := width - strWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
