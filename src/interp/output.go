package interp

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/thought-machine/rcore/src/value"
)

func registerOutput(i *Interpreter) {
	i.setNativeCode("print", printFunc, "x", "digits", "quote", "...").generic = true
	i.setNativeCode("print.default", printFunc, "x", "digits", "quote", "...")
	i.setNativeCode("cat", cat, "...", "file", "sep", "fill", "labels", "append").invisible = true
	i.setNativeCode("writeLines", writeLines, "text", "con", "sep", "useBytes").invisible = true
	i.setNativeCode("format", format, "x", "trim", "digits", "nsmall", "justify", "width", "na.encode", "scientific", "...").generic = true
	i.setNativeCode("format.default", format, "x", "trim", "digits", "nsmall", "justify", "width", "na.encode", "scientific", "...")
	i.setNativeCode("format.factor", formatFactor, "x", "...")
}

// printable returns what print() shows for classed values it knows how to format.
func (c *callContext) printable(x value.Value) (value.Value, string) {
	switch {
	case value.Inherits(x, "factor") >= 0:
		labels := c.factorLabels(x)
		copyNames(x, labels)
		levels := asStrings(value.Attr(x, "levels"))
		return labels, "Levels: " + strings.Join(levels, " ")
	case value.Inherits(x, "Date") >= 0:
		return formatTimes(x, c.dateTimes(x), func(t time.Time) string { return t.Format("2006-01-02") }), ""
	case value.Inherits(x, "POSIXct") >= 0:
		args := []value.Arg{{Value: x}, {Name: "usetz", Value: value.Bool(true)}}
		return c.i.callFunction(&value.Builtin{Name: "format.POSIXct"}, args, nil, c.env), ""
	}
	return x, ""
}

func printFunc(c *callContext, a *argList) value.Value {
	x := a.value("x")
	opts := c.i.session.PrintOptions()
	if a.has("digits") && !value.IsNull(a.value("digits")) {
		opts.Digits = a.int("digits")
	}
	opts.Quote = a.flagOr("quote", true)
	shown, footer := c.printable(x)
	if shown != x {
		opts.Quote = false
	}
	w := c.i.session.Stdout
	if err := value.Print(w, shown, opts); err != nil {
		c.errorf("%s", err)
	}
	if footer != "" {
		io.WriteString(w, footer+"\n")
	}
	return c.invisible(x)
}

// catElements returns the strings cat() writes for one argument.
func (c *callContext) catElements(v value.Value, n int) []string {
	switch v := v.(type) {
	case *value.NullValue:
		return nil
	case *value.Symbol:
		return []string{v.Name}
	case *value.Character:
		ret := make([]string, v.Len())
		for k := range ret {
			if v.IsNA(k) {
				ret[k] = "NA"
			} else {
				ret[k] = v.At(k)
			}
		}
		return ret
	case *value.Double:
		ret := make([]string, v.Len())
		for k, x := range v.Data() {
			if v.IsNA(k) {
				ret[k] = "NA"
			} else {
				ret[k] = value.FormatDouble(x, c.i.session.intOption("digits", 7))
			}
		}
		return ret
	case *value.List:
		var ret []string
		for k := 0; k < v.Len(); k++ {
			elem := v.At(k)
			if !value.IsAtomic(elem) || elem.Len() != 1 {
				c.typeErrorf("argument %d (type 'list') cannot be handled by 'cat'", n)
			}
			ret = append(ret, c.catElements(elem, n)...)
		}
		return ret
	case value.Vector:
		if value.IsAtomic(v) {
			opts := c.i.session.PrintOptions()
			opts.Quote = false
			return value.FormatElements(v, opts)
		}
	}
	c.typeErrorf("argument %d (type '%s') cannot be handled by 'cat'", n, v.Type())
	return nil
}

// outputFile returns the writer for a file argument: the session's stdout for "",
// otherwise the named file.
func (c *callContext) outputFile(a *argList, name string, appending bool) (io.Writer, func()) {
	file := a.strOr(name, "")
	if file == "" {
		return c.i.session.Stdout, func() {}
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appending {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(file, flags, 0644)
	if err != nil {
		c.errorf("cannot open file '%s': %s", file, err)
	}
	return f, func() { f.Close() }
}

func cat(c *callContext, a *argList) value.Value {
	seps := []string{" "}
	if a.has("sep") {
		seps = asStrings(a.value("sep"))
		if len(seps) == 0 {
			seps = []string{""}
		}
	}
	var b strings.Builder
	k := 0
	for n, d := range a.dots {
		for _, s := range c.catElements(d.Value, n+1) {
			if k > 0 {
				b.WriteString(seps[(k-1)%len(seps)])
			}
			b.WriteString(s)
			k++
		}
	}
	if fill := a.flagOr("fill", false); fill && k > 0 {
		b.WriteByte('\n')
	}
	w, done := c.outputFile(a, "file", a.flagOr("append", false))
	defer done()
	if _, err := io.WriteString(w, b.String()); err != nil {
		c.errorf("%s", err)
	}
	return value.Null
}

func writeLines(c *callContext, a *argList) value.Value {
	text, ok := a.opt("text", value.NewCharacter(0)).(*value.Character)
	if !ok {
		c.errorf("can only write character objects")
	}
	sep := a.strOr("sep", "\n")
	w, done := c.outputFile(a, "con", false)
	defer done()
	for _, s := range asStrings(text) {
		io.WriteString(w, s+sep)
	}
	return value.Null
}

// formatStrings formats the elements of an atomic vector to a common width.
func (c *callContext) formatStrings(x value.Vector, a *argList) []string {
	opts := c.i.session.PrintOptions()
	opts.Quote = false
	if a.has("digits") && !value.IsNull(a.value("digits")) {
		opts.Digits = a.int("digits")
	}
	var elems []string
	if d, ok := x.(*value.Double); ok && a.has("scientific") {
		if sci, ok := asFlag(a.value("scientific")); ok {
			if sci {
				opts.Scipen = -100
			} else {
				opts.Scipen = 100
			}
		}
		elems = value.FormatDoubles(d, opts.Digits, opts.Scipen)
	} else {
		elems = value.FormatElements(x, opts)
	}
	if x.Type() == value.TypeCharacter {
		for k := range elems {
			if x.IsNA(k) {
				elems[k] = "NA"
			}
		}
	}
	if nsmall := a.intOr("nsmall", 0); nsmall > 0 && x.Type() == value.TypeDouble {
		for k, s := range elems {
			if x.IsNA(k) || strings.ContainsAny(s, "eIN") {
				continue
			}
			decimals := 0
			if dot := strings.IndexByte(s, '.'); dot >= 0 {
				decimals = len(s) - dot - 1
			} else {
				s += "."
			}
			elems[k] = s + strings.Repeat("0", max(0, nsmall-decimals))
		}
	}
	if a.flagOr("trim", false) {
		return elems
	}
	width := a.intOr("width", 0)
	for _, s := range elems {
		width = max(width, runewidth.StringWidth(s))
	}
	justify := a.strOr("justify", "left")
	for k, s := range elems {
		pad := width - runewidth.StringWidth(s)
		if pad <= 0 {
			continue
		}
		switch {
		case x.Type() != value.TypeCharacter || justify == "right":
			elems[k] = strings.Repeat(" ", pad) + s
		case justify == "centre":
			elems[k] = strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
		case justify == "none":
		default:
			elems[k] = s + strings.Repeat(" ", pad)
		}
	}
	return elems
}

func format(c *callContext, a *argList) value.Value {
	x := a.value("x")
	switch v := x.(type) {
	case *value.NullValue:
		return value.NewCharacter(0)
	case *value.List:
		ret := value.NewCharacter(v.Len())
		for k := 0; k < v.Len(); k++ {
			elem := v.At(k)
			if vec, ok := elem.(value.Vector); ok && value.IsAtomic(elem) {
				opts := c.i.session.PrintOptions()
				opts.Quote = false
				ret.Set(k, strings.Join(value.FormatElements(vec, opts), ", "))
			} else if value.IsNull(elem) {
				ret.Set(k, "NULL")
			} else {
				ret.Set(k, value.Deparse(elem))
			}
		}
		keepStructureOf(x, ret)
		return ret
	case value.Vector:
		if value.IsAtomic(v) {
			ret := value.CharacterOf(c.formatStrings(v, a)...)
			keepStructureOf(x, ret)
			return ret
		}
	case *value.Symbol:
		return value.Str(v.Name)
	}
	return value.CharacterOf(value.DeparseLines(x)...)
}

// keepStructureOf copies the names, dim and dimnames of one value onto another.
func keepStructureOf(from, to value.Value) {
	for _, name := range []string{"names", "dim", "dimnames"} {
		if v := value.Attr(from, name); v != nil {
			mustSetAttr(to, name, v)
		}
	}
}

func formatFactor(c *callContext, a *argList) value.Value {
	x := a.value("x")
	labels := c.factorLabels(x)
	width := 0
	for _, s := range labels.Data() {
		width = max(width, runewidth.StringWidth(s))
	}
	ret := value.NewCharacter(labels.Len())
	for k := 0; k < labels.Len(); k++ {
		s := "NA"
		if !labels.IsNA(k) {
			s = labels.At(k)
		}
		ret.Set(k, s+strings.Repeat(" ", max(0, width-runewidth.StringWidth(s))))
	}
	copyNames(x, ret)
	return ret
}
