package interp

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/peterebden/go-deferred-regex"

	"github.com/thought-machine/rcore/src/cmap"
	"github.com/thought-machine/rcore/src/value"
)

var leadingSpace = deferredregex.DeferredRegex{Re: `^[\t\r\n ]+`}
var trailingSpace = deferredregex.DeferredRegex{Re: `[\t\r\n ]+$`}

// A compiledRegex is an entry in the regex cache; patterns that don't compile are cached too.
type compiledRegex struct {
	re  *regexp.Regexp
	err error
}

var regexCache = cmap.New[string, compiledRegex](cmap.DefaultShardCount, cmap.XXHash)

func registerStrings(i *Interpreter) {
	i.setNativeCode("paste", paste(false), "...", "sep", "collapse")
	i.setNativeCode("paste0", paste(true), "...", "collapse")
	i.setNativeCode("nchar", nchar, "x", "type", "allowNA", "keepNA")
	i.setNativeCode("substr", substr, "x", "start", "stop")
	i.setNativeCode("substring", substring, "text", "first", "last")
	i.setNativeCode("strsplit", strsplit, "x", "split", "fixed", "perl", "useBytes")
	i.setNativeCode("sprintf", sprintf, "fmt", "...")
	i.setNativeCode("toupper", caseFunc(true), "x")
	i.setNativeCode("tolower", caseFunc(false), "x")
	i.setNativeCode("casefold", casefold, "x", "upper")
	i.setNativeCode("chartr", chartr, "old", "new", "x")
	i.setNativeCode("trimws", trimws, "x", "which", "whitespace")
	i.setNativeCode("startsWith", affix(strings.HasPrefix), "x", "prefix")
	i.setNativeCode("endsWith", affix(strings.HasSuffix), "x", "suffix")
	i.setNativeCode("strtoi", strtoi, "x", "base")
	i.setNativeCode("grepl", grep(true), "pattern", "x", "ignore.case", "perl", "fixed", "useBytes")
	i.setNativeCode("grep", grep(false), "pattern", "x", "ignore.case", "perl", "value", "fixed", "useBytes", "invert")
	i.setNativeCode("sub", sub(false), "pattern", "replacement", "x", "ignore.case", "perl", "fixed", "useBytes")
	i.setNativeCode("gsub", sub(true), "pattern", "replacement", "x", "ignore.case", "perl", "fixed", "useBytes")
	i.setNativeCode("regexpr", regexpr, "pattern", "text", "ignore.case", "perl", "fixed", "useBytes")
	i.setNativeCode("utf8ToInt", utf8ToInt, "x")
	i.setNativeCode("intToUtf8", intToUtf8, "x", "multiple", "allow_surrogate_pairs")
	i.setNativeCode("charToRaw", charToRaw, "x")
	i.setNativeCode("rawToChar", rawToChar, "x", "multiple")
	i.setNativeCode("toString", toStringFunc, "x", "sep", "...").generic = true
	i.setNativeCode("strrep", strrep, "x", "times")
	i.setNativeCode("sQuote", quoteFunc("‘", "’", "'"), "x", "q")
	i.setNativeCode("dQuote", quoteFunc("“", "”", "\""), "x", "q")
	i.setNativeCode("shQuote", shQuote, "string", "type")
	i.setNativeCode("formatC", formatC, "x", "width", "digits", "format", "flag", "mode", "big.mark")
}

// characterArg returns an argument as a character vector, converting other atomic vectors.
func (c *callContext) characterArg(v value.Value, name string) *value.Character {
	switch v := v.(type) {
	case *value.Character:
		return v
	case *value.NullValue:
		return value.NewCharacter(0)
	case *value.Symbol:
		return value.Str(v.Name)
	}
	if !value.IsAtomic(v) {
		c.errorf("non-character argument")
	}
	return c.coerce(v, value.TypeCharacter).(*value.Character)
}

// mapStrings applies f to each non-NA string, keeping names, dim and dimnames.
func mapStrings(x *value.Character, f func(string) string) *value.Character {
	ret := value.NewCharacter(x.Len())
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) {
			ret.SetNA(k)
		} else {
			ret.Set(k, f(x.At(k)))
		}
	}
	ret.SetAttrs(x.Attrs().Clone())
	keepStructure(ret)
	return ret
}

func paste(zeroSep bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		sep := ""
		if !zeroSep {
			sep = a.strOr("sep", " ")
		}
		var parts [][]string
		n := 0
		for _, d := range a.dots {
			s := asStrings(d.Value)
			if len(s) == 0 {
				continue
			}
			parts = append(parts, s)
			n = max(n, len(s))
		}
		ret := make([]string, n)
		for k := range ret {
			elems := make([]string, len(parts))
			for j, p := range parts {
				elems[j] = p[k%len(p)]
			}
			ret[k] = strings.Join(elems, sep)
		}
		if a.has("collapse") && !value.IsNull(a.value("collapse")) {
			collapse, ok := asString(a.value("collapse"))
			if !ok {
				c.errorf("invalid '%s' argument", "collapse")
			}
			return value.Str(strings.Join(ret, collapse))
		}
		return value.CharacterOf(ret...)
	}
}

func nchar(c *callContext, a *argList) value.Value {
	xv := a.value("x")
	if value.Inherits(xv, "factor") >= 0 {
		c.errorf("'nchar()' requires a character vector")
	}
	x := c.characterArg(xv, "x")
	typ := a.strOr("type", "chars")
	keepNA, keepNAset := false, false
	if a.has("keepNA") {
		if l, ok := a.value("keepNA").(*value.Logical); ok && l.Len() == 1 && !l.IsNA(0) {
			keepNA, keepNAset = l.At(0), true
		}
	}
	ret := value.NewInteger(x.Len())
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) {
			if (!keepNAset && typ != "width") || keepNA {
				ret.SetNA(k)
			} else {
				ret.Set(k, 2)
			}
			continue
		}
		s := x.At(k)
		switch {
		case strings.HasPrefix("bytes", typ) && typ != "":
			ret.Set(k, len(s))
		case strings.HasPrefix("width", typ) && typ != "":
			ret.Set(k, runewidth.StringWidth(s))
		case strings.HasPrefix("chars", typ) && typ != "":
			ret.Set(k, utf8.RuneCountInString(s))
		default:
			c.errorf("invalid '%s' argument", "type")
		}
	}
	ret.SetAttrs(xv.Attrs().Clone())
	keepStructure(ret)
	return ret
}

// runeSlice returns the 1-based runes start..stop of s, clamped to its length.
func runeSlice(s string, start, stop int) string {
	runes := []rune(s)
	start = max(start, 1)
	stop = min(stop, len(runes))
	if start > stop {
		return ""
	}
	return string(runes[start-1 : stop])
}

func substr(c *callContext, a *argList) value.Value {
	x := c.characterArg(a.value("x"), "x")
	start := c.coerce(a.value("start"), value.TypeInteger).(*value.Integer)
	stop := c.coerce(a.value("stop"), value.TypeInteger).(*value.Integer)
	if x.Len() > 0 && (start.Len() == 0 || stop.Len() == 0) {
		c.errorf("invalid substring arguments")
	}
	ret := value.NewCharacter(x.Len())
	for k := 0; k < x.Len(); k++ {
		i, j := k%start.Len(), k%stop.Len()
		if x.IsNA(k) || start.IsNA(i) || stop.IsNA(j) {
			ret.SetNA(k)
		} else {
			ret.Set(k, runeSlice(x.At(k), start.At(i), stop.At(j)))
		}
	}
	ret.SetAttrs(x.Attrs().Clone())
	keepStructure(ret)
	return ret
}

func substring(c *callContext, a *argList) value.Value {
	x := c.characterArg(a.value("text"), "text")
	first := c.coerce(a.value("first"), value.TypeInteger).(*value.Integer)
	last := c.coerce(a.opt("last", value.Int(1000000)), value.TypeInteger).(*value.Integer)
	n := 0
	if x.Len() > 0 && first.Len() > 0 && last.Len() > 0 {
		n = max(x.Len(), first.Len(), last.Len())
	}
	ret := value.NewCharacter(n)
	for k := 0; k < n; k++ {
		s, i, j := k%x.Len(), k%first.Len(), k%last.Len()
		if x.IsNA(s) || first.IsNA(i) || last.IsNA(j) {
			ret.SetNA(k)
		} else {
			ret.Set(k, runeSlice(x.At(s), first.At(i), last.At(j)))
		}
	}
	if n == x.Len() {
		if names := value.Attr(x, "names"); names != nil {
			mustSetAttr(ret, "names", names)
		}
	}
	return ret
}

// regexOptions are the common options of the regular expression functions.
type regexOptions struct {
	fixed, ignoreCase, perl bool
}

func (a *argList) regexOptions() regexOptions {
	o := regexOptions{fixed: a.flagOr("fixed", false), perl: a.flagOr("perl", false)}
	for _, f := range a.formals {
		if f == "ignore.case" {
			o.ignoreCase = a.flagOr("ignore.case", false)
		}
	}
	if o.fixed && o.ignoreCase {
		a.c.warningf("argument '%s' will be ignored", "ignore.case = TRUE")
		o.ignoreCase = false
	}
	return o
}

// regex compiles a pattern, caching the result.
func (c *callContext) regex(pattern string, o regexOptions) *regexp.Regexp {
	p := pattern
	if o.fixed {
		p = regexp.QuoteMeta(p)
	}
	if o.ignoreCase {
		p = "(?i)" + p
	}
	compiled := regexCache.GetOrSet(p, func() compiledRegex {
		re, err := regexp.Compile(p)
		return compiledRegex{re: re, err: err}
	})
	if compiled.err != nil {
		c.errorf("invalid regular expression '%s', reason '%s'", pattern, compiled.err)
	}
	return compiled.re
}

// patternArg returns the single pattern argument of a regex function.
func (c *callContext) patternArg(v value.Value) (string, bool) {
	p := c.characterArg(v, "pattern")
	if p.Len() < 1 {
		c.errorf("invalid '%s' argument", "pattern")
	} else if p.Len() > 1 {
		c.warningf("argument '%s' has length > 1 and only the first element will be used", "pattern")
	}
	return p.At(0), !p.IsNA(0)
}

func strsplit(c *callContext, a *argList) value.Value {
	x := c.characterArg(a.value("x"), "x")
	split := c.characterArg(a.opt("split", value.Str("")), "split")
	o := a.regexOptions()
	ret := value.NewList(x.Len())
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) {
			ret.Set(k, value.NACharacter())
			continue
		}
		s := x.At(k)
		sep := ""
		if split.Len() > 0 {
			if split.IsNA(k % split.Len()) {
				ret.Set(k, value.NACharacter())
				continue
			}
			sep = split.At(k % split.Len())
		}
		if sep == "" {
			parts := make([]string, 0, len(s))
			for _, r := range s {
				parts = append(parts, string(r))
			}
			ret.Set(k, value.CharacterOf(parts...))
			continue
		}
		re := c.regex(sep, o)
		var parts []string
		for len(s) > 0 {
			loc := re.FindStringIndex(s)
			if loc == nil {
				parts = append(parts, s)
				break
			} else if loc[1] == 0 {
				_, size := utf8.DecodeRuneInString(s)
				parts = append(parts, s[:size])
				s = s[size:]
				continue
			}
			parts = append(parts, s[:loc[0]])
			s = s[loc[1]:]
		}
		if parts == nil {
			parts = []string{}
		}
		ret.Set(k, value.CharacterOf(parts...))
	}
	if names := value.Attr(x, "names"); names != nil {
		mustSetAttr(ret, "names", names)
	}
	return ret
}

var formatSpec = regexp.MustCompile(`%(?:(\d+)\$)?([-+ 0#]*)(\*|\d+)?(?:\.(\d+))?([a-zA-Z%])`)

func sprintf(c *callContext, a *argList) value.Value {
	fmts := c.characterArg(a.value("fmt"), "fmt")
	if fmts.Len() == 0 {
		return value.NewCharacter(0)
	}
	n := fmts.Len()
	for _, d := range a.dots {
		if d.Value.Len() == 0 {
			return value.NewCharacter(0)
		}
		n = max(n, d.Value.Len())
	}
	ret := value.NewCharacter(n)
	for k := 0; k < n; k++ {
		if fmts.IsNA(k % fmts.Len()) {
			ret.SetNA(k)
			continue
		}
		ret.Set(k, c.sprintf1(fmts.At(k%fmts.Len()), a.dots, k))
	}
	return ret
}

// sprintf1 formats one element of a vectorised sprintf call.
func (c *callContext) sprintf1(format string, args []value.Arg, k int) string {
	next := 0
	return formatSpec.ReplaceAllStringFunc(format, func(spec string) string {
		m := formatSpec.FindStringSubmatch(spec)
		verb := m[5]
		if verb == "%" {
			return "%"
		}
		argn := next
		if m[1] != "" {
			argn, _ = strconv.Atoi(m[1])
			argn--
		} else {
			next++
		}
		width := m[3]
		if width == "*" {
			if argn >= len(args) {
				c.errorf("too few arguments")
			}
			w, _ := asInt(value.Elem(args[argn].Value.(value.Vector), k%args[argn].Value.Len()))
			width = strconv.Itoa(w)
			argn = next
			next++
		}
		if argn >= len(args) {
			c.errorf("too few arguments")
		}
		vec, ok := args[argn].Value.(value.Vector)
		if !ok || !value.IsAtomic(vec) {
			c.errorf("unsupported type")
		}
		return c.formatElement(m[2], width, m[4], verb, vec, k%vec.Len())
	})
}

// formatElement formats one element of a vector with a C-style conversion.
func (c *callContext) formatElement(flags, width, prec, verb string, vec value.Vector, i int) string {
	spec := "%" + flags + width
	if prec != "" {
		spec += "." + prec
	}
	if vec.IsNA(i) {
		return fmt.Sprintf("%"+strings.ReplaceAll(flags, "0", "")+width+"s", "NA")
	}
	switch verb {
	case "d", "i":
		switch v := vec.(type) {
		case *value.Double:
			f := v.At(i)
			if f != float64(int64(f)) {
				c.errorf("invalid format '%s'; use format %%f, %%e, %%g or %%a for numeric objects", spec+verb)
			}
			return fmt.Sprintf(spec+"d", int64(f))
		case *value.Integer:
			return fmt.Sprintf(spec+"d", v.At(i))
		case *value.Logical:
			n := 0
			if v.At(i) {
				n = 1
			}
			return fmt.Sprintf(spec+"d", n)
		}
		c.errorf("invalid format '%s'; use format %%s for character objects", spec+verb)
	case "x", "X", "o":
		n, ok := asInt(value.Elem(vec, i))
		if !ok {
			c.errorf("invalid format '%s'; use format %%f, %%e, %%g or %%a for numeric objects", spec+verb)
		}
		return fmt.Sprintf(spec+verb, uint32(int32(n)))
	case "f", "e", "E", "g", "G", "a", "A":
		f, ok := asFloat(value.Elem(vec, i))
		if !ok || vec.Type() == value.TypeCharacter {
			c.errorf("invalid format '%s'; use format %%s for character objects", spec+verb)
		}
		if special, ok := specialDouble(f); ok {
			return fmt.Sprintf("%"+strings.ReplaceAll(flags, "0", "")+width+"s", special)
		}
		if prec == "" && verb != "a" && verb != "A" {
			spec += ".6"
		}
		if verb == "a" || verb == "A" {
			verb = map[string]string{"a": "x", "A": "X"}[verb]
		}
		return fmt.Sprintf(spec+verb, f)
	case "s":
		var s string
		switch v := vec.(type) {
		case *value.Double:
			s = value.FormatDouble(v.At(i), 15)
		default:
			s = asStrings(value.Elem(vec, i))[0]
		}
		return fmt.Sprintf(spec+"s", s)
	}
	c.errorf("unrecognised format specification '%s'", spec+verb)
	return ""
}

// specialDouble returns how C formats non-finite doubles.
func specialDouble(f float64) (string, bool) {
	switch {
	case f != f:
		return "NaN", true
	case math.IsInf(f, 1):
		return "Inf", true
	case math.IsInf(f, -1):
		return "-Inf", true
	}
	return "", false
}

func caseFunc(upper bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x := c.characterArg(a.value("x"), "x")
		if upper {
			return mapStrings(x, strings.ToUpper)
		}
		return mapStrings(x, strings.ToLower)
	}
}

func casefold(c *callContext, a *argList) value.Value {
	x := c.characterArg(a.value("x"), "x")
	if a.flagOr("upper", false) {
		return mapStrings(x, strings.ToUpper)
	}
	return mapStrings(x, strings.ToLower)
}

// expandRange expands character ranges like a-z in the arguments of chartr.
func expandRange(s string) []rune {
	runes := []rune(s)
	var ret []rune
	for k := 0; k < len(runes); k++ {
		if k+2 < len(runes) && runes[k+1] == '-' && runes[k] <= runes[k+2] {
			for r := runes[k]; r <= runes[k+2]; r++ {
				ret = append(ret, r)
			}
			k += 2
		} else {
			ret = append(ret, runes[k])
		}
	}
	return ret
}

func chartr(c *callContext, a *argList) value.Value {
	oldStr, ok1 := asString(a.value("old"))
	newStr, ok2 := asString(a.value("new"))
	if !ok1 || !ok2 {
		c.errorf("invalid '%s' argument", "old")
	}
	old, repl := expandRange(oldStr), expandRange(newStr)
	if len(old) > len(repl) {
		c.errorf("'old' is longer than 'new'")
	}
	table := make(map[rune]rune, len(old))
	for k, r := range old {
		table[r] = repl[k]
	}
	return mapStrings(c.characterArg(a.value("x"), "x"), func(s string) string {
		return strings.Map(func(r rune) rune {
			if to, present := table[r]; present {
				return to
			}
			return r
		}, s)
	})
}

func trimws(c *callContext, a *argList) value.Value {
	x := c.characterArg(a.value("x"), "x")
	which := a.strOr("which", "both")
	if which != "both" && which != "left" && which != "right" {
		c.errorf("'arg' should be one of “both”, “left”, “right”")
	}
	left := func(s string) string { return leadingSpace.ReplaceAllString(s, "") }
	right := func(s string) string { return trailingSpace.ReplaceAllString(s, "") }
	if a.has("whitespace") {
		ws := a.str("whitespace")
		l := c.regex("^("+ws+")+", regexOptions{})
		r := c.regex("("+ws+")+$", regexOptions{})
		left = func(s string) string { return l.ReplaceAllString(s, "") }
		right = func(s string) string { return r.ReplaceAllString(s, "") }
	}
	return mapStrings(x, func(s string) string {
		if which != "right" {
			s = left(s)
		}
		if which != "left" {
			s = right(s)
		}
		return s
	})
}

func affix(f func(s, affix string) bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x, ok1 := a.value("x").(*value.Character)
		y, ok2 := a.value(a.formals[1]).(*value.Character)
		if !ok1 || !ok2 {
			c.errorf("non-character object(s)")
		}
		n, _ := value.RecycledLength(x.Len(), y.Len())
		ret := value.NewLogical(n)
		for k := 0; k < n; k++ {
			i, j := k%x.Len(), k%y.Len()
			if x.IsNA(i) || y.IsNA(j) {
				ret.SetNA(k)
			} else {
				ret.Set(k, f(x.At(i), y.At(j)))
			}
		}
		return ret
	}
}

func strtoi(c *callContext, a *argList) value.Value {
	x := c.characterArg(a.value("x"), "x")
	base := a.intOr("base", 10)
	if base != 0 && (base < 2 || base > 36) {
		c.errorf("invalid '%s' argument", "base")
	}
	ret := value.NewInteger(x.Len())
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) {
			ret.SetNA(k)
			continue
		}
		s := strings.TrimLeftFunc(x.At(k), unicode.IsSpace)
		b := base
		digits := strings.TrimLeft(s, "+-")
		if (b == 16 || b == 0) && (strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X")) {
			s = s[:len(s)-len(digits)] + digits[2:]
			b = 16
		} else if b == 0 && strings.HasPrefix(digits, "0") && len(digits) > 1 {
			b = 8
		} else if b == 0 {
			b = 10
		}
		n, err := strconv.ParseInt(s, b, 64)
		if err != nil || s == "" || n > maxInt || n < -maxInt {
			ret.SetNA(k)
		} else {
			ret.Set(k, int(n))
		}
	}
	return ret
}

func grep(logical bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		pattern, ok := c.patternArg(a.value("pattern"))
		x := c.characterArg(a.value("x"), "x")
		if !ok {
			if logical {
				ret := value.NewLogical(x.Len())
				for k := range ret.Data() {
					ret.SetNA(k)
				}
				return ret
			}
			ret := value.NewInteger(x.Len())
			for k := range ret.Data() {
				ret.SetNA(k)
			}
			return ret
		}
		re := c.regex(pattern, a.regexOptions())
		if logical {
			ret := value.NewLogical(x.Len())
			for k := 0; k < x.Len(); k++ {
				ret.Set(k, !x.IsNA(k) && re.MatchString(x.At(k)))
			}
			return ret
		}
		invert := a.flagOr("invert", false)
		var idx []int
		for k := 0; k < x.Len(); k++ {
			if !x.IsNA(k) && re.MatchString(x.At(k)) != invert {
				idx = append(idx, k)
			}
		}
		if a.flagOr("value", false) {
			ret := value.NewCharacter(len(idx))
			var names []string
			for j, k := range idx {
				ret.Set(j, x.At(k))
				if name := value.NameAt(x, k); value.Names(x) != nil {
					names = append(names, name)
				}
			}
			if names != nil {
				mustSetAttr(ret, "names", value.CharacterOf(names...))
			}
			return ret
		}
		ret := value.NewInteger(len(idx))
		for j, k := range idx {
			ret.Set(j, k+1)
		}
		if names := value.Names(x); names != nil {
			n := value.NewCharacter(len(idx))
			for j, k := range idx {
				n.Set(j, names.At(k))
			}
			mustSetAttr(ret, "names", n)
		}
		return ret
	}
}

// expandReplacement builds the replacement for one match: \1 to \9 refer to groups,
// \0 to the whole match, and with perl = TRUE \U, \L and \E change case.
func expandReplacement(repl, s string, match []int, perl bool) string {
	var b strings.Builder
	mode := 'E'
	write := func(t string) {
		switch mode {
		case 'U':
			b.WriteString(strings.ToUpper(t))
		case 'L':
			b.WriteString(strings.ToLower(t))
		default:
			b.WriteString(t)
		}
	}
	for k := 0; k < len(repl); k++ {
		ch := repl[k]
		if ch != '\\' || k+1 == len(repl) {
			write(string(ch))
			continue
		}
		k++
		switch next := repl[k]; {
		case next >= '0' && next <= '9':
			g := int(next - '0')
			if 2*g+1 < len(match) && match[2*g] >= 0 {
				write(s[match[2*g]:match[2*g+1]])
			}
		case perl && (next == 'U' || next == 'L' || next == 'E'):
			mode = rune(next)
		default:
			write(string(next))
		}
	}
	return b.String()
}

func sub(global bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		pattern, ok := c.patternArg(a.value("pattern"))
		repl, replOK := asString(a.value("replacement"))
		x := c.characterArg(a.value("x"), "x")
		if !ok {
			ret := value.NewCharacter(x.Len())
			for k := range ret.Data() {
				ret.SetNA(k)
			}
			return ret
		}
		o := a.regexOptions()
		re := c.regex(pattern, o)
		ret := value.NewCharacter(x.Len())
		for k := 0; k < x.Len(); k++ {
			if x.IsNA(k) {
				ret.SetNA(k)
				continue
			}
			s := x.At(k)
			limit := 1
			if global {
				limit = -1
			}
			matches := re.FindAllStringSubmatchIndex(s, limit)
			if len(matches) == 0 {
				ret.Set(k, s)
				continue
			} else if !replOK {
				ret.SetNA(k)
				continue
			}
			var b strings.Builder
			last := 0
			for _, m := range matches {
				b.WriteString(s[last:m[0]])
				if o.fixed {
					b.WriteString(repl)
				} else {
					b.WriteString(expandReplacement(repl, s, m, o.perl))
				}
				last = m[1]
			}
			b.WriteString(s[last:])
			ret.Set(k, b.String())
		}
		if names := value.Attr(x, "names"); names != nil {
			mustSetAttr(ret, "names", names)
		}
		return ret
	}
}

func regexpr(c *callContext, a *argList) value.Value {
	pattern, ok := c.patternArg(a.value("pattern"))
	x := c.characterArg(a.value("text"), "text")
	ret := value.NewInteger(x.Len())
	lengths := value.NewInteger(x.Len())
	var re *regexp.Regexp
	if ok {
		re = c.regex(pattern, a.regexOptions())
	}
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) || re == nil {
			ret.SetNA(k)
			lengths.SetNA(k)
			continue
		}
		s := x.At(k)
		if loc := re.FindStringIndex(s); loc != nil {
			ret.Set(k, utf8.RuneCountInString(s[:loc[0]])+1)
			lengths.Set(k, utf8.RuneCountInString(s[loc[0]:loc[1]]))
		} else {
			ret.Set(k, -1)
			lengths.Set(k, -1)
		}
	}
	mustSetAttr(ret, "match.length", lengths)
	mustSetAttr(ret, "useBytes", value.Bool(false))
	return ret
}

func utf8ToInt(c *callContext, a *argList) value.Value {
	x, ok := a.value("x").(*value.Character)
	if !ok || x.Len() != 1 {
		c.errorf("argument should be a character vector of length 1")
	}
	if x.IsNA(0) {
		return value.NAInteger()
	}
	s := x.At(0)
	if !utf8.ValidString(s) {
		return value.NAInteger()
	}
	ret := make([]int, 0, len(s))
	for _, r := range s {
		ret = append(ret, int(r))
	}
	return value.IntegerOf(ret...)
}

func intToUtf8(c *callContext, a *argList) value.Value {
	x := c.coerce(a.value("x"), value.TypeInteger).(*value.Integer)
	multiple := a.flagOr("multiple", false)
	if multiple {
		ret := value.NewCharacter(x.Len())
		for k := 0; k < x.Len(); k++ {
			if x.IsNA(k) {
				ret.SetNA(k)
			} else if x.At(k) != 0 {
				ret.Set(k, string(rune(x.At(k))))
			}
		}
		return ret
	}
	var b strings.Builder
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) {
			return value.NACharacter()
		} else if r := x.At(k); r != 0 {
			if r < 0 || r > unicode.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
				return value.NACharacter()
			}
			b.WriteRune(rune(r))
		}
	}
	return value.Str(b.String())
}

func charToRaw(c *callContext, a *argList) value.Value {
	x, ok := a.value("x").(*value.Character)
	if !ok {
		c.errorf("argument must be a character vector of length 1")
	} else if x.Len() > 1 {
		c.warningf("argument should be a character vector of length 1\nall but the first element will be ignored")
	}
	if x.Len() == 0 || x.IsNA(0) {
		return value.NewRaw(0)
	}
	return value.RawOf([]byte(x.At(0))...)
}

func rawToChar(c *callContext, a *argList) value.Value {
	x, ok := a.value("x").(*value.Raw)
	if !ok {
		c.errorf("argument 'x' must be a raw vector")
	}
	if a.flagOr("multiple", false) {
		ret := value.NewCharacter(x.Len())
		for k, b := range x.Data() {
			ret.Set(k, string([]byte{b}))
		}
		return ret
	}
	data := x.Data()
	for k, b := range data {
		if b == 0 && k < len(data)-1 {
			c.errorf("embedded nul in string: '%s'", strings.ReplaceAll(string(data), "\x00", `\0`))
		}
	}
	return value.Str(strings.TrimRight(string(data), "\x00"))
}

func toStringFunc(c *callContext, a *argList) value.Value {
	sep := a.strOr("sep", ", ")
	return value.Str(strings.Join(asStrings(a.value("x")), sep))
}

func strrep(c *callContext, a *argList) value.Value {
	x := c.characterArg(a.value("x"), "x")
	times := c.coerce(a.value("times"), value.TypeInteger).(*value.Integer)
	n, _ := value.RecycledLength(x.Len(), times.Len())
	ret := value.NewCharacter(n)
	for k := 0; k < n; k++ {
		i, j := k%x.Len(), k%times.Len()
		if x.IsNA(i) || times.IsNA(j) {
			ret.SetNA(k)
		} else if times.At(j) < 0 {
			c.errorf("invalid '%s' value", "times")
		} else {
			ret.Set(k, strings.Repeat(x.At(i), times.At(j)))
		}
	}
	if n == x.Len() {
		if names := value.Attr(x, "names"); names != nil {
			mustSetAttr(ret, "names", names)
		}
	}
	return ret
}

func quoteFunc(fancyOpen, fancyClose, plain string) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		fancy := false
		if opt := c.i.session.Option("useFancyQuotes"); opt != nil {
			fancy, _ = asFlag(opt)
		}
		if a.has("q") {
			fancy, _ = asFlag(a.value("q"))
		}
		left, right := plain, plain
		if fancy {
			left, right = fancyOpen, fancyClose
		}
		x := c.characterArg(a.value("x"), "x")
		return mapStrings(x, func(s string) string { return left + s + right })
	}
}

func shQuote(c *callContext, a *argList) value.Value {
	x := c.characterArg(a.value("string"), "string")
	typ := a.strOr("type", "sh")
	ret := value.NewCharacter(x.Len())
	for k := 0; k < x.Len(); k++ {
		s := asStrings(value.Elem(x, k))[0]
		switch typ {
		case "sh", "csh":
			if !strings.Contains(s, "'") {
				s = "'" + s + "'"
			} else if typ == "sh" {
				s = `"` + shellEscape.ReplaceAllString(s, `\$1`) + `"`
			} else {
				s = "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
			}
		case "cmd", "cmd2":
			s = `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
		default:
			c.errorf("'arg' should be one of “sh”, “csh”, “cmd”, “cmd2”")
		}
		ret.Set(k, s)
	}
	return ret
}

var shellEscape = regexp.MustCompile("([\"$`\\\\])")

func formatC(c *callContext, a *argList) value.Value {
	xv := a.value("x")
	x, ok := xv.(value.Vector)
	if !ok || !value.IsAtomic(xv) {
		c.errorf("unsupported type")
	}
	format := a.strOr("format", "")
	if format == "" {
		switch x.Type() {
		case value.TypeInteger, value.TypeLogical:
			format = "d"
		case value.TypeCharacter:
			format = "s"
		default:
			format = "g"
		}
	}
	width := a.intOr("width", 0)
	flag := a.strOr("flag", "")
	prec := ""
	if a.has("digits") && !value.IsNull(a.value("digits")) {
		prec = strconv.Itoa(a.int("digits"))
	}
	bigMark := a.strOr("big.mark", "")
	widthStr := ""
	if width != 0 {
		widthStr = strconv.Itoa(abs32(width))
		if width < 0 && !strings.Contains(flag, "-") {
			flag += "-"
		}
	}
	verb := format
	if format == "fg" {
		verb = "g"
	}
	ret := value.NewCharacter(x.Len())
	for k := 0; k < x.Len(); k++ {
		var s string
		if bigMark != "" && !x.IsNA(k) && (format == "d" || format == "f") {
			s = c.bigMarked(x, k, format, prec, bigMark)
			s = fmt.Sprintf("%"+strings.ReplaceAll(flag, "0", "")+widthStr+"s", s)
		} else if format == "d" && x.Type() == value.TypeDouble && !x.IsNA(k) {
			f, _ := asFloat(value.Elem(x, k))
			s = c.formatElement(flag, widthStr, "", "d", value.Num(roundDigits(f, 0)), 0)
		} else {
			s = c.formatElement(flag, widthStr, prec, verb, x, k)
		}
		ret.Set(k, s)
	}
	ret.SetAttrs(xv.Attrs().Clone())
	keepStructure(ret)
	return ret
}

func abs32(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// bigMarked formats a number with its thousands separated by a mark.
func (c *callContext) bigMarked(x value.Vector, k int, format, prec, mark string) string {
	f, _ := asFloat(value.Elem(x, k))
	var s string
	if format == "d" {
		s = humanize.Comma(int64(roundDigits(f, 0)))
	} else {
		digits := 6
		if prec != "" {
			digits, _ = strconv.Atoi(prec)
		}
		s = humanize.CommafWithDigits(roundDigits(f, digits), digits)
		if digits > 0 {
			if dot := strings.IndexByte(s, '.'); dot < 0 {
				s += "." + strings.Repeat("0", digits)
			} else if pad := digits - (len(s) - dot - 1); pad > 0 {
				s += strings.Repeat("0", pad)
			}
		}
	}
	if mark != "," {
		s = strings.ReplaceAll(s, ",", mark)
	}
	return s
}
