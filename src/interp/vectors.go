package interp

import (
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/thought-machine/rcore/src/value"
)

func registerVectors(i *Interpreter) {
	i.setNativeCode("c", combineFunc, "...").generic = true
	i.setNativeCode("unlist", unlist, "x", "recursive", "use.names")
	i.setNativeCode("vector", vectorFunc, "mode", "length")
	for name, t := range map[string]value.Type{
		"logical":   value.TypeLogical,
		"integer":   value.TypeInteger,
		"numeric":   value.TypeDouble,
		"double":    value.TypeDouble,
		"character": value.TypeCharacter,
		"raw":       value.TypeRaw,
	} {
		i.setNativeCode(name, typedVector(t), "length")
	}
	i.setNativeCode("complex", complexFunc, "length.out", "real", "imaginary", "modulus", "argument")
	i.setNativeCode("list", list, "...")
	i.setNativeCode("length", length, "x").generic = true
	i.setNativeCode("length<-", setLength, "x", "value").generic = true
	i.setNativeCode("rep", rep, "x", "times", "length.out", "each").generic = true
	i.setNativeCode("rep_len", repLen, "x", "length.out")
	i.setNativeCode("rep.int", repInt, "x", "times")
	i.setNativeCode("seq", seq, "from", "to", "by", "length.out", "along.with", "...").generic = true
	i.setNativeCode("seq_len", seqLen, "length.out")
	i.setNativeCode("seq_along", seqAlong, "along.with")
	i.setNativeCode(":", colon, "from", "to")
	i.setNativeCode("rev", rev, "x").generic = true
	i.setNativeCode("sort", sortFunc, "x", "decreasing", "na.last", "...").generic = true
	i.setNativeCode("order", order, "...", "na.last", "decreasing", "method")
	i.setNativeCode("unique", unique, "x", "incomparables", "fromLast", "...").generic = true
	i.setNativeCode("duplicated", duplicated, "x", "incomparables", "fromLast", "...").generic = true
	i.setNativeCode("anyDuplicated", anyDuplicated, "x", "incomparables", "fromLast", "...").generic = true
	i.setNativeCode("match", match, "x", "table", "nomatch", "incomparables")
	i.setNativeCode("%in%", in, "x", "table")
	i.setNativeCode("which", which, "x", "arr.ind", "useNames")
	i.setNativeCode("which.max", whichExtreme(true), "x")
	i.setNativeCode("which.min", whichExtreme(false), "x")
	i.setNativeCode("is.na", isNA, "x").generic = true
	i.setNativeCode("is.nan", isNaN, "x").generic = true
	i.setNativeCode("is.finite", isFinite(false), "x").generic = true
	i.setNativeCode("is.infinite", isFinite(true), "x").generic = true
	i.setNativeCode("anyNA", anyNA, "x", "recursive").generic = true
	i.setNativeCode("append", appendFunc, "x", "values", "after")
	i.setNativeCode("head", headTail(true), "x", "n", "...").generic = true
	i.setNativeCode("tail", headTail(false), "x", "n", "...").generic = true
	i.setNativeCode("setdiff", setOp("setdiff"), "x", "y")
	i.setNativeCode("union", setOp("union"), "x", "y")
	i.setNativeCode("intersect", setOp("intersect"), "x", "y")
	i.setNativeCode("ifelse", ifelse, "test", "yes", "no")
	i.setNativeCode("diff", diff, "x", "lag", "differences", "...").generic = true
	i.setNativeCode("Re", complexPart(func(z complex128) float64 { return real(z) }), "z")
	i.setNativeCode("Im", complexPart(func(z complex128) float64 { return imag(z) }), "z")
	i.setNativeCode("Mod", complexPart(cmplx.Abs), "z")
	i.setNativeCode("Arg", complexPart(cmplx.Phase), "z")
	i.setNativeCode("Conj", conj, "z")
}

// combineRank orders the types c() can produce, from lowest to highest.
func combineRank(t value.Type) int {
	switch t {
	case value.TypeNull:
		return 0
	case value.TypeRaw:
		return 1
	case value.TypeLogical:
		return 2
	case value.TypeInteger:
		return 3
	case value.TypeDouble:
		return 4
	case value.TypeComplex:
		return 5
	case value.TypeCharacter:
		return 6
	case value.TypeExpression:
		return 8
	}
	return 7
}

// A combiner collects the elements of the arguments to c() or unlist().
type combiner struct {
	c         *callContext
	recursive bool
	useNames  bool
	typ       value.Type
	n         int
	named     bool
	ret       value.Vector
	names     []string
	pos       int
}

// scan works out the type and length of the result.
func (cb *combiner) scan(v value.Value, tag string) {
	if tag != "" {
		cb.named = true
	}
	switch v := v.(type) {
	case *value.NullValue:
		return
	case *value.List, *value.Expression:
		if v.Attrs().Get("names") != nil {
			cb.named = true
		}
		if cb.recursive {
			vec := v.(value.Vector)
			for k := 0; k < vec.Len(); k++ {
				cb.scan(value.Elem(vec, k), "")
			}
			return
		}
		if combineRank(v.Type()) > combineRank(cb.typ) {
			cb.typ = v.Type()
		}
		cb.n += v.Len()
		return
	case value.Vector:
		if v.Attrs().Get("names") != nil {
			cb.named = true
		}
		if combineRank(v.Type()) > combineRank(cb.typ) {
			cb.typ = v.Type()
		}
		cb.n += v.Len()
		return
	}
	if combineRank(cb.typ) < combineRank(value.TypeList) {
		cb.typ = value.TypeList
	}
	cb.n++
}

// elementName combines the tag of an argument with the name of one of its elements.
func elementName(base, name string, seq, n int) string {
	switch {
	case base != "" && name != "":
		return base + "." + name
	case base != "" && n == 1:
		return base
	case base != "":
		return base + strconv.Itoa(seq)
	}
	return name
}

// fill copies the elements of v into the result.
func (cb *combiner) fill(v value.Value, base string) {
	vec, ok := v.(value.Vector)
	if !ok {
		if !value.IsNull(v) {
			cb.add(v, base)
		}
		return
	}
	_, isList := v.(*value.List)
	_, isExpr := v.(*value.Expression)
	if cb.recursive && (isList || isExpr) {
		for k := 0; k < vec.Len(); k++ {
			cb.fill(value.Elem(vec, k), elementName(base, value.NameAt(v, k), k+1, vec.Len()))
		}
		return
	}
	if cb.typ == value.TypeList || cb.typ == value.TypeExpression {
		for k := 0; k < vec.Len(); k++ {
			cb.add(value.Elem(vec, k), elementName(base, value.NameAt(v, k), k+1, vec.Len()))
		}
		return
	}
	src := cb.c.coerce(value.StripAttributes(v), cb.typ)
	for k := 0; k < src.Len(); k++ {
		cb.ret.CopyFrom(cb.pos, src, k)
		cb.names[cb.pos] = elementName(base, value.NameAt(v, k), k+1, vec.Len())
		cb.pos++
	}
}

// add appends a single element to a list result.
func (cb *combiner) add(v value.Value, name string) {
	switch ret := cb.ret.(type) {
	case *value.List:
		ret.Set(cb.pos, v)
	case *value.Expression:
		ret.Set(cb.pos, v)
	default:
		cb.ret.CopyFrom(cb.pos, cb.c.coerce(v, cb.typ), 0)
	}
	cb.names[cb.pos] = name
	cb.pos++
}

// combine implements c() and unlist() over a set of (possibly tagged) values.
func (c *callContext) combine(args []value.Arg, recursive, useNames bool) value.Value {
	cb := &combiner{c: c, recursive: recursive, useNames: useNames, typ: value.TypeNull}
	for _, a := range args {
		cb.scan(a.Value, a.Name)
	}
	if cb.typ == value.TypeNull {
		return value.Null
	}
	c.alloc(cb.n)
	ret, err := value.NewVector(cb.typ, cb.n)
	c.check(err)
	cb.ret = ret
	cb.names = make([]string, cb.n)
	for _, a := range args {
		cb.fill(a.Value, a.Name)
	}
	if cb.pos != cb.n {
		ret.Resize(cb.pos)
		cb.names = cb.names[:cb.pos]
	}
	if useNames && cb.named {
		for _, name := range cb.names {
			if name != "" {
				mustSetAttr(ret, "names", value.CharacterOf(cb.names...))
				break
			}
		}
	}
	return ret
}

func combineFunc(c *callContext, a *argList) value.Value {
	args := make([]value.Arg, 0, len(a.dots))
	recursive, useNames := false, true
	for _, d := range a.dots {
		switch d.Name {
		case "recursive":
			recursive, _ = asFlag(d.Value)
		case "use.names":
			useNames, _ = asFlag(d.Value)
		default:
			args = append(args, d)
		}
	}
	return c.combine(args, recursive, useNames)
}

func unlist(c *callContext, a *argList) value.Value {
	x := a.value("x")
	if _, ok := x.(*value.List); !ok {
		if _, ok := x.(*value.Expression); !ok {
			return x
		}
	}
	l := x.(value.Vector)
	args := make([]value.Arg, l.Len())
	for k := range args {
		args[k] = value.Arg{Name: value.NameAt(x, k), Value: value.Elem(l, k)}
	}
	return c.combine(args, a.flagOr("recursive", true), a.flagOr("use.names", true))
}

// modeType maps a mode name as vector() accepts it to a type.
func modeType(mode string) (value.Type, bool) {
	switch mode {
	case "numeric", "double":
		return value.TypeDouble, true
	case "list":
		return value.TypeList, true
	case "expression":
		return value.TypeExpression, true
	case "any", "logical":
		return value.TypeLogical, true
	case "integer":
		return value.TypeInteger, true
	case "complex":
		return value.TypeComplex, true
	case "character":
		return value.TypeCharacter, true
	case "raw":
		return value.TypeRaw, true
	}
	return 0, false
}

// lengthArg validates a length argument.
func (c *callContext) lengthArg(v value.Value) int {
	n, ok := asInt(v)
	if !ok || v.Len() != 1 || n < 0 {
		c.errorf("invalid '%s' argument", "length")
	}
	c.alloc(n)
	return n
}

func vectorFunc(c *callContext, a *argList) value.Value {
	mode := a.strOr("mode", "logical")
	t, ok := modeType(mode)
	if !ok {
		c.errorf("vector: cannot make a vector of mode '%s'.", mode)
	}
	ret, err := value.NewVector(t, c.lengthArg(a.opt("length", value.Int(0))))
	c.check(err)
	return ret
}

func typedVector(t value.Type) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		ret, err := value.NewVector(t, c.lengthArg(a.opt("length", value.Int(0))))
		c.check(err)
		return ret
	}
}

func complexFunc(c *callContext, a *argList) value.Value {
	n := c.lengthArg(a.opt("length.out", value.Int(0)))
	if a.has("modulus") || a.has("argument") {
		mod := c.coerce(a.opt("modulus", value.Num(1)), value.TypeDouble).(*value.Double)
		arg := c.coerce(a.opt("argument", value.Num(0)), value.TypeDouble).(*value.Double)
		n = max(n, mod.Len(), arg.Len())
		ret := value.NewComplex(n)
		for k := 0; k < n; k++ {
			if mod.IsNA(k%mod.Len()) || arg.IsNA(k%arg.Len()) {
				ret.SetNA(k)
			} else {
				ret.Set(k, cmplx.Rect(mod.At(k%mod.Len()), arg.At(k%arg.Len())))
			}
		}
		return ret
	}
	re := c.coerce(a.opt("real", value.NewDouble(0)), value.TypeDouble).(*value.Double)
	im := c.coerce(a.opt("imaginary", value.NewDouble(0)), value.TypeDouble).(*value.Double)
	n = max(n, re.Len(), im.Len())
	ret := value.NewComplex(n)
	for k := 0; k < n; k++ {
		var x, y float64
		if re.Len() > 0 {
			if re.IsNA(k % re.Len()) {
				ret.SetNA(k)
				continue
			}
			x = re.At(k % re.Len())
		}
		if im.Len() > 0 {
			if im.IsNA(k % im.Len()) {
				ret.SetNA(k)
				continue
			}
			y = im.At(k % im.Len())
		}
		ret.Set(k, complex(x, y))
	}
	return ret
}

func list(c *callContext, a *argList) value.Value {
	ret := value.NewList(len(a.dots))
	named := false
	names := make([]string, len(a.dots))
	for k, d := range a.dots {
		ret.Set(k, d.Value)
		names[k] = d.Name
		named = named || d.Name != ""
	}
	if named {
		mustSetAttr(ret, "names", value.CharacterOf(names...))
	}
	return ret
}

func length(c *callContext, a *argList) value.Value {
	x := a.value("x")
	switch x := x.(type) {
	case *value.Env:
		return value.Int(len(x.Names(true)))
	case *value.Closure, *value.Builtin, *value.Symbol:
		return value.Int(1)
	}
	if n := x.Len(); n <= maxInt {
		return value.Int(n)
	}
	return value.Num(float64(x.Len()))
}

func setLength(c *callContext, a *argList) value.Value {
	x := a.value("x")
	n := c.lengthArg(a.value("value"))
	if value.IsNull(x) {
		if n == 0 {
			return value.Null
		}
		ret := value.NewLogical(n)
		for k := range ret.Data() {
			ret.SetNA(k)
		}
		return ret
	}
	vec, ok := x.(value.Vector)
	if !ok {
		c.errorf("invalid argument")
	}
	names := value.Names(x)
	ret := vec.Empty(vec.Len())
	for k := 0; k < vec.Len(); k++ {
		ret.CopyFrom(k, vec, k)
	}
	ret.Resize(n)
	if names != nil {
		nn := value.NewCharacter(n)
		for k := 0; k < n && k < names.Len(); k++ {
			nn.CopyFrom(k, names, k)
		}
		mustSetAttr(ret, "names", nn)
	}
	return ret
}

// repeat builds a vector by taking elements of x at the given indices.
func repeatElements(x value.Vector, idx []int) value.Vector {
	ret := x.Empty(len(idx))
	var names *value.Character
	xnames := value.Names(x)
	if xnames != nil {
		names = value.NewCharacter(len(idx))
	}
	for k, j := range idx {
		ret.CopyFrom(k, x, j)
		if names != nil {
			names.CopyFrom(k, xnames, j)
		}
	}
	if names != nil {
		mustSetAttr(ret, "names", names)
	}
	return ret
}

func (c *callContext) repVector(v value.Value) value.Vector {
	if value.IsNull(v) {
		return value.NewLogical(0)
	}
	x, ok := v.(value.Vector)
	if !ok {
		c.errorf("attempt to replicate an object of type '%s'", v.Type())
	}
	return x
}

func rep(c *callContext, a *argList) value.Value {
	x := c.repVector(a.value("x"))
	each := 1
	if a.has("each") {
		e, ok := asInt(a.value("each"))
		if !ok || e < 0 {
			c.errorf("invalid '%s' argument", "each")
		}
		each = e
	}
	idx := make([]int, 0, x.Len()*each)
	for k := 0; k < x.Len(); k++ {
		for j := 0; j < each; j++ {
			idx = append(idx, k)
		}
	}
	if a.has("length.out") && !value.IsNull(a.value("length.out")) {
		n, ok := asInt(a.value("length.out"))
		if ok {
			if n < 0 {
				c.errorf("invalid '%s' argument", "length.out")
			}
			c.alloc(n)
			if len(idx) == 0 && n > 0 {
				ret := x.Empty(n)
				for k := 0; k < n; k++ {
					ret.SetNA(k)
				}
				return ret
			}
			out := make([]int, n)
			for k := range out {
				out[k] = idx[k%len(idx)]
			}
			return repeatElements(x, out)
		}
	}
	if a.has("times") {
		times := c.coerce(a.value("times"), value.TypeInteger).(*value.Integer)
		if times.Len() == 1 {
			if times.IsNA(0) || times.At(0) < 0 {
				c.errorf("invalid '%s' argument", "times")
			}
			c.alloc(len(idx) * times.At(0))
			out := make([]int, 0, len(idx)*times.At(0))
			for t := 0; t < times.At(0); t++ {
				out = append(out, idx...)
			}
			idx = out
		} else if times.Len() == len(idx) {
			var out []int
			for k, j := range idx {
				if times.IsNA(k) || times.At(k) < 0 {
					c.errorf("invalid '%s' argument", "times")
				}
				for t := 0; t < times.At(k); t++ {
					out = append(out, j)
				}
			}
			idx = out
		} else {
			c.errorf("invalid '%s' argument", "times")
		}
	}
	return repeatElements(x, idx)
}

func repLen(c *callContext, a *argList) value.Value {
	x := c.repVector(a.value("x"))
	n, ok := asInt(a.value("length.out"))
	if !ok || n < 0 {
		c.errorf("invalid '%s' value", "length.out")
	}
	c.alloc(n)
	if x.Len() == 0 {
		ret := x.Empty(n)
		for k := 0; k < n; k++ {
			ret.SetNA(k)
		}
		return ret
	}
	ret := x.Empty(n)
	for k := 0; k < n; k++ {
		ret.CopyFrom(k, x, k%x.Len())
	}
	return ret
}

func repInt(c *callContext, a *argList) value.Value {
	x := c.repVector(a.value("x"))
	times, ok := asInt(a.value("times"))
	if !ok || times < 0 || a.value("times").Len() != 1 {
		c.errorf("invalid '%s' value", "times")
	}
	c.alloc(x.Len() * times)
	ret := x.Empty(x.Len() * times)
	for k := 0; k < ret.Len(); k++ {
		ret.CopyFrom(k, x, k%x.Len())
	}
	return ret
}

// intSeq returns from:to as an integer vector.
func intSeq(from, to int) *value.Integer {
	n := to - from
	if n < 0 {
		n = -n
	}
	ret := value.NewInteger(n + 1)
	data := ret.Data()
	step := 1
	if to < from {
		step = -1
	}
	for k := range data {
		data[k] = from + k*step
	}
	return ret
}

// colonSeq implements from:to, producing integers when from is a whole number in range.
func (c *callContext) colonSeq(from, to float64) value.Value {
	if math.IsNaN(from) || math.IsNaN(to) {
		c.errorf("NA/NaN argument")
	}
	n := math.Floor(math.Abs(to-from) + 1e-10)
	if n >= float64(c.i.session.MaxVectorSize) {
		c.errorf("result would be too long a vector")
	}
	if from == math.Trunc(from) && math.Abs(from) <= maxInt && math.Abs(from+n) <= maxInt && math.Abs(from-n) <= maxInt {
		end := int(from) + int(n)
		if to < from {
			end = int(from) - int(n)
		}
		return intSeq(int(from), end)
	}
	ret := value.NewDouble(int(n) + 1)
	for k := range ret.Data() {
		if to >= from {
			ret.Set(k, from+float64(k))
		} else {
			ret.Set(k, from-float64(k))
		}
	}
	return ret
}

// colonOperand returns the single number at one end of a : expression.
func (c *callContext) colonOperand(v value.Value) float64 {
	if value.Inherits(v, "factor") >= 0 {
		c.errorf("factor operands to ':' are not supported")
	}
	if v.Len() == 0 {
		c.errorf("argument of length 0")
	} else if v.Len() > 1 {
		c.warningf("numerical expression has %d elements: only the first used", v.Len())
	}
	vec, ok := v.(value.Vector)
	if !ok {
		c.errorf("NA/NaN argument")
	}
	d := c.coerce(value.Elem(vec, 0), value.TypeDouble).(*value.Double)
	if d.IsNA(0) {
		c.errorf("NA/NaN argument")
	}
	return d.At(0)
}

func colon(c *callContext, a *argList) value.Value {
	return c.colonSeq(c.colonOperand(a.value("from")), c.colonOperand(a.value("to")))
}

func seqLen(c *callContext, a *argList) value.Value {
	n, ok := asInt(a.value("length.out"))
	if !ok || n < 0 {
		c.errorf("argument of length 0")
	}
	c.alloc(n)
	if n == 0 {
		return value.NewInteger(0)
	}
	return intSeq(1, n)
}

func seqAlong(c *callContext, a *argList) value.Value {
	n := a.value("along.with").Len()
	if n == 0 {
		return value.NewInteger(0)
	}
	return intSeq(1, n)
}

// seqScalar returns a numeric seq() argument, which must have length one.
func (c *callContext) seqScalar(a *argList, name string) (float64, bool) {
	if !a.has(name) || value.IsNull(a.value(name)) {
		return 0, false
	}
	v := a.value(name)
	if v.Len() != 1 {
		c.errorf("'%s' must be of length 1", name)
	}
	f, ok := asFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		c.errorf("'%s' must be a finite number", name)
	}
	return f, true
}

func isIntegerValue(v value.Value) bool {
	_, ok := v.(*value.Integer)
	return ok
}

func seq(c *callContext, a *argList) value.Value {
	if a.has("along.with") {
		return seqAlong(c, &argList{c: c, formals: []string{"along.with"}, values: []value.Value{a.value("along.with")}})
	}
	if a.has("from") && !a.has("to") && !a.has("by") && !a.has("length.out") && a.value("from").Len() != 1 {
		return seqAlong(c, &argList{c: c, formals: []string{"along.with"}, values: []value.Value{a.value("from")}})
	}
	from, hasFrom := c.seqScalar(a, "from")
	to, hasTo := c.seqScalar(a, "to")
	by, hasBy := c.seqScalar(a, "by")
	var n int
	hasN := false
	if a.has("length.out") && !value.IsNull(a.value("length.out")) {
		f, ok := asFloat(a.value("length.out"))
		if !ok || f < 0 {
			c.errorf("'length.out' must be a non-negative number")
		}
		n, hasN = int(math.Ceil(f)), true
	}
	if hasFrom && !hasTo && !hasBy && !hasN {
		return c.colonSeq(1, from)
	}
	if !hasFrom && !hasTo && !hasBy && hasN {
		return seqLen(c, &argList{c: c, formals: []string{"length.out"}, values: []value.Value{value.Int(n)}})
	}
	if !hasN {
		if !hasFrom {
			from = 1
		}
		if !hasTo {
			to = 1
		}
		if !hasBy {
			return c.colonSeq(from, to)
		}
		del := to - from
		if del == 0 && to == 0 {
			return value.Num(to)
		}
		count := del / by
		if count < 0 {
			c.errorf("wrong sign in 'by' argument")
		} else if math.IsInf(count, 0) {
			c.errorf("invalid '(to - from)/by' in seq(.)")
		}
		steps := int(count + 1e-10)
		if (!hasFrom || isIntegerValue(a.value("from"))) && isIntegerValue(a.value("by")) {
			ret := value.NewInteger(steps + 1)
			for k := range ret.Data() {
				ret.Set(k, int(from)+k*int(by))
			}
			return ret
		}
		ret := value.NewDouble(steps + 1)
		for k := range ret.Data() {
			ret.Set(k, from+float64(k)*by)
		}
		return ret
	}
	c.alloc(n)
	ret := value.NewDouble(n)
	switch {
	case hasFrom && hasTo:
		if n == 1 {
			ret.Set(0, from)
			return ret
		}
		step := (to - from) / float64(n-1)
		for k := range ret.Data() {
			ret.Set(k, from+float64(k)*step)
		}
		ret.Set(n-1, to)
	case hasTo:
		if !hasBy {
			by = 1
		}
		for k := range ret.Data() {
			ret.Set(k, to-float64(n-1-k)*by)
		}
	default:
		if !hasBy {
			by = 1
		}
		if !hasFrom {
			from = 1
		}
		for k := range ret.Data() {
			ret.Set(k, from+float64(k)*by)
		}
	}
	return ret
}

func rev(c *callContext, a *argList) value.Value {
	x := c.repVector(a.value("x"))
	idx := make([]int, x.Len())
	for k := range idx {
		idx[k] = x.Len() - 1 - k
	}
	return repeatElements(x, idx)
}

// lessFunc returns a comparison for the non-NA elements of an atomic vector.
func (c *callContext) lessFunc(x value.Vector) func(i, j int) int {
	switch x := x.(type) {
	case *value.Logical:
		return func(i, j int) int { return boolCompare(x.At(i), x.At(j)) }
	case *value.Integer:
		return func(i, j int) int { return x.At(i) - x.At(j) }
	case *value.Double:
		return func(i, j int) int { return floatCompare(x.At(i), x.At(j)) }
	case *value.Character:
		collate := c.collate()
		return func(i, j int) int { return collate(x.At(i), x.At(j)) }
	case *value.Raw:
		return func(i, j int) int { return int(x.At(i)) - int(x.At(j)) }
	case *value.Complex:
		return func(i, j int) int {
			if cmp := floatCompare(real(x.At(i)), real(x.At(j))); cmp != 0 {
				return cmp
			}
			return floatCompare(imag(x.At(i)), imag(x.At(j)))
		}
	}
	c.errorf("argument is not a vector of a sortable type")
	return nil
}

func boolCompare(a, b bool) int {
	if a == b {
		return 0
	} else if a {
		return 1
	}
	return -1
}

func floatCompare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case a == b:
		return 0
	case a != a && b != b:
		return 0
	case a != a:
		return 1
	}
	return -1
}

// collate returns the string comparison for the session's collation locale:
// byte order in the C locale, otherwise case-insensitive with lower case first.
func (c *callContext) collate() func(a, b string) int {
	loc := c.i.session.Locale("LC_COLLATE")
	if loc == "C" || loc == "POSIX" {
		return strings.Compare
	}
	return func(a, b string) int {
		if cmp := strings.Compare(strings.ToLower(a), strings.ToLower(b)); cmp != 0 {
			return cmp
		}
		return -strings.Compare(a, b)
	}
}

// naLast interprets an na.last argument: TRUE, FALSE or NA (remove).
func naLast(a *argList, def value.Value) (last, remove bool) {
	v := a.opt("na.last", def)
	l, ok := v.(*value.Logical)
	if !ok || l.Len() != 1 {
		a.c.errorf("invalid '%s' value", "na.last")
	}
	if l.IsNA(0) {
		return true, true
	}
	return l.At(0), false
}

func sortFunc(c *callContext, a *argList) value.Value {
	xv := a.value("x")
	if value.IsNull(xv) {
		return value.Null
	}
	x, ok := xv.(value.Vector)
	if !ok || !value.IsAtomic(xv) {
		c.errorf("only atomic vectors can be sorted")
	}
	decreasing := a.flagOr("decreasing", false)
	last, remove := naLast(a, value.NALogical())
	idx := c.orderIndices([]value.Vector{x}, decreasing, last, remove)
	return repeatElements(x, idx)
}

// orderIndices returns the 0-based permutation that sorts the keys. Ties keep their
// original order.
func (c *callContext) orderIndices(keys []value.Vector, decreasing, naLast, removeNA bool) []int {
	n := keys[0].Len()
	for _, k := range keys[1:] {
		if k.Len() != n {
			c.errorf("argument lengths differ")
		}
	}
	less := make([]func(i, j int) int, len(keys))
	for k, key := range keys {
		less[k] = c.lessFunc(key)
	}
	isNA := func(key value.Vector, i int) bool { return key.IsNA(i) || value.IsNaN(key, i) }
	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if removeNA {
			missing := false
			for _, key := range keys {
				missing = missing || isNA(key, i)
			}
			if missing {
				continue
			}
		}
		idx = append(idx, i)
	}
	byKeys := func(i, j int) int {
		for k, key := range keys {
			ina, jna := isNA(key, i), isNA(key, j)
			switch {
			case ina && jna:
				continue
			case ina:
				if naLast {
					return 1
				}
				return -1
			case jna:
				if naLast {
					return -1
				}
				return 1
			}
			if cmp := less[k](i, j); cmp != 0 {
				if decreasing {
					return -cmp
				}
				return cmp
			}
		}
		return 0
	}
	slices.SortStableFunc(idx, func(i, j int) bool { return byKeys(i, j) < 0 })
	return idx
}

func order(c *callContext, a *argList) value.Value {
	if len(a.dots) == 0 {
		return value.NewInteger(0)
	}
	keys := make([]value.Vector, len(a.dots))
	for k, d := range a.dots {
		vec, ok := d.Value.(value.Vector)
		if !ok || !value.IsAtomic(d.Value) {
			c.errorf("argument %d is not a vector", k+1)
		}
		keys[k] = vec
	}
	last, remove := naLast(a, value.Bool(true))
	idx := c.orderIndices(keys, a.flagOr("decreasing", false), last, remove)
	ret := value.NewInteger(len(idx))
	for k, j := range idx {
		ret.Set(k, j+1)
	}
	return ret
}

// elementKey returns a string identifying element i of a vector for hashing; equal
// elements (as unique and match see them) have equal keys.
func elementKey(v value.Vector, i int) string {
	if v.IsNA(i) {
		return "\x00NA"
	}
	switch v := v.(type) {
	case *value.Logical:
		return value.FormatLogical(v.At(i))
	case *value.Integer:
		return strconv.Itoa(v.At(i))
	case *value.Double:
		x := v.At(i)
		if x == 0 {
			x = 0
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case *value.Complex:
		return strconv.FormatComplex(v.At(i), 'g', -1, 128)
	case *value.Character:
		return v.At(i)
	case *value.Raw:
		return string([]byte{v.At(i)})
	}
	e := value.Elem(v, i)
	return e.Type().String() + ":" + value.Deparse(e)
}

// duplicates returns which elements of x equal an earlier (or later) one.
func (c *callContext) duplicates(xv value.Value, fromLast bool) []bool {
	x := c.repVector(xv)
	seen := map[string]bool{}
	ret := make([]bool, x.Len())
	for k := range ret {
		i := k
		if fromLast {
			i = x.Len() - 1 - k
		}
		key := elementKey(x, i)
		ret[i] = seen[key]
		seen[key] = true
	}
	return ret
}

func unique(c *callContext, a *argList) value.Value {
	xv := a.value("x")
	if value.IsNull(xv) {
		return value.Null
	}
	dup := c.duplicates(xv, a.flagOr("fromLast", false))
	idx := make([]int, 0, len(dup))
	for k, d := range dup {
		if !d {
			idx = append(idx, k)
		}
	}
	ret := repeatElements(c.repVector(xv), idx)
	ret.SetAttrs(nil)
	return ret
}

func duplicated(c *callContext, a *argList) value.Value {
	return value.LogicalOf(c.duplicates(a.value("x"), a.flagOr("fromLast", false))...)
}

func anyDuplicated(c *callContext, a *argList) value.Value {
	fromLast := a.flagOr("fromLast", false)
	dup := c.duplicates(a.value("x"), fromLast)
	if fromLast {
		for k := len(dup) - 1; k >= 0; k-- {
			if dup[k] {
				return value.Int(k + 1)
			}
		}
		return value.Int(0)
	}
	for k, d := range dup {
		if d {
			return value.Int(k + 1)
		}
	}
	return value.Int(0)
}

// matchOperand converts an argument of match() to a plain vector; factors match by label.
func (c *callContext) matchOperand(v value.Value) value.Vector {
	if value.IsNull(v) {
		return value.NewLogical(0)
	}
	if value.Inherits(v, "factor") >= 0 {
		levels, _ := value.Attr(v, "levels").(*value.Character)
		codes := c.coerce(value.StripAttributes(v), value.TypeInteger).(*value.Integer)
		ret := value.NewCharacter(codes.Len())
		for k := 0; k < codes.Len(); k++ {
			if codes.IsNA(k) || levels == nil || codes.At(k) < 1 || codes.At(k) > levels.Len() {
				ret.SetNA(k)
			} else {
				ret.Set(k, levels.At(codes.At(k)-1))
			}
		}
		return ret
	}
	vec, ok := v.(value.Vector)
	if !ok {
		c.errorf("'match' requires vector arguments")
	}
	return vec
}

// matchIndices returns the 1-based position of each element of x in table, or 0.
func (c *callContext) matchIndices(xv, tv value.Value) []int {
	x, table := c.matchOperand(xv), c.matchOperand(tv)
	if value.IsAtomic(x) && value.IsAtomic(table) {
		t := x.Type()
		if combineRank(table.Type()) > combineRank(t) {
			t = table.Type()
		}
		x = c.coerce(value.StripAttributes(x), t)
		table = c.coerce(value.StripAttributes(table), t)
	}
	positions := make(map[string]int, table.Len())
	for k := table.Len() - 1; k >= 0; k-- {
		positions[elementKey(table, k)] = k + 1
	}
	ret := make([]int, x.Len())
	for k := range ret {
		ret[k] = positions[elementKey(x, k)]
	}
	return ret
}

func match(c *callContext, a *argList) value.Value {
	idx := c.matchIndices(a.value("x"), a.value("table"))
	nomatch := a.opt("nomatch", value.NAInteger())
	noNA := nomatch.Len() > 0 && nomatch.(value.Vector).IsNA(0)
	no, _ := asInt(nomatch)
	ret := value.NewInteger(len(idx))
	for k, j := range idx {
		if j > 0 {
			ret.Set(k, j)
		} else if noNA {
			ret.SetNA(k)
		} else {
			ret.Set(k, no)
		}
	}
	return ret
}

func in(c *callContext, a *argList) value.Value {
	idx := c.matchIndices(a.value("x"), a.value("table"))
	ret := value.NewLogical(len(idx))
	for k, j := range idx {
		ret.Set(k, j > 0)
	}
	return ret
}

func which(c *callContext, a *argList) value.Value {
	x, ok := a.value("x").(*value.Logical)
	if !ok {
		c.typeErrorf("argument to 'which' is not logical")
	}
	var idx []int
	for k := 0; k < x.Len(); k++ {
		if !x.IsNA(k) && x.At(k) {
			idx = append(idx, k)
		}
	}
	ret := value.NewInteger(len(idx))
	for k, j := range idx {
		ret.Set(k, j+1)
	}
	if names := value.Names(x); names != nil && a.flagOr("useNames", true) {
		n := value.NewCharacter(len(idx))
		for k, j := range idx {
			n.CopyFrom(k, names, j)
		}
		mustSetAttr(ret, "names", n)
	}
	return ret
}

func whichExtreme(max bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		xv := a.value("x")
		x := c.coerce(xv, value.TypeDouble).(*value.Double)
		best := -1
		for k := 0; k < x.Len(); k++ {
			if x.IsNA(k) || math.IsNaN(x.At(k)) {
				continue
			}
			if best < 0 || (max && x.At(k) > x.At(best)) || (!max && x.At(k) < x.At(best)) {
				best = k
			}
		}
		if best < 0 {
			return value.NewInteger(0)
		}
		ret := value.Int(best + 1)
		if value.Names(xv) != nil {
			mustSetAttr(ret, "names", value.Str(value.NameAt(xv, best)))
		}
		return ret
	}
}

// elementwise builds a logical vector from a predicate over the elements of x, keeping
// names, dim and dimnames.
func (c *callContext) elementwise(xv value.Value, name string, f func(x value.Vector, i int) bool) value.Value {
	if value.IsNull(xv) {
		return value.NewLogical(0)
	}
	x, ok := xv.(value.Vector)
	if !ok {
		c.warningf("%s() applied to non-(list or vector) of type '%s'", name, xv.Type())
		return value.Bool(false)
	}
	ret := value.NewLogical(x.Len())
	for k := 0; k < x.Len(); k++ {
		ret.Set(k, f(x, k))
	}
	for _, attr := range []string{"names", "dim", "dimnames"} {
		if v := value.Attr(xv, attr); v != nil {
			mustSetAttr(ret, attr, v)
		}
	}
	return ret
}

// elemIsNA returns true if element i of x is NA; list elements count if they are length-one atomic NAs.
func elemIsNA(x value.Vector, i int) bool {
	if l, ok := x.(*value.List); ok {
		if e, ok := l.At(i).(value.Vector); ok && value.IsAtomic(e) && e.Len() == 1 {
			return e.IsNA(0) || value.IsNaN(e, 0)
		}
		return false
	}
	return x.IsNA(i) || value.IsNaN(x, i)
}

func isNA(c *callContext, a *argList) value.Value {
	return c.elementwise(a.value("x"), "is.na", elemIsNA)
}

func isNaN(c *callContext, a *argList) value.Value {
	xv := a.value("x")
	if _, ok := xv.(*value.List); ok {
		c.errorf("default method not implemented for type 'list'")
	}
	return c.elementwise(xv, "is.nan", func(x value.Vector, i int) bool { return value.IsNaN(x, i) })
}

func isFinite(infinite bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		xv := a.value("x")
		if _, ok := xv.(*value.List); ok {
			c.errorf("default method not implemented for type 'list'")
		}
		return c.elementwise(xv, "is.finite", func(x value.Vector, i int) bool {
			if x.IsNA(i) {
				return false
			}
			switch x := x.(type) {
			case *value.Double:
				if infinite {
					return math.IsInf(x.At(i), 0)
				}
				return !math.IsInf(x.At(i), 0) && !math.IsNaN(x.At(i))
			case *value.Complex:
				z := x.At(i)
				if infinite {
					return cmplx.IsInf(z)
				}
				return !cmplx.IsInf(z) && !cmplx.IsNaN(z)
			case *value.Integer, *value.Logical:
				return !infinite
			}
			return false
		})
	}
}

func anyNA(c *callContext, a *argList) value.Value {
	recursive := a.flagOr("recursive", false)
	var check func(v value.Value) bool
	check = func(v value.Value) bool {
		x, ok := v.(value.Vector)
		if !ok {
			return false
		}
		for k := 0; k < x.Len(); k++ {
			if l, ok := x.(*value.List); ok && recursive {
				if check(l.At(k)) {
					return true
				}
			} else if elemIsNA(x, k) {
				return true
			}
		}
		return false
	}
	return value.Bool(check(a.value("x")))
}

func appendFunc(c *callContext, a *argList) value.Value {
	x := a.value("x")
	values := a.value("values")
	after := x.Len()
	if a.has("after") {
		after = a.int("after")
	}
	if after >= x.Len() {
		return c.combine([]value.Arg{{Value: x}, {Value: values}}, false, true)
	} else if after <= 0 {
		return c.combine([]value.Arg{{Value: values}, {Value: x}}, false, true)
	}
	vec := c.repVector(x)
	head := make([]int, after)
	tail := make([]int, x.Len()-after)
	for k := range head {
		head[k] = k
	}
	for k := range tail {
		tail[k] = after + k
	}
	return c.combine([]value.Arg{{Value: repeatElements(vec, head)}, {Value: values}, {Value: repeatElements(vec, tail)}}, false, true)
}

func headTail(head bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x := c.repVector(a.value("x"))
		n := a.intOr("n", 6)
		length := x.Len()
		if n < 0 {
			n = max(length+n, 0)
		} else {
			n = min(n, length)
		}
		idx := make([]int, n)
		for k := range idx {
			if head {
				idx[k] = k
			} else {
				idx[k] = length - n + k
			}
		}
		ret := repeatElements(x, idx)
		value.CopyMostAttributes(x, ret)
		return ret
	}
}

func setOp(op string) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x, y := c.matchOperand(a.value("x")), c.matchOperand(a.value("y"))
		x = c.repVector(value.StripAttributes(x))
		y = c.repVector(value.StripAttributes(y))
		var combined value.Value
		switch op {
		case "union":
			combined = c.combine([]value.Arg{{Value: x}, {Value: y}}, false, false)
			if value.IsNull(combined) {
				return value.Null
			}
		case "intersect":
			in := c.matchIndices(x, y)
			var idx []int
			for k, j := range in {
				if j > 0 {
					idx = append(idx, k)
				}
			}
			combined = repeatElements(x, idx)
			if y.Len() > 0 && combineRank(y.Type()) > combineRank(x.Type()) && value.IsAtomic(x) {
				combined = c.coerce(combined, y.Type())
			}
		default:
			in := c.matchIndices(x, y)
			var idx []int
			for k, j := range in {
				if j == 0 {
					idx = append(idx, k)
				}
			}
			combined = repeatElements(x, idx)
		}
		return unique(c, &argList{c: c, formals: []string{"x", "incomparables", "fromLast", "..."}, values: []value.Value{combined, nil, nil, nil}})
	}
}

func ifelse(c *callContext, a *argList) value.Value {
	test := c.logicalOperand(a.value("test"))
	yes, no := a.value("yes"), a.value("no")
	var ret value.Vector = value.NewLogical(test.Len())
	for k := 0; k < test.Len(); k++ {
		if test.IsNA(k) {
			ret.SetNA(k)
			continue
		}
		src, ok := no.(value.Vector)
		if test.At(k) {
			src, ok = yes.(value.Vector)
		}
		if !ok || src.Len() == 0 {
			c.errorf("replacement has length zero")
		}
		if combineRank(src.Type()) > combineRank(ret.Type()) {
			ret = c.coerce(ret, src.Type())
		}
		ret.CopyFrom(k, c.coerce(value.Elem(src, k%src.Len()), ret.Type()), 0)
	}
	for _, attr := range []string{"names", "dim", "dimnames"} {
		if v := value.Attr(a.value("test"), attr); v != nil {
			mustSetAttr(ret, attr, v)
		}
	}
	return ret
}

func diff(c *callContext, a *argList) value.Value {
	x := a.vector("x")
	lag := a.intOr("lag", 1)
	differences := a.intOr("differences", 1)
	if lag < 1 || differences < 1 {
		c.errorf("'lag' and 'differences' must be integers >= 1")
	}
	var ret value.Value = value.StripAttributes(x)
	for d := 0; d < differences; d++ {
		n := ret.Len()
		if lag >= n {
			return ret.(value.Vector).Empty(0)
		}
		tail := make([]int, n-lag)
		head := make([]int, n-lag)
		for k := range tail {
			tail[k] = k + lag
			head[k] = k
		}
		vec := ret.(value.Vector)
		ret = c.arith("-", repeatElements(vec, tail), repeatElements(vec, head))
	}
	return ret
}

func complexPart(f func(complex128) float64) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		zv := a.value("z")
		if !value.IsNumeric(zv) && zv.Type() != value.TypeComplex {
			c.errorf("non-numeric argument to function")
		}
		z := c.coerce(zv, value.TypeComplex).(*value.Complex)
		ret := value.NewDouble(z.Len())
		for k := 0; k < z.Len(); k++ {
			if z.IsNA(k) {
				ret.SetNA(k)
			} else {
				ret.Set(k, f(z.At(k)))
			}
		}
		ret.SetAttrs(zv.Attrs().Clone())
		return ret
	}
}

func conj(c *callContext, a *argList) value.Value {
	zv := a.value("z")
	switch zv.Type() {
	case value.TypeComplex:
		z := zv.(*value.Complex)
		ret := z.Clone().(*value.Complex)
		for k := 0; k < z.Len(); k++ {
			if !z.IsNA(k) {
				ret.Set(k, cmplx.Conj(z.At(k)))
			}
		}
		return ret
	case value.TypeInteger, value.TypeDouble, value.TypeLogical:
		return zv
	}
	c.errorf("non-numeric argument to function")
	return nil
}
