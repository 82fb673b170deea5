package interp

import (
	"fmt"

	"github.com/thought-machine/rcore/src/value"
)

func registerApply(i *Interpreter) {
	i.setNativeCode("lapply", lapply, "X", "FUN", "...")
	i.setNativeCode("sapply", sapply, "X", "FUN", "...", "simplify", "USE.NAMES")
	i.setNativeCode("vapply", vapply, "X", "FUN", "FUN.VALUE", "...", "USE.NAMES")
	i.setNativeCode("mapply", mapply, "FUN", "...", "MoreArgs", "SIMPLIFY", "USE.NAMES")
	i.setNativeCode("Map", mapFunc, "f", "...")
	i.setNativeCode("Reduce", reduce, "f", "x", "init", "right", "accumulate")
	i.setNativeCode("Filter", filter, "f", "x")
	i.setNativeCode("do.call", doCall, "what", "args", "quote", "envir").passVisible = true
}

// applyCall is the call FUN(X[[i]], ...) that the apply functions report.
var applyCall = &value.Language{
	Fn: value.Intern("FUN"),
	Args: []value.Arg{
		{Value: value.NewCall("[[", value.Intern("X"), value.Intern("i"))},
		{Value: value.DotsSymbol},
	},
}

// elements returns the elements of X for the apply functions.
func (c *callContext) elements(x value.Value) value.Vector {
	switch v := x.(type) {
	case *value.NullValue:
		return value.NewList(0)
	case *value.Env:
		return c.i.envList(v, false)
	case value.Vector:
		return v
	case *value.Pairlist:
		return pairlistList(v)
	case *value.Language:
		return languageList(v)
	}
	l, err := value.AsList(x)
	c.check(err)
	return l
}

// applyEach calls fn on each element of x, with extra arguments.
func (c *callContext) applyEach(x value.Vector, fn value.Value, extra []value.Arg) *value.List {
	ret := value.NewList(x.Len())
	for k := 0; k < x.Len(); k++ {
		args := append([]value.Arg{{Value: value.Elem(x, k)}}, extra...)
		ret.Set(k, c.i.callFunction(fn, args, applyCall, c.env))
	}
	if names := value.Attr(x, "names"); names != nil {
		mustSetAttr(ret, "names", names)
	}
	return ret
}

func lapply(c *callContext, a *argList) value.Value {
	return c.applyEach(c.elements(a.value("X")), a.function("FUN"), a.dots)
}

// useNames names the result of sapply by a character X without names.
func useNames(ret *value.List, x value.Value) {
	if chr, ok := x.(*value.Character); ok && value.Names(x) == nil {
		mustSetAttr(ret, "names", chr)
	}
}

// simplify turns a list of results into a vector or matrix when they all have the same
// length, as sapply does.
func (c *callContext) simplify(l *value.List) value.Value {
	if l.Len() == 0 {
		return l
	}
	common := -1
	for k := 0; k < l.Len(); k++ {
		n := l.At(k).Len()
		if _, ok := l.At(k).(value.Vector); !ok {
			return l
		} else if common >= 0 && n != common {
			return l
		}
		common = n
	}
	if common < 1 {
		return l
	}
	args := make([]value.Arg, l.Len())
	for k := range args {
		args[k] = value.Arg{Value: l.At(k)}
	}
	if common == 1 {
		for k := range args {
			args[k].Name = value.NameAt(l, k)
			if args[k].Name != "" {
				args[k].Value = value.StripAttributes(args[k].Value)
			}
		}
		return c.combine(args, false, true)
	}
	ret := c.combine(args, false, false)
	mustSetAttr(ret, "dim", value.IntegerOf(common, l.Len()))
	rowNames, colNames := value.Attr(l.At(0), "names"), value.Attr(l, "names")
	if rowNames != nil || colNames != nil {
		dn := value.NewList(2)
		if rowNames != nil {
			dn.Set(0, rowNames)
		}
		if colNames != nil {
			dn.Set(1, colNames)
		}
		mustSetAttr(ret, "dimnames", dn)
	}
	return ret
}

func sapply(c *callContext, a *argList) value.Value {
	x := a.value("X")
	ret := c.applyEach(c.elements(x), a.function("FUN"), a.dots)
	if a.flagOr("USE.NAMES", true) {
		useNames(ret, x)
	} else {
		ret.Attrs().Remove("names")
	}
	if simplify, ok := a.opt("simplify", value.Bool(true)).(*value.Logical); ok && simplify.Len() == 1 && !simplify.IsNA(0) && !simplify.At(0) {
		return ret
	}
	return c.simplify(ret)
}

func vapply(c *callContext, a *argList) value.Value {
	x := a.value("X")
	template, ok := a.value("FUN.VALUE").(value.Vector)
	if !ok {
		c.errorf("'FUN.VALUE' must be a vector")
	}
	results := c.applyEach(c.elements(x), a.function("FUN"), a.dots)
	if a.flagOr("USE.NAMES", true) {
		useNames(results, x)
	}
	n, t := template.Len(), template.Type()
	ret, err := value.NewVector(t, n*results.Len())
	c.check(err)
	for k := 0; k < results.Len(); k++ {
		r := results.At(k)
		if r.Len() != n {
			c.errorf("values must be length %d,\n but FUN(X[[%d]]) result is length %d", n, k+1, r.Len())
		}
		vec, ok := r.(value.Vector)
		if !ok || (r.Type() != t && combineRank(r.Type()) > combineRank(t)) || (value.IsAtomic(r) != value.IsAtomic(template)) {
			c.errorf("values must be type '%s',\n but FUN(X[[%d]]) result is type '%s'", t, k+1, r.Type())
		}
		vec = c.coerce(value.StripAttributes(vec), t)
		for j := 0; j < n; j++ {
			setElement(ret, k*n+j, vec, j)
		}
	}
	names := value.Attr(results, "names")
	if n == 1 {
		if names != nil {
			mustSetAttr(ret, "names", names)
		}
		return ret
	}
	if n > 1 {
		mustSetAttr(ret, "dim", value.IntegerOf(n, results.Len()))
		rowNames := value.Attr(template, "names")
		if rowNames == nil && results.Len() > 0 {
			rowNames = value.Attr(results.At(0), "names")
		}
		if rowNames != nil || names != nil {
			dn := value.NewList(2)
			if rowNames != nil {
				dn.Set(0, rowNames)
			}
			if names != nil {
				dn.Set(1, names)
			}
			mustSetAttr(ret, "dimnames", dn)
		}
	}
	return ret
}

// mapArgs calls fn over the elements of several vectors in parallel.
func (c *callContext) mapArgs(fn value.Value, dots []value.Arg, more []value.Arg) *value.List {
	vecs := make([]value.Vector, len(dots))
	n := 0
	for k, d := range dots {
		vecs[k] = c.elements(d.Value)
		if vecs[k].Len() == 0 {
			return value.NewList(0)
		}
		n = max(n, vecs[k].Len())
	}
	for _, v := range vecs {
		if n%v.Len() != 0 {
			c.warningf("longer argument not a multiple of length of shorter")
			break
		}
	}
	ret := value.NewList(n)
	call := &value.Language{Fn: value.Intern("FUN"), Args: []value.Arg{{Value: value.DotsSymbol}}}
	for j := 0; j < n; j++ {
		args := make([]value.Arg, 0, len(dots)+len(more))
		for k, d := range dots {
			args = append(args, value.Arg{Name: d.Name, Value: value.Elem(vecs[k], j%vecs[k].Len())})
		}
		args = append(args, more...)
		ret.Set(j, c.i.callFunction(fn, args, call, c.env))
	}
	if len(dots) > 0 {
		first := dots[0].Value
		if names := value.Attr(first, "names"); names != nil {
			mustSetAttr(ret, "names", names)
		} else if chr, ok := first.(*value.Character); ok {
			mustSetAttr(ret, "names", value.StripAttributes(chr))
		}
	}
	return ret
}

// moreArgs converts the MoreArgs list of mapply to arguments.
func (c *callContext) moreArgs(v value.Value) []value.Arg {
	if value.IsNull(v) {
		return nil
	}
	l, ok := v.(*value.List)
	if !ok {
		c.errorf("argument 'MoreArgs' of 'mapply' is not a list")
	}
	args := make([]value.Arg, l.Len())
	for k := range args {
		args[k] = value.Arg{Name: value.NameAt(l, k), Value: l.At(k)}
	}
	return args
}

func mapply(c *callContext, a *argList) value.Value {
	ret := c.mapArgs(a.function("FUN"), a.dots, c.moreArgs(a.opt("MoreArgs", value.Null)))
	if !a.flagOr("USE.NAMES", true) {
		ret.Attrs().Remove("names")
	}
	if a.flagOr("SIMPLIFY", true) {
		return c.simplify(ret)
	}
	return ret
}

func mapFunc(c *callContext, a *argList) value.Value {
	return c.mapArgs(a.function("f"), a.dots, nil)
}

func reduce(c *callContext, a *argList) value.Value {
	fn := a.function("f")
	x := c.elements(a.value("x"))
	right := a.flagOr("right", false)
	accumulate := a.flagOr("accumulate", false)
	items := make([]value.Value, x.Len())
	for k := range items {
		items[k] = value.Elem(x, k)
	}
	if right {
		for l, r := 0, len(items)-1; l < r; l, r = l+1, r-1 {
			items[l], items[r] = items[r], items[l]
		}
	}
	if a.has("init") {
		items = append([]value.Value{a.value("init")}, items...)
	}
	if len(items) == 0 {
		return value.Null
	}
	call := &value.Language{Fn: value.Intern("f"), Args: []value.Arg{{Value: value.Intern("init")}, {Value: value.NewCall("[[", value.Intern("x"), value.Intern("i"))}}}
	acc := items[0]
	steps := []value.Value{acc}
	for _, item := range items[1:] {
		if right {
			acc = c.i.callFunction(fn, []value.Arg{{Value: item}, {Value: acc}}, call, c.env)
		} else {
			acc = c.i.callFunction(fn, []value.Arg{{Value: acc}, {Value: item}}, call, c.env)
		}
		steps = append(steps, acc)
	}
	if !accumulate {
		return acc
	}
	if right {
		for l, r := 0, len(steps)-1; l < r; l, r = l+1, r-1 {
			steps[l], steps[r] = steps[r], steps[l]
		}
	}
	return c.simplify(value.ListOf(steps...))
}

func filter(c *callContext, a *argList) value.Value {
	xv := a.value("x")
	x := c.elements(xv)
	results := c.applyEach(x, a.function("f"), nil)
	var keep []int
	for k := 0; k < results.Len(); k++ {
		if b, ok := asFlag(results.At(k)); ok && b {
			keep = append(keep, k)
		}
	}
	if keep == nil {
		keep = []int{}
	}
	return extract(x, keep)
}

func doCall(c *callContext, a *argList) value.Value {
	what := a.value("what")
	env := a.envOr("envir", c.env)
	var fn value.Value
	switch w := what.(type) {
	case *value.Character:
		if w.Len() != 1 || w.IsNA(0) {
			c.errorf("'what' must be a function or character string")
		}
		fn = value.Intern(w.At(0))
	default:
		if !value.IsFunction(what) {
			c.errorf("'what' must be a function or character string")
		}
		fn = what
	}
	argv := a.opt("args", value.NewList(0))
	var items []value.Arg
	switch l := argv.(type) {
	case *value.List:
		items = make([]value.Arg, l.Len())
		for k := range items {
			items[k] = value.Arg{Name: value.NameAt(l, k), Value: l.At(k)}
		}
	case *value.Pairlist:
		items = l.Items
	case *value.NullValue:
	default:
		c.errorf("second argument must be a list")
	}
	if a.flagOr("quote", false) {
		items = quoteArgs(items)
	}
	call := &value.Language{Fn: fn, Args: items}
	log.Debug("do.call of %s with %d arguments", describeFunction(fn), len(items))
	return c.i.eval(call, env)
}

// describeFunction names a function for log messages.
func describeFunction(fn value.Value) string {
	switch f := fn.(type) {
	case *value.Symbol:
		return f.Name
	case *value.Builtin:
		return f.Name
	}
	return fmt.Sprintf("<%s>", fn.Type())
}
