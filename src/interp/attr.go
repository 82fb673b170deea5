package interp

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/thought-machine/rcore/src/value"
)

func registerAttr(i *Interpreter) {
	i.setNativeCode("attr", attr, "x", "which", "exact")
	i.setNativeCode("attr<-", setAttr, "x", "which", "value")
	i.setNativeCode("attributes", attributes, "x")
	i.setNativeCode("attributes<-", setAttributes, "x", "value")
	i.setNativeCode("structure", structure, ".Data", "...")
	i.setNativeCode("names", names, "x").generic = true
	i.setNativeCode("names<-", setNamedAttr("names"), "x", "value").generic = true
	i.setNativeCode("dim", attrGetter("dim"), "x").generic = true
	i.setNativeCode("dim<-", setDim, "x", "value").generic = true
	i.setNativeCode("dimnames", attrGetter("dimnames"), "x").generic = true
	i.setNativeCode("dimnames<-", setNamedAttr("dimnames"), "x", "value").generic = true
	i.setNativeCode("class", class, "x")
	i.setNativeCode("class<-", setClass, "x", "value")
	i.setNativeCode("oldClass", attrGetter("class"), "x")
	i.setNativeCode("oldClass<-", setNamedAttr("class"), "x", "value")
	i.setNativeCode("unclass", unclass, "x")
	i.setNativeCode("inherits", inherits, "x", "what", "which")
	i.setNativeCode("comment", attrGetter("comment"), "x")
	i.setNativeCode("comment<-", setNamedAttr("comment"), "x", "value")
	i.setNativeCode("levels", attrGetter("levels"), "x").generic = true
	i.setNativeCode("levels<-", setNamedAttr("levels"), "x", "value").generic = true
	i.setNativeCode("is.object", isObject, "x")
	i.setNativeCode("isS4", isS4, "object")
	i.setNativeCode("asS4", asS4, "object", "flag", "complete")
	i.setNativeCode("unname", unname, "obj", "force")
}

// attrOrNull returns an attribute, or NULL if it isn't set.
func attrOrNull(v value.Value, name string) value.Value {
	if name == "names" {
		if names := value.Names(v); names != nil {
			return names
		}
	} else if a := value.Attr(v, name); a != nil {
		return a
	}
	return value.Null
}

func attr(c *callContext, a *argList) value.Value {
	x := a.value("x")
	which, ok := a.value("which").(*value.Character)
	if !ok || which.Len() != 1 || which.IsNA(0) {
		c.errorf("exactly one attribute 'which' must be given")
	}
	name := which.At(0)
	if v := attrOrNull(x, name); !value.IsNull(v) || a.flagOr("exact", false) {
		return v
	}
	var match string
	matches := 0
	x.Attrs().Each(func(attr string, v value.Value) {
		if strings.HasPrefix(attr, name) {
			match = attr
			matches++
		}
	})
	if matches == 1 {
		return value.Attr(x, match)
	}
	return value.Null
}

// target returns the object a replacement function may modify.
func (c *callContext) target(x value.Value) value.Value {
	if value.IsNull(x) {
		return x
	}
	return c.modifiable(x)
}

func setAttr(c *callContext, a *argList) value.Value {
	name := a.str("which")
	x := c.target(a.value("x"))
	c.check(value.SetAttr(x, name, a.value("value")))
	return x
}

func attributes(c *callContext, a *argList) value.Value {
	x := a.value("x")
	var names []string
	var vals []value.Value
	if n := value.Names(x); n != nil && x.Type() != value.TypeEnvironment {
		names = append(names, "names")
		vals = append(vals, n)
	}
	x.Attrs().Each(func(name string, v value.Value) {
		if name != "names" {
			names = append(names, name)
			vals = append(vals, v)
		}
	})
	if len(names) == 0 {
		return value.Null
	}
	ret := value.ListOf(vals...)
	mustSetAttr(ret, "names", value.CharacterOf(names...))
	return ret
}

func setAttributes(c *callContext, a *argList) value.Value {
	x := c.target(a.value("x"))
	val := a.value("value")
	if value.IsNull(x) {
		if value.IsNull(val) {
			return x
		}
		x = value.NewList(0)
	}
	for _, name := range x.Attrs().Names() {
		c.check(value.SetAttr(x, name, value.Null))
	}
	if value.IsNull(val) {
		return x
	}
	l, ok := val.(*value.List)
	if !ok {
		c.errorf("attributes must be a list or NULL")
	}
	if l.Len() > 0 && value.Names(l) == nil {
		c.errorf("attributes must be named")
	}
	// dim goes first so dimnames can be checked against it.
	for k := 0; k < l.Len(); k++ {
		if value.NameAt(l, k) == "dim" {
			c.check(value.SetAttr(x, "dim", l.At(k)))
		}
	}
	for k := 0; k < l.Len(); k++ {
		name := value.NameAt(l, k)
		if name == "" {
			c.errorf("all attributes must have names [%d does not]", k+1)
		} else if name != "dim" {
			c.check(value.SetAttr(x, name, l.At(k)))
		}
	}
	return x
}

func structure(c *callContext, a *argList) value.Value {
	x := a.value(".Data")
	if value.IsNull(x) {
		if len(a.dots) > 0 {
			c.warningf("Calling 'structure(NULL, *)' is deprecated, as NULL cannot have attributes.\n  Consider 'structure(list(), *)' instead.")
			x = value.NewList(0)
		} else {
			return x
		}
	}
	x = x.Clone()
	for _, d := range a.dots {
		name := d.Name
		switch name {
		case ".Names":
			name = "names"
		case ".Dim":
			name = "dim"
		case ".Dimnames":
			name = "dimnames"
		case "":
			c.errorf("attributes must be named")
		}
		c.check(value.SetAttr(x, name, d.Value))
	}
	return x
}

func names(c *callContext, a *argList) value.Value {
	x := a.value("x")
	if env, ok := x.(*value.Env); ok {
		names := env.Names(true)
		slices.Sort(names)
		return value.CharacterOf(names...)
	}
	return attrOrNull(x, "names")
}

func attrGetter(name string) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		return attrOrNull(a.value("x"), name)
	}
}

func setNamedAttr(name string) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x := c.target(a.value("x"))
		val := a.value("value")
		if name == "names" && value.IsNull(x) && value.IsNull(val) {
			return x
		}
		c.check(value.SetAttr(x, name, val))
		return x
	}
}

func setDim(c *callContext, a *argList) value.Value {
	x := c.target(a.value("x"))
	if _, ok := x.(value.Vector); !ok && !value.IsNull(x) {
		c.errorf("invalid first argument, must be vector (list or atomic)")
	}
	val := a.value("value")
	c.check(value.SetAttr(x, "dim", val))
	c.check(value.SetAttr(x, "names", value.Null))
	if value.IsNull(val) {
		c.check(value.SetAttr(x, "dimnames", value.Null))
	}
	return x
}

func class(c *callContext, a *argList) value.Value {
	return value.CharacterOf(value.ClassOf(a.value("x"))...)
}

func setClass(c *callContext, a *argList) value.Value {
	x := c.target(a.value("x"))
	val := a.value("value")
	if chr, ok := val.(*value.Character); ok && chr.Len() == 1 && value.Attr(x, "class") == nil {
		// Setting a class a value has implicitly leaves it unclassed.
		implicit := value.ClassOf(x)
		if slices.Contains(implicit, chr.At(0)) || (chr.At(0) == "numeric" && value.IsNumeric(x)) {
			return x
		}
		if chr.At(0) == "matrix" || chr.At(0) == "array" {
			c.errorf("cannot set class to \"%s\" unless the dimension attribute has length %s", chr.At(0), map[string]string{"matrix": "2", "array": "> 0"}[chr.At(0)])
		}
	}
	c.check(value.SetAttr(x, "class", val))
	return x
}

func unclass(c *callContext, a *argList) value.Value {
	x := a.value("x")
	switch x.(type) {
	case *value.Env:
		c.errorf("cannot unclass an environment")
	}
	if value.Attr(x, "class") == nil {
		return x
	}
	x = x.Clone()
	c.check(value.SetAttr(x, "class", value.Null))
	return x
}

func inherits(c *callContext, a *argList) value.Value {
	x := a.value("x")
	what, ok := a.value("what").(*value.Character)
	if !ok {
		c.errorf("'what' must be a character vector or an object with a nameOfClass() method")
	}
	classes := value.ImplicitClass(x)
	if a.flagOr("which", false) {
		ret := value.NewInteger(what.Len())
		for k := 0; k < what.Len(); k++ {
			ret.Set(k, slices.Index(classes, what.At(k))+1)
		}
		return ret
	}
	for k := 0; k < what.Len(); k++ {
		if slices.Contains(classes, what.At(k)) {
			return value.Bool(true)
		}
	}
	return value.Bool(false)
}

func isObject(c *callContext, a *argList) value.Value {
	return value.Bool(value.IsObject(a.value("x")))
}

func isS4(c *callContext, a *argList) value.Value {
	return value.Bool(a.value("object").IsS4())
}

func asS4(c *callContext, a *argList) value.Value {
	x := a.value("object")
	flag := a.flagOr("flag", true)
	if x.IsS4() == flag {
		return x
	}
	x = x.Clone()
	x.SetS4(flag)
	return x
}

func unname(c *callContext, a *argList) value.Value {
	x := a.value("obj")
	if value.Names(x) == nil && value.Attr(x, "dimnames") == nil {
		return x
	}
	x = x.Clone()
	c.check(value.SetAttr(x, "names", value.Null))
	c.check(value.SetAttr(x, "dimnames", value.Null))
	return x
}
