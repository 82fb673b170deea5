package interp

import (
	"github.com/thought-machine/rcore/src/value"
)

func registerTypes(i *Interpreter) {
	i.setNativeCode("typeof", typeOf, "x")
	i.setNativeCode("mode", mode, "x")
	i.setNativeCode("storage.mode", storageMode, "x")
	i.setNativeCode("storage.mode<-", setStorageMode, "x", "value")
	i.setNativeCode("identical", identical, "x", "y", "num.eq", "single.NA", "attrib.as.set", "ignore.bytecode", "ignore.environment", "ignore.srcref", "extptr.as.ref")
	for name, t := range map[string]value.Type{
		"is.null":        value.TypeNull,
		"is.logical":     value.TypeLogical,
		"is.integer":     value.TypeInteger,
		"is.double":      value.TypeDouble,
		"is.complex":     value.TypeComplex,
		"is.character":   value.TypeCharacter,
		"is.raw":         value.TypeRaw,
		"is.environment": value.TypeEnvironment,
		"is.expression":  value.TypeExpression,
		"is.pairlist":    value.TypePairlist,
	} {
		i.setNativeCode(name, isType(t), "x")
	}
	i.setNativeCode("is.list", isList, "x")
	i.setNativeCode("is.numeric", isNumeric, "x").generic = true
	i.setNativeCode("is.atomic", isAtomic, "x")
	i.setNativeCode("is.vector", isVector, "x", "mode")
	i.setNativeCode("is.factor", isFactor, "x")
	i.setNativeCode("is.matrix", isMatrix, "x").generic = true
	i.setNativeCode("is.array", isArray, "x").generic = true
	i.setNativeCode("is.element", isElement, "el", "table")
	for name, t := range map[string]value.Type{
		"as.character": value.TypeCharacter,
		"as.integer":   value.TypeInteger,
		"as.double":    value.TypeDouble,
		"as.numeric":   value.TypeDouble,
		"as.logical":   value.TypeLogical,
		"as.complex":   value.TypeComplex,
		"as.raw":       value.TypeRaw,
	} {
		i.setNativeCode(name, asAtomic(t), "x", "...").generic = true
	}
	i.setNativeCode("as.vector", asVector, "x", "mode").generic = true
	i.setNativeCode("as.list", asList, "x", "...").generic = true
}

func typeOf(c *callContext, a *argList) value.Value {
	return value.Str(a.value("x").Type().String())
}

// modeName returns the mode of a value as mode() reports it.
func modeName(v value.Value) string {
	switch v.Type() {
	case value.TypeInteger, value.TypeDouble:
		return "numeric"
	case value.TypeClosure, value.TypeBuiltin, value.TypeSpecial:
		return "function"
	case value.TypeSymbol:
		return "name"
	case value.TypeLanguage:
		if v.(*value.Language).FnName() == "(" {
			return "("
		}
		return "call"
	}
	return v.Type().String()
}

func mode(c *callContext, a *argList) value.Value {
	return value.Str(modeName(a.value("x")))
}

func storageMode(c *callContext, a *argList) value.Value {
	x := a.value("x")
	if value.IsFunction(x) {
		return value.Str("function")
	}
	return value.Str(x.Type().String())
}

func setStorageMode(c *callContext, a *argList) value.Value {
	x := a.value("x")
	t, ok := value.TypeFromString(a.str("value"))
	if !ok || t == value.TypeSymbol {
		c.errorf("invalid value")
	}
	if value.Inherits(x, "factor") >= 0 {
		c.errorf("invalid to change the storage mode of a factor")
	}
	if x.Type() == t {
		return x
	}
	ret := c.coerce(x, t)
	if value.IsAtomic(x) {
		ret.SetAttrs(x.Attrs().Clone())
	}
	return ret
}

func identical(c *callContext, a *argList) value.Value {
	return value.Bool(value.Identical(a.value("x"), a.value("y")))
}

func isType(t value.Type) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		return value.Bool(a.value("x").Type() == t)
	}
}

func isList(c *callContext, a *argList) value.Value {
	t := a.value("x").Type()
	return value.Bool(t == value.TypeList || t == value.TypePairlist)
}

func isNumeric(c *callContext, a *argList) value.Value {
	x := a.value("x")
	t := x.Type()
	return value.Bool((t == value.TypeInteger || t == value.TypeDouble) && value.Inherits(x, "factor") < 0)
}

func isAtomic(c *callContext, a *argList) value.Value {
	return value.Bool(value.IsAtomic(a.value("x")))
}

func isVector(c *callContext, a *argList) value.Value {
	x := a.value("x")
	mode := a.strOr("mode", "any")
	if _, ok := x.(value.Vector); !ok {
		return value.Bool(false)
	}
	onlyNames := true
	x.Attrs().Each(func(name string, v value.Value) {
		onlyNames = onlyNames && name == "names"
	})
	if !onlyNames {
		return value.Bool(false)
	}
	switch mode {
	case "any":
		return value.Bool(true)
	case "numeric":
		return value.Bool(x.Type() == value.TypeInteger || x.Type() == value.TypeDouble)
	}
	return value.Bool(x.Type().String() == mode)
}

func isFactor(c *callContext, a *argList) value.Value {
	return value.Bool(value.Inherits(a.value("x"), "factor") >= 0)
}

func isMatrix(c *callContext, a *argList) value.Value {
	return value.Bool(len(value.Dim(a.value("x"))) == 2)
}

func isArray(c *callContext, a *argList) value.Value {
	return value.Bool(len(value.Dim(a.value("x"))) > 0)
}

func isElement(c *callContext, a *argList) value.Value {
	idx := c.matchIndices(a.value("el"), a.value("table"))
	ret := value.NewLogical(len(idx))
	for k, j := range idx {
		ret.Set(k, j > 0)
	}
	return ret
}

// factorLabels returns the labels of a factor's elements as a character vector.
func (c *callContext) factorLabels(f value.Value) *value.Character {
	codes := c.coerce(f, value.TypeInteger).(*value.Integer)
	levels, _ := value.Attr(f, "levels").(*value.Character)
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

// asAtomic implements the as.* conversions, which drop every attribute.
func asAtomic(t value.Type) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x := a.value("x")
		if t == value.TypeCharacter && value.Inherits(x, "factor") >= 0 {
			return c.factorLabels(x)
		} else if _, ok := x.(*value.Env); ok {
			c.typeErrorf("cannot coerce type 'environment' to vector of type '%s'", t)
		}
		return value.StripAttributes(c.coerce(x, t))
	}
}

func asVector(c *callContext, a *argList) value.Value {
	x := a.value("x")
	mode := a.strOr("mode", "any")
	switch mode {
	case "any":
		if value.IsAtomic(x) {
			return value.StripAttributes(x)
		} else if l, ok := x.(*value.List); ok {
			return keepNamesOnly(l)
		} else if p, ok := x.(*value.Pairlist); ok {
			l, err := value.AsList(p)
			c.check(err)
			return l
		}
		return x
	case "list":
		if e, ok := x.(*value.Env); ok {
			return c.i.envList(e, false)
		}
		l, err := value.AsList(x)
		c.check(err)
		if !value.IsAtomic(x) {
			return l
		}
		return keepNamesOnly(l)
	case "symbol", "name":
		s, _, err := value.Coerce(x, value.TypeSymbol)
		c.check(err)
		return s
	case "function", "closure":
		if !value.IsFunction(x) {
			c.errorf("cannot coerce to function")
		}
		return x
	}
	t, ok := modeType(mode)
	if !ok {
		c.errorf("vector: cannot make a vector of mode '%s'.", mode)
	}
	if t == value.TypeCharacter && value.Inherits(x, "factor") >= 0 {
		return c.factorLabels(x)
	}
	ret := c.coerce(x, t)
	if t == value.TypeExpression || t == value.TypeList {
		return ret
	}
	return value.StripAttributes(ret)
}

// keepNamesOnly returns a list with every attribute but its names removed.
func keepNamesOnly(l *value.List) value.Value {
	names := value.Attr(l, "names")
	if l.Attrs().Len() == 0 || (names != nil && l.Attrs().Len() == 1) {
		return l
	}
	ret := value.StripAttributes(l)
	if names != nil {
		mustSetAttr(ret, "names", names)
	}
	return ret
}

func asList(c *callContext, a *argList) value.Value {
	x := a.value("x")
	if e, ok := x.(*value.Env); ok {
		all := false
		for _, d := range a.dots {
			if d.Name == "all.names" {
				all, _ = asFlag(d.Value)
			}
		}
		return c.i.envList(e, all)
	}
	l, err := value.AsList(x)
	c.check(err)
	if value.IsAtomic(x) {
		return keepNamesOnly(l)
	}
	return l
}
