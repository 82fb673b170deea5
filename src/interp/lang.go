package interp

import (
	"os"
	"strings"

	"github.com/thought-machine/rcore/src/value"
)

func registerLang(i *Interpreter) {
	i.setNativeCode("deparse", deparse, "expr", "width.cutoff", "backtick", "control", "nlines")
	i.setNativeCode("body", body, "fun")
	i.setNativeCode("body<-", setBody, "fun", "envir", "value")
	i.setNativeCode("formals", formals, "fun", "envir")
	i.setNativeCode("formals<-", setFormals, "fun", "envir", "value")
	i.setNativeCode("args", args, "name")
	i.setNativeCode("as.call", asCall, "x")
	i.setNativeCode("call", callFunc, "name", "...")
	i.setNativeCode("as.name", asName, "x")
	i.alias("as.symbol", "as.name")
	i.setNativeCode("is.call", isType(value.TypeLanguage), "x")
	i.setNativeCode("is.name", isType(value.TypeSymbol), "x")
	i.alias("is.symbol", "is.name")
	i.setNativeCode("is.function", isFunction, "x")
	i.setNativeCode("is.primitive", isPrimitive, "x")
	i.setNativeCode("is.language", isLanguage, "x")
	i.setNativeCode("match.fun", matchFunFunc, "FUN", "descend")
	i.setNativeCode("str2lang", str2lang, "s")
	i.setNativeCode("str2expression", str2expression, "text")
	i.setNativeCode("parse", parse, "file", "n", "text", "prompt", "keep.source", "srcfile", "encoding")
}

func deparse(c *callContext, a *argList) value.Value {
	lines := value.DeparseLines(a.opt("expr", value.Null))
	if n := a.intOr("nlines", -1); n >= 0 && n < len(lines) {
		lines = lines[:n]
	}
	return value.CharacterOf(lines...)
}

func (c *callContext) closureArg(v value.Value) (*value.Closure, bool) {
	if ch, ok := v.(*value.Character); ok && ch.Len() == 1 {
		v = c.matchFun(ch)
	}
	f, ok := v.(*value.Closure)
	return f, ok
}

func body(c *callContext, a *argList) value.Value {
	f, ok := c.closureArg(a.value("fun"))
	if !ok {
		c.warningf("argument is not a function")
		return value.Null
	}
	return f.Body
}

func setBody(c *callContext, a *argList) value.Value {
	f, ok := a.value("fun").(*value.Closure)
	if !ok {
		c.errorf("'fun' must be a function")
	}
	ret := f.Clone().(*value.Closure)
	ret.Body = a.value("value")
	ret.Env = a.envOr("envir", f.Env)
	return ret
}

func formals(c *callContext, a *argList) value.Value {
	f, ok := c.closureArg(a.value("fun"))
	if !ok || len(f.Formals) == 0 {
		return value.Null
	}
	return &value.Pairlist{Items: append([]value.Arg(nil), f.Formals...)}
}

func setFormals(c *callContext, a *argList) value.Value {
	f, ok := a.value("fun").(*value.Closure)
	if !ok {
		c.errorf("'fun' must be a function")
	}
	var items []value.Arg
	switch v := a.value("value").(type) {
	case *value.NullValue:
	case *value.Pairlist:
		items = v.Items
	case *value.List:
		for k := 0; k < v.Len(); k++ {
			name := value.NameAt(v, k)
			if name == "" {
				c.errorf("invalid formal argument list for \"function\"")
			}
			items = append(items, value.Arg{Name: name, Value: v.At(k)})
		}
	default:
		c.errorf("invalid formal argument list for \"function\"")
	}
	ret := f.Clone().(*value.Closure)
	ret.Formals = append([]value.Arg(nil), items...)
	ret.Env = a.envOr("envir", f.Env)
	return ret
}

func args(c *callContext, a *argList) value.Value {
	switch f := c.matchFun(a.value("name")).(type) {
	case *value.Closure:
		return &value.Closure{Formals: f.Formals, Body: value.Null, Env: f.Env}
	case *value.Builtin:
		b := c.i.builtins[f.Name]
		if b.special {
			return value.Null
		}
		formals := make([]value.Arg, len(b.formals))
		for k, name := range b.formals {
			formals[k] = value.Arg{Name: name, Value: value.Missing}
		}
		return &value.Closure{Formals: formals, Body: value.Null, Env: c.i.Base}
	}
	return value.Null
}

func asCall(c *callContext, a *argList) value.Value {
	switch x := a.value("x").(type) {
	case *value.Language:
		return x
	case *value.List:
		return c.listLanguage(x)
	case *value.Expression:
		return c.listLanguage(x)
	case *value.Pairlist:
		return c.listLanguage(pairlistList(x))
	}
	c.errorf("invalid argument list")
	return nil
}

func callFunc(c *callContext, a *argList) value.Value {
	name, ok := a.value("name").(*value.Character)
	if !ok || name.Len() != 1 || name.IsNA(0) {
		c.errorf("first argument must be a character string")
	}
	return &value.Language{Fn: value.Intern(name.At(0)), Args: append([]value.Arg(nil), a.dots...)}
}

func asName(c *callContext, a *argList) value.Value {
	x := a.value("x")
	if s, ok := x.(*value.Symbol); ok {
		return s
	}
	s, _, err := value.Coerce(x, value.TypeSymbol)
	c.check(err)
	if s == value.Missing {
		c.errorf("attempt to use zero-length variable name")
	}
	return s
}

func isFunction(c *callContext, a *argList) value.Value {
	return value.Bool(value.IsFunction(a.value("x")))
}

func isPrimitive(c *callContext, a *argList) value.Value {
	_, ok := a.value("x").(*value.Builtin)
	return value.Bool(ok)
}

func isLanguage(c *callContext, a *argList) value.Value {
	switch a.value("x").Type() {
	case value.TypeSymbol, value.TypeLanguage, value.TypeExpression:
		return value.Bool(true)
	}
	return value.Bool(false)
}

func matchFunFunc(c *callContext, a *argList) value.Value {
	fun := a.value("FUN")
	if value.IsFunction(fun) {
		return fun
	}
	name, ok := asString(fun)
	if !ok || (fun.Type() != value.TypeCharacter && fun.Type() != value.TypeSymbol) {
		c.errorf("'%s' is not a function, character or symbol", value.Deparse(fun))
	}
	return c.i.findFunction(name, c.env, c.call)
}

// parseText parses source text, raising a parse error from this call.
func (c *callContext) parseText(src string) []value.Value {
	exprs, err := c.i.parser.Parse(src)
	if err != nil {
		c.errorf("%s", err)
	}
	return exprs
}

func str2lang(c *callContext, a *argList) value.Value {
	s, ok := a.value("s").(*value.Character)
	if !ok || s.Len() != 1 {
		c.errorf("argument must be a character string")
	}
	exprs := c.parseText(s.At(0))
	if len(exprs) != 1 {
		c.errorf("parsing result not of length one, but %d", len(exprs))
	}
	return exprs[0]
}

func str2expression(c *callContext, a *argList) value.Value {
	text, ok := a.value("text").(*value.Character)
	if !ok {
		c.errorf("argument must be a character vector")
	}
	return value.ExpressionOf(c.parseText(strings.Join(text.Data(), "\n"))...)
}

func parse(c *callContext, a *argList) value.Value {
	var src string
	if a.has("text") && !value.IsNull(a.value("text")) {
		src = strings.Join(asStrings(a.value("text")), "\n")
	} else if a.has("file") {
		filename := a.str("file")
		b, err := os.ReadFile(filename)
		if err != nil {
			c.errorf("cannot open file '%s': %s", filename, err)
		}
		src = string(b)
	} else {
		return value.NewExpression(0)
	}
	exprs := c.parseText(src)
	if n := a.intOr("n", -1); n >= 0 && n < len(exprs) {
		exprs = exprs[:n]
	}
	return value.ExpressionOf(exprs...)
}
