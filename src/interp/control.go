package interp

import (
	"github.com/thought-machine/rcore/src/value"
)

// registerControl sets up the language constructs: control flow, assignment, function
// definition and the functions that inspect or manipulate unevaluated code.
func registerControl(i *Interpreter) {
	i.setSpecial("quote", quote, "expr")
	i.setSpecial("function", function, "args", "body")
	i.setSpecial("{", block, "...")
	i.setNativeCode("(", paren, "x")
	i.setSpecial("if", ifFunc, "cond", "yes", "no")
	i.setSpecial("for", forFunc, "var", "seq", "body").invisible = true
	i.setSpecial("while", whileFunc, "cond", "body").invisible = true
	i.setSpecial("repeat", repeatFunc, "body").invisible = true
	i.setSpecial("break", loopControl(true))
	i.setSpecial("next", loopControl(false))
	i.setSpecial("return", returnFunc, "value")
	i.setSpecial("<-", assign(false), "x", "value").invisible = true
	i.setSpecial("=", assign(false), "x", "value").invisible = true
	i.setSpecial("<<-", assign(true), "x", "value").invisible = true
	i.setSpecial("&&", andand, "x", "y")
	i.setSpecial("||", oror, "x", "y")
	i.setSpecial("switch", switchFunc, "EXPR", "...")
	i.setSpecial("missing", missing, "x")
	i.setSpecial("on.exit", onExit, "expr", "add", "after").invisible = true
	i.setSpecial("substitute", substitute, "expr", "env")
	i.setSpecial("bquote", bquote, "expr", "where", "splice")
	i.setSpecial("UseMethod", useMethod, "generic", "object")
	i.setNativeCode("NextMethod", nextMethod, "generic", "object", "...")
	i.setNativeCode("registerS3method", registerS3method, "genname", "class", "method")
	i.setNativeCode("methods", methodsFunc, "generic.function", "class")
	i.setNativeCode("Recall", recall, "...")
	i.setSpecial("expression", expression, "...")
	i.setSpecial("local", local, "expr", "envir").passVisible = true
	i.setSpecial("evalq", evalq, "expr", "envir", "enclos").passVisible = true
	i.setNativeCode("eval", evalFunc, "expr", "envir", "enclos").passVisible = true
	i.setSpecial("delayedAssign", delayedAssign, "x", "value", "eval.env", "assign.env").invisible = true
	i.setNativeCode("force", identity, "x")
	i.setNativeCode("identity", identity, "x")
	i.setNativeCode("invisible", invisible, "x")
}

func quote(c *callContext, a *argList) value.Value {
	return a.value("expr")
}

func function(c *callContext, a *argList) value.Value {
	fn := &value.Closure{Body: value.Null, Env: c.env}
	if p, ok := a.opt("args", value.Null).(*value.Pairlist); ok {
		fn.Formals = p.Items
	}
	if a.has("body") {
		fn.Body = a.value("body")
	}
	return fn
}

func block(c *callContext, a *argList) value.Value {
	var ret value.Value = value.Null
	for _, d := range a.dots {
		ret = c.i.eval(d.Value, c.env)
	}
	return ret
}

func paren(c *callContext, a *argList) value.Value {
	return a.value("x")
}

// condition interprets the value of an if or while condition.
func (c *callContext) condition(v value.Value) bool {
	vec, ok := v.(value.Vector)
	if !ok || vec.Len() == 0 {
		c.errorf("argument is of length zero")
	} else if vec.Len() > 1 {
		c.errorf("the condition has length > 1")
	}
	switch vec := vec.(type) {
	case *value.Logical:
		if vec.IsNA(0) {
			c.errorf("missing value where TRUE/FALSE needed")
		}
		return vec.At(0)
	case *value.Character:
		if vec.IsNA(0) {
			c.errorf("missing value where TRUE/FALSE needed")
		}
		b, ok := value.StringToLogical(vec.At(0))
		if !ok {
			c.errorf("argument is not interpretable as logical")
		}
		return b
	case *value.Integer, *value.Double, *value.Complex:
		b, ok := asFlag(vec)
		if !ok {
			c.errorf("missing value where TRUE/FALSE needed")
		}
		return b
	}
	c.errorf("argument is not interpretable as logical")
	return false
}

func ifFunc(c *callContext, a *argList) value.Value {
	if c.condition(c.i.eval(a.value("cond"), c.env)) {
		return c.i.eval(a.value("yes"), c.env)
	} else if a.has("no") {
		return c.i.eval(a.value("no"), c.env)
	}
	return c.invisible(value.Null)
}

// loopBody evaluates one iteration of a loop, returning true if it was broken out of.
func (i *Interpreter) loopBody(body value.Value, env *value.Env) (brk bool) {
	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(*loopSignal); ok && sig.env == env {
				brk = sig.brk
				return
			}
			panic(r)
		}
	}()
	i.eval(body, env)
	return false
}

func forFunc(c *callContext, a *argList) value.Value {
	sym, ok := a.value("var").(*value.Symbol)
	if !ok {
		c.errorf("invalid for() loop sequence")
	}
	seq := c.i.eval(a.value("seq"), c.env)
	if value.IsNull(seq) {
		return value.Null
	}
	vec, ok := seq.(value.Vector)
	if !ok {
		c.errorf("invalid for() loop sequence")
	}
	body := a.opt("body", value.Null)
	for k, n := 0, vec.Len(); k < n; k++ {
		c.check(c.env.Set(sym.Name, value.Elem(vec, k)))
		if c.i.loopBody(body, c.env) {
			break
		}
	}
	return value.Null
}

func whileFunc(c *callContext, a *argList) value.Value {
	body := a.opt("body", value.Null)
	for c.condition(c.i.eval(a.value("cond"), c.env)) {
		if c.i.loopBody(body, c.env) {
			break
		}
	}
	return value.Null
}

func repeatFunc(c *callContext, a *argList) value.Value {
	body := a.opt("body", value.Null)
	for !c.i.loopBody(body, c.env) {
	}
	return value.Null
}

func loopControl(brk bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		panic(&loopSignal{env: c.env, brk: brk})
	}
}

func returnFunc(c *callContext, a *argList) value.Value {
	var ret value.Value = value.Null
	if a.has("value") {
		ret = c.i.eval(a.value("value"), c.env)
	} else {
		c.i.visible = true
	}
	panic(&returnSignal{env: c.env, value: ret, visible: c.i.visible})
}

func assign(super bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		target := a.value("x")
		rhs := c.i.eval(a.value("value"), c.env)
		if _, ok := target.(*value.Language); ok {
			// Held while the target is rebuilt so that x[[1]] <- x copies.
			rhs.IncRef()
			defer rhs.DecRef()
		}
		c.i.assign(c, target, rhs, super)
		return rhs
	}
}

// assign assigns a value to the target of an assignment: a name, or a call of a
// function that has a replacement version.
func (i *Interpreter) assign(c *callContext, target, rhs value.Value, super bool) {
	switch t := target.(type) {
	case *value.Symbol:
		i.assignVar(c, t.Name, rhs, super)
	case *value.Character:
		if t.Len() != 1 || t.IsNA(0) {
			c.errorf("invalid assignment target")
		}
		i.assignVar(c, t.At(0), rhs, super)
	case *value.Language:
		if len(t.Args) == 0 {
			c.errorf("invalid assignment target")
		}
		obj := t.Args[0].Value
		cur, owned := i.assignTarget(c, obj, super)
		i.assign(c, obj, i.callReplacement(c, t, cur, owned, rhs), super)
	default:
		c.errorf("invalid (do_set) left-hand side to assignment")
	}
}

func (i *Interpreter) assignVar(c *callContext, name string, v value.Value, super bool) {
	if name == "" {
		c.errorf("invalid (zero-length) variable name")
	}
	env := c.env
	if super {
		env = i.Global
		for e := c.env.Parent(); e != nil; e = e.Parent() {
			if e.Has(name) {
				env = e
				break
			}
		}
	}
	c.check(env.Set(name, v))
}

// assignTarget evaluates the object part of a complex assignment target. The bool is
// true if the value is bound directly in the assignment environment and may be
// modified in place if nothing else refers to it.
func (i *Interpreter) assignTarget(c *callContext, expr value.Value, super bool) (value.Value, bool) {
	var name string
	switch e := expr.(type) {
	case *value.Symbol:
		name = e.Name
	case *value.Character:
		if e.Len() != 1 || e.IsNA(0) {
			c.errorf("invalid assignment target")
		}
		name = e.At(0)
	case *value.Language:
		if len(e.Args) == 0 || e.FnName() == "" {
			c.errorf("invalid function in complex assignment")
		}
		inner, _ := i.assignTarget(c, e.Args[0].Value, super)
		fn := i.findFunction(e.FnName(), c.env, e)
		args := append([]value.Arg{{Name: e.Args[0].Name, Value: inner}}, i.targetArgs(c, e.FnName(), e.Args[1:])...)
		return i.callFunction(fn, args, e, c.env), false
	default:
		c.errorf("target of assignment expands to non-language object")
	}
	env := c.env
	if super {
		env = c.env.Parent()
	}
	v, where := env.Lookup(name)
	if v == nil {
		i.raise(i.notFound(name, env))
	} else if p, ok := v.(*value.Promise); ok {
		return i.force(p), false
	}
	return i.forceBinding(name, v), !super && where == c.env
}

// callReplacement calls the replacement function for a complex assignment target, e.g.
// `names<-` for names(x) <- value, returning the new value of the object.
func (i *Interpreter) callReplacement(c *callContext, target *value.Language, cur value.Value, owned bool, rhs value.Value) value.Value {
	name := target.FnName()
	if name == "" {
		c.errorf("invalid function in complex assignment")
	}
	fname := name + "<-"
	fn := i.findFunction(fname, c.env, target)
	call := &value.Language{Fn: value.Intern(fname), Args: make([]value.Arg, 0, len(target.Args)+1)}
	call.Args = append(call.Args, value.Arg{Name: target.Args[0].Name, Value: value.Intern("*tmp*")})
	call.Args = append(call.Args, target.Args[1:]...)
	call.Args = append(call.Args, value.Arg{Name: "value", Value: quoted(rhs)})
	switch f := fn.(type) {
	case *value.Builtin:
		b := i.lookupBuiltin(f, call)
		if b.special {
			c.errorf("invalid function in complex assignment")
		}
		args := []value.Arg{{Name: target.Args[0].Name, Value: cur}}
		args = append(args, i.targetArgs(c, name, target.Args[1:])...)
		args = append(args, value.Arg{Name: "value", Value: rhs})
		i.owned = owned
		return i.callBuiltin(b, call, args, c.env, true)
	case *value.Closure:
		args := []value.Arg{{Name: target.Args[0].Name, Value: value.NewForcedPromise(value.Intern("*tmp*"), cur)}}
		args = append(args, i.promiseArgs(target.Args[1:], c.env)...)
		args = append(args, value.Arg{Name: "value", Value: value.NewForcedPromise(rhs, rhs)})
		return i.applyClosure(call, f, args, c.env, nil)
	}
	c.errorf("invalid function in complex assignment")
	return nil
}

// targetArgs evaluates the index arguments of a complex assignment target. The name in
// x$name is taken literally.
func (i *Interpreter) targetArgs(c *callContext, fname string, args []value.Arg) []value.Arg {
	if fname == "$" && len(args) == 1 {
		return []value.Arg{{Name: args[0].Name, Value: c.dollarName(args[0].Value)}}
	}
	return i.evalArgs(args, c.env)
}

// scalarLogical interprets one operand of && or ||, returning the value and whether it's NA.
func (c *callContext) scalarLogical(v value.Value, which string) (bool, bool) {
	vec, ok := v.(value.Vector)
	if !ok || !value.IsAtomic(v) || v.Type() == value.TypeRaw {
		c.typeErrorf("invalid '%s' type in 'x %s y'", which, c.b.name)
	} else if vec.Len() != 1 {
		if vec.Len() == 0 {
			c.typeErrorf("invalid '%s' type in 'x %s y'", which, c.b.name)
		}
		c.errorf("'length = %d' in coercion to 'logical(1)'", vec.Len())
	}
	if vec.IsNA(0) || value.IsNaN(vec, 0) {
		return false, true
	}
	if s, ok := vec.(*value.Character); ok {
		b, ok := value.StringToLogical(s.At(0))
		return b, !ok
	}
	b, _ := asFlag(vec)
	return b, false
}

func andand(c *callContext, a *argList) value.Value {
	x, xna := c.scalarLogical(c.i.eval(a.value("x"), c.env), "x")
	if !x && !xna {
		return value.Bool(false)
	}
	y, yna := c.scalarLogical(c.i.eval(a.value("y"), c.env), "y")
	if !y && !yna {
		return value.Bool(false)
	}
	return boolValue(true, xna || yna)
}

func oror(c *callContext, a *argList) value.Value {
	x, xna := c.scalarLogical(c.i.eval(a.value("x"), c.env), "x")
	if x && !xna {
		return value.Bool(true)
	}
	y, yna := c.scalarLogical(c.i.eval(a.value("y"), c.env), "y")
	if y && !yna {
		return value.Bool(true)
	}
	return boolValue(false, xna || yna)
}

func switchFunc(c *callContext, a *argList) value.Value {
	expr := c.i.eval(a.value("EXPR"), c.env)
	vec, ok := expr.(value.Vector)
	if !ok || vec.Len() != 1 || !value.IsAtomic(expr) {
		c.errorf("EXPR must be a length 1 vector")
	}
	if s, ok := vec.(*value.Character); ok {
		defaults := 0
		for _, d := range a.dots {
			if d.Name == "" {
				defaults++
			}
		}
		if defaults > 1 {
			c.errorf("duplicate 'switch' defaults")
		}
		if !s.IsNA(0) {
			for k, d := range a.dots {
				if d.Name == s.At(0) {
					return c.switchArm(a.dots[k:])
				}
			}
		}
		for k, d := range a.dots {
			if d.Name == "" {
				return c.switchArm(a.dots[k:])
			}
		}
		return c.invisible(value.Null)
	}
	n, ok := asInt(vec)
	if !ok || n < 1 || n > len(a.dots) {
		return c.invisible(value.Null)
	} else if a.dots[n-1].Value == value.Missing {
		c.errorf("empty alternative in numeric switch")
	}
	return c.i.eval(a.dots[n-1].Value, c.env)
}

// switchArm evaluates the first non-empty alternative, falling through empty ones.
func (c *callContext) switchArm(arms []value.Arg) value.Value {
	for _, arm := range arms {
		if arm.Value != value.Missing {
			return c.i.eval(arm.Value, c.env)
		}
	}
	return c.invisible(value.Null)
}

func missing(c *callContext, a *argList) value.Value {
	var name string
	switch x := a.value("x").(type) {
	case *value.Symbol:
		name = x.Name
	case *value.Character:
		name, _ = asString(x)
	default:
		c.errorf("invalid use of 'missing'")
	}
	if n := dotDotIndex(name); n > 0 {
		d, _ := c.env.Get("...")
		dots, ok := d.(*value.Dots)
		return value.Bool(!ok || n > len(dots.Args) || isMissingValue(dots.Args[n-1].Value))
	}
	v, present := c.env.Get(name)
	if !present {
		c.errorf("'missing' can only be used for arguments")
	}
	return value.Bool(isMissingValue(v))
}

// isMissingValue returns true if an argument binding counts as missing: it was not
// supplied, it's a default, or it's a promise to another argument that is missing.
func isMissingValue(v value.Value) bool {
	switch v := v.(type) {
	case *value.Symbol:
		return v == value.Missing
	case *value.Dots:
		return len(v.Args) == 0
	case *value.Promise:
		if v.Default {
			return true
		}
		if sym, ok := v.Expr.(*value.Symbol); ok && !v.Forced() && v.Env != nil {
			if b, present := v.Env.Get(sym.Name); present {
				return isMissingValue(b)
			}
		}
	}
	return false
}

func onExit(c *callContext, a *argList) value.Value {
	fr := c.currentFrame()
	add, after := false, true
	if a.has("add") {
		add, _ = asFlag(c.i.eval(a.value("add"), c.env))
	}
	if a.has("after") {
		after, _ = asFlag(c.i.eval(a.value("after"), c.env))
	}
	if !a.has("expr") {
		if !add {
			fr.onExit = nil
		}
		return value.Null
	}
	expr := a.value("expr")
	switch {
	case !add:
		fr.onExit = []value.Value{expr}
	case after:
		fr.onExit = append(fr.onExit, expr)
	default:
		fr.onExit = append([]value.Value{expr}, fr.onExit...)
	}
	return value.Null
}

func substitute(c *callContext, a *argList) value.Value {
	env := c.env
	if a.has("env") {
		switch e := c.i.eval(a.value("env"), c.env).(type) {
		case *value.Env:
			env = e
		case *value.List:
			env = listEnv(c, e, nil)
		default:
			c.errorf("invalid environment specified")
		}
	}
	if env == c.i.Global {
		env = nil
	}
	if !a.has("expr") {
		return value.Missing
	}
	return substituteIn(a.value("expr"), env)
}

// substituteIn replaces the symbols in an expression that are bound in env: promises
// by their expressions and other values by themselves.
func substituteIn(expr value.Value, env *value.Env) value.Value {
	switch e := expr.(type) {
	case *value.Symbol:
		if env == nil || e == value.Missing {
			return e
		}
		v, present := env.Get(e.Name)
		if !present {
			return e
		}
		switch v := v.(type) {
		case *value.Promise:
			return v.Expr
		case *value.Symbol:
			if v == value.Missing {
				return e
			}
		case *value.Dots:
			return e
		}
		return v
	case *value.Language:
		ret := &value.Language{Fn: substituteIn(e.Fn, env), Args: make([]value.Arg, 0, len(e.Args))}
		for _, arg := range e.Args {
			if arg.Value == value.DotsSymbol && env != nil {
				if d, ok := env.Get("..."); ok {
					if dots, ok := d.(*value.Dots); ok {
						for _, da := range dots.Args {
							if p, ok := da.Value.(*value.Promise); ok {
								da.Value = p.Expr
							}
							ret.Args = append(ret.Args, da)
						}
						continue
					}
				}
			}
			ret.Args = append(ret.Args, value.Arg{Name: arg.Name, Value: substituteIn(arg.Value, env)})
		}
		return ret
	}
	return expr
}

func bquote(c *callContext, a *argList) value.Value {
	where := c.env
	if a.has("where") {
		e, ok := c.i.asEnvironment(c.i.eval(a.value("where"), c.env))
		if !ok {
			c.errorf("invalid '%s' argument", "where")
		}
		where = e
	}
	return c.unquote(a.value("expr"), where)
}

// unquote replaces .(x) in an expression by the value of x, and splices the elements
// of ..(x) into the surrounding call.
func (c *callContext) unquote(expr value.Value, where *value.Env) value.Value {
	l, ok := expr.(*value.Language)
	if !ok {
		return expr
	}
	if l.FnName() == "." && len(l.Args) == 1 {
		return c.i.eval(l.Args[0].Value, where)
	}
	ret := &value.Language{Fn: c.unquote(l.Fn, where), Args: make([]value.Arg, 0, len(l.Args))}
	for _, arg := range l.Args {
		if inner, ok := arg.Value.(*value.Language); ok && inner.FnName() == ".." && len(inner.Args) == 1 {
			v := c.i.eval(inner.Args[0].Value, where)
			if vec, ok := v.(value.Vector); ok {
				for k := 0; k < vec.Len(); k++ {
					ret.Args = append(ret.Args, value.Arg{Name: value.NameAt(vec, k), Value: value.Elem(vec, k)})
				}
				continue
			}
			ret.Args = append(ret.Args, value.Arg{Name: arg.Name, Value: v})
			continue
		}
		ret.Args = append(ret.Args, value.Arg{Name: arg.Name, Value: c.unquote(arg.Value, where)})
	}
	return ret
}

func recall(c *callContext, a *argList) value.Value {
	k := c.i.frameOf(c.env)
	if k < 0 {
		c.errorf("'Recall' called from outside a closure")
	}
	fr := c.i.frames[k]
	call := &value.Language{Fn: fr.call.Fn, Args: quoteArgs(a.dots)}
	return c.i.applyClosure(call, fr.fn, forcedPromises(a.dots), fr.caller, nil)
}

func expression(c *callContext, a *argList) value.Value {
	ret := value.NewExpression(len(a.dots))
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

// listEnv makes an environment holding the elements of a list, enclosed by parent.
func listEnv(c *callContext, l *value.List, parent *value.Env) *value.Env {
	if parent == nil {
		parent = c.env
	}
	env := value.NewEnv(parent)
	for k := 0; k < l.Len(); k++ {
		if name := value.NameAt(l, k); name != "" {
			env.Set(name, l.At(k))
		}
	}
	return env
}

// evalIn evaluates an expression (or each element of an expression vector) in an
// environment, catching return() calls aimed at it.
func (i *Interpreter) evalIn(expr value.Value, env *value.Env) (ret value.Value) {
	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(*returnSignal); ok && sig.env == env {
				ret = sig.value
				i.visible = sig.visible
				return
			}
			panic(r)
		}
	}()
	if e, ok := expr.(*value.Expression); ok {
		ret = value.Null
		i.visible = true
		for k := 0; k < e.Len(); k++ {
			ret = i.eval(e.At(k), env)
		}
		return ret
	}
	return i.eval(expr, env)
}

// evalEnv resolves the envir argument of eval() and friends.
func (c *callContext) evalEnv(envir, enclos value.Value) *value.Env {
	var parent *value.Env
	if enclos != nil && !value.IsNull(enclos) {
		e, ok := c.i.asEnvironment(enclos)
		if !ok {
			c.errorf("invalid 'enclos' argument")
		}
		parent = e
	}
	switch e := envir.(type) {
	case nil:
		return c.env
	case *value.Env:
		return e
	case *value.NullValue:
		return value.NewEnv(orEnv(parent, c.env))
	case *value.List:
		return listEnv(c, e, parent)
	case *value.Pairlist:
		env := value.NewEnv(orEnv(parent, c.env))
		for _, item := range e.Items {
			if item.Name != "" {
				env.Set(item.Name, item.Value)
			}
		}
		return env
	case *value.Integer, *value.Double:
		n, ok := asInt(e)
		if !ok {
			c.errorf("invalid 'envir' argument of type '%s'", envir.Type())
		}
		k := c.frameNumber(n)
		if k == 0 {
			return c.i.Global
		}
		return c.i.frames[k-1].env
	}
	if env, ok := c.i.asEnvironment(envir); ok {
		return env
	}
	c.errorf("invalid 'envir' argument of type '%s'", envir.Type())
	return nil
}

func orEnv(env, def *value.Env) *value.Env {
	if env != nil {
		return env
	}
	return def
}

func evalFunc(c *callContext, a *argList) value.Value {
	env := c.evalEnv(a.opt("envir", nil), a.opt("enclos", nil))
	expr := a.opt("expr", value.Null)
	if p, ok := expr.(*value.Promise); ok {
		return c.i.force(p)
	}
	return c.i.evalIn(expr, env)
}

func evalq(c *callContext, a *argList) value.Value {
	var envir, enclos value.Value
	if a.has("envir") {
		envir = c.i.eval(a.value("envir"), c.env)
	}
	if a.has("enclos") {
		enclos = c.i.eval(a.value("enclos"), c.env)
	}
	return c.i.evalIn(a.opt("expr", value.Null), c.evalEnv(envir, enclos))
}

func local(c *callContext, a *argList) value.Value {
	env := value.NewEnv(c.env)
	if a.has("envir") {
		env = c.evalEnv(c.i.eval(a.value("envir"), c.env), nil)
	}
	return c.i.evalIn(a.opt("expr", value.Null), env)
}

func delayedAssign(c *callContext, a *argList) value.Value {
	name, ok := asString(c.i.eval(a.value("x"), c.env))
	if !ok {
		c.errorf("invalid first argument")
	}
	evalEnv, assignEnv := c.env, c.env
	if a.has("eval.env") {
		if evalEnv, ok = c.i.asEnvironment(c.i.eval(a.value("eval.env"), c.env)); !ok {
			c.errorf("invalid '%s' argument", "eval.env")
		}
	}
	if a.has("assign.env") {
		if assignEnv, ok = c.i.asEnvironment(c.i.eval(a.value("assign.env"), c.env)); !ok {
			c.errorf("invalid '%s' argument", "assign.env")
		}
	}
	c.check(assignEnv.Set(name, value.NewPromise(a.opt("value", value.Null), evalEnv)))
	return value.Null
}

func identity(c *callContext, a *argList) value.Value {
	return a.value("x")
}

func invisible(c *callContext, a *argList) value.Value {
	return c.invisible(a.opt("x", value.Null))
}
