package interp

import (
	"strings"

	"github.com/thought-machine/rcore/src/value"
)

func registerEnv(i *Interpreter) {
	i.setNativeCode("environment", environment, "fun")
	i.setNativeCode("environment<-", setEnvironment, "fun", "value")
	i.setNativeCode("environmentName", environmentName, "env")
	i.setNativeCode("new.env", newEnv, "hash", "parent", "size")
	i.setNativeCode("globalenv", func(c *callContext, a *argList) value.Value { return c.i.Global })
	i.setNativeCode("emptyenv", func(c *callContext, a *argList) value.Value { return c.i.Empty })
	i.setNativeCode("baseenv", func(c *callContext, a *argList) value.Value { return c.i.Base })
	i.setNativeCode("topenv", topenv, "envir", "matchThisEnv")
	i.setNativeCode("parent.env", parentEnv, "env")
	i.setNativeCode("parent.env<-", setParentEnv, "env", "value")
	i.setNativeCode("as.environment", asEnvironment, "x").generic = true
	i.setNativeCode("list2env", list2env, "x", "envir", "parent", "hash", "size")
	i.setNativeCode("as.list.environment", asListEnvironment, "x", "all.names", "sorted")
	i.setNativeCode("assign", assignFunc, "x", "value", "pos", "envir", "inherits", "immediate").invisible = true
	i.setNativeCode("get", get(false), "x", "pos", "envir", "mode", "inherits")
	i.setNativeCode("get0", get(true), "x", "envir", "mode", "inherits", "ifnotfound")
	i.setNativeCode("mget", mget, "x", "envir", "mode", "ifnotfound", "inherits")
	i.setNativeCode("exists", exists, "x", "where", "envir", "frame", "mode", "inherits")
	i.setSpecial("rm", rm, "...", "list", "pos", "envir", "inherits").invisible = true
	i.setNativeCode("ls", ls, "name", "pos", "envir", "all.names", "pattern", "sorted")
	i.alias("objects", "ls")
	i.setNativeCode("sys.call", sysCall, "which")
	i.setNativeCode("sys.calls", sysCalls)
	i.setNativeCode("sys.function", sysFunction, "which")
	i.setNativeCode("sys.frames", sysFrames)
	i.setNativeCode("sys.nframe", sysNframe)
	i.setNativeCode("sys.parent", sysParent, "n")
	i.setNativeCode("sys.parents", sysParents)
	i.setNativeCode("parent.frame", parentFrame, "n")
	i.setNativeCode("nargs", nargs)
	i.setSpecial("match.arg", matchArg, "arg", "choices", "several.ok")
	i.setNativeCode("match.call", matchCall, "definition", "call", "expand.dots", "envir")
	i.setNativeCode("lockEnvironment", lockEnvironment, "env", "bindings").invisible = true
	i.setNativeCode("environmentIsLocked", environmentIsLocked, "env")
	i.setNativeCode("lockBinding", bindingFunc("lockBinding"), "sym", "env").invisible = true
	i.setNativeCode("unlockBinding", bindingFunc("unlockBinding"), "sym", "env").invisible = true
	i.setNativeCode("bindingIsLocked", bindingFunc("bindingIsLocked"), "sym", "env")
	i.setNativeCode("attach", attach, "what", "pos", "name", "warn.conflicts").invisible = true
	i.setNativeCode("detach", detach, "name", "pos").invisible = true
	i.setNativeCode("search", search)
}

// envList returns the bindings of an environment as a named list, sorted by name.
func (i *Interpreter) envList(e *value.Env, all bool) *value.List {
	names := e.Names(all)
	ret := value.NewList(len(names))
	for k, name := range names {
		v, _ := e.Get(name)
		if v != value.Missing {
			v = i.forceBinding(name, v)
		}
		ret.Set(k, v)
	}
	mustSetAttr(ret, "names", value.CharacterOf(names...))
	return ret
}

// searchPath returns the environments on the search path, starting with the global one.
func (i *Interpreter) searchPath() []*value.Env {
	var path []*value.Env
	for e := i.Global; e != nil && e != i.Empty; e = e.Parent() {
		path = append(path, e)
	}
	return path
}

// searchName returns the name of an environment as search() shows it.
func (i *Interpreter) searchName(e *value.Env) string {
	switch e {
	case i.Global:
		return ".GlobalEnv"
	case i.Base:
		return "package:base"
	}
	return e.Name()
}

// asEnvironment converts a value to an environment the way as.environment does:
// positions and names refer to the search path.
func (i *Interpreter) asEnvironment(v value.Value) (*value.Env, bool) {
	switch v := v.(type) {
	case *value.Env:
		return v, true
	case *value.Closure:
		return v.Env, true
	case *value.Character:
		if v.Len() != 1 || v.IsNA(0) {
			return nil, false
		}
		name := v.At(0)
		switch name {
		case ".GlobalEnv", "R_GlobalEnv":
			return i.Global, true
		case "base", "package:base":
			return i.Base, true
		case "R_EmptyEnv":
			return i.Empty, true
		}
		for _, e := range i.searchPath() {
			if i.searchName(e) == name {
				return e, true
			}
		}
	case *value.Integer, *value.Double:
		n, ok := asInt(v)
		path := i.searchPath()
		if !ok || v.Len() != 1 || n < 1 || n > len(path) {
			return nil, false
		}
		return path[n-1], true
	case *value.List:
		env := value.NewEnv(i.Empty)
		for k := 0; k < v.Len(); k++ {
			if name := value.NameAt(v, k); name != "" {
				env.Set(name, v.At(k))
			}
		}
		return env, true
	}
	return nil, false
}

func environment(c *callContext, a *argList) value.Value {
	fun := a.opt("fun", value.Null)
	switch f := fun.(type) {
	case *value.NullValue:
		return c.env
	case *value.Closure:
		return f.Env
	case *value.Builtin:
		return value.Null
	}
	if e := value.Attr(fun, ".Environment"); e != nil {
		return e
	}
	return value.Null
}

func setEnvironment(c *callContext, a *argList) value.Value {
	fun := a.value("fun")
	env, ok := a.value("value").(*value.Env)
	if f, isClosure := fun.(*value.Closure); isClosure {
		if !ok {
			c.errorf("replacement object is not an environment")
		}
		ret := c.modifiable(f).(*value.Closure)
		ret.Env = env
		return ret
	}
	ret := c.target(fun)
	c.check(value.SetAttr(ret, ".Environment", a.value("value")))
	return ret
}

func environmentName(c *callContext, a *argList) value.Value {
	e, ok := a.opt("env", value.Null).(*value.Env)
	if !ok {
		return value.Str("")
	}
	return value.Str(e.Name())
}

func newEnv(c *callContext, a *argList) value.Value {
	return value.NewEnv(a.envOr("parent", c.env))
}

func topenv(c *callContext, a *argList) value.Value {
	for e := a.envOr("envir", c.env); e != nil; e = e.Parent() {
		if e == c.i.Global || e == c.i.Base {
			return e
		}
	}
	return c.i.Global
}

func parentEnv(c *callContext, a *argList) value.Value {
	e, ok := a.value("env").(*value.Env)
	if !ok {
		c.errorf("argument is not an environment")
	} else if e.Parent() == nil {
		c.errorf("the empty environment has no parent")
	}
	return e.Parent()
}

func setParentEnv(c *callContext, a *argList) value.Value {
	e, ok := a.value("env").(*value.Env)
	if !ok {
		c.errorf("argument is not an environment")
	}
	parent, ok := a.value("value").(*value.Env)
	if !ok {
		c.errorf("'parent' is not an environment")
	} else if e == c.i.Empty {
		c.errorf("can not set the parent of the empty environment")
	}
	for p := parent; p != nil; p = p.Parent() {
		if p == e {
			c.errorf("cycles in parent environments are not allowed")
		}
	}
	e.SetParent(parent)
	return e
}

func asEnvironment(c *callContext, a *argList) value.Value {
	x := a.value("x")
	if e, ok := c.i.asEnvironment(x); ok {
		return e
	}
	switch x.(type) {
	case *value.Character:
		c.errorf("no item called \"%s\" on the search list", asStrings(x)[0])
	case *value.Integer, *value.Double:
		c.errorf("invalid 'pos' argument")
	}
	c.errorf("invalid object for 'as.environment'")
	return nil
}

func list2env(c *callContext, a *argList) value.Value {
	l, ok := a.value("x").(*value.List)
	if !ok {
		c.errorf("first argument must be a named list")
	}
	if l.Len() > 0 && value.Names(l) == nil {
		c.errorf("names(x) must be a character vector of the same length as x")
	}
	env, _ := a.opt("envir", value.Null).(*value.Env)
	if env == nil {
		env = value.NewEnv(a.envOr("parent", c.env))
	}
	for k := 0; k < l.Len(); k++ {
		c.check(env.Set(value.NameAt(l, k), l.At(k)))
	}
	return env
}

func asListEnvironment(c *callContext, a *argList) value.Value {
	e, ok := a.value("x").(*value.Env)
	if !ok {
		c.errorf("argument must be an environment")
	}
	return c.i.envList(e, a.flagOr("all.names", false))
}

// envArg resolves the envir (or pos) argument of assign, get and friends; the default
// is the environment the call was made from.
func (c *callContext) envArg(a *argList, names ...string) *value.Env {
	for _, name := range names {
		if a.has(name) && !value.IsNull(a.value(name)) {
			if name == "pos" || name == "where" || name == "name" {
				if n, ok := a.value(name).(*value.Double); ok && n.Len() == 1 && n.At(0) == -1 {
					return c.env
				}
			}
			return a.env(name)
		}
	}
	return c.env
}

func assignFunc(c *callContext, a *argList) value.Value {
	name := a.str("x")
	v := a.value("value")
	env := c.envArg(a, "envir", "pos")
	if a.flagOr("inherits", false) {
		for e := env; e != nil; e = e.Parent() {
			if e.Has(name) {
				env = e
				break
			}
		}
	}
	c.check(env.Set(name, v))
	return v
}

// findBinding looks up a name the way get() does, optionally only in one frame and
// skipping bindings that don't have the right mode.
func (c *callContext) findBinding(name string, env *value.Env, mode string, inherits bool) (value.Value, bool) {
	for e := env; e != nil; e = e.Parent() {
		if v, present := e.Get(name); present {
			v = c.i.forceBinding(name, v)
			if modeMatches(v, mode) {
				return v, true
			}
		}
		if !inherits {
			break
		}
	}
	return nil, false
}

func modeMatches(v value.Value, mode string) bool {
	switch mode {
	case "any":
		return true
	case "function":
		return value.IsFunction(v)
	case "numeric":
		return v.Type() == value.TypeInteger || v.Type() == value.TypeDouble
	}
	return modeName(v) == mode || v.Type().String() == mode
}

func get(orNull bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		name := a.str("x")
		mode := a.strOr("mode", "any")
		names := []string{"envir"}
		if !orNull {
			names = append(names, "pos")
		}
		v, ok := c.findBinding(name, c.envArg(a, names...), mode, a.flagOr("inherits", true))
		if ok {
			return v
		} else if orNull {
			return a.opt("ifnotfound", value.Null)
		} else if mode != "any" {
			c.fail(NotFoundError, "object '%s' of mode '%s' was not found", name, mode)
		}
		c.fail(NotFoundError, "object '%s' not found", name)
		return nil
	}
}

func mget(c *callContext, a *argList) value.Value {
	x, ok := a.value("x").(*value.Character)
	if !ok {
		c.errorf("invalid first argument")
	}
	env := c.envArg(a, "envir")
	mode := a.strOr("mode", "any")
	inherits := a.flagOr("inherits", false)
	ret := value.NewList(x.Len())
	for k := 0; k < x.Len(); k++ {
		v, found := c.findBinding(x.At(k), env, mode, inherits)
		if !found {
			if !a.has("ifnotfound") {
				c.fail(NotFoundError, "value for '%s' not found", x.At(k))
			}
			nf := a.value("ifnotfound")
			if l, ok := nf.(value.Vector); ok && l.Len() > 0 {
				v = value.Elem(l, k%l.Len())
			} else {
				v = nf
			}
		}
		ret.Set(k, v)
	}
	mustSetAttr(ret, "names", x)
	return ret
}

func exists(c *callContext, a *argList) value.Value {
	name := a.str("x")
	env := c.envArg(a, "envir", "where")
	inherits := a.flagOr("inherits", true)
	mode := a.strOr("mode", "any")
	for e := env; e != nil; e = e.Parent() {
		if v, present := e.Get(name); present {
			if mode == "any" {
				return value.Bool(true)
			} else if modeMatches(c.i.forceBinding(name, v), mode) {
				return value.Bool(true)
			}
		}
		if !inherits {
			break
		}
	}
	return value.Bool(false)
}

func rm(c *callContext, a *argList) value.Value {
	var names []string
	for _, d := range a.dots {
		switch v := d.Value.(type) {
		case *value.Symbol:
			names = append(names, v.Name)
		case *value.Character:
			names = append(names, v.Data()...)
		default:
			c.errorf("... must contain names or character strings")
		}
	}
	if a.has("list") {
		list := c.i.eval(a.value("list"), c.env)
		if !value.IsNull(list) {
			chr, ok := list.(*value.Character)
			if !ok {
				c.errorf("invalid first argument")
			}
			names = append(names, chr.Data()...)
		}
	}
	env := c.env
	if a.has("envir") {
		e, ok := c.i.asEnvironment(c.i.eval(a.value("envir"), c.env))
		if !ok {
			c.errorf("invalid '%s' argument", "envir")
		}
		env = e
	}
	inherits := false
	if a.has("inherits") {
		inherits, _ = asFlag(c.i.eval(a.value("inherits"), c.env))
	}
	for _, name := range names {
		removed := false
		for e := env; e != nil && !removed; e = e.Parent() {
			ok, err := e.Remove(name)
			c.check(err)
			removed = ok
			if !inherits {
				break
			}
		}
		if !removed {
			c.warningf("object '%s' not found", name)
		}
	}
	return value.Null
}

func ls(c *callContext, a *argList) value.Value {
	env := c.envArg(a, "envir", "name", "pos")
	names := env.Names(a.flagOr("all.names", false))
	if a.has("pattern") {
		re := c.regex(a.str("pattern"), regexOptions{})
		matched := names[:0]
		for _, name := range names {
			if re.MatchString(name) {
				matched = append(matched, name)
			}
		}
		names = matched
	}
	return value.CharacterOf(names...)
}

func sysCall(c *callContext, a *argList) value.Value {
	n := c.frameNumber(a.intOr("which", 0))
	if n == 0 {
		return value.Null
	}
	return c.i.frames[n-1].call
}

func sysCalls(c *callContext, a *argList) value.Value {
	if len(c.i.frames) == 0 {
		return value.Null
	}
	ret := value.NewList(len(c.i.frames))
	for k, fr := range c.i.frames {
		ret.Set(k, fr.call)
	}
	return ret
}

func sysFunction(c *callContext, a *argList) value.Value {
	n := c.frameNumber(a.intOr("which", 0))
	if n == 0 {
		c.errorf("not that many frames on the stack")
	}
	return c.i.frames[n-1].fn
}

func sysFrames(c *callContext, a *argList) value.Value {
	if len(c.i.frames) == 0 {
		return value.Null
	}
	ret := value.NewList(len(c.i.frames))
	for k, fr := range c.i.frames {
		ret.Set(k, fr.env)
	}
	return ret
}

func sysNframe(c *callContext, a *argList) value.Value {
	return value.Int(c.i.frameOf(c.env) + 1)
}

func sysParent(c *callContext, a *argList) value.Value {
	n := a.intOr("n", 1)
	frame := c.i.frameOf(c.env) + 1
	for ; n > 0 && frame > 0; n-- {
		frame = c.i.sysParent(frame)
	}
	return value.Int(frame)
}

func sysParents(c *callContext, a *argList) value.Value {
	ret := value.NewInteger(len(c.i.frames))
	for k := range c.i.frames {
		ret.Set(k, c.i.sysParent(k+1))
	}
	return ret
}

func parentFrame(c *callContext, a *argList) value.Value {
	n := a.intOr("n", 1)
	if n < 1 {
		c.errorf("invalid '%s' value", "n")
	}
	return c.i.parentFrame(c.env, n)
}

func nargs(c *callContext, a *argList) value.Value {
	k := c.i.frameOf(c.env)
	if k < 0 {
		return value.Int(0)
	}
	return value.Int(len(c.i.frames[k].args))
}

func matchArg(c *callContext, a *argList) value.Value {
	arg := c.i.eval(a.value("arg"), c.env)
	var choices value.Value
	if a.has("choices") {
		choices = c.i.eval(a.value("choices"), c.env)
	} else {
		sym, ok := a.value("arg").(*value.Symbol)
		k := c.i.frameOf(c.env)
		if !ok || k < 0 {
			c.errorf("'arg' must be a formal argument when 'choices' is missing")
		}
		fr := c.i.frames[k]
		for _, f := range fr.fn.Formals {
			if f.Name == sym.Name {
				choices = c.i.eval(f.Value, fr.env)
			}
		}
		if choices == nil {
			c.errorf("'arg' must be a formal argument when 'choices' is missing")
		}
	}
	several := false
	if a.has("several.ok") {
		several, _ = asFlag(c.i.eval(a.value("several.ok"), c.env))
	}
	opts, ok := choices.(*value.Character)
	if !ok {
		c.errorf("'choices' must be a character vector")
	}
	if value.IsNull(arg) {
		return value.Elem(opts, 0)
	}
	args, ok := arg.(*value.Character)
	if !ok {
		c.errorf("'arg' must be NULL or a character vector")
	}
	if !several {
		if value.Identical(args, opts) {
			return value.Elem(opts, 0)
		} else if args.Len() != 1 {
			c.errorf("'arg' must be of length 1")
		}
	} else if args.Len() == 0 {
		c.errorf("'arg' must be of length >= 1")
	}
	var ret []string
	for k := 0; k < args.Len(); k++ {
		if j := partialMatch(args.At(k), opts.Data()); j >= 0 {
			ret = append(ret, opts.At(j))
		}
	}
	if len(ret) == 0 || (!several && len(ret) != args.Len()) {
		quoted := make([]string, opts.Len())
		for k, o := range opts.Data() {
			quoted[k] = "\"" + o + "\""
		}
		c.errorf("'arg' should be one of %s", strings.Join(quoted, ", "))
	}
	return value.CharacterOf(ret...)
}

// partialMatch returns the index of the exact match for s, or the unique choice it is a
// prefix of, or -1.
func partialMatch(s string, choices []string) int {
	found := -1
	for k, choice := range choices {
		if choice == s {
			return k
		} else if s != "" && strings.HasPrefix(choice, s) {
			if found >= 0 {
				return -1
			}
			found = k
		}
	}
	return found
}

// argExpr returns the expression an argument was supplied as.
func argExpr(v value.Value) value.Value {
	if p, ok := v.(*value.Promise); ok {
		return p.Expr
	}
	return v
}

func matchCall(c *callContext, a *argList) value.Value {
	expandDots := a.flagOr("expand.dots", true)
	var formals []string
	var matched []value.Value
	var dots []value.Arg
	var call *value.Language
	if a.has("definition") && a.has("call") {
		fn, ok := a.value("definition").(*value.Closure)
		if !ok {
			c.errorf("invalid 'definition' argument")
		}
		call, ok = a.value("call").(*value.Language)
		if !ok {
			c.errorf("invalid 'call' argument")
		}
		formals = formalNames(fn)
		matched, dots, _ = c.i.matchArgs(call, formals, call.Args)
	} else {
		k := c.i.frameOf(c.env)
		if k < 0 {
			c.errorf("match.call() was called from outside a function")
		}
		fr := c.i.frames[k]
		call = fr.call
		formals = formalNames(fr.fn)
		matched = make([]value.Value, len(formals))
		for j, arg := range fr.args {
			if f := fr.argFormals[j]; f >= 0 {
				matched[f] = arg.Value
			} else {
				dots = append(dots, arg)
			}
		}
	}
	ret := &value.Language{Fn: call.Fn}
	for k, f := range formals {
		if f == "..." {
			if len(dots) == 0 {
				continue
			}
			if !expandDots {
				l := value.NewList(len(dots))
				names := make([]string, len(dots))
				for j, d := range dots {
					l.Set(j, argExpr(d.Value))
					names[j] = d.Name
				}
				mustSetAttr(l, "names", value.CharacterOf(names...))
				ret.Args = append(ret.Args, value.Arg{Name: "...", Value: l})
				continue
			}
			for _, d := range dots {
				ret.Args = append(ret.Args, value.Arg{Name: d.Name, Value: argExpr(d.Value)})
			}
		} else if v := matched[k]; v != nil && v != value.Missing {
			ret.Args = append(ret.Args, value.Arg{Name: f, Value: argExpr(v)})
		}
	}
	return ret
}

func lockEnvironment(c *callContext, a *argList) value.Value {
	e, ok := a.value("env").(*value.Env)
	if !ok {
		c.errorf("not an environment")
	}
	e.Lock(a.flagOr("bindings", false))
	return value.Null
}

func environmentIsLocked(c *callContext, a *argList) value.Value {
	e, ok := a.value("env").(*value.Env)
	if !ok {
		c.errorf("not an environment")
	}
	return value.Bool(e.IsLocked())
}

func bindingFunc(op string) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		name, ok := asString(a.value("sym"))
		if !ok {
			c.errorf("not a symbol")
		}
		e, ok := a.value("env").(*value.Env)
		if !ok {
			c.errorf("not an environment")
		}
		switch op {
		case "lockBinding":
			c.check(e.LockBinding(name))
		case "unlockBinding":
			c.check(e.UnlockBinding(name))
		default:
			locked, err := e.BindingIsLocked(name)
			c.check(err)
			return value.Bool(locked)
		}
		return value.Null
	}
}

func attach(c *callContext, a *argList) value.Value {
	what := a.opt("what", value.Null)
	pos := a.intOr("pos", 2)
	name := a.strOr("name", "")
	if name == "" && len(c.call.Args) > 0 {
		name = value.Deparse(c.call.Args[0].Value)
	}
	path := c.i.searchPath()
	if pos < 2 || pos > len(path) {
		pos = len(path)
	}
	above := path[pos-2]
	env := value.NewNamedEnv(name, above.Parent())
	switch w := what.(type) {
	case *value.Env:
		for _, n := range w.Names(true) {
			v, _ := w.Get(n)
			env.Set(n, v)
		}
	case *value.List:
		for k := 0; k < w.Len(); k++ {
			if n := value.NameAt(w, k); n != "" {
				env.Set(n, w.At(k))
			}
		}
	case *value.NullValue:
	default:
		c.errorf("'attach' only works for lists, data frames and environments")
	}
	above.SetParent(env)
	log.Debug("Attached %s at position %d", name, pos)
	return env
}

func detach(c *callContext, a *argList) value.Value {
	path := c.i.searchPath()
	pos := a.intOr("pos", 2)
	if a.has("name") {
		name, ok := asString(a.value("name"))
		if !ok {
			c.errorf("invalid 'name' argument")
		}
		pos = -1
		for k, e := range path {
			if c.i.searchName(e) == name {
				pos = k + 1
			}
		}
		if pos < 0 {
			c.errorf("invalid 'name' argument")
		}
	}
	if pos < 2 || pos >= len(path) {
		c.errorf("invalid '%s' argument", "pos")
	}
	env := path[pos-1]
	path[pos-2].SetParent(env.Parent())
	return env
}

func search(c *callContext, a *argList) value.Value {
	path := c.i.searchPath()
	ret := value.NewCharacter(len(path))
	for k, e := range path {
		ret.Set(k, c.i.searchName(e))
	}
	return ret
}
