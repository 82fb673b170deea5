package interp

import (
	"strconv"
	"strings"

	"github.com/thought-machine/rcore/src/cli"
	"github.com/thought-machine/rcore/src/value"
)

// maxSuggestionDistance is how far a name can be from one that wasn't found to be suggested.
const maxSuggestionDistance = 2

// A returnSignal unwinds to the frame whose environment is env, which returns value.
type returnSignal struct {
	env     *value.Env
	value   value.Value
	visible bool
}

// A loopSignal unwinds to the innermost loop evaluated in env.
type loopSignal struct {
	env *value.Env
	brk bool
}

// eval evaluates an expression in an environment.
func (i *Interpreter) eval(expr value.Value, env *value.Env) value.Value {
	i.visible = true
	switch e := expr.(type) {
	case *value.Symbol:
		return i.lookup(e, env)
	case *value.Language:
		return i.evalCall(e, env)
	case *value.Promise:
		return i.force(e)
	case *value.Dots:
		i.raise(newError(ArgumentError, nil, "'...' used in an incorrect context"))
	}
	return expr
}

// lookup returns the value bound to a symbol, forcing it if it's a promise.
func (i *Interpreter) lookup(sym *value.Symbol, env *value.Env) value.Value {
	switch {
	case sym == value.Missing:
		i.raise(newError(ArgumentError, nil, "argument is missing, with no default"))
	case sym == value.DotsSymbol:
		i.raise(newError(ArgumentError, nil, "'...' used in an incorrect context"))
	}
	if n := dotDotIndex(sym.Name); n > 0 {
		return i.dotDot(n, env)
	}
	v, _ := env.Lookup(sym.Name)
	if v == nil {
		i.raise(i.notFound(sym.Name, env))
	}
	return i.forceBinding(sym.Name, v)
}

// notFound returns the error for a variable that isn't bound, with suggestions for
// names that are.
func (i *Interpreter) notFound(name string, env *value.Env) *Error {
	err := newError(NotFoundError, nil, "object '"+name+"' not found")
	err.Suggestion = cli.PrettyPrintSuggestion(name, visibleNames(env), maxSuggestionDistance)
	return err
}

// visibleNames returns every name visible from env, excluding the base environment.
func visibleNames(env *value.Env) []string {
	var names []string
	for e := env; e != nil && e.Name() != "base"; e = e.Parent() {
		names = append(names, e.Names(false)...)
	}
	return names
}

// forceBinding returns the value of a binding, forcing promises and rejecting missing arguments.
func (i *Interpreter) forceBinding(name string, v value.Value) value.Value {
	if v == value.Missing {
		i.raise(newError(ArgumentError, nil, "argument \""+name+"\" is missing, with no default"))
	}
	if p, ok := v.(*value.Promise); ok {
		return i.force(p)
	}
	return v
}

// dotDotIndex returns n for a symbol of the form ..n, or 0.
func dotDotIndex(name string) int {
	if !strings.HasPrefix(name, "..") || len(name) < 3 {
		return 0
	}
	n, err := strconv.Atoi(name[2:])
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// dotDot returns the n'th element of the ... in scope.
func (i *Interpreter) dotDot(n int, env *value.Env) value.Value {
	d, _ := env.Lookup("...")
	dots, ok := d.(*value.Dots)
	if !ok {
		i.raise(newError(ArgumentError, nil, ".."+strconv.Itoa(n)+" used in an incorrect context, no ... to look in"))
	} else if n > len(dots.Args) {
		i.raise(newError(ArgumentError, nil, "the ... list contains fewer than "+strconv.Itoa(n)+" elements"))
	}
	return i.forceBinding(".."+strconv.Itoa(n), dots.Args[n-1].Value)
}

// force evaluates a promise if it hasn't been already.
func (i *Interpreter) force(p *value.Promise) value.Value {
	if p.Forcing() {
		i.raise(newError(ArgumentError, nil, "promise already under evaluation: recursive default argument reference or earlier problems?"))
	}
	return p.Force(i.eval)
}

// evalCall evaluates a function call.
func (i *Interpreter) evalCall(call *value.Language, env *value.Env) value.Value {
	i.depth++
	defer func() { i.depth-- }()
	if i.depth > i.session.intOption("expressions", 5000) {
		i.raise(newError(DomainError, nil, "evaluation nested too deeply: infinite recursion / options(expressions=)?"))
	}
	var fn value.Value
	if sym, ok := call.Fn.(*value.Symbol); ok {
		fn = i.findFunction(sym.Name, env, call)
	} else {
		fn = i.eval(call.Fn, env)
	}
	return i.apply(fn, call, env)
}

// findFunction looks up a function by name, skipping bindings that aren't functions.
func (i *Interpreter) findFunction(name string, env *value.Env, call *value.Language) value.Value {
	if fn := i.getFunction(name, env, call); fn != nil {
		return fn
	}
	err := newError(NotFoundError, call, "could not find function \""+name+"\"")
	err.Suggestion = cli.PrettyPrintSuggestion(name, i.functionNames(env), maxSuggestionDistance)
	i.raise(err)
	return nil
}

// getFunction is like findFunction but returns nil if there is no such function.
func (i *Interpreter) getFunction(name string, env *value.Env, call *value.Language) value.Value {
	for e := env; e != nil; e = e.Parent() {
		v, present := e.Get(name)
		if !present {
			continue
		}
		if v == value.Missing {
			i.raise(newError(ArgumentError, call, "argument \""+name+"\" is missing, with no default"))
		} else if p, ok := v.(*value.Promise); ok {
			v = i.force(p)
		}
		if value.IsFunction(v) {
			return v
		}
	}
	return nil
}

// functionNames returns the names of all functions visible from env.
func (i *Interpreter) functionNames(env *value.Env) []string {
	var names []string
	for e := env; e != nil; e = e.Parent() {
		for _, name := range e.Names(false) {
			if v, _ := e.Get(name); v != nil && value.IsFunction(v) {
				names = append(names, name)
			}
		}
	}
	return names
}

// apply calls a function with the arguments of a call, evaluated lazily in env.
func (i *Interpreter) apply(fn value.Value, call *value.Language, env *value.Env) value.Value {
	switch f := fn.(type) {
	case *value.Closure:
		return i.applyClosure(call, f, i.promiseArgs(call.Args, env), env, nil)
	case *value.Builtin:
		b := i.lookupBuiltin(f, call)
		if b.special {
			return i.callSpecial(b, call, env)
		}
		return i.callBuiltin(b, call, i.evalArgs(call.Args, env), env, true)
	}
	i.raise(newError(TypeError, call, "attempt to apply non-function"))
	return nil
}

func (i *Interpreter) lookupBuiltin(f *value.Builtin, call *value.Language) *builtin {
	b, present := i.builtins[f.Name]
	if !present {
		i.raise(newError(InternalError, call, "there is no .Internal function '"+f.Name+"'"))
	}
	return b
}

// callFunction calls a function with arguments that have already been evaluated.
// If call is nil one is made up for error messages and sys.call().
func (i *Interpreter) callFunction(fn value.Value, args []value.Arg, call *value.Language, env *value.Env) value.Value {
	if call == nil {
		call = syntheticCall(fn, args)
	}
	switch f := fn.(type) {
	case *value.Closure:
		return i.applyClosure(call, f, forcedPromises(args), env, nil)
	case *value.Builtin:
		b := i.lookupBuiltin(f, call)
		if b.special {
			return i.callSpecial(b, &value.Language{Fn: call.Fn, Args: quoteArgs(args)}, env)
		}
		return i.callBuiltin(b, call, args, env, true)
	}
	i.raise(newError(TypeError, call, "attempt to apply non-function"))
	return nil
}

// syntheticCall makes up a call of a function with some evaluated arguments.
func syntheticCall(fn value.Value, args []value.Arg) *value.Language {
	call := &value.Language{Fn: value.Intern("FUN"), Args: quoteArgs(args)}
	if b, ok := fn.(*value.Builtin); ok {
		call.Fn = value.Intern(b.Name)
	}
	return call
}

// quoteArgs wraps language objects and symbols in quote() so evaluating them gives the value back.
func quoteArgs(args []value.Arg) []value.Arg {
	ret := make([]value.Arg, len(args))
	for k, a := range args {
		ret[k] = value.Arg{Name: a.Name, Value: quoted(a.Value)}
	}
	return ret
}

func quoted(v value.Value) value.Value {
	switch v.(type) {
	case *value.Language, *value.Promise:
		return value.NewCall("quote", v)
	case *value.Symbol:
		if v != value.Missing {
			return value.NewCall("quote", v)
		}
	}
	return v
}

// forcedPromises wraps evaluated arguments as already-forced promises.
func forcedPromises(args []value.Arg) []value.Arg {
	ret := make([]value.Arg, len(args))
	for k, a := range args {
		ret[k].Name = a.Name
		if a.Value == value.Missing {
			ret[k].Value = a.Value
		} else {
			ret[k].Value = value.NewForcedPromise(a.Value, a.Value)
		}
	}
	return ret
}

// promiseArgs turns the arguments of a call into promises to be evaluated in env,
// expanding any ... in them. Constants are passed directly.
func (i *Interpreter) promiseArgs(args []value.Arg, env *value.Env) []value.Arg {
	ret := make([]value.Arg, 0, len(args))
	for _, a := range args {
		switch v := a.Value.(type) {
		case *value.Symbol:
			if v == value.DotsSymbol {
				ret = append(ret, i.dotsArgs(env)...)
				continue
			} else if v != value.Missing {
				a.Value = value.NewPromise(v, env)
			}
		case *value.Language:
			a.Value = value.NewPromise(v, env)
		}
		ret = append(ret, a)
	}
	return ret
}

// evalArgs evaluates the arguments of a call in env, expanding any ... in them.
// Empty arguments are left as value.Missing.
func (i *Interpreter) evalArgs(args []value.Arg, env *value.Env) []value.Arg {
	ret := make([]value.Arg, 0, len(args))
	for _, a := range args {
		switch v := a.Value.(type) {
		case *value.Symbol:
			if v == value.DotsSymbol {
				for _, d := range i.dotsArgs(env) {
					if p, ok := d.Value.(*value.Promise); ok {
						d.Value = i.force(p)
					}
					ret = append(ret, d)
				}
				continue
			} else if v != value.Missing {
				a.Value = i.eval(v, env)
			}
		case *value.Language, *value.Promise:
			a.Value = i.eval(v, env)
		}
		ret = append(ret, a)
	}
	return ret
}

// dotsArgs returns the arguments bound to ... in env.
func (i *Interpreter) dotsArgs(env *value.Env) []value.Arg {
	d, _ := env.Lookup("...")
	switch d := d.(type) {
	case *value.Dots:
		return d.Args
	case nil:
		i.raise(newError(ArgumentError, nil, "'...' used in an incorrect context"))
	}
	return nil
}

// callBuiltin calls a builtin with evaluated arguments. If dispatch is true, internal
// generics first look for an S3 method for their first argument.
func (i *Interpreter) callBuiltin(b *builtin, call *value.Language, args []value.Arg, env *value.Env, dispatch bool) value.Value {
	owned := i.owned
	i.owned = false
	if dispatch && (b.generic || b.group != "") {
		if ret, ok := i.dispatchInternal(b, call, args, env); ok {
			return ret
		}
	}
	i.Metrics.BuiltinCalled(b.name)
	c := &callContext{i: i, call: call, env: env, b: b, owned: owned}
	a := i.matchBuiltinArgs(c, args)
	ret := b.fn(c, a)
	if !b.passVisible {
		i.visible = !b.invisible && !c.hidden
	} else if c.hidden {
		i.visible = false
	}
	return ret
}

// callSpecial calls a builtin with its arguments unevaluated.
func (i *Interpreter) callSpecial(b *builtin, call *value.Language, env *value.Env) value.Value {
	i.Metrics.BuiltinCalled(b.name)
	c := &callContext{i: i, call: call, env: env, b: b}
	a := i.matchBuiltinArgs(c, call.Args)
	ret := b.fn(c, a)
	if b.invisible || c.hidden {
		i.visible = false
	}
	return ret
}

// matchBuiltinArgs matches arguments to a builtin's formals.
func (i *Interpreter) matchBuiltinArgs(c *callContext, args []value.Arg) *argList {
	matched, dots, _ := i.matchArgs(c.call, c.b.formals, args)
	for k, v := range matched {
		if v == value.Missing {
			matched[k] = nil
		}
	}
	if !c.b.special && !c.b.allowEmpty {
		for k, d := range dots {
			if d.Value == value.Missing {
				c.errorf("argument %d is empty", k+1)
			}
		}
	}
	return &argList{c: c, formals: c.b.formals, values: matched, dots: dots}
}
