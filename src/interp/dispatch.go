package interp

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/thought-machine/rcore/src/value"
)

// dispatchInfo describes the S3 dispatch that led to a method being called, which
// NextMethod needs to find the next one.
type dispatchInfo struct {
	generic string
	classes []string
	// pos is the index in classes of the class whose method is running;
	// len(classes) means the default method.
	pos     int
	object  value.Value
	callEnv *value.Env
	defEnv  *value.Env
	group   string
}

// define binds the dispatch variables in a method's environment.
func (d *dispatchInfo) define(env *value.Env) {
	env.Set(".Generic", value.Str(d.generic))
	if d.pos < len(d.classes) {
		env.Set(".Class", value.CharacterOf(append([]string(nil), d.classes[d.pos:]...)...))
	} else {
		env.Set(".Class", value.NewCharacter(0))
	}
	env.Set(".GenericCallEnv", d.callEnv)
	env.Set(".GenericDefEnv", d.defEnv)
	if d.group != "" {
		env.Set(".Group", value.Str(d.group))
	}
}

// dispatchClasses returns a copy of the classes an object dispatches on.
func dispatchClasses(obj value.Value) []string {
	return append([]string(nil), value.ImplicitClass(obj)...)
}

// lookupMethod finds an S3 method: first from the environment the generic was called
// from, then from where it was defined, then in the registered method table.
func (i *Interpreter) lookupMethod(name string, callEnv, defEnv *value.Env) value.Value {
	for _, env := range []*value.Env{callEnv, defEnv} {
		if env == nil {
			continue
		} else if fn := i.getFunction(name, env, nil); fn != nil {
			return fn
		}
	}
	if fn, present := i.methods.Get(name); present {
		return fn
	}
	return nil
}

// renameCall returns a copy of a call with the function replaced by the named one.
func renameCall(call *value.Language, name string) *value.Language {
	c := call.Clone().(*value.Language)
	c.Fn = value.Intern(name)
	return c
}

// applyMethod calls a method found by dispatch with arguments that are promises.
func (i *Interpreter) applyMethod(m value.Value, call *value.Language, args []value.Arg, caller *value.Env, d *dispatchInfo) value.Value {
	switch m := m.(type) {
	case *value.Closure:
		return i.applyClosure(call, m, args, caller, d)
	case *value.Builtin:
		b := i.lookupBuiltin(m, call)
		if b.special {
			return i.callSpecial(b, call, caller)
		}
		return i.callBuiltin(b, call, i.forceArgs(args), caller, false)
	}
	i.raise(newError(TypeError, call, "attempt to apply non-function"))
	return nil
}

// forceArgs forces any promises among a set of arguments.
func (i *Interpreter) forceArgs(args []value.Arg) []value.Arg {
	ret := make([]value.Arg, len(args))
	for k, a := range args {
		ret[k] = a
		if p, ok := a.Value.(*value.Promise); ok {
			ret[k].Value = i.force(p)
		}
	}
	return ret
}

// dispatchObject returns the object a generic dispatches on: its first argument.
func (i *Interpreter) dispatchObject(fr *frame) value.Value {
	if len(fr.fn.Formals) == 0 {
		return value.Null
	}
	name := fr.fn.Formals[0].Name
	var v value.Value
	if name == "..." {
		if d, ok := fr.env.Get("..."); ok {
			if dots, ok := d.(*value.Dots); ok && len(dots.Args) > 0 {
				v = dots.Args[0].Value
			}
		}
	} else {
		v, _ = fr.env.Get(name)
	}
	if v == nil || v == value.Missing {
		return value.Null
	} else if p, ok := v.(*value.Promise); ok {
		return i.force(p)
	}
	return v
}

// useMethod dispatches a call of a generic to the method for its object's class. It
// never returns normally: the result is returned from the generic's frame.
func useMethod(c *callContext, a *argList) value.Value {
	generic, ok := asString(c.i.eval(a.value("generic"), c.env))
	if !ok {
		c.errorf("'generic' argument must be a character string")
	}
	fr := c.currentFrame()
	var obj value.Value
	if a.has("object") {
		obj = c.i.eval(a.value("object"), c.env)
	} else {
		obj = c.i.dispatchObject(fr)
	}
	ret := c.i.usemethod(c, generic, obj, fr)
	panic(&returnSignal{env: fr.env, value: ret, visible: c.i.visible})
}

func (i *Interpreter) usemethod(c *callContext, generic string, obj value.Value, fr *frame) value.Value {
	d := &dispatchInfo{
		generic: generic,
		classes: dispatchClasses(obj),
		object:  obj,
		callEnv: fr.caller,
		defEnv:  fr.fn.Env,
	}
	for k, cls := range d.classes {
		name := generic + "." + cls
		if m := i.lookupMethod(name, d.callEnv, d.defEnv); m != nil {
			d.pos = k
			log.Debug("Dispatching %s to %s", generic, name)
			i.Metrics.Dispatched(generic, "method")
			return i.applyMethod(m, renameCall(fr.call, name), fr.args, fr.caller, d)
		}
	}
	d.pos = len(d.classes)
	if m := i.lookupMethod(generic+".default", d.callEnv, d.defEnv); m != nil {
		log.Debug("Dispatching %s to its default method", generic)
		i.Metrics.Dispatched(generic, "default")
		return i.applyMethod(m, renameCall(fr.call, generic+".default"), fr.args, fr.caller, d)
	}
	c.errorf("no applicable method for '%s' applied to an object of class \"%s\"", generic, describeClass(d.classes))
	return nil
}

// describeClass formats a class vector for the "no applicable method" message.
func describeClass(classes []string) string {
	if len(classes) == 1 {
		return classes[0]
	}
	quoted := make([]string, len(classes))
	for k, cls := range classes {
		quoted[k] = "'" + cls + "'"
	}
	return "c(" + strings.Join(quoted, ", ") + ")"
}

// nextMethod calls the next method after the one that is running.
func nextMethod(c *callContext, a *argList) value.Value {
	fr := c.currentFrame()
	d := fr.dispatch
	if d == nil {
		d = c.i.inferDispatch(c, fr)
	}
	args := c.i.nextMethodArgs(fr, a.dots)
	for k := d.pos + 1; k < len(d.classes); k++ {
		name := d.generic + "." + d.classes[k]
		if m := c.i.lookupMethod(name, d.callEnv, d.defEnv); m != nil {
			next := *d
			next.pos = k
			c.i.Metrics.Dispatched(d.generic, "method")
			return c.i.applyMethod(m, renameCall(fr.call, name), args, fr.caller, &next)
		}
	}
	if d.pos < len(d.classes) {
		if m := c.i.lookupMethod(d.generic+".default", d.callEnv, d.defEnv); m != nil {
			next := *d
			next.pos = len(d.classes)
			c.i.Metrics.Dispatched(d.generic, "default")
			return c.i.applyMethod(m, renameCall(fr.call, d.generic+".default"), args, fr.caller, &next)
		}
	}
	if b, present := c.i.builtins[d.generic]; present && !b.special {
		c.i.Metrics.Dispatched(d.generic, "internal")
		return c.i.callBuiltin(b, renameCall(fr.call, d.generic), c.i.forceArgs(args), fr.caller, false)
	}
	c.errorf("no more methods for '%s'", d.generic)
	return nil
}

// inferDispatch works out what NextMethod should do in a method that was called
// directly rather than through dispatch, from the name it was called by.
func (i *Interpreter) inferDispatch(c *callContext, fr *frame) *dispatchInfo {
	name := fr.call.FnName()
	obj := i.dispatchObject(fr)
	d := &dispatchInfo{classes: dispatchClasses(obj), object: obj, callEnv: fr.caller, defEnv: fr.fn.Env}
	for k, cls := range d.classes {
		if strings.HasSuffix(name, "."+cls) {
			d.generic = strings.TrimSuffix(name, "."+cls)
			d.pos = k
			return d
		}
	}
	if strings.HasSuffix(name, ".default") {
		d.generic = strings.TrimSuffix(name, ".default")
		d.pos = len(d.classes)
		return d
	}
	c.errorf("generic function not specified")
	return nil
}

// nextMethodArgs returns the arguments for the next method: the ones the current method
// was called with, with those matched to its formals replaced by their current values,
// plus any extra ones given to NextMethod.
func (i *Interpreter) nextMethodArgs(fr *frame, extra []value.Arg) []value.Arg {
	args := make([]value.Arg, 0, len(fr.args)+len(extra))
	for j, a := range fr.args {
		if k := fr.argFormals[j]; k >= 0 {
			name := fr.fn.Formals[k].Name
			switch v, _ := fr.env.Get(name); v := v.(type) {
			case nil:
			case *value.Promise:
				a.Value = v
			case *value.Symbol:
				if v != value.Missing {
					a.Value = value.NewForcedPromise(value.Intern(name), v)
				}
			default:
				a.Value = value.NewForcedPromise(value.Intern(name), v)
			}
		}
		args = append(args, a)
	}
	for _, e := range extra {
		e.Value = value.NewForcedPromise(e.Value, e.Value)
		replaced := false
		if e.Name != "" {
			for j := range args {
				if args[j].Name == e.Name {
					args[j].Value = e.Value
					replaced = true
				}
			}
		}
		if !replaced {
			args = append(args, e)
		}
	}
	return args
}

// dispatchInternal looks for an S3 method for a call of an internal generic whose
// first argument is an object. It returns false if there isn't one and the builtin
// should run as normal.
func (i *Interpreter) dispatchInternal(b *builtin, call *value.Language, args []value.Arg, env *value.Env) (value.Value, bool) {
	if b.group == "Ops" {
		return i.dispatchOps(b, call, args, env)
	} else if len(args) == 0 || !value.IsObject(args[0].Value) {
		return nil, false
	}
	obj := args[0].Value
	d := &dispatchInfo{generic: b.name, classes: dispatchClasses(obj), object: obj, callEnv: env, defEnv: i.Base}
	for k, cls := range d.classes {
		name := b.name + "." + cls
		m := i.lookupMethod(name, env, i.Base)
		if m == nil && b.group != "" {
			name = b.group + "." + cls
			m = i.lookupMethod(name, env, i.Base)
			d.group = b.group
		}
		if m != nil && !isBuiltin(m, b.name) {
			d.pos = k
			log.Debug("Dispatching %s to %s", b.name, name)
			i.Metrics.Dispatched(b.name, "method")
			return i.applyMethod(m, renameCall(call, name), forcedPromises(args), env, d), true
		}
	}
	if b.group == "" {
		if m := i.lookupMethod(b.name+".default", env, i.Base); m != nil {
			d.pos = len(d.classes)
			i.Metrics.Dispatched(b.name, "default")
			return i.applyMethod(m, renameCall(call, b.name+".default"), forcedPromises(args), env, d), true
		}
	}
	i.Metrics.Dispatched(b.name, "internal")
	return nil, false
}

func isBuiltin(v value.Value, name string) bool {
	b, ok := v.(*value.Builtin)
	return ok && b.Name == name
}

// dispatchOps dispatches an operator in the Ops group on the classes of either operand.
func (i *Interpreter) dispatchOps(b *builtin, call *value.Language, args []value.Arg, env *value.Env) (value.Value, bool) {
	if len(args) == 0 || len(args) > 2 {
		return nil, false
	}
	d := i.findOpsMethod(b.name, args[0].Value, env)
	if len(args) == 2 {
		if right := i.findOpsMethod(b.name, args[1].Value, env); right != nil {
			if d == nil {
				d = right
			} else if d.method != right.method {
				i.warning(call, fmt.Sprintf("Incompatible methods (\"%s\", \"%s\") for \"%s\"", d.name, right.name, b.name))
				return nil, false
			}
		}
	}
	if d == nil {
		return nil, false
	}
	i.Metrics.Dispatched(b.name, "method")
	return i.applyMethod(d.method, call, forcedPromises(args), env, &d.dispatchInfo), true
}

type opsMethod struct {
	dispatchInfo
	method value.Value
	name   string
}

func (i *Interpreter) findOpsMethod(op string, obj value.Value, env *value.Env) *opsMethod {
	if !value.IsObject(obj) {
		return nil
	}
	classes := dispatchClasses(obj)
	for k, cls := range classes {
		for _, name := range []string{op + "." + cls, "Ops." + cls} {
			if m := i.lookupMethod(name, env, i.Base); m != nil {
				return &opsMethod{
					dispatchInfo: dispatchInfo{generic: op, classes: classes, pos: k, object: obj, callEnv: env, defEnv: i.Base, group: "Ops"},
					method:       m,
					name:         name,
				}
			}
		}
	}
	return nil
}

// registerS3method adds a method to the S3 method table.
func registerS3method(c *callContext, a *argList) value.Value {
	generic := a.str("genname")
	class := a.str("class")
	method := a.function("method")
	c.i.methods.Set(generic+"."+class, method)
	return c.invisible(value.Null)
}

// methodsFunc lists the S3 methods visible from the calling environment or registered
// with registerS3method, for a generic, a class or both.
func methodsFunc(c *callContext, a *argList) value.Value {
	generic := a.strOr("generic.function", "")
	class := a.strOr("class", "")
	if generic == "" && class == "" {
		c.errorf("must supply 'generic.function' or 'class'")
	}
	matches := func(name string) bool {
		if generic != "" && !strings.HasPrefix(name, generic+".") {
			return false
		}
		return class == "" || strings.HasSuffix(name, "."+class) && len(name) > len(class)+1
	}
	var names []string
	for env := c.env; env != nil; env = env.Parent() {
		for _, name := range env.Names(true) {
			if !matches(name) {
				continue
			} else if v, _ := env.Get(name); value.IsFunction(v) {
				names = append(names, name)
			}
		}
	}
	for _, name := range c.i.methods.Keys() {
		if matches(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return value.CharacterOf(slices.Compact(names)...)
}
