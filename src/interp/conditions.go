package interp

import (
	"fmt"
	"strings"

	"github.com/thought-machine/rcore/src/value"
)

// A handler is an entry on the condition handler stack.
type handler struct {
	class string
	// fn is the R function to call, or nil if native is set instead.
	fn     value.Value
	native func(cond value.Value)
	// exiting handlers unwind to the tryCatch that established them before running.
	exiting bool
	target  *tryFrame
	env     *value.Env
}

// A tryFrame identifies one active tryCatch or try. Unwinds are matched by pointer, so it
// must not be zero-sized.
type tryFrame struct {
	// depth is the height of the handler stack when it was established.
	depth int
}

// A conditionUnwind carries a condition back to the tryCatch whose handler caught it.
type conditionUnwind struct {
	target  *tryFrame
	handler *handler
	cond    value.Value
}

// A restart is an entry on the restart stack.
type restart struct {
	name string
	fn   value.Value
}

// A restartUnwind carries the arguments of invokeRestart back to where the restart was established.
type restartUnwind struct {
	target *restart
	args   []value.Arg
}

// raise signals an error condition and then unwinds with it if no handler took over.
func (i *Interpreter) raise(err *Error) {
	if err.Condition == nil {
		err.Condition = makeCondition(err.Message, err.Call, errorClasses[err.Kind]...)
	}
	i.signal(err.Condition)
	i.errmsg = err.header() + "\n"
	panic(err)
}

// asError converts a Go error returned from the value package into an R error.
func (i *Interpreter) asError(err error, call value.Value) *Error {
	switch e := err.(type) {
	case *Error:
		return e
	case *value.CoercionError, *value.AttrError:
		return newError(TypeError, call, e.Error())
	case *value.BindingError:
		return newError(ArgumentError, call, e.Error())
	}
	return newError(InternalError, call, err.Error())
}

// signal offers a condition to the active handlers, innermost first. Calling handlers
// run with only the handlers below them active; exiting handlers unwind.
func (i *Interpreter) signal(cond value.Value) {
	handlers := i.handlers
	for _, cls := range value.ImplicitClass(cond) {
		i.Metrics.Signalled(cls)
		break
	}
	for k := len(handlers) - 1; k >= 0; k-- {
		h := handlers[k]
		if value.Inherits(cond, h.class) < 0 {
			continue
		} else if h.exiting {
			panic(&conditionUnwind{target: h.target, handler: h, cond: cond})
		}
		i.runCallingHandler(handlers, k, cond)
	}
}

func (i *Interpreter) runCallingHandler(handlers []*handler, k int, cond value.Value) {
	i.handlers = handlers[:k:k]
	defer func() { i.handlers = handlers }()
	h := handlers[k]
	if h.native != nil {
		h.native(cond)
	} else {
		i.callFunction(h.fn, []value.Arg{{Value: cond}}, nil, h.env)
	}
}

// withRestart runs f with a restart of the given name established. It returns true
// (and the arguments it was invoked with) if the restart was invoked.
func (i *Interpreter) withRestart(r *restart, f func()) (invoked bool, args []value.Arg) {
	saved := i.restarts
	i.restarts = append(i.restarts, r)
	defer func() {
		i.restarts = saved
		if rec := recover(); rec != nil {
			if u, ok := rec.(*restartUnwind); ok && u.target == r {
				invoked = true
				args = u.args
				return
			}
			panic(rec)
		}
	}()
	f()
	return false, nil
}

// findRestart returns the innermost restart of the given name, or nil.
func (i *Interpreter) findRestart(name string) *restart {
	for k := len(i.restarts) - 1; k >= 0; k-- {
		if i.restarts[k].name == name {
			return i.restarts[k]
		}
	}
	return nil
}

// invokeRestart unwinds to the innermost restart of the given name.
func (i *Interpreter) invokeRestart(call value.Value, name string, args []value.Arg) {
	r := i.findRestart(name)
	if r == nil {
		i.raise(newError(ArgumentError, call, fmt.Sprintf("no 'restart' '%s' found", name)))
	}
	panic(&restartUnwind{target: r, args: args})
}

// warning signals a simple warning raised natively.
func (i *Interpreter) warning(call value.Value, msg string) {
	i.signalWarning(makeCondition(msg, call, "simpleWarning", "warning", "condition"))
}

// signalWarning signals a warning condition with a muffleWarning restart established,
// then applies the default handling according to options(warn) if nothing muffled it.
func (i *Interpreter) signalWarning(cond value.Value) {
	muffled, _ := i.withRestart(&restart{name: "muffleWarning"}, func() {
		i.signal(cond)
	})
	if muffled {
		return
	}
	msg := conditionMessage(cond)
	call := conditionCall(cond)
	switch level := i.session.Warn(); {
	case level < 0:
	case level == 0:
		if len(i.warnings) < i.session.intOption("nwarnings", 50) {
			w := Warning{Message: msg}
			if call != nil {
				w.Call = deparseCall(call)
			}
			i.warnings = append(i.warnings, w)
		}
	case level == 1:
		if call != nil {
			fmt.Fprintf(i.session.Stderr, "Warning in %s : %s\n", deparseCall(call), msg)
		} else {
			fmt.Fprintf(i.session.Stderr, "Warning: %s\n", msg)
		}
		log.Debug("Warning: %s", msg)
	default:
		err := newError(ConvertedWarning, call, "(converted from warning) "+msg)
		i.raise(err)
	}
}

// message signals a message condition with a muffleMessage restart established, and
// writes it to stderr if nothing muffled it.
func (i *Interpreter) message(cond value.Value) {
	muffled, _ := i.withRestart(&restart{name: "muffleMessage"}, func() {
		i.signal(cond)
	})
	if !muffled {
		fmt.Fprint(i.session.Stderr, conditionMessage(cond))
	}
}

// registerConditions sets up the builtins of the condition system.
func registerConditions(i *Interpreter) {
	i.setNativeCode("stop", stop, "...", "call.")
	i.setNativeCode("warning", warningFunc, "...", "call.", "immediate.").invisible = true
	i.setNativeCode("message", messageFunc, "...", "appendLF").invisible = true
	i.setNativeCode("signalCondition", signalCondition, "cond", "message", "call")
	i.setSpecial("tryCatch", tryCatch, "expr", "...", "finally")
	i.setSpecial("withCallingHandlers", withCallingHandlers, "expr", "...")
	i.setSpecial("try", try, "expr", "silent", "outFile")
	i.setSpecial("suppressWarnings", suppressWarnings, "expr", "classes")
	i.setSpecial("suppressMessages", suppressMessages, "expr", "classes")
	i.setSpecial("withRestarts", withRestarts, "expr", "...")
	i.setNativeCode("invokeRestart", invokeRestart, "r", "...")
	i.setNativeCode("computeRestarts", computeRestarts, "cond")
	i.setNativeCode("simpleCondition", simpleConditionFunc("condition"), "message", "call")
	i.setNativeCode("simpleError", simpleConditionFunc("simpleError", "error", "condition"), "message", "call")
	i.setNativeCode("simpleWarning", simpleConditionFunc("simpleWarning", "warning", "condition"), "message", "call")
	i.setNativeCode("simpleMessage", simpleConditionFunc("simpleMessage", "message", "condition"), "message", "call")
	i.setNativeCode("errorCondition", customCondition("error"), "message", "...", "class", "call")
	i.setNativeCode("warningCondition", customCondition("warning"), "message", "...", "class", "call")
	i.setNativeCode("conditionMessage", conditionMessageFunc, "c").generic = true
	i.setNativeCode("conditionCall", conditionCallFunc, "c").generic = true
	i.setNativeCode("warnings", warningsFunc, "...")
	i.setNativeCode("geterrmessage", geterrmessage)
	i.setSpecial("stopifnot", stopifnot, "...", "exprs", "exprObject", "local")
	i.setNativeCode("traceback", traceback, "x", "max.lines").invisible = true
}

// conditionArg returns the first argument of stop/warning/message if it is a
// condition object, otherwise the message made by pasting the arguments together.
func conditionArg(args []value.Arg) (value.Value, string) {
	if len(args) == 1 && value.Inherits(args[0].Value, "condition") >= 0 {
		return args[0].Value, ""
	}
	var b strings.Builder
	for _, a := range args {
		for _, s := range asStrings(a.Value) {
			b.WriteString(s)
		}
	}
	return nil, b.String()
}

// callerCall returns the call of the function that called a builtin, for messages.
func (c *callContext) callerCall() value.Value {
	if k := c.i.frameOf(c.env); k >= 0 {
		return c.i.frames[k].call
	}
	return nil
}

func stop(c *callContext, a *argList) value.Value {
	cond, msg := conditionArg(a.dots)
	if cond != nil {
		c.i.raise(&Error{Kind: kindOf(cond), Message: conditionMessage(cond), Call: conditionCall(cond), Condition: cond})
	}
	var call value.Value
	if a.flagOr("call.", true) {
		call = c.callerCall()
	}
	c.i.raise(newError(UserError, call, msg))
	return nil
}

func warningFunc(c *callContext, a *argList) value.Value {
	cond, msg := conditionArg(a.dots)
	if cond != nil {
		c.i.signalWarning(cond)
		return value.Str(conditionMessage(cond))
	}
	var call value.Value
	if a.flagOr("call.", true) {
		call = c.callerCall()
	}
	c.i.warning(call, msg)
	return value.Str(msg)
}

func messageFunc(c *callContext, a *argList) value.Value {
	cond, msg := conditionArg(a.dots)
	if cond == nil {
		if a.flagOr("appendLF", true) {
			msg += "\n"
		}
		cond = makeCondition(msg, c.callerCall(), "simpleMessage", "message", "condition")
	}
	c.i.message(cond)
	return value.Null
}

func signalCondition(c *callContext, a *argList) value.Value {
	c.i.signal(a.value("cond"))
	return value.Null
}

// handlerArgs evaluates the handlers given to tryCatch or withCallingHandlers.
func handlerArgs(c *callContext, a *argList, exiting bool, target *tryFrame) []*handler {
	handlers := make([]*handler, 0, len(a.dots))
	for _, d := range a.dots {
		if d.Name == "" {
			c.errorf("condition handlers must be specified with a condition class")
		}
		fn := c.i.eval(d.Value, c.env)
		if !value.IsFunction(fn) {
			c.errorf("handler for '%s' is not a function", d.Name)
		}
		handlers = append(handlers, &handler{class: d.Name, fn: fn, exiting: exiting, target: target, env: c.env})
	}
	return handlers
}

// pushHandlers adds handlers so that the first is the one tried first, returning the
// previous handler stack.
func (i *Interpreter) pushHandlers(handlers []*handler) []*handler {
	saved := i.handlers
	stack := make([]*handler, len(saved), len(saved)+len(handlers))
	copy(stack, saved)
	for k := len(handlers) - 1; k >= 0; k-- {
		stack = append(stack, handlers[k])
	}
	i.handlers = stack
	return saved
}

func tryCatch(c *callContext, a *argList) value.Value {
	target := &tryFrame{depth: len(c.i.handlers)}
	handlers := handlerArgs(c, a, true, target)
	if a.has("finally") {
		defer func() {
			visible := c.i.visible
			c.i.eval(a.value("finally"), c.env)
			c.i.visible = visible
		}()
	}
	if !a.has("expr") {
		return value.Null
	}
	ret, unwind := c.i.catchConditions(target, handlers, func() value.Value {
		return c.i.eval(a.value("expr"), c.env)
	})
	if unwind != nil {
		return c.i.callFunction(unwind.handler.fn, []value.Arg{{Value: unwind.cond}}, nil, c.env)
	}
	return ret
}

// catchConditions runs f with exiting handlers established, returning the unwind if
// one of them caught a condition.
func (i *Interpreter) catchConditions(target *tryFrame, handlers []*handler, f func() value.Value) (ret value.Value, unwind *conditionUnwind) {
	saved := i.pushHandlers(handlers)
	restarts := i.restarts
	depth := i.depth
	defer func() {
		i.handlers = saved
		if r := recover(); r != nil {
			if u, ok := r.(*conditionUnwind); ok && u.target == target {
				i.restarts = restarts
				i.depth = depth
				unwind = u
				return
			}
			panic(r)
		}
	}()
	return f(), nil
}

func withCallingHandlers(c *callContext, a *argList) value.Value {
	handlers := handlerArgs(c, a, false, nil)
	saved := c.i.pushHandlers(handlers)
	defer func() { c.i.handlers = saved }()
	if !a.has("expr") {
		return value.Null
	}
	return c.i.eval(a.value("expr"), c.env)
}

func try(c *callContext, a *argList) value.Value {
	target := &tryFrame{depth: len(c.i.handlers)}
	h := &handler{class: "error", exiting: true, target: target}
	ret, unwind := c.i.catchConditions(target, []*handler{h}, func() value.Value {
		return c.i.eval(a.value("expr"), c.env)
	})
	if unwind == nil {
		return ret
	}
	msg := conditionMessage(unwind.cond)
	var text string
	if call := conditionCall(unwind.cond); call != nil {
		text = "Error in " + deparseCall(call) + " : " + msg + "\n"
	} else {
		text = "Error : " + msg + "\n"
	}
	c.i.errmsg = text
	silent := false
	if a.has("silent") {
		silent, _ = asFlag(c.i.eval(a.value("silent"), c.env))
	}
	if !silent {
		fmt.Fprint(c.i.session.Stderr, text)
	}
	v := value.Str(text)
	mustSetAttr(v, "class", value.Str("try-error"))
	mustSetAttr(v, "condition", unwind.cond)
	return c.invisible(v)
}

// suppress evaluates an expression with a calling handler that invokes the given restart.
func suppress(c *callContext, a *argList, class, restartName string) value.Value {
	classes := []string{class}
	if a.has("classes") {
		classes = asStrings(c.i.eval(a.value("classes"), c.env))
	}
	handlers := make([]*handler, len(classes))
	for k, cls := range classes {
		handlers[k] = &handler{class: cls, native: func(cond value.Value) {
			if value.Inherits(cond, class) >= 0 {
				c.i.invokeRestart(c.call, restartName, nil)
			}
		}}
	}
	saved := c.i.pushHandlers(handlers)
	defer func() { c.i.handlers = saved }()
	return c.i.eval(a.value("expr"), c.env)
}

func suppressWarnings(c *callContext, a *argList) value.Value {
	return suppress(c, a, "warning", "muffleWarning")
}

func suppressMessages(c *callContext, a *argList) value.Value {
	return suppress(c, a, "message", "muffleMessage")
}

func withRestarts(c *callContext, a *argList) value.Value {
	restarts := make([]*restart, 0, len(a.dots))
	for _, d := range a.dots {
		if d.Name == "" {
			c.errorf("not a valid restart specification")
		}
		fn := c.i.eval(d.Value, c.env)
		if !value.IsFunction(fn) {
			c.errorf("not a valid restart specification")
		}
		restarts = append(restarts, &restart{name: d.Name, fn: fn})
	}
	saved := c.i.restarts
	handlers := c.i.handlers
	c.i.restarts = append(append([]*restart(nil), saved...), restarts...)
	var ret value.Value
	unwind := func() (u *restartUnwind) {
		defer func() {
			c.i.restarts = saved
			if r := recover(); r != nil {
				if ru, ok := r.(*restartUnwind); ok {
					for _, rs := range restarts {
						if ru.target == rs {
							c.i.handlers = handlers
							u = ru
							return
						}
					}
				}
				panic(r)
			}
		}()
		ret = c.i.eval(a.opt("expr", value.Null), c.env)
		return nil
	}()
	if unwind != nil {
		return c.i.callFunction(unwind.target.fn, unwind.args, nil, c.env)
	}
	return ret
}

func invokeRestart(c *callContext, a *argList) value.Value {
	r := a.value("r")
	name, ok := asString(r)
	if l, isList := r.(*value.List); isList && value.Inherits(r, "restart") >= 0 && l.Len() > 0 {
		name, ok = asString(l.At(0))
	}
	if !ok {
		c.errorf("bad restart")
	}
	c.i.invokeRestart(c.call, name, a.dots)
	return nil
}

func computeRestarts(c *callContext, a *argList) value.Value {
	l := value.NewList(len(c.i.restarts))
	for k := range c.i.restarts {
		r := c.i.restarts[len(c.i.restarts)-1-k]
		obj := value.ListOf(value.Str(r.name), value.Null)
		mustSetAttr(obj, "names", value.CharacterOf("name", "exit"))
		mustSetAttr(obj, "class", value.Str("restart"))
		l.Set(k, obj)
	}
	return l
}

func simpleConditionFunc(classes ...string) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		msg := a.str("message")
		cond := makeCondition(msg, a.opt("call", value.Null), classes...)
		return cond
	}
}

func customCondition(kind string) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		classes := asStrings(a.opt("class", value.Null))
		classes = append(classes, kind, "condition")
		fields := []value.Value{value.Str(a.str("message")), a.opt("call", value.Null)}
		names := []string{"message", "call"}
		for _, d := range a.dots {
			fields = append(fields, d.Value)
			names = append(names, d.Name)
		}
		cond := value.ListOf(fields...)
		mustSetAttr(cond, "names", value.CharacterOf(names...))
		mustSetAttr(cond, "class", value.CharacterOf(classes...))
		return cond
	}
}

func conditionMessageFunc(c *callContext, a *argList) value.Value {
	return value.Str(conditionMessage(a.value("c")))
}

func conditionCallFunc(c *callContext, a *argList) value.Value {
	if call := conditionCall(a.value("c")); call != nil {
		return call
	}
	return value.Null
}

func warningsFunc(c *callContext, a *argList) value.Value {
	l := value.NewList(len(c.i.warnings))
	names := value.NewCharacter(len(c.i.warnings))
	for k, w := range c.i.warnings {
		names.Set(k, w.Message)
		if w.Call != "" {
			if exprs, err := c.i.parser.Parse(w.Call); err == nil && len(exprs) == 1 {
				l.Set(k, exprs[0])
				continue
			}
			l.Set(k, value.Str(w.Call))
		}
	}
	mustSetAttr(l, "names", names)
	mustSetAttr(l, "class", value.Str("warnings"))
	return l
}

func geterrmessage(c *callContext, a *argList) value.Value {
	return value.Str(c.i.errmsg)
}

func stopifnot(c *callContext, a *argList) value.Value {
	for _, d := range a.dots {
		v := c.i.eval(d.Value, c.env)
		l, ok := v.(*value.Logical)
		allTrue := ok
		for k := 0; ok && k < l.Len(); k++ {
			if l.IsNA(k) || !l.At(k) {
				allTrue = false
			}
		}
		if !allTrue {
			msg := d.Name
			if msg == "" {
				expr := deparseCall(d.Value)
				if ok && l.Len() > 1 {
					msg = expr + " are not all TRUE"
				} else {
					msg = expr + " is not TRUE"
				}
			}
			c.i.raise(newError(UserError, c.callerCall(), msg))
		}
	}
	return c.invisible(value.Null)
}

func traceback(c *callContext, a *argList) value.Value {
	return value.Null
}
