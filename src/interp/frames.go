package interp

import (
	"github.com/thought-machine/rcore/src/value"
)

// A frame is the record of an active closure call.
type frame struct {
	call *value.Language
	fn   *value.Closure
	// env is the environment the body is evaluated in.
	env *value.Env
	// caller is the environment the call was made from, i.e. parent.frame().
	caller *value.Env
	// args are the supplied arguments as promises, after expanding ...
	args []value.Arg
	// argFormals holds, for each of args, the formal it was matched to or -1 for ...
	argFormals []int
	onExit     []value.Value
	dispatch   *dispatchInfo
}

// applyClosure calls a closure with arguments that are already promises (or constants).
func (i *Interpreter) applyClosure(call *value.Language, fn *value.Closure, args []value.Arg, caller *value.Env, d *dispatchInfo) value.Value {
	matched, dots, assigned := i.matchArgs(call, formalNames(fn), args)
	env := value.NewEnv(fn.Env)
	for k, f := range fn.Formals {
		if f.Name == "..." {
			env.Set("...", &value.Dots{Args: dots})
		} else if v := matched[k]; v != nil && v != value.Missing {
			env.Set(f.Name, v)
		} else if f.Value != value.Missing {
			p := value.NewPromise(f.Value, env)
			p.Default = true
			env.Set(f.Name, p)
		} else {
			env.Set(f.Name, value.Missing)
		}
	}
	if d != nil {
		d.define(env)
	}
	return i.runFrame(&frame{
		call:       call,
		fn:         fn,
		env:        env,
		caller:     caller,
		args:       args,
		argFormals: assigned,
		dispatch:   d,
	})
}

// runFrame pushes a frame, evaluates the closure body in it and pops it again, running
// any on.exit expressions however the body exits.
func (i *Interpreter) runFrame(fr *frame) (ret value.Value) {
	n := len(i.frames)
	i.frames = append(i.frames, fr)
	defer func() {
		i.frames = i.frames[:n]
	}()
	defer func() {
		r := recover()
		if r != nil {
			if sig, ok := r.(*returnSignal); ok && sig.env == fr.env {
				ret = sig.value
				i.visible = sig.visible
				r = nil
			} else if err, ok := r.(*Error); ok {
				err.Traceback = append(err.Traceback, deparseCall(fr.call))
			}
		}
		i.runOnExit(fr)
		if r != nil {
			panic(r)
		}
	}()
	return i.eval(fr.fn.Body, fr.env)
}

// runOnExit evaluates a frame's on.exit expressions in the order they were registered.
func (i *Interpreter) runOnExit(fr *frame) {
	if len(fr.onExit) == 0 {
		return
	}
	visible := i.visible
	exprs := fr.onExit
	fr.onExit = nil
	for _, expr := range exprs {
		i.eval(expr, fr.env)
	}
	i.visible = visible
}

// frameOf returns the index of the innermost frame evaluating in env, or -1 if env is
// not a function's environment.
func (i *Interpreter) frameOf(env *value.Env) int {
	for k := len(i.frames) - 1; k >= 0; k-- {
		if i.frames[k].env == env {
			return k
		}
	}
	return -1
}

// currentFrame returns the frame for env or raises an error naming the function that needed one.
func (c *callContext) currentFrame() *frame {
	k := c.i.frameOf(c.env)
	if k < 0 {
		c.errorf("%s called from outside a function", c.b.name)
	}
	return c.i.frames[k]
}

// parentFrame follows n links from env to the environments functions were called from.
func (i *Interpreter) parentFrame(env *value.Env, n int) *value.Env {
	for ; n > 0; n-- {
		k := i.frameOf(env)
		if k < 0 {
			return i.Global
		}
		env = i.frames[k].caller
	}
	return env
}

// frameNumber resolves the which argument of sys.call and friends to a frame index:
// zero or negative counts back from the current frame, positive counts from the outermost.
// The current frame is n (so frame number n is frames[n-1]).
func (c *callContext) frameNumber(which int) int {
	current := c.i.frameOf(c.env) + 1
	n := which
	if which <= 0 {
		n = current + which
	}
	if n < 0 || n > current || (which > 0 && n > len(c.i.frames)) {
		c.errorf("not that many frames on the stack")
	}
	return n
}

// sysParent returns the number of the frame that frame n was called from.
func (i *Interpreter) sysParent(n int) int {
	if n <= 0 || n > len(i.frames) {
		return 0
	}
	return i.frameOf(i.frames[n-1].caller) + 1
}
