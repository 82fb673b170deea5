// Package interp implements evaluation of R language objects: promises and argument
// matching, call frames, S3 dispatch, the condition system and the builtin library.
//
// Errors inside the evaluator are raised by panicking with an *Error; Eval is the
// boundary that recovers them and returns them as ordinary Go errors.
package interp

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/thought-machine/rcore/src/cli/logging"
	"github.com/thought-machine/rcore/src/cmap"
	"github.com/thought-machine/rcore/src/metrics"
	"github.com/thought-machine/rcore/src/value"
)

var log = logging.Log

// An Interpreter evaluates R language objects. It is not safe for concurrent use;
// independent interpreters can run concurrently since all their state is their own.
type Interpreter struct {
	// Global is the global environment that top-level expressions are evaluated in.
	Global *value.Env
	// Base holds the builtins.
	Base *value.Env
	// Empty is the empty environment at the root of every chain.
	Empty *value.Env
	// Metrics receives counts of builtin calls, dispatches and conditions. It may be nil.
	Metrics *metrics.Metrics

	session  *Session
	parser   Parser
	builtins map[string]*builtin
	// methods is the S3 method table populated by registerS3method.
	methods  *cmap.Map[string, value.Value]
	frames   []*frame
	handlers []*handler
	restarts []*restart
	warnings []Warning
	visible  bool
	depth    int
	errmsg   string
	// owned is set just before calling a replacement builtin whose first argument
	// is bound to the assignment target and nowhere else.
	owned bool
}

// New creates a new interpreter with its own global environment. A nil session gets
// a fresh one from NewSession.
func New(session *Session) *Interpreter {
	if session == nil {
		session = NewSession()
	}
	i := &Interpreter{
		session:  session,
		parser:   SexpReader{},
		builtins: map[string]*builtin{},
		methods:  cmap.New[string, value.Value](cmap.SmallShardCount, cmap.XXHash),
		visible:  true,
	}
	i.Empty = value.NewNamedEnv("R_EmptyEnv", nil)
	i.Base = value.NewNamedEnv("base", i.Empty)
	i.Global = value.NewNamedEnv("R_GlobalEnv", i.Base)
	i.registerBuiltins()
	return i
}

// Session returns the session this interpreter uses.
func (i *Interpreter) Session() *Session {
	return i.session
}

// SetParser replaces the parser used by EvalString, parse() and str2lang().
func (i *Interpreter) SetParser(p Parser) {
	i.parser = p
}

// Eval evaluates an expression in the given environment, or the global environment if
// env is nil.
func (i *Interpreter) Eval(expr value.Value, env *value.Env) (ret value.Value, err error) {
	if env == nil {
		env = i.Global
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = i.handleErrors(r)
			ret = nil
		}
		i.Metrics.ObserveEval(time.Since(start))
	}()
	return i.eval(expr, env), nil
}

// EvalString parses some source text and evaluates each expression in it in the global
// environment, returning the value of the last one.
func (i *Interpreter) EvalString(src string) (value.Value, error) {
	exprs, err := i.parser.Parse(src)
	if err != nil {
		return nil, err
	}
	var ret value.Value = value.Null
	i.visible = false
	for _, expr := range exprs {
		if ret, err = i.Eval(expr, i.Global); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// Visible returns true if the result of the last evaluation should be printed.
func (i *Interpreter) Visible() bool {
	return i.visible
}

// Print prints a value to the session's stdout the way the top level does, dispatching
// to a print method if it has a class.
func (i *Interpreter) Print(v value.Value) error {
	call := &value.Language{Fn: value.Intern("print"), Args: []value.Arg{{Value: value.NewForcedPromise(v, v)}}}
	_, err := i.Eval(call, i.Global)
	return err
}

// handleErrors converts whatever unwound to the top level into an error and resets the
// interpreter's stacks.
func (i *Interpreter) handleErrors(r interface{}) error {
	i.frames = i.frames[:0]
	i.handlers = nil
	i.restarts = nil
	i.depth = 0
	i.visible = false
	switch r := r.(type) {
	case *Error:
		i.errmsg = r.header() + "\n"
		return r
	case *returnSignal:
		return newError(ArgumentError, nil, "no function to return from, jumping to top level")
	case *loopSignal:
		return newError(ArgumentError, nil, "no loop for break/next, jumping to top level")
	case *conditionUnwind, *restartUnwind:
		return newError(InternalError, nil, "condition unwound past its handler")
	case error:
		log.Debug("%v:\n %s", r, debug.Stack())
		return newError(InternalError, nil, r.Error())
	}
	log.Debug("%v:\n %s", r, debug.Stack())
	return newError(InternalError, nil, fmt.Sprint(r))
}

// A Warning is a deferred warning, as warnings() reports them.
type Warning struct {
	Message string
	// Call is the deparsed call the warning was raised in, or the empty string.
	Call string
}

func (w Warning) String() string {
	if w.Call == "" {
		return w.Message
	}
	return "In " + w.Call + " : " + w.Message
}

// TakeWarnings returns any deferred warnings and clears them.
func (i *Interpreter) TakeWarnings() []Warning {
	w := i.warnings
	i.warnings = nil
	return w
}
