package interp

import (
	"fmt"

	"github.com/thought-machine/rcore/src/value"
)

// A nativeFunc implements a builtin function natively.
type nativeFunc func(c *callContext, a *argList) value.Value

// A builtin is the native implementation behind a value.Builtin.
type builtin struct {
	name string
	// formals are matched against the supplied arguments the same way as for closures.
	// A "..." formal collects the rest.
	formals []string
	fn      nativeFunc
	// special builtins receive their arguments unevaluated.
	special bool
	// generic builtins dispatch on the class of their first argument before running.
	generic bool
	// group is the S3 group generic (Ops, Math or Summary) the builtin belongs to.
	group string
	// invisible builtins return their result invisibly.
	invisible bool
	// passVisible builtins leave visibility as whatever they last evaluated set it to.
	passVisible bool
	// allowEmpty builtins accept empty arguments in their ..., as in x[, 1].
	allowEmpty bool
}

// registerBuiltins sets up all the builtins in the base environment.
func (i *Interpreter) registerBuiltins() {
	registerControl(i)
	registerArith(i)
	registerMath(i)
	registerBitwise(i)
	registerStrings(i)
	registerVectors(i)
	registerSubset(i)
	registerApply(i)
	registerMatrix(i)
	registerAttr(i)
	registerTypes(i)
	registerEnv(i)
	registerLang(i)
	registerConditions(i)
	registerSession(i)
	registerTime(i)
	registerOutput(i)
	registerSerialize(i)
	i.Base.Set("T", value.Bool(true))
	i.Base.Set("F", value.Bool(false))
	i.Base.Set("pi", value.Num(3.141592653589793))
	i.Base.Set("LETTERS", value.CharacterOf(letters(true)...))
	i.Base.Set("letters", value.CharacterOf(letters(false)...))
	i.Base.Set("month.name", value.CharacterOf(monthNames...))
	i.Base.Set("month.abb", value.CharacterOf(monthAbbreviations...))
	log.Debug("Registered %d builtins", len(i.builtins))
}

func letters(upper bool) []string {
	ret := make([]string, 26)
	for j := range ret {
		if upper {
			ret[j] = string(rune('A' + j))
		} else {
			ret[j] = string(rune('a' + j))
		}
	}
	return ret
}

// setNativeCode registers a builtin implemented by the given function.
func (i *Interpreter) setNativeCode(name string, fn nativeFunc, formals ...string) *builtin {
	b := &builtin{name: name, fn: fn, formals: formals}
	i.builtins[name] = b
	i.Base.Set(name, &value.Builtin{Name: name})
	return b
}

// setSpecial registers a builtin that receives its arguments unevaluated.
func (i *Interpreter) setSpecial(name string, fn nativeFunc, formals ...string) *builtin {
	b := &builtin{name: name, fn: fn, formals: formals, special: true}
	i.builtins[name] = b
	i.Base.Set(name, &value.Builtin{Name: name, Special: true})
	return b
}

// alias binds another name to an existing builtin.
func (i *Interpreter) alias(name, existing string) {
	b := *i.builtins[existing]
	b.name = name
	i.builtins[name] = &b
	i.Base.Set(name, &value.Builtin{Name: name, Special: b.special})
}

// builtinValue returns the value.Builtin for a name, if there is one.
func (i *Interpreter) builtinValue(name string) (*value.Builtin, bool) {
	b, present := i.builtins[name]
	if !present {
		return nil, false
	}
	return &value.Builtin{Name: name, Special: b.special}, true
}

// A callContext is passed to every builtin; it identifies the call being made and the
// environment it was made from.
type callContext struct {
	i    *Interpreter
	call *value.Language
	env  *value.Env
	b    *builtin
	// owned is true when the first argument is the sole reference to its value and a
	// replacement function may modify it in place.
	owned bool
	// hidden is set when the result should be invisible.
	hidden bool
}

// fail raises an error of the given kind from this call.
func (c *callContext) fail(kind ErrorKind, format string, args ...interface{}) {
	c.i.raise(newError(kind, c.call, fmt.Sprintf(format, args...)))
}

// errorf raises an argument error from this call.
func (c *callContext) errorf(format string, args ...interface{}) {
	c.fail(ArgumentError, format, args...)
}

// typeErrorf raises a type error from this call.
func (c *callContext) typeErrorf(format string, args ...interface{}) {
	c.fail(TypeError, format, args...)
}

// domainErrorf raises a domain error from this call.
func (c *callContext) domainErrorf(format string, args ...interface{}) {
	c.fail(DomainError, format, args...)
}

// warningf signals a warning from this call.
func (c *callContext) warningf(format string, args ...interface{}) {
	c.i.warning(c.call, fmt.Sprintf(format, args...))
}

// check raises an error from this call if err is not nil.
func (c *callContext) check(err error) {
	if err != nil {
		c.i.raise(c.i.asError(err, c.call))
	}
}

// coerce converts a value to the given atomic type, raising any coercion warnings.
func (c *callContext) coerce(v value.Value, t value.Type) value.Vector {
	ret, w, err := value.Coerce(v, t)
	c.check(err)
	for _, msg := range w.Messages() {
		c.warningf("%s", msg)
	}
	vec, ok := ret.(value.Vector)
	if !ok {
		c.typeErrorf("cannot coerce type '%s' to vector of type '%s'", v.Type(), t)
	}
	return vec
}

// modifiable returns a version of v that this call may change in place.
func (c *callContext) modifiable(v value.Value) value.Value {
	if c.owned && !v.Shared() {
		return v
	}
	return v.Clone()
}

// invisible marks the result of this call as not to be printed.
func (c *callContext) invisible(v value.Value) value.Value {
	c.hidden = true
	return v
}

// alloc checks that a vector of length n may be allocated.
func (c *callContext) alloc(n int) {
	if n < 0 {
		c.errorf("invalid length")
	} else if uint64(n) > c.i.session.MaxVectorSize {
		c.fail(DomainError, "cannot allocate vector of length %d", n)
	}
}

// An argList holds the arguments of a builtin call matched against its formals.
type argList struct {
	c       *callContext
	formals []string
	// values holds the argument matched to each formal, or nil if it is missing.
	values []value.Value
	// dots holds the arguments that were matched to "...".
	dots []value.Arg
}

func (a *argList) index(name string) int {
	for k, f := range a.formals {
		if f == name {
			return k
		}
	}
	panic(fmt.Sprintf("builtin %s has no formal argument %s", a.c.b.name, name))
}

// has returns true if the named argument was supplied.
func (a *argList) has(name string) bool {
	return a.values[a.index(name)] != nil
}

// value returns the named argument, raising an error if it is missing.
func (a *argList) value(name string) value.Value {
	v := a.values[a.index(name)]
	if v == nil {
		a.c.errorf("argument \"%s\" is missing, with no default", name)
	}
	return v
}

// opt returns the named argument, or def if it is missing.
func (a *argList) opt(name string, def value.Value) value.Value {
	if v := a.values[a.index(name)]; v != nil {
		return v
	}
	return def
}

// vector returns the named argument, which must be a vector (NULL counts as an empty one).
func (a *argList) vector(name string) value.Vector {
	v := a.value(name)
	if value.IsNull(v) {
		return value.NewLogical(0)
	} else if vec, ok := v.(value.Vector); ok {
		return vec
	}
	a.c.typeErrorf("invalid '%s' argument", name)
	return nil
}

// str returns the named argument as a single string.
func (a *argList) str(name string) string {
	s, ok := asString(a.value(name))
	if !ok {
		a.c.errorf("invalid '%s' argument", name)
	}
	return s
}

// strOr is like str but returns def if the argument is missing.
func (a *argList) strOr(name, def string) string {
	if !a.has(name) {
		return def
	}
	return a.str(name)
}

// int returns the named argument as a single integer.
func (a *argList) int(name string) int {
	n, ok := asInt(a.value(name))
	if !ok {
		a.c.errorf("invalid '%s' argument", name)
	}
	return n
}

// intOr is like int but returns def if the argument is missing.
func (a *argList) intOr(name string, def int) int {
	if !a.has(name) || value.IsNull(a.value(name)) {
		return def
	}
	return a.int(name)
}

// num returns the named argument as a single double.
func (a *argList) num(name string) float64 {
	f, ok := asFloat(a.value(name))
	if !ok {
		a.c.errorf("invalid '%s' argument", name)
	}
	return f
}

// numOr is like num but returns def if the argument is missing.
func (a *argList) numOr(name string, def float64) float64 {
	if !a.has(name) {
		return def
	}
	return a.num(name)
}

// flag returns the named argument as a single non-NA logical.
func (a *argList) flag(name string) bool {
	b, ok := asFlag(a.value(name))
	if !ok {
		a.c.errorf("invalid '%s' argument", name)
	}
	return b
}

// flagOr is like flag but returns def if the argument is missing.
func (a *argList) flagOr(name string, def bool) bool {
	if !a.has(name) {
		return def
	}
	return a.flag(name)
}

// env returns the named argument as an environment.
func (a *argList) env(name string) *value.Env {
	env, ok := a.c.i.asEnvironment(a.value(name))
	if !ok {
		a.c.errorf("invalid '%s' argument", name)
	}
	return env
}

// envOr is like env but returns def if the argument is missing.
func (a *argList) envOr(name string, def *value.Env) *value.Env {
	if !a.has(name) {
		return def
	}
	return a.env(name)
}

// function returns the named argument as a function; a string names one to look up,
// the way match.fun does.
func (a *argList) function(name string) value.Value {
	return a.c.matchFun(a.value(name))
}

// matchFun resolves a function or the name of one.
func (c *callContext) matchFun(v value.Value) value.Value {
	if value.IsFunction(v) {
		return v
	}
	var name string
	switch v := v.(type) {
	case *value.Symbol:
		name = v.Name
	case *value.Character:
		if v.Len() != 1 || v.IsNA(0) {
			c.errorf("'%s' is not a function, character or symbol", value.Deparse(v))
		}
		name = v.At(0)
	default:
		c.errorf("'%s' is not a function, character or symbol", value.Deparse(v))
	}
	return c.i.findFunction(name, c.env, c.call)
}

// asString returns the first element of a value as a string.
func asString(v value.Value) (string, bool) {
	switch v := v.(type) {
	case *value.Character:
		if v.Len() > 0 && !v.IsNA(0) {
			return v.At(0), true
		}
		return "", false
	case *value.Symbol:
		return v.Name, true
	case value.Vector:
		if value.IsAtomic(v) && v.Len() > 0 && !v.IsNA(0) {
			s, _, err := value.Coerce(value.Elem(v, 0), value.TypeCharacter)
			if err == nil {
				return s.(*value.Character).At(0), true
			}
		}
	}
	return "", false
}

// asInt returns the first element of a value as an integer.
func asInt(v value.Value) (int, bool) {
	switch v := v.(type) {
	case *value.Integer:
		if v.Len() > 0 && !v.IsNA(0) {
			return v.At(0), true
		}
	case *value.Double:
		if v.Len() > 0 && !v.IsNA(0) && v.At(0) == v.At(0) {
			n, w := value.DoubleToInt(v.At(0))
			return n, w == 0
		}
	case *value.Logical:
		if v.Len() > 0 && !v.IsNA(0) {
			if v.At(0) {
				return 1, true
			}
			return 0, true
		}
	case *value.Character:
		if v.Len() > 0 && !v.IsNA(0) {
			if f, ok := value.ParseDouble(v.At(0)); ok {
				n, w := value.DoubleToInt(f)
				return n, w == 0 && f == f
			}
		}
	case *value.Complex:
		if v.Len() > 0 && !v.IsNA(0) {
			n, w := value.DoubleToInt(real(v.At(0)))
			return n, w == 0
		}
	}
	return 0, false
}

// asFloat returns the first element of a value as a double.
func asFloat(v value.Value) (float64, bool) {
	switch v := v.(type) {
	case *value.Double:
		if v.Len() > 0 && !v.IsNA(0) {
			return v.At(0), true
		}
	case *value.Character:
		if v.Len() > 0 && !v.IsNA(0) {
			return value.ParseDouble(v.At(0))
		}
	case *value.Complex:
		if v.Len() > 0 && !v.IsNA(0) {
			return real(v.At(0)), true
		}
	default:
		if n, ok := asInt(v); ok {
			return float64(n), true
		}
	}
	return 0, false
}

// asFlag returns the first element of a value as a non-NA logical.
func asFlag(v value.Value) (bool, bool) {
	switch v := v.(type) {
	case *value.Logical:
		if v.Len() > 0 && !v.IsNA(0) {
			return v.At(0), true
		}
	case *value.Character:
		if v.Len() > 0 && !v.IsNA(0) {
			return value.StringToLogical(v.At(0))
		}
	default:
		if f, ok := asFloat(v); ok && f == f {
			return f != 0, true
		}
	}
	return false, false
}

// asStrings returns a value as a slice of strings with NAs as "NA".
func asStrings(v value.Value) []string {
	if value.IsNull(v) {
		return nil
	}
	s, _, err := value.Coerce(v, value.TypeCharacter)
	if err != nil {
		return nil
	}
	chr := s.(*value.Character)
	ret := make([]string, chr.Len())
	for k := range ret {
		if chr.IsNA(k) {
			ret[k] = "NA"
		} else {
			ret[k] = chr.At(k)
		}
	}
	return ret
}

// boolValue returns a length-one logical that may be NA.
func boolValue(b, na bool) value.Value {
	if na {
		return value.NALogical()
	}
	return value.Bool(b)
}
