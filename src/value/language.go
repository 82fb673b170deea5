package value

// An Arg is a possibly named element of a call, pairlist or `...`.
type Arg struct {
	Name  string
	Value Value
}

// A Language value is an unevaluated function call.
type Language struct {
	header
	Fn   Value
	Args []Arg
}

// NewCall returns a call of the named function with unnamed arguments.
func NewCall(fn string, args ...Value) *Language {
	l := &Language{Fn: Intern(fn), Args: make([]Arg, len(args))}
	for i, a := range args {
		l.Args[i].Value = a
	}
	return l
}

// Type implements the Value interface.
func (l *Language) Type() Type { return TypeLanguage }

// Len implements the Value interface; the function counts as the first element.
func (l *Language) Len() int { return 1 + len(l.Args) }

// Clone implements the Value interface.
func (l *Language) Clone() Value {
	c := &Language{header: l.cloneHeader(), Fn: l.Fn, Args: make([]Arg, len(l.Args))}
	copy(c.Args, l.Args)
	return c
}

// FnName returns the name of the function being called, or the empty string if it
// isn't called by name.
func (l *Language) FnName() string {
	if s, ok := l.Fn.(*Symbol); ok {
		return s.Name
	}
	return ""
}

// At returns element i, where element 0 is the function.
func (l *Language) At(i int) Value {
	if i == 0 {
		return l.Fn
	}
	return l.Args[i-1].Value
}

// A Pairlist is a list of tagged values, used for formal argument lists.
type Pairlist struct {
	header
	Items []Arg
}

// Type implements the Value interface.
func (p *Pairlist) Type() Type { return TypePairlist }

// Len implements the Value interface.
func (p *Pairlist) Len() int { return len(p.Items) }

// Clone implements the Value interface.
func (p *Pairlist) Clone() Value {
	c := &Pairlist{header: p.cloneHeader(), Items: make([]Arg, len(p.Items))}
	copy(c.Items, p.Items)
	return c
}

// A Closure is a function defined in R.
type Closure struct {
	header
	// Formals holds the formal arguments; the value is the default expression, or Missing if there is none.
	Formals []Arg
	Body    Value
	Env     *Env
}

// Type implements the Value interface.
func (c *Closure) Type() Type { return TypeClosure }

// Len implements the Value interface.
func (c *Closure) Len() int { return 1 }

// Clone implements the Value interface. The environment is shared with the original.
func (c *Closure) Clone() Value {
	return &Closure{header: c.cloneHeader(), Formals: c.Formals, Body: c.Body, Env: c.Env}
}

// A Promise is a lazily evaluated argument. It is forced at most once; after that the
// expression is kept for substitute() but the environment is released.
type Promise struct {
	fixedHeader
	Expr Value
	Env  *Env
	// Default is true for promises created from a formal's default expression.
	Default bool
	value   Value
	forcing bool
}

// NewPromise returns a new unforced promise.
func NewPromise(expr Value, env *Env) *Promise {
	return &Promise{Expr: expr, Env: env}
}

// NewForcedPromise returns a promise that has already been evaluated to the given value.
func NewForcedPromise(expr, v Value) *Promise {
	v.IncRef()
	return &Promise{Expr: expr, value: v}
}

// Type implements the Value interface.
func (p *Promise) Type() Type { return TypePromise }

// Len implements the Value interface.
func (p *Promise) Len() int { return 1 }

// Clone implements the Value interface.
func (p *Promise) Clone() Value { return p }

// Forced returns true if the promise has been evaluated.
func (p *Promise) Forced() bool {
	return p.value != nil
}

// Forcing returns true while the promise is being evaluated.
func (p *Promise) Forcing() bool {
	return p.forcing
}

// Value returns the value of a forced promise, or nil if it hasn't been forced.
func (p *Promise) Value() Value {
	return p.value
}

// Force evaluates the promise if needed using the given function and returns its value.
// The caller must check Forcing() first to detect recursive references.
func (p *Promise) Force(eval func(expr Value, env *Env) Value) Value {
	if p.value != nil {
		return p.value
	}
	p.forcing = true
	defer func() { p.forcing = false }()
	v := eval(p.Expr, p.Env)
	v.IncRef()
	p.value = v
	p.Env = nil
	return v
}

// Dots holds the arguments matched to `...` in a function call.
type Dots struct {
	fixedHeader
	Args []Arg
}

// Type implements the Value interface.
func (d *Dots) Type() Type { return TypeDots }

// Len implements the Value interface.
func (d *Dots) Len() int { return len(d.Args) }

// Clone implements the Value interface.
func (d *Dots) Clone() Value { return d }
