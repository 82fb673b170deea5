package value

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// An Env is an environment: a mutable frame of bindings with a link to its enclosure.
// Environments are reference values and are never copied.
type Env struct {
	header
	name     string
	parent   *Env
	vars     map[string]Value
	locked   bool
	readonly map[string]bool
}

// NewEnv creates a new, anonymous environment with the given enclosure.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: map[string]Value{}}
}

// NewNamedEnv creates a new environment with a fixed name, as reported by environmentName().
func NewNamedEnv(name string, parent *Env) *Env {
	e := NewEnv(parent)
	e.name = name
	return e
}

// Type implements the Value interface.
func (e *Env) Type() Type { return TypeEnvironment }

// Len returns the number of bindings in the environment.
func (e *Env) Len() int { return len(e.vars) }

// Clone implements the Value interface. Environments are references so this returns the same one.
func (e *Env) Clone() Value { return e }

// Name returns the fixed name of this environment, or the empty string if it has none.
func (e *Env) Name() string {
	return e.name
}

// Parent returns the enclosing environment, or nil for the empty environment.
func (e *Env) Parent() *Env {
	return e.parent
}

// SetParent changes the enclosing environment.
func (e *Env) SetParent(parent *Env) {
	e.parent = parent
}

// Get returns the binding for a name in this frame only.
func (e *Env) Get(name string) (Value, bool) {
	v, present := e.vars[name]
	return v, present
}

// Has returns true if this frame has a binding for the name.
func (e *Env) Has(name string) bool {
	_, present := e.vars[name]
	return present
}

// Lookup finds a binding by walking the enclosure chain. It returns the value and the
// environment it was found in, or nil, nil if it isn't bound anywhere.
func (e *Env) Lookup(name string) (Value, *Env) {
	for env := e; env != nil; env = env.parent {
		if v, present := env.vars[name]; present {
			return v, env
		}
	}
	return nil, nil
}

// BindingError is returned when a binding can't be changed.
type BindingError struct {
	msg string
}

func (err *BindingError) Error() string {
	return err.msg
}

// Set binds a name in this frame, replacing any existing binding.
func (e *Env) Set(name string, v Value) error {
	old, present := e.vars[name]
	if present {
		if e.readonly[name] {
			return &BindingError{msg: fmt.Sprintf("cannot change value of locked binding for '%s'", name)}
		}
		if old == v {
			return nil
		}
		old.DecRef()
	} else if e.locked {
		return &BindingError{msg: "cannot add bindings to a locked environment"}
	}
	v.IncRef()
	e.vars[name] = v
	return nil
}

// Remove deletes a binding from this frame, returning true if it was there.
func (e *Env) Remove(name string) (bool, error) {
	old, present := e.vars[name]
	if !present {
		return false, nil
	} else if e.locked {
		return false, &BindingError{msg: "cannot remove bindings from a locked environment"}
	}
	old.DecRef()
	delete(e.vars, name)
	delete(e.readonly, name)
	return true, nil
}

// Names returns the sorted names bound in this frame. Names beginning with a dot are
// only included if all is true.
func (e *Env) Names(all bool) []string {
	names := maps.Keys(e.vars)
	if !all {
		visible := names[:0]
		for _, name := range names {
			if !strings.HasPrefix(name, ".") {
				visible = append(visible, name)
			}
		}
		names = visible
	}
	slices.Sort(names)
	return names
}

// Lock locks the environment so no bindings can be added or removed; if bindings is
// true then all its existing bindings are locked too.
func (e *Env) Lock(bindings bool) {
	e.locked = true
	if bindings {
		for name := range e.vars {
			e.LockBinding(name)
		}
	}
}

// IsLocked returns true if the environment is locked.
func (e *Env) IsLocked() bool {
	return e.locked
}

// LockBinding prevents the given binding from being changed.
func (e *Env) LockBinding(name string) error {
	if !e.Has(name) {
		return &BindingError{msg: fmt.Sprintf("no binding for \"%s\"", name)}
	}
	if e.readonly == nil {
		e.readonly = map[string]bool{}
	}
	e.readonly[name] = true
	return nil
}

// UnlockBinding allows the given binding to be changed again.
func (e *Env) UnlockBinding(name string) error {
	if !e.Has(name) {
		return &BindingError{msg: fmt.Sprintf("no binding for \"%s\"", name)}
	}
	delete(e.readonly, name)
	return nil
}

// BindingIsLocked returns true if the given binding is locked.
func (e *Env) BindingIsLocked(name string) (bool, error) {
	if !e.Has(name) {
		return false, &BindingError{msg: fmt.Sprintf("no binding for \"%s\"", name)}
	}
	return e.readonly[name], nil
}
