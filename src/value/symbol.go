package value

import (
	"github.com/thought-machine/rcore/src/cmap"
)

// A Symbol is an interned name. Two symbols with the same name are always the same pointer.
type Symbol struct {
	fixedHeader
	Name string
}

// symbols is the process-wide symbol table, shared between every interpreter.
var symbols = cmap.New[string, *Symbol](cmap.DefaultShardCount, cmap.XXHash)

// Intern returns the symbol with the given name.
func Intern(name string) *Symbol {
	return symbols.GetOrSet(name, func() *Symbol {
		return &Symbol{Name: name}
	})
}

// Missing is the empty symbol used to mark a missing argument.
var Missing = Intern("")

// DotsSymbol is the `...` symbol.
var DotsSymbol = Intern("...")

// Type implements the Value interface.
func (s *Symbol) Type() Type { return TypeSymbol }

// Len implements the Value interface.
func (s *Symbol) Len() int { return 1 }

// Clone implements the Value interface. Symbols are never copied.
func (s *Symbol) Clone() Value { return s }

// IsMissingArg returns true if the value is the missing argument marker.
func IsMissingArg(v Value) bool {
	return v == Value(Missing)
}

// A Builtin is a function implemented natively by the interpreter.
// Only its name is stored here; the interpreter owns the implementation table.
type Builtin struct {
	fixedHeader
	Name string
	// Special builtins receive their arguments unevaluated.
	Special bool
}

// Type implements the Value interface.
func (b *Builtin) Type() Type {
	if b.Special {
		return TypeSpecial
	}
	return TypeBuiltin
}

// Len implements the Value interface.
func (b *Builtin) Len() int { return 1 }

// Clone implements the Value interface.
func (b *Builtin) Clone() Value { return b }
