// Package value implements the in-memory representation of R values: vectors with
// per-element NA masks, ordered attributes, environments, closures and language objects.
//
// Values are logically immutable. Each carries a small reference count which the
// evaluator bumps whenever a value is stored somewhere (an environment binding, a
// list slot, an attribute or a forced promise); code that wants to modify a value in
// place must first check Shared() and Clone() if it returns true.
package value

import "fmt"

// A Type is the storage type of a value. The numeric codes match R's SEXPTYPEs since
// they are written verbatim into serialized streams.
type Type uint8

// The storage types.
const (
	TypeNull        Type = 0
	TypeSymbol      Type = 1
	TypePairlist    Type = 2
	TypeClosure     Type = 3
	TypeEnvironment Type = 4
	TypePromise     Type = 5
	TypeLanguage    Type = 6
	TypeSpecial     Type = 7
	TypeBuiltin     Type = 8
	TypeChar        Type = 9
	TypeLogical     Type = 10
	TypeInteger     Type = 13
	TypeDouble      Type = 14
	TypeComplex     Type = 15
	TypeCharacter   Type = 16
	TypeDots        Type = 17
	TypeAny         Type = 18
	TypeList        Type = 19
	TypeExpression  Type = 20
	TypeRaw         Type = 24
	TypeS4          Type = 25
)

var typeNames = map[Type]string{
	TypeNull:        "NULL",
	TypeSymbol:      "symbol",
	TypePairlist:    "pairlist",
	TypeClosure:     "closure",
	TypeEnvironment: "environment",
	TypePromise:     "promise",
	TypeLanguage:    "language",
	TypeSpecial:     "special",
	TypeBuiltin:     "builtin",
	TypeChar:        "char",
	TypeLogical:     "logical",
	TypeInteger:     "integer",
	TypeDouble:      "double",
	TypeComplex:     "complex",
	TypeCharacter:   "character",
	TypeDots:        "...",
	TypeAny:         "any",
	TypeList:        "list",
	TypeExpression:  "expression",
	TypeRaw:         "raw",
	TypeS4:          "S4",
}

// String returns the name of the type as typeof() reports it.
func (t Type) String() string {
	if s, present := typeNames[t]; present {
		return s
	}
	return fmt.Sprintf("unknown type #%d", t)
}

// TypeFromString returns the type with the given typeof() name.
// "numeric" is accepted as an alias for "double".
func TypeFromString(s string) (Type, bool) {
	if s == "numeric" {
		return TypeDouble, true
	} else if s == "name" {
		return TypeSymbol, true
	}
	for t, name := range typeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

// A Value is any R value.
type Value interface {
	// Type returns the storage type of this value.
	Type() Type
	// Len returns the length of the value as length() reports it.
	Len() int
	// Attrs returns the attributes of this value, which may be nil.
	Attrs() *Attributes
	// SetAttrs replaces the attributes of this value. It does no validation; see SetAttr for that.
	SetAttrs(a *Attributes)
	// IncRef records that one more container refers to this value.
	IncRef()
	// DecRef records that a container no longer refers to this value.
	DecRef()
	// Shared returns true if more than one container may refer to this value, in which case
	// it must be cloned before being modified.
	Shared() bool
	// IsS4 returns true if the S4 object bit is set.
	IsS4() bool
	// SetS4 sets or clears the S4 object bit.
	SetS4(s4 bool)
	// Clone returns a shallow copy of this value that is safe to modify.
	// Reference types (environments, symbols, builtins) return themselves.
	Clone() Value

	markConstant()
}

// constantRefs is the refcount given to values that must never be modified in place,
// for example literals that are part of parsed code.
const constantRefs = 1 << 30

// header is embedded into every mutable value.
type header struct {
	attrs *Attributes
	refs  int32
	s4    bool
}

func (h *header) Attrs() *Attributes {
	return h.attrs
}

func (h *header) SetAttrs(a *Attributes) {
	if a != nil && a.Len() == 0 {
		a = nil
	}
	h.attrs = a
}

func (h *header) IncRef() {
	if h.refs < constantRefs {
		h.refs++
	}
}

func (h *header) DecRef() {
	if h.refs > 0 && h.refs < constantRefs {
		h.refs--
	}
}

func (h *header) Shared() bool {
	return h.refs > 1
}

func (h *header) IsS4() bool {
	return h.s4
}

func (h *header) SetS4(s4 bool) {
	h.s4 = s4
}

func (h *header) markConstant() {
	h.refs = constantRefs
}

// cloneHeader returns a copy of the header for a freshly cloned value.
func (h *header) cloneHeader() header {
	return header{attrs: h.attrs.Clone(), s4: h.s4}
}

// fixedHeader is embedded into values that are singletons or shared across sessions;
// they never carry attributes and are always considered shared.
type fixedHeader struct{}

func (fixedHeader) Attrs() *Attributes     { return nil }
func (fixedHeader) SetAttrs(a *Attributes) {}
func (fixedHeader) IncRef()                {}
func (fixedHeader) DecRef()                {}
func (fixedHeader) Shared() bool           { return true }
func (fixedHeader) IsS4() bool             { return false }
func (fixedHeader) SetS4(s4 bool)          {}
func (fixedHeader) markConstant()          {}

// MarkConstant marks a value, and everything reachable from it through lists and
// language objects, as never modifiable in place. Readers call this on literals.
func MarkConstant(v Value) {
	v.markConstant()
	switch v := v.(type) {
	case *List:
		for _, x := range v.data {
			MarkConstant(x)
		}
	case *Expression:
		for _, x := range v.data {
			MarkConstant(x)
		}
	case *Language:
		MarkConstant(v.Fn)
		for _, a := range v.Args {
			MarkConstant(a.Value)
		}
	case *Pairlist:
		for _, a := range v.Items {
			MarkConstant(a.Value)
		}
	}
}

// NullValue is the type of the NULL singleton.
type NullValue struct {
	fixedHeader
}

// Null is the one and only NULL.
var Null = &NullValue{}

// Type implements the Value interface.
func (n *NullValue) Type() Type { return TypeNull }

// Len implements the Value interface.
func (n *NullValue) Len() int { return 0 }

// Clone implements the Value interface.
func (n *NullValue) Clone() Value { return n }

// IsNull returns true if the value is NULL (or a nil interface).
func IsNull(v Value) bool {
	return v == nil || v == Value(Null)
}

// IsAtomic returns true for the atomic vector types.
func IsAtomic(v Value) bool {
	switch v.Type() {
	case TypeLogical, TypeInteger, TypeDouble, TypeComplex, TypeCharacter, TypeRaw:
		return true
	}
	return false
}

// IsNumeric returns true for integer, double and logical vectors (the types arithmetic accepts).
func IsNumeric(v Value) bool {
	switch v.Type() {
	case TypeLogical, TypeInteger, TypeDouble:
		return true
	}
	return false
}

// IsFunction returns true for closures and builtins.
func IsFunction(v Value) bool {
	switch v.Type() {
	case TypeClosure, TypeBuiltin, TypeSpecial:
		return true
	}
	return false
}

// IsVector returns true for atomic vectors, lists and expression vectors.
func IsVector(v Value) bool {
	_, ok := v.(Vector)
	return ok
}
