package value

import (
	"github.com/bits-and-blooms/bitset"
)

// A Vector is implemented by the atomic vector types, lists and expression vectors.
type Vector interface {
	Value
	// IsNA returns true if element i is NA. It is false for NaN.
	IsNA(i int) bool
	// SetNA marks element i as NA (or the nearest equivalent for raw and list vectors).
	SetNA(i int)
	// Empty returns a new vector of the same type with n zero elements and no attributes.
	Empty(n int) Vector
	// CopyFrom copies element j of src, which must have the same type, into element i.
	CopyFrom(i int, src Vector, j int)
	// Resize changes the length of the vector in place, padding new elements with NA.
	Resize(n int)
}

// vector is the storage shared by all the vector types. NAs are tracked in a
// separate bitmask which is nil when the vector has never held one.
type vector[T any] struct {
	header
	data []T
	na   *bitset.BitSet
}

// Len returns the number of elements.
func (v *vector[T]) Len() int {
	return len(v.data)
}

// At returns element i. It is the zero value if the element is NA.
func (v *vector[T]) At(i int) T {
	return v.data[i]
}

// Set sets element i, clearing any NA flag on it.
func (v *vector[T]) Set(i int, x T) {
	v.data[i] = x
	if v.na != nil {
		v.na.Clear(uint(i))
	}
}

// Data returns the underlying slice. Callers must not modify it unless they own the vector.
func (v *vector[T]) Data() []T {
	return v.data
}

// IsNA returns true if element i is NA.
func (v *vector[T]) IsNA(i int) bool {
	return v.na != nil && v.na.Test(uint(i))
}

// SetNA marks element i as NA.
func (v *vector[T]) SetNA(i int) {
	if v.na == nil {
		v.na = bitset.New(uint(len(v.data)))
	}
	v.na.Set(uint(i))
	var zero T
	v.data[i] = zero
}

// AnyNA returns true if any element is NA.
func (v *vector[T]) AnyNA() bool {
	return v.na != nil && v.na.Any()
}

// CountNA returns the number of NA elements.
func (v *vector[T]) CountNA() int {
	if v.na == nil {
		return 0
	}
	return int(v.na.Count())
}

func (v *vector[T]) clone() vector[T] {
	c := vector[T]{
		header: v.cloneHeader(),
		data:   make([]T, len(v.data)),
	}
	copy(c.data, v.data)
	if v.na != nil && v.na.Any() {
		c.na = v.na.Clone()
	}
	return c
}

func (v *vector[T]) copyFrom(i int, src *vector[T], j int) {
	if src.IsNA(j) {
		v.SetNA(i)
	} else {
		v.Set(i, src.data[j])
	}
}

func (v *vector[T]) resize(n int, pad bool) {
	old := len(v.data)
	if n <= cap(v.data) {
		var zero T
		v.data = v.data[:n]
		for i := old; i < n; i++ {
			v.data[i] = zero
		}
	} else {
		data := make([]T, n)
		copy(data, v.data)
		v.data = data
	}
	if v.na != nil && n < old {
		for i := n; i < old; i++ {
			v.na.Clear(uint(i))
		}
	}
	if pad {
		for i := old; i < n; i++ {
			v.SetNA(i)
		}
	}
}

func newVector[T any](n int) vector[T] {
	return vector[T]{data: make([]T, n)}
}

func vectorOf[T any](data []T) vector[T] {
	return vector[T]{data: data}
}

// A Logical is a vector of TRUE / FALSE / NA.
type Logical struct{ vector[bool] }

// An Integer is a vector of 32-bit integers (held as Go ints, always within int32 range).
type Integer struct{ vector[int] }

// A Double is a vector of double-precision floats. NA and NaN are distinct.
type Double struct{ vector[float64] }

// A Complex is a vector of complex numbers.
type Complex struct{ vector[complex128] }

// A Character is a vector of strings. NA_character_ is tracked in the NA mask.
type Character struct{ vector[string] }

// A Raw is a vector of bytes. Raw vectors never contain NA.
type Raw struct{ vector[byte] }

// A List is a generic vector. Its elements are never nil; empty slots hold Null.
type List struct{ vector[Value] }

// An Expression is an expression vector, a list of language objects.
type Expression struct{ vector[Value] }

// NewLogical returns a logical vector of n FALSE elements.
func NewLogical(n int) *Logical { return &Logical{newVector[bool](n)} }

// NewInteger returns an integer vector of n zeroes.
func NewInteger(n int) *Integer { return &Integer{newVector[int](n)} }

// NewDouble returns a double vector of n zeroes.
func NewDouble(n int) *Double { return &Double{newVector[float64](n)} }

// NewComplex returns a complex vector of n zeroes.
func NewComplex(n int) *Complex { return &Complex{newVector[complex128](n)} }

// NewCharacter returns a character vector of n empty strings.
func NewCharacter(n int) *Character { return &Character{newVector[string](n)} }

// NewRaw returns a raw vector of n zero bytes.
func NewRaw(n int) *Raw { return &Raw{newVector[byte](n)} }

// NewList returns a list of n NULLs.
func NewList(n int) *List {
	l := &List{newVector[Value](n)}
	for i := range l.data {
		l.data[i] = Null
	}
	return l
}

// NewExpression returns an expression vector of n NULLs.
func NewExpression(n int) *Expression {
	e := &Expression{newVector[Value](n)}
	for i := range e.data {
		e.data[i] = Null
	}
	return e
}

// LogicalOf returns a logical vector of the given elements.
func LogicalOf(x ...bool) *Logical { return &Logical{vectorOf(x)} }

// IntegerOf returns an integer vector of the given elements.
func IntegerOf(x ...int) *Integer { return &Integer{vectorOf(x)} }

// DoubleOf returns a double vector of the given elements.
func DoubleOf(x ...float64) *Double { return &Double{vectorOf(x)} }

// ComplexOf returns a complex vector of the given elements.
func ComplexOf(x ...complex128) *Complex { return &Complex{vectorOf(x)} }

// CharacterOf returns a character vector of the given elements.
func CharacterOf(x ...string) *Character { return &Character{vectorOf(x)} }

// RawOf returns a raw vector of the given bytes.
func RawOf(x ...byte) *Raw { return &Raw{vectorOf(x)} }

// ListOf returns a list of the given elements.
func ListOf(x ...Value) *List {
	l := &List{vectorOf(x)}
	for i, v := range l.data {
		if v == nil {
			l.data[i] = Null
		} else {
			v.IncRef()
		}
	}
	return l
}

// ExpressionOf returns an expression vector of the given elements.
func ExpressionOf(x ...Value) *Expression {
	e := &Expression{vectorOf(x)}
	for _, v := range e.data {
		v.IncRef()
	}
	return e
}

// Bool returns a length-one logical.
func Bool(b bool) *Logical { return LogicalOf(b) }

// Int returns a length-one integer.
func Int(i int) *Integer { return IntegerOf(i) }

// Num returns a length-one double.
func Num(f float64) *Double { return DoubleOf(f) }

// Cplx returns a length-one complex.
func Cplx(c complex128) *Complex { return ComplexOf(c) }

// Str returns a length-one character vector.
func Str(s string) *Character { return CharacterOf(s) }

// NALogical returns a length-one logical NA.
func NALogical() *Logical { v := NewLogical(1); v.SetNA(0); return v }

// NAInteger returns NA_integer_.
func NAInteger() *Integer { v := NewInteger(1); v.SetNA(0); return v }

// NADouble returns NA_real_.
func NADouble() *Double { v := NewDouble(1); v.SetNA(0); return v }

// NAComplex returns NA_complex_.
func NAComplex() *Complex { v := NewComplex(1); v.SetNA(0); return v }

// NACharacter returns NA_character_.
func NACharacter() *Character { v := NewCharacter(1); v.SetNA(0); return v }

func (v *Logical) Type() Type         { return TypeLogical }
func (v *Logical) Clone() Value       { return &Logical{v.clone()} }
func (v *Logical) Empty(n int) Vector { return NewLogical(n) }
func (v *Logical) Resize(n int)       { v.resize(n, true) }
func (v *Logical) CopyFrom(i int, src Vector, j int) {
	v.copyFrom(i, &src.(*Logical).vector, j)
}

func (v *Integer) Type() Type         { return TypeInteger }
func (v *Integer) Clone() Value       { return &Integer{v.clone()} }
func (v *Integer) Empty(n int) Vector { return NewInteger(n) }
func (v *Integer) Resize(n int)       { v.resize(n, true) }
func (v *Integer) CopyFrom(i int, src Vector, j int) {
	v.copyFrom(i, &src.(*Integer).vector, j)
}

func (v *Double) Type() Type         { return TypeDouble }
func (v *Double) Clone() Value       { return &Double{v.clone()} }
func (v *Double) Empty(n int) Vector { return NewDouble(n) }
func (v *Double) Resize(n int)       { v.resize(n, true) }
func (v *Double) CopyFrom(i int, src Vector, j int) {
	v.copyFrom(i, &src.(*Double).vector, j)
}

func (v *Complex) Type() Type         { return TypeComplex }
func (v *Complex) Clone() Value       { return &Complex{v.clone()} }
func (v *Complex) Empty(n int) Vector { return NewComplex(n) }
func (v *Complex) Resize(n int)       { v.resize(n, true) }
func (v *Complex) CopyFrom(i int, src Vector, j int) {
	v.copyFrom(i, &src.(*Complex).vector, j)
}

func (v *Character) Type() Type         { return TypeCharacter }
func (v *Character) Clone() Value       { return &Character{v.clone()} }
func (v *Character) Empty(n int) Vector { return NewCharacter(n) }
func (v *Character) Resize(n int)       { v.resize(n, true) }
func (v *Character) CopyFrom(i int, src Vector, j int) {
	v.copyFrom(i, &src.(*Character).vector, j)
}

func (v *Raw) Type() Type         { return TypeRaw }
func (v *Raw) Clone() Value       { return &Raw{v.clone()} }
func (v *Raw) Empty(n int) Vector { return NewRaw(n) }
func (v *Raw) Resize(n int)       { v.resize(n, false) }
func (v *Raw) CopyFrom(i int, src Vector, j int) {
	v.Set(i, src.(*Raw).data[j])
}

// SetNA sets the element to zero since raw vectors can't hold NA.
func (v *Raw) SetNA(i int) { v.data[i] = 0 }

// IsNA is always false for raw vectors.
func (v *Raw) IsNA(i int) bool { return false }

func (v *List) Type() Type         { return TypeList }
func (v *List) Empty(n int) Vector { return NewList(n) }
func (v *List) Clone() Value {
	c := &List{v.clone()}
	for _, x := range c.data {
		x.IncRef()
	}
	return c
}

// Set replaces element i, maintaining the reference counts of the old and new elements.
func (v *List) Set(i int, x Value) {
	if x == nil {
		x = Null
	}
	x.IncRef()
	v.data[i].DecRef()
	v.data[i] = x
}

// SetNA sets element i to NULL.
func (v *List) SetNA(i int) { v.Set(i, Null) }

// IsNA is always false for list elements themselves.
func (v *List) IsNA(i int) bool { return false }

func (v *List) CopyFrom(i int, src Vector, j int) {
	switch src := src.(type) {
	case *List:
		v.Set(i, src.data[j])
	case *Expression:
		v.Set(i, src.data[j])
	}
}

func (v *List) Resize(n int) {
	old := len(v.data)
	for i := n; i < old; i++ {
		v.data[i].DecRef()
	}
	v.resize(n, false)
	for i := old; i < n; i++ {
		v.data[i] = Null
	}
}

func (v *Expression) Type() Type         { return TypeExpression }
func (v *Expression) Empty(n int) Vector { return NewExpression(n) }
func (v *Expression) Clone() Value {
	c := &Expression{v.clone()}
	for _, x := range c.data {
		x.IncRef()
	}
	return c
}

// Set replaces element i, maintaining the reference counts of the old and new elements.
func (v *Expression) Set(i int, x Value) {
	if x == nil {
		x = Null
	}
	x.IncRef()
	v.data[i].DecRef()
	v.data[i] = x
}

// SetNA sets element i to NULL.
func (v *Expression) SetNA(i int) { v.Set(i, Null) }

// IsNA is always false for expression elements.
func (v *Expression) IsNA(i int) bool { return false }

func (v *Expression) CopyFrom(i int, src Vector, j int) {
	switch src := src.(type) {
	case *List:
		v.Set(i, src.data[j])
	case *Expression:
		v.Set(i, src.data[j])
	}
}

func (v *Expression) Resize(n int) {
	old := len(v.data)
	for i := n; i < old; i++ {
		v.data[i].DecRef()
	}
	v.resize(n, false)
	for i := old; i < n; i++ {
		v.data[i] = Null
	}
}

// Elem returns element i of a vector as a value in its own right: the element itself
// for lists, or a length-one vector of the same type for atomic vectors.
func Elem(v Vector, i int) Value {
	switch v := v.(type) {
	case *List:
		return v.data[i]
	case *Expression:
		return v.data[i]
	}
	e := v.Empty(1)
	e.CopyFrom(0, v, i)
	return e
}

// IsNaN returns true if element i of a double or complex vector is NaN but not NA.
func IsNaN(v Value, i int) bool {
	switch v := v.(type) {
	case *Double:
		return !v.IsNA(i) && v.data[i] != v.data[i]
	case *Complex:
		c := v.data[i]
		return !v.IsNA(i) && (real(c) != real(c) || imag(c) != imag(c))
	}
	return false
}
