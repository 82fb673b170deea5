package value

import (
	"fmt"
)

// Attributes is an ordered mapping of attribute names to values.
// A nil *Attributes is valid and empty.
type Attributes struct {
	entries []attribute
}

type attribute struct {
	Name  string
	Value Value
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// Get returns the attribute of the given name, or nil if there isn't one.
func (a *Attributes) Get(name string) Value {
	if a == nil {
		return nil
	}
	for _, e := range a.entries {
		if e.Name == name {
			return e.Value
		}
	}
	return nil
}

// Set sets an attribute, replacing any existing one of the same name in place.
func (a *Attributes) Set(name string, v Value) {
	v.IncRef()
	for i, e := range a.entries {
		if e.Name == name {
			e.Value.DecRef()
			a.entries[i].Value = v
			return
		}
	}
	a.entries = append(a.entries, attribute{Name: name, Value: v})
}

// Remove deletes an attribute, returning true if it was present.
func (a *Attributes) Remove(name string) bool {
	if a == nil {
		return false
	}
	for i, e := range a.entries {
		if e.Name == name {
			e.Value.DecRef()
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Names returns the attribute names in order.
func (a *Attributes) Names() []string {
	if a == nil {
		return nil
	}
	ret := make([]string, len(a.entries))
	for i, e := range a.entries {
		ret[i] = e.Name
	}
	return ret
}

// Each calls f for each attribute in order.
func (a *Attributes) Each(f func(name string, v Value)) {
	if a == nil {
		return
	}
	for _, e := range a.entries {
		f(e.Name, e.Value)
	}
}

// Clone returns a copy of these attributes. The values themselves are shared.
func (a *Attributes) Clone() *Attributes {
	if a == nil || len(a.entries) == 0 {
		return nil
	}
	c := &Attributes{entries: make([]attribute, len(a.entries))}
	copy(c.entries, a.entries)
	for _, e := range c.entries {
		e.Value.IncRef()
	}
	return c
}

// Attr returns the named attribute of a value, or nil if it has none.
func Attr(v Value, name string) Value {
	return v.Attrs().Get(name)
}

// AttrError is returned when an attribute can't be set to the given value.
type AttrError struct {
	msg string
}

func (err *AttrError) Error() string {
	return err.msg
}

func attrErrorf(msg string, args ...interface{}) error {
	return &AttrError{msg: fmt.Sprintf(msg, args...)}
}

// SetAttr sets an attribute on a value after applying the structural rules for the
// reserved attributes (names, dim, dimnames, class, comment). Setting to NULL removes it.
// The value must not be shared; the caller is responsible for cloning it first.
func SetAttr(v Value, name string, val Value) error {
	switch v.Type() {
	case TypeNull:
		if IsNull(val) {
			return nil
		}
		return attrErrorf("attempt to set an attribute on NULL")
	case TypeSymbol, TypeBuiltin, TypeSpecial, TypeDots:
		return attrErrorf("cannot set attribute on a '%s'", v.Type())
	}
	if IsNull(val) {
		removeAttr(v, name)
		return nil
	}
	switch name {
	case "names":
		return setNames(v, val)
	case "dim":
		return setDim(v, val)
	case "dimnames":
		return setDimnames(v, val)
	case "class":
		if val.Type() != TypeCharacter {
			return attrErrorf("attempt to set invalid 'class' attribute")
		} else if val.Len() == 0 {
			removeAttr(v, name)
			return nil
		}
	case "comment":
		if val.Type() != TypeCharacter {
			return attrErrorf("attempt to set invalid 'comment' attribute")
		}
	}
	setRawAttr(v, name, val)
	return nil
}

func setRawAttr(v Value, name string, val Value) {
	a := v.Attrs()
	if a == nil {
		a = &Attributes{}
	}
	a.Set(name, val)
	v.SetAttrs(a)
}

func removeAttr(v Value, name string) {
	switch l := v.(type) {
	case *Language:
		if name == "names" {
			for i := range l.Args {
				l.Args[i].Name = ""
			}
			return
		}
	case *Pairlist:
		if name == "names" {
			for i := range l.Items {
				l.Items[i].Name = ""
			}
			return
		}
	}
	if a := v.Attrs(); a != nil {
		a.Remove(name)
		v.SetAttrs(a)
	}
}

func setNames(v Value, val Value) error {
	n := v.Len()
	names, _, err := Coerce(val, TypeCharacter)
	if err != nil {
		return err
	}
	chr := names.(*Character)
	if chr.Len() > n {
		return attrErrorf("'names' attribute [%d] must be the same length as the vector [%d]", chr.Len(), n)
	}
	// Language objects and pairlists keep their names on the arguments.
	switch l := v.(type) {
	case *Language:
		if chr.Len() > 0 && !chr.IsNA(0) && chr.At(0) != "" {
			// The function position can't carry a name in our representation.
			return attrErrorf("cannot name the function position of a call")
		}
		for i := range l.Args {
			if i+1 < chr.Len() && !chr.IsNA(i+1) {
				l.Args[i].Name = chr.At(i + 1)
			} else {
				l.Args[i].Name = ""
			}
		}
		return nil
	case *Pairlist:
		for i := range l.Items {
			if i < chr.Len() && !chr.IsNA(i) {
				l.Items[i].Name = chr.At(i)
			} else {
				l.Items[i].Name = ""
			}
		}
		return nil
	case *Env:
		return attrErrorf("names() applied to a non-vector")
	}
	if chr.Len() < n || chr.Attrs() != nil || chr == val {
		padded := NewCharacter(n)
		for i := 0; i < n; i++ {
			if i < chr.Len() {
				padded.CopyFrom(i, chr, i)
			} else {
				padded.SetNA(i)
			}
		}
		chr = padded
	}
	setRawAttr(v, "names", chr)
	return nil
}

func setDim(v Value, val Value) error {
	if !IsNumeric(val) {
		return attrErrorf("invalid second argument, must be vector or NULL")
	}
	if val.Len() == 0 {
		return attrErrorf("length-0 dimension vector is invalid")
	}
	dims, _, err := Coerce(val, TypeInteger)
	if err != nil {
		return err
	}
	di := dims.(*Integer)
	product := 1
	for i := 0; i < di.Len(); i++ {
		if di.IsNA(i) {
			return attrErrorf("the dims contain missing or negative values")
		} else if di.At(i) < 0 {
			return attrErrorf("the dims contain negative values")
		}
		product *= di.At(i)
	}
	if product != v.Len() {
		return attrErrorf("dims [product %d] do not match the length of object [%d]", product, v.Len())
	}
	if di == val {
		di = di.Clone().(*Integer)
	}
	di.SetAttrs(nil)
	setRawAttr(v, "dim", di)
	return nil
}

func setDimnames(v Value, val Value) error {
	dim := Dim(v)
	if dim == nil {
		return attrErrorf("'dimnames' applied to non-array")
	}
	l, ok := val.(*List)
	if !ok {
		return attrErrorf("'dimnames' must be a list")
	}
	if l.Len() != len(dim) {
		return attrErrorf("length of 'dimnames' [%d] must match that of 'dims' [%d]", l.Len(), len(dim))
	}
	for i, x := range l.Data() {
		if !IsNull(x) && x.Len() != dim[i] {
			return attrErrorf("length of 'dimnames' [%d] not equal to array extent", i+1)
		}
	}
	setRawAttr(v, "dimnames", val)
	return nil
}

// Names returns the names of a value as a character vector, or nil if it has none.
func Names(v Value) *Character {
	switch v := v.(type) {
	case *Language:
		named := false
		ret := NewCharacter(v.Len())
		for i, a := range v.Args {
			ret.Set(i+1, a.Name)
			named = named || a.Name != ""
		}
		if named {
			return ret
		}
		return nil
	case *Pairlist:
		ret := NewCharacter(v.Len())
		for i, a := range v.Items {
			ret.Set(i, a.Name)
		}
		return ret
	case *Dots:
		ret := NewCharacter(v.Len())
		for i, a := range v.Args {
			ret.Set(i, a.Name)
		}
		return ret
	case *Env:
		return CharacterOf(v.Names(true)...)
	}
	if names, ok := Attr(v, "names").(*Character); ok {
		return names
	}
	if dim := Dim(v); len(dim) == 1 {
		// A one-dimensional array takes its names from its dimnames.
		if dn, ok := Attr(v, "dimnames").(*List); ok && dn.Len() == 1 {
			if names, ok := dn.At(0).(*Character); ok {
				return names
			}
		}
	}
	return nil
}

// NameAt returns the i'th name of a value, or the empty string if it has none.
func NameAt(v Value, i int) string {
	if names := Names(v); names != nil && i < names.Len() && !names.IsNA(i) {
		return names.At(i)
	}
	return ""
}

// Dim returns the dim attribute of a value, or nil if it has none.
func Dim(v Value) []int {
	if d, ok := Attr(v, "dim").(*Integer); ok {
		return d.Data()
	}
	return nil
}

// Class returns the explicit class attribute of a value, or nil if it has none.
func Class(v Value) []string {
	if c, ok := Attr(v, "class").(*Character); ok {
		return c.Data()
	}
	return nil
}

// IsObject returns true if the value has a class attribute.
func IsObject(v Value) bool {
	return Attr(v, "class") != nil
}

// ImplicitClass returns the class vector used for S3 dispatch: the class attribute if
// there is one, otherwise one derived from the dimensions and storage type.
func ImplicitClass(v Value) []string {
	if cls := Class(v); cls != nil {
		return cls
	}
	var ret []string
	if dim := Dim(v); len(dim) == 2 {
		ret = append(ret, "matrix", "array")
	} else if dim != nil {
		ret = append(ret, "array")
	}
	switch v.Type() {
	case TypeInteger:
		return append(ret, "integer", "numeric")
	case TypeDouble:
		return append(ret, "double", "numeric")
	case TypeClosure, TypeBuiltin, TypeSpecial:
		return append(ret, "function")
	case TypeSymbol:
		return append(ret, "name")
	case TypeLanguage:
		return append(ret, languageClass(v.(*Language)))
	}
	return append(ret, v.Type().String())
}

// ClassOf returns the class of a value as class() reports it.
func ClassOf(v Value) []string {
	if cls := Class(v); cls != nil {
		return cls
	}
	if dim := Dim(v); len(dim) == 2 {
		return []string{"matrix", "array"}
	} else if dim != nil {
		return []string{"array"}
	}
	switch v.Type() {
	case TypeDouble:
		return []string{"numeric"}
	case TypeClosure, TypeBuiltin, TypeSpecial:
		return []string{"function"}
	case TypeSymbol:
		return []string{"name"}
	case TypeLanguage:
		return []string{languageClass(v.(*Language))}
	}
	return []string{v.Type().String()}
}

func languageClass(l *Language) string {
	switch l.FnName() {
	case "if", "for", "while", "(", "{", "=", "<-":
		return l.FnName()
	}
	return "call"
}

// Inherits returns the index of the first of the given classes that the value inherits
// from, or -1 if none.
func Inherits(v Value, what ...string) int {
	for _, c := range ImplicitClass(v) {
		for i, w := range what {
			if c == w {
				return i
			}
		}
	}
	return -1
}

// CopyMostAttributes copies all attributes except names, dim and dimnames from one value to another.
func CopyMostAttributes(from, to Value) {
	from.Attrs().Each(func(name string, v Value) {
		if name != "names" && name != "dim" && name != "dimnames" {
			setRawAttr(to, name, v)
		}
	})
	if from.IsS4() {
		to.SetS4(true)
	}
}

// StripAttributes returns the value without any attributes, cloning it if necessary.
func StripAttributes(v Value) Value {
	if v.Attrs() == nil {
		return v
	}
	if v.Type() == TypeEnvironment {
		return v
	}
	c := v.Clone()
	c.SetAttrs(nil)
	return c
}
