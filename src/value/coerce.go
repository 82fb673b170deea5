package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Warnings records the lossy conversions made during a coercion.
type Warnings uint8

// The kinds of coercion warning.
const (
	WarnNAIntroduced Warnings = 1 << iota
	WarnIntegerRange
	WarnImaginaryDiscarded
	WarnRawOutOfRange
)

// Messages returns the warning messages R would produce for these warnings.
func (w Warnings) Messages() []string {
	var ret []string
	if w&WarnImaginaryDiscarded != 0 {
		ret = append(ret, "imaginary parts discarded in coercion")
	}
	if w&WarnNAIntroduced != 0 {
		ret = append(ret, "NAs introduced by coercion")
	}
	if w&WarnIntegerRange != 0 {
		ret = append(ret, "NAs introduced by coercion to integer range")
	}
	if w&WarnRawOutOfRange != 0 {
		ret = append(ret, "out-of-range values treated as 0 in coercion to raw")
	}
	return ret
}

// A CoercionError is returned when a value can't be converted to the requested type at all.
type CoercionError struct {
	From, To Type
	msg      string
}

func (err *CoercionError) Error() string {
	if err.msg != "" {
		return err.msg
	}
	return fmt.Sprintf("cannot coerce type '%s' to vector of type '%s'", err.From, err.To)
}

// Coerce converts a value to the given type element by element. Attributes of atomic
// vectors are kept. If the value already has that type it is returned unchanged.
func Coerce(v Value, to Type) (Value, Warnings, error) {
	if v.Type() == to {
		return v, 0, nil
	}
	switch to {
	case TypeLogical, TypeInteger, TypeDouble, TypeComplex, TypeCharacter, TypeRaw:
		return coerceAtomic(v, to)
	case TypeList:
		l, err := AsList(v)
		return l, 0, err
	case TypeExpression:
		l, err := AsList(v)
		if err != nil {
			return nil, 0, err
		}
		e := NewExpression(l.Len())
		for i, x := range l.Data() {
			e.Set(i, x)
		}
		return e, 0, nil
	case TypeSymbol:
		if c, ok := v.(*Character); ok && c.Len() > 0 && !c.IsNA(0) {
			return Intern(c.At(0)), 0, nil
		} else if IsAtomic(v) && v.Len() > 0 {
			s, _, err := coerceAtomic(v, TypeCharacter)
			if err != nil {
				return nil, 0, err
			}
			return Intern(s.(*Character).At(0)), 0, nil
		}
		return nil, 0, &CoercionError{msg: "invalid type/length (symbol/" + strconv.Itoa(v.Len()) + ") in vector allocation"}
	}
	return nil, 0, &CoercionError{From: v.Type(), To: to}
}

// MustCoerce is like Coerce but panics on error. It's intended for conversions that
// are known to succeed, e.g. between atomic vector types.
func MustCoerce(v Value, to Type) Value {
	ret, _, err := Coerce(v, to)
	if err != nil {
		panic(err)
	}
	return ret
}

// NewVector returns a new vector of the given type and length.
func NewVector(t Type, n int) (Vector, error) {
	switch t {
	case TypeLogical:
		return NewLogical(n), nil
	case TypeInteger:
		return NewInteger(n), nil
	case TypeDouble:
		return NewDouble(n), nil
	case TypeComplex:
		return NewComplex(n), nil
	case TypeCharacter:
		return NewCharacter(n), nil
	case TypeRaw:
		return NewRaw(n), nil
	case TypeList:
		return NewList(n), nil
	case TypeExpression:
		return NewExpression(n), nil
	}
	return nil, &CoercionError{msg: fmt.Sprintf("vector: cannot make a vector of mode '%s'.", t)}
}

func coerceAtomic(v Value, to Type) (Value, Warnings, error) {
	switch v := v.(type) {
	case *NullValue:
		out, _ := NewVector(to, 0)
		return out, 0, nil
	case *Symbol:
		if to == TypeCharacter {
			return Str(v.Name), 0, nil
		}
	case *List:
		return coerceList(v.Data(), v.Attrs(), to)
	case *Expression:
		return coerceList(v.Data(), v.Attrs(), to)
	case *Pairlist:
		vals := make([]Value, len(v.Items))
		for i, a := range v.Items {
			vals[i] = a.Value
		}
		return coerceList(vals, nil, to)
	case *Language:
		if to == TypeCharacter {
			out := NewCharacter(v.Len())
			for i := 0; i < v.Len(); i++ {
				if s, ok := v.At(i).(*Symbol); ok {
					out.Set(i, s.Name)
				} else {
					out.Set(i, Deparse(v.At(i)))
				}
			}
			return out, 0, nil
		}
	case Vector:
		out, _ := NewVector(to, v.Len())
		var w Warnings
		for i := 0; i < v.Len(); i++ {
			w |= convertElem(out, i, v, i)
		}
		out.SetAttrs(v.Attrs().Clone())
		return out, w, nil
	}
	return nil, 0, &CoercionError{From: v.Type(), To: to}
}

func coerceList(elems []Value, attrs *Attributes, to Type) (Value, Warnings, error) {
	out, _ := NewVector(to, len(elems))
	var w Warnings
	for i, x := range elems {
		if vec, ok := x.(Vector); ok && IsAtomic(x) && x.Len() == 1 {
			w |= convertElem(out, i, vec, 0)
		} else if to == TypeCharacter {
			if s, ok := x.(*Symbol); ok {
				out.(*Character).Set(i, s.Name)
			} else {
				out.(*Character).Set(i, Deparse(x))
			}
		} else {
			return nil, 0, &CoercionError{msg: fmt.Sprintf("(list) object cannot be coerced to type '%s'", to)}
		}
	}
	if names := attrs.Get("names"); names != nil {
		setRawAttr(out, "names", names)
	}
	return out, w, nil
}

// convertElem converts element j of src into element i of dst.
func convertElem(dst Vector, i int, src Vector, j int) Warnings {
	if src.IsNA(j) {
		dst.SetNA(i)
		if dst.Type() == TypeRaw {
			return WarnRawOutOfRange
		}
		return 0
	}
	switch src := src.(type) {
	case *Logical:
		if chr, ok := dst.(*Character); ok {
			chr.Set(i, FormatLogical(src.At(j)))
			return 0
		} else if src.At(j) {
			return setFromInt(dst, i, 1)
		}
		return setFromInt(dst, i, 0)
	case *Integer:
		return setFromInt(dst, i, src.At(j))
	case *Double:
		return setFromDouble(dst, i, src.At(j))
	case *Complex:
		return setFromComplex(dst, i, src.At(j))
	case *Character:
		return setFromString(dst, i, src.At(j))
	case *Raw:
		if chr, ok := dst.(*Character); ok {
			chr.Set(i, fmt.Sprintf("%02x", src.At(j)))
			return 0
		}
		return setFromInt(dst, i, int(src.At(j)))
	}
	return 0
}

func setFromInt(dst Vector, i int, x int) Warnings {
	switch dst := dst.(type) {
	case *Logical:
		dst.Set(i, x != 0)
	case *Integer:
		dst.Set(i, x)
	case *Double:
		dst.Set(i, float64(x))
	case *Complex:
		dst.Set(i, complex(float64(x), 0))
	case *Character:
		dst.Set(i, strconv.Itoa(x))
	case *Raw:
		if x < 0 || x > 255 {
			dst.Set(i, 0)
			return WarnRawOutOfRange
		}
		dst.Set(i, byte(x))
	}
	return 0
}

func setFromDouble(dst Vector, i int, x float64) Warnings {
	switch dst := dst.(type) {
	case *Logical:
		if math.IsNaN(x) {
			dst.SetNA(i)
		} else {
			dst.Set(i, x != 0)
		}
	case *Integer:
		n, w := DoubleToInt(x)
		if w != 0 || math.IsNaN(x) {
			dst.SetNA(i)
			return w
		}
		dst.Set(i, n)
	case *Double:
		dst.Set(i, x)
	case *Complex:
		dst.Set(i, complex(x, 0))
	case *Character:
		dst.Set(i, FormatDouble(x, 15))
	case *Raw:
		if math.IsNaN(x) || x < 0 || x >= 256 {
			dst.Set(i, 0)
			return WarnRawOutOfRange
		}
		dst.Set(i, byte(x))
	}
	return 0
}

func setFromComplex(dst Vector, i int, x complex128) Warnings {
	switch dst := dst.(type) {
	case *Logical:
		if math.IsNaN(real(x)) || math.IsNaN(imag(x)) {
			dst.SetNA(i)
		} else {
			dst.Set(i, x != 0)
		}
		return 0
	case *Complex:
		dst.Set(i, x)
		return 0
	case *Character:
		dst.Set(i, FormatComplex(x, 15))
		return 0
	}
	var w Warnings
	if imag(x) != 0 {
		w = WarnImaginaryDiscarded
	}
	return w | setFromDouble(dst, i, real(x))
}

func setFromString(dst Vector, i int, s string) Warnings {
	switch dst := dst.(type) {
	case *Logical:
		if b, ok := StringToLogical(s); ok {
			dst.Set(i, b)
		} else {
			dst.SetNA(i)
		}
		return 0
	case *Character:
		dst.Set(i, s)
		return 0
	case *Complex:
		if strings.TrimSpace(s) == "NA" {
			dst.SetNA(i)
			return 0
		} else if c, ok := ParseComplex(s); ok {
			dst.Set(i, c)
			return 0
		}
		dst.SetNA(i)
		return WarnNAIntroduced
	}
	if strings.TrimSpace(s) == "NA" {
		dst.SetNA(i)
		return 0
	}
	f, ok := ParseDouble(s)
	if !ok {
		dst.SetNA(i)
		if dst.Type() == TypeRaw {
			return WarnRawOutOfRange
		}
		return WarnNAIntroduced
	}
	return setFromDouble(dst, i, f)
}

// DoubleToInt converts a double to an integer the way as.integer does: truncating
// toward zero and flagging values outside the 32-bit range.
func DoubleToInt(x float64) (int, Warnings) {
	if math.IsNaN(x) {
		return 0, 0
	} else if x >= math.MaxInt32+1 || x <= math.MinInt32 {
		return 0, WarnIntegerRange
	}
	return int(x), 0
}

// StringToLogical parses a string the way as.logical does.
func StringToLogical(s string) (bool, bool) {
	switch s {
	case "TRUE", "true", "T", "True":
		return true, true
	case "FALSE", "false", "F", "False":
		return false, true
	}
	return false, false
}

// ParseDouble parses a string the way as.numeric does: surrounding whitespace is ignored,
// hexadecimal and Inf / NaN are accepted.
func ParseDouble(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) <= 1 && (strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X")) && !strings.ContainsAny(body, "pP.") {
		n, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		if strings.HasPrefix(s, "-") {
			return -float64(n), true
		}
		return float64(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// ParseComplex parses a string like "1+2i" the way as.complex does.
func ParseComplex(s string) (complex128, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "i") {
		f, ok := ParseDouble(s)
		return complex(f, 0), ok
	}
	body := s[:len(s)-1]
	// Find the sign that separates the real and imaginary parts, ignoring exponents.
	for i := len(body) - 1; i > 0; i-- {
		if (body[i] == '+' || body[i] == '-') && body[i-1] != 'e' && body[i-1] != 'E' {
			re, ok1 := ParseDouble(body[:i])
			im, ok2 := ParseDouble(body[i:])
			return complex(re, im), ok1 && ok2
		}
	}
	im, ok := ParseDouble(body)
	return complex(0, im), ok
}

// AsList converts a value to a list the way as.list does for the basic types.
// Environments are not handled here since their bindings may be unforced promises.
func AsList(v Value) (*List, error) {
	switch v := v.(type) {
	case *List:
		return v, nil
	case *NullValue:
		return NewList(0), nil
	case *Expression:
		l := ListOf(v.Data()...)
		l.SetAttrs(v.Attrs().Clone())
		return l, nil
	case *Language:
		l := NewList(v.Len())
		for i := 0; i < v.Len(); i++ {
			l.Set(i, v.At(i))
		}
		if names := Names(v); names != nil {
			setRawAttr(l, "names", names)
		}
		return l, nil
	case *Pairlist:
		l := NewList(v.Len())
		names := NewCharacter(v.Len())
		for i, a := range v.Items {
			l.Set(i, a.Value)
			names.Set(i, a.Name)
		}
		setRawAttr(l, "names", names)
		return l, nil
	case *Closure:
		l := NewList(len(v.Formals) + 1)
		names := NewCharacter(len(v.Formals) + 1)
		for i, a := range v.Formals {
			l.Set(i, a.Value)
			names.Set(i, a.Name)
		}
		l.Set(len(v.Formals), v.Body)
		setRawAttr(l, "names", names)
		return l, nil
	case *Symbol:
		return ListOf(v), nil
	case Vector:
		l := NewList(v.Len())
		for i := 0; i < v.Len(); i++ {
			l.Set(i, Elem(v, i))
		}
		if names := Attr(v, "names"); names != nil {
			setRawAttr(l, "names", names)
		}
		if dim := Attr(v, "dim"); dim != nil {
			setRawAttr(l, "dim", dim)
			if dn := Attr(v, "dimnames"); dn != nil {
				setRawAttr(l, "dimnames", dn)
			}
		}
		return l, nil
	}
	return nil, &CoercionError{From: v.Type(), To: TypeList}
}

// HigherType returns the wider of two types on the promotion lattice
// raw < logical < integer < double < complex < character < list < expression.
func HigherType(a, b Type) Type {
	if typeRank(a) >= typeRank(b) {
		return a
	}
	return b
}

func typeRank(t Type) int {
	switch t {
	case TypeNull:
		return 0
	case TypeRaw:
		return 1
	case TypeLogical:
		return 2
	case TypeInteger:
		return 3
	case TypeDouble:
		return 4
	case TypeComplex:
		return 5
	case TypeCharacter:
		return 6
	case TypeExpression:
		return 8
	}
	return 7
}
