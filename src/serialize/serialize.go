// Package serialize implements R's binary serialization format (XDR, versions 2 and 3)
// and the RDS file wrapper around it.
package serialize

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/thought-machine/rcore/src/value"
)

// Special item codes that take the place of a type in the flags word.
const (
	refSXP           = 255
	nilValueSXP      = 254
	globalEnvSXP     = 253
	unboundValueSXP  = 252
	missingArgSXP    = 251
	baseNamespaceSXP = 247
	emptyEnvSXP      = 242
	baseEnvSXP       = 241
)

const (
	isObjectBit = 1 << 8
	hasAttrBit  = 1 << 9
	hasTagBit   = 1 << 10
)

// Bits of the "levels" (general purpose) field, stored in the top of the flags word.
const (
	s4ObjectMask = 1 << 4
	utf8Mask     = 1 << 3
	asciiMask    = 1 << 6
)

const (
	naInteger = math.MinInt32
	// naRealBits is the bit pattern of NA_real_: a NaN whose low word is 1954.
	naRealBits = 0x7FF00000000007A2
)

// rVersion is the R version we claim to have written the stream with (4.3.1).
const rVersion = 4<<16 | 3<<8 | 1

// minReaderVersion is the oldest R that can read each format version.
var minReaderVersion = map[int]int{
	2: 2<<16 | 3<<8,
	3: 3<<16 | 5<<8,
}

const nativeEncoding = "UTF-8"

// A Context resolves the parts of a stream that refer to the running session rather than
// being written out in full: the well-known environments and builtin functions.
type Context struct {
	Global, Base, Empty *value.Env
	// Builtin looks up a builtin by name when reading.
	Builtin func(name string) (*value.Builtin, bool)
}

// An Error describes a malformed or unsupported stream.
type Error struct {
	msg string
}

func (err *Error) Error() string {
	return err.msg
}

func errorf(msg string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(msg, args...)}
}

// Marshal writes a value to w in the XDR format of the given version (2 or 3).
func Marshal(w io.Writer, v value.Value, version int, ctx *Context) error {
	if version != 2 && version != 3 {
		return errorf("version %d not supported", version)
	}
	s := &writer{w: bufio.NewWriter(w), ctx: ctx, refs: map[value.Value]int{}}
	s.w.WriteString("X\n")
	s.int(version)
	s.int(rVersion)
	s.int(minReaderVersion[version])
	if version == 3 {
		s.int(len(nativeEncoding))
		s.w.WriteString(nativeEncoding)
	}
	s.item(v)
	if s.err != nil {
		return s.err
	}
	return s.w.Flush()
}

// Version returns the format version of a serialized stream from its header.
func Version(data []byte) (int, error) {
	if len(data) < 6 {
		return 0, errorf("serialized data is too short")
	} else if string(data[:2]) != "X\n" {
		return 0, errorf("unknown input format")
	}
	return int(int32(binary.BigEndian.Uint32(data[2:6]))), nil
}

type writer struct {
	w    *bufio.Writer
	ctx  *Context
	refs map[value.Value]int
	err  error
}

func (s *writer) int(i int) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(int32(i)))
	if _, err := s.w.Write(buf[:]); err != nil && s.err == nil {
		s.err = err
	}
}

func (s *writer) double(f float64, na bool) {
	var buf [8]byte
	bits := math.Float64bits(f)
	if na {
		bits = naRealBits
	}
	binary.BigEndian.PutUint64(buf[:], bits)
	if _, err := s.w.Write(buf[:]); err != nil && s.err == nil {
		s.err = err
	}
}

func (s *writer) string(str string) {
	if _, err := s.w.WriteString(str); err != nil && s.err == nil {
		s.err = err
	}
}

func (s *writer) flags(t int, v value.Value, hasTag bool) {
	f := t
	levels := 0
	if v != nil {
		if value.IsObject(v) {
			f |= isObjectBit
		}
		if v.Attrs().Len() > 0 {
			f |= hasAttrBit
		}
		if v.IsS4() {
			levels |= s4ObjectMask
		}
	}
	if hasTag {
		f |= hasTagBit
	}
	s.int(f | levels<<12)
}

// ref writes a back-reference if v has been written before and returns true, or
// otherwise records it and returns false.
func (s *writer) ref(v value.Value) bool {
	if idx, present := s.refs[v]; present {
		if idx > math.MaxInt32>>8 {
			s.int(refSXP)
			s.int(idx)
		} else {
			s.int(idx<<8 | refSXP)
		}
		return true
	}
	s.refs[v] = len(s.refs) + 1
	return false
}

func (s *writer) item(v value.Value) {
	if s.err != nil {
		return
	}
	switch v := v.(type) {
	case nil, *value.NullValue:
		s.int(nilValueSXP)
	case *value.Env:
		s.env(v)
	case *value.Symbol:
		if v == value.Missing {
			s.int(missingArgSXP)
		} else if !s.ref(v) {
			s.int(int(value.TypeSymbol))
			s.charsxp(v.Name, false)
		}
	case *value.Builtin:
		s.int(int(v.Type()))
		s.int(len(v.Name))
		s.string(v.Name)
	case *value.Pairlist:
		if len(v.Items) == 0 {
			s.int(nilValueSXP)
			return
		}
		s.cells(value.TypePairlist, value.TypePairlist, v, v.Items)
	case *value.Language:
		cells := append([]value.Arg{{Value: v.Fn}}, v.Args...)
		s.cells(value.TypeLanguage, value.TypePairlist, v, cells)
	case *value.Dots:
		if len(v.Args) == 0 {
			s.int(nilValueSXP)
			return
		}
		s.cells(value.TypeDots, value.TypeDots, nil, v.Args)
	case *value.Closure:
		s.flags(int(value.TypeClosure), v, true)
		s.attributes(v)
		s.item(v.Env)
		if len(v.Formals) == 0 {
			s.int(nilValueSXP)
		} else {
			s.cells(value.TypePairlist, value.TypePairlist, nil, v.Formals)
		}
		s.item(v.Body)
	case *value.Promise:
		hasEnv := !v.Forced() && v.Env != nil
		s.flags(int(value.TypePromise), nil, hasEnv)
		if hasEnv {
			s.item(v.Env)
		}
		if v.Forced() {
			s.item(v.Value())
		} else {
			s.int(unboundValueSXP)
		}
		s.item(v.Expr)
	case value.Vector:
		s.vector(v)
	default:
		s.err = errorf("cannot serialize a value of type '%s'", v.Type())
	}
}

func (s *writer) env(e *value.Env) {
	if s.ctx != nil {
		switch e {
		case s.ctx.Global:
			s.int(globalEnvSXP)
			return
		case s.ctx.Base:
			s.int(baseEnvSXP)
			return
		case s.ctx.Empty:
			s.int(emptyEnvSXP)
			return
		}
	}
	if e == nil || e.Parent() == nil {
		s.int(emptyEnvSXP)
		return
	} else if s.ref(e) {
		return
	}
	s.int(int(value.TypeEnvironment))
	if e.IsLocked() {
		s.int(1)
	} else {
		s.int(0)
	}
	s.item(e.Parent())
	names := e.Names(true)
	if len(names) == 0 {
		s.int(nilValueSXP)
	} else {
		frame := make([]value.Arg, len(names))
		for i, name := range names {
			v, _ := e.Get(name)
			frame[i] = value.Arg{Name: name, Value: v}
		}
		s.cells(value.TypePairlist, value.TypePairlist, nil, frame)
	}
	s.int(nilValueSXP) // hash table
	if e.Attrs().Len() == 0 {
		s.int(nilValueSXP)
	} else {
		s.attributeList(e.Attrs())
	}
}

// cells writes a chain of pairlist-style cells. The first cell has type first and carries
// the attributes of v (if any); the rest have type rest. The chain ends with NULL.
func (s *writer) cells(first, rest value.Type, v value.Value, items []value.Arg) {
	for i, item := range items {
		t := rest
		if i == 0 {
			t = first
		}
		f := int(t)
		if item.Name != "" {
			f |= hasTagBit
		}
		if i == 0 && v != nil && v.Attrs().Len() > 0 {
			f |= hasAttrBit
			if value.IsObject(v) {
				f |= isObjectBit
			}
		}
		s.int(f)
		if f&hasAttrBit != 0 {
			s.attributeList(v.Attrs())
		}
		if item.Name != "" {
			s.item(value.Intern(item.Name))
		}
		s.item(item.Value)
	}
	s.int(nilValueSXP)
}

func (s *writer) attributes(v value.Value) {
	if v.Attrs().Len() > 0 {
		s.attributeList(v.Attrs())
	}
}

func (s *writer) attributeList(a *value.Attributes) {
	items := make([]value.Arg, 0, a.Len())
	a.Each(func(name string, v value.Value) {
		items = append(items, value.Arg{Name: name, Value: v})
	})
	s.cells(value.TypePairlist, value.TypePairlist, nil, items)
}

func (s *writer) charsxp(str string, na bool) {
	if na {
		s.int(int(value.TypeChar))
		s.int(-1)
		return
	}
	levels := asciiMask
	for i := 0; i < len(str); i++ {
		if str[i] >= 0x80 {
			levels = utf8Mask
			break
		}
	}
	s.int(int(value.TypeChar) | levels<<12)
	s.int(len(str))
	s.string(str)
}

func (s *writer) vector(v value.Vector) {
	s.flags(int(v.Type()), v, false)
	s.int(v.Len())
	switch v := v.(type) {
	case *value.Logical:
		for i, b := range v.Data() {
			if v.IsNA(i) {
				s.int(naInteger)
			} else if b {
				s.int(1)
			} else {
				s.int(0)
			}
		}
	case *value.Integer:
		for i, x := range v.Data() {
			if v.IsNA(i) {
				s.int(naInteger)
			} else {
				s.int(x)
			}
		}
	case *value.Double:
		for i, x := range v.Data() {
			s.double(x, v.IsNA(i))
		}
	case *value.Complex:
		for i, x := range v.Data() {
			na := v.IsNA(i)
			s.double(real(x), na)
			s.double(imag(x), na)
		}
	case *value.Character:
		for i, x := range v.Data() {
			s.charsxp(x, v.IsNA(i))
		}
	case *value.Raw:
		if _, err := s.w.Write(v.Data()); err != nil && s.err == nil {
			s.err = err
		}
	case *value.List:
		for _, x := range v.Data() {
			s.item(x)
		}
	case *value.Expression:
		for _, x := range v.Data() {
			s.item(x)
		}
	}
	s.attributes(v)
}
