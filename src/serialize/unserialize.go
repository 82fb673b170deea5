package serialize

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/thought-machine/rcore/src/value"
)

// Unmarshal reads a single value in XDR format (version 2 or 3) from r.
func Unmarshal(r io.Reader, ctx *Context) (v value.Value, err error) {
	s := &reader{r: bufio.NewReader(r), ctx: ctx}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	var magic [2]byte
	s.read(magic[:])
	switch string(magic[:]) {
	case "X\n":
	case "A\n", "B\n":
		return nil, errorf("only the XDR format is supported")
	default:
		return nil, errorf("unknown input format")
	}
	version := s.int()
	s.int() // writer version
	s.int() // minimum reader version
	switch version {
	case 2:
	case 3:
		n := s.int()
		s.bytes(n) // native encoding; we always use UTF-8
	default:
		return nil, errorf("cannot read workspace version %d", version)
	}
	return s.item(), nil
}

type reader struct {
	r    *bufio.Reader
	ctx  *Context
	refs []value.Value
}

func (s *reader) read(buf []byte) {
	if _, err := io.ReadFull(s.r, buf); err != nil {
		panic(errorf("error reading from connection: %s", err))
	}
}

func (s *reader) int() int {
	var buf [4]byte
	s.read(buf[:])
	return int(int32(binary.BigEndian.Uint32(buf[:])))
}

func (s *reader) double() (float64, bool) {
	var buf [8]byte
	s.read(buf[:])
	bits := binary.BigEndian.Uint64(buf[:])
	f := math.Float64frombits(bits)
	return f, math.IsNaN(f) && uint32(bits) == 1954
}

func (s *reader) bytes(n int) []byte {
	if n < 0 {
		panic(errorf("negative length %d", n))
	}
	buf := make([]byte, n)
	s.read(buf)
	return buf
}

func (s *reader) length() int {
	n := s.int()
	if n == -1 {
		upper, lower := s.int(), s.int()
		return upper<<32 + int(uint32(lower))
	} else if n < 0 {
		panic(errorf("negative serialized vector length"))
	}
	return n
}

func (s *reader) env(e *value.Env, what string) *value.Env {
	if e == nil {
		panic(errorf("cannot read a reference to the %s environment without a session", what))
	}
	return e
}

func (s *reader) item() value.Value {
	return s.itemWithFlags(s.int())
}

func (s *reader) itemWithFlags(flags int) value.Value {
	t := flags & 0xFF
	levels := flags >> 12
	hasAttr := flags&hasAttrBit != 0
	hasTag := flags&hasTagBit != 0
	switch t {
	case nilValueSXP:
		return value.Null
	case emptyEnvSXP:
		return s.env(s.contextEnv(func(c *Context) *value.Env { return c.Empty }), "empty")
	case baseEnvSXP, baseNamespaceSXP:
		return s.env(s.contextEnv(func(c *Context) *value.Env { return c.Base }), "base")
	case globalEnvSXP:
		return s.env(s.contextEnv(func(c *Context) *value.Env { return c.Global }), "global")
	case missingArgSXP:
		return value.Missing
	case unboundValueSXP:
		return nil
	case refSXP:
		idx := flags >> 8
		if idx == 0 {
			idx = s.int()
		}
		if idx < 1 || idx > len(s.refs) {
			panic(errorf("invalid reference index %d", idx))
		}
		return s.refs[idx-1]
	}
	switch value.Type(t) {
	case value.TypeSymbol:
		name, _ := s.charsxp(s.int())
		sym := value.Intern(name)
		s.refs = append(s.refs, sym)
		return sym
	case value.TypeEnvironment:
		return s.environment()
	case value.TypePairlist:
		attrs, items := s.cells(flags, value.TypePairlist)
		p := &value.Pairlist{Items: items}
		p.SetAttrs(attrs)
		return p
	case value.TypeLanguage:
		attrs, items := s.cells(flags, value.TypePairlist)
		l := &value.Language{Fn: items[0].Value, Args: items[1:]}
		l.SetAttrs(attrs)
		return l
	case value.TypeDots:
		_, items := s.cells(flags, value.TypeDots)
		return &value.Dots{Args: items}
	case value.TypeClosure:
		var attrs *value.Attributes
		if hasAttr {
			attrs = s.attributes()
		}
		var env *value.Env
		if hasTag {
			env, _ = s.item().(*value.Env)
		}
		c := &value.Closure{Env: env}
		switch formals := s.item().(type) {
		case *value.Pairlist:
			c.Formals = formals.Items
		case *value.NullValue:
		default:
			panic(errorf("invalid formal argument list for closure"))
		}
		c.Body = s.item()
		c.SetAttrs(attrs)
		return c
	case value.TypePromise:
		if hasAttr {
			s.attributes()
		}
		var env *value.Env
		if hasTag {
			env, _ = s.item().(*value.Env)
		}
		val := s.item()
		expr := s.item()
		if val != nil {
			return value.NewForcedPromise(expr, val)
		}
		return value.NewPromise(expr, env)
	case value.TypeBuiltin, value.TypeSpecial:
		name := string(s.bytes(s.int()))
		if s.ctx == nil || s.ctx.Builtin == nil {
			return &value.Builtin{Name: name, Special: value.Type(t) == value.TypeSpecial}
		}
		b, ok := s.ctx.Builtin(name)
		if !ok {
			panic(errorf("unrecognized internal function name \"%s\"", name))
		}
		return b
	case value.TypeChar:
		str, na := s.charsxp(flags)
		if na {
			return value.NACharacter()
		}
		return value.Str(str)
	}
	v := s.vector(value.Type(t))
	if hasAttr {
		v.SetAttrs(s.attributes())
	}
	if levels&s4ObjectMask != 0 {
		v.SetS4(true)
	}
	return v
}

func (s *reader) contextEnv(f func(c *Context) *value.Env) *value.Env {
	if s.ctx == nil {
		return nil
	}
	return f(s.ctx)
}

// cells reads a chain of pairlist-style cells, the first of which has already had its
// flags read. Subsequent cells must have type rest.
func (s *reader) cells(flags int, rest value.Type) (*value.Attributes, []value.Arg) {
	var attrs *value.Attributes
	var items []value.Arg
	for first := true; ; first = false {
		if flags&hasAttrBit != 0 {
			a := s.attributes()
			if first {
				attrs = a
			}
		}
		var name string
		if flags&hasTagBit != 0 {
			switch tag := s.item().(type) {
			case *value.Symbol:
				name = tag.Name
			case *value.Character:
				if tag.Len() > 0 {
					name = tag.At(0)
				}
			}
		}
		v := s.item()
		if v == nil {
			v = value.Missing
		}
		items = append(items, value.Arg{Name: name, Value: v})
		flags = s.int()
		if t := flags & 0xFF; t == nilValueSXP {
			return attrs, items
		} else if value.Type(t) != rest {
			panic(errorf("unsupported dotted pair list of type %d", t))
		}
	}
}

func (s *reader) attributes() *value.Attributes {
	p, ok := s.item().(*value.Pairlist)
	if !ok {
		panic(errorf("attributes must be a pairlist"))
	}
	a := &value.Attributes{}
	for _, item := range p.Items {
		a.Set(item.Name, item.Value)
	}
	return a
}

func (s *reader) charsxp(flags int) (string, bool) {
	if value.Type(flags&0xFF) != value.TypeChar {
		panic(errorf("expected a CHARSXP, got type %d", flags&0xFF))
	}
	n := s.int()
	if n == -1 {
		return "", true
	}
	return string(s.bytes(n)), false
}

func (s *reader) environment() value.Value {
	e := value.NewEnv(nil)
	s.refs = append(s.refs, e)
	locked := s.int() != 0
	parent, ok := s.item().(*value.Env)
	if !ok {
		panic(errorf("environment enclosure is not an environment"))
	}
	e.SetParent(parent)
	s.bind(e, s.item())
	switch hashtab := s.item().(type) {
	case *value.List:
		for _, bucket := range hashtab.Data() {
			s.bind(e, bucket)
		}
	}
	if attrs, ok := s.item().(*value.Pairlist); ok {
		a := &value.Attributes{}
		for _, item := range attrs.Items {
			a.Set(item.Name, item.Value)
		}
		e.SetAttrs(a)
	}
	if locked {
		e.Lock(false)
	}
	return e
}

func (s *reader) bind(e *value.Env, frame value.Value) {
	if p, ok := frame.(*value.Pairlist); ok {
		for _, item := range p.Items {
			if err := e.Set(item.Name, item.Value); err != nil {
				panic(errorf("%s", err))
			}
		}
	}
}

func (s *reader) vector(t value.Type) value.Vector {
	n := s.length()
	switch t {
	case value.TypeLogical:
		v := value.NewLogical(n)
		for i := 0; i < n; i++ {
			if x := s.int(); x == naInteger {
				v.SetNA(i)
			} else {
				v.Set(i, x != 0)
			}
		}
		return v
	case value.TypeInteger:
		v := value.NewInteger(n)
		for i := 0; i < n; i++ {
			if x := s.int(); x == naInteger {
				v.SetNA(i)
			} else {
				v.Set(i, x)
			}
		}
		return v
	case value.TypeDouble:
		v := value.NewDouble(n)
		for i := 0; i < n; i++ {
			if x, na := s.double(); na {
				v.SetNA(i)
			} else {
				v.Set(i, x)
			}
		}
		return v
	case value.TypeComplex:
		v := value.NewComplex(n)
		for i := 0; i < n; i++ {
			re, na1 := s.double()
			im, na2 := s.double()
			if na1 || na2 {
				v.SetNA(i)
			} else {
				v.Set(i, complex(re, im))
			}
		}
		return v
	case value.TypeCharacter:
		v := value.NewCharacter(n)
		for i := 0; i < n; i++ {
			if str, na := s.charsxp(s.int()); na {
				v.SetNA(i)
			} else {
				v.Set(i, str)
			}
		}
		return v
	case value.TypeRaw:
		return value.RawOf(s.bytes(n)...)
	case value.TypeList:
		v := value.NewList(n)
		for i := 0; i < n; i++ {
			v.Set(i, s.item())
		}
		return v
	case value.TypeExpression:
		v := value.NewExpression(n)
		for i := 0; i < n; i++ {
			v.Set(i, s.item())
		}
		return v
	}
	panic(errorf("ReadItem: unknown type %d, perhaps written by later version of R", t))
}
