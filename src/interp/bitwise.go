package interp

import (
	"math"

	"github.com/thought-machine/rcore/src/value"
)

func registerBitwise(i *Interpreter) {
	i.setNativeCode("bitwAnd", bitwise(func(a, b int) (int, bool) { return int(int32(a) & int32(b)), true }), "a", "b")
	i.setNativeCode("bitwOr", bitwise(func(a, b int) (int, bool) { return int(int32(a) | int32(b)), true }), "a", "b")
	i.setNativeCode("bitwXor", bitwise(func(a, b int) (int, bool) { return int(int32(a) ^ int32(b)), true }), "a", "b")
	i.setNativeCode("bitwShiftL", bitwise(shiftLeft), "a", "n")
	i.setNativeCode("bitwShiftR", bitwise(shiftRight), "a", "n")
	i.setNativeCode("bitwNot", bitwNot, "a")
}

// shiftLeft shifts the 32 bits of a left, giving NA if any set bits are shifted out
// or the result is the bit pattern of NA_integer_.
func shiftLeft(a, n int) (int, bool) {
	if n < 0 || n > 31 {
		return 0, false
	}
	r := uint64(uint32(int32(a))) << uint(n)
	if r > math.MaxUint32 || int32(uint32(r)) == math.MinInt32 {
		return 0, false
	}
	return int(int32(uint32(r))), true
}

func shiftRight(a, n int) (int, bool) {
	if n < 0 || n > 31 {
		return 0, false
	}
	return int(int32(uint32(int32(a)) >> uint(n))), true
}

// bitwiseOperand converts an argument of the bitw functions to integer.
func (c *callContext) bitwiseOperand(name string, v value.Value) *value.Integer {
	switch v.(type) {
	case *value.Logical, *value.Integer, *value.Double:
		return c.coerce(v, value.TypeInteger).(*value.Integer)
	}
	c.typeErrorf("'%s' must be an integer or numeric vector", name)
	return nil
}

func bitwise(f func(a, b int) (int, bool)) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x := c.bitwiseOperand(a.formals[0], a.value(a.formals[0]))
		y := c.bitwiseOperand(a.formals[1], a.value(a.formals[1]))
		n, _ := value.RecycledLength(x.Len(), y.Len())
		ret := value.NewInteger(n)
		for k := 0; k < n; k++ {
			i, j := k%x.Len(), k%y.Len()
			if x.IsNA(i) || y.IsNA(j) {
				ret.SetNA(k)
			} else if r, ok := f(x.At(i), y.At(j)); ok {
				ret.Set(k, r)
			} else {
				ret.SetNA(k)
			}
		}
		return ret
	}
}

func bitwNot(c *callContext, a *argList) value.Value {
	x := c.bitwiseOperand("a", a.value("a"))
	ret := value.NewInteger(x.Len())
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) {
			ret.SetNA(k)
		} else {
			ret.Set(k, int(^int32(x.At(k))))
		}
	}
	return ret
}
