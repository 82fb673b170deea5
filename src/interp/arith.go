package interp

import (
	"math"
	"math/cmplx"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/thought-machine/rcore/src/value"
)

const maxInt = math.MaxInt32

func registerArith(i *Interpreter) {
	for _, op := range []string{"+", "-", "*", "/", "^", "%%", "%/%"} {
		i.setNativeCode(op, arith(op), "e1", "e2").group = "Ops"
	}
	for _, op := range []string{"==", "!=", "<", ">", "<=", ">="} {
		i.setNativeCode(op, compare(op), "e1", "e2").group = "Ops"
	}
	i.setNativeCode("&", logic(true), "e1", "e2").group = "Ops"
	i.setNativeCode("|", logic(false), "e1", "e2").group = "Ops"
	i.setNativeCode("!", not, "x").group = "Ops"
	i.setNativeCode("xor", xor, "x", "y")
	i.setNativeCode("isTRUE", isTRUE(true), "x")
	i.setNativeCode("isFALSE", isTRUE(false), "x")
	i.setNativeCode("any", anyAll(true), "...", "na.rm").group = "Summary"
	i.setNativeCode("all", anyAll(false), "...", "na.rm").group = "Summary"
	i.setNativeCode("sum", sum, "...", "na.rm").group = "Summary"
	i.setNativeCode("prod", prod, "...", "na.rm").group = "Summary"
	i.setNativeCode("max", extreme(true), "...", "na.rm").group = "Summary"
	i.setNativeCode("min", extreme(false), "...", "na.rm").group = "Summary"
	i.setNativeCode("range", rangeFunc, "...", "na.rm", "finite").group = "Summary"
	i.setNativeCode("mean", mean, "x", "trim", "na.rm", "...").generic = true
}

// binaryLength checks that two operands are compatible and returns the length of the result.
func (c *callContext) binaryLength(x, y value.Vector) int {
	n, partial := value.RecycledLength(x.Len(), y.Len())
	xd, yd := value.Dim(x), value.Dim(y)
	if xd != nil && yd != nil && !slices.Equal(xd, yd) {
		c.errorf("non-conformable arrays")
	} else if n > 0 && xd != nil && y.Len() > x.Len() {
		c.errorf("dims [product %d] do not match the length of object [%d]", x.Len(), y.Len())
	} else if n > 0 && yd != nil && x.Len() > y.Len() {
		c.errorf("dims [product %d] do not match the length of object [%d]", y.Len(), x.Len())
	}
	if partial {
		c.warningf("longer object length is not a multiple of shorter object length")
	}
	return n
}

func arith(op string) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		if !a.has("e2") {
			return c.unaryArith(op, a.value("e1"))
		}
		return c.arith(op, a.value("e1"), a.value("e2"))
	}
}

func (c *callContext) arithOperand(v value.Value) value.Vector {
	switch v := v.(type) {
	case *value.NullValue:
		return value.NewInteger(0)
	case *value.Logical, *value.Integer, *value.Double, *value.Complex:
		return v.(value.Vector)
	}
	c.typeErrorf("non-numeric argument to binary operator")
	return nil
}

// arith applies a binary arithmetic operator elementwise.
func (c *callContext) arith(op string, xv, yv value.Value) value.Value {
	x, y := c.arithOperand(xv), c.arithOperand(yv)
	n := c.binaryLength(x, y)
	t := value.HigherType(value.HigherType(x.Type(), y.Type()), value.TypeInteger)
	if t == value.TypeInteger && (op == "/" || op == "^") {
		t = value.TypeDouble
	}
	var ret value.Vector
	switch t {
	case value.TypeInteger:
		ret = c.intArith(op, c.coerce(x, t).(*value.Integer), c.coerce(y, t).(*value.Integer), n)
	case value.TypeDouble:
		ret = doubleArith(op, c.coerce(x, t).(*value.Double), c.coerce(y, t).(*value.Double), n)
	default:
		if op == "%%" || op == "%/%" {
			c.typeErrorf("invalid operation on complex numbers")
		}
		ret = complexArith(op, c.coerce(x, t).(*value.Complex), c.coerce(y, t).(*value.Complex), n)
	}
	value.RecycleAttributes(ret, x, y)
	return ret
}

func (c *callContext) intArith(op string, x, y *value.Integer, n int) *value.Integer {
	ret := value.NewInteger(n)
	overflow := false
	for k := 0; k < n; k++ {
		i, j := k%x.Len(), k%y.Len()
		if x.IsNA(i) || y.IsNA(j) {
			ret.SetNA(k)
			continue
		}
		a, b := x.At(i), y.At(j)
		var r int
		switch op {
		case "+":
			r = a + b
		case "-":
			r = a - b
		case "*":
			r = a * b
		case "%%":
			if b == 0 {
				ret.SetNA(k)
				continue
			}
			r = a % b
			if r != 0 && (r < 0) != (b < 0) {
				r += b
			}
		case "%/%":
			if b == 0 {
				ret.SetNA(k)
				continue
			}
			r = a / b
			if (a%b != 0) && ((a < 0) != (b < 0)) {
				r--
			}
		}
		if r > maxInt || r < -maxInt {
			overflow = true
			ret.SetNA(k)
			continue
		}
		ret.Set(k, r)
	}
	if overflow {
		c.warningf("NAs produced by integer overflow")
	}
	return ret
}

func doubleArith(op string, x, y *value.Double, n int) *value.Double {
	ret := value.NewDouble(n)
	for k := 0; k < n; k++ {
		i, j := k%x.Len(), k%y.Len()
		if x.IsNA(i) || y.IsNA(j) {
			if op == "^" && ((!x.IsNA(i) && x.At(i) == 1) || (!y.IsNA(j) && y.At(j) == 0)) {
				ret.Set(k, 1)
			} else {
				ret.SetNA(k)
			}
			continue
		}
		ret.Set(k, doubleOp(op, x.At(i), y.At(j)))
	}
	return ret
}

func doubleOp(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "^":
		if a == 1 || b == 0 {
			return 1
		}
		return math.Pow(a, b)
	case "%%":
		if b == 0 {
			return math.NaN()
		}
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return r
	case "%/%":
		return math.Floor(a / b)
	}
	return math.NaN()
}

func complexArith(op string, x, y *value.Complex, n int) *value.Complex {
	ret := value.NewComplex(n)
	for k := 0; k < n; k++ {
		i, j := k%x.Len(), k%y.Len()
		if x.IsNA(i) || y.IsNA(j) {
			ret.SetNA(k)
			continue
		}
		a, b := x.At(i), y.At(j)
		switch op {
		case "+":
			ret.Set(k, a+b)
		case "-":
			ret.Set(k, a-b)
		case "*":
			ret.Set(k, a*b)
		case "/":
			ret.Set(k, a/b)
		case "^":
			if b == 0 {
				ret.Set(k, 1)
			} else {
				ret.Set(k, cmplx.Pow(a, b))
			}
		}
	}
	return ret
}

func (c *callContext) unaryArith(op string, v value.Value) value.Value {
	if op != "+" && op != "-" {
		c.errorf("invalid unary operator")
	}
	switch x := v.(type) {
	case *value.Logical:
		ret := c.coerce(x, value.TypeInteger).(*value.Integer)
		if op == "-" {
			negateInts(ret)
		}
		return ret
	case *value.Integer:
		if op == "+" {
			return x
		}
		ret := x.Clone().(*value.Integer)
		negateInts(ret)
		return ret
	case *value.Double:
		if op == "+" {
			return x
		}
		ret := x.Clone().(*value.Double)
		data := ret.Data()
		for k := range data {
			if !ret.IsNA(k) {
				data[k] = -data[k]
			}
		}
		return ret
	case *value.Complex:
		if op == "+" {
			return x
		}
		ret := x.Clone().(*value.Complex)
		data := ret.Data()
		for k := range data {
			if !ret.IsNA(k) {
				data[k] = -data[k]
			}
		}
		return ret
	}
	c.typeErrorf("invalid argument to unary operator")
	return nil
}

func negateInts(v *value.Integer) {
	data := v.Data()
	for k := range data {
		if !v.IsNA(k) {
			data[k] = -data[k]
		}
	}
}

// comparable converts the operands of a comparison that aren't vectors: symbols and
// calls compare as their deparsed text.
func comparable(v value.Value) value.Value {
	switch v := v.(type) {
	case *value.NullValue:
		return value.NewLogical(0)
	case *value.Symbol:
		return value.Str(v.Name)
	case *value.Language:
		return value.Str(value.Deparse(v))
	}
	return v
}

func compare(op string) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		return c.compare(op, a.value("e1"), a.opt("e2", value.Null))
	}
}

// keepStructure drops all attributes of a result except names, dim and dimnames.
func keepStructure(v value.Value) {
	attrs := v.Attrs()
	if attrs == nil {
		return
	}
	for _, name := range attrs.Names() {
		if name != "names" && name != "dim" && name != "dimnames" {
			attrs.Remove(name)
		}
	}
	v.SetAttrs(attrs)
}

func (c *callContext) compare(op string, xv, yv value.Value) value.Value {
	xv, yv = comparable(xv), comparable(yv)
	x, ok1 := xv.(value.Vector)
	y, ok2 := yv.(value.Vector)
	if !ok1 || !ok2 || !value.IsAtomic(x) || !value.IsAtomic(y) {
		c.typeErrorf("comparison (%s) is possible only for atomic types", op)
	}
	n := c.binaryLength(x, y)
	t := value.HigherType(x.Type(), y.Type())
	ret := value.NewLogical(n)
	switch {
	case t == value.TypeCharacter:
		xs, ys := c.coerce(x, t).(*value.Character), c.coerce(y, t).(*value.Character)
		for k := 0; k < n; k++ {
			i, j := k%xs.Len(), k%ys.Len()
			if xs.IsNA(i) || ys.IsNA(j) {
				ret.SetNA(k)
			} else {
				ret.Set(k, compareResult(op, strings.Compare(xs.At(i), ys.At(j))))
			}
		}
	case t == value.TypeComplex:
		if op != "==" && op != "!=" {
			c.typeErrorf("invalid comparison with complex values")
		}
		xs, ys := c.coerce(x, t).(*value.Complex), c.coerce(y, t).(*value.Complex)
		for k := 0; k < n; k++ {
			i, j := k%xs.Len(), k%ys.Len()
			if xs.IsNA(i) || ys.IsNA(j) || cmplx.IsNaN(xs.At(i)) || cmplx.IsNaN(ys.At(j)) {
				ret.SetNA(k)
			} else {
				ret.Set(k, (xs.At(i) == ys.At(j)) == (op == "=="))
			}
		}
	default:
		xs, ys := c.coerce(x, value.TypeDouble).(*value.Double), c.coerce(y, value.TypeDouble).(*value.Double)
		for k := 0; k < n; k++ {
			i, j := k%xs.Len(), k%ys.Len()
			a, b := xs.At(i), ys.At(j)
			if xs.IsNA(i) || ys.IsNA(j) || math.IsNaN(a) || math.IsNaN(b) {
				ret.SetNA(k)
				continue
			}
			cmp := 0
			if a < b {
				cmp = -1
			} else if a > b {
				cmp = 1
			}
			ret.Set(k, compareResult(op, cmp))
		}
	}
	value.RecycleAttributes(ret, x, y)
	keepStructure(ret)
	return ret
}

func compareResult(op string, cmp int) bool {
	switch op {
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case ">":
		return cmp > 0
	case "<=":
		return cmp <= 0
	}
	return cmp >= 0
}

// logicalOperand converts an operand of a logical operator.
func (c *callContext) logicalOperand(v value.Value) *value.Logical {
	switch v := v.(type) {
	case *value.NullValue:
		return value.NewLogical(0)
	case *value.Logical:
		return v
	case *value.Integer, *value.Double, *value.Complex:
		return c.coerce(v, value.TypeLogical).(*value.Logical)
	}
	c.typeErrorf("operations are possible only for numeric, logical or complex types")
	return nil
}

func logic(and bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		xv, yv := a.value("e1"), a.value("e2")
		if xr, ok := xv.(*value.Raw); ok {
			if yr, ok := yv.(*value.Raw); ok {
				return c.rawLogic(and, xr, yr)
			}
		}
		x, y := c.logicalOperand(xv), c.logicalOperand(yv)
		n := c.binaryLength(x, y)
		ret := value.NewLogical(n)
		for k := 0; k < n; k++ {
			i, j := k%x.Len(), k%y.Len()
			ret3(ret, k, and, x.At(i), x.IsNA(i), y.At(j), y.IsNA(j))
		}
		value.RecycleAttributes(ret, xv, yv)
		keepStructure(ret)
		return ret
	}
}

// ret3 sets element k to the three-valued AND or OR of two logicals.
func ret3(ret *value.Logical, k int, and bool, a, ana, b, bna bool) {
	switch {
	case and && ((!a && !ana) || (!b && !bna)):
		ret.Set(k, false)
	case !and && ((a && !ana) || (b && !bna)):
		ret.Set(k, true)
	case ana || bna:
		ret.SetNA(k)
	default:
		ret.Set(k, and)
	}
}

func (c *callContext) rawLogic(and bool, x, y *value.Raw) value.Value {
	n := c.binaryLength(x, y)
	ret := value.NewRaw(n)
	for k := 0; k < n; k++ {
		a, b := x.At(k%x.Len()), y.At(k%y.Len())
		if and {
			ret.Set(k, a&b)
		} else {
			ret.Set(k, a|b)
		}
	}
	return ret
}

func not(c *callContext, a *argList) value.Value {
	v := a.value("x")
	if r, ok := v.(*value.Raw); ok {
		ret := value.NewRaw(r.Len())
		for k := range ret.Data() {
			ret.Set(k, ^r.At(k))
		}
		return ret
	}
	x := c.logicalOperand(v)
	ret := value.NewLogical(x.Len())
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) {
			ret.SetNA(k)
		} else {
			ret.Set(k, !x.At(k))
		}
	}
	ret.SetAttrs(v.Attrs().Clone())
	keepStructure(ret)
	return ret
}

func xor(c *callContext, a *argList) value.Value {
	x, y := c.logicalOperand(a.value("x")), c.logicalOperand(a.value("y"))
	n := c.binaryLength(x, y)
	ret := value.NewLogical(n)
	for k := 0; k < n; k++ {
		i, j := k%x.Len(), k%y.Len()
		if x.IsNA(i) || y.IsNA(j) {
			ret.SetNA(k)
		} else {
			ret.Set(k, x.At(i) != y.At(j))
		}
	}
	return ret
}

func isTRUE(want bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		l, ok := a.value("x").(*value.Logical)
		return value.Bool(ok && l.Len() == 1 && !l.IsNA(0) && l.At(0) == want)
	}
}

func anyAll(any bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		naRm := a.flagOr("na.rm", false)
		sawNA := false
		for _, d := range a.dots {
			switch v := d.Value.(type) {
			case *value.NullValue:
				continue
			case *value.Logical:
			case *value.Integer:
			case *value.Double, *value.Complex:
				c.warningf("coercing argument of type '%s' to logical", v.Type())
			default:
				c.typeErrorf("invalid 'type' (%s) of argument", d.Value.Type())
			}
			l := c.coerce(d.Value, value.TypeLogical).(*value.Logical)
			for k := 0; k < l.Len(); k++ {
				if l.IsNA(k) {
					sawNA = true
				} else if l.At(k) == any {
					return value.Bool(any)
				}
			}
		}
		if sawNA && !naRm {
			return value.NALogical()
		}
		return value.Bool(!any)
	}
}

// summaryType returns the type a summary of some arguments is computed in, which is at
// least integer.
func (c *callContext) summaryType(args []value.Arg, allowChar bool) value.Type {
	t := value.TypeInteger
	for _, d := range args {
		switch d.Value.Type() {
		case value.TypeNull, value.TypeLogical, value.TypeInteger:
		case value.TypeDouble, value.TypeComplex:
			t = value.HigherType(t, d.Value.Type())
		case value.TypeCharacter:
			if allowChar {
				t = value.TypeCharacter
				continue
			}
			fallthrough
		default:
			c.typeErrorf("invalid 'type' (%s) of argument", d.Value.Type())
		}
	}
	return t
}

func sum(c *callContext, a *argList) value.Value {
	naRm := a.flagOr("na.rm", false)
	switch c.summaryType(a.dots, false) {
	case value.TypeInteger:
		total := 0
		for _, d := range a.dots {
			if value.IsNull(d.Value) {
				continue
			}
			x := c.coerce(d.Value, value.TypeInteger).(*value.Integer)
			for k := 0; k < x.Len(); k++ {
				if x.IsNA(k) {
					if !naRm {
						return value.NAInteger()
					}
					continue
				}
				total += x.At(k)
			}
		}
		if total > maxInt || total < -maxInt {
			c.warningf("integer overflow - use sum(as.numeric(.))")
			return value.NAInteger()
		}
		return value.Int(total)
	case value.TypeDouble:
		total := 0.0
		for _, d := range a.dots {
			if value.IsNull(d.Value) {
				continue
			}
			x := c.coerce(d.Value, value.TypeDouble).(*value.Double)
			for k := 0; k < x.Len(); k++ {
				if x.IsNA(k) {
					if !naRm {
						return value.NADouble()
					}
					continue
				} else if naRm && math.IsNaN(x.At(k)) {
					continue
				}
				total += x.At(k)
			}
		}
		return value.Num(total)
	}
	var total complex128
	for _, d := range a.dots {
		if value.IsNull(d.Value) {
			continue
		}
		x := c.coerce(d.Value, value.TypeComplex).(*value.Complex)
		for k := 0; k < x.Len(); k++ {
			if x.IsNA(k) {
				if !naRm {
					return value.NAComplex()
				}
				continue
			}
			total += x.At(k)
		}
	}
	return value.Cplx(total)
}

func prod(c *callContext, a *argList) value.Value {
	naRm := a.flagOr("na.rm", false)
	if c.summaryType(a.dots, false) == value.TypeComplex {
		total := complex(1, 0)
		for _, d := range a.dots {
			if value.IsNull(d.Value) {
				continue
			}
			x := c.coerce(d.Value, value.TypeComplex).(*value.Complex)
			for k := 0; k < x.Len(); k++ {
				if x.IsNA(k) {
					if !naRm {
						return value.NAComplex()
					}
					continue
				}
				total *= x.At(k)
			}
		}
		return value.Cplx(total)
	}
	total := 1.0
	for _, d := range a.dots {
		if value.IsNull(d.Value) {
			continue
		}
		x := c.coerce(d.Value, value.TypeDouble).(*value.Double)
		for k := 0; k < x.Len(); k++ {
			if x.IsNA(k) {
				if !naRm {
					return value.NADouble()
				}
				continue
			}
			total *= x.At(k)
		}
	}
	return value.Num(total)
}

// extremes finds the minimum and maximum of all the arguments. ok is false if there
// were no non-missing values; na is true if an NA was seen and not removed.
func (c *callContext) extremes(args []value.Arg, naRm, finite bool) (lo, hi value.Value, ok, na bool) {
	t := c.summaryType(args, true)
	switch t {
	case value.TypeComplex:
		c.typeErrorf("invalid 'type' (complex) of argument")
	case value.TypeCharacter:
		var min, max string
		for _, d := range args {
			if value.IsNull(d.Value) {
				continue
			}
			x := c.coerce(d.Value, t).(*value.Character)
			for k := 0; k < x.Len(); k++ {
				if x.IsNA(k) {
					na = na || !naRm
					continue
				}
				if s := x.At(k); !ok {
					min, max, ok = s, s, true
				} else if s < min {
					min = s
				} else if s > max {
					max = s
				}
			}
		}
		return value.Str(min), value.Str(max), ok, na
	}
	min, max := math.Inf(1), math.Inf(-1)
	nan := false
	for _, d := range args {
		if value.IsNull(d.Value) {
			continue
		}
		x := c.coerce(d.Value, value.TypeDouble).(*value.Double)
		for k := 0; k < x.Len(); k++ {
			f := x.At(k)
			if x.IsNA(k) {
				na = na || !naRm
				continue
			} else if math.IsNaN(f) {
				nan = nan || !naRm
				continue
			} else if finite && math.IsInf(f, 0) {
				continue
			}
			ok = true
			min = math.Min(min, f)
			max = math.Max(max, f)
		}
	}
	if nan && !na {
		return value.Num(math.NaN()), value.Num(math.NaN()), true, false
	}
	if t == value.TypeInteger && ok {
		return value.Int(int(min)), value.Int(int(max)), ok, na
	}
	return value.Num(min), value.Num(max), ok, na
}

func extreme(max bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		lo, hi, ok, na := c.extremes(a.dots, a.flagOr("na.rm", false), false)
		t := c.summaryType(a.dots, true)
		if na {
			return naOf(t)
		} else if !ok {
			if t == value.TypeCharacter {
				c.errorf("no non-missing arguments to %s", c.b.name)
			}
			if max {
				c.warningf("no non-missing arguments to max; returning -Inf")
				return value.Num(math.Inf(-1))
			}
			c.warningf("no non-missing arguments to min; returning Inf")
			return value.Num(math.Inf(1))
		} else if max {
			return hi
		}
		return lo
	}
}

// naOf returns a length-one NA of the given type.
func naOf(t value.Type) value.Value {
	v, err := value.NewVector(t, 1)
	if err != nil {
		return value.NALogical()
	}
	v.SetNA(0)
	return v
}

func rangeFunc(c *callContext, a *argList) value.Value {
	finite := a.flagOr("finite", false)
	lo, hi, ok, na := c.extremes(a.dots, a.flagOr("na.rm", false) || finite, finite)
	t := c.summaryType(a.dots, true)
	if na {
		v := naOf(t).(value.Vector)
		v.Resize(2)
		v.SetNA(1)
		return v
	} else if !ok {
		if t == value.TypeCharacter {
			c.errorf("no non-missing arguments to range")
		}
		c.warningf("no non-missing arguments to min; returning Inf")
		c.warningf("no non-missing arguments to max; returning -Inf")
		return value.DoubleOf(math.Inf(1), math.Inf(-1))
	}
	switch lo := lo.(type) {
	case *value.Integer:
		return value.IntegerOf(lo.At(0), hi.(*value.Integer).At(0))
	case *value.Character:
		return value.CharacterOf(lo.At(0), hi.(*value.Character).At(0))
	}
	return value.DoubleOf(lo.(*value.Double).At(0), hi.(*value.Double).At(0))
}

func mean(c *callContext, a *argList) value.Value {
	x := a.value("x")
	naRm := a.flagOr("na.rm", false)
	switch x.Type() {
	case value.TypeComplex:
		v := x.(*value.Complex)
		var total complex128
		n := 0
		for k := 0; k < v.Len(); k++ {
			if v.IsNA(k) {
				if !naRm {
					return value.NAComplex()
				}
				continue
			}
			total += v.At(k)
			n++
		}
		return value.Cplx(total / complex(float64(n), 0))
	case value.TypeLogical, value.TypeInteger, value.TypeDouble:
	default:
		c.warningf("argument is not numeric or logical: returning NA")
		return value.NADouble()
	}
	v := c.coerce(x, value.TypeDouble).(*value.Double)
	vals := make([]float64, 0, v.Len())
	for k := 0; k < v.Len(); k++ {
		if v.IsNA(k) {
			if !naRm {
				return value.NADouble()
			}
			continue
		} else if naRm && math.IsNaN(v.At(k)) {
			continue
		}
		vals = append(vals, v.At(k))
	}
	if trim := a.numOr("trim", 0); trim > 0 && len(vals) > 0 {
		if trim >= 0.5 {
			return value.Num(median(vals))
		}
		lo := int(math.Floor(float64(len(vals)) * trim))
		slices.Sort(vals)
		vals = vals[lo : len(vals)-lo]
	}
	if len(vals) == 0 {
		return value.Num(math.NaN())
	}
	total := 0.0
	for _, f := range vals {
		total += f
	}
	m := total / float64(len(vals))
	if !math.IsInf(m, 0) {
		// Second pass to correct rounding error.
		t := 0.0
		for _, f := range vals {
			t += f - m
		}
		m += t / float64(len(vals))
	}
	return value.Num(m)
}

func median(vals []float64) float64 {
	s := slices.Clone(vals)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
