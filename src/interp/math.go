package interp

import (
	"math"
	"math/cmplx"
	"strconv"

	"gonum.org/v1/gonum/mathext"

	"github.com/thought-machine/rcore/src/value"
)

func registerMath(i *Interpreter) {
	math1 := func(name string, f func(float64) float64, cf func(complex128) complex128) {
		i.setNativeCode(name, mathFunc(f, cf), "x").group = "Math"
	}
	math1("sqrt", math.Sqrt, cmplx.Sqrt)
	math1("exp", math.Exp, cmplx.Exp)
	math1("expm1", math.Expm1, nil)
	math1("log1p", math.Log1p, nil)
	math1("log2", math.Log2, nil)
	math1("log10", math.Log10, cmplx.Log10)
	math1("sin", math.Sin, cmplx.Sin)
	math1("cos", math.Cos, cmplx.Cos)
	math1("tan", math.Tan, cmplx.Tan)
	math1("asin", math.Asin, cmplx.Asin)
	math1("acos", math.Acos, cmplx.Acos)
	math1("atan", math.Atan, cmplx.Atan)
	math1("sinh", math.Sinh, cmplx.Sinh)
	math1("cosh", math.Cosh, cmplx.Cosh)
	math1("tanh", math.Tanh, cmplx.Tanh)
	math1("floor", math.Floor, componentwise(math.Floor))
	math1("ceiling", math.Ceil, componentwise(math.Ceil))
	math1("trunc", math.Trunc, componentwise(math.Trunc))
	math1("gamma", gamma, nil)
	math1("lgamma", lgamma, nil)
	math1("digamma", mathext.Digamma, nil)
	math1("trigamma", func(x float64) float64 { return psigamma(x, 1) }, nil)
	math1("factorial", func(x float64) float64 { return gamma(x + 1) }, nil)
	math1("lfactorial", func(x float64) float64 { return lgamma(x + 1) }, nil)
	i.setNativeCode("abs", abs, "x").group = "Math"
	i.setNativeCode("sign", sign, "x").group = "Math"
	i.setNativeCode("log", logFunc, "x", "base").group = "Math"
	i.setNativeCode("round", round(false), "x", "digits").group = "Math"
	i.setNativeCode("signif", round(true), "x", "digits").group = "Math"
	i.setNativeCode("psigamma", math2Default("deriv", value.Int(0), func(x, d float64) float64 { return psigamma(x, int(d)) }), "x", "deriv")
	i.setNativeCode("atan2", math2("x", math.Atan2), "y", "x")
	i.setNativeCode("beta", math2("b", beta), "a", "b")
	i.setNativeCode("lbeta", math2("b", lbeta), "a", "b")
	i.setNativeCode("choose", choose(false), "n", "k")
	i.setNativeCode("lchoose", choose(true), "n", "k")
	i.setNativeCode("besselJ", math2("nu", besselJ), "x", "nu")
	i.setNativeCode("besselY", math2("nu", besselY), "x", "nu")
	for _, name := range []string{"cumsum", "cumprod", "cummax", "cummin"} {
		i.setNativeCode(name, cumulative(name), "x").group = "Math"
	}
}

// mathOperand checks the argument of a mathematical function.
func (c *callContext) mathOperand(v value.Value) value.Vector {
	switch v := v.(type) {
	case *value.Logical, *value.Integer, *value.Double, *value.Complex:
		return v.(value.Vector)
	}
	c.typeErrorf("non-numeric argument to mathematical function")
	return nil
}

func componentwise(f func(float64) float64) func(complex128) complex128 {
	return func(z complex128) complex128 {
		return complex(f(real(z)), f(imag(z)))
	}
}

// mathFunc returns a builtin applying a function elementwise, keeping attributes.
func mathFunc(f func(float64) float64, cf func(complex128) complex128) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x := c.mathOperand(a.value("x"))
		if z, ok := x.(*value.Complex); ok {
			if cf == nil {
				c.typeErrorf("unimplemented complex function")
			}
			ret := value.NewComplex(z.Len())
			for k := 0; k < z.Len(); k++ {
				if z.IsNA(k) {
					ret.SetNA(k)
				} else {
					ret.Set(k, cf(z.At(k)))
				}
			}
			ret.SetAttrs(z.Attrs().Clone())
			return ret
		}
		return c.mapDoubles(c.coerce(x, value.TypeDouble).(*value.Double), f)
	}
}

// mapDoubles applies f to each non-NA element, warning if it produces NaNs.
func (c *callContext) mapDoubles(x *value.Double, f func(float64) float64) *value.Double {
	ret := value.NewDouble(x.Len())
	nans := false
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) {
			ret.SetNA(k)
			continue
		}
		in := x.At(k)
		out := f(in)
		nans = nans || (math.IsNaN(out) && !math.IsNaN(in))
		ret.Set(k, out)
	}
	if nans {
		c.warningf("NaNs produced")
	}
	ret.SetAttrs(x.Attrs().Clone())
	return ret
}

// math2 returns a builtin applying a function of two arguments elementwise with recycling.
func math2(second string, f func(x, y float64) float64) nativeFunc {
	return math2Default(second, nil, f)
}

// math2Default is like math2 but the second argument is optional, defaulting to def.
func math2Default(second string, def value.Value, f func(x, y float64) float64) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		first := a.formals[0]
		xv := c.mathOperand(a.value(first))
		var yv value.Vector
		if def != nil && !a.has(second) {
			yv = c.mathOperand(def)
		} else {
			yv = c.mathOperand(a.value(second))
		}
		x := c.coerce(xv, value.TypeDouble).(*value.Double)
		y := c.coerce(yv, value.TypeDouble).(*value.Double)
		n := c.binaryLength(x, y)
		ret := value.NewDouble(n)
		nans := false
		for k := 0; k < n; k++ {
			i, j := k%x.Len(), k%y.Len()
			if x.IsNA(i) || y.IsNA(j) {
				ret.SetNA(k)
				continue
			}
			out := f(x.At(i), y.At(j))
			nans = nans || (math.IsNaN(out) && !math.IsNaN(x.At(i)) && !math.IsNaN(y.At(j)))
			ret.Set(k, out)
		}
		if nans {
			c.warningf("NaNs produced")
		}
		value.RecycleAttributes(ret, xv, yv)
		return ret
	}
}

func abs(c *callContext, a *argList) value.Value {
	switch x := c.mathOperand(a.value("x")).(type) {
	case *value.Integer, *value.Logical:
		v := c.coerce(x, value.TypeInteger).Clone().(*value.Integer)
		data := v.Data()
		for k, n := range data {
			if n < 0 {
				data[k] = -n
			}
		}
		return v
	case *value.Complex:
		ret := value.NewDouble(x.Len())
		for k := 0; k < x.Len(); k++ {
			if x.IsNA(k) {
				ret.SetNA(k)
			} else {
				ret.Set(k, cmplx.Abs(x.At(k)))
			}
		}
		ret.SetAttrs(x.Attrs().Clone())
		return ret
	case *value.Double:
		return c.mapDoubles(x, math.Abs)
	}
	return nil
}

func sign(c *callContext, a *argList) value.Value {
	x := c.mathOperand(a.value("x"))
	if x.Type() == value.TypeComplex {
		c.typeErrorf("unimplemented complex function")
	}
	return c.mapDoubles(c.coerce(x, value.TypeDouble).(*value.Double), func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		}
		return f
	})
}

func logFunc(c *callContext, a *argList) value.Value {
	x := c.mathOperand(a.value("x"))
	base := math.E
	if a.has("base") {
		base = a.num("base")
	}
	if z, ok := x.(*value.Complex); ok {
		ret := value.NewComplex(z.Len())
		for k := 0; k < z.Len(); k++ {
			if z.IsNA(k) {
				ret.SetNA(k)
			} else {
				ret.Set(k, cmplx.Log(z.At(k))/complex(math.Log(base), 0))
			}
		}
		ret.SetAttrs(z.Attrs().Clone())
		return ret
	}
	return c.mapDoubles(c.coerce(x, value.TypeDouble).(*value.Double), func(f float64) float64 {
		if base == math.E {
			return math.Log(f)
		} else if base == 10 {
			return math.Log10(f)
		} else if base == 2 {
			return math.Log2(f)
		}
		return math.Log(f) / math.Log(base)
	})
}

// roundDigits rounds to a number of decimal places, using the decimal representation
// so that e.g. 0.15 (which is really slightly less) rounds down.
func roundDigits(x float64, digits int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	} else if digits > 308 {
		return x
	} else if digits < 0 {
		p := math.Pow(10, float64(-digits))
		return math.RoundToEven(x/p) * p
	}
	f, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', digits, 64), 64)
	return f
}

// signifDigits rounds to a number of significant digits.
func signifDigits(x float64, digits int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x == 0 {
		return x
	} else if digits < 1 {
		digits = 1
	} else if digits > 22 {
		return x
	}
	f, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'g', digits, 64), 64)
	return f
}

func round(signif bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x := c.mathOperand(a.value("x"))
		digits := 0
		if signif {
			digits = 6
		}
		if a.has("digits") {
			f := a.num("digits")
			if math.IsNaN(f) {
				return naOf(x.Type())
			}
			digits = int(math.Floor(f + 0.5))
		}
		f := func(v float64) float64 { return roundDigits(v, digits) }
		if signif {
			f = func(v float64) float64 { return signifDigits(v, digits) }
		}
		switch x := x.(type) {
		case *value.Complex:
			ret := value.NewComplex(x.Len())
			for k := 0; k < x.Len(); k++ {
				if x.IsNA(k) {
					ret.SetNA(k)
				} else {
					ret.Set(k, complex(f(real(x.At(k))), f(imag(x.At(k)))))
				}
			}
			ret.SetAttrs(x.Attrs().Clone())
			return ret
		case *value.Integer, *value.Logical:
			if (!signif && digits >= 0) || (signif && digits >= 10) {
				return c.coerce(x, value.TypeInteger)
			}
		}
		return c.mapDoubles(c.coerce(x, value.TypeDouble).(*value.Double), f)
	}
}

func gamma(x float64) float64 {
	if x == 0 || (x < 0 && x == math.Floor(x)) {
		return math.NaN()
	}
	return math.Gamma(x)
}

func lgamma(x float64) float64 {
	if x <= 0 && x == math.Floor(x) {
		return math.Inf(1)
	}
	v, _ := math.Lgamma(x)
	return v
}

// psigamma is the deriv'th derivative of the digamma function.
func psigamma(x float64, deriv int) float64 {
	if deriv < 0 || math.IsNaN(x) {
		return math.NaN()
	} else if deriv == 0 {
		return mathext.Digamma(x)
	} else if x <= 0 && x == math.Floor(x) {
		return math.NaN()
	}
	n := float64(deriv)
	fact := math.Gamma(n + 1)
	sgn := 1.0
	if deriv%2 == 0 {
		sgn = -1
	}
	// Shift x to be positive, since the zeta form needs that.
	shift := 0.0
	for x <= 0 {
		shift -= sgn * fact / math.Pow(x, n+1)
		x++
	}
	return sgn*fact*mathext.Zeta(n+1, x) + shift
}

func beta(a, b float64) float64 {
	if a < 0 || b < 0 {
		return math.NaN()
	} else if a == 0 || b == 0 {
		return math.Inf(1)
	}
	return mathext.Beta(a, b)
}

func lbeta(a, b float64) float64 {
	if a < 0 || b < 0 {
		return math.NaN()
	} else if a == 0 || b == 0 {
		return math.Inf(1)
	}
	return mathext.Lbeta(a, b)
}

func isInteger(x float64) bool {
	return math.Abs(x-math.RoundToEven(x)) <= 1e-7*math.Max(1, math.Abs(x))
}

// chooseValue is the generalised binomial coefficient, defined for any real n.
func chooseValue(n, k float64) float64 {
	k = math.RoundToEven(k)
	if math.IsNaN(n) || math.IsNaN(k) {
		return n + k
	} else if k < 30 {
		if n-k < k && n >= 0 && isInteger(n) {
			k = math.RoundToEven(n - k)
		}
		if k < 0 {
			return 0
		} else if k == 0 {
			return 1
		}
		r := n
		for j := 2.0; j <= k; j++ {
			r *= (n - j + 1) / j
		}
		if isInteger(n) {
			return math.RoundToEven(r)
		}
		return r
	} else if isInteger(n) {
		n = math.RoundToEven(n)
		if n < 0 {
			r := chooseValue(-n+k-1, k)
			if math.Mod(k, 2) != 0 {
				return -r
			}
			return r
		} else if n < k {
			return 0
		} else if n-k < 30 {
			return chooseValue(n, n-k)
		}
		return math.RoundToEven(math.Exp(lfastchoose(n, k)))
	} else if n < k-1 {
		// Sign of gamma(n+1) / gamma(n-k+1) alternates below the poles.
		r := math.Exp(lfastchoose(n, k))
		if math.Mod(math.Floor(n-k+1), 2) != 0 {
			return -r
		}
		return r
	}
	return math.Exp(lfastchoose(n, k))
}

func lfastchoose(n, k float64) float64 {
	return -math.Log(n+1) - lbetaAny(n-k+1, k+1)
}

// lbetaAny is log|B(a, b)| for any a, b, which lfastchoose needs for negative n.
func lbetaAny(a, b float64) float64 {
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	lab, _ := math.Lgamma(a + b)
	return la + lb - lab
}

func choose(logged bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		if k, ok := asFloat(a.value("k")); ok && !isInteger(k) {
			c.warningf("'k' (%.2f) must be integer, rounded to %.0f", k, math.RoundToEven(k))
		}
		return math2("k", func(n, k float64) float64 {
			r := chooseValue(n, k)
			if logged {
				return math.Log(math.Abs(r))
			}
			return r
		})(c, a)
	}
}

// besselJ is the Bessel function of the first kind. Integer orders use the standard
// library; others are summed from the power series.
func besselJ(x, nu float64) float64 {
	if x < 0 || math.IsNaN(x) || math.IsNaN(nu) {
		return math.NaN()
	} else if nu == math.Trunc(nu) && math.Abs(nu) < math.MaxInt32 {
		return math.Jn(int(nu), x)
	}
	return besselJSeries(x, nu)
}

func besselJSeries(x, nu float64) float64 {
	half := x / 2
	sum := 0.0
	for m := 0; m < 500; m++ {
		lg, sgn := math.Lgamma(float64(m) + nu + 1)
		if math.IsInf(lg, 0) {
			continue
		}
		lf, _ := math.Lgamma(float64(m) + 1)
		term := math.Exp((2*float64(m)+nu)*math.Log(half)-lf-lg) * float64(sgn)
		if m%2 == 1 {
			term = -term
		}
		sum += term
		if m > 2 && math.Abs(term) < 1e-17*math.Abs(sum) {
			break
		}
	}
	return sum
}

// besselY is the Bessel function of the second kind.
func besselY(x, nu float64) float64 {
	if x < 0 || math.IsNaN(x) || math.IsNaN(nu) {
		return math.NaN()
	} else if nu == math.Trunc(nu) && math.Abs(nu) < math.MaxInt32 {
		return math.Yn(int(nu), x)
	}
	s, c := math.Sincos(nu * math.Pi)
	return (besselJSeries(x, nu)*c - besselJSeries(x, -nu)) / s
}

func cumulative(name string) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		xv := a.value("x")
		if value.IsNull(xv) {
			return value.NewDouble(0)
		}
		x := c.mathOperand(xv)
		var ret value.Vector
		switch {
		case x.Type() == value.TypeComplex && (name == "cumsum" || name == "cumprod"):
			ret = cumComplex(name, x.(*value.Complex))
		case x.Type() == value.TypeComplex:
			c.typeErrorf("'%s' not defined for complex numbers", name)
		case name != "cumprod" && x.Type() != value.TypeDouble:
			ret = c.cumInts(name, c.coerce(x, value.TypeInteger).(*value.Integer))
		default:
			ret = cumDoubles(name, c.coerce(x, value.TypeDouble).(*value.Double))
		}
		if names := value.Attr(xv, "names"); names != nil {
			mustSetAttr(ret, "names", names)
		}
		return ret
	}
}

func (c *callContext) cumInts(name string, x *value.Integer) *value.Integer {
	ret := value.NewInteger(x.Len())
	acc := 0
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) {
			for ; k < x.Len(); k++ {
				ret.SetNA(k)
			}
			break
		}
		switch v := x.At(k); {
		case k == 0:
			acc = v
		case name == "cumsum":
			acc += v
		case name == "cummax":
			acc = max(acc, v)
		default:
			acc = min(acc, v)
		}
		if acc > maxInt || acc < -maxInt {
			c.warningf("integer overflow in '%s'; use '%s(as.numeric(.))'", name, name)
			for ; k < x.Len(); k++ {
				ret.SetNA(k)
			}
			break
		}
		ret.Set(k, acc)
	}
	return ret
}

func cumDoubles(name string, x *value.Double) *value.Double {
	ret := value.NewDouble(x.Len())
	acc := 0.0
	if name == "cumprod" {
		acc = 1
	}
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) {
			for ; k < x.Len(); k++ {
				ret.SetNA(k)
			}
			break
		}
		switch v := x.At(k); {
		case name == "cumsum":
			acc += v
		case name == "cumprod":
			acc *= v
		case k == 0 || math.IsNaN(v) || math.IsNaN(acc):
			acc = v + 0*acc
		case name == "cummax":
			acc = math.Max(acc, v)
		default:
			acc = math.Min(acc, v)
		}
		ret.Set(k, acc)
	}
	return ret
}

func cumComplex(name string, x *value.Complex) *value.Complex {
	ret := value.NewComplex(x.Len())
	acc := complex(0, 0)
	if name == "cumprod" {
		acc = 1
	}
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) {
			for ; k < x.Len(); k++ {
				ret.SetNA(k)
			}
			break
		}
		if name == "cumsum" {
			acc += x.At(k)
		} else {
			acc *= x.At(k)
		}
		ret.Set(k, acc)
	}
	return ret
}
