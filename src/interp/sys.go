package interp

import (
	"math"
	"os"
	"regexp"

	"golang.org/x/exp/slices"

	"github.com/thought-machine/rcore/src/value"
)

// validLocale matches the locale names Sys.setlocale accepts.
var validLocale = regexp.MustCompile(`^(C|POSIX|[a-z]{2,3}(_[A-Z]{2})?(\.[A-Za-z0-9-]+)?(@[a-z]+)?)$`)

func registerSession(i *Interpreter) {
	i.setNativeCode("Sys.getenv", sysGetenv, "x", "unset", "names")
	i.setNativeCode("Sys.setenv", sysSetenv, "...").invisible = true
	i.setNativeCode("Sys.unsetenv", sysUnsetenv, "x").invisible = true
	i.setNativeCode("Sys.setlocale", sysSetlocale, "category", "locale")
	i.setNativeCode("Sys.getlocale", sysGetlocale, "category")
	i.setNativeCode("set.seed", setSeed, "seed", "kind", "normal.kind", "sample.kind").invisible = true
	i.setNativeCode("sample", sample, "x", "size", "replace", "prob")
	i.setNativeCode("runif", runif, "n", "min", "max")
	i.setNativeCode("rnorm", rnorm, "n", "mean", "sd")
	i.setNativeCode("options", options, "...")
	i.setNativeCode("getOption", getOption, "x", "default")
	i.setNativeCode("interactive", func(c *callContext, a *argList) value.Value { return value.Bool(false) })
	i.setNativeCode("commandArgs", commandArgs, "trailingOnly")
	i.setNativeCode("Sys.time", sysTime)
	i.setNativeCode("Sys.Date", sysDate)
	i.setNativeCode("Sys.getpid", func(c *callContext, a *argList) value.Value { return value.Int(os.Getpid()) })
}

func sysGetenv(c *callContext, a *argList) value.Value {
	s := c.i.session
	if !a.has("x") || value.IsNull(a.value("x")) {
		names := s.EnvNames()
		ret := value.NewCharacter(len(names))
		for k, name := range names {
			v, _ := s.Getenv(name)
			ret.Set(k, v)
		}
		mustSetAttr(ret, "names", value.CharacterOf(names...))
		return ret
	}
	x, ok := a.value("x").(*value.Character)
	if !ok {
		c.errorf("wrong type for argument")
	}
	unset := value.Value(value.Str(""))
	if a.has("unset") {
		unset = a.value("unset")
	}
	ret := value.NewCharacter(x.Len())
	for k := 0; k < x.Len(); k++ {
		if v, present := s.Getenv(x.At(k)); present {
			ret.Set(k, v)
		} else if u, ok := unset.(*value.Character); ok && u.Len() > 0 && !u.IsNA(0) {
			ret.Set(k, u.At(0))
		} else {
			ret.SetNA(k)
		}
	}
	named := x.Len() > 1
	if a.has("names") {
		if b, ok := asFlag(a.value("names")); ok {
			named = b
		}
	}
	if named {
		mustSetAttr(ret, "names", x)
	}
	return ret
}

func sysSetenv(c *callContext, a *argList) value.Value {
	ret := value.NewLogical(len(a.dots))
	for k, d := range a.dots {
		if d.Name == "" {
			c.errorf("all arguments must be named")
		}
		v, ok := asString(d.Value)
		if !ok {
			c.errorf("wrong type for argument")
		}
		c.i.session.Setenv(d.Name, v)
		ret.Set(k, true)
	}
	return ret
}

func sysUnsetenv(c *callContext, a *argList) value.Value {
	x, ok := a.value("x").(*value.Character)
	if !ok {
		c.errorf("wrong type for argument")
	}
	ret := value.NewLogical(x.Len())
	for k := 0; k < x.Len(); k++ {
		c.i.session.Unsetenv(x.At(k))
		ret.Set(k, true)
	}
	return ret
}

func sysSetlocale(c *callContext, a *argList) value.Value {
	category := a.strOr("category", "LC_ALL")
	locale := a.strOr("locale", "")
	if locale == "" {
		locale = "C"
		if lang, ok := c.i.session.Getenv("LANG"); ok && lang != "" {
			locale = lang
		}
	}
	if category != "LC_ALL" && !slices.Contains(localeCategories, category) {
		c.errorf("invalid '%s' argument", "category")
	}
	if !validLocale.MatchString(locale) {
		c.warningf("OS reports request to set locale to \"%s\" cannot be honored", locale)
		return value.Str("")
	}
	return value.Str(c.i.session.SetLocale(category, locale))
}

func sysGetlocale(c *callContext, a *argList) value.Value {
	category := a.strOr("category", "LC_ALL")
	if category == "LC_ALL" {
		return value.Str(c.i.session.LocaleString())
	} else if !slices.Contains(localeCategories, category) {
		c.errorf("invalid '%s' argument", "category")
	}
	return value.Str(c.i.session.Locale(category))
}

func setSeed(c *callContext, a *argList) value.Value {
	seed, ok := asInt(a.value("seed"))
	if !ok {
		c.errorf("supplied seed is not a valid integer")
	}
	c.i.session.Seed(uint64(int64(seed)))
	return value.Null
}

func sample(c *callContext, a *argList) value.Value {
	x := a.vector("x")
	population := value.Vector(x)
	if x.Len() == 1 && value.IsNumeric(x) {
		n, ok := asInt(x)
		if ok && n >= 1 {
			population = intSeq(1, n)
		}
	}
	n := population.Len()
	size := a.intOr("size", n)
	replace := a.flagOr("replace", false)
	if size < 0 {
		c.errorf("invalid '%s' argument", "size")
	} else if !replace && size > n {
		c.errorf("cannot take a sample larger than the population when 'replace = FALSE'")
	}
	var weights []float64
	if a.has("prob") && !value.IsNull(a.value("prob")) {
		p := c.coerce(a.value("prob"), value.TypeDouble).(*value.Double)
		if p.Len() != n {
			c.errorf("incorrect number of probabilities")
		}
		weights = append([]float64(nil), p.Data()...)
		for k, w := range weights {
			if p.IsNA(k) || w < 0 || w != w {
				c.errorf("NA in probability vector")
			}
		}
	}
	rng := c.i.session.RNG()
	idx := make([]int, size)
	remaining := make([]int, n)
	for k := range remaining {
		remaining[k] = k
	}
	for k := range idx {
		var j int
		if weights != nil {
			total := 0.0
			for _, r := range remaining {
				total += weights[r]
			}
			if total <= 0 {
				c.errorf("too few positive probabilities")
			}
			u := rng.Float64() * total
			for j = 0; j < len(remaining)-1; j++ {
				if u -= weights[remaining[j]]; u < 0 {
					break
				}
			}
		} else {
			j = rng.Intn(len(remaining))
		}
		idx[k] = remaining[j]
		if !replace {
			remaining = append(remaining[:j], remaining[j+1:]...)
		}
	}
	return extract(population, idx)
}

// randomCount returns the number of random values to generate for an n argument.
func (c *callContext) randomCount(v value.Value) int {
	if v.Len() > 1 {
		return v.Len()
	}
	n, ok := asInt(v)
	if !ok || n < 0 {
		c.errorf("invalid arguments")
	}
	c.alloc(n)
	return n
}

func runif(c *callContext, a *argList) value.Value {
	n := c.randomCount(a.value("n"))
	lo, hi := a.numOr("min", 0), a.numOr("max", 1)
	ret := value.NewDouble(n)
	if hi < lo || lo != lo || hi != hi {
		c.warningf("NAs produced")
		for k := 0; k < n; k++ {
			ret.Set(k, math.NaN())
		}
		return ret
	}
	rng := c.i.session.RNG()
	for k := 0; k < n; k++ {
		ret.Set(k, lo+(hi-lo)*rng.Float64())
	}
	return ret
}

func rnorm(c *callContext, a *argList) value.Value {
	n := c.randomCount(a.value("n"))
	mean, sd := a.numOr("mean", 0), a.numOr("sd", 1)
	ret := value.NewDouble(n)
	if sd < 0 {
		c.warningf("NAs produced")
		for k := 0; k < n; k++ {
			ret.Set(k, math.NaN())
		}
		return ret
	}
	rng := c.i.session.RNG()
	for k := 0; k < n; k++ {
		ret.Set(k, mean+sd*rng.NormFloat64())
	}
	return ret
}

func options(c *callContext, a *argList) value.Value {
	s := c.i.session
	if len(a.dots) == 0 {
		names := s.OptionNames()
		ret := value.NewList(len(names))
		for k, name := range names {
			ret.Set(k, s.Option(name))
		}
		mustSetAttr(ret, "names", value.CharacterOf(names...))
		return ret
	}
	var names []string
	var old []value.Value
	set := func(name string, v value.Value) {
		if name == "warn" {
			if _, ok := asInt(v); !ok || v.Len() != 1 {
				c.errorf("invalid value for '%s'", name)
			}
		}
		names = append(names, name)
		old = append(old, s.SetOption(name, v))
	}
	setting := false
	for _, d := range a.dots {
		switch {
		case d.Name != "":
			set(d.Name, d.Value)
			setting = true
		case d.Value.Type() == value.TypeList:
			l := d.Value.(*value.List)
			for k := 0; k < l.Len(); k++ {
				set(value.NameAt(l, k), l.At(k))
			}
			setting = true
		case d.Value.Type() == value.TypeCharacter:
			for _, name := range d.Value.(*value.Character).Data() {
				names = append(names, name)
				if v := s.Option(name); v != nil {
					old = append(old, v)
				} else {
					old = append(old, value.Null)
				}
			}
		case value.IsNull(d.Value):
		default:
			c.errorf("invalid argument")
		}
	}
	ret := value.ListOf(old...)
	mustSetAttr(ret, "names", value.CharacterOf(names...))
	if setting {
		return c.invisible(ret)
	}
	return ret
}

func getOption(c *callContext, a *argList) value.Value {
	if v := c.i.session.Option(a.str("x")); v != nil {
		return v
	}
	return a.opt("default", value.Null)
}

func commandArgs(c *callContext, a *argList) value.Value {
	if a.flagOr("trailingOnly", false) {
		return value.CharacterOf(c.i.session.Args...)
	}
	return value.CharacterOf(append([]string{"rcore", "--args"}, c.i.session.Args...)...)
}
