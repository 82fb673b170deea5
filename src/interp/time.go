package interp

import (
	"math"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/thought-machine/rcore/src/value"
)

var monthNames = []string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}

var monthAbbreviations = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

const secondsPerDay = 86400

var (
	dateFormats     = []string{"%Y-%m-%d", "%Y/%m/%d"}
	dateTimeFormats = []string{"%Y-%m-%d %H:%M:%S", "%Y/%m/%d %H:%M:%S", "%Y-%m-%d %H:%M", "%Y/%m/%d %H:%M", "%Y-%m-%d", "%Y/%m/%d"}
)

func registerTime(i *Interpreter) {
	i.setNativeCode("as.Date", asDate, "x", "format", "tryFormats", "origin", "tz", "...").generic = true
	i.setNativeCode("format.Date", formatDate, "x", "format", "...")
	i.setNativeCode("as.POSIXct", asPOSIXct, "x", "tz", "format", "tryFormats", "origin", "...").generic = true
	i.setNativeCode("format.POSIXct", formatPOSIXct, "x", "format", "tz", "usetz", "...")
	i.setNativeCode("weekdays", dateComponent("%A", "%a"), "x", "abbreviate").generic = true
	i.setNativeCode("months", dateComponent("%B", "%b"), "x", "abbreviate").generic = true
	i.setNativeCode("julian", julian, "x", "origin", "...").generic = true
}

// newDate returns a Date vector from days since the epoch.
func newDate(days *value.Double) *value.Double {
	mustSetAttr(days, "class", value.Str("Date"))
	return days
}

// newPOSIXct returns a POSIXct vector from seconds since the epoch.
func newPOSIXct(secs *value.Double, tz string) *value.Double {
	mustSetAttr(secs, "class", value.CharacterOf("POSIXct", "POSIXt"))
	mustSetAttr(secs, "tzone", value.Str(tz))
	return secs
}

func sysTime(c *callContext, a *argList) value.Value {
	now := c.i.session.Now()
	return newPOSIXct(value.Num(float64(now.UnixNano())/1e9), "")
}

func sysDate(c *callContext, a *argList) value.Value {
	now := c.i.session.Now().In(c.location(""))
	y, m, d := now.Date()
	return newDate(value.Num(float64(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)))
}

// location resolves a time zone name; the empty string means the session's TZ, or UTC.
func (c *callContext) location(tz string) *time.Location {
	if tz == "" {
		tz, _ = c.i.session.Getenv("TZ")
	}
	if tz == "" || tz == "UTC" || tz == "GMT" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		c.warningf("unknown timezone '%s'", tz)
		return time.UTC
	}
	return loc
}

// parseTime parses s with the first of the formats that matches it.
func parseTime(s string, formats []string, loc *time.Location) (time.Time, bool) {
	for _, f := range formats {
		layout, err := strftime.Layout(strings.ReplaceAll(f, "%OS", "%S"))
		if err != nil {
			continue
		}
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// timeFormats returns the formats to parse with: format if given, otherwise tryFormats
// or the defaults.
func timeFormats(a *argList, defaults []string) ([]string, bool) {
	if a.has("format") {
		return asStrings(a.value("format")), true
	} else if a.has("tryFormats") {
		return asStrings(a.value("tryFormats")), false
	}
	return defaults, false
}

// parseTimes parses a character vector to times. Only the first non-NA element is
// matched against the candidate formats unless an explicit format was given.
func (c *callContext) parseTimes(x *value.Character, a *argList, defaults []string, loc *time.Location) []*time.Time {
	formats, explicit := timeFormats(a, defaults)
	ret := make([]*time.Time, x.Len())
	for k := 0; k < x.Len(); k++ {
		if x.IsNA(k) || x.At(k) == "" {
			continue
		}
		if !explicit {
			for _, f := range formats {
				if _, ok := parseTime(x.At(k), []string{f}, loc); ok {
					formats = []string{f}
					explicit = true
					break
				}
			}
			if !explicit {
				c.errorf("character string is not in a standard unambiguous format")
			}
		}
		if t, ok := parseTime(x.At(k), formats, loc); ok {
			ret[k] = &t
		}
	}
	return ret
}

// origin returns the origin argument as days since the epoch.
func (c *callContext) origin(a *argList) float64 {
	if !a.has("origin") {
		return 0
	}
	switch o := a.value("origin").(type) {
	case *value.Character:
		t, ok := parseTime(o.At(0), dateFormats, time.UTC)
		if !ok {
			c.errorf("'origin' must be supplied")
		}
		return float64(t.Unix() / secondsPerDay)
	case *value.Double:
		if value.Inherits(o, "POSIXct") >= 0 {
			return math.Floor(o.At(0) / secondsPerDay)
		}
		return o.At(0)
	}
	c.errorf("'origin' must be supplied")
	return 0
}

func asDate(c *callContext, a *argList) value.Value {
	x := a.value("x")
	switch {
	case value.Inherits(x, "Date") >= 0:
		return x
	case value.Inherits(x, "POSIXct") >= 0:
		secs := c.coerce(x, value.TypeDouble).(*value.Double)
		loc := c.location(a.strOr("tz", "UTC"))
		ret := value.NewDouble(secs.Len())
		for k := 0; k < secs.Len(); k++ {
			if secs.IsNA(k) {
				ret.SetNA(k)
				continue
			}
			sec, frac := math.Modf(secs.At(k))
			t := time.Unix(int64(sec), int64(frac*1e9)).In(loc)
			y, m, d := t.Date()
			ret.Set(k, float64(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()/secondsPerDay))
		}
		return newDate(ret)
	}
	switch x := x.(type) {
	case *value.Character:
		times := c.parseTimes(x, a, dateFormats, time.UTC)
		ret := value.NewDouble(len(times))
		for k, t := range times {
			if t == nil {
				ret.SetNA(k)
			} else {
				ret.Set(k, float64(t.Unix()/secondsPerDay))
			}
		}
		copyNames(x, ret)
		return newDate(ret)
	case *value.Logical:
		if x.AnyNA() && x.CountNA() == x.Len() {
			ret := c.coerce(x, value.TypeDouble).(*value.Double)
			return newDate(value.StripAttributes(ret).(*value.Double))
		}
	case *value.Integer, *value.Double:
		days := value.StripAttributes(c.coerce(x, value.TypeDouble)).(*value.Double).Clone().(*value.Double)
		if origin := c.origin(a); origin != 0 {
			for k := 0; k < days.Len(); k++ {
				if !days.IsNA(k) {
					days.Set(k, days.At(k)+origin)
				}
			}
		}
		return newDate(days)
	}
	c.errorf("do not know how to convert '%s' to class \"Date\"", value.Deparse(c.call.Args[0].Value))
	return nil
}

// copyNames copies the names of one vector onto another.
func copyNames(from, to value.Value) {
	if names := value.Attr(from, "names"); names != nil {
		mustSetAttr(to, "names", names)
	}
}

// formatTimes formats each element of x, given as a time or nil for NA.
func formatTimes(x value.Value, times []*time.Time, format func(t time.Time) string) *value.Character {
	ret := value.NewCharacter(len(times))
	for k, t := range times {
		if t == nil {
			ret.SetNA(k)
		} else {
			ret.Set(k, format(*t))
		}
	}
	copyNames(x, ret)
	return ret
}

// dateTimes converts a Date vector to times at midnight UTC.
func (c *callContext) dateTimes(x value.Value) []*time.Time {
	days := c.coerce(x, value.TypeDouble).(*value.Double)
	ret := make([]*time.Time, days.Len())
	for k := range ret {
		if !days.IsNA(k) && !math.IsNaN(days.At(k)) && !math.IsInf(days.At(k), 0) {
			t := time.Unix(int64(math.Floor(days.At(k)))*secondsPerDay, 0).UTC()
			ret[k] = &t
		}
	}
	return ret
}

// posixTimes converts a POSIXct vector to times in the given location.
func (c *callContext) posixTimes(x value.Value, loc *time.Location) []*time.Time {
	secs := c.coerce(x, value.TypeDouble).(*value.Double)
	ret := make([]*time.Time, secs.Len())
	for k := range ret {
		if !secs.IsNA(k) && !math.IsNaN(secs.At(k)) && !math.IsInf(secs.At(k), 0) {
			sec, frac := math.Modf(secs.At(k))
			t := time.Unix(int64(sec), int64(frac*1e9)).In(loc)
			ret[k] = &t
		}
	}
	return ret
}

// anyTimes converts a Date, POSIXct or character vector to times.
func (c *callContext) anyTimes(x value.Value) []*time.Time {
	if value.Inherits(x, "Date") >= 0 {
		return c.dateTimes(x)
	} else if value.Inherits(x, "POSIXct") >= 0 {
		return c.posixTimes(x, c.location(tzone(x)))
	}
	c.errorf("no applicable method for this object of class \"%s\"", value.ClassOf(x)[0])
	return nil
}

func tzone(x value.Value) string {
	s, _ := asString(value.Attr(x, "tzone"))
	return s
}

func formatDate(c *callContext, a *argList) value.Value {
	x := a.value("x")
	format := a.strOr("format", "%Y-%m-%d")
	return formatTimes(x, c.dateTimes(x), func(t time.Time) string {
		return strftime.Format(format, t)
	})
}

func asPOSIXct(c *callContext, a *argList) value.Value {
	x := a.value("x")
	tz := a.strOr("tz", "")
	switch {
	case value.Inherits(x, "POSIXct") >= 0:
		if !a.has("tz") {
			return x
		}
		ret := x.Clone()
		mustSetAttr(ret, "tzone", value.Str(tz))
		return ret
	case value.Inherits(x, "Date") >= 0:
		days := c.coerce(x, value.TypeDouble).(*value.Double)
		ret := value.NewDouble(days.Len())
		for k := 0; k < days.Len(); k++ {
			if days.IsNA(k) {
				ret.SetNA(k)
			} else {
				ret.Set(k, days.At(k)*secondsPerDay)
			}
		}
		return newPOSIXct(ret, "UTC")
	}
	switch x := x.(type) {
	case *value.Character:
		times := c.parseTimes(x, a, dateTimeFormats, c.location(tz))
		ret := value.NewDouble(len(times))
		for k, t := range times {
			if t == nil {
				ret.SetNA(k)
			} else {
				ret.Set(k, float64(t.UnixNano())/1e9)
			}
		}
		copyNames(x, ret)
		return newPOSIXct(ret, tz)
	case *value.Integer, *value.Double, *value.Logical:
		secs := value.StripAttributes(c.coerce(x, value.TypeDouble)).(*value.Double).Clone().(*value.Double)
		if origin := c.origin(a); origin != 0 {
			for k := 0; k < secs.Len(); k++ {
				if !secs.IsNA(k) {
					secs.Set(k, secs.At(k)+origin*secondsPerDay)
				}
			}
		}
		return newPOSIXct(secs, tz)
	}
	c.errorf("do not know how to convert '%s' to class \"POSIXct\"", value.Deparse(c.call.Args[0].Value))
	return nil
}

func formatPOSIXct(c *callContext, a *argList) value.Value {
	x := a.value("x")
	tz := a.strOr("tz", tzone(x))
	loc := c.location(tz)
	times := c.posixTimes(x, loc)
	format := a.strOr("format", "")
	if format == "" {
		// The time is left off when every element is at midnight, and so are seconds
		// when none has any.
		format = "%Y-%m-%d"
		for _, t := range times {
			if t == nil {
				continue
			} else if t.Second() != 0 {
				format = "%Y-%m-%d %H:%M:%S"
				break
			} else if t.Hour() != 0 || t.Minute() != 0 {
				format = "%Y-%m-%d %H:%M"
			}
		}
	}
	usetz := a.flagOr("usetz", false)
	return formatTimes(x, times, func(t time.Time) string {
		s := strftime.Format(format, t)
		if usetz {
			name, _ := t.Zone()
			s += " " + name
		}
		return s
	})
}

func dateComponent(full, abbreviated string) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x := a.value("x")
		format := full
		if a.flagOr("abbreviate", false) {
			format = abbreviated
		}
		return formatTimes(x, c.anyTimes(x), func(t time.Time) string {
			return strftime.Format(format, t)
		})
	}
}

func julian(c *callContext, a *argList) value.Value {
	x := a.value("x")
	origin := c.origin(a)
	var ret *value.Double
	if value.Inherits(x, "Date") >= 0 {
		ret = value.StripAttributes(c.coerce(x, value.TypeDouble)).(*value.Double).Clone().(*value.Double)
	} else if value.Inherits(x, "POSIXct") >= 0 {
		ret = value.StripAttributes(c.coerce(x, value.TypeDouble)).(*value.Double).Clone().(*value.Double)
		for k := 0; k < ret.Len(); k++ {
			if !ret.IsNA(k) {
				ret.Set(k, ret.At(k)/secondsPerDay)
			}
		}
	} else {
		c.errorf("no applicable method for 'julian' applied to an object of class \"%s\"", value.ClassOf(x)[0])
	}
	for k := 0; k < ret.Len(); k++ {
		if !ret.IsNA(k) {
			ret.Set(k, ret.At(k)-origin)
		}
	}
	mustSetAttr(ret, "origin", newDate(value.Num(origin)))
	return ret
}
