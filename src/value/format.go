package value

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// FormatLogical formats a logical element.
func FormatLogical(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// FormatDouble formats a single double with up to the given number of significant digits,
// choosing fixed or scientific notation by whichever is narrower (fixed wins ties).
func FormatDouble(x float64, digits int) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Inf"
	case math.IsInf(x, -1):
		return "-Inf"
	case x == 0:
		return "0"
	}
	nsig, e := significance(x, digits)
	f := realFormat{neg: x < 0, nsig: nsig, left: intDigits(e), rgt: max(0, nsig-e-1), bigExp: e >= 100 || e <= -100}
	if f.fixedWidth() <= f.sciWidth() {
		return strconv.FormatFloat(x, 'f', f.rgt, 64)
	}
	return strconv.FormatFloat(x, 'e', nsig-1, 64)
}

// FormatDoubles formats a vector of doubles with a common notation and number of decimal
// places, the way print() lays them out. NAs are formatted as "NA". Elements are not padded.
func FormatDoubles(v *Double, digits, scipen int) []string {
	f := realFormat{}
	finite := false
	for i, x := range v.Data() {
		if v.IsNA(i) || math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		if x < 0 {
			f.neg = true
		}
		nsig, e := 1, 0
		if x != 0 {
			nsig, e = significance(x, digits)
		}
		f.nsig = max(f.nsig, nsig)
		f.left = max(f.left, intDigits(e))
		f.rgt = max(f.rgt, nsig-e-1)
		f.bigExp = f.bigExp || e >= 100 || e <= -100
		finite = true
	}
	sci := finite && f.fixedWidth() > f.sciWidth()+scipen
	ret := make([]string, v.Len())
	for i, x := range v.Data() {
		switch {
		case v.IsNA(i):
			ret[i] = "NA"
		case math.IsNaN(x) || math.IsInf(x, 0):
			ret[i] = FormatDouble(x, digits)
		case sci:
			ret[i] = strconv.FormatFloat(x, 'e', f.nsig-1, 64)
		default:
			ret[i] = strconv.FormatFloat(x, 'f', f.rgt, 64)
		}
	}
	return ret
}

type realFormat struct {
	neg             bool
	nsig, left, rgt int
	bigExp          bool
}

func (f realFormat) fixedWidth() int {
	w := f.left
	if f.neg {
		w++
	}
	if f.rgt > 0 {
		w += f.rgt + 1
	}
	return w
}

func (f realFormat) sciWidth() int {
	w := f.nsig + 4
	if f.nsig > 1 {
		w++
	}
	if f.neg {
		w++
	}
	if f.bigExp {
		w++
	}
	return w
}

func intDigits(e int) int {
	if e >= 0 {
		return e + 1
	}
	return 1
}

// significance returns the number of significant digits needed to show x to the given
// precision, and its decimal exponent after rounding.
func significance(x float64, digits int) (int, int) {
	s := strconv.FormatFloat(math.Abs(x), 'e', digits-1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	e, _ := strconv.Atoi(exp)
	mant = strings.TrimRight(strings.Replace(mant, ".", "", 1), "0")
	return max(1, len(mant)), e
}

// FormatComplex formats a complex number as re+imi.
func FormatComplex(c complex128, digits int) string {
	re := FormatDouble(real(c), digits)
	im := imag(c)
	if math.Signbit(im) && !math.IsNaN(im) {
		return re + "-" + FormatDouble(-im, digits) + "i"
	}
	return re + "+" + FormatDouble(im, digits) + "i"
}

// Quote returns a string in double quotes with R's escapes applied.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		default:
			if r < 0x80 && !unicode.IsPrint(r) {
				b.WriteString(`\` + strconv.FormatInt(int64(r), 8))
			} else if !unicode.IsPrint(r) {
				b.WriteString(`\u` + strconv.FormatInt(int64(r), 16))
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

var reservedWords = map[string]bool{
	"if": true, "else": true, "repeat": true, "while": true, "function": true, "for": true,
	"next": true, "break": true, "TRUE": true, "FALSE": true, "NULL": true, "Inf": true,
	"NaN": true, "NA": true, "NA_integer_": true, "NA_real_": true, "NA_character_": true,
	"NA_complex_": true, "in": true,
}

// IsSyntacticName returns true if the name can be used in code without backquotes.
func IsSyntacticName(s string) bool {
	if s == "..." {
		return true
	} else if s == "" || reservedWords[s] {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '.' {
				return false
			}
		} else if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_' {
			return false
		}
	}
	if s[0] == '.' && len(s) > 1 && s[1] >= '0' && s[1] <= '9' {
		return false
	}
	return true
}

// QuoteName returns the name in backquotes if it isn't syntactic.
func QuoteName(s string) string {
	if IsSyntacticName(s) {
		return s
	}
	return "`" + strings.ReplaceAll(s, "`", "\\`") + "`"
}
