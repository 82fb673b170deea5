package value

// RecycledLength returns the length of the result of an elementwise operation on
// operands of lengths m and n, and whether the longer length is not a multiple of the
// shorter (which merits a warning). Any zero-length operand gives a zero-length result.
func RecycledLength(m, n int) (int, bool) {
	if m == 0 || n == 0 {
		return 0, false
	}
	long, short := max(m, n), min(m, n)
	return long, long%short != 0
}

// RecycledLengthN is the multi-operand version of RecycledLength.
func RecycledLengthN(lengths ...int) (int, bool) {
	n := 0
	for _, l := range lengths {
		if l == 0 {
			return 0, false
		}
		n = max(n, l)
	}
	for _, l := range lengths {
		if n%l != 0 {
			return n, true
		}
	}
	return n, false
}

// RecycleAttributes copies attributes onto the result of an elementwise binary operation:
// those of the operand as long as the result, with x taking precedence over y.
func RecycleAttributes(result, x, y Value) {
	n := result.Len()
	var attrs *Attributes
	if y.Len() == n {
		attrs = y.Attrs().Clone()
	}
	if x.Len() == n {
		x.Attrs().Each(func(name string, v Value) {
			if attrs == nil {
				attrs = &Attributes{}
			}
			attrs.Set(name, v)
		})
	}
	result.SetAttrs(attrs)
}
