package value

// Identical returns true if two values are exactly equal, including their attributes
// (in any order). NA and NaN are distinct from each other but equal to themselves.
func Identical(a, b Value) bool {
	if a == b {
		return true
	} else if a == nil || b == nil || a.Type() != b.Type() || a.IsS4() != b.IsS4() {
		return false
	} else if !identicalAttributes(a.Attrs(), b.Attrs()) {
		return false
	}
	switch a := a.(type) {
	case *Logical:
		return identicalVectors(&a.vector, &b.(*Logical).vector, func(x, y bool) bool { return x == y })
	case *Integer:
		return identicalVectors(&a.vector, &b.(*Integer).vector, func(x, y int) bool { return x == y })
	case *Double:
		return identicalVectors(&a.vector, &b.(*Double).vector, identicalDoubles)
	case *Complex:
		return identicalVectors(&a.vector, &b.(*Complex).vector, func(x, y complex128) bool {
			return identicalDoubles(real(x), real(y)) && identicalDoubles(imag(x), imag(y))
		})
	case *Character:
		return identicalVectors(&a.vector, &b.(*Character).vector, func(x, y string) bool { return x == y })
	case *Raw:
		return identicalVectors(&a.vector, &b.(*Raw).vector, func(x, y byte) bool { return x == y })
	case *List:
		return identicalVectors(&a.vector, &b.(*List).vector, Identical)
	case *Expression:
		return identicalVectors(&a.vector, &b.(*Expression).vector, Identical)
	case *Language:
		b := b.(*Language)
		return Identical(a.Fn, b.Fn) && identicalArgs(a.Args, b.Args)
	case *Pairlist:
		return identicalArgs(a.Items, b.(*Pairlist).Items)
	case *Closure:
		b := b.(*Closure)
		return a.Env == b.Env && Identical(a.Body, b.Body) && identicalArgs(a.Formals, b.Formals)
	case *Builtin:
		return a.Name == b.(*Builtin).Name
	case *NullValue:
		return true
	}
	return false
}

func identicalDoubles(x, y float64) bool {
	return x == y || (x != x && y != y)
}

func identicalVectors[T any](a, b *vector[T], eq func(x, y T) bool) bool {
	if len(a.data) != len(b.data) {
		return false
	}
	for i, x := range a.data {
		if na := a.IsNA(i); na != b.IsNA(i) {
			return false
		} else if !na && !eq(x, b.data[i]) {
			return false
		}
	}
	return true
}

func identicalArgs(a, b []Arg) bool {
	if len(a) != len(b) {
		return false
	}
	for i, x := range a {
		if x.Name != b[i].Name || !Identical(x.Value, b[i].Value) {
			return false
		}
	}
	return true
}

func identicalAttributes(a, b *Attributes) bool {
	if a.Len() != b.Len() {
		return false
	}
	same := true
	a.Each(func(name string, v Value) {
		if other := b.Get(name); other == nil || !Identical(v, other) {
			same = false
		}
	})
	return same
}
