package interp

import (
	"math"
	"strings"

	"github.com/thought-machine/rcore/src/value"
)

func registerSubset(i *Interpreter) {
	b := i.setNativeCode("[", subset, "x", "...", "drop", "exact")
	b.generic, b.allowEmpty = true, true
	i.setNativeCode("[[", subset2, "x", "...", "exact").generic = true
	i.setSpecial("$", dollar, "x", "name")
	b = i.setNativeCode("[<-", subassign, "x", "...", "value")
	b.generic, b.allowEmpty = true, true
	i.setNativeCode("[[<-", subassign2, "x", "...", "value").generic = true
	i.setNativeCode("$<-", dollarAssign, "x", "name", "value").generic = true
	i.setNativeCode("getElement", getElement, "object", "name")
}

// A subscript is an index resolved against a vector of length n. Positions at or past n
// are out of range and -1 marks an NA subscript. newNames holds the names of elements
// that character subscripts create past the end, at positions n, n+1 and so on.
type subscript struct {
	pos      []int
	newNames []string
	hasNA    bool
}

// extent returns one past the largest position.
func (s *subscript) extent(n int) int {
	for _, p := range s.pos {
		n = max(n, p+1)
	}
	return n
}

// subscript resolves an index for [ or [<-.
func (c *callContext) subscript(idx value.Value, n int, names *value.Character, assign bool) *subscript {
	s := &subscript{}
	if idx == nil || idx == value.Missing {
		s.pos = make([]int, n)
		for k := range s.pos {
			s.pos[k] = k
		}
		return s
	}
	if value.Inherits(idx, "factor") >= 0 {
		idx = value.StripAttributes(idx)
	}
	switch x := idx.(type) {
	case *value.NullValue:
		s.pos = []int{}
	case *value.Logical:
		if x.Len() == 0 {
			s.pos = []int{}
			break
		}
		m := max(n, x.Len())
		for k := 0; k < m; k++ {
			j := k % x.Len()
			if x.IsNA(j) {
				s.pos = append(s.pos, -1)
				s.hasNA = true
			} else if x.At(j) {
				s.pos = append(s.pos, k)
			}
		}
	case *value.Character:
		created := map[string]int{}
		for k := 0; k < x.Len(); k++ {
			if x.IsNA(k) {
				s.pos = append(s.pos, -1)
				s.hasNA = true
				continue
			}
			name := x.At(k)
			p := -1
			if names != nil && name != "" {
				for j := 0; j < names.Len() && j < n; j++ {
					if !names.IsNA(j) && names.At(j) == name {
						p = j
						break
					}
				}
			}
			if p < 0 && assign {
				if q, present := created[name]; present {
					p = q
				} else {
					p = n + len(s.newNames)
					created[name] = p
					s.newNames = append(s.newNames, name)
				}
			}
			if p < 0 {
				p = n + x.Len()
			}
			s.pos = append(s.pos, p)
		}
	case *value.Integer, *value.Double:
		d := c.coerce(x, value.TypeDouble).(*value.Double)
		neg, pos := false, false
		for k := 0; k < d.Len(); k++ {
			if d.IsNA(k) || math.IsNaN(d.At(k)) {
				continue
			} else if d.At(k) <= -1 {
				neg = true
			} else if d.At(k) >= 1 {
				pos = true
			}
		}
		if neg {
			if pos {
				c.errorf("can't mix positive and negative subscripts")
			} else if d.AnyNA() {
				c.errorf("can't mix NAs and negative subscripts")
			}
			excluded := make([]bool, n)
			for k := 0; k < d.Len(); k++ {
				if j := int(-d.At(k)) - 1; j >= 0 && j < n {
					excluded[j] = true
				}
			}
			s.pos = []int{}
			for k, ex := range excluded {
				if !ex {
					s.pos = append(s.pos, k)
				}
			}
			break
		}
		s.pos = make([]int, 0, d.Len())
		for k := 0; k < d.Len(); k++ {
			if d.IsNA(k) || math.IsNaN(d.At(k)) {
				s.pos = append(s.pos, -1)
				s.hasNA = true
			} else if f := math.Trunc(d.At(k)); f >= 1 {
				if f > float64(c.i.session.MaxVectorSize) {
					c.errorf("subscript too large")
				}
				s.pos = append(s.pos, int(f)-1)
			}
		}
	default:
		c.typeErrorf("invalid subscript type '%s'", idx.Type())
	}
	return s
}

// notSubsettable raises the error for values that can't be indexed.
func (c *callContext) notSubsettable(x value.Value) {
	c.typeErrorf("object of type '%s' is not subsettable", x.Type())
}

// extract takes the elements of x at the given positions, with their names.
func extract(x value.Vector, pos []int) value.Vector {
	n := x.Len()
	ret := x.Empty(len(pos))
	for k, p := range pos {
		if p >= 0 && p < n {
			ret.CopyFrom(k, x, p)
		} else {
			ret.SetNA(k)
		}
	}
	if names := value.Names(x); names != nil {
		nn := value.NewCharacter(len(pos))
		for k, p := range pos {
			if p >= 0 && p < n {
				nn.CopyFrom(k, names, p)
			} else {
				nn.SetNA(k)
			}
		}
		mustSetAttr(ret, "names", nn)
	}
	return ret
}

// languageList converts a call to a list of its function and arguments.
func languageList(l *value.Language) *value.List {
	ret := value.NewList(len(l.Args) + 1)
	ret.Set(0, l.Fn)
	names := make([]string, len(l.Args)+1)
	named := false
	for k, a := range l.Args {
		ret.Set(k+1, a.Value)
		names[k+1] = a.Name
		named = named || a.Name != ""
	}
	if named {
		mustSetAttr(ret, "names", value.CharacterOf(names...))
	}
	return ret
}

// listLanguage converts a list back to a call.
func (c *callContext) listLanguage(l value.Vector) *value.Language {
	if l.Len() == 0 {
		c.errorf("invalid argument list")
	}
	ret := &value.Language{Fn: value.Elem(l, 0), Args: make([]value.Arg, l.Len()-1)}
	for k := range ret.Args {
		ret.Args[k] = value.Arg{Name: value.NameAt(l, k+1), Value: value.Elem(l, k+1)}
	}
	return ret
}

// pairlistList converts a pairlist to a list.
func pairlistList(p *value.Pairlist) *value.List {
	ret := value.NewList(len(p.Items))
	names := make([]string, len(p.Items))
	for k, a := range p.Items {
		ret.Set(k, a.Value)
		names[k] = a.Name
	}
	mustSetAttr(ret, "names", value.CharacterOf(names...))
	return ret
}

func subset(c *callContext, a *argList) value.Value {
	x := a.value("x")
	drop := a.flagOr("drop", true)
	switch v := x.(type) {
	case *value.NullValue:
		return value.Null
	case *value.Language:
		ret := c.subsetVector(languageList(v), a.dots, drop)
		return c.listLanguage(ret.(value.Vector))
	case *value.Pairlist:
		return c.subsetVector(pairlistList(v), a.dots, drop)
	case value.Vector:
		return c.subsetVector(v, a.dots, drop)
	}
	c.notSubsettable(x)
	return nil
}

func (c *callContext) subsetVector(x value.Vector, dots []value.Arg, drop bool) value.Value {
	dims := value.Dim(x)
	var ret value.Vector
	switch {
	case len(dots) == 0:
		return x
	case len(dots) == 1:
		idx := dots[0].Value
		if m := value.Dim(idx); len(m) == 2 && len(dims) == m[1] && value.IsNumeric(idx) {
			return extract(x, c.matrixIndex(idx.(value.Vector), dims))
		}
		ret = extract(x, c.subscript(idx, x.Len(), value.Names(x), false).pos)
		if idx == value.Missing {
			ret.SetAttrs(x.Attrs().Clone())
			return ret
		}
		if len(dims) == 1 {
			if dn, ok := value.Attr(x, "dimnames").(*value.List); ok && dn.Len() == 1 {
				if names, ok := dn.At(0).(*value.Character); ok {
					mustSetAttr(ret, "names", extract(names, c.subscript(idx, x.Len(), names, false).pos))
				}
			}
		}
	case len(dots) == len(dims):
		idx := make([]value.Value, len(dots))
		for k, d := range dots {
			idx[k] = d.Value
		}
		ret = c.subsetArray(x, dims, idx, drop)
	default:
		c.errorf("incorrect number of dimensions")
	}
	if value.Inherits(x, "factor") >= 0 {
		mustSetAttr(ret, "levels", value.Attr(x, "levels"))
		mustSetAttr(ret, "class", value.Attr(x, "class"))
	}
	return ret
}

// matrixIndex converts a matrix of subscripts, one row per element, to flat positions.
func (c *callContext) matrixIndex(idx value.Vector, dims []int) []int {
	m := c.coerce(value.StripAttributes(idx), value.TypeInteger).(*value.Integer)
	rows := m.Len() / len(dims)
	ret := make([]int, rows)
	for r := range ret {
		pos, stride := 0, 1
		for d, extent := range dims {
			k := d*rows + r
			if m.IsNA(k) {
				pos = -1
				break
			}
			j := m.At(k)
			if j < 1 || j > extent {
				c.errorf("subscript out of bounds")
			}
			pos += (j - 1) * stride
			stride *= extent
		}
		ret[r] = pos
	}
	return ret
}

// arrayPositions resolves one subscript per dimension and returns the flat positions
// they select in column-major order, and the extent of each result dimension.
func (c *callContext) arrayPositions(x value.Value, dims []int, idx []value.Value) ([]int, []*subscript) {
	dimnames, _ := value.Attr(x, "dimnames").(*value.List)
	subs := make([]*subscript, len(dims))
	total := 1
	for d, extent := range dims {
		var names *value.Character
		if dimnames != nil {
			names, _ = dimnames.At(d).(*value.Character)
		}
		s := c.subscript(idx[d], extent, names, false)
		for _, p := range s.pos {
			if p >= extent {
				c.errorf("subscript out of bounds")
			}
		}
		subs[d] = s
		total *= len(s.pos)
	}
	ret := make([]int, total)
	counter := make([]int, len(dims))
	for k := range ret {
		pos, stride := 0, 1
		for d, extent := range dims {
			p := subs[d].pos[counter[d]]
			if p < 0 {
				pos = -1
				break
			}
			pos += p * stride
			stride *= extent
		}
		ret[k] = pos
		for d := range counter {
			counter[d]++
			if counter[d] < len(subs[d].pos) {
				break
			}
			counter[d] = 0
		}
	}
	return ret, subs
}

func (c *callContext) subsetArray(x value.Vector, dims []int, idx []value.Value, drop bool) value.Vector {
	pos, subs := c.arrayPositions(x, dims, idx)
	ret := x.Empty(len(pos))
	for k, p := range pos {
		if p < 0 {
			ret.SetNA(k)
		} else {
			ret.CopyFrom(k, x, p)
		}
	}
	dimnames, _ := value.Attr(x, "dimnames").(*value.List)
	newDims := make([]int, 0, len(dims))
	var newNames []value.Value
	var dnNames []string
	for d, s := range subs {
		if drop && len(s.pos) == 1 {
			continue
		}
		newDims = append(newDims, len(s.pos))
		var names value.Value = value.Null
		if dimnames != nil {
			if dn, ok := dimnames.At(d).(*value.Character); ok {
				names = extract(value.StripAttributes(dn).(value.Vector), s.pos)
			}
			dnNames = append(dnNames, value.NameAt(dimnames, d))
		}
		newNames = append(newNames, names)
	}
	if len(newDims) <= 1 && drop {
		if len(newNames) == 1 && !value.IsNull(newNames[0]) {
			mustSetAttr(ret, "names", newNames[0])
		}
		return ret
	}
	mustSetAttr(ret, "dim", value.IntegerOf(newDims...))
	if dimnames != nil {
		dn := value.ListOf(newNames...)
		if value.Names(dimnames) != nil {
			mustSetAttr(dn, "names", value.CharacterOf(dnNames...))
		}
		mustSetAttr(ret, "dimnames", dn)
	}
	return ret
}

// index1 resolves a [[ subscript to one position; -1 means NA or no such name. For
// assignment, names that don't exist resolve to n and are returned.
func (c *callContext) index1(idx value.Value, n int, names *value.Character, exact, assign bool) (int, string) {
	if idx.Len() != 1 {
		if idx.Len() == 0 {
			c.errorf("attempt to select less than one element in get1index")
		}
		c.errorf("attempt to select more than one element in vectorIndex")
	}
	switch s := idx.(type) {
	case *value.Character:
		if s.IsNA(0) {
			return -1, ""
		}
		name := s.At(0)
		partial, matches := -1, 0
		for k := 0; names != nil && k < names.Len(); k++ {
			if names.IsNA(k) {
				continue
			} else if names.At(k) == name {
				return k, name
			} else if !exact && strings.HasPrefix(names.At(k), name) {
				partial = k
				matches++
			}
		}
		if matches == 1 {
			return partial, name
		} else if assign {
			return n, name
		}
		return -1, name
	case *value.Logical, *value.Integer, *value.Double:
		f, ok := asFloat(idx)
		if !ok || math.IsNaN(f) {
			return -1, ""
		}
		k := int(math.Trunc(f))
		switch {
		case k >= 1:
			return k - 1, ""
		case k == 0:
			c.errorf("attempt to select less than one element in get1index <real>")
		case n == 2 && k >= -2:
			return 2 + k, ""
		}
		c.errorf("invalid negative subscript in get1index <real>")
	}
	c.typeErrorf("invalid subscript type '%s'", idx.Type())
	return -1, ""
}

func subset2(c *callContext, a *argList) value.Value {
	exact := a.flagOr("exact", true)
	x := a.value("x")
	if len(a.dots) == 0 {
		c.errorf("invalid subscript")
	}
	for _, d := range a.dots {
		if d.Value == value.Missing {
			c.errorf("invalid subscript")
		}
	}
	if len(a.dots) > 1 {
		vec, ok := x.(value.Vector)
		dims := value.Dim(x)
		if !ok || len(dims) != len(a.dots) {
			c.errorf("incorrect number of subscripts")
		}
		idx := make([]value.Value, len(a.dots))
		for k, d := range a.dots {
			if d.Value.Len() != 1 {
				c.errorf("subscript out of bounds")
			}
			idx[k] = d.Value
		}
		pos, _ := c.arrayPositions(x, dims, idx)
		if pos[0] < 0 {
			return naOf(vec.Type())
		}
		return value.Elem(vec, pos[0])
	}
	idx := a.dots[0].Value
	if _, isList := x.(*value.List); isList && idx.Len() > 1 {
		vec := idx.(value.Vector)
		for k := 0; k < vec.Len(); k++ {
			x = c.element(x, value.Elem(vec, k), exact)
		}
		return x
	}
	return c.element(x, idx, exact)
}

// element implements x[[i]] for a single subscript.
func (c *callContext) element(x, idx value.Value, exact bool) value.Value {
	switch v := x.(type) {
	case *value.NullValue:
		return value.Null
	case *value.Env:
		name, ok := asString(idx)
		if !ok || idx.Type() != value.TypeCharacter {
			c.typeErrorf("wrong arguments for subsetting an environment")
		}
		b, present := v.Get(name)
		if !present {
			return value.Null
		}
		return c.i.forceBinding(name, b)
	case *value.Language:
		return c.element(languageList(v), idx, exact)
	case *value.Pairlist:
		return c.element(pairlistList(v), idx, exact)
	case value.Vector:
		pos, _ := c.index1(idx, v.Len(), value.Names(v), exact, false)
		_, isList := v.(*value.List)
		_, isExpr := v.(*value.Expression)
		if pos < 0 {
			if isList || isExpr {
				if idx.Type() == value.TypeCharacter {
					return value.Null
				}
				c.errorf("subscript out of bounds")
			}
			if idx.Type() == value.TypeCharacter {
				c.errorf("subscript out of bounds")
			}
			return naOf(v.Type())
		} else if pos >= v.Len() {
			c.errorf("subscript out of bounds")
		}
		return value.Elem(v, pos)
	}
	c.notSubsettable(x)
	return nil
}

// dollarName returns the name in x$name, which may be a symbol or a string.
func (c *callContext) dollarName(v value.Value) value.Value {
	switch n := v.(type) {
	case *value.Symbol:
		return value.Str(n.Name)
	case *value.Character:
		if n.Len() == 1 {
			return n
		}
	case *value.Language:
		if n.FnName() == "quote" && len(n.Args) == 1 {
			return c.dollarName(n.Args[0].Value)
		}
	}
	c.errorf("invalid subscript type '%s'", v.Type())
	return nil
}

func dollar(c *callContext, a *argList) value.Value {
	x := c.i.eval(a.value("x"), c.env)
	name := c.dollarName(a.value("name"))
	if value.IsObject(x) {
		args := []value.Arg{{Value: x}, {Value: name}}
		if ret, ok := c.i.dispatchInternal(c.b, c.call, args, c.env); ok {
			return ret
		}
	}
	switch v := x.(type) {
	case *value.NullValue:
		return value.Null
	case *value.Env:
		return c.element(v, name, true)
	case *value.List, *value.Pairlist, *value.Language, *value.Expression:
		vec := v
		if p, ok := v.(*value.Pairlist); ok {
			vec = pairlistList(p)
		} else if l, ok := v.(*value.Language); ok {
			vec = languageList(l)
		}
		pos, _ := c.index1(name, vec.Len(), value.Names(vec), false, false)
		if pos < 0 {
			return value.Null
		}
		return value.Elem(vec.(value.Vector), pos)
	case value.Vector:
		c.typeErrorf("$ operator is invalid for atomic vectors")
	}
	c.notSubsettable(x)
	return nil
}

func getElement(c *callContext, a *argList) value.Value {
	return c.element(a.value("object"), a.value("name"), true)
}

// replacementVector returns the value being assigned as a vector, and whether it has to
// be stored as a list element.
func replacementVector(v value.Value) (value.Vector, bool) {
	if vec, ok := v.(value.Vector); ok {
		return vec, false
	}
	return value.ListOf(v), true
}

// promote converts x and the replacement to a common type for [<- and [[<-.
func (c *callContext) promote(x value.Vector, val value.Vector) (value.Vector, value.Vector) {
	xt, vt := x.Type(), val.Type()
	switch {
	case xt == vt:
		return c.modifiable(x).(value.Vector), val
	case xt == value.TypeList || xt == value.TypeExpression:
		return c.modifiable(x).(value.Vector), val
	case vt == value.TypeList || vt == value.TypeExpression:
		l, err := value.AsList(x)
		c.check(err)
		l.SetAttrs(x.Attrs().Clone())
		return l, val
	case combineRank(vt) > combineRank(xt):
		return c.coerce(x, vt), val
	}
	return c.modifiable(x).(value.Vector), c.coerce(val, xt)
}

// setElement stores element j of val at position i of x.
func setElement(x value.Vector, i int, val value.Vector, j int) {
	switch l := x.(type) {
	case *value.List:
		l.Set(i, value.Elem(val, j))
	case *value.Expression:
		l.Set(i, value.Elem(val, j))
	default:
		x.CopyFrom(i, val, j)
	}
}

// extend grows x to length n, extending its names and dropping any dimensions.
func extend(x value.Vector, n int, newNames []string, oldLen int) {
	names := value.Names(x)
	x.Resize(n)
	if len(newNames) == 0 && names == nil {
		return
	}
	x.Attrs().Remove("dim")
	x.Attrs().Remove("dimnames")
	nn := value.NewCharacter(n)
	for k := 0; names != nil && k < names.Len() && k < oldLen; k++ {
		nn.CopyFrom(k, names, k)
	}
	for k, name := range newNames {
		nn.Set(oldLen+k, name)
	}
	mustSetAttr(x, "names", nn)
}

// deleteElements removes the given positions from a list.
func deleteElements(x value.Vector, pos []int) value.Vector {
	drop := make(map[int]bool, len(pos))
	for _, p := range pos {
		drop[p] = true
	}
	keep := make([]int, 0, x.Len())
	for k := 0; k < x.Len(); k++ {
		if !drop[k] {
			keep = append(keep, k)
		}
	}
	ret := extract(x, keep)
	value.CopyMostAttributes(x, ret)
	return ret
}

func subassign(c *callContext, a *argList) value.Value {
	x, val := a.value("x"), a.value("value")
	switch v := x.(type) {
	case *value.NullValue:
		if value.IsNull(val) {
			return value.Null
		}
		vec, _ := replacementVector(val)
		return c.assignVector(vec.Empty(0), a.dots, val)
	case *value.Language:
		return c.listLanguage(c.assignVector(languageList(v), a.dots, val))
	case value.Vector:
		return c.assignVector(v, a.dots, val)
	}
	c.notSubsettable(x)
	return nil
}

func (c *callContext) assignVector(x value.Vector, dots []value.Arg, val value.Value) value.Vector {
	dims := value.Dim(x)
	var s *subscript
	switch {
	case len(dots) == 0:
		s = c.subscript(nil, x.Len(), nil, true)
	case len(dots) == 1:
		if m := value.Dim(dots[0].Value); len(m) == 2 && len(dims) == m[1] && value.IsNumeric(dots[0].Value) {
			s = &subscript{pos: c.matrixIndex(dots[0].Value.(value.Vector), dims)}
		} else {
			s = c.subscript(dots[0].Value, x.Len(), value.Names(x), true)
		}
	case len(dots) == len(dims):
		idx := make([]value.Value, len(dots))
		for k, d := range dots {
			idx[k] = d.Value
		}
		pos, _ := c.arrayPositions(x, dims, idx)
		s = &subscript{pos: pos}
	default:
		c.errorf("incorrect number of subscripts on matrix")
	}
	_, isList := x.(*value.List)
	if value.IsNull(val) && isList {
		var pos []int
		for _, p := range s.pos {
			if p >= 0 && p < x.Len() {
				pos = append(pos, p)
			}
		}
		return deleteElements(x, pos)
	}
	vec, _ := replacementVector(val)
	if len(s.pos) == 0 {
		return x
	} else if vec.Len() == 0 {
		c.errorf("replacement has length zero")
	} else if len(s.pos)%vec.Len() != 0 {
		c.warningf("number of items to replace is not a multiple of replacement length")
	}
	if s.hasNA && vec.Len() > 1 {
		c.errorf("NAs are not allowed in subscripted assignments")
	}
	n := x.Len()
	ret, vec := c.promote(x, vec)
	if m := s.extent(n); m > n {
		c.alloc(m)
		extend(ret, m, s.newNames, n)
	}
	for k, p := range s.pos {
		if p >= 0 {
			setElement(ret, p, vec, k%vec.Len())
		}
	}
	return ret
}

func subassign2(c *callContext, a *argList) value.Value {
	x, val := a.value("x"), a.value("value")
	if len(a.dots) == 0 {
		c.errorf("[[ ]] with missing subscript")
	}
	if len(a.dots) == 1 {
		if idx := a.dots[0].Value; idx.Len() > 1 {
			if _, ok := x.(*value.List); ok {
				return c.assignRecursive(x, idx.(value.Vector), val)
			}
		}
		return c.assignElement(x, a.dots[0].Value, val)
	}
	vec, ok := x.(value.Vector)
	dims := value.Dim(x)
	if !ok || len(dims) != len(a.dots) {
		c.errorf("[[ ]] improper number of subscripts")
	}
	idx := make([]value.Value, len(a.dots))
	for k, d := range a.dots {
		idx[k] = d.Value
	}
	pos, _ := c.arrayPositions(x, dims, idx)
	if len(pos) != 1 || pos[0] < 0 {
		c.errorf("[[ ]] subscript out of bounds")
	}
	return c.assignVector(vec, []value.Arg{{Value: value.Int(pos[0] + 1)}}, val)
}

// assignRecursive implements x[[c(i, j)]] <- value for nested lists.
func (c *callContext) assignRecursive(x value.Value, idx value.Vector, val value.Value) value.Value {
	first := value.Elem(idx, 0)
	if idx.Len() == 1 {
		return c.assignElement(x, first, val)
	}
	rest := extract(idx, seqPositions(1, idx.Len()))
	inner := c.element(x, first, true)
	return c.assignElement(x, first, c.assignRecursive(inner.Clone(), rest, val))
}

func seqPositions(from, to int) []int {
	ret := make([]int, 0, to-from)
	for k := from; k < to; k++ {
		ret = append(ret, k)
	}
	return ret
}

// assignElement implements x[[i]] <- value for a single subscript.
func (c *callContext) assignElement(x, idx, val value.Value) value.Value {
	switch v := x.(type) {
	case *value.Env:
		name, ok := asString(idx)
		if !ok || idx.Type() != value.TypeCharacter {
			c.typeErrorf("wrong args for environment subassignment")
		}
		c.check(v.Set(name, val))
		return v
	case *value.NullValue:
		if value.IsNull(val) {
			return value.Null
		}
		if vec, ok := val.(value.Vector); ok && value.IsAtomic(val) && vec.Len() == 1 {
			return c.assignElement(vec.Empty(0), idx, val)
		}
		return c.assignElement(value.NewList(0), idx, val)
	case *value.Language:
		return c.listLanguage(c.assignElement(languageList(v), idx, val).(value.Vector))
	case value.Vector:
		pos, name := c.index1(idx, v.Len(), value.Names(v), true, true)
		if pos < 0 {
			c.errorf("[[ ]] subscript out of bounds")
		}
		var newNames []string
		if pos >= v.Len() && name != "" {
			newNames = []string{name}
		}
		_, isList := v.(*value.List)
		_, isExpr := v.(*value.Expression)
		if value.IsNull(val) && (isList || isExpr) {
			if pos >= v.Len() {
				return v
			}
			return deleteElements(v, []int{pos})
		}
		var vec value.Vector
		if isList || isExpr {
			vec = value.ListOf(val)
		} else if rv, ok := val.(value.Vector); ok && value.IsAtomic(val) {
			if rv.Len() == 0 {
				c.errorf("replacement has length zero")
			} else if rv.Len() > 1 {
				c.errorf("more elements supplied than there are to replace")
			}
			vec = rv
		} else {
			vec = value.ListOf(val)
		}
		n := v.Len()
		ret, vec := c.promote(v, vec)
		if pos >= n {
			c.alloc(pos + 1)
			extend(ret, pos+1, newNames, n)
		}
		setElement(ret, pos, vec, 0)
		return ret
	}
	c.notSubsettable(x)
	return nil
}

func dollarAssign(c *callContext, a *argList) value.Value {
	x, val := a.value("x"), a.value("value")
	name := c.dollarName(a.value("name"))
	if vec, ok := x.(value.Vector); ok && value.IsAtomic(x) {
		if vec.Len() > 0 {
			c.warningf("Coercing LHS to a list")
		}
		l, err := value.AsList(x)
		c.check(err)
		l.SetAttrs(x.Attrs().Clone())
		x = l
		c.owned = true
	} else if _, ok := x.(*value.Pairlist); ok {
		x = pairlistList(x.(*value.Pairlist))
	} else if value.IsNull(x) {
		x = value.NewList(0)
	}
	return c.assignElement(x, name, val)
}
