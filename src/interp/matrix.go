package interp

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/thought-machine/rcore/src/value"
)

func registerMatrix(i *Interpreter) {
	i.setNativeCode("matrix", matrix, "data", "nrow", "ncol", "byrow", "dimnames")
	i.setNativeCode("nrow", dimExtent(0, false), "x")
	i.setNativeCode("ncol", dimExtent(1, false), "x")
	i.setNativeCode("NROW", dimExtent(0, true), "x")
	i.setNativeCode("NCOL", dimExtent(1, true), "x")
	i.setNativeCode("t", transpose, "x").generic = true
	i.setNativeCode("diag", diag, "x", "nrow", "ncol", "names")
	i.setNativeCode("%*%", matmul, "x", "y")
	i.setNativeCode("crossprod", crossprod(false), "x", "y")
	i.setNativeCode("tcrossprod", crossprod(true), "x", "y")
	i.setNativeCode("solve", solve, "a", "b", "...").generic = true
	i.setNativeCode("det", det, "x", "...")
	i.setNativeCode("chol", chol, "x", "...").generic = true
	i.setNativeCode("polyroot", polyroot, "z")
	i.setNativeCode("outer", outer, "X", "Y", "FUN", "...")
	i.setNativeCode("cbind", bind(false), "...", "deparse.level")
	i.setNativeCode("rbind", bind(true), "...", "deparse.level")
}

func matrix(c *callContext, a *argList) value.Value {
	data := a.opt("data", value.NALogical())
	vec, ok := data.(value.Vector)
	if !ok {
		c.errorf("'data' must be of a vector type, was '%s'", data.Type())
	}
	n := vec.Len()
	nrow, ncol := 1, 1
	hasRow, hasCol := a.has("nrow"), a.has("ncol")
	if hasRow {
		nrow = a.int("nrow")
		if nrow < 0 {
			c.errorf("invalid '%s' value (< 0)", "nrow")
		}
	}
	if hasCol {
		ncol = a.int("ncol")
		if ncol < 0 {
			c.errorf("invalid '%s' value (< 0)", "ncol")
		}
	}
	switch {
	case !hasRow && !hasCol:
		nrow = n
	case hasRow && !hasCol:
		if nrow > 0 {
			ncol = int(math.Ceil(float64(n) / float64(nrow)))
		} else {
			ncol = 0
		}
	case !hasRow && hasCol:
		if ncol > 0 {
			nrow = int(math.Ceil(float64(n) / float64(ncol)))
		} else {
			nrow = 0
		}
	}
	total := nrow * ncol
	c.alloc(total)
	if n > 1 && total > 0 {
		if (n > nrow && n/nrow*nrow != n) || (n < nrow && nrow/n*n != nrow) {
			c.warningf("data length [%d] is not a sub-multiple or multiple of the number of rows [%d]", n, nrow)
		} else if (n > ncol && n/ncol*ncol != n) || (n < ncol && ncol/n*n != ncol) {
			c.warningf("data length [%d] is not a sub-multiple or multiple of the number of columns [%d]", n, ncol)
		} else if total%n != 0 {
			c.warningf("data length differs from size of matrix: [%d != %d x %d]", n, nrow, ncol)
		}
	} else if n > 1 && total == 0 {
		c.warningf("non-empty data for zero-extent matrix")
	}
	if n == 0 && total > 0 {
		c.errorf("'data' must be of a vector type, was 'NULL'")
	}
	ret := vec.Empty(total)
	byrow := a.flagOr("byrow", false)
	for k := 0; k < total; k++ {
		src := k
		if byrow {
			src = (k%nrow)*ncol + k/nrow
		}
		ret.CopyFrom(k, vec, src%n)
	}
	mustSetAttr(ret, "dim", value.IntegerOf(nrow, ncol))
	if dn := a.opt("dimnames", value.Null); !value.IsNull(dn) {
		c.check(value.SetAttr(ret, "dimnames", dn))
	}
	return ret
}

func dimExtent(which int, vectorLength bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x := a.value("x")
		if dims := value.Dim(x); len(dims) > which {
			return value.Int(dims[which])
		} else if vectorLength {
			if which == 0 {
				return value.Int(x.Len())
			}
			return value.Int(1)
		}
		return value.Null
	}
}

// matrixDims returns the dimensions of x treated as a matrix; plain vectors are columns.
func matrixDims(x value.Value) (int, int, bool) {
	if dims := value.Dim(x); len(dims) == 2 {
		return dims[0], dims[1], true
	}
	return x.Len(), 1, false
}

func transpose(c *callContext, a *argList) value.Value {
	xv := a.value("x")
	x, ok := xv.(value.Vector)
	if !ok {
		c.errorf("argument is not a matrix")
	}
	dims := value.Dim(x)
	if len(dims) > 2 {
		c.errorf("argument is not a matrix")
	}
	nrow, ncol, isMatrix := matrixDims(x)
	ret := x.Empty(x.Len())
	for r := 0; r < nrow; r++ {
		for col := 0; col < ncol; col++ {
			ret.CopyFrom(col+r*ncol, x, r+col*nrow)
		}
	}
	mustSetAttr(ret, "dim", value.IntegerOf(ncol, nrow))
	if isMatrix {
		if dn, ok := value.Attr(x, "dimnames").(*value.List); ok {
			tdn := value.ListOf(dn.At(1), dn.At(0))
			if names := value.Names(dn); names != nil {
				mustSetAttr(tdn, "names", value.CharacterOf(value.NameAt(dn, 1), value.NameAt(dn, 0)))
			}
			mustSetAttr(ret, "dimnames", tdn)
		}
	} else if names := value.Attr(x, "names"); names != nil {
		mustSetAttr(ret, "dimnames", value.ListOf(value.Null, names))
	}
	return ret
}

// dense converts a numeric vector or matrix to a gonum matrix. It also reports whether
// any element was NA.
func (c *callContext) dense(v value.Value, nrow, ncol int) (*mat.Dense, bool) {
	if !value.IsNumeric(v) {
		c.typeErrorf("requires numeric/complex matrix/vector arguments")
	}
	d := c.coerce(v, value.TypeDouble).(*value.Double)
	data := make([]float64, nrow*ncol)
	for r := 0; r < nrow; r++ {
		for col := 0; col < ncol; col++ {
			k := r + col*nrow
			if d.IsNA(k) {
				data[r*ncol+col] = math.NaN()
			} else {
				data[r*ncol+col] = d.At(k)
			}
		}
	}
	if nrow == 0 || ncol == 0 {
		return nil, false
	}
	return mat.NewDense(nrow, ncol, data), d.AnyNA()
}

// fromDense converts a gonum matrix back to a column-major double matrix.
func fromDense(m mat.Matrix, na bool) *value.Double {
	nrow, ncol := m.Dims()
	ret := value.NewDouble(nrow * ncol)
	for r := 0; r < nrow; r++ {
		for col := 0; col < ncol; col++ {
			x := m.At(r, col)
			if na && math.IsNaN(x) {
				ret.SetNA(r + col*nrow)
			} else {
				ret.Set(r+col*nrow, x)
			}
		}
	}
	mustSetAttr(ret, "dim", value.IntegerOf(nrow, ncol))
	return ret
}

// zeroMatrix returns a double matrix of zeros.
func zeroMatrix(nrow, ncol int) *value.Double {
	ret := value.NewDouble(nrow * ncol)
	mustSetAttr(ret, "dim", value.IntegerOf(nrow, ncol))
	return ret
}

// product multiplies x by y after working out how vectors should be oriented.
func (c *callContext) product(xv, yv value.Value, transX, transY bool) value.Value {
	xr, xc, xm := matrixDims(xv)
	yr, yc, ym := matrixDims(yv)
	if transX {
		xr, xc = xc, xr
	}
	if transY {
		yr, yc = yc, yr
	}
	switch {
	case !xm && !ym:
		if transX || transY {
			break
		}
		if xr == yr {
			xr, xc = 1, xr
		} else if yr == 1 {
			xc = 1
		}
	case !xm:
		if xr == yr {
			xr, xc = 1, xr
		} else if yr == 1 {
			xc = 1
		}
	case !ym:
		if yr == xc {
			yc = 1
		} else if xc == 1 {
			yr, yc = 1, yr
		}
	}
	if xc != yr {
		c.errorf("non-conformable arguments")
	}
	if xr == 0 || yc == 0 || xc == 0 {
		return zeroMatrix(xr, yc)
	}
	r, cols := orient(xr, xc, transX)
	xd, xna := c.dense(xv, r, cols)
	r, cols = orient(yr, yc, transY)
	yd, yna := c.dense(yv, r, cols)
	var x, y mat.Matrix = xd, yd
	if transX {
		x = xd.T()
	}
	if transY {
		y = yd.T()
	}
	var ret mat.Dense
	ret.Mul(x, y)
	return fromDense(&ret, xna || yna)
}

// orient returns the stored shape of an operand that may be used transposed.
func orient(r, c int, trans bool) (int, int) {
	if trans {
		return c, r
	}
	return r, c
}

func matmul(c *callContext, a *argList) value.Value {
	return c.product(a.value("x"), a.value("y"), false, false)
}

func crossprod(t bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		x := a.value("x")
		y := a.opt("y", x)
		if value.IsNull(y) {
			y = x
		}
		if t {
			return c.product(x, y, false, true)
		}
		return c.product(x, y, true, false)
	}
}

// squareMatrix converts an argument that must be a square numeric matrix.
func (c *callContext) squareMatrix(v value.Value, name string) (*mat.Dense, int) {
	nrow, ncol, isMatrix := matrixDims(v)
	if !isMatrix && nrow == 1 {
		isMatrix = true
	}
	if !isMatrix || nrow != ncol {
		c.errorf("'%s' (%d x %d) must be square", name, nrow, ncol)
	}
	if nrow == 0 {
		c.errorf("'%s' is 0-diml", name)
	}
	m, na := c.dense(v, nrow, ncol)
	if na {
		c.errorf("'%s' contains missing values", name)
	}
	return m, nrow
}

func solve(c *callContext, a *argList) value.Value {
	am, n := c.squareMatrix(a.value("a"), "a")
	var b mat.Matrix
	bv := a.opt("b", value.Null)
	bIsVector := false
	if value.IsNull(bv) {
		id := mat.NewDiagDense(n, nil)
		for k := 0; k < n; k++ {
			id.SetDiag(k, 1)
		}
		b = id
	} else {
		br, bc, isMatrix := matrixDims(bv)
		bIsVector = !isMatrix
		if br != n {
			c.errorf("'b' (%d x %d) must be compatible with 'a' (%d x %d)", br, bc, n, n)
		}
		bd, na := c.dense(bv, br, bc)
		if na {
			c.errorf("'b' contains missing values")
		}
		b = bd
	}
	var lu mat.LU
	lu.Factorize(am)
	if lu.Det() == 0 {
		c.domainErrorf("Lapack routine dgesv: system is exactly singular")
	}
	var x mat.Dense
	if err := lu.SolveTo(&x, false, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			c.domainErrorf("system is computationally singular: reciprocal condition number = %g", 1/float64(cond))
		}
		c.check(err)
	}
	ret := fromDense(&x, false)
	if bIsVector {
		ret.SetAttrs(nil)
	}
	return ret
}

func det(c *callContext, a *argList) value.Value {
	m, _ := c.squareMatrix(a.value("x"), "a")
	return value.Num(mat.Det(m))
}

func chol(c *callContext, a *argList) value.Value {
	m, n := c.squareMatrix(a.value("x"), "a")
	sym := mat.NewSymDense(n, nil)
	for r := 0; r < n; r++ {
		for col := r; col < n; col++ {
			sym.SetSym(r, col, m.At(r, col))
		}
	}
	var ch mat.Cholesky
	if !ch.Factorize(sym) {
		c.domainErrorf("the leading minor of order %d is not positive", failingMinor(sym))
	}
	var u mat.TriDense
	ch.UTo(&u)
	ret := fromDense(&u, false)
	if dn := value.Attr(a.value("x"), "dimnames"); dn != nil {
		mustSetAttr(ret, "dimnames", dn)
	}
	return ret
}

// failingMinor returns the order of the first leading minor of a that isn't positive definite.
func failingMinor(a *mat.SymDense) int {
	n := a.SymmetricDim()
	for k := 1; k <= n; k++ {
		var ch mat.Cholesky
		if !ch.Factorize(a.SliceSym(0, k)) {
			return k
		}
	}
	return n
}

func polyroot(c *callContext, a *argList) value.Value {
	zv := a.value("z")
	if !value.IsNumeric(zv) && zv.Type() != value.TypeComplex {
		c.errorf("invalid argument type")
	}
	z := c.coerce(zv, value.TypeComplex).(*value.Complex)
	for k := 0; k < z.Len(); k++ {
		if z.IsNA(k) || value.IsNaN(z, k) {
			c.errorf("invalid polynomial coefficient")
		}
	}
	coef := append([]complex128(nil), z.Data()...)
	for len(coef) > 0 && coef[len(coef)-1] == 0 {
		coef = coef[:len(coef)-1]
	}
	degree := len(coef) - 1
	if degree < 1 {
		return value.NewComplex(0)
	}
	for _, x := range coef {
		if imag(x) != 0 {
			return value.ComplexOf(complexRoots(coef)...)
		}
	}
	// The eigenvalues of the companion matrix are the roots.
	lead := real(coef[degree])
	companion := mat.NewDense(degree, degree, nil)
	for k := 0; k < degree; k++ {
		companion.Set(0, k, -real(coef[degree-1-k])/lead)
		if k > 0 {
			companion.Set(k, k-1, 1)
		}
	}
	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenNone) {
		c.domainErrorf("root finding code failed")
	}
	return value.ComplexOf(eig.Values(nil)...)
}

// complexRoots finds the roots of a polynomial with complex coefficients by
// Durand-Kerner iteration.
func complexRoots(coef []complex128) []complex128 {
	degree := len(coef) - 1
	monic := make([]complex128, len(coef))
	for k, x := range coef {
		monic[k] = x / coef[degree]
	}
	eval := func(x complex128) complex128 {
		ret := complex(1, 0)
		for k := degree - 1; k >= 0; k-- {
			ret = ret*x + monic[k]
		}
		return ret
	}
	roots := make([]complex128, degree)
	seed := complex(0.4, 0.9)
	roots[0] = 1
	for k := 1; k < degree; k++ {
		roots[k] = roots[k-1] * seed
	}
	for iter := 0; iter < 500; iter++ {
		delta := 0.0
		for k := range roots {
			denom := complex(1, 0)
			for j := range roots {
				if j != k {
					denom *= roots[k] - roots[j]
				}
			}
			step := eval(roots[k]) / denom
			roots[k] -= step
			delta = math.Max(delta, cmplxAbs(step))
		}
		if delta < 1e-14 {
			break
		}
	}
	return roots
}

func cmplxAbs(z complex128) float64 {
	return math.Hypot(real(z), imag(z))
}

func diag(c *callContext, a *argList) value.Value {
	x := a.opt("x", value.Num(1))
	if dims := value.Dim(x); len(dims) == 2 {
		vec := x.(value.Vector)
		n := min(dims[0], dims[1])
		ret := vec.Empty(n)
		for k := 0; k < n; k++ {
			ret.CopyFrom(k, vec, k+k*dims[0])
		}
		if dn, ok := value.Attr(x, "dimnames").(*value.List); ok && a.flagOr("names", true) {
			if rn, ok := dn.At(0).(*value.Character); ok {
				if cn, ok := dn.At(1).(*value.Character); ok && value.Identical(extract(rn, seqPositions(0, n)), extract(cn, seqPositions(0, n))) {
					mustSetAttr(ret, "names", extract(rn, seqPositions(0, n)))
				}
			}
		}
		return ret
	}
	vec, ok := x.(value.Vector)
	if !ok || !value.IsAtomic(x) {
		c.errorf("'x' must be numeric or complex")
	}
	var n int
	if vec.Len() == 1 && !a.has("nrow") && !a.has("ncol") {
		size, ok := asInt(x)
		if !ok || size < 0 {
			c.errorf("invalid 'nrow' value (< 0)")
		}
		n = size
		vec = value.Num(1)
	} else {
		n = vec.Len()
	}
	nrow := a.intOr("nrow", n)
	ncol := a.intOr("ncol", nrow)
	c.alloc(nrow * ncol)
	if vec.Type() != value.TypeComplex && vec.Type() != value.TypeLogical {
		vec = c.coerce(value.StripAttributes(vec), value.TypeDouble)
	}
	ret := vec.Empty(nrow * ncol)
	if vec.Len() > 0 {
		for k := 0; k < min(nrow, ncol); k++ {
			ret.CopyFrom(k+k*nrow, vec, k%vec.Len())
		}
	}
	mustSetAttr(ret, "dim", value.IntegerOf(nrow, ncol))
	return ret
}

func outer(c *callContext, a *argList) value.Value {
	x, y := a.vector("X"), a.vector("Y")
	var fn value.Value
	if a.has("FUN") {
		fn = a.function("FUN")
	} else {
		fn, _ = c.i.builtinValue("*")
	}
	xs := make([]int, 0, x.Len()*y.Len())
	ys := make([]int, 0, x.Len()*y.Len())
	for j := 0; j < y.Len(); j++ {
		for k := 0; k < x.Len(); k++ {
			xs = append(xs, k)
			ys = append(ys, j)
		}
	}
	args := append([]value.Arg{{Value: repeatElements(x, xs)}, {Value: repeatElements(y, ys)}}, a.dots...)
	for k := 0; k < 2; k++ {
		args[k].Value.SetAttrs(nil)
	}
	ret := c.i.callFunction(fn, args, nil, c.env)
	if ret.Len() != x.Len()*y.Len() {
		c.errorf("dims [product %d] do not match the length of object [%d]", x.Len()*y.Len(), ret.Len())
	}
	ret = c.modifiableResult(ret)
	mustSetAttr(ret, "dim", value.IntegerOf(x.Len(), y.Len()))
	xn, yn := value.Attr(x, "names"), value.Attr(y, "names")
	if xn != nil || yn != nil {
		dn := value.NewList(2)
		if xn != nil {
			dn.Set(0, xn)
		}
		if yn != nil {
			dn.Set(1, yn)
		}
		mustSetAttr(ret, "dimnames", dn)
	}
	return ret
}

// modifiableResult returns a copy of a value returned by another function if anything
// else might refer to it.
func (c *callContext) modifiableResult(v value.Value) value.Value {
	if v.Shared() {
		return v.Clone()
	}
	return v
}

// bind implements cbind and rbind.
func bind(rows bool) nativeFunc {
	return func(c *callContext, a *argList) value.Value {
		var args []value.Arg
		typ := value.TypeNull
		n := -1
		for _, d := range a.dots {
			if value.IsNull(d.Value) {
				continue
			}
			vec, ok := d.Value.(value.Vector)
			if !ok {
				c.errorf("cannot create a matrix from type '%s'", d.Value.Type())
			}
			if combineRank(vec.Type()) > combineRank(typ) {
				typ = vec.Type()
			}
			if dims := value.Dim(vec); len(dims) == 2 {
				inner := dims[0]
				if rows {
					inner = dims[1]
				}
				if n >= 0 && inner != n {
					if rows {
						c.errorf("number of columns of matrices must match (see arg %d)", len(args)+1)
					}
					c.errorf("number of rows of matrices must match (see arg %d)", len(args)+1)
				}
				n = inner
			}
			args = append(args, d)
		}
		if len(args) == 0 {
			return value.Null
		}
		if n < 0 {
			n = 0
			for _, arg := range args {
				n = max(n, arg.Value.Len())
			}
		}
		// Work out the number of slices (columns for cbind) each argument contributes.
		slices := 0
		for _, arg := range args {
			if dims := value.Dim(arg.Value); len(dims) == 2 {
				if rows {
					slices += dims[0]
				} else {
					slices += dims[1]
				}
			} else if arg.Value.Len() > 0 {
				slices++
			}
		}
		c.alloc(n * slices)
		ret, err := value.NewVector(typ, n*slices)
		c.check(err)
		sliceNames := make([]string, 0, slices)
		var otherNames value.Value
		named := false
		pos := 0
		put := func(inner, slice int, src value.Vector, j int) {
			if rows {
				setElement(ret, slice+inner*slices, src, j)
			} else {
				setElement(ret, inner+slice*n, src, j)
			}
		}
		for _, arg := range args {
			src := c.coerce(value.StripAttributes(arg.Value), typ)
			if typ == value.TypeList {
				src = arg.Value.(value.Vector)
			}
			if dims := value.Dim(arg.Value); len(dims) == 2 {
				count := dims[1]
				if rows {
					count = dims[0]
				}
				dn, _ := value.Attr(arg.Value, "dimnames").(*value.List)
				for s := 0; s < count; s++ {
					for k := 0; k < n; k++ {
						if rows {
							put(k, pos, src, s+k*dims[0])
						} else {
							put(k, pos, src, k+s*dims[0])
						}
					}
					name := ""
					if dn != nil {
						which := 1
						if rows {
							which = 0
						}
						if names, ok := dn.At(which).(*value.Character); ok {
							name = names.At(s)
						}
						if names, ok := dn.At(1 - which).(*value.Character); ok && otherNames == nil {
							otherNames = names
						}
					}
					named = named || name != ""
					sliceNames = append(sliceNames, name)
					pos++
				}
				continue
			}
			if src.Len() == 0 {
				continue
			}
			if n%src.Len() != 0 {
				c.warningf("number of %s of result is not a multiple of vector length (arg %d)", map[bool]string{true: "columns", false: "rows"}[rows], pos+1)
			}
			for k := 0; k < n; k++ {
				put(k, pos, src, k%src.Len())
			}
			if names := value.Attr(arg.Value, "names"); names != nil && otherNames == nil && arg.Value.Len() == n {
				otherNames = names
			}
			named = named || arg.Name != ""
			sliceNames = append(sliceNames, arg.Name)
			pos++
		}
		if rows {
			mustSetAttr(ret, "dim", value.IntegerOf(slices, n))
		} else {
			mustSetAttr(ret, "dim", value.IntegerOf(n, slices))
		}
		if named || otherNames != nil {
			var sn value.Value = value.Null
			if named {
				sn = value.CharacterOf(sliceNames...)
			}
			on := otherNames
			if on == nil {
				on = value.Null
			}
			if rows {
				mustSetAttr(ret, "dimnames", value.ListOf(sn, on))
			} else {
				mustSetAttr(ret, "dimnames", value.ListOf(on, sn))
			}
		}
		return ret
	}
}
