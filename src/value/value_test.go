package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNAIsPerElement(t *testing.T) {
	v := DoubleOf(1, 2, 3)
	v.SetNA(1)
	assert.False(t, v.IsNA(0))
	assert.True(t, v.IsNA(1))
	assert.False(t, v.IsNA(2))
	v.Set(1, 5)
	assert.False(t, v.IsNA(1))
	assert.False(t, v.AnyNA())
}

func TestNaNIsNotNA(t *testing.T) {
	v := DoubleOf(math.NaN())
	assert.False(t, v.IsNA(0))
	assert.True(t, IsNaN(v, 0))
	assert.False(t, IsNaN(NADouble(), 0))
}

func TestRawNeverNA(t *testing.T) {
	v := RawOf(1, 2)
	v.SetNA(0)
	assert.False(t, v.IsNA(0))
	assert.Equal(t, byte(0), v.At(0))
	v.Resize(4)
	assert.False(t, v.IsNA(3))
	assert.Equal(t, 4, v.Len())
}

func TestResizePadsWithNA(t *testing.T) {
	v := IntegerOf(1, 2)
	v.Resize(4)
	assert.Equal(t, 4, v.Len())
	assert.True(t, v.IsNA(2))
	assert.True(t, v.IsNA(3))
	v.Resize(1)
	assert.Equal(t, []int{1}, v.Data())
	assert.False(t, v.AnyNA())
}

func TestListResizePadsWithNull(t *testing.T) {
	l := ListOf(Num(1))
	l.Resize(3)
	assert.Equal(t, Value(Null), l.At(2))
}

func TestCloneIsIndependent(t *testing.T) {
	v := CharacterOf("a", "b")
	require.NoError(t, SetAttr(v, "names", CharacterOf("x", "y")))
	c := v.Clone().(*Character)
	c.Set(0, "z")
	c.SetNA(1)
	assert.Equal(t, "a", v.At(0))
	assert.False(t, v.IsNA(1))
	assert.Equal(t, "x", NameAt(c, 0))
}

func TestReferenceCounting(t *testing.T) {
	v := IntegerOf(1, 2, 3)
	assert.False(t, v.Shared())
	e := NewEnv(nil)
	require.NoError(t, e.Set("x", v))
	assert.False(t, v.Shared())
	require.NoError(t, e.Set("y", v))
	assert.True(t, v.Shared())
	require.NoError(t, e.Set("y", Num(1)))
	assert.False(t, v.Shared())
	l := ListOf(v)
	assert.True(t, v.Shared())
	l.Set(0, Null)
	assert.False(t, v.Shared())
}

func TestConstantsAreAlwaysShared(t *testing.T) {
	l := ListOf(Num(1))
	MarkConstant(l)
	assert.True(t, l.Shared())
	assert.True(t, l.At(0).Shared())
	l.DecRef()
	assert.True(t, l.Shared())
}

func TestNamesArePadded(t *testing.T) {
	v := DoubleOf(1, 2, 3)
	require.NoError(t, SetAttr(v, "names", CharacterOf("a")))
	names := Names(v)
	require.NotNil(t, names)
	assert.Equal(t, "a", names.At(0))
	assert.True(t, names.IsNA(1))
	assert.True(t, names.IsNA(2))
}

func TestNamesTooLong(t *testing.T) {
	v := DoubleOf(1)
	err := SetAttr(v, "names", CharacterOf("a", "b"))
	assert.EqualError(t, err, "'names' attribute [2] must be the same length as the vector [1]")
}

func TestDimMustMatchLength(t *testing.T) {
	v := IntegerOf(1, 2, 3, 4, 5)
	err := SetAttr(v, "dim", IntegerOf(2, 3))
	assert.EqualError(t, err, "dims [product 6] do not match the length of object [5]")
	require.NoError(t, SetAttr(v, "dim", DoubleOf(5, 1)))
	assert.Equal(t, []int{5, 1}, Dim(v))
}

func TestAttributesKeepOrder(t *testing.T) {
	v := Num(1)
	require.NoError(t, SetAttr(v, "b", Num(1)))
	require.NoError(t, SetAttr(v, "a", Num(2)))
	require.NoError(t, SetAttr(v, "b", Num(3)))
	assert.Equal(t, []string{"b", "a"}, v.Attrs().Names())
	require.NoError(t, SetAttr(v, "b", Null))
	assert.Equal(t, []string{"a"}, v.Attrs().Names())
}

func TestCannotSetAttributesOnNull(t *testing.T) {
	assert.Error(t, SetAttr(Null, "a", Num(1)))
	assert.NoError(t, SetAttr(Null, "a", Null))
}

func TestEmptyClassRemovesIt(t *testing.T) {
	v := Num(1)
	require.NoError(t, SetAttr(v, "class", Str("foo")))
	assert.True(t, IsObject(v))
	require.NoError(t, SetAttr(v, "class", NewCharacter(0)))
	assert.False(t, IsObject(v))
}

func TestImplicitClass(t *testing.T) {
	m := IntegerOf(1, 2, 3, 4)
	require.NoError(t, SetAttr(m, "dim", IntegerOf(2, 2)))
	assert.Equal(t, []string{"matrix", "array", "integer", "numeric"}, ImplicitClass(m))
	assert.Equal(t, []string{"matrix", "array"}, ClassOf(m))
	assert.Equal(t, []string{"double", "numeric"}, ImplicitClass(Num(1)))
	assert.Equal(t, []string{"numeric"}, ClassOf(Num(1)))
	assert.Equal(t, []string{"function"}, ClassOf(&Closure{Body: Null}))
	assert.Equal(t, []string{"name"}, ClassOf(Intern("x")))
	assert.Equal(t, []string{"if"}, ClassOf(NewCall("if", Bool(true), Num(1))))
}

func TestInherits(t *testing.T) {
	v := Num(1)
	require.NoError(t, SetAttr(v, "class", CharacterOf("b", "a")))
	assert.Equal(t, 1, Inherits(v, "x", "a"))
	assert.Equal(t, 0, Inherits(v, "b"))
	assert.Equal(t, -1, Inherits(v, "numeric"))
}

func TestSymbolsAreInterned(t *testing.T) {
	assert.Same(t, Intern("foo"), Intern("foo"))
	assert.NotSame(t, Intern("foo"), Intern("bar"))
	assert.True(t, IsMissingArg(Intern("")))
}

func TestIdentical(t *testing.T) {
	assert.True(t, Identical(DoubleOf(1, 2), DoubleOf(1, 2)))
	assert.False(t, Identical(DoubleOf(1, 2), IntegerOf(1, 2)))
	assert.True(t, Identical(DoubleOf(math.NaN()), DoubleOf(math.NaN())))
	assert.False(t, Identical(NADouble(), DoubleOf(math.NaN())))
	a, b := Num(1), Num(1)
	require.NoError(t, SetAttr(a, "x", Num(1)))
	require.NoError(t, SetAttr(a, "y", Num(2)))
	assert.False(t, Identical(a, b))
	require.NoError(t, SetAttr(b, "y", Num(2)))
	require.NoError(t, SetAttr(b, "x", Num(1)))
	assert.True(t, Identical(a, b), "attribute order should not matter")
	assert.True(t, Identical(NewCall("f", Intern("x")), NewCall("f", Intern("x"))))
	assert.False(t, Identical(NewEnv(nil), NewEnv(nil)))
}

func TestIdenticalWithoutAttributes(t *testing.T) {
	assert.True(t, Identical(DoubleOf(1, 2), DoubleOf(1, 2)))
	assert.True(t, Identical(CharacterOf("a"), CharacterOf("a")))
	assert.False(t, Identical(DoubleOf(1, 2), DoubleOf(1, 3)))
	named := DoubleOf(1, 2)
	require.NoError(t, SetAttr(named, "names", CharacterOf("a", "b")))
	assert.False(t, Identical(DoubleOf(1, 2), named))
	assert.False(t, Identical(named, DoubleOf(1, 2)))
}

func TestElem(t *testing.T) {
	v := CharacterOf("a", "b")
	v.SetNA(1)
	e := Elem(v, 1).(*Character)
	assert.Equal(t, 1, e.Len())
	assert.True(t, e.IsNA(0))
	l := ListOf(Num(1), Str("x"))
	assert.Same(t, l.At(1), Elem(l, 1))
}

func TestRecycledLength(t *testing.T) {
	n, warn := RecycledLength(4, 2)
	assert.Equal(t, 4, n)
	assert.False(t, warn)
	n, warn = RecycledLength(2, 3)
	assert.Equal(t, 3, n)
	assert.True(t, warn)
	n, warn = RecycledLength(0, 3)
	assert.Equal(t, 0, n)
	assert.False(t, warn)
	n, warn = RecycledLengthN(6, 2, 3)
	assert.Equal(t, 6, n)
	assert.False(t, warn)
}

func TestRecycleAttributes(t *testing.T) {
	x, y := DoubleOf(1, 2), DoubleOf(3, 4)
	require.NoError(t, SetAttr(x, "names", CharacterOf("a", "b")))
	require.NoError(t, SetAttr(y, "names", CharacterOf("c", "d")))
	require.NoError(t, SetAttr(y, "foo", Num(1)))
	result := DoubleOf(4, 6)
	RecycleAttributes(result, x, y)
	assert.Equal(t, "a", NameAt(result, 0))
	assert.NotNil(t, Attr(result, "foo"))
}

func TestTypeNames(t *testing.T) {
	assert.Equal(t, "double", TypeDouble.String())
	assert.Equal(t, "closure", TypeClosure.String())
	typ, ok := TypeFromString("numeric")
	assert.True(t, ok)
	assert.Equal(t, TypeDouble, typ)
	typ, ok = TypeFromString("character")
	assert.True(t, ok)
	assert.Equal(t, TypeCharacter, typ)
	_, ok = TypeFromString("wibble")
	assert.False(t, ok)
}

func TestMarshalJSON(t *testing.T) {
	l := ListOf(Num(1), CharacterOf("a", "b"), NALogical())
	require.NoError(t, SetAttr(l, "names", CharacterOf("z", "y", "x")))
	b, err := MarshalJSON(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"z": 1, "y": ["a", "b"], "x": null}`, string(b))
	b, err = MarshalJSON(DoubleOf(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, `"Inf"`, string(b))
}
