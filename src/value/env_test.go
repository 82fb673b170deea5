package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvLookupWalksChain(t *testing.T) {
	empty := NewNamedEnv("R_EmptyEnv", nil)
	global := NewNamedEnv("R_GlobalEnv", empty)
	local := NewEnv(global)
	require.NoError(t, global.Set("x", Num(1)))
	v, where := local.Lookup("x")
	assert.Equal(t, Num(1).At(0), v.(*Double).At(0))
	assert.Same(t, global, where)
	_, present := local.Get("x")
	assert.False(t, present)
	v, where = local.Lookup("y")
	assert.Nil(t, v)
	assert.Nil(t, where)
}

func TestEnvSharedBetweenHolders(t *testing.T) {
	e := NewEnv(nil)
	f := &Closure{Env: e, Body: Null}
	g := &Closure{Env: e, Body: Null}
	require.NoError(t, f.Env.Set("shared", Str("yes")))
	v, _ := g.Env.Get("shared")
	assert.Equal(t, "yes", v.(*Character).At(0))
}

func TestEnvNames(t *testing.T) {
	e := NewEnv(nil)
	for _, name := range []string{"b", ".hidden", "a"} {
		require.NoError(t, e.Set(name, Null))
	}
	assert.Equal(t, []string{"a", "b"}, e.Names(false))
	assert.Equal(t, []string{".hidden", "a", "b"}, e.Names(true))
	assert.Equal(t, 3, e.Len())
}

func TestLockedEnv(t *testing.T) {
	e := NewEnv(nil)
	require.NoError(t, e.Set("a", Num(1)))
	e.Lock(false)
	assert.True(t, e.IsLocked())
	assert.NoError(t, e.Set("a", Num(2)))
	assert.EqualError(t, e.Set("b", Num(2)), "cannot add bindings to a locked environment")
	_, err := e.Remove("a")
	assert.Error(t, err)
}

func TestLockedBinding(t *testing.T) {
	e := NewEnv(nil)
	require.NoError(t, e.Set("a", Num(1)))
	require.NoError(t, e.LockBinding("a"))
	assert.EqualError(t, e.Set("a", Num(2)), "cannot change value of locked binding for 'a'")
	locked, err := e.BindingIsLocked("a")
	assert.NoError(t, err)
	assert.True(t, locked)
	require.NoError(t, e.UnlockBinding("a"))
	assert.NoError(t, e.Set("a", Num(2)))
	assert.Error(t, e.LockBinding("nope"))
}

func TestRemove(t *testing.T) {
	e := NewEnv(nil)
	v := Num(1)
	require.NoError(t, e.Set("a", v))
	require.NoError(t, e.Set("b", v))
	assert.True(t, v.Shared())
	removed, err := e.Remove("a")
	assert.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, v.Shared())
	removed, err = e.Remove("a")
	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestSetParent(t *testing.T) {
	a, b := NewEnv(nil), NewEnv(nil)
	c := NewEnv(a)
	c.SetParent(b)
	assert.Same(t, b, c.Parent())
}
