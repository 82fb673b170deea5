package cmap

import (
	"sort"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"
)

func hashInts(k int) uint64 {
	return XXHash(strconv.Itoa(k))
}

func TestMap(t *testing.T) {
	m := New[int, int](DefaultShardCount, hashInts)
	m.Set(5, 7)
	m.Set(7, 5)
	v, ok := m.Get(5)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	v, ok = m.Get(7)
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	_, ok = m.Get(8)
	assert.False(t, ok)
	keys := m.Keys()
	// Order isn't guaranteed so we must sort it now.
	sort.Ints(keys)
	assert.Equal(t, []int{5, 7}, keys)
}

func TestSetOverwrites(t *testing.T) {
	m := New[string, string](SmallShardCount, XXHash)
	m.Set("print.foo", "a")
	m.Set("print.foo", "b")
	v, _ := m.Get("print.foo")
	assert.Equal(t, "b", v)
	assert.Equal(t, []string{"print.foo"}, m.Keys())
}

func TestGetOrSetCallsOnce(t *testing.T) {
	m := New[string, *int](SmallShardCount, XXHash)
	var calls int64
	var g errgroup.Group
	results := make([]*int, 50)
	for i := range results {
		i := i
		g.Go(func() error {
			results[i] = m.GetOrSet("x", func() *int {
				atomic.AddInt64(&calls, 1)
				return new(int)
			})
			return nil
		})
	}
	assert.NoError(t, g.Wait())
	assert.EqualValues(t, 1, calls)
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestShardCount(t *testing.T) {
	New[int, int](4, hashInts)
	assert.Panics(t, func() {
		New[int, int](3, hashInts)
	})
}

func TestResize(t *testing.T) {
	for n := 10; n <= 1000; n *= 10 {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			m := New[int, int](1, hashInts)
			for i := 0; i < n; i++ {
				m.Set(i, i)
			}
			for i := 0; i < n; i++ {
				v, ok := m.Get(i)
				assert.True(t, ok)
				assert.Equal(t, i, v)
			}
			assert.Len(t, m.Keys(), n)
		})
	}
}

func BenchmarkMapInserts(b *testing.B) {
	m := New[int, int](DefaultShardCount, hashInts)
	for i := 0; i < b.N; i++ {
		m.Set(i, i)
	}
}
