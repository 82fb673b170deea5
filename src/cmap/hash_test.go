package cmap

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
)

func TestXXHash(t *testing.T) {
	assert.NotEqual(t, XXHash("a"), XXHash("b"))
	assert.Equal(t, XXHash("print.foo"), XXHash("print.foo"))
}

func TestXXHashMatchesDigest(t *testing.T) {
	d := xxhash.New()
	d.WriteString("identical")
	assert.Equal(t, d.Sum64(), XXHash("identical"))
}

func BenchmarkXXHash_20(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		XXHash("6fx5haW0ty6CjwrZ+GnFZyCmGyI=")
	}
}
