package unionfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeSetAndFind(t *testing.T) {
	uf := New()
	a := uf.MakeSet()
	b := uf.MakeSet()
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, uf.Find(a))
	assert.Equal(t, b, uf.Find(b))
	assert.Equal(t, 2, uf.Size())
}

func TestUnionMergesClasses(t *testing.T) {
	uf := New()
	a := uf.MakeSet()
	b := uf.MakeSet()
	c := uf.MakeSet()

	root := uf.Union(a, b)
	assert.Equal(t, uf.Find(a), uf.Find(b))
	assert.Equal(t, root, uf.Find(a))
	assert.NotEqual(t, uf.Find(a), uf.Find(c))

	uf.Union(b, c)
	assert.Equal(t, uf.Find(a), uf.Find(c))
}

func TestUnionIsIdempotent(t *testing.T) {
	uf := New()
	a := uf.MakeSet()
	b := uf.MakeSet()
	r1 := uf.Union(a, b)
	r2 := uf.Union(a, b)
	assert.Equal(t, r1, r2)
}

func TestPathCompression(t *testing.T) {
	uf := New()
	ids := make([]uint64, 16)
	for i := range ids {
		ids[i] = uf.MakeSet()
	}
	for i := 1; i < len(ids); i++ {
		uf.Union(ids[0], ids[i])
	}
	root := uf.Find(ids[0])
	for _, id := range ids {
		assert.Equal(t, root, uf.Find(id))
	}
}
