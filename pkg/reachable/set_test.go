package reachable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/reachable/pkg/ast"
)

func TestSet_InsertIsIdempotent(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Insert(7))
	assert.False(t, s.Insert(7))
	assert.True(t, s.Contains(7))
	assert.False(t, s.Contains(8))
	assert.Equal(t, 1, s.Len())
}

func TestSet_IDsAreSorted(t *testing.T) {
	s := NewSet()
	for _, id := range []ast.NodeID{30, 2, 17, 2} {
		s.Insert(id)
	}
	assert.Equal(t, []ast.NodeID{2, 17, 30}, s.IDs())
}

func TestSet_UnionAndClone(t *testing.T) {
	a, b := NewSet(), NewSet()
	a.Insert(1)
	b.Insert(2)
	b.Insert(3)

	c := a.Clone()
	c.Union(b)
	c.Union(nil)

	assert.Equal(t, []ast.NodeID{1, 2, 3}, c.IDs())
	assert.Equal(t, []ast.NodeID{1}, a.IDs(), "clone must not alias")
}

func TestSet_EqualAndFingerprint(t *testing.T) {
	a, b := NewSet(), NewSet()
	for _, id := range []ast.NodeID{5, 1, 9} {
		a.Insert(id)
	}
	for _, id := range []ast.NodeID{9, 5, 1} {
		b.Insert(id)
	}
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Insert(10)
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.False(t, a.Equal(nil))
}

func TestSet_BinaryEncoding(t *testing.T) {
	s := NewSet()
	for _, id := range []ast.NodeID{1, 4, 65536, 1 << 20} {
		s.Insert(id)
	}
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	got := NewSet()
	require.NoError(t, got.UnmarshalBinary(data))
	assert.True(t, s.Equal(got))

	assert.Error(t, got.UnmarshalBinary([]byte{0xff}))
}
