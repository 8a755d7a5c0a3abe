package reachable

import (
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/panbanda/reachable/pkg/ast"
)

// Set is the reachability set: node ids whose metadata must be kept.
// Ids are only ever added. A Set is not safe for concurrent mutation.
type Set struct {
	bitmap *roaring.Bitmap
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{bitmap: roaring.New()}
}

// Contains reports whether id has been marked.
func (s *Set) Contains(id ast.NodeID) bool {
	return s.bitmap.Contains(uint32(id))
}

// Insert marks id and reports whether it was newly added.
func (s *Set) Insert(id ast.NodeID) bool {
	return s.bitmap.CheckedAdd(uint32(id))
}

// Len returns the number of marked ids.
func (s *Set) Len() int {
	return int(s.bitmap.GetCardinality())
}

// IDs returns the marked ids in ascending order.
func (s *Set) IDs() []ast.NodeID {
	raw := s.bitmap.ToArray()
	ids := make([]ast.NodeID, len(raw))
	for i, v := range raw {
		ids[i] = ast.NodeID(v)
	}
	return ids
}

// Union adds every id of other to s.
func (s *Set) Union(other *Set) {
	if other == nil {
		return
	}
	s.bitmap.Or(other.bitmap)
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return &Set{bitmap: s.bitmap.Clone()}
}

// Equal reports whether both sets hold the same ids.
func (s *Set) Equal(other *Set) bool {
	if other == nil {
		return false
	}
	if s.bitmap.GetCardinality() != other.bitmap.GetCardinality() {
		return false
	}
	a, b := s.bitmap.ToArray(), other.bitmap.ToArray()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Fingerprint hashes the sorted ids. Equal sets have equal fingerprints.
func (s *Set) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [4]byte
	it := s.bitmap.Iterator()
	for it.HasNext() {
		binary.LittleEndian.PutUint32(buf[:], it.Next())
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// MarshalBinary encodes the set in the portable Roaring format.
func (s *Set) MarshalBinary() ([]byte, error) {
	return s.bitmap.ToBytes()
}

// UnmarshalBinary replaces the contents of s with a decoded set.
func (s *Set) UnmarshalBinary(data []byte) error {
	bm := roaring.New()
	if err := bm.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("decode reachability set: %w", err)
	}
	s.bitmap = bm
	return nil
}

func (s *Set) String() string {
	return fmt.Sprintf("Set(%d)%v", s.Len(), s.IDs())
}
