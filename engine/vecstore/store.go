// Package vecstore implements the embedding store: a flat nearest-neighbour
// index paired with a metadata array of equal length. Ordinal position i in
// the index addresses the metadata record at position i; that positional
// correspondence is the store's core invariant. Stores are built once offline
// and loaded read-only at serving time, so concurrent searches need no
// locking.
package vecstore

import (
	"fmt"
	"sort"

	"github.com/virtualta/virtualta/engine/domain"
)

// Store pairs embedding vectors with metadata records of type M.
// The text index uses M = domain.Chunk, the image index M = domain.ImageRef.
type Store[M any] struct {
	dim     int
	vectors [][]float32
	meta    []M
}

// New creates an empty store for vectors of the given dimensionality.
func New[M any](dim int) (*Store[M], error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vecstore: dimensionality must be positive, got %d", dim)
	}
	return &Store[M]{dim: dim}, nil
}

// Add appends a vector and its metadata record together, preserving the
// positional invariant. Only the offline builder calls Add; a loaded store
// is never mutated.
func (s *Store[M]) Add(vec []float32, meta M) error {
	if len(vec) != s.dim {
		return fmt.Errorf("vecstore: add: %w: got %d, store has %d", domain.ErrDimensionMismatch, len(vec), s.dim)
	}
	s.vectors = append(s.vectors, vec)
	s.meta = append(s.meta, meta)
	return nil
}

// Len returns the number of vectors in the store.
func (s *Store[M]) Len() int { return len(s.vectors) }

// Dim returns the store's fixed vector dimensionality.
func (s *Store[M]) Dim() int { return s.dim }

// Metadata returns the full metadata array in insertion order. Callers must
// treat it as read-only.
func (s *Store[M]) Metadata() []M { return s.meta }

// Hit is a single nearest-neighbour result.
type Hit[M any] struct {
	Meta     M
	Distance float32
	Ordinal  int
}

// Search returns up to k metadata records ranked by squared Euclidean
// distance to the query, nearest first. Ties break toward the lower ordinal.
// A store holding fewer than k vectors returns all of them.
func (s *Store[M]) Search(query []float32, k int) ([]Hit[M], error) {
	if len(query) != s.dim {
		return nil, fmt.Errorf("vecstore: search: %w: query has %d, store has %d", domain.ErrDimensionMismatch, len(query), s.dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("vecstore: search: k must be positive, got %d", k)
	}

	hits := make([]Hit[M], 0, len(s.vectors))
	for i, vec := range s.vectors {
		if i >= len(s.meta) {
			// Defensive: an ordinal without a metadata record is skipped
			// rather than returned as a wrong answer.
			continue
		}
		hits = append(hits, Hit[M]{Meta: s.meta[i], Distance: sqDist(query, vec), Ordinal: i})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// sqDist computes squared Euclidean distance over the raw floats, matching
// the ranking the index was built under. No normalization is applied.
func sqDist(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
