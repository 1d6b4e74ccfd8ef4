package vecstore

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/virtualta/virtualta/engine/domain"
)

// The store persists as two independently loadable artifacts:
// <name>.vec holds the dimensionality and vector array (gob), and
// <name>.meta.json holds the ordered metadata records. Load rejects any pair
// whose lengths disagree so a broken build fails startup instead of serving
// wrong metadata.

type vecFile struct {
	Dim     int
	Vectors [][]float32
}

// VecPath returns the vector artifact path for a store name under dir.
func VecPath(dir, name string) string { return filepath.Join(dir, name+".vec") }

// MetaPath returns the metadata artifact path for a store name under dir.
func MetaPath(dir, name string) string { return filepath.Join(dir, name+".meta.json") }

// Save writes both artifacts under dir.
func (s *Store[M]) Save(dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vecstore: save: %w", err)
	}

	vf, err := os.Create(VecPath(dir, name))
	if err != nil {
		return fmt.Errorf("vecstore: save vectors: %w", err)
	}
	defer vf.Close()
	if err := gob.NewEncoder(vf).Encode(vecFile{Dim: s.dim, Vectors: s.vectors}); err != nil {
		return fmt.Errorf("vecstore: encode vectors: %w", err)
	}

	mf, err := os.Create(MetaPath(dir, name))
	if err != nil {
		return fmt.Errorf("vecstore: save metadata: %w", err)
	}
	defer mf.Close()
	enc := json.NewEncoder(mf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.meta); err != nil {
		return fmt.Errorf("vecstore: encode metadata: %w", err)
	}
	return nil
}

// Load reads both artifacts and validates them against each other.
func Load[M any](dir, name string) (*Store[M], error) {
	vf, err := os.Open(VecPath(dir, name))
	if err != nil {
		return nil, fmt.Errorf("vecstore: load vectors: %w", err)
	}
	defer vf.Close()
	var v vecFile
	if err := gob.NewDecoder(vf).Decode(&v); err != nil {
		return nil, fmt.Errorf("vecstore: decode vectors: %w", err)
	}

	mf, err := os.Open(MetaPath(dir, name))
	if err != nil {
		return nil, fmt.Errorf("vecstore: load metadata: %w", err)
	}
	defer mf.Close()
	var meta []M
	if err := json.NewDecoder(mf).Decode(&meta); err != nil {
		return nil, fmt.Errorf("vecstore: decode metadata: %w", err)
	}

	if v.Dim <= 0 {
		return nil, fmt.Errorf("vecstore: %w: dimensionality %d", domain.ErrCorruptStore, v.Dim)
	}
	if len(v.Vectors) != len(meta) {
		return nil, fmt.Errorf("vecstore: %w: index has %d vectors, metadata has %d records",
			domain.ErrCorruptStore, len(v.Vectors), len(meta))
	}
	for i, vec := range v.Vectors {
		if len(vec) != v.Dim {
			return nil, fmt.Errorf("vecstore: %w: vector %d has dimension %d, store has %d",
				domain.ErrCorruptStore, i, len(vec), v.Dim)
		}
	}

	return &Store[M]{dim: v.Dim, vectors: v.Vectors, meta: meta}, nil
}
