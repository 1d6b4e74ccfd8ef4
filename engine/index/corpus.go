package index

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/virtualta/virtualta/engine/domain"
)

// LoadChunks reads a chunked-corpus JSON array. Records written by older
// pipeline runs may lack the kind field; it is inferred from the presence of
// a topic id. Invalid chunks are rejected so corrupt corpus files fail the
// build instead of polluting the store.
func LoadChunks(path string) ([]domain.Chunk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("index: read corpus %s: %w", path, err)
	}
	var chunks []domain.Chunk
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return nil, fmt.Errorf("index: parse corpus %s: %w", path, err)
	}
	for i := range chunks {
		if chunks[i].Kind == "" {
			if chunks[i].TopicID != "" {
				chunks[i].Kind = domain.KindDiscourse
			} else {
				chunks[i].Kind = domain.KindContent
			}
		}
		if err := domain.ValidateChunk(chunks[i]); err != nil {
			return nil, fmt.Errorf("index: corpus %s record %d: %w", path, i, err)
		}
	}
	return chunks, nil
}

// WriteChunks writes a chunk corpus file for the index build.
func WriteChunks(path string, chunks []domain.Chunk) error {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("index: marshal corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("index: write corpus %s: %w", path, err)
	}
	return nil
}
