// Package index builds embedding stores from chunked corpora. The builder
// iterates the input once, embeds in batches, and appends vector and
// metadata together so the store's positional invariant holds even when
// individual embedding calls fail.
package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/virtualta/virtualta/engine/domain"
	"github.com/virtualta/virtualta/engine/vecstore"
	"github.com/virtualta/virtualta/pkg/fn"
)

// DefaultBatchSize is the max chunks per embedding request. Throughput
// tunable only; correctness does not depend on it.
const DefaultBatchSize = 64

// TextEmbedder produces fixed-length vectors for text passages.
type TextEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Builder constructs the text embedding store.
type Builder struct {
	embedder  TextEmbedder
	batchSize int
	logger    *slog.Logger
}

// NewBuilder creates a Builder. batchSize <= 0 uses the default.
func NewBuilder(embedder TextEmbedder, batchSize int, logger *slog.Logger) *Builder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{embedder: embedder, batchSize: batchSize, logger: logger}
}

// Build embeds the chunks in input order into a new store. A batch whose
// embedding call fails is logged and skipped atomically: neither vectors nor
// metadata from it enter the store.
func (b *Builder) Build(ctx context.Context, chunks []domain.Chunk) (*vecstore.Store[domain.Chunk], error) {
	store, err := vecstore.New[domain.Chunk](b.embedder.Dimension())
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	for _, batch := range fn.Chunk(chunks, b.batchSize) {
		texts := fn.Map(batch, func(c domain.Chunk) string { return c.Text })
		vecs, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			b.logger.Warn("index: embed batch failed, skipping",
				"batch_size", len(batch), "error", err)
			continue
		}
		if len(vecs) != len(batch) {
			b.logger.Warn("index: embedder returned wrong count, skipping batch",
				"want", len(batch), "got", len(vecs))
			continue
		}
		for i, c := range batch {
			if err := store.Add(vecs[i], c); err != nil {
				return nil, fmt.Errorf("index: append chunk %s/%d: %w", c.Source, c.ChunkIndex, err)
			}
		}
	}

	b.logger.Info("index: build complete", "chunks_in", len(chunks), "vectors", store.Len())
	return store, nil
}
