package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/virtualta/virtualta/engine/domain"
	"github.com/virtualta/virtualta/engine/vecstore"
)

// ImageEmbedder produces fixed-length visual embeddings for decoded images.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, data []byte) ([]float32, error)
	Dimension() int
}

// unsupportedExts are formats the visual model cannot decode.
var unsupportedExts = map[string]bool{".svg": true, ".avif": true}

// ImageBuilder constructs the image embedding store from a directory of
// scraped images whose filenames carry the topic join key.
type ImageBuilder struct {
	embedder ImageEmbedder
	logger   *slog.Logger
}

// NewImageBuilder creates an ImageBuilder.
func NewImageBuilder(embedder ImageEmbedder, logger *slog.Logger) *ImageBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageBuilder{embedder: embedder, logger: logger}
}

// Build embeds every supported image under dir. A file that fails to read or
// embed is logged and skipped atomically. Filenames without a valid
// <topic_id>_<suffix> prefix are still indexed, with an empty topic id, so
// they can match visually without contributing cross-reference context.
func (b *ImageBuilder) Build(ctx context.Context, dir string) (*vecstore.Store[domain.ImageRef], error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("index: read image dir %s: %w", dir, err)
	}

	store, err := vecstore.New[domain.ImageRef](b.embedder.Dimension())
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if unsupportedExts[strings.ToLower(filepath.Ext(name))] {
			b.logger.Info("index: skipping unsupported image format", "file", name)
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			b.logger.Warn("index: read image failed, skipping", "file", name, "error", err)
			continue
		}

		vec, err := b.embedder.EmbedImage(ctx, data)
		if err != nil {
			b.logger.Warn("index: embed image failed, skipping", "file", name, "error", err)
			continue
		}

		topicID, err := domain.TopicIDFromFilename(name)
		if err != nil {
			b.logger.Warn("index: image has no topic join key", "file", name, "error", err)
			topicID = ""
		}

		ref := domain.ImageRef{Filename: name, TopicID: topicID, LocalPath: path}
		if err := store.Add(vec, ref); err != nil {
			return nil, fmt.Errorf("index: append image %s: %w", name, err)
		}
	}

	b.logger.Info("index: image build complete", "vectors", store.Len())
	return store, nil
}
