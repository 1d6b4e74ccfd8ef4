// Command index embeds the chunk corpus and course images and writes the
// vector store artifacts the API server loads.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/virtualta/virtualta/engine/domain"
	"github.com/virtualta/virtualta/engine/index"
	"github.com/virtualta/virtualta/engine/vecstore"
	"github.com/virtualta/virtualta/pkg/clip"
	"github.com/virtualta/virtualta/pkg/fn"
	"github.com/virtualta/virtualta/pkg/nomic"
)

func main() {
	var (
		chunksPath = flag.String("chunks", "data/chunks.json", "chunk corpus to embed")
		imageDir   = flag.String("images", "", "directory of course images (skip image index when empty)")
		dataDir    = flag.String("out", "data", "output directory for store artifacts")
		batchSize  = flag.Int("batch", index.DefaultBatchSize, "texts per embedding call")
		clipURL    = flag.String("clip", os.Getenv("CLIP_URL"), "CLIP sidecar base URL")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(context.Background(), *chunksPath, *imageDir, *dataDir, *clipURL, *batchSize, logger); err != nil {
		logger.Error("index failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, chunksPath, imageDir, dataDir, clipURL string, batchSize int, logger *slog.Logger) error {
	embedder := nomic.New(os.Getenv("NOMIC_API_KEY"), os.Getenv("NOMIC_BASE_URL"), "", 0)
	builder := index.NewBuilder(embedder, batchSize, logger)

	buildText := fn.TracedStage("index.text", func(ctx context.Context, chunks []domain.Chunk) fn.Result[*vecstore.Store[domain.Chunk]] {
		return fn.FromPair(builder.Build(ctx, chunks))
	})

	chunks, err := index.LoadChunks(chunksPath)
	if err != nil {
		return err
	}
	logger.Info("corpus loaded", "chunks", len(chunks))

	store, err := buildText(ctx, chunks).Unwrap()
	if err != nil {
		return err
	}
	if err := store.Save(dataDir, "text"); err != nil {
		return err
	}
	logger.Info("text store written", "vectors", store.Len(), "dim", store.Dim())

	if imageDir == "" {
		return nil
	}

	imgBuilder := index.NewImageBuilder(clip.New(clipURL, 0), logger)
	buildImages := fn.TracedStage("index.images", func(ctx context.Context, dir string) fn.Result[*vecstore.Store[domain.ImageRef]] {
		return fn.FromPair(imgBuilder.Build(ctx, dir))
	})

	imgStore, err := buildImages(ctx, imageDir).Unwrap()
	if err != nil {
		return err
	}
	if err := imgStore.Save(dataDir, "images"); err != nil {
		return err
	}
	logger.Info("image store written", "vectors", imgStore.Len(), "dim", imgStore.Dim())
	return nil
}
