// Command chunk turns scraped course markdown and forum topics into the
// chunk corpus the indexer embeds.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/virtualta/virtualta/engine/chunker"
	"github.com/virtualta/virtualta/engine/domain"
	"github.com/virtualta/virtualta/engine/index"
)

func main() {
	var (
		contentDir = flag.String("content", "tds_pages_md", "directory of course markdown files")
		topicDir   = flag.String("topics", "topic_posts", "directory of scraped topic JSON files")
		out        = flag.String("out", "data/chunks.json", "output chunk corpus")
		urlBase    = flag.String("url-base", chunker.DefaultContentURLBase, "base URL for course page links")
		size       = flag.Int("size", chunker.DefaultChunkSize, "chunk size in runes")
		overlap    = flag.Int("overlap", chunker.DefaultOverlap, "overlap between adjacent chunks in runes")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(*contentDir, *topicDir, *out, *urlBase, *size, *overlap, logger); err != nil {
		logger.Error("chunk failed", "err", err)
		os.Exit(1)
	}
}

func run(contentDir, topicDir, out, urlBase string, size, overlap int, logger *slog.Logger) error {
	sp := chunker.NewSplitter(size, overlap)
	var chunks []domain.Chunk

	docs, err := chunker.LoadMarkdownDir(contentDir)
	if err != nil {
		return err
	}
	content := chunker.ChunkDocuments(docs, sp, urlBase)
	chunks = append(chunks, content...)
	logger.Info("course content chunked", "pages", len(docs), "chunks", len(content))

	topics, err := chunker.LoadTopicDir(topicDir)
	if err != nil {
		return err
	}
	discourse := chunker.ChunkTopics(topics, sp)
	chunks = append(chunks, discourse...)
	logger.Info("forum topics chunked", "topics", len(topics), "chunks", len(discourse))

	if err := index.WriteChunks(out, chunks); err != nil {
		return err
	}
	logger.Info("corpus written", "path", out, "total_chunks", len(chunks))
	return nil
}
