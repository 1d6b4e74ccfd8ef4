// Command collect subscribes to the scrape subjects and writes incoming
// topics and course pages to disk in the layout the chunker reads.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/virtualta/virtualta/engine/chunker"
	"github.com/virtualta/virtualta/engine/scraper"
	"github.com/virtualta/virtualta/pkg/natsutil"
)

func main() {
	var (
		natsURL    = flag.String("nats", nats.DefaultURL, "NATS server URL")
		topicDir   = flag.String("topics", "topic_posts", "output directory for topic JSON files")
		contentDir = flag.String("content", "tds_pages_md", "output directory for course markdown")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(*natsURL, *topicDir, *contentDir, logger); err != nil {
		logger.Error("collect failed", "err", err)
		os.Exit(1)
	}
}

func run(natsURL, topicDir, contentDir string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, dir := range []string{topicDir, contentDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	nc, err := natsutil.Connect(natsURL, "virtualta-collect")
	if err != nil {
		return err
	}
	defer nc.Close()

	topicSub, err := natsutil.Subscribe(nc, scraper.SubjectTopics, func(_ context.Context, tf chunker.TopicFile) {
		if err := writeTopic(topicDir, tf); err != nil {
			logger.Error("write topic failed", "topic", tf.Topic.ID, "err", err)
			return
		}
		logger.Info("topic collected", "topic", tf.Topic.ID, "posts", len(tf.Posts))
	})
	if err != nil {
		return err
	}
	defer topicSub.Unsubscribe()

	pageSub, err := natsutil.Subscribe(nc, scraper.SubjectPages, func(_ context.Context, doc chunker.Document) {
		if err := writePage(contentDir, doc); err != nil {
			logger.Error("write page failed", "source", doc.Source, "err", err)
			return
		}
		logger.Info("page collected", "source", doc.Source)
	})
	if err != nil {
		return err
	}
	defer pageSub.Unsubscribe()

	logger.Info("collector running", "topic_dir", topicDir, "content_dir", contentDir)
	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}

func writeTopic(dir string, tf chunker.TopicFile) error {
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.json", tf.Topic.ID))
	return os.WriteFile(path, data, 0o644)
}

func writePage(dir string, doc chunker.Document) error {
	name := filepath.Base(doc.Source)
	return os.WriteFile(filepath.Join(dir, name), []byte(doc.Text), 0o644)
}
