// Command scrape pulls forum topics and course pages and publishes them
// over NATS for the collector.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/virtualta/virtualta/engine/scraper"
	"github.com/virtualta/virtualta/pkg/natsutil"
)

func main() {
	var (
		natsURL      = flag.String("nats", nats.DefaultURL, "NATS server URL")
		forumURL     = flag.String("forum", "https://discourse.onlinedegree.iitm.ac.in", "Discourse base URL")
		categorySlug = flag.String("category", "courses/tds-kb", "category slug")
		categoryID   = flag.Int("category-id", 34, "category id")
		after        = flag.String("after", "2025-01-01", "earliest topic creation date (YYYY-MM-DD)")
		before       = flag.String("before", "2025-04-14", "latest topic creation date (YYYY-MM-DD)")
		courseURL    = flag.String("course", "", "raw markdown base URL for course pages (skip when empty)")
		pages        = flag.String("pages", "", "comma-separated course page filenames")
		imageDir     = flag.String("image-dir", "", "download post images into this directory (skip when empty)")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(*natsURL, *forumURL, *categorySlug, *categoryID, *after, *before, *courseURL, *pages, *imageDir, logger); err != nil {
		logger.Error("scrape failed", "err", err)
		os.Exit(1)
	}
}

func run(natsURL, forumURL, categorySlug string, categoryID int, afterStr, beforeStr, courseURL, pages, imageDir string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	after, err := time.Parse("2006-01-02", afterStr)
	if err != nil {
		return err
	}
	before, err := time.Parse("2006-01-02", beforeStr)
	if err != nil {
		return err
	}
	// The window is inclusive of the last day.
	before = before.Add(24*time.Hour - time.Second)

	nc, err := natsutil.Connect(natsURL, "virtualta-scrape")
	if err != nil {
		return err
	}
	defer nc.Close()

	if imageDir != "" {
		if err := os.MkdirAll(imageDir, 0o755); err != nil {
			return err
		}
	}

	d := scraper.NewDiscourse(forumURL, os.Getenv("DISCOURSE_COOKIE"))
	var published, failed int
	for r := range d.ScrapeTopics(ctx, categorySlug, categoryID, after, before) {
		st, err := r.Unwrap()
		if err != nil {
			logger.Warn("topic scrape failed", "err", err)
			failed++
			continue
		}
		if err := natsutil.Publish(ctx, nc, scraper.SubjectTopics, st.Topic); err != nil {
			return err
		}
		published++

		if imageDir != "" {
			for _, derr := range d.DownloadImages(ctx, st.Images, imageDir) {
				logger.Warn("image download failed", "topic", st.Topic.Topic.ID, "err", derr)
			}
		}
	}
	logger.Info("forum scrape done", "published", published, "failed", failed)

	if courseURL != "" && pages != "" {
		c := scraper.NewCourse(courseURL)
		for r := range c.FetchPages(ctx, strings.Split(pages, ",")) {
			doc, err := r.Unwrap()
			if err != nil {
				logger.Warn("page fetch failed", "err", err)
				continue
			}
			if err := natsutil.Publish(ctx, nc, scraper.SubjectPages, doc); err != nil {
				return err
			}
		}
		logger.Info("course pages published")
	}

	// Give the publishes time to flush before the connection closes.
	return nc.FlushTimeout(5 * time.Second)
}
