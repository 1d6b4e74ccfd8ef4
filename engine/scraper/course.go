package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/virtualta/virtualta/engine/chunker"
	"github.com/virtualta/virtualta/pkg/fn"
)

// Course fetches raw course markdown pages.
type Course struct {
	baseURL string
	limiter *rate.Limiter
	client  *http.Client
}

// NewCourse creates a fetcher for raw markdown under baseURL, e.g. the
// raw-content root of the course site repository.
func NewCourse(baseURL string) *Course {
	return &Course{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchPage downloads one markdown page by filename, e.g. "docker.md".
func (c *Course) FetchPage(ctx context.Context, name string) (chunker.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return chunker.Document{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+name, nil)
	if err != nil {
		return chunker.Document{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return chunker.Document{}, fmt.Errorf("scraper: fetch %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return chunker.Document{}, fmt.Errorf("scraper: fetch %s: status %d", name, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return chunker.Document{}, err
	}
	return chunker.Document{
		Source: path.Base(name),
		Text:   chunker.StripImages(string(body)),
	}, nil
}

// FetchPages streams the named pages. Individual failures flow through
// as errors so the caller can log and continue.
func (c *Course) FetchPages(ctx context.Context, names []string) <-chan fn.Result[chunker.Document] {
	ch := make(chan fn.Result[chunker.Document], 8)
	go func() {
		defer close(ch)
		for _, name := range names {
			if ctx.Err() != nil {
				return
			}
			doc, err := c.FetchPage(ctx, name)
			if err != nil {
				ch <- fn.Err[chunker.Document](err)
				continue
			}
			ch <- fn.Ok(doc)
		}
	}()
	return ch
}
