// Package scraper collects course material: Discourse forum topics and
// course markdown pages. Scraped topics are published over NATS and
// written to disk by the collector in the shape the chunker reads back.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/virtualta/virtualta/engine/chunker"
	"github.com/virtualta/virtualta/pkg/fn"
)

// NATS subjects for the scrape pipeline.
const (
	SubjectTopics = "scrape.discourse.topic"
	SubjectPages  = "scrape.course.page"
)

// Discourse scrapes a Discourse forum through its JSON API.
type Discourse struct {
	baseURL string
	cookie  string
	limiter *rate.Limiter
	client  *http.Client
}

// NewDiscourse creates a scraper for the forum at baseURL. cookie is the
// raw Cookie header value for forums that require a logged-in session;
// empty means anonymous.
func NewDiscourse(baseURL, cookie string) *Discourse {
	return &Discourse{
		baseURL: baseURL,
		cookie:  cookie,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// TopicSummary is one entry of a category topic listing.
type TopicSummary struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type topicListResponse struct {
	TopicList struct {
		Topics        []TopicSummary `json:"topics"`
		MoreTopicsURL string         `json:"more_topics_url"`
	} `json:"topic_list"`
}

type topicResponse struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	CreatedAt  string `json:"created_at"`
	PostStream struct {
		Posts []struct {
			Username string `json:"username"`
			Cooked   string `json:"cooked"`
		} `json:"posts"`
	} `json:"post_stream"`
}

func (d *Discourse) get(ctx context.Context, path string, out any) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return err
	}
	if d.cookie != "" {
		req.Header.Set("Cookie", d.cookie)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("scraper: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("scraper: get %s: status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// ListTopics pages through a category listing and returns the topics
// created within [after, before]. Listing order is newest-first, so
// paging stops once a page holds only topics older than the window.
func (d *Discourse) ListTopics(ctx context.Context, categorySlug string, categoryID int, after, before time.Time) ([]TopicSummary, error) {
	var out []TopicSummary
	for page := 0; ; page++ {
		var lr topicListResponse
		path := fmt.Sprintf("/c/%s/%d.json?page=%d", categorySlug, categoryID, page)
		if err := d.get(ctx, path, &lr); err != nil {
			return nil, err
		}
		topics := lr.TopicList.Topics
		if len(topics) == 0 {
			return out, nil
		}
		allOlder := true
		for _, t := range topics {
			if !t.CreatedAt.Before(after) {
				allOlder = false
			}
			if t.CreatedAt.Before(after) || t.CreatedAt.After(before) {
				continue
			}
			out = append(out, t)
		}
		if allOlder || lr.TopicList.MoreTopicsURL == "" {
			return out, nil
		}
	}
}

// FetchTopic downloads one topic with all its posts. Post HTML is
// reduced to plain text; images referenced by the posts are returned
// separately for download.
func (d *Discourse) FetchTopic(ctx context.Context, id int) (chunker.TopicFile, []ImageAsset, error) {
	var tr topicResponse
	if err := d.get(ctx, fmt.Sprintf("/t/%d.json", id), &tr); err != nil {
		return chunker.TopicFile{}, nil, err
	}

	tf := chunker.TopicFile{
		Topic: chunker.TopicMeta{
			ID:    chunker.TopicID(fmt.Sprint(tr.ID)),
			Title: tr.Title,
			Link:  fmt.Sprintf("%s/t/%s/%d", d.baseURL, tr.Slug, tr.ID),
			Date:  tr.CreatedAt,
		},
	}
	var assets []ImageAsset
	for _, p := range tr.PostStream.Posts {
		tf.Posts = append(tf.Posts, chunker.Post{
			Author:  p.Username,
			Content: stripHTML(p.Cooked),
		})
		assets = append(assets, imageAssets(tr.ID, d.baseURL, p.Cooked, len(assets))...)
	}
	return tf, assets, nil
}

// ScrapedTopic pairs a fetched topic with the images its posts reference.
type ScrapedTopic struct {
	Topic  chunker.TopicFile
	Images []ImageAsset
}

// ScrapeTopics lists a category within the date window and streams each
// fetched topic. Individual topic failures flow through as errors so the
// caller can log and continue.
func (d *Discourse) ScrapeTopics(ctx context.Context, categorySlug string, categoryID int, after, before time.Time) <-chan fn.Result[ScrapedTopic] {
	ch := make(chan fn.Result[ScrapedTopic], 16)
	go func() {
		defer close(ch)
		topics, err := d.ListTopics(ctx, categorySlug, categoryID, after, before)
		if err != nil {
			ch <- fn.Err[ScrapedTopic](err)
			return
		}
		for _, t := range topics {
			if ctx.Err() != nil {
				return
			}
			tf, assets, err := d.FetchTopic(ctx, t.ID)
			if err != nil {
				ch <- fn.Errf[ScrapedTopic]("topic %d: %w", t.ID, err)
				continue
			}
			ch <- fn.Ok(ScrapedTopic{Topic: tf, Images: assets})
		}
	}()
	return ch
}
