package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// ImageAsset is an image referenced by a topic's posts. Filename carries
// the topic id prefix the index derives the cross-reference key from.
type ImageAsset struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

var imgSrc = regexp.MustCompile(`<img[^>]+src="([^"]+)"`)

// imageAssets extracts downloadable post images from cooked HTML.
// Emoji and avatars are forum chrome, not course content, and are
// skipped. n is the number of assets already collected for the topic,
// so filenames stay unique across posts.
func imageAssets(topicID int, baseURL, cooked string, n int) []ImageAsset {
	var out []ImageAsset
	for _, m := range imgSrc.FindAllStringSubmatch(cooked, -1) {
		src := m[1]
		if strings.Contains(src, "/emoji/") || strings.Contains(src, "avatar") {
			continue
		}
		if strings.HasPrefix(src, "/") {
			src = baseURL + src
		}
		ext := strings.ToLower(path.Ext(src))
		if ext == "" {
			ext = ".png"
		}
		n++
		out = append(out, ImageAsset{
			URL:      src,
			Filename: fmt.Sprintf("%d_img%d%s", topicID, n, ext),
		})
	}
	return out
}

// DownloadImages fetches assets into dir. Failures are reported per
// asset; a bad image never aborts the batch.
func (d *Discourse) DownloadImages(ctx context.Context, assets []ImageAsset, dir string) []error {
	var errs []error
	for _, a := range assets {
		if err := d.downloadImage(ctx, a, dir); err != nil {
			errs = append(errs, fmt.Errorf("scraper: %s: %w", a.Filename, err))
		}
	}
	return errs
}

func (d *Discourse) downloadImage(ctx context.Context, a ImageAsset, dir string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return err
	}
	if d.cookie != "" {
		req.Header.Set("Cookie", d.cookie)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	f, err := os.Create(filepath.Join(dir, a.Filename))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}
