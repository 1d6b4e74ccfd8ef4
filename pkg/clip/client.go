// Package clip talks to the CLIP embedding sidecar over HTTP. The sidecar
// exposes a single endpoint that accepts raw image bytes and returns the
// ViT-B/32 image embedding.
package clip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultDimension is the ViT-B/32 output width.
const DefaultDimension = 512

// Client calls the sidecar's /embed endpoint.
type Client struct {
	baseURL string
	dim     int
	client  *http.Client
}

// New creates a Client for the sidecar at baseURL.
func New(baseURL string, dim int) *Client {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Client{
		baseURL: baseURL,
		dim:     dim,
		client:  &http.Client{},
	}
}

// Dimension reports the vector length the sidecar produces.
func (c *Client) Dimension() int { return c.dim }

type embedResp struct {
	Embedding []float32 `json:"embedding"`
}

// EmbedImage embeds raw image bytes.
func (c *Client) EmbedImage(ctx context.Context, data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("clip embed: empty image")
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/embed", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clip embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("clip embed: status %d", resp.StatusCode)
	}

	var result embedResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("clip embed decode: %w", err)
	}
	if len(result.Embedding) != c.dim {
		return nil, fmt.Errorf("clip embed: got %d dimensions, want %d", len(result.Embedding), c.dim)
	}
	return result.Embedding, nil
}
