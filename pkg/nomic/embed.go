// Package nomic provides a text embedding client for the Nomic Atlas API.
package nomic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	// DefaultBaseURL is the hosted Atlas endpoint.
	DefaultBaseURL = "https://api-atlas.nomic.ai"
	// DefaultModel supports Matryoshka truncation down to 256 dimensions.
	DefaultModel = "nomic-embed-text-v1.5"
	// DefaultDimension keeps the on-disk vectors small; the model is
	// trained so the 256-d prefix remains a usable embedding.
	DefaultDimension = 256
)

// Client calls the Atlas text embedding endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	dim     int
	client  *http.Client
}

// New creates a Client with the given API key. baseURL and model fall
// back to the hosted defaults when empty.
func New(apiKey, baseURL, model string, dim int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		dim:     dim,
		client:  &http.Client{},
	}
}

// Dimension reports the vector length this client requests.
func (c *Client) Dimension() int { return c.dim }

type embedReq struct {
	Model          string   `json:"model"`
	Texts          []string `json:"texts"`
	TaskType       string   `json:"task_type"`
	Dimensionality int      `json:"dimensionality"`
}

type embedResp struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (c *Client) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	body, _ := json.Marshal(embedReq{
		Model:          c.model,
		Texts:          texts,
		TaskType:       taskType,
		Dimensionality: c.dim,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/embedding/text", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nomic embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("nomic embed: status %d", resp.StatusCode)
	}

	var result embedResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("nomic embed decode: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("nomic embed: got %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}
	for i, v := range result.Embeddings {
		if len(v) != c.dim {
			return nil, fmt.Errorf("nomic embed: embedding %d has %d dimensions, want %d", i, len(v), c.dim)
		}
	}
	return result.Embeddings, nil
}

// Embed embeds a single query text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := c.embed(ctx, []string{text}, "search_query")
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds document texts for indexing.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return c.embed(ctx, texts, "search_document")
}
