package clip

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedImage(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(embedResp{Embedding: make([]float32, 8)})
	}))
	defer srv.Close()

	c := New(srv.URL, 8)
	vec, err := c.EmbedImage(context.Background(), []byte{0x89, 0x50, 0x4e, 0x47})
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 8 {
		t.Errorf("got %d dims, want 8", len(vec))
	}
	if len(gotBody) != 4 {
		t.Errorf("sidecar received %d bytes, want 4", len(gotBody))
	}
}

func TestEmbedImageEmpty(t *testing.T) {
	c := New("http://unused", 8)
	if _, err := c.EmbedImage(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty image")
	}
}

func TestEmbedImageWrongDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResp{Embedding: make([]float32, 3)})
	}))
	defer srv.Close()

	c := New(srv.URL, 8)
	if _, err := c.EmbedImage(context.Background(), []byte{1}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestEmbedImageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, 8)
	if _, err := c.EmbedImage(context.Background(), []byte{1}); err == nil {
		t.Fatal("expected status error")
	}
}
