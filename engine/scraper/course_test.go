package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/docker.md", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# Docker\n\n![diagram](img/arch.png)\n\nUse podman."))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	doc, err := NewCourse(srv.URL).FetchPage(context.Background(), "docker.md")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Source != "docker.md" {
		t.Errorf("source = %q", doc.Source)
	}
	if strings.Contains(doc.Text, "![") {
		t.Errorf("image markup not stripped: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Use podman.") {
		t.Errorf("content missing: %q", doc.Text)
	}
}

func TestFetchPagesStream(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a.md", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("alpha"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var ok, failed int
	for r := range NewCourse(srv.URL).FetchPages(context.Background(), []string{"a.md", "missing.md"}) {
		if r.IsOk() {
			ok++
		} else {
			failed++
		}
	}
	if ok != 1 || failed != 1 {
		t.Errorf("ok = %d, failed = %d", ok, failed)
	}
}

func TestFetchPageNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	if _, err := NewCourse(srv.URL).FetchPage(context.Background(), "nope.md"); err == nil {
		t.Fatal("expected error for 404")
	}
}
