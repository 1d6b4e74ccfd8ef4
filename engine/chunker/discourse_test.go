package chunker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/virtualta/virtualta/engine/domain"
)

func TestFormatPost(t *testing.T) {
	plain := FormatPost(Post{Author: "jivraj", Content: "Use Podman instead."})
	if !strings.HasPrefix(plain, "jivraj:\n") {
		t.Errorf("got %q", plain)
	}

	reply := FormatPost(Post{Author: "student1", Content: "@jivraj thanks, that worked"})
	if !strings.HasPrefix(reply, "student1 (replying to @jivraj):") {
		t.Errorf("got %q", reply)
	}

	anon := FormatPost(Post{Content: "who am I"})
	if !strings.HasPrefix(anon, "Unknown:") {
		t.Errorf("got %q", anon)
	}
}

func TestChunkTopics_MetadataCarried(t *testing.T) {
	topics := []TopicFile{{
		Topic: TopicMeta{ID: "141413", Title: "GA4 scoring", Link: "https://discourse.example/t/141413"},
		Posts: []Post{
			{Author: "student1", Content: "How is the bonus shown?"},
			{Author: "jivraj", Content: "@student1 it appears as 110."},
		},
	}}
	chunks := ChunkTopics(topics, NewSplitter(500, 100))
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if c.Kind != domain.KindDiscourse {
			t.Errorf("chunk %d kind = %q", i, c.Kind)
		}
		if c.TopicID != "141413" {
			t.Errorf("chunk %d topic = %q", i, c.TopicID)
		}
		if c.Title != "GA4 scoring" || c.URL != "https://discourse.example/t/141413" {
			t.Errorf("chunk %d provenance lost", i)
		}
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
	}
}

func TestTopicID_AcceptsNumbersAndStrings(t *testing.T) {
	var m TopicMeta
	if err := json.Unmarshal([]byte(`{"id": 141413, "title": "t"}`), &m); err != nil {
		t.Fatal(err)
	}
	if m.ID != "141413" {
		t.Errorf("numeric id: got %q", m.ID)
	}
	if err := json.Unmarshal([]byte(`{"id": "165959"}`), &m); err != nil {
		t.Fatal(err)
	}
	if m.ID != "165959" {
		t.Errorf("string id: got %q", m.ID)
	}
}

func TestLoadTopicDir(t *testing.T) {
	dir := t.TempDir()
	tf := TopicFile{
		Topic: TopicMeta{ID: "99", Title: "x", Link: "https://d/t/99"},
		Posts: []Post{{Author: "a", Content: "hello"}},
	}
	data, _ := json.Marshal(tf)
	if err := os.WriteFile(filepath.Join(dir, "99.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	topics, err := LoadTopicDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 1 || topics[0].Topic.ID != "99" {
		t.Fatalf("got %+v", topics)
	}
}

func TestChunkDocuments_URLs(t *testing.T) {
	docs := []Document{{Source: "docker.md", Text: "Docker and Podman are container tools."}}
	chunks := ChunkDocuments(docs, NewSplitter(500, 100), "")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.URL != "https://tds.s-anand.net/#/docker" {
		t.Errorf("url = %q", c.URL)
	}
	if c.Kind != domain.KindContent || c.Source != "docker.md" || c.ChunkIndex != 0 {
		t.Errorf("bad chunk: %+v", c)
	}
}

func TestLoadMarkdownDir_StripsImages(t *testing.T) {
	dir := t.TempDir()
	md := "# Page\n\n![shot](a.png)\n\nReal content.\n"
	if err := os.WriteFile(filepath.Join(dir, "page.md"), []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}
	docs, err := LoadMarkdownDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(docs))
	}
	if strings.Contains(docs[0].Text, "![") {
		t.Error("image markup not stripped at load")
	}
}
