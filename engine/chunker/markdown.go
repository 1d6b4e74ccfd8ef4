package chunker

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/virtualta/virtualta/engine/domain"
)

// DefaultContentURLBase is the canonical deep-link prefix for course pages.
const DefaultContentURLBase = "https://tds.s-anand.net/#/"

// markdownImage matches embedded image markup, which is irrelevant to the
// text model and would otherwise pollute the passages.
var markdownImage = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)

// StripImages removes embedded image markup from markdown text.
func StripImages(text string) string {
	return markdownImage.ReplaceAllString(text, "")
}

// Document is a loaded source file awaiting chunking.
type Document struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// LoadMarkdownDir reads every .md file under dir, stripping image markup.
func LoadMarkdownDir(dir string) ([]Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("chunker: glob %s: %w", dir, err)
	}
	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("chunker: read %s: %w", p, err)
		}
		docs = append(docs, Document{
			Source: filepath.Base(p),
			Text:   StripImages(string(raw)),
		})
	}
	return docs, nil
}

// ChunkDocuments splits course-content documents into content chunks. The
// canonical URL is derived deterministically from the source filename.
func ChunkDocuments(docs []Document, sp *Splitter, urlBase string) []domain.Chunk {
	if urlBase == "" {
		urlBase = DefaultContentURLBase
	}
	var out []domain.Chunk
	for _, doc := range docs {
		stem := strings.TrimSuffix(doc.Source, filepath.Ext(doc.Source))
		url := urlBase + stem
		for i, text := range sp.Split(doc.Text) {
			out = append(out, domain.Chunk{
				Kind:       domain.KindContent,
				Source:     doc.Source,
				ChunkIndex: i,
				Text:       text,
				URL:        url,
			})
		}
	}
	return out
}
