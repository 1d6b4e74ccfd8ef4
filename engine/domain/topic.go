package domain

import (
	"fmt"
	"strings"
)

// TopicIDFromFilename extracts the discourse topic identifier from a scraped
// image filename. The scraper names files <topic_id>_<suffix>, e.g.
// "141413_img1.jpeg". The prefix must be non-empty ASCII digits; anything
// else is rejected rather than trusted.
func TopicIDFromFilename(filename string) (string, error) {
	prefix, _, found := strings.Cut(filename, "_")
	if !found || prefix == "" {
		return "", fmt.Errorf("%w: filename %q has no topic prefix", ErrInvalidTopicID, filename)
	}
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: filename %q has non-numeric prefix", ErrInvalidTopicID, filename)
		}
	}
	return prefix, nil
}

// ValidateChunk checks a chunk before it enters the index build.
func ValidateChunk(c Chunk) error {
	if strings.TrimSpace(c.Text) == "" {
		return &ValidationError{Field: "text", Value: "", Wrapped: fmt.Errorf("chunk text is empty")}
	}
	switch c.Kind {
	case KindContent, KindDiscourse:
	default:
		return &ValidationError{Field: "type", Value: string(c.Kind), Wrapped: fmt.Errorf("unknown chunk kind")}
	}
	if c.Kind == KindDiscourse && c.TopicID == "" {
		return &ValidationError{Field: "topic_id", Value: "", Wrapped: fmt.Errorf("discourse chunk without topic id")}
	}
	return nil
}
