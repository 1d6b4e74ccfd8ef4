package chunker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/virtualta/virtualta/engine/domain"
)

// TopicID tolerates both string and numeric topic ids in scraped JSON.
type TopicID string

func (t *TopicID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = TopicID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = TopicID(s)
	return nil
}

// TopicMeta describes a scraped discussion topic.
type TopicMeta struct {
	ID    TopicID `json:"id"`
	Title string  `json:"title"`
	Link  string  `json:"link"`
	Date  string  `json:"date,omitempty"`
}

// Post is a single reply within a topic.
type Post struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// TopicFile is one scraped topic with its posts, as written by the collector.
type TopicFile struct {
	Topic TopicMeta `json:"topic"`
	Posts []Post    `json:"posts"`
}

// LoadTopicDir reads every scraped topic JSON file under dir.
func LoadTopicDir(dir string) ([]TopicFile, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("chunker: glob %s: %w", dir, err)
	}
	topics := make([]TopicFile, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("chunker: read %s: %w", p, err)
		}
		var tf TopicFile
		if err := json.Unmarshal(raw, &tf); err != nil {
			return nil, fmt.Errorf("chunker: parse %s: %w", p, err)
		}
		topics = append(topics, tf)
	}
	return topics, nil
}

// mention detects reply targets so the formatted post records who a reply
// was addressed to.
var mention = regexp.MustCompile(`@(\w+)`)

// FormatPost renders a post as "author:" or "author (replying to @x):"
// followed by its content.
func FormatPost(p Post) string {
	author := p.Author
	if author == "" {
		author = "Unknown"
	}
	content := strings.TrimSpace(p.Content)
	header := author + ":"
	if m := mention.FindStringSubmatch(content); m != nil {
		header = fmt.Sprintf("%s (replying to @%s):", author, m[1])
	}
	return header + "\n" + content
}

// CombinePosts joins a topic's formatted posts into one passage.
func CombinePosts(posts []Post) string {
	formatted := make([]string, len(posts))
	for i, p := range posts {
		formatted[i] = FormatPost(p)
	}
	return strings.Join(formatted, "\n\n")
}

// ChunkTopics splits scraped discussion topics into discourse chunks
// carrying the topic id as the cross-reference join key.
func ChunkTopics(topics []TopicFile, sp *Splitter) []domain.Chunk {
	var out []domain.Chunk
	for _, tf := range topics {
		combined := CombinePosts(tf.Posts)
		for i, text := range sp.Split(combined) {
			out = append(out, domain.Chunk{
				Kind:       domain.KindDiscourse,
				TopicID:    string(tf.Topic.ID),
				Title:      tf.Topic.Title,
				ChunkIndex: i,
				Text:       text,
				URL:        tf.Topic.Link,
			})
		}
	}
	return out
}
