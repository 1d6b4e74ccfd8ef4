// Package retrieve supplements text-search hits with discussion-thread
// context resolved from image-search results, and merges the two sets.
package retrieve

import (
	"github.com/virtualta/virtualta/engine/domain"
	"github.com/virtualta/virtualta/engine/vecstore"
	"github.com/virtualta/virtualta/pkg/fn"
)

// TopicIndex answers "all discourse chunks belonging to a topic" lookups
// over the loaded text corpus. Built once at startup from the store's
// metadata; read-only afterwards.
type TopicIndex struct {
	byTopic map[string][]domain.Chunk
}

// NewTopicIndex indexes the discourse chunks of a corpus by topic id,
// preserving corpus order within each topic.
func NewTopicIndex(chunks []domain.Chunk) *TopicIndex {
	byTopic := make(map[string][]domain.Chunk)
	for _, c := range chunks {
		if c.Kind != domain.KindDiscourse || c.TopicID == "" {
			continue
		}
		byTopic[c.TopicID] = append(byTopic[c.TopicID], c)
	}
	return &TopicIndex{byTopic: byTopic}
}

// ChunksForTopic returns every discourse chunk with exactly the given topic
// id. An unknown topic yields an empty slice, never an error: the image
// pathway is best-effort enrichment, not a required dependency.
func (t *TopicIndex) ChunksForTopic(topicID string) []domain.Chunk {
	return t.byTopic[topicID]
}

// ResolveTopics collapses image-search hits into the set of distinct topic
// ids they point at, in hit order. Hits without a join key contribute
// nothing.
func ResolveTopics(hits []vecstore.Hit[domain.ImageRef]) []string {
	ids := fn.Map(hits, func(h vecstore.Hit[domain.ImageRef]) string { return h.Meta.TopicID })
	ids = fn.Filter(ids, func(id string) bool { return id != "" })
	return fn.Unique(ids)
}

// Merge combines the text-query hit set with topic-derived supplemental
// chunks. All primary chunks come first in their incoming rank order; a
// supplemental chunk is appended only if its identifier was not already
// seen. Direct semantic matches rank above image-derived context.
func Merge(primary, supplemental []domain.Chunk) []domain.Chunk {
	merged := make([]domain.Chunk, 0, len(primary)+len(supplemental))
	seen := make(map[string]struct{}, len(primary))
	for _, c := range primary {
		id := c.ID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, c)
	}
	for _, c := range supplemental {
		id := c.ID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, c)
	}
	return merged
}
