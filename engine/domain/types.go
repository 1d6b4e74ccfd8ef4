// Package domain defines core types, constants, and validation for the
// course assistant pipeline. It acts as the validation gate at pipeline
// entry points.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ChunkKind distinguishes the two text corpora feeding the store.
type ChunkKind string

const (
	// KindContent marks chunks cut from course-content markdown pages.
	KindContent ChunkKind = "content"
	// KindDiscourse marks chunks cut from discussion-forum topics.
	KindDiscourse ChunkKind = "discourse"
)

// Chunk is a bounded passage of source text with provenance metadata.
// Chunks are created once by the chunker and immutable thereafter.
type Chunk struct {
	Kind       ChunkKind `json:"type"`
	Source     string    `json:"source,omitempty"`
	TopicID    string    `json:"topic_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	ChunkIndex int       `json:"chunk_id"`
	Text       string    `json:"text"`
	URL        string    `json:"url"`
}

// ID returns the chunk's stable identity: a deterministic UUID over the
// owning source and position. Discourse chunks are scoped by topic so the
// same index in different topics never collides.
func (c Chunk) ID() string {
	scope := c.Source
	if c.Kind == KindDiscourse {
		scope = "topic:" + c.TopicID
	}
	name := fmt.Sprintf("%s/%s/%d", c.Kind, scope, c.ChunkIndex)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// DisplayTitle is the human-facing label for a chunk: the topic title for
// discourse chunks, otherwise the source document name.
func (c Chunk) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Source
}

// ImageRef is the metadata record stored alongside each image embedding.
type ImageRef struct {
	Filename  string `json:"filename"`
	TopicID   string `json:"topic_id,omitempty"`
	LocalPath string `json:"local_path"`
}

// Link is a citation returned with an answer.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// AskRequest is the inbound question payload.
type AskRequest struct {
	Question string `json:"question"`
	// Image is an optional base64-encoded screenshot.
	Image string `json:"image,omitempty"`
}

// AskResponse is the outbound answer payload.
type AskResponse struct {
	Answer string `json:"answer"`
	Links  []Link `json:"links"`
}
