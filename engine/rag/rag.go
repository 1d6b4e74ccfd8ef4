// Package rag orchestrates the answer pipeline. It accepts a question and
// an optional screenshot, runs the best-effort image pathway (OCR, visual
// search, topic context), embeds the question, searches the text store,
// merges the result sets, builds a prompt, and calls the chat model.
package rag

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/virtualta/virtualta/engine/domain"
	"github.com/virtualta/virtualta/engine/retrieve"
	"github.com/virtualta/virtualta/engine/vecstore"
	"github.com/virtualta/virtualta/pkg/fn"
)

// Embedder produces a query embedding for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ImageEmbedder produces a visual embedding for image bytes.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, data []byte) ([]float32, error)
}

// TextExtractor recovers text from an image. No detected text is an empty
// string, not an error.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Completer calls the chat-completion model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// TextSearcher abstracts the text embedding store.
type TextSearcher interface {
	Search(query []float32, k int) ([]vecstore.Hit[domain.Chunk], error)
}

// ImageSearcher abstracts the image embedding store.
type ImageSearcher interface {
	Search(query []float32, k int) ([]vecstore.Hit[domain.ImageRef], error)
}

// TopicLookup resolves all discourse chunks belonging to a topic.
type TopicLookup interface {
	ChunksForTopic(topicID string) []domain.Chunk
}

// Deps holds the orchestrator's collaborators. ImageEmbed, OCR, Images and
// Topics may be nil; the image pathway is then disabled and requests are
// served text-only.
type Deps struct {
	Embed      Embedder
	ImageEmbed ImageEmbedder
	OCR        TextExtractor
	Chat       Completer
	Text       TextSearcher
	Images     ImageSearcher
	Topics     TopicLookup
}

// Options configures the pipeline behaviour.
type Options struct {
	TopK         int
	SystemPrompt string
}

// DefaultOptions returns the serving defaults.
func DefaultOptions() Options {
	return Options{
		TopK:         3,
		SystemPrompt: defaultSystemPrompt,
	}
}

const defaultSystemPrompt = "You are a helpful teaching assistant for the TDS course. " +
	"Use the given content to provide a concise, HELPFUL answer. " +
	"If some information is not available, say you don't know. " +
	"If using discourse data, look for answers by the course TA Jivraj."

// Service is the answering orchestrator.
type Service struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
}

// New creates a Service.
func New(deps Deps, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = defaultSystemPrompt
	}
	return &Service{deps: deps, opts: opts, logger: logger}
}

// Answer is the structured response of the pipeline.
type Answer struct {
	Text  string        `json:"answer"`
	Links []domain.Link `json:"links"`
}

// Ask runs the full pipeline for one question. imageData may be nil.
// Failures on the image pathway are logged and dropped; failures of the
// text embedding, text search, or chat call fail the request.
func (s *Service) Ask(ctx context.Context, question string, imageData []byte) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}
	s.logger.Info("ask start", "question_len", len(question), "has_image", len(imageData) > 0)

	// 1. Best-effort image pathway.
	ocrText, supplemental := s.imagePath(ctx, imageData)

	// 2. Combine question with any extracted screenshot text.
	combined := question
	if t := strings.TrimSpace(ocrText); t != "" {
		combined += "\n\nExtracted from image:\n" + t
	}

	// 3. Embed the query text.
	queryVec, err := s.deps.Embed.Embed(ctx, combined)
	if err != nil {
		return nil, fmt.Errorf("rag: embed query: %w", err)
	}

	// 4. Search the text store.
	hits, err := s.deps.Text.Search(queryVec, s.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("rag: text search: %w", err)
	}
	primary := fn.Map(hits, func(h vecstore.Hit[domain.Chunk]) domain.Chunk { return h.Meta })
	s.logger.Info("text search done", "hits", len(primary), "supplemental", len(supplemental))

	// 5. Merge: direct semantic matches first, topic context after.
	merged := retrieve.Merge(primary, supplemental)

	// 6. Build the prompt and call the chat model. An empty context still
	// goes to the model, which is expected to say it lacks information.
	userMsg := fmt.Sprintf("Context:\n%s\n\nQuery: %s", buildContext(merged), question)
	reply, err := s.deps.Chat.Complete(ctx, s.opts.SystemPrompt, userMsg)
	if err != nil {
		return nil, fmt.Errorf("rag: chat: %w", err)
	}

	return &Answer{Text: reply, Links: buildLinks(merged)}, nil
}

// imagePath runs OCR and visual retrieval. Every failure degrades the
// request to text-only; nothing here surfaces to the caller.
func (s *Service) imagePath(ctx context.Context, imageData []byte) (ocrText string, supplemental []domain.Chunk) {
	if len(imageData) == 0 {
		return "", nil
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(imageData)); err != nil {
		s.logger.Warn("image decode failed, continuing text-only", "error", err)
		return "", nil
	}

	if s.deps.OCR != nil {
		text, err := s.deps.OCR.ExtractText(ctx, imageData)
		if err != nil {
			s.logger.Warn("ocr failed, continuing without extracted text", "error", err)
		} else {
			ocrText = text
		}
	}

	if s.deps.ImageEmbed == nil || s.deps.Images == nil || s.deps.Topics == nil {
		return ocrText, nil
	}

	vec, err := s.deps.ImageEmbed.EmbedImage(ctx, imageData)
	if err != nil {
		s.logger.Warn("image embedding failed, skipping visual search", "error", err)
		return ocrText, nil
	}

	// The single best visual match is sufficient; near-ties collapse into
	// the topic set anyway.
	hits, err := s.deps.Images.Search(vec, 1)
	if err != nil {
		s.logger.Warn("image search failed, skipping topic context", "error", err)
		return ocrText, nil
	}

	for _, topicID := range retrieve.ResolveTopics(hits) {
		chunks := s.deps.Topics.ChunksForTopic(topicID)
		s.logger.Info("topic context resolved", "topic_id", topicID, "chunks", len(chunks))
		supplemental = append(supplemental, chunks...)
	}
	return ocrText, supplemental
}

// buildContext renders merged chunks as two-line blocks separated by blank
// lines, in merge order.
func buildContext(chunks []domain.Chunk) string {
	blocks := fn.Map(chunks, func(c domain.Chunk) string {
		title := c.DisplayTitle()
		if title == "" {
			title = "Unknown"
		}
		return fmt.Sprintf("Title: %s\nChunk: %s", title, c.Text)
	})
	return strings.Join(blocks, "\n\n")
}

// buildLinks emits one citation per merged chunk. Merge already
// deduplicated, so each entry is unique.
func buildLinks(chunks []domain.Chunk) []domain.Link {
	return fn.Map(chunks, func(c domain.Chunk) domain.Link {
		return domain.Link{URL: c.URL, Text: c.DisplayTitle()}
	})
}
