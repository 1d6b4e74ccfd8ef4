// Package chunker splits long-form source text into overlapping fixed-size
// passages with provenance metadata, for the offline index build.
package chunker

import (
	"strings"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 500
	// DefaultOverlap is the number of trailing characters carried into the
	// next chunk to preserve cross-boundary meaning.
	DefaultOverlap = 100
)

// separators is the split priority: paragraph break, line break, sentence
// terminator, space, and finally raw rune boundaries.
var separators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts text recursively by the separator priority list, preferring
// the largest separator that still yields pieces within the size limit.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a splitter. Non-positive size falls back to the
// default; overlap is clamped below size.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split cuts text into chunks of at most the configured size. Adjacent
// chunks share the configured overlap: each chunk after the first begins
// with the trailing overlap runes of its predecessor, so concatenating the
// chunks minus those carried prefixes reconstructs the input.
func (sp *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return sp.assemble(sp.pieces(text, separators))
}

// pieces recursively cuts text into fragments no longer than the size limit,
// keeping separators attached so concatenation is lossless.
func (sp *Splitter) pieces(text string, seps []string) []string {
	if runeLen(text) <= sp.size {
		return []string{text}
	}
	if len(seps) == 0 {
		return splitRunes(text, sp.size)
	}
	parts := strings.SplitAfter(text, seps[0])
	if len(parts) == 1 {
		return sp.pieces(text, seps[1:])
	}
	var out []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if runeLen(p) <= sp.size {
			out = append(out, p)
		} else {
			out = append(out, sp.pieces(p, seps[1:])...)
		}
	}
	return out
}

// assemble packs fragments into chunks, carrying the overlap tail of each
// finished chunk into the next.
func (sp *Splitter) assemble(pieces []string) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0
	fresh := 0 // runes added since the last flush, excluding the carried tail

	flush := func() {
		chunk := cur.String()
		chunks = append(chunks, chunk)
		carry := tailRunes(chunk, sp.overlap)
		cur.Reset()
		cur.WriteString(carry)
		curLen = runeLen(carry)
		fresh = 0
	}

	for _, p := range pieces {
		pl := runeLen(p)
		if fresh > 0 && curLen+pl > sp.size {
			flush()
		}
		cur.WriteString(p)
		curLen += pl
		fresh += pl
	}
	if fresh > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// Overlap returns the configured overlap length in runes.
func (sp *Splitter) Overlap() int { return sp.overlap }

func runeLen(s string) int { return len([]rune(s)) }

// tailRunes returns the trailing n runes of s.
func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// splitRunes cuts s into runs of at most n runes.
func splitRunes(s string, n int) []string {
	r := []rune(s)
	var out []string
	for i := 0; i < len(r); i += n {
		end := i + n
		if end > len(r) {
			end = len(r)
		}
		out = append(out, string(r[i:end]))
	}
	return out
}
