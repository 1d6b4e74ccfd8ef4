// Package ocr extracts text from screenshots by shelling out to the
// tesseract binary.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is looked up on PATH.
const DefaultBinary = "tesseract"

// Tesseract runs the tesseract CLI in stdin/stdout mode.
type Tesseract struct {
	binary string
}

// New creates a Tesseract wrapper. binary falls back to DefaultBinary
// when empty.
func New(binary string) *Tesseract {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Tesseract{binary: binary}
}

// ExtractText feeds image bytes to tesseract and returns the recognized
// text, trimmed. An image with no recognizable text yields an empty
// string and no error.
func (t *Tesseract) ExtractText(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, t.binary, "stdin", "stdout")
	cmd.Stdin = bytes.NewReader(image)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ocr: %s: %w: %s", t.binary, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(out.String()), nil
}
