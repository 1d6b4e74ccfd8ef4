package chunker

import (
	"strings"
	"testing"
)

func reconstruct(t *testing.T, chunks []string, overlap int) string {
	t.Helper()
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		carry := tailRunes(chunks[i-1], overlap)
		if !strings.HasPrefix(chunks[i], carry) {
			t.Fatalf("chunk %d does not begin with the previous chunk's overlap", i)
		}
		b.WriteString(chunks[i][len(carry):])
	}
	return b.String()
}

func TestSplit_RespectsSize(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	sp := NewSplitter(120, 20)
	chunks := sp.Split(text)
	if len(chunks) < 2 {
		t.Fatal("expected multiple chunks")
	}
	for i, c := range chunks {
		if runeLen(c) > 120+20 {
			t.Errorf("chunk %d exceeds size+overlap: %d runes", i, runeLen(c))
		}
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	text := "First paragraph about Docker.\n\nSecond paragraph mentions Podman. It is longer, with more sentences. Some of them short.\n\nThird paragraph closes the page.\n"
	sp := NewSplitter(60, 15)
	chunks := sp.Split(text)
	if got := reconstruct(t, chunks, sp.Overlap()); got != text {
		t.Errorf("round-trip mismatch:\n got %q\nwant %q", got, text)
	}
}

func TestSplit_RoundTripAfterImageStrip(t *testing.T) {
	md := "Intro text.\n\n![diagram](images/arch.png)\n\nBody follows the image. More body text to force a second chunk, padded with words words words words words.\n"
	clean := StripImages(md)
	if strings.Contains(clean, "![") {
		t.Fatal("image markup survived stripping")
	}
	sp := NewSplitter(50, 10)
	chunks := sp.Split(clean)
	if got := reconstruct(t, chunks, sp.Overlap()); got != clean {
		t.Errorf("round-trip mismatch after strip:\n got %q\nwant %q", got, clean)
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	sp := NewSplitter(500, 100)
	chunks := sp.Split("Just one short passage.")
	if len(chunks) != 1 || chunks[0] != "Just one short passage." {
		t.Fatalf("got %q", chunks)
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	sp := NewSplitter(500, 100)
	if got := sp.Split("   \n  "); got != nil {
		t.Fatalf("whitespace-only input should yield no chunks, got %v", got)
	}
}

func TestSplit_LongUnbrokenRun(t *testing.T) {
	text := strings.Repeat("x", 950)
	sp := NewSplitter(400, 0)
	chunks := sp.Split(text)
	var total int
	for _, c := range chunks {
		if runeLen(c) > 400 {
			t.Errorf("chunk exceeds size with no separators: %d", runeLen(c))
		}
		total += runeLen(c)
	}
	if total != 950 {
		t.Errorf("character fallback lost text: %d of 950", total)
	}
}

func TestNewSplitter_ClampsOverlap(t *testing.T) {
	sp := NewSplitter(100, 200)
	if sp.Overlap() >= 100 {
		t.Fatalf("overlap %d not clamped below size", sp.Overlap())
	}
}

func TestStripImages(t *testing.T) {
	in := "before ![alt text](http://x/y.png) after ![](z.jpg) end"
	want := "before  after  end"
	if got := StripImages(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
