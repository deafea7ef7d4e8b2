package chunker

import (
	"strings"
	"testing"

	"docqa/internal/domain"
)

func TestSentenceChunkerGroupsSentences(t *testing.T) {
	c := NewSentenceChunker(2, 0)
	doc := domain.Document{ID: "doc1", Name: "test.txt"}

	chunks, err := c.Chunk(doc, "One. Two. Three. Four.")
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "One. Two." {
		t.Errorf("unexpected first chunk: %q", chunks[0].Text)
	}
	if chunks[0].ID != "doc1:0" || chunks[1].ID != "doc1:1" {
		t.Errorf("unexpected chunk IDs: %q, %q", chunks[0].ID, chunks[1].ID)
	}
}

func TestSentenceChunkerOverlap(t *testing.T) {
	c := NewSentenceChunker(3, 1)
	doc := domain.Document{ID: "doc1"}

	chunks, err := c.Chunk(doc, "A. B. C. D. E.")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}

	// The last sentence of each chunk repeats at the start of the next.
	first := chunks[0].Text
	second := chunks[1].Text
	lastSentence := first[strings.LastIndex(first, " ")+1:]
	if !strings.HasPrefix(second, lastSentence) {
		t.Errorf("expected overlap between %q and %q", first, second)
	}
}

func TestSentenceChunkerEmptyContent(t *testing.T) {
	c := NewSentenceChunker(3, 0)
	chunks, err := c.Chunk(domain.Document{ID: "doc1"}, "   ")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank content, got %d", len(chunks))
	}
}

func TestSentenceChunkerNoTerminator(t *testing.T) {
	c := NewSentenceChunker(3, 0)
	chunks, err := c.Chunk(domain.Document{ID: "doc1"}, "a fragment without punctuation")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}
