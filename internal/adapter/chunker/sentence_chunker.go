// Package chunker splits document content into retrieval-sized pieces.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"docqa/internal/domain"
)

// SentenceChunker groups consecutive sentences into chunks, with a configurable
// sentence overlap between neighbors so retrieval does not lose context at
// chunk boundaries.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 || overlapSentences >= sentencesPerChunk {
		overlapSentences = 0
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

func (c *SentenceChunker) Chunk(doc domain.Document, content string) ([]domain.Chunk, error) {
	sentences := c.splitter.FindAllString(content, -1)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return nil, nil
		}
		sentences = []string{trimmed}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}

	var chunks []domain.Chunk
	step := c.sentencesPerChunk - c.overlapSentences
	idx := 0
	for i := 0; i < len(sentences); i += step {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		text := strings.Join(sentences[i:end], " ")
		if strings.TrimSpace(text) != "" {
			chunks = append(chunks, domain.Chunk{
				ID:    fmt.Sprintf("%s:%d", doc.ID, idx),
				DocID: doc.ID,
				Index: idx,
				Text:  text,
			})
			idx++
		}
		if end == len(sentences) {
			break
		}
	}

	return chunks, nil
}
