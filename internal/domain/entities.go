package domain

import "time"

// ExpertiseLevel controls how much explanation the model is asked to produce.
type ExpertiseLevel string

const (
	ExpertiseBeginner     ExpertiseLevel = "beginner"
	ExpertiseIntermediate ExpertiseLevel = "intermediate"
	ExpertiseExpert       ExpertiseLevel = "expert"
)

// Valid reports whether the level is one of the known values.
func (e ExpertiseLevel) Valid() bool {
	switch e {
	case ExpertiseBeginner, ExpertiseIntermediate, ExpertiseExpert:
		return true
	}
	return false
}

// Document is a source ingested into the knowledge base: a local file or a web page.
type Document struct {
	ID         string
	Name       string
	Path       string
	IngestedAt time.Time
}

// Chunk is an indexed fragment of a document.
type Chunk struct {
	ID    string
	DocID string
	Index int
	Text  string
}

// Passage is a retrieved chunk with its relevance score and provenance.
// It lives only for the duration of one query.
type Passage struct {
	Text       string
	Score      float64
	SourceName string
	SourcePath string
}

// Reference is a deduplicated citation derived from the passages used in an answer.
type Reference struct {
	DisplayName string `json:"display_name"`
	Source      string `json:"source"`
}

// Usage holds token counts reported by backends that provide them.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Generation is a raw backend response.
type Generation struct {
	Text  string
	Usage *Usage
}

// AnswerResult is the outcome of one query: the answer text, the citations
// backing it, and token usage when the backend reports it. References is nil
// when the answer was not grounded in retrieved context.
type AnswerResult struct {
	Text       string      `json:"text"`
	References []Reference `json:"references,omitempty"`
	Usage      *Usage      `json:"usage,omitempty"`
}

// HistoryEntry records one completed query. Entries are append-only and owned
// by the session layer, never by the pipeline.
type HistoryEntry struct {
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	References []Reference `json:"references,omitempty"`
	AskedAt    time.Time   `json:"asked_at"`
}
