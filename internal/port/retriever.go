package port

import (
	"context"

	"docqa/internal/domain"
)

// Retriever searches the knowledge base for passages relevant to a question.
type Retriever interface {
	// Fetch returns the top-k passages ordered by descending relevance.
	// An empty slice means the index holds nothing relevant; that is not an
	// error. domain.ErrRetrievalUnavailable means there is no index at all.
	Fetch(ctx context.Context, question string, k int) ([]domain.Passage, error)
}
