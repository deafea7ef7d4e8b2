package usecase

import (
	"context"
	"fmt"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// DefaultTopK is how many passages a query retrieves unless told otherwise.
const DefaultTopK = 3

// RetrieveUseCase answers similarity queries over the persisted index. It is
// read-only: ingestion owns all writes.
type RetrieveUseCase struct {
	embedder port.Embedder
	vectors  port.VectorStore
	docs     port.DocStore
	minScore float64
}

func NewRetrieveUseCase(
	embedder port.Embedder,
	vectors port.VectorStore,
	docs port.DocStore,
	minScore float64,
) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder: embedder,
		vectors:  vectors,
		docs:     docs,
		minScore: minScore,
	}
}

// Fetch returns the top-k passages for the question, ordered by descending
// relevance. A nil/empty result means nothing relevant; a missing index is
// domain.ErrRetrievalUnavailable.
func (u *RetrieveUseCase) Fetch(ctx context.Context, question string, k int) ([]domain.Passage, error) {
	if u == nil || u.embedder == nil || u.vectors == nil || u.docs == nil {
		return nil, domain.ErrRetrievalUnavailable
	}
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}
	if k <= 0 {
		k = DefaultTopK
	}

	embeddings, err := u.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	results, err := u.vectors.Search(embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	passages := make([]domain.Passage, 0, len(results))
	for _, result := range results {
		if u.minScore > 0 && result.Score < u.minScore {
			continue
		}
		chunk, err := u.docs.GetChunk(result.ID)
		if err != nil {
			continue
		}
		name, path := u.provenance(chunk.DocID)
		passages = append(passages, domain.Passage{
			Text:       chunk.Text,
			Score:      result.Score,
			SourceName: name,
			SourcePath: path,
		})
	}

	return passages, nil
}

func (u *RetrieveUseCase) provenance(docID string) (name, path string) {
	doc, err := u.docs.GetDoc(docID)
	if err != nil {
		return "Unknown Document", "Unknown Path"
	}
	name, path = doc.Name, doc.Path
	if name == "" {
		name = "Unknown Document"
	}
	if path == "" {
		path = "Unknown Path"
	}
	return name, path
}
