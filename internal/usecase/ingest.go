package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"docqa/internal/adapter/cache"
	"docqa/internal/adapter/fs"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// IngestUseCase adds documents to the knowledge base: extract, chunk, embed,
// store. It owns all index writes.
type IngestUseCase struct {
	docs     port.DocStore
	vectors  port.VectorStore
	embedder port.Embedder
	chunker  port.Chunker
	cache    *cache.QueryCache // optional, invalidated after writes
}

func NewIngestUseCase(
	docs port.DocStore,
	vectors port.VectorStore,
	embedder port.Embedder,
	chunker port.Chunker,
	queryCache *cache.QueryCache,
) *IngestUseCase {
	return &IngestUseCase{
		docs:     docs,
		vectors:  vectors,
		embedder: embedder,
		chunker:  chunker,
		cache:    queryCache,
	}
}

// IngestFile extracts a file's text and indexes it. Returns the stored
// document and the number of chunks written.
func (u *IngestUseCase) IngestFile(ctx context.Context, path string) (domain.Document, int, error) {
	content, err := fs.ExtractText(path)
	if err != nil {
		return domain.Document{}, 0, fmt.Errorf("failed to extract %s: %w", path, err)
	}
	return u.IngestContent(ctx, filepath.Base(path), path, content)
}

// IngestContent indexes already-extracted text under the given provenance.
func (u *IngestUseCase) IngestContent(ctx context.Context, name, path, content string) (domain.Document, int, error) {
	doc := domain.Document{
		ID:         uuid.NewString(),
		Name:       name,
		Path:       path,
		IngestedAt: time.Now(),
	}

	chunks, err := u.chunker.Chunk(doc, content)
	if err != nil {
		return domain.Document{}, 0, fmt.Errorf("failed to chunk %s: %w", name, err)
	}
	if len(chunks) == 0 {
		return domain.Document{}, 0, fmt.Errorf("no indexable content in %s", name)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := u.embedder.Embed(ctx, texts)
	if err != nil {
		return domain.Document{}, 0, fmt.Errorf("failed to embed %s: %w", name, err)
	}
	if len(embeddings) != len(chunks) {
		return domain.Document{}, 0, fmt.Errorf("embedding count mismatch for %s: %d chunks, %d vectors", name, len(chunks), len(embeddings))
	}

	if err := u.docs.PutDoc(doc); err != nil {
		return domain.Document{}, 0, fmt.Errorf("failed to store document: %w", err)
	}

	items := make([]port.VectorItem, len(chunks))
	for i, c := range chunks {
		if err := u.docs.PutChunk(c); err != nil {
			u.rollback(doc.ID, chunks[:i])
			return domain.Document{}, 0, fmt.Errorf("failed to store chunk: %w", err)
		}
		items[i] = port.VectorItem{ID: c.ID, Vector: embeddings[i]}
	}

	if err := u.vectors.Upsert(items); err != nil {
		// Without vectors the document would be listed but never retrieved.
		u.rollback(doc.ID, chunks)
		return domain.Document{}, 0, fmt.Errorf("failed to store vectors: %w", err)
	}

	if u.cache != nil {
		u.cache.Invalidate()
	}

	return doc, len(chunks), nil
}

// rollback removes a partially written document so a failed ingest leaves no
// trace. Best effort: the original error is what the caller sees.
func (u *IngestUseCase) rollback(docID string, chunks []domain.Chunk) {
	for _, c := range chunks {
		_ = u.docs.DeleteChunk(c.ID)
	}
	_ = u.docs.DeleteDoc(docID)
}

// ListDocuments returns everything in the knowledge base.
func (u *IngestUseCase) ListDocuments() ([]domain.Document, error) {
	return u.docs.ListDocs()
}
