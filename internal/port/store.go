package port

import "docqa/internal/domain"

// DocStore persists documents and their chunks.
type DocStore interface {
	PutDoc(doc domain.Document) error
	GetDoc(id string) (domain.Document, error)
	DeleteDoc(id string) error
	ListDocs() ([]domain.Document, error)

	PutChunk(chunk domain.Chunk) error
	GetChunk(id string) (domain.Chunk, error)
	DeleteChunk(id string) error
	ChunkCount() (int, error)

	Close() error
}

// VectorItem is a vector to store along with the chunk it belongs to.
type VectorItem struct {
	ID     string
	Vector []float32
}

// VectorResult is a nearest-neighbor match.
type VectorResult struct {
	ID    string
	Score float64
}

// VectorStore persists embeddings and answers similarity queries.
type VectorStore interface {
	Upsert(items []VectorItem) error
	Search(query []float32, k int) ([]VectorResult, error)
	Count() int
}

// Chunker splits document content into indexable chunks.
type Chunker interface {
	Chunk(doc domain.Document, content string) ([]domain.Chunk, error)
}
