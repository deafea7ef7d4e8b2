package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"docqa/internal/domain"
)

const schemaVersion = 1

var (
	bucketDocs   = []byte("docs")
	bucketChunks = []byte("chunks")
	bucketMeta   = []byte("meta")
	keySchema    = []byte("schema_version")
)

// BoltStore persists documents and chunks in a single BoltDB file.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the store at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocs, bucketChunks, bucketMeta, bucketVectors} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return checkSchema(tx)
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// checkSchema stamps a fresh store and rejects stores written by a newer
// schema.
func checkSchema(tx *bbolt.Tx) error {
	meta := tx.Bucket(bucketMeta)
	raw := meta.Get(keySchema)
	if raw == nil {
		return meta.Put(keySchema, []byte{schemaVersion})
	}
	if raw[0] > schemaVersion {
		return fmt.Errorf("index schema version %d is newer than supported version %d", raw[0], schemaVersion)
	}
	return nil
}

// DB exposes the underlying handle so the vector store can share it.
func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

type docRecord struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	IngestedAt int64  `json:"ingested_at"`
}

type chunkRecord struct {
	DocID string `json:"doc_id"`
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func (s *BoltStore) PutDoc(doc domain.Document) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(docRecord{
			Name:       doc.Name,
			Path:       doc.Path,
			IngestedAt: doc.IngestedAt.Unix(),
		})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketDocs).Put([]byte(doc.ID), data)
	})
}

func (s *BoltStore) GetDoc(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("document not found: %s", id)
		}
		var rec docRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		doc = domain.Document{
			ID:         id,
			Name:       rec.Name,
			Path:       rec.Path,
			IngestedAt: time.Unix(rec.IngestedAt, 0),
		}
		return nil
	})
	return doc, err
}

func (s *BoltStore) DeleteDoc(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).Delete([]byte(id))
	})
}

func (s *BoltStore) ListDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var rec docRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			docs = append(docs, domain.Document{
				ID:         string(k),
				Name:       rec.Name,
				Path:       rec.Path,
				IngestedAt: time.Unix(rec.IngestedAt, 0),
			})
			return nil
		})
	})
	return docs, err
}

func (s *BoltStore) PutChunk(chunk domain.Chunk) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(chunkRecord{
			DocID: chunk.DocID,
			Index: chunk.Index,
			Text:  chunk.Text,
		})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketChunks).Put([]byte(chunk.ID), data)
	})
}

func (s *BoltStore) GetChunk(id string) (domain.Chunk, error) {
	var chunk domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketChunks).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("chunk not found: %s", id)
		}
		var rec chunkRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		chunk = domain.Chunk{
			ID:    id,
			DocID: rec.DocID,
			Index: rec.Index,
			Text:  rec.Text,
		}
		return nil
	})
	return chunk, err
}

func (s *BoltStore) DeleteChunk(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketChunks).Delete([]byte(id))
	})
}

func (s *BoltStore) ChunkCount() (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketChunks).Stats().KeyN
		return nil
	})
	return count, err
}
