package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/trungkien2003ntk/BookRetrieval/internal/port"
)

// BoltIndex is a BoltDB-backed vector index holding named collections, one
// bucket per collection.
type BoltIndex struct {
	db *bbolt.DB

	mu          sync.Mutex
	collections map[string]*BoltCollection
}

// NewBoltIndex opens (or creates) the index database at path.
func NewBoltIndex(path string) (*BoltIndex, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	return &BoltIndex{
		db:          db,
		collections: make(map[string]*BoltCollection),
	}, nil
}

// Collection returns a handle to the named collection, creating its bucket
// on first use. The dimension is enforced on every upserted and queried
// vector. Repeated calls with the same name return the same handle.
func (ix *BoltIndex) Collection(name string, dimension int) (*BoltCollection, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if c, ok := ix.collections[name]; ok {
		return c, nil
	}

	bucket := []byte(name)
	err := ix.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection bucket %s: %w", name, err)
	}

	c := &BoltCollection{
		db:        ix.db,
		bucket:    bucket,
		dimension: dimension,
		entries:   make(map[string]storedEntry),
	}
	if err := c.loadEntries(); err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", name, err)
	}

	ix.collections[name] = c
	return c, nil
}

// Close closes the underlying database.
func (ix *BoltIndex) Close() error {
	return ix.db.Close()
}

// BoltCollection implements port.Collection on a BoltDB bucket.
// Uses brute-force cosine search for simplicity; can be replaced with HNSW
// for larger collections.
type BoltCollection struct {
	db        *bbolt.DB
	bucket    []byte
	dimension int

	mu sync.RWMutex
	// In-memory mirror of the bucket for fast search
	entries map[string]storedEntry
}

type storedEntry struct {
	Document  string            `json:"d,omitempty"`
	Embedding []float32         `json:"v"`
	Metadata  map[string]string `json:"m,omitempty"`
}

func (c *BoltCollection) loadEntries() error {
	return c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // Skip corrupted entries
			}
			c.entries[string(k)] = stored
			return nil
		})
	})
}

// Upsert inserts or replaces entries keyed by ID.
func (c *BoltCollection) Upsert(ctx context.Context, entries []port.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return fmt.Errorf("collection bucket %s not found", c.bucket)
		}

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(e.Embedding) != c.dimension {
				return fmt.Errorf("vector dimension mismatch: expected %d, got %d", c.dimension, len(e.Embedding))
			}

			stored := storedEntry{
				Document:  e.Document,
				Embedding: e.Embedding,
				Metadata:  e.Metadata,
			}
			data, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(e.ID), data); err != nil {
				return err
			}

			c.entries[e.ID] = stored
		}

		return nil
	})
}

// Get point-looks-up entries by ID. IDs with no entry are skipped.
func (c *BoltCollection) Get(ctx context.Context, ids []string) ([]port.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	found := make([]port.Entry, 0, len(ids))
	for _, id := range ids {
		stored, ok := c.entries[id]
		if !ok {
			continue
		}
		found = append(found, port.Entry{
			ID:        id,
			Document:  stored.Document,
			Embedding: stored.Embedding,
			Metadata:  stored.Metadata,
		})
	}
	return found, nil
}

// Query finds the k nearest entries to every query vector using cosine
// similarity, returning one ranked list per vector.
func (c *BoltCollection) Query(ctx context.Context, vectors [][]float32, k int) ([][]port.Match, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make([][]port.Match, len(vectors))
	for i, query := range vectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(query) != c.dimension {
			return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", c.dimension, len(query))
		}
		results[i] = c.search(query, k)
	}
	return results, nil
}

func (c *BoltCollection) search(query []float32, k int) []port.Match {
	if len(c.entries) == 0 || k <= 0 {
		return nil
	}

	scored := make([]port.Match, 0, len(c.entries))
	for id, stored := range c.entries {
		scored = append(scored, port.Match{
			ID:       id,
			Score:    cosineSimilarity(query, stored.Embedding),
			Metadata: stored.Metadata,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		// Stable order for equal scores
		return scored[i].ID < scored[j].ID
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// Count returns the number of entries in the collection.
func (c *BoltCollection) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
