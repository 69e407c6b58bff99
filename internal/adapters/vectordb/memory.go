// Package vectordb provides vector store adapters.
// Clean Architecture: Adapter implementing ports.VectorStore.
package vectordb

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/redteamshop/shopassist/internal/domain/entities"
	"github.com/redteamshop/shopassist/internal/domain/ports"
)

// InMemoryStore is an in-memory vector store. Records are kept in insertion
// order and ranking uses a stable sort, so equal distances tie-break by
// insertion order.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []ports.Record
}

// NewInMemoryStore creates a new in-memory vector store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Add stores a single record.
func (s *InMemoryStore) Add(ctx context.Context, rec ports.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return nil
}

// Search returns the k nearest records by cosine distance, ascending.
func (s *InMemoryStore) Search(ctx context.Context, embedding []float32, k int) ([]entities.ContextDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 || k <= 0 {
		return nil, nil
	}

	docs := make([]entities.ContextDocument, len(s.records))
	for i, rec := range s.records {
		docs[i] = entities.ContextDocument{
			Content:  rec.Content,
			Metadata: rec.Metadata,
			Distance: CosineDistance(embedding, rec.Embedding),
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Distance < docs[j].Distance
	})

	if len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

// Replace atomically swaps the full contents of the store. A search either
// sees the old set or the new set, never a partial rebuild.
func (s *InMemoryStore) Replace(ctx context.Context, recs []ports.Record) error {
	fresh := make([]ports.Record, len(recs))
	copy(fresh, recs)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = fresh
	return nil
}

// Count returns the number of stored records.
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records), nil
}

// CosineDistance is 1 minus the cosine similarity of two vectors, so lower
// means more similar. Mismatched or zero vectors get a distance of 1
// (orthogonal), keeping them out of the top ranks without special casing.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 1
	}

	return 1 - dotProduct/(math.Sqrt(normA)*math.Sqrt(normB))
}
