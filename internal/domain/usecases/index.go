// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
package usecases

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/redteamshop/shopassist/internal/domain/entities"
	"github.com/redteamshop/shopassist/internal/domain/ports"
)

// Top-k bounds for similarity queries, applied regardless of caller input.
const (
	minTopK = 1
	maxTopK = 10
)

// Index wraps the embedder and vector store into the similarity index the
// rest of the pipeline talks to. It is the single source of truth for
// ranking; there is no side cache.
type Index struct {
	embedder ports.EmbeddingService
	store    ports.VectorStore
	logger   *zap.Logger
}

// NewIndex creates an Index with injected dependencies.
func NewIndex(embedder ports.EmbeddingService, store ports.VectorStore, logger *zap.Logger) *Index {
	return &Index{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Add embeds text and stores it with its metadata under a generated unique
// reference. A returned error means the text was not indexed; Add never
// panics and has no partial effects.
func (ix *Index) Add(ctx context.Context, id, text string, meta entities.DocumentMetadata) (string, error) {
	embedding, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embedding document: %w", err)
	}

	ref := newRef(id, meta.ProductID)
	rec := ports.Record{
		Ref:       ref,
		Content:   text,
		Metadata:  meta,
		Embedding: embedding,
	}
	if err := ix.store.Add(ctx, rec); err != nil {
		return "", fmt.Errorf("storing document: %w", err)
	}
	return ref, nil
}

// Query embeds text and returns the k nearest stored documents ordered by
// ascending distance. k is clamped to [1,10] regardless of the caller-supplied
// value. An empty index yields an empty result; ties break by insertion order
// of the underlying store.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]entities.ContextDocument, error) {
	if k < minTopK {
		k = minTopK
	}
	if k > maxTopK {
		k = maxTopK
	}

	count, err := ix.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	embedding, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	docs, err := ix.store.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	return docs, nil
}

// Rebuild atomically drops all stored vectors and metadata, leaving an empty
// index ready for adds. No query observes a partially-rebuilt index.
func (ix *Index) Rebuild(ctx context.Context) error {
	return ix.store.Replace(ctx, nil)
}

// Count returns the number of stored vectors.
func (ix *Index) Count(ctx context.Context) (int, error) {
	return ix.store.Count(ctx)
}

// newRef generates a unique index reference for a knowledge document.
func newRef(id, productID string) string {
	u := uuid.New()
	return fmt.Sprintf("kb_%s_%s_%s", id, productID, hex.EncodeToString(u[:4]))
}
