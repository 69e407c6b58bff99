// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/redteamshop/shopassist/internal/domain/entities"
)

// EmbeddingService generates vector embeddings for text.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Record is one stored (vector, document, metadata) tuple inside a VectorStore.
type Record struct {
	Ref       string // Unique reference, generated by the caller.
	Content   string
	Metadata  entities.DocumentMetadata
	Embedding []float32
}

// VectorStore persists embedding records and supports nearest-neighbor search.
// Implementations must allow concurrent reads and serialize writes; Replace
// must be atomic so no Search observes a partially-rebuilt store.
type VectorStore interface {
	// Add stores a single record.
	Add(ctx context.Context, rec Record) error

	// Search returns the k stored records nearest to the query embedding,
	// ordered by ascending distance. Ties are broken by insertion order.
	Search(ctx context.Context, embedding []float32, k int) ([]entities.ContextDocument, error)

	// Replace atomically swaps the full contents of the store.
	// Replace(ctx, nil) empties it.
	Replace(ctx context.Context, recs []Record) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}

// GenerationService calls the language-model backend to turn a prompt into text.
type GenerationService interface {
	// Chat sends the assembled prompt and returns the generated text.
	Chat(ctx context.Context, prompt string) (string, error)

	// Model returns the configured model identifier.
	Model() string
}

// AvailabilityProbe reports whether the generation backend is reachable
// and serving the expected model.
type AvailabilityProbe interface {
	// IsAvailable returns the cached availability, re-probing when the
	// cached state is unavailable.
	IsAvailable(ctx context.Context) bool

	// Invalidate drops a cached "available" state so the next call re-probes.
	Invalidate()
}

// RateLimiter bounds per-identity request volume with a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, identity string) bool
}

// KnowledgeStore is the narrow interface onto the excluded persistence layer.
type KnowledgeStore interface {
	// ListAll returns every knowledge entry.
	ListAll(ctx context.Context) ([]entities.KnowledgeEntry, error)

	// Get returns one entry by ID.
	Get(ctx context.Context, id string) (*entities.KnowledgeEntry, error)

	// SetEmbeddingRef records the index reference assigned to an entry.
	SetEmbeddingRef(ctx context.Context, id, ref string) error
}

// ChatLog persists chat exchanges keyed by session: recording an existing
// session overwrites its previous exchange.
type ChatLog interface {
	Record(ctx context.Context, exchange entities.ChatExchange) error
}
