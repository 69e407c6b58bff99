package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/redteamshop/shopassist/internal/domain/entities"
	"github.com/redteamshop/shopassist/internal/domain/guard"
)

// RetrievalEngine turns a free-text query into ranked context documents.
// For identical index contents and query text, results are stable: the same
// embedding finds the same neighbors in the same order.
type RetrievalEngine struct {
	index          *Index
	maxInputLength int
	logger         *zap.Logger
}

// NewRetrievalEngine creates a RetrievalEngine with injected dependencies.
func NewRetrievalEngine(index *Index, maxInputLength int, logger *zap.Logger) *RetrievalEngine {
	if maxInputLength <= 0 {
		maxInputLength = guard.DefaultMaxLength
	}
	return &RetrievalEngine{
		index:          index,
		maxInputLength: maxInputLength,
		logger:         logger,
	}
}

// Retrieve returns the topK most relevant documents for the query.
// A rejected query yields an empty result with a nil error; a non-nil error
// means an internal fault (embedding or store failure), so callers can tell
// "no match" apart from "broken".
func (e *RetrievalEngine) Retrieve(ctx context.Context, query string, topK int) ([]entities.ContextDocument, error) {
	if !guard.Validate(query, e.maxInputLength) {
		e.logger.Warn("invalid query rejected by retrieval")
		return nil, nil
	}

	sanitized := guard.Sanitize(query)

	docs, err := e.index.Query(ctx, sanitized, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	return docs, nil
}
