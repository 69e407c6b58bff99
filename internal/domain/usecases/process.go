package usecases

import (
	"context"

	"go.uber.org/zap"

	"github.com/redteamshop/shopassist/internal/domain/entities"
	"github.com/redteamshop/shopassist/internal/domain/guard"
	"github.com/redteamshop/shopassist/internal/domain/ports"
)

// maxSuggestions caps how many product titles are offered alongside a response.
const maxSuggestions = 5

// maxLoggedQueryLen truncates queries in logs so full payloads never land
// in log storage.
const maxLoggedQueryLen = 50

// QueryProcessor is the top-level entry point for the pipeline and its error
// containment boundary: nothing above it ever observes an internal error.
type QueryProcessor struct {
	limiter        ports.RateLimiter
	retrieval      *RetrievalEngine
	generator      *ResponseGenerator
	model          string
	maxInputLength int
	topK           int
	logger         *zap.Logger
}

// NewQueryProcessor creates a QueryProcessor with injected dependencies.
func NewQueryProcessor(
	limiter ports.RateLimiter,
	retrieval *RetrievalEngine,
	generator *ResponseGenerator,
	model string,
	maxInputLength int,
	topK int,
	logger *zap.Logger,
) *QueryProcessor {
	if maxInputLength <= 0 {
		maxInputLength = guard.DefaultMaxLength
	}
	if topK <= 0 {
		topK = 5
	}
	return &QueryProcessor{
		limiter:        limiter,
		retrieval:      retrieval,
		generator:      generator,
		model:          model,
		maxInputLength: maxInputLength,
		topK:           topK,
		logger:         logger,
	}
}

// Process runs the full pipeline: rate check, validation, retrieval,
// generation and suggestion extraction. The rate check runs before
// validation, so invalid-input retries still consume rate budget.
// ModelUsed is populated on every path, including rejections.
func (p *QueryProcessor) Process(ctx context.Context, query, identity string) (result entities.QueryResult) {
	result = entities.QueryResult{
		Query:       query,
		ModelUsed:   p.model,
		ContextUsed: []entities.ContextDocument{},
		Suggestions: []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic in query pipeline", zap.Any("panic", r))
			result.Response = MsgProcessingTrouble
			result.ContextUsed = []entities.ContextDocument{}
			result.Suggestions = []string{}
		}
	}()

	if !p.limiter.Allow(ctx, identity) {
		result.Response = MsgTooManyRequests
		return result
	}

	if query == "" || !guard.Validate(query, p.maxInputLength) {
		result.Response = MsgRephrase
		return result
	}

	contextDocs, err := p.retrieval.Retrieve(ctx, query, p.topK)
	if err != nil {
		p.logger.Error("retrieval failed", zap.Error(err))
		result.Response = MsgProcessingTrouble
		return result
	}
	if contextDocs == nil {
		// The external contract serializes ContextUsed as an array, never null.
		contextDocs = []entities.ContextDocument{}
	}
	result.ContextUsed = contextDocs

	result.Response = p.generator.Generate(ctx, query, contextDocs)
	result.Suggestions = suggestionsFrom(contextDocs)

	p.logger.Info("query processed",
		zap.String("identity", identity),
		zap.String("query", truncate(query, maxLoggedQueryLen)),
		zap.Int("context_docs", len(contextDocs)))

	return result
}

// suggestionsFrom derives up to maxSuggestions distinct titles from the
// retrieved documents' metadata. Order is not guaranteed stable across calls.
func suggestionsFrom(docs []entities.ContextDocument) []string {
	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if doc.Metadata.Title == "" {
			continue
		}
		seen[doc.Metadata.Title] = struct{}{}
	}

	suggestions := make([]string, 0, len(seen))
	for title := range seen {
		if len(suggestions) >= maxSuggestions {
			break
		}
		suggestions = append(suggestions, title)
	}
	return suggestions
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
