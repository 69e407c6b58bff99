package usecases

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/redteamshop/shopassist/internal/domain/entities"
	"github.com/redteamshop/shopassist/internal/domain/guard"
	"github.com/redteamshop/shopassist/internal/domain/ports"
)

// SyncReport summarizes a full knowledge-base resync.
type SyncReport struct {
	Synced int
	Total  int
}

// Stats describes the current state of the knowledge index.
type Stats struct {
	TotalDocuments  int
	EmbeddingModel  string
	GenerationModel string
}

// KnowledgeSyncer keeps the vector index in step with the knowledge store.
// A full sync regenerates index records 1:1 from current entries, so every
// embedded entry has exactly one corresponding record.
type KnowledgeSyncer struct {
	knowledge ports.KnowledgeStore
	embedder  ports.EmbeddingService
	store     ports.VectorStore
	index     *Index

	embeddingModel  string
	generationModel string
	maxInputLength  int
	logger          *zap.Logger
}

// NewKnowledgeSyncer creates a KnowledgeSyncer with injected dependencies.
func NewKnowledgeSyncer(
	knowledge ports.KnowledgeStore,
	embedder ports.EmbeddingService,
	store ports.VectorStore,
	index *Index,
	embeddingModel, generationModel string,
	maxInputLength int,
	logger *zap.Logger,
) *KnowledgeSyncer {
	if maxInputLength <= 0 {
		maxInputLength = guard.DefaultMaxLength
	}
	return &KnowledgeSyncer{
		knowledge:       knowledge,
		embedder:        embedder,
		store:           store,
		index:           index,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
		maxInputLength:  maxInputLength,
		logger:          logger,
	}
}

// Sync rebuilds the index from all current knowledge entries. Entries that
// fail to embed are skipped and reported, not fatal. The new record set
// replaces the old one atomically, so queries never see a partial rebuild.
func (s *KnowledgeSyncer) Sync(ctx context.Context) (SyncReport, error) {
	entries, err := s.knowledge.ListAll(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("listing knowledge entries: %w", err)
	}

	report := SyncReport{Total: len(entries)}
	recs := make([]ports.Record, 0, len(entries))
	refs := make(map[string]string, len(entries))

	for _, entry := range entries {
		content := embeddingContent(entry)

		embedding, err := s.embedder.Embed(ctx, content)
		if err != nil {
			s.logger.Error("skipping entry, embedding failed",
				zap.String("knowledge_id", entry.ID), zap.Error(err))
			continue
		}

		ref := fmt.Sprintf("kb_%s_%s", entry.ID, entry.ProductID)
		recs = append(recs, ports.Record{
			Ref:     ref,
			Content: content,
			Metadata: entities.DocumentMetadata{
				KnowledgeID: entry.ID,
				ProductID:   entry.ProductID,
				ProductName: entry.ProductName,
				Title:       entry.Title,
				Category:    entry.Category,
			},
			Embedding: embedding,
		})
		refs[entry.ID] = ref
	}

	if err := s.store.Replace(ctx, recs); err != nil {
		return report, fmt.Errorf("replacing index contents: %w", err)
	}
	report.Synced = len(recs)

	for id, ref := range refs {
		if err := s.knowledge.SetEmbeddingRef(ctx, id, ref); err != nil {
			s.logger.Warn("recording embedding ref failed",
				zap.String("knowledge_id", id), zap.Error(err))
		}
	}

	s.logger.Info("knowledge base synced",
		zap.Int("synced", report.Synced), zap.Int("total", report.Total))
	return report, nil
}

// AddEntry validates, sanitizes and indexes a single entry, returning its
// index reference. An error means the entry was not indexed.
func (s *KnowledgeSyncer) AddEntry(ctx context.Context, entry entities.KnowledgeEntry) (string, error) {
	if entry.ID == "" || entry.ProductID == "" || entry.Title == "" || entry.Content == "" {
		return "", fmt.Errorf("knowledge entry is missing required fields")
	}

	entry.Title = guard.Sanitize(entry.Title)
	entry.Content = guard.Sanitize(entry.Content)

	if !guard.Validate(entry.Title, s.maxInputLength) || !guard.Validate(entry.Content, s.maxInputLength) {
		return "", fmt.Errorf("knowledge entry failed validation")
	}

	ref, err := s.index.Add(ctx, entry.ID, entry.Content, entities.DocumentMetadata{
		KnowledgeID: entry.ID,
		ProductID:   entry.ProductID,
		ProductName: entry.ProductName,
		Title:       entry.Title,
		Category:    entry.Category,
	})
	if err != nil {
		return "", fmt.Errorf("indexing knowledge entry: %w", err)
	}

	if err := s.knowledge.SetEmbeddingRef(ctx, entry.ID, ref); err != nil {
		s.logger.Warn("recording embedding ref failed",
			zap.String("knowledge_id", entry.ID), zap.Error(err))
	}
	return ref, nil
}

// Stats reports the indexed document count and the configured models.
func (s *KnowledgeSyncer) Stats(ctx context.Context) (Stats, error) {
	count, err := s.index.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("counting documents: %w", err)
	}
	return Stats{
		TotalDocuments:  count,
		EmbeddingModel:  s.embeddingModel,
		GenerationModel: s.generationModel,
	}, nil
}

// embeddingContent is the text actually embedded for an entry. Folding the
// title, product and category into the text makes them searchable alongside
// the content itself.
func embeddingContent(e entities.KnowledgeEntry) string {
	return fmt.Sprintf("Title: %s\nProduct: %s\nCategory: %s\nContent: %s",
		e.Title, e.ProductName, e.Category, e.Content)
}
