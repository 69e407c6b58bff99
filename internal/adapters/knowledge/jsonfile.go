// Package knowledge provides adapters onto the knowledge-entry store.
// The JSON file is written by the external seeding/admin process; this
// adapter exposes it through the narrow ports.KnowledgeStore interface.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/redteamshop/shopassist/internal/domain/entities"
)

// fileEntry is the on-disk JSON shape of one knowledge entry.
type fileEntry struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Category     string `json:"category"`
	EmbeddingRef string `json:"embedding_ref,omitempty"`
}

// FileStore implements ports.KnowledgeStore over a JSON seed file.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	entries []entities.KnowledgeEntry
}

// NewFileStore loads the knowledge file at path. A missing file yields an
// empty store rather than an error: seeding may not have run yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the file, picking up edits made by the seeding process.
func (s *FileStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.entries = nil
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("reading knowledge file: %w", err)
	}

	var raw []fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing knowledge file: %w", err)
	}

	entries := make([]entities.KnowledgeEntry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, entities.KnowledgeEntry{
			ID:           e.ID,
			ProductID:    e.ProductID,
			ProductName:  e.ProductName,
			Title:        e.Title,
			Content:      e.Content,
			Category:     entities.Category(e.Category),
			EmbeddingRef: e.EmbeddingRef,
		})
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// ListAll returns every knowledge entry.
func (s *FileStore) ListAll(ctx context.Context) ([]entities.KnowledgeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.KnowledgeEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Get returns one entry by ID.
func (s *FileStore) Get(ctx context.Context, id string) (*entities.KnowledgeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			e := s.entries[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("knowledge entry %q not found", id)
}

// SetEmbeddingRef records the index reference assigned to an entry.
// Refs are derived state, reconstructable by a resync, so they are kept in
// memory rather than written back to the seed file (writing back would
// retrigger the file watcher).
func (s *FileStore) SetEmbeddingRef(ctx context.Context, id, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].EmbeddingRef = ref
			return nil
		}
	}
	return fmt.Errorf("knowledge entry %q not found", id)
}
