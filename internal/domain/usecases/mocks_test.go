package usecases

import (
	"context"
	"fmt"

	"github.com/redteamshop/shopassist/internal/domain/entities"
	"github.com/redteamshop/shopassist/internal/domain/ports"
)

// mockEmbedder implements ports.EmbeddingService for testing.
type mockEmbedder struct {
	embedFn func(text string) ([]float32, error)
	calls   int
	seen    []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	m.seen = append(m.seen, text)
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// mockVectorStore implements ports.VectorStore and records the last search k.
type mockVectorStore struct {
	recs       []ports.Record
	lastK      int
	addErr     error
	searchErr  error
	replaceErr error
	countErr   error
}

func (m *mockVectorStore) Add(ctx context.Context, rec ports.Record) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.recs = append(m.recs, rec)
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, embedding []float32, k int) ([]entities.ContextDocument, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var docs []entities.ContextDocument
	for i, rec := range m.recs {
		if i >= k {
			break
		}
		docs = append(docs, entities.ContextDocument{
			Content:  rec.Content,
			Metadata: rec.Metadata,
			Distance: float64(i) * 0.1,
		})
	}
	return docs, nil
}

func (m *mockVectorStore) Replace(ctx context.Context, recs []ports.Record) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.recs = append([]ports.Record(nil), recs...)
	return nil
}

func (m *mockVectorStore) Count(ctx context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.recs), nil
}

// mockLLM implements ports.GenerationService.
type mockLLM struct {
	chatFn     func(prompt string) (string, error)
	model      string
	calls      int
	lastPrompt string
}

func (m *mockLLM) Chat(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.chatFn != nil {
		return m.chatFn(prompt)
	}
	return "mocked answer", nil
}

func (m *mockLLM) Model() string {
	if m.model != "" {
		return m.model
	}
	return "mistral"
}

// mockProbe implements ports.AvailabilityProbe.
type mockProbe struct {
	available   bool
	invalidated int
}

func (m *mockProbe) IsAvailable(ctx context.Context) bool { return m.available }
func (m *mockProbe) Invalidate()                          { m.invalidated++; m.available = false }

// mockLimiter implements ports.RateLimiter.
type mockLimiter struct {
	allow bool
	calls int
}

func (m *mockLimiter) Allow(ctx context.Context, identity string) bool {
	m.calls++
	return m.allow
}

// mockKnowledgeStore implements ports.KnowledgeStore.
type mockKnowledgeStore struct {
	entries []entities.KnowledgeEntry
	refs    map[string]string
	listErr error
}

func (m *mockKnowledgeStore) ListAll(ctx context.Context) ([]entities.KnowledgeEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.entries, nil
}

func (m *mockKnowledgeStore) Get(ctx context.Context, id string) (*entities.KnowledgeEntry, error) {
	for i := range m.entries {
		if m.entries[i].ID == id {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("knowledge entry %q not found", id)
}

func (m *mockKnowledgeStore) SetEmbeddingRef(ctx context.Context, id, ref string) error {
	if m.refs == nil {
		m.refs = make(map[string]string)
	}
	m.refs[id] = ref
	return nil
}
