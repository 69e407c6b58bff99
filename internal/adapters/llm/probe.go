package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// probeTimeout bounds the health call so a dead backend is detected quickly.
const probeTimeout = 5 * time.Second

// Probe checks whether the generation backend is reachable and serving the
// configured model. It is a two-state machine {down, up}: when down, every
// IsAvailable call retries the health check so recovery is detected on the
// next request; when up, no re-check happens until Invalidate. Readers see
// an atomic snapshot; refreshes are serialized.
type Probe struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger

	up        atomic.Bool
	refreshMu sync.Mutex
}

// NewProbe creates an availability probe for the given backend and model.
func NewProbe(baseURL, model string, logger *zap.Logger) *Probe {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Probe{
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: probeTimeout,
		},
		logger: logger,
	}
}

// tagsResponse is the Ollama /api/tags response body.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// IsAvailable returns the cached availability, re-probing only when the
// cached state is down. A stale "up" read for one request cycle is acceptable.
func (p *Probe) IsAvailable(ctx context.Context) bool {
	if p.up.Load() {
		return true
	}
	p.Refresh(ctx)
	return p.up.Load()
}

// Invalidate drops a cached "up" state so the next IsAvailable re-probes.
// The generator calls this after a failed chat call.
func (p *Probe) Invalidate() {
	p.up.Store(false)
}

// Refresh performs the health call and updates the cached state. The backend
// counts as available only when the configured model name appears
// (case-insensitive substring) among the returned model names.
func (p *Probe) Refresh(ctx context.Context) {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	up, err := p.check(ctx)
	if err != nil {
		p.logger.Warn("Ollama service not available", zap.Error(err))
		p.up.Store(false)
		return
	}
	if !up {
		p.logger.Warn("Ollama service is up but model not found", zap.String("model", p.model))
	}
	p.up.Store(up)
}

func (p *Probe) check(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/api/tags", nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false, fmt.Errorf("decoding response: %w", err)
	}

	want := strings.ToLower(p.model)
	for _, m := range tags.Models {
		if strings.Contains(strings.ToLower(m.Name), want) {
			return true, nil
		}
	}
	return false, nil
}
