// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle. It owns
// request/response shapes and chat-session persistence; the pipeline below
// it never sees HTTP.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/redteamshop/shopassist/internal/domain/entities"
	"github.com/redteamshop/shopassist/internal/domain/ports"
	"github.com/redteamshop/shopassist/internal/domain/usecases"
)

// Server exposes the assistant pipeline to the web layer.
type Server struct {
	processor *usecases.QueryProcessor
	syncer    *usecases.KnowledgeSyncer
	probe     ports.AvailabilityProbe
	chatLog   ports.ChatLog
	addr      string
	logger    *zap.Logger
}

// NewServer creates a new HTTP server.
func NewServer(
	processor *usecases.QueryProcessor,
	syncer *usecases.KnowledgeSyncer,
	probe ports.AvailabilityProbe,
	chatLog ports.ChatLog,
	addr string,
	logger *zap.Logger,
) *Server {
	return &Server{
		processor: processor,
		syncer:    syncer,
		probe:     probe,
		chatLog:   chatLog,
		addr:      addr,
		logger:    logger,
	}
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/knowledge/sync", s.handleSync)
	mux.HandleFunc("GET /api/knowledge/stats", s.handleStats)

	server := &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // Generation calls are slow
	}

	s.logger.Info("server starting", zap.String("addr", s.addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// chatRequest is the inbound chat payload.
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Identity  string `json:"identity"`
}

// chatResponse mirrors the processor's external contract.
type chatResponse struct {
	Response    string                     `json:"response"`
	ContextUsed []entities.ContextDocument `json:"context_used"`
	Query       string                     `json:"query"`
	ModelUsed   string                     `json:"model_used"`
	Suggestions []string                   `json:"suggestions"`
	SessionID   string                     `json:"session_id"`
}

// handleChat runs a query through the pipeline and records the exchange.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	identity := req.Identity
	if identity == "" {
		identity = r.RemoteAddr
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result := s.processor.Process(r.Context(), req.Message, identity)

	contextIDs := make([]string, 0, len(result.ContextUsed))
	for _, doc := range result.ContextUsed {
		contextIDs = append(contextIDs, doc.Metadata.KnowledgeID)
	}
	exchange := entities.ChatExchange{
		SessionID:  sessionID,
		UserID:     identity,
		Query:      result.Query,
		Response:   result.Response,
		ContextIDs: contextIDs,
		Model:      result.ModelUsed,
		Timestamp:  time.Now(),
	}
	if err := s.chatLog.Record(r.Context(), exchange); err != nil {
		// Persistence is best effort; the user still gets their answer.
		s.logger.Warn("recording chat exchange failed", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:    result.Response,
		ContextUsed: result.ContextUsed,
		Query:       result.Query,
		ModelUsed:   result.ModelUsed,
		Suggestions: result.Suggestions,
		SessionID:   sessionID,
	})
}

// handleHealth reports service and backend status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"backend_available": s.probe.IsAvailable(r.Context()),
	})
}

// handleSync triggers a full knowledge-base resync.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	report, err := s.syncer.Sync(r.Context())
	if err != nil {
		s.logger.Error("knowledge sync failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"synced_count":  report.Synced,
		"total_entries": report.Total,
	})
}

// handleStats reports knowledge-base statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.syncer.Stats(r.Context())
	if err != nil {
		s.logger.Error("knowledge stats failed", zap.Error(err))
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_documents": stats.TotalDocuments,
		"embedding_model": stats.EmbeddingModel,
		"llm_model":       stats.GenerationModel,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
