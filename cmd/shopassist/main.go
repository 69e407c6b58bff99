// Command shopassist runs the product-assistant service: a knowledge-grounded
// question-answering pipeline over an Ollama backend. This is the composition
// root: every dependency is constructed here and injected explicitly; there
// is no global service state.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/redteamshop/shopassist/internal/adapters/chatlog"
	"github.com/redteamshop/shopassist/internal/adapters/embedding"
	"github.com/redteamshop/shopassist/internal/adapters/knowledge"
	"github.com/redteamshop/shopassist/internal/adapters/llm"
	"github.com/redteamshop/shopassist/internal/adapters/ratelimit"
	"github.com/redteamshop/shopassist/internal/adapters/vectordb"
	"github.com/redteamshop/shopassist/internal/config"
	"github.com/redteamshop/shopassist/internal/domain/ports"
	"github.com/redteamshop/shopassist/internal/domain/usecases"
	httpserver "github.com/redteamshop/shopassist/internal/infrastructure/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && err != context.Canceled {
		logger.Fatal("service failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	embedder := embedding.NewOllamaAdapter(cfg.OllamaBaseURL, cfg.EmbeddingModel, logger)

	var store ports.VectorStore
	switch cfg.VectorStoreType {
	case "sqlite":
		sqliteStore, err := vectordb.NewSQLiteStore(cfg.DataPath, logger)
		if err != nil {
			return err
		}
		defer sqliteStore.Close()
		store = sqliteStore
	default:
		store = vectordb.NewInMemoryStore()
	}

	var limiter ports.RateLimiter
	switch cfg.RateLimiterType {
	case "redis":
		redisLimiter := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RateLimit, cfg.RateWindow(), logger)
		defer redisLimiter.Close()
		limiter = redisLimiter
	default:
		limiter = ratelimit.NewInMemoryLimiter(cfg.RateLimit, cfg.RateWindow())
	}

	generator := llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.Model, llm.Options{
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		TopK:        cfg.TopK,
		NumPredict:  cfg.NumPredict,
	}, cfg.Timeout(), logger)
	probe := llm.NewProbe(cfg.OllamaBaseURL, cfg.Model, logger)

	knowledgeStore, err := knowledge.NewFileStore(cfg.KnowledgeFile)
	if err != nil {
		return err
	}

	chatLog, err := chatlog.NewSQLiteLog(cfg.DataPath)
	if err != nil {
		return err
	}
	defer chatLog.Close()

	index := usecases.NewIndex(embedder, store, logger)
	retrieval := usecases.NewRetrievalEngine(index, cfg.MaxInputLength, logger)
	responder := usecases.NewResponseGenerator(generator, probe, cfg.MaxInputLength, logger)
	processor := usecases.NewQueryProcessor(limiter, retrieval, responder,
		cfg.Model, cfg.MaxInputLength, cfg.RetrievalTopK, logger)
	syncer := usecases.NewKnowledgeSyncer(knowledgeStore, embedder, store, index,
		cfg.EmbeddingModel, cfg.Model, cfg.MaxInputLength, logger)

	// Seed the index before serving.
	if report, err := syncer.Sync(ctx); err != nil {
		logger.Warn("initial knowledge sync failed", zap.Error(err))
	} else {
		logger.Info("initial knowledge sync complete",
			zap.Int("synced", report.Synced), zap.Int("total", report.Total))
	}

	// Re-sync when the seeding process edits the knowledge file.
	watcher, err := knowledge.NewWatcher(cfg.KnowledgeFile, logger)
	if err != nil {
		return err
	}
	defer watcher.Stop()
	go func() {
		err := watcher.Watch(ctx, func(ctx context.Context) {
			if err := knowledgeStore.Reload(); err != nil {
				logger.Error("reloading knowledge file failed", zap.Error(err))
				return
			}
			if _, err := syncer.Sync(ctx); err != nil {
				logger.Error("knowledge re-sync failed", zap.Error(err))
			}
		})
		if err != nil && err != context.Canceled {
			logger.Warn("knowledge watcher stopped", zap.Error(err))
		}
	}()

	server := httpserver.NewServer(processor, syncer, probe, chatLog, cfg.HTTPAddr, logger)
	return server.Start(ctx)
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
