// SQLite-backed vector store for persistence across restarts.
// Ranking is brute force over all rows; the knowledge base is small enough
// that an ANN index would be overkill.

package vectordb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"github.com/redteamshop/shopassist/internal/domain/entities"
	"github.com/redteamshop/shopassist/internal/domain/ports"
)

// SQLiteStore implements ports.VectorStore with SQLite persistence.
// Rows are read back in rowid order, so equal distances tie-break by
// insertion order under the stable sort.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a persistent vector store under dataPath.
func NewSQLiteStore(dataPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if dataPath == "" {
		dataPath = "./data"
	}

	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "vectors.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS embeddings (
		ref TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		knowledge_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		title TEXT NOT NULL,
		category TEXT NOT NULL,
		embedding BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Add stores a single record.
func (s *SQLiteStore) Add(ctx context.Context, rec ports.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insert(ctx, s.db, rec)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) insert(ctx context.Context, db execer, rec ports.Record) error {
	embeddingJSON, err := json.Marshal(rec.Embedding)
	if err != nil {
		return fmt.Errorf("encoding embedding: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT OR REPLACE INTO embeddings
			(ref, content, knowledge_id, product_id, product_name, title, category, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Ref,
		rec.Content,
		rec.Metadata.KnowledgeID,
		rec.Metadata.ProductID,
		rec.Metadata.ProductName,
		rec.Metadata.Title,
		string(rec.Metadata.Category),
		embeddingJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// Search returns the k nearest records by cosine distance, ascending.
func (s *SQLiteStore) Search(ctx context.Context, embedding []float32, k int) ([]entities.ContextDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT content, knowledge_id, product_id, product_name, title, category, embedding
		FROM embeddings
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var docs []entities.ContextDocument
	for rows.Next() {
		var doc entities.ContextDocument
		var category string
		var embeddingJSON []byte

		err := rows.Scan(&doc.Content, &doc.Metadata.KnowledgeID, &doc.Metadata.ProductID,
			&doc.Metadata.ProductName, &doc.Metadata.Title, &category, &embeddingJSON)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		doc.Metadata.Category = entities.Category(category)

		var stored []float32
		if err := json.Unmarshal(embeddingJSON, &stored); err != nil {
			s.logger.Warn("skipping corrupted embedding", zap.String("knowledge_id", doc.Metadata.KnowledgeID))
			continue
		}

		doc.Distance = CosineDistance(embedding, stored)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Distance < docs[j].Distance
	})

	if len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

// Replace atomically swaps the full contents inside one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, recs []ports.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings"); err != nil {
		return fmt.Errorf("clearing embeddings: %w", err)
	}
	for _, rec := range recs {
		if err := s.insert(ctx, tx, rec); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
