package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sync"

	"chromamcp/internal/models"

	"github.com/go-logr/logr"
	sqlite "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    content TEXT NOT NULL,
    meta TEXT,
    embedding BLOB,
    PRIMARY KEY (collection, id)
);
`

var registerFunctionsOnce sync.Once

// registerVectorFunctions makes vec_cosine available on connections opened
// after the call. The driver keeps the registration process-wide.
func registerVectorFunctions() error {
	var err error
	registerFunctionsOnce.Do(func() {
		err = sqlite.RegisterDeterministicScalarFunction("vec_cosine", 2, vecCosine)
	})
	return err
}

func vecCosine(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_cosine: expected 2 arguments, got %d", len(args))
	}
	vecs := make([][]float32, 2)
	for i, arg := range args {
		blob, ok := arg.([]byte)
		if !ok {
			return nil, fmt.Errorf("vec_cosine: unsupported argument type %T; want BLOB", arg)
		}
		vec, err := DecodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return CosineSimilarity(vecs[0], vecs[1])
}

// SQLiteStore stores documents and their embeddings in an embedded
// SQLite database and ranks them by cosine distance.
type SQLiteStore struct {
	db       *sql.DB
	name     string
	embedder Embedder
	logger   logr.Logger
}

// NewSQLiteStore opens the database at path, ":memory:" for a
// process-lifetime store, and ensures the documents table exists.
func NewSQLiteStore(ctx context.Context, path, name string, embedder Embedder, logger logr.Logger) (*SQLiteStore, error) {
	if err := registerVectorFunctions(); err != nil {
		return nil, fmt.Errorf("failed to register vector functions: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	logger.V(1).Info("Opened sqlite store", "path", path, "collection", name)

	return &SQLiteStore{
		db:       db,
		name:     name,
		embedder: embedder,
		logger:   logger,
	}, nil
}

func (s *SQLiteStore) Add(ctx context.Context, doc models.Document) error {
	embedding, err := s.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("failed to embed document: %w", err)
	}

	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents(collection, id, content, meta, embedding) VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(collection, id) DO NOTHING`,
		s.name, doc.ID, doc.Content, string(meta), EncodeEmbedding(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrDuplicateDocument, doc.ID)
	}

	s.logger.V(1).Info("Stored document", "id", doc.ID, "dimensions", len(embedding))
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, text string, n int) ([]models.SearchResult, error) {
	if n < 1 {
		return nil, nil
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, 1 - vec_cosine(embedding, ?) AS distance
		 FROM documents
		 WHERE collection = ?
		 ORDER BY distance ASC, rowid ASC
		 LIMIT ?`,
		EncodeEmbedding(embedding), s.name, n,
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.ID, &r.Distance); err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	s.logger.V(1).Info("Query complete", "matches", len(results))
	return results, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Collection = (*SQLiteStore)(nil)
