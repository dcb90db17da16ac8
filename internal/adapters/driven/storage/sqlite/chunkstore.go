// Package sqlite provides a SQLite-backed chunk store using the pure-Go
// driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docuflow-labs/docuflow/internal/core/domain"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// DBFilename is the database file name inside the data directory.
const DBFilename = "chunks.db"

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	ordinal     INTEGER NOT NULL,
	text        TEXT NOT NULL,
	word_count  INTEGER NOT NULL,
	metadata    TEXT NOT NULL DEFAULT 'null',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id, ordinal);
`

// ChunkStore persists chunk payloads alongside the binary vector index,
// keyed by chunk id.
type ChunkStore struct {
	db   *sql.DB
	path string
}

// NewChunkStore opens (or creates) the chunk database in dataDir.
// An empty dataDir defaults to ~/.docuflow.
func NewChunkStore(dataDir string) (*ChunkStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docuflow")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFilename)

	// WAL mode keeps concurrent ingest workers from serialising on
	// every write.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &ChunkStore{db: db, path: dbPath}, nil
}

// SaveChunks stores chunks in one transaction, replacing existing rows
// with the same ids.
func (s *ChunkStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks
			(id, document_id, ordinal, text, word_count, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, chunk := range chunks {
		metadata, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", chunk.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.DocumentID, chunk.Ordinal, chunk.Text,
			chunk.WordCount, string(metadata), now,
		); err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}
	}
	return tx.Commit()
}

// GetChunk retrieves a chunk by id.
func (s *ChunkStore) GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, ordinal, text, word_count, metadata
		FROM chunks WHERE id = ?`, chunkID)

	chunk, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: chunk %s", domain.ErrNotFound, chunkID)
		}
		return nil, fmt.Errorf("query chunk %s: %w", chunkID, err)
	}
	return chunk, nil
}

// ListByDocument returns a document's chunks ordered by ordinal.
func (s *ChunkStore) ListByDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, ordinal, text, word_count, metadata
		FROM chunks WHERE document_id = ? ORDER BY ordinal`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query chunks for %s: %w", documentID, err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, *chunk)
	}
	return chunks, rows.Err()
}

// DeleteByDocument removes all chunks of a document and returns the
// number of rows removed.
func (s *ChunkStore) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID)
	if err != nil {
		return 0, fmt.Errorf("delete chunks for %s: %w", documentID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// CountDocuments returns the number of distinct documents stored.
func (s *ChunkStore) CountDocuments(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT document_id) FROM chunks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// Path returns the database file path.
func (s *ChunkStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *ChunkStore) Close() error {
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (*domain.Chunk, error) {
	var (
		chunk    domain.Chunk
		metadata string
	)
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Ordinal,
		&chunk.Text, &chunk.WordCount, &metadata); err != nil {
		return nil, err
	}
	if metadata != "" && metadata != "null" {
		if err := json.Unmarshal([]byte(metadata), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &chunk, nil
}
