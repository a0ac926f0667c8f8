// Package history keeps a record of synthesized utterances in a local
// SQLite database so earlier phrases can be recalled and replayed without
// paying for another generation. All methods tolerate a nil receiver,
// which is how the app runs when history is disabled.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const defaultRecentLimit = 20

// Utterance is one synthesized phrase.
type Utterance struct {
	ID          string
	Text        string
	Voice       string
	Model       string
	SampleRate  int
	SampleCount int
	Duration    time.Duration
	CreatedAt   time.Time
}

// Store persists utterances in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS utterances (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		voice TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		sample_rate INTEGER NOT NULL DEFAULT 0,
		sample_count INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_utterances_created ON utterances(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Add records one utterance, assigning an ID and timestamp when missing.
func (s *Store) Add(ctx context.Context, utt *Utterance) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if utt.ID == "" {
		utt.ID = uuid.NewString()
	}
	if utt.CreatedAt.IsZero() {
		utt.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO utterances (id, text, voice, model, sample_rate, sample_count, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, utt.ID, utt.Text, utt.Voice, utt.Model, utt.SampleRate, utt.SampleCount, utt.Duration.Milliseconds(), utt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record utterance: %w", err)
	}
	return nil
}

// Recent returns the latest utterances, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Utterance, error) {
	if s == nil {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, voice, model, sample_rate, sample_count, duration_ms, created_at
		FROM utterances
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list utterances: %w", err)
	}
	defer rows.Close()

	var utterances []*Utterance
	for rows.Next() {
		var utt Utterance
		var durationMS int64
		if err := rows.Scan(&utt.ID, &utt.Text, &utt.Voice, &utt.Model, &utt.SampleRate, &utt.SampleCount, &durationMS, &utt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan utterance: %w", err)
		}
		utt.Duration = time.Duration(durationMS) * time.Millisecond
		utterances = append(utterances, &utt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list utterances: %w", err)
	}
	return utterances, nil
}

// Count reports how many utterances the store holds.
func (s *Store) Count(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM utterances`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count utterances: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
