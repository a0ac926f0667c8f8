package history

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	texts := []string{"おはよう", "こんにちは", "こんばんは"}
	for i, text := range texts {
		err := store.Add(ctx, &Utterance{
			Text:        text,
			Voice:       "Kore",
			Model:       "models/gemini-2.5-flash-preview-tts",
			SampleRate:  24000,
			SampleCount: 24000 * (i + 1),
			Duration:    time.Duration(i+1) * time.Second,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Add(%q) error = %v", text, err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d utterances, want 2", len(recent))
	}
	if recent[0].Text != "こんばんは" || recent[1].Text != "こんにちは" {
		t.Errorf("Recent() order = [%q, %q], want newest first", recent[0].Text, recent[1].Text)
	}
	if recent[0].Duration != 3*time.Second {
		t.Errorf("Duration = %v, want 3s", recent[0].Duration)
	}
	if recent[0].SampleCount != 72000 {
		t.Errorf("SampleCount = %d, want 72000", recent[0].SampleCount)
	}
	if recent[0].SampleRate != 24000 {
		t.Errorf("SampleRate = %d, want 24000", recent[0].SampleRate)
	}
	if recent[0].Voice != "Kore" {
		t.Errorf("Voice = %q, want Kore", recent[0].Voice)
	}
}

func TestAddFillsFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	utt := &Utterance{Text: "テスト"}
	if err := store.Add(ctx, utt); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if utt.ID == "" {
		t.Error("Add() should assign an ID")
	}
	if utt.CreatedAt.IsZero() {
		t.Error("Add() should assign a timestamp")
	}
}

func TestRecentDefaultLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, &Utterance{Text: "ひとつ"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	recent, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent(0) error = %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("Recent(0) returned %d utterances, want 1", len(recent))
	}
}

func TestCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Add(ctx, &Utterance{Text: "声"}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}

func TestNilStore(t *testing.T) {
	var store *Store
	ctx := context.Background()

	if err := store.Add(ctx, &Utterance{Text: "dropped"}); err != nil {
		t.Errorf("nil store Add() error = %v", err)
	}
	recent, err := store.Recent(ctx, 5)
	if err != nil {
		t.Errorf("nil store Recent() error = %v", err)
	}
	if recent != nil {
		t.Errorf("nil store Recent() = %v, want nil", recent)
	}
	n, err := store.Count(ctx)
	if err != nil || n != 0 {
		t.Errorf("nil store Count() = %d, %v, want 0, nil", n, err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("nil store Close() error = %v", err)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	store.Close()
}

// flakyDriver serves queries whose row iteration fails after the first row,
// standing in for a disk error surfacing mid-scan.
type flakyDriver struct{}

func (flakyDriver) Open(name string) (driver.Conn, error) { return flakyConn{}, nil }

type flakyConn struct{}

func (flakyConn) Prepare(query string) (driver.Stmt, error) { return flakyStmt{}, nil }
func (flakyConn) Close() error                              { return nil }
func (flakyConn) Begin() (driver.Tx, error)                 { return nil, driver.ErrSkip }

type flakyStmt struct{}

func (flakyStmt) Close() error  { return nil }
func (flakyStmt) NumInput() int { return -1 }
func (flakyStmt) Exec(args []driver.Value) (driver.Result, error) {
	return driver.ResultNoRows, nil
}
func (flakyStmt) Query(args []driver.Value) (driver.Rows, error) {
	return &flakyRows{}, nil
}

type flakyRows struct{ served int }

func (r *flakyRows) Columns() []string {
	return []string{"id", "text", "voice", "model", "sample_rate", "sample_count", "duration_ms", "created_at"}
}

func (r *flakyRows) Close() error { return nil }

func (r *flakyRows) Next(dest []driver.Value) error {
	if r.served > 0 {
		return errors.New("disk I/O error")
	}
	r.served++
	dest[0] = "u1"
	dest[1] = "こんにちは"
	dest[2] = "Kore"
	dest[3] = "models/test"
	dest[4] = int64(24000)
	dest[5] = int64(48000)
	dest[6] = int64(2000)
	dest[7] = time.Now()
	return nil
}

func TestRecentReportsIterationError(t *testing.T) {
	sql.Register("history-flaky", flakyDriver{})
	db, err := sql.Open("history-flaky", "")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := &Store{db: db}
	if _, err := store.Recent(context.Background(), 5); err == nil {
		t.Error("Recent() should report an error that surfaces mid-iteration, not a short result")
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") should fail")
	}
}
