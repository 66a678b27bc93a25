// Package store caches document text and extracted records in SQLite, keyed
// by the content hash of the document text.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/coolbeans/becas/pkg/types"
)

// ErrNotFound is returned when no cached entry matches.
var ErrNotFound = errors.New("not found in store")

const dsnOptions = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// timeLayout is fixed-width so stored UTC timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a SQLite cache with a single serialised writer connection and a
// separate pool for reads. It is safe for concurrent use.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

// Stats summarises the cache contents.
type Stats struct {
	Documents int `json:"documents"`
	Records   int `json:"records"`
	Valid     int `json:"valid"`
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	s := &Store{writeDB: writeDB}
	if err := s.init(); err != nil {
		writeDB.Close()
		return nil, err
	}

	readDB, err := sql.Open("sqlite", path+dsnOptions)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	s.readDB = readDB
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			hash      TEXT PRIMARY KEY,
			file_name TEXT NOT NULL,
			path      TEXT NOT NULL DEFAULT '',
			text      TEXT NOT NULL,
			stored_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS records (
			hash         TEXT NOT NULL,
			variant      TEXT NOT NULL,
			file_name    TEXT NOT NULL,
			valid        INTEGER NOT NULL,
			year         TEXT NOT NULL DEFAULT '',
			record       TEXT NOT NULL,
			processed_at TEXT NOT NULL,
			PRIMARY KEY (hash, variant)
		);
		CREATE INDEX IF NOT EXISTS idx_records_file ON records(file_name);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Close closes both connection pools.
func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	return errors.Join(errs...)
}

// Hash returns the hex SHA-256 of a document text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// PutDocument stores the text of a document under its content hash.
func (s *Store) PutDocument(ctx context.Context, doc types.Document) (string, error) {
	hash := Hash(doc.Text)
	_, err := s.writeDB.ExecContext(ctx, `
		INSERT INTO documents (hash, file_name, path, text, stored_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			file_name = excluded.file_name,
			path = excluded.path
	`, hash, doc.Name, doc.Path, doc.Text, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("storing document %s: %w", doc.Name, err)
	}
	return hash, nil
}

// GetDocument returns the document stored under hash.
func (s *Store) GetDocument(ctx context.Context, hash string) (types.Document, error) {
	var doc types.Document
	var storedAt string
	err := s.readDB.QueryRowContext(ctx,
		"SELECT file_name, path, text, stored_at FROM documents WHERE hash = ?", hash,
	).Scan(&doc.Name, &doc.Path, &doc.Text, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Document{}, fmt.Errorf("document %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return types.Document{}, fmt.Errorf("querying document: %w", err)
	}
	doc.ReadAt, _ = time.Parse(time.RFC3339, storedAt)
	return doc, nil
}

// PutRecord caches the record extracted from the text with the given hash.
// The variant identifies the catalog and options that produced it, so a
// changed catalog never serves stale records.
func (s *Store) PutRecord(ctx context.Context, hash, variant string, rec types.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.FileName, err)
	}
	_, err = s.writeDB.ExecContext(ctx, `
		INSERT INTO records (hash, variant, file_name, valid, year, record, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash, variant) DO UPDATE SET
			file_name = excluded.file_name,
			valid = excluded.valid,
			year = excluded.year,
			record = excluded.record,
			processed_at = excluded.processed_at
	`, hash, variant, rec.FileName, rec.Valid, rec.Year(), string(data), rec.ProcessedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("storing record %s: %w", rec.FileName, err)
	}
	return nil
}

// GetRecord returns the cached record for a text hash and variant.
func (s *Store) GetRecord(ctx context.Context, hash, variant string) (types.Record, error) {
	var data string
	err := s.readDB.QueryRowContext(ctx,
		"SELECT record FROM records WHERE hash = ? AND variant = ?", hash, variant,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Record{}, fmt.Errorf("record %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return types.Record{}, fmt.Errorf("querying record: %w", err)
	}
	return decodeRecord(data)
}

// Records returns the most recently processed record of every file name,
// ordered by file name.
func (s *Store) Records(ctx context.Context) ([]types.Record, error) {
	rows, err := s.readDB.QueryContext(ctx, `
		SELECT r.record FROM records r
		WHERE r.processed_at = (
			SELECT MAX(processed_at) FROM records WHERE file_name = r.file_name
		)
		GROUP BY r.file_name
		ORDER BY r.file_name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats counts the cached documents and records.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.readDB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM records),
			(SELECT COUNT(*) FROM records WHERE valid = 1)
	`).Scan(&st.Documents, &st.Records, &st.Valid)
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats: %w", err)
	}
	return st, nil
}

func decodeRecord(data string) (types.Record, error) {
	var rec types.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return types.Record{}, fmt.Errorf("decoding record: %w", err)
	}
	return rec, nil
}
