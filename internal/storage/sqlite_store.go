package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/procrastinate-org/procrastinate/internal/collection"
	"github.com/procrastinate-org/procrastinate/internal/models"
	"github.com/procrastinate-org/procrastinate/internal/timing"
)

const schema = `
CREATE TABLE IF NOT EXISTS procrastinations (
	key       TEXT PRIMARY KEY,
	title     TEXT NOT NULL,
	message   TEXT NOT NULL DEFAULT '',
	timing    TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	sticky    INTEGER NOT NULL DEFAULT 0,
	sleep     TEXT
);`

// SQLiteStore persists the collection in a single-table SQLite database.
// Timing rules and sleep overrides are stored as their JSON encoding so
// both backends share one wire format.
type SQLiteStore struct {
	path string
	db   *sql.DB
	data *collection.Collection
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("ensure schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already exists at %s", s.path)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}
	if err := s.open(); err != nil {
		return err
	}
	s.data = collection.New()
	return nil
}

func (s *SQLiteStore) Load() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotInitialized, s.path)
	}
	if err := s.open(); err != nil {
		return err
	}

	rows, err := s.db.Query(`SELECT key, title, message, timing, timestamp, sticky, sleep FROM procrastinations`)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	data := collection.New()
	for rows.Next() {
		var (
			key, title, message string
			timingRaw, stamp    string
			sticky              bool
			sleepRaw            sql.NullString
		)
		if err := rows.Scan(&key, &title, &message, &timingRaw, &stamp, &sticky, &sleepRaw); err != nil {
			return fmt.Errorf("scan entry: %w", err)
		}

		entry := &models.Procrastination{
			Title:   title,
			Message: message,
			Sticky:  sticky,
		}
		if err := json.Unmarshal([]byte(timingRaw), &entry.Timing); err != nil {
			return fmt.Errorf("parse timing for %q: %w", key, err)
		}
		entry.Timestamp, err = time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			return fmt.Errorf("parse timestamp for %q: %w", key, err)
		}
		if sleepRaw.Valid && sleepRaw.String != "" {
			sleep := &timing.OnceTiming{}
			if err := json.Unmarshal([]byte(sleepRaw.String), sleep); err != nil {
				return fmt.Errorf("parse sleep for %q: %w", key, err)
			}
			entry.Sleep = sleep
		}
		data.Insert(key, entry)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate entries: %w", err)
	}

	s.data = data
	return nil
}

func (s *SQLiteStore) Data() *collection.Collection {
	return s.data
}

// Save rewrites the whole table in one transaction. Entry counts are
// small enough that replace-all is simpler than diffing.
func (s *SQLiteStore) Save() error {
	if err := s.open(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM procrastinations`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO procrastinations (key, title, message, timing, timestamp, sticky, sleep) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, key := range s.data.Keys() {
		entry, _ := s.data.Get(key)

		timingRaw, err := json.Marshal(entry.Timing)
		if err != nil {
			return fmt.Errorf("encode timing for %q: %w", key, err)
		}
		var sleepRaw sql.NullString
		if entry.Sleep != nil {
			raw, err := json.Marshal(entry.Sleep)
			if err != nil {
				return fmt.Errorf("encode sleep for %q: %w", key, err)
			}
			sleepRaw = sql.NullString{String: string(raw), Valid: true}
		}

		_, err = stmt.Exec(key, entry.Title, entry.Message, string(timingRaw),
			entry.Timestamp.Format(time.RFC3339Nano), entry.Sticky, sleepRaw)
		if err != nil {
			return fmt.Errorf("insert %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) Path() string {
	return s.path
}

var _ Provider = (*SQLiteStore)(nil)
