// Package journal provides an append-only SQLite diagnostic log: oracle
// decision rounds and notable world events. It is a flight recorder, not a
// save file: nothing here is read back into the simulation.
package journal

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/talgya/lifesim/internal/engine"
	"github.com/talgya/lifesim/internal/llm"
)

// DB wraps a SQLite connection for the journal.
type DB struct {
	conn *sqlx.DB
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// Open opens or creates a journal database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	db := &DB{conn: conn, enc: enc, dec: dec}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rounds (
		id TEXT PRIMARY KEY,
		tick INTEGER NOT NULL,
		status TEXT NOT NULL,
		applied INTEGER NOT NULL,
		error TEXT,
		prompt_z BLOB NOT NULL,
		response_z BLOB NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rounds_tick ON rounds(tick);
	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordRound appends one oracle decision round. Prompt and response blobs
// are zstd-compressed; they are the bulky part of every round.
func (db *DB) RecordRound(rec llm.RoundRecord) error {
	promptZ := db.enc.EncodeAll([]byte(rec.Prompt), nil)
	responseZ := db.enc.EncodeAll([]byte(rec.Response), nil)

	_, err := db.conn.Exec(
		`INSERT INTO rounds (id, tick, status, applied, error, prompt_z, response_z, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Tick, rec.Status, rec.Applied, rec.Err,
		promptZ, responseZ, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert round %s: %w", rec.ID, err)
	}
	return nil
}

// RecordEvents appends world events.
func (db *DB) RecordEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		if _, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RoundSummary is a decoded journal row without the prompt blob.
type RoundSummary struct {
	ID        string `json:"id" db:"id"`
	Tick      uint64 `json:"tick" db:"tick"`
	Status    string `json:"status" db:"status"`
	Applied   int    `json:"applied" db:"applied"`
	Error     string `json:"error,omitempty" db:"error"`
	Response  string `json:"response" db:"-"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// RecentRounds returns the most recent N rounds, newest first, with the
// response text decompressed.
func (db *DB) RecentRounds(limit int) ([]RoundSummary, error) {
	rows, err := db.conn.Queryx(
		`SELECT id, tick, status, applied, COALESCE(error, '') AS error, response_z, created_at
		 FROM rounds ORDER BY tick DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoundSummary
	for rows.Next() {
		var (
			s     RoundSummary
			respZ []byte
		)
		if err := rows.Scan(&s.ID, &s.Tick, &s.Status, &s.Applied, &s.Error, &respZ, &s.CreatedAt); err != nil {
			return nil, err
		}
		resp, err := db.dec.DecodeAll(respZ, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress round %s: %w", s.ID, err)
		}
		s.Response = string(resp)
		out = append(out, s)
	}
	return out, rows.Err()
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
