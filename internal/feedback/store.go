package feedback

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists feedback events in a small embedded SQLite database
// opened with WAL journaling and migrated on open, scoped to one
// table: feedback events keyed by URI. The capsule itself stays the
// source of truth for frames; this store is a query-side cache so
// Aggregate doesn't have to replay the full aethervault://feedback/
// frame stream on every request.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) a feedback store at dsn, e.g. a path
// like "capsule.vault.feedback.db" or ":memory:" for tests.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("feedback: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("feedback: set WAL mode: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("feedback: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS feedback_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uri TEXT NOT NULL,
		score REAL NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		session TEXT NOT NULL DEFAULT '',
		ts DATETIME NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_feedback_uri ON feedback_events(uri)`)
	return err
}

// Append records one feedback event. Mirrors the commit-then-frame
// shape of the capsule: the caller is expected to also Put an
// aethervault://feedback/<ts>-<hash> frame recording the same event,
// so the capsule stays the durable source of truth if this cache is
// ever rebuilt from scratch.
func (s *Store) Append(e Event) error {
	_, err := s.db.Exec(
		`INSERT INTO feedback_events (uri, score, note, session, ts) VALUES (?, ?, ?, ?, ?)`,
		e.URI, e.Score, e.Note, e.Session, e.Timestamp.UTC(),
	)
	return err
}

// LoadByURI returns every recorded event for uri, oldest first.
func (s *Store) LoadByURI(uri string) ([]Event, error) {
	rows, err := s.db.Query(
		`SELECT score, note, session, ts FROM feedback_events WHERE uri = ? ORDER BY ts ASC`, uri)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var ts time.Time
		if err := rows.Scan(&e.Score, &e.Note, &e.Session, &ts); err != nil {
			return nil, err
		}
		e.URI = uri
		e.Timestamp = ts
		out = append(out, e)
	}
	return out, rows.Err()
}

// LoadAll returns the effective (aggregated, clamped) feedback score
// for every URI with at least one recorded event.
func (s *Store) LoadAll() (map[string]float64, error) {
	rows, err := s.db.Query(`SELECT uri, score FROM feedback_events`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.URI, &e.Score); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return AggregateByURI(events), nil
}
