// Package store is the session journal: a SQLite file recording which
// connectors a mapping session drew and the script they produced. Documents
// themselves are never stored, only their fingerprints.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SourceFP  string    `json:"sourceFingerprint"`
	DestFP    string    `json:"destFingerprint"`
	CreatedAt time.Time `json:"createdAt"`
}

type ConnectorRecord struct {
	Seq       int       `json:"seq"`
	SourceID  string    `json:"sourceId"`
	DestID    string    `json:"destId"`
	CreatedAt time.Time `json:"createdAt"`
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.Kind, e.ID) }

type Journal struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the journal at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection so the pragmas below hold for every statement.
	db.SetMaxOpenConns(1)
	// WAL lets the TUI and a CLI invocation read while the other writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db, path: path, now: time.Now}, nil
}

func (j *Journal) Path() string { return j.path }

func (j *Journal) Close() error { return j.db.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			source_fp TEXT NOT NULL,
			dest_fp TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_fp ON sessions(source_fp, dest_fp);`,
		`CREATE TABLE IF NOT EXISTS connectors (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			source_id TEXT NOT NULL,
			dest_id TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS scripts (
			session_id TEXT PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
			body TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) nowMs() int64 { return j.now().UTC().UnixMilli() }

func fromMs(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// CreateSession starts a session for a source/destination pair.
func (j *Journal) CreateSession(ctx context.Context, name, sourceFP, destFP string) (Session, error) {
	id, err := newRandomID("ses")
	if err != nil {
		return Session{}, err
	}
	ms := j.nowMs()
	if _, err := j.db.ExecContext(ctx,
		`INSERT INTO sessions(id, name, source_fp, dest_fp, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		id, strings.TrimSpace(name), sourceFP, destFP, ms); err != nil {
		return Session{}, err
	}
	return Session{ID: id, Name: strings.TrimSpace(name), SourceFP: sourceFP, DestFP: destFP, CreatedAt: fromMs(ms)}, nil
}

// FindSession returns the newest session for the fingerprint pair.
func (j *Journal) FindSession(ctx context.Context, sourceFP, destFP string) (Session, bool, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, name, source_fp, dest_fp, created_at_unixms FROM sessions
		 WHERE source_fp = ? AND dest_fp = ? ORDER BY created_at_unixms DESC, rowid DESC LIMIT 1`,
		sourceFP, destFP)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	return s, true, nil
}

// Session looks a session up by id.
func (j *Journal) Session(ctx context.Context, id string) (Session, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, name, source_fp, dest_fp, created_at_unixms FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, NotFoundError{Kind: "session", ID: id}
	}
	return s, err
}

// Sessions lists every session, newest first.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, name, source_fp, dest_fp, created_at_unixms FROM sessions ORDER BY created_at_unixms DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(r scanner) (Session, error) {
	var s Session
	var ms int64
	if err := r.Scan(&s.ID, &s.Name, &s.SourceFP, &s.DestFP, &ms); err != nil {
		return Session{}, err
	}
	s.CreatedAt = fromMs(ms)
	return s, nil
}

// AppendConnector records a connector at the end of the session's list and
// returns its sequence number.
func (j *Journal) AppendConnector(ctx context.Context, sessionID, sourceID, destID string) (int, error) {
	tx, err := j.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var seq int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM connectors WHERE session_id = ?`, sessionID).Scan(&seq); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO connectors(session_id, seq, source_id, dest_id, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		sessionID, seq, sourceID, destID, j.nowMs()); err != nil {
		return 0, err
	}
	return seq, tx.Commit()
}

// DeleteConnector removes the first recorded connector matching the pair.
func (j *Journal) DeleteConnector(ctx context.Context, sessionID, sourceID, destID string) error {
	_, err := j.db.ExecContext(ctx,
		`DELETE FROM connectors WHERE session_id = ? AND seq = (
			SELECT MIN(seq) FROM connectors WHERE session_id = ? AND source_id = ? AND dest_id = ?)`,
		sessionID, sessionID, sourceID, destID)
	return err
}

// DeleteConnectors empties the session's connector list.
func (j *Journal) DeleteConnectors(ctx context.Context, sessionID string) error {
	_, err := j.db.ExecContext(ctx, `DELETE FROM connectors WHERE session_id = ?`, sessionID)
	return err
}

// Connectors returns the session's connectors in recording order.
func (j *Journal) Connectors(ctx context.Context, sessionID string) ([]ConnectorRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT seq, source_id, dest_id, created_at_unixms FROM connectors WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ConnectorRecord{}
	for rows.Next() {
		var c ConnectorRecord
		var ms int64
		if err := rows.Scan(&c.Seq, &c.SourceID, &c.DestID, &ms); err != nil {
			return nil, err
		}
		c.CreatedAt = fromMs(ms)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveScript stores the session's current script body, replacing the last one.
func (j *Journal) SaveScript(ctx context.Context, sessionID string, body []byte) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO scripts(session_id, body, updated_at_unixms) VALUES(?, ?, ?)`,
		sessionID, string(body), j.nowMs())
	return err
}

// Script returns the stored script body, ok=false when none was saved.
func (j *Journal) Script(ctx context.Context, sessionID string) ([]byte, bool, error) {
	var body string
	err := j.db.QueryRowContext(ctx, `SELECT body FROM scripts WHERE session_id = ?`, sessionID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(body), true, nil
}
