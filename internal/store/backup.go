package store

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	BackupKindSession   = "session"
	BackupKindConnector = "connector"
	BackupKindScript    = "script"
)

// BackupRecord is one line of a session backup. A backup starts with exactly
// one session record, followed by its connectors in order and at most one
// script.
type BackupRecord struct {
	Kind      string           `json:"kind"`
	Session   *Session         `json:"session,omitempty"`
	Connector *ConnectorRecord `json:"connector,omitempty"`
	Script    json.RawMessage  `json:"script,omitempty"`
}

// ExportSession returns the backup records for one session.
func (j *Journal) ExportSession(ctx context.Context, id string) ([]BackupRecord, error) {
	s, err := j.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	out := []BackupRecord{{Kind: BackupKindSession, Session: &s}}

	conns, err := j.Connectors(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	for i := range conns {
		out = append(out, BackupRecord{Kind: BackupKindConnector, Connector: &conns[i]})
	}

	body, ok, err := j.Script(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	if ok {
		if !json.Valid(body) {
			return nil, fmt.Errorf("backup: session %s has an invalid script", s.ID)
		}
		out = append(out, BackupRecord{Kind: BackupKindScript, Script: json.RawMessage(body)})
	}
	return out, nil
}

// ImportSession restores a backup, replacing any session with the same id.
func (j *Journal) ImportSession(ctx context.Context, recs []BackupRecord) (Session, error) {
	if len(recs) == 0 || recs[0].Kind != BackupKindSession || recs[0].Session == nil {
		return Session{}, errors.New("backup: first record must be a session")
	}
	s := *recs[0].Session
	s.ID = strings.TrimSpace(s.ID)
	if s.ID == "" {
		return Session{}, errors.New("backup: session has empty id")
	}
	if s.SourceFP == "" || s.DestFP == "" {
		return Session{}, errors.New("backup: session has empty fingerprints")
	}
	createdMs := s.CreatedAt.UTC().UnixMilli()
	if s.CreatedAt.IsZero() {
		createdMs = j.nowMs()
		s.CreatedAt = fromMs(createdMs)
	}

	tx, err := j.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return Session{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// Connectors and scripts go with the session via ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, s.ID); err != nil {
		return Session{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions(id, name, source_fp, dest_fp, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.SourceFP, s.DestFP, createdMs); err != nil {
		return Session{}, err
	}

	seq := 0
	scripts := 0
	for _, r := range recs[1:] {
		switch r.Kind {
		case BackupKindConnector:
			c := r.Connector
			if c == nil || c.SourceID == "" || c.DestID == "" {
				return Session{}, errors.New("backup: connector has empty sourceId/destId")
			}
			seq++
			ms := c.CreatedAt.UTC().UnixMilli()
			if c.CreatedAt.IsZero() {
				ms = createdMs
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO connectors(session_id, seq, source_id, dest_id, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
				s.ID, seq, c.SourceID, c.DestID, ms); err != nil {
				return Session{}, err
			}
		case BackupKindScript:
			scripts++
			if scripts > 1 {
				return Session{}, errors.New("backup: more than one script record")
			}
			if !json.Valid(r.Script) {
				return Session{}, errors.New("backup: script is not valid JSON")
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO scripts(session_id, body, updated_at_unixms) VALUES(?, ?, ?)`,
				s.ID, string(r.Script), j.nowMs()); err != nil {
				return Session{}, err
			}
		default:
			return Session{}, fmt.Errorf("backup: unexpected %q record", r.Kind)
		}
	}

	if err := tx.Commit(); err != nil {
		return Session{}, err
	}
	return s, nil
}

// WriteBackupJSONL writes recs to path, one record per line.
func WriteBackupJSONL(path string, recs []BackupRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// ReadBackupJSONL reads backup records from a JSONL file, skipping blank lines.
func ReadBackupJSONL(path string) ([]BackupRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []BackupRecord{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var r BackupRecord
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			return nil, fmt.Errorf("parse backup jsonl: %w", err)
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
