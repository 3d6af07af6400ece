// Package archive is the queryable sqlite index of completed actions
// and chat traffic. Writes go through a single writer goroutine so the
// hot path never blocks on the database; the JSONL action log remains
// the source of truth when the archive falls behind.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type ActionRow struct {
	ID      string
	Agent   string
	Action  string
	OK      bool
	Code    string
	Elapsed int64
	At      time.Time
	Raw     string
}

type ChatRow struct {
	Agent  string
	Kind   string
	Source string
	Text   string
	At     time.Time
}

type Store struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqAction reqKind = iota + 1
	reqChat
	reqSync
)

type req struct {
	kind   reqKind
	action ActionRow
	chat   ChatRow
	done   chan struct{}
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-heavy write pattern.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS actions (
			id TEXT PRIMARY KEY,
			agent TEXT NOT NULL,
			action TEXT NOT NULL,
			ok INTEGER NOT NULL,
			code TEXT,
			elapsed_ms INTEGER NOT NULL,
			at TEXT NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_actions_agent_at ON actions(agent, at);`,
		`CREATE TABLE IF NOT EXISTS chat (
			agent TEXT NOT NULL,
			kind TEXT NOT NULL,
			source TEXT,
			text TEXT NOT NULL,
			at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_agent_at ON chat(agent, at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordAction enqueues an action row. Never blocks; drops when the
// writer falls behind.
func (s *Store) RecordAction(row ActionRow) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqAction, action: row}:
	default:
	}
}

// RecordChat enqueues a chat row.
func (s *Store) RecordChat(row ChatRow) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqChat, chat: row}:
	default:
	}
}

// Sync blocks until every previously enqueued write is applied.
func (s *Store) Sync() {
	if s == nil || s.closed.Load() {
		return
	}
	done := make(chan struct{})
	s.ch <- req{kind: reqSync, done: done}
	<-done
}

func (s *Store) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqAction:
			a := r.action
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO actions (id, agent, action, ok, code, elapsed_ms, at, raw_json)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				a.ID, a.Agent, a.Action, boolInt(a.OK), a.Code, a.Elapsed,
				a.At.UTC().Format(time.RFC3339Nano), a.Raw,
			)
		case reqChat:
			c := r.chat
			_, _ = s.db.Exec(
				`INSERT INTO chat (agent, kind, source, text, at) VALUES (?, ?, ?, ?, ?)`,
				c.Agent, c.Kind, c.Source, c.Text, c.At.UTC().Format(time.RFC3339Nano),
			)
		case reqSync:
			close(r.done)
		}
	}
}

// RecentActions returns the newest rows for an agent, newest first.
func (s *Store) RecentActions(ctx context.Context, agent string, limit int) ([]ActionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent, action, ok, code, elapsed_ms, at, raw_json
		 FROM actions WHERE agent = ? ORDER BY at DESC LIMIT ?`, agent, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActionRow
	for rows.Next() {
		var a ActionRow
		var ok int
		var at, code sql.NullString
		if err := rows.Scan(&a.ID, &a.Agent, &a.Action, &ok, &code, &a.Elapsed, &at, &a.Raw); err != nil {
			return nil, err
		}
		a.OK = ok != 0
		a.Code = code.String
		if t, perr := time.Parse(time.RFC3339Nano, at.String); perr == nil {
			a.At = t
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RecentChat returns the newest chat lines for an agent, newest first.
func (s *Store) RecentChat(ctx context.Context, agent string, limit int) ([]ChatRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT agent, kind, source, text, at FROM chat
		 WHERE agent = ? ORDER BY at DESC LIMIT ?`, agent, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChatRow
	for rows.Next() {
		var c ChatRow
		var at, source sql.NullString
		if err := rows.Scan(&c.Agent, &c.Kind, &source, &c.Text, &at); err != nil {
			return nil, err
		}
		c.Source = source.String
		if t, perr := time.Parse(time.RFC3339Nano, at.String); perr == nil {
			c.At = t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
