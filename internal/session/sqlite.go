package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store with SQLite-backed persistence. It delegates
// runtime logic (TTL sweeps, cloning, limits) to an embedded MemoryStore and
// persists every session as a JSON blob with write-through semantics, so a
// restart resumes every live consultation.
type SQLiteStore struct {
	inner *MemoryStore
	db    *sqlx.DB
	mu    sync.Mutex
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	state      TEXT NOT NULL DEFAULT '',
	archetype  TEXT NOT NULL DEFAULT '',
	blob       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

func NewSQLiteStore(dbPath string, cfg Config) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLiteStore{
		inner: NewMemoryStore(cfg),
		db:    db,
	}

	if err := s.loadAll(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) StartSweeper(ctx context.Context) {
	s.inner.StartSweeper(ctx)
}

func (s *SQLiteStore) loadAll() error {
	rows, err := s.db.Query("SELECT blob FROM sessions")
	if err != nil {
		return err
	}
	defer rows.Close()

	now := s.inner.now()
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return err
		}
		var sess Session
		if err := json.Unmarshal([]byte(blob), &sess); err != nil {
			continue // a corrupt row must not keep the store from starting
		}
		if sess.ID == "" || s.inner.expiredLocked(&sess, now) {
			continue
		}
		s.inner.sessions[sess.ID] = &sess
	}
	return rows.Err()
}

func (s *SQLiteStore) saveSession(sess *Session) error {
	blob, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO sessions (id, state, archetype, blob, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID,
		string(sess.State),
		string(sess.Archetype),
		string(blob),
		sess.CreatedAt.UTC().Format(time.RFC3339Nano),
		sess.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// --- session.Store implementation ---

func (s *SQLiteStore) Create(ctx context.Context) (*Session, error) {
	sess, err := s.inner.Create(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if perr := s.saveSession(sess); perr != nil {
		return nil, NewInternalError("persist session: " + perr.Error())
	}
	return sess, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	return s.inner.Get(ctx, id)
}

func (s *SQLiteStore) Save(ctx context.Context, sess *Session) error {
	if err := s.inner.Save(ctx, sess); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := s.inner.Get(ctx, sess.ID)
	if err != nil {
		return err
	}
	if perr := s.saveSession(stored); perr != nil {
		return NewInternalError("persist session: " + perr.Error())
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := s.inner.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return NewInternalError("delete session: " + err.Error())
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	return s.inner.List(ctx)
}

var _ Store = (*SQLiteStore)(nil)
