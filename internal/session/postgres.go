package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joelkehle/costcoach/internal/costanalysis"
)

// PostgresStore implements Store on a pgx connection pool. Unlike the
// SQLite store it holds no in-memory state: every operation goes to the
// database, so multiple server instances can share one pool. Expiry is
// enforced on read against updated_at and reclaimed by Sweep.
type PostgresStore struct {
	pool   *pgxpool.Pool
	cfg    Config
	logger *log.Logger
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	state      TEXT NOT NULL DEFAULT '',
	archetype  TEXT NOT NULL DEFAULT '',
	blob       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_updated_at ON sessions (updated_at);
`

func NewPostgresStore(ctx context.Context, databaseURL string, cfg Config) (*PostgresStore, error) {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &PostgresStore{
		pool:   pool,
		cfg:    cfg,
		logger: log.New(os.Stdout, "costcoach-session ", log.LstdFlags),
	}, nil
}

func (s *PostgresStore) now() time.Time {
	return s.cfg.Clock().UTC()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Create(ctx context.Context) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		State:     StateWelcome,
		Inputs:    map[string]any{},
		Turns:     []Turn{},
	}
	if err := s.upsert(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	var blob []byte
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx,
		"SELECT blob, updated_at FROM sessions WHERE id = $1", id).Scan(&blob, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, NewInternalError("get session: " + err.Error())
	}
	if s.now().Sub(updatedAt) > s.cfg.SessionTTL {
		_, _ = s.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
		return nil, notFound(id)
	}

	var sess Session
	if err := json.Unmarshal(blob, &sess); err != nil {
		return nil, NewInternalError("decode session: " + err.Error())
	}
	return &sess, nil
}

func (s *PostgresStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return newError(CodeValidation, "session id is required")
	}
	cp := sess.Clone()
	cp.UpdatedAt = s.now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = cp.UpdatedAt
	}
	if err := s.upsert(ctx, cp); err != nil {
		return err
	}
	sess.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return NewInternalError("delete session: " + err.Error())
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Summary, error) {
	cutoff := s.now().Add(-s.cfg.SessionTTL)
	rows, err := s.pool.Query(ctx,
		`SELECT id, state, archetype, created_at, updated_at, jsonb_array_length(blob->'turns')
		 FROM sessions WHERE updated_at > $1 ORDER BY created_at`, cutoff)
	if err != nil {
		return nil, NewInternalError("list sessions: " + err.Error())
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		var state, archetype string
		if err := rows.Scan(&sum.ID, &state, &archetype, &sum.CreatedAt, &sum.UpdatedAt, &sum.Turns); err != nil {
			return nil, NewInternalError("scan session: " + err.Error())
		}
		sum.State = State(state)
		sum.Archetype = costanalysis.Archetype(archetype)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, NewInternalError("list sessions: " + err.Error())
	}
	return out, nil
}

// Sweep deletes sessions whose last activity is older than the TTL and
// returns how many rows were reclaimed.
func (s *PostgresStore) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.SessionTTL)
	tag, err := s.pool.Exec(ctx, "DELETE FROM sessions WHERE updated_at <= $1", cutoff)
	if err != nil {
		return 0, NewInternalError("sweep sessions: " + err.Error())
	}
	return tag.RowsAffected(), nil
}

// StartSweeper reclaims expired rows on a fixed interval until the context
// is cancelled.
func (s *PostgresStore) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := s.Sweep(ctx); err != nil {
					s.logger.Printf("sweep failed: %v", err)
				} else if n > 0 {
					s.logger.Printf("swept %d expired sessions", n)
				}
			}
		}
	}()
}

func (s *PostgresStore) upsert(ctx context.Context, sess *Session) error {
	blob, err := json.Marshal(sess)
	if err != nil {
		return NewInternalError("encode session: " + err.Error())
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (id, state, archetype, blob, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   state = EXCLUDED.state,
		   archetype = EXCLUDED.archetype,
		   blob = EXCLUDED.blob,
		   updated_at = EXCLUDED.updated_at`,
		sess.ID, string(sess.State), string(sess.Archetype), blob, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return NewInternalError("persist session: " + err.Error())
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
