package session

import (
	"context"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	SessionTTL    time.Duration
	MaxSessions   int
	SweepInterval time.Duration
	Clock         func() time.Time
}

// MemoryStore keeps sessions in a map guarded by a mutex. Expired sessions
// are dropped lazily on every operation and eagerly by StartSweeper.
type MemoryStore struct {
	mu sync.Mutex

	cfg      Config
	sessions map[string]*Session
	logger   *log.Logger
}

func NewMemoryStore(cfg Config) *MemoryStore {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 10000
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &MemoryStore{
		cfg:      cfg,
		sessions: map[string]*Session{},
		logger:   log.New(os.Stdout, "costcoach-session ", log.LstdFlags),
	}
}

func (s *MemoryStore) now() time.Time {
	return s.cfg.Clock().UTC()
}

func (s *MemoryStore) expiredLocked(sess *Session, now time.Time) bool {
	return now.Sub(sess.UpdatedAt) > s.cfg.SessionTTL
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for id, sess := range s.sessions {
		if s.expiredLocked(sess, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *MemoryStore) Create(ctx context.Context) (*Session, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)

	if len(s.sessions) >= s.cfg.MaxSessions {
		return nil, newError(CodeUnavailable, "session limit reached")
	}

	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		State:     StateWelcome,
		Inputs:    map[string]any{},
		Turns:     []Turn{},
	}
	s.sessions[sess.ID] = sess
	return sess.Clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)

	sess, ok := s.sessions[id]
	if !ok {
		return nil, notFound(id)
	}
	return sess.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return newError(CodeValidation, "session id is required")
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)

	cp := sess.Clone()
	cp.UpdatedAt = now
	if existing, ok := s.sessions[sess.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	s.sessions[sess.ID] = cp
	sess.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)

	if _, ok := s.sessions[id]; !ok {
		return notFound(id)
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)

	out := make([]Summary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// StartSweeper drops expired sessions on a fixed interval until the context
// is cancelled. Lazy expiry already keeps reads correct; the sweeper bounds
// memory for sessions nobody touches again.
func (s *MemoryStore) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := s.now()
				s.mu.Lock()
				before := len(s.sessions)
				s.sweepLocked(now)
				dropped := before - len(s.sessions)
				s.mu.Unlock()
				if dropped > 0 {
					s.logger.Printf("swept %d expired sessions", dropped)
				}
			}
		}
	}()
}

var _ Store = (*MemoryStore)(nil)
