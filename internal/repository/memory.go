package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rocketscienceinc/tictactoe/internal/entity"
)

const defaultSweepInterval = time.Minute

// MemorySessionRepository keeps sessions in process. Stored values are copies,
// so callers never share a history slice with the store.
type MemorySessionRepository struct {
	logger   *slog.Logger
	sessions *xsync.MapOf[string, *storedSession]
	ttl      time.Duration
	now      func() time.Time
}

type storedSession struct {
	session   *entity.Session
	expiresAt time.Time
}

func NewMemorySessionRepository(logger *slog.Logger, ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		logger:   logger.With("component", "memory_sessions"),
		sessions: xsync.NewMapOf[string, *storedSession](),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (that *MemorySessionRepository) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	stored := &storedSession{session: session.Clone()}
	if that.ttl > 0 {
		stored.expiresAt = that.now().Add(that.ttl)
	}

	that.sessions.Store(session.ID, stored)

	return nil
}

func (that *MemorySessionRepository) GetByID(_ context.Context, id string) (*entity.Session, error) {
	stored, ok := that.sessions.Load(id)
	if !ok || that.expired(stored) {
		return nil, ErrSessionNotFound
	}

	return stored.session.Clone(), nil
}

func (that *MemorySessionRepository) DeleteByID(_ context.Context, id string) error {
	if _, ok := that.sessions.LoadAndDelete(id); !ok {
		return ErrSessionNotFound
	}

	return nil
}

// Len reports the number of stored sessions, including expired ones not yet swept.
func (that *MemorySessionRepository) Len() int {
	return that.sessions.Size()
}

// Sweep drops expired sessions and returns how many were removed.
func (that *MemorySessionRepository) Sweep() int {
	removed := 0

	that.sessions.Range(func(id string, stored *storedSession) bool {
		if that.expired(stored) {
			that.sessions.Delete(id)
			removed++
		}
		return true
	})

	return removed
}

// Run sweeps on every interval until ctx is done.
func (that *MemorySessionRepository) Run(ctx context.Context, interval time.Duration) error {
	log := that.logger.With("method", "Run")

	if interval <= 0 {
		interval = defaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := that.Sweep(); removed > 0 {
				log.Debug("expired sessions removed", "count", removed)
			}
		}
	}
}

func (that *MemorySessionRepository) expired(stored *storedSession) bool {
	return !stored.expiresAt.IsZero() && that.now().After(stored.expiresAt)
}
