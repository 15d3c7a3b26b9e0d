package database

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"madlib-maker/shared/interfaces"
	"madlib-maker/shared/models"
)

var _ interfaces.PurgeableShortLinkRepository = (*MemoryShortLinkRepository)(nil)

type memoryEntry struct {
	rec       models.ShortLinkRecord
	expiresAt time.Time
}

// MemoryShortLinkRepository keeps short links in process memory. It is meant
// for local development and tests; records are lost on restart.
type MemoryShortLinkRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
	logger  *zap.Logger
}

// NewMemoryShortLinkRepository creates an empty in-memory repository.
func NewMemoryShortLinkRepository(logger *zap.Logger) *MemoryShortLinkRepository {
	return &MemoryShortLinkRepository{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		logger:  logger.Named("MemoryShortLinkRepo"),
	}
}

// WithClock replaces the time source, for expiry tests.
func (r *MemoryShortLinkRepository) WithClock(now func() time.Time) *MemoryShortLinkRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

// lookup must be called with mu held. Expired entries are dropped lazily.
func (r *MemoryShortLinkRepository) lookup(code string) (memoryEntry, bool) {
	e, ok := r.entries[code]
	if !ok {
		return memoryEntry{}, false
	}
	if !r.now().Before(e.expiresAt) {
		delete(r.entries, code)
		return memoryEntry{}, false
	}
	return e, true
}

func (r *MemoryShortLinkRepository) Exists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.lookup(code)
	return ok, nil
}

func (r *MemoryShortLinkRepository) Save(_ context.Context, code string, rec models.ShortLinkRecord, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lookup(code); ok {
		return models.ErrShortCodeTaken
	}
	r.entries[code] = memoryEntry{rec: rec, expiresAt: r.now().Add(ttl)}
	r.logger.Debug("Short link stored", zap.String("code", code), zap.Duration("ttl", ttl))
	return nil
}

func (r *MemoryShortLinkRepository) Get(_ context.Context, code string) (models.ShortLinkRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lookup(code)
	if !ok {
		return models.ShortLinkRecord{}, models.ErrShortLinkNotFound
	}
	return e.rec, nil
}

func (r *MemoryShortLinkRepository) PurgeExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	now := r.now()
	for code, e := range r.entries {
		if !now.Before(e.expiresAt) {
			delete(r.entries, code)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (r *MemoryShortLinkRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
