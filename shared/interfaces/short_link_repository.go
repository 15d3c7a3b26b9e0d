package interfaces

import (
	"context"
	"time"

	"madlib-maker/shared/models"
)

// ShortLinkRepository is the key/value store behind short codes. Implementations
// must provide atomic per-key reads and writes and expire records on their own.
type ShortLinkRepository interface {
	// Exists reports whether a live (not expired) record is stored under code.
	Exists(ctx context.Context, code string) (bool, error)

	// Save stores rec under code for ttl.
	// Returns models.ErrShortCodeTaken if a live record already occupies code;
	// an existing record is never overwritten.
	Save(ctx context.Context, code string, rec models.ShortLinkRecord, ttl time.Duration) error

	// Get returns the record stored under code.
	// Returns models.ErrShortLinkNotFound if the code is unknown or expired.
	Get(ctx context.Context, code string) (models.ShortLinkRecord, error)
}

// PurgeableShortLinkRepository is a repository whose backend does not drop
// expired records by itself.
type PurgeableShortLinkRepository interface {
	ShortLinkRepository

	// PurgeExpired deletes expired records and returns how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)
}
