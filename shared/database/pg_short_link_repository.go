package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"madlib-maker/shared/interfaces"
	"madlib-maker/shared/models"
)

// pgShortLinkRepository реализует ShortLinkRepository для PostgreSQL.
// Expiry is enforced by filtering on expires_at; PurgeExpired removes dead rows.
type pgShortLinkRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.PurgeableShortLinkRepository = (*pgShortLinkRepository)(nil)

// NewPgShortLinkRepository creates a PostgreSQL-backed short link repository.
func NewPgShortLinkRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.PurgeableShortLinkRepository {
	return &pgShortLinkRepository{
		db:     db,
		logger: logger.Named("PgShortLinkRepo"),
	}
}

func (r *pgShortLinkRepository) Exists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM short_links WHERE code = $1 AND expires_at > now())`
	var exists bool
	if err := r.db.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		r.logger.Error("Failed to check short code", zap.String("code", code), zap.Error(err))
		return false, fmt.Errorf("failed to check short code: %w", err)
	}
	return exists, nil
}

// Save inserts the record. An expired row under the same code is reclaimed;
// a live one makes the insert a no-op and ErrShortCodeTaken is returned.
func (r *pgShortLinkRepository) Save(ctx context.Context, code string, rec models.ShortLinkRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal short link data: %w", err)
	}

	query := `
		INSERT INTO short_links (code, mode, data, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE
		SET mode = EXCLUDED.mode,
		    data = EXCLUDED.data,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
		WHERE short_links.expires_at <= now()`
	logFields := []zap.Field{
		zap.String("code", code),
		zap.String("mode", rec.Mode.String()),
		zap.Duration("ttl", ttl),
	}
	r.logger.Debug("Saving short link", logFields...)

	tag, err := r.db.Exec(ctx, query, code, string(rec.Mode), data, rec.Created, rec.Created.Add(ttl))
	if err != nil {
		r.logger.Error("Failed to save short link", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to save short link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Short code already taken", logFields...)
		return models.ErrShortCodeTaken
	}
	return nil
}

func (r *pgShortLinkRepository) Get(ctx context.Context, code string) (models.ShortLinkRecord, error) {
	query := `SELECT mode, data, created_at FROM short_links WHERE code = $1 AND expires_at > now()`

	var (
		mode    string
		data    []byte
		created time.Time
	)
	err := r.db.QueryRow(ctx, query, code).Scan(&mode, &data, &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Short code not found", zap.String("code", code))
			return models.ShortLinkRecord{}, models.ErrShortLinkNotFound
		}
		r.logger.Error("Failed to get short link", zap.String("code", code), zap.Error(err))
		return models.ShortLinkRecord{}, fmt.Errorf("failed to get short link: %w", err)
	}

	rec := models.ShortLinkRecord{Mode: models.Mode(mode), Created: created.UTC()}
	if err := json.Unmarshal(data, &rec.Data); err != nil {
		r.logger.Error("Failed to parse stored short link data", zap.String("code", code), zap.Error(err))
		return models.ShortLinkRecord{}, fmt.Errorf("corrupted short link data for code %s: %w", code, err)
	}
	return rec, nil
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (r *pgShortLinkRepository) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM short_links WHERE expires_at <= now()`)
	if err != nil {
		r.logger.Error("Failed to purge expired short links", zap.Error(err))
		return 0, fmt.Errorf("failed to purge expired short links: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		r.logger.Info("Purged expired short links", zap.Int64("count", n))
	}
	return tag.RowsAffected(), nil
}
