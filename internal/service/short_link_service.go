package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"madlib-maker/shared/interfaces"
	"madlib-maker/shared/models"
)

// MaxGenerationAttempts bounds the collision retry loop of Create.
const MaxGenerationAttempts = 10

// ShortLinkService issues and resolves short codes.
type ShortLinkService interface {
	// Create stores data under a freshly generated code and returns the code.
	// Returns models.ErrCodeGenerationExhausted when every attempt collided.
	Create(ctx context.Context, mode models.Mode, data models.StateRecord) (string, error)

	// Expand returns the record stored under code.
	// Returns models.ErrShortLinkNotFound for unknown or expired codes.
	Expand(ctx context.Context, code string) (models.ShortLinkRecord, error)
}

type shortLinkServiceImpl struct {
	repo     interfaces.ShortLinkRepository
	ttl      time.Duration
	generate CodeGenerator
	now      func() time.Time
	logger   *zap.Logger
}

// Option customizes a ShortLinkService.
type Option func(*shortLinkServiceImpl)

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(g CodeGenerator) Option {
	return func(s *shortLinkServiceImpl) { s.generate = g }
}

// WithClock replaces the time source used for the created timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *shortLinkServiceImpl) { s.now = now }
}

// NewShortLinkService creates the short link service. A non-positive ttl
// falls back to models.DefaultLinkTTL.
func NewShortLinkService(repo interfaces.ShortLinkRepository, ttl time.Duration, logger *zap.Logger, opts ...Option) ShortLinkService {
	if ttl <= 0 {
		ttl = models.DefaultLinkTTL
	}
	s := &shortLinkServiceImpl{
		repo:     repo,
		ttl:      ttl,
		generate: RandomShortCode,
		now:      time.Now,
		logger:   logger.Named("ShortLinkService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *shortLinkServiceImpl) Create(ctx context.Context, mode models.Mode, data models.StateRecord) (string, error) {
	if !mode.Shareable() {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidMode, mode)
	}
	log := s.logger.With(zap.String("mode", mode.String()))

	for attempt := 1; attempt <= MaxGenerationAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			log.Error("Failed to generate short code", zap.Error(err))
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}

		exists, err := s.repo.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check short code %s: %w", code, err)
		}
		if exists {
			shortCodeCollisionsTotal.Inc()
			log.Warn("Short code collision, retrying", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}

		rec := models.ShortLinkRecord{
			Mode:    mode,
			Data:    data,
			Created: s.now().UTC(),
		}
		err = s.repo.Save(ctx, code, rec, s.ttl)
		if errors.Is(err, models.ErrShortCodeTaken) {
			// Another writer took the code between Exists and Save.
			shortCodeCollisionsTotal.Inc()
			log.Warn("Short code taken concurrently, retrying", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to store short link %s: %w", code, err)
		}

		shortLinksCreatedTotal.WithLabelValues(mode.String()).Inc()
		log.Info("Short link created", zap.String("code", code), zap.Int("attempt", attempt))
		return code, nil
	}

	shortCodeExhaustionsTotal.Inc()
	log.Error("Short code generation exhausted", zap.Int("attempts", MaxGenerationAttempts))
	return "", models.ErrCodeGenerationExhausted
}

func (s *shortLinkServiceImpl) Expand(ctx context.Context, code string) (models.ShortLinkRecord, error) {
	if !models.ValidShortCode(code) {
		shortLinkExpansionsTotal.WithLabelValues("not_found").Inc()
		return models.ShortLinkRecord{}, models.ErrShortLinkNotFound
	}

	rec, err := s.repo.Get(ctx, code)
	switch {
	case errors.Is(err, models.ErrShortLinkNotFound):
		shortLinkExpansionsTotal.WithLabelValues("not_found").Inc()
		return models.ShortLinkRecord{}, err
	case err != nil:
		shortLinkExpansionsTotal.WithLabelValues("error").Inc()
		return models.ShortLinkRecord{}, fmt.Errorf("failed to expand short code %s: %w", code, err)
	}

	shortLinkExpansionsTotal.WithLabelValues("found").Inc()
	return rec, nil
}
