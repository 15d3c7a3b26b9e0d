// Package resolver builds share links and resolves incoming links back into a
// StateRecord.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"madlib-maker/internal/codec"
	"madlib-maker/shared/models"
)

var (
	// ErrShareLinkFailed means neither a short nor a long link could be built.
	ErrShareLinkFailed = errors.New("failed to generate link")
	// ErrNothingToPlay means a play link was requested for a madlib without placeholders.
	ErrNothingToPlay = errors.New("add at least one placeholder to share")
	// ErrEmptyStory means a play link was requested for a madlib without story text.
	ErrEmptyStory = errors.New("add story content to share")
	// ErrShorteningDisabled is the cause of a short link that cannot be expanded
	// because no shortener is configured.
	ErrShorteningDisabled = errors.New("url shortening is disabled")
)

// Shortener is the short link service as seen by the resolver.
// internal/client.Client implements it over HTTP.
type Shortener interface {
	Create(ctx context.Context, mode models.Mode, data models.StateRecord) (string, error)
	Expand(ctx context.Context, code string) (models.ShortLinkRecord, error)
}

// Result is the outcome of resolving an incoming URL.
type Result struct {
	Mode   models.Mode
	Loaded bool
	// Error is set when the URL carried a share payload that could not be used.
	Error bool
	Data  models.StateRecord
	// Short is set when the payload came from a short code.
	Short bool
	Cause error
}

// Resolver builds and resolves share links for one share page.
type Resolver struct {
	baseURL   *url.URL
	shortener Shortener
	logger    *zap.Logger
}

// New creates a Resolver for the share page at baseURL. A nil shortener
// disables short links: links are always long and #s= links cannot be opened.
func New(baseURL string, shortener Shortener, logger *zap.Logger) (*Resolver, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse share page url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("share page url %q must be absolute", baseURL)
	}
	u.Fragment = ""
	u.RawFragment = ""
	return &Resolver{
		baseURL:   u,
		shortener: shortener,
		logger:    logger.Named("Resolver"),
	}, nil
}

// ShorteningEnabled reports whether a shortener is configured.
func (r *Resolver) ShorteningEnabled() bool {
	return r.shortener != nil
}

// BuildShareLink returns a link that opens data in mode. A short link is
// preferred; when shortening is disabled or fails the link carries the whole
// record as a token.
func (r *Resolver) BuildShareLink(ctx context.Context, mode models.Mode, data models.StateRecord) (string, error) {
	if !mode.Shareable() {
		return "", fmt.Errorf("%w: %w: %q", ErrShareLinkFailed, models.ErrInvalidMode, mode)
	}
	log := r.logger.With(zap.String("mode", mode.String()))

	var shortErr error
	if r.shortener != nil {
		code, err := r.shortener.Create(ctx, mode, data)
		if err == nil {
			log.Debug("Short link created", zap.String("code", code))
			return r.withFragment(Fragment{Kind: FragmentShort, Value: code}), nil
		}
		shortErr = err
		log.Warn("Short link creation failed, falling back to long link", zap.Error(err))
	}

	token, err := codec.Encode(data)
	if err != nil {
		log.Error("Failed to encode share link", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrShareLinkFailed, errors.Join(shortErr, err))
	}
	return r.withFragment(Fragment{Kind: FragmentToken, Mode: mode, Value: token}), nil
}

func (r *Resolver) withFragment(f Fragment) string {
	return r.baseURL.String() + "#" + f.String()
}

// ValidateForPlay checks that rec can be played: it needs at least one
// placeholder and some story text.
func ValidateForPlay(rec models.StateRecord) error {
	if len(rec.Placeholders.Value) == 0 {
		return ErrNothingToPlay
	}
	if strings.TrimSpace(rec.Story.Value) == "" {
		return ErrEmptyStory
	}
	return nil
}

// ParseIncoming resolves rawURL, a full URL or a bare "#..." fragment.
// It never fails: problems are reported through Result.Error and Result.Cause.
func (r *Resolver) ParseIncoming(ctx context.Context, rawURL string) Result {
	_, fragment, _ := strings.Cut(strings.TrimSpace(rawURL), "#")
	if strings.Contains(fragment, "%") {
		if unescaped, err := url.PathUnescape(fragment); err == nil {
			fragment = unescaped
		}
	}

	f := ParseFragment(fragment)
	switch f.Kind {
	case FragmentShort:
		return r.expandShort(ctx, f.Value)
	case FragmentToken:
		data, err := codec.Decode(f.Value)
		if err != nil {
			r.logger.Warn("Could not load madlib from URL", zap.String("mode", f.Mode.String()), zap.Error(err))
			return failed(err)
		}
		return Result{Mode: f.Mode, Loaded: true, Data: data}
	}
	return Result{Mode: models.ModeCreator}
}

func (r *Resolver) expandShort(ctx context.Context, code string) Result {
	log := r.logger.With(zap.String("code", code))
	if r.shortener == nil {
		log.Warn("Short link received but shortening is disabled")
		return failed(ErrShorteningDisabled)
	}

	rec, err := r.shortener.Expand(ctx, code)
	if err != nil {
		log.Warn("Failed to expand short link", zap.Error(err))
		return failed(err)
	}
	if !rec.Mode.Shareable() {
		err := fmt.Errorf("%w: %q", models.ErrInvalidMode, rec.Mode)
		log.Warn("Short link carries an unknown mode", zap.Error(err))
		return failed(err)
	}
	return Result{Mode: rec.Mode, Loaded: true, Data: rec.Data, Short: true}
}

func failed(cause error) Result {
	return Result{Mode: models.ModeCreator, Error: true, Cause: cause}
}
