// Package app wires the resolver, the loader and the draft store into the
// page-load policy of the madlib editor.
package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"madlib-maker/internal/loader"
	"madlib-maker/internal/resolver"
	"madlib-maker/shared/models"
)

// DraftStore persists the single local draft of the editor.
type DraftStore interface {
	// Load returns the stored draft. ok is false when there is none.
	Load(ctx context.Context) (rec models.StateRecord, ok bool, err error)
	Save(ctx context.Context, rec models.StateRecord) error
}

// Outcome describes what Open did with an incoming URL.
type Outcome struct {
	Mode   models.Mode
	Loaded bool
	// Error is set when the URL carried a payload that could not be loaded.
	Error bool
	Cause error
	Short bool
	// Data is the loaded record, answers included for story links.
	Data models.StateRecord
	// DraftRestored is set when the local draft was loaded instead.
	DraftRestored bool
}

// Session is one editor session: a workspace, how links are resolved into it
// and where its draft lives.
type Session struct {
	resolver  *resolver.Resolver
	workspace *loader.Workspace
	drafts    DraftStore
	logger    *zap.Logger

	mu            sync.Mutex
	draftsEnabled bool
}

// NewSession creates a Session. drafts may be nil to run without a draft.
func NewSession(r *resolver.Resolver, ws *loader.Workspace, drafts DraftStore, logger *zap.Logger) *Session {
	return &Session{
		resolver:      r,
		workspace:     ws,
		drafts:        drafts,
		logger:        logger.Named("Session"),
		draftsEnabled: drafts != nil,
	}
}

func (s *Session) Workspace() *loader.Workspace { return s.workspace }

// DraftsEnabled reports whether SaveDraft persists anything. Player-only
// sessions (play and story links) never touch the draft.
func (s *Session) DraftsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draftsEnabled
}

func (s *Session) setDraftsEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draftsEnabled = enabled && s.drafts != nil
}

// Open resolves rawURL into the workspace.
//
// A loaded play or story link disables drafts, a loaded edit link overwrites
// the draft. Without a usable payload the draft is restored when one exists.
func (s *Session) Open(ctx context.Context, rawURL string) Outcome {
	res := s.resolver.ParseIncoming(ctx, rawURL)
	out := Outcome{Mode: res.Mode, Loaded: res.Loaded, Error: res.Error, Cause: res.Cause, Short: res.Short, Data: res.Data}

	if res.Loaded {
		if err := loader.Apply(s.workspace, res.Data); err != nil {
			s.logger.Warn("Could not load madlib from URL", zap.String("mode", res.Mode.String()), zap.Error(err))
			out = Outcome{Mode: models.ModeCreator, Error: true, Cause: err}
		} else {
			switch res.Mode {
			case models.ModePlay, models.ModeStory:
				s.setDraftsEnabled(false)
			case models.ModeEdit:
				if err := s.SaveDraft(ctx); err != nil {
					s.logger.Warn("Failed to overwrite draft with edit link", zap.Error(err))
				}
			}
			return out
		}
	}

	out.DraftRestored = s.restoreDraft(ctx)
	return out
}

func (s *Session) restoreDraft(ctx context.Context) bool {
	if s.drafts == nil {
		return false
	}
	draft, ok, err := s.drafts.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load draft", zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := loader.Apply(s.workspace, draft); err != nil {
		// Fields that did load stay loaded.
		s.logger.Warn("Draft restored with errors", zap.Error(err))
	}
	s.logger.Info("Draft restored")
	return true
}

// SaveDraft stores the workspace as the draft. It does nothing while drafts
// are disabled.
func (s *Session) SaveDraft(ctx context.Context) error {
	if !s.DraftsEnabled() {
		return nil
	}
	snap := s.workspace.Snapshot()
	theme := s.workspace.Theme()
	snap.Theme = &theme
	if err := s.drafts.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// ShareLink builds a share link for the workspace. Play links require a
// playable madlib; story links carry answers.
func (s *Session) ShareLink(ctx context.Context, mode models.Mode, answers map[string]string) (string, error) {
	rec := s.workspace.Snapshot()
	if mode == models.ModePlay {
		if err := resolver.ValidateForPlay(rec); err != nil {
			return "", err
		}
	}
	if mode == models.ModeStory {
		rec.Answers = answers
	}
	return s.resolver.BuildShareLink(ctx, mode, rec)
}
