package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"madlib-maker/internal/codec"
	"madlib-maker/internal/loader"
	"madlib-maker/internal/resolver"
	"madlib-maker/shared/models"
)

const pageURL = "https://example.com/madlib/"

type memoryDrafts struct {
	rec     models.StateRecord
	ok      bool
	loadErr error
	saves   int
}

func (m *memoryDrafts) Load(context.Context) (models.StateRecord, bool, error) {
	return m.rec, m.ok, m.loadErr
}

func (m *memoryDrafts) Save(_ context.Context, rec models.StateRecord) error {
	m.rec, m.ok = rec, true
	m.saves++
	return nil
}

func newSession(t *testing.T, drafts DraftStore) *Session {
	t.Helper()
	r, err := resolver.New(pageURL, nil, zap.NewNop())
	require.NoError(t, err)
	return NewSession(r, loader.NewWorkspace(), drafts, zap.NewNop())
}

func linkFor(t *testing.T, mode models.Mode, rec models.StateRecord) string {
	t.Helper()
	token, err := codec.Encode(rec)
	require.NoError(t, err)
	return pageURL + "#" + mode.String() + "=" + token
}

func draftRecord() models.StateRecord {
	return models.StateRecord{Title: models.Some("My Draft"), Story: models.Some("draft story")}
}

func playable() models.StateRecord {
	return models.StateRecord{
		Title:        models.Some("Zoo Trip"),
		Placeholders: models.Some([]models.Placeholder{{ID: "word01", Label: "animal"}}),
		Story:        models.Some("I saw a {word01}."),
	}
}

func TestOpen_PlayLinkDisablesDrafts(t *testing.T) {
	drafts := &memoryDrafts{rec: draftRecord(), ok: true}
	s := newSession(t, drafts)

	out := s.Open(context.Background(), linkFor(t, models.ModePlay, playable()))
	assert.Equal(t, models.ModePlay, out.Mode)
	assert.True(t, out.Loaded)
	assert.False(t, out.DraftRestored)
	assert.Equal(t, "Zoo Trip", s.Workspace().Title())
	assert.False(t, s.DraftsEnabled())

	require.NoError(t, s.SaveDraft(context.Background()))
	assert.Zero(t, drafts.saves)
	assert.Equal(t, "My Draft", drafts.rec.Title.Value, "draft is untouched by a play link")
}

func TestOpen_StoryLinkKeepsAnswers(t *testing.T) {
	s := newSession(t, &memoryDrafts{})
	rec := playable()
	rec.Answers = map[string]string{"word01": "llama"}

	out := s.Open(context.Background(), linkFor(t, models.ModeStory, rec))
	require.True(t, out.Loaded)
	assert.Equal(t, models.ModeStory, out.Mode)
	assert.Equal(t, "I saw a llama.", out.Data.Render(nil))
	assert.False(t, s.DraftsEnabled())
}

func TestOpen_EditLinkOverwritesDraft(t *testing.T) {
	drafts := &memoryDrafts{rec: draftRecord(), ok: true}
	s := newSession(t, drafts)

	out := s.Open(context.Background(), linkFor(t, models.ModeEdit, playable()))
	assert.True(t, out.Loaded)
	assert.Equal(t, models.ModeEdit, out.Mode)
	assert.True(t, s.DraftsEnabled())
	assert.Equal(t, 1, drafts.saves)
	assert.Equal(t, "Zoo Trip", drafts.rec.Title.Value)
	require.NotNil(t, drafts.rec.Theme, "drafts always carry the theme")
}

func TestOpen_FallsBackToDraft(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantError bool
	}{
		{"no fragment", pageURL, false},
		{"unknown fragment", pageURL + "#foo", false},
		{"corrupt token", pageURL + "#play=%%%", true},
		{"short link without shortener", pageURL + "#s=aB3xY9", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, &memoryDrafts{rec: draftRecord(), ok: true})

			out := s.Open(context.Background(), tt.url)
			assert.Equal(t, models.ModeCreator, out.Mode)
			assert.False(t, out.Loaded)
			assert.Equal(t, tt.wantError, out.Error)
			assert.True(t, out.DraftRestored)
			assert.Equal(t, "My Draft", s.Workspace().Title())
			assert.True(t, s.DraftsEnabled())
		})
	}
}

func TestOpen_NoDraftStaysBlank(t *testing.T) {
	for _, drafts := range []DraftStore{nil, &memoryDrafts{}, &memoryDrafts{loadErr: errors.New("disk gone")}} {
		s := newSession(t, drafts)
		out := s.Open(context.Background(), pageURL+"#edit=broken")
		assert.True(t, out.Error)
		assert.False(t, out.DraftRestored)
		assert.Equal(t, "", s.Workspace().Title())
	}
}

func TestOpen_ApplyFailureIsAnError(t *testing.T) {
	rec := playable()
	rec.Placeholders = models.Some([]models.Placeholder{{ID: "word01"}, {ID: "word01"}})
	s := newSession(t, &memoryDrafts{rec: draftRecord(), ok: true})

	out := s.Open(context.Background(), linkFor(t, models.ModeEdit, rec))
	assert.Equal(t, models.ModeCreator, out.Mode)
	assert.False(t, out.Loaded)
	assert.True(t, out.Error)
	assert.ErrorIs(t, out.Cause, loader.ErrApplyFailed)
	assert.True(t, out.DraftRestored)
}

func TestShareLink(t *testing.T) {
	s := newSession(t, nil)

	_, err := s.ShareLink(context.Background(), models.ModePlay, nil)
	assert.ErrorIs(t, err, resolver.ErrNothingToPlay)

	require.NoError(t, loader.Apply(s.Workspace(), playable()))
	link, err := s.ShareLink(context.Background(), models.ModeStory, map[string]string{"word01": "llama"})
	require.NoError(t, err)

	other := newSession(t, nil)
	out := other.Open(context.Background(), link)
	require.True(t, out.Loaded)
	assert.Equal(t, "llama", out.Data.Answers["word01"])
}

func TestFileDraftStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileDraftStore(filepath.Join(t.TempDir(), "nested", "draft.json"))

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	rec := playable()
	theme := models.DefaultTheme()
	rec.Theme = &theme
	require.NoError(t, store.Save(ctx, rec))

	got, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, ok, err = store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
