// Package loader holds the live madlib being edited and applies decoded
// records onto it.
package loader

import (
	"fmt"
	"strings"
	"sync"

	"madlib-maker/shared/models"
)

// DefaultTitle is shown for a madlib without a title.
const DefaultTitle = "Untitled Madlib"

// Workspace is the live state of the editor. It is safe for concurrent use.
type Workspace struct {
	mu           sync.Mutex
	title        string
	subtitle     string
	placeholders []models.Placeholder
	story        string
	theme        models.Theme
	nextID       int
}

// NewWorkspace returns a blank workspace with the default theme.
func NewWorkspace() *Workspace {
	return &Workspace{theme: models.DefaultTheme(), nextID: 1}
}

func (w *Workspace) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// DisplayTitle returns the title, or DefaultTitle when it is blank.
func (w *Workspace) DisplayTitle() string {
	if t := strings.TrimSpace(w.Title()); t != "" {
		return t
	}
	return DefaultTitle
}

func (w *Workspace) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.title = title
}

func (w *Workspace) Subtitle() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.TrimSpace(w.subtitle)
}

func (w *Workspace) SetSubtitle(subtitle string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subtitle = subtitle
}

func (w *Workspace) Story() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.story
}

func (w *Workspace) SetStory(story string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.story = story
}

func (w *Workspace) Theme() models.Theme {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.theme
}

// SetTheme replaces the theme. All four colors are required.
func (w *Workspace) SetTheme(theme models.Theme) error {
	if !theme.Complete() {
		return models.ErrIncompleteTheme
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.theme = theme
	return nil
}

// Placeholders returns a copy of the placeholder list.
func (w *Workspace) Placeholders() []models.Placeholder {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Placeholder(nil), w.placeholders...)
}

// SetPlaceholders replaces the whole placeholder list. Ids must be non-empty
// and unique. The id counter moves past the highest wordN loaded.
func (w *Workspace) SetPlaceholders(placeholders []models.Placeholder) error {
	maxNum := 0
	for i, p := range placeholders {
		if p.ID == "" {
			return fmt.Errorf("%w: placeholder %d", models.ErrEmptyPlaceholderID, i)
		}
		if n, ok := models.PlaceholderNumber(p.ID); ok && n > maxNum {
			maxNum = n
		}
	}
	if dups := models.DuplicatePlaceholderIDs(placeholders); len(dups) > 0 {
		return fmt.Errorf("%w: %s", models.ErrDuplicatePlaceholder, strings.Join(dups, ", "))
	}

	copied := make([]models.Placeholder, len(placeholders))
	copy(copied, placeholders)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.placeholders = copied
	w.nextID = maxNum + 1
	return nil
}

// AddPlaceholder appends a placeholder with the next free id. Blank labels
// are ignored and reported with ok == false.
func (w *Workspace) AddPlaceholder(label string) (models.Placeholder, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.Placeholder{}, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	p := models.Placeholder{ID: models.PlaceholderID(w.nextID), Label: label}
	w.nextID++
	w.placeholders = append(w.placeholders, p)
	return p, true
}

// RemovePlaceholder deletes the placeholder with id. References to it in the
// story become orphaned.
func (w *Workspace) RemovePlaceholder(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, p := range w.placeholders {
		if p.ID == id {
			w.placeholders = append(w.placeholders[:i], w.placeholders[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns the workspace as a record ready to share. The theme is
// left out when it is the default.
func (w *Workspace) Snapshot() models.StateRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	rec := models.StateRecord{
		Title:        models.Some(w.title),
		Subtitle:     models.Some(strings.TrimSpace(w.subtitle)),
		Placeholders: models.Some(append([]models.Placeholder{}, w.placeholders...)),
		Story:        models.Some(w.story),
	}
	if !w.theme.IsDefault() {
		theme := w.theme
		rec.Theme = &theme
	}
	return rec
}

// Reset returns the workspace to a blank madlib with the default theme.
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.title = ""
	w.subtitle = ""
	w.placeholders = nil
	w.story = ""
	w.theme = models.DefaultTheme()
	w.nextID = 1
}
