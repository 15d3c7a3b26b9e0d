package loader

import (
	"errors"
	"fmt"

	"madlib-maker/shared/models"
)

// ErrApplyFailed wraps the field errors of a partially applied record.
var ErrApplyFailed = errors.New("could not load madlib")

// Apply copies every field set in rec onto ws. Unset fields leave the live
// value alone. Each field is written on its own: a rejected field does not
// undo the others. Apply never panics.
func Apply(ws *Workspace, rec models.StateRecord) error {
	if ws == nil {
		return fmt.Errorf("%w: nil workspace", ErrApplyFailed)
	}

	var errs []error
	field := func(name string, write func() error) {
		if err := guard(write); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if title, ok := rec.Title.Get(); ok {
		field("title", func() error { ws.SetTitle(title); return nil })
	}
	if subtitle, ok := rec.Subtitle.Get(); ok {
		field("subtitle", func() error { ws.SetSubtitle(subtitle); return nil })
	}
	if placeholders, ok := rec.Placeholders.Get(); ok {
		field("placeholders", func() error { return ws.SetPlaceholders(placeholders) })
	}
	if story, ok := rec.Story.Get(); ok {
		field("story", func() error { ws.SetStory(story); return nil })
	}
	if rec.Theme != nil {
		field("theme", func() error { return ws.SetTheme(*rec.Theme) })
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrApplyFailed, errors.Join(errs...))
	}
	return nil
}

func guard(write func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return write()
}
