package models

import "fmt"

// Mode says how a shared madlib should be opened.
type Mode string

const (
	ModeCreator Mode = "creator" // blank editor, never shared
	ModePlay    Mode = "play"
	ModeEdit    Mode = "edit"
	ModeStory   Mode = "story"
)

// ShareModes lists the modes that may appear in a link.
var ShareModes = []Mode{ModePlay, ModeEdit, ModeStory}

// Shareable reports whether m can be carried by a share link.
func (m Mode) Shareable() bool {
	switch m {
	case ModePlay, ModeEdit, ModeStory:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }

// ParseMode converts s to a shareable Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Shareable() {
		return "", fmt.Errorf("%w: %q (expected play, edit or story)", ErrInvalidMode, s)
	}
	return m, nil
}
