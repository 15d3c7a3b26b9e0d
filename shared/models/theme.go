package models

import (
	"encoding/json"
	"sort"
)

// Theme holds the four colors of a madlib. On the wire the background color is
// stored under "bg" to keep links short; "background" is accepted on input
// because saved drafts use the long name.
type Theme struct {
	Background string `json:"bg"`
	Text       string `json:"text"`
	Button     string `json:"button"`
	Highlight  string `json:"highlight"`
}

// DefaultPreset is applied when a record carries no theme.
const DefaultPreset = "brick"

// ThemePresets are the built-in color schemes.
var ThemePresets = map[string]Theme{
	"brick": {
		Background: "#1c0001",
		Text:       "#ddd5ba",
		Button:     "#831a19",
		Highlight:  "#eeb440",
	},
	"ocean": {
		Background: "#0a1929",
		Text:       "#b8d4e3",
		Button:     "#1a4f6e",
		Highlight:  "#4fc3f7",
	},
	"forest": {
		Background: "#0d1f12",
		Text:       "#c5d4b8",
		Button:     "#2d5a3d",
		Highlight:  "#f0b429",
	},
	"midnight": {
		Background: "#0f0a1a",
		Text:       "#d4c5e8",
		Button:     "#4a1a6b",
		Highlight:  "#bb86fc",
	},
}

// DefaultTheme returns a copy of the default preset.
func DefaultTheme() Theme {
	return ThemePresets[DefaultPreset]
}

// Complete reports whether all four colors are present.
func (t Theme) Complete() bool {
	return t.Background != "" && t.Text != "" && t.Button != "" && t.Highlight != ""
}

// Preset returns the name of the preset t matches, or "" for a custom theme.
func (t Theme) Preset() string {
	names := make([]string, 0, len(ThemePresets))
	for name := range ThemePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ThemePresets[name] == t {
			return name
		}
	}
	return ""
}

// IsDefault reports whether t is the default preset.
func (t Theme) IsDefault() bool {
	return t == DefaultTheme()
}

func (t *Theme) UnmarshalJSON(data []byte) error {
	var raw struct {
		Bg         string `json:"bg"`
		Background string `json:"background"`
		Text       string `json:"text"`
		Button     string `json:"button"`
		Highlight  string `json:"highlight"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Background = raw.Bg
	if t.Background == "" {
		t.Background = raw.Background
	}
	t.Text = raw.Text
	t.Button = raw.Button
	t.Highlight = raw.Highlight
	return nil
}
