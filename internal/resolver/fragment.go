package resolver

import (
	"strings"

	"madlib-maker/shared/models"
)

// FragmentKind classifies the fragment of an incoming URL.
type FragmentKind int

const (
	// FragmentNone means no share payload: open the creator.
	FragmentNone FragmentKind = iota
	// FragmentShort carries a short code (#s=<code>).
	FragmentShort
	// FragmentToken carries a self-contained token (#play=, #edit=, #story=).
	FragmentToken
)

const shortPrefix = "s="

// Fragment is a classified URL fragment.
type Fragment struct {
	Kind FragmentKind
	// Mode is set for FragmentToken only. Short links learn their mode on expand.
	Mode  models.Mode
	Value string
}

// ParseFragment classifies fragment, with or without the leading '#'.
// Matching is by prefix, anything after it is the payload. Unknown fragments
// are FragmentNone.
func ParseFragment(fragment string) Fragment {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return Fragment{Kind: FragmentNone}
	}

	if code, ok := strings.CutPrefix(fragment, shortPrefix); ok {
		return Fragment{Kind: FragmentShort, Value: code}
	}
	for _, mode := range models.ShareModes {
		if token, ok := strings.CutPrefix(fragment, mode.String()+"="); ok {
			return Fragment{Kind: FragmentToken, Mode: mode, Value: token}
		}
	}
	return Fragment{Kind: FragmentNone}
}

// String renders f back into fragment form, without the '#'.
func (f Fragment) String() string {
	switch f.Kind {
	case FragmentShort:
		return shortPrefix + f.Value
	case FragmentToken:
		return f.Mode.String() + "=" + f.Value
	}
	return ""
}
