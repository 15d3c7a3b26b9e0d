package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Placeholder is a named blank in the story, referenced as {wordNN}.
type Placeholder struct {
	ID    string `json:"id" binding:"required,placeholderid"`
	Label string `json:"label"`
}

// StateRecord is the serializable snapshot of one madlib.
// Fields left unset were absent from the source payload; see Optional.
// Answers is omitted only when nil, so an empty map survives a round trip.
type StateRecord struct {
	Title        Optional[string]        `json:"title,omitzero"`
	Subtitle     Optional[string]        `json:"subtitle,omitzero"`
	Placeholders Optional[[]Placeholder] `json:"placeholders,omitzero"`
	Story        Optional[string]        `json:"story,omitzero"`
	Theme        *Theme                  `json:"theme,omitempty"`
	Answers      map[string]string       `json:"answers,omitzero"`
}

// BlankAnswer is rendered for placeholders left empty by the player.
const BlankAnswer = "___"

var (
	referencePattern     = regexp.MustCompile(`\{(word\d+)\}`)
	placeholderIDPattern = regexp.MustCompile(`^word(\d+)$`)
)

// PlaceholderID formats the id of the n-th placeholder (word01, word02, ...).
func PlaceholderID(n int) string {
	return fmt.Sprintf("word%02d", n)
}

// PlaceholderNumber extracts N from an id of the form wordN.
func PlaceholderNumber(id string) (int, bool) {
	m := placeholderIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ValidPlaceholderID reports whether id is wordN with N >= 1 rendered in at
// least two digits.
func ValidPlaceholderID(id string) bool {
	m := placeholderIDPattern.FindStringSubmatch(id)
	if m == nil || len(m[1]) < 2 {
		return false
	}
	_, ok := PlaceholderNumber(id)
	return ok
}

// DuplicatePlaceholderIDs returns ids that occur more than once, in first-seen order.
func DuplicatePlaceholderIDs(placeholders []Placeholder) []string {
	seen := make(map[string]int, len(placeholders))
	var dups []string
	for _, p := range placeholders {
		seen[p.ID]++
		if seen[p.ID] == 2 {
			dups = append(dups, p.ID)
		}
	}
	return dups
}

// References returns the unique placeholder ids referenced by the story, in
// order of first appearance.
func (r StateRecord) References() []string {
	matches := referencePattern.FindAllStringSubmatch(r.Story.Value, -1)
	seen := make(map[string]bool, len(matches))
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		refs = append(refs, m[1])
	}
	return refs
}

// OrphanedReferences returns story references without a matching placeholder.
// Dangling references are a warning for the editor, never a load failure.
func (r StateRecord) OrphanedReferences() []string {
	known := make(map[string]bool, len(r.Placeholders.Value))
	for _, p := range r.Placeholders.Value {
		known[p.ID] = true
	}
	var orphaned []string
	for _, ref := range r.References() {
		if !known[ref] {
			orphaned = append(orphaned, ref)
		}
	}
	return orphaned
}

// PlaceholderUsage counts the occurrences of {id} in the story.
func (r StateRecord) PlaceholderUsage(id string) int {
	return strings.Count(r.Story.Value, "{"+id+"}")
}

// Render fills the story with answers as plain text. Placeholders without a
// non-blank answer render as BlankAnswer; orphaned references are left as is.
func (r StateRecord) Render(answers map[string]string) string {
	if answers == nil {
		answers = r.Answers
	}
	out := r.Story.Value
	for _, p := range r.Placeholders.Value {
		answer := answers[p.ID]
		if strings.TrimSpace(answer) == "" {
			answer = BlankAnswer
		}
		out = strings.ReplaceAll(out, "{"+p.ID+"}", answer)
	}
	return out
}
