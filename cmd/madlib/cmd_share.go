package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"madlib-maker/internal/loader"
	"madlib-maker/shared/models"
)

var (
	shareMode    string
	shareFile    string
	shareAnswers []string
)

// shareCmd builds a share link for a madlib file or the current draft.
var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Print a share link for a madlib",
	Long: `Prints a link that opens the madlib in the given mode.

The madlib is read from --file (JSON, "-" for stdin) or from the draft.
A short link is used when the short link service is reachable, the long
self-contained link otherwise.

Example:
  madlib share --mode story --file zoo.json --answer word01=llama`,
	RunE: runShare,
}

func init() {
	shareCmd.Flags().StringVarP(&shareMode, "mode", "m", string(models.ModePlay), "play, edit or story")
	shareCmd.Flags().StringVarP(&shareFile, "file", "f", "", `madlib JSON file, "-" for stdin`)
	shareCmd.Flags().StringArrayVarP(&shareAnswers, "answer", "a", nil, "story answer as id=word (repeatable)")
}

func runShare(cmd *cobra.Command, args []string) error {
	mode, err := models.ParseMode(shareMode)
	if err != nil {
		return err
	}
	answers, err := parseAnswers(shareAnswers)
	if err != nil {
		return err
	}

	session, err := newSession()
	if err != nil {
		return err
	}

	if shareFile != "" {
		rec, err := readRecord(cmd.InOrStdin(), shareFile)
		if err != nil {
			return err
		}
		if err := loader.Apply(session.Workspace(), rec); err != nil {
			return err
		}
		if answers == nil {
			answers = rec.Answers
		}
	} else if out := session.Open(cmd.Context(), ""); !out.DraftRestored {
		return fmt.Errorf("no madlib to share: pass --file or create a draft first")
	}

	warnUnusedPlaceholders(session.Workspace().Snapshot())

	link, err := session.ShareLink(cmd.Context(), mode, answers)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func parseAnswers(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	answers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		id, word, ok := strings.Cut(pair, "=")
		if !ok || !models.ValidPlaceholderID(id) {
			return nil, fmt.Errorf("invalid answer %q, expected wordNN=word", pair)
		}
		answers[id] = word
	}
	return answers, nil
}

// readRecord reads a StateRecord from path, or from stdin for "-".
// Files ending in .yaml or .yml are YAML, everything else JSON.
func readRecord(stdin io.Reader, path string) (models.StateRecord, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return models.StateRecord{}, fmt.Errorf("read madlib: %w", err)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		if raw, err = yamlToJSON(raw); err != nil {
			return models.StateRecord{}, fmt.Errorf("parse madlib %s: %w", path, err)
		}
	}
	var rec models.StateRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.StateRecord{}, fmt.Errorf("parse madlib %s: %w", path, err)
	}
	return rec, nil
}

// yamlToJSON re-encodes a YAML document as JSON so the JSON field rules of
// StateRecord (absent vs empty, theme aliases) apply to both formats.
func yamlToJSON(raw []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func warnUnusedPlaceholders(rec models.StateRecord) {
	for _, p := range rec.Placeholders.Value {
		if rec.PlaceholderUsage(p.ID) == 0 {
			logger.Sugar().Warnf("placeholder {%s} (%s) is not used in the story", p.ID, p.Label)
		}
	}
}
