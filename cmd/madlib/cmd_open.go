package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"madlib-maker/internal/app"
	"madlib-maker/shared/models"
)

var openRender bool

var openCmd = &cobra.Command{
	Use:   "open [url]",
	Short: "Open a madlib link",
	Long: `Resolves a madlib link and prints the result as JSON.

Edit links replace the draft. Without a usable link the draft is shown.
With --render a story link prints the filled in story instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().BoolVar(&openRender, "render", false, "print the story with answers filled in")
}

type openOutput struct {
	Mode          models.Mode        `json:"mode"`
	Loaded        bool               `json:"loaded"`
	Error         string             `json:"error,omitempty"`
	Short         bool               `json:"short,omitempty"`
	DraftRestored bool               `json:"draftRestored,omitempty"`
	Data          models.StateRecord `json:"data"`
}

func runOpen(cmd *cobra.Command, args []string) error {
	session, err := newSession()
	if err != nil {
		return err
	}

	rawURL := ""
	if len(args) == 1 {
		rawURL = args[0]
	}
	out := session.Open(cmd.Context(), rawURL)

	if openRender {
		return renderStory(cmd, session, out)
	}

	result := openOutput{
		Mode:          out.Mode,
		Loaded:        out.Loaded,
		Short:         out.Short,
		DraftRestored: out.DraftRestored,
		Data:          session.Workspace().Snapshot(),
	}
	result.Data.Answers = out.Data.Answers
	if out.Error {
		result.Error = "Could not load madlib from URL"
		if out.Cause != nil {
			result.Error += ": " + out.Cause.Error()
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func renderStory(cmd *cobra.Command, session *app.Session, out app.Outcome) error {
	if out.Error {
		return fmt.Errorf("could not load madlib from URL: %w", out.Cause)
	}
	rec := session.Workspace().Snapshot()
	fmt.Fprintln(cmd.OutOrStdout(), session.Workspace().DisplayTitle())
	if sub := rec.Subtitle.Value; sub != "" {
		fmt.Fprintln(cmd.OutOrStdout(), sub)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), rec.Render(out.Data.Answers))
	for _, ref := range rec.OrphanedReferences() {
		logger.Sugar().Warnf("story references unknown placeholder {%s}", ref)
	}
	return nil
}
