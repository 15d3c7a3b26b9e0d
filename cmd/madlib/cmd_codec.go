package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"madlib-maker/internal/codec"
	"madlib-maker/internal/resolver"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode a madlib JSON file into a link token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		rec, err := readRecord(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		token, err := codec.Encode(rec)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode <token|link>",
	Short: "Decode a link token into madlib JSON",
	Long: `Decodes a token, or the token of a #play=, #edit= or #story= link,
without contacting any service.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(args[0])
		if _, fragment, ok := strings.Cut(token, "#"); ok {
			f := resolver.ParseFragment(fragment)
			if f.Kind != resolver.FragmentToken {
				return fmt.Errorf("link does not carry a token")
			}
			token = f.Value
		}
		rec, err := codec.Decode(token)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Discard the draft and start a new madlib",
	RunE: func(cmd *cobra.Command, args []string) error {
		drafts, err := newDraftStore()
		if err != nil {
			return err
		}
		if err := drafts.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Started new madlib")
		return nil
	},
}
