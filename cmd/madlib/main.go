package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"madlib-maker/internal/app"
	"madlib-maker/internal/client"
	"madlib-maker/internal/config"
	"madlib-maker/internal/loader"
	"madlib-maker/internal/resolver"
	sharedLogger "madlib-maker/shared/logger"
)

var (
	// Global flags
	verbose      bool
	baseURLFlag  string
	shortenerURL string
	noShorten    bool
	draftPath    string
	envFile      string

	cfg    *config.ClientConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "madlib",
	Short: "Share and open madlib links",
	Long: `madlib builds share links for madlibs and opens them again.

A link points at the madlib page and carries the madlib either as a short
code (#s=<code>, needs the short link service) or as a self-contained token
(#play=, #edit=, #story=).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadClientConfig(envFile)
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = sharedLogger.New(sharedLogger.Config{
			Level:      level,
			Encoding:   "console",
			OutputPath: "stderr",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "madlib page links point at (default APP_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&shortenerURL, "shortener", "", "short link service url (default SHORTENER_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&noShorten, "no-shorten", false, "never use the short link service")
	rootCmd.PersistentFlags().StringVar(&draftPath, "draft", "", "draft file (default DRAFT_PATH or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file")

	rootCmd.AddCommand(shareCmd, openCmd, encodeCmd, decodeCmd, newCmd)
}

// newResolver builds the resolver from flags and config. The short link
// client is only created when a service url is configured.
func newResolver() (*resolver.Resolver, error) {
	base := cfg.AppBaseURL
	if baseURLFlag != "" {
		base = baseURLFlag
	}
	apiURL := cfg.ShortenerAPIURL
	if shortenerURL != "" {
		apiURL = shortenerURL
	}

	var shortener resolver.Shortener
	if apiURL != "" && !noShorten {
		c, err := client.NewClient(apiURL, cfg.ShortenerTimeout, logger)
		if err != nil {
			return nil, err
		}
		shortener = c
	}
	return resolver.New(base, shortener, logger)
}

func newDraftStore() (*app.FileDraftStore, error) {
	path := draftPath
	if path == "" {
		path = cfg.DraftPath
	}
	if path == "" {
		var err error
		if path, err = app.DefaultDraftPath(); err != nil {
			return nil, err
		}
	}
	return app.NewFileDraftStore(path), nil
}

func newSession() (*app.Session, error) {
	r, err := newResolver()
	if err != nil {
		return nil, err
	}
	drafts, err := newDraftStore()
	if err != nil {
		return nil, err
	}
	return app.NewSession(r, loader.NewWorkspace(), drafts, logger), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
