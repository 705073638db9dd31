package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/config"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/manifest"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/operation"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/status"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/template"
	"github.com/victorbutler/openaudible-audiobookshelf-watcher/pkg/watch"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	inputRoot  string
	outputRoot string
	pathTmpl   string
	watchMode  bool
	pollMode   bool
	debug      bool
)

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oaw",
		Short: "Mirror an OpenAudible library into an Audiobookshelf layout",
		Long: `oaw watches OpenAudible's books.json manifest and mirrors the
referenced audio files into a templated directory layout, copying only what
is missing or size-changed. It never deletes and never syncs back.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	addRootFlags(cmd)
	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (.yaml, .json or .hcl)")
	cmd.PersistentFlags().StringVarP(&inputRoot, "input", "i", "", "OpenAudible root containing books.json and books/")
	cmd.PersistentFlags().StringVarP(&outputRoot, "output", "o", "", "destination library root")
	cmd.PersistentFlags().StringVarP(&pathTmpl, "template", "t", "", "destination path template")
	cmd.PersistentFlags().BoolVarP(&watchMode, "watch", "w", false, "keep running and re-sync on manifest changes")
	cmd.PersistentFlags().BoolVar(&pollMode, "poll", false, "poll for manifest changes instead of using inotify events")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() zerolog.Logger {
	logLevel := zerolog.InfoLevel
	if debug {
		logLevel = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(logLevel).With().Timestamp().Logger()
}

// loadConfig resolves the effective configuration from file plus flag
// overrides.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if configFile != "" {
		loaded, err := config.Load(ctx, configFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if inputRoot != "" {
		cfg.InputRoot = inputRoot
	}
	if outputRoot != "" {
		cfg.OutputRoot = outputRoot
	}
	if pathTmpl != "" {
		cfg.Template = pathTmpl
	}
	if watchMode {
		cfg.Watch = true
	}
	if pollMode {
		cfg.Poll = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// warnUnknownPlaceholders flags template placeholders outside the recognized
// field set; they still resolve, to the literal "undefined" segment.
func warnUnknownPlaceholders(logger *zerolog.Logger, pathTemplate string) {
	known := make(map[string]struct{})
	for _, name := range manifest.FieldNames() {
		known[name] = struct{}{}
	}
	for _, ph := range template.Placeholders(pathTemplate) {
		if _, ok := known[ph]; !ok {
			logger.Warn().
				Str("placeholder", ph).
				Msg("template placeholder does not match any manifest field; it will resolve to \"undefined\"")
		}
	}
}

func run(ctx context.Context) error {
	logger := setupLogging()
	ctx = logger.WithContext(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	logger.Info().Str("config", cfg.String()).Msg("starting")

	warnUnknownPlaceholders(&logger, cfg.Template)

	userLogger := status.NewUserLogger(ctx)
	statusMgr := status.NewManager(&logger, status.NewDefaultFileFormatter())

	proc, err := operation.New(operation.Options{
		InputRoot:      cfg.InputRoot,
		OutputRoot:     cfg.OutputRoot,
		Template:       cfg.Template,
		IgnorePatterns: cfg.IgnorePatterns,
		Status:         statusMgr,
	})
	if err != nil {
		return errors.Errorf("creating processor: %w", err)
	}

	// Manifest absent at startup is fatal, before any watch mode starts.
	if _, err := os.Stat(proc.ManifestPath()); err != nil {
		return errors.Errorf("manifest not found at %s: %w", proc.ManifestPath(), err)
	}

	process := func(ctx context.Context) error {
		results, err := proc.Process(ctx)
		if err != nil {
			userLogger.LogRunError(err)
			return err
		}
		userLogger.LogRunComplete(results)
		return nil
	}

	if !cfg.Watch {
		return process(ctx)
	}

	loop, err := watch.New(watch.Options{
		Path:      proc.ManifestPath(),
		Debounce:  cfg.Debounce(),
		Poll:      cfg.Poll,
		Process:   process,
		OnTrigger: userLogger.LogWatchTriggered,
	})
	if err != nil {
		return errors.Errorf("creating watch loop: %w", err)
	}

	if err := loop.Run(ctx); err != nil {
		return errors.Errorf("running watch loop: %w", err)
	}
	userLogger.LogShutdown()
	return nil
}
