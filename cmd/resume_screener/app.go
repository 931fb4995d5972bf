package main

import (
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/artifacts"
	"github.com/jonathan/resume-screener/internal/catalog"
	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/inference"
	"github.com/jonathan/resume-screener/internal/logger"
)

// app holds the global flags shared by every command.
type app struct {
	configPath string
}

// globalFlagKeys maps persistent flags onto config keys.
var globalFlagKeys = map[string]string{
	"debug":     "log.debug",
	"json-logs": "log.json",
	"model-dir": "artifacts.dir",
	"catalog":   "catalog.path",
}

func (a *app) registerFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to a YAML/JSON config file (default ./"+config.DefaultFile+" if present)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.Bool("json-logs", false, "Write logs as JSON")
	pf.String("model-dir", "", "Directory holding the model artifacts")
	pf.String("catalog", "", "Path to a suggestion catalog JSON file (default: built-in)")
}

// loadConfig reads file, environment and defaults, then lets flags the user set win.
// extra maps command-specific flags onto config keys.
func (a *app) loadConfig(cmd *cobra.Command, extra map[string]string) (*config.Config, error) {
	v := config.New()

	bindings := maps.Clone(globalFlagKeys)
	maps.Copy(bindings, extra)
	for flag, key := range bindings {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}

	return config.LoadWith(v, a.configPath)
}

// newLogger builds the command logger. One-shot commands log to stderr so stdout
// carries only their result.
func newLogger(cfg *config.Config, output string) (*zap.Logger, error) {
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug, output)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// storePaths returns the configured artifact locations.
func storePaths(cfg *config.Config) artifacts.Paths {
	vectorizer, classifier, encoder := cfg.Artifacts.Paths()
	return artifacts.Paths{Vectorizer: vectorizer, Classifier: classifier, Encoder: encoder}
}

// newBootstrapper builds the downloader for the configured artifact sources.
func newBootstrapper(cfg *config.Config, log *zap.Logger) *fetch.Bootstrapper {
	opts := fetch.DefaultOptions()
	if cfg.Artifacts.DownloadTimeout > 0 {
		opts.Timeout = cfg.Artifacts.DownloadTimeout
	}
	s3cfg := fetch.S3Config{
		Region:          cfg.Artifacts.S3.Region,
		Endpoint:        cfg.Artifacts.S3.Endpoint,
		AccessKeyID:     cfg.Artifacts.S3.AccessKeyID,
		SecretAccessKey: cfg.Artifacts.S3.SecretAccessKey,
		UsePathStyle:    cfg.Artifacts.S3.UsePathStyle,
	}
	return fetch.NewBootstrapper(cfg.Artifacts.Sources(), s3cfg, opts, log)
}

// newStore builds the artifact store, downloading missing files when sources are configured.
func newStore(cfg *config.Config, log *zap.Logger) *artifacts.Store {
	var opts []artifacts.Option
	if cfg.Artifacts.Download && len(cfg.Artifacts.Sources()) > 0 {
		opts = append(opts, artifacts.WithFetcher(newBootstrapper(cfg, log)))
	}
	return artifacts.NewStore(storePaths(cfg), log, opts...)
}

// loadCatalog loads the configured catalog and reports entries it had to skip.
func loadCatalog(cfg *config.Config, log *zap.Logger) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	if skipped := cat.Skipped(); len(skipped) > 0 {
		log.Warn("catalog entries skipped", zap.String("source", cat.Source()), zap.Strings("entries", skipped))
	}
	return cat, nil
}

// newEngine wires catalog, store and engine from configuration.
func newEngine(cfg *config.Config, log *zap.Logger) (*inference.Engine, *artifacts.Store, error) {
	cat, err := loadCatalog(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	store := newStore(cfg, log)
	engine := inference.New(store, cat, log, inference.WithRetryCooldown(cfg.Inference.RetryCooldown))
	return engine, store, nil
}

// unavailableError explains why the model could not be loaded.
func unavailableError(store *artifacts.Store) error {
	if err := store.Err(); err != nil {
		return fmt.Errorf("model unavailable: %w", err)
	}
	return fmt.Errorf("model unavailable")
}

// joinArgs turns positional arguments into resume text.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
