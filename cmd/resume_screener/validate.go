package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/artifacts"
	"github.com/jonathan/resume-screener/internal/catalog"
	"github.com/jonathan/resume-screener/internal/observability"
	"github.com/jonathan/resume-screener/internal/schemas"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the model artifacts and catalog before deploying",
		Long: `Validate each artifact file against its JSON schema, load them together to check
that their shapes agree, load the catalog, and report categories the model can
predict that have no tailored suggestion. Nothing is downloaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, a)
		},
	}
}

func runValidate(cmd *cobra.Command, a *app) error {
	cfg, err := a.loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, "stderr")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	out := cmd.OutOrStdout()
	ok, failed := color.GreenString("ok"), color.RedString("FAIL")
	failures := 0

	paths := storePaths(cfg)
	for _, check := range []struct{ schema, path string }{
		{schemas.Vectorizer, paths.Vectorizer},
		{schemas.Classifier, paths.Classifier},
		{schemas.Encoder, paths.Encoder},
	} {
		if err := schemas.ValidateFile(check.schema, check.path); err != nil {
			failures++
			fmt.Fprintf(out, "  %-4s %-10s %s\n%v\n", failed, check.schema, check.path, err)
			continue
		}
		fmt.Fprintf(out, "  %-4s %-10s %s\n", ok, check.schema, check.path)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		failures++
		fmt.Fprintf(out, "  %-4s %-10s %v\n", failed, schemas.Catalog, err)
	} else {
		fmt.Fprintf(out, "  %-4s %-10s %s (%d categories)\n", ok, schemas.Catalog, cat.Source(), cat.Len())
	}

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}

	store := artifacts.NewStore(paths, log)
	if store.Load(cmd.Context()) != artifacts.Loaded {
		fmt.Fprintf(out, "  %-4s %-10s %v\n", failed, "model", store.Err())
		return unavailableError(store)
	}
	fmt.Fprintf(out, "  %-4s %-10s %d labels\n", ok, "model", len(store.Labels()))

	observability.NewPrinter(out).PrintCoverage(cat.Missing(store.ReachableLabels()))
	return nil
}
