package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/observability"
)

type predictFlags struct {
	input   inputFlags
	jsonOut bool
	verbose bool
}

// predictOutput is the --json shape, matching the HTTP response body.
type predictOutput struct {
	Category   string `json:"category"`
	Suggestion string `json:"suggestion"`
	Error      string `json:"error,omitempty"`
}

func newPredictCmd(a *app) *cobra.Command {
	f := &predictFlags{}
	cmd := &cobra.Command{
		Use:   "predict [resume text | -]",
		Short: "Classify a resume and print a tailored suggestion",
		Long: `Classify a resume given as arguments, on stdin ("-"), as a file or at a URL.
Exits non-zero when the model cannot be loaded.`,
		Example: `  resume_screener predict "Experienced Java developer with Spring Boot"
  resume_screener predict --file resume.pdf --verbose
  cat resume.txt | resume_screener predict -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, a, f, args)
		},
	}
	f.input.register(cmd)
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Show the document, cleaned text and prediction details")
	return cmd
}

func runPredict(cmd *cobra.Command, a *app, f *predictFlags, args []string) error {
	cfg, err := a.loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, "stderr")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	doc, err := f.input.read(cmd.Context(), cmd, args, log)
	if err != nil {
		return err
	}

	engine, store, err := newEngine(cfg, log)
	if err != nil {
		return err
	}

	pred, err := engine.Predict(cmd.Context(), doc.Text)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case f.jsonOut:
		result := predictOutput{Category: pred.Category, Suggestion: pred.Suggestion}
		if !pred.Available {
			result.Error = pred.Category
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	case f.verbose:
		printer := observability.NewPrinter(out)
		printer.PrintDocument(doc.Metadata)
		printer.PrintCleanedText(pred.Cleaned)
		printer.PrintPrediction(pred)
	default:
		label := color.New(color.FgCyan, color.Bold)
		if !pred.Available {
			label = color.New(color.FgRed, color.Bold)
		}
		_, _ = label.Fprintf(out, "Category:   %s\n", pred.Category)
		_, _ = fmt.Fprintf(out, "Suggestion: %s\n", pred.Suggestion)
	}

	if !pred.Available {
		return unavailableError(store)
	}
	return nil
}
