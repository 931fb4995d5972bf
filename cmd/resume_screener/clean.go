package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/cleaning"
	"github.com/jonathan/resume-screener/internal/ingestion"
)

type cleanFlags struct {
	input  inputFlags
	outDir string
	name   string
}

func newCleanCmd(a *app) *cobra.Command {
	f := &cleanFlags{}
	cmd := &cobra.Command{
		Use:   "clean [resume text | -]",
		Short: "Print the normalized text the classifier sees",
		Long: `Extract and normalize a resume exactly as prediction does, and print the result.
With --out, also write the extracted document (<name>.cleaned.txt) and its
metadata (<name>.meta.json) to a directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, a, f, args)
		},
	}
	f.input.register(cmd)
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "", "Directory to write the extracted document and metadata to")
	cmd.Flags().StringVar(&f.name, "name", "resume", "Base name for files written with --out")
	return cmd
}

func runClean(cmd *cobra.Command, a *app, f *cleanFlags, args []string) error {
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

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), cleaning.Normalize(doc.Text)); err != nil {
		return err
	}

	if f.outDir == "" {
		return nil
	}
	if err := ingestion.WriteOutput(f.outDir, f.name, doc); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Cleaned text: %s/%s.cleaned.txt\n", f.outDir, f.name)
	fmt.Fprintf(cmd.ErrOrStderr(), "Metadata: %s/%s.meta.json\n", f.outDir, f.name)
	return nil
}
