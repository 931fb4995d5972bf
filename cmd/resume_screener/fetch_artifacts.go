package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-screener/internal/artifacts"
)

type fetchFlags struct {
	force bool
}

func newFetchArtifactsCmd(a *app) *cobra.Command {
	f := &fetchFlags{}
	cmd := &cobra.Command{
		Use:   "fetch-artifacts",
		Short: "Download the model artifacts from their configured sources",
		Long: `Download the vectorizer, classifier and encoder from artifacts.*_url
(http(s):// or s3://bucket/key) into artifacts.dir. Existing files are kept
unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetchArtifacts(cmd, a, f)
		},
	}
	cmd.Flags().BoolVar(&f.force, "force", false, "Overwrite artifacts that already exist")
	return cmd
}

func runFetchArtifacts(cmd *cobra.Command, a *app, f *fetchFlags) error {
	cfg, err := a.loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg, "stderr")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sources := cfg.Artifacts.Sources()
	if len(sources) == 0 {
		return fmt.Errorf("no artifact sources configured; set artifacts.vectorizer_url, artifacts.classifier_url and artifacts.encoder_url")
	}

	paths := storePaths(cfg)
	dests := map[string]string{
		artifacts.VectorizerArtifact: paths.Vectorizer,
		artifacts.ClassifierArtifact: paths.Classifier,
		artifacts.EncoderArtifact:    paths.Encoder,
	}
	names := make([]string, 0, len(dests))
	for name := range dests {
		names = append(names, name)
	}
	sort.Strings(names)

	bootstrapper := newBootstrapper(cfg, log)
	status := make([]string, len(names))

	g, ctx := errgroup.WithContext(cmd.Context())
	for i, name := range names {
		dest := dests[name]
		if !f.force {
			if _, err := os.Stat(dest); err == nil {
				status[i] = color.YellowString("exists")
				continue
			}
		}
		if sources[name] == "" {
			status[i] = color.RedString("no source")
			continue
		}
		g.Go(func() error {
			if err := bootstrapper.Fetch(ctx, name, dest); err != nil {
				status[i] = color.RedString("failed")
				return fmt.Errorf("%s: %w", name, err)
			}
			status[i] = color.GreenString("downloaded")
			return nil
		})
	}
	err = g.Wait()

	out := cmd.OutOrStdout()
	for i, name := range names {
		fmt.Fprintf(out, "  %-10s %-12s %s\n", name, status[i], dests[name])
	}
	return err
}
