// Package main provides the resume_screener command: the prediction service and its offline tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "resume_screener",
		Short:         "Resume category classifier",
		Long:          "Resume Screener classifies resume text into a job category with a trained TF-IDF model and returns a tailored improvement suggestion, over HTTP or from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	a.registerFlags(rootCmd)

	rootCmd.AddCommand(
		newServeCmd(a),
		newPredictCmd(a),
		newCleanCmd(a),
		newCategoriesCmd(a),
		newFetchArtifactsCmd(a),
		newValidateCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
