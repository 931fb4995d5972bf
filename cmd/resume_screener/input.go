package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/ingestion"
)

// inputFlags selects where a command reads the resume from.
type inputFlags struct {
	file    string
	url     string
	timeout time.Duration
	browser bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Resume file (.txt, .md, .html, .pdf, .docx)")
	cmd.Flags().StringVarP(&f.url, "url", "u", "", "URL of a resume page or document")
	cmd.Flags().DurationVar(&f.timeout, "timeout", fetch.DefaultTimeout, "Timeout for --url downloads")
	cmd.Flags().BoolVar(&f.browser, "browser", false, "Render --url pages in headless Chrome when the fetched HTML has too little text")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
}

// read returns the resume from --file, --url, positional text or stdin ("-").
func (f *inputFlags) read(ctx context.Context, cmd *cobra.Command, args []string, log *zap.Logger) (*ingestion.Document, error) {
	if f.browser && f.url == "" {
		return nil, fmt.Errorf("--browser only applies to --url")
	}

	switch {
	case f.file != "":
		if len(args) > 0 {
			return nil, fmt.Errorf("--file cannot be combined with resume text")
		}
		doc, err := ingestion.IngestFromFile(f.file)
		if err != nil {
			return nil, fmt.Errorf("failed to ingest from file: %w", err)
		}
		return doc, nil

	case f.url != "":
		if len(args) > 0 {
			return nil, fmt.Errorf("--url cannot be combined with resume text")
		}
		opts := fetch.DefaultOptions()
		opts.Timeout = f.timeout
		if f.browser {
			opts.Renderer = fetch.NewBrowser(f.timeout, log)
		}
		doc, err := ingestion.IngestFromURL(ctx, f.url, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to ingest from URL: %w", err)
		}
		if doc.Metadata.Rendered {
			log.Info("resume page rendered in headless browser", zap.String("url", f.url))
		}
		return doc, nil

	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return ingestText(data, "stdin")

	case len(args) > 0:
		return ingestText([]byte(joinArgs(args)), "argument")

	default:
		return nil, fmt.Errorf("provide resume text, \"-\" for stdin, --file or --url")
	}
}

// ingestText treats data as plain text and labels its source.
func ingestText(data []byte, source string) (*ingestion.Document, error) {
	doc, err := ingestion.IngestBytes(data, source+".txt", "")
	if err != nil {
		return nil, err
	}
	doc.Metadata.Source = source
	return doc, nil
}
