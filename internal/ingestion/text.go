// Package ingestion turns resume documents (plain text, Markdown, HTML, PDF, DOCX)
// into display-ready text with metadata.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jonathan/resume-screener/internal/fetch"
)

var (
	innerSpacePattern = regexp.MustCompile(`\s+`)
	blankRunPattern   = regexp.MustCompile(`\n\n\n+`)
)

// Document is an ingested resume.
type Document struct {
	Text     string
	Metadata *Metadata
}

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// 1. Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	// 2. Clean each line
	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	// 3. Join, cap blank runs, trim
	result := strings.Join(cleanedLines, "\n")
	result = blankRunPattern.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")

	if strings.TrimSpace(line) == "" {
		return ""
	}

	// Markdown headings lose their indentation
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	if isBulletLine(line) {
		indent := len(line) - len(trimmed)
		if indent > 0 {
			return strings.Repeat(" ", indent) + trimmed
		}
		return trimmed
	}

	// Collapse inner whitespace, keep leading indentation
	leadingSpace := len(line) - len(trimmed)
	content := innerSpacePattern.ReplaceAllString(strings.TrimSpace(line), " ")
	if leadingSpace > 0 {
		return strings.Repeat(" ", leadingSpace) + content
	}
	return content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

// IngestBytes extracts and cleans a document already held in memory.
func IngestBytes(data []byte, name, contentType string) (*Document, error) {
	format, err := DetectFormat(name, contentType)
	if err != nil {
		return nil, err
	}

	raw, err := Extract(data, format)
	if err != nil {
		return nil, err
	}

	text := CleanText(raw)
	return &Document{
		Text:     text,
		Metadata: NewMetadata(text, name, format, len(data)),
	}, nil
}

// IngestFromFile reads a resume file and returns its cleaned text with metadata
func IngestFromFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return IngestBytes(content, path, "")
}

// IngestFromURL downloads a resume (an HTML page or a linked document) and ingests it.
// With opts.Renderer set, an HTML page with too little static text is rendered first;
// a failed render keeps the fetched page.
func IngestFromURL(ctx context.Context, urlStr string, opts *fetch.Options) (*Document, error) {
	result, err := fetch.URL(ctx, urlStr, opts)
	if err != nil {
		return nil, err
	}

	name := urlPathName(urlStr)
	body, rendered := result.Body, false
	if opts != nil && opts.Renderer != nil {
		body, rendered = renderIfSparse(ctx, opts.Renderer, urlStr, name, result)
	}

	doc, err := IngestBytes(body, name, result.ContentType)
	if err != nil {
		return nil, err
	}
	doc.Metadata.Source = urlStr
	doc.Metadata.Rendered = rendered
	return doc, nil
}

// renderIfSparse swaps an HTML page whose main text is below fetch.MinContentLength
// for its rendered DOM.
func renderIfSparse(ctx context.Context, r fetch.Renderer, urlStr, name string, result *fetch.Result) ([]byte, bool) {
	if format, err := DetectFormat(name, result.ContentType); err != nil || format != FormatHTML {
		return result.Body, false
	}

	text, err := fetch.ExtractMainText(string(result.Body), fetch.DefaultTextSelectors())
	if err == nil && !fetch.ShouldUseBrowser(text) {
		return result.Body, false
	}

	html, err := r.Render(ctx, urlStr)
	if err != nil {
		return result.Body, false
	}
	return []byte(html), true
}

// urlPathName keeps the last path segment so the extension can drive format detection.
func urlPathName(urlStr string) string {
	if i := strings.IndexAny(urlStr, "?#"); i >= 0 {
		urlStr = urlStr[:i]
	}
	base := filepath.Base(urlStr)
	if !strings.Contains(base, ".") || strings.Contains(base, ":") {
		return ""
	}
	return base
}

// WriteOutput writes the cleaned text and metadata next to each other in outDir
func WriteOutput(outDir, name string, doc *Document) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cleanedPath := filepath.Join(outDir, name+".cleaned.txt")
	if err := os.WriteFile(cleanedPath, []byte(doc.Text), 0644); err != nil {
		return fmt.Errorf("failed to write cleaned text file: %w", err)
	}

	metaPath := filepath.Join(outDir, name+".meta.json")
	metaJSON, err := doc.Metadata.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}
