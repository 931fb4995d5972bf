// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-screener/internal/inference"
	"github.com/jonathan/resume-screener/internal/ingestion"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxExcerptLines caps how much of a resume is echoed back
	maxExcerptLines = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4)))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDocument outputs where an ingested resume came from and its size.
func (p *Printer) PrintDocument(meta *ingestion.Metadata) {
	if meta == nil {
		return
	}

	var sb strings.Builder
	if meta.Source != "" {
		sb.WriteString(fmt.Sprintf("Source:     %s\n", meta.Source))
	}
	if meta.Rendered {
		sb.WriteString(fmt.Sprintf("Format:     %s (rendered in browser)\n", meta.Format))
	} else {
		sb.WriteString(fmt.Sprintf("Format:     %s\n", meta.Format))
	}
	sb.WriteString(fmt.Sprintf("Size:       %d bytes\n", meta.Bytes))
	sb.WriteString(fmt.Sprintf("Characters: %d\n", meta.Characters))
	sb.WriteString(fmt.Sprintf("SHA-256:    %s", truncate(meta.Hash, 16)))

	p.printBox("DOCUMENT", sb.String())
}

// PrintCleanedText outputs the first lines of the text the classifier actually sees.
func (p *Printer) PrintCleanedText(cleaned string) {
	if cleaned == "" {
		p.printBox("CLEANED TEXT", "(empty after cleaning)")
		return
	}

	lines := wrap(cleaned, boxWidth-4)
	shown := min(len(lines), maxExcerptLines)
	content := strings.Join(lines[:shown], "\n")
	if len(lines) > shown {
		content += fmt.Sprintf("\n... and %d more lines", len(lines)-shown)
	}

	p.printBox(fmt.Sprintf("CLEANED TEXT (%d words)", len(strings.Fields(cleaned))), content)
}

// PrintPrediction outputs the predicted category and the full suggestion.
func (p *Printer) PrintPrediction(pred inference.Prediction) {
	var sb strings.Builder
	if !pred.Available {
		sb.WriteString("⚠ Model unavailable\n\n")
	}
	sb.WriteString(fmt.Sprintf("Category: %s\n", pred.Category))
	if pred.Available {
		sb.WriteString(fmt.Sprintf("Features: %d active\n", pred.ActiveFeatures))
	}
	sb.WriteString("\nSuggestion:\n")
	for _, line := range wrap(pred.Suggestion, boxWidth-6) {
		sb.WriteString("  " + line + "\n")
	}

	p.printBox("PREDICTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCoverage outputs predictable categories that fall back to the generic suggestion.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCoverage(missing []string) {
	if len(missing) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("✅ EVERY CATEGORY HAS A SUGGESTION"))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d categories use the generic fallback:\n\n", len(missing)))

	count := min(len(missing), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", missing[i]))
	}
	if len(missing) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(missing)-maxItemsToShow))
	}

	p.printBox("CATALOG COVERAGE", strings.TrimSuffix(sb.String(), "\n"))
}

// pad right-pads s with spaces to the inner box width, counting runes.
func pad(s string) string {
	n := len([]rune(s))
	if n >= boxWidth-4 {
		return s
	}
	return s + strings.Repeat(" ", boxWidth-4-n)
}

// truncate shortens s to limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// wrap breaks text into lines of at most width runes on word boundaries.
// Words longer than width are truncated.
func wrap(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}
		line := ""
		for _, word := range words {
			word = truncate(word, width)
			switch {
			case line == "":
				line = word
			case len([]rune(line))+1+len([]rune(word)) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		lines = append(lines, line)
	}
	return lines
}
