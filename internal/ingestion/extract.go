package ingestion

import (
	"bytes"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/jonathan/resume-screener/internal/fetch"
)

// Format is a supported resume document type.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// UnsupportedFormatError is returned for documents that cannot be turned into text.
type UnsupportedFormatError struct {
	Name        string
	ContentType string
}

func (e *UnsupportedFormatError) Error() string {
	if e.ContentType != "" {
		return fmt.Sprintf("unsupported document format: %s (%s)", e.Name, e.ContentType)
	}
	return fmt.Sprintf("unsupported document format: %s", e.Name)
}

// ExtractionError wraps a parser failure for a supported format.
type ExtractionError struct {
	Format Format
	Cause  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s text: %v", e.Format, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// DetectFormat picks a format from the file extension, then the content type.
func DetectFormat(name, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "text/plain":
		return FormatText, nil
	case "text/markdown":
		return FormatMarkdown, nil
	case "text/html", "application/xhtml+xml":
		return FormatHTML, nil
	case "application/pdf":
		return FormatPDF, nil
	case docxMIME:
		return FormatDOCX, nil
	}

	return "", &UnsupportedFormatError{Name: name, ContentType: contentType}
}

// Extract returns the plain text of a document.
func Extract(data []byte, format Format) (string, error) {
	switch format {
	case FormatText, FormatMarkdown:
		if !utf8.Valid(data) {
			return "", &ExtractionError{Format: format, Cause: fmt.Errorf("not valid UTF-8")}
		}
		return string(data), nil
	case FormatHTML:
		text, err := fetch.ExtractMainText(string(data), fetch.DefaultTextSelectors())
		if err != nil {
			return "", &ExtractionError{Format: format, Cause: err}
		}
		return text, nil
	case FormatPDF:
		return extractPDF(data)
	case FormatDOCX:
		return extractDOCX(data)
	default:
		return "", &UnsupportedFormatError{Name: string(format)}
	}
}

func extractPDF(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{Format: FormatPDF, Cause: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: FormatPDF, Cause: err}
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Format: FormatPDF, Cause: fmt.Errorf("page %d: %w", i, err)}
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Cause: err}
	}
	defer func() { _ = doc.Close() }()

	return docxText(doc.Editable().GetContent())
}

// docxText strips WordprocessingML markup, keeping one line per paragraph.
func docxText(xml string) (string, error) {
	xml = strings.ReplaceAll(xml, "</w:p>", "</w:p>\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", " ")
	xml = strings.ReplaceAll(xml, "<w:br/>", "\n")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(xml))
	if err != nil {
		return "", &ExtractionError{Format: FormatDOCX, Cause: err}
	}
	return doc.Text(), nil
}
