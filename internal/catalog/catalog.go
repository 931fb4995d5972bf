// Package catalog maps predicted job categories to tailored resume suggestions.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/jonathan/resume-screener/internal/schemas"
)

// FallbackSuggestion is returned for any category without a catalog entry.
const FallbackSuggestion = "No specific suggestions available. Focus on quantifying achievements and listing key skills clearly."

//go:embed resume_categories.json
var defaultCatalog []byte

// Entry is one persisted catalog record.
type Entry struct {
	Name       string `json:"name"`
	Suggestion string `json:"suggestion"`
}

// Catalog is an immutable category → suggestion lookup table.
// It is safe for concurrent use once loaded.
type Catalog struct {
	source      string
	suggestions map[string]string
	names       []string
	skipped     []string
}

// Load reads a catalog file. An empty path selects the embedded default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LoadDefault()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{Source: path, Message: "catalog file not found", Cause: err}
		}
		return nil, &ConfigError{Source: path, Message: "failed to read catalog file", Cause: err}
	}

	return LoadBytes(path, data)
}

// LoadDefault returns the catalog compiled into the binary.
func LoadDefault() (*Catalog, error) {
	return LoadBytes("embedded:resume_categories.json", defaultCatalog)
}

// LoadBytes parses and validates catalog JSON. source only labels errors.
// Records with an empty suggestion are skipped and resolve to FallbackSuggestion.
// A repeated name keeps its first suggestion.
func LoadBytes(source string, data []byte) (*Catalog, error) {
	if err := schemas.Validate(schemas.Catalog, data); err != nil {
		return nil, &ConfigError{Source: source, Message: "catalog does not match schema", Cause: err}
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &ConfigError{Source: source, Message: "failed to parse catalog JSON", Cause: err}
	}

	c := &Catalog{
		source:      source,
		suggestions: make(map[string]string, len(entries)),
	}

	for _, e := range entries {
		if strings.TrimSpace(e.Suggestion) == "" {
			c.skipped = append(c.skipped, e.Name)
			continue
		}
		if _, exists := c.suggestions[e.Name]; exists {
			continue
		}
		c.suggestions[e.Name] = e.Suggestion
		c.names = append(c.names, e.Name)
	}

	sort.Strings(c.names)
	return c, nil
}

// Lookup returns the suggestion for label, or FallbackSuggestion when there is none.
func (c *Catalog) Lookup(label string) string {
	if c == nil {
		return FallbackSuggestion
	}
	if s, ok := c.suggestions[label]; ok {
		return s
	}
	return FallbackSuggestion
}

// Has reports whether label has its own suggestion.
func (c *Catalog) Has(label string) bool {
	if c == nil {
		return false
	}
	_, ok := c.suggestions[label]
	return ok
}

// Names returns the catalog's category names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

// Len is the number of categories with a suggestion.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.suggestions)
}

// Skipped lists records that were dropped for having no suggestion.
func (c *Catalog) Skipped() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.skipped...)
}

// Source describes where the catalog was loaded from.
func (c *Catalog) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// Missing returns the labels that have no catalog entry, preserving input order.
func (c *Catalog) Missing(labels []string) []string {
	var missing []string
	for _, l := range labels {
		if !c.Has(l) {
			missing = append(missing, l)
		}
	}
	return missing
}
