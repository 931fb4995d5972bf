package artifacts

import (
	"encoding/json"
	"fmt"
)

// FormatLabelEncoder identifies the label decoder artifact format.
const FormatLabelEncoder = "label-encoder/v1"

// LabelEncoder maps category indices back to their labels.
type LabelEncoder struct {
	classes []string
}

// ParseLabelEncoder decodes a label-encoder/v1 document.
func ParseLabelEncoder(data []byte) (*LabelEncoder, error) {
	var doc struct {
		Format  string   `json:"format"`
		Classes []string `json:"classes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse encoder JSON: %w", err)
	}
	if doc.Format != FormatLabelEncoder {
		return nil, fmt.Errorf("unsupported encoder format %q", doc.Format)
	}

	seen := make(map[string]bool, len(doc.Classes))
	for _, c := range doc.Classes {
		if c == "" {
			return nil, fmt.Errorf("encoder contains an empty label")
		}
		if seen[c] {
			return nil, fmt.Errorf("encoder contains duplicate label %q", c)
		}
		seen[c] = true
	}

	return &LabelEncoder{classes: doc.Classes}, nil
}

// Len is the number of known labels.
func (e *LabelEncoder) Len() int {
	return len(e.classes)
}

// Decode returns the label at idx.
func (e *LabelEncoder) Decode(idx int) (string, error) {
	if idx < 0 || idx >= len(e.classes) {
		return "", &InvalidIndexError{Index: idx, Size: len(e.classes)}
	}
	return e.classes[idx], nil
}

// Labels returns the index→label table.
func (e *LabelEncoder) Labels() []string {
	return append([]string(nil), e.classes...)
}
