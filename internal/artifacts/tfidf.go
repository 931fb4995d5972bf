package artifacts

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// FormatTFIDF identifies the TF-IDF vectorizer artifact format.
const FormatTFIDF = "tfidf/v1"

// tokenPattern matches words of two or more characters, the default token
// pattern the vectorizer was fitted with.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

type tfidfDocument struct {
	Format      string         `json:"format"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Lowercase   *bool          `json:"lowercase"`
	NgramRange  []int          `json:"ngram_range"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
	StopWords   []string       `json:"stop_words"`
}

// TFIDF maps cleaned text onto a fixed vocabulary weighted by inverse document frequency.
// It holds no mutable state and is safe for concurrent use.
type TFIDF struct {
	vocabulary  map[string]int
	idf         []float64
	lowercase   bool
	minN, maxN  int
	sublinearTF bool
	norm        string
	stopWords   map[string]struct{}
}

// ParseTFIDF decodes and checks a tfidf/v1 document.
func ParseTFIDF(data []byte) (*TFIDF, error) {
	var doc tfidfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse vectorizer JSON: %w", err)
	}
	if doc.Format != FormatTFIDF {
		return nil, fmt.Errorf("unsupported vectorizer format %q", doc.Format)
	}

	v := &TFIDF{
		vocabulary:  doc.Vocabulary,
		idf:         doc.IDF,
		lowercase:   true,
		minN:        1,
		maxN:        1,
		sublinearTF: doc.SublinearTF,
		norm:        doc.Norm,
	}
	if doc.Lowercase != nil {
		v.lowercase = *doc.Lowercase
	}
	if v.norm == "" {
		v.norm = "l2"
	}
	if len(doc.NgramRange) == 2 {
		v.minN, v.maxN = doc.NgramRange[0], doc.NgramRange[1]
	}
	if v.minN < 1 || v.minN > v.maxN {
		return nil, fmt.Errorf("invalid ngram_range [%d, %d]", v.minN, v.maxN)
	}

	seen := make(map[int]string, len(doc.Vocabulary))
	for term, idx := range doc.Vocabulary {
		if idx < 0 || idx >= len(doc.IDF) {
			return nil, fmt.Errorf("vocabulary term %q has index %d outside idf length %d", term, idx, len(doc.IDF))
		}
		if other, dup := seen[idx]; dup {
			return nil, fmt.Errorf("vocabulary terms %q and %q share index %d", other, term, idx)
		}
		seen[idx] = term
	}

	if len(doc.StopWords) > 0 {
		v.stopWords = make(map[string]struct{}, len(doc.StopWords))
		for _, w := range doc.StopWords {
			v.stopWords[w] = struct{}{}
		}
	}

	return v, nil
}

// Dimension is the fixed length of every vector this vectorizer produces.
func (v *TFIDF) Dimension() int {
	return len(v.idf)
}

// VocabularySize is the number of known terms.
func (v *TFIDF) VocabularySize() int {
	return len(v.vocabulary)
}

// Transform vectorizes text. Terms outside the vocabulary contribute nothing,
// so empty or fully unknown text yields a vector with no active features.
func (v *TFIDF) Transform(text string) FeatureVector {
	if v.lowercase {
		text = strings.ToLower(text)
	}

	tokens := tokenPattern.FindAllString(text, -1)
	if v.stopWords != nil {
		kept := tokens[:0]
		for _, tok := range tokens {
			if _, stop := v.stopWords[tok]; !stop {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}

	counts := make(map[int]float64)
	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			term := tokens[i]
			if n > 1 {
				term = strings.Join(tokens[i:i+n], " ")
			}
			if idx, ok := v.vocabulary[term]; ok {
				counts[idx]++
			}
		}
	}

	vec := FeatureVector{
		Dim:     len(v.idf),
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	for _, idx := range vec.Indices {
		tf := counts[idx]
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		vec.Values = append(vec.Values, tf*v.idf[idx])
	}

	normalize(vec.Values, v.norm)
	return vec
}

func normalize(values []float64, norm string) {
	var total float64
	switch norm {
	case "l2":
		for _, x := range values {
			total += x * x
		}
		total = math.Sqrt(total)
	case "l1":
		for _, x := range values {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
