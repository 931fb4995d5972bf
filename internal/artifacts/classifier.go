package artifacts

import (
	"encoding/json"
	"fmt"
	"math"
)

// Classifier artifact formats.
const (
	FormatLinear          = "linear/v1"
	FormatNearestCentroid = "nearest-centroid/v1"
)

// Classifier maps a feature vector to one category index.
// Implementations also satisfy SparseClassifier, DenseClassifier, or both.
type Classifier interface {
	// Dimension is the number of features the classifier was trained on.
	Dimension() int
	// Classes lists the category indices the classifier can return.
	Classes() []int
}

// SparseClassifier predicts directly from a sparse vector.
type SparseClassifier interface {
	Classifier
	PredictSparse(vec FeatureVector) int
}

// DenseClassifier needs the full feature array.
type DenseClassifier interface {
	Classifier
	PredictDense(features []float64) int
}

// ParseClassifier decodes a classifier artifact of any supported format.
func ParseClassifier(data []byte) (Classifier, error) {
	var header struct {
		Format string `json:"format"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to parse classifier JSON: %w", err)
	}

	switch header.Format {
	case FormatLinear:
		return parseLinear(data)
	case FormatNearestCentroid:
		return parseNearestCentroid(data)
	default:
		return nil, fmt.Errorf("unsupported classifier format %q", header.Format)
	}
}

// Linear is a one-vs-rest linear model: score = coef·x + intercept, highest score wins.
// A single coefficient row is the binary form, where a positive score selects the second class.
type Linear struct {
	coef      [][]float64
	intercept []float64
	classes   []int
}

func parseLinear(data []byte) (*Linear, error) {
	var doc struct {
		Coef      [][]float64 `json:"coef"`
		Intercept []float64   `json:"intercept"`
		Classes   []int       `json:"classes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse linear classifier: %w", err)
	}

	if err := checkClasses(doc.Classes); err != nil {
		return nil, err
	}
	if len(doc.Coef) == 0 {
		return nil, fmt.Errorf("linear classifier has no coefficients")
	}
	if len(doc.Intercept) != len(doc.Coef) {
		return nil, fmt.Errorf("linear classifier has %d coefficient rows but %d intercepts", len(doc.Coef), len(doc.Intercept))
	}

	rows := len(doc.Coef)
	switch {
	case rows == 1 && len(doc.Classes) != 2:
		return nil, fmt.Errorf("binary linear classifier needs 2 classes, got %d", len(doc.Classes))
	case rows > 1 && rows != len(doc.Classes):
		return nil, fmt.Errorf("linear classifier has %d coefficient rows for %d classes", rows, len(doc.Classes))
	}
	if err := checkRectangular("coefficient", doc.Coef); err != nil {
		return nil, err
	}

	return &Linear{coef: doc.Coef, intercept: doc.Intercept, classes: doc.Classes}, nil
}

func (m *Linear) Dimension() int { return len(m.coef[0]) }

func (m *Linear) Classes() []int { return append([]int(nil), m.classes...) }

func (m *Linear) PredictSparse(vec FeatureVector) int {
	if len(m.coef) == 1 {
		if m.score(0, vec) > 0 {
			return m.classes[1]
		}
		return m.classes[0]
	}

	best, bestScore := 0, math.Inf(-1)
	for r := range m.coef {
		if s := m.score(r, vec); s > bestScore {
			best, bestScore = r, s
		}
	}
	return m.classes[best]
}

func (m *Linear) score(row int, vec FeatureVector) float64 {
	s := m.intercept[row]
	w := m.coef[row]
	for i, idx := range vec.Indices {
		s += w[idx] * vec.Values[i]
	}
	return s
}

// NearestCentroid assigns the class whose centroid is closest in Euclidean distance.
type NearestCentroid struct {
	centroids [][]float64
	classes   []int
}

func parseNearestCentroid(data []byte) (*NearestCentroid, error) {
	var doc struct {
		Centroids [][]float64 `json:"centroids"`
		Classes   []int       `json:"classes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse nearest-centroid classifier: %w", err)
	}

	if err := checkClasses(doc.Classes); err != nil {
		return nil, err
	}
	if len(doc.Centroids) != len(doc.Classes) {
		return nil, fmt.Errorf("nearest-centroid classifier has %d centroids for %d classes", len(doc.Centroids), len(doc.Classes))
	}
	if err := checkRectangular("centroid", doc.Centroids); err != nil {
		return nil, err
	}

	return &NearestCentroid{centroids: doc.Centroids, classes: doc.Classes}, nil
}

func (m *NearestCentroid) Dimension() int { return len(m.centroids[0]) }

func (m *NearestCentroid) Classes() []int { return append([]int(nil), m.classes...) }

func (m *NearestCentroid) PredictDense(features []float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range m.centroids {
		var d float64
		for i, x := range centroid {
			diff := features[i] - x
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return m.classes[best]
}

func checkClasses(classes []int) error {
	if len(classes) < 2 {
		return fmt.Errorf("classifier needs at least 2 classes, got %d", len(classes))
	}
	seen := make(map[int]bool, len(classes))
	for _, c := range classes {
		if c < 0 {
			return fmt.Errorf("negative class index %d", c)
		}
		if seen[c] {
			return fmt.Errorf("duplicate class index %d", c)
		}
		seen[c] = true
	}
	return nil
}

func checkRectangular(what string, rows [][]float64) error {
	width := len(rows[0])
	if width == 0 {
		return fmt.Errorf("%s rows are empty", what)
	}
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%s row %d has %d features, expected %d", what, i, len(row), width)
		}
	}
	return nil
}
