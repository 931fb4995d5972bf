// Package artifactstest writes small, well-formed model artifacts for tests.
package artifactstest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-screener/internal/artifacts"
)

// File names used by WriteModel.
const (
	VectorizerFile = "tfidf.json"
	ClassifierFile = "clf.json"
	EncoderFile    = "encoder.json"
)

// Labels are the categories of the fixture model, in encoder order.
var Labels = []string{"Advocate", "Data Science", "Java Developer"}

// Vectorizer has six terms, two per category.
const Vectorizer = `{
  "format": "tfidf/v1",
  "vocabulary": {"python": 0, "learning": 1, "java": 2, "spring": 3, "court": 4, "law": 5},
  "idf": [1.0, 1.0, 1.0, 1.0, 1.0, 1.0],
  "lowercase": true,
  "ngram_range": [1, 1],
  "sublinear_tf": false,
  "norm": "l2"
}`

// LinearClassifier favours Advocate on an empty vector through its intercept.
const LinearClassifier = `{
  "format": "linear/v1",
  "classes": [0, 1, 2],
  "coef": [
    [0, 0, 0, 0, 1, 1],
    [1, 1, 0, 0, 0, 0],
    [0, 0, 1, 1, 0, 0]
  ],
  "intercept": [0.1, 0, 0]
}`

// CentroidClassifier needs dense input.
const CentroidClassifier = `{
  "format": "nearest-centroid/v1",
  "classes": [0, 1, 2],
  "centroids": [
    [0, 0, 0, 0, 0.7, 0.7],
    [0.7, 0.7, 0, 0, 0, 0],
    [0, 0, 0.7, 0.7, 0, 0]
  ]
}`

// Encoder decodes the fixture classes.
const Encoder = `{"format": "label-encoder/v1", "classes": ["Advocate", "Data Science", "Java Developer"]}`

// WriteModel writes the linear fixture model into dir and returns its paths.
func WriteModel(t testing.TB, dir string) artifacts.Paths {
	t.Helper()
	return Write(t, dir, Vectorizer, LinearClassifier, Encoder)
}

// Write stores the given documents under the standard file names in dir.
func Write(t testing.TB, dir, vectorizer, classifier, encoder string) artifacts.Paths {
	t.Helper()
	paths := artifacts.PathsIn(dir, VectorizerFile, ClassifierFile, EncoderFile)
	WriteFile(t, paths.Vectorizer, vectorizer)
	WriteFile(t, paths.Classifier, classifier)
	WriteFile(t, paths.Encoder, encoder)
	return paths
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
