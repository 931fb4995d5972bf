// Package artifacts loads the trained text classifier (vectorizer, classifier, label
// decoder) and exposes it behind a narrow, state-gated API.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-screener/internal/schemas"
)

// Artifact names, used in logs, errors and fetch requests.
const (
	VectorizerArtifact = "vectorizer"
	ClassifierArtifact = "classifier"
	EncoderArtifact    = "encoder"
)

// Paths locates the three artifact files.
type Paths struct {
	Vectorizer string
	Classifier string
	Encoder    string
}

// PathsIn returns Paths for the given file names inside dir.
func PathsIn(dir, vectorizer, classifier, encoder string) Paths {
	return Paths{
		Vectorizer: filepath.Join(dir, vectorizer),
		Classifier: filepath.Join(dir, classifier),
		Encoder:    filepath.Join(dir, encoder),
	}
}

// Fetcher downloads a missing artifact to dest.
type Fetcher interface {
	Fetch(ctx context.Context, artifact, dest string) error
}

// Option configures a Store.
type Option func(*Store)

// WithFetcher makes Load download artifacts that are missing on disk.
func WithFetcher(f Fetcher) Option {
	return func(s *Store) {
		s.fetcher = f
	}
}

// set is one fully loaded, immutable artifact triple.
type set struct {
	vectorizer *TFIDF
	classifier Classifier
	encoder    *LabelEncoder
	loadedAt   time.Time
}

// Store owns the artifact set and its availability state.
// Reads never lock; Load calls are serialized.
type Store struct {
	paths   Paths
	fetcher Fetcher
	logger  *zap.Logger

	loadMu  sync.Mutex
	state   atomic.Int32
	current atomic.Pointer[set]
	lastErr atomic.Pointer[error]
}

// NewStore creates a store in the NotLoaded state. Nothing is read until Load.
func NewStore(paths Paths, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		paths:  paths,
		logger: logger.Named("artifacts"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current availability.
func (s *Store) State() State {
	return State(s.state.Load())
}

// Err returns the cause of the last failed load, or nil.
func (s *Store) Err() error {
	if p := s.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Load reads all three artifacts and returns the resulting state.
// Any failure leaves nothing usable and moves the store to LoadFailed; the error is
// logged and kept for Err. A store that is already Loaded returns immediately.
func (s *Store) Load(ctx context.Context) State {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.State() == Loaded {
		return Loaded
	}

	start := time.Now()
	loaded, err := s.loadSet(ctx)
	if err != nil {
		s.current.Store(nil)
		s.lastErr.Store(&err)
		s.state.Store(int32(LoadFailed))
		s.logger.Error("artifact load failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return LoadFailed
	}

	s.current.Store(loaded)
	s.lastErr.Store(nil)
	s.state.Store(int32(Loaded))
	s.logger.Info("artifacts loaded",
		zap.Int("features", loaded.vectorizer.Dimension()),
		zap.Int("vocabulary", loaded.vectorizer.VocabularySize()),
		zap.Int("classes", len(loaded.classifier.Classes())),
		zap.Int("labels", loaded.encoder.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return Loaded
}

func (s *Store) loadSet(ctx context.Context) (*set, error) {
	var (
		vectorizer *TFIDF
		classifier Classifier
		encoder    *LabelEncoder
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := s.read(gCtx, VectorizerArtifact, s.paths.Vectorizer, schemas.Vectorizer)
		if err != nil {
			return err
		}
		v, err := ParseTFIDF(data)
		if err != nil {
			return &LoadError{Artifact: VectorizerArtifact, Path: s.paths.Vectorizer, Message: "invalid vectorizer", Cause: err}
		}
		vectorizer = v
		return nil
	})

	g.Go(func() error {
		data, err := s.read(gCtx, ClassifierArtifact, s.paths.Classifier, schemas.Classifier)
		if err != nil {
			return err
		}
		c, err := ParseClassifier(data)
		if err != nil {
			return &LoadError{Artifact: ClassifierArtifact, Path: s.paths.Classifier, Message: "invalid classifier", Cause: err}
		}
		classifier = c
		return nil
	})

	g.Go(func() error {
		data, err := s.read(gCtx, EncoderArtifact, s.paths.Encoder, schemas.Encoder)
		if err != nil {
			return err
		}
		e, err := ParseLabelEncoder(data)
		if err != nil {
			return &LoadError{Artifact: EncoderArtifact, Path: s.paths.Encoder, Message: "invalid encoder", Cause: err}
		}
		encoder = e
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := crossCheck(vectorizer, classifier, encoder); err != nil {
		return nil, err
	}

	return &set{
		vectorizer: vectorizer,
		classifier: classifier,
		encoder:    encoder,
		loadedAt:   time.Now(),
	}, nil
}

// read returns an artifact's bytes after schema validation, fetching it first when
// it is missing and a Fetcher is configured.
func (s *Store) read(ctx context.Context, artifact, path, schema string) ([]byte, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && s.fetcher != nil {
		s.logger.Info("artifact missing locally, fetching", zap.String("artifact", artifact), zap.String("path", path))
		if err := s.fetcher.Fetch(ctx, artifact, path); err != nil {
			return nil, &LoadError{Artifact: artifact, Path: path, Message: "download failed", Cause: err}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Artifact: artifact, Path: path, Message: "file not found", Cause: err}
		}
		return nil, &LoadError{Artifact: artifact, Path: path, Message: "unreadable file", Cause: err}
	}

	if err := schemas.Validate(schema, data); err != nil {
		return nil, &LoadError{Artifact: artifact, Path: path, Message: "schema mismatch", Cause: err}
	}
	return data, nil
}

func crossCheck(v *TFIDF, c Classifier, e *LabelEncoder) error {
	if v.Dimension() != c.Dimension() {
		return &LoadError{
			Artifact: ClassifierArtifact,
			Message:  fmt.Sprintf("classifier expects %d features but vectorizer produces %d", c.Dimension(), v.Dimension()),
		}
	}
	switch c.(type) {
	case SparseClassifier, DenseClassifier:
	default:
		return &LoadError{Artifact: ClassifierArtifact, Message: "classifier supports neither sparse nor dense input"}
	}
	for _, idx := range c.Classes() {
		if idx >= e.Len() {
			return &LoadError{
				Artifact: EncoderArtifact,
				Message:  fmt.Sprintf("classifier class %d has no label (encoder knows %d)", idx, e.Len()),
			}
		}
	}
	return nil
}

// Vectorize turns cleaned text into a feature vector.
func (s *Store) Vectorize(cleaned string) (FeatureVector, error) {
	cur := s.current.Load()
	if cur == nil {
		return FeatureVector{}, ErrNotLoaded
	}
	return cur.vectorizer.Transform(cleaned), nil
}

// Classify returns the category index for vec, densifying it when the classifier
// cannot work on sparse input.
func (s *Store) Classify(vec FeatureVector) (int, error) {
	cur := s.current.Load()
	if cur == nil {
		return 0, ErrNotLoaded
	}
	return classify(cur.classifier, vec)
}

func classify(c Classifier, vec FeatureVector) (int, error) {
	if vec.Dim != c.Dimension() {
		return 0, &ShapeError{Expected: c.Dimension(), Got: vec.Dim}
	}
	if len(vec.Indices) != len(vec.Values) {
		return 0, &ShapeError{Message: fmt.Sprintf("%d indices but %d values", len(vec.Indices), len(vec.Values))}
	}
	for _, idx := range vec.Indices {
		if idx < 0 || idx >= vec.Dim {
			return 0, &ShapeError{Message: fmt.Sprintf("feature index %d outside dimension %d", idx, vec.Dim)}
		}
	}

	switch m := c.(type) {
	case SparseClassifier:
		return m.PredictSparse(vec), nil
	case DenseClassifier:
		return m.PredictDense(vec.Dense()), nil
	default:
		return 0, &ShapeError{Message: "classifier supports neither sparse nor dense input"}
	}
}

// DecodeLabel resolves a category index to its label.
func (s *Store) DecodeLabel(idx int) (string, error) {
	cur := s.current.Load()
	if cur == nil {
		return "", ErrNotLoaded
	}
	return cur.encoder.Decode(idx)
}

// Labels returns the index→label table, or nil when not loaded.
func (s *Store) Labels() []string {
	cur := s.current.Load()
	if cur == nil {
		return nil
	}
	return cur.encoder.Labels()
}

// ReachableLabels lists the labels the classifier can actually predict.
func (s *Store) ReachableLabels() []string {
	cur := s.current.Load()
	if cur == nil {
		return nil
	}
	classes := cur.classifier.Classes()
	labels := make([]string, 0, len(classes))
	for _, idx := range classes {
		if l, err := cur.encoder.Decode(idx); err == nil {
			labels = append(labels, l)
		}
	}
	return labels
}

// LoadedAt is when the current set was loaded; zero when not loaded.
func (s *Store) LoadedAt() time.Time {
	cur := s.current.Load()
	if cur == nil {
		return time.Time{}
	}
	return cur.loadedAt
}
