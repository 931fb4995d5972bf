// Package inference turns raw resume text into a job category and a tailored suggestion.
package inference

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/resume-screener/internal/artifacts"
	"github.com/jonathan/resume-screener/internal/cleaning"
	"github.com/jonathan/resume-screener/internal/logger"
)

// Sentinel result returned while the model cannot be loaded.
const (
	UnavailableCategory   = "Model Unavailable"
	UnavailableSuggestion = "Please verify your model download URLs and check the service logs for download errors."
)

// Status is the engine's availability.
type Status string

const (
	StatusUnavailable Status = "unavailable"
	StatusAvailable   Status = "available"
)

// Store is the artifact store as seen by the engine.
type Store interface {
	State() artifacts.State
	Load(ctx context.Context) artifacts.State
	Vectorize(cleaned string) (artifacts.FeatureVector, error)
	Classify(vec artifacts.FeatureVector) (int, error)
	DecodeLabel(idx int) (string, error)
	ReachableLabels() []string
	LoadedAt() time.Time
}

// Catalog resolves suggestions for predicted labels.
type Catalog interface {
	Lookup(label string) string
	Missing(labels []string) []string
}

// Prediction is the outcome of Predict. Available is false for the sentinel result.
type Prediction struct {
	Category   string `json:"category"`
	Suggestion string `json:"suggestion"`

	Available      bool   `json:"-"`
	Cleaned        string `json:"-"`
	ActiveFeatures int    `json:"-"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithRetryCooldown spaces out lazy reload attempts while the model is unavailable.
// Zero retries on every request.
func WithRetryCooldown(d time.Duration) Option {
	return func(e *Engine) {
		e.cooldown = d
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine composes normalization, the artifact store and the catalog.
// Predict is safe for concurrent use.
type Engine struct {
	store    Store
	catalog  Catalog
	logger   *zap.Logger
	cooldown time.Duration
	now      func() time.Time

	reloads     singleflight.Group
	lastAttempt atomic.Int64
	attempts    atomic.Int64
}

// New creates an engine. It does not load anything; call Start or let Predict load lazily.
func New(store Store, catalog Catalog, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		store:   store,
		catalog: catalog,
		logger:  log.Named("inference"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Status reports whether predictions can run without a reload.
func (e *Engine) Status() Status {
	if e.store.State() == artifacts.Loaded {
		return StatusAvailable
	}
	return StatusUnavailable
}

// Probe reports availability after giving an unavailable engine one lazy reload
// attempt (subject to the retry cooldown).
func (e *Engine) Probe(ctx context.Context) Status {
	if e.ensureAvailable(ctx) {
		return StatusAvailable
	}
	return StatusUnavailable
}

// LoadAttempts counts store loads started by this engine.
func (e *Engine) LoadAttempts() int64 {
	return e.attempts.Load()
}

// LoadedAt is when the serving model was loaded; zero while unavailable.
func (e *Engine) LoadedAt() time.Time {
	return e.store.LoadedAt()
}

// Start eagerly loads the artifacts. Failure is not an error: the engine stays
// Unavailable and Predict retries later.
func (e *Engine) Start(ctx context.Context) Status {
	e.reload(ctx)
	return e.Status()
}

// Predict classifies raw resume text. While the model cannot be loaded it returns the
// sentinel prediction and a nil error; errors mean an unexpected internal failure.
func (e *Engine) Predict(ctx context.Context, raw string) (Prediction, error) {
	if !e.ensureAvailable(ctx) {
		e.logger.Warn("prediction requested while model unavailable")
		return Prediction{Category: UnavailableCategory, Suggestion: UnavailableSuggestion}, nil
	}

	cleaned := cleaning.Normalize(raw)

	vec, err := e.store.Vectorize(cleaned)
	if err != nil {
		return Prediction{}, fmt.Errorf("vectorize: %w", err)
	}

	idx, err := e.store.Classify(vec)
	if err != nil {
		return Prediction{}, fmt.Errorf("classify: %w", err)
	}

	label, err := e.store.DecodeLabel(idx)
	if err != nil {
		return Prediction{}, fmt.Errorf("decode label: %w", err)
	}

	e.logger.Debug("prediction",
		zap.String("category", label),
		zap.Int("active_features", vec.NNZ()),
		zap.String("cleaned", logger.TruncateForLog(cleaned, 120)),
	)

	return Prediction{
		Category:       label,
		Suggestion:     e.catalog.Lookup(label),
		Available:      true,
		Cleaned:        cleaned,
		ActiveFeatures: vec.NNZ(),
	}, nil
}

// MissingSuggestions lists predictable categories that fall back to the generic suggestion.
func (e *Engine) MissingSuggestions() []string {
	return e.catalog.Missing(e.store.ReachableLabels())
}

func (e *Engine) ensureAvailable(ctx context.Context) bool {
	if e.store.State() == artifacts.Loaded {
		return true
	}
	if e.cooldown > 0 {
		last := e.lastAttempt.Load()
		if last != 0 && e.now().Sub(time.Unix(0, last)) < e.cooldown {
			return false
		}
	}
	return e.reload(ctx) == artifacts.Loaded
}

// reload runs at most one store load at a time; concurrent callers share its result.
func (e *Engine) reload(ctx context.Context) artifacts.State {
	// The load outlives any single request that triggered it.
	loadCtx := context.WithoutCancel(ctx)

	v, _, _ := e.reloads.Do("load", func() (interface{}, error) {
		if st := e.store.State(); st == artifacts.Loaded {
			return st, nil
		}
		e.lastAttempt.Store(e.now().UnixNano())
		e.attempts.Add(1)

		st := e.store.Load(loadCtx)
		if st == artifacts.Loaded {
			e.logger.Info("model available")
			if missing := e.MissingSuggestions(); len(missing) > 0 {
				e.logger.Warn("categories without a catalog suggestion will use the generic fallback",
					zap.Strings("categories", missing))
			}
		} else {
			e.logger.Warn("model unavailable", zap.String("state", st.String()))
		}
		return st, nil
	})
	return v.(artifacts.State)
}
