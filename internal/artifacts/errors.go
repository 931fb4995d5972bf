package artifacts

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned by store operations called before a successful Load.
var ErrNotLoaded = errors.New("artifacts not loaded")

// LoadError describes why one artifact could not be loaded.
type LoadError struct {
	Artifact string
	Path     string
	Message  string
	Cause    error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load %s artifact %s: %s: %v", e.Artifact, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load %s artifact %s: %s", e.Artifact, e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// InvalidIndexError means a category index has no label in the decoder table.
type InvalidIndexError struct {
	Index int
	Size  int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("category index %d outside label range [0, %d)", e.Index, e.Size)
}

// ShapeError reports a feature vector the classifier cannot accept.
type ShapeError struct {
	Expected int
	Got      int
	Message  string
}

func (e *ShapeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("shape mismatch: %s", e.Message)
	}
	return fmt.Sprintf("shape mismatch: classifier expects %d features, got %d", e.Expected, e.Got)
}
