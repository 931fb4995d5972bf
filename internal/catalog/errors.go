package catalog

import "fmt"

// ConfigError reports a missing or malformed catalog source.
// It is a startup configuration failure, distinct from model artifact failures.
type ConfigError struct {
	Source  string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("catalog %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("catalog %s: %s", e.Source, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
