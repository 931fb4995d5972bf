package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/ingestion"
)

func configForTest(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "resume", Message: "No resume text provided."}
	assert.Equal(t, "validation error: resume - No resume text provided.", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Equal(t, "No resume text provided.", publicMessage(err))
}

func TestErrPayloadTooLarge(t *testing.T) {
	err := &ErrPayloadTooLarge{Limit: 1024}
	assert.Equal(t, "payload exceeds 1024 bytes", err.Error())
	assert.Equal(t, http.StatusRequestEntityTooLarge, HTTPStatus(err))
	assert.Equal(t, "Request body exceeds the 1024 byte limit.", publicMessage(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: &ErrValidation{Field: "f", Message: "m"}, expected: http.StatusBadRequest},
		{name: "wrapped validation", err: fmt.Errorf("request: %w", &ErrValidation{}), expected: http.StatusBadRequest},
		{name: "max bytes", err: &http.MaxBytesError{Limit: 10}, expected: http.StatusRequestEntityTooLarge},
		{name: "unsupported format", err: &ingestion.UnsupportedFormatError{Name: "a.exe"}, expected: http.StatusUnsupportedMediaType},
		{name: "extraction", err: &ingestion.ExtractionError{Format: ingestion.FormatPDF, Cause: assert.AnError}, expected: http.StatusUnprocessableEntity},
		{name: "unknown", err: assert.AnError, expected: http.StatusInternalServerError},
		{name: "nil", err: nil, expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessageNeverLeaksInternals(t *testing.T) {
	err := fmt.Errorf("classify: %w", assert.AnError)
	assert.Equal(t, internalErrorMessage, publicMessage(err))
	assert.Equal(t, extractionFailedMessage, publicMessage(&ingestion.ExtractionError{Format: ingestion.FormatDOCX, Cause: assert.AnError}))
	assert.Equal(t, "Request body exceeds the 10 byte limit.", publicMessage(&http.MaxBytesError{Limit: 10}))
}
