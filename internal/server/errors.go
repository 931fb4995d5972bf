package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-screener/internal/ingestion"
)

// Fixed client-facing messages. Internal details only go to the logs.
const (
	internalErrorMessage    = "An internal error occurred during prediction."
	missingTextMessage      = "No resume text provided."
	missingFileMessage      = "No resume file provided."
	emptyDocumentMessage    = "No resume text found in the uploaded file."
	unsupportedFileMessage  = "Unsupported file type. Please upload a .txt, .md, .html, .pdf or .docx file."
	extractionFailedMessage = "Could not extract text from the uploaded file."
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrPayloadTooLarge indicates a request body or upload over its size limit
type ErrPayloadTooLarge struct {
	Limit int64
}

func (e *ErrPayloadTooLarge) Error() string {
	return fmt.Sprintf("payload exceeds %d bytes", e.Limit)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		tooLarge    *ErrPayloadTooLarge
		maxBytes    *http.MaxBytesError
		unsupported *ingestion.UnsupportedFormatError
		extraction  *ingestion.ExtractionError
	)
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &extraction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the message safe to show a client for err.
func publicMessage(err error) string {
	var (
		validation *ErrValidation
		maxBytes   *http.MaxBytesError
	)
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		if errors.As(err, &validation) {
			return validation.Message
		}
		return "Invalid request."
	case http.StatusRequestEntityTooLarge:
		if errors.As(err, &maxBytes) {
			return fmt.Sprintf("Request body exceeds the %d byte limit.", maxBytes.Limit)
		}
		var tooLarge *ErrPayloadTooLarge
		errors.As(err, &tooLarge)
		return fmt.Sprintf("Request body exceeds the %d byte limit.", tooLarge.Limit)
	case http.StatusUnsupportedMediaType:
		return unsupportedFileMessage
	case http.StatusUnprocessableEntity:
		return extractionFailedMessage
	default:
		return internalErrorMessage
	}
}
