package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/inference"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/logger"
	"github.com/jonathan/resume-screener/internal/server/middleware"
)

//go:embed web/index.html
var indexHTML []byte

// HealthCheckProbe is the resume text the web UI sends on page load to learn whether
// predictions are possible. It is answered without running inference.
const HealthCheckProbe = "health check"

// Probe responses.
const (
	ModelAvailableCategory     = "Model Available"
	ModelAvailableSuggestion   = "System operational."
	ModelUnavailableSuggestion = "Model loading failed on server."
)

var validate = validator.New()

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Resume string `json:"resume" validate:"required"`
}

// PredictResponse is returned by the prediction endpoints.
type PredictResponse struct {
	Category   string        `json:"category"`
	Suggestion string        `json:"suggestion"`
	Error      string        `json:"error,omitempty"`
	Document   *DocumentInfo `json:"document,omitempty"`
}

// DocumentInfo describes an uploaded resume after text extraction.
type DocumentInfo struct {
	Name       string           `json:"name"`
	Format     ingestion.Format `json:"format"`
	Characters int              `json:"characters"`
	Hash       string           `json:"hash"`
}

// ErrorResponse is the body of every error without a prediction.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is returned by the health and readiness probes.
type StatusResponse struct {
	Status       string           `json:"status"`
	Model        inference.Status `json:"model,omitempty"`
	LoadedAt     string           `json:"loaded_at,omitempty"`
	LoadAttempts int64            `json:"load_attempts,omitempty"`
}

// handleIndex serves the single-page dashboard.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(indexHTML)
}

// handlePredict classifies pasted resume text.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.errorResponse(w, HTTPStatus(err), publicMessage(err))
			return
		}
		if errors.Is(err, io.EOF) {
			s.errorResponse(w, http.StatusBadRequest, missingTextMessage)
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if req.Resume == HealthCheckProbe {
		s.handleProbe(w, r)
		return
	}

	if err := validate.Struct(req); err != nil {
		verr := &ErrValidation{Field: "resume", Message: missingTextMessage}
		s.errorResponse(w, HTTPStatus(verr), publicMessage(verr))
		return
	}

	s.predict(w, r, req.Resume, nil)
}

// handleProbe answers the UI's startup availability check.
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	if s.engine.Probe(r.Context()) == inference.StatusAvailable {
		s.jsonResponse(w, http.StatusOK, PredictResponse{
			Category:   ModelAvailableCategory,
			Suggestion: ModelAvailableSuggestion,
		})
		return
	}
	s.jsonResponse(w, http.StatusServiceUnavailable, PredictResponse{
		Category:   inference.UnavailableCategory,
		Suggestion: ModelUnavailableSuggestion,
	})
}

// handlePredictFile extracts text from an uploaded resume and classifies it.
func (s *Server) handlePredictFile(w http.ResponseWriter, r *http.Request) {
	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+64<<10)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, publicMessage(&ErrPayloadTooLarge{Limit: s.opts.MaxUploadBytes}))
			return
		}
		s.errorResponse(w, http.StatusBadRequest, missingFileMessage)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.opts.MaxUploadBytes {
		err := &ErrPayloadTooLarge{Limit: s.opts.MaxUploadBytes}
		s.errorResponse(w, HTTPStatus(err), publicMessage(err))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.opts.MaxUploadBytes+1))
	if err != nil {
		s.logger.Error("failed to read upload", zap.Error(err))
		s.errorResponse(w, http.StatusBadRequest, missingFileMessage)
		return
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		err := &ErrPayloadTooLarge{Limit: s.opts.MaxUploadBytes}
		s.errorResponse(w, HTTPStatus(err), publicMessage(err))
		return
	}

	doc, err := ingestion.IngestBytes(data, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		s.logger.Warn("upload rejected",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("file", header.Filename),
			zap.Error(err),
		)
		s.errorResponse(w, HTTPStatus(err), publicMessage(err))
		return
	}
	if doc.Text == "" {
		s.errorResponse(w, http.StatusBadRequest, emptyDocumentMessage)
		return
	}

	s.predict(w, r, doc.Text, &DocumentInfo{
		Name:       header.Filename,
		Format:     doc.Metadata.Format,
		Characters: doc.Metadata.Characters,
		Hash:       doc.Metadata.Hash,
	})
}

// predict runs the engine and writes the outcome.
func (s *Server) predict(w http.ResponseWriter, r *http.Request, text string, doc *DocumentInfo) {
	requestID := middleware.GetRequestID(r.Context())

	prediction, err := s.engine.Predict(r.Context(), text)
	if err != nil {
		s.logger.Error("prediction failed",
			zap.String("request_id", requestID),
			zap.String("resume", logger.TruncateForLog(text, 80)),
			zap.Error(err),
		)
		s.errorResponse(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	resp := PredictResponse{
		Category:   prediction.Category,
		Suggestion: prediction.Suggestion,
		Document:   doc,
	}
	if !prediction.Available {
		resp.Error = inference.UnavailableCategory
		s.jsonResponse(w, http.StatusServiceUnavailable, resp)
		return
	}

	s.logger.Info("prediction",
		zap.String("request_id", requestID),
		zap.String("category", prediction.Category),
		zap.Int("active_features", prediction.ActiveFeatures),
	)
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleHealth reports liveness; it does not depend on the model.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady reports whether predictions can be served without a reload.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{
		Status:       "ready",
		Model:        s.engine.Status(),
		LoadAttempts: s.engine.LoadAttempts(),
	}
	if resp.Model != inference.StatusAvailable {
		resp.Status = "not ready"
		s.jsonResponse(w, http.StatusServiceUnavailable, resp)
		return
	}
	if loadedAt := s.engine.LoadedAt(); !loadedAt.IsZero() {
		resp.LoadedAt = loadedAt.UTC().Format(time.RFC3339)
	}
	s.jsonResponse(w, http.StatusOK, resp)
}
