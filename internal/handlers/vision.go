package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/services"
)

type imageAnalyzer interface {
	AnalyzeImage(ctx context.Context, data []byte, format string) (string, error)
}

type VisionHandler struct {
	analyzer imageAnalyzer
	maxBytes int64
}

func NewVisionHandler(analyzer imageAnalyzer, maxUploadMB int) *VisionHandler {
	return &VisionHandler{analyzer: analyzer, maxBytes: int64(maxUploadMB) << 20}
}

// Analyze handles POST /api/vision/analyze with a multipart "file" field.
func (h *VisionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "Image exceeds the upload limit", r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart form", r))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"file": "File is required"}, r))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Could not read file", r))
		return
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_MEDIA_TYPE", "File must be an image", r))
		return
	}

	analysis, err := h.analyzer.AnalyzeImage(r.Context(), data, strings.TrimPrefix(contentType, "image/"))
	var notConfigured *services.NotConfiguredError
	if errors.As(err, &notConfigured) {
		writeJSON(w, http.StatusOK, models.VisionResponse{Analysis: notConfigured.Message})
		return
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.VisionResponse{Analysis: analysis})
}
