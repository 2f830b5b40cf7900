package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/services"
)

type chatStreamer interface {
	Stream(ctx context.Context, message string) (services.Stream, error)
}

type ChatHandler struct {
	chat chatStreamer
}

func NewChatHandler(chat chatStreamer) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Stream answers POST /api/chat/ with a chunked text/plain body. A failure
// after the first byte aborts the connection so clients see a broken stream
// rather than a truncated but apparently complete reply.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	stream, err := h.chat.Stream(r.Context(), req.Message)
	var notConfigured *services.NotConfiguredError
	if errors.As(err, &notConfigured) {
		stream, err = services.NewStaticStream(notConfigured.Message), nil
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	written := 0
	for chunk, err := range stream.Chunks() {
		if err != nil {
			log.Error().Err(err).
				Str("request_id", r.Header.Get(middleware.RequestIDHeader)).
				Int("bytes_written", written).
				Msg("Chat stream failed mid-response")
			panic(http.ErrAbortHandler)
		}
		n, werr := io.WriteString(w, chunk)
		written += n
		if werr != nil {
			// client went away
			return
		}
		rc.Flush()
	}

	log.Debug().Str("request_id", r.Header.Get(middleware.RequestIDHeader)).Int("bytes_written", written).Msg("Chat stream complete")
}
