package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/services"
)

// ─── Fakes ───

type chunkStream struct {
	chunks []string
	err    error
	closed bool
}

func (s *chunkStream) Chunks() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range s.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if s.err != nil {
			yield("", s.err)
		}
	}
}

func (s *chunkStream) Close() error {
	s.closed = true
	return nil
}

type fakeChat struct {
	stream *chunkStream
	err    error
	got    string
}

func (f *fakeChat) Stream(ctx context.Context, message string) (services.Stream, error) {
	f.got = message
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

type fakeAnalyzer struct {
	analysis string
	err      error
	format   string
}

func (f *fakeAnalyzer) AnalyzeImage(ctx context.Context, data []byte, format string) (string, error) {
	f.format = format
	return f.analysis, f.err
}

func chatRequest(t *testing.T, message string) *http.Request {
	t.Helper()
	body, err := json.Marshal(models.ChatRequest{Message: message})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Error
}

// ─── Chat Handler Tests ───

func TestChatHandler_StreamsChunks(t *testing.T) {
	stream := &chunkStream{chunks: []string{"Safir has ", "built ", "several projects."}}
	chat := &fakeChat{stream: stream}
	rr := httptest.NewRecorder()

	NewChatHandler(chat).Stream(rr, chatRequest(t, "What projects?"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "Safir has built several projects.", rr.Body.String())
	assert.True(t, rr.Flushed)
	assert.True(t, stream.closed)
	assert.Equal(t, "What projects?", chat.got)
}

func TestChatHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  func() *http.Request
	}{
		{"empty message", func() *http.Request { return chatRequest(t, "") }},
		{"whitespace message", func() *http.Request { return chatRequest(t, "   \n") }},
		{"malformed body", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/api/chat/", strings.NewReader("{not json"))
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chat := &fakeChat{stream: &chunkStream{}}
			rr := httptest.NewRecorder()
			NewChatHandler(chat).Stream(rr, tc.req())

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rr).Code)
			assert.Empty(t, chat.got)
		})
	}
}

func TestChatHandler_NotConfiguredStreamsNotice(t *testing.T) {
	msg := "Chatbot is not configured. Please set GROQ_API_KEY environment variable."
	chat := &fakeChat{err: &services.NotConfiguredError{Message: msg}}
	rr := httptest.NewRecorder()

	NewChatHandler(chat).Stream(rr, chatRequest(t, "hi"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, msg, rr.Body.String())
}

func TestChatHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"upstream", &services.UpstreamError{Provider: "groq", StatusCode: 500, Err: errors.New("boom")}, http.StatusBadGateway, "AI_ERROR"},
		{"rate limited", &services.RateLimitError{Message: "busy"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"validation", &services.ValidationError{Fields: map[string]string{"message": "too long"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewChatHandler(&fakeChat{err: tc.err}).Stream(rr, chatRequest(t, "hi"))

			assert.Equal(t, tc.wantStatus, rr.Code)
			apiErr := decodeError(t, rr)
			assert.Equal(t, tc.wantCode, apiErr.Code)
			assert.Equal(t, "req-42", apiErr.RequestID)
		})
	}
}

func TestChatHandler_MidStreamFailureAborts(t *testing.T) {
	stream := &chunkStream{chunks: []string{"partial "}, err: errors.New("upstream reset")}
	rr := httptest.NewRecorder()

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		NewChatHandler(&fakeChat{stream: stream}).Stream(rr, chatRequest(t, "hi"))
	})
	assert.Equal(t, "partial ", rr.Body.String())
	assert.True(t, stream.closed)
}

// ─── Vision Handler Tests ───

// smallest valid PNG header is enough for content sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "upload.bin")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/vision/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestVisionHandler_Analyze(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: "A dog on a beach."}
	rr := httptest.NewRecorder()

	NewVisionHandler(analyzer, 1).Analyze(rr, multipartRequest(t, "file", pngHeader))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.VisionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "A dog on a beach.", resp.Analysis)
	assert.Equal(t, "png", analyzer.format)
}

func TestVisionHandler_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		req        func() *http.Request
		wantStatus int
	}{
		{"missing file", func() *http.Request { return multipartRequest(t, "other", pngHeader) }, http.StatusBadRequest},
		{"not an image", func() *http.Request { return multipartRequest(t, "file", []byte("plain old text")) }, http.StatusUnsupportedMediaType},
		{"too large", func() *http.Request {
			return multipartRequest(t, "file", append(pngHeader, bytes.Repeat([]byte{0}, 2<<20)...))
		}, http.StatusRequestEntityTooLarge},
		{"not multipart", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/api/vision/analyze", strings.NewReader("x"))
		}, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewVisionHandler(&fakeAnalyzer{analysis: "unused"}, 1).Analyze(rr, tc.req())
			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestVisionHandler_NotConfigured(t *testing.T) {
	msg := "Vision analysis not configured. Please set GEMINI_API_KEY."
	rr := httptest.NewRecorder()

	NewVisionHandler(&fakeAnalyzer{err: &services.NotConfiguredError{Message: msg}}, 1).
		Analyze(rr, multipartRequest(t, "file", pngHeader))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.VisionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, msg, resp.Analysis)
}

// ─── Health ───

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp models.HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "AI Portfolio Backend is running", resp.Message)
}
