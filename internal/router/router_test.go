package router

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/services"
	"portfolio-backend/internal/websocket"
)

type echoStream struct{ text string }

func (s echoStream) Chunks() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) { yield(s.text, nil) }
}

func (echoStream) Close() error { return nil }

type echoChat struct{}

func (echoChat) Stream(ctx context.Context, message string) (services.Stream, error) {
	return echoStream{text: "you said: " + message}, nil
}

type noVision struct{}

func (noVision) AnalyzeImage(ctx context.Context, data []byte, format string) (string, error) {
	return "", &services.NotConfiguredError{Message: "off"}
}

func newTestRouter(healthLimit int) http.Handler {
	return New(
		handlers.NewChatHandler(echoChat{}),
		handlers.NewVisionHandler(noVision{}, 1),
		websocket.NewHub(echoChat{}, nil, nil),
		middleware.NewRateLimiter(healthLimit, time.Minute),
		middleware.NewRateLimiter(100, time.Minute),
		[]string{"http://localhost:3000"},
	)
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(10)

	for _, path := range []string{"/", "/health"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.JSONEq(t, `{"status":"ok","message":"AI Portfolio Backend is running"}`, rr.Body.String())
		assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	}
}

func TestRouter_HealthIsRateLimited(t *testing.T) {
	h := newTestRouter(1)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_ChatPaths(t *testing.T) {
	h := newTestRouter(10)

	for _, path := range []string{"/api/chat/", "/api/chat"} {
		body, _ := json.Marshal(models.ChatRequest{Message: "hi"})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body)))

		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "you said: hi", rr.Body.String())
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(10).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/chat/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()

	newTestRouter(10).ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_MidStreamPanicIsReraised(t *testing.T) {
	h := New(
		handlers.NewChatHandler(failingChat{}),
		handlers.NewVisionHandler(noVision{}, 1),
		websocket.NewHub(echoChat{}, nil, nil),
		middleware.NewRateLimiter(10, time.Minute),
		middleware.NewRateLimiter(10, time.Minute),
		nil,
	)

	body, _ := json.Marshal(models.ChatRequest{Message: "hi"})
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/chat/", bytes.NewReader(body)))
	})
}

type failingChat struct{}

func (failingChat) Stream(ctx context.Context, message string) (services.Stream, error) {
	return brokenStream{}, nil
}

type brokenStream struct{}

func (brokenStream) Chunks() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if yield("partial", nil) {
			yield("", context.DeadlineExceeded)
		}
	}
}

func (brokenStream) Close() error { return nil }
