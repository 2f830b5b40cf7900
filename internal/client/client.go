// Package client talks to the portfolio inference endpoint over HTTP and
// exposes its streamed reply as a sequence of decoded text chunks.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"portfolio-backend/internal/chat"
)

const (
	ChatPath       = "/api/chat/"
	defaultBufSize = 4096
)

var (
	// ErrNoBody is returned when a successful response carries no body.
	ErrNoBody = errors.New("response has no body")
	// ErrStreamConsumed is yielded when Chunks is ranged over a second time.
	ErrStreamConsumed = errors.New("stream already consumed")
)

// StatusError reports a non-2xx answer from the endpoint.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("non-2xx HTTP status: %s", e.Status)
	}
	return fmt.Sprintf("non-2xx HTTP status: %s: %s", e.Status, e.Body)
}

type Client struct {
	chatURL    string
	httpClient *http.Client
	bufSize    int
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBufferSize sets the maximum number of bytes read per chunk.
func WithBufferSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.bufSize = n
		}
	}
}

// New builds a client for the endpoint rooted at baseURL, e.g. http://localhost:8000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		chatURL: strings.TrimRight(baseURL, "/") + ChatPath,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return operation + " " + r.URL.Path
			}),
		)},
		bufSize: defaultBufSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ChatURL() string { return c.chatURL }

type chatRequest struct {
	Message string `json:"message"`
}

// Open posts message and returns the reply stream once a 2xx response with a
// body has arrived.
func (c *Client) Open(ctx context.Context, message string) (chat.Stream, error) {
	body, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(errBody)),
		}
	}

	// the otelhttp transport wraps resp.Body, so http.NoBody cannot be compared against
	if resp.Body == nil || resp.StatusCode == http.StatusNoContent || resp.ContentLength == 0 {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, ErrNoBody
	}

	return newStream(resp.Body, c.bufSize), nil
}

// Stream yields the reply body as UTF-8 text. Invalid byte sequences become
// U+FFFD and runes split across reads are held back until complete.
type Stream struct {
	body    io.ReadCloser
	reader  io.Reader
	bufSize int
	used    bool
}

func newStream(body io.ReadCloser, bufSize int) *Stream {
	return &Stream{
		body:    body,
		reader:  transform.NewReader(body, unicode.UTF8.NewDecoder()),
		bufSize: bufSize,
	}
}

func (s *Stream) Chunks() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if s.used {
			yield("", ErrStreamConsumed)
			return
		}
		s.used = true

		buf := make([]byte, s.bufSize)
		for {
			n, err := s.reader.Read(buf)
			if n > 0 {
				if !yield(string(buf[:n]), nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("error reading stream: %w", err))
				return
			}
		}
	}
}

func (s *Stream) Close() error {
	return s.body.Close()
}

// Collect drains a stream into a single string, stopping at the first error.
func Collect(s chat.Stream) (string, error) {
	var sb strings.Builder
	for chunk, err := range s.Chunks() {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk)
	}
	return sb.String(), nil
}
