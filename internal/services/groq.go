package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"portfolio-backend/internal/models"
)

const (
	chunkPrefix = "data:"
	endMessage  = "[DONE]"
)

// GroqService streams completions from an OpenAI-compatible endpoint.
type GroqService struct {
	apiKey     string
	url        string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func NewGroqService(apiKey, url, model string) *GroqService {
	return &GroqService{
		apiKey:    apiKey,
		url:       url,
		model:     model,
		maxTokens: 512,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return operation + " " + r.URL.Path
			}),
		)},
	}
}

func (s *GroqService) Name() string { return "groq" }

type groqRequest struct {
	Model     string               `json:"model"`
	Messages  []models.ChatMessage `json:"messages"`
	Stream    bool                 `json:"stream"`
	MaxTokens int                  `json:"max_tokens,omitempty"`
}

type groqStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *GroqService) Open(ctx context.Context, messages []models.ChatMessage) (Stream, error) {
	if s.apiKey == "" {
		return nil, notConfigured("GROQ_API_KEY")
	}

	ctx, span := tracer.Start(ctx, "groq chat stream")
	span.SetAttributes(attribute.String("request.model", s.model))

	body, err := json.Marshal(groqRequest{
		Model:     s.model,
		Messages:  messages,
		Stream:    true,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("error marshalling JSON: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("error creating HTTP request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, endSpan(span, &UpstreamError{Provider: s.Name(), Err: err})
	}

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Warn().Int("status", resp.StatusCode).Str("body", string(errBody)).Msg("Groq returned non-OK status")
		return nil, endSpan(span, &UpstreamError{
			Provider:   s.Name(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("non-OK HTTP status: %s", resp.Status),
		})
	}

	return &sseStream{body: resp.Body, span: span}, nil
}

// sseStream decodes "data: {...}" lines into content deltas.
type sseStream struct {
	body io.ReadCloser
	span trace.Span
}

func (s *sseStream) Chunks() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(s.body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, chunkPrefix) {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, chunkPrefix))
			if payload == "" {
				continue
			}
			if payload == endMessage {
				return
			}

			var chunk groqStreamChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				s.span.RecordError(err)
				if !yield("", fmt.Errorf("error unmarshalling JSON: %w", err)) {
					return
				}
				continue
			}
			if chunk.Error != nil {
				yield("", &UpstreamError{Provider: "groq", Err: fmt.Errorf("%s", chunk.Error.Message)})
				return
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !yield(choice.Delta.Content, nil) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			s.span.RecordError(err)
			yield("", fmt.Errorf("error reading stream: %w", err))
		}
	}
}

func (s *sseStream) Close() error {
	s.span.End()
	return s.body.Close()
}

func endSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
	return err
}
