package services

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"portfolio-backend/internal/models"
)

// SystemPrompt frames every chat request sent to a model provider.
const SystemPrompt = `You are an AI Assistant for Safir's Portfolio.
Safir is an AI Automation Engineer and Computer Vision Developer.
He is skilled in Python, YOLO, FastAPI, and LLMs.
Answer questions about his skills and projects professionally.
Keep answers concise and relevant to his portfolio.`

// Stream is a reply being produced by a provider.
type Stream interface {
	Chunks() iter.Seq2[string, error]
	Close() error
}

// Provider opens a streamed completion. Open returns once the provider has
// accepted the request, so failures before the first byte surface as errors.
type Provider interface {
	Name() string
	Open(ctx context.Context, messages []models.ChatMessage) (Stream, error)
}

// BuildMessages prepends the portfolio system prompt to the user's message.
func BuildMessages(message string) []models.ChatMessage {
	return []models.ChatMessage{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: message},
	}
}

// ChatService bounds concurrent upstream streams and validates input.
type ChatService struct {
	provider Provider
	rateChan chan struct{} // Token bucket
	wait     time.Duration
	timeout  time.Duration
}

// NewChatService wraps provider. timeout bounds each upstream call from open
// to close; zero leaves it to the caller's context.
func NewChatService(provider Provider, concurrentReqs int, timeout time.Duration) *ChatService {
	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}
	return &ChatService{
		provider: provider,
		rateChan: rateChan,
		wait:     30 * time.Second,
		timeout:  timeout,
	}
}

func (s *ChatService) ProviderName() string { return s.provider.Name() }

// acquireRate blocks until a rate slot is available
func (s *ChatService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.wait):
		return &RateLimitError{Message: "Too many concurrent chats. Please try again later."}
	}
}

func (s *ChatService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Stream opens a reply for message. The rate slot is held until the returned
// stream is closed.
func (s *ChatService) Stream(ctx context.Context, message string) (Stream, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}

	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}

	stream, err := s.provider.Open(ctx, BuildMessages(message))
	if err != nil {
		cancel()
		s.releaseRate()
		return nil, err
	}
	return &slotStream{Stream: stream, cancel: cancel, release: s.releaseRate}, nil
}

type slotStream struct {
	Stream
	once    sync.Once
	cancel  context.CancelFunc
	release func()
}

func (s *slotStream) Close() error {
	err := s.Stream.Close()
	s.once.Do(func() {
		s.cancel()
		s.release()
	})
	return err
}

// staticStream yields a single fixed chunk.
type staticStream struct{ text string }

func (s staticStream) Chunks() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if s.text != "" {
			yield(s.text, nil)
		}
	}
}

func (staticStream) Close() error { return nil }

// NewStaticStream returns a stream that yields text once.
func NewStaticStream(text string) Stream { return staticStream{text: text} }

func notConfigured(envVar string) error {
	return &NotConfiguredError{Message: fmt.Sprintf("Chatbot is not configured. Please set %s environment variable.", envVar)}
}
