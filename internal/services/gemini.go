package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"portfolio-backend/internal/models"
)

// VisionPrompt asks for a markdown-structured description of an image.
const VisionPrompt = `Analyze this image in detail.
1. List detected objects with confidence estimates if possible.
2. Describe the scene context.
3. Provide an AI technical insight about what is shown.
Format the response with Markdown headers.`

// GeminiService serves chat streams and image analysis through Gemini.
// A service without an API key reports NotConfiguredError from every call.
type GeminiService struct {
	client    *genai.Client
	modelName string
}

func NewGeminiService(ctx context.Context, apiKey, modelName string) (*GeminiService, error) {
	if apiKey == "" {
		return &GeminiService{modelName: modelName}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{client: client, modelName: modelName}, nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *GeminiService) Name() string { return "gemini" }

func (s *GeminiService) Configured() bool { return s.client != nil }

func (s *GeminiService) model(systemPrompt string) *genai.GenerativeModel {
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(512)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}
	return model
}

// Open starts a streamed generation. The first response is fetched eagerly
// so that request failures are reported here rather than mid-stream.
func (s *GeminiService) Open(ctx context.Context, messages []models.ChatMessage) (Stream, error) {
	if !s.Configured() {
		return nil, notConfigured("GEMINI_API_KEY")
	}

	var system []string
	var parts []genai.Part
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	if len(parts) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	it := s.model(strings.Join(system, "\n\n")).GenerateContentStream(ctx, parts...)
	first, err := it.Next()
	if errors.Is(err, iterator.Done) {
		return NewStaticStream(""), nil
	}
	if err != nil {
		return nil, &UpstreamError{Provider: s.Name(), Err: err}
	}

	return &geminiStream{it: it, first: first}, nil
}

type geminiStream struct {
	it    *genai.GenerateContentResponseIterator
	first *genai.GenerateContentResponse
}

func (s *geminiStream) Chunks() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp := s.first
		s.first = nil
		for {
			if resp != nil {
				if text := extractText(resp); text != "" {
					if !yield(text, nil) {
						return
					}
				}
			}
			next, err := s.it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield("", &UpstreamError{Provider: "gemini", Err: err})
				return
			}
			resp = next
		}
	}
}

func (s *geminiStream) Close() error { return nil }

// AnalyzeImage describes an uploaded image. format is the image subtype,
// e.g. "jpeg" or "png".
func (s *GeminiService) AnalyzeImage(ctx context.Context, data []byte, format string) (string, error) {
	if !s.Configured() {
		return "", &NotConfiguredError{Message: "Vision analysis not configured. Please set GEMINI_API_KEY."}
	}
	if len(data) == 0 {
		return "", &ValidationError{Fields: map[string]string{"file": "Image is empty"}}
	}

	resp, err := s.model("").GenerateContent(ctx, genai.Text(VisionPrompt), genai.ImageData(format, data))
	if err != nil {
		return "", &UpstreamError{Provider: s.Name(), Err: err}
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Warn().Int("candidate", i).Str("finish_reason", cand.FinishReason.String()).Msg("Gemini stopped early")
		}
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", &UpstreamError{Provider: s.Name(), Err: errors.New("empty analysis")}
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
