package models

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatMessage is one entry of the prompt sent to an upstream model.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// StreamFrame is sent over the WebSocket chat stream.
type StreamFrame struct {
	Delta string `json:"delta,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// VisionResponse is the reply of the image analysis endpoint.
type VisionResponse struct {
	Analysis string `json:"analysis"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
