package websocket

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/services"
)

const writeWait = 10 * time.Second

type chatStreamer interface {
	Stream(ctx context.Context, message string) (services.Stream, error)
}

// Hub serves the WebSocket flavour of the chat endpoint. Each connection
// handles one message at a time: the reply is sent as delta frames followed
// by a done frame. Every message counts against the chat rate limit of the
// connecting client.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*websocket.Conn
	chat        chatStreamer
	limiter     middleware.Limiter
	upgrader    websocket.Upgrader
}

// NewHub builds a hub. A nil limiter disables per-message limiting.
func NewHub(chat chatStreamer, allowedOrigins []string, limiter middleware.Limiter) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Hub{
		connections: make(map[uuid.UUID]*websocket.Conn),
		chat:        chat,
		limiter:     limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// non-browser clients send no Origin
				return origin == "" || allowed[origin]
			},
		},
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := middleware.ClientIP(r)
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	id := uuid.New()
	h.register(id, conn)
	defer h.unregister(id)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		var req models.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("conn_id", id.String()).Msg("WebSocket read ended")
			}
			return
		}

		if err := h.reply(ctx, conn, ip, req.Message); err != nil {
			log.Debug().Err(err).Str("conn_id", id.String()).Msg("WebSocket write failed")
			return
		}
	}
}

func (h *Hub) reply(ctx context.Context, conn *websocket.Conn, ip, message string) error {
	if strings.TrimSpace(message) == "" {
		return writeFrame(conn, models.StreamFrame{Error: "Message is required"})
	}
	if h.limiter != nil && !h.limiter.Allow(ctx, ip) {
		return writeFrame(conn, models.StreamFrame{Error: "Too many requests. Please try again later."})
	}

	stream, err := h.chat.Stream(ctx, message)
	var notConfigured *services.NotConfiguredError
	if errors.As(err, &notConfigured) {
		stream, err = services.NewStaticStream(notConfigured.Message), nil
	}
	if err != nil {
		log.Error().Err(err).Msg("WebSocket chat request failed")
		return writeFrame(conn, models.StreamFrame{Error: "Failed to get AI response"})
	}
	defer stream.Close()

	for chunk, err := range stream.Chunks() {
		if err != nil {
			log.Error().Err(err).Msg("WebSocket chat stream failed")
			return writeFrame(conn, models.StreamFrame{Error: "Failed to get AI response"})
		}
		if chunk == "" {
			continue
		}
		if err := writeFrame(conn, models.StreamFrame{Delta: chunk}); err != nil {
			return err
		}
	}

	return writeFrame(conn, models.StreamFrame{Done: true})
}

func writeFrame(conn *websocket.Conn, frame models.StreamFrame) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}

func (h *Hub) register(id uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[id] = conn
	log.Debug().Str("conn_id", id.String()).Int("total", len(h.connections)).Msg("WebSocket connected")
}

func (h *Hub) unregister(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.connections[id]; ok {
		conn.Close()
		delete(h.connections, id)
	}
	log.Debug().Str("conn_id", id.String()).Msg("WebSocket disconnected")
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// CloseAll sends a going-away close frame to every connection. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, conn := range h.connections {
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}
}
