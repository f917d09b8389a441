package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
	turnsvc "github.com/aibekm/tildos/backend/internal/service/turn"
	"github.com/aibekm/tildos/backend/pkg/logger"
)

// WebSocketHandler streams reply messages over a WebSocket as soon as each
// one's audio and timeline are ready, instead of waiting for the whole turn.
type WebSocketHandler struct {
	orch     *turnsvc.Orchestrator
	composer turnsvc.Composer
	timeout  time.Duration
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the streaming chat handler.
func NewWebSocketHandler(orch *turnsvc.Orchestrator, composer turnsvc.Composer, timeout time.Duration) *WebSocketHandler {
	return &WebSocketHandler{
		orch:     orch,
		composer: composer,
		timeout:  timeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes attaches the WebSocket route to the router.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type chatPayload struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		if inbound.Type != "chat" {
			h.send(conn, "error", map[string]string{"error": "unsupported message type: " + inbound.Type})
			continue
		}

		var payload chatPayload
		if err := json.Unmarshal(inbound.Data, &payload); err != nil {
			h.send(conn, "error", map[string]string{"error": "invalid chat payload"})
			continue
		}
		if payload.Language == "" {
			payload.Language = "en"
		}
		if payload.Message == "" {
			h.send(conn, "error", map[string]string{"error": "message is required"})
			continue
		}

		h.runTurn(r.Context(), conn, payload)
	}
}

// runTurn streams one turn: a message event per assembled reply, then a done
// event, or a single error event on failure.
func (h *WebSocketHandler) runTurn(ctx context.Context, conn *websocket.Conn, payload chatPayload) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	drafts, err := h.composer.Compose(ctx, payload.Message, payload.Language)
	if err != nil {
		h.send(conn, "error", map[string]string{"error": "composition failed", "details": err.Error()})
		return
	}

	count := 0
	err = h.orch.Assembler().AssembleStream(ctx, drafts, payload.Language, func(m turnmodel.ReplyMessage) error {
		count++
		return h.send(conn, "message", m)
	})
	if err != nil {
		h.send(conn, "error", map[string]string{"error": "assembly failed", "details": err.Error()})
		return
	}

	h.send(conn, "done", map[string]interface{}{
		"detectedLanguage": payload.Language,
		"responseLanguage": payload.Language,
		"count":            count,
	})
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msgType string, data interface{}) error {
	return conn.WriteJSON(outgoingMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}
