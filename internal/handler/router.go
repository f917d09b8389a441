// Package handler wires HTTP routes to the turn pipeline services.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aibekm/tildos/backend/internal/handler/chat"
	"github.com/aibekm/tildos/backend/internal/handler/voice"
	middlewarePkg "github.com/aibekm/tildos/backend/internal/middleware"
)

// NewRouter assembles the HTTP surface. Either handler may be backed by nil
// services; the handlers degrade per-route when an upstream is unconfigured.
func NewRouter(chatHandler *chat.Handler, wsHandler *chat.WebSocketHandler, voiceHandler *voice.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler.RegisterRoutes(r)
	if wsHandler != nil {
		wsHandler.RegisterRoutes(r)
	}
	voiceHandler.RegisterRoutes(r)

	return r
}
