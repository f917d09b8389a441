// Package chat serves the text-chat surface: the voice catalog and the
// /chat endpoint that turns a typed message into a multimedia reply.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aibekm/tildos/backend/internal/artifact"
	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
	"github.com/aibekm/tildos/backend/internal/service/speech"
	turnsvc "github.com/aibekm/tildos/backend/internal/service/turn"
	"github.com/aibekm/tildos/backend/pkg/logger"
	"github.com/aibekm/tildos/backend/pkg/utils"
)

// Handler serves /, /healthz, /voices and /chat. The orchestrator is nil
// when the generation or speech upstream is unconfigured; /chat then answers
// with the fixed fallback pair instead of erroring.
type Handler struct {
	store   *artifact.Store
	orch    *turnsvc.Orchestrator
	timeout time.Duration
}

// New creates the chat handler.
func New(store *artifact.Store, orch *turnsvc.Orchestrator, timeout time.Duration) *Handler {
	return &Handler{store: store, orch: orch, timeout: timeout}
}

// RegisterRoutes attaches the chat routes to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/healthz", h.handleHealth)
	r.Get("/voices", h.handleVoices)
	r.Post("/chat", h.handleChat)
}

type chatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

type chatResponse struct {
	Messages         []turnmodel.ReplyMessage `json:"messages"`
	DetectedLanguage string                   `json:"detectedLanguage"`
	ResponseLanguage string                   `json:"responseLanguage"`
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Hello World!"))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleVoices(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string][]speech.Voice{
		"voices": speech.PremadeVoices(),
	})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	// An absent message gets the greeting pair without touching the
	// generation service at all.
	if req.Message == "" {
		h.respondCanned(w, greetingPair, req.Language)
		return
	}

	if h.orch == nil {
		h.respondCanned(w, unconfiguredPair, req.Language)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	messages, err := h.orch.HandleTextTurn(ctx, req.Message, req.Language)
	if err != nil {
		respondStageError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Messages:         messages,
		DetectedLanguage: req.Language,
		ResponseLanguage: req.Language,
	})
}

// respondStageError maps a pipeline failure onto the HTTP surface with the
// failing stage identified and the upstream detail attached.
func respondStageError(w http.ResponseWriter, err error) {
	var stageErr *turnsvc.StageError
	if errors.As(err, &stageErr) {
		utils.RespondErrorDetails(w, http.StatusInternalServerError,
			"turn pipeline failed at stage: "+string(stageErr.Stage), err.Error())
		return
	}
	utils.RespondErrorDetails(w, http.StatusInternalServerError, "turn pipeline failed", err.Error())
}

// cannedMessage names one pre-baked reply asset and its display fields.
type cannedMessage struct {
	Asset            string
	Text             string
	FacialExpression string
	Animation        string
}

var greetingPair = []cannedMessage{
	{Asset: "intro_0", Text: "Hey dear... How was your day?", FacialExpression: turnmodel.ExpressionSmile, Animation: turnmodel.AnimationTalking1},
	{Asset: "intro_1", Text: "I missed you so much... Please don't go for so long!", FacialExpression: turnmodel.ExpressionSad, Animation: turnmodel.AnimationCrying},
}

var unconfiguredPair = []cannedMessage{
	{Asset: "api_0", Text: "Please my dear, don't forget to add your API key!", FacialExpression: turnmodel.ExpressionAngry, Animation: turnmodel.AnimationAngry},
	{Asset: "api_1", Text: "You don't want to ruin your API budget, right?", FacialExpression: turnmodel.ExpressionSmile, Animation: turnmodel.AnimationLaughing},
}

// respondCanned answers with a fixed pair of pre-baked messages read from
// the staging root.
func (h *Handler) respondCanned(w http.ResponseWriter, pair []cannedMessage, language string) {
	messages := make([]turnmodel.ReplyMessage, 0, len(pair))
	for i, c := range pair {
		audio, err := h.store.CannedAudio(c.Asset)
		if err != nil {
			logger.Error("missing canned audio asset", zap.String("asset", c.Asset), zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "canned reply assets unavailable")
			return
		}
		timeline, err := h.store.CannedTimeline(c.Asset)
		if err != nil {
			logger.Error("missing canned timeline asset", zap.String("asset", c.Asset), zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "canned reply assets unavailable")
			return
		}
		messages = append(messages, turnmodel.ReplyMessage{
			Index:            i,
			Text:             c.Text,
			FacialExpression: c.FacialExpression,
			Animation:        c.Animation,
			Audio:            audio,
			Lipsync:          timeline,
			Language:         language,
		})
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Messages:         messages,
		DetectedLanguage: language,
		ResponseLanguage: language,
	})
}
