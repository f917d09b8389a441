// Package voice serves the audio-upload surface: transcription and the full
// voice-in/voice-out chat flow.
package voice

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	speechmodel "github.com/aibekm/tildos/backend/internal/model/speech"
	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
	turnsvc "github.com/aibekm/tildos/backend/internal/service/turn"
	"github.com/aibekm/tildos/backend/pkg/logger"
	"github.com/aibekm/tildos/backend/pkg/utils"
)

// maxUploadBytes caps uploads at the recognition upstream's 25 MB limit.
const maxUploadBytes = 25 << 20

// Handler serves /transcribe and /voice-chat. The recognizer is nil when the
// speech upstream is unconfigured; the orchestrator is nil when any part of
// the reply pipeline is unconfigured.
type Handler struct {
	recognizer turnsvc.Recognizer
	orch       *turnsvc.Orchestrator
	uploadDir  string
	timeout    time.Duration
}

// New creates the voice handler.
func New(recognizer turnsvc.Recognizer, orch *turnsvc.Orchestrator, uploadDir string, timeout time.Duration) *Handler {
	return &Handler{recognizer: recognizer, orch: orch, uploadDir: uploadDir, timeout: timeout}
}

// RegisterRoutes attaches the voice routes to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/transcribe", h.handleTranscribe)
	r.Post("/voice-chat", h.handleVoiceChat)
}

type transcribeResponse struct {
	Success          bool                     `json:"success"`
	Transcription    string                   `json:"transcription"`
	Language         string                   `json:"language"`
	Duration         float64                  `json:"duration"`
	Words            []speechmodel.WordTiming `json:"words"`
	DetectedLanguage string                   `json:"detectedLanguage"`
}

type voiceChatResponse struct {
	Success          bool                             `json:"success"`
	Transcription    *speechmodel.TranscriptionResult `json:"transcription"`
	Response         voiceChatReply                   `json:"response"`
	DetectedLanguage string                           `json:"detectedLanguage"`
	Flow             string                           `json:"flow"`
}

type voiceChatReply struct {
	Messages         []turnmodel.ReplyMessage `json:"messages"`
	DetectedLanguage string                   `json:"detectedLanguage"`
	ResponseLanguage string                   `json:"responseLanguage"`
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if h.recognizer == nil {
		utils.RespondError(w, http.StatusBadRequest,
			"speech service not configured. Please add your API key to the .env file.")
		return
	}

	uploadPath, ok := h.saveUpload(w, r)
	if !ok {
		return
	}
	defer h.removeUpload(uploadPath)

	language := r.FormValue("language")
	if language == "" {
		language = "auto"
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.recognizer.Transcribe(ctx, uploadPath, language)
	if err != nil {
		utils.RespondErrorDetails(w, http.StatusInternalServerError,
			"Failed to transcribe audio", err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, transcribeResponse{
		Success:          true,
		Transcription:    result.Text,
		Language:         result.Language,
		Duration:         result.Duration,
		Words:            result.Words,
		DetectedLanguage: result.Language,
	})
}

func (h *Handler) handleVoiceChat(w http.ResponseWriter, r *http.Request) {
	if h.orch == nil {
		utils.RespondError(w, http.StatusBadRequest,
			"voice chat not configured. Please add your API keys to the .env file.")
		return
	}

	uploadPath, ok := h.saveUpload(w, r)
	if !ok {
		return
	}
	// Ownership of the upload passes to the orchestrator, which removes it
	// exactly once on every exit path.

	preferred := r.FormValue("language")
	if preferred == "" {
		preferred = "auto"
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.orch.HandleVoiceTurn(ctx, uploadPath, preferred)
	if err != nil {
		utils.RespondErrorDetails(w, http.StatusInternalServerError,
			"Failed to process voice chat", err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, voiceChatResponse{
		Success:       true,
		Transcription: result.Transcription,
		Response: voiceChatReply{
			Messages:         result.Messages,
			DetectedLanguage: result.Language,
			ResponseLanguage: result.Language,
		},
		DetectedLanguage: result.Language,
		Flow:             "voice-to-voice",
	})
}

// saveUpload validates the multipart upload and stages it as a temporary
// file the caller (or the orchestrator) must remove. On failure it writes
// the error response and returns ok=false.
func (h *Handler) saveUpload(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(1<<20))

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return "", false
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "No audio file provided")
		return "", false
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		utils.RespondError(w, http.StatusBadRequest, "audio file exceeds the 25MB limit")
		return "", false
	}
	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "audio/") {
		utils.RespondError(w, http.StatusBadRequest, "Only audio files are allowed!")
		return "", false
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to stage upload")
		return "", false
	}

	tmp, err := os.CreateTemp(h.uploadDir, "upload-*"+uploadExt(header.Filename))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to stage upload")
		return "", false
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		h.removeUpload(tmp.Name())
		utils.RespondError(w, http.StatusInternalServerError, "failed to stage upload")
		return "", false
	}
	if err := tmp.Close(); err != nil {
		h.removeUpload(tmp.Name())
		utils.RespondError(w, http.StatusInternalServerError, "failed to stage upload")
		return "", false
	}

	return tmp.Name(), true
}

// removeUpload deletes a staged upload; failures are logged and never reach
// the caller.
func (h *Handler) removeUpload(path string) {
	if err := os.Remove(path); err != nil {
		logger.Warn("failed to clean up uploaded audio", zap.String("path", path), zap.Error(err))
	}
}

// uploadExt keeps the original audio extension so the recognition upstream
// can infer the container format.
func uploadExt(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		ext := filename[i:]
		if len(ext) <= 8 && !strings.ContainsAny(ext, "/\\") {
			return ext
		}
	}
	return ".bin"
}
