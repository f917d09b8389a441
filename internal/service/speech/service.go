// Package speech wraps the external speech upstream: text-to-speech
// synthesis into per-turn staged files and audio transcription with
// word-level timings.
package speech

import (
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/aibekm/tildos/backend/internal/config"
	"github.com/aibekm/tildos/backend/pkg/resilience"
)

// Voice describes one selectable synthesis voice.
type Voice struct {
	VoiceID  string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Service talks to the speech upstream for both synthesis and recognition.
type Service struct {
	client *openai.Client
	cfg    config.SpeechConfig
	retry  *resilience.RetryConfig
}

// NewService creates the speech client. Callers must not construct a Service
// without credentials; gate on cfg.Enabled() first.
func NewService(cfg config.SpeechConfig, retry *resilience.RetryConfig) *Service {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	if retry == nil {
		retry = resilience.DefaultRetryConfig()
	}

	return &Service{client: &client, cfg: cfg, retry: retry}
}

// Voices enumerates the available premade synthesis voices.
func (s *Service) Voices() []Voice {
	return PremadeVoices()
}

// PremadeVoices is the static catalog of selectable voices; it does not
// depend on upstream credentials.
func PremadeVoices() []Voice {
	return []Voice{
		{VoiceID: "alloy", Name: "Alloy", Category: "premade"},
		{VoiceID: "echo", Name: "Echo", Category: "premade"},
		{VoiceID: "fable", Name: "Fable", Category: "premade"},
		{VoiceID: "onyx", Name: "Onyx", Category: "premade"},
		{VoiceID: "nova", Name: "Nova", Category: "premade"},
		{VoiceID: "shimmer", Name: "Shimmer", Category: "premade"},
	}
}
