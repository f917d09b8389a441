package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config aggregates every setting the service reads.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Speech   SpeechConfig
	Pipeline PipelineConfig
}

// Load reads configuration from the environment (plus an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	return &cfg, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port  string `env:"PORT" env-default:"3000"`
	Debug bool   `env:"DEBUG" env-default:"false"`
}

// Addr returns the listen address. PORT may be a bare port or a full address.
func (c ServerConfig) Addr() string {
	port := strings.TrimSpace(c.Port)
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// AIConfig describes the reply-generation model.
type AIConfig struct {
	APIKey      string  `env:"ARK_API_KEY"`
	AccessKey   string  `env:"ARK_ACCESS_KEY"`
	SecretKey   string  `env:"ARK_SECRET_KEY"`
	Model       string  `env:"ARK_MODEL"`
	BaseURL     string  `env:"ARK_BASE_URL" env-default:"https://ark.cn-beijing.volces.com/api/v3"`
	Region      string  `env:"ARK_REGION" env-default:"cn-beijing"`
	Temperature float64 `env:"ARK_TEMPERATURE" env-default:"0.6"`
	MaxTokens   int     `env:"ARK_MAX_TOKENS" env-default:"1000"`
}

// Enabled reports whether generation credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates the chat model instance from this configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("generation credentials missing: set ARK_API_KEY (or AK/SK pair) and ARK_MODEL")
	}

	temperature := float32(c.Temperature)
	maxTokens := c.MaxTokens

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
}

// SpeechConfig describes the synthesis/recognition upstream.
type SpeechConfig struct {
	APIKey   string `env:"OPENAI_API_KEY"`
	BaseURL  string `env:"OPENAI_BASE_URL"`
	TTSModel string `env:"OPENAI_TTS_MODEL" env-default:"gpt-4o-mini-tts"`
	TTSVoice string `env:"OPENAI_TTS_VOICE" env-default:"nova"`
	STTModel string `env:"OPENAI_STT_MODEL" env-default:"whisper-1"`
}

// Enabled reports whether speech credentials are present.
func (c SpeechConfig) Enabled() bool {
	return c.APIKey != ""
}

// PipelineConfig describes turn staging and external tooling.
type PipelineConfig struct {
	StagingDir     string `env:"ARTIFACT_DIR" env-default:"audios"`
	UploadDir      string `env:"UPLOAD_DIR" env-default:"uploads"`
	FFmpegPath     string `env:"FFMPEG_PATH" env-default:"ffmpeg"`
	RetryAttempts  int    `env:"UPSTREAM_RETRY_ATTEMPTS" env-default:"1"`
	TurnTimeoutSec int    `env:"TURN_TIMEOUT_SECONDS" env-default:"60"`
}

// TurnTimeout returns the per-turn upstream deadline.
func (c PipelineConfig) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeoutSec) * time.Second
}
