package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"go.uber.org/zap"

	speechmodel "github.com/aibekm/tildos/backend/internal/model/speech"
	"github.com/aibekm/tildos/backend/pkg/logger"
	"github.com/aibekm/tildos/backend/pkg/resilience"
)

// verbosePayload is the verbose_json transcription body. The SDK's typed
// result only surfaces the text, so the language, duration and word timings
// are decoded from the raw response.
type verbosePayload struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Words    []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

// Transcribe converts recorded audio into text with word-level timings. A
// languageHint of "auto" (or empty) lets the upstream detect the spoken
// language; anything else is passed through as a declared language code.
func (s *Service) Transcribe(ctx context.Context, audioPath, languageHint string) (*speechmodel.TranscriptionResult, error) {
	var transcription *openai.Transcription

	err := resilience.RetryWithExponentialBackoff(ctx, s.retry, func() error {
		f, err := os.Open(audioPath)
		if err != nil {
			return err
		}
		defer f.Close()

		params := openai.AudioTranscriptionNewParams{
			Model:                  openai.AudioModel(s.cfg.STTModel),
			File:                   f,
			ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
			TimestampGranularities: []string{"word"},
		}
		if languageHint != "" && languageHint != "auto" {
			params.Language = param.NewOpt(languageHint)
		}

		transcription, err = s.client.Audio.Transcriptions.New(ctx, params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("speech recognition failed: %w", err)
	}

	var verbose verbosePayload
	if err := json.Unmarshal([]byte(transcription.RawJSON()), &verbose); err != nil {
		return nil, fmt.Errorf("speech recognition failed: decode verbose payload: %w", err)
	}

	language := verbose.Language
	if language == "" && languageHint != "" && languageHint != "auto" {
		language = languageHint
	}

	words := make([]speechmodel.WordTiming, 0, len(verbose.Words))
	for _, w := range verbose.Words {
		words = append(words, speechmodel.WordTiming{Word: w.Word, Start: w.Start, End: w.End})
	}

	result := &speechmodel.TranscriptionResult{
		Text:     transcription.Text,
		Language: language,
		Duration: verbose.Duration,
		Words:    words,
	}

	logger.Info("transcription completed",
		zap.String("language", result.Language),
		zap.Float64("duration", result.Duration),
		zap.Int("words", len(result.Words)))
	return result, nil
}
