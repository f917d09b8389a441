package speech

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/openai/openai-go"
	"go.uber.org/zap"

	"github.com/aibekm/tildos/backend/internal/artifact"
	"github.com/aibekm/tildos/backend/pkg/logger"
	"github.com/aibekm/tildos/backend/pkg/resilience"
)

// Synthesize renders text to speech and writes the mp3 at the scope's
// index-th audio path, returning that path. The language hint is advisory:
// the upstream detects the language from the text itself, so the hint is
// only logged.
func (s *Service) Synthesize(ctx context.Context, text, languageHint string, scope *artifact.Scope, index int) (string, error) {
	if text == "" {
		return "", fmt.Errorf("synthesis input text is empty")
	}

	outputPath := scope.AudioPath(index)
	logger.Debug("synthesizing speech",
		zap.String("turn", scope.TurnID()),
		zap.Int("index", index),
		zap.String("language", languageHint))

	err := resilience.RetryWithExponentialBackoff(ctx, s.retry, func() error {
		res, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
			Model: openai.SpeechModel(s.cfg.TTSModel),
			Voice: openai.AudioSpeechNewParamsVoice(s.cfg.TTSVoice),
			Input: text,
		})
		if err != nil {
			return err
		}
		defer res.Body.Close()

		out, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer out.Close()

		if _, err := io.Copy(out, res.Body); err != nil {
			// A partially written file is not usable audio.
			os.Remove(outputPath)
			return err
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("speech synthesis failed: %w", err)
	}

	return outputPath, nil
}
