package turn

import (
	"context"
	"os"

	"go.uber.org/zap"

	speechmodel "github.com/aibekm/tildos/backend/internal/model/speech"
	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
	"github.com/aibekm/tildos/backend/pkg/logger"
)

// Recognizer transcribes recorded audio with word-level timings.
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath, languageHint string) (*speechmodel.TranscriptionResult, error)
}

// Composer produces the ordered reply drafts for a user message.
type Composer interface {
	Compose(ctx context.Context, userMessage, languageTag string) ([]turnmodel.Draft, error)
}

// Orchestrator composes recognition, generation and assembly into complete
// turns.
type Orchestrator struct {
	recognizer Recognizer
	composer   Composer
	assembler  *Assembler
}

// NewOrchestrator wires the full turn pipeline.
func NewOrchestrator(recognizer Recognizer, composer Composer, assembler *Assembler) *Orchestrator {
	return &Orchestrator{recognizer: recognizer, composer: composer, assembler: assembler}
}

// Assembler exposes the underlying assembler for callers that stream
// messages as they finish.
func (o *Orchestrator) Assembler() *Assembler {
	return o.assembler
}

// VoiceTurnResult is the outcome of one voice-in/voice-out turn.
type VoiceTurnResult struct {
	Transcription *speechmodel.TranscriptionResult
	Messages      []turnmodel.ReplyMessage
	Language      string
}

// HandleTextTurn composes and assembles a reply for a typed message in the
// given language.
func (o *Orchestrator) HandleTextTurn(ctx context.Context, userMessage, languageTag string) ([]turnmodel.ReplyMessage, error) {
	drafts, err := o.composer.Compose(ctx, userMessage, languageTag)
	if err != nil {
		return nil, stageErr(StageComposition, -1, err)
	}
	return o.assembler.Assemble(ctx, drafts, languageTag)
}

// HandleVoiceTurn transcribes the uploaded audio and replies in the language
// the user was detected to actually speak; the caller's preferred hint only
// seeds recognition. The orchestrator takes ownership of uploadPath and
// deletes it exactly once on every exit path, before any error surfaces.
func (o *Orchestrator) HandleVoiceTurn(ctx context.Context, uploadPath, preferredHint string) (*VoiceTurnResult, error) {
	defer func() {
		if err := os.Remove(uploadPath); err != nil {
			logger.Warn("failed to clean up uploaded audio",
				zap.String("path", uploadPath), zap.Error(err))
		}
	}()

	transcription, err := o.recognizer.Transcribe(ctx, uploadPath, preferredHint)
	if err != nil {
		return nil, stageErr(StageRecognition, -1, err)
	}

	language := transcription.Language

	messages, err := o.HandleTextTurn(ctx, transcription.Text, language)
	if err != nil {
		return nil, err
	}

	return &VoiceTurnResult{
		Transcription: transcription,
		Messages:      messages,
		Language:      language,
	}, nil
}
