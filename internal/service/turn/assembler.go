// Package turn orchestrates the reply pipeline: drafts from generation are
// turned one index at a time into finished messages carrying synthesized
// audio and a viseme timeline, and the voice flow chains recognition in
// front of that.
package turn

import (
	"context"

	"go.uber.org/zap"

	"github.com/aibekm/tildos/backend/internal/artifact"
	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
	"github.com/aibekm/tildos/backend/internal/service/lipsync"
	"github.com/aibekm/tildos/backend/pkg/logger"
)

// Synthesizer renders one message's text to an audio file inside the turn
// scope and returns the written path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageHint string, scope *artifact.Scope, index int) (string, error)
}

// Converter transcodes a synthesized audio file into the waveform format the
// timeline builder requires.
type Converter interface {
	Convert(ctx context.Context, inputPath string) (string, error)
}

// Assembler attaches audio and lip-sync artifacts to reply drafts, strictly
// in draft order.
type Assembler struct {
	store *artifact.Store
	synth Synthesizer
	conv  Converter
	lips  lipsync.Builder
}

// NewAssembler wires the per-message pipeline stages.
func NewAssembler(store *artifact.Store, synth Synthesizer, conv Converter, lips lipsync.Builder) *Assembler {
	return &Assembler{store: store, synth: synth, conv: conv, lips: lips}
}

// AssembleEach runs the per-message pipeline sequentially for each draft and
// hands every finished message to fn in index order. The first failure
// aborts the whole assembly with the stage and index identified; fn is never
// called again after an error.
func (a *Assembler) AssembleEach(ctx context.Context, scope *artifact.Scope, drafts []turnmodel.Draft, languageTag string, fn func(turnmodel.ReplyMessage) error) error {
	for i, draft := range drafts {
		audioPath, err := a.synth.Synthesize(ctx, draft.Text, languageTag, scope, i)
		if err != nil {
			return stageErr(StageSynthesis, i, err)
		}

		wavPath, err := a.conv.Convert(ctx, audioPath)
		if err != nil {
			return stageErr(StageConversion, i, err)
		}

		if _, err := a.lips.Build(ctx, wavPath, scope, i); err != nil {
			return stageErr(StageTimeline, i, err)
		}

		// Read the persisted artifact back rather than trusting the
		// in-memory value: the staged JSON is the durable contract.
		timeline, err := artifact.ReadTimeline(scope.TimelinePath(i))
		if err != nil {
			return stageErr(StageTimeline, i, err)
		}

		audio, err := artifact.EncodeAudioFile(audioPath)
		if err != nil {
			return stageErr(StageEncoding, i, err)
		}

		msg := turnmodel.ReplyMessage{
			Index:            i,
			Text:             draft.Text,
			FacialExpression: draft.FacialExpression,
			Animation:        draft.Animation,
			Audio:            audio,
			Lipsync:          timeline,
			Language:         languageTag,
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
	return nil
}

// AssembleStream allocates a turn scope, assembles each draft, and streams
// finished messages through fn. The scope's staged files are removed on
// every exit path; cleanup failures are logged and never surfaced.
func (a *Assembler) AssembleStream(ctx context.Context, drafts []turnmodel.Draft, languageTag string, fn func(turnmodel.ReplyMessage) error) error {
	scope, err := a.store.NewScope()
	if err != nil {
		return stageErr(StageSynthesis, -1, err)
	}
	defer func() {
		if err := scope.Cleanup(); err != nil {
			logger.Warn("failed to clean up turn artifacts",
				zap.String("turn", scope.TurnID()), zap.Error(err))
		}
	}()

	return a.AssembleEach(ctx, scope, drafts, languageTag, fn)
}

// Assemble returns the finished ordered message list for the drafts. Either
// every draft becomes a message or an error is returned; indices in the
// result are exactly 0..len(drafts)-1.
func (a *Assembler) Assemble(ctx context.Context, drafts []turnmodel.Draft, languageTag string) ([]turnmodel.ReplyMessage, error) {
	messages := make([]turnmodel.ReplyMessage, 0, len(drafts))
	err := a.AssembleStream(ctx, drafts, languageTag, func(m turnmodel.ReplyMessage) error {
		messages = append(messages, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}
