// Package lipsync derives mouth-shape timelines for lip animation from
// synthesized speech waveforms.
package lipsync

import (
	"context"
	"fmt"

	"github.com/aibekm/tildos/backend/internal/artifact"
	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
)

// Builder derives a viseme timeline from a converted waveform and persists
// it at the scope's index-th timeline path. Implementations must satisfy the
// cue contiguity invariant of turn.VisemeTimeline.
type Builder interface {
	Build(ctx context.Context, wavPath string, scope *artifact.Scope, index int) (*turnmodel.VisemeTimeline, error)
}

// PlaceholderBuilder emits a fixed timeline regardless of the actual audio
// content: 2.0 seconds split into four half-second cues with a
// closed-open-wide-closed progression. It is NOT phoneme analysis; it stands
// in behind the Builder contract until a real analyzer (e.g. Rhubarb) is
// plugged in.
type PlaceholderBuilder struct{}

const (
	placeholderDuration = 2.0
	placeholderCue      = 0.5
)

// Build writes and returns the placeholder timeline for the given message.
func (PlaceholderBuilder) Build(ctx context.Context, wavPath string, scope *artifact.Scope, index int) (*turnmodel.VisemeTimeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tl := &turnmodel.VisemeTimeline{
		Metadata: turnmodel.TimelineMetadata{
			SoundFile: wavPath,
			Duration:  placeholderDuration,
		},
		MouthCues: []turnmodel.MouthCue{
			{Start: 0.0, End: 0.5, Value: turnmodel.ShapeClosed},
			{Start: 0.5, End: 1.0, Value: turnmodel.ShapeA},
			{Start: 1.0, End: 1.5, Value: turnmodel.ShapeB},
			{Start: 1.5, End: 2.0, Value: turnmodel.ShapeClosed},
		},
	}

	if err := tl.Validate(); err != nil {
		return nil, fmt.Errorf("placeholder timeline invalid: %w", err)
	}

	if err := artifact.WriteTimeline(scope.TimelinePath(index), tl); err != nil {
		return nil, err
	}

	return tl, nil
}
