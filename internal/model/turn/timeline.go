package turn

import "fmt"

// Mouth shape symbols, the Rhubarb alphabet: X is the closed rest shape,
// A through H are progressively opened or rounded mouth positions.
const (
	ShapeClosed = "X"
	ShapeA      = "A"
	ShapeB      = "B"
	ShapeC      = "C"
	ShapeD      = "D"
	ShapeE      = "E"
	ShapeF      = "F"
	ShapeG      = "G"
	ShapeH      = "H"
)

// MouthCue is one timed mouth shape. Times are seconds from message start.
type MouthCue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Value string  `json:"value"`
}

// TimelineMetadata describes the audio a timeline was derived from.
type TimelineMetadata struct {
	SoundFile string  `json:"soundFile"`
	Duration  float64 `json:"duration"`
}

// VisemeTimeline is a contiguous sequence of mouth cues covering the whole
// declared duration of one message's audio.
type VisemeTimeline struct {
	Metadata  TimelineMetadata `json:"metadata"`
	MouthCues []MouthCue       `json:"mouthCues"`
}

// Validate checks the cue contiguity invariant: cues start at 0, each cue
// ends where the next begins, every cue has start < end, and the last cue
// ends at the declared duration.
func (t *VisemeTimeline) Validate() error {
	if len(t.MouthCues) == 0 {
		return fmt.Errorf("timeline has no cues")
	}
	if t.MouthCues[0].Start != 0 {
		return fmt.Errorf("first cue starts at %g, want 0", t.MouthCues[0].Start)
	}
	for i, cue := range t.MouthCues {
		if cue.Start >= cue.End {
			return fmt.Errorf("cue %d: start %g >= end %g", i, cue.Start, cue.End)
		}
		if i > 0 && t.MouthCues[i-1].End != cue.Start {
			return fmt.Errorf("cue %d starts at %g, previous ends at %g", i, cue.Start, t.MouthCues[i-1].End)
		}
	}
	if last := t.MouthCues[len(t.MouthCues)-1].End; last != t.Metadata.Duration {
		return fmt.Errorf("last cue ends at %g, declared duration is %g", last, t.Metadata.Duration)
	}
	return nil
}
