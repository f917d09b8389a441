package turn

import "fmt"

// Stage names one step of the turn pipeline for error reporting.
type Stage string

const (
	StageRecognition Stage = "recognition"
	StageComposition Stage = "composition"
	StageSynthesis   Stage = "synthesis"
	StageConversion  Stage = "conversion"
	StageTimeline    Stage = "timeline"
	StageEncoding    Stage = "encoding"
)

// StageError reports which pipeline stage failed and, for per-message
// stages, at which message index. A stage failure aborts the whole turn; no
// partial message list reaches the caller.
type StageError struct {
	Stage Stage
	Index int // -1 for turn-level stages
	Err   error
}

func (e *StageError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed at message %d: %v", e.Stage, e.Index, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, index int, err error) error {
	return &StageError{Stage: stage, Index: index, Err: err}
}
