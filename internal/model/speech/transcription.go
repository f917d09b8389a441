// Package speech defines the transport models shared between the speech
// services and the HTTP handlers.
package speech

// WordTiming is one word of a transcript with its start/end offsets in
// seconds from the beginning of the audio.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptionResult is the outcome of one recognition call. Words is never
// nil: it is empty when the upstream provides no word-level timings.
type TranscriptionResult struct {
	Text     string       `json:"text"`
	Language string       `json:"language"`
	Duration float64      `json:"duration"`
	Words    []WordTiming `json:"words"`
}
