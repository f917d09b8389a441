// Package turn defines the data model for one conversational turn: the
// reply drafts produced by generation and the finished multimedia messages
// returned to the client.
package turn

import "fmt"

// Facial expression tags the generation model may assign to a message.
const (
	ExpressionSmile     = "smile"
	ExpressionSad       = "sad"
	ExpressionAngry     = "angry"
	ExpressionSurprised = "surprised"
	ExpressionFunnyFace = "funnyFace"
	ExpressionDefault   = "default"
)

// Animation tags the generation model may assign to a message.
const (
	AnimationTalking0  = "Talking_0"
	AnimationTalking1  = "Talking_1"
	AnimationTalking2  = "Talking_2"
	AnimationCrying    = "Crying"
	AnimationLaughing  = "Laughing"
	AnimationRumba     = "Rumba"
	AnimationIdle      = "Idle"
	AnimationTerrified = "Terrified"
	AnimationAngry     = "Angry"
)

// Expressions lists every valid facial expression tag.
var Expressions = []string{
	ExpressionSmile, ExpressionSad, ExpressionAngry,
	ExpressionSurprised, ExpressionFunnyFace, ExpressionDefault,
}

// Animations lists every valid animation tag.
var Animations = []string{
	AnimationTalking0, AnimationTalking1, AnimationTalking2,
	AnimationCrying, AnimationLaughing, AnimationRumba,
	AnimationIdle, AnimationTerrified, AnimationAngry,
}

// MaxDrafts caps the number of reply messages per turn.
const MaxDrafts = 3

// Draft is one reply unit as produced by generation, before audio and
// lip-sync artifacts are attached.
type Draft struct {
	Text             string `json:"text"`
	FacialExpression string `json:"facialExpression"`
	Animation        string `json:"animation"`
}

// ReplyMessage is one finished reply unit. Index is the message's position
// in the turn and the join key across all derived artifacts.
type ReplyMessage struct {
	Index            int             `json:"index"`
	Text             string          `json:"text"`
	FacialExpression string          `json:"facialExpression"`
	Animation        string          `json:"animation"`
	Audio            string          `json:"audio"` // base64-encoded mp3
	Lipsync          *VisemeTimeline `json:"lipsync"`
	Language         string          `json:"language"`
}

// Turn is one complete processing of a user utterance.
type Turn struct {
	ID       string
	Language string
	Messages []ReplyMessage
}

// ValidateOrdering checks that message indices are exactly 0..len-1 and that
// every message carries audio and a timeline.
func ValidateOrdering(msgs []ReplyMessage) error {
	for i, m := range msgs {
		if m.Index != i {
			return fmt.Errorf("message %d has index %d", i, m.Index)
		}
		if m.Audio == "" {
			return fmt.Errorf("message %d has no audio", i)
		}
		if m.Lipsync == nil {
			return fmt.Errorf("message %d has no lipsync timeline", i)
		}
	}
	return nil
}
