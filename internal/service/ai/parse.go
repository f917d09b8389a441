package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
)

// ErrMalformedReply reports generation output that matched neither accepted
// shape. The whole turn fails; there is no partial recovery.
var ErrMalformedReply = errors.New("malformed generation output")

// draftEnvelope is the wrapped output shape some models emit instead of a
// bare array.
type draftEnvelope struct {
	Messages []turnmodel.Draft `json:"messages"`
}

// ParseDrafts normalizes generation output into an ordered draft list. Two
// shapes are accepted: a bare JSON array of drafts, or an object wrapping
// the array under "messages". Syntax damage is repaired before parsing;
// shape mismatches are not.
func ParseDrafts(data []byte) ([]turnmodel.Draft, error) {
	data = bytes.TrimSpace(data)

	var drafts []turnmodel.Draft
	if err := unmarshalJSON(data, &drafts); err != nil {
		var envelope draftEnvelope
		if err := unmarshalJSON(data, &envelope); err != nil || envelope.Messages == nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedReply, truncate(string(data), 200))
		}
		drafts = envelope.Messages
	}

	drafts = sanitize(drafts)
	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: no usable messages", ErrMalformedReply)
	}
	if len(drafts) > turnmodel.MaxDrafts {
		drafts = drafts[:turnmodel.MaxDrafts]
	}
	return drafts, nil
}

// sanitize drops empty drafts and coerces out-of-set tags to defaults.
func sanitize(drafts []turnmodel.Draft) []turnmodel.Draft {
	out := drafts[:0]
	for _, d := range drafts {
		d.Text = strings.TrimSpace(d.Text)
		if d.Text == "" {
			continue
		}
		if !contains(turnmodel.Expressions, d.FacialExpression) {
			d.FacialExpression = turnmodel.ExpressionDefault
		}
		if !contains(turnmodel.Animations, d.Animation) {
			d.Animation = turnmodel.AnimationTalking1
		}
		out = append(out, d)
	}
	return out
}

// unmarshalJSON unmarshals data into v, attempting to repair malformed JSON.
// If the initial unmarshal fails with a syntax error, it tries to repair the
// JSON using jsonrepair before retrying.
func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
