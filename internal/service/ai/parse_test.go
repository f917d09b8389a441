package ai

import (
	"errors"
	"testing"

	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
)

func TestParseDraftsBareArray(t *testing.T) {
	data := []byte(`[
		{"text": "Hello!", "facialExpression": "smile", "animation": "Talking_1"},
		{"text": "Let's learn.", "facialExpression": "default", "animation": "Talking_0"}
	]`)

	drafts, err := ParseDrafts(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}
	if drafts[0].Text != "Hello!" || drafts[1].Animation != turnmodel.AnimationTalking0 {
		t.Fatalf("drafts not in order: %+v", drafts)
	}
}

func TestParseDraftsWrappedObject(t *testing.T) {
	bare := []byte(`[{"text": "Hi", "facialExpression": "smile", "animation": "Talking_1"}]`)
	wrapped := []byte(`{"messages": [{"text": "Hi", "facialExpression": "smile", "animation": "Talking_1"}]}`)

	fromBare, err := ParseDrafts(bare)
	if err != nil {
		t.Fatalf("bare parse failed: %v", err)
	}
	fromWrapped, err := ParseDrafts(wrapped)
	if err != nil {
		t.Fatalf("wrapped parse failed: %v", err)
	}

	if len(fromBare) != len(fromWrapped) {
		t.Fatalf("shapes normalized differently: %d vs %d", len(fromBare), len(fromWrapped))
	}
	for i := range fromBare {
		if fromBare[i] != fromWrapped[i] {
			t.Fatalf("draft %d differs: %+v vs %+v", i, fromBare[i], fromWrapped[i])
		}
	}
}

func TestParseDraftsRepairsSyntax(t *testing.T) {
	// Trailing comma plus markdown fencing, the usual model damage.
	data := []byte("```json\n[{\"text\": \"Hi\", \"facialExpression\": \"smile\", \"animation\": \"Talking_1\"},]\n```")

	drafts, err := ParseDrafts(data)
	if err != nil {
		t.Fatalf("repairable output rejected: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Text != "Hi" {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}
}

func TestParseDraftsRejectsWrongShape(t *testing.T) {
	for _, data := range []string{
		`"just a string"`,
		`{"reply": "no messages field"}`,
		`[]`,
		`[{"text": "   "}]`,
	} {
		if _, err := ParseDrafts([]byte(data)); !errors.Is(err, ErrMalformedReply) {
			t.Fatalf("input %q: expected ErrMalformedReply, got %v", data, err)
		}
	}
}

func TestParseDraftsClampsToMax(t *testing.T) {
	data := []byte(`[
		{"text": "1", "facialExpression": "smile", "animation": "Talking_1"},
		{"text": "2", "facialExpression": "smile", "animation": "Talking_1"},
		{"text": "3", "facialExpression": "smile", "animation": "Talking_1"},
		{"text": "4", "facialExpression": "smile", "animation": "Talking_1"}
	]`)

	drafts, err := ParseDrafts(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(drafts) != turnmodel.MaxDrafts {
		t.Fatalf("expected clamp to %d, got %d", turnmodel.MaxDrafts, len(drafts))
	}
}

func TestParseDraftsCoercesUnknownTags(t *testing.T) {
	data := []byte(`[{"text": "Hi", "facialExpression": "shocked", "animation": "Backflip"}]`)

	drafts, err := ParseDrafts(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if drafts[0].FacialExpression != turnmodel.ExpressionDefault {
		t.Fatalf("expression not coerced: %q", drafts[0].FacialExpression)
	}
	if drafts[0].Animation != turnmodel.AnimationTalking1 {
		t.Fatalf("animation not coerced: %q", drafts[0].Animation)
	}
}
