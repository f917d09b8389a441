package artifact

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
)

func TestScopesAreIsolated(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	a, err := store.NewScope()
	if err != nil {
		t.Fatalf("scope a: %v", err)
	}
	b, err := store.NewScope()
	if err != nil {
		t.Fatalf("scope b: %v", err)
	}

	if a.TurnID() == b.TurnID() {
		t.Fatalf("scopes share turn id %q", a.TurnID())
	}
	if a.AudioPath(0) == b.AudioPath(0) {
		t.Fatalf("scopes share artifact path %q", a.AudioPath(0))
	}
	if !strings.Contains(a.AudioPath(0), a.TurnID()) {
		t.Fatalf("audio path %q not scoped by turn id %q", a.AudioPath(0), a.TurnID())
	}

	// Files staged in one scope survive the other scope's cleanup.
	if err := os.WriteFile(a.AudioPath(0), []byte("mp3"), 0o644); err != nil {
		t.Fatalf("stage file: %v", err)
	}
	if err := b.Cleanup(); err != nil {
		t.Fatalf("cleanup b: %v", err)
	}
	if _, err := os.Stat(a.AudioPath(0)); err != nil {
		t.Fatalf("scope a artifact lost after scope b cleanup: %v", err)
	}

	if err := a.Cleanup(); err != nil {
		t.Fatalf("cleanup a: %v", err)
	}
	if _, err := os.Stat(a.AudioPath(0)); !os.IsNotExist(err) {
		t.Fatalf("scope a artifact still present after cleanup")
	}
}

func TestCannedAssets(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	audio := []byte("RIFF fake wav")
	if err := os.WriteFile(filepath.Join(root, "intro_0.wav"), audio, 0o644); err != nil {
		t.Fatalf("write canned wav: %v", err)
	}

	tl := &turnmodel.VisemeTimeline{
		Metadata: turnmodel.TimelineMetadata{SoundFile: "intro_0.wav", Duration: 2.0},
		MouthCues: []turnmodel.MouthCue{
			{Start: 0, End: 1, Value: turnmodel.ShapeClosed},
			{Start: 1, End: 2, Value: turnmodel.ShapeA},
		},
	}
	if err := WriteTimeline(filepath.Join(root, "intro_0.json"), tl); err != nil {
		t.Fatalf("write canned timeline: %v", err)
	}

	encoded, err := store.CannedAudio("intro_0")
	if err != nil {
		t.Fatalf("read canned audio: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("canned audio not base64: %v", err)
	}
	if string(decoded) != string(audio) {
		t.Fatalf("canned audio round trip mismatch")
	}

	got, err := store.CannedTimeline("intro_0")
	if err != nil {
		t.Fatalf("read canned timeline: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("canned timeline invalid after round trip: %v", err)
	}
	if got.Metadata.Duration != 2.0 || len(got.MouthCues) != 2 {
		t.Fatalf("canned timeline mismatch: %+v", got)
	}
}
