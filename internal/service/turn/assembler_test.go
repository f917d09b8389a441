package turn

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/aibekm/tildos/backend/internal/artifact"
	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
	"github.com/aibekm/tildos/backend/internal/service/lipsync"
)

// fakeSynth writes deterministic bytes into the scope like the real
// synthesizer does, failing once the configured index is reached.
type fakeSynth struct {
	failAt int // -1 never fails
	calls  int
}

func (f *fakeSynth) Synthesize(_ context.Context, text, _ string, scope *artifact.Scope, index int) (string, error) {
	f.calls++
	if f.failAt >= 0 && index == f.failAt {
		return "", errors.New("upstream refused")
	}
	path := scope.AudioPath(index)
	if err := os.WriteFile(path, []byte("mp3:"+text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeConv struct {
	failAt int
}

func (f *fakeConv) Convert(_ context.Context, inputPath string) (string, error) {
	if f.failAt >= 0 && strings.Contains(inputPath, fmt.Sprintf("message_%d.mp3", f.failAt)) {
		return "", errors.New("transcode exploded")
	}
	wavPath := strings.TrimSuffix(inputPath, ".mp3") + ".wav"
	if err := os.WriteFile(wavPath, []byte("wav"), 0o644); err != nil {
		return "", err
	}
	return wavPath, nil
}

func testDrafts(n int) []turnmodel.Draft {
	drafts := make([]turnmodel.Draft, n)
	for i := range drafts {
		drafts[i] = turnmodel.Draft{
			Text:             fmt.Sprintf("reply %d", i),
			FacialExpression: turnmodel.ExpressionSmile,
			Animation:        turnmodel.AnimationTalking1,
		}
	}
	return drafts
}

func newTestAssembler(t *testing.T, synth Synthesizer, conv Converter) (*Assembler, *artifact.Store) {
	t.Helper()
	store, err := artifact.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return NewAssembler(store, synth, conv, lipsync.PlaceholderBuilder{}), store
}

func TestAssembleProducesOrderedMessages(t *testing.T) {
	asm, _ := newTestAssembler(t, &fakeSynth{failAt: -1}, &fakeConv{failAt: -1})

	messages, err := asm.Assemble(context.Background(), testDrafts(3), "en")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if err := turnmodel.ValidateOrdering(messages); err != nil {
		t.Fatalf("ordering invariant violated: %v", err)
	}
	for i, msg := range messages {
		if msg.Text != fmt.Sprintf("reply %d", i) {
			t.Errorf("message %d carries text %q", i, msg.Text)
		}
		if msg.Language != "en" {
			t.Errorf("message %d language = %q, want en", i, msg.Language)
		}
		if err := msg.Lipsync.Validate(); err != nil {
			t.Errorf("message %d timeline invalid: %v", i, err)
		}
	}
}

func TestAssembleFailureAbortsWholeTurn(t *testing.T) {
	tests := []struct {
		name      string
		synth     Synthesizer
		conv      Converter
		wantStage Stage
		wantIndex int
	}{
		{"synthesis", &fakeSynth{failAt: 1}, &fakeConv{failAt: -1}, StageSynthesis, 1},
		{"conversion", &fakeSynth{failAt: -1}, &fakeConv{failAt: 2}, StageConversion, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm, _ := newTestAssembler(t, tt.synth, tt.conv)

			messages, err := asm.Assemble(context.Background(), testDrafts(3), "en")
			if err == nil {
				t.Fatal("expected assembly error")
			}
			if messages != nil {
				t.Fatalf("partial result escaped: %d messages", len(messages))
			}

			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				t.Fatalf("error %v is not a stage error", err)
			}
			if stageErr.Stage != tt.wantStage || stageErr.Index != tt.wantIndex {
				t.Fatalf("got stage %s index %d, want %s index %d",
					stageErr.Stage, stageErr.Index, tt.wantStage, tt.wantIndex)
			}
		})
	}
}

func TestAssembleStreamCleansUpArtifacts(t *testing.T) {
	asm, store := newTestAssembler(t, &fakeSynth{failAt: -1}, &fakeConv{failAt: -1})

	var streamed int
	err := asm.AssembleStream(context.Background(), testDrafts(2), "ru", func(m turnmodel.ReplyMessage) error {
		if m.Index != streamed {
			t.Fatalf("streamed out of order: got index %d at position %d", m.Index, streamed)
		}
		streamed++
		return nil
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if streamed != 2 {
		t.Fatalf("streamed %d messages, want 2", streamed)
	}

	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("read staging root: %v", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			t.Fatalf("turn directory %s survived cleanup", e.Name())
		}
	}
}

func TestAssembleStreamStopsAfterCallbackError(t *testing.T) {
	synth := &fakeSynth{failAt: -1}
	asm, _ := newTestAssembler(t, synth, &fakeConv{failAt: -1})

	wantErr := errors.New("client went away")
	err := asm.AssembleStream(context.Background(), testDrafts(3), "en", func(turnmodel.ReplyMessage) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want callback error", err)
	}
	if synth.calls != 1 {
		t.Fatalf("pipeline kept running after callback error: %d synth calls", synth.calls)
	}
}
