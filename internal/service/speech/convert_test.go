package speech

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeFakeTool stages a shell script standing in for ffmpeg.
func writeFakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("stage fake tool: %v", err)
	}
	return path
}

func TestConvertWritesWavNextToInput(t *testing.T) {
	// Mirrors the real invocation: ffmpeg -y -i <in> <out>.
	tool := writeFakeTool(t, "#!/bin/sh\ncp \"$3\" \"$4\"\n")
	conv := NewConverter(tool)

	inputPath := filepath.Join(t.TempDir(), "message_0.mp3")
	if err := os.WriteFile(inputPath, []byte("mp3"), 0o644); err != nil {
		t.Fatalf("stage input: %v", err)
	}

	outputPath, err := conv.Convert(context.Background(), inputPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if want := strings.TrimSuffix(inputPath, ".mp3") + ".wav"; outputPath != want {
		t.Fatalf("output = %q, want %q", outputPath, want)
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Fatalf("output not written: %v", err)
	}
}

func TestConvertSurfacesToolFailure(t *testing.T) {
	tool := writeFakeTool(t, "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n")
	conv := NewConverter(tool)

	_, err := conv.Convert(context.Background(), filepath.Join(t.TempDir(), "message_0.mp3"))
	if err == nil {
		t.Fatal("expected conversion error")
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("error should carry the tool output: %v", err)
	}
}

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a/b/message_0.mp3", "a/b/message_0.wav"},
		{"noext", "noext.wav"},
		{"a.b/file", "a.b/file.wav"},
	}
	for _, tt := range tests {
		if got := replaceExt(tt.in, ".wav"); got != tt.want {
			t.Errorf("replaceExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
