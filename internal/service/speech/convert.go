package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Converter rewrites synthesized audio into the waveform format required by
// viseme analysis, by shelling out to ffmpeg.
type Converter struct {
	ffmpegPath string
}

// NewConverter returns a Converter using the given ffmpeg binary (a name
// resolved via PATH or an absolute path).
func NewConverter(ffmpegPath string) *Converter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Converter{ffmpegPath: ffmpegPath}
}

// Convert transcodes inputPath into a wav next to it (same stem) and returns
// the output path. Any tool failure aborts the message's pipeline; there is
// no fallback to the unconverted file.
func (c *Converter) Convert(ctx context.Context, inputPath string) (string, error) {
	outputPath := replaceExt(inputPath, ".wav")

	cmd := exec.CommandContext(ctx, c.ffmpegPath, "-y", "-i", inputPath, outputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("audio conversion failed: %s: %w: %s", c.ffmpegPath, err, tail(string(out), 300))
	}

	return outputPath, nil
}

func replaceExt(path, ext string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndexAny(path, "/\\") {
		return path[:i] + ext
	}
	return path + ext
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
