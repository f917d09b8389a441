// Package artifact manages the staged files a turn produces: synthesized
// audio, converted waveforms, and viseme timelines. Every turn stages its
// files under its own directory so concurrent turns cannot collide, and the
// pre-baked greeting/fallback assets live at fixed paths in the staging root.
package artifact

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	turnmodel "github.com/aibekm/tildos/backend/internal/model/turn"
)

// Store owns the staging root directory.
type Store struct {
	root string
}

// NewStore creates the staging root if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Root returns the staging root directory.
func (s *Store) Root() string {
	return s.root
}

// Scope is the artifact namespace of one turn.
type Scope struct {
	turnID string
	dir    string
}

// NewScope allocates a fresh per-turn directory.
func (s *Store) NewScope() (*Scope, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create turn dir %s: %w", dir, err)
	}
	return &Scope{turnID: id, dir: dir}, nil
}

// TurnID returns the identifier scoping this turn's artifacts.
func (sc *Scope) TurnID() string {
	return sc.turnID
}

// AudioPath is the synthesized mp3 for the index-th message.
func (sc *Scope) AudioPath(index int) string {
	return filepath.Join(sc.dir, fmt.Sprintf("message_%d.mp3", index))
}

// WavePath is the converted waveform for the index-th message.
func (sc *Scope) WavePath(index int) string {
	return filepath.Join(sc.dir, fmt.Sprintf("message_%d.wav", index))
}

// TimelinePath is the viseme timeline JSON for the index-th message.
func (sc *Scope) TimelinePath(index int) string {
	return filepath.Join(sc.dir, fmt.Sprintf("message_%d.json", index))
}

// Cleanup removes the turn's staged files. The encoded payloads live in the
// response by then, so this runs on every exit path.
func (sc *Scope) Cleanup() error {
	return os.RemoveAll(sc.dir)
}

// CannedAudio returns the base64 payload of a pre-baked audio asset
// (e.g. "intro_0") stored at the staging root.
func (s *Store) CannedAudio(name string) (string, error) {
	return EncodeAudioFile(filepath.Join(s.root, name+".wav"))
}

// CannedTimeline returns a pre-baked timeline asset stored at the staging root.
func (s *Store) CannedTimeline(name string) (*turnmodel.VisemeTimeline, error) {
	return ReadTimeline(filepath.Join(s.root, name+".json"))
}

// EncodeAudioFile reads an audio file and returns it base64-encoded.
func EncodeAudioFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ReadTimeline loads a viseme timeline artifact from disk.
func ReadTimeline(path string) (*turnmodel.VisemeTimeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeline %s: %w", path, err)
	}
	var tl turnmodel.VisemeTimeline
	if err := json.Unmarshal(data, &tl); err != nil {
		return nil, fmt.Errorf("decode timeline %s: %w", path, err)
	}
	return &tl, nil
}

// WriteTimeline persists a viseme timeline artifact to disk.
func WriteTimeline(path string, tl *turnmodel.VisemeTimeline) error {
	data, err := json.MarshalIndent(tl, "", "  ")
	if err != nil {
		return fmt.Errorf("encode timeline: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write timeline %s: %w", path, err)
	}
	return nil
}
