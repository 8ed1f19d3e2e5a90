package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrPlaybackFailed indicates the selected playback backend could not play
// a buffer.
var ErrPlaybackFailed = errors.New("audio playback failed")

// Backend identifies the playback strategy. It is chosen once at startup
// and never re-evaluated per chunk.
type Backend int

const (
	// BackendMixer plays through the in-process mixer, no disk I/O.
	BackendMixer Backend = iota
	// BackendExternal writes a temp WAV per buffer and runs a blocking
	// player command on it.
	BackendExternal
)

// String returns the backend name for logging.
func (b Backend) String() string {
	switch b {
	case BackendMixer:
		return "mixer"
	case BackendExternal:
		return "external"
	default:
		return "unknown"
	}
}

// playerCommands are external playback utilities probed in order when no
// command is configured. Each blocks until the file finishes playing.
var playerCommands = [][]string{
	{"afplay"},
	{"aplay", "-q"},
	{"paplay"},
	{"play", "-q"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
}

// ResolvePlayerCommand locates an external playback utility on PATH.
// Returns the command with its blocking-mode arguments, or nil if none is
// installed.
func ResolvePlayerCommand() []string {
	for _, cmd := range playerCommands {
		if _, err := exec.LookPath(cmd[0]); err == nil {
			log.Debug("resolved external player", "command", cmd[0])
			return cmd
		}
	}
	return nil
}

// Sequencer plays buffers strictly in order, returning from Play only
// after the audio is audibly complete. The ordering contract is enforced
// structurally: there is exactly one caller and Play blocks.
type Sequencer struct {
	backend      Backend
	ctx          Context
	playerCmd    []string
	tempDir      string
	pollInterval time.Duration

	// fallback accumulates buffers the mixer could not play; they are
	// retried once as a single batch at the end of the run.
	fallback []Buffer
}

// NewMixerSequencer creates a sequencer backed by the in-process mixer.
func NewMixerSequencer(ctx Context) *Sequencer {
	return &Sequencer{
		backend:      BackendMixer,
		ctx:          ctx,
		pollInterval: 50 * time.Millisecond,
	}
}

// NewExternalSequencer creates a sequencer that shells out to a blocking
// player command for every buffer.
func NewExternalSequencer(playerCmd []string) *Sequencer {
	return &Sequencer{
		backend:      BackendExternal,
		playerCmd:    playerCmd,
		tempDir:      os.TempDir(),
		pollInterval: 50 * time.Millisecond,
	}
}

// Backend returns the backend the sequencer was built with.
func (s *Sequencer) Backend() Backend {
	return s.backend
}

// Play plays one buffer to completion. Silence padding is appended first
// so consecutive chunks do not run together. With the mixer backend a
// per-buffer failure degrades to fallback accumulation instead of
// aborting; with the external backend any failure is fatal.
func (s *Sequencer) Play(b Buffer) error {
	if b.Empty() {
		return nil
	}

	padded := PadSilence(b, InterChunkSilence)

	switch s.backend {
	case BackendExternal:
		return s.playExternal(padded)
	default:
		if err := s.playMixer(padded); err != nil {
			log.Warn("mixer playback failed, buffering for batch fallback",
				"bytes", len(b.Data), "error", err)
			s.fallback = append(s.fallback, b)
		}
		return nil
	}
}

// playMixer frames the buffer as WAV, hands it to the mixer, and blocks
// until the mixer reports idle.
func (s *Sequencer) playMixer(b Buffer) error {
	b = Resample(b, s.ctx.SampleRate())

	blob, err := EncodeWAV(b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}

	// The mixer consumes raw PCM frames, so playback starts past the
	// RIFF header.
	player, err := s.ctx.NewPlayer(bytes.NewReader(blob[WAVHeaderSize:]))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}
	defer player.Close()

	player.Play()
	for player.IsPlaying() {
		time.Sleep(s.pollInterval)
	}

	return nil
}

// playExternal writes the buffer to a uniquely named temp WAV, runs the
// blocking player on it, and removes the file on every exit path.
func (s *Sequencer) playExternal(b Buffer) error {
	blob, err := EncodeWAV(b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}

	path := filepath.Join(s.tempDir, fmt.Sprintf("readerelf-%s.wav", uuid.NewString()))
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return fmt.Errorf("%w: writing temp file: %v", ErrPlaybackFailed, err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove temp audio file", "path", path, "error", err)
		}
	}()

	args := append(append([]string{}, s.playerCmd[1:]...), path)
	cmd := exec.Command(s.playerCmd[0], args...)
	cmd.Stdout = nil
	cmd.Stderr = nil

	log.Debug("playing via external command", "command", s.playerCmd[0], "file", path)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPlaybackFailed, s.playerCmd[0], err)
	}

	return nil
}

// FlushFallback makes one batch attempt at any buffers the mixer refused
// earlier in the run. The attempt is advisory: failures are logged and
// swallowed. It returns the number of buffers that were pending.
func (s *Sequencer) FlushFallback() int {
	n := len(s.fallback)
	if n == 0 {
		return 0
	}

	log.Info("retrying buffered audio as a single batch", "buffers", n)
	batch := Concat(s.fallback, s.ctx.SampleRate())
	s.fallback = nil

	if err := s.playMixer(batch); err != nil {
		log.Warn("batch fallback playback failed", "error", err)
	}
	return n
}

// PendingFallback returns how many buffers are waiting for batch playback.
func (s *Sequencer) PendingFallback() int {
	return len(s.fallback)
}
