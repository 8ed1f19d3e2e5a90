package audio

import "io"

// Context abstracts the in-memory mixer so the sequencer can run against
// real hardware or a mock in tests.
type Context interface {
	// NewPlayer creates a player for PCM data read from r.
	NewPlayer(r io.Reader) (Player, error)

	// SampleRate returns the fixed rate the mixer was initialized with.
	// Buffers at other rates are resampled before playback.
	SampleRate() int

	// Close releases the mixer. Close errors are advisory.
	Close() error
}

// Player plays one stream of PCM data.
type Player interface {
	// Play starts playback without blocking.
	Play()

	// IsPlaying reports whether audio is still audible. The sequencer
	// polls this to implement play-to-completion.
	IsPlaying() bool

	// Close releases the player.
	Close() error
}
