// Package engine abstracts text-to-speech backends behind a small closed
// set of shapes. A backend is resolved once at startup; call sites switch
// on the declared kind instead of probing capabilities per call.
package engine

import (
	"context"
	"time"

	"github.com/dgnsrekt/reader-elf/internal/audio"
)

// Kind identifies the shape of a backend.
type Kind int

const (
	// KindDirect returns one complete buffer per chunk.
	KindDirect Kind = iota
	// KindStreaming yields ordered sub-buffers per chunk, each carrying
	// its own sample rate.
	KindStreaming
	// KindExternal hands the whole text to a subprocess that manages its
	// own playback; the sequencer is bypassed entirely.
	KindExternal
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindStreaming:
		return "streaming"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Engine is the contract every backend satisfies regardless of shape.
type Engine interface {
	// Name returns the human-readable engine name.
	Name() string

	// Kind declares the backend shape. Callers assert the matching
	// interface below.
	Kind() Kind

	// Validate checks that the engine's dependencies are present. A
	// missing binary or model wraps ErrDependencyMissing; any other
	// load problem wraps ErrBackendUnavailable.
	Validate() error

	// Close releases engine resources. Close errors are advisory.
	Close() error
}

// Direct is an engine that produces one buffer per chunk.
type Direct interface {
	Engine
	Synthesize(ctx context.Context, text string) (audio.Buffer, error)
}

// Chunk is one sub-buffer from a streaming engine.
type Chunk struct {
	Buffer audio.Buffer
	Err    error
}

// Streaming is an engine that yields sub-buffers for a chunk in order.
// The channel closes when the chunk is fully synthesized.
type Streaming interface {
	Engine
	SynthesizeStream(ctx context.Context, text string) (<-chan Chunk, error)
}

// External is an engine that speaks the entire text itself, blocking
// until its process exits.
type External interface {
	Engine
	Speak(ctx context.Context, text string) error
}

// StateResetter is an optional capability. Engines that accumulate state
// between chunks implement it; the orchestrator invokes it before every
// chunk after the first. Absence is not an error.
type StateResetter interface {
	ResetState() error
}

// Config holds backend configuration. DisableParallelism is an explicit
// value handed to engine construction rather than an ambient environment
// mutation.
type Config struct {
	// Model is the model identifier or path understood by the engine.
	Model string

	// Voice selects a voice where the engine supports more than one.
	Voice string

	// Speed is the speech rate multiplier (1.0 = normal).
	Speed float64

	// SampleRate is the PCM rate the engine is expected to produce.
	SampleRate int

	// SynthesisTimeout bounds a single chunk synthesis.
	SynthesisTimeout time.Duration

	// DisableParallelism pins engine subprocesses to a single thread.
	DisableParallelism bool
}

// DefaultConfig returns the baseline engine configuration.
func DefaultConfig() Config {
	return Config{
		Speed:            1.0,
		SampleRate:       audio.DefaultSampleRate,
		SynthesisTimeout: 60 * time.Second,
	}
}
