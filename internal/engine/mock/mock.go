// Package mock provides configurable in-memory TTS engines for tests.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/dgnsrekt/reader-elf/internal/audio"
	"github.com/dgnsrekt/reader-elf/internal/engine"
)

// Engine is a direct-call mock. It returns a deterministic silent buffer
// per chunk and can be told to fail on specific calls.
type Engine struct {
	mu sync.Mutex

	// SampleRate of generated buffers.
	SampleRate int

	// SamplesPerCall is the buffer size produced per synthesis.
	SamplesPerCall int

	// FailOnCall makes Synthesize fail on the given 1-based calls.
	FailOnCall map[int]bool

	// ValidateErr is returned by Validate when set.
	ValidateErr error

	calls  []string
	resets int
	closed bool
}

// New creates a direct-call mock engine.
func New() *Engine {
	return &Engine{
		SampleRate:     audio.DefaultSampleRate,
		SamplesPerCall: 2205, // 100ms
		FailOnCall:     make(map[int]bool),
	}
}

// Name returns the engine name.
func (e *Engine) Name() string { return "mock" }

// Kind declares the direct-call shape.
func (e *Engine) Kind() engine.Kind { return engine.KindDirect }

// Validate returns the configured validation error, if any.
func (e *Engine) Validate() error { return e.ValidateErr }

// Synthesize records the call and returns a silent buffer.
func (e *Engine) Synthesize(_ context.Context, text string) (audio.Buffer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, text)
	if e.FailOnCall[len(e.calls)] {
		return audio.Buffer{}, fmt.Errorf("%w: mock failure on call %d",
			engine.ErrGenerationFailed, len(e.calls))
	}

	return audio.Buffer{
		Data:       make([]byte, e.SamplesPerCall*audio.BytesPerSample),
		SampleRate: e.SampleRate,
	}, nil
}

// ResetState records a state reset. The orchestrator probes for this
// capability between chunks.
func (e *Engine) ResetState() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resets++
	return nil
}

// Close records shutdown.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Calls returns the synthesized texts in call order.
func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

// Resets returns how many times ResetState ran.
func (e *Engine) Resets() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resets
}

// Closed reports whether Close ran.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// StreamEngine is a streaming-shape mock that yields a fixed number of
// sub-buffers per chunk.
type StreamEngine struct {
	*Engine

	// SubBuffers is how many sub-buffers each chunk yields.
	SubBuffers int

	// SubBufferRates optionally assigns a distinct rate per sub-buffer
	// position, cycling if shorter than SubBuffers.
	SubBufferRates []int
}

// NewStream creates a streaming mock engine.
func NewStream() *StreamEngine {
	return &StreamEngine{
		Engine:     New(),
		SubBuffers: 3,
	}
}

// Kind declares the streaming shape.
func (e *StreamEngine) Kind() engine.Kind { return engine.KindStreaming }

// SynthesizeStream yields the configured sub-buffers in order.
func (e *StreamEngine) SynthesizeStream(_ context.Context, text string) (<-chan engine.Chunk, error) {
	e.mu.Lock()
	e.calls = append(e.calls, text)
	call := len(e.calls)
	fail := e.FailOnCall[call]
	subBuffers := e.SubBuffers
	rates := append([]int(nil), e.SubBufferRates...)
	samples := e.SamplesPerCall
	sampleRate := e.SampleRate
	e.mu.Unlock()

	ch := make(chan engine.Chunk)
	go func() {
		defer close(ch)

		if fail {
			ch <- engine.Chunk{Err: fmt.Errorf("%w: mock stream failure on call %d",
				engine.ErrGenerationFailed, call)}
			return
		}

		for i := 0; i < subBuffers; i++ {
			rate := sampleRate
			if len(rates) > 0 {
				rate = rates[i%len(rates)]
			}
			ch <- engine.Chunk{Buffer: audio.Buffer{
				Data:       make([]byte, samples*audio.BytesPerSample),
				SampleRate: rate,
			}}
		}
	}()

	return ch, nil
}
