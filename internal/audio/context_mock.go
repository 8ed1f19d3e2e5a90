package audio

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// MockContext implements Context for tests. It records every buffer handed
// to it, in order, and can be configured to fail player creation for
// specific calls.
type MockContext struct {
	mu         sync.Mutex
	sampleRate int
	closed     bool

	// PlayDuration is how long each mock player reports IsPlaying.
	PlayDuration time.Duration

	// FailOnCall makes NewPlayer fail for the given 1-based call numbers.
	FailOnCall map[int]bool

	calls    int
	played   [][]byte
	playedAt []time.Time
}

// NewMockContext creates a mock mixer context.
func NewMockContext(sampleRate int) *MockContext {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &MockContext{
		sampleRate:   sampleRate,
		PlayDuration: 5 * time.Millisecond,
		FailOnCall:   make(map[int]bool),
	}
}

// NewPlayer records the stream contents and returns a timed mock player.
func (c *MockContext) NewPlayer(r io.Reader) (Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("mock context is closed")
	}

	c.calls++
	if c.FailOnCall[c.calls] {
		return nil, fmt.Errorf("mock player failure on call %d", c.calls)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	c.played = append(c.played, data)
	c.playedAt = append(c.playedAt, time.Now())

	return &mockPlayer{duration: c.PlayDuration}, nil
}

// SampleRate returns the configured rate.
func (c *MockContext) SampleRate() int { return c.sampleRate }

// Close marks the context closed.
func (c *MockContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Played returns the recorded streams in playback order.
func (c *MockContext) Played() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.played))
	copy(out, c.played)
	return out
}

// PlayedAt returns the time each stream was handed to the mixer.
func (c *MockContext) PlayedAt() []time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Time, len(c.playedAt))
	copy(out, c.playedAt)
	return out
}

// mockPlayer reports playing until its configured duration elapses.
type mockPlayer struct {
	mu       sync.Mutex
	duration time.Duration
	started  time.Time
	playing  bool
}

func (p *mockPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = time.Now()
	p.playing = true
}

func (p *mockPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return false
	}
	if time.Since(p.started) >= p.duration {
		p.playing = false
	}
	return p.playing
}

func (p *mockPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	return nil
}
