package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// otoContext implements Context on top of the oto mixer.
type otoContext struct {
	context    *oto.Context
	sampleRate int
	mu         sync.Mutex
	ready      bool
}

// NewOtoContext initializes the system mixer at the given sample rate.
// Initialization waits for the audio device to come up; a device that
// never reports ready within the timeout is treated as unavailable.
func NewOtoContext(sampleRate int) (Context, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Millisecond * 50,
	}

	log.Debug("initializing mixer context",
		"sample_rate", options.SampleRate,
		"channels", options.ChannelCount,
		"buffer_size", options.BufferSize)

	context, readyChan, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}

	select {
	case <-readyChan:
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("audio context initialization timeout")
	}

	return &otoContext{
		context:    context,
		sampleRate: sampleRate,
		ready:      true,
	}, nil
}

// NewPlayer creates an oto player for the PCM stream r.
func (c *otoContext) NewPlayer(r io.Reader) (Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready || c.context == nil {
		return nil, fmt.Errorf("audio context not ready")
	}

	return &otoPlayer{player: c.context.NewPlayer(r)}, nil
}

// SampleRate returns the mixer's fixed sample rate.
func (c *otoContext) SampleRate() int {
	return c.sampleRate
}

// Close marks the context unusable. oto v3 contexts have no Close; the
// underlying context is reclaimed by the garbage collector.
func (c *otoContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = false
	c.context = nil
	return nil
}

type otoPlayer struct {
	player *oto.Player
}

func (p *otoPlayer) Play()           { p.player.Play() }
func (p *otoPlayer) IsPlaying() bool { return p.player.IsPlaying() }
func (p *otoPlayer) Close() error    { return p.player.Close() }
