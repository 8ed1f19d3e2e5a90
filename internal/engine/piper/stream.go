package piper

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/reader-elf/internal/audio"
	"github.com/dgnsrekt/reader-elf/internal/engine"
)

// streamReadSize is how much raw PCM is read from piper's stdout per
// sub-buffer. At 22050Hz mono this is roughly a fifth of a second, small
// enough that playback starts well before synthesis finishes.
const streamReadSize = 8192

// StreamEngine is the streaming-shape Piper backend. It yields PCM
// sub-buffers as piper writes them instead of waiting for the whole
// chunk.
type StreamEngine struct {
	*Engine
}

// NewStream creates a streaming Piper engine.
func NewStream(config engine.Config) *StreamEngine {
	return &StreamEngine{Engine: New(config)}
}

// Kind declares the streaming shape.
func (e *StreamEngine) Kind() engine.Kind { return engine.KindStreaming }

// SynthesizeStream starts piper for one chunk and yields sub-buffers in
// the order produced. The channel closes when the process exits; a
// process failure arrives as the final chunk's Err.
func (e *StreamEngine) SynthesizeStream(ctx context.Context, text string) (<-chan engine.Chunk, error) {
	cancel := context.CancelFunc(func() {})
	if e.config.SynthesisTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.config.SynthesisTimeout)
	}

	cmd := exec.CommandContext(ctx, e.binary, e.args()...)
	cmd.Stdin = strings.NewReader(text + "\n")
	cmd.Env = e.env()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: stdout pipe: %v", engine.ErrBackendUnavailable, err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: starting piper: %v", engine.ErrGenerationFailed, err)
	}

	log.Debug("streaming from piper", "model", e.config.Model, "text_len", len(text))

	ch := make(chan engine.Chunk)
	go func() {
		defer close(ch)
		defer cancel()

		produced := false
		buf := make([]byte, streamReadSize)
		for {
			n, readErr := io.ReadFull(stdout, buf)
			if n > 0 {
				// Sub-buffers must not alias the read buffer.
				data := make([]byte, n)
				copy(data, buf[:n])
				ch <- engine.Chunk{Buffer: audio.Buffer{
					Data:       data,
					SampleRate: e.config.SampleRate,
				}}
				produced = true
			}
			if readErr != nil {
				break
			}
		}

		if err := cmd.Wait(); err != nil {
			ch <- engine.Chunk{Err: fmt.Errorf("%w: piper: %v", engine.ErrGenerationFailed, err)}
			return
		}
		if !produced {
			ch <- engine.Chunk{Err: fmt.Errorf("%w: piper produced no audio", engine.ErrGenerationFailed)}
		}
	}()

	return ch, nil
}
