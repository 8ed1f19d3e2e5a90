package reader

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/reader-elf/internal/audio"
	"github.com/dgnsrekt/reader-elf/internal/cache"
	"github.com/dgnsrekt/reader-elf/internal/engine"
	"github.com/dgnsrekt/reader-elf/internal/segment"
)

// Reader orchestrates a single read-aloud run. Execution is strictly
// sequential: no chunk's generation or playback overlaps another's, and
// chunk N+1 is not requested until chunk N has finished playing. That
// ordering contract is enforced structurally by blocking calls, not by
// synchronization primitives.
type Reader struct {
	eng   engine.Engine
	seq   *audio.Sequencer
	cache *cache.Cache // nil disables caching

	sm           *stateMachine
	chunksPlayed int
	engineConf   engine.Config
}

// New creates a reader. The cache may be nil.
func New(eng engine.Engine, seq *audio.Sequencer, c *cache.Cache, conf engine.Config) *Reader {
	return &Reader{
		eng:        eng,
		seq:        seq,
		cache:      c,
		sm:         newStateMachine(),
		engineConf: conf,
	}
}

// State returns the orchestrator's current state.
func (r *Reader) State() State {
	return r.sm.state()
}

// ChunksPlayed returns how many chunks completed playback.
func (r *Reader) ChunksPlayed() int {
	return r.chunksPlayed
}

// Run reads the text aloud. Empty input is a no-op success. Any chunk
// failure is fatal to the run and reports the 1-based chunk index; no
// chunk is skipped silently and nothing is retried.
func (r *Reader) Run(ctx context.Context, text string, mode segment.Mode) error {
	r.mustTransition(StateLoading)

	if err := r.eng.Validate(); err != nil {
		r.fail()
		return err
	}
	log.Debug("backend resolved", "engine", r.eng.Name(), "kind", r.eng.Kind())

	// The external-process shape bypasses segmentation and playback
	// entirely; the run just waits for process exit.
	if ext, ok := r.eng.(engine.External); ok && r.eng.Kind() == engine.KindExternal {
		if err := ext.Speak(ctx, text); err != nil {
			r.fail()
			return err
		}
		return r.unload()
	}

	chunks := segment.Split(text, mode)
	if len(chunks) == 0 {
		log.Info("nothing to read", "mode", mode)
		return r.unload()
	}
	log.Info("reading", "chunks", len(chunks), "mode", mode, "engine", r.eng.Name())

	for _, chunk := range chunks {
		// Engines that carry state between chunks get a reset before
		// every chunk after the first. Absence of the capability is
		// not an error.
		if chunk.Index > 1 {
			if resetter, ok := r.eng.(engine.StateResetter); ok {
				if err := resetter.ResetState(); err != nil {
					log.Warn("engine state reset failed", "chunk", chunk.Index, "error", err)
				}
			}
		}

		if err := r.speakChunk(ctx, chunk); err != nil {
			r.fail()
			return err
		}
		r.chunksPlayed++
	}

	// One batch attempt at anything the mixer refused mid-run.
	r.seq.FlushFallback()

	return r.unload()
}

// speakChunk generates and plays one chunk, blocking until the audio is
// complete.
func (r *Reader) speakChunk(ctx context.Context, chunk segment.Chunk) error {
	r.mustTransition(StateGenerating)

	switch eng := r.eng.(type) {
	case engine.Streaming:
		return r.speakStreaming(ctx, eng, chunk)
	case engine.Direct:
		return r.speakDirect(ctx, eng, chunk)
	default:
		return fmt.Errorf("%w: engine %s has unsupported kind %s",
			engine.ErrBackendUnavailable, r.eng.Name(), r.eng.Kind())
	}
}

// speakDirect synthesizes a whole chunk, then plays it.
func (r *Reader) speakDirect(ctx context.Context, eng engine.Direct, chunk segment.Chunk) error {
	buf, hit := r.cachedBuffer(chunk.Text)
	if !hit {
		var err error
		buf, err = eng.Synthesize(ctx, chunk.Text)
		if err != nil {
			return engine.NewChunkError(chunk.Index, err)
		}
		if buf.Empty() {
			return engine.NewChunkError(chunk.Index,
				fmt.Errorf("%w: empty buffer", engine.ErrGenerationFailed))
		}
		r.storeBuffer(chunk.Text, buf)
	}

	r.mustTransition(StatePlaying)
	if err := r.seq.Play(buf); err != nil {
		return engine.NewChunkError(chunk.Index, err)
	}
	return nil
}

// speakStreaming plays sub-buffers in the order the engine yields them.
// A sub-buffer failure partway through a chunk is still fatal to the run.
func (r *Reader) speakStreaming(ctx context.Context, eng engine.Streaming, chunk segment.Chunk) error {
	stream, err := eng.SynthesizeStream(ctx, chunk.Text)
	if err != nil {
		return engine.NewChunkError(chunk.Index, err)
	}
	// On an early return the producer must not be left blocked on a send.
	defer func() {
		for range stream {
		}
	}()

	r.mustTransition(StatePlaying)
	played := false
	for sub := range stream {
		if sub.Err != nil {
			return engine.NewChunkError(chunk.Index, sub.Err)
		}
		if sub.Buffer.Empty() {
			continue
		}
		if err := r.seq.Play(sub.Buffer); err != nil {
			return engine.NewChunkError(chunk.Index, err)
		}
		played = true
	}

	if !played {
		return engine.NewChunkError(chunk.Index,
			fmt.Errorf("%w: stream yielded no audio", engine.ErrGenerationFailed))
	}
	return nil
}

// unload tears down run resources. Every step is advisory: failures are
// logged and never surfaced to the caller.
func (r *Reader) unload() error {
	r.mustTransition(StateUnloading)

	steps := []cleanupStep{
		{name: "engine shutdown", advisory: true, run: r.eng.Close},
	}
	if r.cache != nil {
		steps = append(steps, cleanupStep{
			name: "cache close", advisory: true,
			run: func() error { r.cache.Close(); return nil },
		})
	}
	_ = runCleanup(steps)

	r.mustTransition(StateDone)
	log.Debug("run complete", "chunks_played", r.chunksPlayed)
	return nil
}

func (r *Reader) fail() {
	if !r.sm.transition(StateFailed) {
		r.sm.current = StateFailed
	}
	// Failure teardown is best-effort and never escalates.
	_ = runCleanup([]cleanupStep{
		{name: "engine shutdown", advisory: true, run: r.eng.Close},
	})
}

// cachedBuffer looks up a chunk in the synthesis cache.
func (r *Reader) cachedBuffer(text string) (audio.Buffer, bool) {
	if r.cache == nil {
		return audio.Buffer{}, false
	}
	return r.cache.Get(cache.Key(r.eng.Name(), r.cacheVoice(), text))
}

// storeBuffer records a synthesized chunk in the cache.
func (r *Reader) storeBuffer(text string, buf audio.Buffer) {
	if r.cache == nil {
		return
	}
	r.cache.Put(cache.Key(r.eng.Name(), r.cacheVoice(), text), buf)
}

// cacheVoice builds the voice component of cache keys. Speed is part of
// the synthesized audio, so it has to be part of the key.
func (r *Reader) cacheVoice() string {
	return fmt.Sprintf("%s/%s@%.2f", r.engineConf.Model, r.engineConf.Voice, r.engineConf.Speed)
}

// mustTransition performs a transition that is legal by construction.
// An illegal one indicates an orchestrator bug, which is worth a loud
// log but not a panic mid-playback.
func (r *Reader) mustTransition(to State) {
	if !r.sm.transition(to) {
		log.Error("illegal state transition", "from", r.sm.state(), "to", to)
		r.sm.current = to
	}
}
