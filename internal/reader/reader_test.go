package reader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/reader-elf/internal/audio"
	"github.com/dgnsrekt/reader-elf/internal/engine"
	"github.com/dgnsrekt/reader-elf/internal/engine/mock"
	"github.com/dgnsrekt/reader-elf/internal/segment"
)

func newTestReader(eng engine.Engine) (*Reader, *audio.MockContext) {
	ctx := audio.NewMockContext(audio.DefaultSampleRate)
	ctx.PlayDuration = time.Millisecond
	seq := audio.NewMixerSequencer(ctx)
	return New(eng, seq, nil, engine.DefaultConfig()), ctx
}

func TestRunPlaysChunksInOrder(t *testing.T) {
	eng := mock.New()
	r, mixer := newTestReader(eng)

	err := r.Run(context.Background(), "Hello there. This is Reader Elf.", segment.BySentence)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	calls := eng.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 synthesis calls, got %d", len(calls))
	}
	if calls[0] != "Hello there." || calls[1] != "This is Reader Elf." {
		t.Errorf("unexpected call order: %v", calls)
	}

	// Every chunk reached the mixer, in submission order.
	at := mixer.PlayedAt()
	if len(at) != 2 {
		t.Fatalf("expected 2 played streams, got %d", len(at))
	}
	if at[1].Before(at[0]) {
		t.Error("chunks played out of order")
	}

	if r.State() != StateDone {
		t.Errorf("expected done state, got %s", r.State())
	}
	if r.ChunksPlayed() != 2 {
		t.Errorf("expected 2 chunks played, got %d", r.ChunksPlayed())
	}
	if !eng.Closed() {
		t.Error("engine was not shut down")
	}
}

func TestRunEmptyInputIsNoOp(t *testing.T) {
	eng := mock.New()
	r, mixer := newTestReader(eng)

	if err := r.Run(context.Background(), "   \n\n  ", segment.BySentence); err != nil {
		t.Fatalf("expected no-op success, got %v", err)
	}
	if r.State() != StateDone {
		t.Errorf("expected done state, got %s", r.State())
	}
	if r.ChunksPlayed() != 0 {
		t.Errorf("expected 0 chunks played, got %d", r.ChunksPlayed())
	}
	if len(mixer.Played()) != 0 {
		t.Error("no audio should have been produced")
	}
}

func TestRunHaltsOnChunkFailure(t *testing.T) {
	eng := mock.New()
	eng.FailOnCall[2] = true
	r, _ := newTestReader(eng)

	err := r.Run(context.Background(), "One. Two. Three.", segment.BySentence)
	if err == nil {
		t.Fatal("expected chunk failure")
	}

	var chunkErr *engine.ChunkError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("expected ChunkError, got %T: %v", err, err)
	}
	if chunkErr.Index != 2 {
		t.Errorf("expected failing chunk index 2, got %d", chunkErr.Index)
	}
	if !errors.Is(err, engine.ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed in chain, got %v", err)
	}

	// No further chunks were attempted.
	if got := len(eng.Calls()); got != 2 {
		t.Errorf("expected synthesis to stop after chunk 2, got %d calls", got)
	}
	if r.State() != StateFailed {
		t.Errorf("expected failed state, got %s", r.State())
	}
	if r.ChunksPlayed() != 1 {
		t.Errorf("expected 1 completed chunk, got %d", r.ChunksPlayed())
	}
}

func TestRunResetsEngineStateBetweenChunks(t *testing.T) {
	eng := mock.New()
	r, _ := newTestReader(eng)

	if err := r.Run(context.Background(), "One. Two. Three.", segment.BySentence); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Reset runs before every chunk except the first.
	if got := eng.Resets(); got != 2 {
		t.Errorf("expected 2 state resets, got %d", got)
	}
}

func TestRunValidateFailureIsFatal(t *testing.T) {
	eng := mock.New()
	eng.ValidateErr = engine.ErrDependencyMissing
	r, _ := newTestReader(eng)

	err := r.Run(context.Background(), "Hello there.", segment.BySentence)
	if !errors.Is(err, engine.ErrDependencyMissing) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if r.State() != StateFailed {
		t.Errorf("expected failed state, got %s", r.State())
	}
	if got := len(eng.Calls()); got != 0 {
		t.Errorf("no synthesis should happen after failed load, got %d calls", got)
	}
}

func TestRunMixerFailureDegradesToFallback(t *testing.T) {
	eng := mock.New()
	mixer := audio.NewMockContext(audio.DefaultSampleRate)
	mixer.PlayDuration = time.Millisecond
	mixer.FailOnCall[1] = true
	seq := audio.NewMixerSequencer(mixer)
	r := New(eng, seq, nil, engine.DefaultConfig())

	err := r.Run(context.Background(), "One. Two.", segment.BySentence)
	if err != nil {
		t.Fatalf("mixer failure must not abort the run: %v", err)
	}

	// Both chunks were synthesized despite the first play failure, and
	// the refused buffer got its batch retry at the end of the run.
	if got := len(eng.Calls()); got != 2 {
		t.Errorf("expected 2 synthesis calls, got %d", got)
	}
	if got := seq.PendingFallback(); got != 0 {
		t.Errorf("expected fallback flushed at end of run, got %d pending", got)
	}
	if r.State() != StateDone {
		t.Errorf("expected done state, got %s", r.State())
	}
}

func TestRunStreamingPlaysSubBuffersInOrder(t *testing.T) {
	eng := mock.NewStream()
	eng.SubBuffers = 4
	r, mixer := newTestReader(eng)

	err := r.Run(context.Background(), "A single sentence.", segment.BySentence)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// One chunk, four sub-buffers, each played separately in order.
	at := mixer.PlayedAt()
	if len(at) != 4 {
		t.Fatalf("expected 4 played streams, got %d", len(at))
	}
	for i := 1; i < len(at); i++ {
		if at[i].Before(at[i-1]) {
			t.Errorf("sub-buffer %d played before %d", i, i-1)
		}
	}
}

func TestRunStreamingFailureReportsChunkIndex(t *testing.T) {
	eng := mock.NewStream()
	eng.FailOnCall[2] = true
	r, _ := newTestReader(eng)

	err := r.Run(context.Background(), "First one. Second one.", segment.BySentence)
	var chunkErr *engine.ChunkError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("expected ChunkError, got %v", err)
	}
	if chunkErr.Index != 2 {
		t.Errorf("expected failing chunk index 2, got %d", chunkErr.Index)
	}
}

func TestSynthesisIsDeterministicForSameChunk(t *testing.T) {
	eng := mock.New()

	a, err := eng.Synthesize(context.Background(), "Stable text.")
	if err != nil {
		t.Fatal(err)
	}
	b, err := eng.Synthesize(context.Background(), "Stable text.")
	if err != nil {
		t.Fatal(err)
	}

	if len(a.Data) != len(b.Data) || a.SampleRate != b.SampleRate {
		t.Errorf("buffer metadata differs across identical chunks: %d/%d vs %d/%d",
			len(a.Data), a.SampleRate, len(b.Data), b.SampleRate)
	}
}
