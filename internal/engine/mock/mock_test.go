package mock

import (
	"context"
	"testing"

	"github.com/dgnsrekt/reader-elf/internal/audio"
)

func TestStreamYieldsConfiguredSubBuffers(t *testing.T) {
	eng := NewStream()
	eng.SubBuffers = 4
	eng.SubBufferRates = []int{22050, 16000}

	stream, err := eng.SynthesizeStream(context.Background(), "Hello there.")
	if err != nil {
		t.Fatalf("SynthesizeStream failed: %v", err)
	}

	var rates []int
	for sub := range stream {
		if sub.Err != nil {
			t.Fatalf("unexpected sub-buffer error: %v", sub.Err)
		}
		if len(sub.Buffer.Data) != eng.SamplesPerCall*audio.BytesPerSample {
			t.Errorf("unexpected sub-buffer size %d", len(sub.Buffer.Data))
		}
		rates = append(rates, sub.Buffer.SampleRate)
	}

	want := []int{22050, 16000, 22050, 16000}
	if len(rates) != len(want) {
		t.Fatalf("expected %d sub-buffers, got %d", len(want), len(rates))
	}
	for i, r := range rates {
		if r != want[i] {
			t.Errorf("sub-buffer %d: expected rate %d, got %d", i, want[i], r)
		}
	}
}

func TestStreamRecorderIsSafeDuringPlayback(t *testing.T) {
	eng := NewStream()
	eng.SubBuffers = 8

	stream, err := eng.SynthesizeStream(context.Background(), "First chunk.")
	if err != nil {
		t.Fatalf("SynthesizeStream failed: %v", err)
	}

	// Recorded state may be inspected while the producer is mid-stream.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range stream {
			_ = eng.Calls()
			_ = eng.Resets()
		}
	}()
	<-done

	if calls := eng.Calls(); len(calls) != 1 || calls[0] != "First chunk." {
		t.Errorf("unexpected recorded calls: %v", calls)
	}
}
