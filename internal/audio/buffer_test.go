package audio

import (
	"testing"
	"time"
)

func toneBuffer(samples int, rate int) Buffer {
	data := make([]byte, samples*BytesPerSample)
	for i := 0; i < samples; i++ {
		putSampleAt(data, i, int16(i%512))
	}
	return Buffer{Data: data, SampleRate: rate}
}

func TestBufferDuration(t *testing.T) {
	b := toneBuffer(22050, 22050)
	if got := b.Duration(); got != time.Second {
		t.Errorf("expected 1s, got %v", got)
	}

	if got := (Buffer{}).Duration(); got != 0 {
		t.Errorf("expected 0 for empty buffer, got %v", got)
	}
}

func TestPadSilence(t *testing.T) {
	b := toneBuffer(1000, 22050)
	padded := PadSilence(b, 250*time.Millisecond)

	extraSamples := int(InterChunkSilence.Seconds() * 22050)
	wantLen := len(b.Data) + extraSamples*BytesPerSample
	if len(padded.Data) != wantLen {
		t.Errorf("expected %d bytes, got %d", wantLen, len(padded.Data))
	}

	// Padding must be silence.
	for i := len(b.Data); i < len(padded.Data); i++ {
		if padded.Data[i] != 0 {
			t.Fatalf("non-zero byte in padding at offset %d", i)
		}
	}

	// Original must be untouched.
	if &padded.Data[0] == &b.Data[0] {
		t.Error("PadSilence must not alias the input buffer")
	}
}

func TestResample(t *testing.T) {
	b := toneBuffer(22050, 22050)

	t.Run("same rate is identity", func(t *testing.T) {
		out := Resample(b, 22050)
		if len(out.Data) != len(b.Data) {
			t.Errorf("expected unchanged length %d, got %d", len(b.Data), len(out.Data))
		}
	})

	t.Run("upsampling doubles sample count", func(t *testing.T) {
		out := Resample(b, 44100)
		if out.SampleRate != 44100 {
			t.Errorf("expected rate 44100, got %d", out.SampleRate)
		}
		want := len(b.Data) * 2
		if len(out.Data) != want {
			t.Errorf("expected %d bytes, got %d", want, len(out.Data))
		}
	})

	t.Run("duration is preserved", func(t *testing.T) {
		out := Resample(b, 16000)
		diff := out.Duration() - b.Duration()
		if diff < -10*time.Millisecond || diff > 10*time.Millisecond {
			t.Errorf("duration drifted: %v vs %v", out.Duration(), b.Duration())
		}
	})
}

func TestConcat(t *testing.T) {
	a := toneBuffer(100, 22050)
	b := toneBuffer(200, 44100)

	out := Concat([]Buffer{a, b}, 22050)
	if out.SampleRate != 22050 {
		t.Errorf("expected rate 22050, got %d", out.SampleRate)
	}
	// 100 samples + 200 samples downsampled to ~100.
	wantSamples := 200
	gotSamples := len(out.Data) / BytesPerSample
	if gotSamples != wantSamples {
		t.Errorf("expected %d samples, got %d", wantSamples, gotSamples)
	}
}

func TestEncodeDecodeWAV(t *testing.T) {
	b := toneBuffer(1024, 22050)

	blob, err := EncodeWAV(b)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}
	if len(blob) != WAVHeaderSize+len(b.Data) {
		t.Errorf("expected %d bytes, got %d", WAVHeaderSize+len(b.Data), len(blob))
	}
	if string(blob[0:4]) != "RIFF" || string(blob[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}

	decoded, err := DecodeWAV(blob)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if decoded.SampleRate != b.SampleRate {
		t.Errorf("expected rate %d, got %d", b.SampleRate, decoded.SampleRate)
	}
	if len(decoded.Data) != len(b.Data) {
		t.Errorf("expected %d data bytes, got %d", len(b.Data), len(decoded.Data))
	}
}

func TestEncodeWAVRejectsEmpty(t *testing.T) {
	if _, err := EncodeWAV(Buffer{SampleRate: 22050}); err == nil {
		t.Error("expected error for empty buffer")
	}
	if _, err := EncodeWAV(Buffer{Data: []byte{0, 0}}); err == nil {
		t.Error("expected error for zero sample rate")
	}
}
