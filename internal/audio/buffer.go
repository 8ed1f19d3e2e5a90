// Package audio provides PCM buffer handling, WAV framing, and the ordered
// playback sequencer for synthesized speech.
package audio

import "time"

// Format constants for the synthesis pipeline. Engines must deliver 16-bit
// mono PCM; the sample rate may vary per buffer and is resampled to the
// mixer rate at playback time.
const (
	Channels       = 1
	BitDepth       = 16
	BytesPerSample = BitDepth / 8

	// DefaultSampleRate is the mixer rate and the rate most local engines
	// produce natively.
	DefaultSampleRate = 22050

	// InterChunkSilence is appended to every buffer before playback so
	// consecutive chunks don't audibly run together.
	InterChunkSilence = 250 * time.Millisecond
)

// Buffer is a decoded sequence of PCM16 mono samples plus its sample rate.
type Buffer struct {
	Data       []byte
	SampleRate int
}

// Duration returns the playing time of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	samples := len(b.Data) / BytesPerSample
	return time.Duration(float64(samples) / float64(b.SampleRate) * float64(time.Second))
}

// Empty reports whether the buffer carries no samples.
func (b Buffer) Empty() bool {
	return len(b.Data) < BytesPerSample
}

// Silence returns a buffer of silent samples at the given rate.
func Silence(d time.Duration, sampleRate int) Buffer {
	samples := int(d.Seconds() * float64(sampleRate))
	return Buffer{
		Data:       make([]byte, samples*BytesPerSample),
		SampleRate: sampleRate,
	}
}

// PadSilence returns a copy of b with trailing silence appended.
func PadSilence(b Buffer, d time.Duration) Buffer {
	pad := Silence(d, b.SampleRate)
	data := make([]byte, 0, len(b.Data)+len(pad.Data))
	data = append(data, b.Data...)
	data = append(data, pad.Data...)
	return Buffer{Data: data, SampleRate: b.SampleRate}
}

// Concat joins buffers into one at the given rate, resampling any buffer
// whose rate differs.
func Concat(buffers []Buffer, sampleRate int) Buffer {
	var data []byte
	for _, b := range buffers {
		data = append(data, Resample(b, sampleRate).Data...)
	}
	return Buffer{Data: data, SampleRate: sampleRate}
}

// Resample converts b to the target sample rate using linear
// interpolation. Quality is adequate for speech; music would want a
// proper filter.
func Resample(b Buffer, targetRate int) Buffer {
	if b.SampleRate == targetRate || b.SampleRate <= 0 || targetRate <= 0 {
		return b
	}

	inSamples := len(b.Data) / BytesPerSample
	ratio := float64(targetRate) / float64(b.SampleRate)
	outSamples := int(float64(inSamples) * ratio)
	out := make([]byte, outSamples*BytesPerSample)

	for i := 0; i < outSamples; i++ {
		pos := float64(i) / ratio
		idx := int(pos)
		frac := pos - float64(idx)

		var val float64
		switch {
		case idx >= inSamples-1:
			val = float64(sampleAt(b.Data, inSamples-1))
		default:
			s1 := float64(sampleAt(b.Data, idx))
			s2 := float64(sampleAt(b.Data, idx+1))
			val = s1*(1-frac) + s2*frac
		}

		putSampleAt(out, i, int16(val))
	}

	return Buffer{Data: out, SampleRate: targetRate}
}

func sampleAt(data []byte, i int) int16 {
	if i < 0 || i*2+1 >= len(data) {
		return 0
	}
	return int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
}

func putSampleAt(data []byte, i int, s int16) {
	data[i*2] = byte(s)
	data[i*2+1] = byte(s >> 8)
}
