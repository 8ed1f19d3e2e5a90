package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// wavHeader is the canonical 44-byte RIFF/WAVE header for PCM data.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

// WAVHeaderSize is the byte length of the header EncodeWAV writes.
const WAVHeaderSize = 44

// EncodeWAV frames a PCM buffer as an in-memory WAV blob.
func EncodeWAV(b Buffer) ([]byte, error) {
	if b.Empty() {
		return nil, fmt.Errorf("cannot encode empty audio buffer")
	}
	if b.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", b.SampleRate)
	}

	dataSize := uint32(len(b.Data))
	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   Channels,
		SampleRate:    uint32(b.SampleRate),
		ByteRate:      uint32(b.SampleRate) * Channels * BitDepth / 8,
		BlockAlign:    Channels * BitDepth / 8,
		BitsPerSample: BitDepth,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, WAVHeaderSize+len(b.Data)))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}
	if _, err := buf.Write(b.Data); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeWAV extracts the PCM buffer from WAV data produced by EncodeWAV.
func DecodeWAV(data []byte) (Buffer, error) {
	if len(data) < WAVHeaderSize {
		return Buffer{}, fmt.Errorf("WAV data too short: need at least %d bytes, got %d", WAVHeaderSize, len(data))
	}

	var header wavHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return Buffer{}, fmt.Errorf("failed to read WAV header: %w", err)
	}

	if string(header.ChunkID[:]) != "RIFF" || string(header.Format[:]) != "WAVE" {
		return Buffer{}, fmt.Errorf("not a WAV file")
	}
	if header.AudioFormat != 1 {
		return Buffer{}, fmt.Errorf("unsupported audio format %d, only PCM is supported", header.AudioFormat)
	}
	if header.BitsPerSample != BitDepth {
		return Buffer{}, fmt.Errorf("unsupported bit depth %d, only %d-bit is supported", header.BitsPerSample, BitDepth)
	}
	if header.NumChannels != Channels {
		return Buffer{}, fmt.Errorf("unsupported channel count %d, only mono is supported", header.NumChannels)
	}

	size := int(header.Subchunk2Size)
	if size > len(data)-WAVHeaderSize {
		size = len(data) - WAVHeaderSize
	}

	return Buffer{
		Data:       data[WAVHeaderSize : WAVHeaderSize+size],
		SampleRate: int(header.SampleRate),
	}, nil
}
