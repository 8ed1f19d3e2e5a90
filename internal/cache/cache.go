// Package cache stores synthesized audio on disk so repeated reads of the
// same chunk skip engine invocation. Entries are WAV-framed and zstd
// compressed; speech PCM compresses well.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"

	"github.com/dgnsrekt/reader-elf/internal/audio"
)

// Cache is a content-addressed disk cache for synthesis output.
type Cache struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New creates a cache rooted at dir, creating the directory if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Cache{dir: dir, encoder: encoder, decoder: decoder}, nil
}

// Key derives the cache key for a chunk. Engine name and voice are part of
// the key so switching models never replays stale audio.
func Key(engine, voice, text string) string {
	sum := sha256.Sum256([]byte(engine + "\x00" + voice + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached buffer for key, if present and readable. A
// corrupt entry is removed and treated as a miss.
func (c *Cache) Get(key string) (audio.Buffer, bool) {
	path := c.path(key)

	compressed, err := os.ReadFile(path)
	if err != nil {
		return audio.Buffer{}, false
	}

	blob, err := c.decoder.DecodeAll(compressed, nil)
	if err == nil {
		if buf, derr := audio.DecodeWAV(blob); derr == nil {
			log.Debug("synthesis cache hit", "key", key[:12], "bytes", len(buf.Data))
			return buf, true
		}
	}

	log.Warn("removing corrupt cache entry", "key", key[:12])
	_ = os.Remove(path)
	return audio.Buffer{}, false
}

// Put stores a buffer under key. Cache writes are advisory; failures are
// logged and never propagated.
func (c *Cache) Put(key string, b audio.Buffer) {
	blob, err := audio.EncodeWAV(b)
	if err != nil {
		return
	}

	compressed := c.encoder.EncodeAll(blob, nil)
	if err := os.WriteFile(c.path(key), compressed, 0o600); err != nil {
		log.Warn("failed to write cache entry", "key", key[:12], "error", err)
		return
	}

	log.Debug("synthesis cache store",
		"key", key[:12], "raw", len(blob), "compressed", len(compressed))
}

// Close releases the compressor state.
func (c *Cache) Close() {
	c.encoder.Close()
	c.decoder.Close()
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".wav.zst")
}
