// Package gtts synthesizes speech through the Google Translate TTS
// endpoint. It needs no API key and no local model, which makes it the
// fallback backend on machines without piper installed. Requests are rate
// limited to stay under Google's abuse thresholds.
package gtts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	mp3 "github.com/hajimehoshi/go-mp3"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/reader-elf/internal/audio"
	"github.com/dgnsrekt/reader-elf/internal/engine"
)

const (
	endpoint = "https://translate.google.com/translate_tts"

	// maxTextLength is the endpoint's per-request limit.
	maxTextLength = 200

	// requestsPerMinute keeps request volume conservative.
	requestsPerMinute = 50
)

// Engine is the direct-call Google Translate backend.
type Engine struct {
	language string
	client   *http.Client
	limiter  *rate.Limiter
	config   engine.Config
}

// New creates a gTTS engine. The config Voice field carries the language
// code ("en", "es", ...); empty defaults to English.
func New(config engine.Config) *Engine {
	language := config.Voice
	if language == "" {
		language = "en"
	}

	return &Engine{
		language: language,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), 1),
		config:   config,
	}
}

// Name returns the engine name.
func (e *Engine) Name() string { return "gtts" }

// Kind declares the direct-call shape.
func (e *Engine) Kind() engine.Kind { return engine.KindDirect }

// Validate always succeeds structurally; network reachability is only
// knowable at synthesis time.
func (e *Engine) Validate() error { return nil }

// Synthesize fetches MP3 speech for one chunk and decodes it to PCM16
// mono.
func (e *Engine) Synthesize(ctx context.Context, text string) (audio.Buffer, error) {
	if e.config.SynthesisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.SynthesisTimeout)
		defer cancel()
	}

	// The endpoint truncates long inputs; synthesize in slices and join.
	var buffers []audio.Buffer
	sampleRate := 0
	for _, part := range sliceText(text, maxTextLength) {
		b, err := e.fetch(ctx, part)
		if err != nil {
			return audio.Buffer{}, err
		}
		buffers = append(buffers, b)
		sampleRate = b.SampleRate
	}

	if len(buffers) == 0 {
		return audio.Buffer{}, fmt.Errorf("%w: no audio produced", engine.ErrGenerationFailed)
	}

	return audio.Concat(buffers, sampleRate), nil
}

// Close releases nothing.
func (e *Engine) Close() error { return nil }

// fetch performs one rate-limited TTS request and decodes the MP3
// response.
func (e *Engine) fetch(ctx context.Context, text string) (audio.Buffer, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return audio.Buffer{}, fmt.Errorf("%w: rate limit wait: %v", engine.ErrGenerationFailed, err)
	}

	params := url.Values{
		"ie":       {"UTF-8"},
		"client":   {"tw-ob"},
		"tl":       {e.language},
		"q":        {text},
		"ttsspeed": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%w: %v", engine.ErrGenerationFailed, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	log.Debug("fetching gtts audio", "language", e.language, "text_len", len(text))
	resp, err := e.client.Do(req)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%w: %v", engine.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return audio.Buffer{}, fmt.Errorf("%w: gtts returned HTTP %d", engine.ErrGenerationFailed, resp.StatusCode)
	}

	return decodeMP3(resp.Body)
}

// decodeMP3 decodes an MP3 stream into a PCM16 mono buffer. go-mp3
// always emits 16-bit stereo frames, so the channels are averaged down.
func decodeMP3(r io.Reader) (audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%w: decoding mp3: %v", engine.ErrGenerationFailed, err)
	}

	stereo, err := io.ReadAll(decoder)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%w: reading mp3 frames: %v", engine.ErrGenerationFailed, err)
	}
	if len(stereo) == 0 {
		return audio.Buffer{}, fmt.Errorf("%w: empty mp3 payload", engine.ErrGenerationFailed)
	}

	frames := len(stereo) / 4 // 2 bytes per sample, 2 channels
	mono := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		left := int16(uint16(stereo[i*4]) | uint16(stereo[i*4+1])<<8)
		right := int16(uint16(stereo[i*4+2]) | uint16(stereo[i*4+3])<<8)
		mixed := int16((int32(left) + int32(right)) / 2)
		mono[i*2] = byte(mixed)
		mono[i*2+1] = byte(mixed >> 8)
	}

	return audio.Buffer{Data: mono, SampleRate: decoder.SampleRate()}, nil
}

// sliceText cuts text into request-sized pieces, preferring to break at
// whitespace. Cuts always land on rune boundaries; unspaced scripts must
// not produce invalid UTF-8 in the query parameter.
func sliceText(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}

	var parts []string
	for len(text) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if sp := strings.LastIndexByte(text[:cut], ' '); sp > 0 {
			cut = sp
		}
		parts = append(parts, text[:cut])
		for cut < len(text) && text[cut] == ' ' {
			cut++
		}
		text = text[cut:]
	}
	if len(text) > 0 {
		parts = append(parts, text)
	}
	return parts
}
