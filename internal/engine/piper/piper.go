// Package piper integrates the Piper TTS subprocess as a synthesis
// backend. Each chunk runs a fresh process; Piper loads quickly and a
// clean process avoids any state carryover between chunks.
package piper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/reader-elf/internal/audio"
	"github.com/dgnsrekt/reader-elf/internal/engine"
)

// DefaultBinary is the piper executable probed on PATH.
const DefaultBinary = "piper"

// Engine is the direct-call Piper backend.
type Engine struct {
	binary string
	config engine.Config
}

// New creates a Piper engine. Model in config is the ONNX model path or
// voice name piper resolves itself.
func New(config engine.Config) *Engine {
	return &Engine{
		binary: DefaultBinary,
		config: config,
	}
}

// Name returns the engine name.
func (e *Engine) Name() string { return "piper" }

// Kind declares the direct-call shape.
func (e *Engine) Kind() engine.Kind { return engine.KindDirect }

// Validate checks that the piper binary and the model are reachable.
func (e *Engine) Validate() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("%w: %s not found on PATH", engine.ErrDependencyMissing, e.binary)
	}

	// A model given as a path must exist; bare voice names are resolved
	// by piper itself.
	if strings.ContainsRune(e.config.Model, os.PathSeparator) {
		if _, err := os.Stat(e.config.Model); err != nil {
			return fmt.Errorf("%w: model %s: %v", engine.ErrDependencyMissing, e.config.Model, err)
		}
	}

	return nil
}

// Synthesize runs piper on one chunk and returns the raw PCM output.
func (e *Engine) Synthesize(ctx context.Context, text string) (audio.Buffer, error) {
	if e.config.SynthesisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.SynthesisTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.binary, e.args()...)
	// stdin is wired before Start so the process never races a late
	// write.
	cmd.Stdin = strings.NewReader(text + "\n")
	cmd.Env = e.env()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("running piper", "model", e.config.Model, "text_len", len(text))
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return audio.Buffer{}, fmt.Errorf("%w: piper timed out after %v",
				engine.ErrGenerationFailed, e.config.SynthesisTimeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return audio.Buffer{}, fmt.Errorf("%w: piper: %v: %s", engine.ErrGenerationFailed, err, msg)
		}
		return audio.Buffer{}, fmt.Errorf("%w: piper: %v", engine.ErrGenerationFailed, err)
	}

	out := stdout.Bytes()
	if len(out) == 0 {
		return audio.Buffer{}, fmt.Errorf("%w: piper produced no audio", engine.ErrGenerationFailed)
	}

	return audio.Buffer{Data: out, SampleRate: e.config.SampleRate}, nil
}

// Close releases nothing; each synthesis owns its own process.
func (e *Engine) Close() error { return nil }

func (e *Engine) args() []string {
	args := []string{"--model", e.config.Model, "--output-raw"}
	if e.config.Speed > 0 && e.config.Speed != 1.0 {
		// Piper expresses speed as length scale, the inverse of rate.
		args = append(args, "--length-scale",
			strconv.FormatFloat(1.0/e.config.Speed, 'f', 2, 64))
	}
	return args
}

// env builds the subprocess environment. Parallelism is constrained via
// an explicit config value, never by mutating this process's environment.
func (e *Engine) env() []string {
	env := os.Environ()
	if e.config.DisableParallelism {
		env = append(env, "OMP_NUM_THREADS=1")
	}
	return env
}
