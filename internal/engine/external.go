package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// ExternalProcess hands the entire cleaned text to an external TTS
// program that manages its own synthesis and playback. The adapter and
// sequencer are bypassed; the run simply waits for process exit.
type ExternalProcess struct {
	command []string
	config  Config
}

// NewExternalProcess creates an external-process backend. The command is
// the program plus fixed arguments; the text is written to its stdin.
func NewExternalProcess(command []string, config Config) *ExternalProcess {
	return &ExternalProcess{command: command, config: config}
}

// Name returns the engine name.
func (e *ExternalProcess) Name() string { return "external" }

// Kind declares the external-process shape.
func (e *ExternalProcess) Kind() Kind { return KindExternal }

// Validate checks the program exists on PATH.
func (e *ExternalProcess) Validate() error {
	if len(e.command) == 0 {
		return fmt.Errorf("%w: no external TTS command configured", ErrDependencyMissing)
	}
	if _, err := exec.LookPath(e.command[0]); err != nil {
		return fmt.Errorf("%w: %s not found on PATH", ErrDependencyMissing, e.command[0])
	}
	return nil
}

// Speak runs the program on the whole text and blocks until it exits.
// The program's own diagnostics go to stderr, keeping stdout clean.
func (e *ExternalProcess) Speak(ctx context.Context, text string) error {
	args := append([]string{}, e.command[1:]...)
	if e.config.Model != "" {
		args = append(args, "--model", e.config.Model)
	}
	args = append(args, "--stream")

	cmd := exec.CommandContext(ctx, e.command[0], args...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = os.Stderr
	cmd.Env = e.env()

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Info("handing text to external TTS process",
		"command", e.command[0], "text_len", len(text))

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s: %v: %s", ErrGenerationFailed, e.command[0], err, msg)
		}
		return fmt.Errorf("%w: %s: %v", ErrGenerationFailed, e.command[0], err)
	}

	return nil
}

// Close releases nothing.
func (e *ExternalProcess) Close() error { return nil }

func (e *ExternalProcess) env() []string {
	env := os.Environ()
	if e.config.DisableParallelism {
		env = append(env, "OMP_NUM_THREADS=1")
	}
	return env
}
