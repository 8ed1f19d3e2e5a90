package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for the adapter layer.
var (
	// ErrDependencyMissing indicates a required binary, model, or
	// library could not be found. Reported with its own exit signal so
	// install problems are distinguishable from load problems.
	ErrDependencyMissing = errors.New("TTS dependency missing")

	// ErrBackendUnavailable indicates a backend was found but could not
	// be loaded or initialized.
	ErrBackendUnavailable = errors.New("TTS backend unavailable")

	// ErrGenerationFailed indicates a chunk produced no audio or the
	// backend failed during synthesis.
	ErrGenerationFailed = errors.New("audio generation failed")
)

// ChunkError wraps a synthesis failure with the 1-based index of the
// failing chunk. A chunk failure is fatal to the run; the index tells the
// user where the run stopped.
type ChunkError struct {
	Index int
	Err   error
}

// Error implements the error interface.
func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *ChunkError) Unwrap() error {
	return e.Err
}

// NewChunkError wraps err with the failing chunk's 1-based index.
func NewChunkError(index int, err error) *ChunkError {
	return &ChunkError{Index: index, Err: err}
}
