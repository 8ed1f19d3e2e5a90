package reader

import "github.com/charmbracelet/log"

// cleanupStep is one teardown action. Advisory steps may fail without
// affecting the run's outcome; hard steps propagate.
type cleanupStep struct {
	name     string
	advisory bool
	run      func() error
}

// cleanupResult records the outcome of one teardown step.
type cleanupResult struct {
	name     string
	advisory bool
	err      error
}

// runCleanup executes teardown steps in order and returns the first hard
// failure, if any. Advisory failures are logged and swallowed; teardown
// is not a correctness requirement.
func runCleanup(steps []cleanupStep) error {
	var hard error
	for _, step := range steps {
		res := cleanupResult{name: step.name, advisory: step.advisory, err: step.run()}
		if res.err == nil {
			continue
		}
		if res.advisory {
			log.Warn("advisory cleanup step failed", "step", res.name, "error", res.err)
			continue
		}
		log.Error("cleanup step failed", "step", res.name, "error", res.err)
		if hard == nil {
			hard = res.err
		}
	}
	return hard
}
