package pipeline

import (
	"fmt"
	"strings"

	"github.com/jmagar/ytgrab/internal/model"
)

// AttemptError captures one failed backend attempt.
type AttemptError struct {
	Backend string
	Stage   model.Stage
	Err     error
}

func (e AttemptError) Error() string {
	if model.StageOf(e.Err) != "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Stage, e.Err)
}

func (e AttemptError) Unwrap() error { return e.Err }

// AllBackendsFailedError is returned when no backend attempt succeeded.
type AllBackendsFailedError struct {
	Attempts []AttemptError
}

func (e *AllBackendsFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return "all backends failed"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return fmt.Sprintf("all backends failed: %s", strings.Join(parts, "; "))
}

// Unwrap exposes every attempt cause to errors.Is and errors.As.
func (e *AllBackendsFailedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}
