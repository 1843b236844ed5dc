package pattern

import (
	"errors"
	"fmt"
)

// ValidationError reports a structurally invalid pattern: duplicate slot
// names, references to undeclared slots, or an invalid distance value.
// It is raised at construction time, before any matching occurs.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid pattern: %s", e.Message)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PatternError reports a malformed regular expression in a constraint value.
// Regexes are compiled eagerly, so this too surfaces at construction time.
type PatternError struct {
	Value string
	Err   error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("bad constraint regex %q: %v", e.Value, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// IsPatternError reports whether err is (or wraps) a PatternError.
func IsPatternError(err error) bool {
	var pe *PatternError
	return errors.As(err, &pe)
}

func newValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
