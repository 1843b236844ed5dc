package convert

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid converter configuration: an unknown UD
// version, unknown rule names in the force-disable list, or a catalog rule
// whose pattern failed to build. It is fatal at conversion start.
type ConfigError struct {
	Message string
	Rule    string // offending rule name, when applicable
}

func (e *ConfigError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("converter config: rule %s: %s", e.Rule, e.Message)
	}
	return fmt.Sprintf("converter config: %s", e.Message)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
