package report

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigError.
	ErrConfiguration = errors.New("report: configuration error")

	// ErrLookup matches every *LookupError.
	ErrLookup = errors.New("report: lookup error")
)

// ConfigError reports a missing or blank required configuration key.
// It is returned before any engine query is issued.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("report: config key %q is required and must not be empty", e.Key)
}

// Is lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// LookupError reports a table that is not listed in the current namespace.
type LookupError struct {
	Table     string
	Namespace string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("report: table %q not found in namespace %q", e.Table, e.Namespace)
}

// Is lets errors.Is(err, ErrLookup) match.
func (e *LookupError) Is(target error) bool { return target == ErrLookup }
