package thermal

import (
	"errors"
	"fmt"
)

// ErrUnknownLevel is wrapped by every LookupError.
var ErrUnknownLevel = errors.New("no table entry for configuration value")

// LookupError reports a configuration value missing from a model table.
type LookupError struct {
	Table string // e.g. "wall_ua"
	Field string // scenario field that selected the entry
	Value fmt.Stringer
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %s=%s not in %s table", ErrUnknownLevel, e.Field, e.Value, e.Table)
}

func (e *LookupError) Unwrap() error { return ErrUnknownLevel }
