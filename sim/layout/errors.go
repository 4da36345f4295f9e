package layout

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the root of every error reported before a run starts:
// unknown layouts, parameters of the wrong kind, values out of range.
// No run is attempted and no partial result exists when it is returned.
var ErrConfiguration = errors.New("configuration error")

// ErrUnknownLayout is returned by Run and Lookup for an unregistered layout id.
var ErrUnknownLayout = fmt.Errorf("%w: layout not found", ErrConfiguration)

// ConfigError describes one rejected parameter.
type ConfigError struct {
	Layout string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: layout %q: parameter %q: %s", ErrConfiguration, e.Layout, e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}
