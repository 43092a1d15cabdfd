package diag

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Label is the lower-case form used in short output and config files.
func (s Severity) Label() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

// ParseSeverity accepts the config spellings "info", "warn"/"warning" and "error".
func ParseSeverity(value string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "info":
		return SevInfo, nil
	case "warn", "warning":
		return SevWarning, nil
	case "error":
		return SevError, nil
	}
	return SevInfo, errors.Errorf("unknown severity %q (expected info|warn|error)", value)
}
