package catalog

import (
	"errors"
	"fmt"
)

// NotReadyError reports that the catalog cannot be used yet: the file is
// missing, too small to be a complete build, or decoded to nothing.
type NotReadyError struct {
	Path   string
	Reason string
}

// Error implements the error interface for NotReadyError.
func (e *NotReadyError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("catalog not ready: %s", e.Reason)
	}
	return fmt.Sprintf("catalog not ready (%s): %s", e.Path, e.Reason)
}

// IsNotReady returns true if err is or wraps a NotReadyError.
func IsNotReady(err error) bool {
	var target *NotReadyError
	return errors.As(err, &target)
}
