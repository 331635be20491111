package media

import (
	"errors"
	"fmt"

	"vidscribe/internal/services"
)

// ToolError describes a failed external tool invocation. Detail, when present, is
// the tool's own diagnostic and becomes the error message verbatim.
type ToolError struct {
	Tool     string
	ExitCode int
	Detail   string
	TimedOut bool
	Err      error
}

func (e *ToolError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.TimedOut {
		return fmt.Sprintf("%s timed out", e.Tool)
	}
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s failed with code %d", e.Tool, e.ExitCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s failed", e.Tool)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Is classifies tool failures for errors.Is against the services markers.
func (e *ToolError) Is(target error) bool {
	switch target {
	case services.ErrExternalTool:
		return true
	case services.ErrTimeout:
		return e.TimedOut
	}
	return false
}

// IsToolError reports whether err came from an external tool invocation.
func IsToolError(err error) bool {
	var toolErr *ToolError
	return errors.As(err, &toolErr)
}
