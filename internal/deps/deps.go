package deps

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency vidscribe relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Err returns nil when the dependency is available and an error carrying Detail otherwise.
func (s Status) Err() error {
	if s.Available {
		return nil
	}
	if s.Detail == "" {
		return fmt.Errorf("%s unavailable", s.Name)
	}
	return errors.New(s.Detail)
}

// Check resolves the requirement's command on PATH.
func (r Requirement) Check() Status {
	cmd := strings.TrimSpace(r.Command)
	status := Status{
		Name:        r.Name,
		Command:     cmd,
		Description: strings.TrimSpace(r.Description),
		Optional:    r.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, req.Check())
	}
	return results
}
