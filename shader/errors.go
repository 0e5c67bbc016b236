package shader

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrIncludeCycle marks an include that would re-enter a file already being
// expanded.
var ErrIncludeCycle = errors.New("include cycle")

// UnsupportedStageError is returned before compilation starts when a stage has
// no compiler mapping, or the backend cannot compile it.
type UnsupportedStageError struct {
	Stage   Stage
	Backend string
}

func (e *UnsupportedStageError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("shader stage %s is not supported by the %s backend", e.Stage, e.Backend)
	}
	return fmt.Sprintf("shader stage %s has no compiler mapping", e.Stage)
}

// IncludeError reports an include directive that could not be resolved.
// Path is the joined path that was tried.
type IncludeError struct {
	Path      string
	Requested string
	Err       error
}

func (e *IncludeError) Error() string {
	return fmt.Sprintf("failed to open %s (included as %q): %v", e.Path, e.Requested, e.Err)
}

func (e *IncludeError) Unwrap() error {
	return e.Err
}

// CompileError carries the backend's diagnostics verbatim.
type CompileError struct {
	Name        string
	Stage       Stage
	Diagnostics string
	Err         error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %s (%s): %s", e.Name, e.Stage, e.Diagnostics)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// ModuleLoadError reports a binary that could not become a shader module.
type ModuleLoadError struct {
	Reason string
	Err    error
}

func (e *ModuleLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load shader module: %s: %v", e.Reason, e.Err)
	}
	return "load shader module: " + e.Reason
}

func (e *ModuleLoadError) Unwrap() error {
	return e.Err
}
