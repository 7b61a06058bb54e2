package viewport

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a session wraps exactly one of them.
var (
	// ErrPreconditionNotMet: engine not ready, wrong load state, load in flight
	ErrPreconditionNotMet = errors.New("precondition not met")
	// ErrUnsupportedFormat: the file extension is not recognized
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEngineOperationFailed: an engine call was rejected
	ErrEngineOperationFailed = errors.New("engine operation failed")
	// ErrResourceUnavailable: canvas or container missing, engine gone
	ErrResourceUnavailable = errors.New("resource unavailable")
)

// Stage names the step of a transition or control that failed
type Stage string

const (
	StageMount            Stage = "mount"
	StageResolve          Stage = "resolve"
	StageSubmit           Stage = "submit"
	StageParseTopology    Stage = "parse_topology"
	StageDeriveModel      Stage = "derive_model"
	StagePreset           Stage = "preset"
	StageRepresentation   Stage = "representation"
	StageParseCoordinates Stage = "parse_coordinates"
	StageMerge            Stage = "merge"
	StageAnimation        Stage = "animation"
	StageCanvas           Stage = "canvas"
	StageFullscreen       Stage = "fullscreen"
	StageReset            Stage = "reset"
)

// StageError tags a failure with the stage it happened in. errors.Is matches
// both the kind and the underlying cause.
type StageError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func engineFailed(stage Stage, err error) error {
	return &StageError{Stage: stage, Kind: ErrEngineOperationFailed, Err: err}
}

func notMet(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrPreconditionNotMet}, args...)...)
}

// StageOf returns the stage of err, or "" when err carries none
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
