package timeline

import "errors"

var (
	// ErrSimulationStepFailed is returned when the host fails to copy or
	// advance a slot.
	ErrSimulationStepFailed = errors.New("simulation step failed")

	// ErrControllerApplyFailed is returned when the controller fails to
	// apply the edits of a frame.
	ErrControllerApplyFailed = errors.New("controller apply failed")

	// ErrPathEvaluationFailed is returned when a data path cannot be read
	// from or written to a frame.
	ErrPathEvaluationFailed = errors.New("path evaluation failed")
)
