package core

import (
	"errors"
	"fmt"
)

// Domain errors for field pipeline operations.
var (
	// ErrUnknownCharge indicates a charge id that is not in the scene.
	ErrUnknownCharge = errors.New("champ: unknown charge id")

	// ErrChargeLocked indicates a mutation of a locked charge's position.
	ErrChargeLocked = errors.New("champ: charge is locked")

	// ErrTierOutOfRange indicates a quality tier outside [0,3].
	ErrTierOutOfRange = errors.New("champ: quality tier out of range")

	// ErrTooManyCharges indicates more charges than the GPU evaluator can bind.
	ErrTooManyCharges = errors.New("champ: charge count exceeds evaluator limit")

	// ErrEvaluatorUnavailable indicates the scalar-field evaluator has no usable context.
	ErrEvaluatorUnavailable = errors.New("champ: field evaluator unavailable")

	// ErrShaderCompile indicates a shader stage failed to compile.
	ErrShaderCompile = errors.New("champ: shader compile failed")

	// ErrShaderLink indicates the shader program failed to link.
	ErrShaderLink = errors.New("champ: shader link failed")

	// ErrEmptyScene indicates an operation that needs at least one charge.
	ErrEmptyScene = errors.New("champ: scene has no charges")

	// ErrInvalidSettings indicates a settings value outside its valid range.
	ErrInvalidSettings = errors.New("champ: invalid settings")

	// ErrUnknownPreset indicates a preset name that is not registered.
	ErrUnknownPreset = errors.New("champ: unknown preset")

	// ErrNothingToUndo indicates the history cursor is at its oldest snapshot.
	ErrNothingToUndo = errors.New("champ: nothing to undo")

	// ErrNothingToRedo indicates the history cursor is at its newest snapshot.
	ErrNothingToRedo = errors.New("champ: nothing to redo")
)

// FrameError wraps an error with render-loop context.
type FrameError struct {
	Frame   uint64
	Stage   string
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d, stage %s: %v", e.Frame, e.Stage, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
