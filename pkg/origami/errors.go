package origami

import (
	"errors"

	"github.com/usr-ein/origami/internal/forecast"
	"github.com/usr-ein/origami/internal/frame"
	"github.com/usr-ein/origami/internal/snapshot"
	"github.com/usr-ein/origami/internal/tensor"
)

var (
	// ErrNotTrained is returned by predict operations on a model whose
	// train call has not yet succeeded.
	ErrNotTrained = errors.New("model is not trained")

	// ErrInvalidArgument covers malformed constructor shapes, negative
	// step counts, and other caller mistakes detectable up front.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientData means the training or context series holds
	// fewer differenced rows than the lag window requires.
	ErrInsufficientData = forecast.ErrInsufficientData

	// ErrIntegrity means a structured data object failed its own
	// consistency check.
	ErrIntegrity = frame.ErrIntegrity

	// ErrTypeMismatch means a loaded file does not hold the expected
	// model kind.
	ErrTypeMismatch = snapshot.ErrTypeMismatch

	// ErrVersionMismatch means a loaded file was written by an
	// incompatible codec version.
	ErrVersionMismatch = snapshot.ErrVersionMismatch
)

// ShapeError reports a trailing-dimension contract violation.
type ShapeError = tensor.ShapeError

// PathError reports a failed precondition on a dump or load path.
type PathError = snapshot.PathError
