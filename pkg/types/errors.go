package types

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors wrap one of these so callers can use errors.Is.
var (
	// ErrIO covers failures to read, decode, encode or write images and directories
	ErrIO = errors.New("io error")
	// ErrPath is returned when an input path has no usable file name
	ErrPath = errors.New("path error")
	// ErrModel is returned when the detection model cannot be loaded
	ErrModel = errors.New("model error")
	// ErrValidation is the parent of the face count policy errors
	ErrValidation = errors.New("validation failed")
)

// Face count rejections, both wrapping ErrValidation.
var (
	ErrNoFace        error = &ValidationError{Found: 0}
	ErrMultipleFaces error = &ValidationError{Found: 2}
)

// ValidationError reports a detection result that did not contain exactly one face
type ValidationError struct {
	Found int
}

func (e *ValidationError) Error() string {
	if e.Found == 0 {
		return "Validation Failed: No faces detected."
	}
	return fmt.Sprintf("Validation Failed: Multiple faces detected (Found %d).", e.Found)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Is matches ErrNoFace for zero faces and ErrMultipleFaces for any count above one
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	if t.Found == 0 || e.Found == 0 {
		return t.Found == e.Found
	}
	return true
}
