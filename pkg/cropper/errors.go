package cropper

import (
	"errors"
	"fmt"

	"github.com/menta2k/facecrop/pkg/types"
)

var (
	errEmptyImage  = fmt.Errorf("image has no pixels: %w", types.ErrIO)
	errOutOfBounds = errors.New("crop region falls outside the image")
)

// StageOf returns the pipeline stage recorded in err, or "" if there is none
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
