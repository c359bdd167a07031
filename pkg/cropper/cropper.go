// Package cropper runs the single-file pipeline: open, detect, validate,
// compute geometry, crop and save.
package cropper

import (
	"image"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/facecrop/pkg/detection"
	"github.com/menta2k/facecrop/pkg/geometry"
	"github.com/menta2k/facecrop/pkg/processing"
	"github.com/menta2k/facecrop/pkg/types"
)

// Stage names a step of the pipeline
type Stage string

const (
	StageOpen     Stage = "open"
	StageDetect   Stage = "detect"
	StageValidate Stage = "validate"
	StageGeometry Stage = "geometry"
	StageCrop     Stage = "crop"
	StageSave     Stage = "save"
)

// StageError is returned when a pipeline stage fails. Its message is the
// underlying error's message.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FaceCropper produces a square crop around the single face in an image
type FaceCropper struct {
	detector  detection.FaceDetector
	processor *processing.Processor
	log       logrus.FieldLogger
}

// New creates a FaceCropper. The detector is reused for every image.
func New(detector detection.FaceDetector, processor *processing.Processor) *FaceCropper {
	return &FaceCropper{
		detector:  detector,
		processor: processor,
		log:       logrus.StandardLogger(),
	}
}

// SetLogger replaces the logger used for per-stage debug output
func (c *FaceCropper) SetLogger(log logrus.FieldLogger) {
	c.log = log
}

// CropResult describes a successful crop
type CropResult struct {
	Image  image.Image
	Face   types.BoundingBox
	Region types.CropRect
	Width  int
	Height int
}

// CropImage runs detection, validation, geometry and cropping on an
// in-memory image
func (c *FaceCropper) CropImage(img image.Image) (CropResult, error) {
	pixels, w, h := c.processor.Grayscale(img)
	if w == 0 || h == 0 {
		return CropResult{}, &StageError{Stage: StageDetect, Err: errEmptyImage}
	}

	faces := c.detector.Detect(pixels, w, h)
	c.log.WithField("faces", len(faces)).Debug("detection finished")

	face, err := detection.Validate(faces)
	if err != nil {
		return CropResult{}, &StageError{Stage: StageValidate, Err: err}
	}

	region := geometry.SquareCrop(w, h, face)
	if !geometry.Contains(w, h, region) {
		return CropResult{}, &StageError{Stage: StageGeometry, Err: errOutOfBounds}
	}
	c.log.WithFields(logrus.Fields{
		"face": face,
		"crop": region,
	}).Debug("crop computed")

	cropped, err := c.processor.Crop(img, region)
	if err != nil {
		return CropResult{}, &StageError{Stage: StageCrop, Err: err}
	}

	return CropResult{
		Image:  cropped,
		Face:   face,
		Region: region,
		Width:  w,
		Height: h,
	}, nil
}

// ProcessFile crops plan.Input and writes the result to plan.Output. Nothing
// is written unless every earlier stage succeeded.
func (c *FaceCropper) ProcessFile(plan types.PathPlan) (CropResult, error) {
	log := c.log.WithField("file", plan.Input)

	img, err := c.processor.LoadImage(plan.Input)
	if err != nil {
		return CropResult{}, &StageError{Stage: StageOpen, Path: plan.Input, Err: err}
	}
	log.WithField("size", img.Bounds().Size()).Debug("image loaded")

	res, err := c.CropImage(img)
	if err != nil {
		if se, ok := err.(*StageError); ok {
			se.Path = plan.Input
		}
		return CropResult{}, err
	}

	if err := c.processor.SaveImage(res.Image, plan.Output); err != nil {
		return CropResult{}, &StageError{Stage: StageSave, Path: plan.Output, Err: err}
	}
	log.WithField("output", plan.Output).Debug("crop saved")

	return res, nil
}
