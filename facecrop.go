// Package facecrop finds the single face in a photograph and writes a square
// crop centered on it, for one image file or every image in a directory.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/menta2k/facecrop"
//	)
//
//	func main() {
//		fc, err := facecrop.New(facecrop.DefaultOptions())
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// writes photo_cropped.jpg next to photo.jpg
//		report, err := fc.Run("photo.jpg", "")
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("succeeded=%d skipped=%d failed=%d", report.Succeeded, report.Skipped, report.Failed)
//	}
//
// The package consists of these components:
//
//  1. Detection (pkg/detection): pigo face detector and the exactly-one-face rule
//  2. Geometry (pkg/geometry): the largest square crop around the face that fits the image
//  3. Processing (pkg/processing): image decoding, grayscale conversion, cropping and encoding
//  4. Cropper (pkg/cropper): the per-file open, detect, validate, crop, save pipeline
//  5. Batch (pkg/batch): directory scanning with per-file failure isolation and a report
//
// Accepted inputs are jpg, jpeg, png, bmp, tif, tiff and webp files. Each crop
// is written in the format of its output file extension.
package facecrop

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/menta2k/facecrop/assets"
	"github.com/menta2k/facecrop/pkg/batch"
	"github.com/menta2k/facecrop/pkg/cropper"
	"github.com/menta2k/facecrop/pkg/detection"
	"github.com/menta2k/facecrop/pkg/processing"
	"github.com/menta2k/facecrop/pkg/types"
)

// Version of the face cropper
const Version = "1.0.0"

// Options configures a FaceCrop
type Options struct {
	Detector detection.Params
	Output   processing.Options
	Model    []byte // pigo cascade; nil selects the embedded model
}

// DefaultOptions returns the settings used by the command line tool
func DefaultOptions() Options {
	return Options{
		Detector: detection.DefaultParams(),
		Output:   processing.DefaultOptions(),
	}
}

// FaceCrop provides a high-level interface over detection, cropping and batch processing
type FaceCrop struct {
	detector  detection.FaceDetector
	processor *processing.Processor
	cropper   *cropper.FaceCropper
	batch     *batch.Orchestrator
}

// New loads the face detection model once and builds a FaceCrop around it.
// Any error wraps types.ErrModel.
func New(opts Options) (*FaceCrop, error) {
	model := opts.Model
	if model == nil {
		var err error
		model, err = assets.Model(assets.DefaultModel)
		if err != nil {
			return nil, err
		}
	}

	detector, err := detection.NewPigoDetector(model, opts.Detector)
	if err != nil {
		return nil, err
	}

	return NewWithDetector(detector, opts.Output), nil
}

// NewWithDetector builds a FaceCrop around an existing detector
func NewWithDetector(detector detection.FaceDetector, output processing.Options) *FaceCrop {
	processor := processing.NewProcessor(output)
	fc := cropper.New(detector, processor)

	return &FaceCrop{
		detector:  detector,
		processor: processor,
		cropper:   fc,
		batch:     batch.New(fc),
	}
}

// SetOutput redirects the per-file progress lines
func (f *FaceCrop) SetOutput(stdout, stderr io.Writer) {
	f.batch.SetOutput(stdout, stderr)
}

// Run processes input as a file or a directory. See batch.Orchestrator.Run.
func (f *FaceCrop) Run(input, output string) (*types.BatchReport, error) {
	return f.batch.Run(input, output)
}

// ProcessFile crops a single image; an empty output writes next to the input
func (f *FaceCrop) ProcessFile(input, output string) (*types.BatchReport, error) {
	return f.batch.RunFile(input, output)
}

// ProcessDirectory crops every image directly inside dir
func (f *FaceCrop) ProcessDirectory(dir, outputDir string) (*types.BatchReport, error) {
	return f.batch.RunDirectory(dir, outputDir)
}

// CropImage crops an in-memory image without touching the filesystem
func (f *FaceCrop) CropImage(img image.Image) (cropper.CropResult, error) {
	return f.cropper.CropImage(img)
}

// LoadImage loads an image from file
func (f *FaceCrop) LoadImage(path string) (image.Image, error) {
	return f.processor.LoadImage(path)
}

// SaveImage saves an image in the format named by the path's extension
func (f *FaceCrop) SaveImage(img image.Image, path string) error {
	return f.processor.SaveImage(img, path)
}

// WriteReport saves a batch report as indented JSON
func WriteReport(report *types.BatchReport, path string) error {
	js, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, js, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w: %w", path, types.ErrIO, err)
	}
	return nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
