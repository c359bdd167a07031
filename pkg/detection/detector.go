// Package detection wraps the pigo face detector and applies the single-face policy.
package detection

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	pigo "github.com/esimov/pigo/core"

	"github.com/menta2k/facecrop/pkg/types"
)

// FaceDetector finds faces in a grayscale pixel buffer of width*height bytes
type FaceDetector interface {
	Detect(pixels []uint8, width, height int) []types.BoundingBox
}

// Params holds the detector tuning. It is fixed when the detector is built.
type Params struct {
	MinSize        int
	MaxSize        int // 0 means the longer image side
	ScoreThreshold float64
	PyramidScale   float64
	StepX          int
	StepY          int
	ClusterIoU     float64
}

// DefaultParams returns the tuning used by the command line tool
func DefaultParams() Params {
	return Params{
		MinSize:        20,
		ScoreThreshold: 2.0,
		PyramidScale:   0.8,
		StepX:          4,
		StepY:          4,
		ClusterIoU:     0.2,
	}
}

// shiftFactor converts the pixel step at the minimum window size into
// pigo's step-relative-to-window factor
func (p Params) shiftFactor() float64 {
	step := p.StepX
	if p.StepY > step {
		step = p.StepY
	}
	return float64(step) / float64(p.MinSize)
}

// scaleFactor converts the image shrink factor into pigo's window growth factor
func (p Params) scaleFactor() float64 {
	return 1 / p.PyramidScale
}

// PigoDetector is a FaceDetector backed by a pigo cascade classifier
type PigoDetector struct {
	classifier *pigo.Pigo
	params     Params
}

// Cascade layout: 8 reserved bytes, tree depth and tree count as little-endian
// uint32, then per tree 4*2^depth-4 code bytes, 2^depth float32 leaves and a
// float32 threshold.
const (
	modelHeaderSize = 16
	minModelSize    = 20
	maxTreeDepth    = 16
)

// checkModelHeader rejects cascades pigo would accept but cannot use, and
// tree counts that would run past the end of the data
func checkModelHeader(model []byte) error {
	depth := binary.LittleEndian.Uint32(model[8:])
	trees := binary.LittleEndian.Uint32(model[12:])
	if depth == 0 || depth > maxTreeDepth || trees == 0 {
		return fmt.Errorf("face detection model has no usable trees (depth %d, trees %d): %w", depth, trees, types.ErrModel)
	}
	treeSize := uint64(8) << depth
	if uint64(trees)*treeSize > uint64(len(model)-modelHeaderSize) {
		return fmt.Errorf("face detection model is truncated (%d trees in %d bytes): %w", trees, len(model), types.ErrModel)
	}
	return nil
}

// NewPigoDetector unpacks a pigo cascade from memory
func NewPigoDetector(model []byte, params Params) (d *PigoDetector, err error) {
	if params.MinSize < 1 || params.PyramidScale <= 0 || params.PyramidScale >= 1 {
		return nil, fmt.Errorf("invalid detector params %+v: %w", params, types.ErrModel)
	}
	if len(model) < minModelSize {
		return nil, fmt.Errorf("face detection model is truncated (%d bytes): %w", len(model), types.ErrModel)
	}
	if err := checkModelHeader(model); err != nil {
		return nil, err
	}

	// pigo indexes the packet without bounds checks
	defer func() {
		if r := recover(); r != nil {
			d = nil
			err = fmt.Errorf("failed to unpack face detection model: %v: %w", r, types.ErrModel)
		}
	}()

	classifier, err := pigo.NewPigo().Unpack(model)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack face detection model: %w: %w", types.ErrModel, err)
	}

	return &PigoDetector{classifier: classifier, params: params}, nil
}

// LoadModelFile reads a cascade file from disk
func LoadModelFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read face detection model %s: %w: %w", path, types.ErrModel, err)
	}
	return data, nil
}

// Params returns the tuning the detector was built with
func (d *PigoDetector) Params() Params {
	return d.params
}

// Detect runs the cascade over the image pyramid and returns clustered faces
// scoring at least the threshold, best first
func (d *PigoDetector) Detect(pixels []uint8, width, height int) []types.BoundingBox {
	if width <= 0 || height <= 0 || len(pixels) < width*height {
		return nil
	}

	maxSize := d.params.MaxSize
	if maxSize == 0 {
		maxSize = width
		if height > maxSize {
			maxSize = height
		}
	}

	cp := pigo.CascadeParams{
		MinSize:     d.params.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: d.params.shiftFactor(),
		ScaleFactor: d.params.scaleFactor(),
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   height,
			Cols:   width,
			Dim:    width,
		},
	}

	dets := d.classifier.RunCascade(cp, 0.0)
	dets = d.classifier.ClusterDetections(dets, d.params.ClusterIoU)

	return boxesFromDetections(dets, d.params.ScoreThreshold)
}

// boxesFromDetections converts pigo's center/scale detections to boxes,
// dropping those below threshold
func boxesFromDetections(dets []pigo.Detection, threshold float64) []types.BoundingBox {
	boxes := make([]types.BoundingBox, 0, len(dets))
	for _, det := range dets {
		if float64(det.Q) < threshold {
			continue
		}
		boxes = append(boxes, types.BoundingBox{
			X:      det.Col - det.Scale/2,
			Y:      det.Row - det.Scale/2,
			Width:  det.Scale,
			Height: det.Scale,
			Score:  float64(det.Q),
		})
	}

	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].Score > boxes[j].Score
	})
	return boxes
}

// Validate accepts a detection result only when it holds exactly one face
func Validate(boxes []types.BoundingBox) (types.BoundingBox, error) {
	if len(boxes) != 1 {
		return types.BoundingBox{}, &types.ValidationError{Found: len(boxes)}
	}
	return boxes[0], nil
}
