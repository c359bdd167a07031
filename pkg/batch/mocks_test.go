package batch

import (
	"github.com/stretchr/testify/mock"

	"github.com/menta2k/facecrop/pkg/cropper"
	"github.com/menta2k/facecrop/pkg/types"
)

// MockProcessor is a mock implementation of FileProcessor
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) ProcessFile(plan types.PathPlan) (cropper.CropResult, error) {
	args := m.Called(plan)
	return cropper.CropResult{}, args.Error(0)
}

// MockDetector is a mock implementation of detection.FaceDetector
type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Detect(pixels []uint8, width, height int) []types.BoundingBox {
	args := m.Called(pixels, width, height)
	if boxes := args.Get(0); boxes != nil {
		return boxes.([]types.BoundingBox)
	}
	return nil
}
