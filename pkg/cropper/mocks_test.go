package cropper

import (
	"github.com/stretchr/testify/mock"

	"github.com/menta2k/facecrop/pkg/types"
)

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
