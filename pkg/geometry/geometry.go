// Package geometry computes square crop rectangles around a detected face.
package geometry

import (
	"image"

	"github.com/menta2k/facecrop/pkg/types"
)

// SquareCrop returns the largest square that fits in a width x height image,
// centered on the box where possible and shifted inward when the face sits
// closer than side/2 to an edge. width and height must be positive.
func SquareCrop(width, height int, box types.BoundingBox) types.CropRect {
	side := minInt(width, height)
	cx, cy := box.Center()

	x := saturatingSub(cx, side/2)
	y := saturatingSub(cy, side/2)

	if x+side > width {
		x = width - side
	}
	if y+side > height {
		y = height - side
	}

	return types.CropRect{X: x, Y: y, Side: side}
}

// Rectangle converts a crop to an image.Rectangle anchored at origin
func Rectangle(origin image.Point, c types.CropRect) image.Rectangle {
	p0 := origin.Add(image.Pt(c.X, c.Y))
	return image.Rectangle{Min: p0, Max: p0.Add(image.Pt(c.Side, c.Side))}
}

// Contains reports whether the crop lies entirely inside a width x height image
func Contains(width, height int, c types.CropRect) bool {
	return c.X >= 0 && c.Y >= 0 && c.X+c.Side <= width && c.Y+c.Side <= height
}

// saturatingSub returns a-b, or 0 when the result would be negative
func saturatingSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
