package processing

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/facecrop/pkg/geometry"
	"github.com/menta2k/facecrop/pkg/types"
)

// Options controls how crops are encoded
type Options struct {
	JPEGQuality  int
	WebPQuality  float32
	WebPLossless bool
}

// DefaultOptions returns the encoder settings used by the command line tool
func DefaultOptions() Options {
	return Options{JPEGQuality: 95, WebPQuality: 90}
}

// Processor handles image loading, cropping and saving
type Processor struct {
	opts Options
}

// NewProcessor creates a new image processor
func NewProcessor(opts Options) *Processor {
	return &Processor{opts: opts}
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	img, openErr := imaging.Open(path)
	if openErr == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			if img, err := webp.Decode(f); err == nil {
				return img, nil
			}
		}
	}

	return nil, fmt.Errorf("failed to open image: %w: %w", types.ErrIO, openErr)
}

// Grayscale converts an image to an 8-bit luminance buffer laid out row by
// row, as consumed by the face detector
func (p *Processor) Grayscale(img image.Image) ([]uint8, int, int) {
	gray := imaging.Grayscale(img)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()

	pixels := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w*4]
		for x := 0; x < w; x++ {
			pixels[y*w+x] = row[x*4]
		}
	}
	return pixels, w, h
}

// Crop extracts the crop rectangle, given relative to the image's top-left corner
func (p *Processor) Crop(img image.Image, rect types.CropRect) (image.Image, error) {
	bounds := img.Bounds()
	if !geometry.Contains(bounds.Dx(), bounds.Dy(), rect) || rect.Side <= 0 {
		return nil, fmt.Errorf("crop %+v is outside the %dx%d image", rect, bounds.Dx(), bounds.Dy())
	}
	return imaging.Crop(img, geometry.Rectangle(bounds.Min, rect)), nil
}

// SaveImage encodes the image in the format named by the output extension.
// The image is written to a temporary file next to path and renamed over it
// only once encoding succeeded, so a failure never touches what is at path.
func (p *Processor) SaveImage(img image.Image, path string) error {
	encode, err := p.encoder(path)
	if err != nil {
		return fmt.Errorf("failed to save output %s: %w: %w", path, types.ErrIO, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save output %s: %w: %w", path, types.ErrIO, err)
	}
	tmpPath := tmp.Name()

	err = encode(tmp, img)
	if err == nil {
		err = tmp.Chmod(0o644)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save output %s: %w: %w", path, types.ErrIO, err)
	}
	return nil
}

// encoder picks the encoder for the output extension
func (p *Processor) encoder(path string) (func(io.Writer, image.Image) error, error) {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		opts := &webp.Options{Lossless: p.opts.WebPLossless, Quality: p.opts.WebPQuality}
		return func(w io.Writer, img image.Image) error {
			return webp.Encode(w, img, opts)
		}, nil
	}

	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return nil, err
	}
	var opts []imaging.EncodeOption
	if format == imaging.JPEG {
		opts = append(opts, imaging.JPEGQuality(p.opts.JPEGQuality))
	}
	return func(w io.Writer, img image.Image) error {
		return imaging.Encode(w, img, format, opts...)
	}, nil
}
