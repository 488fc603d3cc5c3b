package filehandler

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Upload constraints for the description service.
const (
	// DefaultUploadMaxDimension bounds the longer edge of uploaded images.
	DefaultUploadMaxDimension = 1024

	// MaxUploadBytes is the size ceiling for an encoded upload.
	MaxUploadBytes = 1 << 20

	// InitialJPEGQuality is the first quality tried.
	InitialJPEGQuality = 90

	// JPEGQualityStep is subtracted after each oversized attempt.
	JPEGQualityStep = 10

	// MinJPEGQuality is the last quality tried.
	MinJPEGQuality = 10
)

// CompressedImage is a JPEG ready for upload.
type CompressedImage struct {
	Data    []byte
	Quality int
	Width   int
	Height  int
}

// CompressForUpload decodes the image at path and compresses it with
// CompressImage. RAW formats the standard decoders cannot read fail here.
func CompressForUpload(path string, maxDimension int) (*CompressedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return CompressReader(f, maxDimension)
}

// CompressReader decodes any registered image format from r and compresses it.
func CompressReader(r io.Reader, maxDimension int) (*CompressedImage, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	log.Debug().Str("format", format).Msg("Image decoded for upload")
	return CompressImage(img, maxDimension)
}

// CompressImage downscales img so that neither edge exceeds maxDimension,
// then JPEG-encodes it starting at InitialJPEGQuality and lowering by
// JPEGQualityStep until the result fits MaxUploadBytes. If even
// MinJPEGQuality is too large, that last encoding is returned.
func CompressImage(img image.Image, maxDimension int) (*CompressedImage, error) {
	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()

	newWidth, newHeight := calculateThumbnailDimensions(origWidth, origHeight, maxDimension)

	src := img
	if newWidth != origWidth || newHeight != origHeight {
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		src = resized
	}

	var buf bytes.Buffer
	quality := InitialJPEGQuality
	for {
		buf.Reset()
		if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		if buf.Len() <= MaxUploadBytes || quality-JPEGQualityStep < MinJPEGQuality {
			break
		}
		quality -= JPEGQualityStep
	}

	log.Debug().
		Int("orig_width", origWidth).
		Int("orig_height", origHeight).
		Int("new_width", newWidth).
		Int("new_height", newHeight).
		Int("quality", quality).
		Int("output_size", buf.Len()).
		Msg("Image compressed for upload")

	return &CompressedImage{
		Data:    buf.Bytes(),
		Quality: quality,
		Width:   newWidth,
		Height:  newHeight,
	}, nil
}

// calculateThumbnailDimensions calculates new dimensions maintaining aspect ratio.
func calculateThumbnailDimensions(width, height, maxDimension int) (int, int) {
	if maxDimension <= 0 || (width <= maxDimension && height <= maxDimension) {
		return width, height
	}

	if width > height {
		newWidth := maxDimension
		newHeight := int(float64(height) * float64(maxDimension) / float64(width))
		return newWidth, max(newHeight, 1)
	}

	newHeight := maxDimension
	newWidth := int(float64(width) * float64(maxDimension) / float64(height))
	return max(newWidth, 1), newHeight
}
