package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// ImageService prepares course cover images for saving next to the
// course manifest.
//
// Example usage:
//
//	svc := NewImageService()
//	cover, err := svc.Cover(ctx, imageData, 600)
//	// cover is a JPEG that fits within 600x600
type ImageService struct {
	quality int
}

// NewImageService creates a new ImageService that encodes JPEG at quality 90.
func NewImageService() *ImageService {
	return &ImageService{quality: 90}
}

// Cover decodes a JPEG or PNG image, scales it down to fit within
// maxSize x maxSize (keeping the aspect ratio) and re-encodes it as JPEG.
//
// Images that already fit are only re-encoded. A maxSize <= 0 disables
// scaling.
//
// Example:
//
//	// A 750x422 course image with maxSize 600 becomes 600x337
//	cover, err := svc.Cover(ctx, data, 600)
func (s *ImageService) Cover(ctx context.Context, data []byte, maxSize int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := FitWithin(bounds.Dx(), bounds.Dy(), maxSize)

	out := img
	if width != bounds.Dx() || height != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		// Catmull-Rom gives the best downscaling quality of the x/image kernels
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FitWithin returns the dimensions of a width x height rectangle scaled down
// to fit inside a maxSize square. Rectangles that already fit are returned
// unchanged.
func FitWithin(width, height, maxSize int) (int, int) {
	if maxSize <= 0 || (width <= maxSize && height <= maxSize) || width == 0 || height == 0 {
		return width, height
	}

	ratio := float64(width) / float64(height)
	if width >= height {
		return maxSize, max(1, int(float64(maxSize)/ratio))
	}
	return max(1, int(float64(maxSize)*ratio)), maxSize
}
