// Package imageutil normalizes product images for model submission.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"golang.org/x/image/draw"
)

const jpegQuality = 85

// ToJPEG decodes raw image bytes, flattens alpha or palette channels onto an
// opaque color model, and re-encodes as JPEG. The model API then always
// receives the same payload shape regardless of the source format. No
// resizing happens here; the generation API accepts native resolutions.
func ToJPEG(data []byte) (out []byte, mimeType string, err error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	flattened := flatten(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flattened, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}

// flatten converts images with alpha or palette channels to plain RGBA.
// Three-channel sources (JPEG's YCbCr) pass through untouched.
func flatten(img image.Image) image.Image {
	switch img.(type) {
	case *image.YCbCr:
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	return dst
}
