package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	"image/png"

	"github.com/disintegration/imaging"
)

// Info contains metadata about a decoded image.
//
// This struct provides essential information about an uploaded image without
// requiring the caller to analyze the pixel data directly.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", or "gif".
	// Detection is based on the decoded stream, not a file extension.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the size of the encoded upload in bytes.
	SizeBytes int `json:"size_bytes"`
}

// Decode decodes an uploaded image from its raw bytes.
//
// Supported formats are PNG, JPEG, and GIF. Returns the decoded image and
// the format name reported by the decoder.
//
// # Errors
//
//   - Returns error if the bytes are not a valid image in a supported format
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// DecodeInfo decodes an uploaded image and returns it together with its
// metadata.
//
// This is the entry point for request handling: one decode pass yields both
// the pixels for analysis and the metadata echoed back in responses.
func DecodeInfo(data []byte) (image.Image, *Info, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}

	bounds := img.Bounds()

	// Check for alpha channel and bit depth from the concrete type.
	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	return img, &Info{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     format,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
		SizeBytes:  len(data),
	}, nil
}

// Fit downscales an image so that neither dimension exceeds maxDim,
// preserving aspect ratio. Images already within the limit are returned
// unchanged.
//
// Large architectural scans routinely come in at print resolution; capping
// them keeps edge detection and OCR runtimes bounded without visibly
// changing detection quality.
func Fit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxDim && bounds.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

// EncodePNGBase64 encodes an image as PNG and returns it base64-encoded,
// ready for embedding in a JSON response.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
