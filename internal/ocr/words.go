package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Bounds is a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is a single recognized word with its location and OCR confidence.
type Word struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the recognition confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around the word in the source image.
	Bounds Bounds `json:"bounds"`
}

// ExtractWords runs word-level OCR over an image.
//
// Parameters:
//   - img: Source image, encoded to PNG internally for Tesseract.
//   - language: Tesseract language code (e.g. "eng"). The corresponding
//     language data must be installed on the system.
//   - minConfidence: Words below this recognition confidence (0.0 to 1.0)
//     are dropped. Floor plans are full of dimension strings and hatch
//     marks that Tesseract reads with low confidence; filtering here keeps
//     them out of the label stream.
//
// Empty words and pure whitespace are filtered out. Returns a non-nil slice
// on success; an error if encoding or OCR fails.
func ExtractWords(img image.Image, language string, minConfidence float64) ([]Word, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set OCR image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		confidence := float64(box.Confidence) / 100.0
		if confidence < minConfidence {
			continue
		}
		words = append(words, Word{
			Text:       text,
			Confidence: confidence,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return words, nil
}
