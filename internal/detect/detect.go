package detect

import (
	"context"
	"image"
	"strings"

	"github.com/intoaec/planfuse/internal/fusion"
)

// Detector produces raw detections for one source model.
type Detector interface {
	// Source identifies which detector this is in fusion terms.
	Source() fusion.Source

	// Available reports whether the detector can actually run in this
	// build and environment (model files present, native libraries
	// compiled in).
	Available() bool

	// Classes lists the class names this detector can emit, for
	// capability reporting. OCR-backed detectors report their label
	// vocabulary.
	Classes() []string

	// Detect analyzes an image and returns its raw detections. The
	// returned slice is non-nil on success, possibly empty.
	Detect(ctx context.Context, img image.Image) ([]fusion.RawDetection, error)
}

// FilterClasses keeps only detections whose class name is in keep,
// case-insensitively. An empty keep list keeps everything.
func FilterClasses(dets []fusion.RawDetection, keep []string) []fusion.RawDetection {
	if len(keep) == 0 {
		return dets
	}
	allowed := make(map[string]bool, len(keep))
	for _, name := range keep {
		allowed[strings.ToLower(strings.TrimSpace(name))] = true
	}
	out := make([]fusion.RawDetection, 0, len(dets))
	for _, det := range dets {
		if allowed[strings.ToLower(det.ClassName)] {
			out = append(out, det)
		}
	}
	return out
}

// FilterConfidence drops detections below the confidence floor.
func FilterConfidence(dets []fusion.RawDetection, min float64) []fusion.RawDetection {
	if min <= 0 {
		return dets
	}
	out := make([]fusion.RawDetection, 0, len(dets))
	for _, det := range dets {
		if det.Confidence >= min {
			out = append(out, det)
		}
	}
	return out
}
