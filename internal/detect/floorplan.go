package detect

import (
	"context"
	"fmt"
	"image"

	"github.com/intoaec/planfuse/internal/detection"
	"github.com/intoaec/planfuse/internal/fusion"
	"github.com/intoaec/planfuse/internal/ocr"
)

// FloorplanDetector extracts room labels from architectural drawings by
// combining word-level OCR with contour-based room candidates.
//
// Each recognized word becomes one detection: its class name is the
// fuzzy-corrected label, its confidence is the OCR confidence, and its
// fuzzy score records how well the raw text matched the room vocabulary.
// When a word sits inside a detected room outline, the detection's box is
// widened from the word's own bounds to the room's bounds, so a "Kitchen"
// label ends up covering the kitchen rather than just the text.
type FloorplanDetector struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// MinConfidence drops OCR words below this recognition confidence.
	MinConfidence float64

	// FuzzyThreshold is the vocabulary-match score at or above which a
	// word's text is replaced by its best vocabulary match.
	FuzzyThreshold float64

	// MinRoomArea is the minimum area in square pixels for a contour to
	// count as a room candidate.
	MinRoomArea int

	// RoomTolerance is the minimum rectangularity for room candidates.
	RoomTolerance float64
}

// NewFloorplanDetector returns a detector with the defaults used by the
// service: English OCR, a 0.4 confidence floor, and moderate room-contour
// requirements.
func NewFloorplanDetector() *FloorplanDetector {
	return &FloorplanDetector{
		Language:       "eng",
		MinConfidence:  0.4,
		FuzzyThreshold: ocr.DefaultFuzzyThreshold,
		MinRoomArea:    2000,
		RoomTolerance:  0.5,
	}
}

func (d *FloorplanDetector) Source() fusion.Source { return fusion.SourceFloorplan }

// Available is always true: the analyzer needs no model files, only the
// system Tesseract installation, which is checked at first use.
func (d *FloorplanDetector) Available() bool { return true }

// Classes reports the room-name vocabulary OCR output is corrected
// against. Uncorrected text can still pass through, so this is the
// expected label set rather than a closed one.
func (d *FloorplanDetector) Classes() []string {
	return append([]string(nil), ocr.KnownLabels...)
}

// Detect runs OCR and contour analysis and merges them into one detection
// per recognized label.
func (d *FloorplanDetector) Detect(ctx context.Context, img image.Image) ([]fusion.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words, err := ocr.ExtractWords(img, d.Language, d.MinConfidence)
	if err != nil {
		return nil, fmt.Errorf("floor-plan OCR failed: %w", err)
	}

	rooms, err := detection.DetectRoomBoxes(img, d.MinRoomArea, d.RoomTolerance)
	if err != nil {
		return nil, fmt.Errorf("room contour detection failed: %w", err)
	}

	dets := make([]fusion.RawDetection, 0, len(words))
	for _, word := range words {
		label, score := ocr.CorrectLabel(word.Text, d.FuzzyThreshold)
		fuzzy := score

		box := fusion.Box{
			X1: float64(word.Bounds.X1), Y1: float64(word.Bounds.Y1),
			X2: float64(word.Bounds.X2), Y2: float64(word.Bounds.Y2),
		}
		if room, ok := containingRoom(rooms, word.Bounds); ok {
			box = fusion.Box{
				X1: float64(room.Bounds.X1), Y1: float64(room.Bounds.Y1),
				X2: float64(room.Bounds.X2), Y2: float64(room.Bounds.Y2),
			}
		}

		dets = append(dets, fusion.RawDetection{
			Source:     fusion.SourceFloorplan,
			ClassName:  label,
			ClassID:    -1,
			Confidence: word.Confidence,
			Box:        box,
			FuzzyScore: &fuzzy,
		})
	}
	return dets, nil
}

// containingRoom returns the smallest room candidate that fully contains
// the word's bounds. Rooms arrive sorted largest-first, so the last match
// wins.
func containingRoom(rooms []detection.RoomBox, w ocr.Bounds) (detection.RoomBox, bool) {
	var best detection.RoomBox
	found := false
	for _, room := range rooms {
		b := room.Bounds
		if w.X1 >= b.X1 && w.Y1 >= b.Y1 && w.X2 <= b.X2 && w.Y2 <= b.Y2 {
			best = room
			found = true
		}
	}
	return best, found
}
