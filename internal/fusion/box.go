package fusion

import "math"

// Box is an axis-aligned rectangle in absolute pixel coordinates.
//
// A well-formed box has X1 < X2 and Y1 < Y2. Degenerate boxes (zero or
// negative extent) are tolerated throughout the package: their IoU against
// any box is 0, so they never merge and survive as singleton clusters.
type Box struct {
	X1 float64 `json:"x1"` // Left edge
	Y1 float64 `json:"y1"` // Top edge
	X2 float64 `json:"x2"` // Right edge
	Y2 float64 `json:"y2"` // Bottom edge
}

// Width returns the horizontal extent. Negative for inverted boxes.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent. Negative for inverted boxes.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Area returns Width × Height.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Valid reports whether the box has positive extent on both axes.
func (b Box) Valid() bool { return b.X1 < b.X2 && b.Y1 < b.Y2 }

// finite reports whether all four coordinates are finite numbers.
func (b Box) finite() bool {
	for _, v := range [4]float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IoU computes the Intersection-over-Union of two boxes.
//
// The result is always in [0, 1]. It is 0 when the boxes do not overlap,
// when either box is degenerate, or when the union area is zero (both boxes
// zero-area), which also guards against division by zero. IoU is symmetric,
// and IoU(b, b) == 1 for any box with positive area.
func IoU(a, b Box) float64 {
	left := math.Max(a.X1, b.X1)
	top := math.Max(a.Y1, b.Y1)
	right := math.Min(a.X2, b.X2)
	bottom := math.Min(a.Y2, b.Y2)

	if right < left || bottom < top {
		return 0.0
	}

	intersection := (right - left) * (bottom - top)
	union := a.Area() + b.Area() - intersection
	if union == 0 {
		return 0.0
	}

	return intersection / union
}
