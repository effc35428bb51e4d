package imaging

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/intoaec/planfuse/internal/fusion"
)

// comboColors maps a sorted source combination to its box color. Agreement
// between detectors is the interesting signal, so each combination gets its
// own color rather than coloring by class.
var comboColors = map[string]color.RGBA{
	"objects":                   {0, 0, 255, 255},   // Blue
	"regions":                   {255, 0, 255, 255}, // Magenta
	"floorplan":                 {0, 200, 0, 255},   // Green
	"objects+regions":           {255, 165, 0, 255}, // Orange
	"floorplan+objects":         {230, 210, 0, 255}, // Yellow
	"floorplan+regions":         {0, 200, 200, 255}, // Cyan
	"floorplan+objects+regions": {255, 0, 0, 255},   // Red
}

// comboKey builds the color-map key for a detection's source set. Sources
// are sorted so the key is independent of detection order.
func comboKey(sources []fusion.Source) string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	sort.Strings(names)
	return strings.Join(names, "+")
}

// comboColor returns the color for a source combination, deriving a stable
// fallback hue for combinations outside the known map.
func comboColor(key string) color.RGBA {
	if c, ok := comboColors[key]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	hue := float64(h.Sum32()%360)
	c := colorful.Hsv(hue, 0.85, 0.9)
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}
}

// Annotate renders merged detections onto a copy of the source image.
//
// Each detection is drawn as a rectangle colored by the combination of
// detectors that produced it, with a label showing the class name, the
// model count when more than one detector agreed, and the confidence.
// Boxes confirmed by multiple detectors are drawn thicker. A legend in the
// top-left corner lists the combinations present in this result.
//
// The source image is not modified.
func Annotate(src image.Image, detections []fusion.MergedDetection) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)

	seen := make(map[string]bool)
	var combos []string

	for _, det := range detections {
		key := comboKey(det.Sources)
		col := comboColor(key)
		if !seen[key] {
			seen[key] = true
			combos = append(combos, key)
		}

		thickness := 2
		if det.NumModels > 1 {
			thickness = 3
		}

		r := image.Rect(
			int(det.Box.X1), int(det.Box.Y1),
			int(det.Box.X2), int(det.Box.Y2),
		).Intersect(bounds)
		drawRect(dst, r, col, thickness)

		label := det.ClassName
		if det.NumModels > 1 {
			label += fmt.Sprintf(" (%d models)", det.NumModels)
		}
		label += fmt.Sprintf(" %.2f", det.Confidence)
		drawLabel(dst, r.Min.X, r.Min.Y, label, col)
	}

	sort.Strings(combos)
	drawLegend(dst, combos)

	return dst
}

// drawRect draws a rectangle outline of the given edge thickness, growing
// inward from the rectangle bounds.
func drawRect(dst *image.RGBA, r image.Rectangle, col color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		inner := r.Inset(t)
		if inner.Empty() {
			return
		}
		for x := inner.Min.X; x < inner.Max.X; x++ {
			dst.SetRGBA(x, inner.Min.Y, col)
			dst.SetRGBA(x, inner.Max.Y-1, col)
		}
		for y := inner.Min.Y; y < inner.Max.Y; y++ {
			dst.SetRGBA(inner.Min.X, y, col)
			dst.SetRGBA(inner.Max.X-1, y, col)
		}
	}
}

const labelHeight = 14 // basicfont.Face7x13 line height plus padding

// drawLabel draws text on a filled background just above (x, y), clamping
// to the top edge when the box touches it.
func drawLabel(dst *image.RGBA, x, y int, text string, bg color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil() + 4

	top := y - labelHeight
	if top < dst.Bounds().Min.Y {
		top = y
	}
	fillRect(dst, image.Rect(x, top, x+width, top+labelHeight), bg)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(x+2, top+labelHeight-3),
	}
	d.DrawString(text)
}

// drawLegend stacks one swatch-plus-key row per source combination in the
// top-left corner.
func drawLegend(dst *image.RGBA, combos []string) {
	face := basicfont.Face7x13
	y := dst.Bounds().Min.Y + 10
	for _, key := range combos {
		col := comboColor(key)
		fillRect(dst, image.Rect(10, y, 30, y+10), col)
		d := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(color.Black),
			Face: face,
			Dot:  fixed.P(35, y+10),
		}
		d.DrawString(key)
		y += labelHeight + 4
	}
}

func fillRect(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	r = r.Intersect(dst.Bounds())
	for yy := r.Min.Y; yy < r.Max.Y; yy++ {
		for xx := r.Min.X; xx < r.Max.X; xx++ {
			dst.SetRGBA(xx, yy, col)
		}
	}
}
