package detection

import (
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Bounds is a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Point is a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RoomBox is a rectangular room candidate found by contour analysis.
type RoomBox struct {
	// Bounds is the bounding box enclosing the contour.
	Bounds Bounds `json:"bounds"`

	// Area is the bounding box area in square pixels.
	Area int `json:"area"`

	// Confidence is the rectangularity score (0.0 to 1.0): how closely the
	// contour length matches the bounding box perimeter. A clean rectangular
	// room outline scores near 1.0.
	Confidence float64 `json:"confidence"`
}

// edgeThreshold is the grayscale gradient above which a pixel counts as an
// edge. Floor-plan line work is near-black on near-white, so a generous
// threshold tolerates anti-aliasing without picking up paper texture.
const edgeThreshold = 30.0

// minContourSize discards tiny contours (dimension ticks, arrowheads) as noise.
const minContourSize = 10

// DetectRoomBoxes finds rectangular room candidates in a floor-plan image.
//
// Parameters:
//   - img: Source image. Any color model; converted to grayscale internally.
//   - minArea: Minimum bounding-box area in square pixels. Filters out
//     furniture symbols and annotation marks. Typical: 500-5000 depending
//     on drawing scale.
//   - tolerance: Minimum rectangularity (0.0 to 1.0). Higher values require
//     contours to trace their bounding box more exactly. Typical: 0.5-0.8;
//     room outlines are rarely perfect because of door openings.
//
// Returns the candidates sorted by area, largest first. The error is
// reserved for future preprocessing failures and is currently always nil.
func DetectRoomBoxes(img image.Image, minArea int, tolerance float64) ([]RoomBox, error) {
	prepared := blur.Box(effect.Grayscale(img), 1.0)

	bounds := prepared.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	edges := detectEdges(prepared, width, height)
	contours := findContours(edges, width, height)

	rooms := make([]RoomBox, 0, len(contours))
	for _, contour := range contours {
		if len(contour) < 4 {
			continue
		}

		minX, minY := width, height
		maxX, maxY := 0, 0
		for _, p := range contour {
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}

		boxWidth := maxX - minX
		boxHeight := maxY - minY
		area := boxWidth * boxHeight
		if area < minArea {
			continue
		}

		perimeter := 2 * (boxWidth + boxHeight)
		rectangularity := 1.0 - math.Abs(float64(len(contour)-perimeter))/float64(perimeter)
		if rectangularity < tolerance {
			continue
		}

		rooms = append(rooms, RoomBox{
			Bounds: Bounds{
				X1: minX + bounds.Min.X,
				Y1: minY + bounds.Min.Y,
				X2: maxX + bounds.Min.X,
				Y2: maxY + bounds.Min.Y,
			},
			Area:       area,
			Confidence: rectangularity,
		})
	}

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].Area > rooms[j].Area
	})

	return rooms, nil
}

// detectEdges performs gradient-based edge detection on a grayscale RGBA
// image. Border pixels are never edges.
func detectEdges(img *image.RGBA, width, height int) [][]bool {
	bounds := img.Bounds()
	edges := make([][]bool, height)

	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				continue
			}

			// The image is grayscale, so the red channel is the luminance.
			c := img.RGBAAt(x+bounds.Min.X, y+bounds.Min.Y).R
			cx := img.RGBAAt(x+1+bounds.Min.X, y+bounds.Min.Y).R
			cy := img.RGBAAt(x+bounds.Min.X, y+1+bounds.Min.Y).R

			dx := math.Abs(float64(c) - float64(cx))
			dy := math.Abs(float64(c) - float64(cy))

			if dx > edgeThreshold || dy > edgeThreshold {
				edges[y][x] = true
			}
		}
	}

	return edges
}

// findContours groups connected edge pixels (8-connected) into contours and
// drops contours below minContourSize.
func findContours(edges [][]bool, width, height int) [][]Point {
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	contours := make([][]Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges[y][x] && !visited[y][x] {
				contour := make([]Point, 0)
				floodFill(edges, visited, x, y, width, height, &contour)
				if len(contour) >= minContourSize {
					contours = append(contours, contour)
				}
			}
		}
	}

	return contours
}

// floodFill collects one connected component starting at (startX, startY).
// Iterative with an explicit stack so large wall outlines cannot overflow
// the goroutine stack.
func floodFill(edges, visited [][]bool, startX, startY, width, height int, contour *[]Point) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !edges[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		*contour = append(*contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}
