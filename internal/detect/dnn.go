//go:build gocv
// +build gocv

package detect

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/intoaec/planfuse/internal/fusion"
)

// dnnInputSize is the square input resolution the object detection network
// was exported with.
const dnnInputSize = 640

// nmsThreshold is the IoU threshold for non-maximum suppression within a
// single detector. Cross-detector overlap is the fusion stage's job.
const nmsThreshold = 0.45

// ObjectDetector runs a single-stage object detection network over OpenCV's
// DNN module. The network is expected in ONNX format with the usual
// [1, 4+numClasses, numCandidates] output layout.
type ObjectDetector struct {
	net        gocv.Net
	classNames []string
	scoreFloor float32
	loaded     bool
}

// NewObjectDetector loads the object detection model from an ONNX file.
func NewObjectDetector(modelPath string, classNames []string, scoreFloor float64) (*ObjectDetector, error) {
	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load object detection model from %s", modelPath)
	}
	return &ObjectDetector{
		net:        net,
		classNames: classNames,
		scoreFloor: float32(scoreFloor),
		loaded:     true,
	}, nil
}

// Close releases the underlying network.
func (d *ObjectDetector) Close() error {
	if d.loaded {
		d.loaded = false
		return d.net.Close()
	}
	return nil
}

func (d *ObjectDetector) Source() fusion.Source { return fusion.SourceObjects }

func (d *ObjectDetector) Available() bool { return d.loaded }

func (d *ObjectDetector) Classes() []string { return d.classNames }

// Detect runs the network and returns class-scored boxes after
// non-maximum suppression, mapped back to source image coordinates.
func (d *ObjectDetector) Detect(ctx context.Context, img image.Image) ([]fusion.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.loaded {
		return nil, fmt.Errorf("object detector is closed")
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(dnnInputSize, dnnInputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	// Output is [1, 4+numClasses, N]; reshape to one candidate per column.
	dims := out.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected network output shape %v", dims)
	}
	rows, cols := dims[1], dims[2]
	flat := out.Reshape(1, rows)
	defer flat.Close()

	xScale := float64(img.Bounds().Dx()) / float64(dnnInputSize)
	yScale := float64(img.Bounds().Dy()) / float64(dnnInputSize)

	var boxes []image.Rectangle
	var scores []float32
	var classIDs []int

	for c := 0; c < cols; c++ {
		bestScore := float32(0)
		bestClass := -1
		for r := 4; r < rows; r++ {
			if score := flat.GetFloatAt(r, c); score > bestScore {
				bestScore = score
				bestClass = r - 4
			}
		}
		if bestClass < 0 || bestScore < d.scoreFloor {
			continue
		}

		cx := float64(flat.GetFloatAt(0, c))
		cy := float64(flat.GetFloatAt(1, c))
		w := float64(flat.GetFloatAt(2, c))
		h := float64(flat.GetFloatAt(3, c))

		boxes = append(boxes, image.Rect(
			int((cx-w/2)*xScale), int((cy-h/2)*yScale),
			int((cx+w/2)*xScale), int((cy+h/2)*yScale),
		))
		scores = append(scores, bestScore)
		classIDs = append(classIDs, bestClass)
	}

	keep := gocv.NMSBoxes(boxes, scores, d.scoreFloor, nmsThreshold)

	dets := make([]fusion.RawDetection, 0, len(keep))
	for _, i := range keep {
		dets = append(dets, fusion.RawDetection{
			Source:     fusion.SourceObjects,
			ClassName:  d.className(classIDs[i]),
			ClassID:    classIDs[i],
			Confidence: float64(scores[i]),
			Box: fusion.Box{
				X1: float64(boxes[i].Min.X), Y1: float64(boxes[i].Min.Y),
				X2: float64(boxes[i].Max.X), Y2: float64(boxes[i].Max.Y),
			},
		})
	}
	return dets, nil
}

func (d *ObjectDetector) className(id int) string {
	if id >= 0 && id < len(d.classNames) {
		return d.classNames[id]
	}
	return fmt.Sprintf("class_%d", id)
}

// RegionDetector runs an instance-segmentation network (Mask R-CNN style)
// over OpenCV's DNN module and reports the box of each instance. Masks are
// discarded; downstream fusion only consumes boxes.
type RegionDetector struct {
	net        gocv.Net
	classNames []string
	scoreFloor float32
	loaded     bool
}

// NewRegionDetector loads the segmentation model from its weights and
// graph-config files.
func NewRegionDetector(modelPath, configPath string, classNames []string, scoreFloor float64) (*RegionDetector, error) {
	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load segmentation model from %s", modelPath)
	}
	return &RegionDetector{
		net:        net,
		classNames: classNames,
		scoreFloor: float32(scoreFloor),
		loaded:     true,
	}, nil
}

// Close releases the underlying network.
func (d *RegionDetector) Close() error {
	if d.loaded {
		d.loaded = false
		return d.net.Close()
	}
	return nil
}

func (d *RegionDetector) Source() fusion.Source { return fusion.SourceRegions }

func (d *RegionDetector) Available() bool { return d.loaded }

func (d *RegionDetector) Classes() []string { return d.classNames }

// Detect runs the network and returns one detection per instance whose
// score clears the floor. Output rows follow the detection_out layout:
// [batch, classId, score, left, top, right, bottom] with normalized
// coordinates.
func (d *RegionDetector) Detect(ctx context.Context, img image.Image) ([]fusion.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.loaded {
		return nil, fmt.Errorf("region detector is closed")
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0, image.Pt(mat.Cols(), mat.Rows()),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("detection_out_final")
	defer out.Close()

	dims := out.Size()
	if len(dims) != 4 {
		return nil, fmt.Errorf("unexpected network output shape %v", dims)
	}
	count := dims[2]
	flat := out.Reshape(1, count)
	defer flat.Close()

	width := float64(img.Bounds().Dx())
	height := float64(img.Bounds().Dy())

	dets := make([]fusion.RawDetection, 0, count)
	for i := 0; i < count; i++ {
		score := flat.GetFloatAt(i, 2)
		if score < d.scoreFloor {
			continue
		}
		classID := int(flat.GetFloatAt(i, 1))
		dets = append(dets, fusion.RawDetection{
			Source:     fusion.SourceRegions,
			ClassName:  d.className(classID),
			ClassID:    classID,
			Confidence: float64(score),
			Box: fusion.Box{
				X1: float64(flat.GetFloatAt(i, 3)) * width,
				Y1: float64(flat.GetFloatAt(i, 4)) * height,
				X2: float64(flat.GetFloatAt(i, 5)) * width,
				Y2: float64(flat.GetFloatAt(i, 6)) * height,
			},
		})
	}
	return dets, nil
}

func (d *RegionDetector) className(id int) string {
	if id >= 0 && id < len(d.classNames) {
		return d.classNames[id]
	}
	return fmt.Sprintf("class_%d", id)
}
