//go:build !gocv
// +build !gocv

package detect

import (
	"context"
	"errors"
	"image"

	"github.com/intoaec/planfuse/internal/fusion"
)

var errNoGoCV = errors.New("built without the gocv tag; DNN detectors are unavailable")

// ObjectDetector is a stub in builds without the gocv tag.
type ObjectDetector struct{}

// NewObjectDetector reports the missing build tag.
func NewObjectDetector(modelPath string, classNames []string, scoreFloor float64) (*ObjectDetector, error) {
	return nil, errNoGoCV
}

func (d *ObjectDetector) Close() error { return nil }

func (d *ObjectDetector) Source() fusion.Source { return fusion.SourceObjects }

func (d *ObjectDetector) Available() bool { return false }

func (d *ObjectDetector) Classes() []string { return nil }

func (d *ObjectDetector) Detect(ctx context.Context, img image.Image) ([]fusion.RawDetection, error) {
	return nil, errNoGoCV
}

// RegionDetector is a stub in builds without the gocv tag.
type RegionDetector struct{}

// NewRegionDetector reports the missing build tag.
func NewRegionDetector(modelPath, configPath string, classNames []string, scoreFloor float64) (*RegionDetector, error) {
	return nil, errNoGoCV
}

func (d *RegionDetector) Close() error { return nil }

func (d *RegionDetector) Source() fusion.Source { return fusion.SourceRegions }

func (d *RegionDetector) Available() bool { return false }

func (d *RegionDetector) Classes() []string { return nil }

func (d *RegionDetector) Detect(ctx context.Context, img image.Image) ([]fusion.RawDetection, error) {
	return nil, errNoGoCV
}
