package imaging

import (
	"image/color"
	"testing"

	"github.com/intoaec/planfuse/internal/fusion"
)

func TestAnnotate_DrawsBoxInComboColor(t *testing.T) {
	src := testImage(200, 200, color.White)
	dets := []fusion.MergedDetection{
		{
			ClassName:  "door",
			Confidence: 0.9,
			Box:        fusion.Box{X1: 50, Y1: 50, X2: 150, Y2: 150},
			Sources:    []fusion.Source{fusion.SourceObjects},
			NumModels:  1,
		},
	}

	out := Annotate(src, dets)

	want := comboColors["objects"]
	if got := out.RGBAAt(50, 100); got != want {
		t.Errorf("left edge pixel: got %v, want %v", got, want)
	}
	if got := out.RGBAAt(149, 100); got != want {
		t.Errorf("right edge pixel: got %v, want %v", got, want)
	}
}

func TestAnnotate_DoesNotModifySource(t *testing.T) {
	src := testImage(100, 100, color.White)
	dets := []fusion.MergedDetection{
		{
			ClassName:  "window",
			Confidence: 0.8,
			Box:        fusion.Box{X1: 20, Y1: 20, X2: 80, Y2: 80},
			Sources:    []fusion.Source{fusion.SourceRegions},
			NumModels:  1,
		},
	}

	Annotate(src, dets)

	white := color.RGBA{255, 255, 255, 255}
	if got := src.RGBAAt(20, 50); got != white {
		t.Errorf("source image was modified: pixel (20,50) = %v", got)
	}
}

func TestAnnotate_MultiModelBoxesAreThicker(t *testing.T) {
	src := testImage(200, 200, color.White)
	dets := []fusion.MergedDetection{
		{
			ClassName:  "door",
			Confidence: 0.85,
			Box:        fusion.Box{X1: 50, Y1: 50, X2: 150, Y2: 150},
			Sources:    []fusion.Source{fusion.SourceObjects, fusion.SourceRegions},
			NumModels:  2,
		},
	}

	out := Annotate(src, dets)

	want := comboColors["objects+regions"]
	for offset := 0; offset < 3; offset++ {
		if got := out.RGBAAt(50+offset, 100); got != want {
			t.Errorf("thickness row %d: got %v, want %v", offset, got, want)
		}
	}
}

func TestAnnotate_EmptyDetections(t *testing.T) {
	src := testImage(50, 50, color.White)

	out := Annotate(src, nil)

	if out.Bounds() != src.Bounds() {
		t.Errorf("bounds changed: got %v, want %v", out.Bounds(), src.Bounds())
	}
	white := color.RGBA{255, 255, 255, 255}
	if got := out.RGBAAt(25, 25); got != white {
		t.Errorf("center pixel: got %v, want white", got)
	}
}

func TestComboKey_OrderIndependent(t *testing.T) {
	a := comboKey([]fusion.Source{fusion.SourceRegions, fusion.SourceObjects})
	b := comboKey([]fusion.Source{fusion.SourceObjects, fusion.SourceRegions})
	if a != b {
		t.Errorf("combo key depends on source order: %q vs %q", a, b)
	}
	if a != "objects+regions" {
		t.Errorf("got %q, want %q", a, "objects+regions")
	}
}

func TestComboColor_StableFallback(t *testing.T) {
	first := comboColor("lidar+radar")
	second := comboColor("lidar+radar")
	if first != second {
		t.Error("fallback color must be deterministic")
	}
	if first.A != 255 {
		t.Errorf("fallback color must be opaque, got alpha %d", first.A)
	}
}
