package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// testImage creates a solid-color image for encoding round trips.
func testImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeInfo(t *testing.T) {
	data := encodePNG(t, testImage(64, 48, color.White))

	img, info, err := DecodeInfo(data)
	if err != nil {
		t.Fatalf("DecodeInfo failed: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("decoded size: got %v, want 64x48", img.Bounds())
	}
	if info.Width != 64 || info.Height != 48 {
		t.Errorf("info size: got %dx%d, want 64x48", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %q, want %q", info.Format, "png")
	}
	if info.SizeBytes != len(data) {
		t.Errorf("size bytes: got %d, want %d", info.SizeBytes, len(data))
	}
}

func TestDecode_InvalidData(t *testing.T) {
	_, _, err := Decode([]byte("not an image"))
	if err == nil {
		t.Error("expected error for invalid image data")
	}
}

func TestDecode_EmptyData(t *testing.T) {
	_, _, err := Decode(nil)
	if err == nil {
		t.Error("expected error for empty data")
	}
}

func TestFit_SmallImageUnchanged(t *testing.T) {
	img := testImage(100, 50, color.White)

	out := Fit(img, 200)

	if out != image.Image(img) {
		t.Error("image within the limit must be returned unchanged")
	}
}

func TestFit_DownscalesPreservingAspect(t *testing.T) {
	img := testImage(400, 200, color.White)

	out := Fit(img, 100)

	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 50 {
		t.Errorf("got %dx%d, want 100x50", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestEncodePNGBase64_RoundTrip(t *testing.T) {
	img := testImage(10, 10, color.RGBA{200, 30, 30, 255})

	encoded, err := EncodePNGBase64(img)
	if err != nil {
		t.Fatalf("EncodePNGBase64 failed: %v", err)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("result is not valid base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("result is not a valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 10 || decoded.Bounds().Dy() != 10 {
		t.Errorf("round-trip size: got %v, want 10x10", decoded.Bounds())
	}
}
