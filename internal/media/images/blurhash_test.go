package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeTestPNG(t *testing.T, width, height int, fill color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestComputeBlurHash(t *testing.T) {
	data := encodeTestPNG(t, 200, 300, color.RGBA{R: 180, G: 40, B: 40, A: 255})

	hash, err := ComputeBlurHash(data)
	if err != nil {
		t.Fatalf("ComputeBlurHash() error = %v", err)
	}
	if hash == "" {
		t.Fatal("ComputeBlurHash() returned empty hash")
	}

	// 4x3 components encode to a fixed-length string.
	if len(hash) != 28 {
		t.Errorf("hash length = %d, want 28", len(hash))
	}
}

func TestComputeBlurHash_Deterministic(t *testing.T) {
	data := encodeTestPNG(t, 100, 100, color.RGBA{R: 20, G: 120, B: 200, A: 255})

	first, err := ComputeBlurHash(data)
	if err != nil {
		t.Fatalf("ComputeBlurHash() error = %v", err)
	}
	second, err := ComputeBlurHash(data)
	if err != nil {
		t.Fatalf("ComputeBlurHash() error = %v", err)
	}
	if first != second {
		t.Errorf("same image produced different hashes: %q vs %q", first, second)
	}
}

func TestComputeBlurHash_DifferentImagesDiffer(t *testing.T) {
	red := encodeTestPNG(t, 64, 64, color.RGBA{R: 255, A: 255})
	blue := encodeTestPNG(t, 64, 64, color.RGBA{B: 255, A: 255})

	redHash, err := ComputeBlurHash(red)
	if err != nil {
		t.Fatalf("ComputeBlurHash(red) error = %v", err)
	}
	blueHash, err := ComputeBlurHash(blue)
	if err != nil {
		t.Fatalf("ComputeBlurHash(blue) error = %v", err)
	}
	if redHash == blueHash {
		t.Error("distinct colors produced identical hashes")
	}
}

func TestComputeBlurHash_InvalidData(t *testing.T) {
	if _, err := ComputeBlurHash([]byte("not an image")); err == nil {
		t.Error("ComputeBlurHash() should fail on non-image data")
	}
}
