package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// maxCoverEdge is the longest edge a stored cover is allowed to have.
// Larger images are scaled down before encoding.
const maxCoverEdge = 1024

// jpegQuality balances file size against visible artifacts on box art.
const jpegQuality = 85

// ProcessResult describes a normalized cover image.
type ProcessResult struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Process normalizes a downloaded cover: decode, scale down to fit
// maxCoverEdge when needed, re-encode as JPEG.
func Process(data []byte) (*ProcessResult, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxCoverEdge || height > maxCoverEdge {
		var dstWidth, dstHeight int
		if width > height {
			dstWidth = maxCoverEdge
			dstHeight = max((height*maxCoverEdge)/width, 1)
		} else {
			dstHeight = maxCoverEdge
			dstWidth = max((width*maxCoverEdge)/height, 1)
		}

		dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		width = dstWidth
		height = dstHeight
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return &ProcessResult{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  width,
		Height: height,
	}, nil
}
