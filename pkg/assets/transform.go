package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

// FillCrop scales src to cover a w×h box and crops the overflow around the center.
func FillCrop(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()

	// Pick the largest centered source rectangle with the target aspect ratio.
	crop := b
	if sw*h > sh*w {
		cw := sh * w / h
		x0 := b.Min.X + (sw-cw)/2
		crop = image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	} else if sw*h < sh*w {
		ch := sw * h / w
		y0 := b.Min.Y + (sh-ch)/2
		crop = image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}

// ProcessProfileImage decodes a JPEG, PNG or GIF image, fill-crops it to
// ProfileImageSize and re-encodes it as JPEG.
func ProcessProfileImage(r io.Reader) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}

	var buf bytes.Buffer
	out := FillCrop(src, ProfileImageSize, ProfileImageSize)
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
