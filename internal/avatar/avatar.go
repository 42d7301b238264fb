// Package avatar turns uploaded profile pictures into small square thumbnails.
package avatar

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// DefaultSide is the edge length profile thumbnails are bounded by.
const DefaultSide = 128

// MaxPixels bounds the decoded size of an upload, independent of how well
// it compresses.
const MaxPixels = 4096 * 4096

var (
	// ErrUnsupportedFormat is returned for anything other than JPEG or PNG.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned when the image header declares more than MaxPixels.
	ErrTooLarge = errors.New("image dimensions too large")
)

// Image is an encoded thumbnail ready to be stored.
type Image struct {
	Data        []byte
	Ext         string
	ContentType string
}

// Thumbnail decodes r and scales it so neither side exceeds maxSide,
// keeping the aspect ratio. Images already small enough are re-encoded
// unscaled. The output keeps the input format. The header is checked
// against MaxPixels before any pixel data is decoded.
func Thumbnail(r io.Reader, maxSide int) (*Image, error) {
	if maxSide <= 0 {
		maxSide = DefaultSide
	}
	var head bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if format != "jpeg" && format != "png" {
		return nil, ErrUnsupportedFormat
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, ErrTooLarge
	}

	src, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := scale(src, maxSide)

	var buf bytes.Buffer
	out := &Image{}
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
		out.Ext, out.ContentType = "jpg", "image/jpeg"
	default:
		err = png.Encode(&buf, dst)
		out.Ext, out.ContentType = "png", "image/png"
	}
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

func scale(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return src
	}
	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
