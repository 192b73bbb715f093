// Package capture holds the photo of a written dictation and prepares it for
// submission: it validates the selected file, keeps a working raster copy,
// applies 90-degree rotations and downscaling, and exports JPEG encodings.
package capture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strings"

	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	// MaxFileSize is the largest accepted file, in bytes (10 MiB).
	MaxFileSize = 10485760

	// maxDimension bounds both sides of the working raster.
	maxDimension = 2048

	exportQuality  = 95
	previewQuality = 90
)

var (
	ErrUnsupportedType = errors.New("capture: file is not an image")
	ErrTooLarge        = errors.New("capture: file exceeds size limit")
)

// Capture is a decoded dictation photo with its current rotation. The source
// raster is kept unchanged so rotations stay non-destructive.
type Capture struct {
	src      *image.RGBA
	rotation int
}

// Validate checks the declared media type and size of a selected file without
// reading it. Both failures map to a user-facing status message.
func Validate(contentType string, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return ErrUnsupportedType
	}

	if size > MaxFileSize {
		return ErrTooLarge
	}

	return nil
}

// New validates and decodes a selected file into a working raster, downscaling
// it so that neither dimension exceeds 2048 px.
func New(contentType string, size int64, r io.Reader) (*Capture, error) {
	if err := Validate(contentType, size); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(r)

	if err != nil {
		return nil, fmt.Errorf("capture: decode: %w", err)
	}

	return &Capture{
		src: downscale(img),
	}, nil
}

// Rotation returns the current angle in degrees, one of 0, 90, 180 or 270.
func (c *Capture) Rotation() int {
	return c.rotation
}

// Rotate turns the displayed image by another -90 degrees, wrapped into [0, 360).
func (c *Capture) Rotate() {
	c.rotation = (c.rotation - 90 + 360) % 360
}

// Bounds returns the rendered canvas size. Width and height swap when the
// effective angle is 90 or 270.
func (c *Capture) Bounds() image.Rectangle {
	b := c.src.Bounds()

	if c.rotation == 90 || c.rotation == 270 {
		return image.Rect(0, 0, b.Dy(), b.Dx())
	}

	return image.Rect(0, 0, b.Dx(), b.Dy())
}

// Render produces the raster at the current rotation.
func (c *Capture) Render() *image.RGBA {
	return rotate(c.src, c.rotation)
}

// Export encodes the rendered raster as a JPEG for submission.
func (c *Capture) Export() ([]byte, error) {
	return c.encode(exportQuality)
}

// DataURL encodes the rendered raster as an inline JPEG data URL for display.
func (c *Capture) DataURL() (string, error) {
	data, err := c.encode(previewQuality)

	if err != nil {
		return "", err
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (c *Capture) encode(quality int) ([]byte, error) {
	var buf bytes.Buffer

	if err := jpeg.Encode(&buf, c.Render(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("capture: encode: %w", err)
	}

	return buf.Bytes(), nil
}

// downscale copies img into an RGBA raster, scaling both dimensions by
// min(2048/w, 2048/h) when either exceeds 2048 px. Dimensions are floored,
// preserving aspect ratio.
func downscale(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if w <= maxDimension && h <= maxDimension {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
		return dst
	}

	// scale both sides by min(2048/w, 2048/h) = 2048/max(w, h); integer
	// division floors, and the longer side lands on exactly 2048.
	longer := max(w, h)
	dw := w * maxDimension / longer
	dh := h * maxDimension / longer

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)

	return dst
}

// rotate maps src into a new raster turned clockwise by angle degrees. The
// image is drawn about the canvas center, as the preview canvas does.
func rotate(src *image.RGBA, angle int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	switch angle {
	case 90:
		dst := image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < w; y++ {
			for x := 0; x < h; x++ {
				dst.Set(x, y, src.At(y, h-1-x))
			}
		}
		return dst
	case 180:
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.Set(x, y, src.At(w-1-x, h-1-y))
			}
		}
		return dst
	case 270:
		dst := image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < w; y++ {
			for x := 0; x < h; x++ {
				dst.Set(x, y, src.At(w-1-y, x))
			}
		}
		return dst
	default:
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
		return dst
	}
}
