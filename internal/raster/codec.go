package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"eca-morph/internal/core"
	"eca-morph/internal/errs"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format selects an image encoding.
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// Formats lists the supported encodings.
func Formats() []Format { return []Format{PNG, BMP, TIFF} }

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	switch s {
	case "", "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	default:
		return "", errs.Invalid("render.format", s, "expected png, bmp or tiff")
	}
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Gray wraps a surface as an 8-bit grayscale image without copying.
func Gray(s *core.ByteGrid) *image.Gray {
	return &image.Gray{Pix: s.Cells(), Stride: s.W, Rect: image.Rect(0, 0, s.W, s.H)}
}

// Encode writes s to w in format f.
func Encode(w io.Writer, s *core.ByteGrid, f Format) error {
	img := Gray(s)
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errs.Invalid("render.format", f, "unsupported format")
	}
	if err != nil {
		return errs.Unavailable("image codec", "encode "+string(f), err)
	}
	return nil
}

// Decode reads a png, bmp or tiff image into a grayscale surface.
func Decode(r io.Reader) (*core.ByteGrid, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errs.Unavailable("image codec", "decode", err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, errs.Invalid("image", b, "image has no pixels")
	}
	g := core.NewByteGrid(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			g.Set(x-b.Min.X, y-b.Min.Y, gray.Y)
		}
	}
	return g, nil
}

// Threshold converts a decoded grayscale surface to bits. Pixels at or above
// threshold are bright; under p they are 1 when p draws ones brighter than
// zeros, and 0 otherwise.
func Threshold(s *core.ByteGrid, threshold uint8, p Palette) *Bits {
	brightIsOne := p.On > p.Off
	g := core.NewByteGrid(s.W, s.H)
	src, dst := s.Cells(), g.Cells()
	for i, v := range src {
		if (v >= threshold) == brightIsOne {
			dst[i] = 1
		}
	}
	return &Bits{g: g}
}

// DataURL encodes s as a base64 PNG data URL.
func DataURL(s *core.ByteGrid) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s, PNG); err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}
