// Package image provides the raster buffer, layer, and layer stack that make
// up a document's pixel content.
package image

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Format identifies the pixel layout of a Buffer.
type Format int

const (
	// FormatNRGBA is 8-bit non-premultiplied RGBA, 4 bytes per pixel.
	FormatNRGBA Format = iota
	// FormatGray is 8-bit grayscale, 1 byte per pixel.
	FormatGray
)

// BytesPerPixel returns the pixel stride for the format.
func (f Format) BytesPerPixel() int {
	if f == FormatGray {
		return 1
	}
	return 4
}

func (f Format) String() string {
	switch f {
	case FormatNRGBA:
		return "NRGBA"
	case FormatGray:
		return "Gray"
	default:
		return "Unknown"
	}
}

// Buffer is an opaque raster: dimensions, pixel format, and pixel bytes.
// A Buffer is immutable once produced; every edit produces a new Buffer that
// replaces the old reference. Callers must not modify the slice returned by
// Pix.
type Buffer struct {
	width  int
	height int
	format Format
	pix    []byte
}

// NewBuffer creates a Buffer that takes ownership of pix.
func NewBuffer(width, height int, format Format, pix []byte) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer dimensions %dx%d", width, height)
	}
	want := width * height * format.BytesPerPixel()
	if len(pix) != want {
		return nil, fmt.Errorf("pixel data length %d, want %d for %dx%d %s", len(pix), want, width, height, format)
	}
	return &Buffer{width: width, height: height, format: format, pix: pix}, nil
}

// FromImage converts any image into an NRGBA Buffer.
func FromImage(img image.Image) *Buffer {
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return &Buffer{
		width:  b.Dx(),
		height: b.Dy(),
		format: FormatNRGBA,
		pix:    nrgba.Pix,
	}
}

// Decode loads an image file into a Buffer. PNG, JPEG, GIF, TIFF, and BMP
// are supported through the registered decoders.
func Decode(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), nil
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.height }

// Format returns the pixel format.
func (b *Buffer) Format() Format { return b.format }

// Stride returns the number of bytes per row.
func (b *Buffer) Stride() int { return b.width * b.format.BytesPerPixel() }

// Pix returns the raw pixel bytes. The slice is shared; callers must treat
// it as read-only.
func (b *Buffer) Pix() []byte { return b.pix }

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]byte, len(b.pix))
	copy(pix, b.pix)
	return &Buffer{width: b.width, height: b.height, format: b.format, pix: pix}
}

// Equal reports whether two buffers have identical dimensions, format, and
// pixel bytes.
func (b *Buffer) Equal(other *Buffer) bool {
	if other == nil {
		return false
	}
	return b.width == other.width && b.height == other.height &&
		b.format == other.format && bytes.Equal(b.pix, other.pix)
}

// At returns the color at the given pixel coordinates, or opaque black when
// the coordinates are out of bounds.
func (b *Buffer) At(x, y int) color.NRGBA {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return color.NRGBA{A: 255}
	}
	if b.format == FormatGray {
		v := b.pix[y*b.width+x]
		return color.NRGBA{R: v, G: v, B: v, A: 255}
	}
	i := (y*b.width + x) * 4
	return color.NRGBA{R: b.pix[i], G: b.pix[i+1], B: b.pix[i+2], A: b.pix[i+3]}
}

// ToImage returns the buffer as a standard image. The returned image shares
// the buffer's pixel data for NRGBA buffers.
func (b *Buffer) ToImage() image.Image {
	if b.format == FormatGray {
		return &image.Gray{Pix: b.pix, Stride: b.width, Rect: image.Rect(0, 0, b.width, b.height)}
	}
	return &image.NRGBA{Pix: b.pix, Stride: b.width * 4, Rect: image.Rect(0, 0, b.width, b.height)}
}

// EncodePNG encodes the buffer as PNG, the lossless payload used by canvas
// serialization.
func (b *Buffer) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, b.ToImage()); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG decodes a PNG payload into an NRGBA Buffer.
func DecodePNG(data []byte) (*Buffer, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}
	return FromImage(img), nil
}

// Resample returns a new buffer resampled to the given per-axis scale
// factors using nearest-neighbour sampling. Target dimensions are clamped to
// at least one pixel.
func (b *Buffer) Resample(scaleX, scaleY float64) *Buffer {
	dstW := b.width
	dstH := b.height
	if w := int(float64(b.width) * scaleX); w >= 1 {
		dstW = w
	} else {
		dstW = 1
	}
	if h := int(float64(b.height) * scaleY); h >= 1 {
		dstH = h
	} else {
		dstH = 1
	}
	if dstW == b.width && dstH == b.height {
		return b.Clone()
	}

	bpp := b.format.BytesPerPixel()
	pix := make([]byte, dstW*dstH*bpp)
	for y := 0; y < dstH; y++ {
		srcY := y * b.height / dstH
		for x := 0; x < dstW; x++ {
			srcX := x * b.width / dstW
			si := (srcY*b.width + srcX) * bpp
			di := (y*dstW + x) * bpp
			copy(pix[di:di+bpp], b.pix[si:si+bpp])
		}
	}
	return &Buffer{width: dstW, height: dstH, format: b.format, pix: pix}
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".tiff", ".tif", ".bmp"}
}

// IsSupportedFormat checks if the given path has a supported image extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
