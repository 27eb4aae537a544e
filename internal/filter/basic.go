package filter

import (
	"context"
	"image/color"

	img "refstudio/internal/image"
	"refstudio/internal/pipeline"
	"refstudio/pkg/colorutil"
)

// ctxCheckRows is how many rows a per-pixel loop processes between
// cancellation polls.
const ctxCheckRows = 64

// BrightnessContrast scales each channel by the "contrast" parameter and
// shifts it by "brightness" (in [-1,1], mapped to +-50 levels).
func BrightnessContrast(ctx context.Context, src *img.Buffer, params pipeline.Params) (*img.Buffer, error) {
	brightness := params.Float("brightness", 0) * 50
	contrast := params.Float("contrast", 1)

	var lut [256]byte
	for i := range lut {
		lut[i] = clipByte(float64(i)*contrast + brightness)
	}
	return mapPixels(ctx, src, func(r, g, b, a byte) (byte, byte, byte, byte) {
		return lut[r], lut[g], lut[b], a
	})
}

// Invert replaces each color channel with its complement. Alpha is kept.
func Invert(ctx context.Context, src *img.Buffer, _ pipeline.Params) (*img.Buffer, error) {
	return mapPixels(ctx, src, func(r, g, b, a byte) (byte, byte, byte, byte) {
		return 255 - r, 255 - g, 255 - b, a
	})
}

// Grayscale converts each pixel to its Rec. 601 luma.
func Grayscale(ctx context.Context, src *img.Buffer, _ pipeline.Params) (*img.Buffer, error) {
	return mapPixels(ctx, src, func(r, g, b, a byte) (byte, byte, byte, byte) {
		y := clipByte(colorutil.Luminance(color.NRGBA{R: r, G: g, B: b}))
		return y, y, y, a
	})
}

// ColorBalance shifts the red, green, and blue channels independently by the
// "red", "green", and "blue" parameters (in levels, positive or negative).
func ColorBalance(ctx context.Context, src *img.Buffer, params pipeline.Params) (*img.Buffer, error) {
	dr := params.Float("red", 0)
	dg := params.Float("green", 0)
	db := params.Float("blue", 0)
	return mapPixels(ctx, src, func(r, g, b, a byte) (byte, byte, byte, byte) {
		return clipByte(float64(r) + dr), clipByte(float64(g) + dg), clipByte(float64(b) + db), a
	})
}

// mapPixels applies a per-pixel function over an NRGBA view of src,
// polling the context between row batches.
func mapPixels(ctx context.Context, src *img.Buffer, fn func(r, g, b, a byte) (byte, byte, byte, byte)) (*img.Buffer, error) {
	src = asNRGBA(src)
	in := src.Pix()
	out := make([]byte, len(in))
	w, h := src.Width(), src.Height()
	for y := 0; y < h; y++ {
		if y%ctxCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := y * w * 4
		for x := 0; x < w; x++ {
			i := row + x*4
			out[i], out[i+1], out[i+2], out[i+3] = fn(in[i], in[i+1], in[i+2], in[i+3])
		}
	}
	return img.NewBuffer(w, h, img.FormatNRGBA, out)
}

// asNRGBA returns src itself when already NRGBA, or an NRGBA conversion.
func asNRGBA(src *img.Buffer) *img.Buffer {
	if src.Format() == img.FormatNRGBA {
		return src
	}
	return img.FromImage(src.ToImage())
}

func clipByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
