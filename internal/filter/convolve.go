package filter

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	img "refstudio/internal/image"
	"refstudio/internal/pipeline"
)

// Blur applies a Gaussian blur. The "radius" parameter (default 2) sets the
// kernel to 2*radius+1 on each side.
func Blur(ctx context.Context, src *img.Buffer, params pipeline.Params) (*img.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	radius := params.Int("radius", 2)
	if radius < 1 {
		radius = 1
	}
	k := 2*radius + 1

	mat, err := matFromBuffer(src)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.GaussianBlur(mat, &dst, image.Point{X: k, Y: k}, 0, 0, gocv.BorderDefault)

	return bufferFromMat(dst)
}

// Sharpen applies an unsharp convolution kernel, blended by the "amount"
// parameter (default 1, 0 meaning no change).
func Sharpen(ctx context.Context, src *img.Buffer, params pipeline.Params) (*img.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	amount := params.Float("amount", 1)
	if amount < 0 {
		amount = 0
	}

	mat, err := matFromBuffer(src)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// Center 1+4a with -a on the cross keeps total weight at 1.
	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer kernel.Close()
	a := float32(amount)
	kernel.SetFloatAt(0, 1, -a)
	kernel.SetFloatAt(1, 0, -a)
	kernel.SetFloatAt(1, 1, 1+4*a)
	kernel.SetFloatAt(1, 2, -a)
	kernel.SetFloatAt(2, 1, -a)

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Filter2D(mat, &dst, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderDefault)

	return bufferFromMat(dst)
}

// NoiseReduction denoises with non-local means. "strength" (default 10)
// maps to the luminance and color filter strength.
func NoiseReduction(ctx context.Context, src *img.Buffer, params pipeline.Params) (*img.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	strength := float32(params.Float("strength", 10))
	if strength <= 0 {
		strength = 1
	}

	mat, err := matFromBuffer(src)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// The denoiser wants 3 channels; peel alpha off and restore it after.
	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(mat, &rgb, gocv.ColorBGRAToBGR)

	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.FastNlMeansDenoisingColoredWithParams(rgb, &denoised, strength, strength, 7, 21)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := gocv.NewMat()
	defer out.Close()
	gocv.CvtColor(denoised, &out, gocv.ColorBGRToBGRA)

	restored, err := bufferFromMat(out)
	if err != nil {
		return nil, err
	}
	return restoreAlpha(src, restored), nil
}

// matFromBuffer wraps an NRGBA view of the buffer in a 4-channel Mat. The
// Mat copies the pixel bytes, so the source stays untouched.
func matFromBuffer(src *img.Buffer) (gocv.Mat, error) {
	src = asNRGBA(src)
	mat, err := gocv.NewMatFromBytes(src.Height(), src.Width(), gocv.MatTypeCV8UC4, src.Pix())
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to wrap buffer in mat: %w", err)
	}
	return mat, nil
}

// bufferFromMat copies a 4-channel Mat back into an NRGBA buffer.
func bufferFromMat(mat gocv.Mat) (*img.Buffer, error) {
	data := mat.ToBytes()
	pix := make([]byte, len(data))
	copy(pix, data)
	return img.NewBuffer(mat.Cols(), mat.Rows(), img.FormatNRGBA, pix)
}

// restoreAlpha copies the source alpha channel over the result; channel
// round trips through 3-channel mats flatten it to opaque.
func restoreAlpha(src, dst *img.Buffer) *img.Buffer {
	srcPix := asNRGBA(src).Pix()
	in := dst.Pix()
	if len(srcPix) != len(in) {
		return dst
	}
	out := make([]byte, len(in))
	copy(out, in)
	for i := 3; i < len(out); i += 4 {
		out[i] = srcPix[i]
	}
	restored, err := img.NewBuffer(dst.Width(), dst.Height(), img.FormatNRGBA, out)
	if err != nil {
		return dst
	}
	return restored
}
