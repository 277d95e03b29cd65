package imaging

import "image"

// Morphology operates on binary masks with a square, all-ones structuring
// element of odd side kernelSize anchored at its center. Pixels outside the
// grid never contribute: dilation ignores them as if they were background and
// erosion ignores them as if they were foreground.

// Dilate grows foreground regions: each output sample is the maximum of the
// kernelSize x kernelSize window around it. The operation repeats iterations times.
func Dilate(mask *image.Gray, kernelSize, iterations int) *image.Gray {
	out := ToGray(mask)
	for i := 0; i < iterations; i++ {
		out = rankFilter(out, kernelSize, maxOf)
	}
	return out
}

// Erode shrinks foreground regions: each output sample is the minimum of the
// kernelSize x kernelSize window around it. The operation repeats iterations times.
func Erode(mask *image.Gray, kernelSize, iterations int) *image.Gray {
	out := ToGray(mask)
	for i := 0; i < iterations; i++ {
		out = rankFilter(out, kernelSize, minOf)
	}
	return out
}

// Close fills small background gaps inside foreground regions: iterations
// dilations followed by the same number of erosions.
func Close(mask *image.Gray, kernelSize, iterations int) *image.Gray {
	return Erode(Dilate(mask, kernelSize, iterations), kernelSize, iterations)
}

// Open removes small foreground speckles: iterations erosions followed by the
// same number of dilations.
func Open(mask *image.Gray, kernelSize, iterations int) *image.Gray {
	return Dilate(Erode(mask, kernelSize, iterations), kernelSize, iterations)
}

// Cleanup applies the fixed mask cleanup sequence: closing with two
// iterations, dilation with two iterations, then opening with one iteration.
func Cleanup(mask *image.Gray, kernelSize int) *image.Gray {
	closed := Close(mask, kernelSize, 2)
	grown := Dilate(closed, kernelSize, 2)
	return Open(grown, kernelSize, 1)
}

func maxOf(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

func minOf(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

// rankFilter applies a square max or min filter as two separable passes,
// horizontal then vertical. A square window's extremum equals the extremum of
// the per-row extrema, so the result matches the direct 2-D window.
func rankFilter(src *image.Gray, kernelSize int, pick func(a, b uint8) uint8) *image.Gray {
	radius := kernelSize / 2
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	if radius == 0 || width == 0 || height == 0 {
		return ToGray(src)
	}

	horiz := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+width]
		out := horiz.Pix[y*horiz.Stride : y*horiz.Stride+width]
		for x := 0; x < width; x++ {
			v := row[x]
			for k := clamp(x-radius, 0, width-1); k <= clamp(x+radius, 0, width-1); k++ {
				v = pick(v, row[k])
			}
			out[x] = v
		}
	}

	result := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		lo := clamp(y-radius, 0, height-1)
		hi := clamp(y+radius, 0, height-1)
		for x := 0; x < width; x++ {
			v := horiz.Pix[y*horiz.Stride+x]
			for k := lo; k <= hi; k++ {
				v = pick(v, horiz.Pix[k*horiz.Stride+x])
			}
			result.Pix[y*result.Stride+x] = v
		}
	}
	return result
}
