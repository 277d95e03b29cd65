package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
)

// ToGray converts img to an 8-bit grayscale grid using ITU-R BT.601 luminance
// weights (0.299*R + 0.587*G + 0.114*B). The result has a zero origin.
//
// A *image.Gray input is copied rather than returned, so callers may treat the
// result as their own.
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	gray := image.NewGray(image.Rect(0, 0, width, height))

	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			copy(gray.Pix[y*gray.Stride:y*gray.Stride+width], src.Pix[y*src.Stride:y*src.Stride+width])
		}
		return gray
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray.Pix[y*gray.Stride+x] = uint8(lum + 0.5)
		}
	}
	return gray
}

// MaxIntensity returns the largest sample in a grayscale grid, or 0 for an
// empty grid.
func MaxIntensity(gray *image.Gray) uint8 {
	var max uint8
	forEachRow(gray, func(row []uint8) {
		for _, v := range row {
			if v > max {
				max = v
			}
		}
	})
	return max
}

// Binarize produces a binary mask where samples strictly greater than threshold
// become foreground (value fg) and all others background (0).
//
// The threshold is not clamped. A threshold below zero marks every pixel as
// foreground and one at or above the maximum sample marks none; both are valid
// outcomes. Re-binarizing a mask with the same threshold and foreground value
// returns an identical mask whenever 0 <= threshold < fg.
func Binarize(gray *image.Gray, threshold float64, fg uint8) *image.Gray {
	bounds := gray.Bounds()
	mask := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	y := 0
	forEachRow(gray, func(row []uint8) {
		out := mask.Pix[y*mask.Stride : y*mask.Stride+len(row)]
		for x, v := range row {
			if float64(v) > threshold {
				out[x] = fg
			}
		}
		y++
	})
	return mask
}

// BoxBlur applies a normalized mean filter with a square window of side
// kernelSize (odd) and returns a grayscale grid of the same size.
//
// The blurred grid only feeds the diagnostic edge map, so border handling
// follows the convolution library rather than any particular vision toolkit.
func BoxBlur(gray *image.Gray, kernelSize int) *image.Gray {
	radius := float64(kernelSize-1) / 2
	if radius <= 0 || gray.Bounds().Empty() {
		return ToGray(gray)
	}
	return ToGray(blur.Box(gray, radius))
}

// Equal reports whether two grayscale grids have the same size and samples.
func Equal(a, b *image.Gray) bool {
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return false
	}
	width := a.Bounds().Dx()
	for y := 0; y < a.Bounds().Dy(); y++ {
		ra := a.Pix[y*a.Stride:][:width]
		rb := b.Pix[y*b.Stride:][:width]
		for x := range ra {
			if ra[x] != rb[x] {
				return false
			}
		}
	}
	return true
}

// GrayAt returns the sample at (x, y) relative to the grid's origin.
func GrayAt(gray *image.Gray, x, y int) uint8 {
	return gray.GrayAt(x+gray.Rect.Min.X, y+gray.Rect.Min.Y).Y
}

// forEachRow calls fn with each row of samples, top to bottom.
func forEachRow(gray *image.Gray, fn func(row []uint8)) {
	bounds := gray.Bounds()
	width := bounds.Dx()
	for y := 0; y < bounds.Dy(); y++ {
		start := y * gray.Stride
		fn(gray.Pix[start : start+width])
	}
}
