package imaging

import (
	"image"
	"math"
)

// Canny performs hysteresis edge detection on a grayscale grid.
//
// The output is a grid of the same size where 255 marks an edge pixel and 0
// marks a non-edge pixel.
//
// Parameters:
//   - gray: Source grid. It is not smoothed first; pass a blurred grid to
//     suppress noise.
//   - low: Lower hysteresis threshold, in gradient-magnitude units.
//   - high: Upper hysteresis threshold, in gradient-magnitude units.
//
// # Algorithm
//
//  1. Gradient computation: 3x3 Sobel operators for X and Y gradients,
//     magnitude = |Gx| + |Gy|, direction = atan2(Gy, Gx)
//
//  2. Non-maximum suppression: Thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction
//
//  3. Hysteresis thresholding:
//     - Pixels with magnitude above high are strong edges (always kept)
//     - Pixels above low that are 8-connected, directly or through other
//     such pixels, to a strong edge are kept
//     - All other pixels are discarded
//
// # Threshold Order
//
// low is expected to be below high, but the order is not enforced. Swapped
// thresholds degrade the output (only strong pixels survive) instead of failing.
func Canny(gray *image.Gray, low, high float64) *image.Gray {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return result
	}

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					v := float64(gray.Pix[py*gray.Stride+px])
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Abs(gx) + math.Abs(gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]

			// Image rows grow downward, so a positive Gy angle points down the grid.
			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			}

			// Ties are broken toward the earlier neighbour so plateaus stay one pixel wide.
			if mag > n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	// Edge tracking by hysteresis: flood outward from every strong pixel
	// through pixels above the low threshold.
	stack := make([]int, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed[y][x] > high {
				result.Pix[y*result.Stride+x] = 255
				stack = append(stack, y*width+x)
			}
		}
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cy, cx := idx/width, idx%width

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				ny, nx := cy+dy, cx+dx
				if ny < 0 || ny >= height || nx < 0 || nx >= width {
					continue
				}
				if result.Pix[ny*result.Stride+nx] != 0 {
					continue
				}
				if suppressed[ny][nx] > low {
					result.Pix[ny*result.Stride+nx] = 255
					stack = append(stack, ny*width+nx)
				}
			}
		}
	}

	return result
}

// CountNonZero returns the number of non-zero samples in a grid.
func CountNonZero(gray *image.Gray) int {
	count := 0
	forEachRow(gray, func(row []uint8) {
		for _, v := range row {
			if v != 0 {
				count++
			}
		}
	})
	return count
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
