package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/contour-pipeline/internal/contour"
)

// DefaultStrokeWidth is the contour line width in pixels.
const DefaultStrokeWidth = 2

// Annotate returns a zero-origin copy of img with every contour drawn as a
// closed polyline in stroke. Contour coordinates are relative to img's
// top-left corner. The input image is not modified.
func Annotate(img image.Image, cs []contour.Contour, stroke color.Color, width int) *image.NRGBA {
	out := imaging.Clone(img)
	if width < 1 {
		width = 1
	}
	c := color.NRGBAModel.Convert(stroke).(color.NRGBA)

	for _, ct := range cs {
		pts := ct.Points
		switch len(pts) {
		case 0:
			continue
		case 1:
			stamp(out, pts[0].X, pts[0].Y, width, c)
			continue
		}
		for i := range pts {
			next := pts[(i+1)%len(pts)]
			drawLine(out, pts[i].X, pts[i].Y, next.X, next.Y, width, c)
		}
	}
	return out
}

// drawLine draws a line with Bresenham's algorithm, stamping a square brush
// at every step.
func drawLine(img *image.NRGBA, x0, y0, x1, y1, width int, c color.NRGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		stamp(img, x0, y0, width, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// stamp paints a width x width square whose top-left is offset so that the
// square covers (x, y), clipped to the image.
func stamp(img *image.NRGBA, x, y, width int, c color.NRGBA) {
	bounds := img.Bounds()
	off := (width - 1) / 2
	for py := y - off; py < y-off+width; py++ {
		for px := x - off; px < x-off+width; px++ {
			if (image.Point{X: px, Y: py}).In(bounds) {
				img.SetNRGBA(px, py, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
