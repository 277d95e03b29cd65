package contour

import (
	"image"
	"math"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Mode selects which boundaries Find returns.
type Mode int

const (
	// Tree returns outer and hole boundaries with their nesting.
	Tree Mode = iota
	// External returns only outermost boundaries.
	External
)

func (m Mode) String() string {
	switch m {
	case External:
		return "external"
	case Tree:
		return "tree"
	default:
		return "unknown"
	}
}

// Contour is an ordered boundary of compressed vertices.
type Contour struct {
	// Points are the direction-changing vertices in traversal order. The
	// boundary is closed: the last point connects back to the first.
	Points []Point

	// Hole is true when the contour bounds a background hole inside a region.
	Hole bool

	// Parent is the index of the immediately enclosing contour in the same
	// slice, or -1 for a top-level contour.
	Parent int
}

// SignedArea returns the shoelace area of the contour polygon. The sign
// reflects traversal orientation.
func (c Contour) SignedArea() float64 {
	n := len(c.Points)
	if n < 3 {
		return 0
	}

	var sum int
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += c.Points[i].X*c.Points[j].Y - c.Points[j].X*c.Points[i].Y
	}
	// Screen Y grows downward; negate so counter-clockwise on screen is positive.
	return -float64(sum) / 2
}

// Area returns the absolute shoelace area of the contour polygon.
func (c Contour) Area() float64 {
	return math.Abs(c.SignedArea())
}

// Perimeter returns the length of the closed polyline through the contour's points.
func (c Contour) Perimeter() float64 {
	n := len(c.Points)
	if n < 2 {
		return 0
	}

	var length float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		dx := float64(c.Points[j].X - c.Points[i].X)
		dy := float64(c.Points[j].Y - c.Points[i].Y)
		length += math.Sqrt(dx*dx + dy*dy)
	}
	return length
}

// Bounds returns the smallest rectangle containing every contour point. Max is
// exclusive, matching image.Rectangle.
func (c Contour) Bounds() image.Rectangle {
	if len(c.Points) == 0 {
		return image.Rectangle{}
	}

	minX, minY := c.Points[0].X, c.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range c.Points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Summary describes one contour for reports and tool results.
type Summary struct {
	// Index is the contour's position in the ranked slice.
	Index int `json:"index"`

	// Area is the absolute polygon area in square pixels.
	Area float64 `json:"area"`

	// Perimeter is the closed polyline length in pixels.
	Perimeter float64 `json:"perimeter"`

	// Bounds is the bounding box enclosing the contour.
	Bounds Bounds `json:"bounds"`

	// Points is the number of compressed vertices.
	Points int `json:"points"`

	// Hole is true for hole boundaries.
	Hole bool `json:"hole"`

	// Parent is the index of the enclosing contour, or -1.
	Parent int `json:"parent"`
}

// Summarize describes every contour in cs, in order.
func Summarize(cs []Contour) []Summary {
	out := make([]Summary, 0, len(cs))
	for i, c := range cs {
		r := c.Bounds()
		out = append(out, Summary{
			Index:     i,
			Area:      math.Round(c.Area()*100) / 100,
			Perimeter: math.Round(c.Perimeter()*100) / 100,
			Bounds:    Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y},
			Points:    len(c.Points),
			Hole:      c.Hole,
			Parent:    c.Parent,
		})
	}
	return out
}
