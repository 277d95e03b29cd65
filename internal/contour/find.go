package contour

import "image"

// neighbours lists the 8 neighbour offsets counter-clockwise on screen,
// starting east. Index arithmetic mod 8 walks around a pixel: +1 turns
// counter-clockwise, -1 turns clockwise, +4 reverses.
var neighbours = [8]Point{
	{X: 1, Y: 0},
	{X: 1, Y: -1},
	{X: 0, Y: -1},
	{X: -1, Y: -1},
	{X: -1, Y: 0},
	{X: -1, Y: 1},
	{X: 0, Y: 1},
	{X: 1, Y: 1},
}

const (
	dirEast = 0
	dirWest = 4
)

// borderInfo records what border following learned about one boundary.
// Entries are indexed by border number; number 1 is the image frame, which
// counts as a hole boundary enclosing everything.
type borderInfo struct {
	hole   bool
	parent int
	points []Point
}

// labelGrid is the working copy of a mask: 0 background, 1 unvisited
// foreground, and +/-n for pixels on border n. It carries a one-pixel
// background frame so neighbour lookups never leave the slice.
type labelGrid struct {
	cells  []int
	stride int
}

func newLabelGrid(mask *image.Gray) *labelGrid {
	width, height := mask.Bounds().Dx(), mask.Bounds().Dy()
	g := &labelGrid{
		cells:  make([]int, (width+2)*(height+2)),
		stride: width + 2,
	}
	for y := 0; y < height; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		for x, v := range row {
			if v != 0 {
				g.cells[(y+1)*g.stride+x+1] = 1
			}
		}
	}
	return g
}

func (g *labelGrid) step(idx, dir int) int {
	return idx + neighbours[dir].Y*g.stride + neighbours[dir].X
}

// point converts a padded cell index back to mask coordinates.
func (g *labelGrid) point(idx int) Point {
	return Point{X: idx%g.stride - 1, Y: idx/g.stride - 1}
}

// Find extracts the boundaries of the foreground regions of mask (any
// non-zero sample) using Suzuki-Abe topological border following, with each
// boundary compressed to its direction-changing vertices.
//
// Contours are returned in discovery order: raster order of each boundary's
// first pixel. In Tree mode every Contour.Parent is the index of the
// enclosing boundary; in External mode only top-level outer boundaries are
// returned and every Parent is -1. An empty mask yields an empty slice.
func Find(mask *image.Gray, mode Mode) []Contour {
	width, height := mask.Bounds().Dx(), mask.Bounds().Dy()
	if width == 0 || height == 0 {
		return []Contour{}
	}

	g := newLabelGrid(mask)
	borders := []borderInfo{{}, {hole: true, parent: 0}}

	for y := 1; y <= height; y++ {
		lastBorder := 1
		for x := 1; x <= width; x++ {
			idx := y*g.stride + x
			v := g.cells[idx]
			if v == 0 {
				continue
			}

			var startDir int
			var hole bool
			switch {
			case v == 1 && g.cells[idx-1] == 0:
				startDir = dirWest
			case v >= 1 && g.cells[idx+1] == 0:
				startDir = dirEast
				hole = true
				if v > 1 {
					lastBorder = v
				}
			default:
				if v != 1 {
					lastBorder = abs(v)
				}
				continue
			}

			number := len(borders)
			parent := lastBorder
			if borders[lastBorder].hole == hole {
				parent = borders[lastBorder].parent
			}
			borders = append(borders, borderInfo{
				hole:   hole,
				parent: parent,
				points: compress(g.follow(idx, startDir, number)),
			})

			lastBorder = abs(g.cells[idx])
		}
	}

	return collect(borders, mode)
}

// follow traces the border starting at idx, labelling it with number, and
// returns every border pixel in traversal order. startDir points at the
// background neighbour that revealed the border.
func (g *labelGrid) follow(idx, startDir, number int) []Point {
	first := -1
	firstDir := 0
	for k := 0; k < 8; k++ {
		dir := (startDir - k + 8) % 8
		if n := g.step(idx, dir); g.cells[n] != 0 {
			first, firstDir = n, dir
			break
		}
	}
	if first < 0 {
		g.cells[idx] = -number
		return []Point{g.point(idx)}
	}

	points := make([]Point, 0, 64)
	current := idx
	back := firstDir
	for {
		points = append(points, g.point(current))

		eastIsBackground := false
		next, nextDir := current, back
		for k := 1; k <= 8; k++ {
			dir := (back + k) % 8
			if n := g.step(current, dir); g.cells[n] != 0 {
				next, nextDir = n, dir
				break
			}
			if dir == dirEast {
				eastIsBackground = true
			}
		}

		if eastIsBackground {
			g.cells[current] = -number
		} else if g.cells[current] == 1 {
			g.cells[current] = number
		}

		if next == idx && current == first {
			return points
		}
		back = (nextDir + 4) % 8
		current = next
	}
}

// compress keeps only the points where the boundary changes direction,
// treating the sequence as closed.
func compress(points []Point) []Point {
	n := len(points)
	if n < 3 {
		return points
	}

	out := make([]Point, 0, 8)
	for i := 0; i < n; i++ {
		prev := points[(i-1+n)%n]
		cur := points[i]
		next := points[(i+1)%n]
		if cur.X-prev.X != next.X-cur.X || cur.Y-prev.Y != next.Y-cur.Y {
			out = append(out, cur)
		}
	}
	return out
}

// collect converts border records into contours for the requested mode,
// renumbering parents as slice indices.
func collect(borders []borderInfo, mode Mode) []Contour {
	contours := make([]Contour, 0, len(borders)-2)

	if mode == External {
		for _, b := range borders[2:] {
			if !b.hole && b.parent == 1 {
				contours = append(contours, Contour{Points: b.points, Parent: -1})
			}
		}
		return contours
	}

	for _, b := range borders[2:] {
		contours = append(contours, Contour{
			Points: b.points,
			Hole:   b.hole,
			Parent: b.parent - 2,
		})
	}
	return contours
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
