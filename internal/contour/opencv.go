//go:build opencv

package contour

import (
	"image"

	"gocv.io/x/gocv"
)

func init() {
	Register("opencv", FindOpenCV)
}

// FindOpenCV extracts contours through OpenCV's findContours with simple
// chain approximation. Nesting and hole flags follow the returned hierarchy.
func FindOpenCV(mask *image.Gray, mode Mode) []Contour {
	if mask.Bounds().Empty() {
		return []Contour{}
	}

	src, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return []Contour{}
	}
	defer src.Close()

	retrieval := gocv.RetrievalTree
	if mode == External {
		retrieval = gocv.RetrievalExternal
	}

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()

	found := gocv.FindContoursWithParams(src, &hierarchy, retrieval, gocv.ChainApproxSimple)
	defer found.Close()

	offset := mask.Bounds().Min
	contours := make([]Contour, found.Size())
	for i := 0; i < found.Size(); i++ {
		pv := found.At(i)
		raw := pv.ToPoints()
		points := make([]Point, len(raw))
		for j, p := range raw {
			points[j] = Point{X: p.X - offset.X, Y: p.Y - offset.Y}
		}
		contours[i] = Contour{Points: points, Parent: -1}
	}

	if mode == External || hierarchy.Empty() {
		return contours
	}

	// Hierarchy rows are [next, previous, first child, parent].
	for i := range contours {
		contours[i].Parent = int(hierarchy.GetVeciAt(0, i)[3])
	}
	for i := range contours {
		depth := 0
		for p := contours[i].Parent; p >= 0; p = contours[p].Parent {
			depth++
		}
		contours[i].Hole = depth%2 == 1
	}
	return contours
}
