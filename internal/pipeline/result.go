package pipeline

import (
	"image"

	"github.com/ironsheep/contour-pipeline/internal/contour"
	"github.com/ironsheep/contour-pipeline/internal/render"
)

// Panel names, in Result.Panels order.
const (
	PanelOriginal     = "original"
	PanelBlurred      = "blurred"
	PanelGray         = "grayscale"
	PanelEdges        = "edges"
	PanelEdgesBlurred = "edges (blurred)"
	PanelBinary       = "binary mask"
	PanelMorphology   = "morphology"
	PanelFinal        = "contours"
)

// Result holds everything one Run produced.
type Result struct {
	// Panels are the intermediate grids in fixed order, ending with the
	// annotated image.
	Panels []render.Panel

	MaxIntensity uint8
	Threshold    float64
	Mode         contour.Mode

	// Contours are all extracted contours ranked by descending area.
	Contours []contour.Contour

	// Rendered is the subset of Contours that passed the area filter, in the
	// same order.
	Rendered []contour.Contour

	// Final is the annotated copy of the input image.
	Final *image.NRGBA
}

// Panel returns the named panel image, or nil.
func (r *Result) Panel(name string) image.Image {
	for _, p := range r.Panels {
		if p.Name == name {
			return p.Image
		}
	}
	return nil
}
