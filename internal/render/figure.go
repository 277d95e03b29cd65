package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Panel is one captioned tile of a diagnostic figure.
type Panel struct {
	Name  string
	Image image.Image
}

// DefaultPanelWidth is the width each panel is scaled to in a figure.
const DefaultPanelWidth = 320

const (
	captionHeight = 18
	panelGap      = 4
)

// Layout returns the grid used for n panels: ceil(sqrt(n)) columns and as
// many rows as needed.
func Layout(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = (n + cols - 1) / cols
	return cols, rows
}

// Figure tiles panels left to right, top to bottom, each scaled to panelWidth
// and captioned with its name.
func Figure(panels []Panel, panelWidth int) (*image.NRGBA, error) {
	if len(panels) == 0 {
		return nil, fmt.Errorf("figure needs at least one panel")
	}
	if panelWidth <= 0 {
		return nil, fmt.Errorf("panel width must be positive, got %d", panelWidth)
	}

	scaled := make([]*image.NRGBA, len(panels))
	cellHeight := 0
	for i, p := range panels {
		if p.Image == nil || p.Image.Bounds().Empty() {
			return nil, fmt.Errorf("panel %q has no image", p.Name)
		}
		scaled[i] = imaging.Resize(p.Image, panelWidth, 0, imaging.Box)
		if h := scaled[i].Bounds().Dy(); h > cellHeight {
			cellHeight = h
		}
	}

	cols, rows := Layout(len(panels))
	cellW := panelWidth + panelGap
	cellH := cellHeight + captionHeight + panelGap
	canvas := imaging.New(cols*cellW+panelGap, rows*cellH+panelGap, color.White)

	for i, img := range scaled {
		col, row := i%cols, i/cols
		x := panelGap + col*cellW
		y := panelGap + row*cellH
		drawCaption(canvas, x, y+13, panels[i].Name)
		canvas = imaging.Paste(canvas, img, image.Pt(x, y+captionHeight))
	}
	return canvas, nil
}

// drawCaption writes text with its baseline at (x, y).
func drawCaption(img *image.NRGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
