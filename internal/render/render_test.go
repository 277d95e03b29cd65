package render

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/ironsheep/contour-pipeline/internal/contour"
)

// createInMemoryImage creates a solid color image without writing to disk.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func rgb8(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"00ff00", color.NRGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.NRGBA{0, 0, 255, 128}, false},
		{"#fff", color.NRGBA{255, 255, 255, 255}, false},
		{"", color.NRGBA{}, true},
		{"#GG0000", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("color: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnnotate_DrawsOutline(t *testing.T) {
	img := createInMemoryImage(60, 60, color.Black)
	sq := contour.Contour{Points: []contour.Point{{X: 10, Y: 10}, {X: 10, Y: 40}, {X: 40, Y: 40}, {X: 40, Y: 10}}, Parent: -1}

	out := Annotate(img, []contour.Contour{sq}, DefaultStroke, DefaultStrokeWidth)

	if out.Bounds() != img.Bounds() {
		t.Fatalf("bounds: got %v, want %v", out.Bounds(), img.Bounds())
	}

	onEdge := []image.Point{{10, 25}, {11, 25}, {25, 40}, {40, 10}, {41, 11}}
	for _, p := range onEdge {
		if r, g, b := rgb8(out.At(p.X, p.Y)); r != 255 || g != 0 || b != 0 {
			t.Errorf("(%d,%d): got (%d,%d,%d), want red", p.X, p.Y, r, g, b)
		}
	}

	offEdge := []image.Point{{25, 25}, {5, 5}, {13, 25}}
	for _, p := range offEdge {
		if r, g, b := rgb8(out.At(p.X, p.Y)); r != 0 || g != 0 || b != 0 {
			t.Errorf("(%d,%d): got (%d,%d,%d), want untouched black", p.X, p.Y, r, g, b)
		}
	}
}

func TestAnnotate_DoesNotModifyInput(t *testing.T) {
	img := createInMemoryImage(20, 20, color.White)
	before := append([]uint8(nil), img.Pix...)
	line := contour.Contour{Points: []contour.Point{{X: 0, Y: 0}, {X: 19, Y: 19}}}

	Annotate(img, []contour.Contour{line}, DefaultStroke, 2)

	for i := range before {
		if img.Pix[i] != before[i] {
			t.Fatalf("input modified at offset %d", i)
		}
	}
}

func TestAnnotate_EdgeCases(t *testing.T) {
	img := createInMemoryImage(10, 10, color.Black)

	none := Annotate(img, nil, DefaultStroke, 2)
	if r, _, _ := rgb8(none.At(5, 5)); r != 0 {
		t.Error("no contours should leave the copy unchanged")
	}

	// A single point and a contour at the image border draw without panicking.
	cs := []contour.Contour{
		{Points: []contour.Point{{X: 4, Y: 4}}},
		{Points: []contour.Point{{X: 0, Y: 0}, {X: 0, Y: 9}, {X: 9, Y: 9}, {X: 9, Y: 0}}},
	}
	out := Annotate(img, cs, color.White, 0)
	if r, _, _ := rgb8(out.At(4, 4)); r != 255 {
		t.Error("single-point contour should be stamped")
	}
	if r, _, _ := rgb8(out.At(9, 9)); r != 255 {
		t.Error("border contour should reach the last pixel")
	}
}

func TestAnnotate_OffsetOrigin(t *testing.T) {
	full := createInMemoryImage(40, 40, color.Black)
	sub := full.SubImage(image.Rect(10, 10, 30, 30))
	pt := contour.Contour{Points: []contour.Point{{X: 0, Y: 0}}}

	out := Annotate(sub, []contour.Contour{pt}, DefaultStroke, 1)
	if out.Bounds().Min != (image.Point{}) {
		t.Errorf("annotated copy should be zero-origin, got %v", out.Bounds())
	}
	if r, _, _ := rgb8(out.At(0, 0)); r != 255 {
		t.Error("contour coordinates should be relative to the image's top-left")
	}
}

func TestLayout(t *testing.T) {
	tests := []struct {
		n, cols, rows int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{2, 2, 1},
		{4, 2, 2},
		{5, 3, 2},
		{8, 3, 3},
		{9, 3, 3},
		{10, 4, 3},
	}

	for _, tt := range tests {
		cols, rows := Layout(tt.n)
		if cols != tt.cols || rows != tt.rows {
			t.Errorf("Layout(%d): got %dx%d, want %dx%d", tt.n, cols, rows, tt.cols, tt.rows)
		}
	}
}

func TestFigure(t *testing.T) {
	panels := make([]Panel, 8)
	for i := range panels {
		panels[i] = Panel{Name: "panel", Image: createInMemoryImage(200, 100, color.Black)}
	}

	fig, err := Figure(panels, 100)
	if err != nil {
		t.Fatalf("Figure failed: %v", err)
	}

	// 8 panels: 3 columns, 3 rows of 100x50 panels plus captions and gaps.
	wantW := 3*(100+panelGap) + panelGap
	wantH := 3*(50+captionHeight+panelGap) + panelGap
	if fig.Bounds().Dx() != wantW || fig.Bounds().Dy() != wantH {
		t.Errorf("dimensions: got %dx%d, want %dx%d", fig.Bounds().Dx(), fig.Bounds().Dy(), wantW, wantH)
	}

	// Inside the first panel is black, the unused ninth cell stays white.
	if r, _, _ := rgb8(fig.At(panelGap+50, panelGap+captionHeight+25)); r != 0 {
		t.Error("first panel should be pasted at the top-left")
	}
	lastX := panelGap + 2*(100+panelGap) + 50
	lastY := panelGap + 2*(50+captionHeight+panelGap) + captionHeight + 25
	if r, _, _ := rgb8(fig.At(lastX, lastY)); r != 255 {
		t.Error("unused cell should stay white")
	}
}

func TestFigure_Errors(t *testing.T) {
	if _, err := Figure(nil, 100); err == nil {
		t.Error("no panels should fail")
	}
	if _, err := Figure([]Panel{{Name: "a", Image: createInMemoryImage(2, 2, color.Black)}}, 0); err == nil {
		t.Error("zero panel width should fail")
	}
	if _, err := Figure([]Panel{{Name: "a"}}, 10); err == nil {
		t.Error("panel without image should fail")
	}
}

func TestEncode(t *testing.T) {
	result, err := Encode(createInMemoryImage(30, 20, color.White))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if result.Width != 30 || result.Height != 20 || result.MimeType != "image/png" {
		t.Errorf("result: got %dx%d %s", result.Width, result.Height, result.MimeType)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	if img.Bounds().Dx() != 30 {
		t.Errorf("decoded width: got %d, want 30", img.Bounds().Dx())
	}
}

func TestCrop(t *testing.T) {
	img := createInMemoryImage(100, 100, color.Black)

	tests := []struct {
		name         string
		rect         image.Rectangle
		margin       int
		scale        float64
		wantW, wantH int
		wantErr      bool
	}{
		{"plain", image.Rect(10, 10, 30, 40), 0, 1, 20, 30, false},
		{"margin", image.Rect(10, 10, 30, 40), 5, 1, 30, 40, false},
		{"clipped margin", image.Rect(0, 0, 10, 10), 5, 1, 15, 15, false},
		{"scaled", image.Rect(0, 0, 20, 20), 0, 2, 40, 40, false},
		{"outside", image.Rect(200, 200, 210, 210), 0, 1, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Crop(img, tt.rect, tt.margin, tt.scale)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Width != tt.wantW || got.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", got.Width, got.Height, tt.wantW, tt.wantH)
			}
		})
	}
}
