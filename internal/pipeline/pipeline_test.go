package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ironsheep/contour-pipeline/internal/contour"
	"github.com/ironsheep/contour-pipeline/internal/imaging"
)

// createSquareImage creates a bg image with an fg square covering [x1,x2) x [y1,y2).
func createSquareImage(width, height, x1, y1, x2, y2 int, fg, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := bg
			if x >= x1 && x < x2 && y >= y1 && y < y2 {
				c = fg
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func mustParams(t *testing.T, opts ...ParameterOption) Parameters {
	t.Helper()
	p, err := NewParameters(opts...)
	if err != nil {
		t.Fatalf("NewParameters failed: %v", err)
	}
	return p
}

func sameRGBA(a, b image.Image) bool {
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			r1, g1, b1, a1 := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, a2 := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if r1>>8 != r2>>8 || g1>>8 != g2>>8 || b1>>8 != b2>>8 || a1>>8 != a2>>8 {
				return false
			}
		}
	}
	return true
}

func TestRun_WhiteSquare(t *testing.T) {
	img := createSquareImage(200, 200, 50, 50, 150, 150, color.White, color.Black)
	params := mustParams(t, WithThreshold(Constant(0.5)))

	res, err := New().Run(context.Background(), img, params)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.MaxIntensity != 255 {
		t.Errorf("MaxIntensity: got %d, want 255", res.MaxIntensity)
	}
	if res.Threshold != 127.5 {
		t.Errorf("Threshold: got %v, want 127.5", res.Threshold)
	}
	if res.Mode != contour.Tree {
		t.Errorf("Mode: got %v, want tree", res.Mode)
	}

	if len(res.Contours) != 1 || len(res.Rendered) != 1 {
		t.Fatalf("contours: got %d found, %d rendered, want 1 and 1", len(res.Contours), len(res.Rendered))
	}
	if area := res.Contours[0].Area(); math.Abs(area-10000) > 250 {
		t.Errorf("area: got %v, want about 10000", area)
	}

	r, g, b, _ := res.Final.At(50, 100).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("outline pixel: got (%d,%d,%d), want red", r>>8, g>>8, b>>8)
	}
}

func TestRun_AreaBoundsExcludeSquare(t *testing.T) {
	img := createSquareImage(200, 200, 50, 50, 150, 150, color.White, color.Black)
	params := mustParams(t,
		WithThreshold(Constant(0.5)),
		WithAreaBounds(ptr(20000), ptr(30000)),
	)

	res, err := New().Run(context.Background(), img, params)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Contours) != 1 {
		t.Errorf("found contours: got %d, want 1", len(res.Contours))
	}
	if len(res.Rendered) != 0 {
		t.Errorf("rendered contours: got %d, want 0", len(res.Rendered))
	}
	if !sameRGBA(res.Final, img) {
		t.Error("with nothing rendered the output should equal the input")
	}
}

func TestRun_ConstantThreshold(t *testing.T) {
	img := createSquareImage(40, 40, 10, 10, 30, 30, color.Gray{Y: 200}, color.Gray{Y: 20})

	for _, f := range []float64{0.1, 0.5, 0.85, 1.2} {
		res, err := New().Run(context.Background(), img, mustParams(t, WithThreshold(Constant(f))))
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if want := f * 200; math.Abs(res.Threshold-want) > 1e-9 {
			t.Errorf("Constant(%v): got threshold %v, want %v", f, res.Threshold, want)
		}
	}
}

func TestRun_BinaryMaskIsIdempotent(t *testing.T) {
	img := createSquareImage(60, 60, 10, 20, 40, 50, color.RGBA{180, 90, 40, 255}, color.RGBA{10, 10, 10, 255})

	res, err := New().Run(context.Background(), img, mustParams(t))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	mask := res.Panel(PanelBinary).(*image.Gray)
	again := imaging.Binarize(mask, res.Threshold, res.MaxIntensity)
	if !imaging.Equal(mask, again) {
		t.Error("re-binarizing the mask at the same threshold should not change it")
	}
}

func TestRun_RankedContours(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	fill := func(x1, y1, x2, y2 int) {
		for y := y1; y < y2; y++ {
			for x := x1; x < x2; x++ {
				img.Set(x, y, color.White)
			}
		}
	}
	fill(5, 5, 15, 15)
	fill(30, 5, 90, 65)
	fill(120, 10, 150, 40)

	res, err := New().Run(context.Background(), img, mustParams(t, WithThreshold(Constant(0.5))))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Contours) != 3 {
		t.Fatalf("contours: got %d, want 3", len(res.Contours))
	}
	for i := 1; i < len(res.Contours); i++ {
		if res.Contours[i-1].Area() < res.Contours[i].Area() {
			t.Errorf("contours not sorted by descending area at %d", i)
		}
	}

	// Only the middle-sized square lies strictly inside (500, 2000).
	res, err = New().Run(context.Background(), img, mustParams(t,
		WithThreshold(Constant(0.5)),
		WithAreaBounds(ptr(500), ptr(2000)),
	))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Rendered) != 1 || res.Rendered[0].Area() != 29*29 {
		t.Errorf("rendered: got %d contours, want the 30x30 square", len(res.Rendered))
	}
}

func TestRun_MorphologyUsesExternalRetrieval(t *testing.T) {
	// A ring has a hole boundary in tree mode, but only its outline in external mode.
	img := createSquareImage(100, 100, 20, 20, 80, 80, color.White, color.Black)
	for y := 35; y < 65; y++ {
		for x := 35; x < 65; x++ {
			img.Set(x, y, color.Black)
		}
	}

	tree, err := New().Run(context.Background(), img, mustParams(t, WithThreshold(Constant(0.5))))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(tree.Contours) != 2 {
		t.Errorf("without morphology: got %d contours, want outer and hole", len(tree.Contours))
	}

	ext, err := New().Run(context.Background(), img, mustParams(t,
		WithThreshold(Constant(0.5)),
		WithMorphology(true),
	))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ext.Mode != contour.External {
		t.Errorf("Mode: got %v, want external", ext.Mode)
	}
	if len(ext.Contours) != 1 || ext.Contours[0].Hole {
		t.Errorf("with morphology: got %d contours, want one outer boundary", len(ext.Contours))
	}
	if imaging.Equal(ext.Panel(PanelBinary).(*image.Gray), ext.Panel(PanelMorphology).(*image.Gray)) {
		t.Error("morphology panel should differ from the binary mask")
	}
}

func TestRun_Panels(t *testing.T) {
	img := createSquareImage(64, 48, 10, 10, 40, 30, color.White, color.Black)

	res, err := New().Run(context.Background(), img, mustParams(t))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{
		PanelOriginal, PanelBlurred, PanelGray, PanelEdges,
		PanelEdgesBlurred, PanelBinary, PanelMorphology, PanelFinal,
	}
	if len(res.Panels) != len(want) {
		t.Fatalf("panels: got %d, want %d", len(res.Panels), len(want))
	}
	for i, name := range want {
		if res.Panels[i].Name != name {
			t.Errorf("panel %d: got %q, want %q", i, res.Panels[i].Name, name)
		}
		if got := res.Panels[i].Image.Bounds().Size(); got != image.Pt(64, 48) {
			t.Errorf("panel %q size: got %v, want 64x48", name, got)
		}
	}
	if res.Panels[len(res.Panels)-1].Image != image.Image(res.Final) {
		t.Error("final annotated image should be the last panel")
	}

	// Without morphology the cleaned mask is the binary mask.
	if !imaging.Equal(res.Panel(PanelBinary).(*image.Gray), res.Panel(PanelMorphology).(*image.Gray)) {
		t.Error("morphology panel should equal the binary mask when cleanup is off")
	}
	if res.Panel("missing") != nil {
		t.Error("unknown panel name should return nil")
	}
}

func TestRun_DoesNotModifyInput(t *testing.T) {
	img := createSquareImage(50, 50, 10, 10, 40, 40, color.White, color.Black)
	before := append([]uint8(nil), img.Pix...)

	if _, err := New().Run(context.Background(), img, mustParams(t, WithThreshold(Constant(0.5)))); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i := range before {
		if img.Pix[i] != before[i] {
			t.Fatalf("input modified at offset %d", i)
		}
	}
}

func TestRun_DegenerateImages(t *testing.T) {
	tests := []struct {
		name         string
		img          image.Image
		wantContours int
	}{
		{"all black", createSquareImage(30, 30, 0, 0, 0, 0, color.White, color.Black), 0},
		{"all white", createSquareImage(30, 30, 0, 0, 30, 30, color.White, color.Black), 1},
		{"empty", image.NewRGBA(image.Rect(0, 0, 0, 0)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New().Run(context.Background(), tt.img, mustParams(t))
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if len(res.Contours) != tt.wantContours {
				t.Errorf("contours: got %d, want %d", len(res.Contours), tt.wantContours)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	img := createSquareImage(10, 10, 2, 2, 8, 8, color.White, color.Black)

	bad := DefaultParameters()
	bad.KernelSize = 2
	if _, err := New().Run(context.Background(), img, bad); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("invalid parameters: got %v, want ErrInvalidParameter", err)
	}

	if _, err := New().Run(context.Background(), nil, DefaultParameters()); err == nil {
		t.Error("nil image should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Run(ctx, img, DefaultParameters()); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: got %v, want context.Canceled", err)
	}
}

func TestRun_WithFinder(t *testing.T) {
	img := createSquareImage(20, 20, 5, 5, 15, 15, color.White, color.Black)

	var gotMode contour.Mode
	calls := 0
	finder := func(mask *image.Gray, mode contour.Mode) []contour.Contour {
		calls++
		gotMode = mode
		return []contour.Contour{{Points: []contour.Point{{X: 1, Y: 1}}, Parent: -1}}
	}

	res, err := New(WithFinder(finder)).Run(context.Background(), img, mustParams(t, WithMorphology(true)))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 1 || gotMode != contour.External {
		t.Errorf("finder: got %d calls with mode %v, want 1 call with external", calls, gotMode)
	}
	if len(res.Contours) != 1 {
		t.Errorf("contours: got %d, want the finder's 1", len(res.Contours))
	}
}

func TestRun_WithStroke(t *testing.T) {
	img := createSquareImage(40, 40, 10, 10, 30, 30, color.White, color.Black)
	green := color.NRGBA{G: 255, A: 255}

	res, err := New(WithStroke(green), WithStrokeWidth(1)).Run(context.Background(), img, mustParams(t, WithThreshold(Constant(0.5))))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	r, g, b, _ := res.Final.At(10, 20).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("outline: got (%d,%d,%d), want green", r>>8, g>>8, b>>8)
	}
	// Width 1 leaves the pixel just inside the outline untouched.
	if r, _, _, _ := res.Final.At(11, 20).RGBA(); r>>8 != 255 {
		t.Error("stroke width 1 should not reach the interior")
	}
}

func TestRun_StageSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	img := createSquareImage(20, 20, 5, 5, 15, 15, color.White, color.Black)
	if _, err := New(WithTracer(tp.Tracer("test"))).Run(context.Background(), img, mustParams(t)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	names := map[string]bool{}
	for _, s := range recorder.Ended() {
		names[s.Name()] = true
	}
	for _, want := range []string{
		"pipeline.Run", "pipeline.grayscale", "pipeline.threshold", "pipeline.binarize",
		"pipeline.morphology", "pipeline.blur", "pipeline.edges", "pipeline.contours", "pipeline.render",
	} {
		if !names[want] {
			t.Errorf("missing span %q", want)
		}
	}
}
