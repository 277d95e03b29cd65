package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ironsheep/contour-pipeline/internal/contour"
	"github.com/ironsheep/contour-pipeline/internal/imaging"
	"github.com/ironsheep/contour-pipeline/internal/render"
)

const tracerName = "github.com/ironsheep/contour-pipeline/internal/pipeline"

// Pipeline runs the contour stages. It holds no per-image state and is safe
// for concurrent use.
type Pipeline struct {
	finder      contour.Finder
	stroke      color.Color
	strokeWidth int
	tracer      trace.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFinder replaces the contour extraction backend.
func WithFinder(f contour.Finder) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.finder = f
		}
	}
}

// WithStroke sets the contour drawing color.
func WithStroke(c color.Color) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.stroke = c
		}
	}
}

// WithStrokeWidth sets the contour line width in pixels.
func WithStrokeWidth(w int) Option {
	return func(p *Pipeline) {
		if w > 0 {
			p.strokeWidth = w
		}
	}
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// New returns a Pipeline using the native contour backend, a red stroke
// two pixels wide, and the global tracer provider.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		finder:      contour.Find,
		stroke:      render.DefaultStroke,
		strokeWidth: render.DefaultStrokeWidth,
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes img with params. It fails only for invalid parameters or a
// cancelled context; degenerate images produce a Result with no contours.
func (p *Pipeline) Run(ctx context.Context, img image.Image, params Parameters) (res *Result, err error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("pipeline: nil image")
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(
		attribute.Int("image.width", img.Bounds().Dx()),
		attribute.Int("image.height", img.Bounds().Dy()),
		attribute.String("threshold.policy", params.Threshold.String()),
		attribute.Int("kernel_size", params.KernelSize),
		attribute.Bool("morphology", params.UseMorphology),
		attribute.Bool("area_filter", params.Filtered()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.Int("contours.found", len(res.Contours)),
				attribute.Int("contours.rendered", len(res.Rendered)),
			)
		}
		span.End()
	}()

	res = &Result{}
	var (
		gray, mask, cleaned, blurred *image.Gray
		edges, edgesBlurred          *image.Gray
	)

	stages := []struct {
		name string
		run  func()
	}{
		{"grayscale", func() {
			gray = imaging.ToGray(img)
		}},
		{"threshold", func() {
			res.MaxIntensity = imaging.MaxIntensity(gray)
			res.Threshold = params.Threshold.Threshold(float64(res.MaxIntensity))
		}},
		{"binarize", func() {
			mask = imaging.Binarize(gray, res.Threshold, res.MaxIntensity)
		}},
		{"morphology", func() {
			cleaned = mask
			if params.UseMorphology {
				cleaned = imaging.Cleanup(mask, params.KernelSize)
			}
		}},
		{"blur", func() {
			blurred = imaging.BoxBlur(gray, params.KernelSize)
		}},
		{"edges", func() {
			peak := float64(res.MaxIntensity)
			low, high := params.CannyThreshold1*peak, params.CannyThreshold2*peak
			edges = imaging.Canny(gray, low, high)
			edgesBlurred = imaging.Canny(blurred, low, high)
		}},
		{"contours", func() {
			res.Mode = contour.Tree
			if params.UseMorphology {
				res.Mode = contour.External
			}
			res.Contours = contour.Rank(p.finder(cleaned, res.Mode))
		}},
		{"render", func() {
			res.Rendered = contour.Filter(res.Contours, params.AreaMin, params.AreaMax)
			res.Final = render.Annotate(img, res.Rendered, p.stroke, p.strokeWidth)
		}},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, stageSpan := p.tracer.Start(ctx, "pipeline."+s.name)
		s.run()
		stageSpan.End()
	}

	res.Panels = []render.Panel{
		{Name: PanelOriginal, Image: img},
		{Name: PanelBlurred, Image: blurred},
		{Name: PanelGray, Image: gray},
		{Name: PanelEdges, Image: edges},
		{Name: PanelEdgesBlurred, Image: edgesBlurred},
		{Name: PanelBinary, Image: mask},
		{Name: PanelMorphology, Image: cleaned},
		{Name: PanelFinal, Image: res.Final},
	}
	return res, nil
}
