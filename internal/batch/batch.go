// Package batch runs the contour pipeline over an explicit list of images.
//
// Every image is processed independently: a load, parameter or write failure
// is recorded in that image's Outcome and the run moves on. With more than
// one worker images are processed concurrently, but the Report always lists
// outcomes in job order.
package batch

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/contour-pipeline/internal/contour"
	"github.com/ironsheep/contour-pipeline/internal/imaging"
	"github.com/ironsheep/contour-pipeline/internal/pipeline"
	"github.com/ironsheep/contour-pipeline/internal/render"
)

// Default output naming.
const (
	DefaultContourPrefix = "contour_"
	DefaultFigurePrefix  = "full_"
)

// Error kinds recorded in Outcome.ErrorKind.
const (
	KindLoad      = "load"
	KindParameter = "parameter"
	KindWrite     = "write"
	KindCanceled  = "canceled"
	KindInternal  = "internal"
)

// Job pairs an image path with the parameters to process it with.
type Job struct {
	Path   string
	Params pipeline.Parameters
}

// Options controls output and concurrency.
type Options struct {
	// Workers is the number of images processed at once. Values below 1
	// mean 1 (strictly sequential).
	Workers int

	// ContourPrefix and FigurePrefix are prepended to the source file's
	// base name to form output names.
	ContourPrefix string
	FigurePrefix  string

	// OutputDir overrides where outputs are written. Empty writes next to
	// each source image.
	OutputDir string

	// WriteFigure enables the diagnostic composite.
	WriteFigure bool

	// PanelWidth is the width of each composite panel.
	PanelWidth int

	// TopK limits the contour summaries kept per outcome. Zero keeps all.
	TopK int

	// DryRun processes images without writing any files.
	DryRun bool

	// Evict drops each image from the cache once processed.
	Evict bool
}

// DefaultOptions returns sequential processing with both outputs written
// next to the source.
func DefaultOptions() Options {
	return Options{
		Workers:       1,
		ContourPrefix: DefaultContourPrefix,
		FigurePrefix:  DefaultFigurePrefix,
		WriteFigure:   true,
		PanelWidth:    render.DefaultPanelWidth,
		Evict:         true,
	}
}

// Runner processes jobs through a pipeline.
type Runner struct {
	pipeline *pipeline.Pipeline
	cache    *imaging.ImageCache
	logger   zerolog.Logger
	opts     Options
}

// NewRunner creates a Runner. A nil cache gets a private one.
func NewRunner(p *pipeline.Pipeline, cache *imaging.ImageCache, logger zerolog.Logger, opts Options) *Runner {
	if p == nil {
		p = pipeline.New()
	}
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.PanelWidth <= 0 {
		opts.PanelWidth = render.DefaultPanelWidth
	}
	return &Runner{
		pipeline: p,
		cache:    cache,
		logger:   logger,
		opts:     opts,
	}
}

// Run processes every job and returns the report. It never fails as a
// whole; per-image failures are in the outcomes.
func (r *Runner) Run(ctx context.Context, jobs []Job) *Report {
	report := &Report{
		RunID:    uuid.NewString(),
		Started:  time.Now(),
		Outcomes: make([]Outcome, len(jobs)),
	}
	logger := r.logger.With().Str("run_id", report.RunID).Logger()
	logger.Info().Int("images", len(jobs)).Int("workers", r.opts.Workers).Msg("batch started")

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			out := r.process(ctx, job, logger)
			out.Result = nil
			report.Outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	report.finish()
	logger.Info().
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("contours", report.TotalContours).
		Dur("elapsed", report.Elapsed).
		Msg("batch finished")
	return report
}

// Process runs a single job outside of a batch. Unlike Run, the returned
// Outcome keeps the pipeline Result.
func (r *Runner) Process(ctx context.Context, job Job) Outcome {
	return r.process(ctx, job, r.logger)
}

func (r *Runner) process(ctx context.Context, job Job, logger zerolog.Logger) Outcome {
	start := time.Now()
	out := Outcome{Path: job.Path}
	log := logger.With().Str("path", job.Path).Logger()

	fail := func(err error) Outcome {
		out.Err = err
		out.Error = err.Error()
		out.ErrorKind = classify(err)
		out.Elapsed = time.Since(start)
		log.Error().Err(err).Str("kind", out.ErrorKind).Msg("image failed")
		return out
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := job.Params.Validate(); err != nil {
		return fail(err)
	}

	img, err := r.cache.Load(job.Path)
	if err != nil {
		return fail(err)
	}
	if r.opts.Evict {
		defer r.cache.Evict(job.Path)
	}
	out.Width, out.Height = img.Bounds().Dx(), img.Bounds().Dy()

	res, err := r.pipeline.Run(ctx, img, job.Params)
	if err != nil {
		return fail(err)
	}
	out.MaxIntensity = res.MaxIntensity
	out.Threshold = res.Threshold
	out.Mode = res.Mode.String()
	out.Contours = len(res.Contours)
	out.Rendered = len(res.Rendered)
	out.Summaries = contour.Summarize(contour.Top(res.Rendered, r.opts.TopK))
	out.Result = res

	if !r.opts.DryRun {
		if err := r.write(&out, res); err != nil {
			return fail(err)
		}
	}

	out.Elapsed = time.Since(start)
	log.Info().
		Int("contours", out.Contours).
		Int("rendered", out.Rendered).
		Float64("threshold", out.Threshold).
		Dur("elapsed", out.Elapsed).
		Msg("image processed")
	return out
}

func (r *Runner) write(out *Outcome, res *pipeline.Result) error {
	contourPath, figurePath := OutputPaths(out.Path, r.opts.OutputDir, r.opts.ContourPrefix, r.opts.FigurePrefix)

	if err := imaging.Save(res.Final, contourPath); err != nil {
		return err
	}
	out.ContourPath = contourPath

	if !r.opts.WriteFigure {
		return nil
	}
	fig, err := render.Figure(res.Panels, r.opts.PanelWidth)
	if err != nil {
		return &imaging.WriteError{Path: figurePath, Err: err}
	}
	if err := imaging.Save(fig, figurePath); err != nil {
		return err
	}
	out.FigurePath = figurePath
	return nil
}

// OutputPaths derives the annotated image and composite paths for src:
// <dir>/<contourPrefix><stem><ext> and <dir>/<figurePrefix><stem>.png, where
// dir is outDir or, when empty, src's directory.
func OutputPaths(src, outDir, contourPrefix, figurePrefix string) (contourPath, figurePath string) {
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	contourPath = filepath.Join(dir, contourPrefix+stem+ext)
	figurePath = filepath.Join(dir, figurePrefix+stem+".png")
	return contourPath, figurePath
}

func classify(err error) string {
	var (
		loadErr  *imaging.LoadError
		writeErr *imaging.WriteError
	)
	switch {
	case errors.As(err, &loadErr):
		return KindLoad
	case errors.As(err, &writeErr):
		return KindWrite
	case errors.Is(err, pipeline.ErrInvalidParameter):
		return KindParameter
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
