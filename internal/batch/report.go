package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ironsheep/contour-pipeline/internal/contour"
	"github.com/ironsheep/contour-pipeline/internal/pipeline"
)

// Outcome is the result of processing one image.
type Outcome struct {
	Path        string `json:"path"`
	ContourPath string `json:"contour_path,omitempty"`
	FigurePath  string `json:"figure_path,omitempty"`

	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	MaxIntensity uint8   `json:"max_intensity"`
	Threshold    float64 `json:"threshold"`
	Mode         string  `json:"mode,omitempty"`

	// Contours counts every extracted contour; Rendered counts those that
	// passed the area filter and were drawn.
	Contours  int               `json:"contours"`
	Rendered  int               `json:"rendered"`
	Summaries []contour.Summary `json:"summaries,omitempty"`

	Elapsed time.Duration `json:"elapsed_ns"`

	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`

	// Err is the underlying error for errors.As inspection.
	Err error `json:"-"`

	// Result holds the pipeline output for callers that want the panels.
	Result *pipeline.Result `json:"-"`
}

// OK reports whether the image was processed and written.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Report summarizes a batch run.
type Report struct {
	RunID         string        `json:"run_id"`
	Started       time.Time     `json:"started"`
	Elapsed       time.Duration `json:"elapsed_ns"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	TotalContours int           `json:"total_contours"`
	Outcomes      []Outcome     `json:"outcomes"`
}

func (r *Report) finish() {
	r.Elapsed = time.Since(r.Started)
	for _, o := range r.Outcomes {
		if o.OK() {
			r.Succeeded++
			r.TotalContours += o.Rendered
		} else {
			r.Failed++
		}
	}
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes a one-line-per-image human summary.
func (r *Report) WriteText(w io.Writer) error {
	for _, o := range r.Outcomes {
		var err error
		if o.OK() {
			_, err = fmt.Fprintf(w, "ok    %s: %d contours, %d drawn -> %s\n", o.Path, o.Contours, o.Rendered, o.ContourPath)
		} else {
			_, err = fmt.Fprintf(w, "fail  %s: [%s] %s\n", o.Path, o.ErrorKind, o.Error)
		}
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "run %s: %d ok, %d failed in %s\n", r.RunID, r.Succeeded, r.Failed, r.Elapsed.Round(time.Millisecond))
	return err
}
