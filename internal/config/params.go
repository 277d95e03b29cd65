package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/contour-pipeline/internal/batch"
	"github.com/ironsheep/contour-pipeline/internal/imaging"
	"github.com/ironsheep/contour-pipeline/internal/pipeline"
)

// Threshold modes.
const (
	ModeConstant = "constant"
	ModeDerived  = "derived"
)

// ParamsConfig is a partial parameter record. Nil fields inherit from the
// level above: image or scan params over defaults over built-ins. The json
// tags let server tool arguments use the same shape.
type ParamsConfig struct {
	Threshold       ThresholdConfig `koanf:"threshold" json:"threshold"`
	KernelSize      *int            `koanf:"kernel_size" json:"kernel_size,omitempty"`
	CannyThreshold1 *float64        `koanf:"canny_threshold1" json:"canny_threshold1,omitempty"`
	CannyThreshold2 *float64        `koanf:"canny_threshold2" json:"canny_threshold2,omitempty"`
	UseMorphology   *bool           `koanf:"use_morphology" json:"use_morphology,omitempty"`
	AreaMin         *float64        `koanf:"area_min" json:"area_min,omitempty"`
	AreaMax         *float64        `koanf:"area_max" json:"area_max,omitempty"`
}

// ThresholdConfig selects a threshold policy. Mode constant uses Fraction;
// mode derived computes Scale*max + Offset.
type ThresholdConfig struct {
	Mode     string   `koanf:"mode" json:"mode,omitempty"`
	Fraction *float64 `koanf:"fraction" json:"fraction,omitempty"`
	Scale    *float64 `koanf:"scale" json:"scale,omitempty"`
	Offset   *float64 `koanf:"offset" json:"offset,omitempty"`
}

// Merge returns p with every field set in over replacing p's.
func (p ParamsConfig) Merge(over ParamsConfig) ParamsConfig {
	if over.Threshold.Mode != "" {
		p.Threshold.Mode = over.Threshold.Mode
	}
	pick(&p.Threshold.Fraction, over.Threshold.Fraction)
	pick(&p.Threshold.Scale, over.Threshold.Scale)
	pick(&p.Threshold.Offset, over.Threshold.Offset)
	pick(&p.KernelSize, over.KernelSize)
	pick(&p.CannyThreshold1, over.CannyThreshold1)
	pick(&p.CannyThreshold2, over.CannyThreshold2)
	pick(&p.UseMorphology, over.UseMorphology)
	pick(&p.AreaMin, over.AreaMin)
	pick(&p.AreaMax, over.AreaMax)
	return p
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// Parameters resolves p over the built-in defaults and validates it.
func (p ParamsConfig) Parameters() (pipeline.Parameters, error) {
	var opts []pipeline.ParameterOption

	switch strings.ToLower(p.Threshold.Mode) {
	case "", ModeConstant:
		if p.Threshold.Fraction != nil {
			opts = append(opts, pipeline.WithThreshold(pipeline.Constant(*p.Threshold.Fraction)))
		}
	case ModeDerived:
		l := pipeline.Linear{Scale: 1}
		if p.Threshold.Scale != nil {
			l.Scale = *p.Threshold.Scale
		}
		if p.Threshold.Offset != nil {
			l.Offset = *p.Threshold.Offset
		}
		opts = append(opts, pipeline.WithThreshold(l))
	default:
		return pipeline.Parameters{}, &pipeline.InvalidParameterError{
			Field:  "threshold.mode",
			Reason: fmt.Sprintf("unknown mode %q (want %s or %s)", p.Threshold.Mode, ModeConstant, ModeDerived),
		}
	}

	if p.KernelSize != nil {
		opts = append(opts, pipeline.WithKernelSize(*p.KernelSize))
	}
	if p.CannyThreshold1 != nil || p.CannyThreshold2 != nil {
		low, high := pipeline.DefaultCannyThreshold1, pipeline.DefaultCannyThreshold2
		if p.CannyThreshold1 != nil {
			low = *p.CannyThreshold1
		}
		if p.CannyThreshold2 != nil {
			high = *p.CannyThreshold2
		}
		opts = append(opts, pipeline.WithCanny(low, high))
	}
	if p.UseMorphology != nil {
		opts = append(opts, pipeline.WithMorphology(*p.UseMorphology))
	}
	opts = append(opts, pipeline.WithAreaBounds(p.AreaMin, p.AreaMax))

	return pipeline.NewParameters(opts...)
}

// Jobs resolves scans and explicit images into batch jobs. Scans come first
// in configuration order, each sorted by name; an explicit image that a scan
// already found keeps its position but takes the explicit parameters.
func (c *Config) Jobs() ([]batch.Job, error) {
	var jobs []batch.Job
	index := map[string]int{}

	add := func(path string, pc ParamsConfig) error {
		params, err := c.Defaults.Merge(pc).Parameters()
		if err != nil {
			return fmt.Errorf("image %s: %w", path, err)
		}
		key := filepath.Clean(path)
		if i, ok := index[key]; ok {
			jobs[i].Params = params
			return nil
		}
		index[key] = len(jobs)
		jobs = append(jobs, batch.Job{Path: path, Params: params})
		return nil
	}

	for _, s := range c.Scan {
		exts := s.Extensions
		if len(exts) == 0 {
			exts = imaging.DefaultExtensions
		}
		paths, err := imaging.Discover(s.Dir, exts)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.Dir, err)
		}
		for _, p := range paths {
			if err := add(p, s.Params); err != nil {
				return nil, err
			}
		}
	}

	for _, img := range c.Images {
		if err := add(img.Path, img.Params); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}
