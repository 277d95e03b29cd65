package pipeline

import "math"

// Default parameter values.
const (
	DefaultFraction        = 0.85
	DefaultKernelSize      = 3
	DefaultCannyThreshold1 = 1.0 / 3
	DefaultCannyThreshold2 = 1.0 / 1.5
)

// Parameters configures one pipeline run. Construct it with NewParameters,
// or build a literal and call Validate; Run validates again either way.
type Parameters struct {
	// Threshold derives the binarization cut-off from the max intensity.
	Threshold ThresholdPolicy

	// KernelSize is the side of the square structuring element used for
	// morphology and blur. Must be odd and positive.
	KernelSize int

	// CannyThreshold1 and CannyThreshold2 are the low and high hysteresis
	// thresholds as fractions of the max intensity. They are not reordered.
	CannyThreshold1 float64
	CannyThreshold2 float64

	// UseMorphology enables mask cleanup before contour extraction.
	UseMorphology bool

	// AreaMin and AreaMax bound the rendered contours' areas, exclusive.
	// Filtering applies only when both are set.
	AreaMin *float64
	AreaMax *float64
}

// ParameterOption adjusts a Parameters under construction.
type ParameterOption func(*Parameters)

// WithThreshold sets the threshold policy.
func WithThreshold(p ThresholdPolicy) ParameterOption {
	return func(params *Parameters) { params.Threshold = p }
}

// WithKernelSize sets the structuring element size.
func WithKernelSize(k int) ParameterOption {
	return func(params *Parameters) { params.KernelSize = k }
}

// WithCanny sets both hysteresis fractions.
func WithCanny(low, high float64) ParameterOption {
	return func(params *Parameters) {
		params.CannyThreshold1 = low
		params.CannyThreshold2 = high
	}
}

// WithMorphology toggles mask cleanup.
func WithMorphology(on bool) ParameterOption {
	return func(params *Parameters) { params.UseMorphology = on }
}

// WithAreaBounds sets the exclusive area bounds. Either may be nil.
func WithAreaBounds(min, max *float64) ParameterOption {
	return func(params *Parameters) {
		params.AreaMin = copyFloat(min)
		params.AreaMax = copyFloat(max)
	}
}

// DefaultParameters returns the stock record: 0.85 of max intensity, a 3x3
// kernel, Canny fractions 1/3 and 2/3, no cleanup and no area bounds.
func DefaultParameters() Parameters {
	return Parameters{
		Threshold:       Constant(DefaultFraction),
		KernelSize:      DefaultKernelSize,
		CannyThreshold1: DefaultCannyThreshold1,
		CannyThreshold2: DefaultCannyThreshold2,
	}
}

// NewParameters applies opts over DefaultParameters and validates the result.
func NewParameters(opts ...ParameterOption) (Parameters, error) {
	p := DefaultParameters()
	for _, opt := range opts {
		opt(&p)
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// Validate reports the first invalid field, if any.
func (p Parameters) Validate() error {
	if p.Threshold == nil {
		return invalid("threshold", "policy is required")
	}
	if d, ok := p.Threshold.(Derived); ok && d == nil {
		return invalid("threshold", "derived policy has no function")
	}
	if c, ok := p.Threshold.(Constant); ok && !finite(float64(c)) {
		return invalid("threshold", "fraction must be finite, got %v", float64(c))
	}
	if l, ok := p.Threshold.(Linear); ok && (!finite(l.Scale) || !finite(l.Offset)) {
		return invalid("threshold", "scale and offset must be finite")
	}

	if p.KernelSize <= 0 {
		return invalid("kernel_size", "must be positive, got %d", p.KernelSize)
	}
	if p.KernelSize%2 == 0 {
		return invalid("kernel_size", "must be odd, got %d", p.KernelSize)
	}

	if !finite(p.CannyThreshold1) || p.CannyThreshold1 < 0 {
		return invalid("canny_threshold1", "must be a non-negative number, got %v", p.CannyThreshold1)
	}
	if !finite(p.CannyThreshold2) || p.CannyThreshold2 < 0 {
		return invalid("canny_threshold2", "must be a non-negative number, got %v", p.CannyThreshold2)
	}

	if p.AreaMin != nil && !finite(*p.AreaMin) {
		return invalid("area_min", "must be finite, got %v", *p.AreaMin)
	}
	if p.AreaMax != nil && !finite(*p.AreaMax) {
		return invalid("area_max", "must be finite, got %v", *p.AreaMax)
	}
	if p.AreaMin != nil && p.AreaMax != nil && *p.AreaMin >= *p.AreaMax {
		return invalid("area_min", "must be less than area_max (%v >= %v)", *p.AreaMin, *p.AreaMax)
	}
	return nil
}

// Filtered reports whether area filtering applies.
func (p Parameters) Filtered() bool {
	return p.AreaMin != nil && p.AreaMax != nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
