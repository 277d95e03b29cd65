package pipeline

import (
	"fmt"
	"strconv"
)

// ThresholdPolicy derives the binarization threshold from an image's maximum
// intensity. The result is not clamped; values outside 0..255 saturate the
// mask to all foreground or all background.
type ThresholdPolicy interface {
	Threshold(maxIntensity float64) float64
	String() string
}

// Constant is a fixed fraction of the maximum intensity.
type Constant float64

// Threshold returns fraction * maxIntensity.
func (c Constant) Threshold(maxIntensity float64) float64 {
	return float64(c) * maxIntensity
}

func (c Constant) String() string {
	return "constant(" + strconv.FormatFloat(float64(c), 'g', -1, 64) + ")"
}

// Derived computes the threshold with an arbitrary function of the maximum
// intensity.
type Derived func(maxIntensity float64) float64

// Threshold calls the function.
func (d Derived) Threshold(maxIntensity float64) float64 {
	return d(maxIntensity)
}

func (d Derived) String() string {
	return "derived"
}

// Linear is the derived policy scale*max + offset, the form configuration
// files can express.
type Linear struct {
	Scale  float64
	Offset float64
}

// Threshold returns Scale*maxIntensity + Offset.
func (l Linear) Threshold(maxIntensity float64) float64 {
	return l.Scale*maxIntensity + l.Offset
}

func (l Linear) String() string {
	return fmt.Sprintf("derived(%g*max%+g)", l.Scale, l.Offset)
}
