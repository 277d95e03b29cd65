// Package pipeline turns one image and a parameter record into contour
// outlines and a set of diagnostic panels.
//
// # Stages
//
// Run executes these stages in order, every time:
//
//  1. Grayscale conversion (ITU-R BT.601 luma).
//  2. Threshold derivation from the image's maximum intensity.
//  3. Binarization: samples strictly above the threshold become the maximum
//     intensity, the rest become 0.
//  4. Morphological cleanup when enabled: close x2, dilate x2, open x1.
//  5. Box blur of the grayscale grid.
//  6. Canny edge detection on the grayscale and blurred grids.
//  7. Contour extraction from the cleaned mask, External retrieval when
//     cleanup ran and Tree retrieval otherwise, ranked by descending area.
//  8. Area filtering and rendering onto a copy of the input.
//
// Edge maps and the blurred grid are diagnostics only; they never feed
// contour extraction. Degenerate input (a blank image, an empty mask) is not
// an error and simply yields zero contours.
//
// # Parameters
//
// Parameters are validated before any pixel work. Invalid records are
// rejected with an *InvalidParameterError that matches ErrInvalidParameter.
//
// # Tracing
//
// Each Run opens a span with one child span per stage on the configured
// OpenTelemetry tracer (the global provider unless WithTracer is used).
package pipeline
