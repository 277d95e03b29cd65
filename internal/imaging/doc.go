// Package imaging provides the pixel-grid operations used by the contour pipeline.
//
// This package implements loading and saving of still images plus the per-pixel
// transforms the pipeline composes: grayscale conversion, intensity statistics,
// binarization, box blur, square-kernel morphology, and Canny edge detection.
// All operations work with standard Go image types and use a coordinate system
// where (0,0) is at the top-left corner, X increases rightward, and Y increases downward.
//
// # Pixel Grids
//
// Grayscale and binary grids are *image.Gray with one 8-bit sample per pixel.
// Color grids are *image.NRGBA in R, G, B, A order. Every grid derived from a
// source image keeps the source's width and height; derived grids are always
// rebased to a zero origin.
//
// # Binary Masks
//
// A binary mask holds exactly two sample values: 0 for background and the
// foreground value chosen at binarization time (the image's max intensity, not
// necessarily 255). Morphology and contour extraction treat any non-zero sample
// as foreground.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless, never modify their inputs, and can be called concurrently.
//
// # Error Handling
//
// Load failures are reported as *LoadError and output failures as *WriteError,
// both wrapping the underlying cause. Degenerate inputs (empty or uniform grids)
// are not errors; they simply produce empty masks and edge maps.
package imaging
