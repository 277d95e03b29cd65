// Package render draws pipeline results for people to look at.
//
// Annotate strokes contours onto a copy of the source image. Figure tiles the
// pipeline's intermediate panels into one captioned diagnostic image. Encode
// and Crop produce base64 PNG payloads for tool responses.
//
// Nothing in this package modifies an input image.
package render
