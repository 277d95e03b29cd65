// Package contour extracts, ranks and filters region outlines in binary masks.
//
// A contour is the closed boundary between a foreground region and the
// background, traced with 8-connectivity by topological border following. Each
// boundary is compressed to its direction-changing vertices: a run of pixels
// moving in the same direction collapses to its two end points, so an
// axis-aligned filled rectangle yields exactly its four corners.
//
// # Retrieval Modes
//
//   - External: only the outermost boundary of each region.
//   - Tree: every outer boundary and every hole boundary, each with the index
//     of the boundary that immediately encloses it.
//
// # Area
//
// Contour area is the shoelace area of the compressed polygon. A contour of
// one or two points, or one that retraces itself (a one-pixel-wide line), has
// zero area. Signed area is positive for counter-clockwise traversal in
// screen coordinates.
//
// # Ranking and Filtering
//
// Rank sorts contours by descending area, stable on ties, and re-points parent
// indices so the hierarchy still holds after sorting. Filter keeps contours
// strictly inside an open area interval.
//
// # Backends
//
// The pure-Go border follower is registered as the "native" backend. Builds
// with the opencv tag also register an "opencv" backend backed by gocv, which
// produces the same contours through OpenCV's findContours.
package contour
