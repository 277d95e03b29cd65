// Package server exposes the contour pipeline as MCP (Model Context Protocol)
// tools over stdio.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0, one message per line:
//   - Input: requests on stdin
//   - Output: responses on stdout
//
// Logs never go to stdout; the CLI sends them to stderr.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Tools
//
//   - image_load: image metadata (dimensions, format, depth, file size)
//   - contour_detect: run the pipeline on one image and summarize its contours,
//     optionally writing the outputs and returning the annotated image
//   - contour_crop: return a crop of the annotated image around one contour
//   - contour_batch: scan a directory and process every matching image
//
// Pipeline parameters are passed as tool arguments with the same names as the
// configuration file's params blocks (threshold, kernel_size, use_morphology,
// area_min, ...). Omitted fields fall back to the configured defaults.
//
// # Errors
//
// Tool failures are JSON-RPC errors with code -32000 and the Go error string
// as data. Malformed tools/call params get -32602.
package server
