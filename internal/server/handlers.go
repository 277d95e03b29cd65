package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/contour-pipeline/internal/batch"
	"github.com/ironsheep/contour-pipeline/internal/config"
	"github.com/ironsheep/contour-pipeline/internal/contour"
	"github.com/ironsheep/contour-pipeline/internal/imaging"
	"github.com/ironsheep/contour-pipeline/internal/pipeline"
	"github.com/ironsheep/contour-pipeline/internal/render"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "contour_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "contour_detect":
		return s.handleContourDetect(ctx, args)
	case "contour_crop":
		return s.handleContourCrop(ctx, args)
	case "contour_batch":
		return s.handleContourBatch(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Missing arguments decode as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// runner returns a batch runner sharing the server's cache and pipeline.
// Single-image tools keep images cached across calls; directory runs evict.
func (s *Server) runner(dryRun, evict bool, topK int) *batch.Runner {
	opts := s.opts
	opts.DryRun = dryRun
	opts.Evict = evict
	if topK > 0 {
		opts.TopK = topK
	}
	return batch.NewRunner(s.pipeline, s.cache, s.logger, opts)
}

func (s *Server) parameters(pc config.ParamsConfig) (pipeline.Parameters, error) {
	return s.defaults.Merge(pc).Parameters()
}

// === Image Information ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Contour Detection ===

type contourDetectArgs struct {
	Path string `json:"path"`
	config.ParamsConfig

	// Write saves the annotated image and the composite next to the source.
	Write bool `json:"write"`

	// IncludeImage embeds the annotated image as base64 PNG.
	IncludeImage bool `json:"include_image"`

	TopK int `json:"top_k"`
}

// ContourDetectResult is the contour_detect response.
type ContourDetectResult struct {
	batch.Outcome
	Image *render.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handleContourDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a contourDetectArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	params, err := s.parameters(a.ParamsConfig)
	if err != nil {
		return nil, err
	}

	out := s.runner(!a.Write, false, a.TopK).Process(ctx, batch.Job{Path: a.Path, Params: params})
	if !out.OK() {
		return nil, out.Err
	}

	result := &ContourDetectResult{Outcome: out}
	if a.IncludeImage {
		enc, err := render.Encode(out.Result.Final)
		if err != nil {
			return nil, err
		}
		result.Image = enc
	}
	return result, nil
}

type contourCropArgs struct {
	Path string `json:"path"`
	config.ParamsConfig

	// Index selects a contour in the ranked, filtered list.
	Index  int     `json:"index"`
	Margin *int    `json:"margin"`
	Scale  float64 `json:"scale"`
}

// ContourCropResult is the contour_crop response.
type ContourCropResult struct {
	Contour contour.Summary `json:"contour"`
	*render.EncodedImage
}

const defaultCropMargin = 10

func (s *Server) handleContourCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a contourCropArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	margin := defaultCropMargin
	if a.Margin != nil {
		margin = *a.Margin
	}
	if margin < 0 {
		return nil, fmt.Errorf("margin must not be negative, got %d", margin)
	}
	params, err := s.parameters(a.ParamsConfig)
	if err != nil {
		return nil, err
	}

	out := s.runner(true, false, 0).Process(ctx, batch.Job{Path: a.Path, Params: params})
	if !out.OK() {
		return nil, out.Err
	}

	rendered := out.Result.Rendered
	if a.Index < 0 || a.Index >= len(rendered) {
		return nil, fmt.Errorf("contour index %d out of range (%d contours)", a.Index, len(rendered))
	}

	c := rendered[a.Index]
	enc, err := render.Crop(out.Result.Final, c.Bounds(), margin, a.Scale)
	if err != nil {
		return nil, err
	}
	summary := contour.Summarize([]contour.Contour{c})[0]
	summary.Index = a.Index
	return &ContourCropResult{Contour: summary, EncodedImage: enc}, nil
}

type contourBatchArgs struct {
	Dir        string   `json:"dir"`
	Extensions []string `json:"extensions"`
	config.ParamsConfig

	DryRun bool `json:"dry_run"`
	TopK   int  `json:"top_k"`
}

func (s *Server) handleContourBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a contourBatchArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	params, err := s.parameters(a.ParamsConfig)
	if err != nil {
		return nil, err
	}

	paths, err := imaging.Discover(a.Dir, a.Extensions)
	if err != nil {
		return nil, err
	}
	jobs := make([]batch.Job, len(paths))
	for i, p := range paths {
		jobs[i] = batch.Job{Path: p, Params: params}
	}

	r := s.runner(a.DryRun, true, a.TopK)
	return r.Run(ctx, jobs), nil
}
