package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// paramProperties describes the pipeline parameters shared by the contour tools.
func paramProperties() map[string]interface{} {
	return map[string]interface{}{
		"threshold": map[string]interface{}{
			"type":        "object",
			"description": "Binarization threshold policy. mode constant uses fraction of the max intensity (default 0.85); mode derived computes scale*max + offset",
			"properties": map[string]interface{}{
				"mode": map[string]interface{}{
					"type": "string",
					"enum": []string{"constant", "derived"},
				},
				"fraction": map[string]interface{}{"type": "number"},
				"scale":    map[string]interface{}{"type": "number"},
				"offset":   map[string]interface{}{"type": "number"},
			},
		},
		"kernel_size": map[string]interface{}{
			"type":        "integer",
			"description": "Odd side of the square kernel used for morphology and blur. Default 3",
		},
		"canny_threshold1": map[string]interface{}{
			"type":        "number",
			"description": "Low edge threshold as a fraction of the max intensity. Default 1/3",
		},
		"canny_threshold2": map[string]interface{}{
			"type":        "number",
			"description": "High edge threshold as a fraction of the max intensity. Default 1/1.5",
		},
		"use_morphology": map[string]interface{}{
			"type":        "boolean",
			"description": "Clean the mask with close/dilate/open and keep only outer contours",
		},
		"area_min": map[string]interface{}{
			"type":        "number",
			"description": "Exclusive lower area bound. Filtering applies only when area_max is also set",
		},
		"area_max": map[string]interface{}{
			"type":        "number",
			"description": "Exclusive upper area bound. Filtering applies only when area_min is also set",
		},
	}
}

// withParams returns props extended with the pipeline parameter properties.
func withParams(props map[string]interface{}) map[string]interface{} {
	for k, v := range paramProperties() {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, color depth and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "contour_detect",
			Description: "Binarize an image relative to its brightest pixel, extract region contours and return them ranked by area with bounding boxes, perimeters and nesting.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withParams(map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"write": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the annotated image and the diagnostic composite next to the source. Default false",
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the annotated image as base64 PNG. Default false",
					},
					"top_k": map[string]interface{}{
						"type":        "integer",
						"description": "Summarize only the K largest drawn contours. Default all",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "contour_crop",
			Description: "Crop the annotated image around one detected contour and return it as base64 PNG. Use this to inspect a region found by contour_detect.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withParams(map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Contour index in the ranked list returned by contour_detect",
					},
					"margin": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels added around the bounding box. Default 10",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
				}),
				"required": []string{"path", "index"},
			},
		},
		{
			Name:        "contour_batch",
			Description: "Process every image in a directory whose extension matches (default .jpg and .jpeg) and return a per-image report. A failing image does not stop the run.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withParams(map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the directory to scan",
					},
					"extensions": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "File extensions to include, compared case-insensitively",
					},
					"dry_run": map[string]interface{}{
						"type":        "boolean",
						"description": "Process without writing outputs. Default false",
					},
					"top_k": map[string]interface{}{
						"type":        "integer",
						"description": "Summarize only the K largest drawn contours per image",
					},
				}),
				"required": []string{"dir"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
