package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func numberProp(description string, min, max, def float64) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
		"minimum":     min,
		"maximum":     max,
		"default":     def,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image state
		{
			Name:        "enhance_load",
			Description: "Load an image file (PNG, JPEG, BMP, TIFF or WebP) as the image to enhance. Replaces any previously loaded image. Images above 50 megapixels are rejected.",
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
			Name:        "enhance_info",
			Description: "Get the dimensions and pixel count of the current working image.",
			InputSchema: noArgs(),
		},
		{
			Name:        "enhance_reset",
			Description: "Discard all changes and restore the image as it was loaded.",
			InputSchema: noArgs(),
		},
		{
			Name:        "enhance_save",
			Description: "Save the working image. The format follows the extension: .png, .jpg/.jpeg (quality 95), .bmp, .tif/.tiff. Missing parent directories are created.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute destination path",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "enhance_compare",
			Description: "Compare the working image with the original: share of changed pixels, mean colour difference and PSNR. After an upscale the original is resized to match first.",
			InputSchema: noArgs(),
		},

		// Processing
		{
			Name:        "enhance_apply",
			Description: "Apply enhancements in order: sharpen, denoise, contrast/brightness/saturation, detail enhancement. Omitted controls are left at their no-op value. Set reset to start from the original so repeated calls do not compound.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sharpen":    numberProp("Sharpen strength (0 = off, 2 = aggressive)", 0, 2, 0),
					"denoise":    numberProp("Edge-preserving denoise strength (0 = off)", 0, 1, 0),
					"contrast":   numberProp("Contrast multiplier (1 = unchanged)", 0.5, 2, 1),
					"brightness": numberProp("Brightness multiplier (1 = unchanged)", 0.5, 2, 1),
					"saturation": numberProp("Saturation multiplier (0 = greyscale, 1 = unchanged)", 0, 2, 1),
					"details":    numberProp("Detail enhancement strength (0 = off)", 0, 1, 0),
					"reset": map[string]interface{}{
						"type":        "boolean",
						"description": "Restore the original image before applying",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "enhance_upscale",
			Description: "Enlarge the working image with Lanczos resampling. Fast and deterministic.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Scale factor",
						"enum":        []int{2, 4},
						"default":     2,
					},
				},
			},
		},
		{
			Name:        "enhance_super_resolution",
			Description: "Enlarge the working image with Real-ESRGAN when realesrgan-ncnn-vulkan is installed, otherwise with a filter-based upscale. A failure of the installed tool is reported, not replaced by the fallback.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Scale factor. 3 requires Real-ESRGAN.",
						"enum":        []int{2, 3, 4},
						"default":     2,
					},
					"strength": numberProp("Sharpening strength of the filter-based fallback", 0, 1, 1),
				},
			},
		},

		// Tooling
		{
			Name:        "enhance_tool_status",
			Description: "Report whether the Real-ESRGAN executable is available and which super-resolution method will be used.",
			InputSchema: noArgs(),
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
