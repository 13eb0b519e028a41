package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/image-enhance-mcp/internal/engine"
	"github.com/ironsheep/image-enhance-mcp/internal/imaging"
	"github.com/ironsheep/image-enhance-mcp/internal/progress"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "enhance_load", "enhance_apply").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token.
	Meta *struct {
		ProgressToken interface{} `json:"progressToken"`
	} `json:"_meta,omitempty"`
}

// errInvalidArguments marks caller mistakes reported with code -32602.
var errInvalidArguments = errors.New("invalid arguments")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000 whose
// data is the engine.Outcome describing the failure.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	var report progress.Func
	if params.Meta != nil && params.Meta.ProgressToken != nil {
		token := params.Meta.ProgressToken
		report = func(percent int, message string) {
			s.notify("notifications/progress", map[string]interface{}{
				"progressToken": token,
				"progress":      percent,
				"total":         100,
				"message":       message,
			})
		}
	}

	callCtx, done := s.beginCall(ctx, req.ID)
	defer done()

	result, err := s.executeTool(callCtx, params.Name, params.Arguments, report)
	if err != nil {
		if errors.Is(err, errInvalidArguments) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", engine.OutcomeOf(err))
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

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage, report progress.Func) (interface{}, error) {
	switch name {
	// Image state
	case "enhance_load":
		return s.handleLoad(args)
	case "enhance_info":
		return s.handleInfo()
	case "enhance_reset":
		return s.handleReset()
	case "enhance_save":
		return s.handleSave(args)
	case "enhance_compare":
		return s.engine.Compare()

	// Processing
	case "enhance_apply":
		return s.handleApply(ctx, args, report)
	case "enhance_upscale":
		return s.handleUpscale(args, report)
	case "enhance_super_resolution":
		return s.handleSuperResolution(ctx, args, report)

	// Tooling
	case "enhance_tool_status":
		return s.engine.ToolStatus(), nil

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArguments, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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

// decodeArgs unmarshals args into v. Missing arguments leave v untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

// requireImage fails when nothing is loaded. The engine itself treats that as a
// silent no-op, which is unhelpful to a remote caller.
func (s *Server) requireImage() error {
	if !s.engine.Loaded() {
		return engine.ErrNoImage
	}
	return nil
}

// ImageResult is returned by every tool that changes or inspects the image.
type ImageResult struct {
	Outcome engine.Outcome     `json:"outcome"`
	Image   *imaging.ImageInfo `json:"image,omitempty"`
	Method  engine.Method      `json:"method,omitempty"`
	Skipped []string           `json:"skipped,omitempty"`
	Path    string             `json:"path,omitempty"`
}

func (s *Server) imageResult() (*ImageResult, error) {
	info, err := s.engine.Info()
	if err != nil {
		return nil, err
	}
	return &ImageResult{Outcome: engine.OutcomeOf(nil).WithWarning(info.Warning), Image: info}, nil
}

// === Image State Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (a pathArgs) validate() error {
	if strings.TrimSpace(a.Path) == "" {
		return fmt.Errorf("%w: path is required", errInvalidArguments)
	}
	return nil
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}

	info, err := s.engine.LoadFile(a.Path)
	if err != nil {
		return nil, err
	}
	return &ImageResult{
		Outcome: engine.OutcomeOf(nil).WithWarning(info.Warning),
		Image:   info,
		Path:    a.Path,
	}, nil
}

func (s *Server) handleInfo() (interface{}, error) {
	return s.imageResult()
}

func (s *Server) handleReset() (interface{}, error) {
	if err := s.requireImage(); err != nil {
		return nil, err
	}
	s.engine.Reset()
	return s.imageResult()
}

func (s *Server) handleSave(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	if err := s.engine.Save(a.Path); err != nil {
		return nil, err
	}
	res, err := s.imageResult()
	if err != nil {
		return nil, err
	}
	res.Path = a.Path
	return res, nil
}

// === Processing Handlers ===

func (s *Server) handleApply(ctx context.Context, args json.RawMessage, report progress.Func) (interface{}, error) {
	params := engine.DefaultParams()
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if err := s.requireImage(); err != nil {
		return nil, err
	}

	skipped, err := s.engine.Enhance(ctx, params, report)
	if err != nil {
		return nil, err
	}
	res, err := s.imageResult()
	if err != nil {
		return nil, err
	}
	res.Skipped = skipped
	if len(skipped) > 0 {
		res.Outcome.Warning = "stages failed and were skipped: " + strings.Join(skipped, ", ")
	}
	return res, nil
}

type upscaleArgs struct {
	Scale int `json:"scale"`
}

func (s *Server) handleUpscale(args json.RawMessage, report progress.Func) (interface{}, error) {
	a := upscaleArgs{Scale: 2}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.requireImage(); err != nil {
		return nil, err
	}
	if err := s.engine.BasicUpscale(a.Scale, report); err != nil {
		return nil, err
	}
	return s.imageResult()
}

type superResolutionArgs struct {
	Scale    int     `json:"scale"`
	Strength float64 `json:"strength"`
}

func (s *Server) handleSuperResolution(ctx context.Context, args json.RawMessage, report progress.Func) (interface{}, error) {
	a := superResolutionArgs{Scale: 2, Strength: 1.0}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.requireImage(); err != nil {
		return nil, err
	}

	method, err := s.engine.SuperResolution(ctx, a.Scale, a.Strength, report)
	if err != nil {
		return nil, err
	}
	res, err := s.imageResult()
	if err != nil {
		return nil, err
	}
	res.Method = method
	return res, nil
}
