// Package server implements the MCP (Model Context Protocol) server for image
// enhancement.
//
// The server wraps a single engine.Engine and exposes it as JSON-RPC 2.0 tools so
// an MCP client can load an image, enhance or upscale it, and save the result.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC messages on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//   - notifications/cancelled: Cancel the running tool call
//
// # Available Tools
//
// Image state:
//   - enhance_load: Load an image file as the working image
//   - enhance_info: Describe the working image
//   - enhance_reset: Restore the original image
//   - enhance_save: Write the working image to disk
//   - enhance_compare: Measure the working image against the original
//
// Processing:
//   - enhance_apply: Sharpen, denoise, colour adjustments and detail enhancement
//   - enhance_upscale: Lanczos enlargement by 2 or 4
//   - enhance_super_resolution: Real-ESRGAN, or the filter-chain fallback
//
// Tooling:
//   - enhance_tool_status: Real-ESRGAN availability
//
// # Ordering and Cancellation
//
// Tool calls run one at a time in arrival order, so the engine never sees two
// operations at once. A notifications/cancelled naming the running request
// cancels it at the next stage boundary; a Real-ESRGAN pass already started runs
// to completion or timeout.
//
// # Progress
//
// When a tools/call carries _meta.progressToken, long operations emit
// notifications/progress with progress in 0..100 (total 100) and a message.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (invalid arguments) or
//     standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: for -32000, the engine.Outcome with the failure kind and reason
//
// # Usage
//
//	eng := engine.NewFromConfig(cfg)
//	srv := server.New(eng, version)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal().Err(err).Msg("Server error")
//	}
package server
