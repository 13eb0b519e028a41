package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-enhance-mcp/internal/engine"
)

// Server handles MCP protocol communication for one enhancement engine.
type Server struct {
	engine  *engine.Engine
	version string

	// out serialises writes; notifications can be emitted while a request runs.
	outMu sync.Mutex
	out   *json.Encoder

	// inFlight is the request currently executing, for notifications/cancelled.
	inFlightMu sync.Mutex
	inFlight   *inFlightCall
}

type inFlightCall struct {
	id     interface{}
	cancel context.CancelFunc
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a server around eng.
func New(eng *engine.Engine, version string) *Server {
	return &Server{
		engine:  eng,
		version: version,
		out:     json.NewEncoder(io.Discard),
	}
}

// Run serves MCP over stdin and stdout until stdin closes or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC message per line from in and writes responses to out.
//
// Requests execute one at a time in arrival order. Reading continues while a
// request runs so that a notifications/cancelled for it can be honoured between
// processing stages.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.outMu.Lock()
	s.out = json.NewEncoder(out)
	s.outMu.Unlock()

	requests := make(chan *MCPRequest, 64)
	readErr := make(chan error, 1)

	go func() {
		defer close(requests)

		scanner := bufio.NewScanner(in)
		// Increase buffer size for large requests
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var req MCPRequest
			if err := json.Unmarshal(line, &req); err != nil {
				log.Warn().Err(err).Msg("Failed to parse request")
				continue
			}
			if req.Method == "notifications/cancelled" {
				s.cancelRequest(req.Params)
				continue
			}

			select {
			case requests <- &req:
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-requests:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("scanner error: %w", err)
				}
				return nil
			}
			if resp := s.handleRequest(ctx, req); resp != nil {
				s.write(resp)
			}
		}
	}
}

func (s *Server) write(v interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if err := s.out.Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// notify sends a JSON-RPC notification.
func (s *Server) notify(method string, params interface{}) {
	s.write(MCPNotification{JSONRPC: "2.0", Method: method, Params: params})
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "image-enhance-mcp",
				"version": s.version,
			},
		},
	}
}

// beginCall registers the running request and returns its context.
func (s *Server) beginCall(ctx context.Context, id interface{}) (context.Context, func()) {
	callCtx, cancel := context.WithCancel(ctx)
	s.inFlightMu.Lock()
	s.inFlight = &inFlightCall{id: id, cancel: cancel}
	s.inFlightMu.Unlock()

	return callCtx, func() {
		s.inFlightMu.Lock()
		s.inFlight = nil
		s.inFlightMu.Unlock()
		cancel()
	}
}

// cancelRequest handles notifications/cancelled. Only the running request can be
// cancelled; anything else is ignored.
func (s *Server) cancelRequest(params json.RawMessage) {
	var p struct {
		RequestID interface{} `json:"requestId"`
		Reason    string      `json:"reason"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		log.Warn().Err(err).Msg("Malformed cancellation")
		return
	}

	s.inFlightMu.Lock()
	defer s.inFlightMu.Unlock()
	if s.inFlight == nil || fmt.Sprint(s.inFlight.id) != fmt.Sprint(p.RequestID) {
		log.Debug().Interface("requestId", p.RequestID).Msg("Cancellation for request not running")
		return
	}
	log.Info().
		Interface("requestId", p.RequestID).
		Str("reason", p.Reason).
		Msg("Cancelling request")
	s.inFlight.cancel()
}
