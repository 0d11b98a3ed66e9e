// Package mcp exposes the operation catalogue as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/internal/logging"
	"github.com/aretw0/cadbridge/pkg/registry"
	"github.com/aretw0/cadbridge/pkg/script"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// OperationsURI is the resource listing every operation and its parameters.
const OperationsURI = "cadbridge://operations"

// Server wraps an Automation and exposes it as an MCP Server.
type Server struct {
	cad       *cadbridge.Automation
	ops       *registry.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(cad *cadbridge.Automation, opts ...Option) *Server {
	s := &Server{
		cad:    cad,
		ops:    script.Operations(cad),
		logger: logging.NewNop(),
	}
	s.mcpServer = server.NewMCPServer(
		"cadbridge-mcp",
		strings.TrimSpace(cadbridge.Version),
		server.WithRecovery(),
	)
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ToolName maps an operation name to a tool name ("sketch.circle" ->
// "sketch_circle"); some clients reject dots.
func ToolName(op string) string {
	return strings.ReplaceAll(op, ".", "_")
}

func (s *Server) registerTools() {
	for _, e := range s.ops.Entries() {
		s.mcpServer.AddTool(toolFor(e), s.handleOperation(e.Name))
	}

	s.mcpServer.AddTool(mcp.NewTool("run_script",
		mcp.WithDescription("Run a YAML or JSON modelling script. Steps use the operation names listed in "+OperationsURI+"."),
		mcp.WithString("script", mcp.Required(), mcp.Description("Script source")),
	), s.handleRunScript)

	s.mcpServer.AddTool(mcp.NewTool("status",
		mcp.WithDescription("Report the connected host and active document."),
		mcp.WithOutputSchema[cadbridge.Status](),
	), mcp.NewStructuredToolHandler(s.handleStatus))
}

func toolFor(e registry.Entry) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(e.Description)}
	for _, p := range e.Params {
		popts := []mcp.PropertyOption{}
		if p.Description != "" {
			popts = append(popts, mcp.Description(p.Description))
		}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case "number", "integer":
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(p.Name, popts...))
		case "array":
			popts = append(popts, mcp.Items(map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "number"},
			}))
			opts = append(opts, mcp.WithArray(p.Name, popts...))
		case "direction":
			popts = append(popts, mcp.Enum("forward", "reverse", "both"))
			opts = append(opts, mcp.WithString(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(ToolName(e.Name), opts...)
}

func (s *Server) handleOperation(op string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v, err := s.ops.Execute(ctx, op, request.GetArguments())
		if err != nil {
			s.logger.Warn("MCP tool failed", "op", op, "err", err)
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op, err)), nil
		}
		if v == nil {
			return mcp.NewToolResultText("ok"), nil
		}
		return jsonResult(v)
	}
}

func (s *Server) handleRunScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := request.RequireString("script")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := script.Parse([]byte(src))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid script: %v", err)), nil
	}
	runner := &script.Runner{Registry: s.ops, Session: s.cad.Session(), Logger: s.logger}
	res, err := runner.Run(ctx, doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("script failed after %d operation(s): %v", res.Operations, err)), nil
	}
	return jsonResult(res)
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (cadbridge.Status, error) {
	return s.cad.Status(ctx), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(OperationsURI, "Operation catalogue",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.ops.Entries())
		if err != nil {
			return nil, fmt.Errorf("failed to encode operations: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      OperationsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
