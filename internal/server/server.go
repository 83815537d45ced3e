// Package server exposes the tool and prompt catalogs as an MCP server.
// Transport and protocol bookkeeping belong to the official SDK; this
// package only wires catalogs in and wraps each call with logging and the
// invocation audit.
package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/golovatskygroup/pipedrive-lens/internal/audit"
	"github.com/golovatskygroup/pipedrive-lens/internal/prompts"
	"github.com/golovatskygroup/pipedrive-lens/internal/registry"
)

// Version is stamped into the MCP handshake.
const Version = "0.2.0"

type Server struct {
	mcp         *mcp.Server
	registry    *registry.Registry
	auditLog    *audit.Log
	logger      *zap.Logger
	promptCount int
}

type Options struct {
	Registry *registry.Registry
	Prompts  []prompts.Descriptor
	Audit    *audit.Log // nil disables auditing
	Logger   *zap.Logger
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		registry:    opts.Registry,
		auditLog:    opts.Audit,
		logger:      logger.Named("server"),
		promptCount: len(opts.Prompts),
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "pipedrive-lens",
		Version: Version,
	}, &mcp.ServerOptions{
		HasTools:   true,
		HasPrompts: true,
	})

	for _, d := range opts.Registry.List() {
		s.addTool(d)
	}
	for _, p := range opts.Prompts {
		prompt := p.Prompt
		s.mcp.AddPrompt(&prompt, p.Handler)
	}
	return s
}

func (s *Server) addTool(d registry.Descriptor) {
	tool := d.Tool
	handler := d.Handler
	s.mcp.AddTool(&tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := handler(ctx, json.RawMessage(req.Params.Arguments))
		s.record(tool.Name, res, err, time.Since(start))
		return res, err
	})
}

// record logs one finished call and appends it to the audit trail. Audit
// failures are logged and swallowed; they never affect the call result.
func (s *Server) record(tool string, res *mcp.CallToolResult, err error, elapsed time.Duration) {
	status := audit.StatusOK
	summary := ""
	switch {
	case err != nil:
		status = audit.StatusError
		summary = err.Error()
	case res != nil && res.IsError:
		status = audit.StatusError
		summary = firstText(res)
	}

	if status == audit.StatusError {
		s.logger.Warn("tool call failed",
			zap.String("tool", tool),
			zap.String("cause", summary),
			zap.Duration("elapsed", elapsed))
	} else {
		s.logger.Debug("tool call",
			zap.String("tool", tool),
			zap.Duration("elapsed", elapsed))
	}

	// Background context so a cancelled call still leaves a trail.
	if auditErr := s.auditLog.Record(context.Background(), tool, status, summary, elapsed); auditErr != nil {
		s.logger.Warn("audit record failed", zap.String("tool", tool), zap.Error(auditErr))
	}
}

func firstText(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// Run serves stdio until ctx ends or the host disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving on stdio",
		zap.Int("tools", s.registry.Count()),
		zap.Strings("categories", s.registry.Categories()),
		zap.Int("prompts", s.promptCount))
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches the server to one transport and returns the session.
// Run is the normal entrypoint; Connect exists for in-process hosts.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcp.Connect(ctx, t, nil)
}
