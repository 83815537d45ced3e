// Package tools implements the CRM tool handlers behind the MCP catalog.
// Each handler shapes caller arguments into upstream calls, directly or
// through the pagination aggregator, and serializes the outcome into the
// protocol result envelope. Failures never escape a handler as faults.
package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/golovatskygroup/pipedrive-lens/internal/paginate"
	"github.com/golovatskygroup/pipedrive-lens/internal/pipedrive"
	"github.com/golovatskygroup/pipedrive-lens/internal/registry"
)

// Handler carries the upstream client and the aggregation limits shared by
// every tool. It is safe for concurrent invocations; all per-call state
// lives on the stack.
type Handler struct {
	client *pipedrive.Client
	opts   Options
	logger *zap.Logger
}

// Options bound every aggregation this handler runs.
type Options struct {
	// PageSize is the per-request record limit sent upstream.
	PageSize int
	// MaxRecords caps how many records one invocation may scan before the
	// result is returned truncated with a terminated_early marker.
	MaxRecords int
}

func NewHandler(client *pipedrive.Client, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{client: client, opts: opts, logger: logger.Named("tools")}
}

// entry pairs a tool definition with its handler, wrapping the handler so
// arguments are validated against the declared schema before it runs.
func (h *Handler) entry(tool mcp.Tool, category string, fn registry.HandlerFunc) registry.Descriptor {
	schema, _ := tool.InputSchema.(json.RawMessage)
	wrapped := func(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
		if err := ValidateArgs(tool.Name, schema, args); err != nil {
			return errorResult("%v", err), nil
		}
		return fn(ctx, args)
	}
	return registry.Descriptor{Tool: tool, Category: category, Handler: wrapped}
}

// collect runs the shared pagination loop for one list tool.
func (h *Handler) collect(ctx context.Context, countOnly bool, fetch paginate.FetchFunc) (*paginate.Result, error) {
	return paginate.Collect(ctx, fetch, paginate.Options{
		PageSize:   h.opts.PageSize,
		MaxRecords: h.opts.MaxRecords,
		CountOnly:  countOnly,
	})
}

// listPayload is the uniform response shape of the list tools: the running
// totals, any echoed filters, and the records unless the caller asked for a
// count only.
func listPayload(res *paginate.Result, countOnly bool, filters map[string]any) map[string]any {
	out := map[string]any{
		"total_count":      res.Count,
		"pages_fetched":    res.PagesFetched,
		"terminated_early": res.TerminatedEarly,
	}
	for k, v := range filters {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	if !countOnly {
		items := res.Items
		if items == nil {
			items = []json.RawMessage{}
		}
		out["items"] = items
	}
	return out
}
