package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/golovatskygroup/pipedrive-lens/internal/paginate"
)

type getLeadsInput struct {
	CountOnly bool `json:"count_only"`
}

type getLeadInput struct {
	ID string `json:"id"`
}

func (h *Handler) getLeads(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getLeadsInput
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return errorResult("invalid arguments: %v", err), nil
		}
	}

	res, err := h.collect(ctx, in.CountOnly, func(ctx context.Context, offset int) (*paginate.Page, error) {
		return h.client.ListLeads(ctx, offset, h.opts.PageSize)
	})
	if err != nil {
		return upstreamErrorResult("listing leads", err), nil
	}
	return jsonResult(listPayload(res, in.CountOnly, nil)), nil
}

func (h *Handler) getLead(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getLeadInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("invalid arguments: %v", err), nil
	}
	// Leads are addressed by UUID, not by the numeric IDs the other
	// resources use. Reject early so a pasted deal ID gets a clear answer.
	if _, err := uuid.Parse(in.ID); err != nil {
		return errorResult("id must be a lead UUID, got %q", in.ID), nil
	}

	lead, err := h.client.GetLead(ctx, in.ID)
	if err != nil {
		return upstreamErrorResult(fmt.Sprintf("fetching lead %s", in.ID), err), nil
	}
	return rawResult(lead), nil
}

func (h *Handler) searchLeads(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	return h.searchEntity(ctx, args, "lead")
}
