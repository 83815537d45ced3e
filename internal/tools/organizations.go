package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/golovatskygroup/pipedrive-lens/internal/paginate"
)

type getOrganizationsInput struct {
	CountOnly bool `json:"count_only"`
}

type getOrganizationInput struct {
	ID int `json:"id"`
}

func (h *Handler) getOrganizations(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getOrganizationsInput
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return errorResult("invalid arguments: %v", err), nil
		}
	}

	res, err := h.collect(ctx, in.CountOnly, func(ctx context.Context, offset int) (*paginate.Page, error) {
		return h.client.ListOrganizations(ctx, offset, h.opts.PageSize)
	})
	if err != nil {
		return upstreamErrorResult("listing organizations", err), nil
	}
	return jsonResult(listPayload(res, in.CountOnly, nil)), nil
}

func (h *Handler) getOrganization(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getOrganizationInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("invalid arguments: %v", err), nil
	}
	if in.ID <= 0 {
		return errorResult("id must be a positive integer"), nil
	}

	org, err := h.client.GetOrganization(ctx, in.ID)
	if err != nil {
		return upstreamErrorResult(fmt.Sprintf("fetching organization %d", in.ID), err), nil
	}
	return rawResult(org), nil
}

func (h *Handler) searchOrganizations(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	return h.searchEntity(ctx, args, "organization")
}
