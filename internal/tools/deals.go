package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/golovatskygroup/pipedrive-lens/internal/paginate"
)

type getDealsInput struct {
	Status    string `json:"status"`
	CountOnly bool   `json:"count_only"`
}

type getDealInput struct {
	ID int `json:"id"`
}

func (h *Handler) getDeals(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getDealsInput
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return errorResult("invalid arguments: %v", err), nil
		}
	}

	res, err := h.collect(ctx, in.CountOnly, func(ctx context.Context, offset int) (*paginate.Page, error) {
		return h.client.ListDeals(ctx, offset, h.opts.PageSize, in.Status)
	})
	if err != nil {
		return upstreamErrorResult("listing deals", err), nil
	}
	return jsonResult(listPayload(res, in.CountOnly, map[string]any{"status": in.Status})), nil
}

func (h *Handler) getDeal(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getDealInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("invalid arguments: %v", err), nil
	}
	if in.ID <= 0 {
		return errorResult("id must be a positive integer"), nil
	}

	deal, err := h.client.GetDeal(ctx, in.ID)
	if err != nil {
		return upstreamErrorResult(fmt.Sprintf("fetching deal %d", in.ID), err), nil
	}
	return rawResult(deal), nil
}

func (h *Handler) searchDeals(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	return h.searchEntity(ctx, args, "deal")
}
