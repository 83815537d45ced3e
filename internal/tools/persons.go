package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/golovatskygroup/pipedrive-lens/internal/paginate"
)

type getPersonsInput struct {
	CountOnly bool `json:"count_only"`
}

type getPersonInput struct {
	ID int `json:"id"`
}

func (h *Handler) getPersons(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getPersonsInput
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return errorResult("invalid arguments: %v", err), nil
		}
	}

	res, err := h.collect(ctx, in.CountOnly, func(ctx context.Context, offset int) (*paginate.Page, error) {
		return h.client.ListPersons(ctx, offset, h.opts.PageSize)
	})
	if err != nil {
		return upstreamErrorResult("listing persons", err), nil
	}
	return jsonResult(listPayload(res, in.CountOnly, nil)), nil
}

func (h *Handler) getPerson(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getPersonInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("invalid arguments: %v", err), nil
	}
	if in.ID <= 0 {
		return errorResult("id must be a positive integer"), nil
	}

	person, err := h.client.GetPerson(ctx, in.ID)
	if err != nil {
		return upstreamErrorResult(fmt.Sprintf("fetching person %d", in.ID), err), nil
	}
	return rawResult(person), nil
}

func (h *Handler) searchPersons(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	return h.searchEntity(ctx, args, "person")
}
