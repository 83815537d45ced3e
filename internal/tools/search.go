package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/golovatskygroup/pipedrive-lens/internal/pipedrive"
)

type searchInput struct {
	Term     string `json:"term"`
	ItemType string `json:"item_type"`
}

// searchEntity runs the cross-entity search endpoint restricted to one item
// type. The entity-specific search tools all route through here.
func (h *Handler) searchEntity(ctx context.Context, args json.RawMessage, itemType string) (*mcp.CallToolResult, error) {
	var in searchInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("invalid arguments: %v", err), nil
	}
	term := strings.TrimSpace(in.Term)
	if term == "" {
		return errorResult("term must not be empty"), nil
	}

	results, err := h.client.SearchItems(ctx, term, itemType)
	if err != nil {
		return upstreamErrorResult(fmt.Sprintf("searching %ss", itemType), err), nil
	}
	return jsonResult(map[string]any{
		"term":      term,
		"item_type": itemType,
		"results":   results,
	}), nil
}

func (h *Handler) searchAll(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in searchInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("invalid arguments: %v", err), nil
	}
	term := strings.TrimSpace(in.Term)
	if term == "" {
		return errorResult("term must not be empty"), nil
	}

	var types []string
	if in.ItemType != "" {
		if !slices.Contains(pipedrive.SearchItemTypes, in.ItemType) {
			if hint := closestItemType(in.ItemType); hint != "" {
				return errorResult("unknown item_type %q (did you mean %q?)", in.ItemType, hint), nil
			}
			return errorResult("unknown item_type %q; expected one of: %s",
				in.ItemType, strings.Join(pipedrive.SearchItemTypes, ", ")), nil
		}
		types = []string{in.ItemType}
	}

	results, err := h.client.SearchItems(ctx, term, types...)
	if err != nil {
		return upstreamErrorResult("searching", err), nil
	}

	payload := map[string]any{
		"term":    term,
		"results": results,
	}
	if in.ItemType != "" {
		payload["item_type"] = in.ItemType
	}
	return jsonResult(payload), nil
}

// closestItemType suggests the nearest valid item type for a typo. Anything
// further than a few edits away yields no suggestion.
func closestItemType(input string) string {
	best := ""
	bestDist := -1
	for _, t := range pipedrive.SearchItemTypes {
		d := fuzzy.LevenshteinDistance(strings.ToLower(input), t)
		if bestDist == -1 || d < bestDist {
			best, bestDist = t, d
		}
	}
	if bestDist > 3 {
		return ""
	}
	return best
}
