package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/golovatskygroup/pipedrive-lens/internal/pipedrive"
)

func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to serialize result: %v", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}
}

func rawResult(raw json.RawMessage) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// upstreamErrorResult converts an adapter failure into an error-flagged
// result, attaching a remediation hint for the common statuses.
func upstreamErrorResult(op string, err error) *mcp.CallToolResult {
	var apiErr *pipedrive.APIError
	if errors.As(err, &apiErr) {
		if hint := statusHint(apiErr.StatusCode); hint != "" {
			return errorResult("%s failed: %s (%s)", op, apiErr.Message, hint)
		}
		return errorResult("%s failed: %s", op, apiErr.Message)
	}
	return errorResult("%s failed: %v", op, err)
}

func statusHint(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "check PIPEDRIVE_API_TOKEN"
	case http.StatusForbidden:
		return "the token lacks access to this resource"
	case http.StatusNotFound:
		return "no such record"
	case http.StatusTooManyRequests:
		return "upstream rate limit reached"
	}
	return ""
}
