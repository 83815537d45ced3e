package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golovatskygroup/pipedrive-lens/internal/audit"
	"github.com/golovatskygroup/pipedrive-lens/internal/pipedrive"
	"github.com/golovatskygroup/pipedrive-lens/internal/prompts"
	"github.com/golovatskygroup/pipedrive-lens/internal/registry"
	"github.com/golovatskygroup/pipedrive-lens/internal/tools"
)

func newTestServer(t *testing.T, upstream http.HandlerFunc, auditLog *audit.Log) *Server {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client := pipedrive.New(srv.URL, "token123", 5*time.Second, nil)
	handler := tools.NewHandler(client, tools.Options{PageSize: 500, MaxRecords: 10000}, nil)

	reg := registry.New()
	for _, d := range handler.Catalog() {
		require.NoError(t, reg.Register(d))
	}

	return New(Options{
		Registry: reg,
		Prompts:  prompts.Catalog(),
		Audit:    auditLog,
	})
}

func connectClient(t *testing.T, ctx context.Context, s *Server) *mcp.ClientSession {
	t.Helper()
	ct, st := mcp.NewInMemoryTransports()
	_, err := s.Connect(ctx, st)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func TestServesToolCatalog(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no upstream call expected, got %s", r.URL.Path)
	}, nil)
	session := connectClient(t, ctx, s)

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, res.Tools, 16)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	assert.True(t, names["get_deals"])
	assert.True(t, names["get_stages"])
	assert.True(t, names["search_all"])
}

func TestToolCallRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pipelines", r.URL.Path)
		fmt.Fprint(w, `{"success":true,"data":[{"id":1,"name":"Sales"}]}`)
	}, nil)
	session := connectClient(t, ctx, s)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "get_pipelines"})
	require.NoError(t, err)
	require.False(t, res.IsError)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var payload struct {
		TotalCount int `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	assert.Equal(t, 1, payload.TotalCount)
}

func TestInvalidArgumentsAreResultsNotFaults(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no upstream call expected, got %s", r.URL.Path)
	}, nil)
	session := connectClient(t, ctx, s)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_deal",
		Arguments: map[string]any{"id": "seven"},
	})
	require.NoError(t, err, "invalid arguments must not surface as a protocol fault")
	assert.True(t, res.IsError)
}

func TestUpstreamFailureIsResultNotFault(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"error":"Invalid API token"}`)
	}, nil)
	session := connectClient(t, ctx, s)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_deal",
		Arguments: map[string]any{"id": 7},
	})
	require.NoError(t, err)
	require.True(t, res.IsError)

	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "Invalid API token")
	assert.Contains(t, text, "PIPEDRIVE_API_TOKEN")
}

func TestUnknownToolIsProtocolError(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no upstream call expected, got %s", r.URL.Path)
	}, nil)
	session := connectClient(t, ctx, s)

	_, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "drop_all_deals"})
	assert.Error(t, err)
}

func TestPromptRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("prompts must not call upstream, got %s", r.URL.Path)
	}, nil)
	session := connectClient(t, ctx, s)

	list, err := session.ListPrompts(ctx, &mcp.ListPromptsParams{})
	require.NoError(t, err)
	require.Len(t, list.Prompts, 4)

	res, err := session.GetPrompt(ctx, &mcp.GetPromptParams{Name: "deal_overview"})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.EqualValues(t, "user", res.Messages[0].Role)

	text, ok := res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "get_deals")
}

func TestAuditTrailRecordsCalls(t *testing.T) {
	ctx := context.Background()
	auditLog, err := audit.Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer auditLog.Close()

	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[{"id":1,"name":"Sales"}]}`)
	}, auditLog)
	session := connectClient(t, ctx, s)

	_, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "get_pipelines"})
	require.NoError(t, err)
	_, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_deal",
		Arguments: map[string]any{"id": -1},
	})
	require.NoError(t, err)

	entries, err := auditLog.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	statuses := map[string]string{}
	for _, e := range entries {
		statuses[e.Tool] = e.Status
	}
	assert.Equal(t, audit.StatusOK, statuses["get_pipelines"])
	assert.Equal(t, audit.StatusError, statuses["get_deal"])
}
