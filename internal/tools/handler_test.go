package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/golovatskygroup/pipedrive-lens/internal/pipedrive"
	"github.com/golovatskygroup/pipedrive-lens/internal/registry"
)

func newTestHandler(t *testing.T, fn http.HandlerFunc, opts Options) *Handler {
	t.Helper()
	srv := httptest.NewServer(fn)
	t.Cleanup(srv.Close)

	if opts.PageSize == 0 {
		opts.PageSize = 500
	}
	if opts.MaxRecords == 0 {
		opts.MaxRecords = 10000
	}
	client := pipedrive.New(srv.URL, "token123", 5*time.Second, nil)
	return NewHandler(client, opts, nil)
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil {
		t.Fatal("nil result")
	}
	if len(res.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func writeListPage(w http.ResponseWriter, items []string, more bool) {
	fmt.Fprintf(w, `{"success":true,"data":[%s],"additional_data":{"pagination":{"more_items_in_collection":%t}}}`,
		strings.Join(items, ","), more)
}

func TestCatalogIntegrity(t *testing.T) {
	client := pipedrive.New("http://127.0.0.1:1", "token", time.Second, nil)
	h := NewHandler(client, Options{PageSize: 500, MaxRecords: 10000}, nil)

	cat := h.Catalog()
	if len(cat) != 16 {
		t.Fatalf("expected 16 tools, got %d", len(cat))
	}

	seen := map[string]bool{}
	for _, d := range cat {
		if d.Tool.Name == "" {
			t.Fatal("tool with empty name")
		}
		if seen[d.Tool.Name] {
			t.Errorf("duplicate tool name %q", d.Tool.Name)
		}
		seen[d.Tool.Name] = true

		if d.Tool.Description == "" {
			t.Errorf("tool %s has no description", d.Tool.Name)
		}
		if d.Category == "" {
			t.Errorf("tool %s has no category", d.Tool.Name)
		}
		if d.Handler == nil {
			t.Errorf("tool %s has no handler", d.Tool.Name)
		}

		schema, ok := d.Tool.InputSchema.(json.RawMessage)
		if !ok {
			t.Fatalf("tool %s: input schema is %T, want json.RawMessage", d.Tool.Name, d.Tool.InputSchema)
		}
		if _, err := compileSchema(d.Tool.Name, schema); err != nil {
			t.Errorf("tool %s: schema does not compile: %v", d.Tool.Name, err)
		}
	}
}

func TestCatalogRegistersCleanly(t *testing.T) {
	client := pipedrive.New("http://127.0.0.1:1", "token", time.Second, nil)
	h := NewHandler(client, Options{PageSize: 500, MaxRecords: 10000}, nil)

	reg := registry.New()
	for _, d := range h.Catalog() {
		if err := reg.Register(d); err != nil {
			t.Fatalf("register %s: %v", d.Tool.Name, err)
		}
	}
	if reg.Count() != 16 {
		t.Fatalf("expected 16 registered tools, got %d", reg.Count())
	}

	want := []string{"deals", "persons", "organizations", "pipelines", "leads", "search"}
	got := reg.Categories()
	if len(got) != len(want) {
		t.Fatalf("categories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("categories = %v, want %v", got, want)
		}
	}
}

func TestCatalogValidatesArguments(t *testing.T) {
	h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no upstream call expected, got %s", r.URL.Path)
	}, Options{})

	var getDeal registry.Descriptor
	for _, d := range h.Catalog() {
		if d.Tool.Name == "get_deal" {
			getDeal = d
		}
	}
	if getDeal.Handler == nil {
		t.Fatal("get_deal not in catalog")
	}

	res, err := getDeal.Handler(context.Background(), json.RawMessage(`{"id":"seven"}`))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected an error result for a string id")
	}
	if text := resultText(t, res); !strings.Contains(text, "invalid arguments for get_deal") {
		t.Fatalf("unexpected error text: %s", text)
	}
}

func TestCatalogRejectsUnknownProperties(t *testing.T) {
	h := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no upstream call expected, got %s", r.URL.Path)
	}, Options{})

	for _, d := range h.Catalog() {
		if d.Tool.Name != "get_persons" {
			continue
		}
		res, err := d.Handler(context.Background(), json.RawMessage(`{"page":3}`))
		if err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if !res.IsError {
			t.Fatal("expected an error result for an unknown property")
		}
		return
	}
	t.Fatal("get_persons not in catalog")
}
