// Package registry holds the fixed tool catalog: name-to-descriptor lookup,
// grouped listing, and fuzzy search for the CLI. Entries are registered once
// at startup and are immutable for the process lifetime.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandlerFunc executes one tool invocation. Implementations convert every
// failure into an error-flagged result; a non-nil error is reserved for
// faults the protocol layer itself must report.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error)

// Descriptor binds one catalog entry: the wire-visible tool definition, the
// category it is listed under, and the handler behind it.
type Descriptor struct {
	Tool     mcp.Tool
	Category string
	Handler  HandlerFunc
}

// Summary is the compact shape returned by Search.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Registry is the lookup table behind the MCP tool surface.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Descriptor
	order  []string
}

func New() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

// Register adds one descriptor. Names are unique; registration happens only
// during startup, before the server accepts invocations.
func (r *Registry) Register(d Descriptor) error {
	if d.Tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if d.Handler == nil {
		return fmt.Errorf("tool %s has no handler", d.Tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[d.Tool.Name]; exists {
		return fmt.Errorf("tool %s already registered", d.Tool.Name)
	}
	r.byName[d.Tool.Name] = d
	r.order = append(r.order, d.Tool.Name)
	return nil
}

// Get returns the descriptor for name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// List returns all descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Count returns the catalog size.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Categories returns the distinct categories in first-registration order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, name := range r.order {
		cat := r.byName[name].Category
		if cat == "" {
			continue
		}
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	return out
}

// Search ranks catalog entries against query: substring hits in the name
// weigh most, then fuzzy name matches, then description hits. Ties break
// alphabetically so output is stable.
func (r *Registry) Search(query string) []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	type scored struct {
		summary Summary
		score   int
	}
	var matches []scored

	for _, name := range r.order {
		d := r.byName[name]
		nameLower := strings.ToLower(name)
		descLower := strings.ToLower(d.Tool.Description)

		score := 0
		if strings.Contains(nameLower, query) {
			score += 100
		}
		if fuzzy.Match(query, nameLower) {
			score += 50
		}
		if strings.Contains(descLower, query) {
			score += 30
		}
		if strings.EqualFold(d.Category, query) {
			score += 40
		}

		if score > 0 {
			matches = append(matches, scored{
				summary: Summary{
					Name:        name,
					Description: truncateDescription(d.Tool.Description, 100),
					Category:    d.Category,
				},
				score: score,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].summary.Name < matches[j].summary.Name
	})

	out := make([]Summary, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.summary)
	}
	return out
}

func truncateDescription(desc string, maxLen int) string {
	if len(desc) <= maxLen {
		return desc
	}
	return desc[:maxLen-3] + "..."
}
