package tools

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/golovatskygroup/pipedrive-lens/internal/registry"
)

// Catalog returns every tool this server exposes, in presentation order.
// The set is fixed at startup; nothing is discovered or mutated at runtime.
func (h *Handler) Catalog() []registry.Descriptor {
	return []registry.Descriptor{
		h.entry(mcp.Tool{
			Name:        "get_deals",
			Description: "List deals across all pages, optionally filtered by status. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"status": {"type": "string", "enum": ["open", "won", "lost", "deleted", "all_not_deleted"], "description": "Only deals with this status"},
					"count_only": {"type": "boolean", "description": "Return the total count instead of the records"}
				},
				"additionalProperties": false
			}`),
		}, "deals", h.getDeals),
		h.entry(mcp.Tool{
			Name:        "get_deal",
			Description: "Fetch one deal by its numeric ID. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "minimum": 1, "description": "Deal ID"}
				},
				"required": ["id"],
				"additionalProperties": false
			}`),
		}, "deals", h.getDeal),
		h.entry(mcp.Tool{
			Name:        "search_deals",
			Description: "Search deals by term (titles, notes, custom fields). Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"term": {"type": "string", "minLength": 1, "description": "Search term"}
				},
				"required": ["term"],
				"additionalProperties": false
			}`),
		}, "deals", h.searchDeals),
		h.entry(mcp.Tool{
			Name:        "get_persons",
			Description: "List person contacts across all pages. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"count_only": {"type": "boolean", "description": "Return the total count instead of the records"}
				},
				"additionalProperties": false
			}`),
		}, "persons", h.getPersons),
		h.entry(mcp.Tool{
			Name:        "get_person",
			Description: "Fetch one person by their numeric ID. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "minimum": 1, "description": "Person ID"}
				},
				"required": ["id"],
				"additionalProperties": false
			}`),
		}, "persons", h.getPerson),
		h.entry(mcp.Tool{
			Name:        "search_persons",
			Description: "Search person contacts by term (names, emails, phones). Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"term": {"type": "string", "minLength": 1, "description": "Search term"}
				},
				"required": ["term"],
				"additionalProperties": false
			}`),
		}, "persons", h.searchPersons),
		h.entry(mcp.Tool{
			Name:        "get_organizations",
			Description: "List organizations across all pages. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"count_only": {"type": "boolean", "description": "Return the total count instead of the records"}
				},
				"additionalProperties": false
			}`),
		}, "organizations", h.getOrganizations),
		h.entry(mcp.Tool{
			Name:        "get_organization",
			Description: "Fetch one organization by its numeric ID. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "minimum": 1, "description": "Organization ID"}
				},
				"required": ["id"],
				"additionalProperties": false
			}`),
		}, "organizations", h.getOrganization),
		h.entry(mcp.Tool{
			Name:        "search_organizations",
			Description: "Search organizations by term (names, addresses, custom fields). Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"term": {"type": "string", "minLength": 1, "description": "Search term"}
				},
				"required": ["term"],
				"additionalProperties": false
			}`),
		}, "organizations", h.searchOrganizations),
		h.entry(mcp.Tool{
			Name:        "get_pipelines",
			Description: "List every deal pipeline. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {},
				"additionalProperties": false
			}`),
		}, "pipelines", h.getPipelines),
		h.entry(mcp.Tool{
			Name:        "get_pipeline",
			Description: "Fetch one pipeline by its numeric ID. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "minimum": 1, "description": "Pipeline ID"}
				},
				"required": ["id"],
				"additionalProperties": false
			}`),
		}, "pipelines", h.getPipeline),
		h.entry(mcp.Tool{
			Name:        "get_stages",
			Description: "List pipeline stages, each tagged with its pipeline's name. Covers every pipeline unless one is selected. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"pipeline_id": {"type": "integer", "minimum": 1, "description": "Restrict to one pipeline"}
				},
				"additionalProperties": false
			}`),
		}, "pipelines", h.getStages),
		h.entry(mcp.Tool{
			Name:        "get_leads",
			Description: "List leads across all pages. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"count_only": {"type": "boolean", "description": "Return the total count instead of the records"}
				},
				"additionalProperties": false
			}`),
		}, "leads", h.getLeads),
		h.entry(mcp.Tool{
			Name:        "get_lead",
			Description: "Fetch one lead by its UUID. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "string", "description": "Lead UUID"}
				},
				"required": ["id"],
				"additionalProperties": false
			}`),
		}, "leads", h.getLead),
		h.entry(mcp.Tool{
			Name:        "search_leads",
			Description: "Search leads by term (titles, notes, contact details). Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"term": {"type": "string", "minLength": 1, "description": "Search term"}
				},
				"required": ["term"],
				"additionalProperties": false
			}`),
		}, "leads", h.searchLeads),
		h.entry(mcp.Tool{
			Name:        "search_all",
			Description: "Search across deals, persons, organizations, leads, products and files in one call. Read-only via Pipedrive REST API.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"term": {"type": "string", "minLength": 1, "description": "Search term"},
					"item_type": {"type": "string", "description": "Restrict to one item type: deal, person, organization, lead, product or file"}
				},
				"required": ["term"],
				"additionalProperties": false
			}`),
		}, "search", h.searchAll),
	}
}
