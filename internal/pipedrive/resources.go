package pipedrive

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/golovatskygroup/pipedrive-lens/internal/paginate"
)

// Deal status filters accepted by the upstream list endpoint.
var DealStatuses = []string{"open", "won", "lost", "deleted", "all_not_deleted"}

// Item types the search endpoint can be restricted to.
var SearchItemTypes = []string{"deal", "person", "organization", "lead", "product", "file"}

// ListDeals fetches one page of deals. An empty status means the upstream
// default filter.
func (c *Client) ListDeals(ctx context.Context, offset, limit int, status string) (*paginate.Page, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	return c.listPage(ctx, "/deals", offset, limit, q)
}

// ListPersons fetches one page of person records.
func (c *Client) ListPersons(ctx context.Context, offset, limit int) (*paginate.Page, error) {
	return c.listPage(ctx, "/persons", offset, limit, nil)
}

// ListOrganizations fetches one page of organization records.
func (c *Client) ListOrganizations(ctx context.Context, offset, limit int) (*paginate.Page, error) {
	return c.listPage(ctx, "/organizations", offset, limit, nil)
}

// ListLeads fetches one page of lead records.
func (c *Client) ListLeads(ctx context.Context, offset, limit int) (*paginate.Page, error) {
	return c.listPage(ctx, "/leads", offset, limit, nil)
}

// ListPipelines returns every pipeline; the endpoint is not paginated.
func (c *Client) ListPipelines(ctx context.Context) ([]json.RawMessage, error) {
	return c.dataArray(ctx, "/pipelines", nil)
}

// ListStages returns the stages of one pipeline in display order.
func (c *Client) ListStages(ctx context.Context, pipelineID int) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("pipeline_id", strconv.Itoa(pipelineID))
	return c.dataArray(ctx, "/stages", q)
}

// GetDeal returns a single deal record.
func (c *Client) GetDeal(ctx context.Context, id int) (json.RawMessage, error) {
	return c.dataObject(ctx, "/deals/"+strconv.Itoa(id), nil)
}

// GetPerson returns a single person record.
func (c *Client) GetPerson(ctx context.Context, id int) (json.RawMessage, error) {
	return c.dataObject(ctx, "/persons/"+strconv.Itoa(id), nil)
}

// GetOrganization returns a single organization record.
func (c *Client) GetOrganization(ctx context.Context, id int) (json.RawMessage, error) {
	return c.dataObject(ctx, "/organizations/"+strconv.Itoa(id), nil)
}

// GetPipeline returns a single pipeline record.
func (c *Client) GetPipeline(ctx context.Context, id int) (json.RawMessage, error) {
	return c.dataObject(ctx, "/pipelines/"+strconv.Itoa(id), nil)
}

// GetLead returns a single lead record. Lead IDs are UUID strings, unlike
// the integer IDs of the other resources.
func (c *Client) GetLead(ctx context.Context, id string) (json.RawMessage, error) {
	return c.dataObject(ctx, "/leads/"+url.PathEscape(id), nil)
}

// SearchItems runs one cross-entity search call. With no item types the
// upstream searches all supported types. The result is the upstream's
// items wrapper, passed through unmodified.
func (c *Client) SearchItems(ctx context.Context, term string, itemTypes ...string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("term", term)
	if len(itemTypes) > 0 {
		q.Set("item_types", strings.Join(itemTypes, ","))
	}

	env, err := c.getEnvelope(ctx, "/itemSearch", q)
	if err != nil {
		return nil, err
	}
	if isEmptyData(env.Data) {
		return json.RawMessage(`{"items":[]}`), nil
	}
	return env.Data, nil
}
