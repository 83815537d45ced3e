// Package prompts holds the static prompt catalog: canned user messages
// that point the model at the right slice of the tool catalog. None of
// them take arguments and none of them call upstream.
package prompts

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Descriptor pairs a prompt definition with the handler serving it.
type Descriptor struct {
	Prompt  mcp.Prompt
	Handler mcp.PromptHandler
}

// Catalog returns every prompt this server exposes. The set is fixed at
// startup, like the tool catalog.
func Catalog() []Descriptor {
	return []Descriptor{
		static(mcp.Prompt{
			Name:        "deal_overview",
			Description: "Summarize the current deal landscape across all pipelines.",
		}, dealOverviewText),
		static(mcp.Prompt{
			Name:        "lead_follow_up",
			Description: "Pick the leads most worth following up on today.",
		}, leadFollowUpText),
		static(mcp.Prompt{
			Name:        "pipeline_health",
			Description: "Review pipeline stages for bottlenecks and stalled deals.",
		}, pipelineHealthText),
		static(mcp.Prompt{
			Name:        "account_lookup_guide",
			Description: "Gather everything known about one account or contact.",
		}, accountLookupGuideText),
	}
}

func static(p mcp.Prompt, text string) Descriptor {
	return Descriptor{
		Prompt: p,
		Handler: func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			return &mcp.GetPromptResult{
				Description: p.Description,
				Messages: []*mcp.PromptMessage{
					{Role: "user", Content: &mcp.TextContent{Text: text}},
				},
			}, nil
		},
	}
}

const dealOverviewText = `Give me an overview of our deals.

Start with get_deals using count_only for each status (open, won, lost) so the
totals come cheap, then fetch the open deals in full. Group them by pipeline
using get_pipelines, call out the largest deals by value, and flag anything
that looks stale. Finish with a short summary I could paste into a weekly
update.`

const leadFollowUpText = `Help me decide which leads to follow up on today.

Fetch the current leads with get_leads. Rank them by how actionable they look:
a named contact person, an expected value, recent activity. For the top
candidates, pull the linked person or organization with get_person or
get_organization so the follow-up note has context. End with a prioritized
list of at most five leads, each with a one-line reason.`

const pipelineHealthText = `Review the health of our sales pipelines.

Use get_pipelines and get_stages to map every pipeline and its stage order,
then get_deals (status open) to see where deals sit. For each pipeline, point
out stages holding an outsized share of deals and stages that are nearly
empty. Note any pipeline with no open deals at all. Conclude with the two or
three changes most likely to improve flow.`

const accountLookupGuideText = `I need the full picture on one account.

Ask me for the account name if I have not given one. Then run search_all with
that name, and follow up on the hits: get_organization for the company,
get_person for the contacts, get_deal for each related deal, and search_leads
for open leads mentioning it. Lay the findings out as: company profile,
people, open business, history, loose ends.`
