package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// stageFetchConcurrency bounds the per-pipeline stage fan-out so a workspace
// with many pipelines does not burst the upstream rate limit.
const stageFetchConcurrency = 4

type getPipelineInput struct {
	ID int `json:"id"`
}

type getStagesInput struct {
	PipelineID int `json:"pipeline_id"`
}

// pipelineRef is the slice of a pipeline record the stage lookup needs.
type pipelineRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) getPipelines(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	pipelines, err := h.client.ListPipelines(ctx)
	if err != nil {
		return upstreamErrorResult("listing pipelines", err), nil
	}
	if pipelines == nil {
		pipelines = []json.RawMessage{}
	}
	return jsonResult(map[string]any{
		"total_count": len(pipelines),
		"items":       pipelines,
	}), nil
}

func (h *Handler) getPipeline(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getPipelineInput
	if err := json.Unmarshal(args, &in); err != nil {
		return errorResult("invalid arguments: %v", err), nil
	}
	if in.ID <= 0 {
		return errorResult("id must be a positive integer"), nil
	}

	pipeline, err := h.client.GetPipeline(ctx, in.ID)
	if err != nil {
		return upstreamErrorResult(fmt.Sprintf("fetching pipeline %d", in.ID), err), nil
	}
	return rawResult(pipeline), nil
}

func (h *Handler) getStages(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error) {
	var in getStagesInput
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return errorResult("invalid arguments: %v", err), nil
		}
	}
	if in.PipelineID < 0 {
		return errorResult("pipeline_id must be a positive integer"), nil
	}
	if in.PipelineID > 0 {
		return h.stagesForPipeline(ctx, in.PipelineID)
	}
	return h.stagesAcrossPipelines(ctx)
}

func (h *Handler) stagesForPipeline(ctx context.Context, id int) (*mcp.CallToolResult, error) {
	pipeline, err := h.client.GetPipeline(ctx, id)
	if err != nil {
		return upstreamErrorResult(fmt.Sprintf("fetching pipeline %d", id), err), nil
	}
	var ref pipelineRef
	if err := json.Unmarshal(pipeline, &ref); err != nil {
		ref = pipelineRef{ID: id}
	}

	stages, err := h.client.ListStages(ctx, id)
	if err != nil {
		return upstreamErrorResult(fmt.Sprintf("listing stages of pipeline %d", id), err), nil
	}
	return jsonResult(map[string]any{
		"pipelines_total": 1,
		"pipeline_id":     id,
		"pipeline_name":   ref.Name,
		"stages":          tagStages(stages, ref.Name),
	}), nil
}

// stagesAcrossPipelines fans out one stage fetch per pipeline. A failed
// fetch is recorded and skipped; only context cancellation aborts the whole
// lookup. Stage order follows pipeline order, not fetch completion order.
func (h *Handler) stagesAcrossPipelines(ctx context.Context) (*mcp.CallToolResult, error) {
	pipelines, err := h.client.ListPipelines(ctx)
	if err != nil {
		return upstreamErrorResult("listing pipelines", err), nil
	}

	refs := make([]pipelineRef, 0, len(pipelines))
	for _, raw := range pipelines {
		var ref pipelineRef
		if err := json.Unmarshal(raw, &ref); err != nil {
			h.logger.Warn("skipping undecodable pipeline record", zap.Error(err))
			continue
		}
		refs = append(refs, ref)
	}

	stagesByPipeline := make([][]json.RawMessage, len(refs))
	failures := make([]string, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(stageFetchConcurrency)
	for i, ref := range refs {
		g.Go(func() error {
			stages, err := h.client.ListStages(gctx, ref.ID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				h.logger.Warn("stage fetch failed",
					zap.Int("pipeline_id", ref.ID),
					zap.String("pipeline", ref.Name),
					zap.Error(err))
				failures[i] = fmt.Sprintf("pipeline %q (id %d): %v", ref.Name, ref.ID, err)
				return nil
			}
			stagesByPipeline[i] = tagStages(stages, ref.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errorResult("listing stages aborted: %v", err), nil
	}

	all := make([]json.RawMessage, 0)
	var failed []string
	for i := range refs {
		all = append(all, stagesByPipeline[i]...)
		if failures[i] != "" {
			failed = append(failed, failures[i])
		}
	}

	payload := map[string]any{
		"pipelines_total": len(refs),
		"stages":          all,
	}
	if len(failed) > 0 {
		payload["failures"] = failed
	}
	return jsonResult(payload), nil
}

// tagStages copies each stage record with its parent pipeline's display name
// under pipeline_name. Records that do not decode as objects pass through
// untouched.
func tagStages(stages []json.RawMessage, pipelineName string) []json.RawMessage {
	tagged := make([]json.RawMessage, 0, len(stages))
	for _, raw := range stages {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			tagged = append(tagged, raw)
			continue
		}
		obj["pipeline_name"] = pipelineName
		b, err := json.Marshal(obj)
		if err != nil {
			tagged = append(tagged, raw)
			continue
		}
		tagged = append(tagged, b)
	}
	return tagged
}
