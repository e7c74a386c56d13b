package cmd

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taskscout/taskscout/internal/breakdown"
	"github.com/taskscout/taskscout/internal/recommend"
	"github.com/taskscout/taskscout/internal/tracker"
	"github.com/taskscout/taskscout/internal/workload"
	"github.com/taskscout/taskscout/models"
	"github.com/taskscout/taskscout/types"
)

// recommendTasksHandler ranks the snapshot and returns the top candidates.
func recommendTasksHandler(trk tracker.Tracker) mcp.ToolHandlerFor[types.RecommendTasksParams, types.RecommendTasksResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.RecommendTasksParams]) (*mcp.CallToolResultFor[types.RecommendTasksResponse], error) {
		args := params.Arguments
		mcpLog("recommend-tasks called with %+v", args)

		cfg := GetConfig()
		opts := recommend.Options{
			Assignee:       args.Assignee,
			MinPriority:    args.MinPriority,
			IncludeBlocked: args.IncludeBlocked,
			ContextPenalty: cfg.Engine.ContextPenalty,
			MaxResults:     cfg.Engine.MaxRecommendations,
			MaxCapacity:    cfg.Engine.MaxCapacity,
			Weights:        cfg.Engine.Weights,
			Roster:         args.Roster,
		}
		if args.MaxResults > 0 {
			opts.MaxResults = args.MaxResults
		}
		if args.ContextPenalty > 0 {
			opts.ContextPenalty = args.ContextPenalty
		}

		items, err := trk.FetchItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch work items: %w", err)
		}
		if len(opts.Roster) == 0 {
			roster, err := trk.FetchRoster(ctx)
			if err != nil {
				return nil, fmt.Errorf("fetch roster: %w", err)
			}
			opts.Roster = roster
		}

		result, err := recommend.Rank(items, opts)
		if err != nil {
			return nil, err
		}

		response := types.RecommendTasksResponse{
			Recommendations: make([]types.RecommendationEntry, len(result.Recommendations)),
			Count:           len(result.Recommendations),
			Message:         result.Message,
		}
		for i, rec := range result.Recommendations {
			response.Recommendations[i] = recommendationToEntry(rec)
		}

		text := result.Message
		if text == "" {
			top := result.Recommendations[0]
			text = fmt.Sprintf("%d recommendation(s). Top pick: #%d %s (score %.2f)",
				response.Count, top.Item.ID, top.Item.Title, top.Score.Total)
		}

		mcpLog("recommend-tasks returned %d item(s)", response.Count)

		return &mcp.CallToolResultFor[types.RecommendTasksResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: text},
			},
			StructuredContent: response,
		}, nil
	}
}

// breakdownTaskHandler decomposes one work item, optionally applying the
// result to the tracker behind the policy gate.
func breakdownTaskHandler(trk tracker.Tracker) mcp.ToolHandlerFor[types.BreakdownTaskParams, types.BreakdownTaskResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.BreakdownTaskParams]) (*mcp.CallToolResultFor[types.BreakdownTaskResponse], error) {
		args := params.Arguments
		mcpLog("breakdown-task called with %+v", args)

		if args.ID <= 0 {
			return nil, types.NewInvalidArgument("id must be a positive work item identifier")
		}

		cfg := GetConfig()
		items, err := trk.FetchItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch work items: %w", err)
		}
		item, err := tracker.FindItem(items, args.ID)
		if err != nil {
			return nil, err
		}

		bd, err := breakdown.Generate(item, breakdown.Options{
			Force:         args.Force,
			MaxSubtasks:   cfg.Engine.MaxSubtasks,
			MinComplexity: cfg.Engine.MinComplexity,
		})
		if err != nil {
			return nil, err
		}

		response := breakdownToResponse(bd)

		if args.Apply && len(bd.Subtasks) > 0 {
			roster, err := trk.FetchRoster(ctx)
			if err != nil {
				return nil, fmt.Errorf("fetch roster: %w", err)
			}
			engine, err := newPolicyEngine(cfg)
			if err != nil {
				return nil, fmt.Errorf("create policy engine: %w", err)
			}
			decision, err := engine.EvaluateApply(ctx, item, &bd, roster)
			if err != nil {
				return nil, fmt.Errorf("evaluate policies: %w", err)
			}
			recordPolicyDecision(ctx, trk, decision)
			if decision.IsDenied() {
				return nil, types.NewPolicyDenied(decision.Violations)
			}

			refs := make([]tracker.ItemRef, 0, len(bd.Subtasks))
			for _, st := range bd.Subtasks {
				ref, err := trk.CreateItem(ctx, tracker.NewItem{
					Title:    st.Title,
					Body:     subtaskBody(item, st),
					Labels:   st.Labels,
					Assignee: st.Assignee,
				})
				if err != nil {
					return nil, fmt.Errorf("create subtask item: %w", err)
				}
				refs = append(refs, ref)
			}
			if err := trk.AddChecklist(ctx, item.ID, refs); err != nil {
				// The subtasks exist; a missing checklist is not worth failing over.
				mcpLog("append checklist to #%d: %v", item.ID, err)
			}
			for _, ref := range refs {
				response.CreatedItemIDs = append(response.CreatedItemIDs, ref.ID)
			}
			mcpLog("breakdown-task created %d item(s) under #%d", len(refs), item.ID)
		}

		text := bd.Advisory
		if len(bd.Subtasks) > 0 {
			text = fmt.Sprintf("Decomposed #%d into %d subtask(s); complexity %d original, %d total; timeline %s",
				bd.ItemID, len(bd.Subtasks), bd.OriginalComplexity, bd.TotalComplexity, bd.Timeline)
			if n := len(response.CreatedItemIDs); n > 0 {
				text += fmt.Sprintf("; created %d tracker item(s)", n)
			}
		}

		return &mcp.CallToolResultFor[types.BreakdownTaskResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: text},
			},
			StructuredContent: response,
		}, nil
	}
}

// teamWorkloadHandler reports the workload model the ranking uses.
func teamWorkloadHandler(trk tracker.Tracker) mcp.ToolHandlerFor[types.TeamWorkloadParams, types.TeamWorkloadResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.TeamWorkloadParams]) (*mcp.CallToolResultFor[types.TeamWorkloadResponse], error) {
		args := params.Arguments
		mcpLog("team-workload called with %+v", args)

		cfg := GetConfig()
		items, err := trk.FetchItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch work items: %w", err)
		}

		roster := args.Roster
		if len(roster) == 0 {
			roster, err = trk.FetchRoster(ctx)
			if err != nil {
				return nil, fmt.Errorf("fetch roster: %w", err)
			}
		}

		workloads := workload.Build(items, roster, cfg.Engine.MaxCapacity)

		response := types.TeamWorkloadResponse{
			Members: make([]types.MemberWorkloadEntry, len(workloads)),
			Count:   len(workloads),
		}
		overloaded := 0
		for i, w := range workloads {
			response.Members[i] = types.MemberWorkloadEntry{
				Username:          w.Username,
				CurrentWorkload:   w.CurrentWorkload,
				MaxCapacity:       w.MaxCapacity,
				AvailabilityScore: w.AvailabilityScore,
				SkillAreas:        w.SkillAreas,
				RecentVelocity:    w.RecentVelocity,
			}
			if w.CurrentWorkload >= w.MaxCapacity {
				overloaded++
			}
		}

		text := fmt.Sprintf("%d team member(s) tracked", response.Count)
		if overloaded > 0 {
			text += fmt.Sprintf(", %d at or over capacity", overloaded)
		}
		if response.Count == 0 {
			text = "No team members found. Provide a roster or assign items."
		}

		return &mcp.CallToolResultFor[types.TeamWorkloadResponse]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: text},
			},
			StructuredContent: response,
		}, nil
	}
}

func recommendationToEntry(rec recommend.Recommendation) types.RecommendationEntry {
	return types.RecommendationEntry{
		ItemID:    rec.Item.ID,
		Title:     rec.Item.Title,
		Assignees: rec.Item.Assignees,
		Labels:    rec.Item.Labels,
		Score: types.ScoreBreakdown{
			Priority:     rec.Score.Priority,
			Urgency:      rec.Score.Urgency,
			Availability: rec.Score.Availability,
			SkillMatch:   rec.Score.SkillMatch,
			Readiness:    rec.Score.Readiness,
			Total:        rec.Score.Total,
		},
		Blockers:  rec.Score.Blockers,
		Reasoning: rec.Reasoning,
	}
}

func breakdownToResponse(bd models.TaskBreakdown) types.BreakdownTaskResponse {
	subtasks := make([]types.SubtaskPayload, len(bd.Subtasks))
	for i, st := range bd.Subtasks {
		subtasks[i] = types.SubtaskPayload{
			Title:              st.Title,
			Description:        st.Description,
			Complexity:         st.Complexity,
			Priority:           string(st.Priority),
			Category:           string(st.Category),
			Dependencies:       st.Dependencies,
			Labels:             st.Labels,
			EstimatedHours:     st.EstimatedHours,
			AcceptanceCriteria: st.AcceptanceCriteria,
		}
	}

	return types.BreakdownTaskResponse{
		ItemID:              bd.ItemID,
		ItemTitle:           bd.ItemTitle,
		OriginalComplexity:  bd.OriginalComplexity,
		TotalComplexity:     bd.TotalComplexity,
		Subtasks:            subtasks,
		Dependencies:        bd.Dependencies,
		Phases:              bd.Phases,
		CriticalPathDepth:   bd.CriticalPathDepth,
		Timeline:            bd.Timeline,
		RecommendedApproach: bd.RecommendedApproach,
		RiskAssessment:      bd.RiskAssessment,
		Advisory:            bd.Advisory,
	}
}
