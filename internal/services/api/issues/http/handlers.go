// Package http provides http transport for issues
package http

import (
	"context"
	stdhttp "net/http"
	"strings"

	"feedbackhub/internal/modkit/httpkit"
	perr "feedbackhub/internal/platform/errors"
	projhttp "feedbackhub/internal/services/api/projects/http"
	projsvc "feedbackhub/internal/services/projects/service"
	statsdom "feedbackhub/internal/services/statistics/domain"
)

// StatsQuerier is the slice of the statistics engine this transport needs
type StatsQuerier interface {
	QueryIssueStats(ctx context.Context, in statsdom.GroupedQueryInput) (statsdom.GroupedStatsResult, error)
}

// Register mounts issue endpoints on the given router
func Register(r httpkit.Router, projects *projsvc.Service, stats StatsQuerier) {
	h := &handlers{projects: projects, stats: stats}

	httpkit.Get(r, "/statistics", h.statistics)
	httpkit.Post(r, "/{issueID}/feedbacks", h.createFeedback)
}

type handlers struct {
	projects *projsvc.Service
	stats    StatsQuerier
}

func (h *handlers) statistics(r *stdhttp.Request) (any, error) {
	start, end, g, err := projhttp.ParseStatsQuery(r)
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(r.URL.Query().Get("issueIds"))
	if raw == "" {
		return nil, perr.InvalidArgf("issueIds is required")
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	return h.stats.QueryIssueStats(r.Context(), statsdom.GroupedQueryInput{
		IssueIDs:  ids,
		StartDate: start,
		EndDate:   end,
		Interval:  g,
	})
}

func (h *handlers) createFeedback(r *stdhttp.Request) (any, error) {
	return h.projects.CreateFeedback(r.Context(), projsvc.CreateFeedbackInput{
		IssueID: httpkit.Param(r, "issueID"),
	})
}
