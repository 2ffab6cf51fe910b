// Package http provides http transport for projects
package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"feedbackhub/internal/core/interval"
	"feedbackhub/internal/modkit/httpkit"
	perr "feedbackhub/internal/platform/errors"
	projsvc "feedbackhub/internal/services/projects/service"
	statsdom "feedbackhub/internal/services/statistics/domain"
)

// StatsQuerier is the slice of the statistics engine this transport needs
type StatsQuerier interface {
	QueryProjectStats(ctx context.Context, in statsdom.QueryInput) (statsdom.ProjectStatsResult, error)
}

// CreateProjectRequest is the create-project payload
type CreateProjectRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	TimezoneOffset string `json:"timezoneOffset" validate:"required,len=6"`
}

// CreateIssueRequest is the create-issue payload
type CreateIssueRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// Register mounts project endpoints on the given router
func Register(r httpkit.Router, projects *projsvc.Service, stats StatsQuerier) {
	h := &handlers{projects: projects, stats: stats}

	httpkit.PostJSON[CreateProjectRequest](r, "/", h.create)
	httpkit.Get(r, "/{projectID}", h.get)
	httpkit.PostJSON[CreateIssueRequest](r, "/{projectID}/issues", h.createIssue)
	httpkit.Get(r, "/{projectID}/statistics", h.statistics)
}

type handlers struct {
	projects *projsvc.Service
	stats    StatsQuerier
}

func (h *handlers) create(r *stdhttp.Request, in CreateProjectRequest) (any, error) {
	return h.projects.CreateProject(r.Context(), projsvc.CreateProjectInput{
		Name:           in.Name,
		TimezoneOffset: in.TimezoneOffset,
	})
}

func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.projects.GetProject(r.Context(), httpkit.Param(r, "projectID"))
}

func (h *handlers) createIssue(r *stdhttp.Request, in CreateIssueRequest) (any, error) {
	return h.projects.CreateIssue(r.Context(), projsvc.CreateIssueInput{
		ProjectID: httpkit.Param(r, "projectID"),
		Name:      in.Name,
	})
}

func (h *handlers) statistics(r *stdhttp.Request) (any, error) {
	start, end, g, err := ParseStatsQuery(r)
	if err != nil {
		return nil, err
	}
	return h.stats.QueryProjectStats(r.Context(), statsdom.QueryInput{
		ProjectID: httpkit.Param(r, "projectID"),
		StartDate: start,
		EndDate:   end,
		Interval:  g,
	})
}

// ParseStatsQuery reads the shared startDate/endDate/interval query trio
func ParseStatsQuery(r *stdhttp.Request) (start, end time.Time, g interval.Granularity, err error) {
	q := r.URL.Query()

	start, err = time.Parse(interval.DateFormat, q.Get("startDate"))
	if err != nil {
		return start, end, g, perr.InvalidArgf("startDate must be formatted yyyy-MM-dd")
	}
	end, err = time.Parse(interval.DateFormat, q.Get("endDate"))
	if err != nil {
		return start, end, g, perr.InvalidArgf("endDate must be formatted yyyy-MM-dd")
	}
	g, err = interval.ParseGranularity(q.Get("interval"))
	if err != nil {
		return start, end, g, err
	}
	return start, end, g, nil
}
