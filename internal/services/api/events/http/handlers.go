// Package http provides http transport for raw statistics events.
// External producers push deltas here when a create or delete happens
// outside the regular API flow
package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"feedbackhub/internal/modkit/httpkit"
	statsdom "feedbackhub/internal/services/statistics/domain"
)

// Recorder is the slice of the statistics engine this transport needs
type Recorder interface {
	RecordEvent(
		ctx context.Context,
		kind statsdom.Kind,
		dimensionID string,
		eventTime time.Time,
		delta int64,
	) error
}

// IssueEventRequest reports issues created or retracted for a project
type IssueEventRequest struct {
	ProjectID  string     `json:"projectId" validate:"required,uuid4"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
	Delta      *int64     `json:"delta,omitempty"`
}

// FeedbackEventRequest reports feedback received or retracted for an issue
type FeedbackEventRequest struct {
	IssueID    string     `json:"issueId" validate:"required,uuid4"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
	Delta      *int64     `json:"delta,omitempty"`
}

// Register mounts event ingestion endpoints on the given router
func Register(r httpkit.Router, rec Recorder) {
	h := &handlers{rec: rec}

	httpkit.PostJSON[IssueEventRequest](r, "/issues", h.issue)
	httpkit.PostJSON[FeedbackEventRequest](r, "/feedbacks", h.feedback)
}

type handlers struct{ rec Recorder }

// AcceptedResponse acknowledges an ingested event
type AcceptedResponse struct {
	Accepted bool `json:"accepted"`
}

func (h *handlers) issue(r *stdhttp.Request, in IssueEventRequest) (any, error) {
	at, delta := eventDefaults(in.OccurredAt, in.Delta)
	if err := h.rec.RecordEvent(r.Context(), statsdom.KindIssue, in.ProjectID, at, delta); err != nil {
		return nil, err
	}
	return AcceptedResponse{Accepted: true}, nil
}

func (h *handlers) feedback(r *stdhttp.Request, in FeedbackEventRequest) (any, error) {
	at, delta := eventDefaults(in.OccurredAt, in.Delta)
	if err := h.rec.RecordEvent(r.Context(), statsdom.KindFeedbackIssue, in.IssueID, at, delta); err != nil {
		return nil, err
	}
	return AcceptedResponse{Accepted: true}, nil
}

// eventDefaults fills an omitted timestamp with now and an omitted delta
// with one. An explicit zero delta stays zero and the engine drops it
func eventDefaults(at *time.Time, delta *int64) (time.Time, int64) {
	t := time.Now().UTC()
	if at != nil {
		t = at.UTC()
	}
	var d int64 = 1
	if delta != nil {
		d = *delta
	}
	return t, d
}
