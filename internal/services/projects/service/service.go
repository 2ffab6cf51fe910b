// Package service provides the projects service implementation
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"feedbackhub/internal/core/tzoffset"
	"feedbackhub/internal/modkit/repokit"
	perr "feedbackhub/internal/platform/errors"
	"feedbackhub/internal/platform/logger"
	"feedbackhub/internal/services/projects/domain"
	"feedbackhub/internal/services/projects/repo"
)

// CreateProjectInput carries the fields needed to open a new project
type CreateProjectInput struct {
	Name           string
	TimezoneOffset string
}

// CreateIssueInput carries the fields needed to open a new issue
type CreateIssueInput struct {
	ProjectID string
	Name      string
}

// CreateFeedbackInput attaches one feedback event to an issue
type CreateFeedbackInput struct {
	IssueID string
}

// Service implements project and issue lifecycle on top of the pg repo.
// Recorder and Registrar are optional; when nil the corresponding side
// effects are skipped
type Service struct {
	DB        repokit.TxRunner
	Binder    repokit.Binder[repo.Storage]
	Recorder  domain.Recorder
	Registrar domain.Registrar
}

// New constructs the projects service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage]) *Service {
	if db == nil {
		panic("projects.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("projects.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder}
}

// WithRecorder wires the live statistics recorder
func (s *Service) WithRecorder(r domain.Recorder) *Service {
	s.Recorder = r
	return s
}

// WithRegistrar wires the scheduler registrar
func (s *Service) WithRegistrar(r domain.Registrar) *Service {
	s.Registrar = r
	return s
}

// CreateProject validates the timezone offset, persists the project, and
// registers its daily statistics jobs
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (domain.Project, error) {
	if in.Name == "" {
		return domain.Project{}, perr.InvalidArgf("project name is required")
	}
	off, err := tzoffset.Parse(in.TimezoneOffset)
	if err != nil {
		return domain.Project{}, err
	}

	p := domain.Project{
		ID:             uuid.NewString(),
		Name:           in.Name,
		TimezoneOffset: off.String(),
		CreatedAt:      time.Now().UTC(),
	}

	err = s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).CreateProject(ctx, p)
	})
	if err != nil {
		return domain.Project{}, err
	}

	if s.Registrar != nil {
		if err := s.Registrar.RegisterDailyJobs(ctx, p.ID); err != nil {
			return domain.Project{}, err
		}
	}
	return p, nil
}

// GetProject returns a project by id
func (s *Service) GetProject(ctx context.Context, id string) (domain.Project, error) {
	return s.Binder.Bind(s.DB).GetProject(ctx, id)
}

// ListProjectIDs returns every project id, oldest first
func (s *Service) ListProjectIDs(ctx context.Context) ([]string, error) {
	return s.Binder.Bind(s.DB).ListProjectIDs(ctx)
}

// CreateIssue persists an issue and nudges the live issue counter.
// A recorder failure does not roll back the create
func (s *Service) CreateIssue(ctx context.Context, in CreateIssueInput) (domain.Issue, error) {
	if in.Name == "" {
		return domain.Issue{}, perr.InvalidArgf("issue name is required")
	}
	if _, err := s.Binder.Bind(s.DB).GetProject(ctx, in.ProjectID); err != nil {
		return domain.Issue{}, err
	}

	is := domain.Issue{
		ID:        uuid.NewString(),
		ProjectID: in.ProjectID,
		Name:      in.Name,
		CreatedAt: time.Now().UTC(),
	}

	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).CreateIssue(ctx, is)
	})
	if err != nil {
		return domain.Issue{}, err
	}

	if s.Recorder != nil {
		if err := s.Recorder.RecordIssueCreated(ctx, is.ProjectID, is.CreatedAt); err != nil {
			logger.C(ctx).Warn().Err(err).
				Str("project_id", is.ProjectID).
				Msg("projects: issue counter update failed")
		}
	}
	return is, nil
}

// CreateFeedback persists a feedback event and nudges the live feedback
// counter. A recorder failure does not roll back the create
func (s *Service) CreateFeedback(ctx context.Context, in CreateFeedbackInput) (domain.Feedback, error) {
	if _, err := s.Binder.Bind(s.DB).ProjectIDByIssue(ctx, in.IssueID); err != nil {
		return domain.Feedback{}, err
	}

	f := domain.Feedback{
		ID:        uuid.NewString(),
		IssueID:   in.IssueID,
		CreatedAt: time.Now().UTC(),
	}

	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).CreateFeedback(ctx, f)
	})
	if err != nil {
		return domain.Feedback{}, err
	}

	if s.Recorder != nil {
		if err := s.Recorder.RecordFeedbackCreated(ctx, f.IssueID, f.CreatedAt); err != nil {
			logger.C(ctx).Warn().Err(err).
				Str("issue_id", f.IssueID).
				Msg("projects: feedback counter update failed")
		}
	}
	return f, nil
}
