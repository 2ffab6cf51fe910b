// Package repo provides the projects repository implementation.
package repo

import (
	"context"
	"time"

	perr "feedbackhub/internal/platform/errors"

	"feedbackhub/internal/modkit/repokit"
	"feedbackhub/internal/services/projects/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the projects repository.
// The lookup and counting methods double as the statistics engine's
// project and raw-event ports
type Storage interface {
	CreateProject(ctx context.Context, p domain.Project) error
	GetProject(ctx context.Context, id string) (domain.Project, error)
	ListProjectIDs(ctx context.Context) ([]string, error)
	TimezoneOffset(ctx context.Context, projectID string) (string, error)

	CreateIssue(ctx context.Context, is domain.Issue) error
	ProjectIDByIssue(ctx context.Context, issueID string) (string, error)
	IssueIDs(ctx context.Context, projectID string) ([]string, error)
	IssueNames(ctx context.Context, issueIDs []string) (map[string]string, error)

	CreateFeedback(ctx context.Context, f domain.Feedback) error

	CountIssuesCreated(ctx context.Context, projectID string, from, to time.Time) (int64, error)
	CountFeedbackCreated(ctx context.Context, issueID string, from, to time.Time) (int64, error)
}

// CreateProject implements Storage
func (s *pg) CreateProject(ctx context.Context, p domain.Project) error {
	const q = `
		INSERT INTO projects (id, name, timezone_offset, created_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := s.q.Exec(ctx, q, p.ID, p.Name, p.TimezoneOffset, p.CreatedAt); err != nil {
		return perr.AttachFieldFromPg(perr.FromPostgres(err, "create project"))
	}
	return nil
}

// GetProject implements Storage
func (s *pg) GetProject(ctx context.Context, id string) (domain.Project, error) {
	const q = `
		SELECT id::text, name, timezone_offset, created_at
		FROM projects WHERE id = $1`
	var p domain.Project
	err := s.q.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.TimezoneOffset, &p.CreatedAt)
	if perr.IsNoRows(err) {
		return domain.Project{}, perr.NotFoundf("project %s not found", id)
	}
	if err != nil {
		return domain.Project{}, perr.FromPostgres(err, "get project")
	}
	return p, nil
}

// ListProjectIDs implements Storage
func (s *pg) ListProjectIDs(ctx context.Context) ([]string, error) {
	rows, err := s.q.Query(ctx, `SELECT id::text FROM projects ORDER BY created_at ASC`)
	if err != nil {
		return nil, perr.FromPostgres(err, "list projects")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, perr.FromPostgres(err, "scan project id")
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// TimezoneOffset implements Storage
func (s *pg) TimezoneOffset(ctx context.Context, projectID string) (string, error) {
	var off string
	err := s.q.QueryRow(ctx,
		`SELECT timezone_offset FROM projects WHERE id = $1`, projectID,
	).Scan(&off)
	if perr.IsNoRows(err) {
		return "", perr.NotFoundf("project %s not found", projectID)
	}
	if err != nil {
		return "", perr.FromPostgres(err, "read project timezone")
	}
	return off, nil
}

// CreateIssue implements Storage
func (s *pg) CreateIssue(ctx context.Context, is domain.Issue) error {
	const q = `
		INSERT INTO issues (id, project_id, name, created_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := s.q.Exec(ctx, q, is.ID, is.ProjectID, is.Name, is.CreatedAt); err != nil {
		return perr.AttachFieldFromPg(perr.FromPostgres(err, "create issue"))
	}
	return nil
}

// ProjectIDByIssue implements Storage
func (s *pg) ProjectIDByIssue(ctx context.Context, issueID string) (string, error) {
	var id string
	err := s.q.QueryRow(ctx,
		`SELECT project_id::text FROM issues WHERE id = $1`, issueID,
	).Scan(&id)
	if perr.IsNoRows(err) {
		return "", perr.NotFoundf("issue %s not found", issueID)
	}
	if err != nil {
		return "", perr.FromPostgres(err, "resolve issue project")
	}
	return id, nil
}

// IssueIDs implements Storage
func (s *pg) IssueIDs(ctx context.Context, projectID string) ([]string, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id::text FROM issues WHERE project_id = $1 ORDER BY created_at ASC`, projectID)
	if err != nil {
		return nil, perr.FromPostgres(err, "list issues")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, perr.FromPostgres(err, "scan issue id")
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// IssueNames implements Storage
func (s *pg) IssueNames(ctx context.Context, issueIDs []string) (map[string]string, error) {
	if len(issueIDs) == 0 {
		return map[string]string{}, nil
	}
	rows, err := s.q.Query(ctx,
		`SELECT id::text, name FROM issues WHERE id = ANY($1)`, issueIDs)
	if err != nil {
		return nil, perr.FromPostgres(err, "read issue names")
	}
	defer rows.Close()

	out := make(map[string]string, len(issueIDs))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, perr.FromPostgres(err, "scan issue name")
		}
		out[id] = name
	}
	return out, rows.Err()
}

// CreateFeedback implements Storage
func (s *pg) CreateFeedback(ctx context.Context, f domain.Feedback) error {
	const q = `
		INSERT INTO feedbacks (id, issue_id, created_at)
		VALUES ($1, $2, $3)`
	if _, err := s.q.Exec(ctx, q, f.ID, f.IssueID, f.CreatedAt); err != nil {
		return perr.AttachFieldFromPg(perr.FromPostgres(err, "create feedback"))
	}
	return nil
}

// CountIssuesCreated implements Storage
func (s *pg) CountIssuesCreated(ctx context.Context, projectID string, from, to time.Time) (int64, error) {
	const q = `
		SELECT COUNT(*) FROM issues
		WHERE project_id = $1 AND created_at >= $2 AND created_at < $3`
	var n int64
	if err := s.q.QueryRow(ctx, q, projectID, from, to).Scan(&n); err != nil {
		return 0, perr.FromPostgres(err, "count issues")
	}
	return n, nil
}

// CountFeedbackCreated implements Storage
func (s *pg) CountFeedbackCreated(ctx context.Context, issueID string, from, to time.Time) (int64, error) {
	const q = `
		SELECT COUNT(*) FROM feedbacks
		WHERE issue_id = $1 AND created_at >= $2 AND created_at < $3`
	var n int64
	if err := s.q.QueryRow(ctx, q, issueID, from, to).Scan(&n); err != nil {
		return 0, perr.FromPostgres(err, "count feedback")
	}
	return n, nil
}
