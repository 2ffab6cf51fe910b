// Package domain holds project and issue types
package domain

import "time"

// Project is a tenant workspace. TimezoneOffset is a fixed UTC offset
// string in strict "+HH:MM" form; projects do not observe DST
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	TimezoneOffset string    `json:"timezoneOffset"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Issue is a feedback topic inside a project
type Issue struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feedback is one raw feedback event attached to an issue
type Feedback struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issueId"`
	CreatedAt time.Time `json:"createdAt"`
}
