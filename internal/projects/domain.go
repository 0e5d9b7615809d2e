package projects

import (
	"errors"
	"time"
)

// Assignment links a team to a project. A (project, team) pair exists
// at most once.
type Assignment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	TeamID    string    `json:"teamId"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	// ErrAssignmentExists indicates the pair is already assigned.
	ErrAssignmentExists = errors.New("team is already assigned to this project")
	// ErrAssignmentNotFound indicates no matching assignment rows.
	ErrAssignmentNotFound = errors.New("assignment not found")
)
