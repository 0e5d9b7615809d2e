package tasks

import "time"

// Task statuses and priorities used by the board.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Task is a unit of work, optionally born from a support ticket.
// LinkedTicketID, once set, is never rewritten.
type Task struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	Progress       int       `json:"progress"`
	AssigneeID     *string   `json:"assignee,omitempty"`
	LinkedTicketID *string   `json:"linkedTicketId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
