package tickets

import (
	"errors"
	"time"
)

// Ticket statuses.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

// Ticket is a support request raised by a client or an employee.
// LinkedTaskID is set exactly once, by conversion.
type Ticket struct {
	ID           string    `json:"id"`
	Subject      string    `json:"subject"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	RequesterID  *string   `json:"requesterId,omitempty"`
	AssigneeID   *string   `json:"assignee,omitempty"`
	LinkedTaskID *string   `json:"linkedTaskId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Reply is a threaded message on a ticket. Internal notes are visible
// to staff only; the conversion workflow always writes its reply as an
// internal note.
type Reply struct {
	ID             string    `json:"id"`
	TicketID       string    `json:"ticketId"`
	AuthorID       string    `json:"authorId"`
	AuthorName     string    `json:"authorName"`
	Message        string    `json:"message"`
	IsInternalNote bool      `json:"isInternalNote"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ListFilter narrows ticket listings. Zero values match everything.
type ListFilter struct {
	Status     string
	Priority   string
	AssigneeID string
}

var (
	// ErrTicketNotFound indicates the ticket id does not exist.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrAlreadyConverted indicates the ticket already has a linked task.
	ErrAlreadyConverted = errors.New("ticket already converted to a task")
)
