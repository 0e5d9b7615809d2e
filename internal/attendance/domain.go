package attendance

import (
	"errors"
	"fmt"
	"time"
)

// ApprovalStatus is the overtime review lifecycle of a record.
type ApprovalStatus string

const (
	ApprovalNone     ApprovalStatus = "None"
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// ReviewDecision is the reviewer's verdict.
type ReviewDecision string

const (
	DecisionApproved ReviewDecision = "Approved"
	DecisionRejected ReviewDecision = "Rejected"
)

// Valid reports whether the decision is one of the two allowed values.
func (d ReviewDecision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Record is one attendance day for a user, carrying the overtime
// approval state machine.
type Record struct {
	ID                     string         `json:"id"`
	UserID                 string         `json:"userId"`
	WorkDate               time.Time      `json:"date"`
	WorkedHours            float64        `json:"workedHours"`
	PotentialOvertimeHours float64        `json:"potentialOvertimeHours"`
	OvertimeApprovalStatus ApprovalStatus `json:"overtimeApprovalStatus"`
	ApprovedOvertimeHours  float64        `json:"approvedOvertimeHours"`
	OvertimeApprovedBy     *string        `json:"overtimeApprovedByUserId,omitempty"`
	OvertimeApprovedAt     *time.Time     `json:"overtimeApprovedAt,omitempty"`
	AdminComment           *string        `json:"adminComment,omitempty"`
}

var (
	// ErrRecordNotFound indicates the target record does not exist.
	ErrRecordNotFound = errors.New("attendance: record not found")
	// ErrInvalidDecision indicates a decision outside Approved/Rejected.
	ErrInvalidDecision = errors.New("attendance: decision must be 'Approved' or 'Rejected'")
	// ErrReviewForbidden indicates the reviewer may not act on the record.
	ErrReviewForbidden = errors.New("attendance: review forbidden")
)

// InvalidStateError reports a review attempt on a record that is not
// Pending, carrying the state the record is actually in.
type InvalidStateError struct {
	Status ApprovalStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("attendance: record is already in %q state and cannot be reviewed", e.Status)
}
