package teams

import (
	"errors"
	"time"
)

// Team groups users for tool access and project assignments.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Membership places a user in a team. ReportsToMemberID links the
// membership to its manager's membership, forming the reporting chain a
// Team Lead's reports are resolved from.
type Membership struct {
	ID                string    `json:"id"`
	TeamID            string    `json:"teamId"`
	UserID            string    `json:"userId"`
	TeamRole          string    `json:"teamRole"`
	ReportsToMemberID *string   `json:"reportsToMemberId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ToolAccess grants a team the use of an internal tool.
type ToolAccess struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	ToolID    string    `json:"toolId"`
	GrantedAt time.Time `json:"grantedAt"`
}

var (
	// ErrAccessExists indicates the (team, tool) pair is already granted.
	ErrAccessExists = errors.New("teams: tool access already granted")
	// ErrAccessNotFound indicates no access record for the pair.
	ErrAccessNotFound = errors.New("teams: tool access record not found")
	// ErrMembershipCycle indicates a membership that is its own
	// transitive manager. This is a configuration error, never resolved
	// silently.
	ErrMembershipCycle = errors.New("teams: membership reporting chain contains a cycle")
)
