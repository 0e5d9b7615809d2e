package timesheets

import "time"

// Entry is one timesheet line owned by a user.
type Entry struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	UserName string    `json:"user"`
	Date     time.Time `json:"date"`
	Task     string    `json:"task"`
	Hours    float64   `json:"hours"`
	Status   string    `json:"status"`
}
