package domain

import "time"

// CheckInStatus is the lifecycle state of a safety check-in.
type CheckInStatus string

const (
	CheckInStatusScheduled CheckInStatus = "scheduled"
	CheckInStatusActive    CheckInStatus = "active"
	CheckInStatusCompleted CheckInStatus = "completed"
	CheckInStatusCancelled CheckInStatus = "cancelled"
	CheckInStatusEmergency CheckInStatus = "emergency"
)

// IsTerminal reports whether the status admits no further transitions.
func (s CheckInStatus) IsTerminal() bool {
	switch s {
	case CheckInStatusCompleted, CheckInStatusCancelled, CheckInStatusEmergency:
		return true
	}
	return false
}

// CheckIn is one scheduled/active/terminal safety check-in for an in-person
// meeting. Status, ActivatedAt and CompletedAt are mutated only by the
// check-in monitor; repositories own durable serialization only.
type CheckIn struct {
	ID              string        `json:"id" db:"id"`
	UserID          int           `json:"user_id" db:"user_id"`
	CounterpartName string        `json:"counterpart_name" db:"counterpart_name"`
	Location        string        `json:"location" db:"location"`
	ScheduledAt     time.Time     `json:"scheduled_at" db:"scheduled_at"`
	DeadlineAt      time.Time     `json:"deadline_at" db:"deadline_at"`
	ContactIDs      []string      `json:"contact_ids" db:"contact_ids"`
	Status          CheckInStatus `json:"status" db:"status"`
	ActivatedAt     *time.Time    `json:"activated_at,omitempty" db:"activated_at"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// Overdue reports whether now has passed the check-in deadline.
func (c *CheckIn) Overdue(now time.Time) bool {
	return now.After(c.DeadlineAt)
}

// PastGrace reports whether now is strictly beyond the deadline plus grace.
// At exactly deadline+grace the check-in is still only overdue; escalation
// happens on the first tick after that instant.
func (c *CheckIn) PastGrace(now time.Time, grace time.Duration) bool {
	return now.After(c.DeadlineAt.Add(grace))
}
