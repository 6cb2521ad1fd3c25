package domain

import "time"

// TrustedContact is a person designated to receive safety notifications for
// a user's check-ins. Contacts are referenced by check-ins, never owned.
type TrustedContact struct {
	ID          string    `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Phone       *string   `json:"phone" db:"phone"`
	Email       *string   `json:"email" db:"email"`
	AlertsOptIn bool      `json:"alerts_opt_in" db:"alerts_opt_in"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
