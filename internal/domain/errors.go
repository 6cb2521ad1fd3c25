package domain

import "errors"

var (
	// Check-in errors
	ErrInvalidSchedule   = errors.New("invalid schedule: scheduled time must be in the future and deadline must be after it")
	ErrCheckInNotFound   = errors.New("check-in not found in the expected state")
	ErrNoTrustedContacts = errors.New("check-in has no trusted contacts")

	// Contact errors
	ErrContactNotFound = errors.New("trusted contact not found")

	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")

	// Filter preset errors
	ErrPresetNotFound = errors.New("filter preset not found")
)
