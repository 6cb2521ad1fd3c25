package domain

import "time"

// Profile is a candidate co-founder profile as the discovery engine sees it.
// Optional attributes are pointers; a nil value means the user never set it.
type Profile struct {
	ID                int        `json:"id" db:"id"`
	UserID            int        `json:"user_id" db:"user_id"`
	DisplayName       string     `json:"display_name" db:"display_name"`
	Bio               *string    `json:"bio" db:"bio"`
	City              *string    `json:"city" db:"city"`
	Gender            *string    `json:"gender" db:"gender"`
	Age               *int       `json:"age" db:"age"`
	HeightInches      *int       `json:"height_inches" db:"height_inches"`
	YearsExperience   *int       `json:"years_experience" db:"years_experience"`
	EducationLevel    *string    `json:"education_level" db:"education_level"`
	Industries        []string   `json:"industries" db:"industries"`
	SkillsOffered     []string   `json:"skills_offered" db:"skills_offered"`
	SkillsSought      []string   `json:"skills_sought" db:"skills_sought"`
	RoleTypes         []string   `json:"role_types" db:"role_types"`
	StartupStage      *string    `json:"startup_stage" db:"startup_stage"`
	CommitmentLevel   *string    `json:"commitment_level" db:"commitment_level"`
	EquityExpectation *string    `json:"equity_expectation" db:"equity_expectation"`
	FundingExperience *string    `json:"funding_experience" db:"funding_experience"`
	LocationPrefs     []string   `json:"location_prefs" db:"location_prefs"`
	IsVerified        bool       `json:"is_verified" db:"is_verified"`
	IsFunded          bool       `json:"is_funded" db:"is_funded"`
	HasPhotos         bool       `json:"has_photos" db:"has_photos"`
	LocationLat       *float64   `json:"location_lat" db:"location_lat"`
	LocationLon       *float64   `json:"location_lon" db:"location_lon"`
	LastActiveAt      *time.Time `json:"last_active_at" db:"last_active_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// HasCoordinates reports whether the profile has both a latitude and a
// longitude set.
func (p *Profile) HasCoordinates() bool {
	return p.LocationLat != nil && p.LocationLon != nil
}
