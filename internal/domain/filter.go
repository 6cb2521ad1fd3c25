package domain

import "time"

// LocationPrefLocal marks a filter that only admits candidates within the
// configured distance radius of the requester.
const LocationPrefLocal = "local"

// SearchFilter is an immutable-per-search predicate specification over the
// discovery dimensions. Every dimension defaults to "don't care": nil
// pointers, empty slices and false flags impose no constraint.
type SearchFilter struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name,omitempty"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	// Boolean flags
	VerifiedOnly bool `json:"verified_only"`
	FundedOnly   bool `json:"funded_only"`
	PhotosOnly   bool `json:"photos_only"`
	NewUsersOnly bool `json:"new_users_only"`

	// Distance, evaluated only when LocationPrefs contains "local"
	DistanceMiles *float64 `json:"distance_miles,omitempty"`

	// Scalar ranges, inclusive
	AgeMin        *int `json:"age_min,omitempty"`
	AgeMax        *int `json:"age_max,omitempty"`
	ExperienceMin *int `json:"experience_min,omitempty"`
	ExperienceMax *int `json:"experience_max,omitempty"`
	HeightMin     *int `json:"height_min,omitempty"`
	HeightMax     *int `json:"height_max,omitempty"`

	// Set dimensions; empty means unconstrained
	Genders            []string `json:"genders,omitempty"`
	EducationLevels    []string `json:"education_levels,omitempty"`
	Industries         []string `json:"industries,omitempty"`
	SkillsOffered      []string `json:"skills_offered,omitempty"`
	SkillsSought       []string `json:"skills_sought,omitempty"`
	RoleTypes          []string `json:"role_types,omitempty"`
	StartupStages      []string `json:"startup_stages,omitempty"`
	CommitmentLevels   []string `json:"commitment_levels,omitempty"`
	EquityExpectations []string `json:"equity_expectations,omitempty"`
	FundingExperience  []string `json:"funding_experience,omitempty"`
	LocationPrefs      []string `json:"location_prefs,omitempty"`

	// Activity recency: candidate must have been active within this many days
	ActiveWithinDays *int `json:"active_within_days,omitempty"`
}

// WantsLocal reports whether the filter's location preference set includes
// the local-only option.
func (f *SearchFilter) WantsLocal() bool {
	for _, p := range f.LocationPrefs {
		if p == LocationPrefLocal {
			return true
		}
	}
	return false
}
