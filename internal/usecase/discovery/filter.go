// Package discovery implements the search filter predicate engine: a pure
// rule evaluator that decides whether a candidate profile is admitted by a
// filter specification, plus the paged search built on top of it.
package discovery

import (
	"time"

	"github.com/cofoundly/cofoundly-backend/internal/domain"
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// newUserWindowDays bounds the "new users only" flag: a profile created
// within this many days counts as new.
const newUserWindowDays = 30

// Admits evaluates candidate against filter and reports whether it passes
// every active constraint. Stateless and deterministic; now anchors the
// recency checks so the result is reproducible. Cheap boolean gates run
// first and the evaluation short-circuits on the first failing dimension.
// Every dimension checked here must be counted by ActiveFilterCount.
func Admits(filter *domain.SearchFilter, candidate *domain.Profile, requesterLoc *Coordinates, now time.Time) bool {
	// Boolean flags
	if filter.VerifiedOnly && !candidate.IsVerified {
		return false
	}
	if filter.FundedOnly && !candidate.IsFunded {
		return false
	}
	if filter.PhotosOnly && !candidate.HasPhotos {
		return false
	}
	if filter.NewUsersOnly {
		if now.Sub(candidate.CreatedAt) > newUserWindowDays*24*time.Hour {
			return false
		}
	}

	// Distance, only when the filter is actively local with a radius.
	if filter.WantsLocal() && filter.DistanceMiles != nil {
		if requesterLoc == nil || !candidate.HasCoordinates() {
			return false
		}
		distance := DistanceMiles(requesterLoc.Lat, requesterLoc.Lon,
			*candidate.LocationLat, *candidate.LocationLon)
		if distance > *filter.DistanceMiles {
			return false
		}
	}

	// Set dimensions: empty filter set means "don't care"; otherwise the
	// candidate needs a non-empty intersection (or membership, for
	// single-valued attributes).
	if !memberOf(filter.Genders, candidate.Gender) {
		return false
	}
	if !memberOf(filter.EducationLevels, candidate.EducationLevel) {
		return false
	}
	if !memberOf(filter.StartupStages, candidate.StartupStage) {
		return false
	}
	if !memberOf(filter.CommitmentLevels, candidate.CommitmentLevel) {
		return false
	}
	if !memberOf(filter.EquityExpectations, candidate.EquityExpectation) {
		return false
	}
	if !memberOf(filter.FundingExperience, candidate.FundingExperience) {
		return false
	}
	if !intersects(filter.Industries, candidate.Industries) {
		return false
	}
	if !intersects(filter.SkillsOffered, candidate.SkillsOffered) {
		return false
	}
	if !intersects(filter.SkillsSought, candidate.SkillsSought) {
		return false
	}
	if !intersects(filter.RoleTypes, candidate.RoleTypes) {
		return false
	}
	if !intersects(filter.LocationPrefs, candidate.LocationPrefs) {
		return false
	}

	// Scalar ranges: once a range is constrained, an unpopulated candidate
	// value excludes the candidate.
	if !inRange(filter.AgeMin, filter.AgeMax, candidate.Age) {
		return false
	}
	if !inRange(filter.ExperienceMin, filter.ExperienceMax, candidate.YearsExperience) {
		return false
	}
	if !inRange(filter.HeightMin, filter.HeightMax, candidate.HeightInches) {
		return false
	}

	// Activity recency
	if filter.ActiveWithinDays != nil {
		if candidate.LastActiveAt == nil {
			return false
		}
		cutoff := now.Add(-time.Duration(*filter.ActiveWithinDays) * 24 * time.Hour)
		if candidate.LastActiveAt.Before(cutoff) {
			return false
		}
	}

	return true
}

// memberOf reports whether a single-valued candidate attribute satisfies a
// set constraint. An empty set imposes no constraint; a nil attribute fails
// any non-empty set.
func memberOf(set []string, value *string) bool {
	if len(set) == 0 {
		return true
	}
	if value == nil {
		return false
	}
	for _, s := range set {
		if s == *value {
			return true
		}
	}
	return false
}

// intersects reports whether a multi-valued candidate attribute shares at
// least one element with a set constraint. An empty set imposes no
// constraint.
func intersects(set, values []string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		for _, v := range values {
			if s == v {
				return true
			}
		}
	}
	return false
}

// inRange checks an inclusive [min, max] scalar constraint. Nil bounds are
// open; with any bound set, a nil candidate value is excluded.
func inRange(min, max, value *int) bool {
	if min == nil && max == nil {
		return true
	}
	if value == nil {
		return false
	}
	if min != nil && *value < *min {
		return false
	}
	if max != nil && *value > *max {
		return false
	}
	return true
}

// ActiveFilterCount returns how many independently togglable dimensions of
// the filter deviate from their "don't care" default. It must stay in
// lockstep with the dimensions Admits evaluates; the figure backs the
// "N active filters" UI summary.
func ActiveFilterCount(filter *domain.SearchFilter) int {
	count := 0
	for _, active := range []bool{
		filter.VerifiedOnly,
		filter.FundedOnly,
		filter.PhotosOnly,
		filter.NewUsersOnly,
		filter.DistanceMiles != nil,
		filter.AgeMin != nil || filter.AgeMax != nil,
		filter.ExperienceMin != nil || filter.ExperienceMax != nil,
		filter.HeightMin != nil || filter.HeightMax != nil,
		len(filter.Genders) > 0,
		len(filter.EducationLevels) > 0,
		len(filter.Industries) > 0,
		len(filter.SkillsOffered) > 0,
		len(filter.SkillsSought) > 0,
		len(filter.RoleTypes) > 0,
		len(filter.StartupStages) > 0,
		len(filter.CommitmentLevels) > 0,
		len(filter.EquityExpectations) > 0,
		len(filter.FundingExperience) > 0,
		len(filter.LocationPrefs) > 0,
		filter.ActiveWithinDays != nil,
	} {
		if active {
			count++
		}
	}
	return count
}
