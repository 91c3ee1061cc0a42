package rider

import (
	"strings"
	"time"
)

// SearchSort defines a supported ordering.
type SearchSort string

const (
	SortByViews   SearchSort = "views"
	SortByCreated SearchSort = "created"
	SortByAge     SearchSort = "age"

	SortDesc = "desc"
	SortAsc  = "asc"

	defaultSearchLimit = 20
	maxSearchLimit     = 100

	// HoursPerYear matches the calendar-agnostic age formula: age in years
	// is elapsed time divided by 365.25 days.
	HoursPerYear = 365.25 * 24
)

// AgeRange bounds the derived age field, inclusive on both ends. A zero bound
// is treated as unset.
type AgeRange struct {
	Min float64
	Max float64
}

// SearchFilters is the ephemeral query object for rider search. All provided
// dimensions are combined with logical AND; search always restricts to active
// accounts regardless of filters.
type SearchFilters struct {
	Sports         []string
	Country        string
	Gender         Gender
	Age            AgeRange
	Languages      []string
	SocialNetworks []string
	Availability   *bool
	ContractType   ContractType
	Query          string
	Sort           SearchSort
	Direction      string
	Page           int
	Limit          int
}

// Normalized returns a sanitized copy: tokens lowercased and deduplicated,
// limit capped at 100, default sort views descending.
func (f SearchFilters) Normalized() SearchFilters {
	normalized := f
	normalized.Sports = normalizeTokens(normalized.Sports)
	normalized.Languages = normalizeTokens(normalized.Languages)
	normalized.SocialNetworks = normalizeTokens(normalized.SocialNetworks)
	normalized.Country = strings.TrimSpace(strings.ToLower(normalized.Country))
	normalized.Query = strings.TrimSpace(normalized.Query)
	if normalized.Age.Min < 0 {
		normalized.Age.Min = 0
	}
	if normalized.Age.Max > 0 && normalized.Age.Max < normalized.Age.Min {
		normalized.Age.Max = 0
	}
	if normalized.Page < 1 {
		normalized.Page = 1
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	switch normalized.Sort {
	case SortByViews, SortByCreated, SortByAge:
	default:
		normalized.Sort = SortByViews
	}
	switch strings.ToLower(strings.TrimSpace(normalized.Direction)) {
	case SortAsc:
		normalized.Direction = SortAsc
	case SortDesc:
		normalized.Direction = SortDesc
	default:
		if normalized.Sort == SortByViews {
			normalized.Direction = SortDesc
		} else {
			normalized.Direction = SortAsc
		}
	}
	return normalized
}

// Offset converts page/limit into a skip value.
func (f SearchFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// AgeYears derives the age in years at now using the elapsed/365.25-days
// formula. It is an approximation that drifts near birthdays and is kept for
// behavioral compatibility.
func AgeYears(birthDate, now time.Time) float64 {
	if birthDate.IsZero() {
		return 0
	}
	return now.Sub(birthDate).Hours() / HoursPerYear
}
