package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"riderlink/internal/domain/profile"
	"riderlink/internal/domain/rider"
)

// RiderRepository mirrors the database search semantics in memory, including
// the derived-age filter, so service tests exercise the real filter logic.
type RiderRepository struct {
	mu    sync.RWMutex
	items map[string]*rider.Rider
	// Now is swappable so age filtering is deterministic in tests.
	Now func() time.Time
}

func NewRiderRepository() *RiderRepository {
	return &RiderRepository{items: make(map[string]*rider.Rider), Now: time.Now}
}

var _ rider.Repository = (*RiderRepository)(nil)

func (r *RiderRepository) ByID(ctx context.Context, id string) (*rider.Rider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agg, ok := r.items[id]
	if !ok {
		return nil, rider.ErrNotFound
	}
	return cloneRider(agg), nil
}

func (r *RiderRepository) ByEmail(ctx context.Context, email string) (*rider.Rider, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, agg := range r.items {
		if agg.Email == email {
			return cloneRider(agg), nil
		}
	}
	return nil, rider.ErrNotFound
}

func (r *RiderRepository) Save(ctx context.Context, agg *rider.Rider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.items {
		if id != agg.ID && existing.Email == agg.Email {
			return rider.ErrEmailAlreadyUsed
		}
	}
	r.items[agg.ID] = cloneRider(agg)
	return nil
}

func (r *RiderRepository) Search(ctx context.Context, filters rider.SearchFilters) ([]*rider.Rider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := r.matchesLocked(filters)
	r.sortLocked(matches, filters)
	page := paginate(matches, filters.Offset(), filters.Limit)
	out := make([]*rider.Rider, 0, len(page))
	for _, agg := range page {
		clone := cloneRider(agg)
		clone.PasswordHash = ""
		for i := range clone.LinkedAccounts {
			clone.LinkedAccounts[i].Secret = ""
		}
		out = append(out, clone)
	}
	return out, nil
}

func (r *RiderRepository) Count(ctx context.Context, filters rider.SearchFilters) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matchesLocked(filters))), nil
}

func (r *RiderRepository) matchesLocked(filters rider.SearchFilters) []*rider.Rider {
	now := r.Now()
	var matches []*rider.Rider
	for _, agg := range r.items {
		if agg.Status != rider.StatusActive {
			continue
		}
		if len(filters.Sports) > 0 && !tokensIntersect(agg.Sports, filters.Sports) {
			continue
		}
		if len(filters.Languages) > 0 && !tokensIntersect(agg.Languages, filters.Languages) {
			continue
		}
		if len(filters.SocialNetworks) > 0 && !networksIntersect(agg.LinkedAccounts, filters.SocialNetworks) {
			continue
		}
		if filters.Country != "" && !strings.Contains(strings.ToLower(agg.Identity.Country), filters.Country) {
			continue
		}
		if filters.Gender != "" && agg.Identity.Gender != filters.Gender {
			continue
		}
		if filters.ContractType != "" && agg.ContractType != filters.ContractType {
			continue
		}
		if filters.Availability != nil && agg.Availability != *filters.Availability {
			continue
		}
		if !ageMatches(agg, filters.Age, now) {
			continue
		}
		if filters.Query != "" && !queryMatches(agg, filters.Query) {
			continue
		}
		matches = append(matches, agg)
	}
	return matches
}

func (r *RiderRepository) sortLocked(matches []*rider.Rider, filters rider.SearchFilters) {
	now := r.Now()
	desc := filters.Direction == rider.SortDesc
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		var less bool
		switch filters.Sort {
		case rider.SortByCreated:
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID < b.ID
			}
			less = a.CreatedAt.Before(b.CreatedAt)
		case rider.SortByAge:
			ageA := rider.AgeYears(a.Identity.BirthDate, now)
			ageB := rider.AgeYears(b.Identity.BirthDate, now)
			if ageA == ageB {
				return a.ID < b.ID
			}
			less = ageA < ageB
		default:
			if a.Views == b.Views {
				return a.ID < b.ID
			}
			less = a.Views < b.Views
		}
		if desc {
			return !less
		}
		return less
	})
}

func (r *RiderRepository) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	agg, ok := r.items[id]
	if !ok {
		return rider.ErrNotFound
	}
	agg.Views++
	return nil
}

func (r *RiderRepository) PreviewsByIDs(ctx context.Context, ids []string) (map[string]profile.Preview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	previews := make(map[string]profile.Preview, len(ids))
	for _, id := range ids {
		if agg, ok := r.items[id]; ok && agg.Status == rider.StatusActive {
			previews[id] = agg.Preview()
		}
	}
	return previews, nil
}

func ageMatches(agg *rider.Rider, bounds rider.AgeRange, now time.Time) bool {
	if bounds.Min <= 0 && bounds.Max <= 0 {
		return true
	}
	// No birth date means no derivable age, so any age bound excludes.
	if agg.Identity.BirthDate.IsZero() {
		return false
	}
	age := rider.AgeYears(agg.Identity.BirthDate, now)
	if bounds.Min > 0 && age < bounds.Min {
		return false
	}
	if bounds.Max > 0 && age > bounds.Max {
		return false
	}
	return true
}

func queryMatches(agg *rider.Rider, query string) bool {
	query = strings.ToLower(query)
	for _, field := range []string{agg.DisplayName, agg.Username, agg.Identity.FullName, agg.Bio} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func tokensIntersect(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func networksIntersect(accounts []rider.LinkedAccount, want []string) bool {
	for _, w := range want {
		for _, acc := range accounts {
			if strings.EqualFold(acc.Network, w) {
				return true
			}
		}
	}
	return false
}

func cloneRider(agg *rider.Rider) *rider.Rider {
	clone := *agg
	clone.Sports = append([]string(nil), agg.Sports...)
	clone.Languages = append([]string(nil), agg.Languages...)
	clone.LinkedAccounts = append([]rider.LinkedAccount(nil), agg.LinkedAccounts...)
	return &clone
}
