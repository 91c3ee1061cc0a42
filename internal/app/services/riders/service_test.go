package riders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riderlink/internal/domain/rider"
	"riderlink/internal/infra/storage/memory"
)

var searchNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// bornYearsAgo uses the same elapsed/365.25-days formula the filter does, so
// boundary ages land exactly on the requested value.
func bornYearsAgo(years float64) time.Time {
	return searchNow.Add(-time.Duration(years * float64(rider.HoursPerYear) * float64(time.Hour)))
}

type seedRider struct {
	id        string
	username  string
	birthDate time.Time
	country   string
	sports    []string
	views     int64
	status    rider.Status
	networks  []rider.LinkedAccount
}

func newRiderService(t *testing.T, seeds []seedRider) (*Service, *memory.RiderRepository) {
	t.Helper()
	repo := memory.NewRiderRepository()
	repo.Now = func() time.Time { return searchNow }
	for i, seed := range seeds {
		agg, err := rider.NewRider(rider.CreateParams{
			ID:           seed.id,
			Email:        fmt.Sprintf("rider%d@example.com", i),
			Username:     seed.username,
			PasswordHash: "hash",
			Identity:     rider.Identity{BirthDate: seed.birthDate, Country: seed.country},
			Sports:       seed.sports,
			Now:          searchNow.Add(-time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		agg.Views = seed.views
		agg.LinkedAccounts = seed.networks
		if seed.status != "" {
			agg.Status = seed.status
		}
		require.NoError(t, repo.Save(context.Background(), agg))
	}
	return &Service{Riders: repo}, repo
}

func rid(n int) string {
	return fmt.Sprintf("%024d", n)
}

func TestSearchAgeRangeIsInclusive(t *testing.T) {
	service, _ := newRiderService(t, []seedRider{
		{id: rid(1), username: "seventeen", birthDate: bornYearsAgo(17.99)},
		{id: rid(2), username: "eighteen", birthDate: bornYearsAgo(18)},
		{id: rid(3), username: "twentyfive", birthDate: bornYearsAgo(25)},
		{id: rid(4), username: "twentysix", birthDate: bornYearsAgo(26)},
	})

	result, err := service.Search(context.Background(), rider.SearchFilters{
		Age: rider.AgeRange{Min: 18, Max: 25},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	names := []string{result.Items[0].Username, result.Items[1].Username}
	assert.ElementsMatch(t, []string{"eighteen", "twentyfive"}, names)
	assert.Equal(t, int64(2), result.Pagination.TotalItems)
}

func TestSearchAgeBoundExcludesRidersWithoutBirthDate(t *testing.T) {
	service, _ := newRiderService(t, []seedRider{
		{id: rid(1), username: "dated", birthDate: bornYearsAgo(20)},
		{id: rid(2), username: "undated"},
	})

	// Without a derivable age, any age bound excludes the profile.
	result, err := service.Search(context.Background(), rider.SearchFilters{
		Age: rider.AgeRange{Max: 30},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "dated", result.Items[0].Username)

	// No age bound keeps the profile visible.
	result, err = service.Search(context.Background(), rider.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
}

func TestSearchExcludesInactiveAccounts(t *testing.T) {
	service, _ := newRiderService(t, []seedRider{
		{id: rid(1), username: "active"},
		{id: rid(2), username: "banned", status: rider.StatusBanned},
		{id: rid(3), username: "inactive", status: rider.StatusInactive},
	})

	result, err := service.Search(context.Background(), rider.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "active", result.Items[0].Username)
}

func TestSearchCombinesFiltersConjunctively(t *testing.T) {
	service, _ := newRiderService(t, []seedRider{
		{id: rid(1), username: "both", country: "France", sports: []string{"bmx", "mtb"}},
		{id: rid(2), username: "sportonly", country: "Spain", sports: []string{"bmx"}},
		{id: rid(3), username: "countryonly", country: "France", sports: []string{"skate"}},
	})

	result, err := service.Search(context.Background(), rider.SearchFilters{
		Sports:  []string{"BMX"},
		Country: "fran",
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "both", result.Items[0].Username)
}

func TestSearchDefaultSortIsViewsDescending(t *testing.T) {
	service, _ := newRiderService(t, []seedRider{
		{id: rid(1), username: "low", views: 5},
		{id: rid(2), username: "high", views: 500},
		{id: rid(3), username: "mid", views: 50},
	})

	result, err := service.Search(context.Background(), rider.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "high", result.Items[0].Username)
	assert.Equal(t, "mid", result.Items[1].Username)
	assert.Equal(t, "low", result.Items[2].Username)
}

func TestSearchCapsLimitAndReportsFullTotal(t *testing.T) {
	seeds := make([]seedRider, 0, 120)
	for i := 0; i < 120; i++ {
		seeds = append(seeds, seedRider{id: rid(i + 1), username: fmt.Sprintf("r%d", i)})
	}
	service, _ := newRiderService(t, seeds)

	result, err := service.Search(context.Background(), rider.SearchFilters{Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, result.Items, 100)
	assert.Equal(t, int64(120), result.Pagination.TotalItems)
	assert.Equal(t, 2, result.Pagination.TotalPages)
}

func TestSearchStripsLinkedAccountSecrets(t *testing.T) {
	service, _ := newRiderService(t, []seedRider{
		{id: rid(1), username: "linked", networks: []rider.LinkedAccount{
			{Network: "instagram", Handle: "@linked", Secret: "oauth-token", Followers: 1200},
		}},
	})

	result, err := service.Search(context.Background(), rider.SearchFilters{
		SocialNetworks: []string{"instagram"},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Len(t, result.Items[0].Networks, 1)
	assert.Equal(t, "@linked", result.Items[0].Networks[0].Handle)
	assert.Equal(t, int64(1200), result.Items[0].Networks[0].Followers)
}

func TestByIDIncrementsViews(t *testing.T) {
	service, repo := newRiderService(t, []seedRider{
		{id: rid(1), username: "viewed"},
	})

	card, err := service.ByID(context.Background(), rid(1))
	require.NoError(t, err)
	assert.Equal(t, "viewed", card.Username)

	_, err = service.ByID(context.Background(), rid(1))
	require.NoError(t, err)

	stored, err := repo.ByID(context.Background(), rid(1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Views)
}

func TestByIDNotFound(t *testing.T) {
	service, _ := newRiderService(t, nil)
	_, err := service.ByID(context.Background(), rid(9))
	assert.ErrorIs(t, err, rider.ErrNotFound)
}
