package riders

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"riderlink/internal/app/dto"
	"riderlink/internal/domain/rider"
)

// Service exposes rider profile reads and the filtered search.
type Service struct {
	Riders rider.Repository
	Logger *slog.Logger
}

// Search runs the filter pipeline and the companion count with identical
// filter stages, so totals always agree with the page contents.
func (s *Service) Search(ctx context.Context, filters rider.SearchFilters) (dto.RiderSearchResult, error) {
	normalized := filters.Normalized()
	items, err := s.Riders.Search(ctx, normalized)
	if err != nil {
		return dto.RiderSearchResult{}, err
	}
	total, err := s.Riders.Count(ctx, normalized)
	if err != nil {
		return dto.RiderSearchResult{}, err
	}
	cards := make([]dto.RiderCard, 0, len(items))
	for _, item := range items {
		cards = append(cards, dto.MapRiderCard(item))
	}
	return dto.RiderSearchResult{
		Items:      cards,
		Pagination: dto.NewPagination(normalized.Page, normalized.Limit, total),
	}, nil
}

// ByID loads one active rider profile and bumps its view counter. The bump is
// fire-and-forget relative to the read.
func (s *Service) ByID(ctx context.Context, id string) (dto.RiderCard, error) {
	profile, err := s.Riders.ByID(ctx, id)
	if err != nil {
		return dto.RiderCard{}, err
	}
	if profile.Status != rider.StatusActive {
		return dto.RiderCard{}, rider.ErrNotFound
	}
	if err := s.Riders.IncrementViews(ctx, id); err != nil && s.Logger != nil {
		s.Logger.Warn("view counter bump failed", "rider_id", id, "error", err)
	}
	return dto.MapRiderCard(profile), nil
}

// UpdateProfileParams carries self-service profile updates. Nil slices and
// empty strings leave the current value untouched.
type UpdateProfileParams struct {
	DisplayName  string
	Bio          string
	Sports       []string
	Languages    []string
	Availability *bool
	ContractType string
	Country      string
	Gender       string
}

// UpdateProfile applies the changes to the caller's own profile.
func (s *Service) UpdateProfile(ctx context.Context, id string, params UpdateProfileParams) (dto.RiderCard, error) {
	profile, err := s.Riders.ByID(ctx, id)
	if err != nil {
		return dto.RiderCard{}, err
	}
	if name := strings.TrimSpace(params.DisplayName); name != "" {
		profile.DisplayName = name
	}
	if bio := strings.TrimSpace(params.Bio); bio != "" {
		profile.Bio = bio
	}
	if params.Sports != nil {
		profile.Sports = params.Sports
	}
	if params.Languages != nil {
		profile.Languages = params.Languages
	}
	if params.Availability != nil {
		profile.Availability = *params.Availability
	}
	if contract := strings.TrimSpace(params.ContractType); contract != "" {
		profile.ContractType = rider.ContractType(strings.ToLower(contract))
	}
	if country := strings.TrimSpace(params.Country); country != "" {
		profile.Identity.Country = country
	}
	if gender := strings.TrimSpace(params.Gender); gender != "" {
		profile.Identity.Gender = rider.Gender(strings.ToLower(gender))
	}
	profile.Touch(time.Now())
	if err := s.Riders.Save(ctx, profile); err != nil {
		return dto.RiderCard{}, err
	}
	return dto.MapRiderCard(profile), nil
}

// SetAvatar stores the uploaded avatar URL on the profile.
func (s *Service) SetAvatar(ctx context.Context, id, url string) error {
	profile, err := s.Riders.ByID(ctx, id)
	if err != nil {
		return err
	}
	profile.AvatarURL = strings.TrimSpace(url)
	profile.Touch(time.Now())
	return s.Riders.Save(ctx, profile)
}
