package sponsors

import (
	"context"
	"strings"
	"time"

	"riderlink/internal/app/dto"
	"riderlink/internal/domain/sponsor"
)

// Service exposes sponsor profile reads and self-service updates.
type Service struct {
	Sponsors sponsor.Repository
}

// ByID returns an active sponsor's public card.
func (s *Service) ByID(ctx context.Context, id string) (dto.SponsorCard, error) {
	profile, err := s.Sponsors.ByID(ctx, id)
	if err != nil {
		return dto.SponsorCard{}, err
	}
	if profile.Status != sponsor.StatusActive {
		return dto.SponsorCard{}, sponsor.ErrNotFound
	}
	return dto.MapSponsorCard(profile), nil
}

// UpdateProfileParams carries partial company profile updates; empty strings
// leave the current value untouched.
type UpdateProfileParams struct {
	DisplayName string
	ContactName string
	Website     string
	Country     string
	About       string
}

// UpdateProfile applies the changes to the caller's own company profile.
func (s *Service) UpdateProfile(ctx context.Context, id string, params UpdateProfileParams) (dto.SponsorCard, error) {
	profile, err := s.Sponsors.ByID(ctx, id)
	if err != nil {
		return dto.SponsorCard{}, err
	}
	if name := strings.TrimSpace(params.DisplayName); name != "" {
		profile.DisplayName = name
	}
	if contact := strings.TrimSpace(params.ContactName); contact != "" {
		profile.ContactName = contact
	}
	if website := strings.TrimSpace(params.Website); website != "" {
		profile.Website = website
	}
	if country := strings.TrimSpace(params.Country); country != "" {
		profile.Country = country
	}
	if about := strings.TrimSpace(params.About); about != "" {
		profile.About = about
	}
	profile.Touch(time.Now())
	if err := s.Sponsors.Save(ctx, profile); err != nil {
		return dto.SponsorCard{}, err
	}
	return dto.MapSponsorCard(profile), nil
}

// SetAvatar stores the uploaded logo URL on the profile.
func (s *Service) SetAvatar(ctx context.Context, id, url string) error {
	profile, err := s.Sponsors.ByID(ctx, id)
	if err != nil {
		return err
	}
	profile.AvatarURL = strings.TrimSpace(url)
	profile.Touch(time.Now())
	return s.Sponsors.Save(ctx, profile)
}
