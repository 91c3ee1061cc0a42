package sponsor

import (
	"context"
	"errors"
	"strings"
	"time"

	"riderlink/internal/domain/profile"
)

var (
	ErrNotFound            = errors.New("sponsor: not found")
	ErrIDRequired          = errors.New("sponsor: id is required")
	ErrEmailRequired       = errors.New("sponsor: email is required")
	ErrCompanyNameRequired = errors.New("sponsor: company name is required")
	ErrPasswordMissing     = errors.New("sponsor: password hash is required")
	ErrEmailAlreadyUsed    = errors.New("sponsor: email already used")
)

// Status mirrors the rider account state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBanned   Status = "banned"
)

// Sponsor is the company-side profile aggregate.
type Sponsor struct {
	ID           string
	Email        string
	CompanyName  string
	DisplayName  string
	AvatarURL    string
	ContactName  string
	Website      string
	Country      string
	About        string
	Status       Status
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateParams feed NewSponsor.
type CreateParams struct {
	ID           string
	Email        string
	CompanyName  string
	ContactName  string
	PasswordHash string
	Country      string
	Now          time.Time
}

// NewSponsor validates required fields and returns an active profile.
func NewSponsor(params CreateParams) (*Sponsor, error) {
	id := strings.TrimSpace(params.ID)
	if id == "" {
		return nil, ErrIDRequired
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	company := strings.TrimSpace(params.CompanyName)
	if company == "" {
		return nil, ErrCompanyNameRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordMissing
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Sponsor{
		ID:           id,
		Email:        email,
		CompanyName:  company,
		DisplayName:  company,
		ContactName:  strings.TrimSpace(params.ContactName),
		Country:      strings.TrimSpace(params.Country),
		Status:       StatusActive,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Preview maps the sponsor to the shared enrichment shape.
func (s *Sponsor) Preview() profile.Preview {
	return profile.Preview{
		UserID:      s.ID,
		DisplayName: s.DisplayName,
		AvatarURL:   s.AvatarURL,
		CompanyName: s.CompanyName,
	}
}

func (s *Sponsor) Touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	s.UpdatedAt = now.UTC()
}

// Repository is the persistence contract for sponsor profiles.
type Repository interface {
	ByID(ctx context.Context, id string) (*Sponsor, error)
	ByEmail(ctx context.Context, email string) (*Sponsor, error)
	Save(ctx context.Context, sponsor *Sponsor) error
	PreviewsByIDs(ctx context.Context, ids []string) (map[string]profile.Preview, error)
}
