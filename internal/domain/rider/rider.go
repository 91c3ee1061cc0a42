package rider

import (
	"context"
	"errors"
	"strings"
	"time"

	"riderlink/internal/domain/profile"
)

var (
	ErrNotFound         = errors.New("rider: not found")
	ErrIDRequired       = errors.New("rider: id is required")
	ErrEmailRequired    = errors.New("rider: email is required")
	ErrUsernameRequired = errors.New("rider: username is required")
	ErrPasswordMissing  = errors.New("rider: password hash is required")
	ErrEmailAlreadyUsed = errors.New("rider: email already used")
)

// Status is the account state. Search and previews only ever see active riders.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBanned   Status = "banned"
)

// Gender as declared on the profile.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ContractType a rider is looking for.
type ContractType string

const (
	ContractFullTime   ContractType = "full_time"
	ContractPartTime   ContractType = "part_time"
	ContractProduct    ContractType = "product"
	ContractEventBased ContractType = "event_based"
	ContractAmbassador ContractType = "ambassador"
)

// Identity groups personal fields kept under one sub-document.
type Identity struct {
	FirstName string
	LastName  string
	FullName  string
	BirthDate time.Time
	Gender    Gender
	Country   string
}

// LinkedAccount is a connected social network. Secret is never exposed through
// any read path.
type LinkedAccount struct {
	Network   string
	Handle    string
	Secret    string
	Followers int64
}

// Rider is the athlete profile aggregate.
type Rider struct {
	ID             string
	Email          string
	Username       string
	DisplayName    string
	AvatarURL      string
	Bio            string
	Identity       Identity
	Sports         []string
	Languages      []string
	LinkedAccounts []LinkedAccount
	Availability   bool
	ContractType   ContractType
	Views          int64
	Status         Status
	PasswordHash   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateParams feed NewRider.
type CreateParams struct {
	ID           string
	Email        string
	Username     string
	DisplayName  string
	PasswordHash string
	Identity     Identity
	Sports       []string
	Languages    []string
	Now          time.Time
}

// NewRider validates required fields and returns an active profile.
func NewRider(params CreateParams) (*Rider, error) {
	id := strings.TrimSpace(params.ID)
	if id == "" {
		return nil, ErrIDRequired
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordMissing
	}
	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		displayName = username
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	identity := params.Identity
	if identity.FullName == "" {
		identity.FullName = strings.TrimSpace(identity.FirstName + " " + identity.LastName)
	}

	return &Rider{
		ID:           id,
		Email:        email,
		Username:     username,
		DisplayName:  displayName,
		Identity:     identity,
		Sports:       normalizeTokens(params.Sports),
		Languages:    normalizeTokens(params.Languages),
		Availability: true,
		Status:       StatusActive,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Preview maps the rider to the shared enrichment shape.
func (r *Rider) Preview() profile.Preview {
	return profile.Preview{
		UserID:      r.ID,
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
		FirstName:   r.Identity.FirstName,
		LastName:    r.Identity.LastName,
		FullName:    r.Identity.FullName,
	}
}

func (r *Rider) Touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	r.UpdatedAt = now.UTC()
}

func normalizeTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(strings.ToLower(token))
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

// Repository is the persistence contract for rider profiles.
type Repository interface {
	ByID(ctx context.Context, id string) (*Rider, error)
	ByEmail(ctx context.Context, email string) (*Rider, error)
	Save(ctx context.Context, rider *Rider) error
	// Search returns one page matching the filters; Count applies the same
	// filter stages without pagination so totals agree with Search.
	Search(ctx context.Context, filters SearchFilters) ([]*Rider, error)
	Count(ctx context.Context, filters SearchFilters) (int64, error)
	// IncrementViews feeds the popularity sort.
	IncrementViews(ctx context.Context, id string) error
	PreviewsByIDs(ctx context.Context, ids []string) (map[string]profile.Preview, error)
}
