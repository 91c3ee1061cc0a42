package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"riderlink/internal/domain/participant"
	"riderlink/internal/domain/rider"
	"riderlink/internal/domain/sponsor"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrAccountInactive    = errors.New("auth: account is not active")
	ErrSessionInvalid     = errors.New("auth: session is invalid or revoked")
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Claims is the identity carried by a session token.
type Claims struct {
	Participant participant.Participant
	TokenID     string
	ExpiresAt   time.Time
}

// TokenCodec issues and parses signed session tokens.
type TokenCodec interface {
	Issue(p participant.Participant, ttl time.Duration) (token string, claims Claims, err error)
	Parse(token string) (Claims, error)
}

// RevocationStore remembers revoked token ids until they would have expired.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Service authenticates riders and sponsors and manages their sessions.
type Service struct {
	Riders      rider.Repository
	Sponsors    sponsor.Repository
	Passwords   PasswordHasher
	Tokens      TokenCodec
	Revocations RevocationStore
	SessionTTL  time.Duration
	Logger      *slog.Logger
	IDGenerator func() string
	Clock       func() time.Time
}

// RegisterParams cover both account types; type-specific fields are ignored
// for the other type.
type RegisterParams struct {
	UserType    participant.UserType
	Email       string
	Password    string
	Username    string
	CompanyName string
	ContactName string
	FirstName   string
	LastName    string
	BirthDate   time.Time
	Gender      string
	Country     string
	Sports      []string
	Languages   []string
}

// AuthResult is the session produced by register/login.
type AuthResult struct {
	Participant participant.Participant
	Token       string
	ExpiresAt   time.Time
}

// Register creates a rider or sponsor account and issues a session.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.validatePassword(params.Password); err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	id := s.newID()
	now := s.now()

	switch params.UserType {
	case participant.TypeRider:
		if _, err := s.Riders.ByEmail(ctx, normalizeEmail(params.Email)); err == nil {
			return nil, rider.ErrEmailAlreadyUsed
		} else if !errors.Is(err, rider.ErrNotFound) {
			return nil, err
		}
		profile, err := rider.NewRider(rider.CreateParams{
			ID:           id,
			Email:        params.Email,
			Username:     params.Username,
			PasswordHash: hash,
			Identity: rider.Identity{
				FirstName: strings.TrimSpace(params.FirstName),
				LastName:  strings.TrimSpace(params.LastName),
				BirthDate: params.BirthDate,
				Gender:    rider.Gender(strings.ToLower(strings.TrimSpace(params.Gender))),
				Country:   strings.TrimSpace(params.Country),
			},
			Sports:    params.Sports,
			Languages: params.Languages,
			Now:       now,
		})
		if err != nil {
			return nil, err
		}
		if err := s.Riders.Save(ctx, profile); err != nil {
			return nil, err
		}
	case participant.TypeSponsor:
		if _, err := s.Sponsors.ByEmail(ctx, normalizeEmail(params.Email)); err == nil {
			return nil, sponsor.ErrEmailAlreadyUsed
		} else if !errors.Is(err, sponsor.ErrNotFound) {
			return nil, err
		}
		profile, err := sponsor.NewSponsor(sponsor.CreateParams{
			ID:           id,
			Email:        params.Email,
			CompanyName:  params.CompanyName,
			ContactName:  params.ContactName,
			PasswordHash: hash,
			Country:      params.Country,
			Now:          now,
		})
		if err != nil {
			return nil, err
		}
		if err := s.Sponsors.Save(ctx, profile); err != nil {
			return nil, err
		}
	default:
		return nil, participant.ErrInvalidType
	}

	identity := participant.Participant{UserID: id, UserType: params.UserType}
	result, err := s.issue(identity)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("account registered", "user_id", id, "user_type", string(params.UserType))
	}
	return result, nil
}

// Login verifies credentials for the given account type.
func (s *Service) Login(ctx context.Context, userType participant.UserType, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		id     string
		hash   string
		active bool
	)
	switch userType {
	case participant.TypeRider:
		profile, err := s.Riders.ByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, rider.ErrNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
		id, hash, active = profile.ID, profile.PasswordHash, profile.Status == rider.StatusActive
	case participant.TypeSponsor:
		profile, err := s.Sponsors.ByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, sponsor.ErrNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
		id, hash, active = profile.ID, profile.PasswordHash, profile.Status == sponsor.StatusActive
	default:
		return nil, participant.ErrInvalidType
	}

	if err := s.Passwords.Compare(hash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !active {
		return nil, ErrAccountInactive
	}
	result, err := s.issue(participant.Participant{UserID: id, UserType: userType})
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("session issued", "user_id", id, "user_type", string(userType))
	}
	return result, nil
}

// Logout revokes the token until its natural expiry. An unparsable token is
// treated as already logged out.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" || s.Revocations == nil {
		return nil
	}
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil
	}
	return s.Revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}

// Resolve validates a session token and returns the authenticated
// participant, confirming the account is still active.
func (s *Service) Resolve(ctx context.Context, token string) (participant.Participant, error) {
	claims, err := s.Tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return participant.Participant{}, ErrSessionInvalid
	}
	if s.Revocations != nil {
		revoked, err := s.Revocations.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return participant.Participant{}, err
		}
		if revoked {
			return participant.Participant{}, ErrSessionInvalid
		}
	}
	switch claims.Participant.UserType {
	case participant.TypeRider:
		profile, err := s.Riders.ByID(ctx, claims.Participant.UserID)
		if err != nil || profile.Status != rider.StatusActive {
			return participant.Participant{}, ErrSessionInvalid
		}
	case participant.TypeSponsor:
		profile, err := s.Sponsors.ByID(ctx, claims.Participant.UserID)
		if err != nil || profile.Status != sponsor.StatusActive {
			return participant.Participant{}, ErrSessionInvalid
		}
	default:
		return participant.Participant{}, ErrSessionInvalid
	}
	return claims.Participant, nil
}

func (s *Service) issue(p participant.Participant) (*AuthResult, error) {
	token, claims, err := s.Tokens.Issue(p, s.sessionTTL())
	if err != nil {
		return nil, err
	}
	return &AuthResult{Participant: p, Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 24 * time.Hour
}

func (s *Service) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) newID() string {
	if s.IDGenerator != nil {
		return s.IDGenerator()
	}
	return primitive.NewObjectID().Hex()
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
