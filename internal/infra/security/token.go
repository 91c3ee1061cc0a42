package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"riderlink/internal/app/services/auth"
	"riderlink/internal/domain/participant"
)

var (
	ErrSecretRequired = errors.New("security: jwt secret is required")
	ErrInvalidToken   = errors.New("security: invalid token")
)

type sessionClaims struct {
	UserType string `json:"utype"`
	jwt.RegisteredClaims
}

// JWTCodec signs session tokens with HS256.
type JWTCodec struct {
	Secret []byte
	Issuer string
	Clock  func() time.Time
}

// Issue signs a token for the participant with a fresh jti.
func (c JWTCodec) Issue(p participant.Participant, ttl time.Duration) (string, auth.Claims, error) {
	if len(c.Secret) == 0 {
		return "", auth.Claims{}, ErrSecretRequired
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := c.now()
	expiresAt := now.Add(ttl)
	claims := sessionClaims{
		UserType: string(p.UserType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    c.issuer(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
	if err != nil {
		return "", auth.Claims{}, err
	}
	return token, auth.Claims{
		Participant: p,
		TokenID:     claims.ID,
		ExpiresAt:   expiresAt,
	}, nil
}

// Parse validates signature, method, and expiry.
func (c JWTCodec) Parse(token string) (auth.Claims, error) {
	if len(c.Secret) == 0 {
		return auth.Claims{}, ErrSecretRequired
	}
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.Secret, nil
	})
	if err != nil {
		return auth.Claims{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}
	userType, err := participant.ParseUserType(claims.UserType)
	if err != nil {
		return auth.Claims{}, ErrInvalidToken
	}
	p, err := participant.New(claims.Subject, userType)
	if err != nil {
		return auth.Claims{}, ErrInvalidToken
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return auth.Claims{Participant: p, TokenID: claims.ID, ExpiresAt: expiresAt}, nil
}

func (c JWTCodec) issuer() string {
	if c.Issuer != "" {
		return c.Issuer
	}
	return "riderlink"
}

func (c JWTCodec) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

var _ auth.TokenCodec = JWTCodec{}
