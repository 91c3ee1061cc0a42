package participant

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrIDRequired  = errors.New("participant: user id is required")
	ErrInvalidID   = errors.New("participant: user id must be a 24-character hex string")
	ErrInvalidType = errors.New("participant: invalid user type")
)

// UserType distinguishes the two sides of the marketplace.
type UserType string

const (
	TypeRider   UserType = "rider"
	TypeSponsor UserType = "sponsor"
)

// ParseUserType normalizes raw input into a known UserType.
func ParseUserType(raw string) (UserType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "rider":
		return TypeRider, nil
	case "sponsor":
		return TypeSponsor, nil
	default:
		return "", ErrInvalidType
	}
}

// Participant identifies one side of a conversation or message.
// It is an immutable value compared by (UserID, UserType) equality.
type Participant struct {
	UserID   string
	UserType UserType
}

// New validates the id and type and returns the value.
func New(userID string, userType UserType) (Participant, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Participant{}, ErrIDRequired
	}
	if !IsHexID(userID) {
		return Participant{}, ErrInvalidID
	}
	if userType != TypeRider && userType != TypeSponsor {
		return Participant{}, ErrInvalidType
	}
	return Participant{UserID: userID, UserType: userType}, nil
}

func (p Participant) Equal(other Participant) bool {
	return p.UserID == other.UserID && p.UserType == other.UserType
}

// Key is a stable scalar identity used for map lookups and pair normalization.
func (p Participant) Key() string {
	return p.UserID + "#" + string(p.UserType)
}

// PairKey builds an order-independent key for a participant pair. Lookups must
// succeed regardless of which participant is "current", so the two keys are
// sorted before joining.
func PairKey(a, b Participant) string {
	keys := []string{a.Key(), b.Key()}
	sort.Strings(keys)
	return keys[0] + "|" + keys[1]
}

// IsHexID reports whether s is a 24-character lowercase-insensitive hex string,
// the shape of a document-store object id.
func IsHexID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
