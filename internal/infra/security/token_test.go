package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riderlink/internal/domain/participant"
)

func testParticipant() participant.Participant {
	return participant.Participant{
		UserID:   strings.Repeat("a", 24),
		UserType: participant.TypeRider,
	}
}

func TestJWTCodecRoundTrip(t *testing.T) {
	codec := JWTCodec{Secret: []byte("test-secret")}

	token, issued, err := codec.Issue(testParticipant(), time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	claims, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, testParticipant(), claims.Participant)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt, time.Second)
}

func TestJWTCodecRejectsWrongSecret(t *testing.T) {
	codec := JWTCodec{Secret: []byte("test-secret")}
	token, _, err := codec.Issue(testParticipant(), time.Hour)
	require.NoError(t, err)

	other := JWTCodec{Secret: []byte("different")}
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTCodecRejectsExpiredToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	codec := JWTCodec{
		Secret: []byte("test-secret"),
		Clock:  func() time.Time { return past },
	}
	token, _, err := codec.Issue(testParticipant(), time.Hour)
	require.NoError(t, err)

	fresh := JWTCodec{Secret: []byte("test-secret")}
	_, err = fresh.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTCodecRequiresSecret(t *testing.T) {
	codec := JWTCodec{}
	_, _, err := codec.Issue(testParticipant(), time.Hour)
	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestJWTCodecRejectsGarbage(t *testing.T) {
	codec := JWTCodec{Secret: []byte("test-secret")}
	_, err := codec.Parse("definitely.not.ajwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
