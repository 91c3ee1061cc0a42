package participant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesIDAndType(t *testing.T) {
	valid := strings.Repeat("ab12", 6)

	p, err := New(valid, TypeRider)
	require.NoError(t, err)
	assert.Equal(t, valid, p.UserID)

	_, err = New("", TypeRider)
	assert.ErrorIs(t, err, ErrIDRequired)

	_, err = New("not-hex", TypeRider)
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = New(valid, UserType("admin"))
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestParseUserType(t *testing.T) {
	got, err := ParseUserType("  Rider ")
	require.NoError(t, err)
	assert.Equal(t, TypeRider, got)

	got, err = ParseUserType("SPONSOR")
	require.NoError(t, err)
	assert.Equal(t, TypeSponsor, got)

	_, err = ParseUserType("moderator")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	a := Participant{UserID: strings.Repeat("a", 24), UserType: TypeRider}
	b := Participant{UserID: strings.Repeat("b", 24), UserType: TypeSponsor}

	assert.Equal(t, PairKey(a, b), PairKey(b, a))
	assert.NotEqual(t, PairKey(a, b), PairKey(a, a))
}

func TestPairKeyDistinguishesUserType(t *testing.T) {
	id := strings.Repeat("c", 24)
	other := Participant{UserID: strings.Repeat("d", 24), UserType: TypeRider}
	asRider := Participant{UserID: id, UserType: TypeRider}
	asSponsor := Participant{UserID: id, UserType: TypeSponsor}

	assert.NotEqual(t, PairKey(asRider, other), PairKey(asSponsor, other))
}

func TestIsHexID(t *testing.T) {
	assert.True(t, IsHexID(strings.Repeat("0", 24)))
	assert.True(t, IsHexID("5f1d7a2B9c8e4F0a1b2C3d4E"))
	assert.False(t, IsHexID(strings.Repeat("0", 23)))
	assert.False(t, IsHexID(strings.Repeat("0", 25)))
	assert.False(t, IsHexID(strings.Repeat("g", 24)))
}
