package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	sealed, err := Seal("passphrase", "EAAGm0...token")
	require.NoError(t, err)
	assert.NotEqual(t, "EAAGm0...token", sealed)

	plain, err := Open("passphrase", sealed)
	require.NoError(t, err)
	assert.Equal(t, "EAAGm0...token", plain)
}

func TestSealIsNonDeterministic(t *testing.T) {
	a, err := Seal("key", "value")
	require.NoError(t, err)
	b, err := Seal("key", "value")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "fresh nonce per seal")
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealed, err := Seal("right-key", "secret")
	require.NoError(t, err)

	_, err = Open("wrong-key", sealed)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open("key", "not base64 at all!!!")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = Open("key", "c2hvcnQ=") // valid base64, too short for a nonce
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
