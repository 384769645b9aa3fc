package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	ok, err := Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMismatchIsNotAnError(t *testing.T) {
	hash, err := Hash("password-one")
	require.NoError(t, err)

	ok, err := Verify("password-two", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyMalformedHash(t *testing.T) {
	_, err := Verify("anything", "not-a-bcrypt-hash")
	assert.Error(t, err)
}

func TestHashesAreSalted(t *testing.T) {
	first, err := Hash("same password")
	require.NoError(t, err)
	second, err := Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
