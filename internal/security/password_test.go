package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	first, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	second, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	ok, err := VerifyPassword("password123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("password124", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$t=3,m=65536,p=2$notbase64!!$alsonot!!",
		"$argon2id$v=19$bogus$c2FsdA$aGFzaA",
		"$bcrypt$whatever",
		// p overflows uint8; must be rejected, not truncated to p mod 256.
		"$argon2id$v=19$t=3,m=65536,p=300$c2FsdA$aGFzaA",
		"$argon2id$v=19$t=3,m=65536,p=0$c2FsdA$aGFzaA",
	}

	for _, malformed := range cases {
		ok, err := VerifyPassword("password123", []byte(malformed))
		assert.False(t, ok, "hash %q", malformed)
		assert.ErrorIs(t, err, ErrMalformedHash, "hash %q", malformed)
	}
}

func TestHashPasswordWithParamsRoundTrip(t *testing.T) {
	params := Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

	hash, err := HashPasswordWithParams("s3cret", params)
	require.NoError(t, err)

	ok, err := VerifyPassword("s3cret", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
