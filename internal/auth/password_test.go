package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("sofa-lover")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := VerifyPassword("sofa-lover", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("sofa-hater", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	for _, encoded := range []string{"", "plain", "$bcrypt$x$y$z$w", "$argon2id$v=19$m=x$a$b"} {
		ok, err := VerifyPassword("pw", encoded)
		assert.Error(t, err, encoded)
		assert.False(t, ok)
	}
}
