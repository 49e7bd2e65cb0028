package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	h := HashPassword([]byte("correct horse"))

	ok, err := VerifyPassword(h, []byte("correct horse"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(h, []byte("wrong"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	assert.NotEqual(t, HashPassword([]byte("p")), HashPassword([]byte("p")))
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, in := range []string{"", "plain", "bcrypt$a$b", "argon2id$!!$abc", "argon2id$YWJj$!!"} {
		_, err := VerifyPassword(in, []byte("p"))
		assert.ErrorIs(t, err, ErrMalformedHash, in)
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	a := DeriveKey([]byte("p"), []byte("salt"))
	b := DeriveKey([]byte("p"), []byte("salt"))
	assert.Equal(t, a, b)
	assert.Len(t, a, argonKeyLen)
}
