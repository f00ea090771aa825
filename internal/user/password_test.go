package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testArgon2 = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestArgon2Hasher(t *testing.T) {
	h := NewArgon2Hasher(testArgon2)

	hash, err := h.Hash("testpass123")
	require.NoError(t, err)

	assert.NotEqual(t, "testpass123", hash)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	assert.True(t, h.Verify(hash, "testpass123"))
	assert.False(t, h.Verify(hash, "testpass124"))
}

func TestArgon2Hasher_SaltedPerHash(t *testing.T) {
	h := NewArgon2Hasher(testArgon2)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestArgon2Hasher_MalformedHash(t *testing.T) {
	h := NewArgon2Hasher(testArgon2)

	for _, encoded := range []string{"", "plain", "$argon2id$v=19$m=1,t=1,p=1$!!$!!", "$bcrypt$x$y$z$w"} {
		assert.False(t, h.Verify(encoded, "x"), encoded)
	}
}
