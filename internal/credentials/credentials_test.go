package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("", 0)
	require.NoError(t, err)
	assert.Equal(t, SchemePBKDF2, h.Scheme())
	assert.Equal(t, DefaultIterations, h.(PBKDF2).Iterations)

	h, err = NewHasher("BCRYPT", 0)
	require.NoError(t, err)
	assert.Equal(t, SchemeBcrypt, h.Scheme())

	_, err = NewHasher("md5", 0)
	assert.Error(t, err)

	_, err = NewHasher("pbkdf2", -1)
	assert.Error(t, err)
}

func TestPBKDF2Format(t *testing.T) {
	h := PBKDF2{Iterations: 1000}
	encoded, err := h.Hash("admin")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "pbkdf2:sha256:1000$"))
	parts := strings.Split(encoded, "$")
	require.Len(t, parts, 3)
	assert.Len(t, parts[1], saltLength)
	assert.Len(t, parts[2], keyLength*2)

	assert.True(t, h.Verify("admin", encoded))
	assert.False(t, h.Verify("user1", encoded))
	assert.False(t, h.Verify("admin", "garbage"))
}

func TestPBKDF2SaltsDiffer(t *testing.T) {
	h := PBKDF2{Iterations: 1000}
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestBcrypt(t *testing.T) {
	h := Bcrypt{Cost: bcrypt.MinCost}
	encoded, err := h.Hash("user1")
	require.NoError(t, err)
	assert.True(t, h.Verify("user1", encoded))
	assert.False(t, h.Verify("admin", encoded))
}
