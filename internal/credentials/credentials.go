// Package credentials hashes seed passwords into the formats the streaming
// application verifies at login.
package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SchemePBKDF2 = "pbkdf2"
	SchemeBcrypt = "bcrypt"

	DefaultIterations = 260000
	saltLength        = 16
	keyLength         = 32
	saltAlphabet      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Hasher turns a plaintext password into a stored credential.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
	Scheme() string
}

// NewHasher returns the hasher for scheme. iterations only applies to pbkdf2;
// zero selects DefaultIterations.
func NewHasher(scheme string, iterations int) (Hasher, error) {
	switch strings.ToLower(scheme) {
	case "", SchemePBKDF2:
		if iterations < 0 {
			return nil, fmt.Errorf("pbkdf2 iterations must be positive, got %d", iterations)
		}
		if iterations == 0 {
			iterations = DefaultIterations
		}
		return PBKDF2{Iterations: iterations}, nil
	case SchemeBcrypt:
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// PBKDF2 produces "pbkdf2:sha256:<iterations>$<salt>$<hex digest>".
type PBKDF2 struct {
	Iterations int
}

func (PBKDF2) Scheme() string { return SchemePBKDF2 }

func (h PBKDF2) Hash(password string) (string, error) {
	salt, err := randomSalt(saltLength)
	if err != nil {
		return "", err
	}
	return h.encode(password, salt), nil
}

func (h PBKDF2) encode(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), h.Iterations, keyLength, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", h.Iterations, salt, hex.EncodeToString(key))
}

func (h PBKDF2) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 {
		return false
	}
	method := strings.Split(parts[0], ":")
	if len(method) != 3 || method[0] != "pbkdf2" || method[1] != "sha256" {
		return false
	}
	iter, err := strconv.Atoi(method[2])
	if err != nil || iter <= 0 {
		return false
	}
	want := PBKDF2{Iterations: iter}.encode(password, parts[1])
	return subtle.ConstantTimeCompare([]byte(want), []byte(encoded)) == 1
}

// Bcrypt wraps golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	Cost int
}

func (Bcrypt) Scheme() string { return SchemeBcrypt }

func (h Bcrypt) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (Bcrypt) Verify(password, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}

func randomSalt(n int) (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(saltAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(saltAlphabet[idx.Int64()])
	}
	return sb.String(), nil
}
