// Package cryptox hashes account secrets with argon2id and verifies them in
// constant time.
//
// Hashes are stored in PHC form:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt b64>$<key b64>
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accounts/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	algorithmID = "argon2id"

	timeCost    uint32 = 1
	memoryKB    uint32 = 64 * 1024
	parallelism uint8  = 4
	saltLength         = 16
	keyLength   uint32 = 32
)

var (
	ErrEmptySecret   = errors.New("secret must not be empty")
	ErrInvalidFormat = errors.New("invalid secret hash format")
)

// dummyHash is verified against when no account exists so that a miss costs
// the same as a wrong secret.
var dummyHash = mustHash("not-a-real-secret")

func mustHash(secret string) string {
	h, err := HashSecret(secret)
	if err != nil {
		panic(err)
	}
	return h
}

func deriveKey(secret, salt []byte, t, m uint32, p uint8, n uint32) []byte {
	return argon2.IDKey(secret, salt, t, m, p, n)
}

// HashSecret returns the PHC-encoded argon2id hash of secret using a fresh
// random salt.
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	salt := common.GenerateRandByteArray(saltLength)
	key := deriveKey([]byte(secret), salt, timeCost, memoryKB, parallelism, keyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID, argon2.Version, memoryKB, timeCost, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifySecret reports whether secret matches encoded. A malformed hash is an
// error, a mismatch is not.
func VerifySecret(secret, encoded string) (bool, error) {
	p, err := parse(encoded)
	if err != nil {
		return false, err
	}

	key := deriveKey([]byte(secret), p.salt, p.time, p.memory, p.parallelism, uint32(len(p.key)))
	defer common.WipeByteArray(key)

	return subtle.ConstantTimeCompare(key, p.key) == 1, nil
}

// VerifyDummy burns one verification worth of CPU and always reports false.
func VerifyDummy(secret string) bool {
	_, _ = VerifySecret(secret, dummyHash)
	return false
}

// Stored hashes may not ask for more than these when verified.
const (
	maxMemoryKB    = 4 * memoryKB
	maxTimeCost    = 4 * timeCost
	maxParallelism = 4 * parallelism
)

type params struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parse(encoded string) (*params, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return nil, ErrInvalidFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, ErrInvalidFormat
	}

	p := &params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.parallelism); err != nil {
		return nil, ErrInvalidFormat
	}
	if p.memory == 0 || p.time == 0 || p.parallelism == 0 {
		return nil, ErrInvalidFormat
	}
	if p.memory > maxMemoryKB || p.time > maxTimeCost || p.parallelism > maxParallelism {
		return nil, ErrInvalidFormat
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) == 0 {
		return nil, ErrInvalidFormat
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return nil, ErrInvalidFormat
	}

	return p, nil
}
