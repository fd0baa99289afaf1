package users

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrInvalidHash = errors.New("invalid password hash")

// Limits on parameters read back from a stored hash.
const (
	maxHashMemory     = 1 << 20 // KiB
	maxHashIterations = 64
	minHashKeyLen     = 16
)

// PasswordHasher turns a plain-text password into a storable hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// Argon2Hasher hashes with argon2id and encodes the result as
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<threads>$<salt>$<key>.
type Argon2Hasher struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultArgon2Hasher uses the parameters recommended in RFC 9106 for
// memory-constrained environments.
func DefaultArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{Time: 3, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}
}

var b64 = base64.RawStdEncoding

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.Time, h.Memory, h.Threads, h.KeyLen)
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Memory, h.Time, h.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(password, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, fmt.Errorf("%w: version %q", ErrInvalidHash, parts[2])
	}

	var (
		memory, iterations uint32
		threads            uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("%w: params: %w", ErrInvalidHash, err)
	}
	if err := checkParams(memory, iterations, threads); err != nil {
		return false, err
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %w", ErrInvalidHash, err)
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: key: %w", ErrInvalidHash, err)
	}
	if len(salt) == 0 || len(key) < minHashKeyLen {
		return false, fmt.Errorf("%w: salt or key too short", ErrInvalidHash)
	}

	other := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

// Validate reports whether hashes produced by h can be verified again.
func (h *Argon2Hasher) Validate() error {
	if err := checkParams(h.Memory, h.Time, h.Threads); err != nil {
		return err
	}
	if h.SaltLen < 1 || h.KeyLen < minHashKeyLen {
		return fmt.Errorf("%w: salt or key too short", ErrInvalidHash)
	}
	return nil
}

func checkParams(memory, iterations uint32, threads uint8) error {
	if threads < 1 || iterations < 1 || iterations > maxHashIterations ||
		memory < 8*uint32(threads) || memory > maxHashMemory {
		return fmt.Errorf("%w: m=%d,t=%d,p=%d out of range", ErrInvalidHash, memory, iterations, threads)
	}
	return nil
}

var _ PasswordHasher = (*Argon2Hasher)(nil)
