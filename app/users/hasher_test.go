package users

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func fastHasher() *Argon2Hasher {
	return &Argon2Hasher{Time: 1, Memory: 64, Threads: 1, KeyLen: 16, SaltLen: 8}
}

func TestArgon2Hasher(t *testing.T) {
	h := fastHasher()

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=64,t=1,p=1$"), hash)

	ok, err := h.Verify("correct horse", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("battery staple", hash)
	require.NoError(t, err)
	require.False(t, ok)

	again, err := h.Hash("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, hash, again, "salt is random")
}

func TestArgon2Hasher_LongPassword(t *testing.T) {
	h := fastHasher()
	long := strings.Repeat("p", MaxPasswordLength)

	hash, err := h.Hash(long)
	require.NoError(t, err)

	ok, err := h.Verify(long[:MaxPasswordLength-1]+"q", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArgon2Hasher_InvalidHash(t *testing.T) {
	h := fastHasher()
	for _, bad := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=64,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$a2V5",
	} {
		_, err := h.Verify("x", bad)
		require.ErrorIs(t, err, ErrInvalidHash, bad)
	}
}

func TestArgon2Hasher_ParamsOutOfRange(t *testing.T) {
	h := fastHasher()
	hash, err := h.Hash("correct horse")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	for name, bad := range map[string]string{
		"no threads":    strings.Replace(hash, "p=1", "p=0", 1),
		"no iterations": strings.Replace(hash, "t=1", "t=0", 1),
		"many iters":    strings.Replace(hash, "t=1", "t=1000000", 1),
		"huge memory":   strings.Replace(hash, "m=64", "m=4294967295", 1),
		"tiny memory":   strings.Replace(hash, "m=64", "m=4", 1),
		"empty key":     strings.Join(append(parts[:5:5], ""), "$"),
		"empty salt":    strings.Join([]string{parts[0], parts[1], parts[2], parts[3], "", parts[5]}, "$"),
	} {
		t.Run(name, func(t *testing.T) {
			require.NotPanics(t, func() {
				ok, err := h.Verify("correct horse", bad)
				require.ErrorIs(t, err, ErrInvalidHash)
				require.False(t, ok)
			})
		})
	}
}

func TestArgon2Hasher_Validate(t *testing.T) {
	require.NoError(t, DefaultArgon2Hasher().Validate())
	require.NoError(t, fastHasher().Validate())

	for name, mod := range map[string]func(h *Argon2Hasher){
		"no threads":  func(h *Argon2Hasher) { h.Threads = 0 },
		"no time":     func(h *Argon2Hasher) { h.Time = 0 },
		"huge memory": func(h *Argon2Hasher) { h.Memory = maxHashMemory + 1 },
		"short key":   func(h *Argon2Hasher) { h.KeyLen = 8 },
		"no salt":     func(h *Argon2Hasher) { h.SaltLen = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			h := fastHasher()
			mod(h)
			require.ErrorIs(t, h.Validate(), ErrInvalidHash)
		})
	}
}
