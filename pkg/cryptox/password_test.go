package cryptox

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Pepper path must be set before the first hash; use a throwaway file so
	// tests never touch a developer's real pepper.
	dir, err := filepath.Abs("testdata")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))
	m.Run()
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("superadmin")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifyPassword("superadmin", hash))
	require.ErrorIs(t, VerifyPassword("not-the-password", hash), ErrVerificationFailed)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	a, err := HashPassword("same-input")
	require.NoError(t, err)
	b, err := HashPassword("same-input")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=19456,t=2,p=1$only-four-parts",
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=y,p=z$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
	}
	for _, encoded := range cases {
		require.ErrorIs(t, VerifyPassword("anything", encoded), ErrVerificationFailed, encoded)
	}
}

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43)

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintEqual(t *testing.T) {
	tok, err := GenerateToken(TokenSize128)
	require.NoError(t, err)

	fp := FingerprintToken(tok)
	require.True(t, FingerprintEqual(tok, fp))
	require.False(t, FingerprintEqual("other-token", fp))
}
