// ABOUTME: Tests for token sources and unverified JWT inspection
// ABOUTME: Verifies env/file resolution order and expiry fail-fast

package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestEnvFileSource_EnvWins(t *testing.T) {
	t.Setenv("WEFT_TEST_TOKEN", "env-token")

	src := EnvFileSource{EnvVar: "WEFT_TEST_TOKEN", App: "weft"}
	token, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)
}

func TestEnvFileSource_FallsBackToFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("WEFT_TEST_TOKEN", "")

	appDir := filepath.Join(tmpDir, "weft")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "token"), []byte("  file-token\n"), 0o600))

	src := EnvFileSource{EnvVar: "WEFT_TEST_TOKEN", App: "weft"}
	token, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "file-token", token)
}

func TestEnvFileSource_NoToken(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WEFT_TEST_TOKEN", "")

	src := EnvFileSource{EnvVar: "WEFT_TEST_TOKEN", App: "weft"}
	_, err := src.Token()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestStaticSource(t *testing.T) {
	token, err := StaticSource("abc").Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = StaticSource("").Token()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestInspect_ValidToken(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	info, err := Inspect(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", info.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), info.ExpiresAt, time.Minute)
}

func TestInspect_ExpiredToken(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	info, err := Inspect(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
	require.NotNil(t, info)
	assert.Equal(t, "user-1", info.Subject)
}

func TestInspect_Malformed(t *testing.T) {
	_, err := Inspect("not-a-jwt")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestInspect_NoExpiry(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"sub": "user-1"})
	info, err := Inspect(tok)
	require.NoError(t, err)
	assert.True(t, info.ExpiresAt.IsZero())
}
