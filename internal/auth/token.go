// ABOUTME: Bearer token source and client-side JWT inspection
// ABOUTME: Tokens come from an env var or the XDG config dir; expiry is checked before sending

package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrNoToken      = errors.New("no token configured")
	ErrMalformed    = errors.New("malformed token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenSource resolves the bearer token attached to service requests.
type TokenSource interface {
	Token() (string, error)
}

// EnvFileSource reads the token from an environment variable first, then
// from a token file under the XDG config directory.
type EnvFileSource struct {
	// EnvVar is the environment variable to check first, e.g. "WEFT_TOKEN".
	EnvVar string
	// App is the config subdirectory name, e.g. "weft" for
	// ~/.config/weft/token.
	App string
}

// Token returns the configured bearer token or ErrNoToken.
func (s EnvFileSource) Token() (string, error) {
	if s.EnvVar != "" {
		if token := os.Getenv(s.EnvVar); token != "" {
			return token, nil
		}
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", ErrNoToken
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	data, err := os.ReadFile(filepath.Join(configDir, s.App, "token"))
	if err != nil {
		return "", ErrNoToken
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// StaticSource returns a fixed token. Empty string means no token.
type StaticSource string

func (s StaticSource) Token() (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// TokenInfo is what client-side inspection can learn from a JWT without
// the signing secret.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// Inspect parses a JWT without verifying its signature (the client never
// holds the secret) and extracts the subject and expiry. Returns
// ErrExpiredToken when the token is already past its exp claim, letting
// callers fail fast before any network round trip.
func Inspect(tokenString string) (*TokenInfo, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, ErrMalformed
	}

	info := &TokenInfo{}
	if sub, err := token.Claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
		if time.Now().After(exp.Time) {
			return info, ErrExpiredToken
		}
	}

	return info, nil
}
