package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Ada", SanitizeInput("  <b>Ada</b> "))
	assert.Equal(t, "alert(1)", SanitizeInput("<script>alert(1)</script>"))
	assert.Equal(t, "", SanitizeInput("   "))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ada@example.com"))
	assert.False(t, IsValidEmail("ada@example"))
	assert.False(t, IsValidEmail("ada @example.com"))
	assert.False(t, IsValidEmail(""))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "admin@example.com", "ADMIN", time.Hour)
	require.NoError(t, err)

	c, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", c.Subject)
	assert.Equal(t, "ADMIN", c.Role)

	_, err = ParseAccessToken("other", tok.Token)
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "admin@example.com", "ADMIN", -time.Minute)
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", tok.Token)
	assert.Error(t, err)
}

func TestVerifyPassword(t *testing.T) {
	h, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, "correct horse"))
	assert.False(t, VerifyPassword(h, "battery staple"))
	assert.False(t, VerifyPassword("", "correct horse"))
}
