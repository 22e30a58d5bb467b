package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"forum_go/internal/core/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// largeUID exceeds float64's 53-bit integer precision; a lossy decode
// lands on a neighboring id.
const largeUID = int64(1864532174217351169)

func signToken(t *testing.T, secret string, uid int64, username string, role int) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid":      uid,
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseJWTPreservesLargeUID(t *testing.T) {
	token := signToken(t, "test-secret", largeUID, "alice", 1)

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)

	uid, ok := int64Claim(claims, "uid")
	require.True(t, ok)
	assert.Equal(t, largeUID, uid)

	role, ok := int64Claim(claims, "role")
	require.True(t, ok)
	assert.Equal(t, int64(1), role)
}

func TestParseJWTRejectsBadSignature(t *testing.T) {
	token := signToken(t, "test-secret", largeUID, "alice", 1)

	_, err := ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestJWTMWSetsContextIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.JWTConfig{Secret: "test-secret", Expiry: 3600}
	token := signToken(t, cfg.Secret, largeUID, "alice", 1)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/mgt/topic", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	JWTMW(cfg)(c)
	require.False(t, c.IsAborted())

	uid, ok := c.Get("uid")
	require.True(t, ok)
	assert.Equal(t, largeUID, uid.(int64))

	role, ok := c.Get("role")
	require.True(t, ok)
	assert.Equal(t, 1, role.(int))

	username, ok := c.Get("username")
	require.True(t, ok)
	assert.Equal(t, "alice", username)
}

func TestJWTMWRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.JWTConfig{Secret: "test-secret", Expiry: 3600}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/mgt/topic", nil)

	JWTMW(cfg)(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, 401, w.Code)
}
