package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bencana-service/pkg/config"
	"bencana-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedServer(jwt *jwtutil.JWT) *echo.Echo {
	e := echo.New()
	e.GET("/api/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"email":   c.Get("email"),
		})
	}, Auth(jwt))
	return e
}

func TestAuthMissingToken(t *testing.T) {
	jwt := jwtutil.New(&config.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})
	e := newProtectedServer(jwt)

	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Access denied"}`, rec.Body.String())
}

func TestAuthMalformedHeader(t *testing.T) {
	jwt := jwtutil.New(&config.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})
	e := newProtectedServer(jwt)

	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "some-token-without-scheme")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthInvalidToken(t *testing.T) {
	jwt := jwtutil.New(&config.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})
	e := newProtectedServer(jwt)

	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())
}

func TestAuthTokenSignedWithDifferentSecret(t *testing.T) {
	issuer := jwtutil.New(&config.JWTConfig{SigningKey: "other-secret", ExpirationHours: 1})
	jwt := jwtutil.New(&config.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})
	e := newProtectedServer(jwt)

	token, err := issuer.GenerateToken(1, "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	issuer := jwtutil.New(&config.JWTConfig{SigningKey: "test-secret", ExpirationHours: -1})
	jwt := jwtutil.New(&config.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})
	e := newProtectedServer(jwt)

	token, err := issuer.GenerateToken(1, "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthValidTokenPopulatesIdentity(t *testing.T) {
	jwt := jwtutil.New(&config.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})
	e := newProtectedServer(jwt)

	token, err := jwt.GenerateToken(7, "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":7,"email":"user@example.com"}`, rec.Body.String())
}
