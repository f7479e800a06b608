package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bencana-service/internal/middleware"
	"bencana-service/internal/model"
	"bencana-service/internal/validate"
	"bencana-service/pkg/config"
	"bencana-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestJWT() *jwtutil.JWT {
	return jwtutil.New(&config.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})
}

func seedUser(t *testing.T, db *gorm.DB, name, email, password string) model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{Name: name, Email: email, Password: string(hash)}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db, newTestJWT())
	e := echo.New()

	body := `{"name":"Budi","email":"budi@example.com","password":"rahasia123"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/register", body)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"User registered successfully"}`, rec.Body.String())

	var user model.User
	require.NoError(t, db.Where("email = ?", "budi@example.com").First(&user).Error)
	assert.Equal(t, "Budi", user.Name)
	// Stored password is a salted hash, never the plaintext.
	assert.NotEqual(t, "rahasia123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("rahasia123")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db, newTestJWT())
	e := echo.New()

	body := `{"name":"Budi","email":"budi@example.com","password":"rahasia123"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/register", body)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newJSONContext(e, http.MethodPost, "/api/register", body)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"message":"Email already exists"}`, rec.Body.String())

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterMissingFields(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db, newTestJWT())
	e := echo.New()

	c, rec := newJSONContext(e, http.MethodPost, "/api/register", `{"email":"budi@example.com"}`)
	require.NoError(t, h.Register(c))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Errors []validate.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "name", resp.Errors[0].Field)
	assert.Equal(t, "password", resp.Errors[1].Field)

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoginSuccess(t *testing.T) {
	db := setupTestDB(t)
	jwt := newTestJWT()
	h := NewAuthHandler(db, jwt)
	e := echo.New()

	user := seedUser(t, db, "Budi", "budi@example.com", "rahasia123")

	body := `{"email":"budi@example.com","password":"rahasia123"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/login", body)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)
	require.NotEmpty(t, resp.Token)

	// The issued token embeds the authenticated identity.
	claims, err := jwt.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db, newTestJWT())
	e := echo.New()

	seedUser(t, db, "Budi", "budi@example.com", "rahasia123")

	body := `{"email":"budi@example.com","password":"salah"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/login", body)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid email or password"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "token")
}

func TestLoginUnknownEmail(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db, newTestJWT())
	e := echo.New()

	body := `{"email":"nobody@example.com","password":"rahasia123"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/login", body)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"User not found"}`, rec.Body.String())
}

func TestLoginMissingFields(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db, newTestJWT())
	e := echo.New()

	c, rec := newJSONContext(e, http.MethodPost, "/api/login", `{"email":"budi@example.com"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Email and password are required"}`, rec.Body.String())
}

func TestProtectedRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	jwt := newTestJWT()
	h := NewAuthHandler(db, jwt)

	e := echo.New()
	e.POST("/api/login", h.Login)
	e.GET("/api/protected", h.Protected, middleware.Auth(jwt))

	user := seedUser(t, db, "Budi", "budi@example.com", "rahasia123")

	// Login to obtain a token.
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"budi@example.com","password":"rahasia123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	// Use the token against the protected endpoint.
	req = httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string `json:"message"`
		User    struct {
			UserID uint   `json:"user_id"`
			Email  string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "This is protected data", resp.Message)
	assert.Equal(t, user.ID, resp.User.UserID)
	assert.Equal(t, user.Email, resp.User.Email)
}
