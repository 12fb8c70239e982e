package server

import (
	"net/http"
	"testing"

	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.call(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"username":   "alice",
		"email":      "a@x.com",
		"password":   "pw123",
		"first_name": "Alice",
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	reg := decode[RegisterResponse](t, body)
	assert.Equal(t, "User registered successfully", reg.Message)
	assert.Equal(t, "alice", reg.User.Username)
	assert.Equal(t, "a@x.com", reg.User.Email)
	assert.NotContains(t, string(body), "password")

	status, body = env.call(t, http.MethodPost, "/auth/login", "", fiber.Map{
		"username": "alice",
		"password": "pw123",
	})
	require.Equal(t, fiber.StatusOK, status, string(body))
	login := decode[LoginResponse](t, body)
	assert.Equal(t, "Login successful", login.Message)
	require.NotEmpty(t, login.Token)
	assert.False(t, login.ExpiresAt.IsZero())
	assert.Equal(t, reg.User.ID, login.User.ID)

	status, body = env.call(t, http.MethodGet, "/auth/me", login.Token, nil)
	require.Equal(t, fiber.StatusOK, status, string(body))
	me := decode[ProfileResponse](t, body)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "a@x.com", me.Email)
	assert.Equal(t, int64(0), me.PostCount)
	assert.Equal(t, int64(0), me.FollowerCount)
	assert.Equal(t, int64(0), me.FollowingCount)
}

func TestLogin_ByEmailCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.call(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"username": "alice", "email": "a@x.com", "password": "pw123", "first_name": "Alice",
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, body := env.call(t, http.MethodPost, "/auth/login", "", fiber.Map{
		"email":    "A@X.com",
		"password": "pw123",
	})
	assert.Equal(t, fiber.StatusOK, status, string(body))
}

func TestRegister_Rejections(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.call(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"username": "alice", "email": "a@x.com", "password": "pw123", "first_name": "Alice",
	})
	require.Equal(t, fiber.StatusCreated, status)

	tests := []struct {
		name   string
		body   fiber.Map
		status int
		code   string
	}{
		{
			name:   "missing fields",
			body:   fiber.Map{"username": "bob"},
			status: fiber.StatusBadRequest,
			code:   models.CodeValidation,
		},
		{
			name:   "bad username",
			body:   fiber.Map{"username": "_bob", "email": "b@x.com", "password": "pw", "first_name": "Bob"},
			status: fiber.StatusBadRequest,
			code:   models.CodeValidation,
		},
		{
			name:   "bad email",
			body:   fiber.Map{"username": "bob", "email": "not-an-email", "password": "pw", "first_name": "Bob"},
			status: fiber.StatusBadRequest,
			code:   models.CodeValidation,
		},
		{
			name:   "username taken",
			body:   fiber.Map{"username": "alice", "email": "other@x.com", "password": "pw", "first_name": "Al"},
			status: fiber.StatusConflict,
			code:   models.CodeConflict,
		},
		{
			name:   "email taken",
			body:   fiber.Map{"username": "alice2", "email": "A@x.com", "password": "pw", "first_name": "Al"},
			status: fiber.StatusConflict,
			code:   models.CodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.call(t, http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, tt.status, status, string(body))
			assert.Equal(t, tt.code, decode[models.ErrorResponse](t, body).Code)
		})
	}
}

func TestRegister_InvalidBody(t *testing.T) {
	env := newTestEnv(t)
	req := jsonRequest(http.MethodPost, "/auth/register", "{not json")

	status, body := env.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", decode[models.ErrorResponse](t, body).Error)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.call(t, http.MethodPost, "/auth/register", "", fiber.Map{
		"username": "alice", "email": "a@x.com", "password": "pw123", "first_name": "Alice",
	})
	require.Equal(t, fiber.StatusCreated, status)

	for _, body := range []fiber.Map{
		{"username": "alice", "password": "wrong"},
		{"username": "nobody", "password": "pw123"},
	} {
		status, raw := env.call(t, http.MethodPost, "/auth/login", "", body)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		resp := decode[models.ErrorResponse](t, raw)
		assert.Equal(t, "Invalid credentials", resp.Error)
		assert.Equal(t, models.CodeUnauthorized, resp.Code)
	}

	status, _ = env.call(t, http.MethodPost, "/auth/login", "", fiber.Map{"username": "alice"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestMe_UserVanished(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, &models.User{ID: 999, Username: "ghost"})

	status, body := env.call(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, decode[models.ErrorResponse](t, body).Code)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.call(t, http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Logged out successfully. Please remove token on client.", decode[MessageResponse](t, body).Message)
}

func TestMe_RejectsGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.call(t, http.MethodGet, "/auth/me", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, models.CodeUnauthorized, decode[models.ErrorResponse](t, body).Code)
}
