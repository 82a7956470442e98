package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tastebook/backend/internal/dto"
)

func TestAuthEndpoints_RegisterLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	body := jsonBody(t, map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "supersecret",
	})
	resp := env.request(t, http.MethodPost, "/api/auth/register", "", body, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered dto.AuthResponse
	decodeJSON(t, resp, &registered)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)
	assert.Equal(t, "Alice", registered.User.Name)

	body = jsonBody(t, map[string]string{"email": "alice@example.com", "password": "supersecret"})
	resp = env.request(t, http.MethodPost, "/api/auth/login", "", body, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logged dto.AuthResponse
	decodeJSON(t, resp, &logged)
	assert.Equal(t, registered.User.ID, logged.User.ID)
}

func TestAuthEndpoints_RegisterRejections(t *testing.T) {
	env := newTestEnv(t)

	body := jsonBody(t, map[string]string{"email": "a@example.com", "password": "supersecret"})
	resp := env.request(t, http.MethodPost, "/api/auth/register", "", body, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var invalid dto.ErrorResponse
	decodeJSON(t, resp, &invalid)
	assert.Contains(t, invalid.Fields, "name")

	body = jsonBody(t, map[string]string{"name": "Alice", "email": "alice@example.com", "password": "supersecret"})
	resp = env.request(t, http.MethodPost, "/api/auth/register", "", body, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body = jsonBody(t, map[string]string{"name": "Imposter", "email": "alice@example.com", "password": "supersecret"})
	resp = env.request(t, http.MethodPost, "/api/auth/register", "", body, fiber.MIMEApplicationJSON)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAuthEndpoints_LoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	body := jsonBody(t, map[string]string{"name": "Alice", "email": "alice@example.com", "password": "supersecret"})
	resp := env.request(t, http.MethodPost, "/api/auth/register", "", body, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body = jsonBody(t, map[string]string{"email": "alice@example.com", "password": "wrongwrong"})
	resp = env.request(t, http.MethodPost, "/api/auth/login", "", body, fiber.MIMEApplicationJSON)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthEndpoints_RefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)

	body := jsonBody(t, map[string]string{"name": "Alice", "email": "alice@example.com", "password": "supersecret"})
	resp := env.request(t, http.MethodPost, "/api/auth/register", "", body, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered dto.AuthResponse
	decodeJSON(t, resp, &registered)

	body = jsonBody(t, map[string]string{"refresh_token": registered.RefreshToken})
	resp = env.request(t, http.MethodPost, "/api/auth/refresh", "", body, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rotated dto.AuthResponse
	decodeJSON(t, resp, &rotated)
	assert.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	// Logout needs a valid access token.
	body = jsonBody(t, map[string]string{"refresh_token": rotated.RefreshToken})
	resp = env.request(t, http.MethodPost, "/api/auth/logout", "", body, fiber.MIMEApplicationJSON)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body = jsonBody(t, map[string]string{"refresh_token": rotated.RefreshToken})
	resp = env.request(t, http.MethodPost, "/api/auth/logout", rotated.AccessToken, body, fiber.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = jsonBody(t, map[string]string{"refresh_token": rotated.RefreshToken})
	resp = env.request(t, http.MethodPost, "/api/auth/refresh", "", body, fiber.MIMEApplicationJSON)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
