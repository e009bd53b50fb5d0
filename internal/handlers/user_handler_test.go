package handlers_test

import (
	"CaseKeeper/internal/model"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Login(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("ok", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"admin123"}`, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		hasCookie := false
		for _, c := range rr.Result().Cookies() {
			if c.Name == "auth_token" && c.Value != "" {
				hasCookie = true
			}
		}
		assert.True(t, hasCookie, "Set-Cookie auth_token expected")
		assert.NotContains(t, rr.Body.String(), "password")

		u := decodeBody[model.User](t, rr)
		assert.Equal(t, env.admin.ID, u.ID)
		assert.NotNil(t, u.LastLoginAt)
	})

	t.Run("unauthorized", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"bad"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, []string{"password"}, decodeBody[errorBody](t, rr).Fields)
	})

	t.Run("inactive", func(t *testing.T) {
		inactive := false
		_, err := env.store.Users().Update(context.Background(), env.operator.ID, model.UserPatch{Active: &inactive})
		require.NoError(t, err)

		rr := env.do(t, http.MethodPost, "/api/auth/login", `{"username":"officer","password":"officer1"}`, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestUser_MeAndLogout(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/auth/me", nil, env.operator)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "officer", decodeBody[model.User](t, rr).Username)

	rr = env.do(t, http.MethodPost, "/api/auth/logout", nil, env.operator)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestUser_AdminOnly(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodGet, "/api/users", nil, env.operator)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/users", nil, env.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]model.User](t, rr), 2)
}

func TestUser_CRUD(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/users", map[string]any{
		"username": "clerk", "password": "secret1", "name": "Desk Clerk",
	}, env.admin)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decodeBody[model.User](t, rr)
	assert.Equal(t, model.RoleOperator, created.Role)
	assert.True(t, created.Active)
	assert.NotContains(t, rr.Body.String(), "$2a$")

	rr = env.do(t, http.MethodPost, "/api/users", map[string]any{
		"username": "clerk", "password": "secret1",
	}, env.admin)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/users", map[string]any{
		"username": "x", "password": "1", "role": "chief",
	}, env.admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.ElementsMatch(t, []string{"username", "password", "role"}, decodeBody[errorBody](t, rr).Fields)

	rr = env.do(t, http.MethodPut, "/api/users/"+created.ID, map[string]any{"role": "admin"}, env.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.RoleAdmin, decodeBody[model.User](t, rr).Role)

	rr = env.do(t, http.MethodDelete, "/api/users/"+env.admin.ID, nil, env.admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/users/"+created.ID, nil, env.admin)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodDelete, "/api/users/"+created.ID, nil, env.admin)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
