package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/internal/portal/service"
	"github.com/halcyonstudio/portal/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestLoginHandler(t *testing.T) {
	env := newTestEnv(t)
	signer := &jwtx.HS256{Secret: []byte("test-secret"), Issuer: "portal-test"}
	userService := &service.UserService{
		Store:  env.store,
		Signer: signer,
		Issuer: "portal-test",
	}
	handler := &LoginHandler{UserService: userService}

	_, err := userService.CreateUser(context.Background(),
		"login@halcyon.test", "Sam", "hunter2hunter2", domain.RoleStaff)
	require.NoError(t, err)

	post := func(t *testing.T, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid credentials return a token", func(t *testing.T) {
		rec := post(t, `{"email":"login@halcyon.test","password":"hunter2hunter2"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "login@halcyon.test", resp.User.Email)

		claims, err := signer.Verify(resp.Token)
		require.NoError(t, err)
		require.Equal(t, resp.User.ID, claims.Subject)
	})

	t.Run("wrong password is a 401", func(t *testing.T) {
		rec := post(t, `{"email":"login@halcyon.test","password":"nope"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email is also a 401", func(t *testing.T) {
		rec := post(t, `{"email":"ghost@halcyon.test","password":"hunter2hunter2"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields are a 400", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, post(t, `{"email":"login@halcyon.test"}`).Code)
		require.Equal(t, http.StatusBadRequest, post(t, `{"password":"hunter2hunter2"}`).Code)
		require.Equal(t, http.StatusBadRequest, post(t, `not-json`).Code)
	})
}
