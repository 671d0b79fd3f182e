package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"user-admin-service/internal/auth"
	"user-admin-service/internal/auth/authtest"
	"user-admin-service/internal/model"
	"user-admin-service/internal/token"
	"user-admin-service/internal/utils"
)

// fixture wires a real auth.Service over in-memory stores so handlers are
// exercised end to end without MySQL or a broker.
type fixture struct {
	svc     *auth.Service
	users   *authtest.MemUsers
	roles   *authtest.MemRoles
	mailer  *authtest.MemMailer
	cookies *auth.CookieManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := authtest.NewMemUsers()
	roles := authtest.NewMemRoles()
	mailer := authtest.NewMemMailer()
	ctx := context.Background()
	require.NoError(t, roles.Initialize(ctx, "admin", "God mode role", true))
	require.NoError(t, roles.Initialize(ctx, "user", "Base access role", true))
	issuer := token.NewIssuer("test-secret", 15*time.Minute, 30*24*time.Hour)
	svc := auth.NewService(users, roles, mailer, issuer, auth.Config{
		AdminRole:            "admin",
		UserRole:             "user",
		BcryptCost:           4,
		CanDeleteSelfAccount: true,
	})
	return &fixture{
		svc:     svc,
		users:   users,
		roles:   roles,
		mailer:  mailer,
		cookies: auth.NewCookieManager(false, 30*24*time.Hour),
	}
}

func (f *fixture) seedUser(t *testing.T, email, password, role string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	id, err := f.users.Create(context.Background(), model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	})
	require.NoError(t, err)
	u, err := f.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

// jsonCtx builds an echo context carrying a JSON body.
func jsonCtx(method, target, body string, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
