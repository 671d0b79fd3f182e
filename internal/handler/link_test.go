package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-admin-service/internal/auth"
)

const frontend = "https://front.test"

func TestConfirmEmailLink(t *testing.T) {
	f := newFixture(t)
	h := NewLinkHandler(f.svc, f.cookies, frontend)
	ctx := context.Background()

	u, _, err := f.svc.Register(ctx, "bob@x.com", "secret", "Bob")
	require.NoError(t, err)
	confirmToken := *u.EmailConfirmationToken

	c, rec := jsonCtx(http.MethodGet, "/confirm-email?token="+confirmToken, "")
	require.NoError(t, h.ConfirmEmail(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontend+"/email-confirmed?success", rec.Header().Get(echo.HeaderLocation))

	stored, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)

	// Replaying the link lands on the error page.
	c, rec = jsonCtx(http.MethodGet, "/confirm-email?token="+confirmToken, "")
	require.NoError(t, h.ConfirmEmail(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), frontend+"/email-confirmed?error=")
}

func TestResetPasswordLink(t *testing.T) {
	f := newFixture(t)
	h := NewLinkHandler(f.svc, f.cookies, frontend)
	ctx := context.Background()

	u := f.seedUser(t, "alice@x.com", "secret", "user")
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@x.com"))
	stored, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	resetToken := *stored.ResetPasswordToken

	c, rec := jsonCtx(http.MethodGet, "/reset-password?token="+resetToken, "")
	require.NoError(t, h.ResetPassword(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontend+"/change-password?success", rec.Header().Get(echo.HeaderLocation))

	// The grant cookie is bound to the account's email.
	grant := responseCookie(rec, auth.PasswordGrantCookieName)
	require.NotNil(t, grant)
	assert.Equal(t, "alice@x.com", grant.Value)

	// Single use.
	c, rec = jsonCtx(http.MethodGet, "/reset-password?token="+resetToken, "")
	require.NoError(t, h.ResetPassword(c))
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), frontend+"/change-password?error=")
	assert.Nil(t, responseCookie(rec, auth.PasswordGrantCookieName))
}
