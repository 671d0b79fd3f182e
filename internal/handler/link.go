package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"user-admin-service/internal/auth"
)

// LinkHandler serves the endpoints behind emailed links. Both live outside
// the API prefix and answer with redirects to the frontend rather than
// JSON, since the visitor is a browser following a link.
type LinkHandler struct {
	Svc         *auth.Service
	Cookies     *auth.CookieManager
	FrontendURL string
}

func NewLinkHandler(svc *auth.Service, cookies *auth.CookieManager, frontendURL string) *LinkHandler {
	return &LinkHandler{Svc: svc, Cookies: cookies, FrontendURL: frontendURL}
}

// ConfirmEmail consumes the confirmation token: activates the account,
// clears the token and redirects to the frontend confirmation page.
func (h *LinkHandler) ConfirmEmail(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Svc.ConfirmEmail(ctx, c.QueryParam("token")); err != nil {
		return c.Redirect(http.StatusFound,
			h.FrontendURL+"/email-confirmed?error="+url.QueryEscape(clientMessage(err)))
	}
	return c.Redirect(http.StatusFound, h.FrontendURL+"/email-confirmed?success")
}

// ResetPassword consumes the reset token, grants the time-boxed
// password-change cookie for the owner's email and redirects to the
// frontend change-password page.
func (h *LinkHandler) ResetPassword(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Svc.ConsumeResetToken(ctx, c.QueryParam("token"))
	if err != nil {
		return c.Redirect(http.StatusFound,
			h.FrontendURL+"/change-password?error="+url.QueryEscape(clientMessage(err)))
	}
	h.Cookies.SetPasswordGrant(c, u.Email)
	return c.Redirect(http.StatusFound, h.FrontendURL+"/change-password?success")
}

// clientMessage keeps redirect query strings free of internal detail.
func clientMessage(err error) string {
	switch err {
	case auth.ErrUserNotFound, auth.ErrInvalidConfirmationToken:
		return err.Error()
	default:
		return "internal error"
	}
}
