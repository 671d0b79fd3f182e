package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"user-admin-service/internal/auth"
)

const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the /auth endpoints.
type AuthHandler struct {
	Svc     *auth.Service
	Cookies *auth.CookieManager
}

func NewAuthHandler(svc *auth.Service, cookies *auth.CookieManager) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}
type resetLinkReq struct {
	Email string `json:"email"`
}
type updateAccountReq struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	DisplayName *string `json:"displayName"`
}

// Login: validate credentials and return a new pair. The refresh token
// travels in the cookie; cookieless clients get it echoed in the body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h.Cookies.RespondTokens(c, pair))
}

// Refresh: read the refresh token from cookie or header, verify it and
// return a new pair. A new refresh token is minted on every call.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw, err := h.Cookies.ReadRefresh(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h.Cookies.RespondTokens(c, pair))
}

// Register: create an inactive account, queue the confirmation email and
// return tokens immediately. The active-account guard keeps the account
// out of protected modules until the email is confirmed.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	_, pair, err := h.Svc.Register(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, h.Cookies.RespondTokens(c, pair))
}

// GetResetPasswordLink: store a reset token and queue the reset email.
// The answer is the same generic message whether or not the email exists.
func (h *AuthHandler) GetResetPasswordLink(c echo.Context) error {
	var req resetLinkReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.RequestPasswordReset(ctx, req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reset password link sent"})
}

// ChangePassword: allowed only while the password-change grant cookie is
// bound to exactly the submitted email. The grant is cleared on success.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	grant := h.Cookies.PasswordGrant(c)
	if grant == "" || !strings.EqualFold(grant, req.Email) {
		return respondError(c, auth.ErrPasswordChangeNotAllowed)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, err := h.Svc.ChangePassword(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	h.Cookies.ClearPasswordGrant(c)
	return c.JSON(http.StatusOK, h.Cookies.RespondTokens(c, pair))
}

// Update: self-service profile update; identity comes from the refresh
// token. An email change re-triggers the confirmation flow.
func (h *AuthHandler) Update(c echo.Context) error {
	var req updateAccountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	raw, err := h.Cookies.ReadRefresh(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, err := h.Svc.UpdateAccount(ctx, raw, auth.AccountUpdate{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h.Cookies.RespondTokens(c, pair))
}

// DeleteAccount: delete the caller's own account. The refresh cookie is
// cleared up front so the session ends even when the delete is rejected.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	raw, err := h.Cookies.ReadRefresh(c)
	h.Cookies.ClearRefresh(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.DeleteAccount(ctx, raw, req.Email, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted"})
}
