package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"user-admin-service/internal/token"
)

// Cookie names used by the transport layer. Both are httpOnly; neither is
// ever persisted server-side.
const (
	RefreshCookieName       = "refreshToken"
	PasswordGrantCookieName = "canChangePasswordForEmail"
)

// refreshHeaderName is the fallback transport for non-browser clients that
// do not carry cookies.
const refreshHeaderName = "X-Refresh-Token"

const passwordGrantTTL = time.Hour

// TokensResponse is the JSON shape returned by login/refresh/register. The
// refresh token is echoed in the body only for cookieless clients; browser
// clients get it via the httpOnly cookie alone.
type TokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// CookieManager writes and reads the refresh-token and password-change
// cookies. The Secure flag is tied to the deployment environment.
type CookieManager struct {
	secure     bool
	refreshTTL time.Duration
}

func NewCookieManager(secure bool, refreshTTL time.Duration) *CookieManager {
	return &CookieManager{secure: secure, refreshTTL: refreshTTL}
}

func (m *CookieManager) set(c echo.Context, name, value string, maxAge time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(maxAge / time.Second),
	})
}

func (m *CookieManager) clear(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

// SetRefresh stores the refresh token cookie with MaxAge equal to the
// configured refresh TTL.
func (m *CookieManager) SetRefresh(c echo.Context, refreshToken string) {
	m.set(c, RefreshCookieName, refreshToken, m.refreshTTL)
}

// ClearRefresh removes the refresh token cookie.
func (m *CookieManager) ClearRefresh(c echo.Context) {
	m.clear(c, RefreshCookieName)
}

// ReadRefresh returns the inbound refresh token: cookie first, then the
// X-Refresh-Token header for programmatic clients.
func (m *CookieManager) ReadRefresh(c echo.Context) (string, error) {
	if ck, err := c.Cookie(RefreshCookieName); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	if v := c.Request().Header.Get(refreshHeaderName); v != "" {
		return v, nil
	}
	return "", ErrNoRefreshToken
}

// SetPasswordGrant marks one email as allowed to change its password for
// the next hour. Set only after a valid reset link was consumed.
func (m *CookieManager) SetPasswordGrant(c echo.Context, email string) {
	m.set(c, PasswordGrantCookieName, email, passwordGrantTTL)
}

// PasswordGrant returns the email bound to the grant cookie, empty when
// the cookie is absent.
func (m *CookieManager) PasswordGrant(c echo.Context) string {
	ck, err := c.Cookie(PasswordGrantCookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}

// ClearPasswordGrant removes the password-change grant cookie.
func (m *CookieManager) ClearPasswordGrant(c echo.Context) {
	m.clear(c, PasswordGrantCookieName)
}

// RespondTokens always sets the refresh cookie and builds the response
// body. Clients that sent no cookies at all are assumed to not use cookie
// transport, so the refresh token is echoed back in the body for them.
func (m *CookieManager) RespondTokens(c echo.Context, pair token.Pair) TokensResponse {
	m.SetRefresh(c, pair.RefreshToken)
	resp := TokensResponse{AccessToken: pair.AccessToken}
	if len(c.Request().Cookies()) == 0 {
		resp.RefreshToken = pair.RefreshToken
	}
	return resp
}
