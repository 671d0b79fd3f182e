// Package token issues and verifies the two JWT kinds the service uses:
// short-lived access tokens carrying identity and role, and long-lived
// refresh tokens carrying only the user id. Verification failures are
// deliberately coarse: callers learn "expired" or "invalid" and nothing
// more, so the error cannot be used as an oracle.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"user-admin-service/internal/model"
)

// ErrTokenExpired is returned when a token's expiry has passed.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid covers every other verification failure: bad signature,
// malformed token, wrong signing method.
var ErrTokenInvalid = errors.New("token invalid")

// ErrAccessDenied is returned when a structurally valid refresh token
// carries no user id.
var ErrAccessDenied = errors.New("access denied")

// AccessClaims is the access token payload.
type AccessClaims struct {
	UserID      uint64 `json:"id"`
	Role        string `json:"role"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	IsActive    bool   `json:"isActive"`
	jwt.RegisteredClaims
}

// RefreshClaims is the refresh token payload: the user id and nothing else.
type RefreshClaims struct {
	UserID uint64 `json:"id"`
	jwt.RegisteredClaims
}

// Pair bundles a freshly issued access and refresh token.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer signs and verifies HS256 tokens with a shared secret.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// RefreshTTL reports the configured refresh token lifetime; the cookie
// layer uses it for the cookie MaxAge.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// AccessToken signs an access token for the user.
func (i *Issuer) AccessToken(u model.User) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		UserID:      u.ID,
		Role:        u.Role,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsActive:    u.IsActive,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// RefreshToken signs a refresh token for the user id.
func (i *Issuer) RefreshToken(userID uint64) (string, error) {
	now := time.Now().UTC()
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Pair issues both tokens for a resolved user record.
func (i *Issuer) Pair(u model.User) (Pair, error) {
	access, err := i.AccessToken(u)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.RefreshToken(u.ID)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess parses and validates an access token.
func (i *Issuer) VerifyAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.verify(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token and requires a user
// id to be present.
func (i *Issuer) VerifyRefresh(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.verify(raw, claims); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, ErrAccessDenied
	}
	return claims, nil
}

func (i *Issuer) verify(raw string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !tok.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// ExtractBearer pulls the token out of an Authorization header. The header
// must have the exact shape "Bearer <token>".
func ExtractBearer(authorization string) (string, error) {
	parts := strings.Split(authorization, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrTokenInvalid
	}
	return parts[1], nil
}
