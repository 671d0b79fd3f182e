package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"user-admin-service/internal/auth"
	"user-admin-service/internal/repository"
	"user-admin-service/internal/token"
)

// respondError is the single place sentinel errors become HTTP responses.
// Known sentinels carry a safe client-facing message; anything unknown is
// a 500 with no detail.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, auth.ErrInvalidConfirmationToken):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, auth.ErrPasswordMismatch):
		// Same status and message as an unknown email, so responses do not
		// reveal which half of the credentials was wrong.
		status = http.StatusNotFound
		msg = auth.ErrPasswordMismatch.Error()
	case errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrRoleExists):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, repository.ErrDefaultRoleImmutable),
		errors.Is(err, auth.ErrPasswordChangeNotAllowed):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, token.ErrTokenExpired),
		errors.Is(err, token.ErrTokenInvalid),
		errors.Is(err, auth.ErrNoRefreshToken):
		status = http.StatusUnauthorized
		msg = "token expired or invalid"
	case errors.Is(err, token.ErrAccessDenied),
		errors.Is(err, auth.ErrLastAdmin),
		errors.Is(err, auth.ErrSelfDeleteDisabled),
		errors.Is(err, auth.ErrNotSelfAccount):
		status = http.StatusForbidden
		msg = err.Error()
	}

	return c.JSON(status, echo.Map{"error": msg})
}
