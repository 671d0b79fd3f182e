package auth

import "errors"

// ErrUserNotFound is returned when no user matches the given email or
// one-time reset token.
var ErrUserNotFound = errors.New("user not found")

// ErrPasswordMismatch is returned when the supplied password does not
// verify against the stored hash.
var ErrPasswordMismatch = errors.New("invalid email or password")

// ErrNoRefreshToken is returned when neither the refresh cookie nor the
// fallback header carries a token.
var ErrNoRefreshToken = errors.New("no refresh token")

// ErrInvalidConfirmationToken is returned when an email confirmation token
// matches no pending user, including replays of an already consumed token.
var ErrInvalidConfirmationToken = errors.New("email confirmation token is invalid")

// ErrPasswordChangeNotAllowed is returned when a password change is not
// covered by a matching password-change grant.
var ErrPasswordChangeNotAllowed = errors.New("password change not allowed")

// ErrLastAdmin guards the lockout invariant: the sole remaining
// administrator cannot be deleted, demoted, deactivated or re-addressed.
var ErrLastAdmin = errors.New("operation forbidden for the last administrator")

// ErrSelfDeleteDisabled is returned when account self-deletion is switched
// off by service settings.
var ErrSelfDeleteDisabled = errors.New("self-removal is prohibited by the service settings")

// ErrNotSelfAccount is returned when a delete-account request names an
// email other than the caller's own.
var ErrNotSelfAccount = errors.New("cannot delete an account that is not your own")
