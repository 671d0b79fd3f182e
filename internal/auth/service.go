// Package auth implements the credential and token lifecycle: login,
// refresh, registration, email confirmation, password reset and the
// account operations reachable through /auth. Storage and outbound mail
// sit behind small interfaces so the flows can be tested without MySQL or
// a broker.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"user-admin-service/internal/model"
	"user-admin-service/internal/repository"
	"user-admin-service/internal/token"
	"user-admin-service/internal/utils"
)

// UserStore is the slice of the user repository the auth flows need.
type UserStore interface {
	Create(ctx context.Context, u model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByConfirmationToken(ctx context.Context, token string) (model.User, error)
	GetByResetToken(ctx context.Context, token string) (model.User, error)
	Update(ctx context.Context, id uint64, p repository.UserPatch) (model.User, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, f repository.UserFilter) ([]model.User, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

// RoleStore is the slice of the role repository the auth flows need.
type RoleStore interface {
	Create(ctx context.Context, role model.Role) (model.Role, error)
	Initialize(ctx context.Context, code, description string, isDefault bool) error
	GetByCode(ctx context.Context, code string) (model.Role, error)
	Exists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context) ([]model.Role, error)
	UpdateByCode(ctx context.Context, code, description string) (model.Role, error)
	DeleteByCode(ctx context.Context, code string) error
}

// Mailer dispatches the two transactional emails. Delivery is a black box;
// failures are logged and never abort the surrounding flow.
type Mailer interface {
	SendConfirmEmail(ctx context.Context, to, token string) error
	SendResetPassword(ctx context.Context, to, token string) error
}

// Config carries the auth-relevant settings.
type Config struct {
	AdminRole            string
	UserRole             string
	BcryptCost           int
	CanDeleteSelfAccount bool
}

// Service composes credential validation, one-time token flows and the
// account operations.
type Service struct {
	users  UserStore
	roles  RoleStore
	mail   Mailer
	tokens *token.Issuer
	cfg    Config
}

func NewService(users UserStore, roles RoleStore, mail Mailer, issuer *token.Issuer, cfg Config) *Service {
	return &Service{users: users, roles: roles, mail: mail, tokens: issuer, cfg: cfg}
}

// Tokens exposes the issuer for callers that only mint or verify tokens.
func (s *Service) Tokens() *token.Issuer { return s.tokens }

// ValidateUser checks an email/password pair against the stored hash.
func (s *Service) ValidateUser(ctx context.Context, email, password string) (model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrPasswordMismatch
	}
	return u, nil
}

// Login validates credentials and issues a fresh token pair.
func (s *Service) Login(ctx context.Context, email, password string) (token.Pair, error) {
	u, err := s.ValidateUser(ctx, email, password)
	if err != nil {
		return token.Pair{}, err
	}
	return s.tokens.Pair(u)
}

// Refresh verifies a refresh token, reloads the user and issues a new
// pair. Rotation is implicit: every call mints a new refresh token.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (token.Pair, error) {
	claims, err := s.tokens.VerifyRefresh(rawRefresh)
	if err != nil {
		return token.Pair{}, err
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return token.Pair{}, err
	}
	return s.tokens.Pair(u)
}

// CreateUser describes a new account. Role must name an existing role.
type CreateUser struct {
	Email       string
	Password    string
	Role        string
	DisplayName string
}

// CreateUser creates an inactive account holding a fresh confirmation
// token and queues the confirmation email. Used both by self-registration
// and by admin creation through the user module.
func (s *Service) CreateUser(ctx context.Context, in CreateUser) (model.User, error) {
	exists, err := s.roles.Exists(ctx, in.Role)
	if err != nil {
		return model.User{}, err
	}
	if !exists {
		return model.User{}, repository.ErrNotFound
	}
	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	confirmToken := uuid.NewString()
	u := model.User{
		Email:                  strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:           hash,
		Role:                   in.Role,
		IsActive:               false,
		EmailConfirmationToken: &confirmToken,
		DisplayName:            in.DisplayName,
	}
	id, err := s.users.Create(ctx, u)
	if err != nil {
		return model.User{}, err
	}
	u.ID = id
	if err := s.mail.SendConfirmEmail(ctx, u.Email, confirmToken); err != nil {
		log.Printf("auth: confirmation mail for %s not queued: %v", u.Email, err)
	}
	return u, nil
}

// Register creates a base-role account and issues tokens immediately. The
// account stays inactive until the emailed confirmation token is consumed;
// the active-account guard is what keeps inactive users out of protected
// modules in the meantime.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (model.User, token.Pair, error) {
	u, err := s.CreateUser(ctx, CreateUser{
		Email:       email,
		Password:    password,
		Role:        s.cfg.UserRole,
		DisplayName: displayName,
	})
	if err != nil {
		return model.User{}, token.Pair{}, err
	}
	pair, err := s.tokens.Pair(u)
	if err != nil {
		return model.User{}, token.Pair{}, err
	}
	return u, pair, nil
}

// ConfirmEmail consumes a confirmation token: activates the account and
// clears the token so a replay fails.
func (s *Service) ConfirmEmail(ctx context.Context, confirmToken string) (model.User, error) {
	u, err := s.users.GetByConfirmationToken(ctx, confirmToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrInvalidConfirmationToken
		}
		return model.User{}, err
	}
	active := true
	return s.users.Update(ctx, u.ID, repository.UserPatch{
		IsActive:               &active,
		EmailConfirmationToken: &sql.NullString{},
	})
}

// RequestPasswordReset stores a fresh reset token on the user and queues
// the reset email. An unknown email is not an error: the handler answers
// the same generic message either way.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	resetToken := uuid.NewString()
	if _, err := s.users.Update(ctx, u.ID, repository.UserPatch{
		ResetPasswordToken: &sql.NullString{String: resetToken, Valid: true},
	}); err != nil {
		return err
	}
	if err := s.mail.SendResetPassword(ctx, u.Email, resetToken); err != nil {
		log.Printf("auth: reset mail for %s not queued: %v", u.Email, err)
	}
	return nil
}

// ConsumeResetToken looks up the user holding the reset token and clears
// it. The token is single-use; the caller grants the time-boxed
// password-change cookie.
func (s *Service) ConsumeResetToken(ctx context.Context, resetToken string) (model.User, error) {
	u, err := s.users.GetByResetToken(ctx, resetToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return s.users.Update(ctx, u.ID, repository.UserPatch{
		ResetPasswordToken: &sql.NullString{},
	})
}

// ChangePassword rehashes and stores a new password for the email, then
// issues a fresh pair. The handler has already matched the email against
// the password-change grant.
func (s *Service) ChangePassword(ctx context.Context, email, password string) (token.Pair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return token.Pair{}, ErrUserNotFound
		}
		return token.Pair{}, err
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return token.Pair{}, err
	}
	updated, err := s.users.Update(ctx, u.ID, repository.UserPatch{
		PasswordHash:       &hash,
		ResetPasswordToken: &sql.NullString{},
	})
	if err != nil {
		return token.Pair{}, err
	}
	return s.tokens.Pair(updated)
}

// AccountUpdate is the self-service profile patch. Nil fields stay as is.
type AccountUpdate struct {
	Email       *string
	Password    *string
	DisplayName *string
}

// UpdateAccount resolves the caller from the refresh token and applies the
// patch. Changing the email re-triggers the confirmation flow: the account
// goes inactive and receives a new confirmation token. The last remaining
// administrator cannot change its email (that would strip the only
// confirmed admin identity).
func (s *Service) UpdateAccount(ctx context.Context, rawRefresh string, upd AccountUpdate) (token.Pair, error) {
	claims, err := s.tokens.VerifyRefresh(rawRefresh)
	if err != nil {
		return token.Pair{}, err
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return token.Pair{}, err
	}

	patch := repository.UserPatch{DisplayName: upd.DisplayName}
	if upd.Password != nil {
		hash, err := utils.HashPassword(*upd.Password, s.cfg.BcryptCost)
		if err != nil {
			return token.Pair{}, err
		}
		patch.PasswordHash = &hash
	}
	if upd.Email != nil && !strings.EqualFold(strings.TrimSpace(*upd.Email), u.Email) {
		last, err := s.IsLastAdmin(ctx, u.ID)
		if err != nil {
			return token.Pair{}, err
		}
		if last {
			return token.Pair{}, ErrLastAdmin
		}
		confirmToken := uuid.NewString()
		inactive := false
		patch.Email = upd.Email
		patch.IsActive = &inactive
		patch.EmailConfirmationToken = &sql.NullString{String: confirmToken, Valid: true}
		if err := s.mail.SendConfirmEmail(ctx, strings.ToLower(strings.TrimSpace(*upd.Email)), confirmToken); err != nil {
			log.Printf("auth: confirmation mail for %s not queued: %v", *upd.Email, err)
		}
	}

	updated, err := s.users.Update(ctx, u.ID, patch)
	if err != nil {
		return token.Pair{}, err
	}
	return s.tokens.Pair(updated)
}

// DeleteAccount removes the caller's own account. Self-deletion can be
// switched off entirely; the last administrator can never delete itself.
func (s *Service) DeleteAccount(ctx context.Context, rawRefresh, email, password string) error {
	if !s.cfg.CanDeleteSelfAccount {
		return ErrSelfDeleteDisabled
	}
	claims, err := s.tokens.VerifyRefresh(rawRefresh)
	if err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(email), u.Email) {
		return ErrNotSelfAccount
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return ErrPasswordMismatch
	}
	last, err := s.IsLastAdmin(ctx, u.ID)
	if err != nil {
		return err
	}
	if last {
		return ErrLastAdmin
	}
	return s.users.Delete(ctx, u.ID)
}

// IsLastAdmin reports whether the user is the only holder of the admin
// role. The read-then-act window between this check and the following
// mutation is accepted.
func (s *Service) IsLastAdmin(ctx context.Context, userID uint64) (bool, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if u.Role != s.cfg.AdminRole {
		return false, nil
	}
	n, err := s.users.CountByRole(ctx, s.cfg.AdminRole)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// AdminRole exposes the configured admin role code for callers that need
// to guard role changes.
func (s *Service) AdminRole() string { return s.cfg.AdminRole }
