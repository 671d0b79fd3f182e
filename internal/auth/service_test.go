package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-admin-service/internal/auth/authtest"
	"user-admin-service/internal/model"
	"user-admin-service/internal/repository"
	"user-admin-service/internal/token"
	"user-admin-service/internal/utils"
)

type fixture struct {
	svc    *Service
	users  *authtest.MemUsers
	roles  *authtest.MemRoles
	mailer *authtest.MemMailer
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
	svc := NewService(users, roles, mailer, issuer, Config{
		AdminRole:            "admin",
		UserRole:             "user",
		BcryptCost:           4,
		CanDeleteSelfAccount: true,
	})
	return &fixture{svc: svc, users: users, roles: roles, mailer: mailer}
}

// seedUser creates an active account directly in the store.
func (f *fixture) seedUser(t *testing.T, email, password, role string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	id, err := f.users.Create(context.Background(), model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		DisplayName:  "Seeded",
	})
	require.NoError(t, err)
	u, err := f.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func TestValidateUser(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice@x.com", "secret", "user")
	ctx := context.Background()

	u, err := f.svc.ValidateUser(ctx, "alice@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", u.Email)

	_, err = f.svc.ValidateUser(ctx, "alice@x.com", "wrong")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	_, err = f.svc.ValidateUser(ctx, "nobody@x.com", "secret")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "alice@x.com", "secret", "admin")

	pair, err := f.svc.Login(context.Background(), "alice@x.com", "secret")
	require.NoError(t, err)

	claims, err := f.svc.Tokens().VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.IsActive)

	refresh, err := f.svc.Tokens().VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, refresh.UserID)
}

func TestRefreshRotatesPair(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "alice@x.com", "secret", "user")
	ctx := context.Background()

	raw, err := f.svc.Tokens().RefreshToken(u.ID)
	require.NoError(t, err)

	pair, err := f.svc.Refresh(ctx, raw)
	require.NoError(t, err)
	claims, err := f.svc.Tokens().VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = f.svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, token.ErrTokenInvalid)

	// Token for an account that no longer exists.
	gone, err := f.svc.Tokens().RefreshToken(9999)
	require.NoError(t, err)
	_, err = f.svc.Refresh(ctx, gone)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegisterCreatesInactiveAccountAndQueuesMail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, pair, err := f.svc.Register(ctx, "Bob@X.com", "secret", "Bob")
	require.NoError(t, err)

	assert.Equal(t, "bob@x.com", u.Email)
	assert.Equal(t, "user", u.Role)
	assert.False(t, u.IsActive)
	require.NotNil(t, u.EmailConfirmationToken)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "bob@x.com", sent[0].To)
	assert.Equal(t, "confirmation", sent[0].Template)
	assert.Equal(t, *u.EmailConfirmationToken, sent[0].Token)

	_, _, err = f.svc.Register(ctx, "bob@x.com", "other", "Bob II")
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateUser(context.Background(), CreateUser{
		Email:    "carol@x.com",
		Password: "secret",
		Role:     "ghost",
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateUserMailFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t)
	f.mailer.Err = assert.AnError

	u, err := f.svc.CreateUser(context.Background(), CreateUser{
		Email:    "carol@x.com",
		Password: "secret",
		Role:     "user",
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
}

func TestConfirmEmailIsSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, _, err := f.svc.Register(ctx, "bob@x.com", "secret", "Bob")
	require.NoError(t, err)
	confirmToken := *u.EmailConfirmationToken

	confirmed, err := f.svc.ConfirmEmail(ctx, confirmToken)
	require.NoError(t, err)
	assert.True(t, confirmed.IsActive)
	assert.Nil(t, confirmed.EmailConfirmationToken)

	_, err = f.svc.ConfirmEmail(ctx, confirmToken)
	assert.ErrorIs(t, err, ErrInvalidConfirmationToken)
}

func TestRequestPasswordReset(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "alice@x.com", "secret", "user")
	ctx := context.Background()

	// Unknown email: silently a no-op.
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "nobody@x.com"))
	assert.Empty(t, f.mailer.Sent())

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@x.com"))
	stored, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetPasswordToken)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "reset-password", sent[0].Template)
	assert.Equal(t, *stored.ResetPasswordToken, sent[0].Token)
}

func TestConsumeResetTokenIsSingleUse(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "alice@x.com", "secret", "user")
	ctx := context.Background()
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@x.com"))
	stored, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	resetToken := *stored.ResetPasswordToken

	consumed, err := f.svc.ConsumeResetToken(ctx, resetToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, consumed.ID)
	assert.Nil(t, consumed.ResetPasswordToken)

	_, err = f.svc.ConsumeResetToken(ctx, resetToken)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "alice@x.com", "old-secret", "user")
	ctx := context.Background()

	pair, err := f.svc.ChangePassword(ctx, "alice@x.com", "new-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	stored, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(stored.PasswordHash, "new-secret"))
	assert.False(t, utils.VerifyPassword(stored.PasswordHash, "old-secret"))

	_, err = f.svc.ChangePassword(ctx, "nobody@x.com", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateAccountDisplayName(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "alice@x.com", "secret", "user")
	raw, err := f.svc.Tokens().RefreshToken(u.ID)
	require.NoError(t, err)

	name := "Alice L."
	_, err = f.svc.UpdateAccount(context.Background(), raw, AccountUpdate{DisplayName: &name})
	require.NoError(t, err)

	stored, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice L.", stored.DisplayName)
	assert.True(t, stored.IsActive)
}

func TestUpdateAccountEmailChangeRequiresReconfirmation(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "root@x.com", "secret", "admin")
	u := f.seedUser(t, "alice@x.com", "secret", "user")
	raw, err := f.svc.Tokens().RefreshToken(u.ID)
	require.NoError(t, err)

	email := "alice@new.com"
	_, err = f.svc.UpdateAccount(context.Background(), raw, AccountUpdate{Email: &email})
	require.NoError(t, err)

	stored, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.com", stored.Email)
	assert.False(t, stored.IsActive)
	require.NotNil(t, stored.EmailConfirmationToken)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@new.com", sent[0].To)
	assert.Equal(t, "confirmation", sent[0].Template)
}

func TestUpdateAccountLastAdminCannotChangeEmail(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "root@x.com", "secret", "admin")
	raw, err := f.svc.Tokens().RefreshToken(u.ID)
	require.NoError(t, err)

	email := "root@new.com"
	_, err = f.svc.UpdateAccount(context.Background(), raw, AccountUpdate{Email: &email})
	assert.ErrorIs(t, err, ErrLastAdmin)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled by settings", func(t *testing.T) {
		f := newFixture(t)
		f.svc.cfg.CanDeleteSelfAccount = false
		u := f.seedUser(t, "alice@x.com", "secret", "user")
		raw, err := f.svc.Tokens().RefreshToken(u.ID)
		require.NoError(t, err)
		err = f.svc.DeleteAccount(ctx, raw, "alice@x.com", "secret")
		assert.ErrorIs(t, err, ErrSelfDeleteDisabled)
	})

	t.Run("email must match the caller", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t, "alice@x.com", "secret", "user")
		f.seedUser(t, "bob@x.com", "secret", "user")
		raw, err := f.svc.Tokens().RefreshToken(u.ID)
		require.NoError(t, err)
		err = f.svc.DeleteAccount(ctx, raw, "bob@x.com", "secret")
		assert.ErrorIs(t, err, ErrNotSelfAccount)
	})

	t.Run("password recheck", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t, "alice@x.com", "secret", "user")
		raw, err := f.svc.Tokens().RefreshToken(u.ID)
		require.NoError(t, err)
		err = f.svc.DeleteAccount(ctx, raw, "alice@x.com", "wrong")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("last admin is kept", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t, "root@x.com", "secret", "admin")
		raw, err := f.svc.Tokens().RefreshToken(u.ID)
		require.NoError(t, err)
		err = f.svc.DeleteAccount(ctx, raw, "root@x.com", "secret")
		assert.ErrorIs(t, err, ErrLastAdmin)
	})

	t.Run("deletes when another admin remains", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t, "root@x.com", "secret", "admin")
		f.seedUser(t, "second@x.com", "secret", "admin")
		raw, err := f.svc.Tokens().RefreshToken(u.ID)
		require.NoError(t, err)
		require.NoError(t, f.svc.DeleteAccount(ctx, raw, "root@x.com", "secret"))
		_, err = f.users.GetByID(ctx, u.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestIsLastAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedUser(t, "root@x.com", "secret", "admin")
	regular := f.seedUser(t, "alice@x.com", "secret", "user")

	last, err := f.svc.IsLastAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, last)

	last, err = f.svc.IsLastAdmin(ctx, regular.ID)
	require.NoError(t, err)
	assert.False(t, last)

	f.seedUser(t, "second@x.com", "secret", "admin")
	last, err = f.svc.IsLastAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.False(t, last)
}
