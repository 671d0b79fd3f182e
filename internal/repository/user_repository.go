package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"user-admin-service/internal/model"
)

const userColumns = "id,email,password_hash,role,is_active,email_confirmation_token,reset_password_token,display_name,created_at,updated_at"

// UserRepo persists users.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// UserPatch describes a partial update. Nil fields are left untouched.
// The token fields use sql.NullString so a patch can distinguish "set to
// NULL" (one-time token consumed) from "leave as is".
type UserPatch struct {
	Email                  *string
	PasswordHash           *string
	Role                   *string
	IsActive               *bool
	DisplayName            *string
	EmailConfirmationToken *sql.NullString
	ResetPasswordToken     *sql.NullString
}

// UserFilter narrows List results. Empty fields match everything.
type UserFilter struct {
	Email       string
	DisplayName string
}

// Create inserts a user and returns its ID. The caller supplies an already
// hashed password.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, is_active, email_confirmation_token, display_name) VALUES (?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.Role, u.IsActive, nullable(u.EmailConfirmationToken), emptyToNull(u.DisplayName))
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getWhere(ctx, "email=?", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getWhere(ctx, "id=?", id)
}

// GetByConfirmationToken fetches the user holding a pending email
// confirmation token.
func (r *UserRepo) GetByConfirmationToken(ctx context.Context, token string) (model.User, error) {
	return r.getWhere(ctx, "email_confirmation_token=?", token)
}

// GetByResetToken fetches the user holding a pending password reset token.
func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (model.User, error) {
	return r.getWhere(ctx, "reset_password_token=?", token)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, arg any) (model.User, error) {
	var (
		u            model.User
		confirmToken sql.NullString
		resetToken   sql.NullString
		displayName  sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
			&confirmToken, &resetToken, &displayName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	if confirmToken.Valid {
		u.EmailConfirmationToken = &confirmToken.String
	}
	if resetToken.Valid {
		u.ResetPasswordToken = &resetToken.String
	}
	u.DisplayName = displayName.String
	return u, nil
}

// Update applies a patch and returns the updated record.
func (r *UserRepo) Update(ctx context.Context, id uint64, p UserPatch) (model.User, error) {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	if p.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if p.PasswordHash != nil {
		sets = append(sets, "password_hash=?")
		args = append(args, *p.PasswordHash)
	}
	if p.Role != nil {
		sets = append(sets, "role=?")
		args = append(args, *p.Role)
	}
	if p.IsActive != nil {
		sets = append(sets, "is_active=?")
		args = append(args, *p.IsActive)
	}
	if p.DisplayName != nil {
		sets = append(sets, "display_name=?")
		args = append(args, emptyToNull(*p.DisplayName))
	}
	if p.EmailConfirmationToken != nil {
		sets = append(sets, "email_confirmation_token=?")
		args = append(args, *p.EmailConfirmationToken)
	}
	if p.ResetPasswordToken != nil {
		sets = append(sets, "reset_password_token=?")
		args = append(args, *p.ResetPasswordToken)
	}
	if len(sets) > 0 {
		args = append(args, id)
		_, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
		if err != nil {
			if isDuplicate(err) {
				return model.User{}, ErrEmailExists
			}
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user by id.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns users matching the filter, newest first.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.User, error) {
	where := "1=1"
	args := []any{}
	if f.Email != "" {
		where += " AND email LIKE ?"
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(f.Email))+"%")
	}
	if f.DisplayName != "" {
		where += " AND display_name LIKE ?"
		args = append(args, "%"+f.DisplayName+"%")
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" ORDER BY id DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var (
			u            model.User
			confirmToken sql.NullString
			resetToken   sql.NullString
			displayName  sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
			&confirmToken, &resetToken, &displayName, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if confirmToken.Valid {
			u.EmailConfirmationToken = &confirmToken.String
		}
		if resetToken.Valid {
			u.ResetPasswordToken = &resetToken.String
		}
		u.DisplayName = displayName.String
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountByRole returns how many users currently hold the role.
func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role=?", role).Scan(&n)
	return n, err
}

// isDuplicate detects MySQL error 1062 (duplicate entry).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func emptyToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
