package repository

import (
	"context"
	"database/sql"
	"errors"

	"user-admin-service/internal/model"
)

// RoleRepo persists roles.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// Create inserts a role. Client-created roles are never default; the seeded
// defaults come in through Initialize only.
func (r *RoleRepo) Create(ctx context.Context, role model.Role) (model.Role, error) {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO roles (code, description, is_default) VALUES (?,?,0)",
		role.Code, role.Description)
	if err != nil {
		if isDuplicate(err) {
			return model.Role{}, ErrRoleExists
		}
		return model.Role{}, err
	}
	return r.GetByCode(ctx, role.Code)
}

// Initialize inserts a role if it does not exist yet. Used by the startup
// seeder; existing rows are left untouched.
func (r *RoleRepo) Initialize(ctx context.Context, code, description string, isDefault bool) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO roles (code, description, is_default) VALUES (?,?,?)",
		code, description, isDefault)
	return err
}

// GetByCode fetches a role by its code.
func (r *RoleRepo) GetByCode(ctx context.Context, code string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT code,description,is_default,created_at,updated_at FROM roles WHERE code=? LIMIT 1",
		code).Scan(&role.Code, &role.Description, &role.IsDefault, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Role{}, ErrNotFound
		}
		return model.Role{}, err
	}
	return role, nil
}

// Exists reports whether a role with the code is present.
func (r *RoleRepo) Exists(ctx context.Context, code string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM roles WHERE code=?", code).Scan(&n)
	return n > 0, err
}

// List returns all roles.
func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT code,description,is_default,created_at,updated_at FROM roles ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.Code, &role.Description, &role.IsDefault, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// UpdateByCode changes a role's description. Default roles are immutable;
// the check happens before the write.
func (r *RoleRepo) UpdateByCode(ctx context.Context, code, description string) (model.Role, error) {
	role, err := r.GetByCode(ctx, code)
	if err != nil {
		return model.Role{}, err
	}
	if role.IsDefault {
		return model.Role{}, ErrDefaultRoleImmutable
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE roles SET description=? WHERE code=?", description, code); err != nil {
		return model.Role{}, err
	}
	return r.GetByCode(ctx, code)
}

// DeleteByCode removes a role. Default roles are immutable.
func (r *RoleRepo) DeleteByCode(ctx context.Context, code string) error {
	role, err := r.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if role.IsDefault {
		return ErrDefaultRoleImmutable
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM roles WHERE code=?", code)
	return err
}
