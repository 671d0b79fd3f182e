// Package app holds startup initialization that runs once after the
// database is migrated and before the server accepts requests.
package app

import (
	"context"
	"errors"
	"log"

	"user-admin-service/internal/auth"
	"user-admin-service/internal/model"
	"user-admin-service/internal/repository"
	"user-admin-service/internal/utils"
)

// Seed configures the initial role and admin seeding.
type Seed struct {
	AdminRole     string
	UserRole      string
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
}

// Initialize seeds the two default roles and the administrator account.
// Existing rows are left untouched, so restarts are safe.
func Initialize(ctx context.Context, roles auth.RoleStore, users auth.UserStore, seed Seed) error {
	if err := roles.Initialize(ctx, seed.AdminRole, "God mode role", true); err != nil {
		return err
	}
	if err := roles.Initialize(ctx, seed.UserRole, "Base access role", true); err != nil {
		return err
	}

	_, err := users.GetByEmail(ctx, seed.AdminEmail)
	if err == nil {
		return nil // admin already present
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(seed.AdminPassword, seed.BcryptCost)
	if err != nil {
		return err
	}
	// Seeded directly as active: there is nobody to confirm the first
	// admin's email yet.
	if _, err := users.Create(ctx, model.User{
		Email:        seed.AdminEmail,
		PasswordHash: hash,
		Role:         seed.AdminRole,
		IsActive:     true,
	}); err != nil {
		return err
	}
	log.Printf("app: seeded administrator account %s", seed.AdminEmail)
	return nil
}
