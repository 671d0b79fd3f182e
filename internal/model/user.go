package model

import "time"

// User mirrors the `users` table. Email is unique and stored lowercase.
// The two token columns are nullable and single-use:
// EmailConfirmationToken is set on creation and cleared when the account
// is confirmed, ResetPasswordToken is set when a reset link is requested
// and cleared when the link is visited.
type User struct {
	ID                     uint64
	Email                  string
	PasswordHash           string
	Role                   string
	IsActive               bool
	EmailConfirmationToken *string
	ResetPasswordToken     *string
	DisplayName            string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Role mirrors the `roles` table. Default roles are seeded at startup and
// immutable: delete/update of an is_default row is rejected before any
// mutation happens.
type Role struct {
	Code        string
	Description string
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
