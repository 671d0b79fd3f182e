// Package repository implements MySQL persistence for users and roles.
// Sentinel errors defined here let handlers translate failure scenarios
// into HTTP status codes without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when the requested user or role does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating or updating a user would
// duplicate an email address.
var ErrEmailExists = errors.New("email already exists")

// ErrRoleExists is returned when creating a role whose code is taken.
var ErrRoleExists = errors.New("role already exists")

// ErrDefaultRoleImmutable is returned when a delete or update targets a
// seeded default role. The check runs before any mutation.
var ErrDefaultRoleImmutable = errors.New("default role cannot be modified")
