package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"user-admin-service/internal/auth"
	"user-admin-service/internal/model"
	"user-admin-service/internal/repository"
	"user-admin-service/internal/utils"
)

// UserHandler implements the admin user CRUD. Routes are guarded by the
// module access + active-account middleware; the handler itself enforces
// the last-admin invariant on destructive updates.
type UserHandler struct {
	Svc        *auth.Service
	Users      auth.UserStore
	Roles      auth.RoleStore
	BcryptCost int
}

func NewUserHandler(svc *auth.Service, users auth.UserStore, roles auth.RoleStore, bcryptCost int) *UserHandler {
	return &UserHandler{Svc: svc, Users: users, Roles: roles, BcryptCost: bcryptCost}
}

type createUserReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
}

type updateUserReq struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Role        *string `json:"role"`
	IsActive    *bool   `json:"isActive"`
	DisplayName *string `json:"displayName"`
}

// userResponse is what leaves the service; the password hash and pending
// one-time tokens never do.
type userResponse struct {
	ID          uint64    `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"isActive"`
	DisplayName string    `json:"displayName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// userID parses the :id param. Anything unparsable behaves like a missing
// user.
func userID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// Create: admin-create an account. Same path as self-registration: the
// account starts inactive with a confirmation token and the confirmation
// email is queued.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password/role required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Svc.CreateUser(ctx, auth.CreateUser{
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(u))
}

// Find: list users, optionally filtered by email or display name.
func (h *UserHandler) Find(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx, repository.UserFilter{
		Email:       c.QueryParam("email"),
		DisplayName: c.QueryParam("displayName"),
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

// GetOne: fetch a single user by id.
func (h *UserHandler) GetOne(c echo.Context) error {
	id, ok := userID(c)
	if !ok {
		return respondError(c, auth.ErrUserNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// Update: admin patch of a user. Demoting, deactivating or re-addressing
// the last administrator is rejected; a role change must name an existing
// role.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := userID(c)
	if !ok {
		return respondError(c, auth.ErrUserNotFound)
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	current, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	last, err := h.Svc.IsLastAdmin(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if last {
		demoted := req.Role != nil && *req.Role != h.Svc.AdminRole()
		deactivated := req.IsActive != nil && !*req.IsActive
		readdressed := req.Email != nil && !strings.EqualFold(strings.TrimSpace(*req.Email), current.Email)
		if demoted || deactivated || readdressed {
			return respondError(c, auth.ErrLastAdmin)
		}
	}

	if req.Role != nil {
		exists, err := h.Roles.Exists(ctx, *req.Role)
		if err != nil {
			return respondError(c, err)
		}
		if !exists {
			return respondError(c, repository.ErrNotFound)
		}
	}

	patch := repository.UserPatch{
		Email:       req.Email,
		Role:        req.Role,
		IsActive:    req.IsActive,
		DisplayName: req.DisplayName,
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password, h.BcryptCost)
		if err != nil {
			return respondError(c, err)
		}
		patch.PasswordHash = &hash
	}

	updated, err := h.Users.Update(ctx, id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// Delete: remove a user. The last administrator cannot be deleted.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := userID(c)
	if !ok {
		return respondError(c, auth.ErrUserNotFound)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	last, err := h.Svc.IsLastAdmin(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if last {
		return respondError(c, auth.ErrLastAdmin)
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted"})
}
