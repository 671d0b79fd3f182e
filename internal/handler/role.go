package handler

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"

	"user-admin-service/internal/auth"
	"user-admin-service/internal/model"
)

// Role codes are lowercase-only; they double as configuration keys.
var roleCodePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// RoleHandler implements the role CRUD. Seeded default roles are
// immutable; the store rejects update/delete on them before any mutation.
type RoleHandler struct {
	Roles auth.RoleStore
}

func NewRoleHandler(roles auth.RoleStore) *RoleHandler {
	return &RoleHandler{Roles: roles}
}

type createRoleReq struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
type updateRoleReq struct {
	Description string `json:"description"`
}

type roleResponse struct {
	Code        string    `json:"code"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toRoleResponse(r model.Role) roleResponse {
	return roleResponse{
		Code:        r.Code,
		Description: r.Description,
		IsDefault:   r.IsDefault,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Create: add a role. Client-created roles are never default.
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !roleCodePattern.MatchString(req.Code) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role code must be lowercase"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	role, err := h.Roles.Create(ctx, model.Role{Code: req.Code, Description: req.Description})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toRoleResponse(role))
}

// List: all roles.
func (h *RoleHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	roles, err := h.Roles.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

// GetByCode: fetch one role.
func (h *RoleHandler) GetByCode(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	role, err := h.Roles.GetByCode(ctx, c.Param("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}

// Update: change a role's description. Default roles are immutable.
func (h *RoleHandler) Update(c echo.Context) error {
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	role, err := h.Roles.UpdateByCode(ctx, c.Param("code"), req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}

// Delete: remove a role. Default roles are immutable.
func (h *RoleHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Roles.DeleteByCode(ctx, c.Param("code")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Role deleted"})
}
