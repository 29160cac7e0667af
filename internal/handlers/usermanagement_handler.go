package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"panveliq/internal/api/middleware"
	"panveliq/internal/api/response"
	"panveliq/internal/models"
	"panveliq/internal/services"
	"panveliq/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var umLog = logger.New("user-management")

// UserManagementHandler is the admin user screen: listing, creation with
// employee-invite routing, the permission matrix, suspension and stats.
type UserManagementHandler struct {
	db    *gorm.DB
	users *services.UserService
	perms *services.PermissionService
}

func NewUserManagementHandler(db *gorm.DB) *UserManagementHandler {
	return &UserManagementHandler{
		db:    db,
		users: services.NewUserService(db),
		perms: services.NewPermissionService(db),
	}
}

// List pages users with role, status and search filters.
func (h *UserManagementHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filters := services.UserFilters{
		Role:   models.UserRole(c.QueryParam("role")),
		Status: models.UserStatus(c.QueryParam("status")),
		Search: c.QueryParam("search"),
	}

	users, total, err := h.users.List(c.Request().Context(), page, limit, filters)
	if err != nil {
		return response.Internal(c, "failed to list users")
	}
	return response.Paginated(c, users, page, limit, total)
}

// Create routes by role: employee roles are invited and start pending,
// others are created active.
func (h *UserManagementHandler) Create(c echo.Context) error {
	var input services.CreateUserInput
	if err := c.Bind(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	user, err := h.users.Create(c.Request().Context(), middleware.GetUserID(c), &input)
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidRole):
		return response.BadRequest(c, err.Error())
	case err != nil:
		umLog.Error("user creation failed", err)
		return response.Internal(c, "failed to create user")
	}
	return response.Created(c, user)
}

// Get loads one user with profile.
func (h *UserManagementHandler) Get(c echo.Context) error {
	var user models.User
	err := h.db.WithContext(c.Request().Context()).Preload("Profile").
		First(&user, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		return response.NotFound(c, "user not found")
	}
	return response.OK(c, user)
}

// PermissionGrid returns the matrix for one user: role-derived grants are
// informational, custom grants and revocations are editable.
func (h *UserManagementHandler) PermissionGrid(c echo.Context) error {
	grid, err := h.perms.Grid(c.Param("id"))
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NotFound(c, "user not found")
	case err != nil:
		return response.Internal(c, "failed to load permissions")
	}
	return response.OK(c, grid)
}

type saveGrantsRequest struct {
	PermissionIDs []string `json:"permissionIds"`
}

// SavePermissionGrid replaces a user's custom grant set. Role-derived ids
// in the request are ignored, every change is audited.
func (h *UserManagementHandler) SavePermissionGrid(c echo.Context) error {
	var req saveGrantsRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	err := h.perms.SaveCustomGrants(middleware.GetUserID(c), c.Param("id"), req.PermissionIDs)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NotFound(c, "user not found")
	case err != nil:
		umLog.Error("failed to save permission grid", err)
		return response.Internal(c, "failed to save permissions")
	}

	grid, err := h.perms.Grid(c.Param("id"))
	if err != nil {
		return response.Internal(c, "failed to load permissions")
	}
	return response.OK(c, grid)
}

type suspendRequest struct {
	Suspend bool `json:"suspend"`
}

// Suspend toggles suspension. Repeating the current state is a no-op that
// still lands in the audit trail.
func (h *UserManagementHandler) Suspend(c echo.Context) error {
	var req suspendRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	user, err := h.users.SetSuspended(c.Request().Context(), middleware.GetUserID(c), c.Param("id"), req.Suspend)
	switch {
	case errors.Is(err, services.ErrCannotSuspendSelf):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NotFound(c, "user not found")
	case err != nil:
		umLog.Error("suspension toggle failed", err)
		return response.Internal(c, "failed to update user")
	}
	return response.OK(c, user)
}

// Stats returns the header card counters.
func (h *UserManagementHandler) Stats(c echo.Context) error {
	stats, err := h.users.Stats(c.Request().Context())
	if err != nil {
		return response.Internal(c, "failed to load stats")
	}
	return response.OK(c, stats)
}

// Audit pages the access-control trail for one user.
func (h *UserManagementHandler) Audit(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}

	entries, total, err := h.users.AuditTrail(c.Request().Context(), c.Param("id"), page, limit)
	if err != nil {
		return response.Internal(c, "failed to load audit trail")
	}
	return response.Paginated(c, entries, page, limit, total)
}

// RegisterRoutes wires the user-management surface.
func (h *UserManagementHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/users", h.List)
	g.POST("/users", h.Create)
	g.GET("/users/stats", h.Stats)
	g.GET("/users/:id", h.Get)
	g.GET("/users/:id/permissions", h.PermissionGrid)
	g.PUT("/users/:id/permissions", h.SavePermissionGrid)
	g.POST("/users/:id/status", h.Suspend)
	g.GET("/users/:id/audit", h.Audit)
}
