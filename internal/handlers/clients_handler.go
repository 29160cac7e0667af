package handlers

import (
	"strconv"

	"panveliq/internal/api/response"
	"panveliq/internal/models"
	"panveliq/internal/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ClientsHandler serves the shared client pickers every page uses.
type ClientsHandler struct {
	db    *gorm.DB
	users *services.UserService
}

func NewClientsHandler(db *gorm.DB) *ClientsHandler {
	return &ClientsHandler{db: db, users: services.NewUserService(db)}
}

// List pages full client records with profiles.
func (h *ClientsHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filters := services.UserFilters{
		Role:   models.UserRoleClient,
		Search: c.QueryParam("search"),
	}
	clients, total, err := h.users.List(c.Request().Context(), page, limit, filters)
	if err != nil {
		return response.Internal(c, "failed to list clients")
	}
	return response.Paginated(c, clients, page, limit, total)
}

// DropdownList returns the minimal id, name, company rows the selects use.
func (h *ClientsHandler) DropdownList(c echo.Context) error {
	options, err := h.users.ClientOptions(c.Request().Context())
	if err != nil {
		return response.Internal(c, "failed to list clients")
	}
	return response.OK(c, options)
}

// RegisterRoutes wires the client picker endpoints.
func (h *ClientsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/list", h.List)
	g.GET("/dropdown-list", h.DropdownList)
}
