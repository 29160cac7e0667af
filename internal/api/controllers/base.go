package controllers

import (
	"net/http"
	"strconv"

	"panveliq/internal/api/response"
	"panveliq/internal/services"

	"github.com/labstack/echo/v4"
)

// BaseController provides generic CRUD operations for any model
type BaseController[T any] struct {
	service services.BaseService[T]
}

// NewBaseController creates a new base controller
func NewBaseController[T any](service services.BaseService[T]) *BaseController[T] {
	return &BaseController[T]{
		service: service,
	}
}

// Create handles creation of new entities
func (c *BaseController[T]) Create(ctx echo.Context) error {
	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return response.BadRequest(ctx, "invalid request body")
	}

	if err := ctx.Validate(&entity); err != nil {
		return response.BadRequest(ctx, err.Error())
	}

	if err := c.service.Create(ctx.Request().Context(), &entity); err != nil {
		return response.Internal(ctx, "failed to create record")
	}

	return response.Created(ctx, entity)
}

// Get handles retrieval of a single entity
func (c *BaseController[T]) Get(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return response.BadRequest(ctx, "missing id parameter")
	}

	entity, err := c.service.Get(ctx.Request().Context(), id)
	if err != nil {
		return response.NotFound(ctx, "record not found")
	}

	return response.OK(ctx, entity)
}

// List handles retrieval of multiple entities with pagination and filtering
func (c *BaseController[T]) List(ctx echo.Context) error {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filters := make(map[string]interface{})
	for key, values := range ctx.QueryParams() {
		if key != "page" && key != "limit" && len(values) > 0 {
			filters[key] = values[0]
		}
	}

	entities, total, err := c.service.List(ctx.Request().Context(), page, limit, filters)
	if err != nil {
		return response.Internal(ctx, "failed to list records")
	}

	return response.Paginated(ctx, entities, page, limit, total)
}

// Update handles updating an existing entity
func (c *BaseController[T]) Update(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return response.BadRequest(ctx, "missing id parameter")
	}

	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return response.BadRequest(ctx, "invalid request body")
	}

	if err := ctx.Validate(&entity); err != nil {
		return response.BadRequest(ctx, err.Error())
	}

	if err := c.service.Update(ctx.Request().Context(), id, &entity); err != nil {
		return response.Internal(ctx, "failed to update record")
	}

	return response.OK(ctx, entity)
}

// Delete handles deletion of an entity
func (c *BaseController[T]) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return response.BadRequest(ctx, "missing id parameter")
	}

	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return response.Internal(ctx, "failed to delete record")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RegisterRoutes registers CRUD routes for the controller
func (c *BaseController[T]) RegisterRoutes(g *echo.Group, path string, methods ...string) {
	if len(methods) == 0 {
		methods = []string{"POST", "GET", "PUT", "DELETE"}
	}

	for _, method := range methods {
		switch method {
		case "POST":
			g.POST(path, c.Create)
		case "GET":
			g.GET(path+"/:id", c.Get)
			g.GET(path, c.List)
		case "PUT":
			g.PUT(path+"/:id", c.Update)
		case "DELETE":
			g.DELETE(path+"/:id", c.Delete)
		}
	}
}
