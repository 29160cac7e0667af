package handlers

import (
	"encoding/json"
	"errors"

	"panveliq/internal/api/controllers"
	"panveliq/internal/api/response"
	"panveliq/internal/models"
	"panveliq/internal/services"
	"panveliq/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var contentLog = logger.New("content")

// ContentHandler is the Content Intelligence surface: platform metadata,
// generation and the content library.
type ContentHandler struct {
	db   *gorm.DB
	crud *controllers.BaseController[models.ContentItem]
}

func NewContentHandler(db *gorm.DB) *ContentHandler {
	return &ContentHandler{
		db:   db,
		crud: controllers.NewBaseController(services.NewBaseService(db, models.ContentItem{},
			"client_id", "status", "type")),
	}
}

// Platforms returns the per-platform limit and tip tables the composer
// renders.
func (h *ContentHandler) Platforms(c echo.Context) error {
	return response.OK(c, services.PlatformLimits())
}

// Generate produces one variant per selected platform and stores the
// result as a draft library item.
func (h *ContentHandler) Generate(c echo.Context) error {
	var req services.GenerationRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	variants, err := services.Generate(&req)
	switch {
	case errors.Is(err, services.ErrNoPlatforms),
		errors.Is(err, services.ErrEmptyTopic),
		errors.Is(err, services.ErrMissingClient),
		errors.Is(err, services.ErrUnknownPlatform):
		return response.BadRequest(c, err.Error())
	case err != nil:
		return response.BadRequest(c, err.Error())
	}

	platformsJSON, err := json.Marshal(req.Platforms)
	if err != nil {
		return response.Internal(c, "failed to save content")
	}
	variantsJSON, err := json.Marshal(variants)
	if err != nil {
		return response.Internal(c, "failed to save content")
	}

	item := models.ContentItem{
		ClientID:  req.ClientID,
		Topic:     req.Topic,
		Type:      req.Type,
		Platforms: datatypes.JSON(platformsJSON),
		Tone:      req.Tone,
		Audience:  req.Audience,
		Variants:  datatypes.JSON(variantsJSON),
		Status:    models.ContentStatusDraft,
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&item).Error; err != nil {
		contentLog.Error("failed to persist generated content", err)
		return response.Internal(c, "failed to save content")
	}

	return response.Created(c, item)
}

type contentStatusRequest struct {
	Status models.ContentStatus `json:"status" validate:"required,oneof=draft approved published"`
}

// UpdateStatus moves a library item through draft, approved, published.
func (h *ContentHandler) UpdateStatus(c echo.Context) error {
	var req contentStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result := h.db.WithContext(c.Request().Context()).Model(&models.ContentItem{}).
		Where("id = ? AND is_deleted = ?", c.Param("id"), false).
		Update("status", req.Status)
	if result.Error != nil {
		return response.Internal(c, "failed to update status")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "content item not found")
	}
	return response.Message(c, "status updated")
}

// RegisterRoutes wires the Content Intelligence surface.
func (h *ContentHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/platforms", h.Platforms)
	g.POST("/generate", h.Generate)
	g.GET("/library", h.crud.List)
	g.GET("/library/:id", h.crud.Get)
	g.PUT("/library/:id", h.crud.Update)
	g.DELETE("/library/:id", h.crud.Delete)
	g.PUT("/library/:id/status", h.UpdateStatus)
}
