package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"panveliq/internal/api/controllers"
	"panveliq/internal/api/response"
	"panveliq/internal/models"
	"panveliq/internal/services"
	"panveliq/internal/tasks"
	"panveliq/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var commLog = logger.New("communication")

// CommunicationHandler is the Communication Hub: campaigns, triggered
// flows, audience segments and delivery analytics.
type CommunicationHandler struct {
	db        *gorm.DB
	campaigns *services.CampaignService
	flows     *services.FlowService
	segments  *services.SegmentService

	campaignCRUD *controllers.BaseController[models.Campaign]
	flowCRUD     *controllers.BaseController[models.TriggeredFlow]
	segmentCRUD  *controllers.BaseController[models.AudienceSegment]
}

func NewCommunicationHandler(db *gorm.DB, client *tasks.TaskClient) *CommunicationHandler {
	return &CommunicationHandler{
		db:        db,
		campaigns: services.NewCampaignService(db, client),
		flows:     services.NewFlowService(db, client),
		segments:  services.NewSegmentService(db),

		campaignCRUD: controllers.NewBaseController(services.NewBaseService(db, models.Campaign{},
			"channel", "client_id", "status", "schedule_type")),
		flowCRUD: controllers.NewBaseController(services.NewBaseService(db, models.TriggeredFlow{},
			"trigger", "channel", "client_id", "is_active")),
		segmentCRUD: controllers.NewBaseController(services.NewBaseService(db, models.AudienceSegment{},
			"platform", "client_id")),
	}
}

// CreateCampaign resolves the chosen segment into a recipient snapshot
// before persisting. Segments with no usable recipients block creation.
func (h *CommunicationHandler) CreateCampaign(c echo.Context) error {
	var input services.CreateCampaignInput
	if err := c.Bind(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	campaign, err := h.campaigns.Create(c.Request().Context(), &input)
	switch {
	case errors.Is(err, services.ErrNoRecipients):
		return response.BadRequest(c, "the selected segment has no recipients for this channel")
	case errors.Is(err, services.ErrScheduledTimeRequired):
		return response.BadRequest(c, "scheduled campaigns need a future send time")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NotFound(c, "segment not found")
	case err != nil:
		commLog.Error("campaign creation failed", err)
		return response.Internal(c, "failed to create campaign")
	}

	return response.Created(c, campaign)
}

// SendCampaign queues a draft campaign for delivery.
func (h *CommunicationHandler) SendCampaign(c echo.Context) error {
	campaign, err := h.campaigns.Send(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NotFound(c, "campaign not found")
	case errors.Is(err, services.ErrCampaignNotSendable):
		return response.Fail(c, http.StatusConflict, err.Error())
	case err != nil:
		commLog.Error("campaign send failed", err)
		return response.Internal(c, "failed to queue campaign")
	}
	return response.OK(c, campaign)
}

// Analytics summarizes delivery stats, optionally scoped to one client.
func (h *CommunicationHandler) Analytics(c echo.Context) error {
	summary, err := h.campaigns.Analytics(c.Request().Context(), c.QueryParam("clientId"))
	if err != nil {
		return response.Internal(c, "failed to load analytics")
	}
	return response.OK(c, summary)
}

type createFlowRequest struct {
	Name     string                 `json:"name" validate:"required,min=2"`
	ClientID string                 `json:"clientId" validate:"required,uuid"`
	Trigger  models.FlowTrigger     `json:"trigger" validate:"required,oneof=signup segment_join campaign_open manual"`
	Channel  models.CampaignChannel `json:"channel" validate:"required,oneof=whatsapp email"`
	Steps    []models.FlowStep      `json:"steps" validate:"required"`
}

// CreateFlow validates the ordered step list before persisting.
func (h *CommunicationHandler) CreateFlow(c echo.Context) error {
	var req createFlowRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	if err := services.ValidateFlowSteps(req.Steps); err != nil {
		return response.BadRequest(c, err.Error())
	}

	steps, err := services.EncodeFlowSteps(req.Steps)
	if err != nil {
		return response.Internal(c, "failed to create flow")
	}

	flow := models.TriggeredFlow{
		Name:     req.Name,
		ClientID: req.ClientID,
		Trigger:  req.Trigger,
		Channel:  req.Channel,
		Steps:    steps,
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&flow).Error; err != nil {
		commLog.Error("flow creation failed", err)
		return response.Internal(c, "failed to create flow")
	}
	return response.Created(c, flow)
}

type toggleFlowRequest struct {
	Active bool `json:"active"`
}

// ToggleFlow flips a flow's active state.
func (h *CommunicationHandler) ToggleFlow(c echo.Context) error {
	var req toggleFlowRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	flow, err := h.flows.SetActive(c.Request().Context(), c.Param("id"), req.Active)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NotFound(c, "flow not found")
	case err != nil:
		return response.BadRequest(c, err.Error())
	}
	return response.OK(c, flow)
}

type runFlowRequest struct {
	Recipient string `json:"recipient" validate:"required"`
}

// RunFlow starts a manual flow run for one recipient.
func (h *CommunicationHandler) RunFlow(c echo.Context) error {
	var req runFlowRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	err := h.flows.Run(c.Request().Context(), c.Param("id"), req.Recipient)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NotFound(c, "flow not found")
	case errors.Is(err, services.ErrFlowInactive):
		return response.Fail(c, http.StatusConflict, err.Error())
	case err != nil:
		return response.BadRequest(c, err.Error())
	}
	return response.Message(c, "flow run queued")
}

// ImportPreview parses an uploaded contact file and returns the column
// list, first rows and total count without persisting anything.
func (h *CommunicationHandler) ImportPreview(c echo.Context) error {
	result, err := h.parseImport(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	return response.OK(c, map[string]interface{}{
		"columns":       result.Columns,
		"preview":       result.Preview(),
		"estimatedSize": result.EstimatedSize,
	})
}

// CreateSegment persists a segment, seeding contacts from an uploaded file
// when one is attached.
func (h *CommunicationHandler) CreateSegment(c echo.Context) error {
	input := services.CreateSegmentInput{
		Name:     c.FormValue("name"),
		ClientID: c.FormValue("clientId"),
		Platform: models.SegmentPlatform(c.FormValue("platform")),
	}
	if input.Platform == "" {
		input.Platform = models.SegmentPlatformAll
	}
	if err := c.Validate(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if _, err := c.FormFile("file"); err == nil {
		result, err := h.parseImport(c)
		if err != nil {
			return response.BadRequest(c, err.Error())
		}
		input.Import = result
	}

	segment, err := h.segments.CreateFromImport(c.Request().Context(), &input)
	if err != nil {
		commLog.Error("segment creation failed", err)
		return response.Internal(c, "failed to create segment")
	}
	return response.Created(c, segment)
}

// ImportTemplate serves the downloadable CSV template.
func (h *CommunicationHandler) ImportTemplate(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="contacts_template.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(services.ContactsCSVTemplate()))
}

func (h *CommunicationHandler) parseImport(c echo.Context) (*services.ImportResult, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, errors.New("missing file upload")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	defer src.Close()

	var result *services.ImportResult
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		result, err = services.ParseContactsCSV(src)
	case ".xlsx":
		result, err = services.ParseContactsXLSX(src)
	default:
		return nil, errors.New("unsupported file type, use .csv or .xlsx")
	}

	switch {
	case errors.Is(err, services.ErrEmptyImport):
		return nil, errors.New("the file has no data rows")
	case err != nil:
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	return result, nil
}

// ListSegmentContacts pages through a segment's expanded contact rows.
func (h *CommunicationHandler) ListSegmentContacts(c echo.Context) error {
	segmentID := c.Param("id")
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}

	query := h.db.WithContext(c.Request().Context()).Model(&models.SegmentContact{}).
		Where("segment_id = ? AND is_deleted = ?", segmentID, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.Internal(c, "failed to list contacts")
	}

	var contacts []models.SegmentContact
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&contacts).Error; err != nil {
		return response.Internal(c, "failed to list contacts")
	}
	return response.Paginated(c, contacts, page, limit, total)
}

// RegisterRoutes wires the Communication Hub surface.
func (h *CommunicationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/campaigns", h.CreateCampaign)
	g.GET("/campaigns", h.campaignCRUD.List)
	g.GET("/campaigns/:id", h.campaignCRUD.Get)
	g.PUT("/campaigns/:id", h.campaignCRUD.Update)
	g.DELETE("/campaigns/:id", h.campaignCRUD.Delete)
	g.POST("/campaigns/:id/send", h.SendCampaign)
	g.GET("/analytics", h.Analytics)

	g.POST("/flows", h.CreateFlow)
	g.GET("/flows", h.flowCRUD.List)
	g.GET("/flows/:id", h.flowCRUD.Get)
	g.PUT("/flows/:id", h.flowCRUD.Update)
	g.DELETE("/flows/:id", h.flowCRUD.Delete)
	g.PUT("/flows/:id/toggle", h.ToggleFlow)
	g.POST("/flows/:id/run", h.RunFlow)

	g.POST("/segments", h.CreateSegment)
	g.GET("/segments", h.segmentCRUD.List)
	g.GET("/segments/:id", h.segmentCRUD.Get)
	g.DELETE("/segments/:id", h.segmentCRUD.Delete)
	g.GET("/segments/:id/contacts", h.ListSegmentContacts)
	g.POST("/segments/import-preview", h.ImportPreview)
	g.GET("/segments/import-template", h.ImportTemplate)
}
