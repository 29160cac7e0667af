package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"panveliq/internal/api/controllers"
	"panveliq/internal/api/response"
	"panveliq/internal/events"
	"panveliq/internal/models"
	"panveliq/internal/services"
	"panveliq/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var plannerLog = logger.New("planner")

// PlannerHandler is the Project Planner surface: the proposal wizard,
// generated proposal bodies, autosave, export and share links.
type PlannerHandler struct {
	db        *gorm.DB
	proposals *services.ProposalService
	storage   *services.S3Service
	crud      *controllers.BaseController[models.ProjectProposal]
}

func NewPlannerHandler(db *gorm.DB, storage *services.S3Service) *PlannerHandler {
	return &PlannerHandler{
		db:        db,
		proposals: services.NewProposalService(db),
		storage:   storage,
		crud: controllers.NewBaseController(services.NewBaseService(db, models.ProjectProposal{},
			"status", "industry", "company")),
	}
}

type wizardStepRequest struct {
	Current int                  `json:"current" validate:"required,min=1,max=3"`
	Target  int                  `json:"target" validate:"required,min=1,max=3"`
	Input   services.WizardInput `json:"input"`
}

// WizardStep validates a step transition. Forward moves are gated on the
// current step's required fields; backward moves always succeed.
func (h *PlannerHandler) WizardStep(c echo.Context) error {
	var req wizardStepRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	step, err := services.AdvanceWizard(req.Current, req.Target, &req.Input)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	return response.OK(c, map[string]int{"step": step})
}

type createProposalRequest struct {
	services.WizardInput
}

// CreateProposal runs the full wizard validation, generates the proposal
// sections and renders the initial body.
func (h *PlannerHandler) CreateProposal(c echo.Context) error {
	var req createProposalRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := services.ValidateWizardStep(services.WizardStepReview, &req.WizardInput); err != nil {
		return response.BadRequest(c, err.Error())
	}

	proposal := models.ProjectProposal{
		ProspectName:  req.ProspectName,
		ProspectEmail: req.ProspectEmail,
		Company:       req.Company,
		Industry:      req.Industry,
		Budget:        req.Budget,
		Goals:         req.Goals,
		Status:        models.ProposalStatusDraft,
	}

	sections := services.GenerateSections(&req.WizardInput)
	if err := services.ApplySections(&proposal, sections); err != nil {
		return response.Internal(c, "failed to build proposal")
	}

	html, err := services.RenderProposalHTML(&proposal)
	if err != nil {
		return response.Internal(c, "failed to render proposal")
	}
	proposal.ContentHTML = html

	if err := h.db.WithContext(c.Request().Context()).Create(&proposal).Error; err != nil {
		plannerLog.Error("proposal creation failed", err)
		return response.Internal(c, "failed to create proposal")
	}
	return response.Created(c, proposal)
}

// Regenerate rebuilds the proposal sections from a raw generator payload,
// normalizing whatever key casing it arrived with.
func (h *PlannerHandler) Regenerate(c echo.Context) error {
	var proposal models.ProjectProposal
	if err := h.db.First(&proposal, "id = ? AND is_deleted = ?", c.Param("id"), false).Error; err != nil {
		return response.NotFound(c, "proposal not found")
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	sections, err := services.NormalizeProposalPayload(raw)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	if err := services.ApplySections(&proposal, sections); err != nil {
		return response.Internal(c, "failed to apply proposal sections")
	}

	html, err := services.RenderProposalHTML(&proposal)
	if err != nil {
		return response.Internal(c, "failed to render proposal")
	}
	proposal.ContentHTML = html

	if err := h.db.Save(&proposal).Error; err != nil {
		return response.Internal(c, "failed to save proposal")
	}
	return response.OK(c, proposal)
}

type autosaveRequest struct {
	ContentHTML string `json:"contentHtml" validate:"required"`
}

// Autosave persists the editable proposal body. Failures are reported, not
// swallowed, so the editor can show save state truthfully.
func (h *PlannerHandler) Autosave(c echo.Context) error {
	var req autosaveRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	err := h.proposals.SaveContent(c.Param("id"), req.ContentHTML)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NotFound(c, "proposal not found")
	case err != nil:
		plannerLog.Error("autosave failed", err)
		return response.Internal(c, "failed to save proposal content")
	}
	return response.Message(c, "saved")
}

// Export streams the rendered proposal as an attachment. A copy is kept
// in object storage and its key recorded on the proposal.
func (h *PlannerHandler) Export(c echo.Context) error {
	var proposal models.ProjectProposal
	if err := h.db.First(&proposal, "id = ? AND is_deleted = ?", c.Param("id"), false).Error; err != nil {
		return response.NotFound(c, "proposal not found")
	}

	html, err := services.RenderProposalHTML(&proposal)
	if err != nil {
		return response.Internal(c, "failed to render proposal")
	}

	ctx := c.Request().Context()
	filename := fmt.Sprintf("proposal-%s.html", proposal.ID)
	key, err := h.storage.UploadFile(ctx, strings.NewReader(html), filename, "text/html")
	if err != nil {
		plannerLog.Warn("failed to archive export for %s: %v", proposal.ID, err)
	} else if err := h.db.Model(&proposal).Update("export_key", key).Error; err != nil {
		plannerLog.Warn("failed to record export key for %s: %v", proposal.ID, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "text/html", []byte(html))
}

// CreateShareLink mints a public share token.
func (h *PlannerHandler) CreateShareLink(c echo.Context) error {
	link, err := h.proposals.CreateShareLink(c.Param("id"))
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return response.NotFound(c, "proposal not found")
	case err != nil:
		return response.Internal(c, "failed to create share link")
	}
	return response.Created(c, link)
}

// SendProposal marks the proposal sent and notifies the mailer.
func (h *PlannerHandler) SendProposal(c echo.Context) error {
	var proposal models.ProjectProposal
	if err := h.db.First(&proposal, "id = ? AND is_deleted = ?", c.Param("id"), false).Error; err != nil {
		return response.NotFound(c, "proposal not found")
	}
	if proposal.ProspectEmail == "" {
		return response.BadRequest(c, "proposal has no prospect email")
	}
	if proposal.Status == models.ProposalStatusSent {
		return response.Fail(c, http.StatusConflict, "proposal has already been sent")
	}

	if err := h.db.Model(&proposal).Update("status", models.ProposalStatusSent).Error; err != nil {
		return response.Internal(c, "failed to send proposal")
	}
	proposal.Status = models.ProposalStatusSent

	events.Emit("proposal.sent", &proposal)
	return response.OK(c, proposal)
}

// RegisterRoutes wires the Project Planner surface.
func (h *PlannerHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/wizard/step", h.WizardStep)
	g.POST("/proposals", h.CreateProposal)
	g.GET("/proposals", h.crud.List)
	g.GET("/proposals/:id", h.crud.Get)
	g.PUT("/proposals/:id", h.crud.Update)
	g.DELETE("/proposals/:id", h.crud.Delete)
	g.POST("/proposals/:id/regenerate", h.Regenerate)
	g.PUT("/proposals/:id/content", h.Autosave)
	g.GET("/proposals/:id/export", h.Export)
	g.POST("/proposals/:id/share-links", h.CreateShareLink)
	g.POST("/proposals/:id/send", h.SendProposal)
}
