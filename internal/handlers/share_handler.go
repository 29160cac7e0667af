package handlers

import (
	"errors"
	"net/http"

	"panveliq/internal/api/response"
	"panveliq/internal/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ShareHandler serves publicly shared proposals. No auth; the token is the
// capability.
type ShareHandler struct {
	proposals *services.ProposalService
}

func NewShareHandler(db *gorm.DB) *ShareHandler {
	return &ShareHandler{proposals: services.NewProposalService(db)}
}

// View renders the shared proposal and counts the view.
func (h *ShareHandler) View(c echo.Context) error {
	proposal, err := h.proposals.ResolveShareLink(c.Param("token"))
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, services.ErrShareLinkExpired):
		// Expired links look identical to unknown ones from outside.
		return response.NotFound(c, "share link not found")
	case err != nil:
		return response.Internal(c, "failed to load proposal")
	}

	html, err := services.RenderProposalHTML(proposal)
	if err != nil {
		return response.Internal(c, "failed to render proposal")
	}
	return c.HTML(http.StatusOK, html)
}

// RegisterRoutes wires the public share endpoint.
func (h *ShareHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/share/:token", h.View)
}
