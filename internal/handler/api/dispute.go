package api

import (
	"context"
	"errors"
	"net/http"

	reqdto "allegro-autopilot/internal/handler/dto/request"
	resdto "allegro-autopilot/internal/handler/dto/response"
	"allegro-autopilot/internal/pkg/errs"
	"allegro-autopilot/internal/usecase/commands"
	"allegro-autopilot/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type DisputeHandler struct {
	disputeCommands commands.DisputeCommands
	disputeQueries  queries.DisputeQueries
}

func NewDisputeHandler(disputeCommands commands.DisputeCommands, disputeQueries queries.DisputeQueries) *DisputeHandler {
	return &DisputeHandler{
		disputeCommands: disputeCommands,
		disputeQueries:  disputeQueries,
	}
}

// @Summary List open disputes
// @Description List every non-terminal dispute with its countdown
// @Tags disputes
// @Security BearerAuth
// @Produce json
// @Success 200 {array} resdto.DisputeResponse
// @Failure 500 {object} map[string]string
// @Router /disputes [get]
func (h *DisputeHandler) List(c *gin.Context) {
	views, err := h.disputeQueries.ListOpen(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	out := make([]*resdto.DisputeResponse, 0, len(views))
	for _, v := range views {
		out = append(out, resdto.FromDisputeView(v))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Open dispute
// @Description Register an inbound dispute event from the marketplace
// @Tags disputes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.OpenDisputeRequest true "Dispute event"
// @Success 201 {object} resdto.DisputeResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /disputes [post]
func (h *DisputeHandler) Open(c *gin.Context) {
	var req reqdto.OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	d, err := h.disputeCommands.Open(c.Request.Context(), req.ToCommand())
	if err != nil {
		if errors.Is(err, errs.ErrDatabaseOperationFailed) {
			// Duplicate dispute ids land here via the unique constraint.
			c.JSON(http.StatusConflict, gin.H{
				"error": "Dispute already registered",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid dispute event",
		})
		return
	}

	c.JSON(http.StatusCreated, resdto.DisputeResponse{
		ID:                 d.ID(),
		OrderID:            d.OrderID(),
		Reason:             d.Reason(),
		Status:             string(d.Status()),
		OpenedAt:           d.OpenedAt(),
		Deadline:           d.Deadline(),
		AutoResolveEnabled: d.AutoResolveEnabled(),
	})
}

// @Summary Resolve dispute
// @Description Merchant marks the dispute as handled
// @Tags disputes
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /disputes/{id}/resolve [post]
func (h *DisputeHandler) Resolve(c *gin.Context) {
	h.transition(c, h.disputeCommands.Resolve)
}

// @Summary Escalate dispute
// @Description Record a repeated buyer complaint before the deadline
// @Tags disputes
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /disputes/{id}/escalate [post]
func (h *DisputeHandler) Escalate(c *gin.Context) {
	h.transition(c, h.disputeCommands.Escalate)
}

func (h *DisputeHandler) transition(c *gin.Context, op func(ctx context.Context, id string) error) {
	id := c.Param("id")

	err := op(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrDisputeNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Dispute not found",
			})
		case errors.Is(err, errs.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Dispute cannot transition from its current status",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
