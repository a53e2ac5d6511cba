package api

import (
	"net/http"

	reqdto "allegro-autopilot/internal/handler/dto/request"
	resdto "allegro-autopilot/internal/handler/dto/response"
	"allegro-autopilot/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// AutomationHandler exposes manual triggers for the automation loops and
// the inbound stock feed. The scheduler drives the same commands on a timer.
type AutomationHandler struct {
	repricing commands.RepricingCommands
	inventory commands.InventoryCommands
	disputes  commands.DisputeCommands
}

func NewAutomationHandler(
	repricing commands.RepricingCommands,
	inventory commands.InventoryCommands,
	disputes commands.DisputeCommands,
) *AutomationHandler {
	return &AutomationHandler{
		repricing: repricing,
		inventory: inventory,
		disputes:  disputes,
	}
}

// @Summary Run repricing
// @Description Evaluate every listing under its configured strategy
// @Tags automation
// @Security BearerAuth
// @Produce json
// @Success 200 {object} resdto.RunSummaryResponse
// @Failure 500 {object} map[string]string
// @Router /automation/repricing/run [post]
func (h *AutomationHandler) RunRepricing(c *gin.Context) {
	summary, err := h.repricing.Run(c.Request.Context(), nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Repricing run failed",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromRunSummary(summary))
}

// @Summary Synchronize stock
// @Description Apply a stock feed and push visibility changes to the marketplace
// @Tags automation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.StockFeedRequest true "Stock feed"
// @Success 200 {object} resdto.RunSummaryResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /automation/inventory/run [post]
func (h *AutomationHandler) RunInventory(c *gin.Context) {
	var req reqdto.StockFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	summary, err := h.inventory.Run(c.Request.Context(), req.ToCommand())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Inventory run failed",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromRunSummary(summary))
}

// @Summary Sweep disputes
// @Description Advance every non-terminal dispute by at most one transition
// @Tags automation
// @Security BearerAuth
// @Produce json
// @Success 200 {object} resdto.RunSummaryResponse
// @Failure 500 {object} map[string]string
// @Router /automation/disputes/sweep [post]
func (h *AutomationHandler) SweepDisputes(c *gin.Context) {
	summary, err := h.disputes.Sweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Dispute sweep failed",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromRunSummary(summary))
}
