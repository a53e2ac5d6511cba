package api

import (
	"net/http"
	"strconv"

	resdto "allegro-autopilot/internal/handler/dto/response"
	"allegro-autopilot/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the read side of the storefront console.
type DashboardHandler struct {
	listingQueries  queries.ListingQueries
	decisionQueries queries.DecisionQueries
}

func NewDashboardHandler(listingQueries queries.ListingQueries, decisionQueries queries.DecisionQueries) *DashboardHandler {
	return &DashboardHandler{
		listingQueries:  listingQueries,
		decisionQueries: decisionQueries,
	}
}

// @Summary List listings
// @Description List every managed listing with its buffer and strategy
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {array} resdto.ListingResponse
// @Failure 500 {object} map[string]string
// @Router /listings [get]
func (h *DashboardHandler) Listings(c *gin.Context) {
	views, err := h.listingQueries.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	out := make([]*resdto.ListingResponse, 0, len(views))
	for _, v := range views {
		out = append(out, resdto.FromListingView(v))
	}
	c.JSON(http.StatusOK, out)
}

// @Summary Recent decisions
// @Description List recent repricing decisions, newest first
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum rows" default(50)
// @Success 200 {array} resdto.DecisionResponse
// @Failure 500 {object} map[string]string
// @Router /decisions [get]
func (h *DashboardHandler) Decisions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	views, err := h.decisionQueries.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	out := make([]*resdto.DecisionResponse, 0, len(views))
	for _, v := range views {
		out = append(out, resdto.FromDecisionView(v))
	}
	c.JSON(http.StatusOK, out)
}
