package api

import (
	"errors"
	"net/http"
	"net/url"

	resdto "allegro-autopilot/internal/handler/dto/response"
	"allegro-autopilot/internal/pkg/config"
	"allegro-autopilot/internal/pkg/errs"
	"allegro-autopilot/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// AccountHandler owns the marketplace OAuth connection flow.
type AccountHandler struct {
	credentials commands.CredentialCommands
	cfg         config.AllegroConfig
}

func NewAccountHandler(credentials commands.CredentialCommands, cfg config.AllegroConfig) *AccountHandler {
	return &AccountHandler{
		credentials: credentials,
		cfg:         cfg,
	}
}

// @Summary Authorization URL
// @Description Build the marketplace consent URL for the operator to visit
// @Tags account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /account/connect-url [get]
func (h *AccountHandler) ConnectURL(c *gin.Context) {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", h.cfg.ClientID)
	q.Set("redirect_uri", h.cfg.RedirectURI)

	c.JSON(http.StatusOK, gin.H{
		"url": "https://allegro.pl/auth/oauth/authorize?" + q.Encode(),
	})
}

// @Summary OAuth callback
// @Description Exchange the authorization code and connect the merchant account
// @Tags account
// @Produce json
// @Param code query string true "Authorization code"
// @Success 200 {object} resdto.ConnectAccountResponse
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /account/callback [get]
func (h *AccountHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing authorization code",
		})
		return
	}

	result, err := h.credentials.ConnectAccount(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, errs.ErrCredentialRefreshFailed) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Authorization code exchange failed",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.ConnectAccountResponse{
		AccountID: result.AccountID,
		ExpiresAt: result.ExpiresAt,
	})
}
