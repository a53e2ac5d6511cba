package api

import (
	"errors"
	"net/http"

	reqdto "allegro-autopilot/internal/handler/dto/request"
	resdto "allegro-autopilot/internal/handler/dto/response"
	"allegro-autopilot/internal/handler/middleware"
	"allegro-autopilot/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authCommands commands.AuthCommands
}

func NewAuthHandler(authCommands commands.AuthCommands) *AuthHandler {
	return &AuthHandler{
		authCommands: authCommands,
	}
}

// @Summary Operator login
// @Description Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.LoginRequest true "Login request"
// @Success 200 {object} resdto.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.authCommands.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, commands.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid email or password",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.LoginResponse{
		AccessToken: result.AccessToken,
		Operator: resdto.OperatorResponse{
			ID:    result.Operator.ID,
			Email: result.Operator.Email,
		},
	})
}

// @Summary Current operator
// @Description Get the authenticated operator
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} resdto.OperatorResponse
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	operatorID, ok := middleware.GetOperatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Operator not authenticated",
		})
		return
	}

	email, _ := middleware.GetOperatorEmail(c)
	c.JSON(http.StatusOK, resdto.OperatorResponse{ID: operatorID, Email: email})
}
