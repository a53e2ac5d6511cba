package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"allegro-autopilot/internal/handler/api"
	"allegro-autopilot/internal/handler/middleware"
	"allegro-autopilot/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	accountHandler *api.AccountHandler,
	automationHandler *api.AutomationHandler,
	disputeHandler *api.DisputeHandler,
	dashboardHandler *api.DashboardHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, authHandler, accountHandler, automationHandler, disputeHandler, dashboardHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	accountHandler *api.AccountHandler,
	automationHandler *api.AutomationHandler,
	disputeHandler *api.DisputeHandler,
	dashboardHandler *api.DashboardHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodGet, Path: "/me", Handler: authHandler.Me},
			})
		}

		account := apiGroup.Group("/account")
		{
			// The callback is hit by the browser redirect from the
			// marketplace consent screen, so it carries no bearer token.
			addRoutes(account, []route{
				{Method: http.MethodGet, Path: "/callback", Handler: accountHandler.Callback},
			})

			connectRequired := account.Group("")
			connectRequired.Use(authMiddleware.RequireAuth())
			addRoutes(connectRequired, []route{
				{Method: http.MethodGet, Path: "/connect-url", Handler: accountHandler.ConnectURL},
			})
		}

		automation := apiGroup.Group("/automation")
		automation.Use(authMiddleware.RequireAuth())
		{
			addRoutes(automation, []route{
				{Method: http.MethodPost, Path: "/repricing/run", Handler: automationHandler.RunRepricing},
				{Method: http.MethodPost, Path: "/inventory/run", Handler: automationHandler.RunInventory},
				{Method: http.MethodPost, Path: "/disputes/sweep", Handler: automationHandler.SweepDisputes},
			})
		}

		disputes := apiGroup.Group("/disputes")
		disputes.Use(authMiddleware.RequireAuth())
		{
			addRoutes(disputes, []route{
				{Method: http.MethodGet, Path: "", Handler: disputeHandler.List},
				{Method: http.MethodPost, Path: "", Handler: disputeHandler.Open},
				{Method: http.MethodPost, Path: "/:id/resolve", Handler: disputeHandler.Resolve},
				{Method: http.MethodPost, Path: "/:id/escalate", Handler: disputeHandler.Escalate},
			})
		}

		dashboard := apiGroup.Group("")
		dashboard.Use(authMiddleware.RequireAuth())
		{
			addRoutes(dashboard, []route{
				{Method: http.MethodGet, Path: "/listings", Handler: dashboardHandler.Listings},
				{Method: http.MethodGet, Path: "/decisions", Handler: dashboardHandler.Decisions},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
