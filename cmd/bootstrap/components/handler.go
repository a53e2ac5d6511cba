package components

import (
	"allegro-autopilot/internal/handler"
	"allegro-autopilot/internal/handler/api"
	"allegro-autopilot/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewAccountHandler,
		api.NewAutomationHandler,
		api.NewDisputeHandler,
		api.NewDashboardHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
