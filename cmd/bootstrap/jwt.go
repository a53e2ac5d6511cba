package bootstrap

import (
	"allegro-autopilot/internal/pkg/clock"
	"allegro-autopilot/internal/pkg/config"
	"allegro-autopilot/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
	),
)

func NewJWTService(cfg config.Config, clk clock.Clock) *jwt.Service {
	return jwt.NewService(cfg.JWT.Secret, cfg.JWT.Duration, clk)
}
