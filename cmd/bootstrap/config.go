package bootstrap

import (
	"allegro-autopilot/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		// Sub-configs so components depend only on the slice they use.
		func(cfg config.Config) config.AllegroConfig { return cfg.Allegro },
		func(cfg config.Config) config.AutomationConfig { return cfg.Automation },
	),
)
