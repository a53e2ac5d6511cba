package components

import (
	"allegro-autopilot/internal/pkg/clock"
	"allegro-autopilot/internal/usecase/commands"
	"allegro-autopilot/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewCredentialCommands,
		commands.NewInventoryCommands,
		commands.NewRepricingCommands,
		commands.NewDisputeCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewListingQueries,
		queries.NewDisputeQueries,
		queries.NewDecisionQueries,
	),
)
