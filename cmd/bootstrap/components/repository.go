package components

import (
	"allegro-autopilot/internal/infra/repository"
	"allegro-autopilot/internal/usecase/commands"
	"allegro-autopilot/internal/usecase/queries"

	"go.uber.org/fx"
)

// Write repositories double as read stores: the dashboard reads the same
// rows the automation loops write.
var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repository.NewCredentialRepository,
			fx.As(new(commands.CredentialRepository)),
		),
		fx.Annotate(
			repository.NewListingRepository,
			fx.As(new(commands.ListingRepository)),
			fx.As(new(queries.ListingReadStore)),
		),
		fx.Annotate(
			repository.NewDisputeRepository,
			fx.As(new(commands.DisputeRepository)),
			fx.As(new(queries.DisputeReadStore)),
		),
		fx.Annotate(
			repository.NewDecisionRepository,
			fx.As(new(commands.DecisionArchive)),
			fx.As(new(queries.DecisionReadStore)),
		),
		fx.Annotate(
			repository.NewOperatorRepository,
			fx.As(new(commands.OperatorReadStore)),
		),
	),
)
