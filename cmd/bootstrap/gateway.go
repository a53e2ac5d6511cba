package bootstrap

import (
	"allegro-autopilot/internal/infra/gateway"
	"allegro-autopilot/internal/pkg/config"
	"allegro-autopilot/internal/usecase/commands"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		fx.Annotate(
			gateway.NewOAuthClient,
			fx.As(new(commands.OAuthGateway)),
		),
		NewMarketplaceClient,
		fx.Annotate(
			func(client *gateway.Client) *gateway.Client { return client },
			fx.As(new(commands.MarketplaceGateway)),
		),
		fx.Annotate(
			gateway.NewCompetitorFeed,
			fx.As(new(commands.CompetitorFeed)),
		),
	),
)

// NewMarketplaceClient binds the authenticated REST client to the merchant
// account through the credential lifecycle manager.
func NewMarketplaceClient(
	cfg config.AllegroConfig,
	auto config.AutomationConfig,
	credentials commands.CredentialCommands,
) *gateway.Client {
	tokens := commands.BoundTokenSource{
		Commands:  credentials,
		AccountID: commands.DefaultAccountID,
	}
	return gateway.NewClient(cfg, auto, tokens)
}
