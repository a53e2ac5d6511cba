package commands

import (
	"context"

	"allegro-autopilot/internal/domain/credential"
	"allegro-autopilot/internal/domain/dispute"
	"allegro-autopilot/internal/domain/listing"
	"allegro-autopilot/internal/domain/pricing"
	"allegro-autopilot/internal/usecase/queries"

	"github.com/shopspring/decimal"
)

// Write-side ports. Declared here so the command layer owns its contracts
// and infra stays swappable.

type CredentialRepository interface {
	Get(ctx context.Context, accountID string) (*credential.Credential, error)
	Upsert(ctx context.Context, c *credential.Credential) error
}

type ListingRepository interface {
	FindAll(ctx context.Context) ([]*listing.Listing, error)
	FindBySKU(ctx context.Context, sku string) (*listing.Listing, error)
	SaveState(ctx context.Context, l *listing.Listing) error
	UpdatePrice(ctx context.Context, sku string, price decimal.Decimal) error
}

type DisputeRepository interface {
	Create(ctx context.Context, d *dispute.Dispute) error
	FindByID(ctx context.Context, id string) (*dispute.Dispute, error)
	FindNonTerminal(ctx context.Context) ([]*dispute.Dispute, error)
	TransitionStatus(ctx context.Context, id string, from, to dispute.Status) error
}

type DecisionArchive interface {
	Archive(ctx context.Context, d pricing.Decision, applied bool) error
}

type OperatorReadStore interface {
	FindByEmail(ctx context.Context, email string) (*queries.OperatorView, string, error)
}

// OAuthGateway is the unauthenticated half of the marketplace boundary.
type OAuthGateway interface {
	ExchangeCode(ctx context.Context, code string) (credential.Grant, error)
	RefreshToken(ctx context.Context, refreshToken string) (credential.Grant, error)
}

// MarketplaceGateway is the authenticated half. Implementations carry their
// own bearer token via the credential lifecycle manager.
type MarketplaceGateway interface {
	UpdatePrice(ctx context.Context, sku string, newPrice decimal.Decimal) error
	UpdateListingStatus(ctx context.Context, sku, status string) error
	CloseDispute(ctx context.Context, disputeID, resolution string) error
}

// CompetitorFeed supplies ephemeral competitor observations for a set of
// SKUs. Observations are used within one decision window and discarded.
type CompetitorFeed interface {
	Snapshots(ctx context.Context, skus []string) (map[string]pricing.CompetitorSnapshot, error)
}

// StockObservation is one line of an inbound stock feed.
type StockObservation struct {
	SKU       string
	RealStock int
}

// RunSummary is the structured per-run result surfaced to operators.
// Counts, never raw error payloads.
type RunSummary struct {
	Component string
	Applied   int
	Skipped   int
	Failed    int
	Notes     []RunNote
}

// RunNote records one entity's outcome inside a run.
type RunNote struct {
	Entity  string
	Outcome string // applied | skipped | failed
	Reason  string
}

func (s *RunSummary) note(entity, outcome, reason string) {
	switch outcome {
	case "applied":
		s.Applied++
	case "skipped":
		s.Skipped++
	case "failed":
		s.Failed++
	}
	s.Notes = append(s.Notes, RunNote{Entity: entity, Outcome: outcome, Reason: reason})
}
