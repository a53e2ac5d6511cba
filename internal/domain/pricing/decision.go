package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Decision reasons recorded for audit.
const (
	ReasonUndercut             = "undercut"
	ReasonSurge                = "surge"
	ReasonHold                 = "hold"
	ReasonNoOp                 = "no-op"
	ReasonNoCompetitorData     = "no-competitor-data"
	ReasonStaleSnapshot        = "stale-snapshot"
	ReasonCompetitorOutOfStock = "competitor-out-of-stock"
	ReasonCompetitorInStock    = "competitor-in-stock"
)

// Decision is one repricing outcome. Immutable once emitted; consumed
// exactly once by the gateway, then archived.
type Decision struct {
	id        uuid.UUID
	sku       string
	strategy  Strategy
	oldPrice  decimal.Decimal
	newPrice  decimal.Decimal
	reason    string
	createdAt time.Time
}

func NewDecision(sku string, strategy Strategy, oldPrice, newPrice decimal.Decimal, reason string, createdAt time.Time) Decision {
	return Decision{
		id:        uuid.New(),
		sku:       sku,
		strategy:  strategy,
		oldPrice:  oldPrice,
		newPrice:  newPrice,
		reason:    reason,
		createdAt: createdAt,
	}
}

func ReconstructDecision(id uuid.UUID, sku string, strategy Strategy, oldPrice, newPrice decimal.Decimal, reason string, createdAt time.Time) Decision {
	return Decision{
		id:        id,
		sku:       sku,
		strategy:  strategy,
		oldPrice:  oldPrice,
		newPrice:  newPrice,
		reason:    reason,
		createdAt: createdAt,
	}
}

func (d Decision) ID() uuid.UUID             { return d.id }
func (d Decision) SKU() string               { return d.sku }
func (d Decision) Strategy() Strategy        { return d.strategy }
func (d Decision) OldPrice() decimal.Decimal { return d.oldPrice }
func (d Decision) NewPrice() decimal.Decimal { return d.newPrice }
func (d Decision) Reason() string            { return d.reason }
func (d Decision) CreatedAt() time.Time      { return d.createdAt }

// Actionable reports whether the decision changes the price and therefore
// warrants a gateway call. Hold and no-op outcomes are archived only.
func (d Decision) Actionable() bool {
	return !d.newPrice.Equal(d.oldPrice)
}
