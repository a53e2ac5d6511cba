package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownStrategy   = errors.New("unknown repricing strategy")
	ErrGuardrailConflict = errors.New("floor price exceeds ceiling price")
)

type Strategy string

const (
	StrategyUndercut Strategy = "undercut"
	StrategySurge    Strategy = "surge"
	StrategyHold     Strategy = "hold"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyUndercut, StrategySurge, StrategyHold:
		return Strategy(s), nil
	default:
		return "", ErrUnknownStrategy
	}
}

// CompetitorSnapshot is an ephemeral observation of a rival offer. It is
// never persisted past the decision window.
type CompetitorSnapshot struct {
	SKU        string
	Price      decimal.Decimal
	Stock      int
	ObservedAt time.Time
}

// FreshAt reports whether the snapshot is recent enough to base a decision on.
func (s CompetitorSnapshot) FreshAt(now time.Time, maxAge time.Duration) bool {
	return now.Sub(s.ObservedAt) <= maxAge
}

// Guardrails are the configured bounds applied after strategy computation.
type Guardrails struct {
	UndercutStep decimal.Decimal
	SurgeFactor  decimal.Decimal
	MinDelta     decimal.Decimal
	maxAge       time.Duration
}

func NewGuardrails(undercutStep, surgeFactor, minDelta decimal.Decimal, snapshotMaxAge time.Duration) Guardrails {
	return Guardrails{
		UndercutStep: undercutStep,
		SurgeFactor:  surgeFactor,
		MinDelta:     minDelta,
		maxAge:       snapshotMaxAge,
	}
}

// ListingSpec is the slice of listing state the engine needs. Floor and
// ceiling are per-listing configuration.
type ListingSpec struct {
	SKU          string
	CurrentPrice decimal.Decimal
	FloorPrice   decimal.Decimal
	CeilingPrice decimal.Decimal
}

// Decide computes the target price for one listing under the requested
// strategy. The returned decision carries the strategy that was effectively
// applied: undercut and surge degrade to hold when their preconditions do
// not hold.
//
// Guardrails run after the strategy, in order: clamp to [floor, ceiling],
// then suppress changes smaller than MinDelta (reason "no-op") so noise
// never thrashes the marketplace.
func Decide(l ListingSpec, comp *CompetitorSnapshot, strategy Strategy, g Guardrails, now time.Time) (Decision, error) {
	if l.CeilingPrice.IsPositive() && l.FloorPrice.GreaterThan(l.CeilingPrice) {
		return Decision{}, ErrGuardrailConflict
	}

	effective := strategy
	target := l.CurrentPrice
	reason := ReasonHold

	switch strategy {
	case StrategyUndercut:
		switch {
		case comp == nil:
			effective, reason = StrategyHold, ReasonNoCompetitorData
		case !comp.FreshAt(now, g.maxAge):
			effective, reason = StrategyHold, ReasonStaleSnapshot
		case comp.Stock <= 0:
			// Nothing to undercut when the competitor cannot sell.
			effective, reason = StrategyHold, ReasonCompetitorOutOfStock
		default:
			target = comp.Price.Sub(g.UndercutStep)
			if target.LessThan(l.FloorPrice) {
				target = l.FloorPrice
			}
			reason = ReasonUndercut
		}
	case StrategySurge:
		if comp != nil && comp.FreshAt(now, g.maxAge) && comp.Stock <= 0 {
			target = l.CurrentPrice.Mul(g.SurgeFactor)
			if l.CeilingPrice.IsPositive() && target.GreaterThan(l.CeilingPrice) {
				target = l.CeilingPrice
			}
			reason = ReasonSurge
		} else {
			effective = StrategyHold
			reason = ReasonCompetitorInStock
		}
	case StrategyHold:
		// target stays at the current price
	default:
		return Decision{}, ErrUnknownStrategy
	}

	target = clamp(target, l.FloorPrice, l.CeilingPrice)

	if effective != StrategyHold && target.Sub(l.CurrentPrice).Abs().LessThan(g.MinDelta) {
		effective = StrategyHold
		target = l.CurrentPrice
		reason = ReasonNoOp
	}

	return NewDecision(l.SKU, effective, l.CurrentPrice, target, reason, now), nil
}

func clamp(p, floor, ceiling decimal.Decimal) decimal.Decimal {
	if p.LessThan(floor) {
		p = floor
	}
	if ceiling.IsPositive() && p.GreaterThan(ceiling) {
		p = ceiling
	}
	return p
}
