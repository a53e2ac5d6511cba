package commands

import (
	"context"
	"log/slog"
	"sync"

	"allegro-autopilot/internal/domain/listing"
	"allegro-autopilot/internal/domain/pricing"
	"allegro-autopilot/internal/pkg/clock"
	"allegro-autopilot/internal/pkg/config"
	"allegro-autopilot/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

type RepricingCommands interface {
	// Run evaluates every listing under its configured strategy. Snapshots
	// may be supplied by the caller (manual runs from the dashboard); when
	// nil they are pulled from the competitor feed.
	Run(ctx context.Context, snapshots map[string]pricing.CompetitorSnapshot) (*RunSummary, error)
}

// skuLocks serializes work per SKU so two concurrently computed decisions
// for the same listing can never race to the gateway. Different SKUs stay
// fully parallel.
type skuLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSKULocks() *skuLocks {
	return &skuLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *skuLocks) lock(sku string) func() {
	s.mu.Lock()
	l, ok := s.locks[sku]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sku] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

type repricingCommandsImpl struct {
	listings   ListingRepository
	archive    DecisionArchive
	gateway    MarketplaceGateway
	feed       CompetitorFeed
	guardrails pricing.Guardrails
	parallel   int
	clock      clock.Clock
	logger     *slog.Logger
	locks      *skuLocks
}

func NewRepricingCommands(
	listings ListingRepository,
	archive DecisionArchive,
	gateway MarketplaceGateway,
	feed CompetitorFeed,
	cfg config.AutomationConfig,
	clk clock.Clock,
	logger *slog.Logger,
) RepricingCommands {
	return &repricingCommandsImpl{
		listings:   listings,
		archive:    archive,
		gateway:    gateway,
		feed:       feed,
		guardrails: pricing.NewGuardrails(cfg.UndercutStep, cfg.SurgeFactor, cfg.MinDelta, cfg.SnapshotMaxAge),
		parallel:   cfg.RepricingParallelism,
		clock:      clk,
		logger:     logger,
		locks:      newSKULocks(),
	}
}

func (c *repricingCommandsImpl) Run(ctx context.Context, snapshots map[string]pricing.CompetitorSnapshot) (*RunSummary, error) {
	listings, err := c.listings.FindAll(ctx)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if snapshots == nil {
		skus := make([]string, 0, len(listings))
		for _, l := range listings {
			skus = append(skus, l.SKU())
		}
		snapshots, err = c.feed.Snapshots(ctx, skus)
		if err != nil {
			// No competitor data degrades every undercut/surge to hold;
			// the run itself still proceeds.
			c.logger.Warn("competitor feed unavailable, strategies degrade to hold", "error", err.Error())
			snapshots = map[string]pricing.CompetitorSnapshot{}
		}
	}

	summary := &RunSummary{Component: "repricing"}
	var summaryMu sync.Mutex

	note := func(entity, outcome, reason string) {
		summaryMu.Lock()
		summary.note(entity, outcome, reason)
		summaryMu.Unlock()
	}

	// Failures are isolated per SKU: goroutines record them in the summary
	// and return nil, so one bad listing never cancels the group.
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.parallel)
	for _, l := range listings {
		eg.Go(func() error {
			if egCtx.Err() != nil {
				note(l.SKU(), "skipped", "tick budget exceeded")
				return nil
			}
			c.evaluateOne(egCtx, l, snapshots, note)
			return nil
		})
	}
	_ = eg.Wait()

	c.logger.Info("repricing run finished",
		"applied", summary.Applied,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

func (c *repricingCommandsImpl) evaluateOne(
	ctx context.Context,
	l *listing.Listing,
	snapshots map[string]pricing.CompetitorSnapshot,
	note func(entity, outcome, reason string),
) {
	unlock := c.locks.lock(l.SKU())
	defer unlock()

	strategy, err := pricing.ParseStrategy(l.RepricingStrategy())
	if err != nil {
		c.logger.Error("listing carries unknown strategy, excluded from automation",
			"sku", l.SKU(), "strategy", l.RepricingStrategy())
		note(l.SKU(), "failed", "unknown strategy")
		return
	}

	var snapshot *pricing.CompetitorSnapshot
	if s, ok := snapshots[l.SKU()]; ok {
		snapshot = &s
	}

	decision, err := pricing.Decide(pricing.ListingSpec{
		SKU:          l.SKU(),
		CurrentPrice: l.CurrentPrice(),
		FloorPrice:   l.FloorPrice(),
		CeilingPrice: l.CeilingPrice(),
	}, snapshot, strategy, c.guardrails, c.clock.Now())
	if err != nil {
		c.logger.Error("guardrail conflict, listing excluded from automation",
			"sku", l.SKU(), "error", err.Error())
		note(l.SKU(), "failed", "invariant violation")
		return
	}

	applied := false
	defer func() {
		if err := c.archive.Archive(ctx, decision, applied); err != nil {
			c.logger.Error("failed to archive repricing decision",
				"sku", l.SKU(), "decision_id", decision.ID(), "error", err.Error())
		}
	}()

	if !decision.Actionable() {
		note(l.SKU(), "skipped", decision.Reason())
		return
	}

	// Hidden listings are never repriced; the decision is still archived
	// for audit.
	if !l.IsActive() {
		note(l.SKU(), "skipped", "listing not active")
		return
	}

	if err := c.gateway.UpdatePrice(ctx, l.SKU(), decision.NewPrice()); err != nil {
		c.logger.Warn("price update rejected by marketplace",
			"sku", l.SKU(), "new_price", decision.NewPrice(), "error", err.Error())
		note(l.SKU(), "failed", "gateway call failed")
		return
	}

	if err := c.listings.UpdatePrice(ctx, l.SKU(), decision.NewPrice()); err != nil {
		// Marketplace holds the new price; next cycle recomputes from the
		// stale stored price and converges via the idempotent sku+price pair.
		c.logger.Error("failed to persist applied price", "sku", l.SKU(), "error", err.Error())
		note(l.SKU(), "failed", "persist failed")
		return
	}

	applied = true
	c.logger.Info("price updated",
		"sku", l.SKU(),
		"strategy", decision.Strategy(),
		"old_price", decision.OldPrice(),
		"new_price", decision.NewPrice())
	note(l.SKU(), "applied", decision.Reason())
}
