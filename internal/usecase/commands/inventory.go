package commands

import (
	"context"
	"log/slog"

	"allegro-autopilot/internal/infra"
	"allegro-autopilot/internal/pkg/errs"
)

type InventoryCommands interface {
	// Run evaluates a stock feed against the per-listing virtual buffers and
	// pushes the resulting visibility changes to the marketplace. An empty
	// feed reconciles every stored listing against its recorded stock.
	Run(ctx context.Context, feed []StockObservation) (*RunSummary, error)
}

type inventoryCommandsImpl struct {
	listings ListingRepository
	gateway  MarketplaceGateway
	logger   *slog.Logger
}

func NewInventoryCommands(listings ListingRepository, gateway MarketplaceGateway, logger *slog.Logger) InventoryCommands {
	return &inventoryCommandsImpl{
		listings: listings,
		gateway:  gateway,
		logger:   logger,
	}
}

func (c *inventoryCommandsImpl) Run(ctx context.Context, feed []StockObservation) (*RunSummary, error) {
	summary := &RunSummary{Component: "inventory"}

	if len(feed) == 0 {
		all, err := c.listings.FindAll(ctx)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		feed = make([]StockObservation, 0, len(all))
		for _, l := range all {
			feed = append(feed, StockObservation{SKU: l.SKU(), RealStock: l.RealStock()})
		}
	}

	for _, obs := range feed {
		if ctx.Err() != nil {
			// Tick budget exceeded: remaining SKUs are re-evaluated fresh
			// next cycle, never resumed.
			summary.note(obs.SKU, "skipped", "tick budget exceeded")
			continue
		}
		c.evaluateOne(ctx, obs, summary)
	}

	c.logger.Info("inventory run finished",
		"applied", summary.Applied,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

func (c *inventoryCommandsImpl) evaluateOne(ctx context.Context, obs StockObservation, summary *RunSummary) {
	l, err := c.listings.FindBySKU(ctx, obs.SKU)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			summary.note(obs.SKU, "failed", "unknown sku")
			return
		}
		summary.note(obs.SKU, "failed", "load failed")
		return
	}

	change, changed, err := l.ApplyStock(obs.RealStock)
	if err != nil {
		// Invariant violation excludes the entity, never aborts the batch.
		c.logger.Error("stock feed violates listing invariant",
			"sku", obs.SKU, "real_stock", obs.RealStock, "error", err.Error())
		summary.note(obs.SKU, "failed", "invariant violation")
		return
	}
	if !changed {
		// No status event, but the observed stock level is still recorded.
		if err := c.listings.SaveState(ctx, l); err != nil {
			c.logger.Error("failed to persist stock level", "sku", obs.SKU, "error", err.Error())
			summary.note(obs.SKU, "failed", "persist failed")
			return
		}
		summary.note(obs.SKU, "skipped", "status unchanged")
		return
	}

	// Marketplace first; if the call fails the old state stays persisted and
	// the change is recomputed next cycle.
	if err := c.gateway.UpdateListingStatus(ctx, change.SKU, string(change.To)); err != nil {
		c.logger.Warn("listing status update rejected by marketplace",
			"sku", change.SKU, "to", change.To, "error", err.Error())
		summary.note(obs.SKU, "failed", "gateway call failed")
		return
	}

	if err := c.listings.SaveState(ctx, l); err != nil {
		// The marketplace already applied the change; the next cycle
		// re-emits the same idempotent status and heals the store.
		c.logger.Error("failed to persist listing state", "sku", obs.SKU, "error", err.Error())
		summary.note(obs.SKU, "failed", "persist failed")
		return
	}

	c.logger.Info("listing visibility changed",
		"sku", change.SKU, "from", change.From, "to", change.To)
	summary.note(obs.SKU, "applied", string(change.From)+"->"+string(change.To))
}
