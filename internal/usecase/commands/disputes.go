package commands

import (
	"context"
	"log/slog"
	"time"

	"allegro-autopilot/internal/domain/dispute"
	"allegro-autopilot/internal/pkg/clock"
	"allegro-autopilot/internal/pkg/config"
	"allegro-autopilot/internal/pkg/errs"
)

// Resolution sent with the downstream closure call when a dispute
// auto-resolves in the buyer's favor.
const autoResolveResolution = "refund"

type OpenDisputeParams struct {
	ID                 string
	OrderID            string
	Reason             string
	AutoResolveEnabled bool
}

type DisputeCommands interface {
	// Sweep advances every non-terminal dispute by at most one transition.
	Sweep(ctx context.Context) (*RunSummary, error)
	// Open registers an inbound dispute event; the deadline is fixed here
	// and never recomputed.
	Open(ctx context.Context, p OpenDisputeParams) (*dispute.Dispute, error)
	// Resolve is the explicit merchant action.
	Resolve(ctx context.Context, id string) error
	// Escalate records a repeated buyer complaint before the deadline.
	Escalate(ctx context.Context, id string) error
}

type disputeCommandsImpl struct {
	disputes DisputeRepository
	gateway  MarketplaceGateway
	window   time.Duration
	clock    clock.Clock
	logger   *slog.Logger
}

func NewDisputeCommands(
	disputes DisputeRepository,
	gateway MarketplaceGateway,
	cfg config.AutomationConfig,
	clk clock.Clock,
	logger *slog.Logger,
) DisputeCommands {
	return &disputeCommandsImpl{
		disputes: disputes,
		gateway:  gateway,
		window:   cfg.DisputeResolutionWindow,
		clock:    clk,
		logger:   logger,
	}
}

func (c *disputeCommandsImpl) Sweep(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{Component: "disputes"}

	open, err := c.disputes.FindNonTerminal(ctx)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	now := c.clock.Now()
	for _, d := range open {
		if ctx.Err() != nil {
			summary.note(d.ID(), "skipped", "tick budget exceeded")
			continue
		}
		c.tickOne(ctx, d, now, summary)
	}

	c.logger.Info("dispute sweep finished",
		"applied", summary.Applied,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

func (c *disputeCommandsImpl) tickOne(ctx context.Context, d *dispute.Dispute, now time.Time, summary *RunSummary) {
	tr, fired := d.Tick(now)
	if !fired {
		summary.note(d.ID(), "skipped", "no transition due")
		return
	}

	// Persist first with an optimistic guard so concurrent sweeps cannot
	// double-fire, then perform the external effect.
	if err := c.disputes.TransitionStatus(ctx, tr.DisputeID, tr.From, tr.To); err != nil {
		summary.note(d.ID(), "skipped", "transitioned concurrently")
		return
	}

	if tr.To != dispute.StatusAutoResolved {
		c.logger.Info("dispute escalated", "dispute_id", tr.DisputeID, "deadline", d.Deadline())
		summary.note(d.ID(), "applied", string(tr.From)+"->"+string(tr.To))
		return
	}

	if err := c.gateway.CloseDispute(ctx, tr.DisputeID, autoResolveResolution); err != nil {
		// Roll back: the dispute must never look terminal without the
		// corresponding closure on the marketplace. Next sweep retries.
		c.logger.Warn("dispute closure rejected by marketplace, rolling back",
			"dispute_id", tr.DisputeID, "error", err.Error())
		if rbErr := c.disputes.TransitionStatus(ctx, tr.DisputeID, dispute.StatusAutoResolved, dispute.StatusOpened); rbErr != nil {
			c.logger.Error("rollback failed, dispute left auto_resolved without closure",
				"dispute_id", tr.DisputeID, "error", rbErr.Error())
		}
		summary.note(d.ID(), "failed", "gateway call failed")
		return
	}

	c.logger.Info("dispute auto-resolved", "dispute_id", tr.DisputeID, "order_id", d.OrderID())
	summary.note(d.ID(), "applied", string(tr.From)+"->"+string(tr.To))
}

func (c *disputeCommandsImpl) Open(ctx context.Context, p OpenDisputeParams) (*dispute.Dispute, error) {
	d, err := dispute.NewDispute(p.ID, p.OrderID, p.Reason, c.clock.Now(), c.window, p.AutoResolveEnabled)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvariantViolation)
	}

	if err := c.disputes.Create(ctx, d); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	c.logger.Info("dispute opened",
		"dispute_id", d.ID(), "order_id", d.OrderID(), "deadline", d.Deadline())
	return d, nil
}

func (c *disputeCommandsImpl) Resolve(ctx context.Context, id string) error {
	d, err := c.disputes.FindByID(ctx, id)
	if err != nil {
		return errs.Mark(err, errs.ErrDisputeNotFound)
	}

	tr, err := d.Resolve(c.clock.Now())
	if err != nil {
		return errs.Mark(err, errs.ErrInvalidTransition)
	}

	if err := c.disputes.TransitionStatus(ctx, tr.DisputeID, tr.From, tr.To); err != nil {
		return errs.Mark(err, errs.ErrInvalidTransition)
	}

	c.logger.Info("dispute resolved by merchant", "dispute_id", id)
	return nil
}

func (c *disputeCommandsImpl) Escalate(ctx context.Context, id string) error {
	d, err := c.disputes.FindByID(ctx, id)
	if err != nil {
		return errs.Mark(err, errs.ErrDisputeNotFound)
	}

	tr, err := d.Escalate()
	if err != nil {
		return errs.Mark(err, errs.ErrInvalidTransition)
	}

	if err := c.disputes.TransitionStatus(ctx, tr.DisputeID, tr.From, tr.To); err != nil {
		return errs.Mark(err, errs.ErrInvalidTransition)
	}

	c.logger.Info("dispute escalated by signal", "dispute_id", id)
	return nil
}
