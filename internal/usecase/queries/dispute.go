package queries

import (
	"context"

	"allegro-autopilot/internal/domain/dispute"
	"allegro-autopilot/internal/pkg/clock"
)

type DisputeReadStore interface {
	FindNonTerminal(ctx context.Context) ([]*dispute.Dispute, error)
}

type DisputeQueries interface {
	ListOpen(ctx context.Context) ([]*DisputeView, error)
}

type disputeQueriesImpl struct {
	store DisputeReadStore
	clock clock.Clock
}

func NewDisputeQueries(store DisputeReadStore, clk clock.Clock) DisputeQueries {
	return &disputeQueriesImpl{store: store, clock: clk}
}

func (q *disputeQueriesImpl) ListOpen(ctx context.Context) ([]*DisputeView, error) {
	disputes, err := q.store.FindNonTerminal(ctx)
	if err != nil {
		return nil, err
	}

	now := q.clock.Now()
	views := make([]*DisputeView, 0, len(disputes))
	for _, d := range disputes {
		daysRemaining := int(d.Deadline().Sub(now).Hours() / 24)
		if daysRemaining < 0 {
			daysRemaining = 0
		}
		views = append(views, &DisputeView{
			ID:                 d.ID(),
			OrderID:            d.OrderID(),
			Reason:             d.Reason(),
			Status:             string(d.Status()),
			OpenedAt:           d.OpenedAt(),
			Deadline:           d.Deadline(),
			DaysRemaining:      daysRemaining,
			AutoResolveEnabled: d.AutoResolveEnabled(),
		})
	}
	return views, nil
}
