package repository

import (
	"context"
	"time"

	"allegro-autopilot/internal/domain/pricing"
	"allegro-autopilot/internal/infra"
	"allegro-autopilot/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DecisionRepository is the append-only audit archive of repricing outcomes.
type DecisionRepository struct {
	pool *pgxpool.Pool
}

func NewDecisionRepository(pool *pgxpool.Pool) *DecisionRepository {
	return &DecisionRepository{pool: pool}
}

func (r *DecisionRepository) Archive(ctx context.Context, d pricing.Decision, applied bool) error {
	const query = `
		INSERT INTO repricing_decisions (id, sku, strategy, old_price, new_price, reason, applied, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		d.ID(), d.SKU(), string(d.Strategy()), d.OldPrice(), d.NewPrice(), d.Reason(), applied, d.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to archive repricing decision", err)
	}
	return nil
}

func (r *DecisionRepository) ListRecent(ctx context.Context, limit int) ([]*queries.DecisionView, error) {
	const query = `
		SELECT id, sku, strategy, old_price, new_price, reason, applied, created_at
		FROM repricing_decisions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list repricing decisions", err)
	}
	defer rows.Close()

	out := make([]*queries.DecisionView, 0, limit)
	for rows.Next() {
		var (
			view      queries.DecisionView
			oldPrice  decimal.Decimal
			newPrice  decimal.Decimal
			createdAt time.Time
		)
		if err := rows.Scan(&view.ID, &view.SKU, &view.Strategy, &oldPrice, &newPrice, &view.Reason, &view.Applied, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan repricing decision", err)
		}
		view.OldPrice = oldPrice
		view.NewPrice = newPrice
		view.CreatedAt = createdAt
		out = append(out, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate repricing decisions", err)
	}
	return out, nil
}
