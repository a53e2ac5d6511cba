package repository

import (
	"context"
	"errors"
	"time"

	"allegro-autopilot/internal/domain/dispute"
	"allegro-autopilot/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DisputeRepository struct {
	pool *pgxpool.Pool
}

func NewDisputeRepository(pool *pgxpool.Pool) *DisputeRepository {
	return &DisputeRepository{pool: pool}
}

const disputeColumns = `id, order_id, reason, status, opened_at, deadline, auto_resolve_enabled`

func scanDispute(row pgx.Row) (*dispute.Dispute, error) {
	var (
		id, orderID, reason, status string
		openedAt, deadline          time.Time
		autoResolve                 bool
	)
	if err := row.Scan(&id, &orderID, &reason, &status, &openedAt, &deadline, &autoResolve); err != nil {
		return nil, err
	}
	return dispute.ReconstructDispute(
		id, orderID, reason, dispute.Status(status), openedAt, deadline, autoResolve,
	), nil
}

func (r *DisputeRepository) Create(ctx context.Context, d *dispute.Dispute) error {
	const query = `
		INSERT INTO disputes (id, order_id, reason, status, opened_at, deadline, auto_resolve_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	`

	_, err := r.pool.Exec(ctx, query,
		d.ID(), d.OrderID(), d.Reason(), string(d.Status()), d.OpenedAt(), d.Deadline(), d.AutoResolveEnabled())
	if err != nil {
		return infra.WrapRepoErr("failed to create dispute", err)
	}
	return nil
}

func (r *DisputeRepository) FindByID(ctx context.Context, id string) (*dispute.Dispute, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, id)

	d, err := scanDispute(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("dispute not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load dispute", err)
	}
	return d, nil
}

// FindNonTerminal returns every dispute the scheduler still has to look at,
// oldest deadline first.
func (r *DisputeRepository) FindNonTerminal(ctx context.Context) ([]*dispute.Dispute, error) {
	const query = `
		SELECT ` + disputeColumns + `
		FROM disputes
		WHERE status NOT IN ('resolved', 'auto_resolved')
		ORDER BY deadline
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list non-terminal disputes", err)
	}
	defer rows.Close()

	out := make([]*dispute.Dispute, 0, 16)
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan dispute", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate disputes", err)
	}
	return out, nil
}

// TransitionStatus applies one state-machine step with an optimistic guard
// on the expected source status. A concurrent transition loses the race and
// surfaces as a duplicate-key kind so the caller can skip the entity.
func (r *DisputeRepository) TransitionStatus(ctx context.Context, id string, from, to dispute.Status) error {
	const query = `
		UPDATE disputes
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return infra.WrapRepoErr("failed to transition dispute", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("dispute status moved concurrently", nil, infra.KindDuplicateKey)
	}
	return nil
}
