package repository

import (
	"context"
	"errors"
	"time"

	"allegro-autopilot/internal/domain/listing"
	"allegro-autopilot/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

const listingColumns = `sku, name, real_stock, virtual_buffer, visibility_status, current_price, floor_price, ceiling_price, repricing_strategy`

func scanListing(row pgx.Row) (*listing.Listing, error) {
	var (
		sku, name, visibility, strategy string
		realStock, virtualBuffer        int
		current, floor, ceiling         decimal.Decimal
	)
	if err := row.Scan(&sku, &name, &realStock, &virtualBuffer, &visibility, &current, &floor, &ceiling, &strategy); err != nil {
		return nil, err
	}
	return listing.ReconstructListing(
		sku, name, realStock, virtualBuffer, listing.VisibilityStatus(visibility), current, floor, ceiling, strategy,
	), nil
}

func (r *ListingRepository) FindBySKU(ctx context.Context, sku string) (*listing.Listing, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE sku = $1`, sku)

	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("listing not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load listing", err)
	}
	return l, nil
}

func (r *ListingRepository) FindAll(ctx context.Context) ([]*listing.Listing, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY sku`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list listings", err)
	}
	defer rows.Close()

	out := make([]*listing.Listing, 0, 32)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan listing", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate listings", err)
	}
	return out, nil
}

// SaveState persists the stock level and visibility computed by the buffer
// guard for one SKU.
func (r *ListingRepository) SaveState(ctx context.Context, l *listing.Listing) error {
	const query = `
		UPDATE listings
		SET real_stock = $2, visibility_status = $3, updated_at = $4
		WHERE sku = $1
	`

	tag, err := r.pool.Exec(ctx, query, l.SKU(), l.RealStock(), string(l.Visibility()), time.Now())
	if err != nil {
		return infra.WrapRepoErr("failed to save listing state", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("listing not found", nil, infra.KindNotFound)
	}
	return nil
}

// UpdatePrice records the applied price for one SKU.
func (r *ListingRepository) UpdatePrice(ctx context.Context, sku string, price decimal.Decimal) error {
	const query = `
		UPDATE listings
		SET current_price = $2, updated_at = $3
		WHERE sku = $1
	`

	tag, err := r.pool.Exec(ctx, query, sku, price, time.Now())
	if err != nil {
		return infra.WrapRepoErr("failed to update listing price", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("listing not found", nil, infra.KindNotFound)
	}
	return nil
}

// Create seeds a listing row; used by account-connect bootstrap and tests.
func (r *ListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	const query = `
		INSERT INTO listings (sku, name, real_stock, virtual_buffer, visibility_status, current_price, floor_price, ceiling_price, repricing_strategy, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	`

	_, err := r.pool.Exec(ctx, query,
		l.SKU(), l.Name(), l.RealStock(), l.VirtualBuffer(), string(l.Visibility()),
		l.CurrentPrice(), l.FloorPrice(), l.CeilingPrice(), l.RepricingStrategy())
	if err != nil {
		return infra.WrapRepoErr("failed to create listing", err)
	}
	return nil
}
