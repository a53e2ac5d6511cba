//go:build unit

package commands_test

import (
	"context"
	"testing"

	"allegro-autopilot/internal/domain/listing"
	"allegro-autopilot/internal/usecase/commands"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferedListing(t *testing.T, sku string, stock, buffer int, visibility listing.VisibilityStatus) *listing.Listing {
	t.Helper()
	return listing.ReconstructListing(
		sku, "Widget "+sku, stock, buffer, visibility,
		decimal.RequireFromString("99.99"),
		decimal.RequireFromString("50.00"),
		decimal.RequireFromString("150.00"),
		"hold",
	)
}

func TestInventoryRun_HidesListingWhenStockReachesBuffer(t *testing.T) {
	t.Parallel()

	repo := newFakeListingRepo(
		bufferedListing(t, "SKU-A", 10, 5, listing.VisibilityActive),
	)
	gw := &fakeGateway{}
	inv := commands.NewInventoryCommands(repo, gw, testLogger(t))

	summary, err := inv.Run(context.Background(), []commands.StockObservation{
		{SKU: "SKU-A", RealStock: 5},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Applied)

	calls := gw.callsOf("status")
	require.Len(t, calls, 1)
	assert.Equal(t, "SKU-A", calls[0].key)
	assert.Equal(t, string(listing.VisibilityEnded), calls[0].value)

	stored, err := repo.FindBySKU(context.Background(), "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, listing.VisibilityEnded, stored.Visibility())
	assert.Equal(t, 5, stored.RealStock())
}

func TestInventoryRun_RestockReactivates(t *testing.T) {
	t.Parallel()

	repo := newFakeListingRepo(
		bufferedListing(t, "SKU-A", 3, 5, listing.VisibilityEnded),
	)
	gw := &fakeGateway{}
	inv := commands.NewInventoryCommands(repo, gw, testLogger(t))

	summary, err := inv.Run(context.Background(), []commands.StockObservation{
		{SKU: "SKU-A", RealStock: 6},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Applied)

	calls := gw.callsOf("status")
	require.Len(t, calls, 1)
	assert.Equal(t, string(listing.VisibilityActive), calls[0].value)
}

func TestInventoryRun_UnchangedStatusSkipsGateway(t *testing.T) {
	t.Parallel()

	repo := newFakeListingRepo(
		bufferedListing(t, "SKU-A", 10, 5, listing.VisibilityActive),
	)
	gw := &fakeGateway{}
	inv := commands.NewInventoryCommands(repo, gw, testLogger(t))

	// Stock moves but stays above the buffer on both sides.
	summary, err := inv.Run(context.Background(), []commands.StockObservation{
		{SKU: "SKU-A", RealStock: 8},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Applied)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, gw.callsOf("status"))

	// The observation itself still lands in the store.
	stored, err := repo.FindBySKU(context.Background(), "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, 8, stored.RealStock())
}

func TestInventoryRun_NegativeStockExcludesEntityOnly(t *testing.T) {
	t.Parallel()

	repo := newFakeListingRepo(
		bufferedListing(t, "SKU-A", 10, 5, listing.VisibilityActive),
		bufferedListing(t, "SKU-B", 10, 5, listing.VisibilityActive),
	)
	gw := &fakeGateway{}
	inv := commands.NewInventoryCommands(repo, gw, testLogger(t))

	summary, err := inv.Run(context.Background(), []commands.StockObservation{
		{SKU: "SKU-A", RealStock: -1},
		{SKU: "SKU-B", RealStock: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Applied)

	// The bad observation never reached the store.
	stored, err := repo.FindBySKU(context.Background(), "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.RealStock())
	assert.Equal(t, listing.VisibilityActive, stored.Visibility())
}

func TestInventoryRun_GatewayFailureLeavesOldStatePersisted(t *testing.T) {
	t.Parallel()

	repo := newFakeListingRepo(
		bufferedListing(t, "SKU-A", 10, 5, listing.VisibilityActive),
	)
	gw := &fakeGateway{statusErr: assert.AnError}
	inv := commands.NewInventoryCommands(repo, gw, testLogger(t))

	summary, err := inv.Run(context.Background(), []commands.StockObservation{
		{SKU: "SKU-A", RealStock: 0},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	// Change is recomputed next cycle from the untouched state.
	stored, err := repo.FindBySKU(context.Background(), "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, listing.VisibilityActive, stored.Visibility())
	assert.Equal(t, 10, stored.RealStock())
}

func TestInventoryRun_EmptyFeedReconcilesStoredListings(t *testing.T) {
	t.Parallel()

	// Stored state is inconsistent: stock at buffer but still active, e.g.
	// after a buffer edit. Reconciliation corrects it.
	repo := newFakeListingRepo(
		bufferedListing(t, "SKU-A", 5, 5, listing.VisibilityActive),
	)
	gw := &fakeGateway{}
	inv := commands.NewInventoryCommands(repo, gw, testLogger(t))

	summary, err := inv.Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Applied)

	stored, err := repo.FindBySKU(context.Background(), "SKU-A")
	require.NoError(t, err)
	assert.Equal(t, listing.VisibilityEnded, stored.Visibility())
}

func TestInventoryRun_UnknownSKU(t *testing.T) {
	t.Parallel()

	repo := newFakeListingRepo()
	gw := &fakeGateway{}
	inv := commands.NewInventoryCommands(repo, gw, testLogger(t))

	summary, err := inv.Run(context.Background(), []commands.StockObservation{
		{SKU: "SKU-GHOST", RealStock: 3},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, gw.callsOf("status"))
}

func TestInventoryRun_CancelledContextSkipsRemaining(t *testing.T) {
	t.Parallel()

	repo := newFakeListingRepo(
		bufferedListing(t, "SKU-A", 10, 5, listing.VisibilityActive),
	)
	gw := &fakeGateway{}
	inv := commands.NewInventoryCommands(repo, gw, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := inv.Run(ctx, []commands.StockObservation{
		{SKU: "SKU-A", RealStock: 0},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, gw.callsOf("status"))
}
