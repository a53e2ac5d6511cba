//go:build unit

package pricing_test

import (
	"testing"
	"time"

	"allegro-autopilot/internal/domain/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func guardrails() pricing.Guardrails {
	return pricing.NewGuardrails(dec("0.50"), dec("1.10"), dec("0.10"), 15*time.Minute)
}

func spec(current, floor, ceiling string) pricing.ListingSpec {
	return pricing.ListingSpec{
		SKU:          "AUDIO-001",
		CurrentPrice: dec(current),
		FloorPrice:   dec(floor),
		CeilingPrice: dec(ceiling),
	}
}

func snapshot(price string, stock int, age time.Duration) *pricing.CompetitorSnapshot {
	return &pricing.CompetitorSnapshot{
		SKU:        "AUDIO-001",
		Price:      dec(price),
		Stock:      stock,
		ObservedAt: now.Add(-age),
	}
}

func TestDecideUndercut(t *testing.T) {
	t.Run("undercuts a stocked competitor by the configured step", func(t *testing.T) {
		d, err := pricing.Decide(spec("139.00", "100.00", "200.00"), snapshot("135.00", 50, time.Minute), pricing.StrategyUndercut, guardrails(), now)
		require.NoError(t, err)

		assert.Equal(t, pricing.StrategyUndercut, d.Strategy())
		assert.True(t, d.NewPrice().Equal(dec("134.50")), "got %s", d.NewPrice())
		assert.Equal(t, pricing.ReasonUndercut, d.Reason())
		assert.True(t, d.Actionable())
	})

	t.Run("never goes below the floor", func(t *testing.T) {
		d, err := pricing.Decide(spec("139.00", "134.90", "200.00"), snapshot("135.00", 50, time.Minute), pricing.StrategyUndercut, guardrails(), now)
		require.NoError(t, err)

		assert.True(t, d.NewPrice().Equal(dec("134.90")))
	})

	t.Run("competitor out of stock degrades to hold", func(t *testing.T) {
		d, err := pricing.Decide(spec("139.00", "100.00", "200.00"), snapshot("135.00", 0, time.Minute), pricing.StrategyUndercut, guardrails(), now)
		require.NoError(t, err)

		assert.Equal(t, pricing.StrategyHold, d.Strategy())
		assert.True(t, d.NewPrice().Equal(d.OldPrice()))
		assert.Equal(t, pricing.ReasonCompetitorOutOfStock, d.Reason())
		assert.False(t, d.Actionable())
	})

	t.Run("stale snapshot degrades to hold", func(t *testing.T) {
		d, err := pricing.Decide(spec("139.00", "100.00", "200.00"), snapshot("135.00", 50, time.Hour), pricing.StrategyUndercut, guardrails(), now)
		require.NoError(t, err)

		assert.Equal(t, pricing.StrategyHold, d.Strategy())
		assert.Equal(t, pricing.ReasonStaleSnapshot, d.Reason())
		assert.True(t, d.NewPrice().Equal(d.OldPrice()))
	})

	t.Run("no snapshot degrades to hold", func(t *testing.T) {
		d, err := pricing.Decide(spec("139.00", "100.00", "200.00"), nil, pricing.StrategyUndercut, guardrails(), now)
		require.NoError(t, err)

		assert.Equal(t, pricing.StrategyHold, d.Strategy())
		assert.Equal(t, pricing.ReasonNoCompetitorData, d.Reason())
	})
}

func TestDecideSurge(t *testing.T) {
	t.Run("raises price under the ceiling when competitor supply is exhausted", func(t *testing.T) {
		d, err := pricing.Decide(spec("100.00", "50.00", "150.00"), snapshot("95.00", 0, time.Minute), pricing.StrategySurge, guardrails(), now)
		require.NoError(t, err)

		assert.Equal(t, pricing.StrategySurge, d.Strategy())
		assert.True(t, d.NewPrice().Equal(dec("110.00")), "got %s", d.NewPrice())
	})

	t.Run("ceiling caps the surge", func(t *testing.T) {
		d, err := pricing.Decide(spec("100.00", "50.00", "105.00"), snapshot("95.00", 0, time.Minute), pricing.StrategySurge, guardrails(), now)
		require.NoError(t, err)

		assert.True(t, d.NewPrice().Equal(dec("105.00")))
	})

	t.Run("competitor still selling keeps the price", func(t *testing.T) {
		d, err := pricing.Decide(spec("100.00", "50.00", "150.00"), snapshot("95.00", 3, time.Minute), pricing.StrategySurge, guardrails(), now)
		require.NoError(t, err)

		assert.Equal(t, pricing.StrategyHold, d.Strategy())
		assert.True(t, d.NewPrice().Equal(dec("100.00")))
		assert.False(t, d.Actionable())
	})

	t.Run("stale snapshot keeps the price", func(t *testing.T) {
		d, err := pricing.Decide(spec("100.00", "50.00", "150.00"), snapshot("95.00", 0, time.Hour), pricing.StrategySurge, guardrails(), now)
		require.NoError(t, err)

		assert.Equal(t, pricing.StrategyHold, d.Strategy())
	})
}

func TestDecideHold(t *testing.T) {
	d, err := pricing.Decide(spec("100.00", "50.00", "150.00"), snapshot("10.00", 99, time.Minute), pricing.StrategyHold, guardrails(), now)
	require.NoError(t, err)

	assert.True(t, d.NewPrice().Equal(dec("100.00")))
	assert.Equal(t, pricing.ReasonHold, d.Reason())
	assert.False(t, d.Actionable())
}

func TestDecideGuardrails(t *testing.T) {
	t.Run("changes below min delta become no-ops", func(t *testing.T) {
		d, err := pricing.Decide(spec("135.05", "100.00", "200.00"), snapshot("135.60", 10, time.Minute), pricing.StrategyUndercut, guardrails(), now)
		require.NoError(t, err)

		// Target 135.10 is only 0.05 away from the current price.
		assert.Equal(t, pricing.ReasonNoOp, d.Reason())
		assert.Equal(t, pricing.StrategyHold, d.Strategy())
		assert.True(t, d.NewPrice().Equal(dec("135.05")))
		assert.False(t, d.Actionable())
	})

	t.Run("floor above ceiling is rejected", func(t *testing.T) {
		_, err := pricing.Decide(spec("100.00", "160.00", "150.00"), nil, pricing.StrategyHold, guardrails(), now)
		assert.ErrorIs(t, err, pricing.ErrGuardrailConflict)
	})

	t.Run("unknown strategy is rejected", func(t *testing.T) {
		_, err := pricing.Decide(spec("100.00", "50.00", "150.00"), nil, pricing.Strategy("panic"), guardrails(), now)
		assert.ErrorIs(t, err, pricing.ErrUnknownStrategy)
	})
}

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"undercut", "surge", "hold"} {
		s, err := pricing.ParseStrategy(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(s))
	}

	_, err := pricing.ParseStrategy("yolo")
	assert.ErrorIs(t, err, pricing.ErrUnknownStrategy)
}
