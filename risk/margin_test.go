package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyMargin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level float64
		want  MarginStatus
	}{
		{"unbounded", math.Inf(1), MarginSafe},
		{"comfortably safe", 350, MarginSafe},
		{"safe boundary", 200, MarginSafe},
		{"warning upper", 199.9, MarginWarning},
		{"warning lower", 100, MarginWarning},
		{"critical upper", 99.9, MarginCritical},
		{"critical lower", 50, MarginCritical},
		{"liquidation", 49.9, MarginLiquidation},
		{"zero level", 0, MarginLiquidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyMargin(tt.level))
		})
	}
}

func TestClassifyAccount_NoMarginInUse(t *testing.T) {
	t.Parallel()

	// SAFE regardless of equity, including a zeroed account.
	for _, equity := range []float64{10000, 0, -50} {
		status, level := ClassifyAccount(equity, 0)
		assert.Equal(t, MarginSafe, status)
		assert.True(t, math.IsInf(level, 1))
	}
}

func TestClassifyAccount_Warning(t *testing.T) {
	t.Parallel()

	status, level := ClassifyAccount(10000, 6000)
	assert.Equal(t, MarginWarning, status)
	assert.InDelta(t, 166.6667, level, 1e-3)
}

func TestRestriction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RestrictionNone, MarginSafe.Restriction())
	assert.Equal(t, RestrictionNone, MarginWarning.Restriction())
	assert.Equal(t, RestrictionNoNewLeverage, MarginCritical.Restriction())
	assert.Equal(t, RestrictionCloseOnly, MarginLiquidation.Restriction())
}

func TestTimeToLiquidation(t *testing.T) {
	t.Parallel()

	assert.Nil(t, TimeToLiquidation(math.Inf(1)))
	assert.Nil(t, TimeToLiquidation(250))
	assert.Nil(t, TimeToLiquidation(100))

	d := TimeToLiquidation(75.4)
	require.NotNil(t, d)
	assert.Equal(t, 75*time.Minute, *d)

	// Floor at one minute.
	d = TimeToLiquidation(0.2)
	require.NotNil(t, d)
	assert.Equal(t, time.Minute, *d)
}

func TestRecommendedActions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"monitor"}, MarginSafe.RecommendedActions())
	assert.Equal(t, []string{"reduce_size", "add_funds"}, MarginWarning.RecommendedActions())
	assert.Equal(t,
		[]string{"close_positions", "add_funds_urgent", "order_restriction"},
		MarginCritical.RecommendedActions())
	assert.Equal(t,
		[]string{"force_liquidation", "emergency_deposit"},
		MarginLiquidation.RecommendedActions())
}
