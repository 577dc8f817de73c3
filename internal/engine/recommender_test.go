package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedTargetQuantity(t *testing.T) {
	cfg := testConfig()
	calc := NewCalculator(cfg)
	rec := NewRecommender(cfg)

	sig := healthySignal()
	sig.CurrentStock = 0
	sig.Sales15, sig.Sales30 = 10, 16 // rate 0.667/day
	m := calc.Calculate(&sig)

	target, qty, ok := rec.Quantity(&sig, m, DefaultTemplate(cfg))

	require.True(t, ok)
	// ROP 6 plus 30 days of cover at 0.667/day: 6 + 20 = 26
	assert.Equal(t, 26, target)
	assert.Equal(t, 26, qty)

	t.Run("overstocked item orders nothing", func(t *testing.T) {
		sig.CurrentStock = 1000
		m := calc.Calculate(&sig)
		_, qty, ok := rec.Quantity(&sig, m, DefaultTemplate(cfg))
		require.True(t, ok)
		assert.Zero(t, qty)
	})
}

func TestFixedTargetTemplateOverridesLeadTime(t *testing.T) {
	cfg := testConfig()
	calc := NewCalculator(cfg)
	rec := NewRecommender(cfg)

	sig := healthySignal()
	sig.CurrentStock = 0
	m := calc.Calculate(&sig)

	weekly, _ := TemplateByID("weekly_90d")
	monthly, _ := TemplateByID("monthly_90d")

	_, weeklyQty, _ := rec.Quantity(&sig, m, weekly)
	_, monthlyQty, _ := rec.Quantity(&sig, m, monthly)

	assert.Greater(t, monthlyQty, weeklyQty,
		"a longer lead time must raise the order quantity for the same cover target")
}

func TestRolling15Quantity(t *testing.T) {
	cfg := testConfig()
	calc := NewCalculator(cfg)
	rec := NewRecommender(cfg)
	tpl, ok := TemplateByID("rolling_15d")
	require.True(t, ok)

	t.Run("orders up to the 15-day target", func(t *testing.T) {
		sig := healthySignal()
		sig.CurrentStock = 4
		sig.Sales15, sig.Sales30, sig.Sales90 = 10, 26, 60
		m := calc.Calculate(&sig)

		target, qty, ok := rec.Quantity(&sig, m, tpl)
		require.True(t, ok)
		assert.Equal(t, 13, target) // max(10, 26/2)
		assert.Equal(t, 9, qty)
	})

	t.Run("no long-run sales means not eligible", func(t *testing.T) {
		sig := healthySignal()
		sig.CurrentStock = 0
		sig.Sales15, sig.Sales30, sig.Sales90 = 10, 20, 0

		_, _, ok := rec.Quantity(&sig, calc.Calculate(&sig), tpl)
		assert.False(t, ok, "sales90 == 0 must exclude the product regardless of stock")
	})

	t.Run("no recent sales means not eligible", func(t *testing.T) {
		sig := healthySignal()
		sig.Sales15, sig.Sales30, sig.Sales90 = 0, 20, 100

		_, _, ok := rec.Quantity(&sig, calc.Calculate(&sig), tpl)
		assert.False(t, ok)
	})
}

func TestQuantityNeverNegative(t *testing.T) {
	cfg := testConfig()
	calc := NewCalculator(cfg)
	rec := NewRecommender(cfg)

	templates := append(Templates(), DefaultTemplate(cfg))

	signals := []struct {
		name         string
		stock        int
		s15, s30, s90 int
	}{
		{name: "huge stock", stock: 100000, s15: 10, s30: 20, s90: 60},
		{name: "no sales", stock: 0, s15: 0, s30: 0, s90: 0},
		{name: "no stock", stock: 0, s15: 50, s30: 90, s90: 200},
	}

	for _, tc := range signals {
		for _, tpl := range templates {
			sig := healthySignal()
			sig.CurrentStock = tc.stock
			sig.Sales15, sig.Sales30, sig.Sales90 = tc.s15, tc.s30, tc.s90

			_, qty, _ := rec.Quantity(&sig, calc.Calculate(&sig), tpl)
			assert.GreaterOrEqual(t, qty, 0, "%s under %s", tc.name, tpl.ID)
		}
	}
}

func TestTemplateLookup(t *testing.T) {
	for _, id := range []string{"weekly_90d", "biweekly_60d", "monthly_90d", "rolling_15d"} {
		tpl, ok := TemplateByID(id)
		require.True(t, ok, id)
		assert.Equal(t, id, tpl.ID)
	}

	_, ok := TemplateByID("quarterly")
	assert.False(t, ok)
}
