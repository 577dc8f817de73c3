package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petzzshop/ops-backend/internal/config"
	"github.com/petzzshop/ops-backend/internal/domain"
	"github.com/petzzshop/ops-backend/internal/engine"
)

type stubSignalRepo struct {
	signals []domain.ProductSignal
	err     error

	lastFilter domain.SignalFilter
}

func (s *stubSignalRepo) GetSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.ProductSignal, error) {
	s.lastFilter = filter
	if s.err != nil {
		return nil, s.err
	}
	return s.signals, nil
}

func (s *stubSignalRepo) GetFilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.FilterOptions{
		Suppliers: []domain.FilterOption{{Value: "Acme Pet", Count: 12}},
	}, nil
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		DefaultLeadTimeDays:  7,
		SafetyFactor:         0.2,
		TargetCoverDays:      30,
		MaxLimit:             1000,
		WeightStockUrgency:   0.40,
		WeightVelocity:       0.25,
		WeightMargin:         0.20,
		WeightCompetition:    0.15,
		VelocityCeiling:      10,
		PriceGapCeilingPct:   30,
		HealthyMarginPct:     20,
		SevereMarginPct:      -5,
		HighScoreThreshold:   70,
		MediumScoreThreshold: 25,
	}
}

// catalogSignals builds a mixed catalog: out-of-stock fast movers that
// should score high, comfortably stocked slow movers that should not.
func catalogSignals(n int, urgent int) []domain.ProductSignal {
	supplier := "Acme Pet"
	signals := make([]domain.ProductSignal, 0, n)

	for i := 0; i < n; i++ {
		sig := domain.ProductSignal{
			ProductID:    int64(i + 1),
			Code:         fmt.Sprintf("SKU-%03d", i),
			Name:         fmt.Sprintf("Product %d", i),
			Brand:        "Acme",
			Category:     "food",
			Supplier:     &supplier,
			SellingPrice: 100,
			LeadTimeDays: 7,
			Desi:         2,
		}
		if i < urgent {
			// out of stock, fast moving, thin margin: max urgency
			sig.CurrentStock = 0
			sig.BuyingPrice = 95
			sig.Sales15, sig.Sales30, sig.Sales90 = 150, 290, 800
		} else {
			sig.CurrentStock = 500
			sig.BuyingPrice = 50
			sig.Sales15, sig.Sales30, sig.Sales90 = 3, 7, 20
		}
		signals = append(signals, sig)
	}
	return signals
}

func TestGetDecisionsMinScoreFilter(t *testing.T) {
	repo := &stubSignalRepo{signals: catalogSignals(20, 3)}
	svc := NewDecisionService(repo, engine.New(testEngineConfig()), nil)

	minScore := 70.0
	resp, err := svc.GetDecisions(context.Background(), domain.DecisionFilter{MinScore: &minScore})
	require.NoError(t, err)

	require.Len(t, resp.Items, 3)
	assert.Equal(t, 3, resp.KPIs.TotalItems)
	for _, row := range resp.Items {
		assert.GreaterOrEqual(t, row.Priority.Score, minScore)
		assert.Equal(t, domain.PriorityHigh, row.Priority.Label)
	}
}

func TestGetDecisionsActionFilter(t *testing.T) {
	repo := &stubSignalRepo{signals: catalogSignals(10, 4)}
	svc := NewDecisionService(repo, engine.New(testEngineConfig()), nil)

	resp, err := svc.GetDecisions(context.Background(), domain.DecisionFilter{Action: "order"})
	require.NoError(t, err)

	require.Len(t, resp.Items, 4)
	for _, row := range resp.Items {
		assert.Equal(t, domain.ActionOrder, row.Decision.Action)
	}

	// distributions are computed over the filtered set
	assert.Equal(t, 4, resp.ActionDistribution[domain.ActionOrder])
	assert.Zero(t, resp.ActionDistribution[domain.ActionWatch])
}

func TestGetDecisionsKPIsAgreeWithItems(t *testing.T) {
	repo := &stubSignalRepo{signals: catalogSignals(12, 5)}
	svc := NewDecisionService(repo, engine.New(testEngineConfig()), nil)

	resp, err := svc.GetDecisions(context.Background(), domain.DecisionFilter{})
	require.NoError(t, err)

	assert.Equal(t, len(resp.Items), resp.KPIs.TotalItems)

	var cost, scoreSum float64
	actions := 0
	for a, n := range resp.ActionDistribution {
		actions += n
		_ = a
	}
	assert.Equal(t, len(resp.Items), actions)

	for _, row := range resp.Items {
		scoreSum += row.Priority.Score
		if row.Decision.Action == domain.ActionOrder {
			require.Positive(t, row.Decision.SuggestedOrderQty)
			cost += float64(row.Decision.SuggestedOrderQty) * row.BuyingPrice
		} else {
			assert.Zero(t, row.Decision.SuggestedOrderQty)
		}
	}
	assert.InDelta(t, cost, resp.KPIs.TotalOrderCost, 1e-9)
	assert.InDelta(t, scoreSum/float64(len(resp.Items)), resp.KPIs.AvgPriorityScore, 1e-9)

	assert.Equal(t, 7, resp.Config.LeadTimeDays)
	assert.Equal(t, 30, resp.Config.TargetCoverDays)
}

func TestGetDecisionsEmptyCatalog(t *testing.T) {
	repo := &stubSignalRepo{}
	svc := NewDecisionService(repo, engine.New(testEngineConfig()), nil)

	resp, err := svc.GetDecisions(context.Background(), domain.DecisionFilter{})
	require.NoError(t, err)

	assert.Empty(t, resp.Items)
	assert.Zero(t, resp.KPIs.TotalItems)
	assert.Zero(t, resp.KPIs.AvgPriorityScore)
	// distribution keys are present even when empty
	assert.Contains(t, resp.ActionDistribution, domain.ActionOrder)
	assert.Contains(t, resp.PriorityDistribution, domain.PriorityLow)
}

func TestGetDecisionsValidation(t *testing.T) {
	repo := &stubSignalRepo{signals: catalogSignals(5, 1)}
	svc := NewDecisionService(repo, engine.New(testEngineConfig()), nil)
	ctx := context.Background()

	badScore := 130.0
	cases := []struct {
		name   string
		filter domain.DecisionFilter
	}{
		{name: "negative limit", filter: domain.DecisionFilter{SignalFilter: domain.SignalFilter{Limit: -1}}},
		{name: "unknown action", filter: domain.DecisionFilter{Action: "PANIC"}},
		{name: "score out of range", filter: domain.DecisionFilter{MinScore: &badScore}},
		{name: "unknown stock status", filter: domain.DecisionFilter{SignalFilter: domain.SignalFilter{StockStatus: "backorder"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetDecisions(ctx, tc.filter)
			assert.True(t, domain.IsValidation(err), "want validation error, got %v", err)
		})
	}

	t.Run("action is case-insensitive", func(t *testing.T) {
		_, err := svc.GetDecisions(ctx, domain.DecisionFilter{Action: "Order"})
		assert.NoError(t, err)
	})

	t.Run("zero limit is clamped to the maximum", func(t *testing.T) {
		_, err := svc.GetDecisions(ctx, domain.DecisionFilter{})
		require.NoError(t, err)
		assert.Equal(t, 1000, repo.lastFilter.Limit)
	})
}

func TestGetDecisionsSignalFailurePropagates(t *testing.T) {
	repoErr := &domain.SignalUnavailableError{Op: "query", Err: errors.New("connection refused")}
	repo := &stubSignalRepo{err: repoErr}
	svc := NewDecisionService(repo, engine.New(testEngineConfig()), nil)

	_, err := svc.GetDecisions(context.Background(), domain.DecisionFilter{})
	assert.True(t, domain.IsSignalUnavailable(err))
}

func TestGetFilterOptions(t *testing.T) {
	repo := &stubSignalRepo{}
	svc := NewDecisionService(repo, engine.New(testEngineConfig()), nil)

	opts, err := svc.GetFilterOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, opts.Suppliers, 1)
	assert.Equal(t, "Acme Pet", opts.Suppliers[0].Value)
}
