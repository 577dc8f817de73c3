package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petzzshop/ops-backend/internal/domain"
	"github.com/petzzshop/ops-backend/internal/engine"
)

func TestGetOrderRecommendationsEligibility(t *testing.T) {
	supplier := "Acme Pet"
	repo := &stubSignalRepo{signals: []domain.ProductSignal{
		{
			ProductID: 1, Code: "SKU-001", Name: "Selling well, low stock",
			Brand: "Acme", Supplier: &supplier,
			CurrentStock: 2, Sales15: 10, Sales30: 26, Sales90: 60,
			BuyingPrice: 40, SellingPrice: 80, LeadTimeDays: 7, Desi: 1.5,
		},
		{
			ProductID: 2, Code: "SKU-002", Name: "No long-run sales",
			Brand: "Acme", Supplier: &supplier,
			CurrentStock: 0, Sales15: 8, Sales30: 15, Sales90: 0,
			BuyingPrice: 40, SellingPrice: 80, LeadTimeDays: 7,
		},
		{
			ProductID: 3, Code: "SKU-003", Name: "Already stocked past target",
			Brand: "Acme", Supplier: &supplier,
			CurrentStock: 400, Sales15: 10, Sales30: 20, Sales90: 60,
			BuyingPrice: 40, SellingPrice: 80, LeadTimeDays: 7,
		},
	}}
	svc := NewRecommendationService(repo, engine.New(testEngineConfig()))

	resp, err := svc.GetOrderRecommendations(context.Background(), domain.SignalFilter{})
	require.NoError(t, err)

	// only the first product is both eligible and short of its target
	require.Len(t, resp.Recommendations, 1)
	rec := resp.Recommendations[0]
	assert.Equal(t, "SKU-001", rec.Code)
	assert.Equal(t, 13, rec.TargetStock) // max(10, 26/2)
	assert.Equal(t, 11, rec.OrderQty)
	assert.InDelta(t, 11*40.0, rec.OrderValue, 1e-9)
	assert.InDelta(t, 11*1.5, rec.OrderDesi, 1e-9)

	assert.Equal(t, 1, resp.Summary.TotalProducts)
	assert.Equal(t, 11, resp.Summary.TotalOrderQty)
	assert.InDelta(t, 440.0, resp.Summary.TotalOrderValue, 1e-9)
	assert.InDelta(t, 16.5, resp.Summary.TotalDesi, 1e-9)
}

func TestGenerateStrategyUnknownTemplate(t *testing.T) {
	svc := NewRecommendationService(&stubSignalRepo{}, engine.New(testEngineConfig()))

	_, err := svc.GenerateStrategy(context.Background(), "quarterly_180d", domain.SignalFilter{})
	assert.True(t, domain.IsValidation(err), "want validation error, got %v", err)
}

func TestGenerateStrategyExcludesStoppedItems(t *testing.T) {
	supplier := "Acme Pet"
	repo := &stubSignalRepo{signals: []domain.ProductSignal{
		{
			ProductID: 1, Code: "SKU-OK", Name: "Healthy mover",
			Brand: "Acme", Supplier: &supplier,
			CurrentStock: 0, Sales15: 10, Sales30: 20, Sales90: 60,
			BuyingPrice: 40, SellingPrice: 80, LeadTimeDays: 7,
		},
		{
			// selling below cost with no price room: classified STOP,
			// must never appear on a purchase list
			ProductID: 2, Code: "SKU-LOSS", Name: "Loss maker",
			Brand: "Acme", Supplier: &supplier,
			CurrentStock: 0, Sales15: 10, Sales30: 20, Sales90: 60,
			BuyingPrice: 90, SellingPrice: 80, LeadTimeDays: 7,
		},
	}}
	svc := NewRecommendationService(repo, engine.New(testEngineConfig()))

	resp, err := svc.GenerateStrategy(context.Background(), "weekly_90d", domain.SignalFilter{})
	require.NoError(t, err)

	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "SKU-OK", resp.Recommendations[0].Code)
	assert.Equal(t, "weekly_90d", resp.Template)
}

func TestGenerateStrategyUrgentSubset(t *testing.T) {
	supplier := "Acme Pet"
	urgentSig := domain.ProductSignal{
		ProductID: 1, Code: "SKU-URGENT", Name: "Out of stock fast mover",
		Brand: "Acme", Supplier: &supplier,
		CurrentStock: 0, Sales15: 150, Sales30: 290, Sales90: 800,
		BuyingPrice: 95, SellingPrice: 100, LeadTimeDays: 7,
	}
	calmSig := domain.ProductSignal{
		ProductID: 2, Code: "SKU-CALM", Name: "Slow mover, slightly short",
		Brand: "Bolt", Supplier: &supplier,
		CurrentStock: 1, Sales15: 3, Sales30: 6, Sales90: 20,
		BuyingPrice: 40, SellingPrice: 80, LeadTimeDays: 7,
	}
	repo := &stubSignalRepo{signals: []domain.ProductSignal{calmSig, urgentSig}}
	svc := NewRecommendationService(repo, engine.New(testEngineConfig()))

	resp, err := svc.GenerateStrategy(context.Background(), "weekly_90d", domain.SignalFilter{})
	require.NoError(t, err)

	require.Len(t, resp.Recommendations, 2)
	require.Len(t, resp.UrgentOrders, 1)
	assert.Equal(t, "SKU-URGENT", resp.UrgentOrders[0].Code)
	assert.Equal(t, domain.PriorityHigh, resp.UrgentOrders[0].PriorityLabel)

	// list is sorted by priority score, urgent item first
	assert.Equal(t, "SKU-URGENT", resp.Recommendations[0].Code)
}

func TestRecommendationGrouping(t *testing.T) {
	acme := "Acme Pet"
	repo := &stubSignalRepo{signals: []domain.ProductSignal{
		{
			ProductID: 1, Code: "A-1", Name: "A one", Brand: "Acme", Supplier: &acme,
			CurrentStock: 0, Sales15: 10, Sales30: 20, Sales90: 50,
			BuyingPrice: 10, SellingPrice: 30, LeadTimeDays: 7,
		},
		{
			ProductID: 2, Code: "A-2", Name: "A two", Brand: "Acme", Supplier: &acme,
			CurrentStock: 0, Sales15: 5, Sales30: 10, Sales90: 30,
			BuyingPrice: 10, SellingPrice: 30, LeadTimeDays: 7,
		},
		{
			ProductID: 3, Code: "B-1", Name: "No supplier", Brand: "Bolt", Supplier: nil,
			CurrentStock: 0, Sales15: 20, Sales30: 40, Sales90: 100,
			BuyingPrice: 10, SellingPrice: 30, LeadTimeDays: 7,
		},
	}}
	svc := NewRecommendationService(repo, engine.New(testEngineConfig()))

	resp, err := svc.GetOrderRecommendations(context.Background(), domain.SignalFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 3)

	require.Len(t, resp.SupplierSummary, 2)
	bySupplier := map[string]domain.GroupSummary{}
	for _, g := range resp.SupplierSummary {
		bySupplier[g.Name] = g
	}
	assert.Equal(t, 2, bySupplier["Acme Pet"].Products)
	assert.Contains(t, bySupplier, "(unknown)", "missing supplier falls into the unknown bucket")

	require.Len(t, resp.BrandSummary, 2)
	for _, g := range resp.BrandSummary {
		assert.Positive(t, g.OrderQty)
		assert.Positive(t, g.OrderValue)
	}
}

func TestRecommendationLimitValidation(t *testing.T) {
	svc := NewRecommendationService(&stubSignalRepo{}, engine.New(testEngineConfig()))

	_, err := svc.GetOrderRecommendations(context.Background(), domain.SignalFilter{Limit: -5})
	assert.True(t, domain.IsValidation(err))
}
