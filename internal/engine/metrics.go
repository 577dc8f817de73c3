package engine

import (
	"math"

	"github.com/petzzshop/ops-backend/internal/config"
	"github.com/petzzshop/ops-backend/internal/domain"
)

// Calculator derives reorder metrics from an aggregated product signal.
// It assumes sanitized input; negative stock or prices are rejected at the
// aggregator boundary before a signal ever reaches this stage.
type Calculator struct {
	cfg config.EngineConfig
}

// NewCalculator creates a new reorder metrics calculator.
func NewCalculator(cfg config.EngineConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// DailySalesRate blends the 15-day and 30-day sales windows into a daily
// rate. The 15-day window is trusted at full weight; the 30-day window is
// halved so the overlap with the recent window is not counted twice.
func DailySalesRate(sales15, sales30 int) float64 {
	return math.Max(float64(sales15)/15.0, float64(sales30)/30.0/2.0)
}

// Calculate computes all derived metrics for a product signal.
func (c *Calculator) Calculate(sig *domain.ProductSignal) domain.DerivedMetrics {
	rate := DailySalesRate(sig.Sales15, sig.Sales30)

	leadTime := sig.LeadTimeDays
	if leadTime <= 0 {
		leadTime = c.cfg.DefaultLeadTimeDays
	}

	metrics := domain.DerivedMetrics{
		DailySalesRate: rate,
		ReorderPoint:   int(math.Ceil(rate * float64(leadTime) * (1 + c.cfg.SafetyFactor))),
	}

	switch {
	case rate > 0:
		cover := float64(sig.CurrentStock) / rate
		metrics.DaysOfCover = &cover
		metrics.CoverState = domain.CoverFinite
	case sig.CurrentStock > 0:
		metrics.CoverState = domain.CoverInfinite
	default:
		metrics.CoverState = domain.CoverUnknown
	}

	metrics.MarginPercent = marginPercent(sig.BuyingPrice, sig.SellingPrice)
	metrics.PriceGapPercent = priceGapPercent(ownPrice(sig), sig.CompetitorLow)

	return metrics
}

// CoverThresholdDays expresses the reorder point as forward days of cover.
// It is the boundary the classifier compares days-of-cover against.
func (c *Calculator) CoverThresholdDays(m domain.DerivedMetrics) float64 {
	if m.DailySalesRate <= 0 {
		return 0
	}
	return float64(m.ReorderPoint) / m.DailySalesRate
}

func marginPercent(buying, selling float64) float64 {
	if selling > 0 {
		return (selling - buying) / selling * 100
	}
	if buying > 0 {
		// Priced at zero while carrying a cost: a total loss per unit.
		return -100
	}
	return 0
}

// ownPrice picks the price the comparison source sees, falling back to the
// storefront selling price when no comparison listing exists.
func ownPrice(sig *domain.ProductSignal) float64 {
	if sig.PetzzPrice > 0 {
		return sig.PetzzPrice
	}
	return sig.SellingPrice
}

func priceGapPercent(own float64, competitorLow *float64) *float64 {
	if competitorLow == nil || *competitorLow <= 0 {
		return nil
	}
	gap := (own - *competitorLow) / *competitorLow * 100

	return &gap
}
