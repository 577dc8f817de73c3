package engine

import (
	"github.com/petzzshop/ops-backend/internal/config"
	"github.com/petzzshop/ops-backend/internal/domain"
)

func testConfig() config.EngineConfig {
	return config.EngineConfig{
		DefaultLeadTimeDays:  7,
		SafetyFactor:         0.2,
		TargetCoverDays:      30,
		MaxLimit:             1000,
		WeightStockUrgency:   0.40,
		WeightVelocity:       0.25,
		WeightMargin:         0.20,
		WeightCompetition:    0.15,
		VelocityCeiling:      10.0,
		PriceGapCeilingPct:   30.0,
		HealthyMarginPct:     20.0,
		SevereMarginPct:      -5.0,
		HighScoreThreshold:   70.0,
		MediumScoreThreshold: 25.0,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func strPtr(s string) *string {
	return &s
}

// healthySignal is a fast-moving, well-stocked, profitable product.
func healthySignal() domain.ProductSignal {
	return domain.ProductSignal{
		ProductID:    1,
		Code:         "PTZ-0001",
		Name:         "Adult Dog Food 3kg",
		Brand:        "Acana",
		Category:     "Dog Food",
		Supplier:     strPtr("PetDist"),
		CurrentStock: 120,
		Sales15:      30,
		Sales30:      58,
		Sales90:      170,
		BuyingPrice:  50,
		SellingPrice: 100,
		LeadTimeDays: 7,
		Desi:         3.2,
	}
}
