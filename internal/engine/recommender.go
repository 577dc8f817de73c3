package engine

import (
	"math"

	"github.com/petzzshop/ops-backend/internal/config"
	"github.com/petzzshop/ops-backend/internal/domain"
)

// Recommender computes target stock levels and suggested order quantities
// under a strategy template. Quantities are whole units and never negative.
type Recommender struct {
	cfg config.EngineConfig
}

// NewRecommender creates an order quantity recommender.
func NewRecommender(cfg config.EngineConfig) *Recommender {
	return &Recommender{cfg: cfg}
}

// Quantity returns the target stock and suggested order quantity for a
// product under the given template. ok is false when the product is not
// eligible under the template's model.
func (r *Recommender) Quantity(sig *domain.ProductSignal, m domain.DerivedMetrics, tpl Template) (targetStock, orderQty int, ok bool) {
	switch tpl.Model {
	case ModelRolling15:
		return r.rolling15(sig)
	default:
		return r.fixedTarget(sig, m, tpl)
	}
}

// fixedTarget orders up to ROP + coverDaysTarget days of sales.
func (r *Recommender) fixedTarget(sig *domain.ProductSignal, m domain.DerivedMetrics, tpl Template) (int, int, bool) {
	rate := m.DailySalesRate

	leadTime := tpl.LeadTimeDays
	if leadTime <= 0 {
		leadTime = sig.LeadTimeDays
	}
	if leadTime <= 0 {
		leadTime = r.cfg.DefaultLeadTimeDays
	}

	rop := math.Ceil(rate * float64(leadTime) * (1 + r.cfg.SafetyFactor))
	target := rop + rate*float64(tpl.CoverDaysTarget)

	qty := int(math.Max(0, math.Ceil(target-float64(sig.CurrentStock))))

	return int(math.Ceil(target)), qty, true
}

// rolling15 orders up to a 15-day stock target of max(sales15, sales30/2),
// the same two-estimator rule used for the daily sales rate, applied here
// as an explicit stock target. Products without both recent (15d) and
// long-run (90d) sales are excluded regardless of stock level.
func (r *Recommender) rolling15(sig *domain.ProductSignal) (int, int, bool) {
	if sig.Sales90 <= 0 || sig.Sales15 <= 0 {
		return 0, 0, false
	}

	target := math.Max(float64(sig.Sales15), float64(sig.Sales30)/2.0)
	qty := int(math.Max(0, math.Ceil(target-float64(sig.CurrentStock))))

	return int(math.Ceil(target)), qty, true
}
