package service

import (
	"context"
	"sort"

	"github.com/petzzshop/ops-backend/internal/domain"
	"github.com/petzzshop/ops-backend/internal/engine"
	"github.com/petzzshop/ops-backend/internal/repository"
)

// RecommendationService turns evaluated decisions into purchase lists,
// either under the rolling 15-day model or a named strategy template.
type RecommendationService struct {
	repo   repository.SignalRepository
	engine *engine.Engine
}

// NewRecommendationService creates the recommendation facade.
func NewRecommendationService(repo repository.SignalRepository, eng *engine.Engine) *RecommendationService {
	return &RecommendationService{repo: repo, engine: eng}
}

// GetOrderRecommendations builds the rolling 15-day purchase list. The
// eligibility rule excludes products without both recent and long-run
// sales regardless of their stock level.
func (s *RecommendationService) GetOrderRecommendations(ctx context.Context, filter domain.SignalFilter) (*domain.RecommendationResponse, error) {
	tpl, _ := engine.TemplateByID("rolling_15d")

	recs, _, err := s.buildRecommendations(ctx, filter, tpl)
	if err != nil {
		return nil, err
	}

	return &domain.RecommendationResponse{
		Recommendations: recs,
		Summary:         summarize(recs),
		SupplierSummary: groupBy(recs, func(r domain.OrderRecommendation) string { return r.Supplier }),
		BrandSummary:    groupBy(recs, func(r domain.OrderRecommendation) string { return r.Brand }),
	}, nil
}

// GenerateStrategy builds a purchase list under a named template and
// splits out the urgent (high-priority ORDER) subset.
func (s *RecommendationService) GenerateStrategy(ctx context.Context, templateID string, filter domain.SignalFilter) (*domain.StrategyResponse, error) {
	tpl, ok := engine.TemplateByID(templateID)
	if !ok {
		return nil, domain.NewValidationError("template", "unknown strategy template %q", templateID)
	}

	recs, urgent, err := s.buildRecommendations(ctx, filter, tpl)
	if err != nil {
		return nil, err
	}

	return &domain.StrategyResponse{
		Template:        tpl.ID,
		Recommendations: recs,
		UrgentOrders:    urgent,
		Summary:         summarize(recs),
		SupplierSummary: groupBy(recs, func(r domain.OrderRecommendation) string { return r.Supplier }),
		BrandSummary:    groupBy(recs, func(r domain.OrderRecommendation) string { return r.Brand }),
	}, nil
}

// Templates lists the available strategy templates.
func (s *RecommendationService) Templates() []engine.Template {
	return engine.Templates()
}

func (s *RecommendationService) buildRecommendations(ctx context.Context, filter domain.SignalFilter, tpl engine.Template) ([]domain.OrderRecommendation, []domain.OrderRecommendation, error) {
	if err := s.validate(&filter); err != nil {
		return nil, nil, err
	}

	signals, err := s.repo.GetSignals(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.engine.EvaluateAll(ctx, signals)
	if err != nil {
		return nil, nil, err
	}

	recommender := s.engine.Recommender()

	recs := make([]domain.OrderRecommendation, 0)
	urgent := make([]domain.OrderRecommendation, 0)

	for _, row := range rows {
		// A stopped item is never worth restocking, whatever its target.
		if row.Decision.Action == domain.ActionStop {
			continue
		}

		target, qty, eligible := recommender.Quantity(&row.ProductSignal, row.Metrics, tpl)
		if !eligible || qty <= 0 {
			continue
		}

		rec := domain.OrderRecommendation{
			ProductID:     row.ProductID,
			Code:          row.Code,
			Name:          row.Name,
			Brand:         row.Brand,
			Supplier:      row.SupplierName(),
			CurrentStock:  row.CurrentStock,
			TargetStock:   target,
			OrderQty:      qty,
			BuyingPrice:   row.BuyingPrice,
			OrderValue:    float64(qty) * row.BuyingPrice,
			Desi:          row.Desi,
			OrderDesi:     float64(qty) * row.Desi,
			PriorityScore: row.Priority.Score,
			PriorityLabel: row.Priority.Label,
			Reasons:       row.Decision.Reasons,
		}

		recs = append(recs, rec)

		if row.Decision.Action == domain.ActionOrder && row.Priority.Label == domain.PriorityHigh {
			urgent = append(urgent, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].PriorityScore != recs[j].PriorityScore {
			return recs[i].PriorityScore > recs[j].PriorityScore
		}
		return recs[i].OrderValue > recs[j].OrderValue
	})
	sort.SliceStable(urgent, func(i, j int) bool {
		return urgent[i].PriorityScore > urgent[j].PriorityScore
	})

	return recs, urgent, nil
}

func (s *RecommendationService) validate(filter *domain.SignalFilter) error {
	maxLimit := s.engine.Config().MaxLimit

	if filter.Limit < 0 {
		return domain.NewValidationError("limit", "must not be negative")
	}
	if filter.Limit == 0 || filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	return nil
}

func summarize(recs []domain.OrderRecommendation) domain.RecommendationSummary {
	summary := domain.RecommendationSummary{TotalProducts: len(recs)}
	for _, r := range recs {
		summary.TotalOrderQty += r.OrderQty
		summary.TotalOrderValue += r.OrderValue
		summary.TotalDesi += r.OrderDesi
	}
	return summary
}

func groupBy(recs []domain.OrderRecommendation, key func(domain.OrderRecommendation) string) []domain.GroupSummary {
	grouped := make(map[string]*domain.GroupSummary)
	for _, r := range recs {
		name := key(r)
		if name == "" {
			name = "(unknown)"
		}
		g, ok := grouped[name]
		if !ok {
			g = &domain.GroupSummary{Name: name}
			grouped[name] = g
		}
		g.Products++
		g.OrderQty += r.OrderQty
		g.OrderValue += r.OrderValue
	}

	out := make([]domain.GroupSummary, 0, len(grouped))
	for _, g := range grouped {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderValue != out[j].OrderValue {
			return out[i].OrderValue > out[j].OrderValue
		}
		return out[i].Name < out[j].Name
	})

	return out
}
