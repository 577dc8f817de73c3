package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/petzzshop/ops-backend/internal/cache"
	"github.com/petzzshop/ops-backend/internal/domain"
	"github.com/petzzshop/ops-backend/internal/engine"
	"github.com/petzzshop/ops-backend/internal/repository"
)

// DecisionService is the query facade over the decision engine: it fetches
// signals, runs the pipeline, applies the engine-level filters and shapes
// the response KPIs over the filtered set.
type DecisionService struct {
	repo   repository.SignalRepository
	engine *engine.Engine
	cache  cache.DecisionCache
}

// NewDecisionService creates the decision query facade.
func NewDecisionService(repo repository.SignalRepository, eng *engine.Engine, cacheImpl cache.DecisionCache) *DecisionService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDecisionCache()
	}
	return &DecisionService{repo: repo, engine: eng, cache: cacheImpl}
}

// GetDecisions evaluates the catalog under the given filters. The request
// is all-or-nothing: any signal source failure fails the whole query.
func (s *DecisionService) GetDecisions(ctx context.Context, filter domain.DecisionFilter) (*domain.DecisionResponse, error) {
	if err := s.validate(&filter); err != nil {
		return nil, err
	}

	if resp, ok, err := s.cache.Get(ctx, filter); err == nil && ok {
		return resp, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("decision cache get failed")
	}

	signals, err := s.repo.GetSignals(ctx, filter.SignalFilter)
	if err != nil {
		return nil, err
	}

	rows, err := s.engine.EvaluateAll(ctx, signals)
	if err != nil {
		return nil, err
	}

	filtered := applyDecisionFilters(rows, filter)
	resp := buildDecisionResponse(filtered, s.engine)

	if err := s.cache.Set(ctx, filter, resp); err != nil {
		log.Warn().Err(err).Msg("decision cache set failed")
	}

	return resp, nil
}

// GetFilterOptions lists distinct suppliers, categories and brands.
func (s *DecisionService) GetFilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	return s.repo.GetFilterOptions(ctx)
}

func (s *DecisionService) validate(filter *domain.DecisionFilter) error {
	maxLimit := s.engine.Config().MaxLimit

	if filter.Limit < 0 {
		return domain.NewValidationError("limit", "must not be negative")
	}
	if filter.Limit == 0 || filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	if filter.Action != "" {
		action, ok := domain.ParseAction(filter.Action)
		if !ok {
			return domain.NewValidationError("action", "unknown action %q", filter.Action)
		}
		filter.Action = string(action)
	}

	if filter.MinScore != nil && (*filter.MinScore < 0 || *filter.MinScore > 100) {
		return domain.NewValidationError("min_score", "must be within [0, 100], got %.2f", *filter.MinScore)
	}

	switch filter.StockStatus {
	case "", domain.StockStatusInStock, domain.StockStatusOutOfStock, domain.StockStatusLowStock:
	default:
		return domain.NewValidationError("stock_status", "unknown stock status %q", filter.StockStatus)
	}

	return nil
}

// applyDecisionFilters intersects the engine-level filters (action
// equality, minimum score floor) over the evaluated rows.
func applyDecisionFilters(rows []domain.DecisionRow, filter domain.DecisionFilter) []domain.DecisionRow {
	filtered := make([]domain.DecisionRow, 0, len(rows))
	for _, row := range rows {
		if filter.Action != "" && string(row.Decision.Action) != filter.Action {
			continue
		}
		if filter.MinScore != nil && row.Priority.Score < *filter.MinScore {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// buildDecisionResponse computes KPIs and distributions over the filtered
// set so the totals always agree with the returned item list.
func buildDecisionResponse(rows []domain.DecisionRow, eng *engine.Engine) *domain.DecisionResponse {
	actionDist := make(map[domain.Action]int, 4)
	for _, a := range domain.Actions() {
		actionDist[a] = 0
	}
	priorityDist := make(map[domain.PriorityLabel]int, 3)
	for _, l := range domain.PriorityLabels() {
		priorityDist[l] = 0
	}

	kpis := domain.DecisionKPIs{TotalItems: len(rows)}
	var scoreSum float64

	for _, row := range rows {
		actionDist[row.Decision.Action]++
		priorityDist[row.Priority.Label]++
		scoreSum += row.Priority.Score
		if row.Decision.Action == domain.ActionOrder {
			kpis.TotalOrderCost += float64(row.Decision.SuggestedOrderQty) * row.BuyingPrice
		}
	}

	if len(rows) > 0 {
		kpis.AvgPriorityScore = scoreSum / float64(len(rows))
	}

	cfg := eng.Config()

	return &domain.DecisionResponse{
		Items:                rows,
		KPIs:                 kpis,
		ActionDistribution:   actionDist,
		PriorityDistribution: priorityDist,
		Config: domain.EngineConfigEcho{
			LeadTimeDays:    cfg.DefaultLeadTimeDays,
			TargetCoverDays: cfg.TargetCoverDays,
		},
	}
}
