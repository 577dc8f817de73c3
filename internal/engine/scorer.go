package engine

import (
	"math"

	"github.com/petzzshop/ops-backend/internal/config"
	"github.com/petzzshop/ops-backend/internal/domain"
)

// Scorer combines normalized urgency sub-scores into a single 0-100
// priority score. All weights and ceilings come from the engine config and
// are fixed for the process lifetime, so identical inputs always produce
// identical scores.
type Scorer struct {
	cfg  config.EngineConfig
	calc *Calculator
}

// NewScorer creates a priority scorer.
func NewScorer(cfg config.EngineConfig) *Scorer {
	return &Scorer{cfg: cfg, calc: NewCalculator(cfg)}
}

// Score computes the weighted priority score and its label for a product.
func (s *Scorer) Score(m domain.DerivedMetrics) domain.PriorityResult {
	result := domain.PriorityResult{
		StockUrgency:        s.stockUrgency(m),
		Velocity:            s.velocity(m.DailySalesRate),
		MarginHealth:        s.marginHealth(m.MarginPercent),
		CompetitivePressure: s.competitivePressure(m.PriceGapPercent),
	}

	score := s.cfg.WeightStockUrgency*result.StockUrgency +
		s.cfg.WeightVelocity*result.Velocity +
		s.cfg.WeightMargin*result.MarginHealth +
		s.cfg.WeightCompetition*result.CompetitivePressure

	result.Score = clamp(score, 0, 100)
	result.Label = s.Label(result.Score)

	return result
}

// Label maps a score into its priority band. Bands are monotonic in score.
func (s *Scorer) Label(score float64) domain.PriorityLabel {
	switch {
	case score >= s.cfg.HighScoreThreshold:
		return domain.PriorityHigh
	case score >= s.cfg.MediumScoreThreshold:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// stockUrgency grows as days-of-cover shrinks relative to the reorder
// point expressed in days. Items with stock but no velocity carry no
// stock-out risk and score zero.
func (s *Scorer) stockUrgency(m domain.DerivedMetrics) float64 {
	if m.CoverState != domain.CoverFinite || m.DaysOfCover == nil {
		return 0
	}

	threshold := s.calc.CoverThresholdDays(m)
	if threshold <= 0 {
		return 0
	}

	return 100 * clamp(1-*m.DaysOfCover/threshold, 0, 1)
}

func (s *Scorer) velocity(rate float64) float64 {
	if s.cfg.VelocityCeiling <= 0 {
		return 0
	}
	return 100 * clamp(rate/s.cfg.VelocityCeiling, 0, 1)
}

// marginHealth contributes urgency when margin is below the healthy
// threshold. A zero or negative margin pins the sub-score at 100, so a
// structurally unprofitable item never scores as fully relaxed.
func (s *Scorer) marginHealth(marginPct float64) float64 {
	healthy := s.cfg.HealthyMarginPct
	if healthy <= 0 || marginPct >= healthy {
		return 0
	}
	return 100 * clamp((healthy-marginPct)/healthy, 0, 1)
}

// competitivePressure grows when our price sits above the competitor low.
// Missing competitor data is a neutral signal, not an urgent one.
func (s *Scorer) competitivePressure(gapPct *float64) float64 {
	if gapPct == nil || *gapPct <= 0 || s.cfg.PriceGapCeilingPct <= 0 {
		return 0
	}
	return 100 * clamp(*gapPct/s.cfg.PriceGapCeilingPct, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
