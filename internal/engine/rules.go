package engine

import (
	"fmt"

	"github.com/petzzshop/ops-backend/internal/config"
	"github.com/petzzshop/ops-backend/internal/domain"
)

// Rule identifiers, named after the intent of each classification rule.
const (
	RuleStopUnprofitable = "STOP_UNPROFITABLE"
	RuleFixPriceRoom     = "FIX_PRICE_ROOM"
	RuleOrderReplenish   = "ORDER_REPLENISH"
	RuleWatchDefault     = "WATCH_DEFAULT"
)

// ruleInput bundles everything a rule predicate may inspect.
type ruleInput struct {
	signal         *domain.ProductSignal
	metrics        domain.DerivedMetrics
	coverThreshold float64
	cfg            config.EngineConfig
}

// rule is one row of the classifier's decision table.
type rule struct {
	id      string
	action  domain.Action
	matches func(in ruleInput) bool
	reasons func(in ruleInput) []string
}

// Classifier maps derived metrics to an action via an ordered rule table.
// Rules are evaluated top to bottom and the first match wins; the order is
// part of the contract and must not be rearranged, or an unprofitable item
// with pricing room would double-match STOP and FIX_PRICE.
type Classifier struct {
	cfg   config.EngineConfig
	calc  *Calculator
	rules []rule
}

// NewClassifier builds the classifier with its fixed rule table.
func NewClassifier(cfg config.EngineConfig) *Classifier {
	c := &Classifier{cfg: cfg, calc: NewCalculator(cfg)}
	c.rules = []rule{
		{
			id:     RuleStopUnprofitable,
			action: domain.ActionStop,
			// Severely negative margin with no evidence we are priced at or
			// below the competitor low: structurally unprofitable and
			// uncompetitive, stop ordering it.
			matches: func(in ruleInput) bool {
				return marginSevere(in) && !priceFavorable(in)
			},
			reasons: func(in ruleInput) []string {
				reasons := []string{
					fmt.Sprintf("margin %.1f%% at or below stop floor %.1f%%",
						in.metrics.MarginPercent, in.cfg.SevereMarginPct),
				}
				if gap := in.metrics.PriceGapPercent; gap != nil {
					reasons = append(reasons, fmt.Sprintf(
						"own price %.1f%% above competitor low, no room to raise price", *gap))
				} else {
					reasons = append(reasons, "no competitor price to justify a price correction")
				}
				return reasons
			},
		},
		{
			id:     RuleFixPriceRoom,
			action: domain.ActionFixPrice,
			// Margin is unhealthy but we are still priced below the
			// competitor low: a pricing correction, not a stock action.
			matches: func(in ruleInput) bool {
				return marginUnhealthy(in) && priceRoom(in)
			},
			reasons: func(in ruleInput) []string {
				return []string{
					fmt.Sprintf("margin %.1f%% below healthy threshold %.1f%%",
						in.metrics.MarginPercent, in.cfg.HealthyMarginPct),
					fmt.Sprintf("own price %.1f%% below competitor low, room to raise price",
						-*in.metrics.PriceGapPercent),
				}
			},
		},
		{
			id:     RuleOrderReplenish,
			action: domain.ActionOrder,
			// Genuine replenishment need: moving stock, coverage below the
			// reorder point and margin not structurally broken.
			matches: func(in ruleInput) bool {
				return in.metrics.DailySalesRate > 0 &&
					coverBelowReorder(in) &&
					!marginSevere(in)
			},
			reasons: func(in ruleInput) []string {
				cover := 0.0
				if in.metrics.DaysOfCover != nil {
					cover = *in.metrics.DaysOfCover
				}
				reasons := []string{
					fmt.Sprintf("days of cover %.1f below reorder cover %.1f (ROP %d units)",
						cover, in.coverThreshold, in.metrics.ReorderPoint),
				}
				if in.signal.CurrentStock == 0 {
					reasons = append(reasons, "out of stock with active sales velocity")
				}
				return reasons
			},
		},
		{
			id:     RuleWatchDefault,
			action: domain.ActionWatch,
			// Catch-all: healthy stock, no velocity, or borderline metrics.
			matches: func(in ruleInput) bool { return true },
			reasons: func(in ruleInput) []string {
				switch in.metrics.CoverState {
				case domain.CoverInfinite:
					return []string{fmt.Sprintf(
						"stock %d with zero sales velocity, no replenishment need",
						in.signal.CurrentStock)}
				case domain.CoverUnknown:
					return []string{"no stock and no sales history, nothing to act on"}
				default:
					return []string{fmt.Sprintf(
						"days of cover %.1f at or above reorder cover %.1f",
						*in.metrics.DaysOfCover, in.coverThreshold)}
				}
			},
		},
	}

	return c
}

// Classify evaluates the rule table for one product. Exactly one rule
// fires; the table always terminates in the WATCH fallback.
func (c *Classifier) Classify(sig *domain.ProductSignal, m domain.DerivedMetrics) domain.Decision {
	in := ruleInput{
		signal:         sig,
		metrics:        m,
		coverThreshold: c.calc.CoverThresholdDays(m),
		cfg:            c.cfg,
	}

	for _, r := range c.rules {
		if r.matches(in) {
			return domain.Decision{
				Action:  r.action,
				Rule:    r.id,
				Reasons: r.reasons(in),
			}
		}
	}

	// The table ends in a catch-all; this is unreachable.
	return domain.Decision{Action: domain.ActionWatch, Rule: RuleWatchDefault}
}

func marginSevere(in ruleInput) bool {
	return in.metrics.MarginPercent <= in.cfg.SevereMarginPct
}

func marginUnhealthy(in ruleInput) bool {
	return in.metrics.MarginPercent < in.cfg.HealthyMarginPct
}

// priceFavorable means our price is known to sit at or below the
// competitor low. An unknown gap is never favorable.
func priceFavorable(in ruleInput) bool {
	return in.metrics.PriceGapPercent != nil && *in.metrics.PriceGapPercent <= 0
}

// priceRoom means we are strictly below the competitor low, so the price
// can be raised without becoming the most expensive listing.
func priceRoom(in ruleInput) bool {
	return in.metrics.PriceGapPercent != nil && *in.metrics.PriceGapPercent < 0
}

func coverBelowReorder(in ruleInput) bool {
	return in.metrics.CoverState == domain.CoverFinite &&
		in.metrics.DaysOfCover != nil &&
		*in.metrics.DaysOfCover < in.coverThreshold
}
