package engine

import (
	"github.com/petzzshop/ops-backend/internal/config"
)

// Model selects which order-quantity computation a template uses.
type Model string

const (
	// ModelFixedTarget orders up to ROP plus a configured days-of-cover target.
	ModelFixedTarget Model = "fixed_target"
	// ModelRolling15 orders up to a rolling 15-day stock target.
	ModelRolling15 Model = "rolling_15d"
)

// Template is an immutable ordering-strategy configuration selected by id.
// Strategies differ only by these parameters; there is a single recommender
// consuming them rather than duplicated per-template logic.
type Template struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Model Model  `json:"model"`
	// LeadTimeDays overrides the per-product lead time when > 0.
	LeadTimeDays    int `json:"lead_time_days"`
	CoverDaysTarget int `json:"cover_days_target"`
}

var templates = []Template{
	{ID: "weekly_90d", Label: "Weekly ordering, 90-day cover", Model: ModelFixedTarget, LeadTimeDays: 7, CoverDaysTarget: 90},
	{ID: "biweekly_60d", Label: "Biweekly ordering, 60-day cover", Model: ModelFixedTarget, LeadTimeDays: 14, CoverDaysTarget: 60},
	{ID: "monthly_90d", Label: "Monthly ordering, 90-day cover", Model: ModelFixedTarget, LeadTimeDays: 30, CoverDaysTarget: 90},
	{ID: "rolling_15d", Label: "Rolling 15-day restock", Model: ModelRolling15},
}

// Templates lists the available strategy templates.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// TemplateByID looks up a strategy template.
func TemplateByID(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// DefaultTemplate is the fixed-target strategy used by the decision query:
// per-product lead times with the configured cover-days target.
func DefaultTemplate(cfg config.EngineConfig) Template {
	return Template{
		ID:              "default",
		Label:           "Default fixed-target restock",
		Model:           ModelFixedTarget,
		CoverDaysTarget: cfg.TargetCoverDays,
	}
}
