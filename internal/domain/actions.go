package domain

import "strings"

// Action is the classifier's single recommended next step for a product.
type Action string

const (
	ActionOrder    Action = "ORDER"
	ActionWatch    Action = "WATCH"
	ActionFixPrice Action = "FIX_PRICE"
	ActionStop     Action = "STOP"
)

// PriorityLabel buckets the priority score into discrete urgency bands.
type PriorityLabel string

const (
	PriorityHigh   PriorityLabel = "HIGH"
	PriorityMedium PriorityLabel = "MEDIUM"
	PriorityLow    PriorityLabel = "LOW"
)

var actionValues = map[string]Action{
	"order":     ActionOrder,
	"watch":     ActionWatch,
	"fix_price": ActionFixPrice,
	"stop":      ActionStop,
}

// ParseAction returns the Action for a given label (case-insensitive).
func ParseAction(label string) (Action, bool) {
	action, ok := actionValues[strings.ToLower(strings.TrimSpace(label))]

	return action, ok
}

// Actions lists all classifier actions in display order.
func Actions() []Action {
	return []Action{ActionOrder, ActionWatch, ActionFixPrice, ActionStop}
}

// PriorityLabels lists all priority bands from most to least urgent.
func PriorityLabels() []PriorityLabel {
	return []PriorityLabel{PriorityHigh, PriorityMedium, PriorityLow}
}
