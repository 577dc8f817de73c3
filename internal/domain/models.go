package domain

// ProductSignal is the per-product input to the decision pipeline, joined
// from the catalog, sales and competitor price stores. Missing competitor
// or supplier data is carried as nil, never dropped.
type ProductSignal struct {
	ProductID    int64   `json:"product_id" db:"product_id"`
	Code         string  `json:"code" db:"code"`
	Name         string  `json:"name" db:"name"`
	Brand        string  `json:"brand" db:"brand"`
	Category     string  `json:"category" db:"category"`
	Supplier     *string `json:"supplier" db:"supplier"`
	CurrentStock int     `json:"current_stock" db:"current_stock"`

	Sales15 int `json:"sales_15d" db:"sales_15d"`
	Sales30 int `json:"sales_30d" db:"sales_30d"`
	Sales90 int `json:"sales_90d" db:"sales_90d"`

	BuyingPrice  float64 `json:"buying_price" db:"buying_price"`
	SellingPrice float64 `json:"selling_price" db:"selling_price"`
	// PetzzPrice is our own price as listed on the comparison source.
	PetzzPrice     float64  `json:"petzz_price" db:"petzz_price"`
	CompetitorLow  *float64 `json:"competitor_low" db:"competitor_low"`
	CompetitorHigh *float64 `json:"competitor_high" db:"competitor_high"`

	LeadTimeDays int     `json:"lead_time_days" db:"lead_time_days"`
	Desi         float64 `json:"desi" db:"desi"`
}

// SupplierName returns the supplier or an empty string when unknown.
func (s *ProductSignal) SupplierName() string {
	if s.Supplier == nil {
		return ""
	}
	return *s.Supplier
}

// CoverState distinguishes the days-of-cover sentinels from a real value.
type CoverState string

const (
	// CoverFinite means DaysOfCover holds a real forward-coverage value.
	CoverFinite CoverState = "finite"
	// CoverInfinite means there is stock but no sales velocity.
	CoverInfinite CoverState = "infinite"
	// CoverUnknown means no stock and no sales velocity; coverage is undefined.
	CoverUnknown CoverState = "no_data"
)

// DerivedMetrics is the output of the reorder metrics calculator.
type DerivedMetrics struct {
	DailySalesRate float64 `json:"daily_sales_rate"`
	ReorderPoint   int     `json:"reorder_point"`
	// DaysOfCover is nil unless CoverState is finite.
	DaysOfCover     *float64   `json:"days_of_cover"`
	CoverState      CoverState `json:"cover_state"`
	MarginPercent   float64    `json:"margin_percent"`
	PriceGapPercent *float64   `json:"price_gap_percent"`
}

// PriorityResult holds the unified urgency score with its sub-scores kept
// visible so a reviewer can see what drove the number.
type PriorityResult struct {
	Score               float64       `json:"score"`
	Label               PriorityLabel `json:"label"`
	StockUrgency        float64       `json:"stock_urgency"`
	Velocity            float64       `json:"velocity"`
	MarginHealth        float64       `json:"margin_health"`
	CompetitivePressure float64       `json:"competitive_pressure"`
}

// Decision is the classifier output for one product.
type Decision struct {
	Action  Action   `json:"action"`
	Rule    string   `json:"rule"`
	Reasons []string `json:"reasons"`
	// SuggestedOrderQty is 0 for every action other than ORDER.
	SuggestedOrderQty int `json:"suggested_order_qty"`
}

// DecisionRow is one fully evaluated product as returned by the facade.
type DecisionRow struct {
	ProductSignal
	Metrics  DerivedMetrics `json:"metrics"`
	Priority PriorityResult `json:"priority"`
	Decision Decision       `json:"decision"`
}

// SignalFilter selects products at the aggregator boundary.
type SignalFilter struct {
	Supplier    string `json:"supplier"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	StockStatus string `json:"stock_status"`
	Limit       int    `json:"limit"`
}

// Stock status filter values understood by the signal repository.
const (
	StockStatusInStock    = "in_stock"
	StockStatusOutOfStock = "out_of_stock"
	StockStatusLowStock   = "low_stock"
)

// DecisionFilter adds the engine-level filters on top of the signal filters.
type DecisionFilter struct {
	SignalFilter
	Action   string   `json:"action"`
	MinScore *float64 `json:"min_score"`
}

// DecisionKPIs are computed over the filtered result set, so they always
// agree with the returned item list.
type DecisionKPIs struct {
	TotalItems       int     `json:"total_items"`
	TotalOrderCost   float64 `json:"total_order_cost"`
	AvgPriorityScore float64 `json:"avg_priority_score"`
}

// EngineConfigEcho is the slice of active configuration echoed to consumers.
type EngineConfigEcho struct {
	LeadTimeDays    int `json:"lead_time_days"`
	TargetCoverDays int `json:"target_cover_days"`
}

// DecisionResponse is the payload of the decision-engine query.
type DecisionResponse struct {
	Items                []DecisionRow         `json:"items"`
	KPIs                 DecisionKPIs          `json:"kpis"`
	ActionDistribution   map[Action]int        `json:"action_distribution"`
	PriorityDistribution map[PriorityLabel]int `json:"priority_distribution"`
	Config               EngineConfigEcho      `json:"config"`
}

// OrderRecommendation is one line of a generated purchase list.
type OrderRecommendation struct {
	ProductID     int64         `json:"product_id"`
	Code          string        `json:"code"`
	Name          string        `json:"name"`
	Brand         string        `json:"brand"`
	Supplier      string        `json:"supplier"`
	CurrentStock  int           `json:"current_stock"`
	TargetStock   int           `json:"target_stock"`
	OrderQty      int           `json:"order_qty"`
	BuyingPrice   float64       `json:"buying_price"`
	OrderValue    float64       `json:"order_value"`
	Desi          float64       `json:"desi"`
	OrderDesi     float64       `json:"order_desi"`
	PriorityScore float64       `json:"priority_score"`
	PriorityLabel PriorityLabel `json:"priority_label"`
	Reasons       []string      `json:"reasons"`
}

// RecommendationSummary aggregates a purchase list.
type RecommendationSummary struct {
	TotalProducts   int     `json:"total_products"`
	TotalOrderQty   int     `json:"total_order_qty"`
	TotalOrderValue float64 `json:"total_order_value"`
	TotalDesi       float64 `json:"total_desi"`
}

// GroupSummary aggregates a purchase list per supplier or per brand.
type GroupSummary struct {
	Name       string  `json:"name"`
	Products   int     `json:"products"`
	OrderQty   int     `json:"order_qty"`
	OrderValue float64 `json:"order_value"`
}

// RecommendationResponse is the payload of the order-recommendations query.
type RecommendationResponse struct {
	Recommendations []OrderRecommendation `json:"recommendations"`
	Summary         RecommendationSummary `json:"summary"`
	SupplierSummary []GroupSummary        `json:"supplier_summary"`
	BrandSummary    []GroupSummary        `json:"brand_summary"`
}

// StrategyResponse is the payload of the strategy generation query.
type StrategyResponse struct {
	Template        string                `json:"template"`
	Recommendations []OrderRecommendation `json:"recommendations"`
	UrgentOrders    []OrderRecommendation `json:"urgent_orders"`
	Summary         RecommendationSummary `json:"summary"`
	SupplierSummary []GroupSummary        `json:"supplier_summary"`
	BrandSummary    []GroupSummary        `json:"brand_summary"`
}

// FilterOption is one distinct filter value with its product count.
type FilterOption struct {
	Value string `json:"value" db:"value"`
	Count int    `json:"count" db:"count"`
}

// FilterOptions lists the available filter values for the UI.
type FilterOptions struct {
	Suppliers  []FilterOption `json:"suppliers"`
	Categories []FilterOption `json:"categories"`
	Brands     []FilterOption `json:"brands"`
}
