package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/petzzshop/ops-backend/internal/domain"
)

// SignalRepository is the read path into the catalog, sales and competitor
// price stores. It returns one ProductSignal per matching catalog item;
// missing competitor data, supplier or sales history comes back as NULLs
// and zeros, never as dropped rows.
type SignalRepository interface {
	GetSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.ProductSignal, error)
	GetFilterOptions(ctx context.Context) (*domain.FilterOptions, error)
}

type signalRepository struct {
	db *sqlx.DB
}

// NewSignalRepository creates a Postgres-backed signal repository.
func NewSignalRepository(db *sqlx.DB) SignalRepository {
	return &signalRepository{db: db}
}

func (r *signalRepository) GetSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.ProductSignal, error) {
	query := `
        SELECT
            p.id AS product_id,
            p.code,
            p.name,
            p.brand,
            p.category,
            p.supplier,
            p.current_stock,
            COALESCE(s.sales_15d, 0) AS sales_15d,
            COALESCE(s.sales_30d, 0) AS sales_30d,
            COALESCE(s.sales_90d, 0) AS sales_90d,
            p.buying_price,
            p.selling_price,
            COALESCE(c.petzz_price, 0) AS petzz_price,
            c.low_price AS competitor_low,
            c.high_price AS competitor_high,
            COALESCE(p.lead_time_days, 0) AS lead_time_days,
            COALESCE(p.desi, 0) AS desi
        FROM products p
        LEFT JOIN sales_aggregates s ON s.product_id = p.id
        LEFT JOIN competitor_prices c ON c.product_id = p.id
        WHERE p.active
    `

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.Supplier != "" {
		conditions = append(conditions, fmt.Sprintf("p.supplier = $%d", argCounter))
		args = append(args, filter.Supplier)
		argCounter++
	}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("p.category = $%d", argCounter))
		args = append(args, filter.Category)
		argCounter++
	}

	if filter.Brand != "" {
		conditions = append(conditions, fmt.Sprintf("p.brand = $%d", argCounter))
		args = append(args, filter.Brand)
		argCounter++
	}

	switch filter.StockStatus {
	case domain.StockStatusOutOfStock:
		conditions = append(conditions, "p.current_stock = 0")
	case domain.StockStatusInStock:
		conditions = append(conditions, "p.current_stock > 0")
	case domain.StockStatusLowStock:
		// Rough SQL-side proxy: stock that covers less than the trailing
		// 30-day sales volume. The engine computes exact days of cover.
		conditions = append(conditions, "p.current_stock > 0 AND p.current_stock < COALESCE(s.sales_30d, 0)")
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY p.id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCounter)
		args = append(args, filter.Limit)
	}

	var signals []domain.ProductSignal
	if err := r.db.SelectContext(ctx, &signals, query, args...); err != nil {
		return nil, &domain.SignalUnavailableError{Op: "get signals", Err: err}
	}

	if err := sanitizeSignals(signals); err != nil {
		return nil, err
	}

	return signals, nil
}

// sanitizeSignals rejects malformed rows at the aggregator boundary so the
// downstream calculator never has to clamp negative inputs.
func sanitizeSignals(signals []domain.ProductSignal) error {
	for i := range signals {
		s := &signals[i]
		if s.CurrentStock < 0 {
			return &domain.SignalUnavailableError{
				Op:  "sanitize",
				Err: fmt.Errorf("product %d has negative stock %d", s.ProductID, s.CurrentStock),
			}
		}
		if s.BuyingPrice < 0 || s.SellingPrice < 0 {
			return &domain.SignalUnavailableError{
				Op:  "sanitize",
				Err: fmt.Errorf("product %d has negative price", s.ProductID),
			}
		}
		if s.Sales15 < 0 || s.Sales30 < 0 || s.Sales90 < 0 {
			return &domain.SignalUnavailableError{
				Op:  "sanitize",
				Err: fmt.Errorf("product %d has negative sales counts", s.ProductID),
			}
		}
	}
	return nil
}

func (r *signalRepository) GetFilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	options := &domain.FilterOptions{}

	queries := []struct {
		column string
		dest   *[]domain.FilterOption
	}{
		{"supplier", &options.Suppliers},
		{"category", &options.Categories},
		{"brand", &options.Brands},
	}

	for _, q := range queries {
		query := fmt.Sprintf(`
            SELECT %s AS value, COUNT(*) AS count
            FROM products
            WHERE active AND %s IS NOT NULL AND %s <> ''
            GROUP BY %s
            ORDER BY count DESC, value
        `, q.column, q.column, q.column, q.column)

		if err := r.db.SelectContext(ctx, q.dest, query); err != nil {
			return nil, &domain.SignalUnavailableError{Op: "get filter options", Err: err}
		}
	}

	return options, nil
}
