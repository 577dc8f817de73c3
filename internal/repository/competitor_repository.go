package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/petzzshop/ops-backend/internal/repository/postgres"
)

// CompetitorPriceRow is one parsed row of a competitor price feed.
type CompetitorPriceRow struct {
	ProductCode string
	PetzzPrice  float64
	LowPrice    *float64
	HighPrice   *float64
	CapturedAt  time.Time
}

// CompetitorPriceRepository persists competitor price snapshots keyed by
// product. Rows for codes not present in the catalog are counted and
// skipped, not failed: the feed routinely carries delisted products.
type CompetitorPriceRepository struct {
	db *postgres.DB
}

func NewCompetitorPriceRepository(db *postgres.DB) *CompetitorPriceRepository {
	return &CompetitorPriceRepository{db: db}
}

// UpsertBatch writes a feed batch in a single transaction and returns the
// number of rows matched to catalog products.
func (r *CompetitorPriceRepository) UpsertBatch(ctx context.Context, rows []CompetitorPriceRow) (int, error) {
	matched := 0

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
            INSERT INTO competitor_prices (product_id, petzz_price, low_price, high_price, captured_at)
            SELECT p.id, $2, $3, $4, $5
            FROM products p
            WHERE p.code = $1
            ON CONFLICT (product_id) DO UPDATE SET
                petzz_price = EXCLUDED.petzz_price,
                low_price = EXCLUDED.low_price,
                high_price = EXCLUDED.high_price,
                captured_at = EXCLUDED.captured_at
        `)
		if err != nil {
			return fmt.Errorf("prepare competitor upsert: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			result, err := stmt.ExecContext(ctx,
				row.ProductCode, row.PetzzPrice, row.LowPrice, row.HighPrice, row.CapturedAt)
			if err != nil {
				return fmt.Errorf("upsert competitor price for %s: %w", row.ProductCode, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected for %s: %w", row.ProductCode, err)
			}
			matched += int(affected)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return matched, nil
}
