package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "file",
		Usage:    "Path to the CSV file to load",
		Required: true,
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(s string) (sql.NullFloat64, error) {
	if s == "" {
		return sql.NullFloat64{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the catalog, sales and competitor price stores from CSV files",
		Commands: []*cli.Command{
			{
				Name:   "catalog",
				Usage:  "Load catalog products (code, name, brand, category, supplier, buying_price, selling_price, current_stock, lead_time_days, desi)",
				Flags:  []cli.Flag{newDBURLFlag(), newFileFlag()},
				Action: seedCatalog,
			},
			{
				Name:   "sales",
				Usage:  "Load sales aggregates (code, sales_15d, sales_30d, sales_90d)",
				Flags:  []cli.Flag{newDBURLFlag(), newFileFlag()},
				Action: seedSales,
			},
			{
				Name:   "competitors",
				Usage:  "Load competitor prices (code, petzz_price, competitor_low, competitor_high)",
				Flags:  []cli.Flag{newDBURLFlag(), newFileFlag()},
				Action: seedCompetitors,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type csvFile struct {
	reader *csv.Reader
	colMap map[string]int
	file   *os.File
}

func openCSV(path string, required []string) (*csvFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range required {
		if _, ok := colMap[col]; !ok {
			f.Close()
			return nil, fmt.Errorf("%s is missing required column: %s", path, col)
		}
	}

	return &csvFile{reader: reader, colMap: colMap, file: f}, nil
}

func (c *csvFile) Close() error {
	return c.file.Close()
}

func (c *csvFile) get(record []string, col string) string {
	if idx, ok := c.colMap[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func seedCatalog(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := openCSV(c.String("file"), []string{"code", "name"})
	if err != nil {
		return err
	}
	defer f.Close()

	count := 0
	for {
		record, err := f.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}

		buying, err := nullFloat(f.get(record, "buying_price"))
		if err != nil {
			return fmt.Errorf("bad buying_price for %s: %w", f.get(record, "code"), err)
		}
		selling, err := nullFloat(f.get(record, "selling_price"))
		if err != nil {
			return fmt.Errorf("bad selling_price for %s: %w", f.get(record, "code"), err)
		}
		desi, err := nullFloat(f.get(record, "desi"))
		if err != nil {
			return fmt.Errorf("bad desi for %s: %w", f.get(record, "code"), err)
		}

		stock, _ := strconv.Atoi(f.get(record, "current_stock"))
		leadTime, _ := strconv.Atoi(f.get(record, "lead_time_days"))

		_, err = db.ExecContext(c.Context, `
            INSERT INTO products (code, name, brand, category, supplier, buying_price, selling_price, current_stock, lead_time_days, desi, active)
            VALUES ($1, $2, $3, $4, $5, COALESCE($6, 0), COALESCE($7, 0), $8, $9, COALESCE($10, 0), true)
            ON CONFLICT (code) DO UPDATE SET
                name = EXCLUDED.name,
                brand = EXCLUDED.brand,
                category = EXCLUDED.category,
                supplier = EXCLUDED.supplier,
                buying_price = EXCLUDED.buying_price,
                selling_price = EXCLUDED.selling_price,
                current_stock = EXCLUDED.current_stock,
                lead_time_days = EXCLUDED.lead_time_days,
                desi = EXCLUDED.desi,
                active = true
        `,
			f.get(record, "code"),
			f.get(record, "name"),
			f.get(record, "brand"),
			f.get(record, "category"),
			nullIfEmpty(f.get(record, "supplier")),
			buying, selling, stock, leadTime, desi,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", f.get(record, "code"), err)
		}
		count++
	}

	log.Printf("seeded %d products", count)
	return nil
}

func seedSales(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := openCSV(c.String("file"), []string{"code", "sales_15d", "sales_30d", "sales_90d"})
	if err != nil {
		return err
	}
	defer f.Close()

	count := 0
	for {
		record, err := f.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}

		s15, _ := strconv.Atoi(f.get(record, "sales_15d"))
		s30, _ := strconv.Atoi(f.get(record, "sales_30d"))
		s90, _ := strconv.Atoi(f.get(record, "sales_90d"))

		_, err = db.ExecContext(c.Context, `
            INSERT INTO sales_aggregates (product_id, sales_15d, sales_30d, sales_90d)
            SELECT p.id, $2, $3, $4 FROM products p WHERE p.code = $1
            ON CONFLICT (product_id) DO UPDATE SET
                sales_15d = EXCLUDED.sales_15d,
                sales_30d = EXCLUDED.sales_30d,
                sales_90d = EXCLUDED.sales_90d
        `, f.get(record, "code"), s15, s30, s90)
		if err != nil {
			return fmt.Errorf("failed to upsert sales for %s: %w", f.get(record, "code"), err)
		}
		count++
	}

	log.Printf("seeded sales aggregates for %d products", count)
	return nil
}

func seedCompetitors(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := openCSV(c.String("file"), []string{"code", "petzz_price"})
	if err != nil {
		return err
	}
	defer f.Close()

	count := 0
	for {
		record, err := f.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}

		petzz, err := strconv.ParseFloat(f.get(record, "petzz_price"), 64)
		if err != nil {
			return fmt.Errorf("bad petzz_price for %s: %w", f.get(record, "code"), err)
		}
		low, err := nullFloat(f.get(record, "competitor_low"))
		if err != nil {
			return fmt.Errorf("bad competitor_low for %s: %w", f.get(record, "code"), err)
		}
		high, err := nullFloat(f.get(record, "competitor_high"))
		if err != nil {
			return fmt.Errorf("bad competitor_high for %s: %w", f.get(record, "code"), err)
		}

		_, err = db.ExecContext(c.Context, `
            INSERT INTO competitor_prices (product_id, petzz_price, low_price, high_price, captured_at)
            SELECT p.id, $2, $3, $4, now() FROM products p WHERE p.code = $1
            ON CONFLICT (product_id) DO UPDATE SET
                petzz_price = EXCLUDED.petzz_price,
                low_price = EXCLUDED.low_price,
                high_price = EXCLUDED.high_price,
                captured_at = EXCLUDED.captured_at
        `, f.get(record, "code"), petzz, low, high)
		if err != nil {
			return fmt.Errorf("failed to upsert competitor prices for %s: %w", f.get(record, "code"), err)
		}
		count++
	}

	log.Printf("seeded competitor prices for %d products", count)
	return nil
}
