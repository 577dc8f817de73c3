package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/petzzshop/ops-backend/internal/repository"
	"github.com/petzzshop/ops-backend/internal/storage"
)

// IngestService parses competitor price feed CSVs from a Drive folder or
// an S3-compatible bucket and upserts them into the competitor price store.
type IngestService struct {
	driveService *DriveService
	objectStore  storage.ObjectStorage
	repo         *repository.CompetitorPriceRepository
}

func NewIngestService(driveService *DriveService, objectStore storage.ObjectStorage, repo *repository.CompetitorPriceRepository) *IngestService {
	return &IngestService{
		driveService: driveService,
		objectStore:  objectStore,
		repo:         repo,
	}
}

// IngestResult summarizes one ingested feed file.
type IngestResult struct {
	Source  string `json:"source"`
	Rows    int    `json:"rows"`
	Matched int    `json:"matched"`
}

// IngestDriveFile ingests a single feed file from Google Drive.
func (s *IngestService) IngestDriveFile(ctx context.Context, fileID string) (*IngestResult, error) {
	if s.driveService == nil {
		return nil, fmt.Errorf("drive feed source is not configured")
	}

	pr, pw := io.Pipe()
	go func() {
		err := s.driveService.DownloadFile(fileID, pw)
		pw.CloseWithError(err)
	}()

	return s.ingest(ctx, "drive:"+fileID, pr)
}

// SyncObjectStore ingests every CSV object under the given prefix.
func (s *IngestService) SyncObjectStore(ctx context.Context, prefix string) ([]IngestResult, error) {
	if s.objectStore == nil {
		return nil, fmt.Errorf("object store feed source is not configured")
	}

	objects, err := s.objectStore.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	results := make([]IngestResult, 0, len(objects))
	for _, obj := range objects {
		if strings.ToLower(path.Ext(obj.Key)) != ".csv" {
			continue
		}

		reader, err := s.objectStore.GetObject(ctx, obj.Key)
		if err != nil {
			return nil, err
		}

		result, err := s.ingest(ctx, "s3:"+obj.Key, reader)
		reader.Close()
		if err != nil {
			return nil, fmt.Errorf("ingest %s: %w", obj.Key, err)
		}

		results = append(results, *result)
	}

	return results, nil
}

// Feed columns expected in competitor price CSVs.
var requiredColumns = []string{"code", "petzz_price"}

func (s *IngestService) ingest(ctx context.Context, source string, r io.Reader) (*IngestResult, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("feed is missing required column: %s", col)
		}
	}

	capturedAt := time.Now().UTC()

	var rows []repository.CompetitorPriceRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read feed record: %w", err)
		}

		row, err := parseRow(record, colMap, capturedAt)
		if err != nil {
			return nil, fmt.Errorf("malformed feed row: %w", err)
		}
		rows = append(rows, row)
	}

	matched, err := s.repo.UpsertBatch(ctx, rows)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("source", source).
		Int("rows", len(rows)).
		Int("matched", matched).
		Msg("competitor feed ingested")

	return &IngestResult{Source: source, Rows: len(rows), Matched: matched}, nil
}

func parseRow(record []string, colMap map[string]int, capturedAt time.Time) (repository.CompetitorPriceRow, error) {
	getValue := func(col string) string {
		if idx, ok := colMap[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	code := getValue("code")
	if code == "" {
		return repository.CompetitorPriceRow{}, fmt.Errorf("empty product code")
	}

	petzzPrice, err := strconv.ParseFloat(getValue("petzz_price"), 64)
	if err != nil {
		return repository.CompetitorPriceRow{}, fmt.Errorf("bad petzz_price for %s: %w", code, err)
	}

	row := repository.CompetitorPriceRow{
		ProductCode: code,
		PetzzPrice:  petzzPrice,
		CapturedAt:  capturedAt,
	}

	// Competitor low/high are optional: absence means no equivalent
	// listing was found, which downstream scoring treats as neutral.
	if raw := getValue("competitor_low"); raw != "" {
		low, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return repository.CompetitorPriceRow{}, fmt.Errorf("bad competitor_low for %s: %w", code, err)
		}
		row.LowPrice = &low
	}
	if raw := getValue("competitor_high"); raw != "" {
		high, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return repository.CompetitorPriceRow{}, fmt.Errorf("bad competitor_high for %s: %w", code, err)
		}
		row.HighPrice = &high
	}

	return row, nil
}
