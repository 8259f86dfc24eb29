// Package store persists extraction output in PostgreSQL
package store

import (
	"context"
	"time"

	"github.com/adc-dairy/milkroom/internal/store/schema"
)

// Store is the persistence surface of the extraction and reporting pipelines
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// CreateExtractBatch writes the per-run audit row
	CreateExtractBatch(ctx context.Context, batch *schema.ExtractBatch) error

	// UpsertProductionRecords inserts the records, updating every column in
	// place for pickups already seen in a previous window
	UpsertProductionRecords(ctx context.Context, records []schema.ProductionRecord) error

	// ListRecordsSince returns the company's records with pickup_date on or
	// after the given time, ordered by pickup_date
	ListRecordsSince(ctx context.Context, companyID string, since time.Time) ([]schema.ProductionRecord, error)
}
