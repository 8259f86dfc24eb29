package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/adc-dairy/milkroom/internal/config"
	"github.com/adc-dairy/milkroom/internal/store/schema"
)

// upsertBatchSize keeps each multi-row insert well under the driver's
// parameter limit
const upsertBatchSize = 500

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a PostgreSQL-backed store
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Open connects to PostgreSQL and applies pool settings
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	return db, nil
}

// AutoMigrate creates or updates the pipeline tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.ExtractBatch{},
		&schema.ProductionRecord{},
	)
}

func (s *pgStore) CreateExtractBatch(ctx context.Context, batch *schema.ExtractBatch) error {
	if err := s.db.WithContext(ctx).Create(batch).Error; err != nil {
		return fmt.Errorf("failed to create extract batch: %w", err)
	}
	return nil
}

func (s *pgStore) UpsertProductionRecords(ctx context.Context, records []schema.ProductionRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pickup_id"}},
			UpdateAll: true,
		}).
		CreateInBatches(&records, upsertBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert production records: %w", err)
	}
	return nil
}

func (s *pgStore) ListRecordsSince(ctx context.Context, companyID string, since time.Time) ([]schema.ProductionRecord, error) {
	var records []schema.ProductionRecord
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND pickup_date >= ?", companyID, since).
		Order("pickup_date").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list production records: %w", err)
	}
	return records, nil
}
