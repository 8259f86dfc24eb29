// Package schema defines the persistent data model
package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ExtractBatch is the audit row written once per extraction run. It keeps the
// raw payload verbatim so past runs can be re-normalized if the record
// mapping changes.
type ExtractBatch struct {
	// ID is the surrogate primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`

	// ExtractDate is when the run observed the payload
	ExtractDate time.Time `gorm:"column:extract_date;not null;index"`

	// RangeStart and RangeEnd are the inclusive fetch window
	RangeStart time.Time `gorm:"column:range_start;type:date;not null"`
	RangeEnd   time.Time `gorm:"column:range_end;type:date;not null"`

	// ProducerID and CompanyID scope the fetch
	ProducerID string `gorm:"column:producer_id;type:text;not null"`
	CompanyID  string `gorm:"column:company_id;type:text"`

	// RawData is the portal payload exactly as received
	RawData datatypes.JSON `gorm:"column:raw_data;not null"`

	// RecordCount is the number of production records in the payload
	RecordCount int `gorm:"column:record_count;not null;default:0"`

	// Period totals and percent changes as reported by the portal, kept as-is
	// for trend display
	CurrentPeriodTotal   *float64 `gorm:"column:current_period_total"`
	PreviousPeriodTotal  *float64 `gorm:"column:previous_period_total"`
	DailyPercentChange   *float64 `gorm:"column:daily_percent_change"`
	WeeklyPercentChange  *float64 `gorm:"column:weekly_percent_change"`
	MonthlyPercentChange *float64 `gorm:"column:monthly_percent_change"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name of ExtractBatch
func (ExtractBatch) TableName() string {
	return "extract_audit"
}
