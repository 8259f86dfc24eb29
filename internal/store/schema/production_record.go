package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ProductionRecord is one milk pickup, keyed by the portal's pickup ID.
// Re-ingesting a window updates every column in place, so lab results that
// arrive days after the pickup converge onto the same row.
type ProductionRecord struct {
	// ID is the surrogate primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`

	// PickupID is the portal's identifier for the pickup, the conflict target
	// for upserts
	PickupID string `gorm:"column:pickup_id;type:text;uniqueIndex;not null"`

	// PickupDate is when the milk was collected
	PickupDate time.Time `gorm:"column:pickup_date;not null;index"`

	// TankNumber identifies the farm tank the load was pumped from
	TankNumber *string `gorm:"column:tank_number;type:text"`

	// PickupAmount is the load volume in pounds
	PickupAmount *float64 `gorm:"column:pickup_amount"`

	// Temperature is the milk temperature at pickup in Fahrenheit
	Temperature *float64 `gorm:"column:temperature"`

	// RouteName, DriverName and HaulingCompany describe the haul
	RouteName      *string `gorm:"column:route_name;type:text"`
	DriverName     *string `gorm:"column:driver_name;type:text"`
	HaulingCompany *string `gorm:"column:hauling_company;type:text"`

	// Component percentages from the lab
	Fat          *float64 `gorm:"column:fat"`
	Protein      *float64 `gorm:"column:protein"`
	Lactose      *float64 `gorm:"column:lactose"`
	SolidsNotFat *float64 `gorm:"column:solids_not_fat"`

	// SomaticCellCount is the SCC in thousands of cells per mL
	SomaticCellCount *int64 `gorm:"column:somatic_cell_count"`

	// MilkUreaNitrogen in mg/dL
	MilkUreaNitrogen *float64 `gorm:"column:milk_urea_nitrogen"`

	// FreezePoint in degrees Hortvet, an adulteration indicator
	FreezePoint *float64 `gorm:"column:freeze_point"`

	// SampleBarcodes are the lab sample identifiers attached to the pickup
	SampleBarcodes datatypes.JSON `gorm:"column:sample_barcodes"`

	// LabID identifies the testing laboratory
	LabID *string `gorm:"column:lab_id;type:text"`

	// RouteSessionBOL is the bill-of-lading number for the route session
	RouteSessionBOL *string `gorm:"column:route_session_bol;type:text"`

	// CompanyID scopes records per cooperative company
	CompanyID string `gorm:"column:company_id;type:text;index"`

	// ExtractedAt is when the ingestion run observed this record
	ExtractedAt time.Time `gorm:"column:extracted_at;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name of ProductionRecord
func (ProductionRecord) TableName() string {
	return "production_record"
}
