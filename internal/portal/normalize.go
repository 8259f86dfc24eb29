package portal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/adc-dairy/milkroom/internal/adapter"
	"github.com/adc-dairy/milkroom/internal/domain"
	"github.com/adc-dairy/milkroom/internal/logger"
	"github.com/adc-dairy/milkroom/internal/store/schema"
)

// rawPickup mirrors one entry of the portal's productionData array. Numeric
// fields arrive as numbers or as quoted strings depending on the portal
// release, so they are kept raw and coerced per field.
type rawPickup struct {
	ID                 string          `json:"id"`
	PickupDate         string          `json:"pickup_date"`
	TankNumber         json.RawMessage `json:"tank_number"`
	PickupAmount       json.RawMessage `json:"pickup_amount"`
	Temperature        json.RawMessage `json:"temperature"`
	RouteName          *string         `json:"route_name"`
	DriverName         *string         `json:"driver_name"`
	HaulingCompanyName *string         `json:"hauling_company_name"`
	Fat                json.RawMessage `json:"fat"`
	Protein            json.RawMessage `json:"protein"`
	Lactose            json.RawMessage `json:"lactose"`
	SolidsNotFat       json.RawMessage `json:"solids_not_fat"`
	SomaticCellCount   json.RawMessage `json:"somatic_cell_count"`
	MilkUreaNitrogen   json.RawMessage `json:"milk_urea_nitrogen"`
	FreezePoint        json.RawMessage `json:"freeze_point"`
	SampleBarcodes     []string        `json:"sample_barcodes"`
	LabID              *string         `json:"lab_id"`
	RouteSessionBOL    *string         `json:"route_session_bol"`
}

type rawPayload struct {
	ProductionData               []rawPickup     `json:"productionData"`
	CurrentPeriodTotalProduction json.RawMessage `json:"currentPeriodTotalProduction"`
	PrevPeriodTotalProduction    json.RawMessage `json:"prevPeriodTotalProduction"`
	DailyPercentChange           json.RawMessage `json:"dailyPercentChange"`
	WeeklyPercentChange          json.RawMessage `json:"weeklyPercentChange"`
	MonthlyPercentChange         json.RawMessage `json:"monthlyPercentChange"`
}

// NormalizedBatch is the typed result of normalizing one payload
type NormalizedBatch struct {
	Records []schema.ProductionRecord

	RecordCount          int
	CurrentPeriodTotal   *float64
	PreviousPeriodTotal  *float64
	DailyPercentChange   *float64
	WeeklyPercentChange  *float64
	MonthlyPercentChange *float64
}

// Normalizer maps raw portal payloads to persistent records
type Normalizer struct {
	json adapter.JSON
}

// NewNormalizer creates a normalizer
func NewNormalizer(jsonAdapter adapter.JSON) *Normalizer {
	return &Normalizer{json: jsonAdapter}
}

// Normalize parses the payload and maps every pickup to a production record.
// An unparseable payload fails the run; an individual record with a bad date
// does not, it falls back to the observation time so the pickup is not lost.
func (n *Normalizer) Normalize(body []byte, observedAt time.Time, companyID string) (*NormalizedBatch, error) {
	var payload rawPayload
	if err := n.json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse production payload: %w", err)
	}

	batch := &NormalizedBatch{
		RecordCount:          len(payload.ProductionData),
		CurrentPeriodTotal:   floatValue(payload.CurrentPeriodTotalProduction),
		PreviousPeriodTotal:  floatValue(payload.PrevPeriodTotalProduction),
		DailyPercentChange:   floatValue(payload.DailyPercentChange),
		WeeklyPercentChange:  floatValue(payload.WeeklyPercentChange),
		MonthlyPercentChange: floatValue(payload.MonthlyPercentChange),
	}

	for _, pickup := range payload.ProductionData {
		if pickup.ID == "" {
			logger.Warn("skipping pickup without id")
			continue
		}
		batch.Records = append(batch.Records, n.mapPickup(pickup, observedAt, companyID))
	}

	return batch, nil
}

func (n *Normalizer) mapPickup(pickup rawPickup, observedAt time.Time, companyID string) schema.ProductionRecord {
	pickupDate, ok := parsePickupDate(pickup.PickupDate)
	if !ok {
		logger.Warn("unparseable pickup date, falling back to observation time",
			zap.String("pickupID", pickup.ID),
			zap.String("pickupDate", pickup.PickupDate),
		)
		pickupDate = observedAt
	}

	barcodes := datatypes.JSON("[]")
	if len(pickup.SampleBarcodes) > 0 {
		if encoded, err := n.json.Marshal(pickup.SampleBarcodes); err == nil {
			barcodes = datatypes.JSON(encoded)
		}
	}

	return schema.ProductionRecord{
		PickupID:         pickup.ID,
		PickupDate:       pickupDate,
		TankNumber:       stringValue(pickup.TankNumber),
		PickupAmount:     floatValue(pickup.PickupAmount),
		Temperature:      floatValue(pickup.Temperature),
		RouteName:        pickup.RouteName,
		DriverName:       pickup.DriverName,
		HaulingCompany:   pickup.HaulingCompanyName,
		Fat:              floatValue(pickup.Fat),
		Protein:          floatValue(pickup.Protein),
		Lactose:          floatValue(pickup.Lactose),
		SolidsNotFat:     floatValue(pickup.SolidsNotFat),
		SomaticCellCount: intValue(pickup.SomaticCellCount),
		MilkUreaNitrogen: floatValue(pickup.MilkUreaNitrogen),
		FreezePoint:      floatValue(pickup.FreezePoint),
		SampleBarcodes:   barcodes,
		LabID:            pickup.LabID,
		RouteSessionBOL:  pickup.RouteSessionBOL,
		CompanyID:        companyID,
		ExtractedAt:      observedAt,
	}
}

var pickupDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	domain.DateOnly,
}

func parsePickupDate(value string) (time.Time, bool) {
	for _, layout := range pickupDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// floatValue coerces a raw JSON scalar to a float. Accepts numbers and
// numeric strings; null, empty and garbage become nil.
func floatValue(raw json.RawMessage) *float64 {
	s, ok := scalarText(raw)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// intValue coerces a raw JSON scalar to an integer, truncating fractional
// values the way the portal's own UI rounds them down
func intValue(raw json.RawMessage) *int64 {
	f := floatValue(raw)
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}

// stringValue coerces a raw JSON scalar to a string, keeping numeric
// literals as their text form
func stringValue(raw json.RawMessage) *string {
	s, ok := scalarText(raw)
	if !ok {
		return nil
	}
	return &s
}

// scalarText returns the text of a JSON scalar, unquoting strings. The
// second return is false for null, absent and empty values.
func scalarText(raw json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", false
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		if s == "" {
			return "", false
		}
		return s, true
	}
	return trimmed, true
}
