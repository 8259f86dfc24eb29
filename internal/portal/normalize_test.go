package portal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adc-dairy/milkroom/internal/adapter"
	"github.com/adc-dairy/milkroom/internal/portal"
)

func TestNormalize(t *testing.T) {
	normalizer := portal.NewNormalizer(adapter.NewJSON())
	observedAt := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)

	body := []byte(`{
		"productionData": [{
			"id": "p1",
			"pickup_date": "2024-03-10",
			"pickup_amount": "500",
			"fat": "3.7",
			"tank_number": 2,
			"sample_barcodes": ["BC-1", "BC-2"]
		}],
		"currentPeriodTotalProduction": 500,
		"prevPeriodTotalProduction": "480.5"
	}`)

	batch, err := normalizer.Normalize(body, observedAt, "company-1")
	require.NoError(t, err)

	assert.Equal(t, 1, batch.RecordCount)
	require.NotNil(t, batch.CurrentPeriodTotal)
	assert.Equal(t, 500.0, *batch.CurrentPeriodTotal)
	require.NotNil(t, batch.PreviousPeriodTotal)
	assert.Equal(t, 480.5, *batch.PreviousPeriodTotal)
	assert.Nil(t, batch.DailyPercentChange)

	require.Len(t, batch.Records, 1)
	record := batch.Records[0]
	assert.Equal(t, "p1", record.PickupID)
	assert.Equal(t, "2024-03-10", record.PickupDate.Format("2006-01-02"))
	require.NotNil(t, record.PickupAmount)
	assert.Equal(t, 500.0, *record.PickupAmount)
	require.NotNil(t, record.Fat)
	assert.Equal(t, 3.7, *record.Fat)
	require.NotNil(t, record.TankNumber)
	assert.Equal(t, "2", *record.TankNumber)
	assert.JSONEq(t, `["BC-1","BC-2"]`, string(record.SampleBarcodes))
	assert.Equal(t, "company-1", record.CompanyID)
	assert.Equal(t, observedAt, record.ExtractedAt)

	// Fields absent from the payload stay absent, not zero
	assert.Nil(t, record.Temperature)
	assert.Nil(t, record.SomaticCellCount)
	assert.Nil(t, record.LabID)
}

func TestNormalize_UnparseableDateFallsBackToObservation(t *testing.T) {
	normalizer := portal.NewNormalizer(adapter.NewJSON())
	observedAt := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)

	body := []byte(`{"productionData":[{"id":"p1","pickup_date":"soon"}]}`)

	batch, err := normalizer.Normalize(body, observedAt, "")
	require.NoError(t, err)
	require.Len(t, batch.Records, 1)
	assert.Equal(t, observedAt, batch.Records[0].PickupDate)
}

func TestNormalize_SkipsRecordsWithoutID(t *testing.T) {
	normalizer := portal.NewNormalizer(adapter.NewJSON())

	body := []byte(`{"productionData":[
		{"pickup_date":"2024-03-10","pickup_amount":100},
		{"id":"p2","pickup_date":"2024-03-11","pickup_amount":200}
	]}`)

	batch, err := normalizer.Normalize(body, time.Now(), "")
	require.NoError(t, err)

	// RecordCount reflects the payload; Records only carries keyable rows
	assert.Equal(t, 2, batch.RecordCount)
	require.Len(t, batch.Records, 1)
	assert.Equal(t, "p2", batch.Records[0].PickupID)
}

func TestNormalize_CoercionEdgeCases(t *testing.T) {
	normalizer := portal.NewNormalizer(adapter.NewJSON())

	body := []byte(`{"productionData":[{
		"id": "p1",
		"pickup_date": "2024-03-10T04:15:00Z",
		"pickup_amount": null,
		"temperature": "",
		"fat": "not-a-number",
		"somatic_cell_count": 142
	}]}`)

	batch, err := normalizer.Normalize(body, time.Now(), "")
	require.NoError(t, err)
	require.Len(t, batch.Records, 1)

	record := batch.Records[0]
	assert.Nil(t, record.PickupAmount)
	assert.Nil(t, record.Temperature)
	assert.Nil(t, record.Fat)
	require.NotNil(t, record.SomaticCellCount)
	assert.EqualValues(t, 142, *record.SomaticCellCount)
}

func TestNormalize_InvalidPayload(t *testing.T) {
	normalizer := portal.NewNormalizer(adapter.NewJSON())

	_, err := normalizer.Normalize([]byte("<html>gateway timeout</html>"), time.Now(), "")
	assert.ErrorContains(t, err, "failed to parse production payload")
}
