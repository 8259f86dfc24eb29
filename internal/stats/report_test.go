package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adc-dairy/milkroom/internal/stats"
)

func TestClassifySCC_Boundaries(t *testing.T) {
	tests := []struct {
		scc      float64
		expected stats.SCCSeverity
	}{
		{149.9, stats.SCCNominal},
		{150.0, stats.SCCCaution},
		{185.0, stats.SCCCaution},
		{185.1, stats.SCCAlert},
		{0, stats.SCCNominal},
		{400, stats.SCCAlert},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, stats.ClassifySCC(tt.scc), "scc=%v", tt.scc)
	}
}

func TestBuildReport(t *testing.T) {
	date := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

	two := stats.WindowStats{Days: 2, Pickups: 4, DailyAverage: 55000, LoadsPerDay: 2}
	seven := stats.WindowStats{Days: 7, Pickups: 14, DailyAverage: 54321.4, LoadsPerDay: 2}
	thirty := stats.WindowStats{Days: 30, Pickups: 60, DailyAverage: 52100, LoadsPerDay: 2}
	quality := stats.QualityAverages{Fat: 4.123, Protein: 3.25, SCC: 142.4}

	report := stats.BuildReport(date, two, seven, thirty, quality)

	assert.Contains(t, report, "Daily Milk Report - Mar 15, 2024")
	assert.Contains(t, report, "PRODUCTION AVERAGES")
	assert.Contains(t, report, "• 2-Day:   55,000 lbs")
	assert.Contains(t, report, "• 7-Day:   54,321 lbs")
	assert.Contains(t, report, "• 30-Day:  52,100 lbs")
	assert.Contains(t, report, "QUALITY (7-day avg)")
	assert.Contains(t, report, "• Fat: 4.12% | Protein: 3.25%")
	assert.Contains(t, report, "• SCC: 142k 🟢")
	assert.Contains(t, report, "PICKUP ACTIVITY")
	assert.Contains(t, report, "• Last 2 days: 4 pickups (2.00/day)")
	assert.Contains(t, report, "• Last 7 days: 14 pickups (2.00/day)")
}

func TestBuildReport_SCCFlags(t *testing.T) {
	date := time.Now()
	empty := stats.WindowStats{}

	caution := stats.BuildReport(date, empty, empty, empty, stats.QualityAverages{SCC: 160})
	assert.Contains(t, caution, "🟡")

	alert := stats.BuildReport(date, empty, empty, empty, stats.QualityAverages{SCC: 200})
	assert.Contains(t, alert, "🔴")
}
