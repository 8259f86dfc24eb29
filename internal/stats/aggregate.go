// Package stats computes trailing-window production aggregates and formats
// the daily report
package stats

import (
	"github.com/adc-dairy/milkroom/internal/store/schema"
)

// WindowStats summarizes production over a trailing window of calendar days
type WindowStats struct {
	Days    int
	Pickups int

	// DailyAverage is total volume divided by the window length. A sparse
	// window is averaged over the full period, understating the daily rate
	// rather than over-weighting recent pickups.
	DailyAverage float64

	// LoadsPerDay is pickup count divided by the window length
	LoadsPerDay float64
}

// WithVolume filters out records without a pickup volume; the aggregates
// only consider measured loads
func WithVolume(records []schema.ProductionRecord) []schema.ProductionRecord {
	kept := make([]schema.ProductionRecord, 0, len(records))
	for _, r := range records {
		if r.PickupAmount != nil {
			kept = append(kept, r)
		}
	}
	return kept
}

// Summarize computes the window aggregates over volume-bearing records
func Summarize(records []schema.ProductionRecord, days int) WindowStats {
	var total float64
	for _, r := range records {
		if r.PickupAmount != nil {
			total += *r.PickupAmount
		}
	}

	d := float64(days)
	return WindowStats{
		Days:         days,
		Pickups:      len(records),
		DailyAverage: total / d,
		LoadsPerDay:  float64(len(records)) / d,
	}
}

// WeightedAverage computes a volume-weighted average of the metric, over
// records where both the metric and the volume are present. Returns 0 when
// nothing qualifies or all qualifying volumes are zero.
func WeightedAverage(records []schema.ProductionRecord, metric func(schema.ProductionRecord) *float64) float64 {
	var weightedSum, totalWeight float64
	for _, r := range records {
		value := metric(r)
		if value == nil || r.PickupAmount == nil {
			continue
		}
		weightedSum += *value * *r.PickupAmount
		totalWeight += *r.PickupAmount
	}

	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}
