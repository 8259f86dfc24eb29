package stats

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adc-dairy/milkroom/internal/adapter"
	"github.com/adc-dairy/milkroom/internal/logger"
	"github.com/adc-dairy/milkroom/internal/notify"
	"github.com/adc-dairy/milkroom/internal/store"
	"github.com/adc-dairy/milkroom/internal/store/schema"
)

// Reporter reads persisted production records, aggregates them over the
// 2/7/30-day windows and dispatches the daily report
type Reporter struct {
	store     store.Store
	notifier  notify.Notifier
	clock     adapter.Clock
	location  *time.Location
	companyID string
}

// NewReporter creates a reporter scoped to the given company
func NewReporter(s store.Store, notifier notify.Notifier, clock adapter.Clock, location *time.Location, companyID string) *Reporter {
	return &Reporter{
		store:     s,
		notifier:  notifier,
		clock:     clock,
		location:  location,
		companyID: companyID,
	}
}

// SendDailyReport builds and dispatches the report. A store read failure is
// surfaced as a high-priority notification rather than silently dropped;
// a dispatch failure of the report itself is logged only.
func (r *Reporter) SendDailyReport(ctx context.Context) error {
	now := r.clock.Now().In(r.location)

	twoDay, err := r.windowRecords(ctx, now, 2)
	if err != nil {
		return r.reportFailure(ctx, err)
	}
	sevenDay, err := r.windowRecords(ctx, now, 7)
	if err != nil {
		return r.reportFailure(ctx, err)
	}
	thirtyDay, err := r.windowRecords(ctx, now, 30)
	if err != nil {
		return r.reportFailure(ctx, err)
	}

	quality := QualityAverages{
		Fat:     WeightedAverage(sevenDay, func(rec schema.ProductionRecord) *float64 { return rec.Fat }),
		Protein: WeightedAverage(sevenDay, func(rec schema.ProductionRecord) *float64 { return rec.Protein }),
		SCC:     WeightedAverage(sevenDay, sccOf),
	}

	text := BuildReport(now,
		Summarize(twoDay, 2),
		Summarize(sevenDay, 7),
		Summarize(thirtyDay, 30),
		quality,
	)

	logger.Info("daily report built",
		zap.Int("twoDayPickups", len(twoDay)),
		zap.Int("sevenDayPickups", len(sevenDay)),
		zap.Int("thirtyDayPickups", len(thirtyDay)),
	)

	if err := r.notifier.Send(ctx, "Daily Milk Report", text, notify.PriorityDefault); err != nil {
		logger.Error(err, zap.String("title", "Daily Milk Report"))
	}
	return nil
}

// sccOf widens the stored integer SCC for the weighted-average math
func sccOf(rec schema.ProductionRecord) *float64 {
	if rec.SomaticCellCount == nil {
		return nil
	}
	f := float64(*rec.SomaticCellCount)
	return &f
}

func (r *Reporter) windowRecords(ctx context.Context, now time.Time, days int) ([]schema.ProductionRecord, error) {
	since := now.AddDate(0, 0, -days)
	records, err := r.store.ListRecordsSince(ctx, r.companyID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load %d-day window: %w", days, err)
	}
	return WithVolume(records), nil
}

func (r *Reporter) reportFailure(ctx context.Context, cause error) error {
	logger.Error(cause)
	message := fmt.Sprintf("Report generation failed: %v", cause)
	if err := r.notifier.Send(ctx, "Milk Report Error", message, notify.PriorityHigh); err != nil {
		logger.Error(err)
	}
	return cause
}
