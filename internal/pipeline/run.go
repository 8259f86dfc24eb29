// Package pipeline orchestrates a full extraction run and the worker that
// serializes triggered runs
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/adc-dairy/milkroom/internal/adapter"
	"github.com/adc-dairy/milkroom/internal/browser"
	"github.com/adc-dairy/milkroom/internal/config"
	"github.com/adc-dairy/milkroom/internal/logger"
	"github.com/adc-dairy/milkroom/internal/portal"
	"github.com/adc-dairy/milkroom/internal/store"
	"github.com/adc-dairy/milkroom/internal/store/schema"
)

// Extractor runs the full extraction pipeline: browser login, token
// discovery, windowed fetch, normalization and the two-phase write
type Extractor struct {
	cfg        config.PortalConfig
	launcher   browser.Launcher
	client     *portal.Client
	normalizer *portal.Normalizer
	store      store.Store
	clock      adapter.Clock
	location   *time.Location
}

// NewExtractor wires an extractor from its collaborators
func NewExtractor(
	cfg config.PortalConfig,
	launcher browser.Launcher,
	client *portal.Client,
	normalizer *portal.Normalizer,
	s store.Store,
	clock adapter.Clock,
	location *time.Location,
) *Extractor {
	return &Extractor{
		cfg:        cfg,
		launcher:   launcher,
		client:     client,
		normalizer: normalizer,
		store:      s,
		clock:      clock,
		location:   location,
	}
}

// Run executes one extraction. Login, token discovery and the fetch are
// fatal on failure; the two persistence phases are independent, each logged
// on its own, and neither fails the other. Failures terminate only this run.
func (e *Extractor) Run(ctx context.Context) error {
	runID := uuid.NewString()
	startedAt := e.clock.Now()
	logger.Info("extraction run started", zap.String("runID", runID))

	token, err := e.recoverToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover portal token: %w", err)
	}

	observedAt := e.clock.Now().In(e.location)
	windowStart, windowEnd := portal.Window(observedAt)

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
	defer cancel()

	body, err := e.client.FetchProduction(fetchCtx, token, e.cfg.ProducerID, windowStart, windowEnd)
	if err != nil {
		return err
	}

	batch, err := e.normalizer.Normalize(body, observedAt, e.cfg.CompanyID)
	if err != nil {
		return err
	}

	audit := &schema.ExtractBatch{
		ExtractDate:          observedAt,
		RangeStart:           windowStart,
		RangeEnd:             windowEnd,
		ProducerID:           e.cfg.ProducerID,
		CompanyID:            e.cfg.CompanyID,
		RawData:              datatypes.JSON(body),
		RecordCount:          batch.RecordCount,
		CurrentPeriodTotal:   batch.CurrentPeriodTotal,
		PreviousPeriodTotal:  batch.PreviousPeriodTotal,
		DailyPercentChange:   batch.DailyPercentChange,
		WeeklyPercentChange:  batch.WeeklyPercentChange,
		MonthlyPercentChange: batch.MonthlyPercentChange,
	}

	if err := e.store.CreateExtractBatch(ctx, audit); err != nil {
		logger.Error(err, zap.String("runID", runID), zap.String("phase", "audit"))
	}

	if err := e.store.UpsertProductionRecords(ctx, batch.Records); err != nil {
		logger.Error(err,
			zap.String("runID", runID),
			zap.String("phase", "records"),
			zap.Int("recordCount", len(batch.Records)),
		)
	}

	logger.Info("extraction run finished",
		zap.String("runID", runID),
		zap.Int("recordCount", batch.RecordCount),
		zap.Duration("elapsed", e.clock.Since(startedAt)),
	)
	return nil
}

// recoverToken drives the browser through login and pulls a bearer token out
// of the authenticated session. The whole phase is bounded by the login
// timeout; the browser is torn down before the fetch starts.
func (e *Extractor) recoverToken(ctx context.Context) (string, error) {
	loginCtx, cancel := context.WithTimeout(ctx, e.cfg.LoginTimeout)
	defer cancel()

	session, err := e.launcher.Launch(loginCtx)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close browser session", zap.Error(err))
		}
	}()

	if err := session.Navigate(loginCtx, e.cfg.URL); err != nil {
		return "", err
	}

	form, err := portal.ResolveLoginForm(loginCtx, session, portal.DefaultProbeTimeout)
	if err != nil {
		return "", err
	}

	if err := portal.SubmitCredentials(loginCtx, session, form, e.cfg.Email, e.cfg.Password); err != nil {
		return "", err
	}

	cookies, err := session.Cookies(loginCtx)
	if err != nil {
		return "", err
	}
	localStorage, err := session.LocalStorage(loginCtx)
	if err != nil {
		return "", err
	}
	sessionStorage, err := session.SessionStorage(loginCtx)
	if err != nil {
		return "", err
	}

	token, source, err := portal.DiscoverToken(cookies, localStorage, sessionStorage)
	if err != nil {
		return "", err
	}

	logger.Info("portal token recovered", zap.String("source", string(source)))
	return token, nil
}
