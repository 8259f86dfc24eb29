package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adc-dairy/milkroom/internal/adapter"
	"github.com/adc-dairy/milkroom/internal/browser"
	"github.com/adc-dairy/milkroom/internal/config"
	"github.com/adc-dairy/milkroom/internal/domain"
	"github.com/adc-dairy/milkroom/internal/mocks"
	"github.com/adc-dairy/milkroom/internal/pipeline"
	"github.com/adc-dairy/milkroom/internal/portal"
	"github.com/adc-dairy/milkroom/internal/store/schema"
)

type extractorFixture struct {
	launcher *mocks.MockLauncher
	session  *mocks.MockSession
	http     *mocks.MockHTTPClient
	store    *mocks.MockStore
	clock    *mocks.MockClock

	extractor *pipeline.Extractor
}

func newExtractorFixture(t *testing.T) *extractorFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &extractorFixture{
		launcher: mocks.NewMockLauncher(ctrl),
		session:  mocks.NewMockSession(ctrl),
		http:     mocks.NewMockHTTPClient(ctrl),
		store:    mocks.NewMockStore(ctrl),
		clock:    mocks.NewMockClock(ctrl),
	}

	cfg := config.PortalConfig{
		URL:          "https://portal.test/#/login",
		APIURL:       "https://api.portal.test",
		Email:        "user@farm.test",
		Password:     "secret",
		ProducerID:   "prod-1",
		CompanyID:    "company-1",
		LoginTimeout: 30 * time.Second,
		FetchTimeout: 5 * time.Second,
	}

	f.extractor = pipeline.NewExtractor(
		cfg,
		f.launcher,
		portal.NewClient(f.http, cfg.APIURL, cfg.URL),
		portal.NewNormalizer(adapter.NewJSON()),
		f.store,
		f.clock,
		time.UTC,
	)
	return f
}

// expectLogin wires the happy-path browser interaction up to an
// authenticated session holding the given cookies
func (f *extractorFixture) expectLogin(cookies map[string]string) {
	f.launcher.EXPECT().Launch(gomock.Any()).Return(f.session, nil)
	f.session.EXPECT().Navigate(gomock.Any(), "https://portal.test/#/login").Return(nil)

	f.session.EXPECT().
		WaitVisible(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, selector string, _ time.Duration) error {
			switch selector {
			case `input[type="email"]`, `input[type="password"]`, `button[type="submit"]`:
				return nil
			}
			return errors.New("not visible")
		}).
		AnyTimes()

	f.session.EXPECT().Fill(gomock.Any(), `input[type="email"]`, "user@farm.test").Return(nil)
	f.session.EXPECT().Fill(gomock.Any(), `input[type="password"]`, "secret").Return(nil)
	f.session.EXPECT().Click(gomock.Any(), `button[type="submit"]`).Return(nil)
	f.session.EXPECT().WaitNavigation(gomock.Any(), gomock.Any()).Return(browser.ErrNavigationTimeout)
	f.session.EXPECT().Location(gomock.Any()).Return("https://portal.test/#/dashboard", nil).AnyTimes()

	f.session.EXPECT().Cookies(gomock.Any()).Return(cookies, nil)
	f.session.EXPECT().LocalStorage(gomock.Any()).Return(map[string]string{}, nil)
	f.session.EXPECT().SessionStorage(gomock.Any()).Return(map[string]string{}, nil)
	f.session.EXPECT().Close().Return(nil)
}

func (f *extractorFixture) expectClock(now time.Time) {
	f.clock.EXPECT().Now().Return(now).AnyTimes()
	f.clock.EXPECT().Since(gomock.Any()).Return(time.Second).AnyTimes()
}

func TestRun(t *testing.T) {
	f := newExtractorFixture(t)
	now := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)

	f.expectClock(now)
	f.expectLogin(map[string]string{"auth_token": "tok-123"})

	payload := []byte(`{
		"productionData": [{"id":"p1","pickup_date":"2024-03-10","pickup_amount":"500","fat":"3.7"}],
		"currentPeriodTotalProduction": 500
	}`)

	f.http.EXPECT().
		Get(gomock.Any(),
			"https://api.portal.test/pickups/producer-production?endDate=2024-03-15&producerId=prod-1&startDate=2024-03-05",
			gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, headers map[string]string) (int, []byte, error) {
			assert.Equal(t, "Bearer tok-123", headers["Authorization"])
			return 200, payload, nil
		})

	f.store.EXPECT().
		CreateExtractBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, batch *schema.ExtractBatch) error {
			assert.Equal(t, "2024-03-05", batch.RangeStart.Format(domain.DateOnly))
			assert.Equal(t, "2024-03-15", batch.RangeEnd.Format(domain.DateOnly))
			assert.Equal(t, "prod-1", batch.ProducerID)
			assert.Equal(t, 1, batch.RecordCount)
			require.NotNil(t, batch.CurrentPeriodTotal)
			assert.Equal(t, 500.0, *batch.CurrentPeriodTotal)
			assert.JSONEq(t, string(payload), string(batch.RawData))
			return nil
		})

	f.store.EXPECT().
		UpsertProductionRecords(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, records []schema.ProductionRecord) error {
			require.Len(t, records, 1)
			assert.Equal(t, "p1", records[0].PickupID)
			assert.Equal(t, 500.0, *records[0].PickupAmount)
			assert.Equal(t, 3.7, *records[0].Fat)
			assert.Nil(t, records[0].SomaticCellCount)
			return nil
		})

	assert.NoError(t, f.extractor.Run(context.Background()))
}

func TestRun_NoTokenIsFatal(t *testing.T) {
	f := newExtractorFixture(t)
	f.expectClock(time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC))
	f.expectLogin(map[string]string{"theme": "dark"})

	// No fetch, no writes
	err := f.extractor.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoToken)
}

func TestRun_FetchFailureIsFatal(t *testing.T) {
	f := newExtractorFixture(t)
	f.expectClock(time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC))
	f.expectLogin(map[string]string{"auth_token": "expired"})

	f.http.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(401, []byte("unauthorized"), nil)

	var fetchErr *domain.FetchError
	err := f.extractor.Run(context.Background())
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 401, fetchErr.Status)
}

func TestRun_WriteFailuresDoNotFailTheRun(t *testing.T) {
	f := newExtractorFixture(t)
	f.expectClock(time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC))
	f.expectLogin(map[string]string{"auth_token": "tok"})

	f.http.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(200, []byte(`{"productionData":[{"id":"p1","pickup_date":"2024-03-10"}]}`), nil)

	// Both phases fail independently; the run still completes
	f.store.EXPECT().
		CreateExtractBatch(gomock.Any(), gomock.Any()).
		Return(errors.New("audit insert failed"))
	f.store.EXPECT().
		UpsertProductionRecords(gomock.Any(), gomock.Any()).
		Return(errors.New("upsert failed"))

	assert.NoError(t, f.extractor.Run(context.Background()))
}

func TestRun_LaunchFailure(t *testing.T) {
	f := newExtractorFixture(t)
	f.expectClock(time.Now())

	f.launcher.EXPECT().Launch(gomock.Any()).Return(nil, errors.New("chrome not found"))

	err := f.extractor.Run(context.Background())
	assert.ErrorContains(t, err, "failed to recover portal token")
}
