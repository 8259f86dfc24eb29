package portal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adc-dairy/milkroom/internal/domain"
	"github.com/adc-dairy/milkroom/internal/mocks"
	"github.com/adc-dairy/milkroom/internal/portal"
)

func TestWindow(t *testing.T) {
	today := time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC)

	start, end := portal.Window(today)

	assert.Equal(t, "2024-03-05", start.Format(domain.DateOnly))
	assert.Equal(t, "2024-03-15", end.Format(domain.DateOnly))
}

func TestFetchProduction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := portal.NewClient(httpClient, "https://api.portal.test", "https://portal.test/#/login")

	start := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	payload := []byte(`{"productionData":[]}`)

	httpClient.EXPECT().
		Get(gomock.Any(),
			"https://api.portal.test/pickups/producer-production?endDate=2024-03-15&producerId=prod-1&startDate=2024-03-05",
			gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, headers map[string]string) (int, []byte, error) {
			assert.Equal(t, "Bearer tok-123", headers["Authorization"])
			assert.Equal(t, "application/json, text/plain, */*", headers["Accept"])
			assert.Equal(t, "https://portal.test/", headers["Referer"])
			assert.NotEmpty(t, headers["User-Agent"])
			return 200, payload, nil
		})

	body, err := client.FetchProduction(context.Background(), "tok-123", "prod-1", start, end)
	require.NoError(t, err)
	assert.Equal(t, payload, body)
}

func TestFetchProduction_NonSuccessStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := portal.NewClient(httpClient, "https://api.portal.test", "https://portal.test/#/login")

	httpClient.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(401, []byte(`{"message":"unauthorized"}`), nil)

	_, err := client.FetchProduction(context.Background(), "expired", "prod-1", time.Now(), time.Now())

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 401, fetchErr.Status)
	assert.Contains(t, fetchErr.Body, "unauthorized")
}

func TestFetchProduction_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := portal.NewClient(httpClient, "https://api.portal.test", "https://portal.test")

	httpClient.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(0, nil, errors.New("connection refused"))

	_, err := client.FetchProduction(context.Background(), "tok", "prod-1", time.Now(), time.Now())
	assert.ErrorContains(t, err, "failed to fetch production data")
}
