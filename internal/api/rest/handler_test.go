package rest_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adc-dairy/milkroom/internal/api/rest"
	"github.com/adc-dairy/milkroom/internal/domain"
	"github.com/adc-dairy/milkroom/internal/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func setupRouter(triggers rest.Triggers) *gin.Engine {
	router := gin.New()
	rest.SetupRoutes(router, rest.NewHandler(triggers))
	return router
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(rest.Triggers{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "milkroom", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestTriggerExtraction(t *testing.T) {
	called := false
	router := setupRouter(rest.Triggers{
		Extract: func() error {
			called = true
			return nil
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, called)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "extraction", body["job"])
	assert.Equal(t, true, body["queued"])
}

func TestTriggerReport(t *testing.T) {
	router := setupRouter(rest.Triggers{
		Report: func() error { return nil },
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/report", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestTrigger_BusyWorkerStillAccepted(t *testing.T) {
	router := setupRouter(rest.Triggers{
		Extract: func() error { return domain.ErrWorkerBusy },
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/run", nil)
	router.ServeHTTP(w, req)

	// Fire-and-forget: a full backlog is not the caller's problem
	assert.Equal(t, http.StatusAccepted, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["queued"])
}

func TestTrigger_UnexpectedErrorStillAccepted(t *testing.T) {
	router := setupRouter(rest.Triggers{
		Report: func() error { return errors.New("pool stopped") },
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/report", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestNoRoute(t *testing.T) {
	router := setupRouter(rest.Triggers{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["availableEndpoints"], "POST /run")
}
