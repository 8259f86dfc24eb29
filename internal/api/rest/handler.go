// Package rest exposes the service's control surface: liveness plus
// fire-and-forget triggers for the extraction and report pipelines
package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adc-dairy/milkroom/internal/domain"
	"github.com/adc-dairy/milkroom/internal/logger"
)

// Triggers enqueue pipeline work; each returns ErrWorkerBusy when the
// worker's backlog is full
type Triggers struct {
	Extract func() error
	Report  func() error
}

// Handler defines the interface for REST API handlers
type Handler interface {
	// HealthCheck returns the liveness status of the process
	// GET /health
	HealthCheck(c *gin.Context)

	// TriggerExtraction enqueues an extraction run and responds immediately
	// POST /run
	TriggerExtraction(c *gin.Context)

	// TriggerReport enqueues a report dispatch and responds immediately
	// POST /report
	TriggerReport(c *gin.Context)
}

type handler struct {
	triggers Triggers
}

// NewHandler creates a REST handler over the pipeline triggers
func NewHandler(triggers Triggers) Handler {
	return &handler{triggers: triggers}
}

// HealthCheck reflects process liveness only; a failed pipeline run does not
// make the service unhealthy
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "milkroom",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) TriggerExtraction(c *gin.Context) {
	h.enqueue(c, "extraction", h.triggers.Extract)
}

func (h *handler) TriggerReport(c *gin.Context) {
	h.enqueue(c, "report", h.triggers.Report)
}

// enqueue always answers 202: the trigger is fire-and-forget and a full
// backlog means equivalent work is already queued
func (h *handler) enqueue(c *gin.Context, name string, trigger func() error) {
	queued := true
	if err := trigger(); err != nil {
		if !errors.Is(err, domain.ErrWorkerBusy) {
			logger.Error(err, zap.String("job", name))
		}
		queued = false
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "accepted",
		"job":    name,
		"queued": queued,
	})
}
