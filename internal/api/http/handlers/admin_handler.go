package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/worker"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// AdminHandler exposes operational endpoints restricted to admins.
type AdminHandler struct {
	cleanup *worker.CleanupWorker
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(cleanup *worker.CleanupWorker, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{cleanup: cleanup, metrics: metrics}
}

// RunCleanup handles POST /admin/cleanup, sweeping stale reset tokens on demand.
func (h *AdminHandler) RunCleanup(c *fiber.Ctx) error {
	deleted, err := h.cleanup.Sweep(c.UserContext())
	if err != nil {
		return apperrors.NewStorageUnavailable(err)
	}

	return c.JSON(fiber.Map{
		"message": "cleanup completed",
		"data":    fiber.Map{"deleted": deleted},
	})
}

// Metrics handles GET /admin/metrics, reporting in-memory counters.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	requests, errs, uptime := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"requests":       requests,
			"errors":         errs,
			"uptime_seconds": int64(uptime.Seconds()),
		},
	})
}
