package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"clv-tracking-service/internal/model"
	"clv-tracking-service/internal/syncer"
	"clv-tracking-service/internal/tracker"
)

type TrackerController interface {
	Track(c *fiber.Ctx) error
	Session(c *fiber.Ctx) error
	SyncStatus(c *fiber.Ctx) error
	ForceSync(c *fiber.Ctx) error
}

// trackRequest is the ingest wire shape. Payload is passed through
// opaquely; any event type is accepted.
type trackRequest struct {
	Type    model.ActivityType `json:"type"`
	Payload map[string]any     `json:"payload"`
}

type trackerController struct {
	capture   *tracker.Capture
	scheduler *syncer.Scheduler
}

// NewTrackerController builds a TrackerController.
func NewTrackerController(capture *tracker.Capture, scheduler *syncer.Scheduler) TrackerController {
	return &trackerController{capture: capture, scheduler: scheduler}
}

// Track records one interaction event.
func (h *trackerController) Track(c *fiber.Ctx) error {
	var req trackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}
	if req.Type == "" {
		return fiber.NewError(fiber.StatusBadRequest, "type is required")
	}

	h.capture.Record(req.Type, req.Payload)
	return c.SendStatus(fiber.StatusAccepted)
}

// Session reports the current session's statistics.
func (h *trackerController) Session(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"sessionId":         h.capture.SessionID(),
		"sessionDurationMs": time.Since(h.capture.SessionStart()).Milliseconds(),
		"pendingActivities": h.capture.Pending(),
	})
}

// SyncStatus exposes the scheduler state for external observers.
func (h *trackerController) SyncStatus(c *fiber.Ctx) error {
	return c.JSON(h.scheduler.Status())
}

// ForceSync triggers an immediate sync cycle.
func (h *trackerController) ForceSync(c *fiber.Ctx) error {
	h.scheduler.ForceSync()
	return c.SendStatus(fiber.StatusAccepted)
}
