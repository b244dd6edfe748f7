package tracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"clv-tracking-service/internal/model"
)

// Capture collects raw interaction events into a pending queue. When
// the queue reaches the high-water mark it signals the scheduler to run
// an out-of-band sync instead of waiting for the next tick, which keeps
// a hyperactive session from growing the queue without bound.
type Capture struct {
	mu        sync.Mutex
	pending   model.ActivityBatch
	highWater int
	signal    chan struct{}

	sessionID    string
	sessionStart time.Time
	baseURL      string
	now          func() time.Time
}

// NewCapture creates a capture with a fresh session. highWater <= 0
// disables the backpressure signal.
func NewCapture(baseURL string, highWater int) *Capture {
	now := time.Now()
	return &Capture{
		highWater:    highWater,
		signal:       make(chan struct{}, 1),
		sessionID:    fmt.Sprintf("session_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
		sessionStart: now,
		baseURL:      baseURL,
		now:          time.Now,
	}
}

// Record appends one event to the pending queue. Unknown event types
// are accepted and passed through opaquely; there is no validation.
func (c *Capture) Record(eventType model.ActivityType, payload map[string]any) {
	event := model.ActivityEvent{
		Type:      eventType,
		Timestamp: c.now().UTC(),
		SessionID: c.sessionID,
		URL:       c.baseURL,
		Payload:   payload,
	}

	c.mu.Lock()
	c.pending = append(c.pending, event)
	full := c.highWater > 0 && len(c.pending) >= c.highWater
	c.mu.Unlock()

	if full {
		select {
		case c.signal <- struct{}{}:
		default:
		}
	}
}

// Swap hands off the pending queue and replaces it with an empty one.
// Events recorded while a sync cycle runs land in the next batch, never
// the current one.
func (c *Capture) Swap() model.ActivityBatch {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()
	return batch
}

// Pending reports the current queue length.
func (c *Capture) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Backpressure exposes the high-water mark signal channel.
func (c *Capture) Backpressure() <-chan struct{} {
	return c.signal
}

// SessionID returns the stable id for this browsing session.
func (c *Capture) SessionID() string {
	return c.sessionID
}

// SessionStart returns when the session began.
func (c *Capture) SessionStart() time.Time {
	return c.sessionStart
}
