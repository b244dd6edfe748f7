package model

import "time"

// ActivityType classifies an observed interaction.
type ActivityType string

const (
	ActivityPageView   ActivityType = "page_view"
	ActivityClick      ActivityType = "click"
	ActivityFormSubmit ActivityType = "form_submit"
	ActivityLogin      ActivityType = "login"
	ActivitySignup     ActivityType = "signup"
	ActivitySessionEnd ActivityType = "session_end"
	ActivityCustom     ActivityType = "custom"
)

// ActivityEvent is one observed interaction. Immutable once created.
// Payload is an opaque, unvalidated key/value map; unknown activity
// types are accepted and passed through untouched.
type ActivityEvent struct {
	Type      ActivityType   `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"sessionId"`
	URL       string         `json:"url"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// ActivityBatch is the ordered set of events collected between two sync
// points, oldest first. It is never persisted on its own; it exists as
// the unit the aggregator consumes.
type ActivityBatch []ActivityEvent

// EngagementInsight is the derived, aggregated view of one batch. It is
// a pure function of the batch plus the session start time and is
// recomputed fresh per sync cycle, never merged with a prior insight.
type EngagementInsight struct {
	TotalActivities int           `json:"totalActivities"`
	PageViews       int           `json:"pageViews"`
	Clicks          int           `json:"clicks"`
	FormSubmissions int           `json:"formSubmissions"`
	LoginCount      int           `json:"loginCount"`
	SessionDuration time.Duration `json:"sessionDuration"`
	EngagementScore int           `json:"engagementScore"`
}

// ActivityBatchRequest is the wire shape the tracker uploads to the
// archive endpoint.
type ActivityBatchRequest struct {
	UserID          string          `json:"userId"`
	SessionID       string          `json:"sessionId"`
	SessionDuration int64           `json:"sessionDurationMs"`
	Activities      []ActivityEvent `json:"activities"`
}

// ArchiveRow is one event attributed to a user, the unit the archive
// worker buffers and flushes.
type ArchiveRow struct {
	UserID string
	Event  ActivityEvent
}
