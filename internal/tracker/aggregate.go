package tracker

import (
	"time"

	"clv-tracking-service/internal/model"
)

// Engagement score weights. Fixed for compatibility with stored scores.
const (
	clickWeight      = 5
	formSubmitWeight = 15
	pageViewWeight   = 3
	maxScore         = 100
)

// Aggregate reduces a batch into an EngagementInsight. It is a pure,
// total function: an empty batch yields an all-zero insight.
func Aggregate(batch model.ActivityBatch, sessionStart, now time.Time) model.EngagementInsight {
	if len(batch) == 0 {
		return model.EngagementInsight{}
	}

	insight := model.EngagementInsight{
		TotalActivities: len(batch),
		SessionDuration: now.Sub(sessionStart),
	}
	if insight.SessionDuration < 0 {
		insight.SessionDuration = 0
	}

	for _, event := range batch {
		switch event.Type {
		case model.ActivityPageView:
			insight.PageViews++
		case model.ActivityClick:
			insight.Clicks++
		case model.ActivityFormSubmit:
			insight.FormSubmissions++
		case model.ActivityLogin, model.ActivitySignup:
			insight.LoginCount++
		}
	}

	score := insight.Clicks*clickWeight +
		insight.FormSubmissions*formSubmitWeight +
		insight.PageViews*pageViewWeight +
		int(insight.SessionDuration.Milliseconds()/60000)
	if score > maxScore {
		score = maxScore
	}
	insight.EngagementScore = score

	return insight
}
