package tracker

import (
	"math"
	"strings"
	"time"

	"clv-tracking-service/internal/identity"
	"clv-tracking-service/internal/model"
)

// Baseline is one family of CLV heuristic constants. Two families were
// observed in production data; they are kept as explicit named profiles
// instead of call-site accidents, with ActivityTracking the canonical
// default.
type Baseline struct {
	Source string

	PurchaseValue float64
	Frequency     float64
	Lifespan      float64

	ValueWeight     float64
	FrequencyWeight float64
	LifespanWeight  float64

	// High-intent bonuses.
	FormThreshold  int     // forms above this add ValueBonus
	ValueBonus     float64 //
	LoyaltySignal  func(insight model.EngagementInsight) bool
	LifespanBonus  float64
	LifespanInInts bool // floor lifespan instead of keeping one decimal
}

// BaselineActivityTracking is the canonical formula family: integer
// fields throughout, session length as the loyalty signal.
func BaselineActivityTracking() Baseline {
	return Baseline{
		Source:          "activity_tracking",
		PurchaseValue:   150,
		Frequency:       8,
		Lifespan:        2,
		ValueWeight:     0.5,
		FrequencyWeight: 0.3,
		LifespanWeight:  0.2,
		FormThreshold:   0,
		ValueBonus:      50,
		LoyaltySignal: func(insight model.EngagementInsight) bool {
			return insight.SessionDuration > 5*time.Minute
		},
		LifespanBonus:  1,
		LifespanInInts: true,
	}
}

// BaselineDataSync is the secondary family: higher bases, lifespan kept
// to one decimal, repeat logins as the loyalty signal.
func BaselineDataSync() Baseline {
	return Baseline{
		Source:          "data_sync",
		PurchaseValue:   200,
		Frequency:       10,
		Lifespan:        2.5,
		ValueWeight:     0.4,
		FrequencyWeight: 0.3,
		LifespanWeight:  0.2,
		FormThreshold:   2,
		ValueBonus:      100,
		LoyaltySignal: func(insight model.EngagementInsight) bool {
			return insight.LoginCount > 5
		},
		LifespanBonus:  0.5,
		LifespanInInts: false,
	}
}

// BaselineByName resolves a configured profile name, falling back to
// the canonical family for unknown names.
func BaselineByName(name string) Baseline {
	if strings.EqualFold(name, "data_sync") {
		return BaselineDataSync()
	}
	return BaselineActivityTracking()
}

// Synthesizer maps an identity plus an insight into a customer value
// record. Deterministic given its baseline; never fails.
type Synthesizer struct {
	baseline Baseline
	now      func() time.Time
}

// NewSynthesizer creates a Synthesizer for the given baseline.
func NewSynthesizer(baseline Baseline) *Synthesizer {
	return &Synthesizer{baseline: baseline, now: time.Now}
}

// Synthesize builds the denormalized record. Each base factor is scaled
// by 1 + score/100 * weight, intent bonuses are applied, and clv is
// computed last as the exact product of the three resulting factors.
func (s *Synthesizer) Synthesize(id identity.Identity, insight model.EngagementInsight) model.CustomerValueRecord {
	b := s.baseline
	multiplier := float64(insight.EngagementScore) / 100

	value := math.Floor(b.PurchaseValue * (1 + multiplier*b.ValueWeight))
	frequency := math.Floor(b.Frequency * (1 + multiplier*b.FrequencyWeight))
	lifespan := b.Lifespan * (1 + multiplier*b.LifespanWeight)
	if b.LifespanInInts {
		lifespan = math.Floor(lifespan)
	} else {
		lifespan = math.Round(lifespan*10) / 10
	}

	if insight.FormSubmissions > b.FormThreshold {
		value += b.ValueBonus
	}
	if b.LoyaltySignal != nil && b.LoyaltySignal(insight) {
		lifespan += b.LifespanBonus
	}

	record := model.CustomerValueRecord{
		ID:                   id.UID,
		Name:                 displayName(id),
		Email:                id.Email,
		AveragePurchaseValue: value,
		PurchaseFrequency:    frequency,
		CustomerLifespan:     lifespan,
		EngagementScore:      insight.EngagementScore,
		TotalActivities:      insight.TotalActivities,
		LastUpdated:          s.now().UTC(),
		Source:               b.Source,
		UserID:               id.UID,
	}
	record.CLV = record.ComputeCLV()

	return record
}

// displayName falls back to the local part of the email address when no
// display name is set.
func displayName(id identity.Identity) string {
	if id.DisplayName != "" {
		return id.DisplayName
	}
	if at := strings.IndexByte(id.Email, '@'); at > 0 {
		return id.Email[:at]
	}
	return id.Email
}
