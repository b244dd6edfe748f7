package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"clv-tracking-service/internal/identity"
	"clv-tracking-service/internal/model"
	"clv-tracking-service/internal/tracker"
)

// State is the scheduler's observable bookkeeping. Exposed as a
// snapshot copy; only the scheduler mutates the original.
type State struct {
	IsRunning     bool       `json:"isRunning"`
	LastSyncTime  *time.Time `json:"lastSyncTime,omitempty"`
	RetryAttempts int        `json:"retryAttempts"`
	IsOnline      bool       `json:"isOnline"`
}

// NetStatus is the network connectivity signal the scheduler gates on.
type NetStatus interface {
	Online() bool
	OnChange(fn func(bool)) func()
}

// RecentLog is the best-effort local fallback for synced records.
type RecentLog interface {
	AppendRecent(entry any) error
}

// Options tunes the scheduler's timers and retry policy.
type Options struct {
	SyncInterval   time.Duration
	FlushInterval  time.Duration
	RetryBaseDelay time.Duration
	MaxRetries     int
}

type cycleKind int

const (
	// cycleFlush runs only when the queue holds events.
	cycleFlush cycleKind = iota
	// cycleFull always runs the pipeline.
	cycleFull
	// cycleRetry re-attempts the failed sinks of a retained record.
	cycleRetry
)

type retryState struct {
	record  model.CustomerValueRecord
	docDone bool
	apiDone bool
}

// Scheduler drives the capture → aggregate → synthesize → publish
// pipeline on periodic timers, auth transitions, network recovery and
// the capture backpressure signal. All pipeline state is mutated from
// its single run goroutine; the other components receive snapshots.
type Scheduler struct {
	capture   *tracker.Capture
	synth     *tracker.Synthesizer
	publisher *Publisher
	api       CustomerAPI // optional batch archive target
	recent    RecentLog   // optional local fallback
	ids       identity.Provider
	net       NetStatus
	logger    *zap.Logger
	opts      Options
	now       func() time.Time

	mu       sync.Mutex
	running  bool
	lastSync time.Time
	attempts int
	retry    *retryState

	trigger    chan cycleKind
	stop       chan struct{}
	done       chan struct{}
	retryTimer *time.Timer
	unsubs     []func()
}

// NewScheduler wires the pipeline. api and recent may be nil; their
// absence disables batch archival and the local fallback respectively.
func NewScheduler(
	capture *tracker.Capture,
	synth *tracker.Synthesizer,
	publisher *Publisher,
	api CustomerAPI,
	recent RecentLog,
	ids identity.Provider,
	net NetStatus,
	opts Options,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		capture:   capture,
		synth:     synth,
		publisher: publisher,
		api:       api,
		recent:    recent,
		ids:       ids,
		net:       net,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		trigger:   make(chan cycleKind, 4),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start subscribes to auth and network transitions and launches the run
// loop. Call Stop to tear the scheduler down.
func (s *Scheduler) Start() {
	s.unsubs = append(s.unsubs,
		s.ids.OnChange(func(_ identity.Identity, signedIn bool) {
			if signedIn {
				s.request(cycleFull)
			}
		}),
		s.net.OnChange(func(online bool) {
			if online {
				s.request(cycleFull)
			}
		}),
	)

	go s.run()
	s.logger.Info("sync scheduler started",
		zap.Duration("sync_interval", s.opts.SyncInterval),
		zap.Duration("flush_interval", s.opts.FlushInterval),
	)
}

// Stop cancels the timers and listener registrations. An in-flight
// cycle is not preempted; it completes before the loop exits.
func (s *Scheduler) Stop() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	close(s.stop)
	<-s.done

	s.mu.Lock()
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.mu.Unlock()
}

// ForceSync requests an immediate full cycle.
func (s *Scheduler) ForceSync() {
	s.request(cycleFull)
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() State {
	s.mu.Lock()
	state := State{
		IsRunning:     s.running,
		RetryAttempts: s.attempts,
	}
	if !s.lastSync.IsZero() {
		t := s.lastSync
		state.LastSyncTime = &t
	}
	s.mu.Unlock()

	state.IsOnline = s.net.Online()
	return state
}

func (s *Scheduler) request(kind cycleKind) {
	select {
	case s.trigger <- kind:
	default:
	}
}

func (s *Scheduler) run() {
	defer close(s.done)

	syncTicker := time.NewTicker(s.opts.SyncInterval)
	defer syncTicker.Stop()
	flushTicker := time.NewTicker(s.opts.FlushInterval)
	defer flushTicker.Stop()

	for {
		select {
		case <-syncTicker.C:
			s.runCycle(cycleFull)
		case <-flushTicker.C:
			s.runCycle(cycleFlush)
		case <-s.capture.Backpressure():
			s.runCycle(cycleFlush)
		case kind := <-s.trigger:
			s.runCycle(kind)
		case <-s.stop:
			return
		}
	}
}

// runCycle is the Idle → Running → (Succeeded|Failed) → Idle
// transition. While offline every trigger is suppressed; queued events
// keep accumulating until the online signal fires.
func (s *Scheduler) runCycle(kind cycleKind) {
	if !s.net.Online() {
		s.logger.Debug("offline, sync suppressed")
		return
	}

	id, signedIn := s.ids.Current()
	if !signedIn {
		s.logger.Debug("not authenticated, sync skipped")
		return
	}
	if id.UID == "" {
		// Permanent failure: a principal without an id cannot key a
		// record. Abandon the cycle without retry.
		s.logger.Error("malformed identity, sync cycle abandoned")
		return
	}

	if kind == cycleRetry {
		s.runRetry(id)
		return
	}

	if kind == cycleFlush && s.capture.Pending() == 0 {
		return
	}

	s.setRunning(true)
	defer s.setRunning(false)

	ctx := context.Background()

	batch := s.capture.Swap()
	insight := tracker.Aggregate(batch, s.capture.SessionStart(), s.now())
	record := s.synth.Synthesize(id, insight)

	// A fresh record supersedes any pending retry.
	s.clearRetry()

	result := s.publisher.Publish(ctx, record, false, false)

	s.archiveBatch(ctx, id, insight, batch)

	if result.Failed() {
		s.scheduleRetry(record, result)
		return
	}
	s.completeSuccess(record)
}

// runRetry re-attempts only the sinks that failed for the retained
// record. The succeeded sink is not re-attempted.
func (s *Scheduler) runRetry(id identity.Identity) {
	s.mu.Lock()
	retry := s.retry
	s.mu.Unlock()
	if retry == nil {
		return
	}

	s.setRunning(true)
	defer s.setRunning(false)

	s.logger.Info("retrying failed sinks",
		zap.String("customer_id", retry.record.ID),
		zap.Bool("docstore_pending", !retry.docDone),
		zap.Bool("api_pending", !retry.apiDone),
	)

	result := s.publisher.Publish(context.Background(), retry.record, retry.docDone, retry.apiDone)
	if result.Failed() {
		s.scheduleRetry(retry.record, result)
		return
	}
	s.completeSuccess(retry.record)
}

// archiveBatch uploads the consumed batch for server-side archival.
// Best effort: failure is logged, never retried, and does not fail the
// cycle.
func (s *Scheduler) archiveBatch(ctx context.Context, id identity.Identity, insight model.EngagementInsight, batch model.ActivityBatch) {
	if s.api == nil || len(batch) == 0 {
		return
	}

	err := s.api.SendActivities(ctx, model.ActivityBatchRequest{
		UserID:          id.UID,
		SessionID:       s.capture.SessionID(),
		SessionDuration: insight.SessionDuration.Milliseconds(),
		Activities:      batch,
	})
	if err != nil {
		s.logger.Warn("activity batch archive failed", zap.Error(err))
	}
}

func (s *Scheduler) completeSuccess(record model.CustomerValueRecord) {
	s.mu.Lock()
	s.attempts = 0
	s.lastSync = s.now()
	s.mu.Unlock()
	s.clearRetry()

	if s.recent != nil {
		if err := s.recent.AppendRecent(record); err != nil {
			s.logger.Warn("local fallback append failed", zap.Error(err))
		}
	}

	s.logger.Info("sync completed",
		zap.String("customer_id", record.ID),
		zap.Float64("clv", record.CLV),
		zap.Int("engagement_score", record.EngagementScore),
	)
}

// scheduleRetry books a delayed re-attempt with linear backoff. Beyond
// the ceiling the counter resets and the scheduler waits for the next
// natural trigger instead of retrying indefinitely.
func (s *Scheduler) scheduleRetry(record model.CustomerValueRecord, result PublishResult) {
	s.mu.Lock()
	s.attempts++
	attempt := s.attempts

	if attempt > s.opts.MaxRetries {
		s.attempts = 0
		s.retry = nil
		s.mu.Unlock()
		s.logger.Error("sync retry attempts exhausted, waiting for next trigger",
			zap.Int("max_retries", s.opts.MaxRetries),
		)
		return
	}

	s.retry = &retryState{
		record:  record,
		docDone: result.DocStore.Outcome != OutcomeFailed,
		apiDone: result.API.Outcome != OutcomeFailed,
	}

	delay := s.opts.RetryBaseDelay * time.Duration(attempt)
	if s.retryTimer != nil {
		s.retryTimer.Stop()
	}
	s.retryTimer = time.AfterFunc(delay, func() {
		s.request(cycleRetry)
	})
	s.mu.Unlock()

	s.logger.Warn("sync failed, retry scheduled",
		zap.Int("attempt", attempt),
		zap.Int("max_retries", s.opts.MaxRetries),
		zap.Duration("delay", delay),
	)
}

func (s *Scheduler) clearRetry() {
	s.mu.Lock()
	s.retry = nil
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.mu.Unlock()
}

func (s *Scheduler) setRunning(running bool) {
	s.mu.Lock()
	s.running = running
	s.mu.Unlock()
}
