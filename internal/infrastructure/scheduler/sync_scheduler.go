package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/infrastructure/logger"
)

// PassRunner runs one reconciliation pass to completion
type PassRunner interface {
	RunPass(ctx context.Context) fulfillment.PassReport
}

// SyncSchedulerConfig holds configuration for the sync scheduler
type SyncSchedulerConfig struct {
	// Interval is the wait between the end of one pass and the start of the next
	Interval time.Duration
	// PassTimeout bounds a single pass
	PassTimeout time.Duration
	// HistorySize is how many runs are kept for monitoring
	HistorySize int
	// RunOnStartup runs the first pass as soon as the scheduler starts
	RunOnStartup bool
}

// DefaultSyncSchedulerConfig returns default sync scheduler configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Interval:     time.Minute,
		PassTimeout:  10 * time.Minute,
		HistorySize:  100,
		RunOnStartup: true,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.PassTimeout <= 0 {
		return fmt.Errorf("%w: pass timeout must be positive", ErrInvalidConfig)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("%w: history size must be positive", ErrInvalidConfig)
	}
	return nil
}

// SyncScheduler drives reconciliation passes serially on a fixed period.
// At most one pass is in flight; the next wait starts after the previous pass returns.
type SyncScheduler struct {
	config SyncSchedulerConfig
	runner PassRunner
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	trigger chan struct{}
	// loopDone is closed when the loop goroutine exits; nil before the first Start
	loopDone chan struct{}

	stateMu   sync.RWMutex
	history   []SyncRun // newest first
	passCount int64
	inFlight  bool
	nextRunAt time.Time
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, runner PassRunner, log *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SyncScheduler{
		config:  config,
		runner:  runner,
		logger:  log,
		now:     time.Now,
		history: make([]SyncRun, 0, config.HistorySize),
	}, nil
}

// Start starts the scheduling loop
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSchedulerAlreadyRunning
	}
	if s.loopDone != nil {
		select {
		case <-s.loopDone:
		default:
			// A stopped loop is still finishing its pass
			return ErrSchedulerStopping
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.trigger = make(chan struct{}, 1)
	s.loopDone = make(chan struct{})
	s.running = true

	go s.loop(loopCtx, s.trigger, s.loopDone)

	s.logger.Info("Sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("pass_timeout", s.config.PassTimeout),
		zap.Bool("run_on_startup", s.config.RunOnStartup),
	)
	return nil
}

// Stop stops the loop. An in-flight pass runs to completion; Stop waits for it
// until ctx is done. Start fails with ErrSchedulerStopping until that pass returns.
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	s.cancel()
	done := s.loopDone
	s.mu.Unlock()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TriggerNow queues one extra pass. Triggers arriving while one is queued coalesce.
func (s *SyncScheduler) TriggerNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrSchedulerNotRunning
	}
	select {
	case s.trigger <- struct{}{}:
	default:
	}
	return nil
}

// IsRunning returns whether the loop is active
func (s *SyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *SyncScheduler) loop(ctx context.Context, trigger <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	if s.config.RunOnStartup {
		s.runOnce(ctx, SyncTriggerStartup)
	}

	timer := time.NewTimer(s.config.Interval)
	defer timer.Stop()
	s.setNextRun(s.now().Add(s.config.Interval))

	for {
		kind := SyncTriggerScheduled
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-trigger:
			kind = SyncTriggerManual
			timer.Stop()
		}

		s.runOnce(ctx, kind)

		timer.Reset(s.config.Interval)
		s.setNextRun(s.now().Add(s.config.Interval))
	}
}

// runOnce runs a pass detached from the loop's cancellation and records it.
// A panic inside the pass is recovered and recorded as a failed run.
func (s *SyncScheduler) runOnce(parent context.Context, kind SyncTrigger) {
	s.stateMu.Lock()
	s.passCount++
	run := SyncRun{
		ID:        uuid.NewString(),
		Sequence:  s.passCount,
		Trigger:   kind,
		Status:    SyncRunStatusRunning,
		StartedAt: s.now(),
	}
	s.inFlight = true
	s.stateMu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.config.PassTimeout)
	defer cancel()
	ctx, runLogger := logger.WithSyncRunID(ctx, s.logger, run.ID)

	defer func() {
		if r := recover(); r != nil {
			runLogger.Error("Sync pass panicked",
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			run.fail(fmt.Errorf("%w: %v", ErrPassPanicked, r), s.now())
		}
		s.record(run)
	}()

	runLogger.Debug("Sync pass starting", zap.String("trigger", string(kind)))
	report := s.runner.RunPass(ctx)
	run.complete(report, s.now())
}

func (s *SyncScheduler) record(run SyncRun) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	s.inFlight = false
	s.history = append([]SyncRun{run}, s.history...)
	if len(s.history) > s.config.HistorySize {
		s.history = s.history[:s.config.HistorySize]
	}
}

func (s *SyncScheduler) setNextRun(t time.Time) {
	s.stateMu.Lock()
	s.nextRunAt = t
	s.stateMu.Unlock()
}

// History returns up to limit recent runs, newest first. limit <= 0 returns all.
func (s *SyncScheduler) History(limit int) []SyncRun {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]SyncRun, limit)
	copy(result, s.history[:limit])
	return result
}

// Status returns the scheduler's current state
func (s *SyncScheduler) Status() SchedulerStatus {
	running := s.IsRunning()

	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	st := SchedulerStatus{
		Running:   running,
		InFlight:  s.inFlight,
		Interval:  s.config.Interval.String(),
		PassCount: s.passCount,
	}
	if running && !s.inFlight && !s.nextRunAt.IsZero() {
		next := s.nextRunAt
		st.NextRunAt = &next
	}
	if len(s.history) > 0 {
		last := s.history[0]
		st.LastRun = &last
	}
	return st
}
