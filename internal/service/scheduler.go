package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/kursadbilgin/lead-dispatcher/internal/domain"
	"github.com/kursadbilgin/lead-dispatcher/internal/observability"
	"github.com/kursadbilgin/lead-dispatcher/internal/provider"
	"github.com/kursadbilgin/lead-dispatcher/internal/repository"
	"go.uber.org/zap"
)

// State is the scheduler lifecycle state.
type State string

const (
	StateIdle           State = "IDLE"
	StateRunning        State = "RUNNING"
	StatePausedForHours State = "PAUSED_FOR_HOURS"
)

const defaultMaxSendDelay = 200 * time.Second

// Gate decides whether dispatch may proceed at an instant and when it may
// resume.
type Gate interface {
	Open(t time.Time) bool
	Next(t time.Time) time.Time
}

// Scheduler owns the pending queue and drives one-at-a-time dispatch:
// business-hours gating, dedupe enforcement and randomized inter-send pacing.
// A single goroutine (the one calling Run) owns the queue, the endpoint
// cursor and all state transitions.
type Scheduler struct {
	leads       repository.LeadRepository
	sender      Sender
	gate        Gate
	logger      *zap.Logger
	metrics     *observability.Metrics
	queue       []domain.Lead
	countryCode string
	maxDelay    time.Duration
	recheck     chan struct{}

	mu    sync.RWMutex
	state State

	now      func() time.Time
	randIntn func(n int) int
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewScheduler(
	leads repository.LeadRepository,
	sender Sender,
	gate Gate,
	countryCode string,
	maxDelay time.Duration,
	logger *zap.Logger,
) (*Scheduler, error) {
	if leads == nil {
		return nil, fmt.Errorf("lead repository is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	if gate == nil {
		return nil, fmt.Errorf("gate is required")
	}
	if countryCode == "" {
		return nil, fmt.Errorf("country code is required")
	}
	if maxDelay <= 0 {
		maxDelay = defaultMaxSendDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		leads:       leads,
		sender:      sender,
		gate:        gate,
		logger:      logger,
		countryCode: countryCode,
		maxDelay:    maxDelay,
		recheck:     make(chan struct{}),
		state:       StateIdle,
		now:         time.Now,
		randIntn:    rand.Intn,
		sleep:       sleepWithContext,
	}, nil
}

func (s *Scheduler) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Load replaces the pending queue. Call before Run.
func (s *Scheduler) Load(leads []domain.Lead) {
	s.queue = append([]domain.Lead(nil), leads...)
	s.metrics.SetQueueDepth(len(s.queue))
}

// State returns the current lifecycle state. Safe for concurrent use.
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Recheck logs the current business-hours status and wakes a paused run so it
// re-evaluates the gate. Called from the periodic hours monitor; pokes while
// the loop is processing are dropped, since every step re-checks the gate
// anyway.
func (s *Scheduler) Recheck() {
	open := s.gate.Open(s.now())
	s.logger.Info("business hours check",
		zap.Bool("open", open),
		zap.String("state", string(s.State())),
	)

	select {
	case s.recheck <- struct{}{}:
	default:
	}
}

// Run processes the queue until it drains or ctx is canceled. Recipients are
// handled strictly in file order; skipped entries are removed silently.
func (s *Scheduler) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		if len(s.queue) == 0 {
			s.setState(StateIdle)
			s.logger.Info("all messages dispatched, run complete")
			return nil
		}

		now := s.now()
		if !s.gate.Open(now) {
			resume := s.gate.Next(now)
			s.setState(StatePausedForHours)
			s.logger.Info("outside business hours, pausing dispatch",
				zap.Time("resumeAt", resume),
				zap.Int("pending", len(s.queue)),
			)
			if err := s.pause(ctx, resume.Sub(now)); err != nil {
				return nil
			}
			continue
		}

		s.setState(StateRunning)
		delay := s.step(ctx)
		if delay <= 0 {
			continue
		}

		s.logger.Info("waiting before next message",
			zap.Duration("delay", delay),
			zap.Int("pending", len(s.queue)),
		)
		if err := s.sleep(ctx, delay); err != nil {
			return nil
		}
	}
}

// step pops and processes the head recipient, returning the pacing delay to
// apply before the next step. Skips return zero: the next recipient is
// processed immediately.
func (s *Scheduler) step(ctx context.Context) time.Duration {
	lead := s.queue[0]
	s.queue = s.queue[1:]
	s.metrics.SetQueueDepth(len(s.queue))

	phone, err := domain.NormalizePhone(lead.Phone, s.countryCode)
	if err != nil {
		s.logger.Warn("skipping lead with invalid phone",
			zap.String("name", lead.Name),
			zap.String("rawPhone", lead.Phone),
			zap.Error(err),
		)
		s.metrics.IncLeadSkipped("invalid_phone")
		return 0
	}

	if !domain.Dispatchable(phone) {
		s.logger.Warn("skipping lead with short phone",
			zap.String("name", lead.Name),
			zap.String("phone", phone),
			zap.Int("length", len(phone)),
		)
		s.metrics.IncLeadSkipped("short_phone")
		return 0
	}

	exists, err := s.leads.Exists(ctx, phone)
	if err != nil {
		s.logger.Error("dedupe lookup failed, skipping lead",
			zap.String("name", lead.Name),
			zap.String("phone", phone),
			zap.Error(err),
		)
		s.metrics.IncLeadSkipped("store_error")
		return 0
	}
	if exists {
		s.logger.Info("phone already contacted, skipping lead",
			zap.String("name", lead.Name),
			zap.String("phone", phone),
		)
		s.metrics.IncLeadSkipped("duplicate")
		return 0
	}

	if err := s.sender.Send(ctx, lead.Name, phone, domain.Greeting(lead.Name)); err != nil {
		if errors.Is(err, provider.ErrNoEndpointAvailable) {
			s.logger.Error("no endpoint available, message not sent",
				zap.String("name", lead.Name),
				zap.String("phone", phone),
			)
		} else {
			s.logger.Error("send failed, message not retried",
				zap.String("name", lead.Name),
				zap.String("phone", phone),
				zap.Error(err),
			)
		}
	}

	// Pacing applies to every send attempt, successful or not.
	return s.randomDelay()
}

func (s *Scheduler) randomDelay() time.Duration {
	millis := int(s.maxDelay / time.Millisecond)
	if millis <= 0 {
		return 0
	}
	return time.Duration(s.randIntn(millis)) * time.Millisecond
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	previous := s.state
	s.state = state
	s.mu.Unlock()

	if previous == state {
		return
	}

	s.metrics.SetDispatchPaused(state == StatePausedForHours)
	s.logger.Info("scheduler state changed",
		zap.String("from", string(previous)),
		zap.String("to", string(state)),
	)
}

// pause waits out a business-hours gap. The wait ends early when the hours
// monitor pokes the recheck channel, so a stale resume instant converges
// within one monitor interval.
func (s *Scheduler) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	case <-s.recheck:
		s.logger.Debug("pause interrupted by hours monitor")
		return nil
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
