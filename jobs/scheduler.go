package jobs

import (
	"context"
	"sync"
	"time"

	"greenledger/backend/logger"
	"greenledger/backend/observability"
)

// Scheduler publishes checks on its own goroutine after a fixed delay. Schedule
// never blocks the caller and publish failures are only logged and counted.
type Scheduler struct {
	pub     Publisher
	delay   time.Duration
	timeout time.Duration
	lggr    logger.Logger
	metrics *observability.Metrics

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	stop   chan struct{}
}

func NewScheduler(pub Publisher, delay time.Duration, lggr logger.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		pub:     pub,
		delay:   delay,
		timeout: 10 * time.Second,
		lggr:    lggr,
		metrics: metrics,
		stop:    make(chan struct{}),
	}
}

func (s *Scheduler) Schedule(check ConnectionCheck) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.lggr.Warnw("scheduler closed, dropping connection check", "connection_id", check.ConnectionID)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if s.delay > 0 {
			t := time.NewTimer(s.delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-s.stop:
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		err := s.pub.Publish(ctx, check)
		s.metrics.ObserveFollowup(err)
		if err != nil {
			s.lggr.Errorw("connection check publish failed", "connection_id", check.ConnectionID, "job_id", check.JobID, "err", err)
			return
		}
		s.lggr.Debugw("connection check queued", "connection_id", check.ConnectionID, "job_id", check.JobID)
	}()
}

// Close stops accepting checks, flushes the ones already scheduled without waiting
// out their delay, and closes the publisher.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stop)
	s.mu.Unlock()
	s.wg.Wait()
	return s.pub.Close()
}
