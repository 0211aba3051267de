package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const deliveryTimeout = 2 * time.Minute

// timerSlack absorbs ordinary timer latency so a zero grace window still runs on-time fires.
const timerSlack = time.Second

// ErrInvalidTime is returned for an hour outside 0-23 or a minute outside 0-59.
var ErrInvalidTime = errors.New("invalid time of day")

// ErrStopped is returned by Register after Stop.
var ErrStopped = errors.New("scheduler stopped")

type SchedulingError struct {
	ChatID int64
	Err    error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("schedule chat %d: %v", e.ChatID, e.Err)
}

func (e *SchedulingError) Unwrap() error {
	return e.Err
}

type DeliveryError struct {
	ChatID int64
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to chat %d: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// DeliveryFunc sends the daily digest to a chat.
type DeliveryFunc func(ctx context.Context, chatID int64) error

type timer interface {
	Stop() bool
}

type job struct {
	id     string
	chatID int64
	hour   int
	minute int
	next   time.Time
	timer  timer
}

// Scheduler keeps at most one daily job per chat and calls the delivery func at each fire.
type Scheduler struct {
	logger  *log.Logger
	loc     *time.Location
	grace   time.Duration
	deliver DeliveryFunc

	nowFn     func() time.Time
	afterFunc func(d time.Duration, f func()) timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	jobs    map[int64]*job
	stopped bool
}

func New(logger *log.Logger, loc *time.Location, grace time.Duration, deliver DeliveryFunc) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger:  logger,
		loc:     loc,
		grace:   grace,
		deliver: deliver,
		nowFn:   time.Now,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[int64]*job),
	}
}

// Location is the zone every daily time is interpreted in.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Register schedules a daily fire at hour:minute for chatID, replacing any existing job.
func (s *Scheduler) Register(chatID int64, hour, minute int) (time.Time, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, &SchedulingError{ChatID: chatID, Err: fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return time.Time{}, &SchedulingError{ChatID: chatID, Err: ErrStopped}
	}

	replaced := ""
	if old, ok := s.jobs[chatID]; ok {
		old.timer.Stop()
		delete(s.jobs, chatID)
		replaced = old.id
	}

	now := s.nowFn()
	j := &job{
		id:     uuid.NewString(),
		chatID: chatID,
		hour:   hour,
		minute: minute,
		next:   NextDaily(now, hour, minute, s.loc),
	}
	s.arm(j, now)
	s.jobs[chatID] = j

	if replaced != "" {
		s.logger.Printf("replaced daily job %s with %s for chat=%d at %02d:%02d next=%s", replaced, j.id, chatID, hour, minute, j.next.Format(time.RFC3339))
	} else {
		s.logger.Printf("registered daily job %s for chat=%d at %02d:%02d next=%s", j.id, chatID, hour, minute, j.next.Format(time.RFC3339))
	}
	return j.next, nil
}

// Cancel removes the chat's job and reports whether one existed.
func (s *Scheduler) Cancel(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[chatID]
	if !ok {
		return false
	}
	j.timer.Stop()
	delete(s.jobs, chatID)
	s.logger.Printf("cancelled daily job %s for chat=%d", j.id, chatID)
	return true
}

// LookupNextFire returns the chat's next fire time, or false when it has no job.
func (s *Scheduler) LookupNextFire(chatID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[chatID]
	if !ok {
		return time.Time{}, false
	}
	return j.next, true
}

// TimeOf returns the hour and minute the chat is scheduled at.
func (s *Scheduler) TimeOf(chatID int64) (int, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[chatID]
	if !ok {
		return 0, 0, false
	}
	return j.hour, j.minute, true
}

// Stop disarms every job and waits for running deliveries until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	for chatID, j := range s.jobs {
		j.timer.Stop()
		delete(s.jobs, chatID)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return fmt.Errorf("wait for deliveries: %w", ctx.Err())
	}
}

// arm must be called with s.mu held.
func (s *Scheduler) arm(j *job, now time.Time) {
	wait := j.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	j.timer = s.afterFunc(wait, func() { s.fire(j) })
}

func (s *Scheduler) fire(j *job) {
	s.mu.Lock()
	if s.stopped || s.jobs[j.chatID] != j {
		s.mu.Unlock()
		return
	}

	now := s.nowFn()
	due := j.next
	if now.Before(due) {
		// Woke early against the wall clock; wait out the remainder.
		s.arm(j, now)
		s.mu.Unlock()
		return
	}

	late := now.Sub(due)
	run := late <= s.grace+timerSlack
	j.next = NextDaily(now, j.hour, j.minute, s.loc)
	next := j.next
	s.arm(j, now)
	if run {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	if !run {
		s.logger.Printf("skipped daily job %s for chat=%d: fire due %s discovered %s late (grace %s), next=%s",
			j.id, j.chatID, due.Format(time.RFC3339), late.Round(time.Second), s.grace, next.Format(time.RFC3339))
		return
	}

	go s.dispatch(j.id, j.chatID)
}

func (s *Scheduler) dispatch(jobID string, chatID int64) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("daily job %s for chat=%d panicked: %v", jobID, chatID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(s.ctx, deliveryTimeout)
	defer cancel()

	if err := s.deliver(ctx, chatID); err != nil {
		s.logger.Printf("daily job %s: %v", jobID, &DeliveryError{ChatID: chatID, Err: err})
		return
	}
	s.logger.Printf("daily job %s delivered to chat=%d", jobID, chatID)
}

// NextDaily returns the first hour:minute in loc strictly after t.
func NextDaily(t time.Time, hour, minute int, loc *time.Location) time.Time {
	local := t.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}
