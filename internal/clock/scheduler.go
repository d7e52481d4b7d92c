package clock

import (
	"container/heap"
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Kind enumerates the timer kinds the arena state machine schedules.
// At most one timer of a given (ArenaID, Kind) pair is ever pending;
// scheduling a second one replaces the first.
type Kind string

const (
	KindGameStartCountdown Kind = "game_start_countdown"
	KindIdleReap           Kind = "idle_reap"
	KindRoundDeadline      Kind = "round_deadline"
	KindAgentCycle         Kind = "agent_cycle"

	// KindLearningEnd is required by the closed->learning transition,
	// which schedules learning-phase end at now+60s; it is a fifth
	// timer kind with the same at-most-one-per-arena semantics as the
	// rest.
	KindLearningEnd Kind = "learning_end"
)

// Key identifies a single pending timer slot.
type Key struct {
	ArenaID string
	Kind    Kind
}

// Callback is invoked at-most-once after FiresAt is reached, on the
// scheduler's own dispatch goroutine. It must be short: heavy work is
// delegated to an arena actor's mailbox (see internal/actor).
type Callback func(ctx context.Context)

type timerEntry struct {
	key     Key
	firesAt time.Time
	cb      Callback
	index   int // heap index, maintained by container/heap
	dead    bool
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].firesAt.Before(h[j].firesAt) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x interface{}) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler is the single-writer timer wheel: a min-heap keyed by
// fires_at plus a map for idempotent cancel/replace, driven by one
// dispatcher goroutine that sleeps until the earliest deadline.
type Scheduler struct {
	clock Clock
	log   *zap.Logger

	mu      deadlock.Mutex
	heap    timerHeap
	byKey   map[Key]*timerEntry
	wakeCh  chan struct{}
	stopped bool

	tick time.Duration // resolution floor, default SCHEDULER_TICK_MS
}

// NewScheduler constructs a scheduler bound to clock. tick is the
// minimum resolution the dispatcher will bother waking for; pass 0
// for the default of 1s.
func NewScheduler(clock Clock, log *zap.Logger, tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = time.Second
	}
	return &Scheduler{
		clock:  clock,
		log:    log,
		byKey:  make(map[Key]*timerEntry),
		wakeCh: make(chan struct{}, 1),
		tick:   tick,
	}
}

// Schedule is idempotent on key: any prior pending callback for the same
// key is replaced (the earlier callback will never fire).
func (s *Scheduler) Schedule(key Key, firesAt time.Time, cb Callback) {
	s.mu.Lock()
	if prev, ok := s.byKey[key]; ok {
		prev.dead = true
		if prev.index >= 0 {
			heap.Remove(&s.heap, prev.index)
		}
	}
	e := &timerEntry{key: key, firesAt: firesAt, cb: cb}
	s.byKey[key] = e
	heap.Push(&s.heap, e)
	s.mu.Unlock()

	s.nudge()
}

// Cancel removes a pending timer if it has not yet fired. Idempotent.
func (s *Scheduler) Cancel(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byKey[key]
	if !ok {
		return
	}
	e.dead = true
	if e.index >= 0 {
		heap.Remove(&s.heap, e.index)
	}
	delete(s.byKey, key)
}

// Pending reports whether a timer of the given key is still scheduled.
func (s *Scheduler) Pending(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byKey[key]
	return ok
}

func (s *Scheduler) nudge() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// Run drives the dispatch loop until ctx is cancelled. It is intended
// to be launched once, from an errgroup, as a single-writer component
// with its own loop.
func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(s.tick)
	defer timer.Stop()

	for {
		sleep := s.nextSleep()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if sleep < 0 {
			sleep = 0
		}
		timer.Reset(sleep)

		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.stopped = true
			s.mu.Unlock()
			return ctx.Err()
		case <-s.wakeCh:
			continue
		case <-timer.C:
			s.dispatchDue(ctx)
		}
	}
}

func (s *Scheduler) nextSleep() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.heap) == 0 {
		return s.tick
	}
	d := s.heap[0].firesAt.Sub(s.clock.Now())
	if d < s.tick {
		return d
	}
	return s.tick
}

// dispatchDue pops and runs every timer whose deadline has passed.
// Callbacks run sequentially on this goroutine.
func (s *Scheduler) dispatchDue(ctx context.Context) {
	for {
		s.mu.Lock()
		if len(s.heap) == 0 {
			s.mu.Unlock()
			return
		}
		top := s.heap[0]
		now := s.clock.Now()
		if top.firesAt.After(now) {
			s.mu.Unlock()
			return
		}
		heap.Pop(&s.heap)
		delete(s.byKey, top.key)
		dead := top.dead
		s.mu.Unlock()

		if dead {
			continue
		}
		s.runCallback(ctx, top)
	}
}

func (s *Scheduler) runCallback(ctx context.Context, e *timerEntry) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("timer callback panicked",
				zap.String("arena_id", e.key.ArenaID),
				zap.String("kind", string(e.key.Kind)),
				zap.Any("panic", r),
			)
		}
	}()
	e.cb(ctx)
}

// RunDue is the synchronous, test-friendly counterpart to Run: it fires
// every timer already due against the clock's current value, without
// starting a goroutine. Used together with VirtualClock.Advance.
func (s *Scheduler) RunDue(ctx context.Context) {
	s.dispatchDue(ctx)
}

// ErrSchedulerStopped names the stopped-scheduler condition. No
// Scheduler method returns it: Schedule and Cancel have no error
// result, and Schedule still accepts timers after Run's context has
// been cancelled.
var ErrSchedulerStopped = errors.New("clock: scheduler stopped")

// Run runs the scheduler and an arbitrary set of worker loops (e.g. one
// per arena-actor shard) under a shared errgroup, so that cancelling ctx
// drains all of them together. If the group has not finished within
// gracePeriod of ctx being cancelled, Run gives up waiting and returns
// ErrGraceTimeout — callers then abort any in-flight external I/O
// directly. When ctx has been cancelled and every worker returns nil,
// Run returns ctx.Err().
func Run(ctx context.Context, gracePeriod time.Duration, workers ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		w := w
		g.Go(func() error { return w(gctx) })
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err == nil {
			err = ctx.Err()
		}
		return err
	case <-ctx.Done():
	}

	select {
	case err := <-done:
		if err == nil {
			err = ctx.Err()
		}
		return err
	case <-time.After(gracePeriod):
		return ErrGraceTimeout
	}
}

// ErrGraceTimeout is returned by Run when workers did not finish
// draining within the configured shutdown grace period.
var ErrGraceTimeout = errors.New("clock: graceful shutdown grace period exceeded")
