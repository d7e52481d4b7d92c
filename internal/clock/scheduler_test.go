package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_FiresInOrder(t *testing.T) {
	vc := NewVirtualClock(time.Unix(0, 0))
	sched := NewScheduler(vc, zap.NewNop(), time.Second)

	var fired []string
	sched.Schedule(Key{ArenaID: "a1", Kind: KindIdleReap}, vc.Now().Add(20*time.Second), func(ctx context.Context) {
		fired = append(fired, "idle_reap")
	})
	sched.Schedule(Key{ArenaID: "a1", Kind: KindGameStartCountdown}, vc.Now().Add(10*time.Second), func(ctx context.Context) {
		fired = append(fired, "countdown")
	})

	vc.Advance(15 * time.Second)
	sched.RunDue(context.Background())
	require.Equal(t, []string{"countdown"}, fired)

	vc.Advance(10 * time.Second)
	sched.RunDue(context.Background())
	require.Equal(t, []string{"countdown", "idle_reap"}, fired)
}

func TestScheduler_ScheduleIsIdempotentPerKey(t *testing.T) {
	vc := NewVirtualClock(time.Unix(0, 0))
	sched := NewScheduler(vc, zap.NewNop(), time.Second)

	var fired int
	key := Key{ArenaID: "a1", Kind: KindRoundDeadline}
	sched.Schedule(key, vc.Now().Add(5*time.Second), func(ctx context.Context) { fired++ })
	sched.Schedule(key, vc.Now().Add(10*time.Second), func(ctx context.Context) { fired++ })

	vc.Advance(6 * time.Second)
	sched.RunDue(context.Background())
	require.Equal(t, 0, fired, "first registration should have been replaced")

	vc.Advance(5 * time.Second)
	sched.RunDue(context.Background())
	require.Equal(t, 1, fired)
}

func TestScheduler_CancelIsIdempotent(t *testing.T) {
	vc := NewVirtualClock(time.Unix(0, 0))
	sched := NewScheduler(vc, zap.NewNop(), time.Second)
	key := Key{ArenaID: "a1", Kind: KindIdleReap}

	sched.Cancel(key) // cancel with nothing scheduled
	require.False(t, sched.Pending(key))

	sched.Schedule(key, vc.Now().Add(time.Second), func(ctx context.Context) {})
	require.True(t, sched.Pending(key))
	sched.Cancel(key)
	sched.Cancel(key) // idempotent second cancel
	require.False(t, sched.Pending(key))
}

func TestRetry_SucceedsWithinBudget(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), RetryConfig{Base: time.Millisecond, Cap: 10 * time.Millisecond, MaxAttempts: 3}, func(attempt int) error {
		attempts++
		if attempt < 2 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), RetryConfig{Base: time.Millisecond, Cap: 2 * time.Millisecond, MaxAttempts: 3}, func(attempt int) error {
		attempts++
		return errTransient
	})
	require.Error(t, err)
	require.Equal(t, 3, attempts)
}

func TestRun_GracefulShutdownWithinGrace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	worker := func(wctx context.Context) error {
		<-wctx.Done()
		close(done)
		return nil
	}

	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, 200*time.Millisecond, worker) }()

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	<-done
}

func TestRun_GraceTimeoutWhenWorkerHangs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker := func(wctx context.Context) error {
		<-wctx.Done()
		select {} // never returns, forcing the grace-period path
	}

	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, 20*time.Millisecond, worker) }()
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrGraceTimeout)
	case <-time.After(time.Second):
		t.Fatal("Run did not time out the grace period")
	}
}

var errTransient = errString("transient")

type errString string

func (e errString) Error() string { return string(e) }
