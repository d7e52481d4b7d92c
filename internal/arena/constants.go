package arena

import "time"

// Timing constants, kept bit-exact across the codebase.
const (
	CountdownSeconds      = 10
	LearningSeconds       = 60
	IdleReapSeconds       = 20
	SchedulerTickMillis   = 1000
	MoveTimeoutDefaultMS  = 10_000
)

var (
	CountdownDuration   = CountdownSeconds * time.Second
	LearningDuration    = LearningSeconds * time.Second
	IdleReapDuration    = IdleReapSeconds * time.Second
	SchedulerTick       = SchedulerTickMillis * time.Millisecond
	MoveTimeoutDefault  = MoveTimeoutDefaultMS * time.Millisecond
)
