package probe

import "time"

// RetryPolicy is a fixed-delay retry schedule.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: 2 * time.Second}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Clock schedules the wait between attempts.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type RealClock struct{}

func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
