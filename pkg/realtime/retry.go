package realtime

import "time"

const (
	retryBaseDelay = time.Second
	retryMaxDelay  = 10 * time.Second
)

// RetryContext describes the reconnect attempt about to be scheduled.
type RetryContext struct {
	// PreviousRetryCount is the number of consecutive failed attempts so far.
	PreviousRetryCount int
	// ElapsedTime since the connection dropped.
	ElapsedTime time.Duration
	// RetryReason is the error that ended the connection or the last attempt.
	RetryReason error
}

// RetryPolicy returns how long to wait before the next reconnect attempt.
type RetryPolicy func(RetryContext) time.Duration

// RetryDelay is the default policy: min(1s * 2^n, 10s).
func RetryDelay(rc RetryContext) time.Duration {
	n := rc.PreviousRetryCount
	if n < 0 {
		n = 0
	}
	// 2^4s already exceeds the ceiling; avoid shifting into overflow.
	if n >= 4 {
		return retryMaxDelay
	}
	return min(retryBaseDelay<<n, retryMaxDelay)
}
