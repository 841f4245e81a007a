package realtime

import "errors"

var (
	ErrClientStopped = errors.New("realtime: client stopped")
	ErrNoDialer      = errors.New("realtime: dialer is required")
	ErrNoHealth      = errors.New("realtime: health checker is required")
	ErrNoURL         = errors.New("realtime: hub url is required")
	ErrTokenSource   = errors.New("realtime: token source failed")
)
