// Package realtime maintains a long-lived push channel to the backend hub and
// maps inbound hub events to user notifications.
//
// # Lifecycle
//
// A Client moves through an explicit state machine:
//
//	Disconnected -> HealthChecking -> Connecting -> Connected <-> Reconnecting
//	      ^               |               |
//	      +---------------+---------------+   (health gate failed / dial failed)
//
//	any state except Disconnected -> Stopped   (Stop)
//
// Start is gated on a health check. When the backend is unreachable the
// client adds a single warning notification and stays Disconnected; when the
// initial dial fails it only logs. After the first successful connection,
// drops are retried forever with RetryDelay spacing and reconnection is
// silent. The token source, if any, is called on every attempt.
//
// Stopped is terminal: Start after Stop returns ErrClientStopped. Stop is safe
// from every state and only reports Stopped after the connection handle and
// all background goroutines are released.
//
// # Dispatch
//
// Inbound invocations are looked up by target in a Routes table; each route
// turns the first argument into exactly one notification. Unknown targets are
// logged at debug level and dropped. WithRoute adds or replaces entries.
//
// The wire transport is behind the Dialer and Conn interfaces; package signalr
// provides the production implementation.
package realtime
