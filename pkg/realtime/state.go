package realtime

import (
	"github.com/dmitrymomot/vetkit/pkg/statemachine"
)

// State is the lifecycle phase of a Client.
type State int

const (
	StateDisconnected State = iota
	StateHealthChecking
	StateConnecting
	StateConnected
	StateReconnecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateHealthChecking:
		return "health_checking"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Event drives the lifecycle machine.
type Event int

const (
	EventStart Event = iota + 1
	EventHealthOK
	EventHealthFailed
	EventConnected
	EventConnectFailed
	EventDropped
	EventReconnected
	EventStop
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventHealthOK:
		return "health_ok"
	case EventHealthFailed:
		return "health_failed"
	case EventConnected:
		return "connected"
	case EventConnectFailed:
		return "connect_failed"
	case EventDropped:
		return "dropped"
	case EventReconnected:
		return "reconnected"
	case EventStop:
		return "stop"
	}
	return "unknown"
}

// lifecycle is the full transition table. Stopped has no way out.
var lifecycle = []statemachine.Transition[State, Event]{
	{From: StateDisconnected, To: StateHealthChecking, Event: EventStart},
	{From: StateHealthChecking, To: StateConnecting, Event: EventHealthOK},
	{From: StateHealthChecking, To: StateDisconnected, Event: EventHealthFailed},
	{From: StateConnecting, To: StateConnected, Event: EventConnected},
	{From: StateConnecting, To: StateDisconnected, Event: EventConnectFailed},
	{From: StateConnected, To: StateReconnecting, Event: EventDropped},
	{From: StateReconnecting, To: StateConnected, Event: EventReconnected},

	{From: StateHealthChecking, To: StateStopped, Event: EventStop},
	{From: StateConnecting, To: StateStopped, Event: EventStop},
	{From: StateConnected, To: StateStopped, Event: EventStop},
	{From: StateReconnecting, To: StateStopped, Event: EventStop},
}

func newLifecycle(listeners ...statemachine.Listener[State, Event]) *statemachine.Machine[State, Event] {
	opts := []statemachine.Option[State, Event]{statemachine.WithTransitions(lifecycle)}
	for _, l := range listeners {
		opts = append(opts, statemachine.WithListener(l))
	}
	return statemachine.MustNew(StateDisconnected, opts...)
}
