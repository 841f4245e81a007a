// Package statemachine provides a small generic finite state machine driven
// by an explicit transition table.
//
// States and events are any comparable types, typically string or int enums
// with a String method. Each transition may carry guards, which veto it at
// runtime, and actions, which run before the state changes and abort the
// transition on error. Listeners observe committed transitions.
//
//	type phase string
//	type trigger string
//
//	m := statemachine.MustNew[phase, trigger]("idle",
//	    statemachine.WithTransition[phase, trigger]("idle", "running", "start"),
//	    statemachine.WithTransition[phase, trigger]("running", "idle", "stop"),
//	)
//	next, err := m.Fire(ctx, "start")
//
// Fire returns *ErrNoTransitionAvailable when the table has no entry for the
// current state and event, and *ErrTransitionRejected when every candidate
// was vetoed by a guard. Use IsNoTransitionAvailableError and
// IsTransitionRejectedError to tell them apart.
//
// All methods are safe for concurrent use; Fire calls are serialized.
package statemachine
