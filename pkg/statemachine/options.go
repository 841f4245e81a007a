package statemachine

import (
	"fmt"
)

// Option configures a machine during construction.
type Option[S, E comparable] func(*Machine[S, E]) error

// TransitionOption configures a single transition with guards and actions.
type TransitionOption[S, E comparable] func(*Transition[S, E])

// New creates a machine in the initial state.
func New[S, E comparable](initial S, opts ...Option[S, E]) (*Machine[S, E], error) {
	m := newMachine[S, E](initial)

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// MustNew is New that panics on option failure. Use it for static tables.
func MustNew[S, E comparable](initial S, opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// WithTransition adds a single transition.
func WithTransition[S, E comparable](from, to S, event E, opts ...TransitionOption[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		t := Transition[S, E]{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&t)
		}
		m.AddTransition(t)
		return nil
	}
}

// WithTransitions adds a whole table at once. Duplicate from/event/to
// entries are rejected to catch copy-paste mistakes in static tables.
func WithTransitions[S, E comparable](table []Transition[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		seen := make(map[transitionKey[S, E]]int, len(table))
		for i, t := range table {
			k := transitionKey[S, E]{from: t.From, to: t.To, event: t.Event}
			if j, dup := seen[k]; dup {
				return fmt.Errorf("%w: transition[%d] %v->%v on %v repeats transition[%d]",
					ErrDuplicateTransition, i, t.From, t.To, t.Event, j)
			}
			seen[k] = i
			m.AddTransition(t)
		}
		return nil
	}
}

type transitionKey[S, E comparable] struct {
	from, to S
	event    E
}

// WithListener registers a transition listener at construction time.
func WithListener[S, E comparable](l Listener[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		m.OnTransition(l)
		return nil
	}
}

// WithGuard adds a guard to a transition.
func WithGuard[S, E comparable](guard Guard[S, E]) TransitionOption[S, E] {
	return func(t *Transition[S, E]) {
		if guard != nil {
			t.Guards = append(t.Guards, guard)
		}
	}
}

// WithAction adds an action to a transition.
func WithAction[S, E comparable](action Action[S, E]) TransitionOption[S, E] {
	return func(t *Transition[S, E]) {
		if action != nil {
			t.Actions = append(t.Actions, action)
		}
	}
}
