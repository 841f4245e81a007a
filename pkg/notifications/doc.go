// Package notifications holds the queue of transient, user-facing messages
// produced by backend calls and realtime events.
//
// A Sink is created once per session and passed by reference to every
// producer. Producers call Add (or the severity-fixed AddSuccess, AddError,
// AddWarning and AddInfo); renderers call List for a snapshot or Subscribe for
// a live feed.
//
// # Lifecycle of an entry
//
// Every entry gets a UUID and a creation timestamp. Entries with a display
// duration are removed when it elapses; the sink default (DefaultDuration)
// applies when the producer passes none, and a zero duration makes an entry
// sticky until Dismiss. The queue is bounded by WithMaxEntries, evicting the
// oldest entries first.
//
// # Usage
//
//	sink := notifications.NewSink(notifications.WithMaxEntries(20))
//	defer sink.Close()
//
//	sink.AddSuccess("Pet created successfully")
//	sink.AddError("Failed to delete vaccine", notifications.WithDuration(10*time.Second))
//
//	for _, e := range sink.List() {
//	    fmt.Println(e.Severity, e.Message)
//	}
//
// List returns copies; callers can't mutate queued entries.
package notifications
