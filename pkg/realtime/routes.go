package realtime

import (
	"fmt"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/dmitrymomot/vetkit/pkg/notifications"
)

// Hub method names pushed by the backend.
const (
	TargetNotificationReceived = "NotificationReceived"
	TargetVisitUpdated         = "VisitUpdated"
	TargetPetRecordChanged     = "PetRecordChanged"
)

const (
	DefaultNotificationText = "New notification"
	HealthWarningText       = "Backend unreachable, realtime disabled"
)

// Message is the notification produced for one inbound event.
type Message struct {
	Severity   notifications.Severity
	Text       string
	DurationMs *int64
}

// Route maps an event payload to its notification.
type Route func(payload []byte) Message

// Routes is the dispatch table, keyed by hub target.
type Routes map[string]Route

// DefaultRoutes returns a fresh copy of the built-in table.
func DefaultRoutes() Routes {
	return Routes{
		TargetNotificationReceived: NotificationRoute(DefaultNotificationText),
		TargetVisitUpdated:         FieldRoute(notifications.SeverityInfo, "Visit updated: %s", "doctorName", "veterinarian"),
		TargetPetRecordChanged:     FieldRoute(notifications.SeverityInfo, "Pet record updated: %s", "name", "pet"),
	}
}

func (r Routes) clone() Routes {
	out := make(Routes, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// NotificationRoute reads severity from "type", text from "message" and an
// optional display duration in milliseconds from "duration". Unknown or
// missing types become info.
func NotificationRoute(defaultText string) Route {
	return func(payload []byte) Message {
		msg := Message{Severity: notifications.SeverityInfo, Text: defaultText}

		if s, err := jsonparser.GetString(payload, "type"); err == nil {
			if sev, ok := notifications.ParseSeverity(s); ok {
				msg.Severity = sev
			}
		}
		if s, err := jsonparser.GetString(payload, "message"); err == nil && strings.TrimSpace(s) != "" {
			msg.Text = s
		}
		msg.DurationMs = durationMs(payload)

		return msg
	}
}

// FieldRoute produces a fixed-severity message by substituting one string
// field of the payload into format, or fallback when the field is empty or absent.
func FieldRoute(severity notifications.Severity, format, field, fallback string) Route {
	return func(payload []byte) Message {
		value, err := jsonparser.GetString(payload, field)
		if err != nil || strings.TrimSpace(value) == "" {
			value = fallback
		}
		return Message{Severity: severity, Text: fmt.Sprintf(format, value)}
	}
}

// durationMs reads the optional duration field, capped at notifications.MaxDuration.
func durationMs(payload []byte) *int64 {
	limit := notifications.MaxDuration.Milliseconds()
	if ms, err := jsonparser.GetInt(payload, "duration"); err == nil {
		ms = max(min(ms, limit), -limit)
		return &ms
	}
	if f, err := jsonparser.GetFloat(payload, "duration"); err == nil {
		var ms int64
		switch {
		case f >= float64(limit):
			ms = limit
		case f <= -float64(limit):
			ms = -limit
		default:
			ms = int64(f)
		}
		return &ms
	}
	return nil
}
