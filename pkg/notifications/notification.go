package notifications

import (
	"strings"
	"time"
)

// Severity categorizes a user-facing message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity maps a wire value onto a Severity.
// The second return value is false for unknown or empty input.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeveritySuccess:
		return SeveritySuccess, true
	case SeverityError:
		return SeverityError, true
	case SeverityWarning:
		return SeverityWarning, true
	case SeverityInfo:
		return SeverityInfo, true
	}
	return "", false
}

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

func (s Severity) String() string {
	return string(s)
}

// Entry is one transient message held by a Sink.
type Entry struct {
	ID        string         `json:"id"`
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message"`
	CreatedAt time.Time      `json:"created_at"`
	Duration  *time.Duration `json:"-"`
}

// DurationMs returns the display duration in milliseconds, or nil for sticky entries.
func (e Entry) DurationMs() *int64 {
	if e.Duration == nil {
		return nil
	}
	ms := e.Duration.Milliseconds()
	return &ms
}

// ExpiresAt returns the moment the entry stops being displayed.
// The second return value is false for sticky entries.
func (e Entry) ExpiresAt() (time.Time, bool) {
	if e.Duration == nil {
		return time.Time{}, false
	}
	return e.CreatedAt.Add(*e.Duration), true
}

func (e Entry) clone() Entry {
	if e.Duration != nil {
		d := *e.Duration
		e.Duration = &d
	}
	return e
}
