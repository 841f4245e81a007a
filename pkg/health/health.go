// Package health checks backend reachability through the apiclient transport.
// Checks never notify; callers decide what an unreachable backend means.
package health

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/dmitrymomot/vetkit/pkg/apiclient"
	"github.com/dmitrymomot/vetkit/pkg/operation"
)

// Status is the optional body of a health response.
type Status struct {
	Status string `json:"status"`
}

// Checker is satisfied by *apiclient.Client.
type Checker interface {
	HealthCheck(ctx context.Context) (*apiclient.Response, error)
}

// Monitor checks backend health.
type Monitor struct {
	checker Checker
}

// NewMonitor returns a monitor over c.
func NewMonitor(c Checker) *Monitor {
	return &Monitor{checker: c}
}

// maxStatusText bounds a plain-text body kept as Status.
const maxStatusText = 64

// Check performs one health request. Success means the backend answered 2xx,
// whatever the body. Data carries the status when the body had one: the
// "status" field of a JSON object, or a short plain-text body such as
// "Healthy".
func (m *Monitor) Check(ctx context.Context) operation.Outcome[Status] {
	var body []byte
	fn := func(ctx context.Context) (*apiclient.Response, error) {
		resp, err := m.checker.HealthCheck(ctx)
		if err != nil || resp == nil || !resp.OK() {
			return resp, err
		}
		body = resp.Body
		ok := *resp
		ok.Body = nil
		return &ok, nil
	}

	out := operation.Execute[Status](ctx, nil, fn, operation.Fetch("health status").Quiet())
	if out.Success {
		out.Data = parseStatus(body)
	}
	return out
}

func parseStatus(body []byte) *Status {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if body[0] == '{' {
		var st Status
		if json.Unmarshal(body, &st) == nil && st.Status != "" {
			return &st
		}
		return nil
	}
	if body[0] == '"' {
		var text string
		if json.Unmarshal(body, &text) != nil {
			return nil
		}
		body = []byte(strings.TrimSpace(text))
	}
	if len(body) == 0 || len(body) > maxStatusText || !utf8.Valid(body) || bytes.ContainsAny(body, "<{[\n") {
		return nil
	}
	return &Status{Status: string(body)}
}

// Healthy is Check reduced to a boolean.
func (m *Monitor) Healthy(ctx context.Context) bool {
	return m.Check(ctx).Success
}
