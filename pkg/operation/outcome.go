package operation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrymomot/vetkit/pkg/apiclient"
)

// ErrorKind separates failures the backend reported from failures to reach it.
type ErrorKind string

const (
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindBackend   ErrorKind = "backend"
)

const (
	genericTransportMessage = "The server could not be reached"
	maxPlainTextMessage     = 200
)

// Error describes why an operation failed.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrTransportFailure and ErrBackendRejection by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransportFailure:
		return e.Kind == ErrorKindTransport
	case ErrBackendRejection:
		return e.Kind == ErrorKindBackend
	}
	return false
}

// Outcome is the normalized result of one backend call.
// Success with nil Data means the backend returned no payload.
type Outcome[T any] struct {
	Success bool
	Data    *T
	Err     *Error
}

// Value returns the payload or the zero value.
func (o Outcome[T]) Value() T {
	if o.Data == nil {
		var zero T
		return zero
	}
	return *o.Data
}

// AsError returns the failure as an error, or nil on success.
func (o Outcome[T]) AsError() error {
	if o.Success || o.Err == nil {
		return nil
	}
	return o.Err
}

func succeeded[T any](data *T) Outcome[T] {
	return Outcome[T]{Success: true, Data: data}
}

func failed[T any](e *Error) Outcome[T] {
	return Outcome[T]{Err: e}
}

// Classify turns a transport result into an Outcome. It is total: every
// combination of resp and err yields a fully populated value.
func Classify[T any](resp *apiclient.Response, err error) Outcome[T] {
	if err != nil {
		return failed[T](TransportError(err))
	}
	if resp == nil {
		return failed[T](TransportError(ErrNoResponse))
	}
	if !resp.OK() {
		return failed[T](&Error{
			Kind:       ErrorKindBackend,
			StatusCode: resp.StatusCode,
			Message:    rejectionMessage(resp),
			Err:        ErrBackendRejection,
		})
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return succeeded[T](nil)
	}

	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		return failed[T](&Error{
			Kind:       ErrorKindTransport,
			StatusCode: resp.StatusCode,
			Message:    "The server returned an unreadable response",
			Err:        errors.Join(ErrDecodePayload, err),
		})
	}
	return succeeded(&data)
}

// TransportError wraps a failure to complete the round trip.
func TransportError(err error) *Error {
	return &Error{
		Kind:    ErrorKindTransport,
		Message: genericTransportMessage,
		Err:     err,
	}
}

// rejectionMessage prefers a message from the body (plain JSON envelope or
// ASP.NET problem details), then short plain text, then the status text.
func rejectionMessage(resp *apiclient.Response) string {
	body := bytes.TrimSpace(resp.Body)

	if len(body) > 0 && body[0] == '{' {
		var envelope struct {
			Message string `json:"message"`
			Error   string `json:"error"`
			Detail  string `json:"detail"`
			Title   string `json:"title"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			for _, m := range []string{envelope.Message, envelope.Error, envelope.Detail, envelope.Title} {
				if m = strings.TrimSpace(m); m != "" {
					return m
				}
			}
		}
	} else if len(body) > 0 && len(body) <= maxPlainTextMessage && body[0] != '<' && body[0] != '[' {
		return string(body)
	}

	if text := http.StatusText(resp.StatusCode); text != "" {
		return fmt.Sprintf("Request failed: %s", text)
	}
	return fmt.Sprintf("Request failed with status %d", resp.StatusCode)
}
