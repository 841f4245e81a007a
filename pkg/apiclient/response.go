package apiclient

import (
	"net/http"
)

// Response is the raw outcome of one HTTP round trip that reached the backend.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
