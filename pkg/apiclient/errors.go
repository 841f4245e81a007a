package apiclient

import "errors"

var (
	ErrInvalidBaseURL = errors.New("apiclient: invalid base URL")
	ErrEncodeBody     = errors.New("apiclient: failed to encode request body")
	ErrRequestFailed  = errors.New("apiclient: request failed")
	ErrTokenSource    = errors.New("apiclient: token source failed")
)
