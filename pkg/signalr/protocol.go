package signalr

import (
	"bytes"

	"github.com/goccy/go-json"
)

// recordSeparator terminates every JSON hub protocol message.
const recordSeparator = 0x1e

// Hub protocol message types.
const (
	messageInvocation       = 1
	messageStreamItem       = 2
	messageCompletion       = 3
	messageStreamInvocation = 4
	messageCancelInvocation = 5
	messagePing             = 6
	messageClose            = 7
)

type handshakeRequest struct {
	Protocol string `json:"protocol"`
	Version  int    `json:"version"`
}

type handshakeResponse struct {
	Error string `json:"error,omitempty"`
}

// message is the union of the fields this client reads.
type message struct {
	Type           int               `json:"type"`
	InvocationID   string            `json:"invocationId,omitempty"`
	Target         string            `json:"target,omitempty"`
	Arguments      []json.RawMessage `json:"arguments,omitempty"`
	Error          string            `json:"error,omitempty"`
	AllowReconnect bool              `json:"allowReconnect,omitempty"`
}

var (
	handshakeRecord = mustRecord(handshakeRequest{Protocol: "json", Version: 1})
	pingRecord      = mustRecord(message{Type: messagePing})
)

func encodeRecord(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, recordSeparator), nil
}

func mustRecord(v any) []byte {
	data, err := encodeRecord(v)
	if err != nil {
		panic(err)
	}
	return data
}

// splitRecords returns the complete records in frame, without separators.
// Bytes after the last separator are an incomplete record and are returned as rest.
func splitRecords(frame []byte) (records [][]byte, rest []byte) {
	for {
		i := bytes.IndexByte(frame, recordSeparator)
		if i < 0 {
			return records, frame
		}
		if i > 0 {
			records = append(records, frame[:i])
		}
		frame = frame[i+1:]
	}
}

func decodeMessage(record []byte) (message, error) {
	var m message
	err := json.Unmarshal(record, &m)
	return m, err
}

func unmarshalRecord(record []byte, v any) error {
	return json.Unmarshal(record, v)
}
