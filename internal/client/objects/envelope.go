// Package objects holds the wire shapes the dispatch core consumes. It is
// deliberately not a full catalog of the remote service's schema; payload
// fields the core never reads stay inside the envelope's raw data.
package objects

import "encoding/json"

// Gateway opcodes the client reacts to.
const (
	OpDispatch       = 0
	OpHeartbeat      = 1
	OpIdentify       = 2
	OpResume         = 6
	OpReconnect      = 7
	OpInvalidSession = 9
	OpHello          = 10
	OpHeartbeatACK   = 11
)

// Envelope is one inbound gateway event unit: an opcode, an optional event
// name and sequence number, and an opaque data payload. It is immutable once
// received; middleware steps derive new arguments from it without mutating it.
type Envelope struct {
	Op        int             `json:"op"`
	Data      json.RawMessage `json:"d,omitempty"`
	Sequence  int64           `json:"s,omitempty"`
	EventName string          `json:"t,omitempty"`
}
