// Package hub fans messages out to websocket clients through a single
// channel-driven loop.
package hub

import "encoding/json"

// MessageType indicates the websocket message format.
type MessageType int

const (
	// JSONMessage is a JSON-encoded text message
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data (JPEG preview frames)
	BinaryMessage
)

// Message is one frame sent to every client.
type Message struct {
	Type MessageType
	Data []byte
}

// Event is the JSON envelope of every text message: {"type": ..., "data": ...}.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// NewJSONMessage creates a JSON message from pre-encoded bytes.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage creates a binary message.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}

// NewEvent encodes an Event envelope.
func NewEvent(kind string, data any) (Message, error) {
	b, err := json.Marshal(Event{Type: kind, Data: data})
	if err != nil {
		return Message{}, err
	}
	return NewJSONMessage(b), nil
}
