// Package hub provides a thread-safe websocket broadcast hub used to
// fan camera frames and plate events out to dashboard clients.
package hub

// MessageType indicates the websocket message format.
type MessageType int

const (
	// JSONMessage is a JSON-encoded event (plate observations,
	// session status).
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data (JPEG camera frames).
	BinaryMessage
)

// Message is one payload to be broadcast to all connected clients.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage creates a JSON message from pre-encoded bytes.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage creates a binary message.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
